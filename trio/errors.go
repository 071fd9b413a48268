package trio

import "errors"

var (
	ErrGameEnded    = errors.New("game already ended")
	ErrGameRunning  = errors.New("game already running")
	ErrUnknownAgent = errors.New("unknown agent")
	ErrSlotRange    = errors.New("slot out of range")
)

// InvalidStateError 内部状态机异常
type InvalidStateError string

func (e InvalidStateError) Error() string {
	return "invalid state: " + string(e)
}
