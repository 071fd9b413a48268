package trio

import (
	"time"

	"trio-lite/card"
)

// Sink receives presentation callbacks from the engine. Implementations
// must return quickly and must never call back into the game: several
// callbacks fire while the board lock is held.
type Sink interface {
	CardPlaced(slot int, c card.Card)
	CardRemoved(slot int)
	TokenPlaced(agent, slot int)
	TokenRemoved(agent, slot int)
	ScoreChanged(agent, score int)
	// ClaimResolved 在裁决送达 agent 之前触发
	ClaimResolved(agent int, v Verdict)
	// FreezeSet 冻结开始传剩余时长, 结束传 0
	FreezeSet(agent int, d time.Duration)
	CountdownSet(remaining time.Duration, warn bool)
	ElapsedSet(elapsed time.Duration)
	WinnersAnnounced(agents []int)
}

// NopSink discards every callback.
type NopSink struct{}

func (NopSink) CardPlaced(int, card.Card)        {}
func (NopSink) CardRemoved(int)                  {}
func (NopSink) TokenPlaced(int, int)             {}
func (NopSink) TokenRemoved(int, int)            {}
func (NopSink) ScoreChanged(int, int)            {}
func (NopSink) ClaimResolved(int, Verdict)       {}
func (NopSink) FreezeSet(int, time.Duration)     {}
func (NopSink) CountdownSet(time.Duration, bool) {}
func (NopSink) ElapsedSet(time.Duration)         {}
func (NopSink) WinnersAnnounced([]int)           {}
