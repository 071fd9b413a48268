package trio

// NoSlot 表示牌不在场上
const NoSlot = -1

// Verdict 协调者对一次申报的裁决
type Verdict byte

const (
	VerdictNone Verdict = iota
	// VerdictAccepted 申报合法, 得分并进入奖励冻结
	VerdictAccepted
	// VerdictRejected 申报不合法, 进入惩罚冻结
	VerdictRejected
	// VerdictVoided 申报在裁决前已失效, 立即恢复
	VerdictVoided
)

var verdictDictionary = map[Verdict]string{
	VerdictNone:     "None",
	VerdictAccepted: "Accepted",
	VerdictRejected: "Rejected",
	VerdictVoided:   "Voided",
}

func (v Verdict) String() string {
	if s, ok := verdictDictionary[v]; ok {
		return s
	}
	return "Unknown"
}

// Phase 对局生命周期
type Phase int32

const (
	PhaseIdle Phase = iota
	PhaseRunning
	PhaseEnded
)

var phaseDictionary = map[Phase]string{
	PhaseIdle:    "Idle",
	PhaseRunning: "Running",
	PhaseEnded:   "Ended",
}

func (p Phase) String() string {
	if s, ok := phaseDictionary[p]; ok {
		return s
	}
	return "Unknown"
}
