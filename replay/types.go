package replay

// ScenarioSpec 描述一局可复现的单 agent 剧本: 固定种子, 依序按格
type ScenarioSpec struct {
	GridSize int        `json:"grid_size,omitempty"`
	DeckSize int        `json:"deck_size,omitempty"`
	Steps    []StepSpec `json:"steps"`
	RNG      *RNGSpec   `json:"rng,omitempty"`
}

// StepSpec 一步操作. Type 为 press 时按 Slot; 为 hint 时按当前场面上
// 的一组合法组合. Expect 可选地断言该步引发的裁决
type StepSpec struct {
	Type   string `json:"type"`
	Slot   int    `json:"slot,omitempty"`
	Expect string `json:"expect,omitempty"`
}

type RNGSpec struct {
	Seed int64 `json:"seed"`
}

const (
	StepTypePress = "press"
	StepTypeHint  = "hint"

	ExpectAccepted = "accepted"
	ExpectRejected = "rejected"
)

// MatchTape 引擎事件的线性记录, 同一剧本必然产出同一卷带
type MatchTape struct {
	TapeVersion int         `json:"tape_version"`
	MatchID     string      `json:"match_id"`
	Seed        int64       `json:"seed"`
	Events      []TapeEvent `json:"events"`
}

type TapeEvent struct {
	Type  string `json:"type"`
	Seq   uint64 `json:"seq"`
	Agent int    `json:"agent,omitempty"`
	Slot  int    `json:"slot,omitempty"`
	Card  string `json:"card,omitempty"`
	Score int    `json:"score,omitempty"`
	// Verdict: accepted / rejected / voided
	Verdict string `json:"verdict,omitempty"`
	Winners []int  `json:"winners,omitempty"`
}

const (
	EventCardPlaced    = "card_placed"
	EventCardRemoved   = "card_removed"
	EventTokenPlaced   = "token_placed"
	EventTokenRemoved  = "token_removed"
	EventScoreChanged  = "score_changed"
	EventClaimResolved = "claim_resolved"
	EventWinners       = "winners"
)
