package trio

import (
	"time"

	"trio-lite/card"
)

// AgentSnapshot 单个 agent 的投影
type AgentSnapshot struct {
	ID           int   `json:"id"`
	Human        bool  `json:"human"`
	Score        int   `json:"score"`
	PlacedTokens int   `json:"placed_tokens"`
	TokenSlots   []int `json:"token_slots,omitempty"`
}

// Snapshot 对局的弱一致投影, 供界面与网络层消费
type Snapshot struct {
	Phase     Phase       `json:"phase"`
	Slots     []card.Card `json:"slots"` // CardInvalid = 空格
	DeckCount int         `json:"deck_count"`

	Agents []AgentSnapshot `json:"agents"`

	CountdownMode bool          `json:"countdown_mode"`
	CountdownLeft time.Duration `json:"countdown_left,omitempty"`
	Warn          bool          `json:"warn,omitempty"`
	Elapsed       time.Duration `json:"elapsed,omitempty"`

	Winners []int `json:"winners,omitempty"`
}
