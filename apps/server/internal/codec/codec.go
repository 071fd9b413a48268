// Package codec defines the JSON wire envelopes spoken over the
// websocket. One client message and one server message type, with a
// payload field per message kind.
package codec

import (
	"encoding/json"
	"fmt"
	"time"

	"trio-lite/card"
	"trio-lite/trio"
)

// Client message types.
const (
	ClientHello = "hello"
	ClientJoin  = "join"
	ClientPress = "press"
	ClientLeave = "leave"
)

// Server message types.
const (
	ServerError    = "error"
	ServerWelcome  = "welcome"
	ServerSnapshot = "snapshot"
	ServerCard     = "card"
	ServerToken    = "token"
	ServerClaim    = "claim"
	ServerScore    = "score"
	ServerFreeze   = "freeze"
	ServerTimer    = "timer"
	ServerGameOver = "game_over"
)

type ClientEnvelope struct {
	Type   string `json:"type"`
	RoomID string `json:"room_id,omitempty"`
	// Token authenticates the hello message.
	Token string `json:"token,omitempty"`
	Slot  int    `json:"slot,omitempty"`
}

type ServerEnvelope struct {
	Type       string `json:"type"`
	RoomID     string `json:"room_id,omitempty"`
	ServerSeq  uint64 `json:"server_seq"`
	ServerTsMs int64  `json:"server_ts_ms"`

	Error    *ErrorMsg    `json:"error,omitempty"`
	Welcome  *WelcomeMsg  `json:"welcome,omitempty"`
	Snapshot *SnapshotMsg `json:"snapshot,omitempty"`
	Card     *CardMsg     `json:"card,omitempty"`
	Token    *TokenMsg    `json:"token,omitempty"`
	Claim    *ClaimMsg    `json:"claim,omitempty"`
	Score    *ScoreMsg    `json:"score,omitempty"`
	Freeze   *FreezeMsg   `json:"freeze,omitempty"`
	Timer    *TimerMsg    `json:"timer,omitempty"`
	GameOver *GameOverMsg `json:"game_over,omitempty"`
}

type ErrorMsg struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

type WelcomeMsg struct {
	AccountID uint64 `json:"account_id"`
	Username  string `json:"username,omitempty"`
	// Token is the session token to present on the next hello; only set
	// when the server minted a fresh guest session.
	Token   string `json:"token,omitempty"`
	AgentID int    `json:"agent_id"`
}

type AgentMsg struct {
	ID         int   `json:"id"`
	Human      bool  `json:"human"`
	Score      int   `json:"score"`
	TokenSlots []int `json:"token_slots,omitempty"`
}

type SnapshotMsg struct {
	Phase   string     `json:"phase"`
	Slots   []string   `json:"slots"` // "" marks an empty slot
	Deck    int        `json:"deck"`
	Agents  []AgentMsg `json:"agents"`
	Winners []int      `json:"winners,omitempty"`
}

type CardMsg struct {
	Slot int `json:"slot"`
	// Card is empty on removal.
	Card string `json:"card,omitempty"`
}

type TokenMsg struct {
	Agent  int  `json:"agent"`
	Slot   int  `json:"slot"`
	Placed bool `json:"placed"`
}

type ClaimMsg struct {
	Agent   int    `json:"agent"`
	Verdict string `json:"verdict"`
}

type ScoreMsg struct {
	Agent int `json:"agent"`
	Score int `json:"score"`
}

type FreezeMsg struct {
	Agent  int   `json:"agent"`
	Millis int64 `json:"millis"` // 0 = thawed
}

type TimerMsg struct {
	// Seconds is remaining time in countdown mode, elapsed otherwise.
	Seconds   int  `json:"seconds"`
	Countdown bool `json:"countdown"`
	Warn      bool `json:"warn,omitempty"`
}

type GameOverMsg struct {
	Winners []int `json:"winners"`
}

// Wrap stamps common fields and marshals the envelope.
func Wrap(roomID string, seq uint64, env ServerEnvelope) []byte {
	env.RoomID = roomID
	env.ServerSeq = seq
	env.ServerTsMs = time.Now().UnixMilli()
	data, err := json.Marshal(env)
	if err != nil {
		// Envelopes are plain structs; marshal cannot fail at runtime.
		panic(fmt.Sprintf("codec: marshal envelope: %v", err))
	}
	return data
}

func Decode(data []byte) (ClientEnvelope, error) {
	var env ClientEnvelope
	if err := json.Unmarshal(data, &env); err != nil {
		return ClientEnvelope{}, fmt.Errorf("decode client envelope: %w", err)
	}
	if env.Type == "" {
		return ClientEnvelope{}, fmt.Errorf("decode client envelope: missing type")
	}
	return env, nil
}

// SnapshotToWire projects an engine snapshot onto the wire shape.
func SnapshotToWire(snap trio.Snapshot) *SnapshotMsg {
	msg := &SnapshotMsg{
		Phase:   snap.Phase.String(),
		Deck:    snap.DeckCount,
		Winners: snap.Winners,
	}
	for _, c := range snap.Slots {
		msg.Slots = append(msg.Slots, cardToWire(c))
	}
	for _, ag := range snap.Agents {
		msg.Agents = append(msg.Agents, AgentMsg{
			ID:         ag.ID,
			Human:      ag.Human,
			Score:      ag.Score,
			TokenSlots: ag.TokenSlots,
		})
	}
	return msg
}

func cardToWire(c card.Card) string {
	if !c.Valid() {
		return ""
	}
	return c.String()
}
