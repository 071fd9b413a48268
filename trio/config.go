package trio

import (
	"fmt"
	"time"

	"trio-lite/card"
)

type Config struct {
	// Agents
	HumanAgents    int
	ComputerAgents int

	// Board
	GridSize int
	DeckSize int

	// FeatureSize 一组合法组合的牌数 (同时也是每个 agent 的令牌上限)
	FeatureSize int

	// Timing
	TurnTimeout   time.Duration // <= 0 切换为累计计时显示
	TurnWarning   time.Duration
	PointFreeze   time.Duration
	PenaltyFreeze time.Duration
	EndPause      time.Duration

	// DealDelay simulates the presentation delay of placing/removing a card.
	DealDelay time.Duration

	// RNG seed (0 => time-based)
	Seed int64
}

// DefaultConfig mirrors the classic table: 12 slots, full 81-card deck.
func DefaultConfig() Config {
	return Config{
		HumanAgents:    1,
		ComputerAgents: 1,
		GridSize:       12,
		DeckSize:       card.FullDeckSize,
		FeatureSize:    card.ComboSize,
		TurnTimeout:    60 * time.Second,
		TurnWarning:    5 * time.Second,
		PointFreeze:    time.Second,
		PenaltyFreeze:  3 * time.Second,
		EndPause:       3 * time.Second,
		DealDelay:      100 * time.Millisecond,
	}
}

func (c Config) Agents() int { return c.HumanAgents + c.ComputerAgents }

func (c Config) validate() error {
	if c.Agents() <= 0 {
		return fmt.Errorf("need at least one agent")
	}
	if c.HumanAgents < 0 || c.ComputerAgents < 0 {
		return fmt.Errorf("agent counts must be >= 0")
	}
	if c.GridSize <= 0 {
		return fmt.Errorf("GridSize must be > 0")
	}
	if c.DeckSize <= 0 || c.DeckSize > card.FullDeckSize {
		return fmt.Errorf("DeckSize must be in 1..%d", card.FullDeckSize)
	}
	if c.FeatureSize != card.ComboSize {
		return fmt.Errorf("FeatureSize must be %d", card.ComboSize)
	}
	if c.DeckSize < c.FeatureSize {
		return fmt.Errorf("DeckSize %d smaller than one combination", c.DeckSize)
	}
	if c.PointFreeze < 0 || c.PenaltyFreeze < 0 || c.EndPause < 0 || c.DealDelay < 0 {
		return fmt.Errorf("durations must be >= 0")
	}
	if c.TurnTimeout > 0 && c.TurnWarning < 0 {
		return fmt.Errorf("TurnWarning must be >= 0")
	}
	return nil
}
