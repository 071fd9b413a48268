package ai

import "trio-lite/card"

// View is a read-only projection of the board visible to a computer agent.
type View struct {
	// Slots is the grid row; card.CardInvalid marks an empty slot.
	Slots []card.Card
	// MySlots are the slots currently holding this agent's tokens.
	MySlots []int
	// Hints are slot triples forming a valid combination, if any.
	Hints [][]int
}

// OccupiedSlots returns the indices of non-empty slots.
func (v View) OccupiedSlots() []int {
	var out []int
	for slot, c := range v.Slots {
		if c.Valid() {
			out = append(out, slot)
		}
	}
	return out
}

// SelectorBrain is the core interface all computer agent types implement.
type SelectorBrain interface {
	// Decide returns the slots to press on this wake-up, in order.
	Decide(view View) []int
	// Name returns a human-readable identifier for debugging.
	Name() string
}
