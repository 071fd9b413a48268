package ai

import "math/rand"

// RandomBrain presses one random occupied slot per wake-up. It collects
// tokens blindly and eats the penalty when its triples are nonsense.
type RandomBrain struct {
	rng *rand.Rand
}

func NewRandomBrain(seed int64) *RandomBrain {
	return &RandomBrain{rng: rand.New(rand.NewSource(seed))}
}

func (b *RandomBrain) Name() string { return "random" }

func (b *RandomBrain) Decide(view View) []int {
	occupied := view.OccupiedSlots()
	if len(occupied) == 0 {
		return nil
	}
	return []int{occupied[b.rng.Intn(len(occupied))]}
}
