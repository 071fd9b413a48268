package ai

import "math/rand"

// SmartBrain mimics a human fumbling before finding a combination:
// it presses a few random slots, retracts them, then presses a real
// combination when one is on the board.
type SmartBrain struct {
	rng   *rand.Rand
	noise []int
	stage int // 0 = press noise, 1 = retract noise, 2 = press a combination
}

// noiseCount random presses per cycle; kept below the token limit so the
// noise alone never triggers a claim.
const noiseCount = 2

func NewSmartBrain(seed int64) *SmartBrain {
	return &SmartBrain{rng: rand.New(rand.NewSource(seed))}
}

func (b *SmartBrain) Name() string { return "smart" }

func (b *SmartBrain) Decide(view View) []int {
	switch b.stage {
	case 0:
		occupied := view.OccupiedSlots()
		if len(occupied) == 0 {
			return nil
		}
		b.rng.Shuffle(len(occupied), func(i, j int) {
			occupied[i], occupied[j] = occupied[j], occupied[i]
		})
		n := noiseCount
		if n > len(occupied) {
			n = len(occupied)
		}
		b.noise = append([]int(nil), occupied[:n]...)
		b.stage = 1
		return b.noise
	case 1:
		// Press the same slots again to retract the noise tokens.
		noise := b.noise
		b.noise = nil
		b.stage = 2
		return noise
	default:
		b.stage = 0
		if len(view.Hints) == 0 {
			return nil
		}
		return view.Hints[b.rng.Intn(len(view.Hints))]
	}
}
