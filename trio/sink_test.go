package trio

import (
	"sync"
	"time"

	"trio-lite/card"
)

// recordingSink 线程安全地计数回调, 供测试断言
type recordingSink struct {
	mu sync.Mutex

	cardsPlaced   int
	cardsRemoved  int
	tokensPlaced  int
	tokensRemoved int
	scoreEvents   []int
	claimEvents   int
	freezeEvents  int
	countdownSets int
	elapsedSets   int
	winnerCalls   [][]int

	onScore func(agent, score int)
}

func (r *recordingSink) CardPlaced(int, card.Card) {
	r.mu.Lock()
	r.cardsPlaced++
	r.mu.Unlock()
}

func (r *recordingSink) CardRemoved(int) {
	r.mu.Lock()
	r.cardsRemoved++
	r.mu.Unlock()
}

func (r *recordingSink) TokenPlaced(int, int) {
	r.mu.Lock()
	r.tokensPlaced++
	r.mu.Unlock()
}

func (r *recordingSink) TokenRemoved(int, int) {
	r.mu.Lock()
	r.tokensRemoved++
	r.mu.Unlock()
}

func (r *recordingSink) ScoreChanged(agent, score int) {
	r.mu.Lock()
	r.scoreEvents = append(r.scoreEvents, score)
	cb := r.onScore
	r.mu.Unlock()
	if cb != nil {
		cb(agent, score)
	}
}

func (r *recordingSink) ClaimResolved(int, Verdict) {
	r.mu.Lock()
	r.claimEvents++
	r.mu.Unlock()
}

func (r *recordingSink) FreezeSet(int, time.Duration) {
	r.mu.Lock()
	r.freezeEvents++
	r.mu.Unlock()
}

func (r *recordingSink) CountdownSet(time.Duration, bool) {
	r.mu.Lock()
	r.countdownSets++
	r.mu.Unlock()
}

func (r *recordingSink) ElapsedSet(time.Duration) {
	r.mu.Lock()
	r.elapsedSets++
	r.mu.Unlock()
}

func (r *recordingSink) WinnersAnnounced(agents []int) {
	r.mu.Lock()
	r.winnerCalls = append(r.winnerCalls, agents)
	r.mu.Unlock()
}

func (r *recordingSink) countdowns() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.countdownSets
}

func (r *recordingSink) elapseds() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.elapsedSets
}

func (r *recordingSink) winners() [][]int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.winnerCalls
}
