package replay

import (
	"strings"
	"sync"
	"time"

	"trio-lite/card"
	"trio-lite/trio"
)

// recorder 把引擎回调转成带序号的磁带事件.
// 计时类回调携带墙钟值, 不可复现, 一律丢弃
type recorder struct {
	mu     sync.Mutex
	seq    uint64
	events []TapeEvent

	claims chan trio.Verdict
}

func newRecorder() *recorder {
	return &recorder{claims: make(chan trio.Verdict, 8)}
}

func (r *recorder) append(ev TapeEvent) {
	r.mu.Lock()
	r.seq++
	ev.Seq = r.seq
	r.events = append(r.events, ev)
	r.mu.Unlock()
}

func (r *recorder) tape() []TapeEvent {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]TapeEvent, len(r.events))
	copy(out, r.events)
	return out
}

func (r *recorder) tokenEvents() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	n := 0
	for _, ev := range r.events {
		if ev.Type == EventTokenPlaced || ev.Type == EventTokenRemoved {
			n++
		}
	}
	return n
}

func (r *recorder) CardPlaced(slot int, c card.Card) {
	r.append(TapeEvent{Type: EventCardPlaced, Slot: slot, Card: c.String()})
}

func (r *recorder) CardRemoved(slot int) {
	r.append(TapeEvent{Type: EventCardRemoved, Slot: slot})
}

func (r *recorder) TokenPlaced(agent, slot int) {
	r.append(TapeEvent{Type: EventTokenPlaced, Agent: agent, Slot: slot})
}

func (r *recorder) TokenRemoved(agent, slot int) {
	r.append(TapeEvent{Type: EventTokenRemoved, Agent: agent, Slot: slot})
}

func (r *recorder) ScoreChanged(agent, score int) {
	r.append(TapeEvent{Type: EventScoreChanged, Agent: agent, Score: score})
}

func (r *recorder) ClaimResolved(agent int, v trio.Verdict) {
	r.append(TapeEvent{Type: EventClaimResolved, Agent: agent, Verdict: strings.ToLower(v.String())})
	select {
	case r.claims <- v:
	default:
	}
}

func (r *recorder) WinnersAnnounced(agents []int) {
	r.append(TapeEvent{Type: EventWinners, Winners: agents})
}

func (r *recorder) FreezeSet(int, time.Duration)     {}
func (r *recorder) CountdownSet(time.Duration, bool) {}
func (r *recorder) ElapsedSet(time.Duration)         {}
