package room

import (
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"trio-lite/apps/server/internal/codec"
	"trio-lite/card"
	"trio-lite/replay"
	"trio-lite/trio"
)

// roomSink fans engine callbacks out to every connected client and
// collects a match tape for the ledger. Engine callbacks may fire with
// the board lock held, so every method only marshals and queues.
type roomSink struct {
	room *roomBroadcaster
	seq  atomic.Uint64

	mu      sync.Mutex
	tapeSeq uint64
	events  []replay.TapeEvent

	// lastTimerSec deduplicates per-tick timer callbacks down to one
	// envelope per displayed second. -1 forces the first send.
	lastTimerSec atomic.Int32
	lastWarn     atomic.Bool
}

// roomBroadcaster is the part of Room the sink needs; it keeps the sink
// testable without a live room.
type roomBroadcaster interface {
	broadcastAll(data []byte)
	roomID() string
}

func newRoomSink(r roomBroadcaster) *roomSink {
	s := &roomSink{room: r}
	s.lastTimerSec.Store(-1)
	return s
}

func (s *roomSink) nextSeq() uint64 {
	return s.seq.Add(1)
}

func (s *roomSink) send(env codec.ServerEnvelope) {
	s.room.broadcastAll(codec.Wrap(s.room.roomID(), s.nextSeq(), env))
}

func (s *roomSink) record(ev replay.TapeEvent) {
	s.mu.Lock()
	s.tapeSeq++
	ev.Seq = s.tapeSeq
	s.events = append(s.events, ev)
	s.mu.Unlock()
}

// tape assembles the recorded events into a ledger-ready match tape.
func (s *roomSink) tape(matchID string, seed int64) *replay.MatchTape {
	s.mu.Lock()
	defer s.mu.Unlock()
	events := make([]replay.TapeEvent, len(s.events))
	copy(events, s.events)
	return &replay.MatchTape{
		TapeVersion: 1,
		MatchID:     matchID,
		Seed:        seed,
		Events:      events,
	}
}

func (s *roomSink) CardPlaced(slot int, c card.Card) {
	s.record(replay.TapeEvent{Type: replay.EventCardPlaced, Slot: slot, Card: c.String()})
	s.send(codec.ServerEnvelope{Type: codec.ServerCard, Card: &codec.CardMsg{Slot: slot, Card: c.String()}})
}

func (s *roomSink) CardRemoved(slot int) {
	s.record(replay.TapeEvent{Type: replay.EventCardRemoved, Slot: slot})
	s.send(codec.ServerEnvelope{Type: codec.ServerCard, Card: &codec.CardMsg{Slot: slot}})
}

func (s *roomSink) TokenPlaced(agent, slot int) {
	s.record(replay.TapeEvent{Type: replay.EventTokenPlaced, Agent: agent, Slot: slot})
	s.send(codec.ServerEnvelope{Type: codec.ServerToken, Token: &codec.TokenMsg{Agent: agent, Slot: slot, Placed: true}})
}

func (s *roomSink) TokenRemoved(agent, slot int) {
	s.record(replay.TapeEvent{Type: replay.EventTokenRemoved, Agent: agent, Slot: slot})
	s.send(codec.ServerEnvelope{Type: codec.ServerToken, Token: &codec.TokenMsg{Agent: agent, Slot: slot, Placed: false}})
}

func (s *roomSink) ScoreChanged(agent, score int) {
	s.record(replay.TapeEvent{Type: replay.EventScoreChanged, Agent: agent, Score: score})
	s.send(codec.ServerEnvelope{Type: codec.ServerScore, Score: &codec.ScoreMsg{Agent: agent, Score: score}})
}

func (s *roomSink) ClaimResolved(agent int, v trio.Verdict) {
	s.record(replay.TapeEvent{Type: replay.EventClaimResolved, Agent: agent, Verdict: strings.ToLower(v.String())})
	s.send(codec.ServerEnvelope{Type: codec.ServerClaim, Claim: &codec.ClaimMsg{Agent: agent, Verdict: strings.ToLower(v.String())}})
}

func (s *roomSink) FreezeSet(agent int, d time.Duration) {
	s.send(codec.ServerEnvelope{Type: codec.ServerFreeze, Freeze: &codec.FreezeMsg{Agent: agent, Millis: d.Milliseconds()}})
}

func (s *roomSink) CountdownSet(remaining time.Duration, warn bool) {
	sec := int32((remaining + time.Second - 1) / time.Second)
	prevSec := s.lastTimerSec.Swap(sec)
	prevWarn := s.lastWarn.Swap(warn)
	if prevSec == sec && prevWarn == warn {
		return
	}
	s.send(codec.ServerEnvelope{Type: codec.ServerTimer, Timer: &codec.TimerMsg{Seconds: int(sec), Countdown: true, Warn: warn}})
}

func (s *roomSink) ElapsedSet(elapsed time.Duration) {
	sec := int32(elapsed / time.Second)
	if s.lastTimerSec.Swap(sec) == sec {
		return
	}
	s.send(codec.ServerEnvelope{Type: codec.ServerTimer, Timer: &codec.TimerMsg{Seconds: int(sec)}})
}

func (s *roomSink) WinnersAnnounced(agents []int) {
	s.record(replay.TapeEvent{Type: replay.EventWinners, Winners: agents})
	s.send(codec.ServerEnvelope{Type: codec.ServerGameOver, GameOver: &codec.GameOverMsg{Winners: agents}})
}
