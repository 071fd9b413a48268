// Package room hosts one live match per room and bridges the engine to
// websocket clients. The room is an actor: all membership and seat
// mutations flow through a single event loop.
package room

import (
	"context"
	"errors"
	"log"
	"sync"
	"time"

	"github.com/google/uuid"

	"trio-lite/apps/server/internal/codec"
	"trio-lite/apps/server/internal/ledger"
	"trio-lite/trio"
	"trio-lite/trio/ai"
)

var (
	ErrRoomClosed = errors.New("room closed")
	ErrNotSeated  = errors.New("not seated")
)

type EventType int

const (
	EventJoin EventType = iota
	EventPress
	EventLeave
)

type Event struct {
	Type      EventType
	AccountID uint64
	Slot      int
	Response  chan Result
}

type Result struct {
	// AgentID is the seat taken on join; -1 marks a spectator.
	AgentID int
	Err     error
}

// BroadcastFn delivers an encoded envelope to one account's connection.
type BroadcastFn func(accountID uint64, data []byte)

type Config struct {
	HumanSeats     int
	ComputerAgents int
	Game           trio.Config
}

type Room struct {
	ID      string
	MatchID string

	cfg  Config
	game *trio.Game
	sink *roomSink

	mu        sync.RWMutex
	seats     map[uint64]int
	freeSeats []int
	members   map[uint64]bool
	closed    bool

	events   chan Event
	done     chan struct{}
	stopOnce sync.Once

	broadcast BroadcastFn
	ledger    ledger.Service
	startedAt time.Time
}

func New(id string, cfg Config, broadcast BroadcastFn, ledgerService ledger.Service) (*Room, error) {
	gameCfg := cfg.Game
	gameCfg.HumanAgents = cfg.HumanSeats
	gameCfg.ComputerAgents = cfg.ComputerAgents

	r := &Room{
		ID:        id,
		MatchID:   uuid.NewString(),
		cfg:       cfg,
		seats:     make(map[uint64]int),
		members:   make(map[uint64]bool),
		events:    make(chan Event, 64),
		done:      make(chan struct{}),
		broadcast: broadcast,
		ledger:    ledgerService,
		startedAt: time.Now().UTC(),
	}
	for seat := 0; seat < cfg.HumanSeats; seat++ {
		r.freeSeats = append(r.freeSeats, seat)
	}
	r.sink = newRoomSink(r)

	mgr := ai.NewManager(gameCfg.Seed)
	game, err := trio.NewGame(gameCfg, trio.WithSink(r.sink), trio.WithInputSource(mgr.Source()))
	if err != nil {
		return nil, err
	}
	r.game = game

	go r.runGame()
	go r.run()
	log.Printf("[Room %s] created (match=%s seats=%d cpus=%d)", id, r.MatchID, cfg.HumanSeats, cfg.ComputerAgents)
	return r, nil
}

func (r *Room) runGame() {
	r.game.Run()
	r.finish()
}

func (r *Room) run() {
	for {
		select {
		case event := <-r.events:
			res := r.handleEvent(event)
			if event.Response != nil {
				event.Response <- res
			}
		case <-r.done:
			log.Printf("[Room %s] actor stopped", r.ID)
			return
		}
	}
}

func (r *Room) handleEvent(e Event) Result {
	switch e.Type {
	case EventJoin:
		return r.handleJoin(e.AccountID)
	case EventPress:
		return r.handlePress(e.AccountID, e.Slot)
	case EventLeave:
		return r.handleLeave(e.AccountID)
	default:
		return Result{AgentID: -1, Err: errors.New("unknown event")}
	}
}

func (r *Room) handleJoin(accountID uint64) Result {
	r.mu.Lock()
	r.members[accountID] = true
	if seat, ok := r.seats[accountID]; ok {
		r.mu.Unlock()
		r.sendSnapshot(accountID)
		return Result{AgentID: seat}
	}
	seat := -1
	if len(r.freeSeats) > 0 {
		seat = r.freeSeats[0]
		r.freeSeats = r.freeSeats[1:]
		r.seats[accountID] = seat
	}
	r.mu.Unlock()

	log.Printf("[Room %s] account %d joined (seat=%d)", r.ID, accountID, seat)
	r.sendSnapshot(accountID)
	return Result{AgentID: seat}
}

func (r *Room) handlePress(accountID uint64, slot int) Result {
	r.mu.RLock()
	seat, seated := r.seats[accountID]
	r.mu.RUnlock()
	if !seated {
		return Result{AgentID: -1, Err: ErrNotSeated}
	}
	if err := r.game.SubmitSelection(seat, slot); err != nil {
		return Result{AgentID: seat, Err: err}
	}
	return Result{AgentID: seat}
}

func (r *Room) handleLeave(accountID uint64) Result {
	r.mu.Lock()
	delete(r.members, accountID)
	seat, seated := r.seats[accountID]
	if seated {
		delete(r.seats, accountID)
		r.freeSeats = append(r.freeSeats, seat)
	}
	r.mu.Unlock()
	if seated {
		log.Printf("[Room %s] account %d left seat %d", r.ID, accountID, seat)
		return Result{AgentID: seat}
	}
	return Result{AgentID: -1}
}

// SubmitEvent queues an event for the actor loop and waits for the
// result.
func (r *Room) SubmitEvent(e Event) Result {
	if e.Response == nil {
		e.Response = make(chan Result, 1)
	}
	r.mu.RLock()
	closed := r.closed
	r.mu.RUnlock()
	if closed {
		return Result{AgentID: -1, Err: ErrRoomClosed}
	}
	select {
	case r.events <- e:
	case <-r.done:
		return Result{AgentID: -1, Err: ErrRoomClosed}
	}
	select {
	case res := <-e.Response:
		return res
	case <-r.done:
		return Result{AgentID: -1, Err: ErrRoomClosed}
	}
}

// HasFreeSeat reports whether a human can still take a seat.
func (r *Room) HasFreeSeat() bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return !r.closed && len(r.freeSeats) > 0
}

func (r *Room) Done() <-chan struct{} { return r.done }

func (r *Room) roomID() string { return r.ID }

// sendSnapshot pushes a full state envelope to one account.
func (r *Room) sendSnapshot(accountID uint64) {
	data := codec.Wrap(r.ID, r.sink.nextSeq(), codec.ServerEnvelope{
		Type:     codec.ServerSnapshot,
		Snapshot: codec.SnapshotToWire(r.game.Snapshot()),
	})
	r.broadcast(accountID, data)
}

func (r *Room) broadcastAll(data []byte) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for accountID := range r.members {
		r.broadcast(accountID, data)
	}
}

// finish archives the match and shuts the actor down.
func (r *Room) finish() {
	snap := r.game.Snapshot()
	scores := make([]int, len(snap.Agents))
	for i, ag := range snap.Agents {
		scores[i] = ag.Score
	}
	rec := ledger.MatchRecord{
		MatchID:   r.MatchID,
		RoomID:    r.ID,
		Seed:      r.game.Config().Seed,
		StartedAt: r.startedAt,
		EndedAt:   time.Now().UTC(),
		Winners:   r.game.Winners(),
		Scores:    scores,
		Tape:      r.sink.tape(r.MatchID, r.game.Config().Seed),
	}
	if r.ledger != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		if err := r.ledger.RecordMatch(ctx, rec); err != nil {
			log.Printf("[Room %s] record match: %v", r.ID, err)
		}
		cancel()
	}
	log.Printf("[Room %s] match over (winners=%v scores=%v)", r.ID, rec.Winners, rec.Scores)
	r.Stop()
}

// Stop terminates the match and closes the actor. Idempotent.
func (r *Room) Stop() {
	r.mu.Lock()
	r.closed = true
	r.mu.Unlock()
	r.game.Terminate()
	r.stopOnce.Do(func() {
		close(r.done)
	})
}
