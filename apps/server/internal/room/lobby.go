package room

import (
	"fmt"
	"log"
	"sync"

	"trio-lite/apps/server/internal/ledger"
)

// Lobby owns the live rooms and places quick-play players into them.
type Lobby struct {
	mu     sync.Mutex
	rooms  map[string]*Room
	nextID uint64

	cfg       Config
	broadcast BroadcastFn
	ledger    ledger.Service
}

func NewLobby(cfg Config, broadcast BroadcastFn, ledgerService ledger.Service) *Lobby {
	return &Lobby{
		rooms:     make(map[string]*Room),
		cfg:       cfg,
		broadcast: broadcast,
		ledger:    ledgerService,
	}
}

// QuickStart seats the account in a room with a free seat, creating a
// fresh room when none has one, and returns the room and seat result.
func (l *Lobby) QuickStart(accountID uint64) (*Room, Result, error) {
	r, err := l.pickRoom()
	if err != nil {
		return nil, Result{}, err
	}
	res := r.SubmitEvent(Event{Type: EventJoin, AccountID: accountID})
	if res.Err != nil {
		return nil, Result{}, res.Err
	}
	return r, res, nil
}

func (l *Lobby) pickRoom() (*Room, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.sweepLocked()
	for _, r := range l.rooms {
		if r.HasFreeSeat() {
			return r, nil
		}
	}
	l.nextID++
	id := fmt.Sprintf("room_%d", l.nextID)
	r, err := New(id, l.cfg, l.broadcast, l.ledger)
	if err != nil {
		return nil, err
	}
	l.rooms[id] = r
	return r, nil
}

// Get returns a live room by ID.
func (l *Lobby) Get(roomID string) (*Room, bool) {
	l.mu.Lock()
	defer l.mu.Unlock()
	r, ok := l.rooms[roomID]
	return r, ok
}

// sweepLocked drops rooms whose match has ended.
func (l *Lobby) sweepLocked() {
	for id, r := range l.rooms {
		select {
		case <-r.Done():
			delete(l.rooms, id)
			log.Printf("[Lobby] swept finished room %s", id)
		default:
		}
	}
}

// StopAll shuts every room down; used on server shutdown.
func (l *Lobby) StopAll() {
	l.mu.Lock()
	rooms := make([]*Room, 0, len(l.rooms))
	for _, r := range l.rooms {
		rooms = append(rooms, r)
	}
	l.rooms = make(map[string]*Room)
	l.mu.Unlock()
	for _, r := range rooms {
		r.Stop()
	}
}
