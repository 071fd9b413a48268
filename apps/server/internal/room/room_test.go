package room

import (
	"bytes"
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"trio-lite/apps/server/internal/ledger"
	"trio-lite/trio"
)

// collector captures broadcast envelopes per account.
type collector struct {
	mu       sync.Mutex
	messages map[uint64][][]byte
}

func newCollector() *collector {
	return &collector{messages: make(map[uint64][][]byte)}
}

func (c *collector) fn() BroadcastFn {
	return func(accountID uint64, data []byte) {
		c.mu.Lock()
		c.messages[accountID] = append(c.messages[accountID], data)
		c.mu.Unlock()
	}
}

func (c *collector) contains(accountID uint64, needle string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, msg := range c.messages[accountID] {
		if bytes.Contains(msg, []byte(needle)) {
			return true
		}
	}
	return false
}

func waitUntil(t *testing.T, timeout time.Duration, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(timeout)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatal("condition not reached in time")
}

func testRoomConfig(humans, computers int) Config {
	game := trio.DefaultConfig()
	game.TurnTimeout = 0
	game.TurnWarning = 0
	game.PointFreeze = 0
	game.PenaltyFreeze = 0
	game.EndPause = 0
	game.DealDelay = 0
	game.Seed = 11
	return Config{HumanSeats: humans, ComputerAgents: computers, Game: game}
}

func TestJoinPressLeave(t *testing.T) {
	col := newCollector()
	r, err := New("room_t", testRoomConfig(2, 0), col.fn(), nil)
	if err != nil {
		t.Fatalf("new room: %v", err)
	}
	defer r.Stop()

	res := r.SubmitEvent(Event{Type: EventJoin, AccountID: 100})
	if res.Err != nil || res.AgentID != 0 {
		t.Fatalf("first join = %+v", res)
	}
	// Rejoining keeps the seat.
	if res := r.SubmitEvent(Event{Type: EventJoin, AccountID: 100}); res.AgentID != 0 {
		t.Fatalf("rejoin = %+v", res)
	}
	if res := r.SubmitEvent(Event{Type: EventJoin, AccountID: 200}); res.AgentID != 1 {
		t.Fatalf("second join = %+v", res)
	}
	// Seats are full; the third account spectates.
	if res := r.SubmitEvent(Event{Type: EventJoin, AccountID: 300}); res.AgentID != -1 || res.Err != nil {
		t.Fatalf("spectator join = %+v", res)
	}
	if r.HasFreeSeat() {
		t.Fatal("expected no free seat")
	}

	// Everyone got a snapshot on join.
	waitUntil(t, time.Second, func() bool {
		return col.contains(100, `"type":"snapshot"`) && col.contains(300, `"type":"snapshot"`)
	})

	if res := r.SubmitEvent(Event{Type: EventPress, AccountID: 300, Slot: 0}); !errors.Is(res.Err, ErrNotSeated) {
		t.Fatalf("spectator press err = %v", res.Err)
	}
	if res := r.SubmitEvent(Event{Type: EventPress, AccountID: 100, Slot: 0}); res.Err != nil {
		t.Fatalf("press: %v", res.Err)
	}
	// The token placement reaches the spectator too.
	waitUntil(t, 2*time.Second, func() bool {
		return col.contains(300, `"type":"token"`)
	})

	if res := r.SubmitEvent(Event{Type: EventLeave, AccountID: 200}); res.AgentID != 1 {
		t.Fatalf("leave = %+v", res)
	}
	if res := r.SubmitEvent(Event{Type: EventJoin, AccountID: 300}); res.AgentID != 1 {
		t.Fatalf("join after leave = %+v", res)
	}
}

func TestSubmitEventAfterStop(t *testing.T) {
	col := newCollector()
	r, err := New("room_t", testRoomConfig(1, 0), col.fn(), nil)
	if err != nil {
		t.Fatalf("new room: %v", err)
	}
	r.Stop()
	if res := r.SubmitEvent(Event{Type: EventJoin, AccountID: 1}); !errors.Is(res.Err, ErrRoomClosed) {
		t.Fatalf("expected ErrRoomClosed, got %v", res.Err)
	}
}

func TestRoomRecordsMatch(t *testing.T) {
	store, err := ledger.NewSQLiteService(":memory:")
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	defer store.Close()

	col := newCollector()
	cfg := testRoomConfig(1, 1)
	cfg.Game.TurnTimeout = 400 * time.Millisecond
	cfg.Game.TurnWarning = 100 * time.Millisecond
	r, err := New("room_t", cfg, col.fn(), store)
	if err != nil {
		t.Fatalf("new room: %v", err)
	}
	if res := r.SubmitEvent(Event{Type: EventJoin, AccountID: 100}); res.Err != nil {
		t.Fatalf("join: %v", res.Err)
	}
	// Let the computer agent play a bit, then cut the match short.
	time.Sleep(300 * time.Millisecond)
	r.Stop()

	waitUntil(t, 5*time.Second, func() bool {
		items, err := store.ListRecent(context.Background(), 5)
		return err == nil && len(items) == 1
	})
	items, err := store.ListRecent(context.Background(), 5)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if items[0].MatchID != r.MatchID || items[0].RoomID != "room_t" {
		t.Fatalf("summary = %+v", items[0])
	}
	tape, err := store.GetTape(context.Background(), r.MatchID)
	if err != nil {
		t.Fatalf("tape: %v", err)
	}
	// The initial deal alone produces card events.
	if len(tape.Events) == 0 {
		t.Fatal("expected tape events")
	}
}

func TestLobbyQuickStart(t *testing.T) {
	col := newCollector()
	l := NewLobby(testRoomConfig(1, 0), col.fn(), nil)
	defer l.StopAll()

	r1, res1, err := l.QuickStart(100)
	if err != nil || res1.AgentID != 0 {
		t.Fatalf("quick start 1 = %+v, %v", res1, err)
	}
	// First room is full; the second player gets a new one.
	r2, res2, err := l.QuickStart(200)
	if err != nil || res2.AgentID != 0 {
		t.Fatalf("quick start 2 = %+v, %v", res2, err)
	}
	if r1.ID == r2.ID {
		t.Fatal("expected distinct rooms")
	}
	if got, ok := l.Get(r1.ID); !ok || got != r1 {
		t.Fatalf("get = %v, %v", got, ok)
	}

	// Finished rooms are swept on the next pick.
	r1.Stop()
	if _, res3, err := l.QuickStart(300); err != nil || res3.AgentID != 0 {
		t.Fatalf("quick start 3 = %+v, %v", res3, err)
	}
	if _, ok := l.Get(r1.ID); ok {
		t.Fatal("expected swept room")
	}
}
