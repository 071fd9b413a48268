package ai

import (
	"log"
	"math/rand"
	"sync"
	"time"

	"trio-lite/trio"
)

// Instance represents an active computer agent driven by a brain.
type Instance struct {
	AgentID    int
	Brain      SelectorBrain
	ThinkDelay time.Duration
}

// Manager owns the brains for the computer agents of one match and
// exposes an input source that feeds their presses into the game.
type Manager struct {
	mu        sync.RWMutex
	instances map[int]*Instance
	rng       *rand.Rand
}

func NewManager(seed int64) *Manager {
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	return &Manager{
		instances: make(map[int]*Instance),
		rng:       rand.New(rand.NewSource(seed)),
	}
}

// Spawn registers a brain for an agent. Unregistered computer agents get
// a SmartBrain on first use.
func (m *Manager) Spawn(agentID int, brain SelectorBrain) *Instance {
	m.mu.Lock()
	defer m.mu.Unlock()
	// Think delay with jitter so multi-agent pacing feels natural.
	delay := 20*time.Millisecond + time.Duration(m.rng.Intn(30))*time.Millisecond
	inst := &Instance{
		AgentID:    agentID,
		Brain:      brain,
		ThinkDelay: delay,
	}
	m.instances[agentID] = inst
	log.Printf("[AI] spawned %s brain for agent %d (delay=%v)", brain.Name(), agentID, delay)
	return inst
}

func (m *Manager) instance(agentID int) *Instance {
	m.mu.RLock()
	inst := m.instances[agentID]
	m.mu.RUnlock()
	if inst != nil {
		return inst
	}
	m.mu.Lock()
	seed := m.rng.Int63()
	m.mu.Unlock()
	return m.Spawn(agentID, NewSmartBrain(seed))
}

// Source adapts the manager into a trio.InputSource. The producer loop
// only talks to the game through SubmitSelection.
func (m *Manager) Source() trio.InputSource {
	return func(g *trio.Game, agentID int, done <-chan struct{}) {
		inst := m.instance(agentID)
		log.Printf("[AI] producer started for agent %d", agentID)
		t := time.NewTimer(inst.ThinkDelay)
		defer t.Stop()
		for {
			select {
			case <-done:
				log.Printf("[AI] producer stopped for agent %d", agentID)
				return
			case <-t.C:
			}
			view := buildView(g, agentID)
			for _, slot := range inst.Brain.Decide(view) {
				if err := g.SubmitSelection(agentID, slot); err != nil {
					return
				}
			}
			t.Reset(inst.ThinkDelay)
		}
	}
}

// buildView projects the game snapshot into what the brain may see.
func buildView(g *trio.Game, agentID int) View {
	snap := g.Snapshot()
	view := View{
		Slots: snap.Slots,
		Hints: g.HintSlots(2),
	}
	for _, ag := range snap.Agents {
		if ag.ID == agentID {
			view.MySlots = ag.TokenSlots
			break
		}
	}
	return view
}
