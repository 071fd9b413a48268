package trio

import (
	"math/rand"
	"sync"
	"sync/atomic"
	"time"

	"trio-lite/card"
)

// InputSource drives one computer agent. It must feed selections only
// through Game.SubmitSelection and return when done closes.
type InputSource func(g *Game, agentID int, done <-chan struct{})

type Option func(*Game)

func WithOracle(o Oracle) Option {
	return func(g *Game) { g.oracle = o }
}

func WithSink(s Sink) Option {
	return func(g *Game) { g.sink = s }
}

// WithInputSource installs the producer spawned for every computer agent.
func WithInputSource(src InputSource) Option {
	return func(g *Game) { g.input = src }
}

// Game 把棋盘, agent 与协调者装配成一局对局
type Game struct {
	cfg    Config
	board  *Board
	agents []*Agent
	coord  *Coordinator
	oracle Oracle
	sink   Sink
	input  InputSource

	running atomic.Bool
	wg      sync.WaitGroup
}

func NewGame(cfg Config, opts ...Option) (*Game, error) {
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	g := &Game{
		cfg:    cfg,
		oracle: FeatureOracle{},
		sink:   NopSink{},
	}
	for _, opt := range opts {
		opt(g)
	}
	seed := cfg.Seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	rng := rand.New(rand.NewSource(seed))
	g.coord = newCoordinator(cfg, nil, g.oracle, g.sink, rng)
	g.board = NewBoard(cfg.Agents(), cfg.GridSize, cfg.DeckSize, cfg.DealDelay, g.sink, rng)
	g.coord.board = g.board
	for i := 0; i < cfg.Agents(); i++ {
		human := i < cfg.HumanAgents
		g.agents = append(g.agents, newAgent(i, human, cfg, g.board, g.coord, g.sink, g.coord.done))
	}
	g.coord.agents = g.agents
	return g, nil
}

// Run blocks until the match is over and every agent goroutine has
// unwound. Callers wanting it in the background run it in a goroutine.
func (g *Game) Run() error {
	if !g.running.CompareAndSwap(false, true) {
		return ErrGameRunning
	}
	for _, ag := range g.agents {
		g.wg.Add(1)
		go ag.run(&g.wg)
	}
	if g.input != nil {
		for _, ag := range g.agents {
			if ag.Human() {
				continue
			}
			g.wg.Add(1)
			go func(id int) {
				defer g.wg.Done()
				g.input(g, id, g.coord.done)
			}(ag.ID)
		}
	}
	g.coord.run()
	g.wg.Wait()
	return nil
}

// Terminate 外部终止, 幂等
func (g *Game) Terminate() {
	g.coord.Terminate()
}

// Done closes when the match is terminating.
func (g *Game) Done() <-chan struct{} {
	return g.coord.done
}

// SubmitSelection 投递 agent 的一次格子选择
func (g *Game) SubmitSelection(agentID, slot int) error {
	if agentID < 0 || agentID >= len(g.agents) {
		return ErrUnknownAgent
	}
	if slot < 0 || slot >= g.cfg.GridSize {
		return ErrSlotRange
	}
	select {
	case <-g.coord.done:
		return ErrGameEnded
	default:
	}
	g.agents[agentID].SubmitSelection(slot)
	return nil
}

func (g *Game) Config() Config { return g.cfg }

func (g *Game) Phase() Phase { return g.coord.Phase() }

func (g *Game) Score(agentID int) (int, error) {
	if agentID < 0 || agentID >= len(g.agents) {
		return 0, ErrUnknownAgent
	}
	return g.agents[agentID].Score(), nil
}

func (g *Game) Winners() []int {
	return g.coord.Winners()
}

// HintSlots 返回当前场面上的合法组合所占格子, 最多 limit 组
func (g *Game) HintSlots(limit int) [][]int {
	slots := g.board.SlotCards()
	combos := g.oracle.FindCombinations(slots, limit)
	out := make([][]int, 0, len(combos))
	for _, combo := range combos {
		var set []int
		for _, cd := range combo {
			for slot, sc := range slots {
				if sc == cd {
					set = append(set, slot)
					break
				}
			}
		}
		if len(set) == len(combo) {
			out = append(out, set)
		}
	}
	return out
}

// Snapshot 跨线程一致性由各自的锁保证, 整体为弱一致快照
func (g *Game) Snapshot() Snapshot {
	slots := g.board.SlotCards()
	snap := Snapshot{
		Phase:     g.coord.Phase(),
		Slots:     slots,
		DeckCount: g.deckCount(),
		Winners:   g.coord.Winners(),
	}
	for _, ag := range g.agents {
		snap.Agents = append(snap.Agents, AgentSnapshot{
			ID:           ag.ID,
			Human:        ag.Human(),
			Score:        ag.Score(),
			PlacedTokens: ag.PlacedTokens(),
			TokenSlots:   g.board.TokenedSlots(ag.ID),
		})
	}
	g.coord.timeMu.Lock()
	if g.cfg.TurnTimeout > 0 {
		snap.CountdownMode = true
		if !g.coord.reshuffleAt.IsZero() {
			left := time.Until(g.coord.reshuffleAt)
			if left < 0 {
				left = 0
			}
			snap.CountdownLeft = left
			snap.Warn = left <= g.cfg.TurnWarning
		}
	} else if !g.coord.startedAt.IsZero() {
		snap.Elapsed = time.Since(g.coord.startedAt)
	}
	g.coord.timeMu.Unlock()
	return snap
}

func (g *Game) deckCount() int {
	return int(g.coord.deckCount.Load())
}

// CardAt 供界面层取某格的牌
func (g *Game) CardAt(slot int) (card.Card, bool) {
	return g.board.CardAt(slot)
}
