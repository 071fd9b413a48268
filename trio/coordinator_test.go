package trio

import (
	"testing"
	"time"

	"trio-lite/card"
)

func testConfig() Config {
	cfg := DefaultConfig()
	cfg.HumanAgents = 1
	cfg.ComputerAgents = 2
	cfg.TurnTimeout = 0
	cfg.TurnWarning = 0
	cfg.PointFreeze = 0
	cfg.PenaltyFreeze = 0
	cfg.EndPause = 0
	cfg.DealDelay = 0
	cfg.Seed = 7
	return cfg
}

func newTestGame(t *testing.T, cfg Config) *Game {
	t.Helper()
	g, err := NewGame(cfg)
	if err != nil {
		t.Fatalf("NewGame: %v", err)
	}
	return g
}

// 直接压令牌并把计数对齐, 模拟 agent 走完 apply 流程后的状态
func armClaim(t *testing.T, g *Game, agent int, slots []int) {
	t.Helper()
	for _, s := range slots {
		if !g.board.PlaceToken(agent, s) {
			t.Fatalf("PlaceToken(%d, %d) failed", agent, s)
		}
	}
	g.agents[agent].placedTokens.Store(int32(len(slots)))
}

func comboSlots(t *testing.T, g *Game) []int {
	t.Helper()
	hints := g.HintSlots(1)
	if len(hints) == 0 {
		t.Fatal("no combination on board")
	}
	return hints[0]
}

// 找三个不成组合的占用格
func nonComboSlots(t *testing.T, g *Game) []int {
	t.Helper()
	slots := g.board.SlotCards()
	var occupied []int
	for s, c := range slots {
		if c.Valid() {
			occupied = append(occupied, s)
		}
	}
	for i := 0; i < len(occupied); i++ {
		for j := i + 1; j < len(occupied); j++ {
			for k := j + 1; k < len(occupied); k++ {
				cards := []card.Card{slots[occupied[i]], slots[occupied[j]], slots[occupied[k]]}
				if !card.IsCombo(cards) {
					return []int{occupied[i], occupied[j], occupied[k]}
				}
			}
		}
	}
	t.Fatal("every triple on board is a combination")
	return nil
}

func TestRefillBoardPartition(t *testing.T) {
	g := newTestGame(t, testConfig())
	c := g.coord
	c.refillBoard()
	if got := g.board.CountCards(); got != g.cfg.GridSize {
		t.Fatalf("board cards = %d, want %d", got, g.cfg.GridSize)
	}
	// 场面 + 牌库始终划分整副牌
	if got := g.deckCount() + g.board.CountCards(); got != g.cfg.DeckSize {
		t.Fatalf("deck+board = %d, want %d", got, g.cfg.DeckSize)
	}
}

func TestServiceClaimAccepted(t *testing.T) {
	g := newTestGame(t, testConfig())
	c := g.coord
	c.refillBoard()

	slots := comboSlots(t, g)
	var cards []card.Card
	for _, s := range slots {
		cd, _ := g.board.CardAt(s)
		cards = append(cards, cd)
	}
	armClaim(t, g, 0, slots)
	c.registerClaim(0)
	c.serviceClaim()

	select {
	case v := <-g.agents[0].verdicts:
		if v != VerdictAccepted {
			t.Fatalf("verdict = %v, want Accepted", v)
		}
	default:
		t.Fatal("no verdict delivered")
	}
	if got := g.agents[0].Score(); got != 1 {
		t.Fatalf("score = %d, want 1", got)
	}
	for _, cd := range cards {
		if _, ok := g.board.SlotOf(cd); ok {
			t.Fatalf("claimed card %v still on board", cd)
		}
	}
	if got := g.agents[0].PlacedTokens(); got != 0 {
		t.Fatalf("placed tokens = %d, want 0", got)
	}
	// 成功申报后立即补牌
	if got := g.board.CountCards(); got != g.cfg.GridSize {
		t.Fatalf("board cards = %d after refill", got)
	}
	if got := g.deckCount() + g.board.CountCards(); got != g.cfg.DeckSize-g.cfg.FeatureSize {
		t.Fatalf("deck+board = %d, want %d", got, g.cfg.DeckSize-g.cfg.FeatureSize)
	}
}

// 非法申报只受罚, 令牌留在场上
func TestRejectedClaimKeepsTokens(t *testing.T) {
	g := newTestGame(t, testConfig())
	c := g.coord
	c.refillBoard()

	slots := nonComboSlots(t, g)
	armClaim(t, g, 1, slots)
	c.registerClaim(1)
	c.serviceClaim()

	select {
	case v := <-g.agents[1].verdicts:
		if v != VerdictRejected {
			t.Fatalf("verdict = %v, want Rejected", v)
		}
	default:
		t.Fatal("no verdict delivered")
	}
	for _, s := range slots {
		if !g.board.HasToken(1, s) {
			t.Fatalf("token on slot %d must survive rejection", s)
		}
	}
	if got := g.agents[1].PlacedTokens(); got != g.cfg.FeatureSize {
		t.Fatalf("placed tokens = %d, want %d", got, g.cfg.FeatureSize)
	}
	if got := g.agents[1].Score(); got != 0 {
		t.Fatalf("score = %d, want 0", got)
	}
}

func TestServiceClaimVoidedOnShortTokens(t *testing.T) {
	g := newTestGame(t, testConfig())
	c := g.coord
	c.refillBoard()

	slots := comboSlots(t, g)
	// 只压了两个令牌就排进队列 (竞态下可能出现)
	armClaim(t, g, 0, slots[:2])
	g.agents[0].placedTokens.Store(int32(g.cfg.FeatureSize))
	c.registerClaim(0)
	c.serviceClaim()

	select {
	case v := <-g.agents[0].verdicts:
		if v != VerdictVoided {
			t.Fatalf("verdict = %v, want Voided", v)
		}
	default:
		t.Fatal("no verdict delivered")
	}
	if got := g.agents[0].PlacedTokens(); got != 0 {
		t.Fatalf("placed tokens = %d, want 0", got)
	}
	if slots := g.board.TokenedSlots(0); len(slots) != 0 {
		t.Fatalf("voided claim must clear tokens, still holds %v", slots)
	}
}

func TestClaimsServicedFIFO(t *testing.T) {
	g := newTestGame(t, testConfig())
	c := g.coord
	c.refillBoard()

	// 三个注定作废的申报, 按 2, 0, 1 的次序注册
	order := []int{2, 0, 1}
	for _, id := range order {
		g.agents[id].placedTokens.Store(1)
		c.registerClaim(id)
	}
	for _, want := range order {
		c.serviceClaim()
		got := -1
		for id := range g.agents {
			select {
			case <-g.agents[id].verdicts:
				got = id
			default:
			}
		}
		if got != want {
			t.Fatalf("serviced agent %d, want %d", got, want)
		}
	}
	if n := c.pendingClaims(); n != 0 {
		t.Fatalf("pending claims = %d", n)
	}
}

// 申报成功会剥夺旁观者压在同一张牌上的令牌, 旁观者的在途申报随后作废
func TestBystanderTokensStripped(t *testing.T) {
	g := newTestGame(t, testConfig())
	c := g.coord
	c.refillBoard()

	slots := comboSlots(t, g)
	armClaim(t, g, 0, slots)
	if !g.board.PlaceToken(1, slots[0]) {
		t.Fatal("bystander token placement failed")
	}
	g.agents[1].placedTokens.Store(1)

	c.registerClaim(0)
	c.serviceClaim()

	if g.board.HasToken(1, slots[0]) {
		t.Fatal("bystander token must be stripped with the card")
	}
	if got := g.agents[1].PlacedTokens(); got != 0 {
		t.Fatalf("bystander placed tokens = %d, want 0", got)
	}

	// 旁观者已在队列中的申报在下一次消化时作废
	g.agents[1].placedTokens.Store(int32(g.cfg.FeatureSize - 1))
	c.registerClaim(1)
	c.serviceClaim()
	select {
	case v := <-g.agents[1].verdicts:
		if v != VerdictVoided {
			t.Fatalf("verdict = %v, want Voided", v)
		}
	default:
		t.Fatal("no verdict delivered")
	}
}

func TestReshuffleReturnsCardsToDeck(t *testing.T) {
	g := newTestGame(t, testConfig())
	c := g.coord
	c.refillBoard()
	armClaim(t, g, 0, comboSlots(t, g)[:2])

	c.reshuffle()
	if got := g.board.CountCards(); got != 0 {
		t.Fatalf("board cards = %d after reshuffle", got)
	}
	if got := g.deckCount(); got != g.cfg.DeckSize {
		t.Fatalf("deck = %d after reshuffle, want %d", got, g.cfg.DeckSize)
	}
	if got := g.agents[0].PlacedTokens(); got != 0 {
		t.Fatalf("placed tokens = %d after reshuffle", got)
	}
	for id := range g.agents {
		if slots := g.board.TokenedSlots(id); len(slots) != 0 {
			t.Fatalf("agent %d tokens survived reshuffle: %v", id, slots)
		}
	}
}

func TestShouldFinishOnComboFreeDeck(t *testing.T) {
	g := newTestGame(t, testConfig())
	c := g.coord
	if c.shouldFinish() {
		t.Fatal("fresh full deck must not finish")
	}
	// 两张牌不可能成组
	c.deck = card.CardList{card.Card(0), card.Card(1)}
	if !c.shouldFinish() {
		t.Fatal("combo-free deck must finish")
	}
	c.deck = card.Deck(g.cfg.DeckSize)
	c.terminated.Store(true)
	if !c.shouldFinish() {
		t.Fatal("terminated match must finish")
	}
}

func TestTimerDisplayModes(t *testing.T) {
	rec := &recordingSink{}
	cfg := testConfig()
	cfg.TurnTimeout = time.Minute
	g, err := NewGame(cfg, WithSink(rec))
	if err != nil {
		t.Fatalf("NewGame: %v", err)
	}
	g.coord.updateTimerDisplay(true)
	if rec.countdowns() == 0 {
		t.Fatal("countdown mode must emit CountdownSet")
	}

	cfg.TurnTimeout = 0
	g2, err := NewGame(cfg, WithSink(rec))
	if err != nil {
		t.Fatalf("NewGame: %v", err)
	}
	g2.coord.updateTimerDisplay(true)
	if rec.elapseds() == 0 {
		t.Fatal("elapsed mode must emit ElapsedSet")
	}
}
