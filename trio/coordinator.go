package trio

import (
	"log"
	"math/rand"
	"sync"
	"sync/atomic"
	"time"

	"trio-lite/card"
)

// minTickSleep 临近重洗时的细粒度轮询间隔
const minTickSleep = 10 * time.Millisecond

// Coordinator 单 goroutine 驱动回合: 补牌, 计时, 按 FIFO 消化申报, 重洗.
// claimMu 是唯一的公平闸门, 锁等待队列保证申报次序
type Coordinator struct {
	cfg    Config
	board  *Board
	agents []*Agent
	oracle Oracle
	sink   Sink
	rng    *rand.Rand

	deck card.CardList

	claimMu sync.Mutex
	claims  []int

	done     chan struct{}
	stopOnce sync.Once

	terminated atomic.Bool
	phase      atomic.Int32
	deckCount  atomic.Int32

	// timeMu 保护计时与结果字段, 供快照跨线程读取
	timeMu      sync.Mutex
	reshuffleAt time.Time
	startedAt   time.Time
	winners     []int
}

func newCoordinator(cfg Config, board *Board, oracle Oracle, sink Sink, rng *rand.Rand) *Coordinator {
	deck := card.Deck(cfg.DeckSize)
	deck.Shuffle(rng)
	c := &Coordinator{
		cfg:    cfg,
		board:  board,
		oracle: oracle,
		sink:   sink,
		rng:    rng,
		deck:   deck,
		done:   make(chan struct{}),
	}
	c.deckCount.Store(int32(deck.Count()))
	return c
}

// registerClaim 追加一次申报. 竞争同一时刻到达的申报由 claimMu 排序
func (c *Coordinator) registerClaim(agent int) {
	c.claimMu.Lock()
	c.claims = append(c.claims, agent)
	c.claimMu.Unlock()
}

func (c *Coordinator) peekClaim() (int, bool) {
	c.claimMu.Lock()
	defer c.claimMu.Unlock()
	if len(c.claims) == 0 {
		return 0, false
	}
	return c.claims[0], true
}

func (c *Coordinator) popClaim() {
	c.claimMu.Lock()
	if len(c.claims) > 0 {
		c.claims = c.claims[1:]
	}
	c.claimMu.Unlock()
}

func (c *Coordinator) pendingClaims() int {
	c.claimMu.Lock()
	defer c.claimMu.Unlock()
	return len(c.claims)
}

// run 回合主循环, 由 Game.Run 在协调者 goroutine 内调用
func (c *Coordinator) run() {
	c.phase.Store(int32(PhaseRunning))
	log.Printf("[Coordinator] match started (agents=%d deck=%d)", len(c.agents), c.deck.Count())
	for !c.shouldFinish() {
		c.refillBoard()
		if c.terminated.Load() {
			break
		}
		c.timerLoop()
		if c.terminated.Load() {
			break
		}
		c.reshuffle()
	}
	c.announceWinners()
	c.pause(c.cfg.EndPause)
	c.Terminate()
	c.phase.Store(int32(PhaseEnded))
	log.Printf("[Coordinator] match over")
}

// shouldFinish 牌库中已无合法组合时对局结束 (场面单独在补牌后检查)
func (c *Coordinator) shouldFinish() bool {
	if c.terminated.Load() {
		return true
	}
	return len(c.oracle.FindCombinations(c.deck, 1)) == 0
}

// refillBoard 从牌库随机抽牌填满空格. 牌库抽空后若场面也无组合, 终局
func (c *Coordinator) refillBoard() {
	for c.deck.Count() > 0 {
		slot, ok := c.board.FindEmptySlot()
		if !ok {
			break
		}
		drawn := c.deck.RemoveAt(c.rng.Intn(c.deck.Count()))
		c.deckCount.Store(int32(c.deck.Count()))
		if err := c.board.PlaceCard(drawn, slot); err != nil {
			log.Printf("[Coordinator] place %v at %d: %v", drawn, slot, err)
		}
	}
	if c.deck.Count() == 0 {
		if len(c.oracle.FindCombinations(c.board.Cards(), 1)) == 0 {
			c.terminated.Store(true)
		}
	}
}

// timerLoop 一轮: 睡一小段, 刷新倒计时, 消化队首申报, 直到超时或终止
func (c *Coordinator) timerLoop() {
	c.resetDeadline()
	for !c.terminated.Load() && c.beforeDeadline() {
		c.sleepStep()
		c.updateTimerDisplay(false)
		c.serviceClaim()
	}
}

func (c *Coordinator) beforeDeadline() bool {
	if c.cfg.TurnTimeout <= 0 {
		return true
	}
	c.timeMu.Lock()
	defer c.timeMu.Unlock()
	return time.Now().Before(c.reshuffleAt)
}

// sleepStep 常规按 DealDelay 粒度休眠, 进入警告窗口后改用细粒度
func (c *Coordinator) sleepStep() {
	d := c.cfg.DealDelay
	if c.cfg.TurnTimeout > 0 {
		c.timeMu.Lock()
		warning := time.Until(c.reshuffleAt) <= c.cfg.TurnWarning
		c.timeMu.Unlock()
		if warning {
			d = minTickSleep
		}
	}
	if d < minTickSleep {
		d = minTickSleep
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-t.C:
	case <-c.done:
	}
}

func (c *Coordinator) resetDeadline() {
	c.updateTimerDisplay(true)
}

func (c *Coordinator) updateTimerDisplay(reset bool) {
	c.timeMu.Lock()
	if reset {
		c.startedAt = time.Now()
		if c.cfg.TurnTimeout > 0 {
			c.reshuffleAt = time.Now().Add(c.cfg.TurnTimeout)
		} else {
			c.reshuffleAt = time.Time{}
		}
	}
	if c.cfg.TurnTimeout > 0 {
		left := time.Until(c.reshuffleAt)
		if left < 0 {
			left = 0
		}
		c.timeMu.Unlock()
		c.sink.CountdownSet(left, left <= c.cfg.TurnWarning)
		return
	}
	elapsed := time.Since(c.startedAt)
	c.timeMu.Unlock()
	c.sink.ElapsedSet(elapsed)
}

// serviceClaim 消化队首申报: 先验证令牌仍齐全, 再请示 oracle
func (c *Coordinator) serviceClaim() {
	id, ok := c.peekClaim()
	if !ok {
		return
	}
	ag := c.agents[id]

	// 排队期间令牌被旁观剥夺或撤回, 申报作废
	if int(ag.placedTokens.Load()) != c.cfg.FeatureSize {
		c.voidClaim(ag)
		return
	}
	cards := c.board.TokenedCards(id)
	if len(cards) != c.cfg.FeatureSize {
		c.voidClaim(ag)
		return
	}

	if !c.oracle.IsValidCombination(cards) {
		// 非法申报: 令牌保留在场上, agent 受罚
		c.popClaim()
		log.Printf("[Coordinator] agent %d claim rejected: %v", id, cards)
		c.sink.ClaimResolved(id, VerdictRejected)
		ag.deliverVerdict(VerdictRejected)
		return
	}

	c.removeClaimedCards(cards)
	c.refillBoard()
	c.resetDeadline()
	c.popClaim()
	ag.point()
	log.Printf("[Coordinator] agent %d claim accepted, score=%d", id, ag.Score())
	c.sink.ClaimResolved(id, VerdictAccepted)
	ag.deliverVerdict(VerdictAccepted)
}

func (c *Coordinator) voidClaim(ag *Agent) {
	c.board.ClearAgentTokens(ag.ID)
	ag.forceReleaseTokens()
	c.popClaim()
	log.Printf("[Coordinator] agent %d claim voided", ag.ID)
	c.sink.ClaimResolved(ag.ID, VerdictVoided)
	ag.deliverVerdict(VerdictVoided)
}

// removeClaimedCards 撤掉申报的三张牌, 旁观者压在其上的令牌一并剥夺
func (c *Coordinator) removeClaimedCards(cards []card.Card) {
	for _, cd := range cards {
		slot, ok := c.board.SlotOf(cd)
		if !ok {
			continue
		}
		affected, err := c.board.RemoveCard(slot)
		if err != nil {
			log.Printf("[Coordinator] remove slot %d: %v", slot, err)
			continue
		}
		for _, aid := range affected {
			c.agents[aid].placedTokens.Add(-1)
		}
	}
}

// reshuffle 清空令牌矩阵并把全部场牌收回牌库
func (c *Coordinator) reshuffle() {
	log.Printf("[Coordinator] reshuffling board")
	c.board.ClearAllTokens()
	for _, ag := range c.agents {
		ag.forceReleaseTokens()
	}
	for slot := 0; slot < c.board.GridSize(); slot++ {
		cd, ok := c.board.CardAt(slot)
		if !ok {
			continue
		}
		if _, err := c.board.RemoveCard(slot); err == nil {
			c.deck.Add(cd)
		}
	}
	c.deckCount.Store(int32(c.deck.Count()))
}

// announceWinners 最高分 (可并列) 获胜
func (c *Coordinator) announceWinners() {
	best := -1
	for _, ag := range c.agents {
		if s := ag.Score(); s > best {
			best = s
		}
	}
	var winners []int
	for _, ag := range c.agents {
		if ag.Score() == best {
			winners = append(winners, ag.ID)
		}
	}
	c.timeMu.Lock()
	c.winners = winners
	c.timeMu.Unlock()
	log.Printf("[Coordinator] winners: %v (score=%d)", winners, best)
	c.sink.WinnersAnnounced(winners)
}

func (c *Coordinator) pause(d time.Duration) {
	if d <= 0 {
		return
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-t.C:
	case <-c.done:
	}
}

// Terminate 置终止标志并关闭 done, 唤醒所有挂起的 agent
func (c *Coordinator) Terminate() {
	c.terminated.Store(true)
	c.stopOnce.Do(func() {
		close(c.done)
	})
}

func (c *Coordinator) Winners() []int {
	c.timeMu.Lock()
	defer c.timeMu.Unlock()
	out := make([]int, len(c.winners))
	copy(out, c.winners)
	return out
}

func (c *Coordinator) Phase() Phase {
	return Phase(c.phase.Load())
}
