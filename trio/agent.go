package trio

import (
	"log"
	"sync"
	"sync/atomic"
	"time"
)

// Agent 独立 goroutine, 消费选择队列并在集齐 FeatureSize 个令牌后
// 申报组合, 然后阻塞等待裁决
type Agent struct {
	ID    int
	human bool

	cfg   Config
	board *Board
	coord *Coordinator
	sink  Sink

	// selections 有界无阻塞: 满了直接丢弃
	selections chan int
	// verdicts 容量 1, 一次申报至多一份裁决
	verdicts chan Verdict
	done     <-chan struct{}

	// placedTokens 由 agent 自身与协调者共同修改
	placedTokens atomic.Int32
	score        atomic.Int32
}

func newAgent(id int, human bool, cfg Config, board *Board, coord *Coordinator, sink Sink, done <-chan struct{}) *Agent {
	return &Agent{
		ID:         id,
		human:      human,
		cfg:        cfg,
		board:      board,
		coord:      coord,
		sink:       sink,
		selections: make(chan int, cfg.FeatureSize),
		verdicts:   make(chan Verdict, 1),
		done:       done,
	}
}

func (a *Agent) Human() bool { return a.human }

func (a *Agent) Score() int { return int(a.score.Load()) }

// PlacedTokens 当前已压令牌数
func (a *Agent) PlacedTokens() int { return int(a.placedTokens.Load()) }

// SubmitSelection 投递一次格子选择. 队列满或格子为空时静默丢弃
func (a *Agent) SubmitSelection(slot int) {
	select {
	case <-a.done:
		return
	default:
	}
	if !a.board.SlotOccupied(slot) {
		return
	}
	select {
	case a.selections <- slot:
	default:
		// 队列已满, 丢弃
	}
}

func (a *Agent) run(wg *sync.WaitGroup) {
	defer wg.Done()
	log.Printf("[Agent %d] loop started (human=%v)", a.ID, a.human)
	for {
		select {
		case <-a.done:
			log.Printf("[Agent %d] loop stopped", a.ID)
			return
		case slot := <-a.selections:
			a.apply(slot)
		}
	}
}

// apply 处理一次选择: 已有令牌则撤回, 否则压上;
// 压满 FeatureSize 个时申报并挂起
func (a *Agent) apply(slot int) {
	if a.board.HasToken(a.ID, slot) {
		if a.board.RemoveToken(a.ID, slot) {
			a.placedTokens.Add(-1)
		}
		return
	}
	if int(a.placedTokens.Load()) >= a.cfg.FeatureSize {
		// 令牌已压满且在途, 丢弃后续选择
		return
	}
	if !a.board.PlaceToken(a.ID, slot) {
		// 格子在选择投递后被清空, 静默放弃
		return
	}
	if int(a.placedTokens.Add(1)) == a.cfg.FeatureSize {
		a.claim()
	}
}

// claim 注册申报并阻塞到协调者送回裁决
func (a *Agent) claim() {
	a.coord.registerClaim(a.ID)
	var v Verdict
	select {
	case v = <-a.verdicts:
	case <-a.done:
		return
	}
	switch v {
	case VerdictAccepted:
		a.freeze(a.cfg.PointFreeze)
	case VerdictRejected:
		a.freeze(a.cfg.PenaltyFreeze)
	case VerdictVoided:
		// 申报已失效, 立即恢复
	}
}

// freeze 挂起 d 时长, 终止时提前醒来
func (a *Agent) freeze(d time.Duration) {
	if d <= 0 {
		return
	}
	a.sink.FreezeSet(a.ID, d)
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-t.C:
	case <-a.done:
	}
	a.sink.FreezeSet(a.ID, 0)
}

// point 由协调者调用, 申报成功记分
func (a *Agent) point() {
	a.sink.ScoreChanged(a.ID, int(a.score.Add(1)))
}

// deliverVerdict 由协调者调用. verdicts 缓冲 1, 不会阻塞
func (a *Agent) deliverVerdict(v Verdict) {
	select {
	case a.verdicts <- v:
	default:
		log.Printf("[Agent %d] dropped verdict %v", a.ID, v)
	}
}

// forceReleaseTokens 由协调者在清空令牌后归零计数
func (a *Agent) forceReleaseTokens() {
	a.placedTokens.Store(0)
}
