package replay

import (
	"fmt"
	"strings"
	"time"

	"trio-lite/card"
	"trio-lite/trio"
)

const (
	tapeVersion    = 1
	defaultMatchID = "replay_local"
	defaultSeed    = 1

	settleTimeout = 5 * time.Second
	pollStep      = time.Millisecond
)

type normalizedSpec struct {
	grid  int
	deck  int
	seed  int64
	steps []StepSpec
}

func normalizeSpec(spec ScenarioSpec) (*normalizedSpec, error) {
	ns := &normalizedSpec{
		grid:  spec.GridSize,
		deck:  spec.DeckSize,
		seed:  defaultSeed,
		steps: spec.Steps,
	}
	if ns.grid == 0 {
		ns.grid = 12
	}
	if ns.deck == 0 {
		ns.deck = card.FullDeckSize
	}
	if spec.RNG != nil && spec.RNG.Seed != 0 {
		ns.seed = spec.RNG.Seed
	}
	if len(ns.steps) == 0 {
		return nil, &StepError{StepIndex: -1, Reason: "empty_script", Message: "scenario has no steps"}
	}
	for i, step := range ns.steps {
		switch step.Type {
		case StepTypePress:
			if step.Slot < 0 || step.Slot >= ns.grid {
				return nil, &StepError{StepIndex: i, Reason: "slot_range", Message: fmt.Sprintf("slot %d outside grid of %d", step.Slot, ns.grid)}
			}
		case StepTypeHint:
		default:
			return nil, &StepError{StepIndex: i, Reason: "unknown_step", Message: fmt.Sprintf("step type %q", step.Type)}
		}
		switch step.Expect {
		case "", ExpectAccepted, ExpectRejected:
		default:
			return nil, &StepError{StepIndex: i, Reason: "unknown_expect", Message: fmt.Sprintf("expect %q", step.Expect)}
		}
	}
	return ns, nil
}

// GenerateMatchTape 以固定种子跑一局单 agent 剧本, 产出确定性的事件磁带.
// 同一份 spec 的两次生成字节级一致
func GenerateMatchTape(spec ScenarioSpec) (*MatchTape, error) {
	ns, err := normalizeSpec(spec)
	if err != nil {
		return nil, err
	}

	cfg := trio.DefaultConfig()
	cfg.HumanAgents = 1
	cfg.ComputerAgents = 0
	cfg.GridSize = ns.grid
	cfg.DeckSize = ns.deck
	cfg.TurnTimeout = 0 // 累计计时模式, 不触发重洗
	cfg.TurnWarning = 0
	cfg.PointFreeze = 0
	cfg.PenaltyFreeze = 0
	cfg.EndPause = 0
	cfg.DealDelay = 0
	cfg.Seed = ns.seed

	rec := newRecorder()
	g, err := trio.NewGame(cfg, trio.WithSink(rec))
	if err != nil {
		return nil, &StepError{StepIndex: -1, Reason: "engine_init_failed", Message: err.Error()}
	}

	finished := make(chan struct{})
	go func() {
		g.Run()
		close(finished)
	}()
	if err := waitInitialDeal(g, ns); err != nil {
		g.Terminate()
		<-finished
		return nil, err
	}

	tokens := make(map[int]bool)
	runErr := runScript(g, rec, ns, tokens)
	g.Terminate()
	select {
	case <-finished:
	case <-time.After(settleTimeout):
		return nil, &StepError{StepIndex: -1, Reason: "shutdown_stuck", Message: "engine did not stop"}
	}
	if runErr != nil {
		return nil, runErr
	}

	return &MatchTape{
		TapeVersion: tapeVersion,
		MatchID:     defaultMatchID,
		Seed:        ns.seed,
		Events:      rec.tape(),
	}, nil
}

func runScript(g *trio.Game, rec *recorder, ns *normalizedSpec, tokens map[int]bool) error {
	for i, step := range ns.steps {
		presses, err := resolveStep(g, i, step, ns)
		if err != nil {
			return err
		}
		for _, slot := range presses {
			if err := press(g, rec, tokens, i, slot, step.Expect); err != nil {
				return err
			}
		}
	}
	return nil
}

func resolveStep(g *trio.Game, idx int, step StepSpec, ns *normalizedSpec) ([]int, error) {
	if step.Type == StepTypePress {
		return []int{step.Slot}, nil
	}
	hints := g.HintSlots(1)
	if len(hints) == 0 {
		return nil, &StepError{StepIndex: idx, Reason: "no_combination", Message: "board holds no valid combination"}
	}
	return hints[0], nil
}

// press 投递一次按格并等待其可观察的效果落带
func press(g *trio.Game, rec *recorder, tokens map[int]bool, idx, slot int, expect string) error {
	if cd, ok := g.CardAt(slot); !ok || !cd.Valid() {
		return &StepError{StepIndex: idx, Reason: "slot_empty", Message: fmt.Sprintf("slot %d holds no card", slot)}
	}
	if len(tokens) == g.Config().FeatureSize && !tokens[slot] {
		return &StepError{StepIndex: idx, Reason: "tokens_full", Message: "all tokens already placed"}
	}

	before := rec.tokenEvents()
	if err := g.SubmitSelection(0, slot); err != nil {
		return &StepError{StepIndex: idx, Reason: "submit_failed", Message: err.Error()}
	}
	if err := waitFor(func() bool { return rec.tokenEvents() > before }, "press had no effect", idx); err != nil {
		return err
	}
	if tokens[slot] {
		delete(tokens, slot)
	} else {
		tokens[slot] = true
	}

	if len(tokens) < g.Config().FeatureSize {
		if expect != "" {
			return &StepError{StepIndex: idx, Reason: "verdict_mismatch", Message: fmt.Sprintf("expected %s but no claim was triggered", expect)}
		}
		return nil
	}

	var verdict trio.Verdict
	select {
	case verdict = <-rec.claims:
	case <-time.After(settleTimeout):
		return &StepError{StepIndex: idx, Reason: "no_verdict", Message: "claim never resolved"}
	}
	switch verdict {
	case trio.VerdictAccepted, trio.VerdictVoided:
		for s := range tokens {
			delete(tokens, s)
		}
	case trio.VerdictRejected:
		// 令牌保留, 后续步骤可以撤回
	}
	if expect != "" && expect != strings.ToLower(verdict.String()) {
		return &StepError{StepIndex: idx, Reason: "verdict_mismatch", Message: fmt.Sprintf("expected %s, got %s", expect, verdict)}
	}
	return nil
}

func waitInitialDeal(g *trio.Game, ns *normalizedSpec) error {
	want := ns.grid
	if ns.deck < want {
		want = ns.deck
	}
	return waitFor(func() bool {
		n := 0
		for _, c := range g.Snapshot().Slots {
			if c.Valid() {
				n++
			}
		}
		return n >= want
	}, "initial deal never completed", -1)
}

func waitFor(cond func() bool, msg string, idx int) error {
	deadline := time.Now().Add(settleTimeout)
	for !cond() {
		if time.Now().After(deadline) {
			return &StepError{StepIndex: idx, Reason: "timeout", Message: msg}
		}
		time.Sleep(pollStep)
	}
	return nil
}
