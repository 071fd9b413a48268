package main

import (
	"fmt"
	"sync"
	"time"

	"github.com/nsf/termbox-go"

	"trio-lite/trio"
)

const (
	gridCols  = 4
	cellWidth = 10
	cellHigh  = 3
)

func render(game *trio.Game, sink *consoleSink) {
	snap := game.Snapshot()
	termbox.Clear(termbox.ColorDefault, termbox.ColorDefault)

	drawString(0, 0, termbox.ColorWhite|termbox.AttrBold, "TRIO  (q-w-e-r / a-s-d-f / z-x-c-v, ESC quits)")

	for slot, c := range snap.Slots {
		x := (slot % gridCols) * cellWidth
		y := 2 + (slot/gridCols)*cellHigh
		label := "----"
		color := termbox.ColorBlue
		if c.Valid() {
			label = c.String()
			color = termbox.ColorWhite
		}
		drawString(x, y, color, fmt.Sprintf("[%s]", label))

		marks := ""
		for _, ag := range snap.Agents {
			for _, s := range ag.TokenSlots {
				if s == slot {
					marks += fmt.Sprintf("%d", ag.ID)
				}
			}
		}
		if marks != "" {
			drawString(x, y+1, termbox.ColorYellow, "*"+marks)
		}
	}

	statusY := 2 + (len(snap.Slots)+gridCols-1)/gridCols*cellHigh + 1
	drawString(0, statusY, termbox.ColorCyan, timerLine(snap))
	for i, ag := range snap.Agents {
		kind := "cpu"
		if ag.Human {
			kind = "you"
		}
		line := fmt.Sprintf("agent %d (%s)  score %d", ag.ID, kind, ag.Score)
		if left := sink.freezeLeft(ag.ID); left > 0 {
			line += fmt.Sprintf("  frozen %.1fs", left.Seconds())
		}
		drawString(0, statusY+1+i, termbox.ColorWhite, line)
	}
	if snap.Phase == trio.PhaseEnded {
		drawString(0, statusY+1+len(snap.Agents), termbox.ColorGreen|termbox.AttrBold,
			fmt.Sprintf("winners: %v  (press any key)", snap.Winners))
	}
	termbox.Flush()
}

func timerLine(snap trio.Snapshot) string {
	if snap.CountdownMode {
		line := fmt.Sprintf("time left %5.1fs   deck %d", snap.CountdownLeft.Seconds(), snap.DeckCount)
		if snap.Warn {
			line = "! " + line
		}
		return line
	}
	return fmt.Sprintf("elapsed %5.1fs   deck %d", snap.Elapsed.Seconds(), snap.DeckCount)
}

func drawString(x, y int, fg termbox.Attribute, s string) {
	for i, r := range s {
		termbox.SetCell(x+i, y, r, fg, termbox.ColorDefault)
	}
}

// consoleSink only tracks freeze deadlines; everything else is read
// from snapshots on each render tick.
type consoleSink struct {
	trio.NopSink

	mu      sync.Mutex
	freezes map[int]time.Time
}

func newConsoleSink() *consoleSink {
	return &consoleSink{freezes: make(map[int]time.Time)}
}

func (s *consoleSink) FreezeSet(agent int, d time.Duration) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if d <= 0 {
		delete(s.freezes, agent)
	} else {
		s.freezes[agent] = time.Now().Add(d)
	}
}

func (s *consoleSink) freezeLeft(agent int) time.Duration {
	s.mu.Lock()
	deadline, ok := s.freezes[agent]
	s.mu.Unlock()
	if !ok {
		return 0
	}
	left := time.Until(deadline)
	if left < 0 {
		return 0
	}
	return left
}
