// Terminal front-end: one human on the keyboard against computer agents.
// Keys q-w-e-r / a-s-d-f / z-x-c-v map to the 12 grid slots, ESC quits.
package main

import (
	"flag"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/nsf/termbox-go"

	"trio-lite/trio"
	"trio-lite/trio/ai"
)

var keyMap = map[rune]int{
	'q': 0, 'w': 1, 'e': 2, 'r': 3,
	'a': 4, 's': 5, 'd': 6, 'f': 7,
	'z': 8, 'x': 9, 'c': 10, 'v': 11,
}

func main() {
	computers := flag.Int("computers", 2, "number of computer agents")
	timeout := flag.Duration("timeout", 60*time.Second, "turn timeout (0 = count up)")
	seed := flag.Int64("seed", 0, "rng seed (0 = random)")
	flag.Parse()

	logFile, err := os.Create("console.log")
	if err == nil {
		defer logFile.Close()
		log.SetOutput(logFile)
	}

	cfg := trio.DefaultConfig()
	cfg.HumanAgents = 1
	cfg.ComputerAgents = *computers
	cfg.TurnTimeout = *timeout
	cfg.Seed = *seed

	sink := newConsoleSink()
	mgr := ai.NewManager(*seed)
	game, err := trio.NewGame(cfg, trio.WithSink(sink), trio.WithInputSource(mgr.Source()))
	if err != nil {
		fmt.Fprintln(os.Stderr, "config:", err)
		os.Exit(1)
	}

	if err := termbox.Init(); err != nil {
		fmt.Fprintln(os.Stderr, "termbox:", err)
		os.Exit(1)
	}
	defer termbox.Close()

	runDone := make(chan struct{})
	go func() {
		game.Run()
		close(runDone)
	}()

	events := make(chan termbox.Event, 8)
	go func() {
		for {
			events <- termbox.PollEvent()
		}
	}()

	ticker := time.NewTicker(100 * time.Millisecond)
	defer ticker.Stop()

	for {
		select {
		case <-runDone:
			render(game, sink)
			waitKey(events)
			return
		case ev := <-events:
			if ev.Type != termbox.EventKey {
				continue
			}
			if ev.Key == termbox.KeyEsc || ev.Key == termbox.KeyCtrlC {
				game.Terminate()
				continue
			}
			if slot, ok := keyMap[ev.Ch]; ok {
				game.SubmitSelection(0, slot)
			}
		case <-ticker.C:
			render(game, sink)
		}
	}
}

func waitKey(events chan termbox.Event) {
	deadline := time.After(10 * time.Second)
	for {
		select {
		case ev := <-events:
			if ev.Type == termbox.EventKey {
				return
			}
		case <-deadline:
			return
		}
	}
}
