package main

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"trio-lite/trio"
)

func TestLoadServerConfig(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	raw := `
addr: ":9000"
room:
  human_seats: 4
  computer_agents: 2
  turn_timeout: 30s
`
	if err := os.WriteFile(path, []byte(raw), 0o644); err != nil {
		t.Fatal(err)
	}
	cfg, err := loadServerConfig(path, true)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Addr != ":9000" || cfg.Room.HumanSeats != 4 {
		t.Fatalf("cfg = %+v", cfg)
	}

	rc := cfg.roomConfig()
	if rc.HumanSeats != 4 || rc.ComputerAgents != 2 {
		t.Fatalf("room cfg = %+v", rc)
	}
	if rc.Game.TurnTimeout != 30*time.Second {
		t.Fatalf("turn timeout = %v", rc.Game.TurnTimeout)
	}
	// Unset durations keep engine defaults.
	if rc.Game.PointFreeze != trio.DefaultConfig().PointFreeze {
		t.Fatalf("point freeze = %v", rc.Game.PointFreeze)
	}
}

func TestLoadServerConfigMissingFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nope.yaml")
	cfg, err := loadServerConfig(path, false)
	if err != nil {
		t.Fatalf("implicit missing file: %v", err)
	}
	if cfg.Addr != ":8080" || cfg.Room.HumanSeats != 2 {
		t.Fatalf("defaults = %+v", cfg)
	}
	if _, err := loadServerConfig(path, true); err == nil {
		t.Fatal("expected error for explicit missing file")
	}
}

func TestLoadServerConfigBadDuration(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte("room:\n  turn_timeout: fast\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := loadServerConfig(path, true); err == nil {
		t.Fatal("expected duration parse error")
	}
}
