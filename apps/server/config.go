package main

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"trio-lite/apps/server/internal/room"
	"trio-lite/trio"
)

// duration accepts Go duration strings ("60s", "1.5s") in YAML.
type duration time.Duration

func (d *duration) UnmarshalYAML(value *yaml.Node) error {
	var raw string
	if err := value.Decode(&raw); err != nil {
		return err
	}
	parsed, err := time.ParseDuration(raw)
	if err != nil {
		return fmt.Errorf("invalid duration %q: %w", raw, err)
	}
	*d = duration(parsed)
	return nil
}

// ServerConfig is the YAML shape of the server config file. Zero values
// fall back to defaults, so a partial file is fine.
type ServerConfig struct {
	Addr string `yaml:"addr"`

	Room struct {
		HumanSeats     int      `yaml:"human_seats"`
		ComputerAgents int      `yaml:"computer_agents"`
		TurnTimeout    duration `yaml:"turn_timeout"`
		TurnWarning    duration `yaml:"turn_warning"`
		PointFreeze    duration `yaml:"point_freeze"`
		PenaltyFreeze  duration `yaml:"penalty_freeze"`
		DealDelay      duration `yaml:"deal_delay"`
	} `yaml:"room"`
}

func defaultServerConfig() ServerConfig {
	var cfg ServerConfig
	cfg.Addr = ":8080"
	cfg.Room.HumanSeats = 2
	cfg.Room.ComputerAgents = 1
	return cfg
}

// loadServerConfig reads the YAML file at path. A missing file is not an
// error unless the path was set explicitly.
func loadServerConfig(path string, explicit bool) (ServerConfig, error) {
	cfg := defaultServerConfig()
	raw, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) && !explicit {
			return cfg, nil
		}
		return cfg, fmt.Errorf("read config %s: %w", path, err)
	}
	if err := yaml.Unmarshal(raw, &cfg); err != nil {
		return cfg, fmt.Errorf("parse config %s: %w", path, err)
	}
	if cfg.Addr == "" {
		cfg.Addr = ":8080"
	}
	if cfg.Room.HumanSeats <= 0 {
		cfg.Room.HumanSeats = 2
	}
	if cfg.Room.ComputerAgents < 0 {
		cfg.Room.ComputerAgents = 0
	}
	return cfg, nil
}

// roomConfig projects the server config onto the room settings, with
// engine defaults for anything left unset.
func (c ServerConfig) roomConfig() room.Config {
	game := trio.DefaultConfig()
	if c.Room.TurnTimeout != 0 {
		game.TurnTimeout = time.Duration(c.Room.TurnTimeout)
	}
	if c.Room.TurnWarning != 0 {
		game.TurnWarning = time.Duration(c.Room.TurnWarning)
	}
	if c.Room.PointFreeze != 0 {
		game.PointFreeze = time.Duration(c.Room.PointFreeze)
	}
	if c.Room.PenaltyFreeze != 0 {
		game.PenaltyFreeze = time.Duration(c.Room.PenaltyFreeze)
	}
	if c.Room.DealDelay != 0 {
		game.DealDelay = time.Duration(c.Room.DealDelay)
	}
	return room.Config{
		HumanSeats:     c.Room.HumanSeats,
		ComputerAgents: c.Room.ComputerAgents,
		Game:           game,
	}
}
