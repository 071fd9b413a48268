package auth

import (
	"fmt"
	"os"
	"strings"
	"time"
)

const (
	ModeMemory = "memory"
	ModeSQLite = "sqlite"

	defaultDBPath = "trio_auth.db"
)

func modeFromEnv() string {
	raw := strings.ToLower(strings.TrimSpace(os.Getenv("AUTH_MODE")))
	switch raw {
	case "", ModeSQLite, "db":
		return ModeSQLite
	case ModeMemory, "mem":
		return ModeMemory
	default:
		return raw
	}
}

func NewServiceFromEnv() (Service, string, error) {
	mode := modeFromEnv()
	switch mode {
	case ModeSQLite:
		dbPath := strings.TrimSpace(os.Getenv("AUTH_SQLITE_PATH"))
		if dbPath == "" {
			dbPath = defaultDBPath
		}
		manager, err := NewSQLiteManager(dbPath, sessionTTLFromEnv())
		if err != nil {
			return nil, mode, err
		}
		return manager, mode, nil
	case ModeMemory:
		return NewManager(), mode, nil
	default:
		return nil, mode, fmt.Errorf("invalid AUTH_MODE %q (supported: %s, %s)", mode, ModeMemory, ModeSQLite)
	}
}

func sessionTTLFromEnv() time.Duration {
	raw := strings.TrimSpace(os.Getenv("AUTH_SESSION_TTL"))
	if raw == "" {
		return defaultSessionTTL
	}
	ttl, err := time.ParseDuration(raw)
	if err != nil || ttl <= 0 {
		return defaultSessionTTL
	}
	return ttl
}
