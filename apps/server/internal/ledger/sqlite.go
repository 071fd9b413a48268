package ledger

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	_ "modernc.org/sqlite"

	"trio-lite/replay"
)

const defaultSQLitePath = "trio_ledger.db"

// SQLiteService stores matches in a local sqlite file, for single-binary
// deployments.
type SQLiteService struct {
	db    *sql.DB
	tapes *tapeCache
}

func NewSQLiteServiceFromEnv() (*SQLiteService, error) {
	dbPath := strings.TrimSpace(os.Getenv("LEDGER_SQLITE_PATH"))
	if dbPath == "" {
		dbPath = defaultSQLitePath
	}
	return NewSQLiteService(dbPath)
}

func NewSQLiteService(dbPath string) (*SQLiteService, error) {
	dbPath = strings.TrimSpace(dbPath)
	if dbPath == "" {
		return nil, fmt.Errorf("empty sqlite database path")
	}
	if dbPath != ":memory:" {
		parent := filepath.Dir(dbPath)
		if parent != "" && parent != "." {
			if err := os.MkdirAll(parent, 0o755); err != nil {
				return nil, err
			}
		}
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, err
	}
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(0)

	ctx, cancel := context.WithTimeout(context.Background(), opTimeout)
	defer cancel()
	for _, pragma := range []string{
		`PRAGMA busy_timeout = 5000;`,
		`PRAGMA journal_mode = WAL;`,
	} {
		if _, err := db.ExecContext(ctx, pragma); err != nil {
			_ = db.Close()
			return nil, err
		}
	}
	if _, err := db.ExecContext(ctx, `
CREATE TABLE IF NOT EXISTS matches (
    match_id      TEXT PRIMARY KEY,
    room_id       TEXT NOT NULL,
    seed          INTEGER NOT NULL,
    started_at_ms INTEGER NOT NULL,
    ended_at_ms   INTEGER NOT NULL,
    winners       TEXT NOT NULL,
    scores        TEXT NOT NULL,
    tape_zstd     BLOB
);
CREATE INDEX IF NOT EXISTS idx_matches_ended_at ON matches (ended_at_ms DESC);
`); err != nil {
		_ = db.Close()
		return nil, err
	}
	return &SQLiteService{db: db, tapes: newTapeCache()}, nil
}

func (s *SQLiteService) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

func (s *SQLiteService) RecordMatch(ctx context.Context, rec MatchRecord) error {
	blob, err := compressTape(rec.Tape)
	if err != nil {
		return err
	}
	ctx, cancel := context.WithTimeout(ctx, opTimeout)
	defer cancel()
	_, err = s.db.ExecContext(ctx, `
INSERT OR IGNORE INTO matches (match_id, room_id, seed, started_at_ms, ended_at_ms, winners, scores, tape_zstd)
VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		rec.MatchID, rec.RoomID, rec.Seed,
		rec.StartedAt.UTC().UnixMilli(), rec.EndedAt.UTC().UnixMilli(),
		encodeInts(rec.Winners), encodeInts(rec.Scores), blob)
	if err == nil && rec.Tape != nil {
		s.tapes.add(rec.MatchID, rec.Tape)
	}
	return err
}

func (s *SQLiteService) ListRecent(ctx context.Context, limit int) ([]MatchSummary, error) {
	if limit <= 0 || limit > defaultRecentLimit {
		limit = defaultRecentLimit
	}
	ctx, cancel := context.WithTimeout(ctx, opTimeout)
	defer cancel()
	rows, err := s.db.QueryContext(ctx, `
SELECT match_id, room_id, seed, started_at_ms, ended_at_ms, winners, scores
FROM matches ORDER BY ended_at_ms DESC LIMIT ?`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []MatchSummary{}
	for rows.Next() {
		item, err := scanSQLiteSummary(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, item)
	}
	return out, rows.Err()
}

func (s *SQLiteService) GetMatch(ctx context.Context, matchID string) (MatchSummary, error) {
	ctx, cancel := context.WithTimeout(ctx, opTimeout)
	defer cancel()
	row := s.db.QueryRowContext(ctx, `
SELECT match_id, room_id, seed, started_at_ms, ended_at_ms, winners, scores
FROM matches WHERE match_id = ?`, matchID)
	return scanSQLiteSummary(row)
}

func (s *SQLiteService) GetTape(ctx context.Context, matchID string) (*replay.MatchTape, error) {
	if tape, ok := s.tapes.get(matchID); ok {
		return tape, nil
	}
	ctx, cancel := context.WithTimeout(ctx, opTimeout)
	defer cancel()
	var blob []byte
	err := s.db.QueryRowContext(ctx, `SELECT tape_zstd FROM matches WHERE match_id = ?`, matchID).Scan(&blob)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	tape, err := decompressTape(blob)
	if err != nil {
		return nil, err
	}
	s.tapes.add(matchID, tape)
	return tape, nil
}

func scanSQLiteSummary(row rowScanner) (MatchSummary, error) {
	var (
		out             MatchSummary
		startedMs       int64
		endedMs         int64
		winners, scores string
	)
	err := row.Scan(&out.MatchID, &out.RoomID, &out.Seed, &startedMs, &endedMs, &winners, &scores)
	if err == sql.ErrNoRows {
		return MatchSummary{}, ErrNotFound
	}
	if err != nil {
		return MatchSummary{}, err
	}
	out.StartedAt = time.UnixMilli(startedMs).UTC()
	out.EndedAt = time.UnixMilli(endedMs).UTC()
	out.Winners = decodeInts(winners)
	out.Scores = decodeInts(scores)
	return out, nil
}
