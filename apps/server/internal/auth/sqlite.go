package auth

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	_ "modernc.org/sqlite"

	"golang.org/x/crypto/bcrypt"
)

const sqliteOpTimeout = 5 * time.Second

// SQLiteManager persists accounts and sessions in a local sqlite file.
type SQLiteManager struct {
	db         *sql.DB
	sessionTTL time.Duration
}

func NewSQLiteManager(dbPath string, sessionTTL time.Duration) (*SQLiteManager, error) {
	dbPath = strings.TrimSpace(dbPath)
	if dbPath == "" {
		return nil, fmt.Errorf("empty sqlite database path")
	}
	if sessionTTL <= 0 {
		sessionTTL = defaultSessionTTL
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

	ctx, cancel := context.WithTimeout(context.Background(), sqliteOpTimeout)
	defer cancel()
	for _, pragma := range []string{
		`PRAGMA busy_timeout = 5000;`,
		`PRAGMA journal_mode = WAL;`,
		`PRAGMA foreign_keys = ON;`,
	} {
		if _, err := db.ExecContext(ctx, pragma); err != nil {
			_ = db.Close()
			return nil, err
		}
	}
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, err
	}
	if err := ensureAuthSchema(ctx, db); err != nil {
		_ = db.Close()
		return nil, err
	}
	return &SQLiteManager{db: db, sessionTTL: sessionTTL}, nil
}

func ensureAuthSchema(ctx context.Context, db *sql.DB) error {
	_, err := db.ExecContext(ctx, `
CREATE TABLE IF NOT EXISTS accounts (
    account_id       INTEGER PRIMARY KEY AUTOINCREMENT,
    username         TEXT UNIQUE,
    password_hash    BLOB,
    registered       INTEGER NOT NULL DEFAULT 0,
    created_at_ms    INTEGER NOT NULL,
    last_login_at_ms INTEGER NOT NULL
);
CREATE TABLE IF NOT EXISTS sessions (
    token         TEXT PRIMARY KEY,
    account_id    INTEGER NOT NULL REFERENCES accounts(account_id) ON DELETE CASCADE,
    expires_at_ms INTEGER NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_sessions_account ON sessions(account_id);
`)
	return err
}

func (m *SQLiteManager) Close() error {
	if m == nil || m.db == nil {
		return nil
	}
	return m.db.Close()
}

func (m *SQLiteManager) Register(username, password string) (uint64, string, error) {
	if err := validateUsername(username); err != nil {
		return 0, "", err
	}
	if err := validatePassword(password); err != nil {
		return 0, "", err
	}
	normalized := normalizeUsername(username)
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return 0, "", err
	}

	ctx, cancel := context.WithTimeout(context.Background(), sqliteOpTimeout)
	defer cancel()
	tx, err := m.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, "", err
	}
	defer tx.Rollback()

	var existing int
	err = tx.QueryRowContext(ctx, `SELECT COUNT(1) FROM accounts WHERE username = ?`, normalized).Scan(&existing)
	if err != nil {
		return 0, "", err
	}
	if existing > 0 {
		return 0, "", ErrUsernameTaken
	}

	nowMs := time.Now().UTC().UnixMilli()
	res, err := tx.ExecContext(ctx, `
INSERT INTO accounts (username, password_hash, registered, created_at_ms, last_login_at_ms)
VALUES (?, ?, 1, ?, ?)`, normalized, hash, nowMs, nowMs)
	if err != nil {
		return 0, "", err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, "", err
	}
	token, err := m.insertSession(ctx, tx, uint64(id), nowMs)
	if err != nil {
		return 0, "", err
	}
	if err := tx.Commit(); err != nil {
		return 0, "", err
	}
	return uint64(id), token, nil
}

func (m *SQLiteManager) Login(username, password string) (uint64, string, error) {
	normalized := normalizeUsername(username)
	if normalized == "" || password == "" {
		return 0, "", ErrInvalidCredentials
	}

	ctx, cancel := context.WithTimeout(context.Background(), sqliteOpTimeout)
	defer cancel()
	var (
		accountID  uint64
		hash       []byte
		registered int
	)
	err := m.db.QueryRowContext(ctx, `
SELECT account_id, password_hash, registered FROM accounts WHERE username = ?`, normalized).
		Scan(&accountID, &hash, &registered)
	if err == sql.ErrNoRows {
		return 0, "", ErrInvalidCredentials
	}
	if err != nil {
		return 0, "", err
	}
	if registered == 0 || len(hash) == 0 {
		return 0, "", ErrInvalidCredentials
	}
	if bcrypt.CompareHashAndPassword(hash, []byte(password)) != nil {
		return 0, "", ErrInvalidCredentials
	}

	nowMs := time.Now().UTC().UnixMilli()
	if _, err := m.db.ExecContext(ctx, `UPDATE accounts SET last_login_at_ms = ? WHERE account_id = ?`, nowMs, accountID); err != nil {
		return 0, "", err
	}
	token, err := m.insertSession(ctx, m.db, accountID, nowMs)
	if err != nil {
		return 0, "", err
	}
	return accountID, token, nil
}

func (m *SQLiteManager) ResolveSession(token string) (uint64, string, bool) {
	if token == "" {
		return 0, "", false
	}
	ctx, cancel := context.WithTimeout(context.Background(), sqliteOpTimeout)
	defer cancel()
	var (
		accountID   uint64
		username    sql.NullString
		expiresAtMs int64
	)
	err := m.db.QueryRowContext(ctx, `
SELECT s.account_id, a.username, s.expires_at_ms
FROM sessions s JOIN accounts a ON a.account_id = s.account_id
WHERE s.token = ?`, token).Scan(&accountID, &username, &expiresAtMs)
	if err != nil {
		return 0, "", false
	}
	nowMs := time.Now().UTC().UnixMilli()
	if nowMs >= expiresAtMs {
		_, _ = m.db.ExecContext(ctx, `DELETE FROM sessions WHERE token = ?`, token)
		return 0, "", false
	}
	// Sliding expiry.
	_, _ = m.db.ExecContext(ctx, `UPDATE sessions SET expires_at_ms = ? WHERE token = ?`,
		nowMs+m.sessionTTL.Milliseconds(), token)
	return accountID, username.String, true
}

func (m *SQLiteManager) ResolveOrCreateGuest(token string) (uint64, string, bool) {
	if accountID, _, ok := m.ResolveSession(token); ok {
		return accountID, token, true
	}
	ctx, cancel := context.WithTimeout(context.Background(), sqliteOpTimeout)
	defer cancel()
	nowMs := time.Now().UTC().UnixMilli()
	res, err := m.db.ExecContext(ctx, `
INSERT INTO accounts (username, password_hash, registered, created_at_ms, last_login_at_ms)
VALUES (NULL, NULL, 0, ?, ?)`, nowMs, nowMs)
	if err != nil {
		return 0, "", false
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, "", false
	}
	newToken, err := m.insertSession(ctx, m.db, uint64(id), nowMs)
	if err != nil {
		return 0, "", false
	}
	return uint64(id), newToken, false
}

func (m *SQLiteManager) Logout(token string) {
	if token == "" {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), sqliteOpTimeout)
	defer cancel()
	_, _ = m.db.ExecContext(ctx, `DELETE FROM sessions WHERE token = ?`, token)
}

type execer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

func (m *SQLiteManager) insertSession(ctx context.Context, db execer, accountID uint64, nowMs int64) (string, error) {
	token := mustToken()
	_, err := db.ExecContext(ctx, `
INSERT INTO sessions (token, account_id, expires_at_ms) VALUES (?, ?, ?)`,
		token, accountID, nowMs+m.sessionTTL.Milliseconds())
	if err != nil {
		return "", err
	}
	return token, nil
}
