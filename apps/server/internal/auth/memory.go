package auth

import (
	"crypto/rand"
	"encoding/base64"
	"errors"
	"regexp"
	"strings"
	"sync"
	"time"

	"golang.org/x/crypto/bcrypt"
)

const (
	defaultSessionTTL = 7 * 24 * time.Hour
	tokenBytes        = 32
)

var (
	ErrInvalidUsername    = errors.New("invalid username")
	ErrInvalidPassword    = errors.New("invalid password")
	ErrUsernameTaken      = errors.New("username already exists")
	ErrInvalidCredentials = errors.New("invalid credentials")
)

var usernamePattern = regexp.MustCompile(`^[a-zA-Z0-9_][a-zA-Z0-9_.-]{2,31}$`)

// Manager keeps accounts and sessions in memory, for single-binary and
// test deployments. The sqlite store offers the same contract.
type Manager struct {
	mu sync.Mutex

	nextAccountID uint64
	sessionTTL    time.Duration
	sessions      map[string]session
	accounts      map[uint64]account
	accountByName map[string]uint64
}

type session struct {
	AccountID uint64
	ExpiresAt time.Time
}

type account struct {
	ID           uint64
	Username     string
	PasswordHash []byte
	Registered   bool
	LastLogin    time.Time
}

func NewManager() *Manager {
	return &Manager{
		nextAccountID: 400000,
		sessionTTL:    defaultSessionTTL,
		sessions:      make(map[string]session),
		accounts:      make(map[uint64]account),
		accountByName: make(map[string]uint64),
	}
}

func normalizeUsername(username string) string {
	return strings.ToLower(strings.TrimSpace(username))
}

func validateUsername(username string) error {
	if !usernamePattern.MatchString(strings.TrimSpace(username)) {
		return ErrInvalidUsername
	}
	return nil
}

func validatePassword(password string) error {
	// bcrypt truncates beyond 72 bytes
	if len(password) < 6 || len(password) > 72 {
		return ErrInvalidPassword
	}
	return nil
}

func (m *Manager) issueSessionLocked(accountID uint64, now time.Time) string {
	token := mustToken()
	m.sessions[token] = session{AccountID: accountID, ExpiresAt: now.Add(m.sessionTTL)}
	return token
}

func (m *Manager) resolveSessionLocked(token string, now time.Time) (uint64, string, bool) {
	if token == "" {
		return 0, "", false
	}
	rec, exists := m.sessions[token]
	if !exists {
		return 0, "", false
	}
	if !now.Before(rec.ExpiresAt) {
		delete(m.sessions, token)
		return 0, "", false
	}
	// Sliding expiry.
	rec.ExpiresAt = now.Add(m.sessionTTL)
	m.sessions[token] = rec
	return rec.AccountID, m.accounts[rec.AccountID].Username, true
}

func (m *Manager) Register(username, password string) (uint64, string, error) {
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

	m.mu.Lock()
	defer m.mu.Unlock()
	if _, exists := m.accountByName[normalized]; exists {
		return 0, "", ErrUsernameTaken
	}
	m.nextAccountID++
	now := time.Now()
	m.accounts[m.nextAccountID] = account{
		ID:           m.nextAccountID,
		Username:     normalized,
		PasswordHash: hash,
		Registered:   true,
		LastLogin:    now,
	}
	m.accountByName[normalized] = m.nextAccountID
	return m.nextAccountID, m.issueSessionLocked(m.nextAccountID, now), nil
}

func (m *Manager) Login(username, password string) (uint64, string, error) {
	normalized := normalizeUsername(username)
	if normalized == "" || password == "" {
		return 0, "", ErrInvalidCredentials
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	accountID, exists := m.accountByName[normalized]
	if !exists {
		return 0, "", ErrInvalidCredentials
	}
	acct := m.accounts[accountID]
	if !acct.Registered || len(acct.PasswordHash) == 0 {
		return 0, "", ErrInvalidCredentials
	}
	if bcrypt.CompareHashAndPassword(acct.PasswordHash, []byte(password)) != nil {
		return 0, "", ErrInvalidCredentials
	}
	now := time.Now()
	acct.LastLogin = now
	m.accounts[accountID] = acct
	return accountID, m.issueSessionLocked(accountID, now), nil
}

func (m *Manager) ResolveSession(token string) (uint64, string, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.resolveSessionLocked(token, time.Now())
}

func (m *Manager) ResolveOrCreateGuest(token string) (uint64, string, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	now := time.Now()
	if accountID, _, ok := m.resolveSessionLocked(token, now); ok {
		return accountID, token, true
	}
	m.nextAccountID++
	m.accounts[m.nextAccountID] = account{ID: m.nextAccountID}
	return m.nextAccountID, m.issueSessionLocked(m.nextAccountID, now), false
}

func (m *Manager) Logout(token string) {
	if token == "" {
		return
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.sessions, token)
}

func (m *Manager) Close() error { return nil }

func mustToken() string {
	buf := make([]byte, tokenBytes)
	if _, err := rand.Read(buf); err != nil {
		panic(err)
	}
	return base64.RawURLEncoding.EncodeToString(buf)
}
