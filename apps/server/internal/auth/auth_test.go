package auth

import (
	"errors"
	"testing"
)

func TestRegisterAndLogin(t *testing.T) {
	m := NewManager()

	accountID, token, err := m.Register("carol_07", "secret12")
	if err != nil {
		t.Fatalf("register failed: %v", err)
	}
	if accountID == 0 || token == "" {
		t.Fatalf("expected account id and token, got %d %q", accountID, token)
	}

	resolvedID, username, ok := m.ResolveSession(token)
	if !ok || resolvedID != accountID || username != "carol_07" {
		t.Fatalf("resolve = (%d, %q, %v)", resolvedID, username, ok)
	}

	loginID, loginToken, err := m.Login("carol_07", "secret12")
	if err != nil {
		t.Fatalf("login failed: %v", err)
	}
	if loginID != accountID || loginToken == "" {
		t.Fatalf("login = (%d, %q)", loginID, loginToken)
	}
}

func TestRegisterRejectsDuplicateUsername(t *testing.T) {
	m := NewManager()
	if _, _, err := m.Register("carol_07", "secret12"); err != nil {
		t.Fatalf("register failed: %v", err)
	}
	if _, _, err := m.Register("Carol_07", "secret12"); !errors.Is(err, ErrUsernameTaken) {
		t.Fatalf("expected ErrUsernameTaken, got %v", err)
	}
}

func TestRegisterValidatesInput(t *testing.T) {
	m := NewManager()
	if _, _, err := m.Register("x", "secret12"); !errors.Is(err, ErrInvalidUsername) {
		t.Fatalf("expected ErrInvalidUsername, got %v", err)
	}
	if _, _, err := m.Register("carol_07", "nope"); !errors.Is(err, ErrInvalidPassword) {
		t.Fatalf("expected ErrInvalidPassword, got %v", err)
	}
}

func TestLoginRejectsWrongPassword(t *testing.T) {
	m := NewManager()
	if _, _, err := m.Register("carol_07", "secret12"); err != nil {
		t.Fatalf("register failed: %v", err)
	}
	if _, _, err := m.Login("carol_07", "wrong-password"); !errors.Is(err, ErrInvalidCredentials) {
		t.Fatalf("expected ErrInvalidCredentials, got %v", err)
	}
}

func TestLogoutInvalidatesSession(t *testing.T) {
	m := NewManager()
	_, token, err := m.Register("carol_07", "secret12")
	if err != nil {
		t.Fatalf("register failed: %v", err)
	}
	m.Logout(token)
	if _, _, ok := m.ResolveSession(token); ok {
		t.Fatal("expected logged out token to be invalid")
	}
}

func TestGuestFlow(t *testing.T) {
	m := NewManager()
	accountID, token, reused := m.ResolveOrCreateGuest("")
	if reused {
		t.Fatal("empty token must mint a fresh guest")
	}
	if accountID == 0 || token == "" {
		t.Fatalf("guest = (%d, %q)", accountID, token)
	}
	again, sameToken, reused := m.ResolveOrCreateGuest(token)
	if !reused || again != accountID || sameToken != token {
		t.Fatalf("guest resume = (%d, %q, %v)", again, sameToken, reused)
	}
}

func TestSQLiteManagerRoundTrip(t *testing.T) {
	m, err := NewSQLiteManager(":memory:", 0)
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	defer m.Close()

	accountID, token, err := m.Register("dave_11", "secret12")
	if err != nil {
		t.Fatalf("register failed: %v", err)
	}
	if resolvedID, username, ok := m.ResolveSession(token); !ok || resolvedID != accountID || username != "dave_11" {
		t.Fatalf("resolve = (%d, %q, %v)", resolvedID, username, ok)
	}
	if _, _, err := m.Register("dave_11", "secret12"); !errors.Is(err, ErrUsernameTaken) {
		t.Fatalf("expected ErrUsernameTaken, got %v", err)
	}
	if _, _, err := m.Login("dave_11", "bad-password"); !errors.Is(err, ErrInvalidCredentials) {
		t.Fatalf("expected ErrInvalidCredentials, got %v", err)
	}

	guestID, guestToken, reused := m.ResolveOrCreateGuest("")
	if reused || guestID == 0 || guestToken == "" {
		t.Fatalf("guest = (%d, %q, %v)", guestID, guestToken, reused)
	}
	m.Logout(token)
	if _, _, ok := m.ResolveSession(token); ok {
		t.Fatal("expected logged out token to be invalid")
	}
}
