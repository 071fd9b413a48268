package auth

// Service is the account/session contract consumed by the gateway and
// the HTTP handlers.
type Service interface {
	Register(username, password string) (accountID uint64, sessionToken string, err error)
	Login(username, password string) (accountID uint64, sessionToken string, err error)
	ResolveSession(token string) (accountID uint64, username string, ok bool)
	// ResolveOrCreateGuest returns the account bound to token if the
	// session is live, otherwise mints a fresh guest account. Quick-play
	// websocket clients connect without registering first.
	ResolveOrCreateGuest(token string) (accountID uint64, sessionToken string, reused bool)
	Logout(token string)
	Close() error
}
