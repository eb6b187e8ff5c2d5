package session

import (
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// User is the authenticated staff member as returned by the login endpoint.
type User struct {
	ID       string `json:"id"`
	Username string `json:"username"`
	Role     string `json:"role"`
}

// Store holds the process-wide session: bearer token plus the logged-in user.
// It is passed explicitly to everything that talks to the network instead of
// being looked up ambiently. Safe for concurrent use.
type Store struct {
	mu    sync.RWMutex
	token string
	user  *User

	// onInvalidate fires once per Invalidate call, outside the lock.
	// The CLIs use it to drop back to the login prompt.
	onInvalidate func()
}

func NewStore() *Store {
	return &Store{}
}

// OnInvalidate registers the hook fired when a 401 forces the session out.
func (s *Store) OnInvalidate(fn func()) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.onInvalidate = fn
}

// Login stores the credentials from a successful authentication.
func (s *Store) Login(token string, user User) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.token = token
	u := user
	s.user = &u
}

// Logout clears the session without firing the invalidation hook.
func (s *Store) Logout() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.token = ""
	s.user = nil
}

// Invalidate clears the session and fires the hook. Called on any 401 that is
// not itself the login request.
func (s *Store) Invalidate() {
	s.mu.Lock()
	s.token = ""
	s.user = nil
	fn := s.onInvalidate
	s.mu.Unlock()
	if fn != nil {
		fn()
	}
}

// Token returns the current bearer token, or "" when logged out.
func (s *Store) Token() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.token
}

// User returns a copy of the logged-in user, or nil.
func (s *Store) User() *User {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.user == nil {
		return nil
	}
	u := *s.user
	return &u
}

// Authenticated reports whether a token is present and, when the token carries
// an exp claim, not yet expired. The signature is not verified here; only the
// server can do that.
func (s *Store) Authenticated() bool {
	s.mu.RLock()
	token := s.token
	s.mu.RUnlock()
	if token == "" {
		return false
	}

	claims := jwt.RegisteredClaims{}
	parser := jwt.NewParser()
	if _, _, err := parser.ParseUnverified(token, &claims); err != nil {
		// Opaque tokens are still usable; expiry is the server's problem.
		return true
	}
	if claims.ExpiresAt == nil {
		return true
	}
	return claims.ExpiresAt.After(time.Now())
}
