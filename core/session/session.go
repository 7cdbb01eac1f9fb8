// Package session holds the authenticated identity and token,
// persisted across restarts through a Store.
package session

import (
	"errors"
	"sync"
	"time"
)

var (
	// ErrIncompleteSession guards the invariant that token and user are
	// always set together.
	ErrIncompleteSession = errors.New("token and user must be set together")
)

// User is the authenticated evaluator as returned by the login
// endpoint. Roles drive all access checks.
type User struct {
	ID       int      `json:"id"`
	Name     string   `json:"name"`
	Username string   `json:"username"`
	Roles    []string `json:"roles"`
}

// HasRole reports exact role membership.
func (u *User) HasRole(role string) bool {
	if u == nil {
		return false
	}
	for _, r := range u.Roles {
		if r == role {
			return true
		}
	}
	return false
}

// HasAnyRole reports membership in any of the given roles.
func (u *User) HasAnyRole(roles ...string) bool {
	for _, r := range roles {
		if u.HasRole(r) {
			return true
		}
	}
	return false
}

// Session is the persisted auth state. Token and User are set and
// cleared together; LoginAt is nil when logged out.
type Session struct {
	Token   string     `json:"token"`
	User    *User      `json:"user"`
	LoginAt *time.Time `json:"login_at"`
}

func (s Session) IsAuthenticated() bool {
	return s.Token != "" && s.User != nil
}

// Store persists the session under a fixed storage key.
type Store interface {
	LoadSession() (Session, error)
	SaveSession(Session) error
	ClearSession() error
}

// Manager owns the in-memory session and keeps the Store in sync. It
// is constructed once in main and passed explicitly to whoever needs
// it; hydration happens at construction, teardown via Logout/Expire.
type Manager struct {
	mu    sync.Mutex
	store Store
	cur   Session
}

// NewManager hydrates the current session from the store.
func NewManager(store Store) (*Manager, error) {
	cur, err := store.LoadSession()
	if err != nil {
		return nil, err
	}
	if !cur.IsAuthenticated() {
		cur = Session{} // half-populated state is never restored
	}
	return &Manager{store: store, cur: cur}, nil
}

// Current returns a copy of the active session.
func (m *Manager) Current() Session {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.cur
}

// Token returns the bearer token, or "" when logged out.
func (m *Manager) Token() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.cur.Token
}

// Login installs and persists a fresh session.
func (m *Manager) Login(s Session) error {
	if s.Token == "" || s.User == nil {
		return ErrIncompleteSession
	}
	if s.LoginAt == nil {
		now := time.Now().UTC()
		s.LoginAt = &now
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.store.SaveSession(s); err != nil {
		return err
	}
	m.cur = s
	return nil
}

// Logout clears the session and its persisted copy.
func (m *Manager) Logout() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.cur = Session{}
	return m.store.ClearSession()
}

// Expire clears the session exactly once. Concurrent expiry signals
// (several in-flight requests all hitting the 401 sentinel) race to a
// single clear; later callers see false and skip their side effects.
func (m *Manager) Expire() bool {
	m.mu.Lock()
	defer m.mu.Unlock()

	if !m.cur.IsAuthenticated() {
		return false
	}
	m.cur = Session{}
	_ = m.store.ClearSession()
	return true
}
