package session

import (
	"sync"
	"testing"
)

type memStore struct {
	mu     sync.Mutex
	saved  Session
	clears int
}

func (s *memStore) LoadSession() (Session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.saved, nil
}

func (s *memStore) SaveSession(sess Session) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.saved = sess
	return nil
}

func (s *memStore) ClearSession() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.saved = Session{}
	s.clears++
	return nil
}

func authed() Session {
	return Session{Token: "tok", User: &User{ID: 1, Username: "ust.fulan", Roles: []string{"kediri:guru"}}}
}

func TestManager_Login(t *testing.T) {
	tests := []struct {
		name    string
		sess    Session
		wantErr error
	}{
		{name: "valid", sess: authed()},
		{name: "token without user", sess: Session{Token: "tok"}, wantErr: ErrIncompleteSession},
		{name: "user without token", sess: Session{User: &User{ID: 1}}, wantErr: ErrIncompleteSession},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := &memStore{}
			m, err := NewManager(store)
			if err != nil {
				t.Fatalf("NewManager() failed: %v", err)
			}

			if err := m.Login(tt.sess); err != tt.wantErr {
				t.Fatalf("Login() error = %v, wantErr %v", err, tt.wantErr)
			}
			if tt.wantErr != nil {
				if m.Current().IsAuthenticated() {
					t.Error("session authenticated after rejected login")
				}
				return
			}
			if !m.Current().IsAuthenticated() {
				t.Error("session not authenticated after login")
			}
			if m.Current().LoginAt == nil {
				t.Error("LoginAt not stamped on login")
			}
			if !store.saved.IsAuthenticated() {
				t.Error("session not persisted on login")
			}
		})
	}
}

func TestManager_hydrationDropsHalfPopulatedState(t *testing.T) {
	store := &memStore{saved: Session{Token: "tok"}} // no user
	m, err := NewManager(store)
	if err != nil {
		t.Fatalf("NewManager() failed: %v", err)
	}
	if got := m.Current(); got.Token != "" || got.User != nil {
		t.Errorf("Current() = %+v, want empty session", got)
	}
}

func TestManager_Expire_once(t *testing.T) {
	store := &memStore{}
	m, err := NewManager(store)
	if err != nil {
		t.Fatalf("NewManager() failed: %v", err)
	}
	if err := m.Login(authed()); err != nil {
		t.Fatalf("Login() failed: %v", err)
	}

	const n = 16
	var wg sync.WaitGroup
	results := make(chan bool, n)
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			results <- m.Expire()
		}()
	}
	wg.Wait()
	close(results)

	var cleared int
	for ok := range results {
		if ok {
			cleared++
		}
	}
	if cleared != 1 {
		t.Errorf("Expire() cleared %d times, want exactly 1", cleared)
	}
	if store.clears != 1 {
		t.Errorf("store cleared %d times, want exactly 1", store.clears)
	}
	if m.Current().IsAuthenticated() {
		t.Error("session still authenticated after expiry")
	}
}

func TestUser_HasAnyRole(t *testing.T) {
	u := &User{Roles: []string{"kediri:guru", "komandan"}}

	if !u.HasAnyRole("superadmin", "kediri:guru") {
		t.Error("HasAnyRole() = false, want true")
	}
	if u.HasAnyRole("kertosono:guru") {
		t.Error("HasAnyRole(kertosono:guru) = true, want false")
	}
	var nilUser *User
	if nilUser.HasAnyRole("superadmin") {
		t.Error("nil user HasAnyRole() = true, want false")
	}
}
