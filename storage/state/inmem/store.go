// Package inmem is a map-backed stand-in for the sqlite state store,
// used in tests and anywhere persistence is not wanted.
package inmem

import (
	"sync"

	"github.com/psbppwb/penilaian/core/participant"
	"github.com/psbppwb/penilaian/core/session"
)

type Store struct {
	mu    sync.RWMutex
	sess  *session.Session
	stats map[participant.Track]participant.StatisticsSummary
}

var _ session.Store = (*Store)(nil)

func NewStore() *Store {
	return &Store{stats: make(map[participant.Track]participant.StatisticsSummary)}
}

func (s *Store) LoadSession() (session.Session, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.sess == nil {
		return session.Session{}, nil
	}
	return *s.sess, nil
}

func (s *Store) SaveSession(sess session.Session) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sess = &sess
	return nil
}

func (s *Store) ClearSession() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sess = nil
	return nil
}

func (s *Store) LoadStatistics(track participant.Track) (participant.StatisticsSummary, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.stats[track], nil
}

func (s *Store) SaveStatistics(track participant.Track, sum participant.StatisticsSummary) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.stats[track] = sum
	return nil
}
