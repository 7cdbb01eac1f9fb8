package state

import (
	"database/sql"
	"encoding/json"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"
	"github.com/volatiletech/null/v8"

	"github.com/psbppwb/penilaian/core/participant"
	"github.com/psbppwb/penilaian/core/session"
)

// Storage keys. The statistics cache is keyed per track.
const (
	sessionKey       = "auth.session"
	statisticsKeyFmt = "statistik."
)

type stateRow struct {
	Key       string    `db:"key"`
	Value     string    `db:"value"`
	UpdatedAt null.Time `db:"updated_at"`
}

// Store reads and writes the persisted client state. It implements
// session.Store.
type Store struct {
	db *sqlx.DB
}

var _ session.Store = (*Store)(nil)

func NewStore(db *sqlx.DB) *Store {
	return &Store{db: db}
}

// LoadSession restores the persisted session; a missing row is simply
// a logged-out state.
func (s *Store) LoadSession() (session.Session, error) {
	var sess session.Session
	found, err := s.load(sessionKey, &sess)
	if err != nil {
		return session.Session{}, err
	}
	if !found {
		return session.Session{}, nil
	}
	return sess, nil
}

func (s *Store) SaveSession(sess session.Session) error {
	return s.save(sessionKey, sess)
}

func (s *Store) ClearSession() error {
	_, err := s.db.Exec(`DELETE FROM client_state WHERE key = ?`, sessionKey)
	return errors.Wrap(err, "clearing session")
}

// LoadStatistics returns the cached summary for a track. Before the
// first successful fetch the all-null default shape is returned, which
// is what the stats screen draws as placeholders.
func (s *Store) LoadStatistics(track participant.Track) (participant.StatisticsSummary, error) {
	var sum participant.StatisticsSummary
	if _, err := s.load(statisticsKeyFmt+string(track), &sum); err != nil {
		return participant.StatisticsSummary{}, err
	}
	return sum, nil
}

func (s *Store) SaveStatistics(track participant.Track, sum participant.StatisticsSummary) error {
	return s.save(statisticsKeyFmt+string(track), sum)
}

// StatisticsUpdatedAt reports when a track's cache was last written.
func (s *Store) StatisticsUpdatedAt(track participant.Track) (null.Time, error) {
	var row stateRow
	err := s.db.Get(&row, `SELECT key, value, updated_at FROM client_state WHERE key = ?`, statisticsKeyFmt+string(track))
	if err == sql.ErrNoRows {
		return null.Time{}, nil
	}
	if err != nil {
		return null.Time{}, errors.Wrap(err, "reading statistics timestamp")
	}
	return row.UpdatedAt, nil
}

func (s *Store) load(key string, out interface{}) (bool, error) {
	var row stateRow
	err := s.db.Get(&row, `SELECT key, value, updated_at FROM client_state WHERE key = ?`, key)
	if err == sql.ErrNoRows {
		return false, nil
	}
	if err != nil {
		return false, errors.Wrapf(err, "reading state %s", key)
	}
	if err := json.Unmarshal([]byte(row.Value), out); err != nil {
		return false, errors.Wrapf(err, "decoding state %s", key)
	}
	return true, nil
}

func (s *Store) save(key string, v interface{}) error {
	data, err := json.Marshal(v)
	if err != nil {
		return errors.Wrapf(err, "encoding state %s", key)
	}
	_, err = s.db.Exec(
		`INSERT INTO client_state (key, value, updated_at) VALUES (?, ?, ?)
		 ON CONFLICT(key) DO UPDATE SET value = excluded.value, updated_at = excluded.updated_at`,
		key, string(data), time.Now().UTC(),
	)
	return errors.Wrapf(err, "writing state %s", key)
}
