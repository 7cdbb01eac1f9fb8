// Package queue holds the evaluator's in-progress working set of
// selected participants awaiting scoring.
package queue

import (
	"sync"

	"github.com/psbppwb/penilaian/core/participant"
)

// Store is the selected-participant working set: an ordered queue, an
// active-index cursor and the per-participant drafts, keyed by
// participant id (never by position). None of its operations return
// user-visible errors; they are pure structural edits.
//
// Invariants, re-checked after every mutation:
//   - no two entries share an id
//   - 0 <= activeIndex < max(1, len(queue)); empty queue => 0
type Store struct {
	mu     sync.RWMutex
	items  []participant.Participant
	active int
	drafts map[int]*participant.Draft
}

func NewStore() *Store {
	return &Store{drafts: make(map[int]*participant.Draft)}
}

// Toggle adds p if absent and removes it (dropping its draft) if
// present. Used by listing checkboxes.
func (s *Store) Toggle(p participant.Participant) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if i := s.indexOf(p.ID); i >= 0 {
		s.removeAt(i)
		return
	}
	s.items = append(s.items, p)
	s.clamp()
}

// Add appends p if absent. A duplicate add is silently ignored rather
// than removing the entry, which is what the hardware-scan flow needs:
// scanning the same card twice must not kick the participant out.
func (s *Store) Add(p participant.Participant) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.indexOf(p.ID) >= 0 {
		return
	}
	s.items = append(s.items, p)
	s.clamp()
}

// IsSelected reports membership by id.
func (s *Store) IsSelected(p participant.Participant) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.indexOf(p.ID) >= 0
}

// Clear empties the queue and drafts and resets the cursor.
func (s *Store) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.items = nil
	s.active = 0
	s.drafts = make(map[int]*participant.Draft)
}

// SetActiveIndex moves the cursor. Out-of-range values are corrected
// by the clamp invariant rather than rejected.
func (s *Store) SetActiveIndex(i int) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.active = i
	s.clamp()
}

// RemoveAt removes the participant at i and its draft. When the
// removed entry was both the last element and the active one, the
// cursor backs up by one (floor 0); when an entry before the cursor is
// removed, the cursor follows it down so it keeps pointing at the same
// participant. Whether an empty queue triggers navigation is the
// caller's decision, not the store's.
func (s *Store) RemoveAt(i int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.removeAt(i)
}

// Remove removes the participant with the given id and its draft, with
// the same cursor rules as RemoveAt. Callers that may race with other
// queue mutations should prefer this over a position captured earlier:
// positions go stale, ids do not.
func (s *Store) Remove(id int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.removeAt(s.indexOf(id))
}

func (s *Store) removeAt(i int) {
	if i < 0 || i >= len(s.items) {
		return
	}
	id := s.items[i].ID
	s.items = append(s.items[:i], s.items[i+1:]...)
	delete(s.drafts, id)

	if i < s.active || (i == s.active && i == len(s.items)) {
		s.active--
	}
	s.clamp()
}

// clamp enforces the cursor invariant; it must run after every
// queue-length change, not just on explicit cursor moves, because a
// removal can shift the last valid index below the cursor.
func (s *Store) clamp() {
	if s.active < 0 || s.active >= len(s.items) {
		s.active = 0
	}
}

// Len returns the number of queued participants.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.items)
}

// ActiveIndex returns the cursor position.
func (s *Store) ActiveIndex() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.active
}

// Active returns the participant under the cursor.
func (s *Store) Active() (participant.Participant, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if len(s.items) == 0 {
		return participant.Participant{}, false
	}
	return s.items[s.active], true
}

// At returns the participant at i.
func (s *Store) At(i int) (participant.Participant, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if i < 0 || i >= len(s.items) {
		return participant.Participant{}, false
	}
	return s.items[i], true
}

// IndexOf returns the position of the participant with the given id,
// or -1.
func (s *Store) IndexOf(id int) int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.indexOf(id)
}

func (s *Store) indexOf(id int) int {
	for i, p := range s.items {
		if p.ID == id {
			return i
		}
	}
	return -1
}

// Participants returns a copy of the queue in selection order.
func (s *Store) Participants() []participant.Participant {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]participant.Participant, len(s.items))
	copy(out, s.items)
	return out
}

// DraftFor returns the draft for the given participant id, if one has
// been created.
func (s *Store) DraftFor(id int) (*participant.Draft, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	d, ok := s.drafts[id]
	return d, ok
}

// SetDraft stores the draft for a queued participant. Drafts for ids
// not in the queue are dropped to keep the map from outliving its
// participant.
func (s *Store) SetDraft(id int, d *participant.Draft) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.indexOf(id) < 0 {
		return
	}
	s.drafts[id] = d
}
