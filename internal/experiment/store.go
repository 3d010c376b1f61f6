package experiment

import "sync"

// #region store-struct

type assignmentKey struct {
	session    string
	experiment string
}

// Store memoizes assignments per (session, experiment) for the life of the
// process. Entries are never evicted; memory grows with the number of
// distinct pairs seen, so long-lived hosts should bound it by restarting.
type Store struct {
	mu          sync.RWMutex
	assignments map[assignmentKey]Variant
}

// NewStore returns an empty assignment store.
func NewStore() *Store {
	return &Store{assignments: make(map[assignmentKey]Variant)}
}

// #endregion

// #region get-or-assign

// GetOrAssign returns the stored variant for (sessionKey, exp.ID), computing
// and storing it on first access. created is true when this call stored it.
// The computation runs outside the lock; it is pure, so a concurrent caller
// racing on the same key computes the same variant.
func (s *Store) GetOrAssign(sessionKey string, exp Experiment) (v Variant, created bool) {
	key := assignmentKey{session: sessionKey, experiment: exp.ID}

	s.mu.RLock()
	v, ok := s.assignments[key]
	s.mu.RUnlock()
	if ok {
		return v, false
	}

	v = AssignVariant(sessionKey, exp.ID, exp.Variants)

	s.mu.Lock()
	defer s.mu.Unlock()
	if existing, ok := s.assignments[key]; ok {
		return existing, false
	}
	s.assignments[key] = v
	return v, true
}

// #endregion

// #region lookup

// Lookup returns an existing assignment without computing one.
func (s *Store) Lookup(sessionKey, experimentID string) (Variant, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	v, ok := s.assignments[assignmentKey{session: sessionKey, experiment: experimentID}]
	return v, ok
}

// Len returns the number of stored assignments.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.assignments)
}

// #endregion
