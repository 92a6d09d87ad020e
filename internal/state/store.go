package state

import "sync"

// Store holds the latest published snapshot. The scheduler replaces it
// at the end of each tick; the broadcast hub reads it when serving
// initial_state and request_state messages.
type Store struct {
	mu      sync.RWMutex
	current *SystemSnapshot
}

func NewStore() *Store {
	return &Store{current: NewSnapshot()}
}

func (s *Store) Set(snap *SystemSnapshot) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.current = snap
}

func (s *Store) Current() *SystemSnapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.current
}
