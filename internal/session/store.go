// Package session keeps per-conversation rolling histories in memory.
// State lives for the process lifetime only; there is no persistence.
package session

import (
	"sync"
	"time"

	"github.com/solacelabs/solace/internal/history"
)

type entry struct {
	turns      history.History
	lastActive time.Time
}

// Store maps a conversation id to its history. The store owns all stored
// histories: values are copied on the way in and out, so callers never share
// a backing array with the store.
type Store struct {
	mu       sync.RWMutex
	sessions map[int64]*entry
	now      func() time.Time
}

// NewStore creates an empty session store.
func NewStore() *Store {
	return &Store{
		sessions: make(map[int64]*entry),
		now:      time.Now,
	}
}

// GetOrCreate returns a copy of the history for id, creating an empty
// session if none exists yet.
func (s *Store) GetOrCreate(id int64) history.History {
	s.mu.Lock()
	defer s.mu.Unlock()

	e, ok := s.sessions[id]
	if !ok {
		e = &entry{}
		s.sessions[id] = e
	}
	e.lastActive = s.now()
	return history.Clone(e.turns)
}

// Reset replaces the history for id with an empty one, creating the session
// if absent. Idempotent.
func (s *Store) Reset(id int64) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.sessions[id] = &entry{lastActive: s.now()}
}

// Replace overwrites the stored history for id. Callers are expected to have
// already applied the history bound.
func (s *Store) Replace(id int64, h history.History) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.sessions[id] = &entry{turns: history.Clone(h), lastActive: s.now()}
}

// Len returns the number of tracked sessions.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return len(s.sessions)
}

// EvictIdle removes sessions that have seen no activity for longer than
// maxIdle and returns the ids removed.
func (s *Store) EvictIdle(maxIdle time.Duration) []int64 {
	s.mu.Lock()
	defer s.mu.Unlock()

	cutoff := s.now().Add(-maxIdle)
	var evicted []int64
	for id, e := range s.sessions {
		if e.lastActive.Before(cutoff) {
			delete(s.sessions, id)
			evicted = append(evicted, id)
		}
	}
	return evicted
}
