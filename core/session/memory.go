package session

import (
	"context"
	"sync"
)

// MemoryStore is an in-memory Store implementation for tests and development.
type MemoryStore struct {
	mu     sync.RWMutex
	states map[int64]string
}

// NewMemoryStore constructs an empty MemoryStore.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{states: make(map[int64]string)}
}

// Get returns the stored state name, or empty when the chat has no session.
func (s *MemoryStore) Get(_ context.Context, chatID int64) (string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.states[chatID], nil
}

// Set stores the state name for the chat.
func (s *MemoryStore) Set(_ context.Context, chatID int64, state string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.states[chatID] = state
	return nil
}
