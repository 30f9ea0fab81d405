package memstore

import (
	"context"
	"sync"
)

// Store is an in-memory implementation of cache.Store.
type Store struct {
	mu      sync.RWMutex
	entries map[string]string
}

// New creates an empty in-memory store.
func New() *Store {
	return &Store{entries: make(map[string]string)}
}

// Close implements cache.Store.
func (s *Store) Close() error { return nil }

// Get returns the text stored under key.
func (s *Store) Get(ctx context.Context, key string) (string, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	text, ok := s.entries[key]
	return text, ok, nil
}

// Put stores text under key, replacing any previous value.
func (s *Store) Put(ctx context.Context, key, text string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries[key] = text
	return nil
}

// Len reports the number of stored entries.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.entries)
}
