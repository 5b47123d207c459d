package storage

import (
	"context"
	"sync"
)

// InMemoryStorage keeps entries for the lifetime of the process
type InMemoryStorage struct {
	mu      sync.RWMutex
	entries map[string]map[string]string
}

func NewInMemoryStorage() *InMemoryStorage {
	return &InMemoryStorage{
		entries: make(map[string]map[string]string),
	}
}

func (s *InMemoryStorage) Get(ctx context.Context, scope, key string) (string, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	value, ok := s.entries[scope][key]
	return value, ok, nil
}

func (s *InMemoryStorage) Set(ctx context.Context, scope, key, value string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.entries[scope] == nil {
		s.entries[scope] = make(map[string]string)
	}
	s.entries[scope][key] = value
	return nil
}
