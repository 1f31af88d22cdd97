package filingconfig

import (
	"context"
	"sync"

	"efile/pkg/platform/sentinel"
)

// InMemoryStore keeps configuration in a map.
type InMemoryStore struct {
	mu      sync.RWMutex
	entries map[Key]string
}

func NewInMemory() *InMemoryStore {
	return &InMemoryStore{entries: make(map[Key]string)}
}

func (s *InMemoryStore) Get(_ context.Context, key Key) (string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	v, ok := s.entries[key]
	if !ok {
		return "", sentinel.ErrNotFound
	}
	return v, nil
}

func (s *InMemoryStore) Put(_ context.Context, entry Entry) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries[entry.Key] = entry.Value
	return nil
}
