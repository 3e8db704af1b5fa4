package store

import (
	"context"
	"sync"
	"time"
)

// MemoryStore is an in-memory record store for tests and single-process
// deployments. Values are copied on the way in and out so callers can't
// mutate stored state.
type MemoryStore struct {
	mu      sync.RWMutex
	records map[string]*Record
}

// NewMemoryStore creates an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{records: make(map[string]*Record)}
}

func (s *MemoryStore) Get(ctx context.Context, key string) (*Record, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.records[key].Clone(), nil
}

func (s *MemoryStore) Put(ctx context.Context, key string, rec Record) (*Record, error) {
	now := time.Now().UTC()
	rec.UpdatedAt = &now

	s.mu.Lock()
	s.records[key] = rec.Clone()
	s.mu.Unlock()
	return rec.Clone(), nil
}

func (s *MemoryStore) Delete(ctx context.Context, key string) error {
	s.mu.Lock()
	delete(s.records, key)
	s.mu.Unlock()
	return nil
}

func (s *MemoryStore) Close() error { return nil }

var _ Store = (*MemoryStore)(nil)
