package store

import (
	"context"
	"maps"
	"slices"
	"sync"

	"github.com/louib/panbuild/pkg/projects"
)

// MemoryStore keeps records in a map. It is safe for concurrent use.
type MemoryStore struct {
	mu      sync.RWMutex
	records map[string]projects.Project
}

// NewMemoryStore returns an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{records: make(map[string]projects.Project)}
}

// Load implements Store.
func (s *MemoryStore) Load(_ context.Context, id string) (*projects.Project, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	p, ok := s.records[id]
	if !ok {
		return nil, notFound(id)
	}
	p = p.Clone()
	return &p, nil
}

// Save implements Store.
func (s *MemoryStore) Save(_ context.Context, id string, p projects.Project) error {
	p, err := prepare(id, p)
	if err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.records[id] = p.Clone()
	return nil
}

// List implements Store.
func (s *MemoryStore) List(_ context.Context) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return slices.Sorted(maps.Keys(s.records)), nil
}

// ListComplete implements CompleteLister.
func (s *MemoryStore) ListComplete(_ context.Context) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	ids := []string{}
	for id, p := range s.records {
		if p.IsComplete() {
			ids = append(ids, id)
		}
	}
	slices.Sort(ids)
	return ids, nil
}

// Len returns the number of stored records.
func (s *MemoryStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.records)
}

// Close implements Store.
func (s *MemoryStore) Close() error { return nil }
