package store

import (
	"context"

	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/louib/panbuild/pkg/errors"
	"github.com/louib/panbuild/pkg/projects"
)

// CachedStore is a read-through LRU cache in front of another store.
// Misses are not cached.
type CachedStore struct {
	next  Store
	cache *lru.Cache[string, projects.Project]
}

// NewCachedStore wraps next with a cache of size records.
func NewCachedStore(next Store, size int) (*CachedStore, error) {
	cache, err := lru.New[string, projects.Project](size)
	if err != nil {
		return nil, errors.NewConfigError("store", "invalid cache size", err)
	}
	return &CachedStore{next: next, cache: cache}, nil
}

// Load implements Store.
func (s *CachedStore) Load(ctx context.Context, id string) (*projects.Project, error) {
	if p, ok := s.cache.Get(id); ok {
		p = p.Clone()
		return &p, nil
	}
	p, err := s.next.Load(ctx, id)
	if err != nil {
		return nil, err
	}
	s.cache.Add(id, p.Clone())
	return p, nil
}

// Save implements Store. The cached entry is invalidated and refilled by
// the next Load.
func (s *CachedStore) Save(ctx context.Context, id string, p projects.Project) error {
	s.cache.Remove(id)
	return s.next.Save(ctx, id, p)
}

// List implements Store.
func (s *CachedStore) List(ctx context.Context) ([]string, error) {
	return s.next.List(ctx)
}

// ListComplete implements CompleteLister.
func (s *CachedStore) ListComplete(ctx context.Context) ([]string, error) {
	return ListComplete(ctx, s.next)
}

// Len returns the number of cached records.
func (s *CachedStore) Len() int { return s.cache.Len() }

// Unwrap returns the underlying store.
func (s *CachedStore) Unwrap() Store { return s.next }

// Close implements Store.
func (s *CachedStore) Close() error {
	s.cache.Purge()
	return s.next.Close()
}
