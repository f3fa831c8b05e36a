// Package sources defines the contract between registry adapters and the
// discovery pipeline.
//
// A Source fetches raw records from one registry and maps each of them to
// a projects.Candidate. Adapters never deduplicate across records; that is
// left to the reconciler once candidates converge on a canonical name.
package sources

import (
	"context"
	"slices"
	"sync"

	"github.com/louib/panbuild/pkg/projects"
)

// ID identifies a kind of registry.
type ID string

// String returns the string representation of a source id.
func (id ID) String() string {
	return string(id)
}

// Known source ids.
const (
	GitHubID   ID = "github"
	GitLabID   ID = "gitlab"
	HomebrewID ID = "homebrew"
	DebianID   ID = "debian"
)

// IDs returns all known source ids in discovery order.
func IDs() []ID {
	return []ID{GitHubID, GitLabID, HomebrewID, DebianID}
}

// IsValid returns true if the id is one of the defined constants.
func (id ID) IsValid() bool {
	return slices.Contains(IDs(), id)
}

// Source produces candidate records from one registry.
type Source interface {
	// ID returns the kind of registry.
	ID() ID

	// Name identifies this instance, e.g. "gitlab:salsa.debian.org".
	Name() string

	// Fetch traverses the registry and returns the candidates it maps.
	// On a transport failure Fetch returns the candidates collected so far
	// together with the error.
	Fetch(ctx context.Context) ([]projects.Candidate, error)
}

// Sources is an ordered, thread-safe container of sources. Several sources
// may share an ID (one per GitLab instance, for example).
type Sources struct {
	mu      sync.RWMutex
	sources []Source
}

// NewSources creates a container holding srcs in order.
func NewSources(srcs ...Source) *Sources {
	return &Sources{sources: slices.Clone(srcs)}
}

// Add appends a source.
func (s *Sources) Add(src Source) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sources = append(s.sources, src)
}

// Len returns the number of sources.
func (s *Sources) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.sources)
}

// List returns the sources in registration order.
func (s *Sources) List() []Source {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return slices.Clone(s.sources)
}

// Filter returns the sources whose ID is in ids, in registration order.
// An empty ids returns every source.
func (s *Sources) Filter(ids ...ID) []Source {
	all := s.List()
	if len(ids) == 0 {
		return all
	}
	return slices.DeleteFunc(all, func(src Source) bool {
		return !slices.Contains(ids, src.ID())
	})
}
