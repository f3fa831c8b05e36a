// Package store persists project records keyed by their canonical id.
//
// Three backends are available: a directory of YAML documents (the
// default), an embedded SQLite database and an in-memory map for tests and
// dry runs. Any of them can be wrapped in a read-through LRU cache.
package store

import (
	"context"
	"fmt"

	"github.com/louib/panbuild/pkg/constants"
	"github.com/louib/panbuild/pkg/errors"
	"github.com/louib/panbuild/pkg/logging"
	"github.com/louib/panbuild/pkg/projects"
)

// ErrReservedID is returned when saving a record whose id contains the
// reserved separator.
var ErrReservedID = errors.ErrReservedID

// Store is a persisted collection of project records.
type Store interface {
	// Load returns the record stored under id, or a *errors.NotFoundError.
	Load(ctx context.Context, id string) (*projects.Project, error)

	// Save writes p under id, replacing any previous record.
	Save(ctx context.Context, id string, p projects.Project) error

	// List returns every stored id in ascending order.
	List(ctx context.Context) ([]string, error)

	// Close releases the resources held by the store.
	Close() error
}

// CompleteLister is implemented by stores that can list complete records
// without loading every one of them.
type CompleteLister interface {
	ListComplete(ctx context.Context) ([]string, error)
}

// ListComplete returns, in ascending order, the ids of records carrying at
// least one vcs url. Stores without a CompleteLister are scanned and
// unreadable records are skipped with a warning.
func ListComplete(ctx context.Context, s Store) ([]string, error) {
	if cl, ok := s.(CompleteLister); ok {
		return cl.ListComplete(ctx)
	}
	ids, err := s.List(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		p, err := s.Load(ctx, id)
		if err != nil {
			if ctxErr := ctx.Err(); ctxErr != nil {
				return nil, ctxErr
			}
			logging.FromContext(ctx).Warn().Err(err).Str("project", id).Msg("Skipping unreadable record")
			continue
		}
		if p.IsComplete() {
			out = append(out, id)
		}
	}
	return out, nil
}

// Backend names a store implementation.
type Backend string

// Available backends.
const (
	BackendFiles  Backend = "files"
	BackendSQLite Backend = "sqlite"
	BackendMemory Backend = "memory"
)

// Config selects and configures a backend.
type Config struct {
	Backend Backend
	// Dir is the record directory of the files backend.
	Dir string
	// SQLitePath is the database file of the sqlite backend.
	SQLitePath string
	// CacheSize enables a read cache of that many records when positive.
	CacheSize int
}

// Open creates the store described by cfg.
func Open(ctx context.Context, cfg Config) (Store, error) {
	var (
		s   Store
		err error
	)
	switch cfg.Backend {
	case BackendFiles, "":
		dir := cfg.Dir
		if dir == "" {
			dir = constants.DefaultProjectsDir
		}
		s, err = NewFileStore(dir)
	case BackendSQLite:
		s, err = OpenSQLite(ctx, cfg.SQLitePath)
	case BackendMemory:
		s = NewMemoryStore()
	default:
		return nil, errors.NewConfigError("store", fmt.Sprintf("unknown backend %q", cfg.Backend), nil)
	}
	if err != nil {
		return nil, err
	}
	if cfg.CacheSize > 0 {
		cached, err := NewCachedStore(s, cfg.CacheSize)
		if err != nil {
			_ = s.Close()
			return nil, err
		}
		return cached, nil
	}
	return s, nil
}

// checkID rejects ids that must never be written.
func checkID(id string) error {
	if !projects.Persistable(id) {
		return fmt.Errorf("%w: %q", ErrReservedID, id)
	}
	return nil
}

// prepare checks the id and returns the normalized record to write.
func prepare(id string, p projects.Project) (projects.Project, error) {
	if err := checkID(id); err != nil {
		return p, err
	}
	if p.Name == "" {
		p.Name = id
	}
	if p.Name != id {
		return p, errors.NewValidationError(projects.FieldName, p.Name, fmt.Sprintf("does not match id %q", id))
	}
	return p.Normalized(), nil
}

func notFound(id string) error {
	return errors.NewNotFoundError("project", id)
}
