// Package panbuild discovers software projects across forges, package
// managers and distribution archives, and reconciles them into a single
// store of canonical project records.
//
// Example usage:
//
//	pb, err := panbuild.New(panbuild.WithStore(st))
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer pb.Close()
//
//	pb.OnProjectCreated(func(c reconciler.Change) {
//	    log.Printf("new project: %s", c.ID)
//	})
//
//	result, err := pb.Discover(ctx, panbuild.WithSourceIDs(sources.HomebrewID))
//	if err != nil {
//	    log.Fatal(err)
//	}
//	fmt.Println(result.Totals.Summary())
package panbuild

import (
	"sync"

	"github.com/louib/panbuild/pkg/constants"
	"github.com/louib/panbuild/pkg/errors"
	"github.com/louib/panbuild/pkg/logging"
	"github.com/louib/panbuild/pkg/sources"
	"github.com/louib/panbuild/pkg/store"
)

// Compile-time interface checks.
var (
	_ Discoverer = (*client)(nil)
	_ Merger     = (*client)(nil)
	_ Hooks      = (*client)(nil)
)

// Client discovers projects and maintains the project store.
type Client interface {
	// Discoverer fetches sources and reconciles them into the store
	Discoverer

	// Merger consolidates directories of discovered records
	Merger

	// Hooks provides access to change callbacks
	Hooks

	// Store returns the project store.
	Store() store.Store

	// Sources returns the configured sources.
	Sources() []sources.Source

	// Close releases the store.
	Close() error
}

type client struct {
	options *options

	// run serializes Discover calls; the store has no locking of its own.
	run sync.Mutex

	store   store.Store
	sources *sources.Sources
	hooks   *hooks
}

// New creates a Client. Without WithStore, records are kept as YAML files
// under ./projects. Without WithSources, every registry is crawled with
// its default settings.
func New(opts ...Option) (Client, error) {
	o, err := defaults().apply(opts...)
	if err != nil {
		return nil, err
	}

	c := &client{
		options: o,
		store:   o.store,
		sources: o.sources,
		hooks:   newHooks(),
	}

	if c.store == nil {
		fs, err := store.NewFileStore(constants.DefaultProjectsDir)
		if err != nil {
			return nil, errors.NewConfigError("store", "cannot open default store", err)
		}
		c.store = fs
	}
	if c.sources == nil {
		c.sources = DefaultSources(nil)
	}

	logging.FromContext(o.context()).Debug().
		Int("sources", c.sources.Len()).
		Msg("Client created")
	return c, nil
}

func (c *client) Store() store.Store { return c.store }

func (c *client) Sources() []sources.Source { return c.sources.List() }

func (c *client) Close() error {
	return c.store.Close()
}
