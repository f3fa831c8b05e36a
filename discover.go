package panbuild

import (
	"context"
	"fmt"
	"time"

	"github.com/louib/panbuild/pkg/errors"
	"github.com/louib/panbuild/pkg/logging"
	"github.com/louib/panbuild/pkg/reconciler"
	"github.com/louib/panbuild/pkg/sources"
)

// Discoverer fetches sources and reconciles their candidates into the store.
type Discoverer interface {
	Discover(ctx context.Context, opts ...DiscoverOption) (*DiscoverResult, error)
}

// SourceResult is the outcome of one source within a discovery run.
type SourceResult struct {
	ID         sources.ID
	Name       string
	Candidates int
	// Err is the transport or parse failure that stopped the traversal.
	// Candidates collected before it were still reconciled.
	Err       error
	Reconcile *reconciler.Result
	Duration  time.Duration
}

// DiscoverResult summarizes a discovery run.
type DiscoverResult struct {
	RunID    string
	Sources  []SourceResult
	Totals   *reconciler.Result
	DryRun   bool
	Duration time.Duration
}

// HasErrors reports whether any source failed or any record could not be
// reconciled.
func (r *DiscoverResult) HasErrors() bool {
	for _, s := range r.Sources {
		if s.Err != nil {
			return true
		}
	}
	return len(r.Totals.Errors) > 0
}

// Failed returns the sources whose traversal was cut short.
func (r *DiscoverResult) Failed() []SourceResult {
	var out []SourceResult
	for _, s := range r.Sources {
		if s.Err != nil {
			out = append(out, s)
		}
	}
	return out
}

// Discover runs every selected source in order. A failing source never
// stops the run: its partial candidates are reconciled and the next source
// starts. Only invalid options and cancellation are returned as errors.
func (c *client) Discover(ctx context.Context, opts ...DiscoverOption) (*DiscoverResult, error) {
	if ctx == nil {
		ctx = context.Background()
	}
	options := NewDiscoverOptions(opts...)
	if err := options.Validate(); err != nil {
		return nil, err
	}

	if options.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, options.Timeout)
		defer cancel()
	}

	c.run.Lock()
	defer c.run.Unlock()

	runID := logging.NewRunID()
	ctx = logging.WithRunID(c.options.with(ctx), runID)
	logger := logging.FromContext(ctx)

	rec, err := reconciler.New(reconciler.WithStore(c.store), reconciler.WithDryRun(options.DryRun))
	if err != nil {
		return nil, err
	}

	start := time.Now()
	result := &DiscoverResult{
		RunID:  runID,
		Totals: reconciler.NewResult(),
		DryRun: options.DryRun,
	}
	result.Totals.DryRun = options.DryRun

	srcs := c.sources.Filter(options.SourceIDs...)
	logger.Info().Int("sources", len(srcs)).Bool("dry_run", options.DryRun).Msg("Starting discovery")

	for _, src := range srcs {
		if err := ctx.Err(); err != nil {
			return result, errors.Join(errors.ErrCanceled, err)
		}
		sr, err := c.discoverOne(ctx, rec, src)
		result.Sources = append(result.Sources, sr)
		result.Totals.Add(sr.Reconcile)
		c.hooks.trigger(sr.Reconcile)
		if err != nil {
			return result, errors.Join(errors.ErrCanceled, err)
		}
	}

	result.Totals.Finalize()
	result.Duration = time.Since(start)
	logger.Info().
		Int("created", result.Totals.Stats.Created).
		Int("updated", result.Totals.Stats.Updated).
		Int("unchanged", result.Totals.Stats.Unchanged).
		Int("failed_sources", len(result.Failed())).
		Dur("duration", result.Duration).
		Msg("Discovery complete")
	return result, nil
}

// discoverOne fetches and reconciles a single source. The returned error
// is only set on cancellation.
func (c *client) discoverOne(ctx context.Context, rec reconciler.Reconciler, src sources.Source) (SourceResult, error) {
	ctx = logging.WithSource(ctx, src.Name())
	logger := logging.FromContext(ctx)
	start := time.Now()

	sr := SourceResult{ID: src.ID(), Name: src.Name()}
	logger.Info().Msg("Fetching")

	candidates, fetchErr := src.Fetch(ctx)
	sr.Candidates = len(candidates)
	if fetchErr != nil {
		sr.Err = fmt.Errorf("%s: %w", src.Name(), fetchErr)
		logger.Warn().Err(fetchErr).Int("candidates", len(candidates)).Msg("Source stopped early")
	}

	applied, err := rec.Apply(ctx, candidates)
	sr.Reconcile = applied
	sr.Duration = time.Since(start)
	return sr, err
}
