// Package reconciler merges freshly discovered candidate records into the
// persisted project records of a registry store.
//
// The merge is additive: set fields accumulate, the description grows by
// distinct lines, and nothing a candidate omits is ever erased.
package reconciler

import (
	"context"
	"strings"

	"github.com/louib/panbuild/pkg/errors"
	"github.com/louib/panbuild/pkg/logging"
	"github.com/louib/panbuild/pkg/projects"
)

// Store is the persistence capability the reconciler depends on.
type Store interface {
	// Load returns the record for id or a NotFoundError.
	Load(ctx context.Context, id string) (*projects.Project, error)
	// Save persists the record under id.
	Save(ctx context.Context, id string, p projects.Project) error
}

// Reconciler applies candidate batches to a store.
type Reconciler interface {
	// Apply reconciles every candidate in order. Per-candidate failures are
	// recorded in the result; only context cancellation is returned.
	Apply(ctx context.Context, candidates []projects.Candidate) (*Result, error)
}

type reconciler struct {
	store  Store
	dryRun bool
}

// New creates a Reconciler backed by the configured store.
func New(opts ...Option) (Reconciler, error) {
	options, err := newOptions(opts...)
	if err != nil {
		return nil, err
	}
	if options.store == nil {
		return nil, &errors.ValidationError{Field: "store", Message: "is required"}
	}
	return &reconciler{store: options.store, dryRun: options.dryRun}, nil
}

// Apply implements Reconciler.
func (r *reconciler) Apply(ctx context.Context, candidates []projects.Candidate) (*Result, error) {
	result := NewResult()
	result.DryRun = r.dryRun
	logger := logging.FromContext(ctx)

	var pending map[string]projects.Project
	if r.dryRun {
		pending = map[string]projects.Project{}
	}
	for _, c := range candidates {
		if err := ctx.Err(); err != nil {
			result.Finalize()
			return result, err
		}
		r.applyOne(ctx, c, pending, result)
	}

	result.Finalize()
	logger.Info().
		Int("created", result.Stats.Created).
		Int("updated", result.Stats.Updated).
		Int("unchanged", result.Stats.Unchanged).
		Int("skipped", result.Stats.Skipped).
		Int("failed", result.Stats.Failed).
		Dur("duration", result.Duration).
		Msg("Reconciled candidates")
	return result, nil
}

// applyOne reconciles a single candidate. In dry-run mode merged records
// go to pending instead of the store, so later candidates of the same batch
// see them.
func (r *reconciler) applyOne(ctx context.Context, c projects.Candidate, pending map[string]projects.Project, result *Result) {
	logger := logging.FromContext(logging.WithProject(ctx, c.Name))

	if err := c.Validate(); err != nil {
		logger.Debug().Err(err).Msg("Skipping invalid candidate")
		result.Stats.Skipped++
		return
	}
	if !projects.Persistable(c.Name) {
		logger.Debug().Msg("Skipping candidate with reserved id")
		result.Stats.Reserved++
		return
	}

	existing, err := r.load(ctx, c.Name, pending)
	switch {
	case errors.IsNotFound(err):
		existing = nil
	case err != nil:
		logger.Error().Err(err).Msg("Could not load persisted project")
		result.fail(c.Name, err)
		return
	}

	merged, err := Reconcile(existing, c)
	if err != nil {
		logger.Warn().Err(err).Msg("Could not reconcile candidate")
		result.fail(c.Name, err)
		return
	}

	action := ActionCreated
	if existing != nil {
		action = ActionUpdated
		if merged.Equal(*existing) {
			result.record(c.Name, ActionUnchanged)
			return
		}
	}

	if r.dryRun {
		pending[c.Name] = merged
	} else if err := r.store.Save(ctx, c.Name, merged); err != nil {
		logger.Error().Err(err).Msg("Could not save project")
		result.fail(c.Name, err)
		return
	}
	result.record(c.Name, action)
}

func (r *reconciler) load(ctx context.Context, id string, pending map[string]projects.Project) (*projects.Project, error) {
	if p, ok := pending[id]; ok {
		p = p.Clone()
		return &p, nil
	}
	return r.store.Load(ctx, id)
}

// Reconcile merges candidate into existing and returns the new record.
// A nil existing record means the project has never been seen, in which
// case the candidate becomes the record with set semantics applied. The
// candidate name must already be canonical. Neither argument is modified.
func Reconcile(existing *projects.Project, candidate projects.Candidate) (projects.Project, error) {
	if err := candidate.Validate(); err != nil {
		return projects.Project{}, err
	}
	if existing == nil {
		return candidate.Project().Normalized(), nil
	}
	if existing.Name != candidate.Name {
		return projects.Project{}, errors.NewMergeError(existing.Name,
			errors.NewValidationError(projects.FieldName, candidate.Name, "candidate name does not match record"))
	}

	out := existing.Clone()
	out.Description = MergeDescription(existing.Description, candidate.Description)
	if out.LongDescription == "" {
		out.LongDescription = candidate.LongDescription
	}
	out.Tags = projects.Union(existing.Tags, candidate.Tags)
	out.URLs = projects.Union(existing.URLs, candidate.URLs)
	out.VCSURLs = projects.Union(existing.VCSURLs, candidate.VCSURLs)
	out.Versions = projects.Union(existing.Versions, candidate.Versions)
	out.Aliases = projects.Union(existing.Aliases, candidate.Aliases)
	return out, nil
}

// MergeDescription combines two descriptions. An empty side yields the
// other one. Otherwise the candidate is appended on a new line unless its
// trimmed text already occurs in the trimmed existing text.
func MergeDescription(existing, candidate string) string {
	if strings.TrimSpace(candidate) == "" {
		return existing
	}
	if strings.TrimSpace(existing) == "" {
		return candidate
	}
	if strings.Contains(strings.TrimSpace(existing), strings.TrimSpace(candidate)) {
		return existing
	}
	return existing + "\n" + candidate
}
