package reconciler

import (
	"fmt"
	"time"
)

// Action describes what happened to a record during reconciliation.
type Action string

// Actions.
const (
	ActionCreated   Action = "created"
	ActionUpdated   Action = "updated"
	ActionUnchanged Action = "unchanged"
	ActionFailed    Action = "failed"
)

// Change records the action taken for one canonical id.
type Change struct {
	ID     string
	Action Action
	Err    error
}

// Stats counts reconciliation outcomes.
type Stats struct {
	Created   int
	Updated   int
	Unchanged int
	// Skipped counts candidates without a canonical name.
	Skipped int
	// Reserved counts candidates whose id is never persisted.
	Reserved int
	Failed   int
}

// Total returns the number of candidates seen.
func (s Stats) Total() int {
	return s.Created + s.Updated + s.Unchanged + s.Skipped + s.Reserved + s.Failed
}

// Result represents the outcome of applying a candidate batch.
type Result struct {
	Changes   []Change
	Stats     Stats
	Errors    []error
	DryRun    bool
	StartTime time.Time
	EndTime   time.Time
	Duration  time.Duration
}

// NewResult creates a result starting now.
func NewResult() *Result {
	return &Result{
		Changes:   []Change{},
		Errors:    []error{},
		StartTime: time.Now(),
	}
}

// Finalize stamps the end time and duration.
func (r *Result) Finalize() {
	r.EndTime = time.Now()
	r.Duration = r.EndTime.Sub(r.StartTime)
}

// Add folds another result into r.
func (r *Result) Add(other *Result) {
	if other == nil {
		return
	}
	r.Changes = append(r.Changes, other.Changes...)
	r.Errors = append(r.Errors, other.Errors...)
	r.Stats.Created += other.Stats.Created
	r.Stats.Updated += other.Stats.Updated
	r.Stats.Unchanged += other.Stats.Unchanged
	r.Stats.Skipped += other.Stats.Skipped
	r.Stats.Reserved += other.Stats.Reserved
	r.Stats.Failed += other.Stats.Failed
}

// HasChanges reports whether any record was created or updated.
func (r *Result) HasChanges() bool {
	return r.Stats.Created+r.Stats.Updated > 0
}

// Summary returns a one-line human readable summary.
func (r *Result) Summary() string {
	prefix := "Reconciled"
	if r.DryRun {
		prefix = "Dry run"
	}
	return fmt.Sprintf("%s: %d created, %d updated, %d unchanged, %d skipped, %d failed",
		prefix, r.Stats.Created, r.Stats.Updated, r.Stats.Unchanged, r.Stats.Skipped+r.Stats.Reserved, r.Stats.Failed)
}

func (r *Result) record(id string, action Action) {
	r.Changes = append(r.Changes, Change{ID: id, Action: action})
	switch action {
	case ActionCreated:
		r.Stats.Created++
	case ActionUpdated:
		r.Stats.Updated++
	case ActionUnchanged:
		r.Stats.Unchanged++
	}
}

func (r *Result) fail(id string, err error) {
	r.Changes = append(r.Changes, Change{ID: id, Action: ActionFailed, Err: err})
	r.Errors = append(r.Errors, fmt.Errorf("%s: %w", id, err))
	r.Stats.Failed++
}
