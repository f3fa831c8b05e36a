package panbuild

import (
	"context"

	"github.com/louib/panbuild/internal/batch"
	"github.com/louib/panbuild/pkg/logging"
)

// MergeResult summarizes a batch merge.
type MergeResult = batch.Result

// Merger consolidates a directory of discovered record files.
type Merger interface {
	Merge(ctx context.Context, dir string, dryRun bool) (*MergeResult, error)
}

// Merge merges every JSON record file in dir and writes the complete
// projects to the client's output file in the same directory.
func (c *client) Merge(ctx context.Context, dir string, dryRun bool) (*MergeResult, error) {
	if ctx == nil {
		ctx = context.Background()
	}
	ctx = logging.WithRunID(c.options.with(ctx), logging.NewRunID())
	return batch.Merge(ctx, dir,
		batch.WithOutputFileName(c.options.outputFileName),
		batch.WithDryRun(dryRun),
	)
}
