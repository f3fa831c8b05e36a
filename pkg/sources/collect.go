package sources

import (
	"context"
	"iter"

	"github.com/louib/panbuild/pkg/logging"
	"github.com/louib/panbuild/pkg/projects"
)

// AdaptFunc maps one raw registry record to a candidate. It returns false
// when the record must be skipped (a fork, a variant, or a record missing
// its name).
type AdaptFunc[R any] func(raw R) (projects.Candidate, bool)

// Collect drains a lazy sequence of raw record batches, adapting every
// record. The traversal stops at the first error, which is returned along
// with every candidate collected before it.
func Collect[R any](ctx context.Context, batches iter.Seq2[[]R, error], adapt AdaptFunc[R]) ([]projects.Candidate, error) {
	logger := logging.FromContext(ctx)

	var (
		out     []projects.Candidate
		batch   int
		skipped int
	)
	for records, err := range batches {
		if err != nil {
			logger.Warn().Err(err).
				Int("batches", batch).
				Int("candidates", len(out)).
				Msg("Traversal aborted, keeping collected candidates")
			return out, err
		}
		batch++
		before := len(out)
		for _, raw := range records {
			c, ok := adapt(raw)
			if !ok {
				skipped++
				continue
			}
			out = append(out, c)
		}
		logger.Debug().
			Int("batch", batch).
			Int("records", len(records)).
			Int("candidates", len(out)-before).
			Msg("Processed batch")
	}

	logger.Debug().Int("skipped", skipped).Int("candidates", len(out)).Msg("Traversal complete")
	return out, nil
}

// Single wraps a slice of records as a one-batch sequence, for sources
// that deliver their whole catalog at once.
func Single[R any](records []R, err error) iter.Seq2[[]R, error] {
	return func(yield func([]R, error) bool) {
		if err != nil {
			yield(nil, err)
			return
		}
		yield(records, nil)
	}
}
