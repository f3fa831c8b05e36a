// Package discover implements the discover command.
package discover

import (
	"context"
	"strconv"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/louib/panbuild"
	"github.com/louib/panbuild/internal/cmd/output"
	"github.com/louib/panbuild/pkg/constants"
	"github.com/louib/panbuild/pkg/errors"
	"github.com/louib/panbuild/pkg/sources"
)

// AppContext is what the discover command needs from the app.
type AppContext interface {
	Client() (panbuild.Client, error)
	Logger() *zerolog.Logger
	OutputFormat() string
}

// Report is the serialized outcome of one source.
type Report struct {
	Source     string `json:"source" yaml:"source"`
	Candidates int    `json:"candidates" yaml:"candidates"`
	Created    int    `json:"created" yaml:"created"`
	Updated    int    `json:"updated" yaml:"updated"`
	Unchanged  int    `json:"unchanged" yaml:"unchanged"`
	Skipped    int    `json:"skipped" yaml:"skipped"`
	Reserved   int    `json:"reserved" yaml:"reserved"`
	Failed     int    `json:"failed" yaml:"failed"`
	Failure    string `json:"failure,omitempty" yaml:"failure,omitempty"`
	Error      string `json:"error,omitempty" yaml:"error,omitempty"`
}

// Failure kinds of a source that did not complete.
const (
	FailureTransport = "transport"
	FailureParse     = "parse"
	FailureCanceled  = "canceled"
	FailureOther     = "other"
)

// classify names the kind of error that stopped a source.
func classify(err error) string {
	switch {
	case errors.IsTransport(err):
		return FailureTransport
	case errors.IsParseError(err):
		return FailureParse
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return FailureCanceled
	default:
		return FailureOther
	}
}

// NewCommand creates the discover command.
func NewCommand(app AppContext) *cobra.Command {
	var (
		dryRun  bool
		timeout time.Duration
	)

	cmd := &cobra.Command{
		Use:     "discover [source...]",
		GroupID: "core",
		Short:   "Fetch registries and reconcile projects into the store",
		Long: `Discover walks every enabled registry in order, turns its records into
candidate projects and merges them into the project store.

A registry that fails part way keeps the candidates it produced before the
failure, and the next registry still runs.`,
		Example: `  panbuild discover                  # every enabled registry
  panbuild discover github debian    # only these registries
  panbuild discover --dry-run        # report changes without writing`,
		ValidArgs: validArgs(),
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := app.Client()
			if err != nil {
				return err
			}

			ids := make([]sources.ID, len(args))
			for i, a := range args {
				ids[i] = sources.ID(a)
			}

			result, err := client.Discover(cmd.Context(),
				panbuild.WithSourceIDs(ids...),
				panbuild.WithDryRun(dryRun),
				panbuild.WithTimeout(timeout),
			)
			if result == nil {
				return err
			}

			reports := Reports(result)
			format := output.DetectFormat(app.OutputFormat())
			if werr := output.Write(cmd.OutOrStdout(), format, reports, Table(reports)); werr != nil {
				return werr
			}
			if err != nil {
				return err
			}

			for _, failed := range result.Failed() {
				app.Logger().Warn().Err(failed.Err).Str("source", failed.Name).Msg("Source did not complete")
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "reconcile without writing to the store")
	cmd.Flags().DurationVar(&timeout, "timeout", constants.CommandTimeout, "abort the run after this duration")
	return cmd
}

func validArgs() []string {
	ids := sources.IDs()
	out := make([]string, len(ids))
	for i, id := range ids {
		out[i] = string(id)
	}
	return out
}

// Reports flattens a discovery result, one entry per source.
func Reports(result *panbuild.DiscoverResult) []Report {
	reports := make([]Report, 0, len(result.Sources))
	for _, s := range result.Sources {
		r := Report{Source: s.Name, Candidates: s.Candidates}
		if s.Reconcile != nil {
			st := s.Reconcile.Stats
			r.Created, r.Updated, r.Unchanged = st.Created, st.Updated, st.Unchanged
			r.Skipped, r.Reserved, r.Failed = st.Skipped, st.Reserved, st.Failed
		}
		if s.Err != nil {
			r.Failure = classify(s.Err)
			r.Error = s.Err.Error()
		}
		reports = append(reports, r)
	}
	return reports
}

// Table renders reports. The failure and error columns are wide-only.
func Table(reports []Report) output.Data {
	data := output.Data{
		Headers: []string{"Source", "Candidates", "Created", "Updated", "Unchanged", "Skipped", "Reserved", "Failed", "Failure", "Error"},
		ColumnAlignment: []output.Align{
			output.AlignLeft, output.AlignRight, output.AlignRight, output.AlignRight,
			output.AlignRight, output.AlignRight, output.AlignRight, output.AlignRight, output.AlignLeft, output.AlignLeft,
		},
		WideColumns: []int{8, 9},
	}
	for _, r := range reports {
		source := r.Source
		if r.Error != "" {
			source += " (incomplete)"
		}
		data.Rows = append(data.Rows, []string{
			source,
			strconv.Itoa(r.Candidates),
			strconv.Itoa(r.Created),
			strconv.Itoa(r.Updated),
			strconv.Itoa(r.Unchanged),
			strconv.Itoa(r.Skipped),
			strconv.Itoa(r.Reserved),
			strconv.Itoa(r.Failed),
			r.Failure,
			r.Error,
		})
	}
	return data
}
