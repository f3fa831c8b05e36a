// Package merge implements the merge command.
package merge

import (
	"strconv"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/louib/panbuild"
	"github.com/louib/panbuild/internal/cmd/output"
)

// AppContext is what the merge command needs from the app.
type AppContext interface {
	Client() (panbuild.Client, error)
	Logger() *zerolog.Logger
	OutputFormat() string
	OutDir() string
}

// Summary is the serialized outcome of a batch merge.
type Summary struct {
	Output     string   `json:"output" yaml:"output"`
	DryRun     bool     `json:"dry_run" yaml:"dry_run"`
	Files      int      `json:"files" yaml:"files"`
	Records    int      `json:"records" yaml:"records"`
	Merged     int      `json:"merged" yaml:"merged"`
	Written    int      `json:"written" yaml:"written"`
	Incomplete int      `json:"incomplete" yaml:"incomplete"`
	Skipped    int      `json:"skipped" yaml:"skipped"`
	Errors     []string `json:"errors,omitempty" yaml:"errors,omitempty"`
}

// NewCommand creates the merge command.
func NewCommand(app AppContext) *cobra.Command {
	var dryRun bool

	cmd := &cobra.Command{
		Use:     "merge [dir]",
		GroupID: "core",
		Short:   "Merge a directory of discovered record files",
		Long: `Merge reads every JSON record file in a directory, merges records that
share a canonical name and writes the projects with a known repository to
all_projects.json in the same directory.

The directory defaults to out_dir from the configuration, or PB_OUT_DIR.`,
		Example: `  PB_OUT_DIR=./out panbuild merge
  panbuild merge ./out --dry-run`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			dir := app.OutDir()
			if len(args) == 1 {
				dir = args[0]
			}

			client, err := app.Client()
			if err != nil {
				return err
			}
			result, err := client.Merge(cmd.Context(), dir, dryRun)
			if err != nil {
				return err
			}

			if result.HasErrors() {
				app.Logger().Warn().Int("errors", len(result.Errors)).Msg("Some input files were skipped")
			}

			summary := Summarize(result)
			format := output.DetectFormat(app.OutputFormat())
			return output.Write(cmd.OutOrStdout(), format, summary, Table(summary))
		},
	}

	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "merge without writing the output file")
	return cmd
}

// Summarize converts a merge result for output.
func Summarize(r *panbuild.MergeResult) Summary {
	s := Summary{
		Output:     r.OutputPath,
		DryRun:     r.DryRun,
		Files:      r.Files,
		Records:    r.Records,
		Merged:     r.Merged,
		Written:    r.Written,
		Incomplete: r.Incomplete,
		Skipped:    r.Skipped,
	}
	for _, err := range r.Errors {
		s.Errors = append(s.Errors, err.Error())
	}
	return s
}

// Table renders a summary as property rows.
func Table(s Summary) output.Data {
	data := output.Data{Headers: []string{"Property", "Value"}}
	add := func(k, v string) { data.Rows = append(data.Rows, []string{k, v}) }
	add("Output", s.Output)
	add("Dry Run", strconv.FormatBool(s.DryRun))
	add("Files", strconv.Itoa(s.Files))
	add("Records", strconv.Itoa(s.Records))
	add("Merged", strconv.Itoa(s.Merged))
	add("Written", strconv.Itoa(s.Written))
	add("Incomplete", strconv.Itoa(s.Incomplete))
	add("Skipped", strconv.Itoa(s.Skipped))
	for _, e := range s.Errors {
		add("Error", e)
	}
	return data
}
