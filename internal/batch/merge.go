// Package batch consolidates directories of discovered records into a
// single artifact.
package batch

import (
	"context"
	"encoding/json"
	"maps"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"time"

	"github.com/louib/panbuild/pkg/constants"
	"github.com/louib/panbuild/pkg/errors"
	"github.com/louib/panbuild/pkg/logging"
	"github.com/louib/panbuild/pkg/projects"
	"github.com/louib/panbuild/pkg/reconciler"
	"github.com/louib/panbuild/pkg/vcs"
)

// Result summarizes a batch merge.
type Result struct {
	// Files is the number of input files read successfully.
	Files int
	// Records is the number of records decoded from the input files.
	Records int
	// Merged is the number of distinct projects after merging by name.
	Merged int
	// Written is the number of complete projects in the output.
	Written int
	// Incomplete counts projects dropped for lacking vcs_urls.
	Incomplete int
	// Skipped counts records without a usable name.
	Skipped int

	Projects   []projects.Project
	OutputPath string
	DryRun     bool
	Errors     []error
	Duration   time.Duration
}

// HasErrors reports whether any input file or record was rejected.
func (r *Result) HasErrors() bool {
	return len(r.Errors) > 0
}

type options struct {
	output string
	dryRun bool
}

// Option configures Merge.
type Option func(*options)

// WithOutputFileName overrides the name of the output file.
func WithOutputFileName(name string) Option {
	return func(o *options) {
		if name != "" {
			o.output = name
		}
	}
}

// WithDryRun computes the result without writing the output file.
func WithDryRun(dryRun bool) Option {
	return func(o *options) {
		o.dryRun = dryRun
	}
}

// Merge reads every JSON array of records in dir, merges records sharing a
// canonical name, infers VCS URLs from web URLs and writes the complete
// projects, sorted by name, to the output file in dir.
func Merge(ctx context.Context, dir string, opts ...Option) (*Result, error) {
	o := &options{output: constants.MergeOutputFileName}
	for _, opt := range opts {
		opt(o)
	}

	if strings.TrimSpace(dir) == "" {
		return nil, errors.NewConfigError("merge", "output directory is not set (use "+constants.EnvOutDir+")", nil)
	}
	info, err := os.Stat(dir)
	if err != nil {
		return nil, errors.NewConfigError("merge", "cannot access "+dir, err)
	}
	if !info.IsDir() {
		return nil, errors.NewConfigError("merge", dir+" is not a directory", nil)
	}

	start := time.Now()
	logger := logging.FromContext(ctx)
	result := &Result{DryRun: o.dryRun, OutputPath: filepath.Join(dir, o.output)}

	files, err := inputFiles(dir, o.output)
	if err != nil {
		return nil, err
	}

	merged := map[string]*projects.Project{}
	for _, file := range files {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		records, err := readFile(file)
		if err != nil {
			logger.Warn().Err(err).Str("file", file).Msg("Skipping input file")
			result.Errors = append(result.Errors, err)
			continue
		}
		result.Files++
		result.Records += len(records)
		for _, rec := range records {
			mergeRecord(ctx, merged, rec, result)
		}
	}
	result.Merged = len(merged)

	for _, name := range slices.Sorted(maps.Keys(merged)) {
		p := vcs.Infer(*merged[name])
		if !p.IsComplete() {
			result.Incomplete++
			continue
		}
		result.Projects = append(result.Projects, p.Normalized())
	}
	result.Written = len(result.Projects)

	if !o.dryRun {
		if err := write(result.OutputPath, result.Projects); err != nil {
			return result, err
		}
	}

	result.Duration = time.Since(start)
	logger.Info().
		Int("files", result.Files).
		Int("records", result.Records).
		Int("merged", result.Merged).
		Int("written", result.Written).
		Int("incomplete", result.Incomplete).
		Str("output", result.OutputPath).
		Bool("dry_run", o.dryRun).
		Dur("duration", result.Duration).
		Msg("Batch merge complete")
	return result, nil
}

func mergeRecord(ctx context.Context, merged map[string]*projects.Project, rec projects.Project, result *Result) {
	c := projects.Candidate(rec).Canonical()
	if err := c.Validate(); err != nil {
		logging.FromContext(ctx).Debug().Err(err).Msg("Skipping record without a name")
		result.Skipped++
		return
	}
	p, err := reconciler.Reconcile(merged[c.Name], c)
	if err != nil {
		result.Errors = append(result.Errors, err)
		return
	}
	merged[c.Name] = &p
}

// inputFiles lists the *.json files of dir in name order, leaving out the
// output file.
func inputFiles(dir, output string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, errors.WrapIO("list", dir, err)
	}
	var files []string
	for _, e := range entries {
		if e.IsDir() || filepath.Ext(e.Name()) != ".json" || e.Name() == output {
			continue
		}
		files = append(files, filepath.Join(dir, e.Name()))
	}
	return files, nil
}

func readFile(path string) ([]projects.Project, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.WrapIO("read", path, err)
	}
	var records []projects.Project
	if err := json.Unmarshal(data, &records); err != nil {
		return nil, errors.WrapParse("json", path, err)
	}
	return records, nil
}

func write(path string, list []projects.Project) error {
	if list == nil {
		list = []projects.Project{}
	}
	data, err := json.MarshalIndent(list, "", "  ")
	if err != nil {
		return errors.WrapParse("json", path, err)
	}
	if err := os.WriteFile(path, append(data, '\n'), constants.FilePermissions); err != nil {
		return errors.WrapIO("write", path, err)
	}
	return nil
}
