package app

import (
	"context"
	"os"

	"github.com/spf13/cobra"

	"github.com/louib/panbuild/cmd/panbuild/cmd/discover"
	"github.com/louib/panbuild/cmd/panbuild/cmd/list"
	"github.com/louib/panbuild/cmd/panbuild/cmd/merge"
	"github.com/louib/panbuild/cmd/panbuild/cmd/normalize"
	"github.com/louib/panbuild/cmd/panbuild/cmd/show"
	"github.com/louib/panbuild/cmd/panbuild/cmd/sources"
	"github.com/louib/panbuild/cmd/panbuild/cmd/version"
	"github.com/louib/panbuild/internal/cmd/output"
)

// flags holds the persistent flags of the root command.
type flags struct {
	config   string
	verbose  bool
	quiet    bool
	noColor  bool
	format   string
	logLevel string
}

// Execute runs the CLI with args.
func (a *App) Execute(ctx context.Context, args []string) error {
	root := a.createRootCommand()
	root.SetArgs(args)
	return root.ExecuteContext(ctx)
}

func (a *App) createRootCommand() *cobra.Command {
	f := &flags{}

	root := &cobra.Command{
		Use:     "panbuild",
		Short:   "Software project discovery and reconciliation",
		Version: a.version,
		Long: `panbuild crawls code forges, package managers and distribution archives,
normalizes the projects it finds and reconciles them into one store of
canonical project records.`,
		PersistentPreRunE: func(*cobra.Command, []string) error {
			return a.setup(f)
		},
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.SetOut(a.out)
	root.SetErr(a.errOut)

	root.AddGroup(
		&cobra.Group{ID: "core", Title: "Core Commands:"},
		&cobra.Group{ID: "management", Title: "Management Commands:"},
	)

	pf := root.PersistentFlags()
	pf.StringVar(&f.config, "config", "", "config file (default is ./.panbuild.yaml or $HOME/.panbuild.yaml)")
	pf.BoolVarP(&f.verbose, "verbose", "v", false, "verbose output (shortcut for --log-level=debug)")
	pf.BoolVarP(&f.quiet, "quiet", "q", false, "minimal output (shortcut for --log-level=warn)")
	pf.BoolVar(&f.noColor, "no-color", false, "disable colored output")
	pf.StringVarP(&f.format, "format", "o", "", "output format: table, json, yaml, wide")
	pf.StringVar(&f.logLevel, "log-level", "", "log level: trace, debug, info, warn, error (overrides -v/-q)")

	root.SetVersionTemplate("panbuild {{.Version}}\n")

	root.AddCommand(
		discover.NewCommand(a),
		merge.NewCommand(a),
		list.NewCommand(a),
		show.NewCommand(a),
		normalize.NewCommand(a),
		sources.NewCommand(a),
		version.NewCommand(a),
	)
	return root
}

// setup applies the parsed persistent flags before any command runs.
func (a *App) setup(f *flags) error {
	if f.config != "" {
		config, err := LoadConfig(f.config)
		if err != nil {
			return err
		}
		a.config = config
	}
	a.config.UpdateFromFlags(f.verbose, f.quiet, f.noColor, f.format, f.logLevel)

	if _, err := output.ParseFormat(a.config.Format); err != nil {
		return err
	}

	if !a.fixedLogger {
		logger := NewLogger(a.config)
		a.logger = &logger
	}
	return nil
}

// ExitOnError prints err and exits with status 1.
func ExitOnError(err error) {
	if err != nil {
		_, _ = os.Stderr.WriteString("Error: " + err.Error() + "\n")
		os.Exit(1)
	}
}
