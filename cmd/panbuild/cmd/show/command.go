// Package show implements the show command.
package show

import (
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/louib/panbuild"
	"github.com/louib/panbuild/internal/cmd/output"
	"github.com/louib/panbuild/pkg/logging"
	"github.com/louib/panbuild/pkg/naming"
)

// AppContext is what the show command needs from the app.
type AppContext interface {
	Client() (panbuild.Client, error)
	Logger() *zerolog.Logger
	OutputFormat() string
}

// NewCommand creates the show command. The argument is normalized, so any
// spelling of a project name finds its record.
func NewCommand(app AppContext) *cobra.Command {
	return &cobra.Command{
		Use:     "show <name>",
		GroupID: "core",
		Short:   "Show a stored project",
		Example: `  panbuild show ripgrep
  panbuild show "GNU Hello" -o yaml`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := app.Client()
			if err != nil {
				return err
			}

			id := naming.Normalize(args[0])
			ctx := logging.WithLogger(cmd.Context(), app.Logger())
			p, err := client.Store().Load(ctx, id)
			if err != nil {
				return err
			}

			format := output.DetectFormat(app.OutputFormat())
			return output.Write(cmd.OutOrStdout(), format, p, output.ProjectTable(*p))
		},
	}
}
