// Package sources implements the sources command.
package sources

import (
	"github.com/spf13/cobra"

	"github.com/louib/panbuild"
	"github.com/louib/panbuild/internal/cmd/output"
)

// AppContext is what the sources command needs from the app.
type AppContext interface {
	Client() (panbuild.Client, error)
	OutputFormat() string
}

// NewCommand creates the sources command.
func NewCommand(app AppContext) *cobra.Command {
	return &cobra.Command{
		Use:     "sources",
		GroupID: "management",
		Short:   "List the configured registries in discovery order",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			client, err := app.Client()
			if err != nil {
				return err
			}
			rows := output.SourceRows(client.Sources())
			format := output.DetectFormat(app.OutputFormat())
			return output.Write(cmd.OutOrStdout(), format, rows, output.SourcesTable(rows))
		},
	}
}
