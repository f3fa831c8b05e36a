// Package list implements the list command.
package list

import (
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/louib/panbuild"
	"github.com/louib/panbuild/internal/cmd/output"
	"github.com/louib/panbuild/internal/matcher"
	"github.com/louib/panbuild/pkg/logging"
	"github.com/louib/panbuild/pkg/projects"
	"github.com/louib/panbuild/pkg/store"
)

// AppContext is what the list command needs from the app.
type AppContext interface {
	Client() (panbuild.Client, error)
	Logger() *zerolog.Logger
	OutputFormat() string
}

// NewCommand creates the list command.
func NewCommand(app AppContext) *cobra.Command {
	var complete bool

	cmd := &cobra.Command{
		Use:     "list [pattern]",
		Aliases: []string{"ls"},
		GroupID: "core",
		Short:   "List stored projects",
		Long: `List prints the stored projects. An optional glob or regular expression
selects project ids.`,
		Example: `  panbuild list
  panbuild list 'lib*' -o wide
  panbuild list '^gnome-' --complete -o json`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := app.Client()
			if err != nil {
				return err
			}

			ctx := logging.WithLogger(cmd.Context(), app.Logger())
			st := client.Store()
			var ids []string
			if complete {
				ids, err = store.ListComplete(ctx, st)
			} else {
				ids, err = st.List(ctx)
			}
			if err != nil {
				return err
			}
			if len(args) == 1 {
				m, err := matcher.New(matcher.Auto, args[0])
				if err != nil {
					return err
				}
				ids = matcher.Filter(m, ids)
			}

			list := make([]projects.Project, 0, len(ids))
			for _, id := range ids {
				p, err := st.Load(ctx, id)
				if err != nil {
					app.Logger().Warn().Err(err).Str("project", id).Msg("Skipping unreadable record")
					continue
				}
				list = append(list, *p)
			}

			format := output.DetectFormat(app.OutputFormat())
			return output.Write(cmd.OutOrStdout(), format, list, output.ProjectsTable(list))
		},
	}

	cmd.Flags().BoolVar(&complete, "complete", false, "only list projects with a known repository")
	return cmd
}
