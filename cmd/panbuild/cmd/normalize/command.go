// Package normalize implements the normalize command.
package normalize

import (
	"strconv"

	"github.com/spf13/cobra"

	"github.com/louib/panbuild/internal/cmd/output"
	"github.com/louib/panbuild/pkg/naming"
	"github.com/louib/panbuild/pkg/projects"
)

// AppContext is what the normalize command needs from the app.
type AppContext interface {
	OutputFormat() string
}

// Name pairs a raw name with its canonical id.
type Name struct {
	Input       string `json:"input" yaml:"input"`
	ID          string `json:"id" yaml:"id"`
	Persistable bool   `json:"persistable" yaml:"persistable"`
}

// NewCommand creates the normalize command.
func NewCommand(app AppContext) *cobra.Command {
	return &cobra.Command{
		Use:     "normalize <name...>",
		GroupID: "management",
		Short:   "Print the canonical id of project names",
		Example: `  panbuild normalize "GNU Hello" libfoo_bar
  panbuild normalize "foo bar" -o json`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			names := Normalize(args)
			format := output.DetectFormat(app.OutputFormat())
			return output.Write(cmd.OutOrStdout(), format, names, Table(names))
		},
	}
}

// Normalize computes the canonical id of every name.
func Normalize(raw []string) []Name {
	names := make([]Name, len(raw))
	for i, r := range raw {
		id := naming.Normalize(r)
		names[i] = Name{Input: r, ID: id, Persistable: projects.Persistable(id)}
	}
	return names
}

// Table renders names.
func Table(names []Name) output.Data {
	data := output.Data{Headers: []string{"Input", "ID", "Persistable"}}
	for _, n := range names {
		data.Rows = append(data.Rows, []string{n.Input, n.ID, strconv.FormatBool(n.Persistable)})
	}
	return data
}
