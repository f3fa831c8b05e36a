package output

import (
	"io"
	"strconv"
	"strings"

	"github.com/louib/panbuild/pkg/projects"
	"github.com/louib/panbuild/pkg/sources"
)

// Write prints data in format. Tables are rendered from table, every
// other format encodes data itself.
func Write(w io.Writer, format Format, data any, table Data) error {
	switch format {
	case FormatTable, FormatWide, "":
		return NewFormatter(format).Format(w, table)
	default:
		return NewFormatter(format).Format(w, data)
	}
}

// ProjectsTable lists projects one per row. URLs, versions and aliases are
// wide-only columns.
func ProjectsTable(list []projects.Project) Data {
	data := Data{
		Headers:         []string{"Name", "Description", "VCS", "Tags", "URLs", "Versions", "Aliases"},
		ColumnAlignment: []Align{AlignLeft, AlignLeft, AlignLeft, AlignLeft, AlignLeft, AlignLeft, AlignLeft},
		WideColumns:     []int{4, 5, 6},
	}
	for _, p := range list {
		data.Rows = append(data.Rows, []string{
			p.Name,
			firstLine(p.Description),
			strings.Join(p.VCSURLs, "\n"),
			strings.Join(p.Tags, ", "),
			strings.Join(p.URLs, "\n"),
			strings.Join(p.Versions, ", "),
			strings.Join(p.Aliases, ", "),
		})
	}
	return data
}

// ProjectTable shows one project as property rows.
func ProjectTable(p projects.Project) Data {
	data := Data{Headers: []string{"Property", "Value"}}
	add := func(name, value string) {
		if value != "" {
			data.Rows = append(data.Rows, []string{name, value})
		}
	}
	add("Name", p.Name)
	add("Description", p.Description)
	add("Long Description", p.LongDescription)
	add("URLs", strings.Join(p.URLs, "\n"))
	add("VCS URLs", strings.Join(p.VCSURLs, "\n"))
	add("Versions", strings.Join(p.Versions, ", "))
	add("Tags", strings.Join(p.Tags, ", "))
	add("Aliases", strings.Join(p.Aliases, ", "))
	add("Complete", strconv.FormatBool(p.IsComplete()))
	return data
}

// SourceRow is the serialized form of a configured source.
type SourceRow struct {
	ID   sources.ID `json:"id" yaml:"id"`
	Name string     `json:"name" yaml:"name"`
}

// SourceRows describes the configured sources in discovery order.
func SourceRows(srcs []sources.Source) []SourceRow {
	rows := make([]SourceRow, 0, len(srcs))
	for _, s := range srcs {
		rows = append(rows, SourceRow{ID: s.ID(), Name: s.Name()})
	}
	return rows
}

// SourcesTable lists the configured sources.
func SourcesTable(rows []SourceRow) Data {
	data := Data{Headers: []string{"#", "ID", "Name"}, ColumnAlignment: []Align{AlignRight, AlignLeft, AlignLeft}}
	for i, r := range rows {
		data.Rows = append(data.Rows, []string{strconv.Itoa(i + 1), string(r.ID), r.Name})
	}
	return data
}

func firstLine(s string) string {
	line, _, _ := strings.Cut(s, "\n")
	return line
}
