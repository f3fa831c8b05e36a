// Package output provides formatters for command output.
package output

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"reflect"
	"strings"

	"github.com/goccy/go-yaml"
	"github.com/mattn/go-isatty"
	"github.com/olekukonko/tablewriter"
	"github.com/olekukonko/tablewriter/tw"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/louib/panbuild/pkg/errors"
)

// Format is an output format name.
type Format string

const (
	// FormatTable prints an aligned table.
	FormatTable Format = "table"
	// FormatJSON prints indented JSON.
	FormatJSON Format = "json"
	// FormatYAML prints YAML documents.
	FormatYAML Format = "yaml"
	// FormatWide prints a table with every column.
	FormatWide Format = "wide"
)

// Align is a column alignment.
type Align int

// Column alignments.
const (
	AlignDefault Align = iota
	AlignLeft
	AlignCenter
	AlignRight
)

// Formatter writes data in one output format.
type Formatter interface {
	Format(w io.Writer, data any) error
}

// FormatterFunc allows functions to implement Formatter.
type FormatterFunc func(io.Writer, any) error

// Format implements Formatter.
func (f FormatterFunc) Format(w io.Writer, data any) error {
	return f(w, data)
}

// NewFormatter returns the formatter for format. Unknown formats print
// tables.
func NewFormatter(format Format) Formatter {
	switch format {
	case FormatJSON:
		return &JSONFormatter{Indent: "  "}
	case FormatYAML:
		return &YAMLFormatter{}
	case FormatWide:
		return &TableFormatter{Wide: true}
	default:
		return &TableFormatter{}
	}
}

// JSONFormatter outputs JSON.
type JSONFormatter struct {
	Indent string
}

// Format implements Formatter.
func (f *JSONFormatter) Format(w io.Writer, data any) error {
	encoder := json.NewEncoder(w)
	encoder.SetEscapeHTML(false)
	if f.Indent != "" {
		encoder.SetIndent("", f.Indent)
	}
	return encoder.Encode(data)
}

// YAMLFormatter outputs YAML.
type YAMLFormatter struct{}

// Format implements Formatter.
func (f *YAMLFormatter) Format(w io.Writer, data any) error {
	out, err := yaml.MarshalWithOptions(data,
		yaml.Indent(2),
		yaml.IndentSequence(true),
	)
	if err != nil {
		return err
	}
	_, err = w.Write(out)
	return err
}

// TableFormatter outputs tables. Values other than Data are converted by
// reflection, falling back to JSON.
type TableFormatter struct {
	Wide bool
}

// Format implements Formatter.
func (f *TableFormatter) Format(w io.Writer, data any) error {
	switch v := data.(type) {
	case Data:
		return f.render(w, v)
	case *Data:
		return f.render(w, *v)
	}
	if converted := toData(data); converted != nil {
		return f.render(w, *converted)
	}
	return (&JSONFormatter{Indent: "  "}).Format(w, data)
}

func (f *TableFormatter) render(w io.Writer, data Data) error {
	if !f.Wide && len(data.WideColumns) > 0 {
		data = data.narrow()
	}

	config := tablewriter.Config{}
	if len(data.ColumnAlignment) > 0 {
		align := make([]tw.Align, len(data.ColumnAlignment))
		for i, a := range data.ColumnAlignment {
			switch a {
			case AlignLeft:
				align[i] = tw.AlignLeft
			case AlignCenter:
				align[i] = tw.AlignCenter
			case AlignRight:
				align[i] = tw.AlignRight
			default:
				align[i] = tw.Skip
			}
		}
		config.Header.Alignment = tw.CellAlignment{PerColumn: align}
		config.Row.Alignment = tw.CellAlignment{PerColumn: align}
	}

	table := tablewriter.NewTable(w, tablewriter.WithConfig(config))
	if len(data.Headers) > 0 {
		headers := make([]any, len(data.Headers))
		for i, h := range data.Headers {
			headers[i] = h
		}
		table.Header(headers...)
	}
	for _, row := range data.Rows {
		cells := make([]any, len(row))
		for i, cell := range row {
			cells[i] = cell
		}
		if err := table.Append(cells...); err != nil {
			return err
		}
	}
	return table.Render()
}

// Data is a table ready for rendering.
type Data struct {
	Headers []string
	Rows    [][]string
	// ColumnAlignment is optional and indexed like Headers.
	ColumnAlignment []Align
	// WideColumns are the column indexes only shown in wide output.
	WideColumns []int
}

// narrow drops the wide-only columns.
func (d Data) narrow() Data {
	hidden := make(map[int]bool, len(d.WideColumns))
	for _, i := range d.WideColumns {
		hidden[i] = true
	}
	keep := func(row []string) []string {
		out := make([]string, 0, len(row))
		for i, cell := range row {
			if !hidden[i] {
				out = append(out, cell)
			}
		}
		return out
	}

	out := Data{Headers: keep(d.Headers)}
	for _, row := range d.Rows {
		out.Rows = append(out.Rows, keep(row))
	}
	for i, a := range d.ColumnAlignment {
		if !hidden[i] {
			out.ColumnAlignment = append(out.ColumnAlignment, a)
		}
	}
	return out
}

// DetectFormat returns the explicit format when set, a table for
// terminals and JSON for pipes.
func DetectFormat(explicit string) Format {
	if explicit != "" {
		return Format(strings.ToLower(explicit))
	}
	return detect(os.Stdout)
}

func detect(f *os.File) Format {
	if isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd()) {
		return FormatTable
	}
	return FormatJSON
}

// ParseFormat validates a format name.
func ParseFormat(s string) (Format, error) {
	format := Format(strings.ToLower(s))
	switch format {
	case FormatTable, FormatJSON, FormatYAML, FormatWide, "":
		return format, nil
	default:
		return "", errors.NewValidationError("format", s, "must be one of: table, json, yaml, wide")
	}
}

var titleCaser = cases.Title(language.English)

// header turns a struct field into a column title, preferring its json
// tag.
func header(field reflect.StructField) string {
	tag, _, _ := strings.Cut(field.Tag.Get("json"), ",")
	if tag == "" || tag == "-" {
		return field.Name
	}
	return titleCaser.String(strings.ReplaceAll(tag, "_", " "))
}

func cell(v reflect.Value) string {
	if v.Kind() == reflect.Slice && v.Type().Elem().Kind() == reflect.String {
		parts := make([]string, v.Len())
		for i := range v.Len() {
			parts[i] = v.Index(i).String()
		}
		return strings.Join(parts, ", ")
	}
	return fmt.Sprintf("%v", v.Interface())
}

// toData converts a struct, or a slice of structs, to Data.
func toData(data any) *Data {
	v := reflect.ValueOf(data)
	if v.Kind() == reflect.Pointer && !v.IsNil() {
		v = v.Elem()
	}

	switch {
	case v.Kind() == reflect.Slice && v.Len() > 0 && v.Index(0).Kind() == reflect.Struct:
		typ := v.Index(0).Type()
		out := &Data{}
		for i := range typ.NumField() {
			if typ.Field(i).IsExported() {
				out.Headers = append(out.Headers, header(typ.Field(i)))
			}
		}
		for i := range v.Len() {
			elem := v.Index(i)
			var row []string
			for j := range typ.NumField() {
				if typ.Field(j).IsExported() {
					row = append(row, cell(elem.Field(j)))
				}
			}
			out.Rows = append(out.Rows, row)
		}
		return out

	case v.Kind() == reflect.Struct:
		typ := v.Type()
		out := &Data{Headers: []string{"Property", "Value"}}
		for i := range typ.NumField() {
			if typ.Field(i).IsExported() {
				out.Rows = append(out.Rows, []string{header(typ.Field(i)), cell(v.Field(i))})
			}
		}
		return out
	}
	return nil
}
