package debian

import (
	"bufio"
	"fmt"
	"io"
	"strings"

	"github.com/louib/panbuild/pkg/errors"
)

// maxLineSize bounds a single control-file line.
const maxLineSize = 4 << 20

// Paragraph is one stanza of a control file. Field names are matched
// case-insensitively; continuation lines are kept, joined by newlines,
// with their leading space removed.
type Paragraph struct {
	fields map[string]string
	order  []string
	// Line is the line number the paragraph starts on.
	Line int
}

// Get returns the value of a field, or the empty string.
func (p Paragraph) Get(field string) string {
	return p.fields[strings.ToLower(field)]
}

// Has reports whether the paragraph defines field.
func (p Paragraph) Has(field string) bool {
	_, ok := p.fields[strings.ToLower(field)]
	return ok
}

// Fields returns the field names in file order, as written.
func (p Paragraph) Fields() []string {
	return p.order
}

func (p *Paragraph) set(field, value string) {
	if p.fields == nil {
		p.fields = map[string]string{}
	}
	key := strings.ToLower(field)
	if _, seen := p.fields[key]; !seen {
		p.order = append(p.order, field)
	}
	p.fields[key] = value
}

func (p *Paragraph) appendLine(field, line string) {
	key := strings.ToLower(field)
	p.fields[key] += "\n" + line
}

// ParseControl reads every paragraph of a Debian control file (Packages,
// Sources or debian/control). A malformed paragraph is dropped and
// reported in the returned error; the remaining paragraphs are still
// returned.
func ParseControl(r io.Reader, file string) ([]Paragraph, error) {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), maxLineSize)

	var (
		out     []Paragraph
		errs    []error
		current Paragraph
		field   string
		broken  bool
		lineNo  int
	)

	flush := func() {
		if !broken && len(current.order) > 0 {
			out = append(out, current)
		}
		current, field, broken = Paragraph{}, "", false
	}

	for scanner.Scan() {
		lineNo++
		line := strings.TrimRight(scanner.Text(), "\r")

		switch {
		case strings.TrimSpace(line) == "":
			flush()
		case broken:
			// skip the rest of a malformed paragraph
		case strings.HasPrefix(line, "#"):
		case line[0] == ' ' || line[0] == '\t':
			if field == "" {
				broken = true
				errs = append(errs, &errors.ParseError{Format: "control", File: file, Line: lineNo, Message: "continuation line without a field"})
				continue
			}
			current.appendLine(field, line[1:])
		default:
			name, value, ok := strings.Cut(line, ":")
			if !ok || strings.TrimSpace(name) == "" || strings.ContainsAny(name, " \t") {
				broken = true
				errs = append(errs, &errors.ParseError{Format: "control", File: file, Line: lineNo, Message: fmt.Sprintf("malformed field line %q", truncate(line, 40))})
				continue
			}
			if len(current.order) == 0 {
				current.Line = lineNo
			}
			field = name
			current.set(name, strings.TrimSpace(value))
		}
	}
	flush()

	if err := scanner.Err(); err != nil {
		errs = append(errs, errors.WrapParse("control", file, err))
	}
	return out, errors.Join(errs...)
}

func truncate(s string, n int) string {
	if r := []rune(s); len(r) > n {
		return string(r[:n]) + "..."
	}
	return s
}
