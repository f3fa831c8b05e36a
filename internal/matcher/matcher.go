// Package matcher selects project ids with glob or regular expression
// patterns.
package matcher

import (
	"path"
	"regexp"
	"strings"

	"github.com/louib/panbuild/pkg/errors"
	"github.com/louib/panbuild/pkg/naming"
)

// PatternType is the syntax of a pattern.
type PatternType int

const (
	// Glob uses shell-style patterns (*, ?, []).
	Glob PatternType = iota
	// Regex uses regular expressions, unanchored.
	Regex
	// Auto picks Regex when the pattern uses regular expression syntax.
	Auto
)

// Matcher reports whether project ids match a pattern.
type Matcher interface {
	Match(id string) bool
	Pattern() string
	Type() PatternType
}

type matcher struct {
	pattern string
	typ     PatternType
	glob    string
	re      *regexp.Regexp
}

// New compiles pattern. Glob patterns are normalized like project names,
// so "GNU*" selects gnu-hello.
func New(typ PatternType, pattern string) (Matcher, error) {
	if typ == Auto {
		typ = detect(pattern)
	}

	m := &matcher{pattern: pattern, typ: typ}
	switch typ {
	case Glob:
		m.glob = naming.Normalize(pattern)
		if _, err := path.Match(m.glob, ""); err != nil {
			return nil, errors.NewValidationError("pattern", pattern, "invalid glob: "+err.Error())
		}
	case Regex:
		re, err := regexp.Compile(pattern)
		if err != nil {
			return nil, errors.NewValidationError("pattern", pattern, "invalid regular expression: "+err.Error())
		}
		m.re = re
	default:
		return nil, errors.NewValidationError("pattern_type", typ, "unsupported")
	}
	return m, nil
}

// detect treats anchors, alternation, grouping and escapes as regular
// expression syntax. Everything else is a glob.
func detect(pattern string) PatternType {
	if strings.ContainsAny(pattern, `^$|()+\`) || strings.Contains(pattern, ".*") {
		return Regex
	}
	return Glob
}

func (m *matcher) Match(id string) bool {
	if m.re != nil {
		return m.re.MatchString(id)
	}
	ok, _ := path.Match(m.glob, id)
	return ok
}

func (m *matcher) Pattern() string   { return m.pattern }
func (m *matcher) Type() PatternType { return m.typ }

// Filter keeps the ids matching m, in order.
func Filter(m Matcher, ids []string) []string {
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		if m.Match(id) {
			out = append(out, id)
		}
	}
	return out
}
