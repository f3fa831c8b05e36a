package projects

import (
	"fmt"
	"strconv"
	"strings"
	"unicode"

	"github.com/goccy/go-yaml"
)

// MarshalYAMLDocument encodes a project the way it is persisted.
func (p Project) MarshalYAMLDocument() ([]byte, error) {
	return yaml.MarshalWithOptions(p, encodeOptions()...)
}

// FormatYAML returns the persisted YAML rendering with a header comment.
func (p Project) FormatYAML() (string, error) {
	commentMap := yaml.CommentMap{
		"$": []*yaml.Comment{
			yaml.HeadComment(" " + commentText(p.Name+" - "+p.headerComment())),
		},
	}
	if len(p.VCSURLs) == 0 {
		commentMap["$.name"] = []*yaml.Comment{
			yaml.LineComment(" incomplete: no vcs_urls"),
		}
	}

	data, err := yaml.MarshalWithOptions(p, append(encodeOptions(), yaml.WithComment(commentMap))...)
	if err != nil {
		return "", fmt.Errorf("encoding project %q: %w", p.Name, err)
	}
	return string(data), nil
}

func encodeOptions() []yaml.EncodeOption {
	return []yaml.EncodeOption{
		yaml.Indent(2),
		yaml.IndentSequence(false),
		yaml.CustomMarshaler[string](marshalString),
	}
}

// marshalString double-quotes text that a plain or block scalar would not
// reproduce exactly.
func marshalString(s string) ([]byte, error) {
	if needsQuoting(s) {
		return []byte(strconv.Quote(s)), nil
	}
	return yaml.Marshal(s)
}

func needsQuoting(s string) bool {
	if s == "" {
		return false
	}
	if strings.TrimSpace(s) != s {
		return true
	}
	return strings.IndexFunc(s, func(r rune) bool {
		return r == unicode.ReplacementChar || !unicode.IsPrint(r)
	}) >= 0
}

func (p Project) headerComment() string {
	desc := strings.TrimSpace(p.Description)
	if i := strings.IndexAny(desc, "\r\n"); i >= 0 {
		desc = strings.TrimSpace(desc[:i])
	}
	if desc == "" {
		return "software project"
	}
	if r := []rune(desc); len(r) > 60 {
		desc = string(r[:60]) + "..."
	}
	return desc
}

// commentText keeps a comment on one line.
func commentText(s string) string {
	return strings.Map(func(r rune) rune {
		if !unicode.IsPrint(r) {
			return ' '
		}
		return r
	}, s)
}
