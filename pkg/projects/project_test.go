package projects

import (
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/louib/panbuild/pkg/errors"
)

func TestNewCandidate(t *testing.T) {
	c := NewCandidate("Foo Bar",
		WithDescription("A tool."),
		WithURLs("http://foo.example/Foo-Bar"),
	)

	want := Candidate{
		Name:        "foo-bar",
		Description: "A tool.",
		URLs:        []string{"http://foo.example/Foo-Bar"},
		VCSURLs:     []string{},
		Versions:    []string{},
		Tags:        []string{},
		Aliases:     []string{},
	}
	if diff := cmp.Diff(want, c); diff != "" {
		t.Errorf("NewCandidate() mismatch (-want +got):\n%s", diff)
	}
	require.NoError(t, c.Validate())
}

func TestNewCandidateSetSemantics(t *testing.T) {
	c := NewCandidate("widget",
		WithVCSURLs("https://github.com/acme/widget.git", "git@github.com:acme/widget.git"),
		WithTags("cli", "", "alpha", "cli"),
		WithVersions("1.0", "0.9", "1.0"),
		WithAliases("gadget"),
		WithAliases("gadget", "doohickey"),
	)

	assert.Equal(t, []string{"git@github.com:acme/widget.git", "https://github.com/acme/widget.git"}, c.VCSURLs)
	assert.Equal(t, []string{"alpha", "cli"}, c.Tags)
	assert.Equal(t, []string{"0.9", "1.0"}, c.Versions)
	assert.Equal(t, []string{"doohickey", "gadget"}, c.Aliases)
}

func TestCandidateValidate(t *testing.T) {
	err := NewCandidate("  ").Validate()
	require.Error(t, err)
	assert.True(t, errors.IsValidationError(err))

	err = NewCandidate("").Validate()
	assert.True(t, errors.IsValidationError(err))

	err = Candidate{Name: "Foo Bar"}.Validate()
	assert.True(t, errors.IsValidationError(err))
	require.NoError(t, Candidate{Name: "foo-bar"}.Validate())
	require.NoError(t, Candidate{Name: "foo--bar"}.Validate())
}

func TestCandidateProjectIsIndependent(t *testing.T) {
	c := NewCandidate("foo", WithTags("a"))
	p := c.Project()
	p.Tags[0] = "changed"
	assert.Equal(t, []string{"a"}, c.Tags)
}

func TestProjectIsComplete(t *testing.T) {
	tests := []struct {
		name string
		vcs  []string
		want bool
	}{
		{name: "nil", vcs: nil, want: false},
		{name: "empty", vcs: []string{}, want: false},
		{name: "blank entry", vcs: []string{" "}, want: false},
		{name: "one url", vcs: []string{"https://gitlab.com/a/b.git"}, want: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := Project{Name: "x", VCSURLs: tt.vcs}
			assert.Equal(t, tt.want, p.IsComplete())
		})
	}
}

func TestPersistable(t *testing.T) {
	assert.True(t, Persistable("foo-bar"))
	assert.False(t, Persistable("foo--bar"))
	assert.False(t, Persistable("--"))
	assert.False(t, Persistable(""))
}

func TestIsField(t *testing.T) {
	for _, f := range Fields {
		assert.True(t, IsField(f))
	}
	assert.False(t, IsField("homepage"))
	assert.False(t, IsField("web_urls"))
}

func TestUnion(t *testing.T) {
	base := []string{"b", "a"}
	got := Union(base, []string{"c", "a"})
	assert.Equal(t, []string{"a", "b", "c"}, got)
	assert.Equal(t, []string{"b", "a"}, base, "base must not be modified")

	assert.Equal(t, []string{}, Union(nil, nil))
	assert.True(t, SetEqual([]string{"x", "y"}, []string{"y", "x", "x"}))
}

func TestUnionCommutative(t *testing.T) {
	a := []string{"cli", "rust"}
	b := []string{"search", "cli"}
	assert.Equal(t, Union(Union(nil, a), b), Union(Union(nil, b), a))
}

func TestFormatYAML(t *testing.T) {
	p := Project{
		Name:        "ripgrep",
		Description: "Recursively search directories\nfor a regex pattern",
		URLs:        []string{"https://github.com/BurntSushi/ripgrep"},
		VCSURLs:     []string{"https://github.com/BurntSushi/ripgrep.git"},
	}
	out, err := p.FormatYAML()
	require.NoError(t, err)
	assert.Contains(t, out, "# ripgrep - Recursively search directories\n")
	assert.Contains(t, out, "name: ripgrep")
	assert.Contains(t, out, `description: "Recursively search directories\nfor a regex pattern"`)
	assert.Contains(t, out, "vcs_urls:")
	assert.NotContains(t, out, "incomplete")

	incomplete, err := Project{Name: "bare"}.FormatYAML()
	require.NoError(t, err)
	assert.Contains(t, incomplete, "incomplete: no vcs_urls")
}

func TestFormatYAMLHeaderStaysOnOneLine(t *testing.T) {
	tests := []struct {
		name        string
		description string
		want        string
	}{
		{name: "carriage return", description: "lone\rcarriage", want: "# widget - lone\n"},
		{name: "crlf", description: "first\r\nsecond", want: "# widget - first\n"},
		{name: "leading newline", description: "\n\nbody", want: "# widget - body\n"},
		{name: "tab", description: "tab\tinside", want: "# widget - tab inside\n"},
		{name: "blank", description: " \r\n", want: "# widget - software project\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out, err := Project{Name: "widget", Description: tt.description}.FormatYAML()
			require.NoError(t, err)
			assert.True(t, strings.HasPrefix(out, tt.want), out)
		})
	}
}

func TestMarshalYAMLQuotesAmbiguousText(t *testing.T) {
	tests := []struct {
		value string
		want  string
	}{
		{value: "plain text", want: "description: plain text\n"},
		{value: " A widget", want: `description: " A widget"` + "\n"},
		{value: "tab\tinside", want: `description: "tab\tinside"` + "\n"},
		{value: "a\nb", want: `description: "a\nb"` + "\n"},
		{value: "", want: `description: ""` + "\n"},
	}
	for _, tt := range tests {
		t.Run(tt.value, func(t *testing.T) {
			data, err := Project{Name: "x", Description: tt.value}.MarshalYAMLDocument()
			require.NoError(t, err)
			assert.Contains(t, string(data), tt.want)
		})
	}
}

func TestMarshalYAMLDocumentOnlyCanonicalKeys(t *testing.T) {
	data, err := Project{Name: "foo", Tags: []string{"a"}}.MarshalYAMLDocument()
	require.NoError(t, err)
	assert.Contains(t, string(data), "name: foo")
	assert.Contains(t, string(data), "tags:")
	assert.NotContains(t, string(data), "aliases")
}
