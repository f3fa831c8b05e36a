package debian

import (
	"bytes"
	"compress/gzip"
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/louib/panbuild/internal/transport"
	"github.com/louib/panbuild/pkg/errors"
	"github.com/louib/panbuild/pkg/projects"
	"github.com/louib/panbuild/pkg/sources"
)

func TestParseControl(t *testing.T) {
	f, err := os.Open(filepath.Join("testdata", "control"))
	require.NoError(t, err)
	defer func() { _ = f.Close() }()

	paragraphs, err := ParseControl(f, "control")
	require.NoError(t, err)
	require.Len(t, paragraphs, 2)

	src := paragraphs[0]
	assert.Equal(t, 1, src.Line)
	assert.Equal(t, "package_name", src.Get("source"))
	assert.Equal(t, "\ndebhelper (>= 12),\ngtk-doc-tools,\nlibsecret-1-dev,\nat-spi2-core,\nxauth,", src.Get("Build-Depends"))
	assert.Equal(t, "Source", src.Fields()[0])
	assert.False(t, src.Has("Package"))

	bin := paragraphs[1]
	assert.Equal(t, "Here's a description of the sub-package\non multiple lines.", bin.Get("Description"))
}

func TestParseControlSkipsMalformedParagraphs(t *testing.T) {
	f, err := os.Open(filepath.Join("testdata", "Sources"))
	require.NoError(t, err)
	defer func() { _ = f.Close() }()

	paragraphs, err := ParseControl(f, "Sources")
	require.Error(t, err)
	assert.True(t, errors.IsParseError(err))

	var names []string
	for _, p := range paragraphs {
		names = append(names, p.Get("Package"))
	}
	assert.Equal(t, []string{"ripgrep", "hello"}, names)
}

func TestParseControlOrphanContinuation(t *testing.T) {
	paragraphs, err := ParseControl(strings.NewReader(" dangling\nPackage: x\n\nPackage: y\n"), "inline")
	require.Error(t, err)
	require.Len(t, paragraphs, 1)
	assert.Equal(t, "y", paragraphs[0].Get("Package"))
}

func TestSplitDescriptionKeepsVerbatimLines(t *testing.T) {
	paragraphs, err := ParseControl(strings.NewReader("Package: tool\n"+
		"Description: a tool\n"+
		" Example:\n"+
		" .\n"+
		"   tool --run\n"+
		"  * indented item\n"), "inline")
	require.NoError(t, err)
	require.Len(t, paragraphs, 1)

	synopsis, long := splitDescription(paragraphs[0].Get("Description"))
	assert.Equal(t, "a tool", synopsis)
	assert.Equal(t, "Example:\n\n  tool --run\n * indented item", long)
}

func TestAdapt(t *testing.T) {
	paragraphs, _ := ParseControl(strings.NewReader(`Package: hello
Source: hello-src (2.10-3)
Version: 2.10-3+b1
Section: contrib/devel
Homepage: https://www.gnu.org/software/hello/
Vcs-Browser: https://salsa.debian.org/debian/hello
Vcs-Git: https://salsa.debian.org/debian/hello.git -b debian/main
Vcs-Svn: svn://svn.example.org/hello
Description: example package based on GNU hello
 The GNU hello program produces a familiar, friendly greeting.
 .
 It allows non-programmers to use a classic computer science tool.
`), "inline")
	require.Len(t, paragraphs, 1)

	c, ok := Adapt(paragraphs[0])
	require.True(t, ok)

	long := "The GNU hello program produces a familiar, friendly greeting.\n\n" +
		"It allows non-programmers to use a classic computer science tool."
	want := projects.Candidate{
		Name:            "hello-src",
		Description:     "example package based on GNU hello",
		LongDescription: long,
		URLs:            []string{"https://salsa.debian.org/debian/hello", "https://www.gnu.org/software/hello/"},
		VCSURLs:         []string{"https://salsa.debian.org/debian/hello.git", "svn://svn.example.org/hello"},
		Versions:        []string{"2.10-3+b1"},
		Tags:            []string{"devel"},
		Aliases:         []string{"hello"},
	}
	assert.Empty(t, cmp.Diff(want, c))
}

func TestAdaptSkipsUnnamed(t *testing.T) {
	paragraphs, _ := ParseControl(strings.NewReader("Section: misc\n"), "inline")
	require.Len(t, paragraphs, 1)
	_, ok := Adapt(paragraphs[0])
	assert.False(t, ok)
}

func TestVCSURL(t *testing.T) {
	tests := []struct {
		field, value, want string
	}{
		{"Vcs-Git", "https://salsa.debian.org/a/b.git", "https://salsa.debian.org/a/b.git"},
		{"Vcs-Git", "https://salsa.debian.org/a/b.git -b debian/sid", "https://salsa.debian.org/a/b.git"},
		{"Vcs-Git", "https://salsa.debian.org/a/b.git [p/b]", "https://salsa.debian.org/a/b.git"},
		{"Vcs-Bzr", " lp:bzr ", "lp:bzr"},
		{"Vcs-Git", "", ""},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, vcsURL(tt.field, tt.value), tt.value)
	}
}

func TestFetchLocalPath(t *testing.T) {
	src := New(transport.New("debian"), filepath.Join("testdata", "Sources"))
	assert.Equal(t, sources.DebianID, src.ID())
	assert.Equal(t, "debian:testdata/Sources", src.Name())

	got, err := src.Fetch(context.Background())
	require.NoError(t, err)
	require.Len(t, got, 2)

	rg := got[0]
	assert.Equal(t, "ripgrep", rg.Name)
	assert.Equal(t, []string{"rust-ripgrep"}, rg.Aliases)
	assert.Equal(t, []string{"https://salsa.debian.org/rust-team/debcargo-conf.git"}, rg.VCSURLs)
	assert.Equal(t, []string{"utils"}, rg.Tags)

	hello := got[1]
	assert.Equal(t, []string{"https://hg.example.org/hello"}, hello.VCSURLs)
	assert.Empty(t, hello.Aliases)
}

func TestFetchGzipOverHTTP(t *testing.T) {
	raw, err := os.ReadFile(filepath.Join("testdata", "control"))
	require.NoError(t, err)
	var buf bytes.Buffer
	zw := gzip.NewWriter(&buf)
	_, err = zw.Write(raw)
	require.NoError(t, err)
	require.NoError(t, zw.Close())

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write(buf.Bytes())
	}))
	defer srv.Close()

	got, err := New(transport.New("debian"), srv.URL+"/dists/stable/Sources.gz").Fetch(context.Background())
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "package_name", got[0].Name)
	assert.Equal(t, []string{"https://code.cloud.com/projects/package_name"}, got[0].URLs)
	assert.Equal(t, "other_package_name", got[1].Name)
	assert.Equal(t, "on multiple lines.", got[1].LongDescription)
}

func TestFetchErrors(t *testing.T) {
	_, err := New(transport.New("debian"), filepath.Join(t.TempDir(), "missing")).Fetch(context.Background())
	require.Error(t, err)

	xz := filepath.Join(t.TempDir(), "Sources.xz")
	require.NoError(t, os.WriteFile(xz, []byte("not really xz"), 0o644))
	_, err = New(transport.New("debian"), xz).Fetch(context.Background())
	assert.True(t, errors.IsParseError(err))

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "nope", http.StatusBadGateway)
	}))
	defer srv.Close()
	_, err = New(transport.New("debian"), srv.URL+"/Sources").Fetch(context.Background())
	assert.True(t, errors.IsTransport(err))
}
