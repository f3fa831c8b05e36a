// Package debian discovers projects from Debian control-file indexes
// (Packages and Sources dumps, or a debian/control file).
package debian

import (
	"bytes"
	"compress/gzip"
	"context"
	"fmt"
	"io"
	"iter"
	"os"
	"path"
	"strings"

	"github.com/louib/panbuild/internal/transport"
	"github.com/louib/panbuild/pkg/errors"
	"github.com/louib/panbuild/pkg/logging"
	"github.com/louib/panbuild/pkg/projects"
	"github.com/louib/panbuild/pkg/sources"
)

// DefaultIndexes are the dumps read when none are configured.
var DefaultIndexes = []string{
	"https://deb.debian.org/debian/dists/stable/main/source/Sources.gz",
}

// vcsFields map to vcs_urls. Vcs-Browser is a web page and is read
// separately.
var vcsFields = []string{
	"Vcs-Git",
	"Vcs-Hg",
	"Vcs-Bzr",
	"Vcs-Svn",
	"Vcs-Darcs",
	"Vcs-Mtn",
	"Vcs-Cvs",
	"Vcs-Arch",
}

// Source reads candidates from one control-file index.
type Source struct {
	client *transport.Client
	index  string
}

// New creates a source for index, an http(s) URL, a file:// URL or a local
// path. Indexes ending in .gz are decompressed.
func New(client *transport.Client, index string) *Source {
	return &Source{client: client, index: index}
}

// ID implements sources.Source.
func (s *Source) ID() sources.ID { return sources.DebianID }

// Name implements sources.Source.
func (s *Source) Name() string { return fmt.Sprintf("%s:%s", sources.DebianID, s.index) }

// Index returns the location this source reads.
func (s *Source) Index() string { return s.index }

// Fetch implements sources.Source.
func (s *Source) Fetch(ctx context.Context) ([]projects.Candidate, error) {
	ctx = logging.WithSource(ctx, s.Name())
	return sources.Collect(ctx, s.Paragraphs(ctx), Adapt)
}

// Paragraphs reads the index as a single batch. Malformed paragraphs are
// logged and dropped without failing the traversal.
func (s *Source) Paragraphs(ctx context.Context) iter.Seq2[[]Paragraph, error] {
	return func(yield func([]Paragraph, error) bool) {
		data, err := s.read(ctx)
		if err != nil {
			yield(nil, err)
			return
		}
		r, err := decompress(data, s.index)
		if err != nil {
			yield(nil, err)
			return
		}
		paragraphs, perr := ParseControl(r, s.index)
		if perr != nil {
			logging.FromContext(ctx).Warn().Err(perr).Msg("Skipped malformed paragraphs")
		}
		logging.FromContext(ctx).Debug().Int("count", len(paragraphs)).Msg("Parsed index")
		yield(paragraphs, nil)
	}
}

func (s *Source) read(ctx context.Context) ([]byte, error) {
	switch {
	case strings.HasPrefix(s.index, "http://"), strings.HasPrefix(s.index, "https://"):
		body, _, err := s.client.GetBody(ctx, s.index)
		return body, err
	default:
		p := strings.TrimPrefix(s.index, "file://")
		data, err := os.ReadFile(p)
		if err != nil {
			return nil, errors.WrapIO("read", p, err)
		}
		return data, nil
	}
}

func decompress(data []byte, index string) (io.Reader, error) {
	switch path.Ext(index) {
	case ".gz":
		zr, err := gzip.NewReader(bytes.NewReader(data))
		if err != nil {
			return nil, errors.WrapParse("gzip", index, err)
		}
		return zr, nil
	case ".xz", ".bz2", ".zst":
		return nil, &errors.ParseError{Format: "control", File: index, Message: "unsupported compression " + path.Ext(index)}
	default:
		return bytes.NewReader(data), nil
	}
}

// Adapt maps one control paragraph to a candidate. Paragraphs naming
// neither a source nor a binary package are skipped.
func Adapt(p Paragraph) (projects.Candidate, bool) {
	pkg := strings.TrimSpace(p.Get("Package"))
	name := stripVersion(p.Get("Source"))
	if name == "" {
		name = pkg
	}
	if name == "" {
		return projects.Candidate{}, false
	}

	var aliases []string
	if pkg != "" && pkg != name {
		aliases = append(aliases, pkg)
	}
	for _, bin := range strings.Split(p.Get("Binary"), ",") {
		if bin = strings.TrimSpace(bin); bin != "" && bin != name {
			aliases = append(aliases, bin)
		}
	}

	synopsis, long := splitDescription(p.Get("Description"))
	opts := []projects.CandidateOption{
		projects.WithDescription(synopsis),
		projects.WithLongDescription(long),
		projects.WithAliases(aliases...),
		projects.WithURLs(p.Get("Homepage"), p.Get("Vcs-Browser")),
		projects.WithVersions(strings.TrimSpace(p.Get("Version"))),
		projects.WithTags(section(p.Get("Section"))),
	}
	for _, field := range vcsFields {
		opts = append(opts, projects.WithVCSURLs(vcsURL(field, p.Get(field))))
	}
	return projects.NewCandidate(name, opts...), true
}

// stripVersion turns "foo (1.2-3)" into "foo".
func stripVersion(source string) string {
	name, _, _ := strings.Cut(strings.TrimSpace(source), " ")
	return name
}

// splitDescription separates the synopsis from the extended description.
// The continuation marker is already gone, so lines with further leading
// spaces are kept verbatim.
// A lone "." marks a blank line.
func splitDescription(desc string) (string, string) {
	synopsis, rest, _ := strings.Cut(desc, "\n")
	if rest == "" {
		return strings.TrimSpace(synopsis), ""
	}
	lines := strings.Split(rest, "\n")
	for i, line := range lines {
		if strings.TrimSpace(line) == "." {
			line = ""
		}
		lines[i] = strings.TrimRight(line, " \t")
	}
	return strings.TrimSpace(synopsis), strings.Trim(strings.Join(lines, "\n"), "\n")
}

// section drops the archive area from "contrib/games".
func section(s string) string {
	s = strings.TrimSpace(s)
	if i := strings.LastIndex(s, "/"); i >= 0 {
		return s[i+1:]
	}
	return s
}

func vcsURL(field, value string) string {
	value = strings.TrimSpace(value)
	if field == "Vcs-Git" {
		// "url -b branch [subdir]"
		if i := strings.Index(value, " -b "); i >= 0 {
			value = value[:i]
		}
		if i := strings.Index(value, " ["); i >= 0 {
			value = value[:i]
		}
	}
	return strings.TrimSpace(value)
}
