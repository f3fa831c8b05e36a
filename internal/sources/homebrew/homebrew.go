// Package homebrew discovers projects from the Homebrew formula and cask
// JSON dumps.
package homebrew

import (
	"bytes"
	"context"
	"encoding/json"
	"iter"
	"strings"

	"github.com/louib/panbuild/internal/transport"
	"github.com/louib/panbuild/pkg/logging"
	"github.com/louib/panbuild/pkg/projects"
	"github.com/louib/panbuild/pkg/sources"
)

// DefaultFeeds are the dumps traversed in order.
var DefaultFeeds = []string{
	"https://formulae.brew.sh/api/formula.json",
	"https://formulae.brew.sh/api/formula-linux.json",
	"https://formulae.brew.sh/api/cask.json",
}

// Name holds a package name. Homebrew occasionally publishes a list of
// display names instead of a single string; such entries are flagged.
type Name struct {
	Value  string
	IsList bool
}

// UnmarshalJSON accepts either a string or a list of strings.
func (n *Name) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) > 0 && data[0] == '[' {
		n.IsList = true
		return nil
	}
	if bytes.Equal(data, []byte("null")) {
		return nil
	}
	return json.Unmarshal(data, &n.Value)
}

// Package is the subset of a formula or cask panbuild reads.
type Package struct {
	Name     Name      `json:"name"`
	Desc     *string   `json:"desc"`
	Homepage string    `json:"homepage"`
	Aliases  []string  `json:"aliases"`
	Version  *string   `json:"version"`
	Versions *Versions `json:"versions"`
	URLs     *URLs     `json:"urls"`
}

// Versions lists the published versions of a formula.
type Versions struct {
	Stable *string `json:"stable"`
	Devel  *string `json:"devel"`
}

// URLs holds the download locations of a formula.
type URLs struct {
	Stable *Download `json:"stable"`
}

// Download is a formula download location.
type Download struct {
	URL string  `json:"url"`
	Tag *string `json:"tag"`
}

// Source fetches candidates from the Homebrew dumps.
type Source struct {
	client *transport.Client
	feeds  []string
}

// Option configures a Source.
type Option func(*Source)

// WithFeeds overrides the list of dumps.
func WithFeeds(feeds ...string) Option {
	return func(s *Source) {
		s.feeds = feeds
	}
}

// New creates a Homebrew source.
func New(client *transport.Client, opts ...Option) *Source {
	s := &Source{client: client, feeds: DefaultFeeds}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// ID implements sources.Source.
func (s *Source) ID() sources.ID { return sources.HomebrewID }

// Name implements sources.Source.
func (s *Source) Name() string { return string(sources.HomebrewID) }

// Fetch implements sources.Source.
func (s *Source) Fetch(ctx context.Context) ([]projects.Candidate, error) {
	ctx = logging.WithSource(ctx, s.Name())
	return sources.Collect(ctx, s.Packages(ctx), Adapt)
}

// Packages traverses the feeds as the pages of a single traversal. A
// failing feed aborts the remaining ones.
func (s *Source) Packages(ctx context.Context) iter.Seq2[[]Package, error] {
	return func(yield func([]Package, error) bool) {
		if len(s.feeds) == 0 {
			return
		}
		for page, err := range s.client.Pages(ctx, s.feeds[0], transport.StaticPages(s.feeds)) {
			if err != nil {
				yield(nil, err)
				return
			}
			var pkgs []Package
			if err := transport.DecodeJSON(page.Body, page.URL, &pkgs); err != nil {
				yield(nil, err)
				return
			}
			logging.FromContext(ctx).Debug().
				Str("feed", page.URL).
				Int("count", len(pkgs)).
				Msg("Fetched packages")
			if !yield(pkgs, nil) {
				return
			}
		}
	}
}

// Adapt maps a formula or cask to a candidate. Entries whose name is
// missing or a list are skipped.
func Adapt(pkg Package) (projects.Candidate, bool) {
	if pkg.Name.IsList || pkg.Name.Value == "" {
		return projects.Candidate{}, false
	}

	opts := []projects.CandidateOption{
		projects.WithURLs(pkg.Homepage),
		projects.WithAliases(pkg.Aliases...),
	}
	if pkg.Desc != nil {
		opts = append(opts, projects.WithDescription(*pkg.Desc))
	}
	if pkg.Versions != nil {
		opts = append(opts, projects.WithVersions(deref(pkg.Versions.Stable), deref(pkg.Versions.Devel)))
	}
	opts = append(opts, projects.WithVersions(deref(pkg.Version)))

	if pkg.URLs != nil && pkg.URLs.Stable != nil {
		stable := pkg.URLs.Stable
		if strings.HasSuffix(stable.URL, ".git") {
			opts = append(opts, projects.WithVCSURLs(stable.URL))
		} else {
			opts = append(opts, projects.WithURLs(stable.URL))
		}
		opts = append(opts, projects.WithVersions(deref(stable.Tag)))
	}

	return projects.NewCandidate(pkg.Name.Value, opts...), true
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
