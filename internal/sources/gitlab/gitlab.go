// Package gitlab discovers projects from the public project listing of a
// GitLab instance.
package gitlab

import (
	"context"
	"fmt"
	"iter"
	"net/url"
	"strconv"

	"github.com/louib/panbuild/internal/transport"
	"github.com/louib/panbuild/pkg/constants"
	"github.com/louib/panbuild/pkg/logging"
	"github.com/louib/panbuild/pkg/projects"
	"github.com/louib/panbuild/pkg/sources"
)

// DefaultInstances are the community GitLab hosts crawled when none are
// configured.
var DefaultInstances = []string{
	"gitlab.com",
	"source.puri.sm",
	"salsa.debian.org",
	"invent.kde.org",
	"gitlab.gnome.org",
	"code.videolan.org",
	"gitlab.haskell.org",
	"devel.trisquel.info",
	"gitlab.freedesktop.org",
}

// Project is the subset of a GitLab project object panbuild reads.
type Project struct {
	Name              string          `json:"name"`
	Description       *string         `json:"description"`
	TagList           []string        `json:"tag_list"`
	Topics            []string        `json:"topics"`
	WebURL            string          `json:"web_url"`
	HTTPURLToRepo     string          `json:"http_url_to_repo"`
	SSHURLToRepo      string          `json:"ssh_url_to_repo"`
	ForksCount        int             `json:"forks_count"`
	ForkedFromProject *ForkedFromInfo `json:"forked_from_project"`
}

// ForkedFromInfo identifies the upstream of a fork.
type ForkedFromInfo struct {
	ID                int    `json:"id"`
	PathWithNamespace string `json:"path_with_namespace"`
}

// Source fetches candidates from one GitLab instance.
type Source struct {
	client   *transport.Client
	host     string
	baseURL  string
	minForks int
}

// Option configures a Source.
type Option func(*Source)

// WithBaseURL overrides the scheme and host used to reach the API.
func WithBaseURL(base string) Option {
	return func(s *Source) {
		s.baseURL = base
	}
}

// WithMinForks skips projects with fewer forks than n. Zero disables the
// filter.
func WithMinForks(n int) Option {
	return func(s *Source) {
		s.minForks = n
	}
}

// New creates a source for the GitLab instance at host.
func New(client *transport.Client, host string, opts ...Option) *Source {
	s := &Source{client: client, host: host, baseURL: "https://" + host}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// ID implements sources.Source.
func (s *Source) ID() sources.ID { return sources.GitLabID }

// Name implements sources.Source.
func (s *Source) Name() string { return fmt.Sprintf("%s:%s", sources.GitLabID, s.host) }

// Host returns the instance host name.
func (s *Source) Host() string { return s.host }

// Fetch implements sources.Source.
func (s *Source) Fetch(ctx context.Context) ([]projects.Candidate, error) {
	ctx = logging.WithSource(ctx, s.Name())
	return sources.Collect(ctx, s.Projects(ctx), s.adapt)
}

// FirstPageURL returns the listing URL of the first page.
func (s *Source) FirstPageURL() string {
	q := url.Values{}
	q.Set("visibility", "public")
	q.Set("simple", "false")
	q.Set("per_page", strconv.Itoa(constants.DefaultPageSize))
	q.Set("page", "1")
	return s.baseURL + "/api/v4/projects?" + q.Encode()
}

// Projects returns the lazy sequence of project pages, following the
// x-next-page header.
func (s *Source) Projects(ctx context.Context) iter.Seq2[[]Project, error] {
	next := transport.NextPageHeader("x-next-page", "page")
	return func(yield func([]Project, error) bool) {
		for page, err := range s.client.Pages(ctx, s.FirstPageURL(), next) {
			if err != nil {
				yield(nil, err)
				return
			}
			var list []Project
			if err := transport.DecodeJSON(page.Body, page.URL, &list); err != nil {
				yield(nil, err)
				return
			}
			logger := logging.FromContext(ctx).Debug().
				Int("page", page.Number).
				Int("count", len(list))
			if total := page.Header.Get("x-total-pages"); total != "" && page.Number == 1 {
				logger = logger.Str("total_pages", total)
			}
			logger.Msg("Fetched projects")
			if !yield(list, nil) {
				return
			}
		}
	}
}

func (s *Source) adapt(p Project) (projects.Candidate, bool) {
	if s.minForks > 0 && p.ForksCount < s.minForks {
		return projects.Candidate{}, false
	}
	return Adapt(p)
}

// Adapt maps a GitLab project to a candidate. Forks and unnamed projects
// are skipped.
func Adapt(p Project) (projects.Candidate, bool) {
	if p.ForkedFromProject != nil || p.Name == "" {
		return projects.Candidate{}, false
	}

	opts := []projects.CandidateOption{
		projects.WithTags(p.TagList...),
		projects.WithTags(p.Topics...),
		projects.WithURLs(p.WebURL),
		projects.WithVCSURLs(p.HTTPURLToRepo, p.SSHURLToRepo),
	}
	if p.Description != nil {
		opts = append(opts, projects.WithDescription(*p.Description))
	}
	return projects.NewCandidate(p.Name, opts...), true
}
