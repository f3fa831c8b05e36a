// Package github discovers projects from the public GitHub repository
// listing.
package github

import (
	"context"
	"fmt"
	"iter"

	"github.com/louib/panbuild/internal/transport"
	"github.com/louib/panbuild/pkg/logging"
	"github.com/louib/panbuild/pkg/projects"
	"github.com/louib/panbuild/pkg/sources"
)

// DefaultURL lists every public repository in creation order.
const DefaultURL = "https://api.github.com/repositories"

// Repository is the subset of a GitHub repository object panbuild reads.
type Repository struct {
	Name        string  `json:"name"`
	FullName    string  `json:"full_name"`
	Description *string `json:"description"`
	HTMLURL     string  `json:"html_url"`
	Fork        bool    `json:"fork"`
}

// Source fetches candidates from GitHub.
type Source struct {
	client *transport.Client
	url    string
}

// Option configures a Source.
type Option func(*Source)

// WithURL overrides the listing endpoint.
func WithURL(url string) Option {
	return func(s *Source) {
		s.url = url
	}
}

// New creates a GitHub source using client for every request.
func New(client *transport.Client, opts ...Option) *Source {
	s := &Source{client: client, url: DefaultURL}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// ID implements sources.Source.
func (s *Source) ID() sources.ID { return sources.GitHubID }

// Name implements sources.Source.
func (s *Source) Name() string { return string(sources.GitHubID) }

// Fetch implements sources.Source.
func (s *Source) Fetch(ctx context.Context) ([]projects.Candidate, error) {
	ctx = logging.WithSource(ctx, s.Name())
	return sources.Collect(ctx, s.Repositories(ctx), Adapt)
}

// Repositories returns the lazy sequence of repository pages, following
// the Link header.
func (s *Source) Repositories(ctx context.Context) iter.Seq2[[]Repository, error] {
	return func(yield func([]Repository, error) bool) {
		for page, err := range s.client.Pages(ctx, s.url, transport.LinkNext) {
			if err != nil {
				yield(nil, err)
				return
			}
			var repos []Repository
			if err := transport.DecodeJSON(page.Body, page.URL, &repos); err != nil {
				yield(nil, err)
				return
			}
			logging.FromContext(ctx).Debug().
				Int("page", page.Number).
				Int("count", len(repos)).
				Msg("Fetched repositories")
			if !yield(repos, nil) {
				return
			}
		}
	}
}

// Adapt maps a repository to a candidate. Forks and unnamed repositories
// are skipped.
func Adapt(repo Repository) (projects.Candidate, bool) {
	if repo.Fork || repo.Name == "" {
		return projects.Candidate{}, false
	}

	opts := []projects.CandidateOption{projects.WithURLs(repo.HTMLURL)}
	if repo.Description != nil {
		opts = append(opts, projects.WithDescription(*repo.Description))
	}
	if repo.FullName != "" {
		opts = append(opts, projects.WithVCSURLs(CloneURLs(repo.FullName)...))
	}
	return projects.NewCandidate(repo.Name, opts...), true
}

// CloneURLs returns the HTTPS and SSH clone URLs of owner/name.
func CloneURLs(fullName string) []string {
	return []string{
		fmt.Sprintf("https://github.com/%s.git", fullName),
		fmt.Sprintf("git@github.com:%s.git", fullName),
	}
}
