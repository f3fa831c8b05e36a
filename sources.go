package panbuild

import (
	"time"

	"github.com/louib/panbuild/internal/sources/debian"
	"github.com/louib/panbuild/internal/sources/github"
	"github.com/louib/panbuild/internal/sources/gitlab"
	"github.com/louib/panbuild/internal/sources/homebrew"
	"github.com/louib/panbuild/internal/transport"
	"github.com/louib/panbuild/pkg/sources"
)

// SourceConfig tunes the registries built by DefaultSources. Zero values
// select the defaults of each adapter.
type SourceConfig struct {
	// Enabled restricts the registries; empty enables all of them.
	Enabled []sources.ID

	GitHubURL       string
	GitLabInstances []string
	GitLabMinForks  int
	HomebrewFeeds   []string
	DebianIndexes   []string

	HTTPTimeout time.Duration
	UserAgent   string
}

// DefaultSources builds one source per registry, one per GitLab instance
// and one per Debian index, in discovery order.
func DefaultSources(cfg *SourceConfig) *sources.Sources {
	if cfg == nil {
		cfg = &SourceConfig{}
	}
	client := func(id sources.ID) *transport.Client {
		return transport.New(string(id),
			transport.WithTimeout(cfg.HTTPTimeout),
			transport.WithUserAgent(cfg.UserAgent),
		)
	}

	all := sources.NewSources()

	var ghOpts []github.Option
	if cfg.GitHubURL != "" {
		ghOpts = append(ghOpts, github.WithURL(cfg.GitHubURL))
	}
	all.Add(github.New(client(sources.GitHubID), ghOpts...))

	instances := cfg.GitLabInstances
	if len(instances) == 0 {
		instances = gitlab.DefaultInstances
	}
	for _, host := range instances {
		all.Add(gitlab.New(client(sources.GitLabID), host, gitlab.WithMinForks(cfg.GitLabMinForks)))
	}

	var hbOpts []homebrew.Option
	if len(cfg.HomebrewFeeds) > 0 {
		hbOpts = append(hbOpts, homebrew.WithFeeds(cfg.HomebrewFeeds...))
	}
	all.Add(homebrew.New(client(sources.HomebrewID), hbOpts...))

	indexes := cfg.DebianIndexes
	if len(indexes) == 0 {
		indexes = debian.DefaultIndexes
	}
	for _, index := range indexes {
		all.Add(debian.New(client(sources.DebianID), index))
	}

	if len(cfg.Enabled) == 0 {
		return all
	}
	return sources.NewSources(all.Filter(cfg.Enabled...)...)
}
