// Package vcs infers version-control URLs from the web URLs of a project.
package vcs

import (
	"regexp"

	"github.com/louib/panbuild/pkg/projects"
)

// ForgeHosts lists the forges whose project pages double as clone URLs.
var ForgeHosts = []string{
	"github.com",
	"gitlab.com",
	"salsa.debian.org",
	"source.puri.sm",
	"invent.kde.org",
	"gitlab.gnome.org",
	"gitlab.freedesktop.org",
	"code.videolan.org",
	"gitlab.haskell.org",
	"devel.trisquel.info",
}

// patterns match https://<forge-host>/<owner>/<repo> with an optional
// trailing slash and nothing after it.
var patterns = compile(ForgeHosts)

func compile(hosts []string) []*regexp.Regexp {
	out := make([]*regexp.Regexp, 0, len(hosts))
	for _, host := range hosts {
		out = append(out, regexp.MustCompile(`^https://`+regexp.QuoteMeta(host)+`/[\w.-]+/[\w.-]+/?$`))
	}
	return out
}

// IsForgeURL reports whether url has the shape of a forge project page.
func IsForgeURL(url string) bool {
	for _, re := range patterns {
		if re.MatchString(url) {
			return true
		}
	}
	return false
}

// Inferred returns the members of urls that have a forge URL shape.
func Inferred(urls []string) []string {
	var out []string
	for _, u := range urls {
		if IsForgeURL(u) {
			out = append(out, u)
		}
	}
	return out
}

// Infer returns a copy of p whose vcs_urls include every forge-shaped entry
// of its urls. Infer is idempotent.
func Infer(p projects.Project) projects.Project {
	p = p.Clone()
	p.VCSURLs = projects.Union(p.VCSURLs, Inferred(p.URLs))
	return p
}
