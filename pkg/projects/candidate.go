package projects

import (
	"fmt"

	"github.com/louib/panbuild/pkg/errors"
	"github.com/louib/panbuild/pkg/naming"
)

// Candidate is a source-derived project record awaiting reconciliation.
// It shares the Project schema but has not been persisted yet.
type Candidate Project

// CandidateOption configures a Candidate built by NewCandidate.
type CandidateOption func(*Candidate)

// WithDescription sets the candidate description.
func WithDescription(description string) CandidateOption {
	return func(c *Candidate) {
		c.Description = description
	}
}

// WithLongDescription sets the candidate long description.
func WithLongDescription(text string) CandidateOption {
	return func(c *Candidate) {
		c.LongDescription = text
	}
}

// WithURLs adds web URLs.
func WithURLs(urls ...string) CandidateOption {
	return func(c *Candidate) {
		c.URLs = append(c.URLs, urls...)
	}
}

// WithVCSURLs adds repository URLs.
func WithVCSURLs(urls ...string) CandidateOption {
	return func(c *Candidate) {
		c.VCSURLs = append(c.VCSURLs, urls...)
	}
}

// WithVersions adds version strings.
func WithVersions(versions ...string) CandidateOption {
	return func(c *Candidate) {
		c.Versions = append(c.Versions, versions...)
	}
}

// WithTags adds classification labels.
func WithTags(tags ...string) CandidateOption {
	return func(c *Candidate) {
		c.Tags = append(c.Tags, tags...)
	}
}

// WithAliases adds alternate names.
func WithAliases(aliases ...string) CandidateOption {
	return func(c *Candidate) {
		c.Aliases = append(c.Aliases, aliases...)
	}
}

// NewCandidate builds a candidate from a registry's native name. The name
// is normalized and every set field is sorted and deduplicated once all
// options have been applied.
func NewCandidate(rawName string, opts ...CandidateOption) Candidate {
	c := Candidate{Name: rawName}
	for _, opt := range opts {
		opt(&c)
	}
	return c.Canonical()
}

// Canonical returns a copy with a normalized name and set semantics applied
// to every set field.
func (c Candidate) Canonical() Candidate {
	p := Project(c).Normalized()
	p.Name = naming.Normalize(p.Name)
	return Candidate(p)
}

// Validate checks that the candidate carries a canonical name.
func (c Candidate) Validate() error {
	p := Project(c)
	if err := p.Validate(); err != nil {
		return err
	}
	if id := naming.Normalize(c.Name); id != c.Name {
		return errors.NewValidationError(FieldName, c.Name, fmt.Sprintf("not a canonical name (want %q)", id))
	}
	return nil
}

// Project converts the candidate into a new, independent Project.
func (c Candidate) Project() Project {
	return Project(c).Clone()
}
