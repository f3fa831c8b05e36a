// Package projects defines the canonical project schema shared by every
// source adapter, the reconciler and the registry store.
package projects

import (
	"slices"
	"strings"

	"github.com/louib/panbuild/pkg/constants"
	"github.com/louib/panbuild/pkg/errors"
)

// Field names of the canonical schema, in persisted order.
const (
	FieldName            = "name"
	FieldDescription     = "description"
	FieldLongDescription = "long_description"
	FieldURLs            = "urls"
	FieldVCSURLs         = "vcs_urls"
	FieldVersions        = "versions"
	FieldTags            = "tags"
	FieldAliases         = "aliases"
)

// Fields is the fixed canonical field set. Stored keys outside of it are
// dropped on load.
var Fields = []string{
	FieldName,
	FieldDescription,
	FieldLongDescription,
	FieldURLs,
	FieldVCSURLs,
	FieldVersions,
	FieldTags,
	FieldAliases,
}

// IsField reports whether key belongs to the canonical field set.
func IsField(key string) bool {
	return slices.Contains(Fields, key)
}

// Project is the persisted, merged representation of a software project.
//
// Every slice field has set semantics: no duplicates, sorted.
type Project struct {
	Name            string   `json:"name" yaml:"name"`
	Description     string   `json:"description" yaml:"description"`
	LongDescription string   `json:"long_description,omitempty" yaml:"long_description,omitempty"`
	URLs            []string `json:"urls" yaml:"urls,omitempty"`
	VCSURLs         []string `json:"vcs_urls" yaml:"vcs_urls,omitempty"`
	Versions        []string `json:"versions,omitempty" yaml:"versions,omitempty"`
	Tags            []string `json:"tags" yaml:"tags,omitempty"`
	Aliases         []string `json:"aliases,omitempty" yaml:"aliases,omitempty"`
}

// Validate checks the canonical key.
func (p *Project) Validate() error {
	if p == nil {
		return errors.NewValidationError(FieldName, nil, "project cannot be nil")
	}
	if strings.TrimSpace(p.Name) == "" {
		return errors.NewValidationError(FieldName, p.Name, "canonical name cannot be empty")
	}
	return nil
}

// IsComplete reports whether the project has at least one non-empty
// vcs_urls entry. Only complete projects are emitted by a batch merge.
func (p *Project) IsComplete() bool {
	return slices.ContainsFunc(p.VCSURLs, func(u string) bool {
		return strings.TrimSpace(u) != ""
	})
}

// Clone returns a deep copy of the project.
func (p Project) Clone() Project {
	p.URLs = slices.Clone(p.URLs)
	p.VCSURLs = slices.Clone(p.VCSURLs)
	p.Versions = slices.Clone(p.Versions)
	p.Tags = slices.Clone(p.Tags)
	p.Aliases = slices.Clone(p.Aliases)
	return p
}

// Normalized returns a copy whose set fields are sorted, deduplicated and
// never nil.
func (p Project) Normalized() Project {
	p.URLs = Set(p.URLs...)
	p.VCSURLs = Set(p.VCSURLs...)
	p.Versions = Set(p.Versions...)
	p.Tags = Set(p.Tags...)
	p.Aliases = Set(p.Aliases...)
	return p
}

// Persistable reports whether a record with this id may be written to a
// store. Ids containing the reserved separator are never persisted.
func Persistable(id string) bool {
	return id != "" && !strings.Contains(id, constants.ReservedSeparator)
}

// Equal reports whether two projects hold the same data. Set fields are
// compared as sets.
func (p Project) Equal(o Project) bool {
	return p.Name == o.Name &&
		p.Description == o.Description &&
		p.LongDescription == o.LongDescription &&
		SetEqual(p.URLs, o.URLs) &&
		SetEqual(p.VCSURLs, o.VCSURLs) &&
		SetEqual(p.Versions, o.Versions) &&
		SetEqual(p.Tags, o.Tags) &&
		SetEqual(p.Aliases, o.Aliases)
}
