// Package appcontext provides the application context interface shared by
// the command packages.
package appcontext

import (
	"github.com/rs/zerolog"

	"github.com/louib/panbuild"
)

// Interface is what commands need from the application. The App in
// cmd/panbuild/app implements it; tests use Mock.
type Interface interface {
	// Client returns the panbuild client, creating it on first use.
	Client() (panbuild.Client, error)

	// Logger returns the configured logger.
	Logger() *zerolog.Logger

	// OutputFormat returns the requested output format, empty when
	// unset.
	OutputFormat() string

	// OutDir returns the default batch merge directory.
	OutDir() string

	Version() string
	Commit() string
	Date() string
	BuiltBy() string
}
