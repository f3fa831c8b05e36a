package appcontext

import (
	"github.com/rs/zerolog"

	"github.com/louib/panbuild"
	"github.com/louib/panbuild/pkg/errors"
	"github.com/louib/panbuild/pkg/logging"
)

var _ Interface = (*Mock)(nil)

// Mock implements Interface for command tests. Nil function fields return
// zero values.
//
// Client fails unless ClientFunc is set.
type Mock struct {
	ClientFunc func() (panbuild.Client, error)
	Log        *zerolog.Logger
	Format     string
	Dir        string
	Ver        string
}

// Client calls ClientFunc.
func (m *Mock) Client() (panbuild.Client, error) {
	if m.ClientFunc != nil {
		return m.ClientFunc()
	}
	return nil, errors.NewConfigError("client", "no client configured", nil)
}

// Logger returns Log, or a discarding logger.
func (m *Mock) Logger() *zerolog.Logger {
	if m.Log != nil {
		return m.Log
	}
	return logging.NewNopLogger()
}

func (m *Mock) OutputFormat() string { return m.Format }
func (m *Mock) OutDir() string       { return m.Dir }
func (m *Mock) Version() string      { return m.Ver }
func (m *Mock) Commit() string       { return "none" }
func (m *Mock) Date() string         { return "unknown" }
func (m *Mock) BuiltBy() string      { return "test" }
