// Package app wires configuration, logging and the panbuild client for the
// CLI.
package app

import (
	"context"
	"io"
	"os"
	"sync"

	"github.com/rs/zerolog"

	"github.com/louib/panbuild"
	"github.com/louib/panbuild/internal/appcontext"
	"github.com/louib/panbuild/pkg/logging"
	"github.com/louib/panbuild/pkg/store"
)

var _ appcontext.Interface = (*App)(nil)

// App holds the dependencies shared by every command.
type App struct {
	version string
	commit  string
	date    string
	builtBy string

	config *Config
	logger *zerolog.Logger
	out    io.Writer
	errOut io.Writer

	// fixedLogger keeps a WithLogger logger across flag parsing.
	fixedLogger bool

	// client is created on first use.
	mu     sync.Mutex
	client panbuild.Client
}

// Option configures an App.
type Option func(*App) error

// WithConfig replaces the loaded configuration.
func WithConfig(config *Config) Option {
	return func(a *App) error {
		a.config = config
		return nil
	}
}

// WithLogger replaces the configured logger.
func WithLogger(logger *zerolog.Logger) Option {
	return func(a *App) error {
		a.logger = logger
		a.fixedLogger = logger != nil
		return nil
	}
}

// WithClient sets the client instead of building one from the
// configuration.
func WithClient(client panbuild.Client) Option {
	return func(a *App) error {
		a.client = client
		return nil
	}
}

// WithOutput redirects command output and errors.
func WithOutput(out, errOut io.Writer) Option {
	return func(a *App) error {
		a.out, a.errOut = out, errOut
		return nil
	}
}

// New creates an App with configuration loaded from the environment.
func New(version, commit, date, builtBy string, opts ...Option) (*App, error) {
	a := &App{
		version: version,
		commit:  commit,
		date:    date,
		builtBy: builtBy,
		out:     os.Stdout,
		errOut:  os.Stderr,
	}

	config, err := LoadConfig("")
	if err != nil {
		return nil, err
	}
	a.config = config
	logger := NewLogger(config)
	a.logger = &logger

	for _, opt := range opts {
		if err := opt(a); err != nil {
			return nil, err
		}
	}
	return a, nil
}

func (a *App) Version() string { return a.version }
func (a *App) Commit() string  { return a.commit }
func (a *App) Date() string    { return a.date }
func (a *App) BuiltBy() string { return a.builtBy }

// Config returns the application configuration.
func (a *App) Config() *Config { return a.config }

// Logger returns the application logger.
func (a *App) Logger() *zerolog.Logger { return a.logger }

// OutputFormat returns the --format value.
func (a *App) OutputFormat() string { return a.config.Format }

// OutDir returns the configured batch merge directory.
func (a *App) OutDir() string { return a.config.OutDir }

// Client returns the panbuild client, opening the store on first use.
func (a *App) Client() (panbuild.Client, error) {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.client != nil {
		return a.client, nil
	}

	ctx := logging.WithLogger(context.Background(), a.logger)
	st, err := store.Open(ctx, a.config.Store)
	if err != nil {
		return nil, err
	}

	client, err := panbuild.New(
		panbuild.WithStore(st),
		panbuild.WithSources(panbuild.DefaultSources(a.config.SourceConfig()).List()...),
		panbuild.WithLogger(a.logger),
	)
	if err != nil {
		_ = st.Close()
		return nil, err
	}

	a.client = client
	return client, nil
}

// Shutdown closes the client, if one was created.
func (a *App) Shutdown(_ context.Context) error {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.client == nil {
		return nil
	}
	err := a.client.Close()
	a.client = nil
	return err
}
