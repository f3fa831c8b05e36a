package panbuild

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"github.com/louib/panbuild/pkg/constants"
	"github.com/louib/panbuild/pkg/errors"
	"github.com/louib/panbuild/pkg/logging"
	"github.com/louib/panbuild/pkg/sources"
	"github.com/louib/panbuild/pkg/store"
)

// Option is a function that configures a Client.
type Option func(*options) error

type options struct {
	store          store.Store
	sources        *sources.Sources
	logger         *zerolog.Logger
	outputFileName string
}

func defaults() *options {
	return &options{
		outputFileName: constants.MergeOutputFileName,
	}
}

func (o *options) apply(opts ...Option) (*options, error) {
	for _, opt := range opts {
		if err := opt(o); err != nil {
			return nil, err
		}
	}
	return o, nil
}

// context returns a background context carrying the configured logger.
func (o *options) context() context.Context {
	return o.with(context.Background())
}

func (o *options) with(ctx context.Context) context.Context {
	if o.logger != nil {
		return logging.WithLogger(ctx, o.logger)
	}
	return ctx
}

// WithStore sets the project store.
func WithStore(s store.Store) Option {
	return func(o *options) error {
		if s == nil {
			return errors.NewValidationError("store", nil, "cannot be nil")
		}
		o.store = s
		return nil
	}
}

// WithSources replaces the default sources.
func WithSources(srcs ...sources.Source) Option {
	return func(o *options) error {
		o.sources = sources.NewSources(srcs...)
		return nil
	}
}

// WithLogger sets the logger attached to every operation of the client.
func WithLogger(logger *zerolog.Logger) Option {
	return func(o *options) error {
		o.logger = logger
		return nil
	}
}

// WithOutputFileName sets the file written by Merge.
func WithOutputFileName(name string) Option {
	return func(o *options) error {
		if name == "" {
			return errors.NewValidationError("output_file_name", name, "cannot be empty")
		}
		o.outputFileName = name
		return nil
	}
}

// DiscoverOption configures a single Discover call.
type DiscoverOption func(*DiscoverOptions)

// DiscoverOptions holds the settings of a Discover call.
type DiscoverOptions struct {
	SourceIDs []sources.ID
	DryRun    bool
	Timeout   time.Duration
}

// NewDiscoverOptions applies opts over the defaults.
func NewDiscoverOptions(opts ...DiscoverOption) *DiscoverOptions {
	o := &DiscoverOptions{Timeout: constants.CommandTimeout}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// WithSourceIDs restricts discovery to the given kinds of registry.
func WithSourceIDs(ids ...sources.ID) DiscoverOption {
	return func(o *DiscoverOptions) {
		o.SourceIDs = append(o.SourceIDs, ids...)
	}
}

// WithDryRun reconciles without writing to the store.
func WithDryRun(dryRun bool) DiscoverOption {
	return func(o *DiscoverOptions) {
		o.DryRun = dryRun
	}
}

// WithTimeout bounds the whole discovery run. Zero disables the limit.
func WithTimeout(d time.Duration) DiscoverOption {
	return func(o *DiscoverOptions) {
		o.Timeout = d
	}
}

// Validate rejects unknown source ids.
func (o *DiscoverOptions) Validate() error {
	for _, id := range o.SourceIDs {
		if !id.IsValid() {
			return errors.NewValidationError("source", string(id), "unknown source")
		}
	}
	return nil
}
