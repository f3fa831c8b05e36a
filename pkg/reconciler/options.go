package reconciler

import (
	"github.com/louib/panbuild/pkg/errors"
)

type options struct {
	store  Store
	dryRun bool
}

func defaultOptions() *options {
	return &options{}
}

// Option is a function that configures a Reconciler.
type Option func(*options) error

func (o *options) apply(opts ...Option) (*options, error) {
	for _, opt := range opts {
		if err := opt(o); err != nil {
			return nil, err
		}
	}
	return o, nil
}

func newOptions(opts ...Option) (*options, error) {
	return defaultOptions().apply(opts...)
}

// WithStore sets the store candidates are reconciled against.
func WithStore(store Store) Option {
	return func(o *options) error {
		if store == nil {
			return &errors.ValidationError{Field: "store", Message: "cannot be nil"}
		}
		o.store = store
		return nil
	}
}

// WithDryRun computes the result without saving anything.
func WithDryRun(dryRun bool) Option {
	return func(o *options) error {
		o.dryRun = dryRun
		return nil
	}
}
