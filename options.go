package boxblur

import (
	"fmt"
	"log/slog"
	"runtime"
)

// DefaultIterations is the number of passes Blur runs unless WithIterations
// says otherwise.
const DefaultIterations = 20

// Option configures a Blur call.
// Use functional options to override the defaults.
//
// Example:
//
//	// 20 passes on GOMAXPROCS goroutines
//	out, err := boxblur.Blur(ctx, g)
//
//	// 50 passes on 4 message-passing ranks
//	out, err := boxblur.Blur(ctx, g,
//	    boxblur.WithIterations(50),
//	    boxblur.WithWorkers(4),
//	    boxblur.WithModel(boxblur.ModelDistributed))
type Option func(*options)

// options holds the resolved configuration of a run.
type options struct {
	iterations int
	workers    int
	model      Model
	logger     *slog.Logger
}

// defaultOptions returns the default run configuration.
func defaultOptions() options {
	return options{
		iterations: DefaultIterations,
		workers:    runtime.GOMAXPROCS(0),
		model:      ModelShared,
		logger:     nil, // Falls back to Logger()
	}
}

// validate rejects values no model can run with.
func (o options) validate() error {
	if o.iterations < 0 {
		return fmt.Errorf("%w: %d iterations", ErrInvalidConfig, o.iterations)
	}
	if o.workers < 1 {
		return fmt.Errorf("%w: %d workers", ErrInvalidPartition, o.workers)
	}
	if o.model != ModelShared && o.model != ModelDistributed {
		return fmt.Errorf("%w: model %d", ErrInvalidConfig, int(o.model))
	}
	return nil
}

// WithIterations sets the number of blur passes. Zero returns a copy of the
// input; negative values are rejected.
func WithIterations(n int) Option {
	return func(o *options) {
		o.iterations = n
	}
}

// WithWorkers sets the number of goroutines (shared model) or ranks
// (distributed model). The default is GOMAXPROCS.
//
// Counts below 1 fail with ErrInvalidPartition. The shared model clamps the
// count to the grid height. The distributed model
// fails with ErrInvalidPartition if the count exceeds the height, since every
// rank must own at least one row.
func WithWorkers(n int) Option {
	return func(o *options) {
		o.workers = n
	}
}

// WithModel selects the parallel model. The default is ModelShared.
func WithModel(m Model) Option {
	return func(o *options) {
		o.model = m
	}
}

// WithLogger sets the logger for one call, overriding the package logger set
// with SetLogger.
func WithLogger(l *slog.Logger) Option {
	return func(o *options) {
		o.logger = l
	}
}
