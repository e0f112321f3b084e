package dsda

import (
	"io/ioutil"
	"time"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"

	"github.com/processdesign/dsda/pkg/nlp"
)

const (
	DefaultTolerance       = 1e-5
	DefaultMaxInitAttempts = 500
	DefaultTimeLimit       = 10 * time.Second
)

type Option func(d *Driver) error

// WithNeighborhood replaces the default K2 neighborhood.
func WithNeighborhood(n Neighborhood) Option {
	return func(d *Driver) error {
		d.neighborhood = n
		return nil
	}
}

// WithFilters adds filters applied after the bounds filter, in order.
func WithFilters(factories ...FilterFactory) Option {
	return func(d *Driver) error {
		d.filterFactories = append(d.filterFactories, factories...)
		return nil
	}
}

// WithTolerance sets the improvement a neighbor must achieve over the
// incumbent to be accepted.
func WithTolerance(tol float64) Option {
	return func(d *Driver) error {
		d.tolerance = tol
		return nil
	}
}

// WithParallelism sets how many neighbors are evaluated concurrently.
func WithParallelism(n int) Option {
	return func(d *Driver) error {
		d.parallelism = n
		return nil
	}
}

// WithSolverOptions sets the options of every subproblem solve.
func WithSolverOptions(o nlp.Options) Option {
	return func(d *Driver) error {
		d.solverOptions = o
		return nil
	}
}

// WithSeed sets the starting point. It takes precedence over the default
// seed of the superstructure.
func WithSeed(p Point) Option {
	return func(d *Driver) error {
		d.seed = p
		return nil
	}
}

func WithLogger(logger logrus.FieldLogger) Option {
	return func(d *Driver) error {
		d.logger = logger
		return nil
	}
}

func WithTracer(t Tracer) Option {
	return func(d *Driver) error {
		d.tracer = t
		return nil
	}
}

// WithMaxInitAttempts bounds the number of solves spent looking for a
// feasible starting point.
func WithMaxInitAttempts(n int) Option {
	return func(d *Driver) error {
		d.maxInitAttempts = n
		return nil
	}
}

// WithMaxIterations bounds the number of explore rounds. Zero means no
// bound.
func WithMaxIterations(n int) Option {
	return func(d *Driver) error {
		d.maxIterations = n
		return nil
	}
}

// WithMemo caches the outcome of every evaluated point, so that a point
// reached again is not solved again.
func WithMemo(enabled bool) Option {
	return func(d *Driver) error {
		d.memo = enabled
		return nil
	}
}

var defaults = []Option{
	func(d *Driver) error {
		if d.neighborhood == nil {
			d.neighborhood = K2{}
		}
		return nil
	},
	func(d *Driver) error {
		if d.logger == nil {
			l := logrus.New()
			l.SetOutput(ioutil.Discard)
			d.logger = l
		}
		return nil
	},
	func(d *Driver) error {
		if d.tracer == nil {
			d.tracer = DefaultTracer{}
		}
		return nil
	},
}

func newInvalidConfigError(msg string) error {
	return errors.Errorf("invalid dsda config: %s", msg)
}

func (d *Driver) validate() error {
	switch {
	case d.tolerance < 0:
		return newInvalidConfigError("tolerance must not be negative")
	case d.parallelism < 1:
		return newInvalidConfigError("parallelism must be at least 1")
	case d.maxInitAttempts < 1:
		return newInvalidConfigError("at least one initialization attempt is required")
	case d.maxIterations < 0:
		return newInvalidConfigError("max iterations must not be negative")
	case d.solverOptions.TimeLimit < 0:
		return newInvalidConfigError("solver time limit must not be negative")
	}
	return nil
}
