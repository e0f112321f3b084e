// Package subproblem solves the continuous relaxation of a disjunctive
// model whose discrete decisions have been fixed.
package subproblem

import (
	"context"
	"io/ioutil"
	"time"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"

	"github.com/processdesign/dsda/pkg/gdp"
	"github.com/processdesign/dsda/pkg/nlp"
)

// Status classifies a subproblem outcome. Only StatusOK outcomes carry a
// usable objective.
type Status string

const (
	StatusOK         Status = "ok"
	StatusInfeasible Status = "infeasible"
	StatusError      Status = "error"
)

// Outcome is the result of one subproblem solve.
type Outcome struct {
	Status    Status
	Objective float64
	// WarmStart holds every continuous variable of the model on
	// StatusOK, nil otherwise.
	WarmStart   nlp.Snapshot
	Termination nlp.Termination
	Message     string
}

// OK reports whether the outcome can be compared.
func (o Outcome) OK() bool {
	return o.Status == StatusOK
}

// Adapter hands fixed models to an nlp.Solver. It does not retry.
type Adapter struct {
	solver  nlp.Solver
	options nlp.Options
	logger  logrus.FieldLogger
}

type adapterConfig struct {
	options nlp.Options
	logger  logrus.FieldLogger
}

type Option func(*adapterConfig)

// WithSolverOptions sets the time limit and optimality gap passed to
// every solve.
func WithSolverOptions(options nlp.Options) Option {
	return func(c *adapterConfig) {
		c.options = options
	}
}

func WithLogger(logger logrus.FieldLogger) Option {
	return func(c *adapterConfig) {
		c.logger = logger
	}
}

func (c *adapterConfig) validate() error {
	switch {
	case c.options.TimeLimit < 0:
		return errors.Errorf("invalid subproblem config: negative time limit %s", c.options.TimeLimit)
	case c.options.OptimalityGap < 0:
		return errors.Errorf("invalid subproblem config: negative optimality gap %g", c.options.OptimalityGap)
	case c.logger == nil:
		return errors.New("invalid subproblem config: logger cannot be nil")
	}
	return nil
}

func NewAdapter(solver nlp.Solver, options ...Option) (*Adapter, error) {
	if solver == nil {
		return nil, errors.New("invalid subproblem config: solver cannot be nil")
	}
	l := logrus.New()
	l.SetOutput(ioutil.Discard)
	config := &adapterConfig{
		options: nlp.Options{TimeLimit: 10 * time.Second},
		logger:  l,
	}
	for _, option := range options {
		option(config)
	}
	if err := config.validate(); err != nil {
		return nil, err
	}
	return &Adapter{solver: solver, options: config.options, logger: config.logger}, nil
}

// Solve relaxes any logical constraint left in m, builds its continuous
// problem, seeds it from warm when given and solves it. The returned error
// is only non-nil when ctx ends; every other failure is reported as an
// Outcome with StatusError.
func (a *Adapter) Solve(ctx context.Context, m *gdp.Model, warm nlp.Snapshot) (Outcome, error) {
	log := a.logger.WithField("model", m.Name)

	if err := gdp.LogicalToLinear(m); err != nil {
		return a.failed(log, err), nil
	}
	p, err := m.Relax()
	if err != nil {
		return a.failed(log, err), nil
	}
	if warm != nil {
		log.WithField("seeded", p.Seed(warm)).Debug("warm start applied")
	}

	sol, err := a.solver.Solve(ctx, p, a.options)
	if ctx.Err() != nil {
		return Outcome{}, ctx.Err()
	}
	if err != nil {
		return a.failed(log, err), nil
	}
	if sol == nil {
		return a.failed(log, errors.New("solver returned no solution")), nil
	}

	out := Outcome{
		Termination: sol.Termination,
		Message:     sol.Message,
	}
	switch sol.Termination {
	case nlp.Optimal:
		out.Status = StatusOK
		out.Objective = sol.Objective
		out.WarmStart = p.Snapshot(sol.X)
	case nlp.Infeasible:
		out.Status = StatusInfeasible
	default:
		out.Status = StatusError
	}
	log.WithFields(logrus.Fields{
		"status":      out.Status,
		"termination": sol.Termination.String(),
		"objective":   sol.Objective,
		"violation":   sol.MaxViolation,
	}).Debug("subproblem solved")
	return out, nil
}

func (a *Adapter) failed(log logrus.FieldLogger, err error) Outcome {
	log.WithError(err).Debug("subproblem failed")
	return Outcome{Status: StatusError, Termination: nlp.Error, Message: err.Error()}
}
