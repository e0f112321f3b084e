package nlp

import (
	"context"
	"io/ioutil"
	"math"
	"time"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/optimize"
)

const (
	defaultFeasibilityTol   = 1e-6
	defaultMaxOuter         = 40
	defaultInnerEvaluations = 4000
	defaultPenalty          = 10.0
	maxPenalty              = 1e10
	// Returned in place of non-finite function values so the simplex
	// moves away from the region.
	unusable = 1e20
)

// AugmentedLagrangian is an in-process Solver for small, smooth problems.
// General constraints are handled with Powell-Hestenes-Rockafellar
// multipliers, variable bounds by projection plus a quadratic penalty, and
// every inner subproblem is minimized with Nelder-Mead in coordinates
// normalized to the variable bounds.
type AugmentedLagrangian struct {
	feasibilityTol   float64
	maxOuter         int
	innerEvaluations int
	logger           logrus.FieldLogger
}

type alConfig struct {
	feasibilityTol   float64
	maxOuter         int
	innerEvaluations int
	logger           logrus.FieldLogger
}

// ALOption configures an AugmentedLagrangian.
type ALOption func(*alConfig)

// WithFeasibilityTolerance sets the largest constraint violation accepted
// as feasible.
func WithFeasibilityTolerance(tol float64) ALOption {
	return func(c *alConfig) {
		c.feasibilityTol = tol
	}
}

// WithMaxOuterIterations bounds the number of multiplier updates.
func WithMaxOuterIterations(n int) ALOption {
	return func(c *alConfig) {
		c.maxOuter = n
	}
}

// WithInnerEvaluations bounds the function evaluations of each inner solve.
func WithInnerEvaluations(n int) ALOption {
	return func(c *alConfig) {
		c.innerEvaluations = n
	}
}

// WithSolverLogger sets the logger used for per-iteration debug output.
func WithSolverLogger(logger logrus.FieldLogger) ALOption {
	return func(c *alConfig) {
		c.logger = logger
	}
}

func (c *alConfig) apply(options []ALOption) {
	for _, option := range options {
		option(c)
	}
}

func (c *alConfig) validate() error {
	switch {
	case c.feasibilityTol <= 0 || math.IsNaN(c.feasibilityTol):
		return newInvalidSolverConfigError("feasibility tolerance must be positive")
	case c.maxOuter < 1:
		return newInvalidSolverConfigError("at least one outer iteration is required")
	case c.innerEvaluations < 1:
		return newInvalidSolverConfigError("at least one inner evaluation is required")
	case c.logger == nil:
		return newInvalidSolverConfigError("logger cannot be nil")
	}
	return nil
}

func newInvalidSolverConfigError(msg string) error {
	return errors.Errorf("invalid augmented lagrangian config: %s", msg)
}

func defaultLogger() logrus.FieldLogger {
	l := logrus.New()
	l.SetOutput(ioutil.Discard)
	return l
}

// NewAugmentedLagrangian returns a configured AugmentedLagrangian.
func NewAugmentedLagrangian(options ...ALOption) (*AugmentedLagrangian, error) {
	config := &alConfig{
		feasibilityTol:   defaultFeasibilityTol,
		maxOuter:         defaultMaxOuter,
		innerEvaluations: defaultInnerEvaluations,
		logger:           defaultLogger(),
	}
	config.apply(options)
	if err := config.validate(); err != nil {
		return nil, err
	}
	return &AugmentedLagrangian{
		feasibilityTol:   config.feasibilityTol,
		maxOuter:         config.maxOuter,
		innerEvaluations: config.innerEvaluations,
		logger:           config.logger,
	}, nil
}

// scaling maps normalized coordinates z onto the original space.
type scaling struct {
	offset []float64
	width  []float64
}

func newScaling(vars []Var) scaling {
	s := scaling{offset: make([]float64, len(vars)), width: make([]float64, len(vars))}
	for i, v := range vars {
		lo, hi := v.Lower, v.Upper
		switch {
		case math.IsInf(lo, 0) || math.IsInf(hi, 0):
			s.offset[i], s.width[i] = 0, 1
		case hi > lo:
			s.offset[i], s.width[i] = lo, hi-lo
		default:
			s.offset[i], s.width[i] = lo, 1
		}
	}
	return s
}

func (s scaling) toX(z, x []float64) {
	for i := range z {
		x[i] = s.offset[i] + z[i]*s.width[i]
	}
}

func (s scaling) toZ(x []float64) []float64 {
	z := make([]float64, len(x))
	for i := range x {
		z[i] = (x[i] - s.offset[i]) / s.width[i]
	}
	return z
}

func finite(v float64) float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return unusable
	}
	return v
}

// Solve implements Solver.
func (s *AugmentedLagrangian) Solve(ctx context.Context, p *Problem, opts Options) (*Solution, error) {
	if err := p.Validate(); err != nil {
		return nil, err
	}
	start := time.Now()
	deadline := time.Time{}
	if opts.TimeLimit > 0 {
		deadline = start.Add(opts.TimeLimit)
	}

	x := p.InitialPoint()
	if len(x) == 0 {
		return s.finish(p, x, Optimal, "no free variables"), nil
	}

	sc := newScaling(p.Vars)
	z := sc.toZ(x)
	lambda := make([]float64, len(p.Equalities))
	nu := make([]float64, len(p.Inequalities))
	mu := defaultPenalty
	fscale := math.Max(1, math.Abs(finite(p.Objective(x))))
	objTol := opts.OptimalityGap
	if objTol <= 0 {
		objTol = 1e-9
	}

	trial := make([]float64, len(x))
	lagrangian := func(zz []float64) float64 {
		var boundPenalty float64
		sc.toX(zz, trial)
		for i, v := range p.Vars {
			d := math.Max(v.Lower-trial[i], trial[i]-v.Upper) / sc.width[i]
			if d > 0 {
				boundPenalty += d * d
			}
		}
		p.Project(trial)
		val := finite(p.Objective(trial)) / fscale
		for i, c := range p.Equalities {
			h := finite(c.Func(trial))
			val += lambda[i]*h + 0.5*mu*h*h
		}
		for j, c := range p.Inequalities {
			g := finite(c.Func(trial))
			t := math.Max(0, nu[j]+mu*g)
			val += (t*t - nu[j]*nu[j]) / (2 * mu)
		}
		return val + mu*boundPenalty
	}

	prevViolation := math.Inf(1)
	prevObjective := math.Inf(1)
	prevX := make([]float64, len(x))
	copy(prevX, x)
	termination := IterationLimit
	for k := 0; k < s.maxOuter; k++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		settings := &optimize.Settings{
			FuncEvaluations: s.innerEvaluations,
			Converger: &optimize.FunctionConverge{
				Absolute:   1e-14,
				Relative:   1e-14,
				Iterations: 100,
			},
		}
		if !deadline.IsZero() {
			remaining := time.Until(deadline)
			if remaining <= 0 {
				termination = TimeLimit
				break
			}
			settings.Runtime = remaining
		}
		res, err := optimize.Minimize(optimize.Problem{Func: lagrangian}, z, settings, &optimize.NelderMead{SimplexSize: 0.05})
		if res == nil {
			return s.finish(p, x, Error, errors.Wrap(err, "inner solve").Error()), nil
		}
		copy(z, res.X)
		sc.toX(z, x)
		p.Project(x)

		violation := p.Violation(x)
		objective := p.Objective(x)
		s.logger.WithFields(logrus.Fields{
			"problem":   p.Name,
			"iteration": k,
			"objective": objective,
			"violation": violation,
			"penalty":   mu,
			"status":    res.Status.String(),
		}).Debug("augmented lagrangian iteration")

		if violation <= s.feasibilityTol {
			if math.Abs(objective-prevObjective) <= objTol*(1+math.Abs(objective)) || floats.Distance(x, prevX, math.Inf(1)) < 1e-12 {
				termination = Optimal
				break
			}
		}
		copy(prevX, x)
		if res.Status == optimize.RuntimeLimit {
			termination = TimeLimit
			break
		}

		for i, c := range p.Equalities {
			lambda[i] += mu * c.Func(x)
		}
		for j, c := range p.Inequalities {
			nu[j] = math.Max(0, nu[j]+mu*c.Func(x))
		}
		if violation > 0.25*prevViolation && mu < maxPenalty {
			mu *= 10
		}
		prevViolation = math.Min(prevViolation, violation)
		prevObjective = objective
	}

	if termination == IterationLimit {
		// Out of multiplier updates: a feasible iterate is accepted, an
		// infeasible one is reported as such.
		termination = Infeasible
		if p.Violation(x) <= s.feasibilityTol {
			termination = Optimal
		}
	}
	return s.finish(p, x, termination, ""), nil
}

func (s *AugmentedLagrangian) finish(p *Problem, x []float64, t Termination, msg string) *Solution {
	out := make([]float64, len(x))
	copy(out, x)
	violation := p.Violation(out)
	if t == Optimal && violation > s.feasibilityTol {
		t = Infeasible
	}
	return &Solution{
		Termination:  t,
		X:            out,
		Objective:    p.Objective(out),
		MaxViolation: violation,
		Message:      msg,
	}
}
