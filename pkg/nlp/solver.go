//go:generate go run github.com/maxbrunsfeld/counterfeiter/v6 -o ../fakes/fake_solver.go . Solver
package nlp

import (
	"context"
	"time"
)

// Termination describes why a Solver stopped.
type Termination int

const (
	Optimal Termination = iota
	Infeasible
	IterationLimit
	TimeLimit
	Error
)

func (t Termination) String() string {
	switch t {
	case Optimal:
		return "optimal"
	case Infeasible:
		return "infeasible"
	case IterationLimit:
		return "iteration limit"
	case TimeLimit:
		return "time limit"
	default:
		return "error"
	}
}

// Options are the only knobs callers pass to a Solver.
type Options struct {
	TimeLimit     time.Duration
	OptimalityGap float64
}

// Solution is the raw answer of a Solver.
type Solution struct {
	Termination  Termination
	X            []float64
	Objective    float64
	MaxViolation float64
	Message      string
}

// Solver solves continuous problems. Implementations do not retry; a
// returned error means the problem could not be attempted at all.
type Solver interface {
	Solve(ctx context.Context, p *Problem, opts Options) (*Solution, error)
}

// SolverFunc adapts a function to the Solver interface.
type SolverFunc func(ctx context.Context, p *Problem, opts Options) (*Solution, error)

func (f SolverFunc) Solve(ctx context.Context, p *Problem, opts Options) (*Solution, error) {
	return f(ctx, p, opts)
}
