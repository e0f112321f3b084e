package subproblem

import (
	"context"
	"time"

	"github.com/processdesign/dsda/pkg/nlp"
)

// InstrumentedSolver reports the duration of every solve of the wrapped
// solver to a success or a failure emitter. A solve succeeds when it
// terminates optimally.
type InstrumentedSolver struct {
	solver                nlp.Solver
	successMetricsEmitter func(time.Duration)
	failureMetricsEmitter func(time.Duration)
}

var _ nlp.Solver = &InstrumentedSolver{}

func NewInstrumentedSolver(solver nlp.Solver, successMetricsEmitter, failureMetricsEmitter func(time.Duration)) *InstrumentedSolver {
	return &InstrumentedSolver{
		solver:                solver,
		successMetricsEmitter: successMetricsEmitter,
		failureMetricsEmitter: failureMetricsEmitter,
	}
}

func (is *InstrumentedSolver) Solve(ctx context.Context, p *nlp.Problem, opts nlp.Options) (*nlp.Solution, error) {
	start := time.Now()
	sol, err := is.solver.Solve(ctx, p, opts)
	if err != nil || sol == nil || sol.Termination != nlp.Optimal {
		is.failureMetricsEmitter(time.Since(start))
	} else {
		is.successMetricsEmitter(time.Since(start))
	}
	return sol, err
}
