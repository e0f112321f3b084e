// Package dsda implements the discrete steepest descent search over the
// external variables of a disjunctive superstructure.
package dsda

import (
	"context"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	"github.com/processdesign/dsda/pkg/metrics"
	"github.com/processdesign/dsda/pkg/nlp"
	"github.com/processdesign/dsda/pkg/reformulation"
	"github.com/processdesign/dsda/pkg/subproblem"
)

// Driver runs the search: it starts from a feasible point, evaluates the
// filtered neighbors of the incumbent, moves to the best one improving the
// incumbent by more than the tolerance and keeps stepping in that
// direction while it improves, until no neighbor improves.
type Driver struct {
	ss     Superstructure
	solver nlp.Solver

	neighborhood    Neighborhood
	filterFactories []FilterFactory
	tolerance       float64
	parallelism     int
	solverOptions   nlp.Options
	seed            Point
	maxInitAttempts int
	maxIterations   int
	memo            bool
	logger          logrus.FieldLogger
	tracer          Tracer

	rm      *reformulation.Map
	bounds  BoundsFilter
	filters []NeighborFilter
	logic   *LogicFilter
	eval    *Evaluator
}

// NewDriver scans ss for external variables and prepares the search.
func NewDriver(ss Superstructure, solver nlp.Solver, options ...Option) (*Driver, error) {
	d := &Driver{
		ss:              ss,
		solver:          solver,
		tolerance:       DefaultTolerance,
		parallelism:     1,
		solverOptions:   nlp.Options{TimeLimit: DefaultTimeLimit},
		maxInitAttempts: DefaultMaxInitAttempts,
	}
	for _, option := range append(options, defaults...) {
		if err := option(d); err != nil {
			return nil, err
		}
	}
	if err := d.validate(); err != nil {
		return nil, err
	}

	probe, err := ss.Build()
	if err != nil {
		return nil, errors.Wrapf(err, "building %s", ss.Name())
	}
	if err := probe.Err(); err != nil {
		return nil, err
	}
	d.rm, err = reformulation.Scan(probe, probe.References(), reformulation.WithLogger(d.logger))
	if err != nil {
		return nil, errors.Wrapf(err, "reformulating %s", ss.Name())
	}
	d.bounds = BoundsFilter{Lower: d.rm.LowerBounds(), Upper: d.rm.UpperBounds()}

	d.logic, err = NewLogicFilter(ss, d.rm)
	if err != nil {
		return nil, err
	}
	d.filters = []NeighborFilter{d.bounds}
	for _, factory := range d.filterFactories {
		f, err := factory(ss, d.rm)
		if err != nil {
			return nil, err
		}
		d.filters = append(d.filters, f)
	}

	adapter, err := subproblem.NewAdapter(solver,
		subproblem.WithSolverOptions(d.solverOptions),
		subproblem.WithLogger(d.logger),
	)
	if err != nil {
		return nil, err
	}
	d.eval = newEvaluator(ss, d.rm, adapter, d.tracer, d.logger.WithField("model", ss.Name()), d.memo)
	return d, nil
}

// Reformulation returns the reformulation map of the superstructure.
func (d *Driver) Reformulation() *reformulation.Map {
	return d.rm
}

// allowed applies every filter in order and reports the first rejection.
func (d *Driver) allowed(p Point, phase Phase) bool {
	for _, f := range d.filters {
		if !f.Allow(p) {
			metrics.EmitNeighborFiltered(f.Name())
			d.tracer.Trace(Event{Kind: EventFiltered, Phase: phase, Point: p, Filter: f.Name()})
			return false
		}
	}
	return true
}

type candidate struct {
	dir     Direction
	point   Point
	outcome subproblem.Outcome
}

// Candidates returns the neighbors of p that pass every filter, in
// direction id order.
func (d *Driver) Candidates(p Point) []Direction {
	var out []Direction
	for _, c := range d.candidates(p) {
		out = append(out, c.dir)
	}
	return out
}

func (d *Driver) candidates(p Point) []candidate {
	var out []candidate
	for _, dir := range d.neighborhood.Directions(len(p)) {
		q := p.Add(dir.Delta)
		if !d.allowed(q, PhaseExplore) {
			continue
		}
		out = append(out, candidate{dir: dir, point: q})
	}
	return out
}

type incumbent struct {
	point     Point
	objective float64
	warm      nlp.Snapshot
}

// Run executes the search.
func (d *Driver) Run(ctx context.Context) (*Result, error) {
	inc, err := d.initialize(ctx)
	if err != nil {
		return nil, err
	}
	res := &Result{}
	d.accept(res, inc, 0, PhaseInit)

	for {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if d.maxIterations > 0 && res.Iterations >= d.maxIterations {
			res.Stopped = true
			d.logger.WithField("iterations", res.Iterations).Info("iteration limit reached")
			break
		}
		res.Iterations++

		winner, err := d.explore(ctx, inc)
		if err != nil {
			return nil, err
		}
		if winner == nil {
			break
		}
		inc = incumbent{point: winner.point, objective: winner.outcome.Objective, warm: winner.outcome.WarmStart}
		d.accept(res, inc, winner.dir.ID, PhaseExplore)

		inc, err = d.lineSearch(ctx, res, inc, winner.dir)
		if err != nil {
			return nil, err
		}
	}

	res.Best = inc.point
	res.Objective = inc.objective
	res.WarmStart = inc.warm
	res.Evaluations = d.eval.Solves()
	d.tracer.Trace(Event{Kind: EventDone, Phase: PhaseDone, Point: inc.point, Objective: inc.objective})
	d.logger.WithFields(logrus.Fields{
		"model":     d.ss.Name(),
		"point":     inc.point.String(),
		"objective": inc.objective,
		"iteration": res.Iterations,
	}).Info("search finished")
	return res, nil
}

func (d *Driver) accept(res *Result, inc incumbent, dir int, phase Phase) {
	res.Route = append(res.Route, Step{Point: inc.point, Objective: inc.objective, Direction: dir, Phase: phase})
	metrics.EmitMove(string(phase))
	metrics.SetIncumbentObjective(inc.objective)
	d.tracer.Trace(Event{Kind: EventMove, Phase: phase, Point: inc.point, Direction: dir, Objective: inc.objective})
	d.logger.WithFields(logrus.Fields{
		"model":     d.ss.Name(),
		"phase":     phase,
		"point":     inc.point.String(),
		"direction": dir,
		"objective": inc.objective,
	}).Info("incumbent updated")
}

// explore evaluates every filtered neighbor of inc from inc's warm start
// and returns the best one improving on inc by more than the tolerance,
// ties going to the lowest direction id, or nil.
func (d *Driver) explore(ctx context.Context, inc incumbent) (*candidate, error) {
	cands := d.candidates(inc.point)
	if err := d.evaluateAll(ctx, cands, inc.warm); err != nil {
		return nil, err
	}

	best := inc.objective
	var winner *candidate
	for i := range cands {
		out := cands[i].outcome
		if out.OK() && out.Objective+d.tolerance < best {
			best = out.Objective
			winner = &cands[i]
		}
	}
	return winner, nil
}

func (d *Driver) evaluateAll(ctx context.Context, cands []candidate, warm nlp.Snapshot) error {
	if d.parallelism == 1 || len(cands) < 2 {
		for i := range cands {
			if err := ctx.Err(); err != nil {
				return err
			}
			out, err := d.eval.Evaluate(ctx, cands[i].point, warm)
			if err != nil {
				return err
			}
			cands[i].outcome = out
		}
		return nil
	}

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(d.parallelism)
	for i := range cands {
		i := i
		g.Go(func() error {
			out, err := d.eval.Evaluate(ctx, cands[i].point, warm)
			if err != nil {
				return err
			}
			cands[i].outcome = out
			return nil
		})
	}
	return g.Wait()
}

// lineSearch repeats dir from inc for as long as each step stays inside
// the bounds and improves the incumbent by more than the tolerance. The
// optional filters only shape the explore neighborhood.
func (d *Driver) lineSearch(ctx context.Context, res *Result, inc incumbent, dir Direction) (incumbent, error) {
	for {
		if err := ctx.Err(); err != nil {
			return inc, err
		}
		q := inc.point.Add(dir.Delta)
		if !d.bounds.Allow(q) {
			metrics.EmitNeighborFiltered(d.bounds.Name())
			d.tracer.Trace(Event{Kind: EventFiltered, Phase: PhaseLineSearch, Point: q, Filter: d.bounds.Name()})
			return inc, nil
		}
		out, err := d.eval.Evaluate(ctx, q, inc.warm)
		if err != nil {
			return inc, err
		}
		if !out.OK() || out.Objective+d.tolerance >= inc.objective {
			return inc, nil
		}
		inc = incumbent{point: q, objective: out.Objective, warm: out.WarmStart}
		d.accept(res, inc, dir.ID, PhaseLineSearch)
	}
}
