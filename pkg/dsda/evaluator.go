package dsda

import (
	"context"
	"sync"
	"sync/atomic"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"

	"github.com/processdesign/dsda/pkg/nlp"
	"github.com/processdesign/dsda/pkg/reformulation"
	"github.com/processdesign/dsda/pkg/subproblem"
)

// Evaluator solves the subproblem of a point on a fresh model instance.
// It is safe for concurrent use.
type Evaluator struct {
	ss      Superstructure
	rm      *reformulation.Map
	adapter *subproblem.Adapter
	logger  logrus.FieldLogger

	traceMu sync.Mutex
	tracer  Tracer

	memoMu sync.Mutex
	memo   map[string]subproblem.Outcome

	solves int64
}

func newEvaluator(ss Superstructure, rm *reformulation.Map, adapter *subproblem.Adapter, tracer Tracer, logger logrus.FieldLogger, memo bool) *Evaluator {
	e := &Evaluator{ss: ss, rm: rm, adapter: adapter, tracer: tracer, logger: logger}
	if memo {
		e.memo = make(map[string]subproblem.Outcome)
	}
	return e
}

func (e *Evaluator) trace(ev Event) {
	e.traceMu.Lock()
	defer e.traceMu.Unlock()
	e.tracer.Trace(ev)
}

// Solves returns how many subproblems were actually solved.
func (e *Evaluator) Solves() int {
	return int(atomic.LoadInt64(&e.solves))
}

// Evaluate fixes a fresh model at p and solves it from warm. Points
// outside the reformulation bounds are refused with an error; failures of
// fixing or solving are reported in the outcome.
func (e *Evaluator) Evaluate(ctx context.Context, p Point, warm nlp.Snapshot) (subproblem.Outcome, error) {
	if err := e.rm.Check(p); err != nil {
		return subproblem.Outcome{}, err
	}
	if e.memo != nil {
		e.memoMu.Lock()
		out, ok := e.memo[p.Key()]
		e.memoMu.Unlock()
		if ok {
			return out, nil
		}
	}

	out, err := e.evaluate(ctx, p, warm)
	if err != nil {
		return out, err
	}
	atomic.AddInt64(&e.solves, 1)
	e.trace(Event{Kind: EventEvaluated, Point: p, Outcome: &out})
	if e.memo != nil {
		e.memoMu.Lock()
		e.memo[p.Key()] = out
		e.memoMu.Unlock()
	}
	return out, nil
}

func (e *Evaluator) evaluate(ctx context.Context, p Point, warm nlp.Snapshot) (subproblem.Outcome, error) {
	log := e.logger.WithField("point", p.String())
	m, err := e.ss.Build()
	if err != nil {
		return subproblem.Outcome{}, errors.Wrapf(err, "building %s", e.ss.Name())
	}
	bound, err := e.rm.Bind(m)
	if err != nil {
		return subproblem.Outcome{}, err
	}
	report, err := reformulation.Apply(m, p, bound, m.Dependents())
	if err != nil {
		log.WithError(err).Debug("fixing failed")
		return subproblem.Outcome{Status: subproblem.StatusError, Termination: nlp.Error, Message: err.Error()}, nil
	}
	for _, v := range report.Violations {
		log.WithField("constraint", v.Constraint).Debug("trivially violated constraint deactivated")
	}
	e.trace(Event{Kind: EventFixed, Point: p, Report: report})

	out, err := e.adapter.Solve(ctx, m, warm)
	if err != nil {
		return out, err
	}
	log.WithFields(logrus.Fields{
		"status":    out.Status,
		"objective": out.Objective,
	}).Debug("point evaluated")
	return out, nil
}
