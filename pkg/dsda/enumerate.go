package dsda

import (
	"context"

	"github.com/processdesign/dsda/pkg/nlp"
)

// Enumerate solves the subproblem of every point of the box that passes
// the model logic and the configured filters, in lexicographic order.
// Points are solved from their own initial values.
func (d *Driver) Enumerate(ctx context.Context) ([]Evaluation, error) {
	var evals []Evaluation
	err := d.box(func(p Point) (bool, error) {
		if err := ctx.Err(); err != nil {
			return false, err
		}
		if _, ok := d.admissible(p); !ok {
			return true, nil
		}
		out, err := d.eval.Evaluate(ctx, p, nil)
		if err != nil {
			return false, err
		}
		evals = append(evals, Evaluation{Point: p, Outcome: out})
		return true, nil
	})
	if err != nil {
		return nil, err
	}
	return evals, nil
}

// Enumerate builds a driver for ss and enumerates its box.
func Enumerate(ctx context.Context, ss Superstructure, solver nlp.Solver, options ...Option) ([]Evaluation, error) {
	d, err := NewDriver(ss, solver, options...)
	if err != nil {
		return nil, err
	}
	return d.Enumerate(ctx)
}
