package dsda

import (
	"context"
	"fmt"

	"github.com/sirupsen/logrus"
)

// initialize returns the first incumbent: the seed when it is allowed and
// its subproblem solves, otherwise the first point of the box, in
// lexicographic order, that is logically feasible and solves.
func (d *Driver) initialize(ctx context.Context) (incumbent, error) {
	seed := d.seed
	if seed == nil {
		if s, ok := d.ss.(Seeder); ok {
			seed = s.DefaultSeed()
		}
	}

	attempts := 0
	if seed != nil {
		if err := d.rm.Check(seed); err != nil {
			return incumbent{}, newInvalidConfigError(fmt.Sprintf("seed %s: %v", seed, err))
		}
		log := d.logger.WithField("seed", seed.String())
		if name, ok := d.admissible(seed); !ok {
			log.WithField("filter", name).Warn("seed rejected, searching for a feasible start")
		} else {
			out, err := d.eval.Evaluate(ctx, seed, nil)
			if err != nil {
				return incumbent{}, err
			}
			attempts++
			if out.OK() {
				return incumbent{point: seed, objective: out.Objective, warm: out.WarmStart}, nil
			}
			log.WithField("status", out.Status).Warn("seed subproblem failed, searching for a feasible start")
		}
	}

	var found *incumbent
	err := d.box(func(p Point) (bool, error) {
		if err := ctx.Err(); err != nil {
			return false, err
		}
		if seed != nil && p.Equal(seed) {
			return true, nil
		}
		if _, ok := d.admissible(p); !ok {
			return true, nil
		}
		if attempts >= d.maxInitAttempts {
			return false, nil
		}
		out, err := d.eval.Evaluate(ctx, p, nil)
		if err != nil {
			return false, err
		}
		attempts++
		if !out.OK() {
			return true, nil
		}
		found = &incumbent{point: p, objective: out.Objective, warm: out.WarmStart}
		return false, nil
	})
	if err != nil {
		return incumbent{}, err
	}
	if found == nil {
		d.logger.WithFields(logrus.Fields{"model": d.ss.Name(), "attempts": attempts}).Warn("initialization failed")
		return incumbent{}, ErrNoFeasibleStart
	}
	return *found, nil
}

// admissible checks p against the model logic and every configured filter
// without recording rejections. It returns the name of the rejecting
// filter.
func (d *Driver) admissible(p Point) (string, bool) {
	if !d.logic.Allow(p) {
		return d.logic.Name(), false
	}
	for _, f := range d.filters {
		if !f.Allow(p) {
			return f.Name(), false
		}
	}
	return "", true
}

// box visits every point between the reformulation bounds in
// lexicographic order until visit returns false or an error.
func (d *Driver) box(visit func(p Point) (bool, error)) error {
	lower, upper := d.bounds.Lower, d.bounds.Upper
	n := len(lower)
	if n == 0 {
		return nil
	}
	cur := make(Point, n)
	copy(cur, lower)
	for {
		p := make(Point, n)
		copy(p, cur)
		more, err := visit(p)
		if err != nil || !more {
			return err
		}
		i := n - 1
		for ; i >= 0; i-- {
			if cur[i] < upper[i] {
				cur[i]++
				break
			}
			cur[i] = lower[i]
		}
		if i < 0 {
			return nil
		}
	}
}
