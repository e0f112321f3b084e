package dsda

import (
	"github.com/pkg/errors"

	"github.com/processdesign/dsda/pkg/reformulation"
	"github.com/processdesign/dsda/pkg/sat"
)

// NeighborFilter rejects candidate points before they are evaluated.
type NeighborFilter interface {
	Name() string
	Allow(p Point) bool
}

// BoundsFilter rejects points outside the per-coordinate box. The driver
// always applies it first.
type BoundsFilter struct {
	Lower []int
	Upper []int
}

func (BoundsFilter) Name() string {
	return "bounds"
}

func (f BoundsFilter) Allow(p Point) bool {
	if len(p) != len(f.Lower) || len(p) != len(f.Upper) {
		return false
	}
	for i, v := range p {
		if v < f.Lower[i] || v > f.Upper[i] {
			return false
		}
	}
	return true
}

// AsymmetryFilter rejects points whose second coordinate exceeds the
// first. It encodes a routing rule of two-variable reactor
// superstructures, where the recycle cannot enter above the feed, and is
// not meaningful for other problems.
type AsymmetryFilter struct{}

func (AsymmetryFilter) Name() string {
	return "asymmetry"
}

func (AsymmetryFilter) Allow(p Point) bool {
	if len(p) < 2 {
		return true
	}
	return p[1]-p[0] <= 0
}

// LogicFilter rejects points whose implied Boolean assignment violates the
// logic of the model.
type LogicFilter struct {
	rm      *reformulation.Map
	checker *sat.Checker
}

// NewLogicFilter builds a LogicFilter over a fresh instance of ss. rm is
// re-bound onto that instance.
func NewLogicFilter(ss Superstructure, rm *reformulation.Map) (*LogicFilter, error) {
	m, err := ss.Build()
	if err != nil {
		return nil, errors.Wrapf(err, "building %s", ss.Name())
	}
	bound, err := rm.Bind(m)
	if err != nil {
		return nil, err
	}
	checker, err := sat.New(m)
	if err != nil {
		return nil, err
	}
	return &LogicFilter{rm: bound, checker: checker}, nil
}

func (LogicFilter) Name() string {
	return "logic"
}

func (f *LogicFilter) Allow(p Point) bool {
	assignment, err := f.rm.Assignment(p)
	if err != nil {
		return false
	}
	ok, err := f.checker.Feasible(assignment)
	return err == nil && ok
}

// Explain returns why p is rejected, or nil when it is allowed.
func (f *LogicFilter) Explain(p Point) error {
	assignment, err := f.rm.Assignment(p)
	if err != nil {
		return err
	}
	return f.checker.Explain(assignment)
}

// FilterFactory creates a filter once the reformulation of a
// superstructure is known.
type FilterFactory func(ss Superstructure, rm *reformulation.Map) (NeighborFilter, error)

var filterFactories = map[string]FilterFactory{
	"asymmetry": func(Superstructure, *reformulation.Map) (NeighborFilter, error) {
		return AsymmetryFilter{}, nil
	},
	"logic": func(ss Superstructure, rm *reformulation.Map) (NeighborFilter, error) {
		return NewLogicFilter(ss, rm)
	},
}

// FilterByName returns the factory of an optional built-in filter:
// "asymmetry" or "logic".
func FilterByName(name string) (FilterFactory, error) {
	f, ok := filterFactories[name]
	if !ok {
		return nil, errors.Errorf("unknown neighbor filter %q", name)
	}
	return f, nil
}

// Static wraps an already built filter.
func Static(f NeighborFilter) FilterFactory {
	return func(Superstructure, *reformulation.Map) (NeighborFilter, error) {
		return f, nil
	}
}
