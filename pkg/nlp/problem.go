package nlp

import (
	"fmt"
	"math"
	"strings"

	"github.com/pkg/errors"
)

// VarID identifies a continuous variable across model rebuilds. Family is
// the name of the indexed variable (for example "Q") and Index is the
// canonical comma-joined index tuple ("" for scalar variables).
type VarID struct {
	Family string
	Index  string
}

// ID returns the VarID of family at the given index tuple.
func ID(family string, index ...interface{}) VarID {
	if len(index) == 0 {
		return VarID{Family: family}
	}
	s := make([]string, len(index))
	for i, v := range index {
		s[i] = fmt.Sprint(v)
	}
	return VarID{Family: family, Index: strings.Join(s, ",")}
}

func (id VarID) String() string {
	if id.Index == "" {
		return id.Family
	}
	return fmt.Sprintf("%s[%s]", id.Family, id.Index)
}

// Var is a decision variable of a Problem.
type Var struct {
	ID    VarID
	Lower float64
	Upper float64
	Init  float64
}

// Func evaluates a scalar function at a point of a Problem's decision space.
type Func func(x []float64) float64

// Constraint is a named scalar function. Equalities require Func(x) == 0
// and inequalities require Func(x) <= 0.
type Constraint struct {
	Name string
	Func Func
}

// Problem is a continuous optimization problem handed to a Solver.
type Problem struct {
	Name         string
	Vars         []Var
	Objective    Func
	Equalities   []Constraint
	Inequalities []Constraint

	// Report expands a decision vector into the value of every model
	// variable, including the ones derived from the decision variables.
	// When nil, the Snapshot only holds the decision variables.
	Report func(x []float64) Snapshot
}

// Validate returns an error if the receiver cannot be handed to a Solver.
func (p *Problem) Validate() error {
	if p == nil {
		return errors.New("nil problem")
	}
	if p.Objective == nil {
		return errors.Errorf("problem %q has no objective", p.Name)
	}
	seen := make(map[VarID]struct{}, len(p.Vars))
	for _, v := range p.Vars {
		if _, ok := seen[v.ID]; ok {
			return errors.Errorf("problem %q declares variable %s twice", p.Name, v.ID)
		}
		seen[v.ID] = struct{}{}
		if math.IsNaN(v.Lower) || math.IsNaN(v.Upper) || v.Lower > v.Upper {
			return errors.Errorf("problem %q: variable %s has invalid bounds [%g, %g]", p.Name, v.ID, v.Lower, v.Upper)
		}
	}
	for _, c := range append(append([]Constraint{}, p.Equalities...), p.Inequalities...) {
		if c.Func == nil {
			return errors.Errorf("problem %q: constraint %q has no function", p.Name, c.Name)
		}
	}
	return nil
}

// Index returns the position of the variable identified by id.
func (p *Problem) Index(id VarID) (int, bool) {
	for i, v := range p.Vars {
		if v.ID == id {
			return i, true
		}
	}
	return 0, false
}

// Seed overwrites the initial value of every decision variable that has
// a value in warm and returns how many were seeded.
func (p *Problem) Seed(warm Snapshot) int {
	var n int
	for i := range p.Vars {
		if v, ok := warm[p.Vars[i].ID]; ok {
			p.Vars[i].Init = v
			n++
		}
	}
	return n
}

// InitialPoint returns the initial values of the decision variables,
// projected onto their bounds.
func (p *Problem) InitialPoint() []float64 {
	x := make([]float64, len(p.Vars))
	for i, v := range p.Vars {
		x[i] = clamp(v.Init, v.Lower, v.Upper)
	}
	return x
}

// Project clamps x onto the variable bounds in place.
func (p *Problem) Project(x []float64) {
	for i, v := range p.Vars {
		x[i] = clamp(x[i], v.Lower, v.Upper)
	}
}

// Violation returns the largest constraint or bound violation at x.
func (p *Problem) Violation(x []float64) float64 {
	var worst float64
	for i, v := range p.Vars {
		worst = math.Max(worst, math.Max(v.Lower-x[i], x[i]-v.Upper))
	}
	for _, c := range p.Equalities {
		h := c.Func(x)
		if math.IsNaN(h) {
			return math.Inf(1)
		}
		worst = math.Max(worst, math.Abs(h))
	}
	for _, c := range p.Inequalities {
		g := c.Func(x)
		if math.IsNaN(g) {
			return math.Inf(1)
		}
		worst = math.Max(worst, g)
	}
	return worst
}

// Snapshot returns the full variable state at x.
func (p *Problem) Snapshot(x []float64) Snapshot {
	if p.Report != nil {
		return p.Report(x)
	}
	s := make(Snapshot, len(p.Vars))
	for i, v := range p.Vars {
		s[v.ID] = x[i]
	}
	return s
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
