package reformulation

import (
	"fmt"
	"io"
	"strings"

	"github.com/pkg/errors"

	"github.com/processdesign/dsda/pkg/gdp"
)

// Assignment is the value a Boolean was fixed to.
type Assignment struct {
	Name  string
	Value bool
}

// Report records what Apply fixed.
type Report struct {
	Vector      []int
	Independent []Assignment
	Dependent   []Assignment
	Violations  []gdp.TrivialViolation
}

// WriteTo prints the fixed assignment.
func (r *Report) WriteTo(w io.Writer) (int64, error) {
	var b strings.Builder
	fmt.Fprintf(&b, "Fixed variables at x=%v\n", r.Vector)
	b.WriteString(" Independent Boolean variables\n")
	for _, a := range r.Independent {
		fmt.Fprintf(&b, "  %s=%t\n", a.Name, a.Value)
	}
	b.WriteString(" Dependent Boolean variables and disjunctions\n")
	for _, a := range r.Dependent {
		fmt.Fprintf(&b, "  %s=%t\n", a.Name, a.Value)
	}
	for _, v := range r.Violations {
		fmt.Fprintf(&b, " Trivially violated %s\n", v.Expr)
	}
	n, err := io.WriteString(w, b.String())
	return int64(n), err
}

// Apply fixes the discrete decisions of m from the external vector x.
// In order, it fixes the Boolean selected by each position of x, fixes
// the remaining Booleans of every entry false, fixes every dependent not
// already fixed through an entry from its expression, resolves the disjunctions and deactivates the
// constraints left without free variables. Trivially infeasible
// constraints are reported, not returned as errors: the continuous solve
// decides feasibility. rm must be bound to m.
func Apply(m *gdp.Model, x []int, rm *Map, aux []gdp.Dependent) (*Report, error) {
	if err := rm.Check(x); err != nil {
		return nil, err
	}
	for _, e := range rm.entries {
		for _, v := range e.Booleans {
			if f, ok := m.BooleanFamily(v.Family().Name); !ok || f != v.Family() {
				return nil, errors.Errorf("reformulation map is not bound to model %q", m.Name)
			}
		}
	}

	report := &Report{Vector: append([]int(nil), x...)}

	covered := make(map[*gdp.BooleanVar]bool)
	p := 0
	for _, e := range rm.entries {
		for j := 0; j < e.ExactlyCount; j++ {
			e.Booleans[x[p]-1].Fix(true)
			p++
		}
	}
	for _, e := range rm.entries {
		for _, v := range e.Booleans {
			if !v.IsFixed() {
				v.Fix(false)
			}
			covered[v] = true
			report.Independent = append(report.Independent, Assignment{Name: v.Name(), Value: v.Value()})
		}
	}
	for _, d := range aux {
		if covered[d.Var] {
			continue
		}
		value, err := d.Expr.Eval()
		if err != nil {
			return nil, errors.Wrapf(err, "evaluating dependent %s", d.Var.Name())
		}
		d.Var.Fix(value)
		report.Dependent = append(report.Dependent, Assignment{Name: d.Var.Name(), Value: value})
	}
	if err := gdp.FixDisjuncts(m); err != nil {
		return nil, errors.Wrapf(err, "fixing disjuncts at %v", x)
	}
	violations, err := gdp.DeactivateTrivial(m, true)
	if err != nil {
		return nil, err
	}
	report.Violations = violations
	if free := m.FreeBooleans(); len(free) > 0 {
		return nil, errors.Errorf("model %q: %s is still free after fixing", m.Name, free[0].Name())
	}
	return report, nil
}
