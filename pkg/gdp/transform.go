package gdp

import (
	"math"

	"github.com/pkg/errors"
)

// FixDisjuncts resolves every active disjunction from its indicator
// values. An unfixed indicator is inferred when the others already decide
// it. The selected disjunct stays active, the others and the disjunction
// itself are deactivated.
func FixDisjuncts(m *Model) error {
	for _, dn := range m.disjunctions {
		if !dn.Active() {
			continue
		}
		var selected []*Disjunct
		var unfixed []*Disjunct
		for _, d := range dn.Disjuncts {
			switch {
			case !d.Indicator.IsFixed():
				unfixed = append(unfixed, d)
			case d.Indicator.Value():
				selected = append(selected, d)
			}
		}
		switch {
		case len(selected) > 1:
			return errors.Errorf("disjunction %q: more than one disjunct selected", dn.Name)
		case len(selected) == 1:
			for _, d := range unfixed {
				d.Indicator.Fix(false)
			}
		case len(unfixed) == 1:
			unfixed[0].Indicator.Fix(true)
			selected = unfixed
		case len(unfixed) == 0:
			return errors.Errorf("disjunction %q: every disjunct is deselected", dn.Name)
		default:
			return errors.Errorf("disjunction %q: %d disjuncts are undecided", dn.Name, len(unfixed))
		}
		for _, d := range dn.Disjuncts {
			if d != selected[0] {
				d.Deactivate()
			}
		}
		dn.Deactivate()
	}
	return nil
}

// TrivialViolation names a constraint found violated once all of its
// variables were fixed.
type TrivialViolation struct {
	Constraint string
	Expr       string
}

// DeactivateTrivial deactivates every active logical and linear constraint
// whose variables are all fixed. Violated ones are returned; unless
// ignoreInfeasible is set they also produce an error.
func DeactivateTrivial(m *Model, ignoreInfeasible bool) ([]TrivialViolation, error) {
	var violations []TrivialViolation
	for _, c := range m.logical {
		if !c.Active() || !allFixed(Atoms(c.Expr)) {
			continue
		}
		ok, err := c.Expr.Eval()
		if err != nil {
			return violations, errors.Wrapf(err, "evaluating %s", c.Name)
		}
		if !ok {
			violations = append(violations, TrivialViolation{Constraint: c.Name, Expr: c.Expr.String()})
		}
		c.Deactivate()
	}
	for _, c := range m.linear {
		if !c.Active() || !allFixed(c.Vars()) {
			continue
		}
		body, err := c.Body()
		if err != nil {
			return violations, errors.Wrapf(err, "evaluating %s", c.Name)
		}
		if !c.Satisfied(body) {
			violations = append(violations, TrivialViolation{Constraint: c.Name, Expr: c.String()})
		}
		c.Deactivate()
	}
	if len(violations) > 0 && !ignoreInfeasible {
		return violations, errors.Errorf("model %q: %d constraints are trivially infeasible, first %s", m.Name, len(violations), violations[0].Constraint)
	}
	return violations, nil
}

func allFixed(vs []*BooleanVar) bool {
	for _, v := range vs {
		if !v.IsFixed() {
			return false
		}
	}
	return true
}

// LogicalToLinear replaces every active cardinality constraint whose
// operands are variables or negated variables with the equivalent linear
// constraint over their 0/1 values. Other logical constraints are kept.
func LogicalToLinear(m *Model) error {
	for _, c := range m.logical {
		if !c.Active() {
			continue
		}
		card, ok := c.Expr.(*CardinalityExpr)
		if !ok {
			continue
		}
		terms, constant, ok := linearTerms(card.Operands)
		if !ok {
			continue
		}
		lower, upper := math.Inf(-1), math.Inf(1)
		n := float64(card.N)
		switch card.Kind {
		case Exactly:
			lower, upper = n, n
		case AtMost:
			upper = n
		case AtLeast:
			lower = n
		}
		name := c.Name + "_as_linear"
		m.AddLinearConstraint(name, lower, terms, constant, upper)
		if err := m.Err(); err != nil {
			return err
		}
		c.Deactivate()
	}
	return nil
}

func linearTerms(operands []Expr) ([]Term, float64, bool) {
	var terms []Term
	var constant float64
	for _, op := range operands {
		switch e := op.(type) {
		case *BooleanVar:
			terms = append(terms, Term{Coef: 1, Var: e})
		case *NotExpr:
			v, ok := e.Operand.(*BooleanVar)
			if !ok {
				return nil, 0, false
			}
			terms = append(terms, Term{Coef: -1, Var: v})
			constant++
		default:
			return nil, 0, false
		}
	}
	return terms, constant, true
}
