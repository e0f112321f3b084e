package sat

import (
	"fmt"
	"math"
	"strings"

	"github.com/go-air/gini/logic"
	"github.com/go-air/gini/z"
	"github.com/sirupsen/logrus"

	"github.com/processdesign/dsda/pkg/gdp"
)

const boundTol = 1e-9

type inconsistentLitMapping []error

func (inconsistentLitMapping) Error() string {
	return "internal encoding failure"
}

// litMapping translates between the Boolean variables and constraints of
// a model and the literals of the circuit encoding them.
type litMapping struct {
	c           *logic.C
	vars        []*gdp.BooleanVar
	lits        map[*gdp.BooleanVar]z.Lit
	byLit       map[z.Lit]*gdp.BooleanVar
	constraints map[z.Lit]AppliedConstraint
	inorder     []z.Lit
	errs        inconsistentLitMapping
}

func newLitMapping(m *gdp.Model, logger logrus.FieldLogger) (*litMapping, error) {
	booleans := m.Booleans()
	d := &litMapping{
		c:           logic.NewCCap(len(booleans)),
		vars:        booleans,
		lits:        make(map[*gdp.BooleanVar]z.Lit, len(booleans)),
		byLit:       make(map[z.Lit]*gdp.BooleanVar, len(booleans)),
		constraints: make(map[z.Lit]AppliedConstraint),
	}
	for _, v := range booleans {
		lit := d.c.Lit()
		d.lits[v] = lit
		d.byLit[lit] = v
	}

	for _, v := range booleans {
		if v.IsFixed() {
			d.add(d.litOfValue(v, v.Value()), AppliedConstraint{Name: v.Name(), Expr: fmt.Sprintf("fixed %t", v.Value())})
		}
	}
	for _, c := range m.LogicalConstraints() {
		if !c.Active() {
			continue
		}
		d.add(d.encode(c.Expr), AppliedConstraint{Name: c.Name, Expr: c.Expr.String()})
	}
	for _, dep := range m.Dependents() {
		e := gdp.Equivalent(dep.Var, dep.Expr)
		d.add(d.encode(e), AppliedConstraint{Name: "dependent " + dep.Var.Name(), Expr: e.String()})
	}
	for _, dn := range m.Disjunctions() {
		if !dn.Active() {
			continue
		}
		e := gdp.ExactlyN(1, gdp.Vars(dn.Indicators()...)...)
		d.add(d.encode(e), AppliedConstraint{Name: dn.Name, Expr: e.String()})
	}
	for _, c := range m.LinearConstraints() {
		if !c.Active() {
			continue
		}
		lit, ok := d.encodeLinear(c)
		if !ok {
			logger.WithField("constraint", c.Name).Debug("linear constraint has non-unit coefficients, not encoded")
			continue
		}
		d.add(lit, AppliedConstraint{Name: c.Name, Expr: c.String()})
	}

	if err := d.Error(); err != nil {
		return nil, err
	}
	return d, nil
}

func (d *litMapping) add(m z.Lit, a AppliedConstraint) {
	if m == z.LitNull {
		return
	}
	if _, ok := d.constraints[m]; ok {
		// Structurally identical constraints share a literal.
		return
	}
	d.constraints[m] = a
	d.inorder = append(d.inorder, m)
}

// LitOf returns the positive literal of v.
func (d *litMapping) LitOf(v *gdp.BooleanVar) z.Lit {
	m, ok := d.lits[v]
	if ok {
		return m
	}
	d.errs = append(d.errs, fmt.Errorf("variable %s does not belong to the encoded model", v.Name()))
	return z.LitNull
}

func (d *litMapping) litOfValue(v *gdp.BooleanVar, value bool) z.Lit {
	m := d.LitOf(v)
	if m == z.LitNull || value {
		return m
	}
	return m.Not()
}

func (d *litMapping) encode(e gdp.Expr) z.Lit {
	switch e := e.(type) {
	case *gdp.BooleanVar:
		return d.LitOf(e)
	case *gdp.NotExpr:
		return d.encode(e.Operand).Not()
	case *gdp.AndExpr:
		return d.c.Ands(d.encodeAll(e.Operands)...)
	case *gdp.OrExpr:
		return d.c.Ors(d.encodeAll(e.Operands)...)
	case *gdp.ImpliesExpr:
		return d.c.Implies(d.encode(e.If), d.encode(e.Then))
	case *gdp.EquivalentExpr:
		return d.c.Xor(d.encode(e.Left), d.encode(e.Right)).Not()
	case *gdp.CardinalityExpr:
		return d.cardinality(d.encodeAll(e.Operands), e.Kind, e.N, e.N)
	}
	d.errs = append(d.errs, fmt.Errorf("unsupported expression %s", e))
	return z.LitNull
}

func (d *litMapping) encodeAll(es []gdp.Expr) []z.Lit {
	ms := make([]z.Lit, len(es))
	for i, e := range es {
		ms[i] = d.encode(e)
	}
	return ms
}

// cardinality returns a literal that is true when the number of true
// literals in ms satisfies kind. For Exactly, lo and hi may differ to
// express a range.
func (d *litMapping) cardinality(ms []z.Lit, kind gdp.CardinalityKind, lo, hi int) z.Lit {
	cs := d.c.CardSort(ms)
	switch kind {
	case gdp.AtMost:
		return cs.Leq(hi)
	case gdp.AtLeast:
		return cs.Geq(lo)
	}
	return d.c.And(cs.Geq(lo), cs.Leq(hi))
}

// encodeLinear encodes constraints whose coefficients are all +1 or -1 as
// a bound on the number of true literals, with -x rewritten as ~x - 1.
func (d *litMapping) encodeLinear(c *gdp.LinearConstraint) (z.Lit, bool) {
	ms := make([]z.Lit, 0, len(c.Terms))
	offset := c.Constant
	for _, t := range c.Terms {
		switch t.Coef {
		case 1:
			ms = append(ms, d.LitOf(t.Var))
		case -1:
			ms = append(ms, d.LitOf(t.Var).Not())
			offset--
		default:
			return z.LitNull, false
		}
	}
	lo, hi := 0, len(ms)
	if !math.IsInf(c.Lower, -1) {
		lo = int(math.Ceil(c.Lower - offset - boundTol))
	}
	if !math.IsInf(c.Upper, 1) {
		hi = int(math.Floor(c.Upper - offset + boundTol))
	}
	return d.cardinality(ms, gdp.Exactly, lo, hi), true
}

// ConstraintLits returns the literals of every encoded constraint in
// declaration order.
func (d *litMapping) ConstraintLits() []z.Lit {
	return d.inorder
}

// Conflicts maps the assumptions reported by the solver to the
// constraints and variable values they stand for.
func (d *litMapping) Conflicts(whys []z.Lit) []AppliedConstraint {
	as := make([]AppliedConstraint, 0, len(whys))
	for _, why := range whys {
		if a, ok := d.constraints[why]; ok {
			as = append(as, a)
			continue
		}
		if v, ok := d.byLit[why]; ok {
			as = append(as, AppliedConstraint{Name: v.Name(), Expr: "assumed true"})
			continue
		}
		if v, ok := d.byLit[why.Not()]; ok {
			as = append(as, AppliedConstraint{Name: v.Name(), Expr: "assumed false"})
		}
	}
	return as
}

// Error returns a single error value that is an aggregation of all
// errors encountered during the mapping's lifetime, or nil.
func (d *litMapping) Error() error {
	if len(d.errs) == 0 {
		return nil
	}
	s := make([]string, len(d.errs))
	for i, err := range d.errs {
		s[i] = err.Error()
	}
	return fmt.Errorf("%d errors encountered: %s", len(s), strings.Join(s, ", "))
}
