package gdp

import (
	"math"

	"github.com/pkg/errors"

	"github.com/processdesign/dsda/pkg/nlp"
)

// Relaxation builds the continuous problem of a model whose discrete
// decisions are fixed. Implementations read indicator values and disjunct
// activity from the model.
type Relaxation func(m *Model) (*nlp.Problem, error)

// Dependent declares a Boolean whose value follows from Expr once the
// independent decisions are fixed.
type Dependent struct {
	Var  *BooleanVar
	Expr Expr
}

// Reference declares the index set along which Family is reformulated
// into external integer variables.
type Reference struct {
	Family *BooleanFamily
	Set    *Set
}

// Model is a disjunctive model instance. Components keep declaration
// order. Declaration errors are accumulated and reported by Err so that
// builders can declare components without checking each call.
type Model struct {
	Name string

	families     []*BooleanFamily
	logical      []*LogicalConstraint
	linear       []*LinearConstraint
	disjuncts    []*Disjunct
	disjunctions []*Disjunction
	dependents   []Dependent
	references   []Reference
	relaxation   Relaxation

	names map[string]struct{}
	errs  []error
}

func NewModel(name string) *Model {
	return &Model{Name: name, names: make(map[string]struct{})}
}

func (m *Model) claim(kind, name string) bool {
	key := kind + "/" + name
	if _, ok := m.names[key]; ok {
		m.errs = append(m.errs, errors.Errorf("model %q: duplicate %s %q", m.Name, kind, name))
		return false
	}
	m.names[key] = struct{}{}
	return true
}

// Err returns the first declaration error, if any.
func (m *Model) Err() error {
	if len(m.errs) == 0 {
		return nil
	}
	return m.errs[0]
}

// AddBooleanFamily declares a family indexed by the cartesian product of
// sets.
func (m *Model) AddBooleanFamily(name string, sets ...*Set) *BooleanFamily {
	f := newBooleanFamily(name, sets...)
	if m.claim("boolean", name) {
		m.families = append(m.families, f)
	}
	return f
}

// BooleanFamily looks up a family by name.
func (m *Model) BooleanFamily(name string) (*BooleanFamily, bool) {
	for _, f := range m.families {
		if f.Name == name {
			return f, true
		}
	}
	return nil, false
}

func (m *Model) BooleanFamilies() []*BooleanFamily {
	return m.families
}

// Booleans returns every Boolean variable of the model.
func (m *Model) Booleans() []*BooleanVar {
	var out []*BooleanVar
	for _, f := range m.families {
		out = append(out, f.vars...)
	}
	return out
}

// FreeBooleans returns the Boolean variables that are not fixed.
func (m *Model) FreeBooleans() []*BooleanVar {
	var out []*BooleanVar
	for _, v := range m.Booleans() {
		if !v.IsFixed() {
			out = append(out, v)
		}
	}
	return out
}

func (m *Model) AddLogicalConstraint(name string, e Expr) *LogicalConstraint {
	c := &LogicalConstraint{Name: name, Expr: e}
	if e == nil {
		m.errs = append(m.errs, errors.Errorf("model %q: logical constraint %q has no expression", m.Name, name))
	}
	if m.claim("constraint", name) && e != nil {
		m.logical = append(m.logical, c)
	}
	return c
}

func (m *Model) LogicalConstraints() []*LogicalConstraint {
	return m.logical
}

// AddLinearConstraint declares lower <= constant + sum(terms) <= upper.
func (m *Model) AddLinearConstraint(name string, lower float64, terms []Term, constant, upper float64) *LinearConstraint {
	c := &LinearConstraint{Name: name, Terms: terms, Constant: constant, Lower: lower, Upper: upper}
	if math.IsNaN(lower) || math.IsNaN(upper) || lower > upper {
		m.errs = append(m.errs, errors.Errorf("model %q: linear constraint %q has invalid bounds", m.Name, name))
		return c
	}
	if m.claim("constraint", name) {
		m.linear = append(m.linear, c)
	}
	return c
}

func (m *Model) LinearConstraints() []*LinearConstraint {
	return m.linear
}

// AddDisjunct declares a disjunct. When indicator is nil a scalar Boolean
// named "<name>.indicator_var" is created for it.
func (m *Model) AddDisjunct(name string, indicator *BooleanVar) *Disjunct {
	if indicator == nil {
		indicator = m.AddBooleanFamily(name + ".indicator_var").Get()
	}
	d := &Disjunct{Name: name, Indicator: indicator}
	if m.claim("disjunct", name) {
		m.disjuncts = append(m.disjuncts, d)
	}
	return d
}

// Disjunct looks up a disjunct by name.
func (m *Model) Disjunct(name string) (*Disjunct, bool) {
	for _, d := range m.disjuncts {
		if d.Name == name {
			return d, true
		}
	}
	return nil, false
}

func (m *Model) Disjuncts() []*Disjunct {
	return m.disjuncts
}

func (m *Model) AddDisjunction(name string, disjuncts ...*Disjunct) *Disjunction {
	d := &Disjunction{Name: name, Disjuncts: disjuncts}
	if len(disjuncts) < 2 {
		m.errs = append(m.errs, errors.Errorf("model %q: disjunction %q needs at least two disjuncts", m.Name, name))
		return d
	}
	if m.claim("disjunction", name) {
		m.disjunctions = append(m.disjunctions, d)
	}
	return d
}

func (m *Model) Disjunctions() []*Disjunction {
	return m.disjunctions
}

// AddDependent declares v as determined by e.
func (m *Model) AddDependent(v *BooleanVar, e Expr) {
	if v == nil || e == nil {
		m.errs = append(m.errs, errors.Errorf("model %q: incomplete dependent declaration", m.Name))
		return
	}
	m.dependents = append(m.dependents, Dependent{Var: v, Expr: e})
}

func (m *Model) Dependents() []Dependent {
	return m.dependents
}

// AddReference declares set as the reformulated dimension of f.
func (m *Model) AddReference(f *BooleanFamily, set *Set) {
	if f == nil || set == nil {
		m.errs = append(m.errs, errors.Errorf("model %q: incomplete reference declaration", m.Name))
		return
	}
	m.references = append(m.references, Reference{Family: f, Set: set})
}

func (m *Model) References() []Reference {
	return m.references
}

func (m *Model) SetRelaxation(r Relaxation) {
	m.relaxation = r
}

// Relax builds the continuous problem of the model in its current state.
func (m *Model) Relax() (*nlp.Problem, error) {
	if m.relaxation == nil {
		return nil, errors.Errorf("model %q has no continuous relaxation", m.Name)
	}
	p, err := m.relaxation(m)
	if err != nil {
		return nil, errors.Wrapf(err, "relaxing model %q", m.Name)
	}
	return p, nil
}

// Selected reports whether the named disjunct is active and its indicator
// fixed true.
func (m *Model) Selected(disjunct string) bool {
	d, ok := m.Disjunct(disjunct)
	if !ok || !d.Active() {
		return false
	}
	return d.Indicator.IsFixed() && d.Indicator.Value()
}
