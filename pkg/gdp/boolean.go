package gdp

import (
	"fmt"

	"github.com/pkg/errors"
)

// ErrUnfixed is returned when evaluating a Boolean variable that has no
// fixed value.
var ErrUnfixed = errors.New("boolean variable is not fixed")

// BooleanFamily is an indexed group of Boolean variables. Its members are
// the cartesian product of Sets, in declaration order. A family with no
// sets holds a single scalar variable.
type BooleanFamily struct {
	Name string
	Sets []*Set

	vars  []*BooleanVar
	byKey map[string]*BooleanVar
}

func newBooleanFamily(name string, sets ...*Set) *BooleanFamily {
	f := &BooleanFamily{Name: name, Sets: sets, byKey: make(map[string]*BooleanVar)}
	var walk func(prefix Index, depth int)
	walk = func(prefix Index, depth int) {
		if depth == len(sets) {
			idx := make(Index, len(prefix))
			copy(idx, prefix)
			v := &BooleanVar{family: f, index: idx}
			f.vars = append(f.vars, v)
			f.byKey[idx.Key()] = v
			return
		}
		for _, value := range sets[depth].Values {
			walk(append(prefix, value), depth+1)
		}
	}
	walk(nil, 0)
	return f
}

// Rank returns the number of index dimensions.
func (f *BooleanFamily) Rank() int {
	return len(f.Sets)
}

// Vars returns the members in declaration order.
func (f *BooleanFamily) Vars() []*BooleanVar {
	return f.vars
}

// Get returns the member at the given index, or nil.
func (f *BooleanFamily) Get(index ...interface{}) *BooleanVar {
	return f.byKey[Index(index).Key()]
}

// BooleanVar is one member of a BooleanFamily. It is an atom of the
// logical expression language.
type BooleanVar struct {
	family *BooleanFamily
	index  Index
	fixed  bool
	value  bool
}

// Family returns the owning family.
func (v *BooleanVar) Family() *BooleanFamily {
	return v.family
}

// Index returns the variable's index tuple.
func (v *BooleanVar) Index() Index {
	return v.index
}

// Name returns the display name, for example "Y[1,mixer]".
func (v *BooleanVar) Name() string {
	if len(v.index) == 0 {
		return v.family.Name
	}
	return fmt.Sprintf("%s[%s]", v.family.Name, v.index.Key())
}

// Fix pins the variable to value.
func (v *BooleanVar) Fix(value bool) {
	v.fixed, v.value = true, value
}

// Unfix releases the variable.
func (v *BooleanVar) Unfix() {
	v.fixed, v.value = false, false
}

func (v *BooleanVar) IsFixed() bool {
	return v.fixed
}

// Value returns the fixed value; it is false for unfixed variables.
func (v *BooleanVar) Value() bool {
	return v.value
}

func (v *BooleanVar) Eval() (bool, error) {
	if !v.fixed {
		return false, errors.Wrap(ErrUnfixed, v.Name())
	}
	return v.value, nil
}

func (v *BooleanVar) String() string {
	return v.Name()
}

func (v *BooleanVar) Args() []Expr {
	return nil
}
