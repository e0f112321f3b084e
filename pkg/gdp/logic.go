package gdp

import (
	"fmt"
	"strings"
)

// Expr is a logical expression over Boolean variables.
type Expr interface {
	// Eval returns the truth value of the expression. It fails with
	// ErrUnfixed when the value depends on an unfixed variable.
	Eval() (bool, error)
	String() string
	// Args returns the direct subexpressions; atoms have none.
	Args() []Expr
}

// CardinalityKind distinguishes the counting operators.
type CardinalityKind int

const (
	Exactly CardinalityKind = iota
	AtMost
	AtLeast
)

func (k CardinalityKind) String() string {
	switch k {
	case Exactly:
		return "exactly"
	case AtMost:
		return "atmost"
	default:
		return "atleast"
	}
}

// CardinalityExpr is true when the number of true arguments is exactly,
// at most or at least N.
type CardinalityExpr struct {
	Kind     CardinalityKind
	N        int
	Operands []Expr
}

func (e *CardinalityExpr) Eval() (bool, error) {
	var count int
	for _, a := range e.Operands {
		v, err := a.Eval()
		if err != nil {
			return false, err
		}
		if v {
			count++
		}
	}
	switch e.Kind {
	case Exactly:
		return count == e.N, nil
	case AtMost:
		return count <= e.N, nil
	default:
		return count >= e.N, nil
	}
}

func (e *CardinalityExpr) String() string {
	return fmt.Sprintf("%s(%d, %s)", e.Kind, e.N, joinExprs(e.Operands, ", "))
}

func (e *CardinalityExpr) Args() []Expr {
	return e.Operands
}

// ExactlyN returns the constraint that exactly n of args are true.
func ExactlyN(n int, args ...Expr) *CardinalityExpr {
	return &CardinalityExpr{Kind: Exactly, N: n, Operands: args}
}

// AtMostN returns the constraint that at most n of args are true.
func AtMostN(n int, args ...Expr) *CardinalityExpr {
	return &CardinalityExpr{Kind: AtMost, N: n, Operands: args}
}

// AtLeastN returns the constraint that at least n of args are true.
func AtLeastN(n int, args ...Expr) *CardinalityExpr {
	return &CardinalityExpr{Kind: AtLeast, N: n, Operands: args}
}

type NotExpr struct {
	Operand Expr
}

func Not(e Expr) *NotExpr {
	return &NotExpr{Operand: e}
}

func (e *NotExpr) Eval() (bool, error) {
	v, err := e.Operand.Eval()
	if err != nil {
		return false, err
	}
	return !v, nil
}

func (e *NotExpr) String() string {
	return "~" + e.Operand.String()
}

func (e *NotExpr) Args() []Expr {
	return []Expr{e.Operand}
}

type AndExpr struct {
	Operands []Expr
}

// And is true when every argument is true. And() is true.
func And(args ...Expr) *AndExpr {
	return &AndExpr{Operands: args}
}

func (e *AndExpr) Eval() (bool, error) {
	// A false operand decides the result even when others are unfixed.
	var unfixed error
	for _, a := range e.Operands {
		v, err := a.Eval()
		if err != nil {
			unfixed = err
			continue
		}
		if !v {
			return false, nil
		}
	}
	return unfixed == nil, unfixed
}

func (e *AndExpr) String() string {
	return "(" + joinExprs(e.Operands, " & ") + ")"
}

func (e *AndExpr) Args() []Expr {
	return e.Operands
}

type OrExpr struct {
	Operands []Expr
}

// Or is true when any argument is true. Or() is false.
func Or(args ...Expr) *OrExpr {
	return &OrExpr{Operands: args}
}

func (e *OrExpr) Eval() (bool, error) {
	var unfixed error
	for _, a := range e.Operands {
		v, err := a.Eval()
		if err != nil {
			unfixed = err
			continue
		}
		if v {
			return true, nil
		}
	}
	return false, unfixed
}

func (e *OrExpr) String() string {
	return "(" + joinExprs(e.Operands, " | ") + ")"
}

func (e *OrExpr) Args() []Expr {
	return e.Operands
}

type ImpliesExpr struct {
	If, Then Expr
}

func Implies(p, q Expr) *ImpliesExpr {
	return &ImpliesExpr{If: p, Then: q}
}

func (e *ImpliesExpr) Eval() (bool, error) {
	return Or(Not(e.If), e.Then).Eval()
}

func (e *ImpliesExpr) String() string {
	return fmt.Sprintf("(%s => %s)", e.If, e.Then)
}

func (e *ImpliesExpr) Args() []Expr {
	return []Expr{e.If, e.Then}
}

type EquivalentExpr struct {
	Left, Right Expr
}

func Equivalent(p, q Expr) *EquivalentExpr {
	return &EquivalentExpr{Left: p, Right: q}
}

func (e *EquivalentExpr) Eval() (bool, error) {
	l, err := e.Left.Eval()
	if err != nil {
		return false, err
	}
	r, err := e.Right.Eval()
	if err != nil {
		return false, err
	}
	return l == r, nil
}

func (e *EquivalentExpr) String() string {
	return fmt.Sprintf("(%s <=> %s)", e.Left, e.Right)
}

func (e *EquivalentExpr) Args() []Expr {
	return []Expr{e.Left, e.Right}
}

// Atoms returns the distinct Boolean variables of e in first-occurrence
// order.
func Atoms(e Expr) []*BooleanVar {
	var out []*BooleanVar
	seen := make(map[*BooleanVar]struct{})
	var walk func(Expr)
	walk = func(e Expr) {
		if v, ok := e.(*BooleanVar); ok {
			if _, dup := seen[v]; !dup {
				seen[v] = struct{}{}
				out = append(out, v)
			}
			return
		}
		for _, a := range e.Args() {
			walk(a)
		}
	}
	walk(e)
	return out
}

// Vars converts Boolean variables into expression arguments.
func Vars(vs ...*BooleanVar) []Expr {
	out := make([]Expr, len(vs))
	for i, v := range vs {
		out[i] = v
	}
	return out
}

func joinExprs(es []Expr, sep string) string {
	s := make([]string, len(es))
	for i, e := range es {
		s[i] = e.String()
	}
	return strings.Join(s, sep)
}
