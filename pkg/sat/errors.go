package sat

import (
	"fmt"
	"strings"
)

// AppliedConstraint names one input of a satisfiability query: a model
// constraint or an assumed variable value.
type AppliedConstraint struct {
	Name string
	Expr string
}

func (a AppliedConstraint) String() string {
	if a.Expr == "" {
		return a.Name
	}
	return fmt.Sprintf("%s (%s)", a.Name, a.Expr)
}

// NotSatisfiable is an error composed of a set of applied constraints
// that is sufficient to make a solution impossible.
type NotSatisfiable []AppliedConstraint

func (e NotSatisfiable) Error() string {
	const msg = "constraints not satisfiable"
	if len(e) == 0 {
		return msg
	}
	s := make([]string, len(e))
	for i, a := range e {
		s[i] = a.String()
	}
	return fmt.Sprintf("%s: %s", msg, strings.Join(s, ", "))
}
