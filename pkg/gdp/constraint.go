package gdp

import (
	"fmt"
	"math"
	"strings"
)

const linearTol = 1e-9

// LogicalConstraint requires Expr to hold.
type LogicalConstraint struct {
	Name string
	Expr Expr

	inactive bool
}

func (c *LogicalConstraint) Active() bool {
	return !c.inactive
}

func (c *LogicalConstraint) Deactivate() {
	c.inactive = true
}

func (c *LogicalConstraint) String() string {
	return fmt.Sprintf("%s: %s", c.Name, c.Expr)
}

// Term is Coef times the 0/1 value of Var.
type Term struct {
	Coef float64
	Var  *BooleanVar
}

// LinearConstraint requires Lower <= Constant + sum(Terms) <= Upper, with
// each Boolean counted as 0 or 1. Use math.Inf for a missing side.
type LinearConstraint struct {
	Name     string
	Terms    []Term
	Constant float64
	Lower    float64
	Upper    float64

	inactive bool
}

func (c *LinearConstraint) Active() bool {
	return !c.inactive
}

func (c *LinearConstraint) Deactivate() {
	c.inactive = true
}

// Body evaluates Constant + sum(Terms). It fails with ErrUnfixed if any
// term variable is unfixed.
func (c *LinearConstraint) Body() (float64, error) {
	body := c.Constant
	for _, t := range c.Terms {
		v, err := t.Var.Eval()
		if err != nil {
			return 0, err
		}
		if v {
			body += t.Coef
		}
	}
	return body, nil
}

// Satisfied reports whether body lies within the bounds.
func (c *LinearConstraint) Satisfied(body float64) bool {
	return body >= c.Lower-linearTol && body <= c.Upper+linearTol
}

// Vars returns the term variables.
func (c *LinearConstraint) Vars() []*BooleanVar {
	out := make([]*BooleanVar, len(c.Terms))
	for i, t := range c.Terms {
		out[i] = t.Var
	}
	return out
}

func (c *LinearConstraint) String() string {
	parts := make([]string, 0, len(c.Terms)+1)
	for _, t := range c.Terms {
		parts = append(parts, fmt.Sprintf("%g*%s", t.Coef, t.Var))
	}
	if c.Constant != 0 || len(parts) == 0 {
		parts = append(parts, fmt.Sprintf("%g", c.Constant))
	}
	body := strings.Join(parts, " + ")
	switch {
	case math.IsInf(c.Lower, -1):
		return fmt.Sprintf("%s: %s <= %g", c.Name, body, c.Upper)
	case math.IsInf(c.Upper, 1):
		return fmt.Sprintf("%s: %s >= %g", c.Name, body, c.Lower)
	case c.Lower == c.Upper:
		return fmt.Sprintf("%s: %s == %g", c.Name, body, c.Lower)
	}
	return fmt.Sprintf("%s: %g <= %s <= %g", c.Name, c.Lower, body, c.Upper)
}
