// Package gdp is a small generalized disjunctive programming modeling layer:
// index sets, indexed Boolean variables, logical expressions over them,
// linear constraints over their 0/1 values, disjunctions and the
// transformations applied once the discrete decisions are fixed.
package gdp

import (
	"fmt"
)

// Set is a named, ordered collection of index values. Values are ints or
// strings.
type Set struct {
	Name   string
	Values []interface{}
}

// NewSet returns a set holding values in the given order.
func NewSet(name string, values ...interface{}) *Set {
	return &Set{Name: name, Values: values}
}

// NewRangeSet returns the set of integers lo..hi inclusive.
func NewRangeSet(name string, lo, hi int) *Set {
	s := &Set{Name: name}
	for i := lo; i <= hi; i++ {
		s.Values = append(s.Values, i)
	}
	return s
}

// Without returns a new set named name holding the receiver's values
// except the given ones.
func (s *Set) Without(name string, values ...interface{}) *Set {
	out := &Set{Name: name}
	for _, v := range s.Values {
		drop := false
		for _, w := range values {
			if Compare(v, w) == 0 {
				drop = true
				break
			}
		}
		if !drop {
			out.Values = append(out.Values, v)
		}
	}
	return out
}

// Len returns the number of values in the set.
func (s *Set) Len() int {
	return len(s.Values)
}

// Contains reports whether v is a member of the set.
func (s *Set) Contains(v interface{}) bool {
	for _, w := range s.Values {
		if Compare(v, w) == 0 {
			return true
		}
	}
	return false
}

func (s *Set) String() string {
	return fmt.Sprintf("%s%v", s.Name, s.Values)
}
