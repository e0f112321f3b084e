package gdp

import (
	"fmt"
	"strings"
)

// Index is the index tuple of a variable within its family.
type Index []interface{}

// Key returns the canonical comma-joined form of the tuple.
func (i Index) Key() string {
	s := make([]string, len(i))
	for n, v := range i {
		s[n] = fmt.Sprint(v)
	}
	return strings.Join(s, ",")
}

// Equal reports whether both tuples hold the same values.
func (i Index) Equal(o Index) bool {
	if len(i) != len(o) {
		return false
	}
	for n := range i {
		if Compare(i[n], o[n]) != 0 {
			return false
		}
	}
	return true
}

// Compare orders index values: ints numerically, strings lexically and
// every int before every string. It returns -1, 0 or 1.
func Compare(a, b interface{}) int {
	ai, aInt := a.(int)
	bi, bInt := b.(int)
	switch {
	case aInt && bInt:
		switch {
		case ai < bi:
			return -1
		case ai > bi:
			return 1
		}
		return 0
	case aInt:
		return -1
	case bInt:
		return 1
	}
	as, bs := fmt.Sprint(a), fmt.Sprint(b)
	switch {
	case as < bs:
		return -1
	case as > bs:
		return 1
	}
	return 0
}
