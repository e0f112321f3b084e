package dsda

import (
	"strconv"
	"strings"
)

// Point is an external variable vector. Points are never modified after
// creation; Add returns a new one.
type Point []int

// Add returns p + delta.
func (p Point) Add(delta Point) Point {
	out := make(Point, len(p))
	for i := range p {
		out[i] = p[i] + delta[i]
	}
	return out
}

func (p Point) Equal(q Point) bool {
	if len(p) != len(q) {
		return false
	}
	for i := range p {
		if p[i] != q[i] {
			return false
		}
	}
	return true
}

// Key returns a string usable as a map key.
func (p Point) Key() string {
	return p.String()
}

func (p Point) String() string {
	s := make([]string, len(p))
	for i, v := range p {
		s[i] = strconv.Itoa(v)
	}
	return "[" + strings.Join(s, ",") + "]"
}

// ParsePoint parses a comma-separated list of integers, with or without
// surrounding brackets.
func ParsePoint(s string) (Point, error) {
	s = strings.TrimSpace(s)
	s = strings.TrimSuffix(strings.TrimPrefix(s, "["), "]")
	if s == "" {
		return nil, nil
	}
	fields := strings.Split(s, ",")
	p := make(Point, len(fields))
	for i, f := range fields {
		v, err := strconv.Atoi(strings.TrimSpace(f))
		if err != nil {
			return nil, err
		}
		p[i] = v
	}
	return p, nil
}
