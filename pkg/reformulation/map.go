package reformulation

import (
	"fmt"
	"io"
	"strings"

	"github.com/pkg/errors"

	"github.com/processdesign/dsda/pkg/gdp"
)

// Entry is one reformulated exactly constraint. Booleans are ordered by
// their value on the reference dimensions; external value k selects
// Booleans[k-1].
type Entry struct {
	Constraint   string
	ExactlyCount int
	Booleans     []*gdp.BooleanVar
	IndexValues  []gdp.Index
	LowerBound   int
	UpperBound   int
}

// Names returns the display names of the entry's Booleans.
func (e *Entry) Names() []string {
	names := make([]string, len(e.Booleans))
	for i, v := range e.Booleans {
		names[i] = v.Name()
	}
	return names
}

// Map is the ordered list of entries discovered in a model. External
// variables are numbered entry by entry, each entry contributing
// ExactlyCount consecutive positions.
type Map struct {
	entries    []*Entry
	mismatches []ScanMismatch
}

// NewMap returns a map over the given entries, in order.
func NewMap(entries ...*Entry) *Map {
	return &Map{entries: entries}
}

func (rm *Map) Entries() []*Entry {
	return rm.entries
}

// Mismatches returns the reference declarations that were skipped by Scan.
func (rm *Map) Mismatches() []ScanMismatch {
	return rm.mismatches
}

// NumExternal returns the number of external variables.
func (rm *Map) NumExternal() int {
	var n int
	for _, e := range rm.entries {
		n += e.ExactlyCount
	}
	return n
}

// LowerBounds returns the lower bound of every external variable.
func (rm *Map) LowerBounds() []int {
	return rm.flatten(func(e *Entry) int { return e.LowerBound })
}

// UpperBounds returns the upper bound of every external variable.
func (rm *Map) UpperBounds() []int {
	return rm.flatten(func(e *Entry) int { return e.UpperBound })
}

func (rm *Map) flatten(bound func(*Entry) int) []int {
	out := make([]int, 0, rm.NumExternal())
	for _, e := range rm.entries {
		for j := 0; j < e.ExactlyCount; j++ {
			out = append(out, bound(e))
		}
	}
	return out
}

// Check returns a BoundViolation if x is not a valid external vector.
func (rm *Map) Check(x []int) error {
	if len(x) != rm.NumExternal() {
		return errors.Errorf("external vector has %d values, expected %d", len(x), rm.NumExternal())
	}
	lower, upper := rm.LowerBounds(), rm.UpperBounds()
	for p, v := range x {
		if v < lower[p] || v > upper[p] {
			return BoundViolation{Position: p, Value: v, Lower: lower[p], Upper: upper[p]}
		}
	}
	return nil
}

// Bind returns a map with the same entries re-targeted onto the Boolean
// variables of m, matched by family name and index.
func (rm *Map) Bind(m *gdp.Model) (*Map, error) {
	out := &Map{entries: make([]*Entry, len(rm.entries)), mismatches: rm.mismatches}
	for i, e := range rm.entries {
		bound := *e
		bound.Booleans = make([]*gdp.BooleanVar, len(e.Booleans))
		for k, v := range e.Booleans {
			f, ok := m.BooleanFamily(v.Family().Name)
			if !ok {
				return nil, errors.Errorf("model %q has no boolean family %s", m.Name, v.Family().Name)
			}
			w := f.Get(v.Index()...)
			if w == nil {
				return nil, errors.Errorf("model %q has no boolean %s", m.Name, v.Name())
			}
			bound.Booleans[k] = w
		}
		out.entries[i] = &bound
	}
	return out, nil
}

// Assignment returns the value x implies for every reformulated Boolean.
func (rm *Map) Assignment(x []int) (map[*gdp.BooleanVar]bool, error) {
	if err := rm.Check(x); err != nil {
		return nil, err
	}
	out := make(map[*gdp.BooleanVar]bool)
	p := 0
	for _, e := range rm.entries {
		for _, v := range e.Booleans {
			if _, ok := out[v]; !ok {
				out[v] = false
			}
		}
		for j := 0; j < e.ExactlyCount; j++ {
			out[e.Booleans[x[p]-1]] = true
			p++
		}
	}
	return out, nil
}

// WriteSummary prints which Booleans every external variable controls.
func (rm *Map) WriteSummary(w io.Writer) error {
	var b strings.Builder
	b.WriteString("Reformulation summary\n")
	p := 0
	for _, e := range rm.entries {
		for j := 0; j < e.ExactlyCount; j++ {
			fmt.Fprintf(&b, "External variable x[%d] is associated to [%s] and it must be within %d and %d.\n",
				p, strings.Join(e.Names(), " "), e.LowerBound, e.UpperBound)
			p++
		}
	}
	fmt.Fprintf(&b, "There are %d external variables in total\n", rm.NumExternal())
	_, err := io.WriteString(w, b.String())
	return err
}
