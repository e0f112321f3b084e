package gdp

import (
	"strings"
)

// Disjunct is one alternative of a Disjunction, selected by its indicator.
type Disjunct struct {
	Name      string
	Indicator *BooleanVar

	inactive bool
}

func (d *Disjunct) Active() bool {
	return !d.inactive
}

func (d *Disjunct) Deactivate() {
	d.inactive = true
}

// Disjunction requires exactly one of its disjuncts to hold.
type Disjunction struct {
	Name      string
	Disjuncts []*Disjunct

	inactive bool
}

func (d *Disjunction) Active() bool {
	return !d.inactive
}

func (d *Disjunction) Deactivate() {
	d.inactive = true
}

// Indicators returns the indicator variables of the disjuncts.
func (d *Disjunction) Indicators() []*BooleanVar {
	out := make([]*BooleanVar, len(d.Disjuncts))
	for i, dj := range d.Disjuncts {
		out[i] = dj.Indicator
	}
	return out
}

func (d *Disjunction) String() string {
	names := make([]string, len(d.Disjuncts))
	for i, dj := range d.Disjuncts {
		names[i] = dj.Name
	}
	return d.Name + ": " + strings.Join(names, " v ")
}
