// Package column is the benzene-toluene distillation column
// superstructure. Trays may be switched off; the positions of the reflux
// and of the boil-up returns, the two external variables, decide which.
package column

import (
	"fmt"
	"math"

	"github.com/pkg/errors"

	"github.com/processdesign/dsda/pkg/dsda"
	"github.com/processdesign/dsda/pkg/gdp"
	"github.com/processdesign/dsda/pkg/nlp"
)

const (
	DefaultNT       = 17
	DefaultMinTrays = 8
)

type Params struct {
	// NT is the number of candidate trays, condenser and reboiler
	// included.
	NT       int
	MinTrays int
}

type Superstructure struct {
	params Params
	feed   int
}

func New(params Params) *Superstructure {
	if params.NT == 0 {
		params.NT = DefaultNT
	}
	if params.MinTrays == 0 {
		params.MinTrays = DefaultMinTrays
	}
	return &Superstructure{params: params, feed: (params.NT + 1) / 2}
}

func (s *Superstructure) Name() string {
	return "column"
}

// DefaultSeed places the reflux on the highest interior tray but one and
// the boil-up on the lowest interior tray. It is only meaningful for the
// default number of trays; other sizes start from enumeration.
func (s *Superstructure) DefaultSeed() dsda.Point {
	if s.params.NT != DefaultNT {
		return nil
	}
	return dsda.Point{14, 1}
}

func (s *Superstructure) Build() (*gdp.Model, error) {
	nt := s.params.NT
	if nt < 5 {
		return nil, errors.Errorf("column superstructure needs at least 5 trays, got %d", nt)
	}

	m := gdp.NewModel("benzene-toluene column")
	trays := gdp.NewRangeSet("trays", 1, nt)
	intTrays := trays.Without("intTrays", nt, 1)
	conditional := trays.Without("conditional_trays", nt, s.feed, 1)

	yr := m.AddBooleanFamily("YR", intTrays)
	yb := m.AddBooleanFamily("YB", intTrays)
	yp := m.AddBooleanFamily("YP", conditional)

	m.AddLogicalConstraint("one_reflux", gdp.ExactlyN(1, gdp.Vars(yr.Vars()...)...))
	m.AddLogicalConstraint("one_boilup", gdp.ExactlyN(1, gdp.Vars(yb.Vars()...)...))

	var count []gdp.Term
	for _, v := range conditional.Values {
		n := v.(int)
		// A tray exists when the reflux enters at or above it and the
		// boil-up enters at or below it.
		var refluxAbove, boilupAbove []gdp.Expr
		for j := n; j < nt; j++ {
			refluxAbove = append(refluxAbove, yr.Get(j))
			boilupAbove = append(boilupAbove, gdp.Not(yb.Get(j)))
		}
		m.AddDependent(yp.Get(n), gdp.And(
			gdp.Or(refluxAbove...),
			gdp.Or(gdp.And(boilupAbove...), yb.Get(n)),
		))

		m.AddDisjunction(fmt.Sprintf("tray_no_tray[%d]", n),
			m.AddDisjunct(tray(n), yp.Get(n)),
			m.AddDisjunct(fmt.Sprintf("no_tray[%d]", n), nil))
		count = append(count, gdp.Term{Coef: 1, Var: yp.Get(n)})
	}
	m.AddLinearConstraint("minimum_num_trays", float64(s.params.MinTrays), count, 1, math.Inf(1))

	// Trays close to the feed are activated first.
	for _, v := range conditional.Values {
		t := v.(int)
		var terms []gdp.Term
		switch {
		case t+1 < nt && t > s.feed:
			terms = []gdp.Term{{Coef: 1, Var: yp.Get(t)}, {Coef: -1, Var: yp.Get(t + 1)}}
		case t > 1 && t+1 < s.feed:
			terms = []gdp.Term{{Coef: 1, Var: yp.Get(t + 1)}, {Coef: -1, Var: yp.Get(t)}}
		default:
			continue
		}
		m.AddLinearConstraint(fmt.Sprintf("tray_ordering[%d]", t), 0, terms, 0, math.Inf(1))
	}

	m.AddReference(yr, intTrays)
	m.AddReference(yb, intTrays)
	m.SetRelaxation(s.relax)
	return m, nil
}

func tray(n int) string {
	return fmt.Sprintf("tray[%d]", n)
}

// relax builds the shortcut design of the column with the trays left
// active. The reflux ratio is the only decision.
func (s *Superstructure) relax(m *gdp.Model) (*nlp.Problem, error) {
	var active int
	for n := 2; n < s.params.NT; n++ {
		if n != s.feed && m.Selected(tray(n)) {
			active++
		}
	}
	d := newDesign(active)
	return &nlp.Problem{
		Name: m.Name,
		Vars: []nlp.Var{{ID: nlp.ID("reflux_ratio"), Lower: minReflux, Upper: maxReflux, Init: 2}},
		Objective: func(x []float64) float64 {
			return d.cost(x[0])
		},
		Inequalities: []nlp.Constraint{
			{Name: "stages", Func: func(x []float64) float64 { return d.stagesRequired(x[0]) - d.stages }},
			{Name: "min_reboil", Func: func(x []float64) float64 { return minReboil - d.reboilRatio(x[0]) }},
			{Name: "max_reboil", Func: func(x []float64) float64 { return d.reboilRatio(x[0]) - maxReboil }},
		},
		Report: d.snapshot,
	}, nil
}
