// Package reactor is the superstructure of a series of autocatalytic
// CSTRs with one unreacted feed position and one recycle position. The
// first external variable is the number of active reactors and the second
// the unit receiving the recycle.
package reactor

import (
	"fmt"

	"github.com/pkg/errors"

	"github.com/processdesign/dsda/pkg/gdp"
	"github.com/processdesign/dsda/pkg/nlp"
)

const DefaultNT = 5

type Params struct {
	// NT is the number of candidate units.
	NT int
}

type Superstructure struct {
	params Params
}

func New(params Params) *Superstructure {
	if params.NT == 0 {
		params.NT = DefaultNT
	}
	return &Superstructure{params: params}
}

func (s *Superstructure) Name() string {
	return "reactor"
}

func (s *Superstructure) Build() (*gdp.Model, error) {
	nt := s.params.NT
	if nt < 1 {
		return nil, errors.Errorf("reactor superstructure needs at least one unit, got %d", nt)
	}

	m := gdp.NewModel("gdp_reactors")
	n := gdp.NewRangeSet("N", 1, nt)

	yf := m.AddBooleanFamily("YF", n)
	yr := m.AddBooleanFamily("YR", n)
	yp := m.AddBooleanFamily("YP", n)

	m.AddLogicalConstraint("one_unreacted_feed", gdp.ExactlyN(1, gdp.Vars(yf.Vars()...)...))
	m.AddLogicalConstraint("one_recycle", gdp.ExactlyN(1, gdp.Vars(yr.Vars()...)...))

	for _, v := range n.Values {
		unit := v.(int)
		m.AddLogicalConstraint(fmt.Sprintf("cstr_if_recycle[%d]", unit), gdp.Implies(yr.Get(unit), yp.Get(unit)))

		// A unit is a reactor unless the feed enters further downstream.
		var downstream []gdp.Expr
		for w := 1; w < unit; w++ {
			downstream = append(downstream, yf.Get(w))
		}
		m.AddDependent(yp.Get(unit), gdp.Not(gdp.Or(downstream...)))

		m.AddDisjunction(fmt.Sprintf("YP_is_cstr_or_bypass[%d]", unit),
			m.AddDisjunct(cstr(unit), yp.Get(unit)),
			m.AddDisjunct(fmt.Sprintf("YP_is_bypass[%d]", unit), nil))
		m.AddDisjunction(fmt.Sprintf("YR_is_recycle_or_not[%d]", unit),
			m.AddDisjunct(recycle(unit), yr.Get(unit)),
			m.AddDisjunct(fmt.Sprintf("YR_is_not_recycle[%d]", unit), nil))
	}

	m.AddReference(yf, n)
	m.AddReference(yr, n)
	m.SetRelaxation(s.relax)
	return m, nil
}

func cstr(unit int) string {
	return fmt.Sprintf("YP_is_cstr[%d]", unit)
}

func recycle(unit int) string {
	return fmt.Sprintf("YR_is_recycle[%d]", unit)
}

// relax builds the reduced-space flowsheet of the selected units. The
// common reactor volume V[1] and the recycle flow are the only decisions;
// every other stream follows from simulating the units.
func (s *Superstructure) relax(m *gdp.Model) (*nlp.Problem, error) {
	fs := flowsheet{nt: s.params.NT}
	for unit := 1; unit <= s.params.NT; unit++ {
		if m.Selected(cstr(unit)) {
			fs.reactors++
		}
		if m.Selected(recycle(unit)) {
			fs.recycle = unit
		}
	}
	if fs.reactors == 0 {
		return nil, errors.New("no unit is a reactor")
	}

	qrUpper := maxFlow - feedFlow
	if fs.recycle == 0 || fs.recycle > fs.reactors {
		// A recycle entering a bypass carries nothing.
		qrUpper = 0
	}

	return &nlp.Problem{
		Name: m.Name,
		Vars: []nlp.Var{
			{ID: nlp.ID("V", 1), Lower: 0, Upper: maxVolume, Init: 1},
			{ID: nlp.ID("QR"), Lower: 0, Upper: qrUpper},
		},
		Objective: func(x []float64) float64 {
			return float64(fs.reactors) * x[0]
		},
		Equalities: []nlp.Constraint{{
			Name: "prod_spec",
			Func: func(x []float64) float64 {
				return fs.solve(x[0], x[1]).product() - purity
			},
		}},
		Report: func(x []float64) nlp.Snapshot {
			return fs.solve(x[0], x[1]).snapshot()
		},
	}, nil
}
