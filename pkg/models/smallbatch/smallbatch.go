// Package smallbatch is the multiproduct batch plant superstructure: two
// products share three stages, and each stage may run one to three units
// in parallel. The external variables are the unit counts of the stages.
package smallbatch

import (
	"fmt"
	"math"

	"github.com/pkg/errors"

	"github.com/processdesign/dsda/pkg/gdp"
	"github.com/processdesign/dsda/pkg/nlp"
)

const (
	horizon = 6000.0 // hr
	volLow  = 250.0  // L
	volUpp  = 2500.0 // L
	beta    = 0.6

	// DefaultNK is the largest number of parallel units per stage.
	DefaultNK = 3
)

var (
	products = []string{"a", "b"}
	stages   = []string{"mixer", "reactor", "centrifuge"}

	// Production rate [kg/hr].
	rate = map[string]float64{"a": 200000, "b": 150000}
	// Cost coefficient of a batch unit.
	alpha = map[string]float64{"mixer": 250, "reactor": 500, "centrifuge": 340}
	// Size factor [kg/L].
	size = map[string]map[string]float64{
		"a": {"mixer": 2, "reactor": 3, "centrifuge": 4},
		"b": {"mixer": 4, "reactor": 6, "centrifuge": 3},
	}
	// Processing time [hr].
	processing = map[string]map[string]float64{
		"a": {"mixer": 8, "reactor": 20, "centrifuge": 4},
		"b": {"mixer": 10, "reactor": 12, "centrifuge": 3},
	}
)

type Params struct {
	NK int
}

type Superstructure struct {
	params Params
}

func New(params Params) *Superstructure {
	if params.NK == 0 {
		params.NK = DefaultNK
	}
	return &Superstructure{params: params}
}

func (s *Superstructure) Name() string {
	return "smallbatch"
}

func (s *Superstructure) Build() (*gdp.Model, error) {
	if s.params.NK < 1 {
		return nil, errors.Errorf("small batch superstructure needs at least one unit per stage, got %d", s.params.NK)
	}
	m := gdp.NewModel("small_batch")
	k := gdp.NewRangeSet("k", 1, s.params.NK)
	j := gdp.NewSet("j", "mixer", "reactor", "centrifuge")
	y := m.AddBooleanFamily("Y", k, j)

	for _, stage := range stages {
		var units []gdp.Expr
		for _, n := range k.Values {
			units = append(units, y.Get(n, stage))
		}
		m.AddLogicalConstraint(fmt.Sprintf("lim[%s]", stage), gdp.ExactlyN(1, units...))
	}
	for _, n := range k.Values {
		for _, stage := range stages {
			key := fmt.Sprintf("%d,%s", n, stage)
			m.AddDisjunction(fmt.Sprintf("Y_exists_or_not[%s]", key),
				m.AddDisjunct(fmt.Sprintf("Y_exists[%s]", key), y.Get(n, stage)),
				m.AddDisjunct(fmt.Sprintf("Y_not_exists[%s]", key), nil))
		}
	}

	m.AddReference(y, k)
	m.SetRelaxation(s.relax)
	return m, nil
}

// relax builds the plant in the log-transformed space with the batch
// sizes b[i] as decisions. Stage volumes, cycle times and unit counts are
// at their tightest values given b.
func (s *Superstructure) relax(m *gdp.Model) (*nlp.Problem, error) {
	p := plant{nk: s.params.NK, count: make(map[string]int), units: make(map[string]float64)}
	for _, stage := range stages {
		for n := 1; n <= s.params.NK; n++ {
			if m.Selected(fmt.Sprintf("Y_exists[%d,%s]", n, stage)) {
				p.count[stage] = n
				p.units[stage] = math.Log(float64(n))
			}
		}
		if p.count[stage] == 0 {
			return nil, errors.Errorf("stage %s has no unit count selected", stage)
		}
	}

	vars := make([]nlp.Var, len(products))
	for i, product := range products {
		vars[i] = nlp.Var{ID: nlp.ID("b", product), Lower: 0, Upper: math.Log(volUpp)}
	}
	var ineqs []nlp.Constraint
	for _, stage := range stages {
		stage := stage
		ineqs = append(ineqs, nlp.Constraint{
			Name: fmt.Sprintf("vol[%s]", stage),
			Func: func(x []float64) float64 {
				return p.required(stage, x) - math.Log(volUpp)
			},
		})
	}
	ineqs = append(ineqs, nlp.Constraint{
		Name: "time",
		Func: func(x []float64) float64 {
			var total float64
			for i, product := range products {
				total += rate[product] * math.Exp(p.cycle(product)-x[i])
			}
			return total - horizon
		},
	})

	return &nlp.Problem{
		Name: m.Name,
		Vars: vars,
		Objective: func(x []float64) float64 {
			var cost float64
			for _, stage := range stages {
				cost += alpha[stage] * math.Exp(p.units[stage]+beta*p.volume(stage, x))
			}
			return cost
		},
		Inequalities: ineqs,
		Report:       p.snapshot,
	}, nil
}

type plant struct {
	nk    int
	count map[string]int
	// units holds log(number of parallel units) per stage.
	units map[string]float64
}

// required is the log volume stage needs for the batch sizes x.
func (p plant) required(stage string, x []float64) float64 {
	v := math.Inf(-1)
	for i, product := range products {
		v = math.Max(v, math.Log(size[product][stage])+x[i])
	}
	return v
}

func (p plant) volume(stage string, x []float64) float64 {
	return math.Max(math.Log(volLow), p.required(stage, x))
}

// cycle is the log cycle time of product.
func (p plant) cycle(product string) float64 {
	tl := 0.0
	for _, stage := range stages {
		tl = math.Max(tl, math.Log(processing[product][stage])-p.units[stage])
	}
	return tl
}

func (p plant) snapshot(x []float64) nlp.Snapshot {
	out := make(nlp.Snapshot)
	for i, product := range products {
		out[nlp.ID("b", product)] = x[i]
		out[nlp.ID("tl", product)] = p.cycle(product)
	}
	for _, stage := range stages {
		out[nlp.ID("v", stage)] = p.volume(stage, x)
		out[nlp.ID("n", stage)] = p.units[stage]
		for n := 1; n <= p.nk; n++ {
			var coeff float64
			if n == p.count[stage] {
				coeff = p.units[stage]
			}
			out[nlp.ID("coeffval", n, stage)] = coeff
		}
	}
	return out
}
