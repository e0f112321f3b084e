package nlp

import (
	"math"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
)

func TestVarID(t *testing.T) {
	assert.Equal(t, VarID{Family: "QR"}, ID("QR"))
	assert.Equal(t, VarID{Family: "c", Index: "3"}, ID("c", 3))
	assert.Equal(t, VarID{Family: "v", Index: "a,mixer"}, ID("v", "a", "mixer"))
	assert.Equal(t, "v[a,mixer]", ID("v", "a", "mixer").String())
	assert.Equal(t, "QR", ID("QR").String())
}

func TestProblemValidate(t *testing.T) {
	obj := func(x []float64) float64 { return 0 }
	for _, tt := range []struct {
		name    string
		problem *Problem
		err     string
	}{
		{name: "nil", err: "nil problem"},
		{name: "no objective", problem: &Problem{Name: "p"}, err: `problem "p" has no objective`},
		{
			name: "duplicate variable",
			problem: &Problem{Name: "p", Objective: obj, Vars: []Var{
				{ID: ID("x"), Upper: 1}, {ID: ID("x"), Upper: 1},
			}},
			err: `problem "p" declares variable x twice`,
		},
		{
			name:    "inverted bounds",
			problem: &Problem{Name: "p", Objective: obj, Vars: []Var{{ID: ID("x"), Lower: 2, Upper: 1}}},
			err:     `problem "p": variable x has invalid bounds [2, 1]`,
		},
		{
			name:    "missing constraint function",
			problem: &Problem{Name: "p", Objective: obj, Equalities: []Constraint{{Name: "h"}}},
			err:     `problem "p": constraint "h" has no function`,
		},
		{
			name:    "valid",
			problem: &Problem{Name: "p", Objective: obj, Vars: []Var{{ID: ID("x"), Upper: 1}}},
		},
	} {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.problem.Validate()
			if tt.err == "" {
				assert.NoError(t, err)
				return
			}
			assert.EqualError(t, err, tt.err)
		})
	}
}

func TestProblemSeedAndViolation(t *testing.T) {
	p := &Problem{
		Vars: []Var{
			{ID: ID("V"), Lower: 0, Upper: 10, Init: 1},
			{ID: ID("QR"), Lower: 0, Upper: 9, Init: 1},
		},
		Equalities:   []Constraint{{Name: "h", Func: func(x []float64) float64 { return x[0] - 2 }}},
		Inequalities: []Constraint{{Name: "g", Func: func(x []float64) float64 { return x[1] - 3 }}},
	}

	n := p.Seed(Snapshot{ID("V"): 12, ID("other"): 4})
	assert.Equal(t, 1, n)
	assert.Equal(t, []float64{10, 1}, p.InitialPoint())

	assert.InDelta(t, 8.0, p.Violation([]float64{10, 1}), 1e-12)
	assert.InDelta(t, 0.0, p.Violation([]float64{2, 3}), 1e-12)
	assert.InDelta(t, 2.0, p.Violation([]float64{2, 5}), 1e-12)
	assert.InDelta(t, 1.0, p.Violation([]float64{2, -1}), 1e-12)
	assert.True(t, math.IsInf(p.Violation([]float64{math.NaN(), 0}), 1))
}

func TestSnapshot(t *testing.T) {
	s := Snapshot{
		ID("c", 1): 0.5,
		ID("c", 2): 0.7,
		ID("QR"):   1,
	}
	assert.Equal(t, []string{"QR", "c"}, s.Families())
	if diff := cmp.Diff(map[string]float64{"1": 0.5, "2": 0.7}, s.Family("c")); diff != "" {
		t.Errorf("unexpected family (-want +got):\n%s", diff)
	}

	c := s.With(ID("QR"), 2)
	v, ok := s.Get(ID("QR"))
	assert.True(t, ok)
	assert.Equal(t, 1.0, v)
	assert.Equal(t, 2.0, c[ID("QR")])

	var empty Snapshot
	assert.Nil(t, empty.Clone())
	assert.Equal(t, Snapshot{ID("x"): 1}, empty.With(ID("x"), 1))
}
