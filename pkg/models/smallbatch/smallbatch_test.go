package smallbatch

import (
	"context"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/processdesign/dsda/pkg/dsda"
	"github.com/processdesign/dsda/pkg/gdp"
	"github.com/processdesign/dsda/pkg/nlp"
	"github.com/processdesign/dsda/pkg/reformulation"
	"github.com/processdesign/dsda/pkg/subproblem"
)

func fixed(t *testing.T, x []int) *gdp.Model {
	m, err := New(Params{}).Build()
	require.NoError(t, err)
	rm, err := reformulation.Scan(m, m.References())
	require.NoError(t, err)
	_, err = reformulation.Apply(m, x, rm, m.Dependents())
	require.NoError(t, err)
	return m
}

func TestBuild(t *testing.T) {
	m, err := New(Params{}).Build()
	require.NoError(t, err)
	require.NoError(t, m.Err())

	rm, err := reformulation.Scan(m, m.References())
	require.NoError(t, err)
	require.Len(t, rm.Entries(), 3)
	assert.Equal(t, []string{"Y[1,mixer]", "Y[2,mixer]", "Y[3,mixer]"}, rm.Entries()[0].Names())
	assert.Equal(t, []int{1, 1, 1}, rm.LowerBounds())
	assert.Equal(t, []int{3, 3, 3}, rm.UpperBounds())
}

func TestRelaxation(t *testing.T) {
	m := fixed(t, []int{1, 2, 3})
	assert.True(t, m.Selected("Y_exists[2,reactor]"))
	assert.False(t, m.Selected("Y_exists[1,reactor]"))
	assert.Empty(t, m.FreeBooleans())

	p, err := m.Relax()
	require.NoError(t, err)
	require.NoError(t, p.Validate())

	// Small batches only need the smallest units.
	x := []float64{0, 0}
	cost := (250*1 + 500*2 + 340*3) * math.Pow(volLow, beta)
	assert.InDelta(t, cost, p.Objective(x), 1e-6)

	snap := p.Snapshot(x)
	assert.InDelta(t, math.Log(2), snap[nlp.ID("n", "reactor")], 1e-12)
	assert.InDelta(t, math.Log(2), snap[nlp.ID("coeffval", 2, "reactor")], 1e-12)
	assert.Equal(t, 0.0, snap[nlp.ID("coeffval", 1, "reactor")])
	assert.InDelta(t, math.Log(10), snap[nlp.ID("tl", "b")], 1e-12)
}

func TestSolve(t *testing.T) {
	solver, err := nlp.NewAugmentedLagrangian()
	require.NoError(t, err)
	adapter, err := subproblem.NewAdapter(solver)
	require.NoError(t, err)

	for _, tt := range []struct {
		x  []int
		ok bool
	}{
		// A single unit per stage cannot meet the horizon.
		{x: []int{1, 1, 1}, ok: false},
		{x: []int{3, 3, 3}, ok: true},
	} {
		out, err := adapter.Solve(context.Background(), fixed(t, tt.x), nil)
		require.NoError(t, err)
		assert.Equal(t, tt.ok, out.OK(), "%v: %s", tt.x, out.Message)
	}
}

func TestSearch(t *testing.T) {
	solver, err := nlp.NewAugmentedLagrangian()
	require.NoError(t, err)
	d, err := dsda.NewDriver(New(Params{}), solver)
	require.NoError(t, err)
	res, err := d.Run(context.Background())
	require.NoError(t, err)

	assert.False(t, res.Route[0].Point.Equal(dsda.Point{1, 1, 1}))
	for i := 1; i < len(res.Route); i++ {
		assert.Less(t, res.Route[i].Objective, res.Route[i-1].Objective)
	}
	assert.Equal(t, res.Route[len(res.Route)-1].Point, res.Best)
}
