package column

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/processdesign/dsda/pkg/dsda"
	"github.com/processdesign/dsda/pkg/gdp"
	"github.com/processdesign/dsda/pkg/nlp"
	"github.com/processdesign/dsda/pkg/reformulation"
	"github.com/processdesign/dsda/pkg/subproblem"
)

func fixed(t *testing.T, x []int) (*gdp.Model, *reformulation.Report) {
	m, err := New(Params{}).Build()
	require.NoError(t, err)
	rm, err := reformulation.Scan(m, m.References())
	require.NoError(t, err)
	report, err := reformulation.Apply(m, x, rm, m.Dependents())
	require.NoError(t, err)
	return m, report
}

func TestBuild(t *testing.T) {
	ss := New(Params{})
	m, err := ss.Build()
	require.NoError(t, err)
	require.NoError(t, m.Err())
	assert.Equal(t, 9, ss.feed)

	rm, err := reformulation.Scan(m, m.References())
	require.NoError(t, err)
	require.Len(t, rm.Entries(), 2)
	assert.Equal(t, "one_reflux", rm.Entries()[0].Constraint)
	assert.Equal(t, "one_boilup", rm.Entries()[1].Constraint)
	assert.Equal(t, []int{1, 1}, rm.LowerBounds())
	assert.Equal(t, []int{15, 15}, rm.UpperBounds())

	assert.Equal(t, dsda.Point{14, 1}, ss.DefaultSeed())
	assert.Nil(t, New(Params{NT: 11}).DefaultSeed())

	_, err = New(Params{NT: 4}).Build()
	assert.EqualError(t, err, "column superstructure needs at least 5 trays, got 4")
}

func TestApply(t *testing.T) {
	m, report := fixed(t, []int{14, 1})
	assert.Empty(t, m.FreeBooleans())
	assert.Empty(t, report.Violations)
	for n := 2; n < 17; n++ {
		if n == 9 {
			continue
		}
		assert.Equal(t, n <= 15, m.Selected(tray(n)), "tray %d", n)
	}

	// Reflux below the boil-up leaves no tray.
	m, report = fixed(t, []int{4, 9})
	for n := 2; n < 17; n++ {
		assert.False(t, m.Selected(tray(n)), "tray %d", n)
	}
	require.NotEmpty(t, report.Violations)
	assert.Equal(t, "minimum_num_trays", report.Violations[0].Constraint)
}

func TestLogic(t *testing.T) {
	ss := New(Params{})
	m, err := ss.Build()
	require.NoError(t, err)
	rm, err := reformulation.Scan(m, m.References())
	require.NoError(t, err)
	f, err := dsda.NewLogicFilter(ss, rm)
	require.NoError(t, err)

	for _, tt := range []struct {
		x     dsda.Point
		allow bool
	}{
		{x: dsda.Point{14, 1}, allow: true},
		{x: dsda.Point{12, 3}, allow: true},
		{x: dsda.Point{1, 1}, allow: false},
		{x: dsda.Point{4, 9}, allow: false},
	} {
		t.Run(tt.x.String(), func(t *testing.T) {
			assert.Equal(t, tt.allow, f.Allow(tt.x))
		})
	}
}

func TestDesign(t *testing.T) {
	d := newDesign(13)
	assert.InDelta(t, 50, d.dist, 1e-12)
	assert.InDelta(t, 6.7265, d.nmin, 1e-4)
	assert.InDelta(t, 1.4965, d.rmin, 1e-4)

	assert.Greater(t, d.stagesRequired(1.8), d.stagesRequired(2.5))
	assert.Greater(t, d.stagesRequired(1.4), d.stagesRequired(1.49))
	assert.InDelta(t, 15, d.stagesRequired(1.8936), 1e-2)

	snap := d.snapshot([]float64{2})
	assert.InDelta(t, (150-40.395)/50, snap[nlp.ID("reboil_ratio")], 1e-12)
	assert.Greater(t, snap[nlp.ID("Qc")], snap[nlp.ID("Qb")])
}

func TestSolveSeed(t *testing.T) {
	solver, err := nlp.NewAugmentedLagrangian()
	require.NoError(t, err)
	adapter, err := subproblem.NewAdapter(solver)
	require.NoError(t, err)

	m, _ := fixed(t, []int{14, 1})
	out, err := adapter.Solve(context.Background(), m, nil)
	require.NoError(t, err)
	require.True(t, out.OK(), out.Message)
	assert.InDelta(t, 1.8936, out.WarmStart[nlp.ID("reflux_ratio")], 1e-2)
	assert.InDelta(t, 22885, out.Objective, 5)
}
