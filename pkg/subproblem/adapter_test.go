package subproblem

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/processdesign/dsda/pkg/fakes"
	"github.com/processdesign/dsda/pkg/gdp"
	"github.com/processdesign/dsda/pkg/nlp"
)

func fixedModel(relax gdp.Relaxation) *gdp.Model {
	m := gdp.NewModel("fixed")
	m.SetRelaxation(relax)
	return m
}

func scalarProblem(m *gdp.Model) (*nlp.Problem, error) {
	return &nlp.Problem{
		Name:      m.Name,
		Vars:      []nlp.Var{{ID: nlp.ID("V"), Lower: 0, Upper: 10, Init: 1}},
		Objective: func(x []float64) float64 { return x[0] },
		Report: func(x []float64) nlp.Snapshot {
			return nlp.Snapshot{nlp.ID("V"): x[0], nlp.ID("c", 1): 2 * x[0]}
		},
	}, nil
}

func TestNewAdapter(t *testing.T) {
	_, err := NewAdapter(nil)
	assert.EqualError(t, err, "invalid subproblem config: solver cannot be nil")

	_, err = NewAdapter(&fakes.FakeSolver{}, WithSolverOptions(nlp.Options{TimeLimit: -time.Second}))
	assert.EqualError(t, err, "invalid subproblem config: negative time limit -1s")

	_, err = NewAdapter(&fakes.FakeSolver{}, WithLogger(nil))
	assert.EqualError(t, err, "invalid subproblem config: logger cannot be nil")
}

func TestAdapterSolve(t *testing.T) {
	for _, tt := range []struct {
		name     string
		solution *nlp.Solution
		err      error
		expected Outcome
	}{
		{
			name:     "optimal",
			solution: &nlp.Solution{Termination: nlp.Optimal, X: []float64{3}, Objective: 3},
			expected: Outcome{
				Status:      StatusOK,
				Objective:   3,
				WarmStart:   nlp.Snapshot{nlp.ID("V"): 3, nlp.ID("c", 1): 6},
				Termination: nlp.Optimal,
			},
		},
		{
			name:     "infeasible",
			solution: &nlp.Solution{Termination: nlp.Infeasible, X: []float64{3}, Objective: 3},
			expected: Outcome{Status: StatusInfeasible, Termination: nlp.Infeasible},
		},
		{
			name:     "time limit",
			solution: &nlp.Solution{Termination: nlp.TimeLimit, Message: "out of time"},
			expected: Outcome{Status: StatusError, Termination: nlp.TimeLimit, Message: "out of time"},
		},
		{
			name:     "backend error",
			err:      errors.New("solver crashed"),
			expected: Outcome{Status: StatusError, Termination: nlp.Error, Message: "solver crashed"},
		},
	} {
		t.Run(tt.name, func(t *testing.T) {
			solver := &fakes.FakeSolver{}
			solver.SolveReturns(tt.solution, tt.err)
			a, err := NewAdapter(solver, WithSolverOptions(nlp.Options{TimeLimit: time.Second, OptimalityGap: 1e-4}))
			require.NoError(t, err)

			out, err := a.Solve(context.Background(), fixedModel(scalarProblem), nil)
			require.NoError(t, err)
			assert.Equal(t, tt.expected, out)
			assert.Equal(t, tt.expected.Status == StatusOK, out.OK())

			require.Equal(t, 1, solver.SolveCallCount())
			_, _, opts := solver.SolveArgsForCall(0)
			assert.Equal(t, nlp.Options{TimeLimit: time.Second, OptimalityGap: 1e-4}, opts)
		})
	}
}

func TestAdapterWarmStart(t *testing.T) {
	solver := &fakes.FakeSolver{}
	solver.SolveReturns(&nlp.Solution{Termination: nlp.Optimal, X: []float64{4}, Objective: 4}, nil)
	a, err := NewAdapter(solver)
	require.NoError(t, err)

	_, err = a.Solve(context.Background(), fixedModel(scalarProblem), nlp.Snapshot{nlp.ID("V"): 7, nlp.ID("QR"): 1})
	require.NoError(t, err)
	_, p, _ := solver.SolveArgsForCall(0)
	assert.Equal(t, 7.0, p.Vars[0].Init)
}

func TestAdapterRelaxationFailure(t *testing.T) {
	solver := &fakes.FakeSolver{}
	a, err := NewAdapter(solver)
	require.NoError(t, err)

	out, err := a.Solve(context.Background(), gdp.NewModel("bare"), nil)
	require.NoError(t, err)
	assert.Equal(t, StatusError, out.Status)
	assert.Equal(t, `model "bare" has no continuous relaxation`, out.Message)
	assert.Equal(t, 0, solver.SolveCallCount())
}

func TestAdapterCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	solver := &fakes.FakeSolver{}
	solver.SolveCalls(func(ctx context.Context, p *nlp.Problem, o nlp.Options) (*nlp.Solution, error) {
		cancel()
		return nil, ctx.Err()
	})
	a, err := NewAdapter(solver)
	require.NoError(t, err)

	_, err = a.Solve(ctx, fixedModel(scalarProblem), nil)
	assert.Equal(t, context.Canceled, err)
}

func TestAdapterWithAugmentedLagrangian(t *testing.T) {
	solver, err := nlp.NewAugmentedLagrangian()
	require.NoError(t, err)
	a, err := NewAdapter(solver)
	require.NoError(t, err)

	m := fixedModel(func(m *gdp.Model) (*nlp.Problem, error) {
		return &nlp.Problem{
			Name:      m.Name,
			Vars:      []nlp.Var{{ID: nlp.ID("V"), Lower: 0, Upper: 10, Init: 9}},
			Objective: func(x []float64) float64 { return (x[0] - 4) * (x[0] - 4) },
		}, nil
	})
	first, err := a.Solve(context.Background(), m, nil)
	require.NoError(t, err)
	require.True(t, first.OK())
	assert.InDelta(t, 4, first.WarmStart[nlp.ID("V")], 1e-3)

	second, err := a.Solve(context.Background(), m, first.WarmStart)
	require.NoError(t, err)
	require.True(t, second.OK())
	assert.InDelta(t, first.Objective, second.Objective, 1e-6)
}
