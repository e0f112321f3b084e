package dsda

import (
	"bytes"
	"context"
	"fmt"
	"math"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/processdesign/dsda/pkg/gdp"
	"github.com/processdesign/dsda/pkg/nlp"
)

// grid is a two-position superstructure: X selects the first coordinate
// and Z the second, both in 1..5. The objective of a point comes from
// cost; NaN marks an infeasible point.
type grid struct {
	cost   func(p Point) float64
	forbid Point
}

func (g grid) Name() string {
	return "grid"
}

func (g grid) Build() (*gdp.Model, error) {
	m := gdp.NewModel("grid")
	k1 := gdp.NewRangeSet("k1", 1, 5)
	k2 := gdp.NewRangeSet("k2", 1, 5)
	x := m.AddBooleanFamily("X", k1)
	z := m.AddBooleanFamily("Z", k2)
	m.AddLogicalConstraint("one_x", gdp.ExactlyN(1, gdp.Vars(x.Vars()...)...))
	m.AddLogicalConstraint("one_z", gdp.ExactlyN(1, gdp.Vars(z.Vars()...)...))
	if g.forbid != nil {
		m.AddLogicalConstraint("forbidden", gdp.Not(gdp.And(x.Get(g.forbid[0]), z.Get(g.forbid[1]))))
	}
	m.AddReference(x, k1)
	m.AddReference(z, k2)
	m.SetRelaxation(func(m *gdp.Model) (*nlp.Problem, error) {
		p := Point{selected(x), selected(z)}
		return &nlp.Problem{
			Name: m.Name,
			Vars: []nlp.Var{{ID: nlp.ID("u"), Lower: 0, Upper: 100}},
			Objective: func([]float64) float64 {
				return g.cost(p)
			},
		}, nil
	})
	return m, nil
}

func selected(f *gdp.BooleanFamily) int {
	for _, v := range f.Vars() {
		if v.IsFixed() && v.Value() {
			return v.Index()[0].(int)
		}
	}
	return 0
}

// bowl has its minimum at [4,2].
func bowl(p Point) float64 {
	return math.Pow(float64(p[0]-4), 2) + math.Pow(float64(p[1]-2), 2)
}

// recordingSolver evaluates the objective at the initial point, reports
// NaN objectives as infeasible and moves u one step up from its initial
// value, so that warm starts can be followed.
type recordingSolver struct {
	mu     sync.Mutex
	points []float64
	calls  int
}

func (s *recordingSolver) Solve(_ context.Context, p *nlp.Problem, _ nlp.Options) (*nlp.Solution, error) {
	s.mu.Lock()
	s.calls++
	s.mu.Unlock()
	x := p.InitialPoint()
	obj := p.Objective(x)
	if math.IsNaN(obj) {
		return &nlp.Solution{Termination: nlp.Infeasible, X: x}, nil
	}
	x[0]++
	return &nlp.Solution{Termination: nlp.Optimal, X: x, Objective: obj}, nil
}

func (s *recordingSolver) Calls() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.calls
}

func points(route []Step) []string {
	out := make([]string, len(route))
	for i, s := range route {
		out[i] = fmt.Sprintf("%s %s %d", s.Point, s.Phase, s.Direction)
	}
	return out
}

func TestRun(t *testing.T) {
	d, err := NewDriver(grid{cost: bowl}, &recordingSolver{})
	require.NoError(t, err)

	res, err := d.Run(context.Background())
	require.NoError(t, err)

	assert.Equal(t, []string{
		"[1,1] init 0",
		"[2,1] explore 1",
		"[3,1] line-search 1",
		"[4,1] line-search 1",
		"[4,2] explore 2",
	}, points(res.Route))
	assert.Equal(t, Point{4, 2}, res.Best)
	assert.Equal(t, 0.0, res.Objective)
	assert.False(t, res.Stopped)
	assert.Equal(t, 3, res.Iterations)

	for i := 1; i < len(res.Route); i++ {
		assert.Less(t, res.Route[i].Objective, res.Route[i-1].Objective)
	}
	// Every accepted point was solved from the warm start of the
	// previous incumbent.
	assert.Equal(t, 5.0, res.WarmStart[nlp.ID("u")])
}

func TestRunTies(t *testing.T) {
	cost := func(p Point) float64 {
		if p.Equal(Point{4, 3}) || p.Equal(Point{3, 4}) {
			return 0
		}
		return 1
	}
	d, err := NewDriver(grid{cost: cost}, &recordingSolver{}, WithSeed(Point{3, 3}))
	require.NoError(t, err)

	res, err := d.Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"[3,3] init 0", "[4,3] explore 1"}, points(res.Route))
}

func TestRunTolerance(t *testing.T) {
	cost := func(p Point) float64 {
		if p.Equal(Point{2, 1}) {
			return 1 - 1e-6
		}
		return 1
	}
	d, err := NewDriver(grid{cost: cost}, &recordingSolver{})
	require.NoError(t, err)

	res, err := d.Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, Point{1, 1}, res.Best)
	assert.Len(t, res.Route, 1)
}

func TestRunParallelMatchesSequential(t *testing.T) {
	cost := func(p Point) float64 {
		return math.Abs(float64(p[0]-3)) + 2*math.Abs(float64(p[1]-5))
	}
	seq, err := NewDriver(grid{cost: cost}, &recordingSolver{})
	require.NoError(t, err)
	par, err := NewDriver(grid{cost: cost}, &recordingSolver{}, WithParallelism(4))
	require.NoError(t, err)

	want, err := seq.Run(context.Background())
	require.NoError(t, err)
	got, err := par.Run(context.Background())
	require.NoError(t, err)

	assert.Equal(t, want.Route, got.Route)
	assert.Equal(t, want.Evaluations, got.Evaluations)
}

func TestRunBoundsNeverReachSolver(t *testing.T) {
	var mu sync.Mutex
	var seen []Point
	cost := func(p Point) float64 {
		mu.Lock()
		seen = append(seen, p)
		mu.Unlock()
		return -float64(p[0] + p[1])
	}
	d, err := NewDriver(grid{cost: cost}, &recordingSolver{}, WithSeed(Point{4, 4}))
	require.NoError(t, err)

	res, err := d.Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, Point{5, 5}, res.Best)
	for _, p := range seen {
		for _, v := range p {
			assert.True(t, v >= 1 && v <= 5, "%s reached the solver", p)
		}
	}
}

type eventRecorder struct {
	events []Event
}

func (r *eventRecorder) Trace(e Event) {
	r.events = append(r.events, e)
}

func TestRunLineSearchChecksOnlyBounds(t *testing.T) {
	cost := func(p Point) float64 {
		return -float64(p[1])
	}
	rec := &eventRecorder{}
	d, err := NewDriver(grid{cost: cost}, &recordingSolver{},
		WithSeed(Point{3, 2}),
		WithFilters(Static(AsymmetryFilter{})),
		WithTracer(rec),
	)
	require.NoError(t, err)

	res, err := d.Run(context.Background())
	require.NoError(t, err)

	// [3,4] and [3,5] break the asymmetry rule but are reached along the
	// winning direction.
	assert.Equal(t, []string{
		"[3,2] init 0",
		"[3,3] explore 2",
		"[3,4] line-search 2",
		"[3,5] line-search 2",
	}, points(res.Route))
	assert.Equal(t, Point{3, 5}, res.Best)
	assert.Equal(t, -5.0, res.Objective)

	var lineSearchRejections []string
	for _, e := range rec.events {
		if e.Kind == EventFiltered && e.Phase == PhaseLineSearch {
			lineSearchRejections = append(lineSearchRejections, fmt.Sprintf("%s %s", e.Point, e.Filter))
		}
	}
	assert.Equal(t, []string{"[3,6] bounds"}, lineSearchRejections)
}

func TestCandidates(t *testing.T) {
	for _, tt := range []struct {
		name    string
		options []Option
		from    Point
		want    []int
	}{
		{name: "interior", from: Point{3, 2}, want: []int{1, 2, 3, 4}},
		{name: "interior with asymmetry", from: Point{3, 2}, options: []Option{WithFilters(Static(AsymmetryFilter{}))}, want: []int{1, 2, 3, 4}},
		{name: "diagonal with asymmetry", from: Point{3, 3}, options: []Option{WithFilters(Static(AsymmetryFilter{}))}, want: []int{1, 4}},
		{name: "corner", from: Point{5, 1}, want: []int{2, 3}},
	} {
		t.Run(tt.name, func(t *testing.T) {
			d, err := NewDriver(grid{cost: bowl}, &recordingSolver{}, tt.options...)
			require.NoError(t, err)
			var ids []int
			for _, dir := range d.Candidates(tt.from) {
				ids = append(ids, dir.ID)
			}
			assert.Equal(t, tt.want, ids)
		})
	}
}

func TestInitialization(t *testing.T) {
	t.Run("falls back when the seed is infeasible", func(t *testing.T) {
		cost := func(p Point) float64 {
			if p.Equal(Point{5, 5}) || p.Equal(Point{1, 1}) {
				return math.NaN()
			}
			return 1
		}
		d, err := NewDriver(grid{cost: cost}, &recordingSolver{}, WithSeed(Point{5, 5}))
		require.NoError(t, err)
		res, err := d.Run(context.Background())
		require.NoError(t, err)
		assert.Equal(t, Point{1, 2}, res.Route[0].Point)
	})

	t.Run("skips logically infeasible points", func(t *testing.T) {
		solver := &recordingSolver{}
		d, err := NewDriver(grid{cost: bowl, forbid: Point{1, 1}}, solver, WithSeed(Point{1, 1}), WithMaxIterations(1))
		require.NoError(t, err)
		res, err := d.Run(context.Background())
		require.NoError(t, err)
		assert.Equal(t, Point{1, 2}, res.Route[0].Point)
	})

	t.Run("rejects a seed outside the bounds", func(t *testing.T) {
		d, err := NewDriver(grid{cost: bowl}, &recordingSolver{}, WithSeed(Point{0, 1}))
		require.NoError(t, err)
		_, err = d.Run(context.Background())
		require.Error(t, err)
		assert.Contains(t, err.Error(), "invalid dsda config: seed [0,1]")
	})

	t.Run("gives up after the attempt limit", func(t *testing.T) {
		solver := &recordingSolver{}
		cost := func(Point) float64 { return math.NaN() }
		d, err := NewDriver(grid{cost: cost}, solver, WithMaxInitAttempts(3))
		require.NoError(t, err)
		_, err = d.Run(context.Background())
		assert.Equal(t, ErrNoFeasibleStart, err)
		assert.Equal(t, 3, solver.Calls())
	})
}

func TestRunMaxIterations(t *testing.T) {
	d, err := NewDriver(grid{cost: bowl}, &recordingSolver{}, WithMaxIterations(1))
	require.NoError(t, err)
	res, err := d.Run(context.Background())
	require.NoError(t, err)
	assert.True(t, res.Stopped)
	assert.Equal(t, Point{4, 1}, res.Best)
	assert.Equal(t, 1, res.Iterations)
}

func TestRunMemo(t *testing.T) {
	plain := &recordingSolver{}
	d, err := NewDriver(grid{cost: bowl}, plain)
	require.NoError(t, err)
	want, err := d.Run(context.Background())
	require.NoError(t, err)

	memo := &recordingSolver{}
	d, err = NewDriver(grid{cost: bowl}, memo, WithMemo(true))
	require.NoError(t, err)
	got, err := d.Run(context.Background())
	require.NoError(t, err)

	assert.Equal(t, want.Best, got.Best)
	assert.Less(t, memo.Calls(), plain.Calls())
	assert.Equal(t, memo.Calls(), got.Evaluations)
}

func TestRunCanceled(t *testing.T) {
	d, err := NewDriver(grid{cost: bowl}, &recordingSolver{})
	require.NoError(t, err)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = d.Run(ctx)
	assert.Equal(t, context.Canceled, err)
}

func TestNewDriverValidation(t *testing.T) {
	for _, tt := range []struct {
		option Option
		err    string
	}{
		{option: WithTolerance(-1), err: "invalid dsda config: tolerance must not be negative"},
		{option: WithParallelism(0), err: "invalid dsda config: parallelism must be at least 1"},
		{option: WithMaxInitAttempts(0), err: "invalid dsda config: at least one initialization attempt is required"},
		{option: WithMaxIterations(-1), err: "invalid dsda config: max iterations must not be negative"},
		{option: WithSolverOptions(nlp.Options{TimeLimit: -1}), err: "invalid dsda config: solver time limit must not be negative"},
	} {
		t.Run(tt.err, func(t *testing.T) {
			_, err := NewDriver(grid{cost: bowl}, &recordingSolver{}, tt.option)
			assert.EqualError(t, err, tt.err)
		})
	}
}

func TestEnumerate(t *testing.T) {
	evals, err := Enumerate(context.Background(), grid{cost: bowl, forbid: Point{5, 5}}, &recordingSolver{})
	require.NoError(t, err)
	require.Len(t, evals, 24)
	assert.Equal(t, Point{1, 1}, evals[0].Point)
	assert.Equal(t, Point{1, 2}, evals[1].Point)
	assert.Equal(t, Point{5, 4}, evals[23].Point)

	var buf bytes.Buffer
	require.NoError(t, WriteEnumeration(&buf, evals[:1]))
	assert.Equal(t, "POINT  STATUS  OBJECTIVE\n[1,1]  ok      10\n", buf.String())
}

func TestLogicFilterExplain(t *testing.T) {
	ss := grid{cost: bowl, forbid: Point{2, 3}}
	d, err := NewDriver(ss, &recordingSolver{}, WithFilters(mustFilter(t, "logic")))
	require.NoError(t, err)

	f, err := NewLogicFilter(ss, d.Reformulation())
	require.NoError(t, err)
	assert.True(t, f.Allow(Point{2, 2}))
	assert.False(t, f.Allow(Point{2, 3}))
	assert.NoError(t, f.Explain(Point{2, 2}))
	err = f.Explain(Point{2, 3})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "forbidden")

	assert.NotContains(t, d.Candidates(Point{2, 2}), Direction{ID: 2, Delta: Point{0, 1}})
}

func mustFilter(t *testing.T, name string) FilterFactory {
	f, err := FilterByName(name)
	require.NoError(t, err)
	return f
}

func TestLoggingTracer(t *testing.T) {
	var buf bytes.Buffer
	d, err := NewDriver(grid{cost: bowl}, &recordingSolver{}, WithTracer(LoggingTracer{Writer: &buf}))
	require.NoError(t, err)
	_, err = d.Run(context.Background())
	require.NoError(t, err)

	out := buf.String()
	assert.Contains(t, out, "Fixed variables at x=[1 1]\n")
	assert.Contains(t, out, "  X[1]=true\n")
	assert.Contains(t, out, "x=[1,1] status=ok objective=10\n")
	assert.Contains(t, out, "x=[0,1] rejected by bounds\n")
	assert.Contains(t, out, "move explore to x=[2,1] direction=1 objective=5\n")
	assert.Contains(t, out, "move line-search to x=[4,1] direction=1 objective=1\n")
	assert.Contains(t, out, "done at x=[4,2] objective=0\n")
}

func TestWriteRoute(t *testing.T) {
	res := &Result{Route: []Step{
		{Point: Point{1, 1}, Objective: 10, Phase: PhaseInit},
		{Point: Point{2, 1}, Objective: 5, Direction: 1, Phase: PhaseExplore},
	}}
	var buf bytes.Buffer
	require.NoError(t, res.WriteRoute(&buf))
	assert.Equal(t, ""+
		"STEP  POINT  PHASE    DIRECTION  OBJECTIVE\n"+
		"0     [1,1]  init     0          10\n"+
		"1     [2,1]  explore  1          5\n", buf.String())
}
