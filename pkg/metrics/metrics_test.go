package metrics

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestEmitters(t *testing.T) {
	before := testutil.ToFloat64(subproblemSolvesTotal.WithLabelValues("ok"))
	EmitSubproblemSolve("ok", time.Millisecond)
	assert.Equal(t, before+1, testutil.ToFloat64(subproblemSolvesTotal.WithLabelValues("ok")))

	before = testutil.ToFloat64(neighborsFilteredTotal.WithLabelValues("bounds"))
	EmitNeighborFiltered("bounds")
	EmitNeighborFiltered("bounds")
	assert.Equal(t, before+2, testutil.ToFloat64(neighborsFilteredTotal.WithLabelValues("bounds")))

	SetIncumbentObjective(9.5)
	assert.Equal(t, 9.5, testutil.ToFloat64(incumbentObjective))

	before = testutil.ToFloat64(movesTotal.WithLabelValues("explore"))
	EmitMove("explore")
	assert.Equal(t, before+1, testutil.ToFloat64(movesTotal.WithLabelValues("explore")))
}

func TestRegisterDSDAThreadSafety(t *testing.T) {
	done := make(chan struct{})
	for i := 0; i < 100; i++ {
		go func(ii int) {
			defer func() { done <- struct{}{} }()
			EmitSubproblemSolve("infeasible", time.Duration(ii))
		}(i)
	}
	for i := 0; i < 100; i++ {
		<-done
	}
	assert.GreaterOrEqual(t, testutil.CollectAndCount(subproblemSolvesTotal), 1)
}
