package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

const (
	StatusLabel = "status"
	FilterLabel = "filter"
	PhaseLabel  = "phase"
)

// To add new metrics:
// 1. Register new metrics in RegisterDSDA() below.
// 2. Add appropriate metric updates in the search or the solver adapter.
var (
	subproblemSolvesTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "dsda_subproblem_solves_total",
			Help: "Number of continuous subproblem solves by outcome status",
		},
		[]string{StatusLabel},
	)

	subproblemDurationSummary = prometheus.NewSummaryVec(
		prometheus.SummaryOpts{
			Name:       "dsda_subproblem_duration_seconds",
			Help:       "The duration of a continuous subproblem solve",
			Objectives: map[float64]float64{0.95: 0.05, 0.9: 0.01, 0.99: 0.001},
		},
		[]string{StatusLabel},
	)

	neighborsFilteredTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "dsda_neighbors_filtered_total",
			Help: "Number of candidate points rejected before evaluation, by filter",
		},
		[]string{FilterLabel},
	)

	incumbentObjective = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "dsda_incumbent_objective",
			Help: "Objective value of the current incumbent point",
		},
	)

	movesTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "dsda_moves_total",
			Help: "Number of accepted moves by search phase",
		},
		[]string{PhaseLabel},
	)
)

func RegisterDSDA() {
	prometheus.MustRegister(subproblemSolvesTotal)
	prometheus.MustRegister(subproblemDurationSummary)
	prometheus.MustRegister(neighborsFilteredTotal)
	prometheus.MustRegister(incumbentObjective)
	prometheus.MustRegister(movesTotal)
}

// EmitSubproblemSolve records one solve with the given outcome status.
func EmitSubproblemSolve(status string, duration time.Duration) {
	subproblemSolvesTotal.WithLabelValues(status).Inc()
	subproblemDurationSummary.WithLabelValues(status).Observe(duration.Seconds())
}

func EmitNeighborFiltered(filter string) {
	neighborsFilteredTotal.WithLabelValues(filter).Inc()
}

func SetIncumbentObjective(objective float64) {
	incumbentObjective.Set(objective)
}

func EmitMove(phase string) {
	movesTotal.WithLabelValues(phase).Inc()
}
