package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

func (r *Registry) initAnalysisMetrics() {
	r.AnalysisOperationsTotal = promauto.With(r.registry).NewCounterVec(
		prometheus.CounterOpts{
			Name: "resilience_analysis_operations_total",
			Help: "Total number of analysis operations",
		},
		[]string{"operation", "status"},
	)

	r.AnalysisOperationDuration = promauto.With(r.registry).NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "resilience_analysis_operation_duration_seconds",
			Help:    "Analysis operation latency in seconds",
			Buckets: []float64{.001, .01, .1, .5, 1, 5, 15, 60, 300},
		},
		[]string{"operation"},
	)

	r.RobustnessIndex = promauto.With(r.registry).NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "resilience_robustness_index",
			Help: "Last computed robustness index by strategy",
		},
		[]string{"strategy"},
	)

	r.REvaluationsTotal = promauto.With(r.registry).NewCounter(
		prometheus.CounterOpts{
			Name: "resilience_r_evaluations_total",
			Help: "Robustness-index evaluations performed by the swap optimizer",
		},
	)

	r.SwapsAcceptedTotal = promauto.With(r.registry).NewCounter(
		prometheus.CounterOpts{
			Name: "resilience_swaps_accepted_total",
			Help: "Edge swaps accepted by the swap optimizer",
		},
	)

	r.EdgesAddedTotal = promauto.With(r.registry).NewCounterVec(
		prometheus.CounterOpts{
			Name: "resilience_edges_added_total",
			Help: "Edges added by reinforcement, by method",
		},
		[]string{"method"},
	)

	r.DefenseFallbacksTotal = promauto.With(r.registry).NewCounterVec(
		prometheus.CounterOpts{
			Name: "resilience_defense_fallbacks_total",
			Help: "Reinforcements that fell back to hub pairing",
		},
		[]string{"method"},
	)

	r.RankFallbacksTotal = promauto.With(r.registry).NewCounterVec(
		prometheus.CounterOpts{
			Name: "resilience_rank_fallbacks_total",
			Help: "Attack ranking rounds that fell back to degree",
		},
		[]string{"strategy"},
	)
}
