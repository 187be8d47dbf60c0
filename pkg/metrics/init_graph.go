package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

func (r *Registry) initGraphMetrics() {
	r.GraphNodes = promauto.With(r.registry).NewGauge(
		prometheus.GaugeOpts{
			Name: "resilience_graph_nodes",
			Help: "Airports in the loaded network",
		},
	)

	r.GraphEdges = promauto.With(r.registry).NewGauge(
		prometheus.GaugeOpts{
			Name: "resilience_graph_edges",
			Help: "Routes in the loaded network",
		},
	)

	r.GraphRemovedNodes = promauto.With(r.registry).NewGauge(
		prometheus.GaugeOpts{
			Name: "resilience_graph_removed_nodes",
			Help: "Airports currently removed by the attack overlay",
		},
	)

	r.GraphRemovedEdges = promauto.With(r.registry).NewGauge(
		prometheus.GaugeOpts{
			Name: "resilience_graph_removed_edges",
			Help: "Routes currently removed by the attack overlay",
		},
	)

	r.PrecomputedRegions = promauto.With(r.registry).NewGauge(
		prometheus.GaugeOpts{
			Name: "resilience_precomputed_regions",
			Help: "Regions held in the precomputed cache",
		},
	)

	r.PrecomputedHits = promauto.With(r.registry).NewCounterVec(
		prometheus.CounterOpts{
			Name: "resilience_precomputed_lookups_total",
			Help: "Precomputed cache lookups by result",
		},
		[]string{"result"},
	)
}
