// Package metrics holds the Prometheus instruments of the resilience service.
// Every instrument is registered on a private registry so tests can create
// isolated instances.
package metrics

import (
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Registry holds all metrics for the application
type Registry struct {
	// HTTP Metrics
	HTTPRequestsTotal     *prometheus.CounterVec
	HTTPRequestDuration   *prometheus.HistogramVec
	HTTPRequestsInFlight  prometheus.Gauge
	HTTPResponseSizeBytes *prometheus.HistogramVec

	// Analysis Metrics
	AnalysisOperationsTotal   *prometheus.CounterVec
	AnalysisOperationDuration *prometheus.HistogramVec
	RobustnessIndex           *prometheus.GaugeVec
	REvaluationsTotal         prometheus.Counter
	SwapsAcceptedTotal        prometheus.Counter
	EdgesAddedTotal           *prometheus.CounterVec
	DefenseFallbacksTotal     *prometheus.CounterVec
	RankFallbacksTotal        *prometheus.CounterVec

	// Graph Metrics
	GraphNodes         prometheus.Gauge
	GraphEdges         prometheus.Gauge
	GraphRemovedNodes  prometheus.Gauge
	GraphRemovedEdges  prometheus.Gauge
	PrecomputedRegions prometheus.Gauge
	PrecomputedHits    *prometheus.CounterVec

	// System Metrics
	UptimeSeconds    prometheus.Gauge
	GoRoutines       prometheus.Gauge
	MemoryAllocBytes prometheus.Gauge

	registry *prometheus.Registry
	started  time.Time
	mu       sync.Mutex
}

var (
	defaultRegistry *Registry
	once            sync.Once
)

// DefaultRegistry returns the global metrics registry
func DefaultRegistry() *Registry {
	once.Do(func() {
		defaultRegistry = NewRegistry()
	})
	return defaultRegistry
}

// NewRegistry creates a new metrics registry with all metrics initialized
func NewRegistry() *Registry {
	r := &Registry{
		registry: prometheus.NewRegistry(),
		started:  time.Now(),
	}

	r.initHTTPMetrics()
	r.initAnalysisMetrics()
	r.initGraphMetrics()
	r.initSystemMetrics()

	return r
}

// GetPrometheusRegistry returns the underlying Prometheus registry
func (r *Registry) GetPrometheusRegistry() *prometheus.Registry {
	return r.registry
}
