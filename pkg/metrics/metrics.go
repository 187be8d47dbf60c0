package metrics

import (
	"runtime"
	"time"
)

// Status label values
const (
	StatusSuccess = "success"
	StatusError   = "error"
)

// RecordHTTPRequest records an HTTP request with its duration
func (r *Registry) RecordHTTPRequest(method, path, status string, duration time.Duration) {
	r.HTTPRequestsTotal.WithLabelValues(method, path, status).Inc()
	r.HTTPRequestDuration.WithLabelValues(method, path, status).Observe(duration.Seconds())
}

// RecordResponseSize observes the size of one response body
func (r *Registry) RecordResponseSize(method, path string, size float64) {
	r.HTTPResponseSizeBytes.WithLabelValues(method, path).Observe(size)
}

// IncHTTPRequestsInFlight marks a request as started
func (r *Registry) IncHTTPRequestsInFlight() {
	r.HTTPRequestsInFlight.Inc()
}

// DecHTTPRequestsInFlight marks a request as finished
func (r *Registry) DecHTTPRequestsInFlight() {
	r.HTTPRequestsInFlight.Dec()
}

// RecordAnalysis records one analysis operation
func (r *Registry) RecordAnalysis(operation string, err error, duration time.Duration) {
	status := StatusSuccess
	if err != nil {
		status = StatusError
	}
	r.AnalysisOperationsTotal.WithLabelValues(operation, status).Inc()
	r.AnalysisOperationDuration.WithLabelValues(operation).Observe(duration.Seconds())
}

// RecordCurve stores the robustness index of the latest curve for strategy
func (r *Registry) RecordCurve(strategy string, rIndex float64, rankFallbacks int) {
	r.RobustnessIndex.WithLabelValues(strategy).Set(rIndex)
	if rankFallbacks > 0 {
		r.RankFallbacksTotal.WithLabelValues(strategy).Add(float64(rankFallbacks))
	}
}

// RecordReinforcement counts added edges and, when set, the fallback
func (r *Registry) RecordReinforcement(method string, added int, fallback bool) {
	r.EdgesAddedTotal.WithLabelValues(method).Add(float64(added))
	if fallback {
		r.DefenseFallbacksTotal.WithLabelValues(method).Inc()
	}
}

// RecordSwaps counts the work of one swap optimization
func (r *Registry) RecordSwaps(accepted, evaluations int) {
	r.SwapsAcceptedTotal.Add(float64(accepted))
	r.REvaluationsTotal.Add(float64(evaluations))
}

// SetGraphSize updates the loaded network gauges
func (r *Registry) SetGraphSize(nodes, edges int) {
	r.GraphNodes.Set(float64(nodes))
	r.GraphEdges.Set(float64(edges))
}

// SetOverlaySize updates the attack overlay gauges
func (r *Registry) SetOverlaySize(removedNodes, removedEdges int) {
	r.GraphRemovedNodes.Set(float64(removedNodes))
	r.GraphRemovedEdges.Set(float64(removedEdges))
}

// RecordPrecomputedLookup counts a cache hit or miss
func (r *Registry) RecordPrecomputedLookup(hit bool) {
	result := "miss"
	if hit {
		result = "hit"
	}
	r.PrecomputedHits.WithLabelValues(result).Inc()
}

// UpdateSystemMetrics samples uptime, goroutines and heap size
func (r *Registry) UpdateSystemMetrics() {
	r.mu.Lock()
	defer r.mu.Unlock()

	var m runtime.MemStats
	runtime.ReadMemStats(&m)
	r.UptimeSeconds.Set(time.Since(r.started).Seconds())
	r.GoRoutines.Set(float64(runtime.NumGoroutine()))
	r.MemoryAllocBytes.Set(float64(m.Alloc))
}
