package health

import (
	"encoding/json"
	"net/http"
)

// Handler serves probe p as JSON. /health answers 200 while degraded so
// dashboards can still read the details; readiness and liveness are strict.
func (hc *HealthChecker) Handler(p Probe) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		response := hc.Run(p)

		code := http.StatusOK
		switch {
		case response.Status == StatusUnhealthy:
			code = http.StatusServiceUnavailable
		case response.Status == StatusDegraded && p != ProbeHealth:
			code = http.StatusServiceUnavailable
		}

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(code)
		_ = json.NewEncoder(w).Encode(response)
	}
}

// HTTPHandler serves /health
func (hc *HealthChecker) HTTPHandler() http.HandlerFunc { return hc.Handler(ProbeHealth) }

// ReadinessHandler serves the readiness probe
func (hc *HealthChecker) ReadinessHandler() http.HandlerFunc { return hc.Handler(ProbeReady) }

// LivenessHandler serves the liveness probe
func (hc *HealthChecker) LivenessHandler() http.HandlerFunc { return hc.Handler(ProbeLive) }
