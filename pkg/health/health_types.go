// Package health reports liveness and readiness of the analysis server: the
// route network is loaded, the attack overlay leaves something to analyse,
// and the precomputed region cache is available.
package health

import (
	"sync"
	"time"
)

// Status represents the health status of a component
type Status string

const (
	StatusHealthy   Status = "healthy"
	StatusDegraded  Status = "degraded"
	StatusUnhealthy Status = "unhealthy"
)

// Check represents a health check for a specific component
type Check struct {
	Name        string         `json:"name"`
	Status      Status         `json:"status"`
	Message     string         `json:"message,omitempty"`
	Details     map[string]any `json:"details,omitempty"`
	LastChecked time.Time      `json:"last_checked"`
	Duration    time.Duration  `json:"duration_ms"`
}

// CheckFunc is a function that performs a health check
type CheckFunc func() Check

// Probe names a set of checks served on one endpoint
type Probe int

const (
	ProbeHealth Probe = iota
	ProbeReady
	ProbeLive
	probeCount
)

// HealthChecker manages health checks for the analysis server
type HealthChecker struct {
	mu      sync.RWMutex
	probes  [probeCount]map[string]CheckFunc
	started time.Time
	version string
}

// Response represents the overall health response
type Response struct {
	Status    Status           `json:"status"`
	Timestamp time.Time        `json:"timestamp"`
	Checks    map[string]Check `json:"checks"`
	Uptime    float64          `json:"uptime_seconds"`
	Version   string           `json:"version,omitempty"`
}
