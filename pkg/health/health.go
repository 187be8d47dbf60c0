package health

import (
	"slices"
	"time"

	"golang.org/x/exp/maps"
)

// NewHealthChecker creates a new health checker reporting version
func NewHealthChecker(version string) *HealthChecker {
	hc := &HealthChecker{started: time.Now(), version: version}
	for p := range hc.probes {
		hc.probes[p] = make(map[string]CheckFunc)
	}
	return hc
}

// Register adds a check to one probe, replacing any check of the same name
func (hc *HealthChecker) Register(p Probe, name string, check CheckFunc) {
	hc.mu.Lock()
	defer hc.mu.Unlock()
	hc.probes[p][name] = check
}

// RegisterCheck registers a check reported on /health
func (hc *HealthChecker) RegisterCheck(name string, check CheckFunc) {
	hc.Register(ProbeHealth, name, check)
}

// RegisterReadinessCheck registers a readiness check
func (hc *HealthChecker) RegisterReadinessCheck(name string, check CheckFunc) {
	hc.Register(ProbeReady, name, check)
}

// RegisterLivenessCheck registers a liveness check
func (hc *HealthChecker) RegisterLivenessCheck(name string, check CheckFunc) {
	hc.Register(ProbeLive, name, check)
}

// Check runs the /health checks
func (hc *HealthChecker) Check() Response { return hc.Run(ProbeHealth) }

// CheckReadiness runs the readiness checks
func (hc *HealthChecker) CheckReadiness() Response { return hc.Run(ProbeReady) }

// CheckLiveness runs the liveness checks
func (hc *HealthChecker) CheckLiveness() Response { return hc.Run(ProbeLive) }

// Run executes every check of probe p in name order. The overall status is
// the worst individual status.
func (hc *HealthChecker) Run(p Probe) Response {
	hc.mu.RLock()
	checks := hc.probes[p]
	names := maps.Keys(checks)
	slices.Sort(names)
	funcs := make([]CheckFunc, len(names))
	for i, name := range names {
		funcs[i] = checks[name]
	}
	hc.mu.RUnlock()

	response := Response{
		Status:    StatusHealthy,
		Timestamp: time.Now(),
		Checks:    make(map[string]Check, len(names)),
		Uptime:    time.Since(hc.started).Seconds(),
		Version:   hc.version,
	}
	for i, name := range names {
		start := time.Now()
		check := funcs[i]()
		check.Duration = time.Since(start)
		check.LastChecked = start
		if check.Name == "" {
			check.Name = name
		}
		response.Checks[name] = check
		response.Status = worse(response.Status, check.Status)
	}
	return response
}

func severity(s Status) int {
	switch s {
	case StatusUnhealthy:
		return 2
	case StatusDegraded:
		return 1
	}
	return 0
}

func worse(a, b Status) Status {
	if severity(b) > severity(a) {
		return b
	}
	return a
}
