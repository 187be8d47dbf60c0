package health

import (
	"runtime"
	"time"
)

// Common health check functions

// SimpleCheck creates a simple health check that always returns healthy
func SimpleCheck(name string) Check {
	return Check{
		Name:        name,
		Status:      StatusHealthy,
		LastChecked: time.Now(),
	}
}

// GraphCheck reports whether the route network is loaded
func GraphCheck(getSize func() (nodes, edges int)) CheckFunc {
	return func() Check {
		check := Check{
			Name:    "graph",
			Details: make(map[string]any),
		}

		nodes, edges := getSize()
		check.Details["nodes"] = nodes
		check.Details["edges"] = edges

		if nodes == 0 {
			check.Status = StatusUnhealthy
			check.Message = "Graph not loaded"
		} else {
			check.Status = StatusHealthy
			check.Message = "Graph loaded"
		}

		return check
	}
}

// OverlayCheck reports how much of the network the attack overlay removed.
// Removing more than half of the airports is reported as degraded.
func OverlayCheck(getState func() (removedNodes, removedEdges, totalNodes int)) CheckFunc {
	return func() Check {
		check := Check{
			Name:    "attack_overlay",
			Details: make(map[string]any),
		}

		removedNodes, removedEdges, totalNodes := getState()
		check.Details["removed_nodes"] = removedNodes
		check.Details["removed_edges"] = removedEdges

		switch {
		case removedNodes == 0 && removedEdges == 0:
			check.Status = StatusHealthy
			check.Message = "No removals"
		case totalNodes > 0 && removedNodes*2 > totalNodes:
			check.Status = StatusDegraded
			check.Message = "Most airports removed"
		default:
			check.Status = StatusHealthy
			check.Message = "Removals active"
		}

		return check
	}
}

// PrecomputedCheck reports the state of the region cache. An empty cache is
// degraded: impact reports are still served, computed on demand.
func PrecomputedCheck(getState func() (regions int, path string)) CheckFunc {
	return func() Check {
		check := Check{
			Name:    "precomputed",
			Details: make(map[string]any),
		}

		regions, path := getState()
		check.Details["regions"] = regions
		check.Details["path"] = path

		if regions == 0 {
			check.Status = StatusDegraded
			check.Message = "No precomputed regions"
		} else {
			check.Status = StatusHealthy
			check.Message = "Precomputed regions available"
		}

		return check
	}
}

// MemoryCheck creates a health check for memory usage
func MemoryCheck(getUsage func() (alloc, sys uint64)) CheckFunc {
	return func() Check {
		check := Check{
			Name:    "memory",
			Details: make(map[string]any),
		}

		alloc, sys := getUsage()

		check.Details["alloc_bytes"] = alloc
		check.Details["sys_bytes"] = sys

		usagePercent := 0.0
		if sys > 0 {
			usagePercent = float64(alloc) / float64(sys) * 100
		}

		if usagePercent > 90 {
			check.Status = StatusDegraded
			check.Message = "High memory usage"
		} else {
			check.Status = StatusHealthy
			check.Message = "Memory usage normal"
		}

		return check
	}
}

// RuntimeMemory reads heap allocation and memory obtained from the OS
func RuntimeMemory() (alloc, sys uint64) {
	var m runtime.MemStats
	runtime.ReadMemStats(&m)
	return m.Alloc, m.Sys
}
