package api

import (
	"github.com/dd0wney/cluso-resilience/pkg/algorithms"
	"github.com/dd0wney/cluso-resilience/pkg/analysis"
	"github.com/dd0wney/cluso-resilience/pkg/attack"
	"github.com/dd0wney/cluso-resilience/pkg/geo"
	"github.com/dd0wney/cluso-resilience/pkg/graph"
	"github.com/dd0wney/cluso-resilience/pkg/redundancy"
)

// ErrorResponse represents an error response
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
	Code    int    `json:"code"`
}

// OverlayResponse acknowledges a change to the attack overlay
type OverlayResponse struct {
	Success      bool          `json:"success"`
	NodeID       *graph.NodeID `json:"node_id,omitempty"`
	Source       *graph.NodeID `json:"source,omitempty"`
	Target       *graph.NodeID `json:"target,omitempty"`
	RemovedNodes int           `json:"removed_nodes"`
	RemovedEdges int           `json:"removed_edges"`
}

// RemovedNode describes a removed airport
type RemovedNode struct {
	ID      graph.NodeID `json:"id"`
	Name    string       `json:"name"`
	City    string       `json:"city"`
	Country string       `json:"country"`
	Code    string       `json:"iata"`
	Type    string       `json:"type"`
}

// RemovedEdge describes a removed route
type RemovedEdge struct {
	Source     graph.NodeID `json:"source"`
	Target     graph.NodeID `json:"target"`
	SourceName string       `json:"source_name"`
	TargetName string       `json:"target_name"`
	SourceCode string       `json:"source_iata"`
	TargetCode string       `json:"target_iata"`
	Type       string       `json:"type"`
}

// RemovedResponse lists the overlay contents
type RemovedResponse struct {
	Nodes []RemovedNode `json:"nodes"`
	Edges []RemovedEdge `json:"edges"`
}

// Airport is one entry of GET /airports. Coordinates are null when unknown.
type Airport struct {
	ID      graph.NodeID `json:"id"`
	Name    string       `json:"name"`
	City    string       `json:"city"`
	Country string       `json:"country"`
	Code    string       `json:"iata"`
	ICAO    string       `json:"icao,omitempty"`
	Lat     *float64     `json:"lat"`
	Lon     *float64     `json:"lon"`
	Degree  int          `json:"degree"`
}

// AirportsResponse wraps the airport list
type AirportsResponse struct {
	Airports []Airport `json:"airports"`
}

// SimulateResponse is the result of POST /simulate
type SimulateResponse struct {
	attack.SimulateReport
	LegacyName string  `json:"strategy_name"`
	RIndex     float64 `json:"r_index"`
	Nodes      int     `json:"nodes"`
}

// ImpactSource tells whether an impact report came from the cache
type ImpactSource string

const (
	SourcePrecomputed ImpactSource = "precomputed"
	SourceComputed    ImpactSource = "computed"
)

// ImpactResponse is the result of GET /attack/impact
type ImpactResponse struct {
	Source     ImpactSource `json:"source"`
	Region     string       `json:"region,omitempty"`
	RegionName string       `json:"region_name,omitempty"`
	RunID      string       `json:"run_id,omitempty"`
	BBox       *geo.BBox    `json:"bbox,omitempty"`
	analysis.AttackImpact
}

// CustomImpactResponse is the result of GET /attack/impact-custom
type CustomImpactResponse struct {
	Baseline    algorithms.GraphStats `json:"baseline"`
	Strategy    attack.Strategy       `json:"strategy"`
	MaxFraction float64               `json:"max_fraction"`
	BBox        *geo.BBox             `json:"bbox,omitempty"`
	RIndex      float64               `json:"r_index"`
	Result      attack.SimulateReport `json:"result"`
}

// RedundancyResponse wraps the advisor output
type RedundancyResponse struct {
	Suggestions []redundancy.Suggestion `json:"suggestions"`
}
