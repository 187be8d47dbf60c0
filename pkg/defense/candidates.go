package defense

import (
	"math/rand"

	"github.com/dd0wney/cluso-resilience/pkg/geo"
	"github.com/dd0wney/cluso-resilience/pkg/graph"
)

// attemptsPerCandidate bounds sampling at this many draws per requested candidate
const attemptsPerCandidate = 50

// Candidate is a potential new edge. Source < Target; it never duplicates an
// existing edge.
type Candidate struct {
	Source      graph.NodeID `json:"source"`
	Target      graph.NodeID `json:"target"`
	DistanceKM  float64      `json:"distance_km,omitempty"`
	HasDistance bool         `json:"has_distance"`
	Score       float64      `json:"score"`
}

// Key returns the canonical edge key of the candidate
func (c Candidate) Key() graph.EdgeKey {
	return graph.MakeEdgeKey(c.Source, c.Target)
}

// CandidateOptions configures SampleCandidates. MaxDistanceKM <= 0 disables
// the distance cap. Distance defaults to geo.GreatCircleKM.
type CandidateOptions struct {
	Max           int
	MaxDistanceKM float64
	Seed          int64
	Distance      geo.DistanceFunc
}

// SampleCandidates draws random node pairs and keeps those that are distinct,
// not already adjacent, not already sampled, and (when both endpoints have
// coordinates) within the distance cap. It stops after Max candidates or
// 50×Max draws, so it may return fewer than Max.
func SampleCandidates(g *graph.Graph, opts CandidateOptions) []Candidate {
	nodes := g.Nodes()
	n := len(nodes)
	if n < 2 || opts.Max <= 0 {
		return nil
	}

	rng := rand.New(rand.NewSource(opts.Seed))
	seen := make(map[graph.EdgeKey]struct{})
	candidates := make([]Candidate, 0, min(opts.Max, n*(n-1)/2))

	for tries := 0; len(candidates) < opts.Max && tries < opts.Max*attemptsPerCandidate; tries++ {
		u := nodes[rng.Intn(n)]
		v := nodes[rng.Intn(n)]
		if u == v || g.HasEdge(u, v) {
			continue
		}
		key := graph.MakeEdgeKey(u, v)
		if _, dup := seen[key]; dup {
			continue
		}

		d, known := geo.NodeDistance(g, key.U, key.V, opts.Distance)
		if known && opts.MaxDistanceKM > 0 && d > opts.MaxDistanceKM {
			continue
		}

		seen[key] = struct{}{}
		candidates = append(candidates, Candidate{
			Source:      key.U,
			Target:      key.V,
			DistanceKM:  d,
			HasDistance: known,
		})
	}
	return candidates
}
