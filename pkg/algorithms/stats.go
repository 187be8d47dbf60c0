package algorithms

import (
	"github.com/dd0wney/cluso-resilience/pkg/graph"
)

// GraphStats is the summary reported for a graph snapshot. ASPL is always 0:
// exact average shortest path length is not computed.
type GraphStats struct {
	Directed   bool    `json:"directed"`
	Nodes      int     `json:"nodes"`
	Edges      int     `json:"edges"`
	LCCNorm    float64 `json:"lcc_norm"`
	Diameter   int     `json:"diameter"`
	ASPL       float64 `json:"aspl"`
	Components int     `json:"components"`
	Triangles  int     `json:"triangles,omitempty"`
	Clustering float64 `json:"avg_clustering,omitempty"`
}

// Stats computes the summary of g, including its triangle count and average
// clustering. It does not modify g, so repeated calls on an unchanged graph
// return identical values.
func Stats(g *graph.Graph) GraphStats {
	stats := StatsOf(graph.NewIndex(g), nil)
	tc := CountTriangles(g)
	stats.Triangles = tc.GlobalCount
	stats.Clustering = tc.AverageClustering
	return stats
}

// StatsOf computes the summary over the live handles of ix, without the
// triangle census. LCCNorm is relative to the live node count.
func StatsOf(ix *graph.Index, alive []bool) GraphStats {
	nodes, edges := liveCounts(ix, alive)
	_, sizes := ComponentLabels(ix, alive)

	stats := GraphStats{
		Nodes:      nodes,
		Edges:      edges,
		Components: len(sizes),
	}
	if best := largestLabel(sizes); best >= 0 && nodes > 0 {
		stats.LCCNorm = float64(sizes[best]) / float64(nodes)
	}
	stats.Diameter = DiameterOf(ix, alive)
	return stats
}

func liveCounts(ix *graph.Index, alive []bool) (nodes, edges int) {
	if alive == nil {
		return ix.Len(), ix.EdgeCount()
	}
	for v, nbrs := range ix.Adj {
		if !alive[v] {
			continue
		}
		nodes++
		for _, w := range nbrs {
			if v < w && alive[w] {
				edges++
			}
		}
	}
	return nodes, edges
}
