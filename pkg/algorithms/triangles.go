package algorithms

import "github.com/dd0wney/cluso-resilience/pkg/graph"

// TriangleCountResult holds per-node triangle counts, the global count and
// local clustering coefficients.
type TriangleCountResult struct {
	PerNode                map[graph.NodeID]int
	GlobalCount            int
	ClusteringCoefficients map[graph.NodeID]float64
	// AverageClustering is the mean local coefficient over all nodes, with
	// nodes of degree below 2 contributing 0.
	AverageClustering float64
	TopNodes          []RankedNode
}

// CountTriangles counts the triangles of g. Each triangle is found once from
// its lowest handle, so GlobalCount needs no division.
func CountTriangles(g *graph.Graph) *TriangleCountResult {
	ix := graph.NewIndex(g)
	n := ix.Len()

	perHandle := make([]int, n)
	global := 0
	mark := make([]bool, n)
	for u := 0; u < n; u++ {
		for _, v := range ix.Adj[u] {
			mark[v] = true
		}
		for _, v := range ix.Adj[u] {
			if v <= u {
				continue
			}
			for _, w := range ix.Adj[v] {
				if w > v && mark[w] {
					global++
					perHandle[u]++
					perHandle[v]++
					perHandle[w]++
				}
			}
		}
		for _, v := range ix.Adj[u] {
			mark[v] = false
		}
	}

	result := &TriangleCountResult{
		PerNode:                make(map[graph.NodeID]int, n),
		GlobalCount:            global,
		ClusteringCoefficients: make(map[graph.NodeID]float64, n),
	}
	scores := make(map[graph.NodeID]float64, n)
	sum := 0.0
	for h, id := range ix.IDs {
		result.PerNode[id] = perHandle[h]
		scores[id] = float64(perHandle[h])

		k := ix.Degree(h)
		if k < 2 {
			result.ClusteringCoefficients[id] = 0
			continue
		}
		cc := float64(perHandle[h]) / float64(k*(k-1)/2)
		result.ClusteringCoefficients[id] = cc
		sum += cc
	}
	if n > 0 {
		result.AverageClustering = sum / float64(n)
	}
	result.TopNodes = TopNodes(scores, 10)
	return result
}
