package algorithms

import (
	"github.com/dd0wney/cluso-resilience/pkg/graph"
)

// ComponentLabels assigns a component number to every live handle. Dead
// handles (alive[h] == false) get -1; a nil alive slice means every handle is
// live. Components are numbered in order of their smallest handle, which is
// also their smallest node id, so label 0 always holds the smallest id.
func ComponentLabels(ix *graph.Index, alive []bool) (labels []int, sizes []int) {
	n := ix.Len()
	labels = make([]int, n)
	for h := range labels {
		labels[h] = -1
	}

	queue := make([]int, 0, n)
	for start := 0; start < n; start++ {
		if labels[start] >= 0 || !isAlive(alive, start) {
			continue
		}

		label := len(sizes)
		labels[start] = label
		size := 0
		queue = append(queue[:0], start)

		for len(queue) > 0 {
			v := queue[0]
			queue = queue[1:]
			size++

			for _, w := range ix.Adj[v] {
				if labels[w] < 0 && isAlive(alive, w) {
					labels[w] = label
					queue = append(queue, w)
				}
			}
		}
		sizes = append(sizes, size)
	}

	return labels, sizes
}

// LargestComponentHandles returns the handles of the largest live component in
// ascending order. Ties go to the component holding the smallest node id.
func LargestComponentHandles(ix *graph.Index, alive []bool) []int {
	labels, sizes := ComponentLabels(ix, alive)
	best := largestLabel(sizes)
	if best < 0 {
		return nil
	}

	out := make([]int, 0, sizes[best])
	for h, l := range labels {
		if l == best {
			out = append(out, h)
		}
	}
	return out
}

// LargestComponentSize returns the size of the largest live component
func LargestComponentSize(ix *graph.Index, alive []bool) int {
	_, sizes := ComponentLabels(ix, alive)
	if best := largestLabel(sizes); best >= 0 {
		return sizes[best]
	}
	return 0
}

func largestLabel(sizes []int) int {
	best := -1
	for l, s := range sizes {
		// strict comparison keeps the earliest (smallest-id) component on ties
		if best < 0 || s > sizes[best] {
			best = l
		}
	}
	return best
}

// ConnectedComponents returns every component as ascending node ids, ordered
// by smallest member.
func ConnectedComponents(g *graph.Graph) [][]graph.NodeID {
	ix := graph.NewIndex(g)
	labels, sizes := ComponentLabels(ix, nil)

	comps := make([][]graph.NodeID, len(sizes))
	for l, s := range sizes {
		comps[l] = make([]graph.NodeID, 0, s)
	}
	for h, l := range labels {
		comps[l] = append(comps[l], ix.IDs[h])
	}
	return comps
}

// ComponentCount returns the number of connected components (0 for an empty graph)
func ComponentCount(g *graph.Graph) int {
	_, sizes := ComponentLabels(graph.NewIndex(g), nil)
	return len(sizes)
}

// LargestComponent returns the node set of the largest connected component.
// An empty graph yields an empty set.
func LargestComponent(g *graph.Graph) graph.NodeSet {
	ix := graph.NewIndex(g)
	handles := LargestComponentHandles(ix, nil)

	set := make(graph.NodeSet, len(handles))
	for _, h := range handles {
		set.Add(ix.IDs[h])
	}
	return set
}

// LargestComponentGraph returns a copy of the subgraph induced by the largest component
func LargestComponentGraph(g *graph.Graph) *graph.Graph {
	return g.Subgraph(LargestComponent(g))
}

// NormalizedComponentSize returns |LCC| / |V|, or 0 for an empty graph
func NormalizedComponentSize(g *graph.Graph) float64 {
	return NormalizedComponentSizeOf(g, g.NodeCount())
}

// NormalizedComponentSizeOf returns |LCC| / n0. Robustness curves use the
// original node count as n0 so curves from different graph states compare.
func NormalizedComponentSizeOf(g *graph.Graph, n0 int) float64 {
	if n0 <= 0 {
		return 0
	}
	return float64(LargestComponentSize(graph.NewIndex(g), nil)) / float64(n0)
}

func isAlive(alive []bool, h int) bool {
	return alive == nil || alive[h]
}
