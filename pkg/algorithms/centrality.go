package algorithms

import (
	"container/heap"
	"math/rand"
	"sort"

	"github.com/dd0wney/cluso-resilience/pkg/graph"
)

// BetweennessOptions configures betweenness centrality. Samples > 0 limits the
// Brandes pass to that many seeded source pivots and rescales the result; 0
// computes the exact value from every source.
type BetweennessOptions struct {
	Samples int
	Seed    int64
}

// brandesCentrality runs the Brandes accumulation from each source over the
// live handles of ix and returns raw (unnormalised) node betweenness. Every
// unordered pair is counted from both ends.
func brandesCentrality(ix *graph.Index, alive []bool, sources []int) []float64 {
	n := ix.Len()
	betweenness := make([]float64, n)

	stack := make([]int, 0, n)
	queue := make([]int, 0, n)
	predecessors := make([][]int, n)
	sigma := make([]float64, n)
	distance := make([]int, n)
	delta := make([]float64, n)

	for _, source := range sources {
		stack = stack[:0]
		for v := 0; v < n; v++ {
			predecessors[v] = predecessors[v][:0]
			sigma[v] = 0
			distance[v] = -1
			delta[v] = 0
		}

		sigma[source] = 1
		distance[source] = 0
		queue = append(queue[:0], source)

		for head := 0; head < len(queue); head++ {
			v := queue[head]
			stack = append(stack, v)

			for _, w := range ix.Adj[v] {
				if !isAlive(alive, w) {
					continue
				}
				if distance[w] < 0 {
					queue = append(queue, w)
					distance[w] = distance[v] + 1
				}
				if distance[w] == distance[v]+1 {
					sigma[w] += sigma[v]
					predecessors[w] = append(predecessors[w], v)
				}
			}
		}

		// Back-propagation of pair dependencies
		for i := len(stack) - 1; i >= 0; i-- {
			w := stack[i]
			for _, v := range predecessors[w] {
				delta[v] += (sigma[v] / sigma[w]) * (1.0 + delta[w])
			}
			if w != source {
				betweenness[w] += delta[w]
			}
		}
	}

	return betweenness
}

// BetweennessOf computes normalised betweenness centrality for the live
// handles of ix, indexed by handle. Dead handles score 0.
func BetweennessOf(ix *graph.Index, alive []bool, opts BetweennessOptions) []float64 {
	live := make([]int, 0, ix.Len())
	for h := 0; h < ix.Len(); h++ {
		if isAlive(alive, h) {
			live = append(live, h)
		}
	}
	n := len(live)
	if n == 0 {
		return make([]float64, ix.Len())
	}

	sources := live
	if opts.Samples > 0 && opts.Samples < n {
		rng := rand.New(rand.NewSource(opts.Seed))
		perm := rng.Perm(n)
		sources = make([]int, opts.Samples)
		for i := range sources {
			sources[i] = live[perm[i]]
		}
	}

	scores := brandesCentrality(ix, alive, sources)

	// Undirected normalisation: each pair was counted twice, then scaled by
	// the number of ordered pairs not involving the node. Sampled runs are
	// extrapolated by n/k.
	if n > 2 {
		scale := 1.0 / float64((n-1)*(n-2))
		if len(sources) < n {
			scale *= float64(n) / float64(len(sources))
		}
		for h := range scores {
			scores[h] *= scale
		}
	}
	return scores
}

// BetweennessCentrality computes betweenness centrality for all nodes of g.
// Measures how often a node lies on shortest paths between other nodes.
func BetweennessCentrality(g *graph.Graph, opts BetweennessOptions) map[graph.NodeID]float64 {
	ix := graph.NewIndex(g)
	scores := BetweennessOf(ix, nil, opts)

	out := make(map[graph.NodeID]float64, ix.Len())
	for h, id := range ix.IDs {
		out[id] = scores[h]
	}
	return out
}

// DegreeCentrality returns each node's degree as a float score
func DegreeCentrality(g *graph.Graph) map[graph.NodeID]float64 {
	out := make(map[graph.NodeID]float64, g.NodeCount())
	for _, id := range g.Nodes() {
		out[id] = float64(g.Degree(id))
	}
	return out
}

// RankedNode represents a node with its score
type RankedNode struct {
	NodeID graph.NodeID `json:"node_id"`
	Score  float64      `json:"score"`
}

// rankedNodeHeap implements a min-heap for RankedNode by score. The node with
// the larger id counts as smaller on ties so that it is evicted first.
type rankedNodeHeap []RankedNode

func (h rankedNodeHeap) Len() int { return len(h) }
func (h rankedNodeHeap) Less(i, j int) bool {
	if h[i].Score != h[j].Score {
		return h[i].Score < h[j].Score
	}
	return h[i].NodeID > h[j].NodeID
}
func (h rankedNodeHeap) Swap(i, j int) { h[i], h[j] = h[j], h[i] }

func (h *rankedNodeHeap) Push(x any) {
	*h = append(*h, x.(RankedNode))
}

func (h *rankedNodeHeap) Pop() any {
	old := *h
	n := len(old)
	x := old[n-1]
	*h = old[0 : n-1]
	return x
}

// TopNodes returns the n highest-scoring nodes, descending by score with ties
// broken by ascending id. Time complexity: O(len(scores) log n).
func TopNodes(scores map[graph.NodeID]float64, n int) []RankedNode {
	if n <= 0 {
		return nil
	}

	h := make(rankedNodeHeap, 0, n)
	heap.Init(&h)

	for nodeID, score := range scores {
		rn := RankedNode{NodeID: nodeID, Score: score}
		if h.Len() < n {
			heap.Push(&h, rn)
		} else if worse(h[0], rn) {
			heap.Pop(&h)
			heap.Push(&h, rn)
		}
	}

	result := make([]RankedNode, h.Len())
	for i := h.Len() - 1; i >= 0; i-- {
		result[i] = heap.Pop(&h).(RankedNode)
	}

	sort.SliceStable(result, func(i, j int) bool {
		if result[i].Score != result[j].Score {
			return result[i].Score > result[j].Score
		}
		return result[i].NodeID < result[j].NodeID
	})
	return result
}

// worse reports whether a ranks below b
func worse(a, b RankedNode) bool {
	if a.Score != b.Score {
		return a.Score < b.Score
	}
	return a.NodeID > b.NodeID
}

// ArgMax returns the live handle with the highest score, ties broken by the
// smallest handle (and so the smallest id). Returns -1 when nothing is live.
func ArgMax(scores []float64, alive []bool) int {
	best := -1
	for h, s := range scores {
		if !isAlive(alive, h) {
			continue
		}
		if best < 0 || s > scores[best] {
			best = h
		}
	}
	return best
}
