package algorithms

import (
	"math"

	"github.com/dd0wney/cluso-resilience/pkg/graph"
)

// PageRankOptions configures PageRank algorithm
type PageRankOptions struct {
	DampingFactor float64 // Usually 0.85
	MaxIterations int
	Tolerance     float64 // Convergence threshold
}

// DefaultPageRankOptions returns default PageRank configuration
func DefaultPageRankOptions() PageRankOptions {
	return PageRankOptions{
		DampingFactor: 0.85,
		MaxIterations: 100,
		Tolerance:     1e-6,
	}
}

// PageRankResult contains PageRank scores for all nodes
type PageRankResult struct {
	Scores     map[graph.NodeID]float64 // Node ID -> PageRank score
	Iterations int                      // Number of iterations performed
	Converged  bool                     // Whether algorithm converged
	TopNodes   []RankedNode             // Top 10 nodes by score
}

// PageRankOf runs the power iteration over the live handles of ix, treating
// every undirected edge as a pair of arcs. Mass held by isolated nodes is
// redistributed uniformly. Scores are indexed by handle and sum to 1 over the
// live handles.
func PageRankOf(ix *graph.Index, alive []bool, opts PageRankOptions) (scores []float64, iterations int, converged bool) {
	n := ix.Len()
	scores = make([]float64, n)

	live := 0
	degree := make([]int, n)
	for v := 0; v < n; v++ {
		if !isAlive(alive, v) {
			continue
		}
		live++
		for _, w := range ix.Adj[v] {
			if isAlive(alive, w) {
				degree[v]++
			}
		}
	}
	if live == 0 {
		return scores, 0, true
	}

	// Initialize PageRank scores (uniform distribution)
	initial := 1.0 / float64(live)
	for v := 0; v < n; v++ {
		if isAlive(alive, v) {
			scores[v] = initial
		}
	}

	next := make([]float64, n)
	d := opts.DampingFactor
	for iterations < opts.MaxIterations {
		iterations++

		dangling := 0.0
		for v := 0; v < n; v++ {
			if isAlive(alive, v) && degree[v] == 0 {
				dangling += scores[v]
			}
		}
		base := (1.0-d)/float64(live) + d*dangling/float64(live)

		for v := 0; v < n; v++ {
			if !isAlive(alive, v) {
				continue
			}
			sum := 0.0
			for _, w := range ix.Adj[v] {
				if isAlive(alive, w) {
					sum += scores[w] / float64(degree[w])
				}
			}
			next[v] = base + d*sum
		}

		// Check for convergence
		maxDiff := 0.0
		for v := 0; v < n; v++ {
			if diff := math.Abs(next[v] - scores[v]); diff > maxDiff {
				maxDiff = diff
			}
		}

		scores, next = next, scores
		if maxDiff < opts.Tolerance {
			converged = true
			break
		}
	}

	// Normalize scores to sum to 1
	sum := 0.0
	for _, s := range scores {
		sum += s
	}
	if sum > 0 {
		for v := range scores {
			scores[v] /= sum
		}
	}

	return scores, iterations, converged
}

// PageRank computes PageRank scores for all nodes in the graph
func PageRank(g *graph.Graph, opts PageRankOptions) *PageRankResult {
	ix := graph.NewIndex(g)
	vec, iterations, converged := PageRankOf(ix, nil, opts)

	scores := make(map[graph.NodeID]float64, ix.Len())
	for h, id := range ix.IDs {
		scores[id] = vec[h]
	}

	return &PageRankResult{
		Scores:     scores,
		Iterations: iterations,
		Converged:  converged,
		TopNodes:   TopNodes(scores, 10),
	}
}

// GetTopNodesByPageRank returns top N nodes by PageRank score
func (pr *PageRankResult) GetTopNodesByPageRank(n int) []RankedNode {
	if n > len(pr.TopNodes) {
		return pr.TopNodes
	}
	return pr.TopNodes[:n]
}

// GetNodeRank returns the PageRank score for a specific node
func (pr *PageRankResult) GetNodeRank(nodeID graph.NodeID) float64 {
	return pr.Scores[nodeID]
}
