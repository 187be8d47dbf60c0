package attack

import (
	"math/rand"
	"sort"

	"github.com/dd0wney/cluso-resilience/pkg/algorithms"
	"github.com/dd0wney/cluso-resilience/pkg/graph"
)

// BetweennessSampleThreshold is the live node count above which betweenness
// is estimated from BetweennessPivots sampled sources instead of all of them.
const (
	BetweennessSampleThreshold = 100
	BetweennessPivots          = 100
)

// RankOptions configures Rank.
//
// Adaptive recomputes the score after every pick on a working copy with the
// picked node removed, so later picks see cascading changes. Static mode
// scores the original graph once and walks down that list: the "naive list"
// attacker. The two modes are distinct strategies and are kept separate.
type RankOptions struct {
	Adaptive bool
	Seed     int64
}

// RankReport is an ordering plus the number of rounds that fell back to
// degree ranking because PageRank did not converge.
type RankReport struct {
	Order     []graph.NodeID `json:"order"`
	Fallbacks int            `json:"fallbacks"`
}

// Rank returns up to limit nodes in the order strategy would remove them. A
// negative limit means every node. The graph is not modified.
func Rank(g *graph.Graph, s Strategy, limit int, opts RankOptions) []graph.NodeID {
	return RankWithReport(g, s, limit, opts).Order
}

// RankWithReport is Rank plus fallback accounting
func RankWithReport(g *graph.Graph, s Strategy, limit int, opts RankOptions) RankReport {
	ix := graph.NewIndex(g)
	handles, fallbacks := rankHandles(ix, s, limit, opts)

	order := make([]graph.NodeID, len(handles))
	for i, h := range handles {
		order[i] = ix.IDs[h]
	}
	return RankReport{Order: order, Fallbacks: fallbacks}
}

func rankHandles(ix *graph.Index, s Strategy, limit int, opts RankOptions) ([]int, int) {
	n := ix.Len()
	if limit < 0 || limit > n {
		limit = n
	}
	if limit == 0 {
		return nil, 0
	}

	switch s {
	case Random:
		return randomOrder(n, limit, opts.Seed), 0
	case Degree:
		if opts.Adaptive {
			return adaptiveDegreeOrder(ix, limit), 0
		}
		return staticOrder(degreeScores(ix, nil), limit), 0
	case Betweenness:
		score := func(alive []bool, round int) []float64 {
			return betweennessScores(ix, alive, opts.Seed+int64(round))
		}
		if opts.Adaptive {
			return adaptiveOrder(ix, limit, score), 0
		}
		return staticOrder(score(nil, 0), limit), 0
	case PageRank:
		return pageRankOrder(ix, limit, opts.Adaptive)
	}
	return nil, 0
}

// randomOrder is a seeded uniform sample without replacement
func randomOrder(n, limit int, seed int64) []int {
	rng := rand.New(rand.NewSource(seed))
	return rng.Perm(n)[:limit]
}

func degreeScores(ix *graph.Index, alive []bool) []float64 {
	scores := make([]float64, ix.Len())
	for v, nbrs := range ix.Adj {
		if alive != nil && !alive[v] {
			continue
		}
		for _, w := range nbrs {
			if alive == nil || alive[w] {
				scores[v]++
			}
		}
	}
	return scores
}

func betweennessScores(ix *graph.Index, alive []bool, seed int64) []float64 {
	opts := algorithms.BetweennessOptions{Seed: seed}
	if liveCount(ix, alive) > BetweennessSampleThreshold {
		opts.Samples = BetweennessPivots
	}
	return algorithms.BetweennessOf(ix, alive, opts)
}

// staticOrder sorts handles by descending score, ties by ascending handle
func staticOrder(scores []float64, limit int) []int {
	order := make([]int, len(scores))
	for i := range order {
		order[i] = i
	}
	sort.SliceStable(order, func(i, j int) bool {
		return scores[order[i]] > scores[order[j]]
	})
	return order[:limit]
}

// adaptiveDegreeOrder keeps live degrees up to date incrementally instead of
// recounting after each pick.
func adaptiveDegreeOrder(ix *graph.Index, limit int) []int {
	alive := allAlive(ix.Len())
	degree := degreeScores(ix, nil)

	order := make([]int, 0, limit)
	for len(order) < limit {
		target := algorithms.ArgMax(degree, alive)
		if target < 0 {
			break
		}
		order = append(order, target)
		alive[target] = false
		for _, w := range ix.Adj[target] {
			degree[w]--
		}
	}
	return order
}

// adaptiveOrder picks the arg-max of score over the live handles, removes it
// and rescores, until limit picks have been made.
func adaptiveOrder(ix *graph.Index, limit int, score func(alive []bool, round int) []float64) []int {
	alive := allAlive(ix.Len())
	order := make([]int, 0, limit)

	for round := 0; len(order) < limit; round++ {
		target := algorithms.ArgMax(score(alive, round), alive)
		if target < 0 {
			break
		}
		order = append(order, target)
		alive[target] = false
	}
	return order
}

// pageRank is swapped in tests to force non-convergence
var pageRank = algorithms.PageRankOf

// pageRankOrder ranks by PageRank with damping 0.85. Any round whose power
// iteration does not converge uses degree instead and is counted.
func pageRankOrder(ix *graph.Index, limit int, adaptive bool) ([]int, int) {
	opts := algorithms.DefaultPageRankOptions()
	fallbacks := 0

	score := func(alive []bool, _ int) []float64 {
		scores, _, converged := pageRank(ix, alive, opts)
		if !converged {
			fallbacks++
			return degreeScores(ix, alive)
		}
		return scores
	}

	if adaptive {
		order := adaptiveOrder(ix, limit, score)
		return order, fallbacks
	}
	order := staticOrder(score(nil, 0), limit)
	return order, fallbacks
}

func allAlive(n int) []bool {
	alive := make([]bool, n)
	for i := range alive {
		alive[i] = true
	}
	return alive
}

func liveCount(ix *graph.Index, alive []bool) int {
	if alive == nil {
		return ix.Len()
	}
	n := 0
	for _, a := range alive {
		if a {
			n++
		}
	}
	return n
}
