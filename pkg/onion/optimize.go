// Package onion rewires a graph by degree-preserving double-edge swaps,
// greedily accepting the swaps that raise the robustness index. Accepted
// swaps pull similar-degree nodes together, which grows the layered
// "onion" structure that resists targeted attacks.
package onion

import (
	"math"
	"math/rand"

	"github.com/dd0wney/cluso-resilience/pkg/geo"
	"github.com/dd0wney/cluso-resilience/pkg/graph"
	"github.com/dd0wney/cluso-resilience/pkg/robustness"
)

// MethodSwap tags edges created by a swap
const MethodSwap = "swap"

// Options configures Optimize. Empty Fractions selects the default R-index
// window.
type Options struct {
	Fractions []float64 `json:"fractions,omitempty"`
	MaxTrials int       `json:"max_trials"`
	Patience  int       `json:"patience"`
	MinDeltaR float64   `json:"min_delta_r"`
	Seed      int64     `json:"seed"`
	Prefilter bool      `json:"prefilter"`
}

// DefaultOptions returns the optimizer defaults
func DefaultOptions() Options {
	return Options{
		Fractions: robustness.DefaultWindow(),
		MaxTrials: 20000,
		Patience:  5000,
		MinDeltaR: 1e-6,
		Seed:      123,
		Prefilter: true,
	}
}

// Info summarizes an optimization run
type Info struct {
	RInitial          float64 `json:"r_initial"`
	RBest             float64 `json:"r_best"`
	AcceptedSwaps     int     `json:"accepted_swaps"`
	Trials            int     `json:"trials"`
	Evaluations       int     `json:"evaluations"`
	StoppedByPatience bool    `json:"stopped_by_patience"`
}

type pair struct{ u, v int }

func makePair(u, v int) pair {
	if u > v {
		u, v = v, u
	}
	return pair{u, v}
}

// Optimize returns a rewired copy of g together with a run summary; g is not
// modified. Each trial samples two distinct edges {a,b} and {c,d} and tries
// the recombinations {a,c},{b,d} and {a,d},{b,c}. A recombination is skipped
// when it would create a self-loop or a duplicate edge, and with Prefilter set
// when it does not strictly reduce the summed endpoint degree difference. The
// better surviving variant is applied only when it beats the best R so far by
// more than MinDeltaR.
//
// The loop stops after MaxTrials trials, as soon as the Patience-th
// consecutive trial without improvement completes (the bound is inclusive;
// Patience <= 0 disables it), or immediately when g
// has fewer than 2 edges. The same graph, options and seed always produce
// the same result.
func Optimize(g *graph.Graph, opts Options) (*graph.Graph, Info) {
	fractions := opts.Fractions
	if len(fractions) == 0 {
		fractions = robustness.DefaultWindow()
	}

	ix := graph.NewIndex(g)
	s := newSwapState(ix)
	eval := robustness.NewEvaluator(s.adj, fractions)

	info := Info{}
	info.RInitial = eval.R(s.adj)
	info.RBest = info.RInitial

	rng := rand.New(rand.NewSource(opts.Seed))
	idle := 0
	patient := func() bool { return opts.Patience <= 0 || idle < opts.Patience }
	for len(s.edges) >= 2 && info.Trials < opts.MaxTrials && patient() {
		info.Trials++

		i := rng.Intn(len(s.edges))
		j := rng.Intn(len(s.edges) - 1)
		if j >= i {
			j++
		}
		e1, e2 := s.edges[i], s.edges[j]
		a, b, c, d := e1.u, e1.v, e2.u, e2.v
		if a == c || a == d || b == c || b == d {
			idle++
			continue
		}

		bestR := math.Inf(-1)
		var best [2]pair
		found := false
		for _, variant := range [2][2]pair{
			{makePair(a, c), makePair(b, d)},
			{makePair(a, d), makePair(b, c)},
		} {
			if !s.admissible(e1, e2, variant, opts.Prefilter) {
				continue
			}
			s.swap(e1, e2, variant[0], variant[1])
			r := eval.R(s.adj)
			s.swap(variant[0], variant[1], e1, e2)
			if r > bestR {
				bestR, best, found = r, variant, true
			}
		}

		if found && bestR > info.RBest+opts.MinDeltaR {
			s.swap(e1, e2, best[0], best[1])
			s.edges[i], s.edges[j] = best[0], best[1]
			info.RBest = bestR
			info.AcceptedSwaps++
			idle = 0
			continue
		}
		idle++
	}
	info.StoppedByPatience = !patient()
	info.Evaluations = eval.Evaluations()

	return s.materialize(g, ix), info
}

// swapState is the mutable adjacency the optimizer rewires
type swapState struct {
	adj   [][]int
	edges []pair
	set   map[pair]struct{}
}

func newSwapState(ix *graph.Index) *swapState {
	s := &swapState{
		adj: make([][]int, ix.Len()),
		set: make(map[pair]struct{}, ix.EdgeCount()),
	}
	for v, nbrs := range ix.Adj {
		s.adj[v] = append([]int(nil), nbrs...)
		for _, w := range nbrs {
			if v < w {
				p := pair{v, w}
				s.edges = append(s.edges, p)
				s.set[p] = struct{}{}
			}
		}
	}
	return s
}

func (s *swapState) has(p pair) bool {
	_, ok := s.set[p]
	return ok
}

// admissible reports whether replacing e1, e2 with variant is a valid swap
func (s *swapState) admissible(e1, e2 pair, variant [2]pair, prefilter bool) bool {
	x, y := variant[0], variant[1]
	if x.u == x.v || y.u == y.v || x == y {
		return false
	}
	if (x == e1 && y == e2) || (x == e2 && y == e1) {
		return false
	}
	if s.has(x) || s.has(y) {
		return false
	}
	if prefilter {
		before := s.degreeGap(e1) + s.degreeGap(e2)
		after := s.degreeGap(x) + s.degreeGap(y)
		if after >= before {
			return false
		}
	}
	return true
}

func (s *swapState) degreeGap(p pair) int {
	d := len(s.adj[p.u]) - len(s.adj[p.v])
	if d < 0 {
		return -d
	}
	return d
}

// swap removes edges r1, r2 and inserts a1, a2
func (s *swapState) swap(r1, r2, a1, a2 pair) {
	s.unlink(r1)
	s.unlink(r2)
	s.link(a1)
	s.link(a2)
}

func (s *swapState) link(p pair) {
	s.adj[p.u] = append(s.adj[p.u], p.v)
	s.adj[p.v] = append(s.adj[p.v], p.u)
	s.set[p] = struct{}{}
}

func (s *swapState) unlink(p pair) {
	s.adj[p.u] = dropNeighbor(s.adj[p.u], p.v)
	s.adj[p.v] = dropNeighbor(s.adj[p.v], p.u)
	delete(s.set, p)
}

func dropNeighbor(nbrs []int, w int) []int {
	for i, x := range nbrs {
		if x == w {
			nbrs[i] = nbrs[len(nbrs)-1]
			return nbrs[:len(nbrs)-1]
		}
	}
	return nbrs
}

// materialize rebuilds a graph from the final edge set. Surviving edges keep
// their attributes; edges created by swaps are tagged and carry a distance
// when both endpoints have coordinates.
func (s *swapState) materialize(g *graph.Graph, ix *graph.Index) *graph.Graph {
	out := graph.New()
	for _, id := range ix.IDs {
		attrs, _ := g.Node(id)
		out.AddNode(id, attrs)
	}
	for _, p := range s.edges {
		u, v := ix.IDs[p.u], ix.IDs[p.v]
		attrs, ok := g.Edge(u, v)
		if !ok {
			attrs = graph.EdgeAttrs{Defense: MethodSwap}
			if d, known := geo.NodeDistance(g, u, v, nil); known {
				attrs.DistanceKM, attrs.HasDistance = d, true
			}
		}
		_ = out.AddEdge(u, v, attrs)
	}
	return out
}
