package onion

import (
	"math/rand"
	"slices"
	"testing"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dd0wney/cluso-resilience/pkg/graph"
)

func randomGraph(seed int64, n int, p float64) *graph.Graph {
	rng := rand.New(rand.NewSource(seed))
	g := graph.New()
	for i := 0; i < n; i++ {
		g.AddNode(graph.NodeID(i), graph.NodeAttrs{})
	}
	for u := 0; u < n; u++ {
		for v := u + 1; v < n; v++ {
			if rng.Float64() < p {
				_ = g.AddEdge(graph.NodeID(u), graph.NodeID(v), graph.EdgeAttrs{})
			}
		}
	}
	return g
}

func sortedDegrees(g *graph.Graph) []int {
	d := g.DegreeSequence()
	slices.Sort(d)
	return d
}

func TestOptimize_PreservesDegrees(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 25

	properties := gopter.NewProperties(parameters)

	properties.Property("swaps keep every node's degree and the edge count", prop.ForAll(
		func(seed int64, n int, density int, prefilter bool) bool {
			g := randomGraph(seed, n, float64(density)/100)
			before := g.Clone()
			out, info := Optimize(g, Options{MaxTrials: 300, Patience: 100, MinDeltaR: 1e-9, Seed: seed, Prefilter: prefilter})

			if !g.Equal(before) || out.EdgeCount() != g.EdgeCount() || out.NodeCount() != g.NodeCount() {
				return false
			}
			for _, id := range g.Nodes() {
				if out.Degree(id) != g.Degree(id) {
					return false
				}
			}
			return info.RBest >= info.RInitial
		},
		gen.Int64(),
		gen.IntRange(4, 30),
		gen.IntRange(5, 40),
		gen.Bool(),
	))

	properties.TestingRun(t)
}

func TestOptimize_Deterministic(t *testing.T) {
	g := randomGraph(5, 40, 0.1)
	opts := Options{MaxTrials: 500, Patience: 200, MinDeltaR: 1e-6, Seed: 9, Prefilter: true}

	a, infoA := Optimize(g, opts)
	b, infoB := Optimize(g, opts)

	assert.True(t, a.Equal(b))
	assert.Equal(t, infoA, infoB)
	assert.Equal(t, sortedDegrees(g), sortedDegrees(a))
}

func TestOptimize_TooFewEdges(t *testing.T) {
	g := graph.New()
	require.NoError(t, g.AddEdge(1, 2, graph.EdgeAttrs{}))
	g.AddNode(3, graph.NodeAttrs{})

	out, info := Optimize(g, DefaultOptions())
	assert.True(t, out.Equal(g))
	assert.Zero(t, info.Trials)
	assert.Zero(t, info.AcceptedSwaps)
	assert.Equal(t, 1, info.Evaluations)
	assert.False(t, info.StoppedByPatience)
}

func TestOptimize_Patience(t *testing.T) {
	// in a triangle any two edges share an endpoint
	g := graph.New()
	for _, e := range [][2]graph.NodeID{{1, 2}, {2, 3}, {3, 1}} {
		require.NoError(t, g.AddEdge(e[0], e[1], graph.EdgeAttrs{}))
	}

	_, info := Optimize(g, Options{MaxTrials: 1000, Patience: 10, Seed: 1})
	assert.True(t, info.StoppedByPatience)
	assert.Equal(t, 10, info.Trials)
	assert.Zero(t, info.AcceptedSwaps)
}

func TestOptimize_UnsortedFractions(t *testing.T) {
	g := randomGraph(5, 20, 0.2)

	var info Info
	require.NotPanics(t, func() {
		_, info = Optimize(g, Options{Fractions: []float64{0.3, 0, 0.1}, MaxTrials: 20, Patience: 5, Seed: 1})
	})
	assert.Zero(t, info.RInitial)
	assert.Zero(t, info.AcceptedSwaps)
}

func TestOptimize_MaxTrials(t *testing.T) {
	g := randomGraph(3, 30, 0.15)
	_, info := Optimize(g, Options{MaxTrials: 50, Patience: 0, Seed: 1})
	assert.Equal(t, 50, info.Trials)
	assert.False(t, info.StoppedByPatience)
}

func TestOptimize_SwappedEdgesTagged(t *testing.T) {
	g := randomGraph(21, 40, 0.12)
	out, info := Optimize(g, Options{MaxTrials: 2000, Patience: 1000, MinDeltaR: 0, Seed: 4})
	if info.AcceptedSwaps == 0 {
		t.Skip("no improving swap found for this graph")
	}

	tagged := 0
	for _, k := range out.Edges() {
		attrs, _ := out.Edge(k.U, k.V)
		if !g.HasEdge(k.U, k.V) {
			assert.Equal(t, MethodSwap, attrs.Defense)
			tagged++
		}
	}
	assert.Positive(t, tagged)
	assert.Greater(t, info.RBest, info.RInitial)
}
