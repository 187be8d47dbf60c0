package defense

import (
	"math"
	"math/rand"
	"testing"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/mat"

	"github.com/dd0wney/cluso-resilience/pkg/algorithms"
	"github.com/dd0wney/cluso-resilience/pkg/graph"
)

func buildGraph(t *testing.T, edges [][2]graph.NodeID) *graph.Graph {
	t.Helper()
	g := graph.New()
	for _, e := range edges {
		require.NoError(t, g.AddEdge(e[0], e[1], graph.EdgeAttrs{}))
	}
	return g
}

func pathGraph(t *testing.T, n int) *graph.Graph {
	t.Helper()
	var edges [][2]graph.NodeID
	for i := 1; i < n; i++ {
		edges = append(edges, [2]graph.NodeID{graph.NodeID(i), graph.NodeID(i + 1)})
	}
	return buildGraph(t, edges)
}

func cycleGraph(t *testing.T, n int) *graph.Graph {
	t.Helper()
	var edges [][2]graph.NodeID
	for i := 1; i <= n; i++ {
		edges = append(edges, [2]graph.NodeID{graph.NodeID(i), graph.NodeID(i%n + 1)})
	}
	return buildGraph(t, edges)
}

// randomConnected builds a spanning path over n nodes plus random chords
func randomConnected(seed int64, n int, p float64) *graph.Graph {
	rng := rand.New(rand.NewSource(seed))
	g := graph.New()
	g.AddNode(0, graph.NodeAttrs{})
	for i := 1; i < n; i++ {
		_ = g.AddEdge(graph.NodeID(rng.Intn(i)), graph.NodeID(i), graph.EdgeAttrs{})
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

// pseudoInverseResistance computes R_uv from the dense matrix (L + J/n)^-1
func pseudoInverseResistance(t *testing.T, g *graph.Graph) func(u, v graph.NodeID) float64 {
	t.Helper()
	ix := graph.NewIndex(g)
	n := ix.Len()
	a := mat.NewDense(n, n, nil)
	for i := 0; i < n; i++ {
		for j := 0; j < n; j++ {
			a.Set(i, j, 1/float64(n))
		}
		a.Set(i, i, a.At(i, i)+float64(ix.Degree(i)))
		for _, w := range ix.Adj[i] {
			a.Set(i, w, a.At(i, w)-1)
		}
	}
	var inv mat.Dense
	require.NoError(t, inv.Inverse(a))

	return func(u, v graph.NodeID) float64 {
		hu, _ := ix.Handle(u)
		hv, _ := ix.Handle(v)
		return inv.At(hu, hu) + inv.At(hv, hv) - 2*inv.At(hu, hv)
	}
}

func TestResistance_Path(t *testing.T) {
	g := pathGraph(t, 6)
	f, err := Factorize(g)
	require.NoError(t, err)

	r, err := f.Resistance(1, 6)
	require.NoError(t, err)
	assert.InDelta(t, 5.0, r, 1e-9)

	r, err = f.Resistance(2, 4)
	require.NoError(t, err)
	assert.InDelta(t, 2.0, r, 1e-9)

	r, err = f.Resistance(3, 3)
	require.NoError(t, err)
	assert.Zero(t, r)
}

func TestResistance_CycleAdjacent(t *testing.T) {
	n := 8
	f, err := Factorize(cycleGraph(t, n))
	require.NoError(t, err)

	for i := 1; i <= n; i++ {
		r, err := f.Resistance(graph.NodeID(i), graph.NodeID(i%n+1))
		require.NoError(t, err)
		assert.InDelta(t, float64(n-1)/float64(n), r, 1e-9)
	}
}

func TestResistance_UnknownNode(t *testing.T) {
	f, err := Factorize(pathGraph(t, 3))
	require.NoError(t, err)

	_, err = f.Resistance(1, 99)
	assert.ErrorIs(t, err, ErrNodeNotFactorized)
	assert.True(t, f.Contains(2))
	assert.Equal(t, graph.NodeID(3), f.Ground())
	assert.Equal(t, 3, f.Len())
	assert.Positive(t, f.NonZeros())
}

func TestFactorize_Errors(t *testing.T) {
	single := graph.New()
	single.AddNode(1, graph.NodeAttrs{})
	_, err := Factorize(single)
	assert.ErrorIs(t, err, ErrTooSmall)

	split := buildGraph(t, [][2]graph.NodeID{{1, 2}, {3, 4}})
	_, err = Factorize(split)
	assert.ErrorIs(t, err, ErrNotPositiveDefinite)
}

func TestResistanceMatchesPseudoInverse(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 30

	properties := gopter.NewProperties(parameters)

	properties.Property("sparse solve agrees with the dense pseudo-inverse", prop.ForAll(
		func(seed int64, n int, density int) bool {
			g := randomConnected(seed, n, float64(density)/100)
			f, err := Factorize(g)
			if err != nil {
				return false
			}
			oracle := pseudoInverseResistance(t, g)

			nodes := g.Nodes()
			for _, u := range nodes {
				for _, v := range nodes {
					r, err := f.Resistance(u, v)
					if err != nil {
						return false
					}
					back, _ := f.Resistance(v, u)
					if math.Abs(r-back) > 1e-9 {
						return false
					}
					if u != v && r <= 0 {
						return false
					}
					if math.Abs(r-oracle(u, v)) > 1e-6 {
						return false
					}
				}
			}
			return true
		},
		gen.Int64(),
		gen.IntRange(2, 25),
		gen.IntRange(0, 30),
	))

	properties.TestingRun(t)
}

func TestSampleCandidates(t *testing.T) {
	g := cycleGraph(t, 10)
	c := SampleCandidates(g, CandidateOptions{Max: 15, Seed: 7})

	require.NotEmpty(t, c)
	assert.LessOrEqual(t, len(c), 15)
	seen := map[graph.EdgeKey]bool{}
	for _, cand := range c {
		assert.Less(t, cand.Source, cand.Target)
		assert.False(t, g.HasEdge(cand.Source, cand.Target))
		assert.False(t, seen[cand.Key()], "duplicate candidate %v", cand.Key())
		seen[cand.Key()] = true
	}

	again := SampleCandidates(g, CandidateOptions{Max: 15, Seed: 7})
	assert.Equal(t, c, again)
}

func TestSampleCandidates_DistanceCap(t *testing.T) {
	g := graph.New()
	g.AddNode(1, graph.NodeAttrs{Lat: 0, Lon: 0, HasCoords: true})
	g.AddNode(2, graph.NodeAttrs{Lat: 0, Lon: 1, HasCoords: true})
	g.AddNode(3, graph.NodeAttrs{Lat: 0, Lon: 90, HasCoords: true})
	g.AddNode(4, graph.NodeAttrs{})

	c := SampleCandidates(g, CandidateOptions{Max: 10, MaxDistanceKM: 500, Seed: 1})
	for _, cand := range c {
		if cand.HasDistance {
			assert.LessOrEqual(t, cand.DistanceKM, 500.0)
		}
	}

	// the complete graph leaves nothing to sample
	full := buildGraph(t, [][2]graph.NodeID{{1, 2}, {1, 3}, {2, 3}})
	assert.Empty(t, SampleCandidates(full, CandidateOptions{Max: 5, Seed: 1}))
}

func TestReinforce_RestrictsToLargestComponent(t *testing.T) {
	g := buildGraph(t, [][2]graph.NodeID{
		{1, 2}, {2, 3}, {3, 1}, {3, 4},
		{10, 11}, {11, 12}, {12, 10},
	})

	out, added, report := ReinforceByEffectiveResistance(g, ReinforceOptions{K: 2, MaxCandidates: 50, Seed: 3})

	assert.Equal(t, MethodTER, report.Method)
	assert.False(t, report.Fallback)
	assert.Equal(t, 4, report.LCCNodes)
	assert.Equal(t, 4, out.NodeCount())
	assert.False(t, out.HasNode(10))
	require.Len(t, added, 2)
	assert.Equal(t, 4+len(added), out.EdgeCount())

	for _, e := range added {
		attrs, ok := out.Edge(e.Source, e.Target)
		require.True(t, ok)
		assert.Equal(t, MethodTER, attrs.Defense)
		assert.Positive(t, e.Reff)
	}
	assert.GreaterOrEqual(t, added[0].Reff, added[1].Reff)

	// the original graph is untouched
	assert.Equal(t, 7, g.EdgeCount())
}

func TestReinforce_PicksHighestResistance(t *testing.T) {
	g := pathGraph(t, 6)
	_, added, _ := ReinforceByEffectiveResistance(g, ReinforceOptions{K: 1, MaxCandidates: 200, Seed: 1})

	require.Len(t, added, 1)
	assert.Equal(t, graph.NodeID(1), added[0].Source)
	assert.Equal(t, graph.NodeID(6), added[0].Target)
	assert.InDelta(t, 5.0, added[0].Reff, 1e-9)
}

func TestReinforce_ZeroK(t *testing.T) {
	g := buildGraph(t, [][2]graph.NodeID{{1, 2}, {2, 3}, {7, 8}})
	out, added, _ := ReinforceByEffectiveResistance(g, ReinforceOptions{K: 0})

	assert.Empty(t, added)
	assert.True(t, out.Equal(algorithms.LargestComponentGraph(g)))
}

func TestReinforce_TinyGraph(t *testing.T) {
	g := graph.New()
	g.AddNode(1, graph.NodeAttrs{})
	out, added, _ := ReinforceByEffectiveResistance(g, DefaultReinforceOptions())
	assert.Empty(t, added)
	assert.True(t, out.Equal(g))
}

func TestReinforce_FallsBackToHubPairing(t *testing.T) {
	orig := factorize
	factorize = func(*graph.Graph) (*Factorization, error) {
		return nil, ErrNotPositiveDefinite
	}
	t.Cleanup(func() { factorize = orig })

	g := graph.New()
	for i, lon := range []float64{0, 1, 2, 3} {
		g.AddNode(graph.NodeID(i+1), graph.NodeAttrs{Lat: 0, Lon: lon, HasCoords: true})
	}
	// 1 is the hub; only {2,4} and {3,4} are missing
	for _, e := range [][2]graph.NodeID{{1, 2}, {1, 3}, {1, 4}, {2, 3}} {
		require.NoError(t, g.AddEdge(e[0], e[1], graph.EdgeAttrs{}))
	}

	out, added, report := ReinforceByEffectiveResistance(g, ReinforceOptions{K: 4, MaxDistanceKM: 3000})

	assert.True(t, report.Fallback)
	assert.Equal(t, MethodHubFallback, report.Method)
	assert.NotEmpty(t, report.FallbackReason)
	require.Len(t, added, 2)
	for _, e := range added {
		assert.Equal(t, MethodHubFallback, e.Method)
		assert.True(t, e.Backup)
		attrs, ok := out.Edge(e.Source, e.Target)
		require.True(t, ok)
		assert.True(t, attrs.Backup)
	}
}

func TestHubPairing_SkipsMissingCoords(t *testing.T) {
	g := buildGraph(t, [][2]graph.NodeID{{1, 2}, {1, 3}, {3, 4}})
	out, added := HubPairing(g, 3, 0, nil)
	assert.Empty(t, added)
	assert.True(t, out.Equal(g))
}

func TestDefaultReinforceOptions(t *testing.T) {
	opts := DefaultReinforceOptions()
	assert.Equal(t, 200, opts.K)
	assert.Equal(t, 20000, opts.MaxCandidates)
	assert.Equal(t, 3000.0, opts.MaxDistanceKM)
	assert.Equal(t, int64(123), opts.Seed)
	assert.Equal(t, 500, DefaultMaxCandidates(5))
}

func TestReverseCuthillMcKee_IsPermutation(t *testing.T) {
	g := randomConnected(11, 30, 0.1)
	ix := graph.NewIndex(g)
	perm := reverseCuthillMcKee(ix.Adj)

	require.Len(t, perm, ix.Len())
	seen := make([]bool, ix.Len())
	for _, p := range perm {
		assert.False(t, seen[p])
		seen[p] = true
	}
}
