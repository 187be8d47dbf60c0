package redundancy

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dd0wney/cluso-resilience/pkg/graph"
)

func airport(lat, lon float64, code string) graph.NodeAttrs {
	return graph.NodeAttrs{Name: code + " Intl", Code: code, Lat: lat, Lon: lon, HasCoords: true}
}

// twoClusters is a 4-node path plus a detached pair, all within a few degrees
func twoClusters(t *testing.T) *graph.Graph {
	t.Helper()
	g := graph.New()
	g.AddNode(1, airport(0, 0, "AAA"))
	g.AddNode(2, airport(0, 1, "BBB"))
	g.AddNode(3, airport(0, 2, "CCC"))
	g.AddNode(4, airport(0, 3, "DDD"))
	g.AddNode(5, airport(1, 0, "EEE"))
	g.AddNode(6, airport(1, 1, "FFF"))
	for _, e := range [][2]graph.NodeID{{1, 2}, {2, 3}, {3, 4}, {5, 6}} {
		require.NoError(t, g.AddEdge(e[0], e[1], graph.EdgeAttrs{}))
	}
	return g
}

func TestSuggest_PrefersJoiningComponents(t *testing.T) {
	g := twoClusters(t)
	before := g.Clone()

	s := Suggest(g, SuggestOptions{M: 3, MaxDistanceKM: 3000})
	require.NotEmpty(t, s)
	assert.LessOrEqual(t, len(s), 3)
	assert.True(t, g.Equal(before), "input graph must not change")

	top := s[0]
	assert.InDelta(t, 2.0/6, top.LCCGain, 1e-9)
	assert.InDelta(t, 10*top.LCCGain, top.Score, 1e-9)
	assert.Zero(t, top.ASPLGain)
	assert.NotEmpty(t, top.SourceCode)

	for i := 1; i < len(s); i++ {
		assert.GreaterOrEqual(t, s[i-1].Score, s[i].Score)
	}
	for _, sug := range s {
		assert.False(t, g.HasEdge(sug.Source, sug.Target))
		assert.Less(t, sug.Source, sug.Target)
	}
}

func TestSuggest_ResistanceInsideLargestComponent(t *testing.T) {
	g := twoClusters(t)
	s := Suggest(g, SuggestOptions{M: 10, MaxDistanceKM: 0})

	found := false
	for _, sug := range s {
		inLCC := sug.Source <= 4 && sug.Target <= 4
		if inLCC {
			assert.Positive(t, sug.Reff)
			found = true
		} else {
			assert.Zero(t, sug.Reff)
		}
	}
	assert.True(t, found)
}

func TestSuggest_DistanceCapAndCoords(t *testing.T) {
	g := graph.New()
	g.AddNode(1, airport(0, 0, "AAA"))
	g.AddNode(2, airport(0, 90, "BBB"))
	g.AddNode(3, graph.NodeAttrs{Code: "CCC"})
	require.NoError(t, g.AddEdge(1, 3, graph.EdgeAttrs{}))
	require.NoError(t, g.AddEdge(2, 3, graph.EdgeAttrs{}))

	assert.Empty(t, Suggest(g, SuggestOptions{M: 5, MaxDistanceKM: 1000}))
	assert.Len(t, Suggest(g, SuggestOptions{M: 5, MaxDistanceKM: 20000}), 1)
}

func TestSuggest_Degenerate(t *testing.T) {
	assert.Empty(t, Suggest(graph.New(), DefaultSuggestOptions()))

	g := twoClusters(t)
	assert.Empty(t, Suggest(g, SuggestOptions{M: 0}))
}
