package graph

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func cycle(t *testing.T, n int) *Graph {
	t.Helper()
	g := New()
	for i := 1; i <= n; i++ {
		next := i%n + 1
		require.NoError(t, g.AddEdge(NodeID(i), NodeID(next), EdgeAttrs{}))
	}
	return g
}

func TestAddEdge_RejectsSelfLoop(t *testing.T) {
	g := New()
	err := g.AddEdge(1, 1, EdgeAttrs{})
	assert.ErrorIs(t, err, ErrSelfLoop)
	assert.Equal(t, 0, g.EdgeCount())
}

func TestAddEdge_CreatesEndpointsAndIsUndirected(t *testing.T) {
	g := New()
	require.NoError(t, g.AddEdge(2, 1, EdgeAttrs{DistanceKM: 10, HasDistance: true}))

	assert.True(t, g.HasNode(1))
	assert.True(t, g.HasNode(2))
	assert.True(t, g.HasEdge(1, 2))
	assert.True(t, g.HasEdge(2, 1))

	attrs, ok := g.Edge(1, 2)
	require.True(t, ok)
	assert.Equal(t, 10.0, attrs.DistanceKM)

	// Re-adding replaces attributes without creating a parallel edge
	require.NoError(t, g.AddEdge(1, 2, EdgeAttrs{Defense: "ter"}))
	assert.Equal(t, 1, g.EdgeCount())
	attrs, _ = g.Edge(2, 1)
	assert.Equal(t, "ter", attrs.Defense)
}

func TestRemoveNode_DropsIncidentEdges(t *testing.T) {
	g := cycle(t, 5)
	require.Equal(t, 5, g.EdgeCount())

	assert.True(t, g.RemoveNode(3))
	assert.False(t, g.RemoveNode(3))
	assert.Equal(t, 4, g.NodeCount())
	assert.Equal(t, 3, g.EdgeCount())
	assert.False(t, g.HasEdge(2, 3))
	assert.Equal(t, []NodeID{1}, g.Neighbors(2))
}

func TestEdges_CanonicalAndSorted(t *testing.T) {
	g := New()
	require.NoError(t, g.AddEdge(5, 1, EdgeAttrs{}))
	require.NoError(t, g.AddEdge(3, 2, EdgeAttrs{}))
	require.NoError(t, g.AddEdge(1, 2, EdgeAttrs{}))

	assert.Equal(t, []EdgeKey{{1, 2}, {1, 5}, {2, 3}}, g.Edges())
	assert.Equal(t, MakeEdgeKey(7, 3), MakeEdgeKey(3, 7))
}

func TestCloneIsIndependent(t *testing.T) {
	g := cycle(t, 4)
	c := g.Clone()
	c.RemoveNode(1)

	assert.Equal(t, 4, g.NodeCount())
	assert.Equal(t, 4, g.EdgeCount())
	assert.True(t, g.HasEdge(1, 2))
	assert.True(t, g.Equal(cycle(t, 4)))
	assert.False(t, g.Equal(c))
}

func TestSubgraph(t *testing.T) {
	g := cycle(t, 5)
	sub := g.Subgraph(NewNodeSet(1, 2, 3, 99))

	assert.Equal(t, []NodeID{1, 2, 3}, sub.Nodes())
	assert.Equal(t, []EdgeKey{{1, 2}, {2, 3}}, sub.Edges())
}

func TestBuild(t *testing.T) {
	g, err := Build(
		[]NodeSpec{{ID: 1, Attrs: NodeAttrs{Name: "A"}}, {ID: 2}},
		[]EdgeSpec{{U: 1, V: 2}, {U: 2, V: 3}},
	)
	require.NoError(t, err)
	assert.Equal(t, 3, g.NodeCount())
	attrs, _ := g.Node(1)
	assert.Equal(t, "A", attrs.Name)

	_, err = Build(nil, []EdgeSpec{{U: 4, V: 4}})
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrSelfLoop))
	var gerr *GraphError
	assert.True(t, errors.As(err, &gerr))
	assert.Equal(t, "Build", gerr.Op)
}

func TestNodeAttrsFromMap(t *testing.T) {
	attrs := NodeAttrsFromMap(map[string]any{
		"name":    "Noi Bai",
		"iata":    "HAN",
		"lat":     21.22,
		"lon":     "105.81",
		"runways": 2,
	})
	assert.Equal(t, "Noi Bai", attrs.Name)
	assert.Equal(t, "HAN", attrs.Code)
	assert.True(t, attrs.HasCoords)
	assert.InDelta(t, 105.81, attrs.Lon, 1e-9)
	assert.Equal(t, 2, attrs.Extra["runways"])

	noCoords := NodeAttrsFromMap(map[string]any{"lat": 1.0})
	assert.False(t, noCoords.HasCoords)
}

func TestIndex(t *testing.T) {
	g := New()
	require.NoError(t, g.AddEdge(10, 30, EdgeAttrs{}))
	require.NoError(t, g.AddEdge(20, 30, EdgeAttrs{}))
	g.AddNode(40, NodeAttrs{})

	ix := NewIndex(g)
	assert.Equal(t, 4, ix.Len())
	assert.Equal(t, 2, ix.EdgeCount())
	assert.Equal(t, []NodeID{10, 20, 30, 40}, ix.IDs)

	h, ok := ix.Handle(30)
	require.True(t, ok)
	assert.Equal(t, 2, h)
	assert.Equal(t, []int{0, 1}, ix.Adj[h])
	assert.Equal(t, 0, ix.Degree(3))

	_, ok = ix.Handle(99)
	assert.False(t, ok)
}

func TestDegreeSequence(t *testing.T) {
	g := New()
	require.NoError(t, g.AddEdge(1, 2, EdgeAttrs{}))
	require.NoError(t, g.AddEdge(1, 3, EdgeAttrs{}))
	assert.Equal(t, []int{1, 1, 2}, g.DegreeSequence())
}

func TestSortedAccessors(t *testing.T) {
	g := New()
	for i := NodeID(40); i >= 2; i-- {
		require.NoError(t, g.AddEdge(1, i, EdgeAttrs{}))
	}

	want := make([]NodeID, 0, 39)
	for i := NodeID(2); i <= 40; i++ {
		want = append(want, i)
	}
	assert.Equal(t, want, g.Neighbors(1))
	assert.Equal(t, append([]NodeID{1}, want...), g.Nodes())
	assert.Equal(t, append([]NodeID{1}, want...), NewNodeSet(g.Nodes()...).Sorted())
	assert.Empty(t, g.Neighbors(99))

	o := NewRemovalOverlay()
	for _, v := range []NodeID{30, 7, 19} {
		require.True(t, o.RemoveEdge(g, v, 1))
	}
	assert.Equal(t, []EdgeKey{{1, 7}, {1, 19}, {1, 30}}, o.RemovedEdges())
}
