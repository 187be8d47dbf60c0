package algorithms

import (
	"testing"

	"github.com/dd0wney/cluso-resilience/pkg/graph"
)

// buildGraph creates a graph from an edge list
func buildGraph(t *testing.T, edges [][2]graph.NodeID, isolated ...graph.NodeID) *graph.Graph {
	t.Helper()
	g := graph.New()
	for _, id := range isolated {
		g.AddNode(id, graph.NodeAttrs{})
	}
	for _, e := range edges {
		if err := g.AddEdge(e[0], e[1], graph.EdgeAttrs{}); err != nil {
			t.Fatalf("AddEdge(%d, %d): %v", e[0], e[1], err)
		}
	}
	return g
}

func cycleGraph(t *testing.T, n int) *graph.Graph {
	t.Helper()
	edges := make([][2]graph.NodeID, 0, n)
	for i := 1; i <= n; i++ {
		edges = append(edges, [2]graph.NodeID{graph.NodeID(i), graph.NodeID(i%n + 1)})
	}
	return buildGraph(t, edges)
}

func pathGraph(t *testing.T, n int) *graph.Graph {
	t.Helper()
	edges := make([][2]graph.NodeID, 0, n)
	for i := 1; i < n; i++ {
		edges = append(edges, [2]graph.NodeID{graph.NodeID(i), graph.NodeID(i + 1)})
	}
	return buildGraph(t, edges)
}

func starGraph(t *testing.T, leaves int) *graph.Graph {
	t.Helper()
	edges := make([][2]graph.NodeID, 0, leaves)
	for i := 1; i <= leaves; i++ {
		edges = append(edges, [2]graph.NodeID{0, graph.NodeID(i)})
	}
	return buildGraph(t, edges)
}
