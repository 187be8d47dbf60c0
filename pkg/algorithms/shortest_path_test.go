package algorithms

import (
	"testing"

	"github.com/dd0wney/cluso-resilience/pkg/graph"
)

func TestShortestPath(t *testing.T) {
	g := buildGraph(t, [][2]graph.NodeID{{1, 2}, {2, 3}, {3, 4}, {1, 5}, {5, 4}, {4, 6}}, 9)

	tests := []struct {
		name     string
		src, dst graph.NodeID
		wantLen  int
	}{
		{"same node", 1, 1, 1},
		{"adjacent", 1, 2, 2},
		{"shortcut through 5", 1, 4, 3},
		{"to the far end", 1, 6, 4},
		{"unreachable", 1, 9, 0},
		{"missing node", 1, 42, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := ShortestPath(g, tt.src, tt.dst)
			if len(path) != tt.wantLen {
				t.Fatalf("ShortestPath(%d, %d) = %v, want length %d", tt.src, tt.dst, path, tt.wantLen)
			}
			if tt.wantLen == 0 {
				return
			}
			if path[0] != tt.src || path[len(path)-1] != tt.dst {
				t.Errorf("path endpoints = %v", path)
			}
			for i := 1; i < len(path); i++ {
				if !g.HasEdge(path[i-1], path[i]) {
					t.Errorf("path uses missing edge %d-%d", path[i-1], path[i])
				}
			}
		})
	}
}

func TestShortestPathCount(t *testing.T) {
	// Square 1-2-4 and 1-3-4 gives two shortest paths
	g := buildGraph(t, [][2]graph.NodeID{{1, 2}, {2, 4}, {1, 3}, {3, 4}, {4, 5}}, 9)

	hops, count := ShortestPathCount(g, 1, 5)
	if hops != 3 || count != 2 {
		t.Errorf("ShortestPathCount(1, 5) = %d, %f, want 3, 2", hops, count)
	}

	hops, count = ShortestPathCount(g, 1, 9)
	if hops != -1 || count != 0 {
		t.Errorf("ShortestPathCount(1, 9) = %d, %f, want -1, 0", hops, count)
	}
}

func TestWeightedShortestPath(t *testing.T) {
	g := graph.New()
	add := func(u, v graph.NodeID, km float64) {
		if err := g.AddEdge(u, v, graph.EdgeAttrs{DistanceKM: km, HasDistance: true}); err != nil {
			t.Fatal(err)
		}
	}
	add(1, 2, 100)
	add(2, 3, 100)
	add(1, 3, 500)
	g.AddNode(4, graph.NodeAttrs{})

	byDistance := func(_, _ graph.NodeID, e graph.EdgeAttrs) float64 { return e.DistanceKM }

	path, ok := WeightedShortestPath(g, 1, 3, byDistance)
	if !ok {
		t.Fatal("expected a path")
	}
	if path.Distance != 200 || path.Hops() != 2 {
		t.Errorf("WeightedShortestPath() = %+v, want distance 200 over 2 hops", path)
	}

	if _, ok := WeightedShortestPath(g, 1, 4, byDistance); ok {
		t.Error("expected no path to isolated node")
	}
}
