package algorithms

import (
	"testing"

	"github.com/dd0wney/cluso-resilience/pkg/graph"
)

func TestComponents_EmptyGraph(t *testing.T) {
	g := graph.New()

	if got := ComponentCount(g); got != 0 {
		t.Errorf("ComponentCount() = %d, want 0", got)
	}
	if got := len(LargestComponent(g)); got != 0 {
		t.Errorf("LargestComponent() has %d nodes, want 0", got)
	}
	if got := NormalizedComponentSize(g); got != 0 {
		t.Errorf("NormalizedComponentSize() = %f, want 0", got)
	}
	if got := Diameter(g); got != 0 {
		t.Errorf("Diameter() = %d, want 0", got)
	}
}

func TestLargestComponent_TieGoesToSmallestID(t *testing.T) {
	// Two triangles of equal size, the second holds the smaller id
	g := buildGraph(t, [][2]graph.NodeID{
		{10, 11}, {11, 12}, {12, 10},
		{1, 20}, {20, 21}, {21, 1},
	})

	lcc := LargestComponent(g)
	want := []graph.NodeID{1, 20, 21}
	got := lcc.Sorted()
	if len(got) != len(want) {
		t.Fatalf("LargestComponent() = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("LargestComponent() = %v, want %v", got, want)
			break
		}
	}

	if got := ComponentCount(g); got != 2 {
		t.Errorf("ComponentCount() = %d, want 2", got)
	}
}

func TestConnectedComponents(t *testing.T) {
	g := buildGraph(t, [][2]graph.NodeID{{5, 6}, {2, 3}, {3, 4}}, 9)

	comps := ConnectedComponents(g)
	if len(comps) != 3 {
		t.Fatalf("Expected 3 components, got %d", len(comps))
	}
	if comps[0][0] != 2 || len(comps[0]) != 3 {
		t.Errorf("First component = %v, want [2 3 4]", comps[0])
	}
	if comps[2][0] != 9 || len(comps[2]) != 1 {
		t.Errorf("Last component = %v, want [9]", comps[2])
	}
}

func TestNormalizedComponentSize(t *testing.T) {
	g := buildGraph(t, [][2]graph.NodeID{{1, 2}, {2, 3}}, 4)

	if got := NormalizedComponentSize(g); got != 0.75 {
		t.Errorf("NormalizedComponentSize() = %f, want 0.75", got)
	}
	if got := NormalizedComponentSizeOf(g, 6); got != 0.5 {
		t.Errorf("NormalizedComponentSizeOf(6) = %f, want 0.5", got)
	}
	if got := NormalizedComponentSizeOf(g, 0); got != 0 {
		t.Errorf("NormalizedComponentSizeOf(0) = %f, want 0", got)
	}
}

func TestComponentLabels_Mask(t *testing.T) {
	g := pathGraph(t, 5)
	ix := graph.NewIndex(g)
	alive := []bool{true, true, false, true, true}

	labels, sizes := ComponentLabels(ix, alive)
	if len(sizes) != 2 || sizes[0] != 2 || sizes[1] != 2 {
		t.Errorf("sizes = %v, want [2 2]", sizes)
	}
	if labels[2] != -1 {
		t.Errorf("dead handle label = %d, want -1", labels[2])
	}
	if got := LargestComponentSize(ix, alive); got != 2 {
		t.Errorf("LargestComponentSize() = %d, want 2", got)
	}
}

func TestDiameter(t *testing.T) {
	tests := []struct {
		name string
		g    *graph.Graph
		want int
	}{
		{"single node", buildGraph(t, nil, 1), 0},
		{"single edge", pathGraph(t, 2), 1},
		{"path of 4", pathGraph(t, 4), 3},
		{"cycle of 5", cycleGraph(t, 5), 2},
		{"star", starGraph(t, 6), 2},
		{"largest component only", buildGraph(t, [][2]graph.NodeID{{1, 2}, {2, 3}, {3, 4}, {10, 11}}), 3},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Diameter(tt.g); got != tt.want {
				t.Errorf("Diameter() = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestStats(t *testing.T) {
	g := buildGraph(t, [][2]graph.NodeID{{1, 2}, {2, 3}, {3, 4}, {10, 11}})

	stats := Stats(g)
	want := GraphStats{Nodes: 6, Edges: 4, LCCNorm: 4.0 / 6.0, Diameter: 3, Components: 2}
	if stats != want {
		t.Errorf("Stats() = %+v, want %+v", stats, want)
	}

	if again := Stats(g); again != stats {
		t.Errorf("Stats() not idempotent: %+v then %+v", stats, again)
	}
}

func TestStatsOf_Masked(t *testing.T) {
	g := cycleGraph(t, 5)
	ix := graph.NewIndex(g)
	alive := []bool{false, true, true, true, true}

	stats := StatsOf(ix, alive)
	if stats.Nodes != 4 || stats.Edges != 3 {
		t.Errorf("StatsOf() = %+v, want 4 nodes 3 edges", stats)
	}
	if stats.Diameter != 3 {
		t.Errorf("StatsOf().Diameter = %d, want 3", stats.Diameter)
	}
	if stats.LCCNorm != 1 {
		t.Errorf("StatsOf().LCCNorm = %f, want 1", stats.LCCNorm)
	}
}
