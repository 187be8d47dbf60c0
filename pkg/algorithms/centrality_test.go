package algorithms

import (
	"math"
	"testing"

	"github.com/dd0wney/cluso-resilience/pkg/graph"
)

func TestBetweennessCentrality_Path(t *testing.T) {
	// 1 - 2 - 3: node 2 lies on the only path between 1 and 3
	g := pathGraph(t, 3)

	scores := BetweennessCentrality(g, BetweennessOptions{})
	if math.Abs(scores[2]-1.0) > 1e-9 {
		t.Errorf("Expected betweenness 1.0 for middle node, got %f", scores[2])
	}
	if scores[1] != 0 || scores[3] != 0 {
		t.Errorf("Expected 0 for endpoints, got %f and %f", scores[1], scores[3])
	}
}

func TestBetweennessCentrality_Star(t *testing.T) {
	g := starGraph(t, 5)

	scores := BetweennessCentrality(g, BetweennessOptions{})
	if math.Abs(scores[0]-1.0) > 1e-9 {
		t.Errorf("Expected hub betweenness 1.0, got %f", scores[0])
	}
	for i := graph.NodeID(1); i <= 5; i++ {
		if scores[i] != 0 {
			t.Errorf("Expected leaf %d betweenness 0, got %f", i, scores[i])
		}
	}
}

func TestBetweennessOf_SampledIsSeeded(t *testing.T) {
	g := pathGraph(t, 30)
	ix := graph.NewIndex(g)
	opts := BetweennessOptions{Samples: 5, Seed: 7}

	a := BetweennessOf(ix, nil, opts)
	b := BetweennessOf(ix, nil, opts)
	for h := range a {
		if a[h] != b[h] {
			t.Fatalf("sampled betweenness differs at handle %d: %f vs %f", h, a[h], b[h])
		}
	}
}

func TestBetweennessOf_RespectsMask(t *testing.T) {
	g := pathGraph(t, 5)
	ix := graph.NewIndex(g)
	alive := []bool{true, true, true, false, false}

	scores := BetweennessOf(ix, alive, BetweennessOptions{})
	if scores[3] != 0 || scores[4] != 0 {
		t.Errorf("dead handles should score 0, got %v", scores)
	}
	if ArgMax(scores, alive) != 1 {
		t.Errorf("ArgMax() = %d, want 1", ArgMax(scores, alive))
	}
}

func TestTopNodes(t *testing.T) {
	scores := map[graph.NodeID]float64{1: 0.5, 2: 0.9, 3: 0.5, 4: 0.1}

	top := TopNodes(scores, 3)
	want := []graph.NodeID{2, 1, 3}
	if len(top) != len(want) {
		t.Fatalf("TopNodes() returned %d nodes, want %d", len(top), len(want))
	}
	for i, id := range want {
		if top[i].NodeID != id {
			t.Errorf("TopNodes()[%d] = %d, want %d", i, top[i].NodeID, id)
		}
	}

	if TopNodes(scores, 0) != nil {
		t.Error("TopNodes(0) should be nil")
	}
}

func TestArgMax_TiesAndEmpty(t *testing.T) {
	if got := ArgMax([]float64{3, 5, 5, 1}, nil); got != 1 {
		t.Errorf("ArgMax() = %d, want 1", got)
	}
	if got := ArgMax([]float64{3}, []bool{false}); got != -1 {
		t.Errorf("ArgMax() with nothing live = %d, want -1", got)
	}
}
