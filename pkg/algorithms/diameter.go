package algorithms

import (
	"github.com/dd0wney/cluso-resilience/pkg/graph"
)

// Diameter returns the diameter of the largest component in hops. It is 0
// when that component has fewer than 2 nodes.
func Diameter(g *graph.Graph) int {
	return DiameterOf(graph.NewIndex(g), nil)
}

// DiameterOf computes the diameter of the largest live component by running a
// BFS from every one of its nodes. Any inconsistency (a component node not
// reached) is reported as 0 rather than an error so that curves stay defined.
func DiameterOf(ix *graph.Index, alive []bool) int {
	lcc := LargestComponentHandles(ix, alive)
	if len(lcc) < 2 {
		return 0
	}

	dist := make([]int, ix.Len())
	queue := make([]int, 0, len(lcc))
	diameter := 0

	for _, src := range lcc {
		ecc, reached := eccentricity(ix, alive, src, dist, queue)
		if reached != len(lcc) {
			return 0
		}
		if ecc > diameter {
			diameter = ecc
		}
	}
	return diameter
}

// eccentricity runs a BFS from src over live handles and returns the largest
// distance found plus the number of handles reached. dist and queue are
// scratch buffers owned by the caller.
func eccentricity(ix *graph.Index, alive []bool, src int, dist []int, queue []int) (int, int) {
	for i := range dist {
		dist[i] = -1
	}
	dist[src] = 0
	queue = append(queue[:0], src)

	ecc, reached := 0, 0
	for head := 0; head < len(queue); head++ {
		v := queue[head]
		reached++
		if dist[v] > ecc {
			ecc = dist[v]
		}
		for _, w := range ix.Adj[v] {
			if dist[w] < 0 && isAlive(alive, w) {
				dist[w] = dist[v] + 1
				queue = append(queue, w)
			}
		}
	}
	return ecc, reached
}
