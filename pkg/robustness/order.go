package robustness

import (
	"sort"
)

// StaticDegreeOrder returns every handle sorted by descending degree, ties by
// ascending handle (ascending node id for a graph.Index).
//
// The order is computed once and cached by the swap optimizer. It stays valid
// only while mutations preserve every node's degree, as a double-edge swap
// does. Any mutation that changes a degree must recompute the order.
func StaticDegreeOrder(adj [][]int) []int {
	order := make([]int, len(adj))
	for i := range order {
		order[i] = i
	}
	sort.SliceStable(order, func(i, j int) bool {
		return len(adj[order[i]]) > len(adj[order[j]])
	})
	return order
}
