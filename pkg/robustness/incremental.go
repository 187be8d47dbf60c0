package robustness

// LCCAfterRemovals returns, for r = 0..n, the size of the largest component
// after removing the first r handles of order. It runs the order in reverse,
// adding handles back one at a time and joining them with already-present
// neighbours, so the whole table costs a single pass over the graph.
func LCCAfterRemovals(adj [][]int, order []int) []int {
	n := len(order)
	table := make([]int, n+1)
	present := make([]bool, len(adj))
	ds := NewDisjointSet(len(adj))

	largest := 0
	for i := n - 1; i >= 0; i-- {
		v := order[i]
		present[v] = true
		if largest == 0 {
			largest = 1
		}
		for _, w := range adj[v] {
			if present[w] {
				if size := ds.Union(v, w); size > largest {
					largest = size
				}
			}
		}
		table[i] = largest
	}
	return table
}

// IncrementalCurve samples the normalized largest-component size at each
// fraction, removing floor(fraction × N0) handles of order. The result equals
// BruteForceCurve exactly.
func IncrementalCurve(adj [][]int, order []int, fractions []float64) []float64 {
	n0 := len(adj)
	out := make([]float64, len(fractions))
	if n0 == 0 {
		return out
	}

	table := LCCAfterRemovals(adj, order)
	for i, f := range fractions {
		r := min(RemovalTarget(f, n0), len(order))
		out[i] = float64(table[r]) / float64(n0)
	}
	return out
}

// BruteForceCurve deletes handles in order and recomputes the largest
// component by BFS at every fraction. It is the reference IncrementalCurve is
// checked against.
func BruteForceCurve(adj [][]int, order []int, fractions []float64) []float64 {
	n0 := len(adj)
	out := make([]float64, len(fractions))
	if n0 == 0 {
		return out
	}

	for i, f := range fractions {
		r := min(RemovalTarget(f, n0), len(order))
		alive := make([]bool, n0)
		for h := range alive {
			alive[h] = true
		}
		for _, v := range order[:r] {
			alive[v] = false
		}
		out[i] = float64(largestBFS(adj, alive)) / float64(n0)
	}
	return out
}

func largestBFS(adj [][]int, alive []bool) int {
	seen := make([]bool, len(adj))
	queue := make([]int, 0, len(adj))
	best := 0

	for start := range adj {
		if !alive[start] || seen[start] {
			continue
		}
		seen[start] = true
		queue = append(queue[:0], start)
		for head := 0; head < len(queue); head++ {
			for _, w := range adj[queue[head]] {
				if alive[w] && !seen[w] {
					seen[w] = true
					queue = append(queue, w)
				}
			}
		}
		best = max(best, len(queue))
	}
	return best
}

// Evaluator computes the R-index of an adjacency under a fixed removal order
// and sampling window.
type Evaluator struct {
	Order     []int
	Fractions []float64

	evaluations int
}

// NewEvaluator creates an evaluator for adj's static degree order over fractions
func NewEvaluator(adj [][]int, fractions []float64) *Evaluator {
	return &Evaluator{Order: StaticDegreeOrder(adj), Fractions: fractions}
}

// R evaluates the R-index of adj
func (e *Evaluator) R(adj [][]int) float64 {
	e.evaluations++
	return RIndex(e.Fractions, IncrementalCurve(adj, e.Order, e.Fractions))
}

// Evaluations returns the number of R evaluations performed
func (e *Evaluator) Evaluations() int {
	return e.evaluations
}
