package defense

import (
	"math"
	"sort"
)

// pivotTolerance is the relative size below which a pivot counts as zero
const pivotTolerance = 1e-10

// symmetricPattern is a symmetric sparse matrix given by its diagonal and the
// off-diagonal neighbours of every row (all off-diagonal values are -1, as in
// an unweighted Laplacian).
type symmetricPattern struct {
	diag []float64
	adj  [][]int
}

// cholesky is a sparse L·Lᵀ factor of P·A·Pᵀ stored by columns. The first
// entry of every column is its diagonal.
type cholesky struct {
	n      int
	perm   []int // perm[new] = old
	iperm  []int // iperm[old] = new
	colPtr []int
	rowIdx []int
	val    []float64
}

// reverseCuthillMcKee returns a bandwidth-reducing ordering (perm[new] = old).
// Each component is started from its lowest-degree node and neighbours are
// visited by ascending degree; the final order is reversed.
func reverseCuthillMcKee(adj [][]int) []int {
	n := len(adj)
	byDegree := make([]int, n)
	for i := range byDegree {
		byDegree[i] = i
	}
	sort.SliceStable(byDegree, func(a, b int) bool {
		return len(adj[byDegree[a]]) < len(adj[byDegree[b]])
	})

	order := make([]int, 0, n)
	visited := make([]bool, n)
	nbrs := make([]int, 0)

	for _, start := range byDegree {
		if visited[start] {
			continue
		}
		visited[start] = true
		head := len(order)
		order = append(order, start)

		for ; head < len(order); head++ {
			v := order[head]
			nbrs = nbrs[:0]
			for _, w := range adj[v] {
				if !visited[w] {
					visited[w] = true
					nbrs = append(nbrs, w)
				}
			}
			sort.SliceStable(nbrs, func(a, b int) bool {
				return len(adj[nbrs[a]]) < len(adj[nbrs[b]])
			})
			order = append(order, nbrs...)
		}
	}

	for i, j := 0, n-1; i < j; i, j = i+1, j-1 {
		order[i], order[j] = order[j], order[i]
	}
	return order
}

// etree computes the elimination tree of the permuted matrix. upper[k] lists
// the rows i < k with a nonzero in column k.
func etree(upper [][]int) []int {
	n := len(upper)
	parent := make([]int, n)
	ancestor := make([]int, n)
	for k := 0; k < n; k++ {
		parent[k] = -1
		ancestor[k] = -1
		for _, i := range upper[k] {
			// walk from i to the root of its subtree, compressing the path to k
			for r := i; r != -1 && r < k; {
				next := ancestor[r]
				ancestor[r] = k
				if next == -1 {
					parent[r] = k
				}
				r = next
			}
		}
	}
	return parent
}

// ereach returns the nonzero pattern of row k of L (excluding the diagonal)
// in topological order, written into stack[top:]. mark is a per-row stamp
// array; entries equal to k are treated as visited.
func ereach(k int, upper []int, parent []int, mark []int, stack []int) int {
	n := len(parent)
	top := n
	mark[k] = k
	for _, i := range upper {
		length := 0
		for ; mark[i] != k; i = parent[i] {
			stack[length] = i
			length++
			mark[i] = k
		}
		for length > 0 {
			top--
			length--
			stack[top] = stack[length]
		}
	}
	return top
}

// factorCholesky computes the up-looking (row by row) sparse Cholesky factor
// of a. It returns false if a pivot is not positive.
func factorCholesky(a symmetricPattern) (*cholesky, int, bool) {
	n := len(a.diag)
	perm := reverseCuthillMcKee(a.adj)
	iperm := make([]int, n)
	for newIdx, old := range perm {
		iperm[old] = newIdx
	}

	// upper[k]: permuted rows i < k with A(i, k) != 0
	upper := make([][]int, n)
	for k := 0; k < n; k++ {
		for _, w := range a.adj[perm[k]] {
			if i := iperm[w]; i < k {
				upper[k] = append(upper[k], i)
			}
		}
	}

	parent := etree(upper)
	mark := make([]int, n)
	stack := make([]int, n)

	// symbolic pass: column counts
	for i := range mark {
		mark[i] = -1
	}
	counts := make([]int, n)
	for k := 0; k < n; k++ {
		counts[k]++
		top := ereach(k, upper[k], parent, mark, stack)
		for _, i := range stack[top:] {
			counts[i]++
		}
	}

	colPtr := make([]int, n+1)
	for k := 0; k < n; k++ {
		colPtr[k+1] = colPtr[k] + counts[k]
	}
	next := make([]int, n)
	copy(next, colPtr[:n])

	c := &cholesky{
		n:      n,
		perm:   perm,
		iperm:  iperm,
		colPtr: colPtr,
		rowIdx: make([]int, colPtr[n]),
		val:    make([]float64, colPtr[n]),
	}

	// numeric pass
	for i := range mark {
		mark[i] = -1
	}
	x := make([]float64, n)
	for k := 0; k < n; k++ {
		top := ereach(k, upper[k], parent, mark, stack)

		x[k] = 0
		for _, i := range upper[k] {
			x[i] = -1
		}
		d := a.diag[perm[k]]
		scale := d

		for _, i := range stack[top:] {
			lki := x[i] / c.val[colPtr[i]]
			x[i] = 0
			for p := colPtr[i] + 1; p < next[i]; p++ {
				x[c.rowIdx[p]] -= c.val[p] * lki
			}
			d -= lki * lki
			p := next[i]
			next[i]++
			c.rowIdx[p] = k
			c.val[p] = lki
		}

		if d <= pivotTolerance*math.Max(scale, 1) {
			return nil, perm[k], false
		}
		p := next[k]
		next[k]++
		c.rowIdx[p] = k
		c.val[p] = math.Sqrt(d)
	}

	return c, -1, true
}

// solve returns y with A·y = b, where b and y are in original ordering
func (c *cholesky) solve(b []float64) []float64 {
	z := make([]float64, c.n)
	for old, v := range b {
		z[c.iperm[old]] = v
	}

	// L·w = z
	for j := 0; j < c.n; j++ {
		start, end := c.colPtr[j], c.colPtr[j+1]
		z[j] /= c.val[start]
		for p := start + 1; p < end; p++ {
			z[c.rowIdx[p]] -= c.val[p] * z[j]
		}
	}

	// Lᵀ·y = w
	for j := c.n - 1; j >= 0; j-- {
		start, end := c.colPtr[j], c.colPtr[j+1]
		for p := start + 1; p < end; p++ {
			z[j] -= c.val[p] * z[c.rowIdx[p]]
		}
		z[j] /= c.val[start]
	}

	y := make([]float64, c.n)
	for newIdx, v := range z {
		y[c.perm[newIdx]] = v
	}
	return y
}

// nonzeros returns the number of stored entries in L
func (c *cholesky) nonzeros() int {
	return c.colPtr[c.n]
}
