package defense

import (
	"fmt"

	"github.com/dd0wney/cluso-resilience/pkg/algorithms"
	"github.com/dd0wney/cluso-resilience/pkg/graph"
)

// Factorization is a read-only sparse Cholesky factor of a graph's grounded
// Laplacian. The ground is the node with the largest id. It belongs to one
// fixed snapshot of the graph; rebuild it whenever the node set changes.
type Factorization struct {
	ids    []graph.NodeID
	index  map[graph.NodeID]int
	ground int
	factor *cholesky
}

// Factorize builds the unit-weight Laplacian of g over its nodes in ascending
// id order, removes the ground row and column, and factorizes the remainder.
// g must be connected; pass the largest component.
func Factorize(g *graph.Graph) (*Factorization, error) {
	ix := graph.NewIndex(g)
	n := ix.Len()
	if n < 2 {
		return nil, fmt.Errorf("%w: %d nodes", ErrTooSmall, n)
	}
	if _, sizes := algorithms.ComponentLabels(ix, nil); len(sizes) > 1 {
		return nil, fmt.Errorf("%w: graph has %d components", ErrNotPositiveDefinite, len(sizes))
	}

	ground := n - 1
	reduced := symmetricPattern{
		diag: make([]float64, n-1),
		adj:  make([][]int, n-1),
	}
	for v := 0; v < ground; v++ {
		reduced.diag[v] = float64(ix.Degree(v))
		for _, w := range ix.Adj[v] {
			if w != ground {
				reduced.adj[v] = append(reduced.adj[v], w)
			}
		}
	}

	factor, bad, ok := factorCholesky(reduced)
	if !ok {
		return nil, fmt.Errorf("%w: non-positive pivot at node %d", ErrNotPositiveDefinite, ix.IDs[bad])
	}

	index := make(map[graph.NodeID]int, n)
	for h, id := range ix.IDs {
		index[id] = h
	}
	return &Factorization{ids: ix.IDs, index: index, ground: ground, factor: factor}, nil
}

// Len returns the number of nodes covered, ground included
func (f *Factorization) Len() int {
	return len(f.ids)
}

// Ground returns the grounded node
func (f *Factorization) Ground() graph.NodeID {
	return f.ids[f.ground]
}

// Contains reports whether id was part of the factorized graph
func (f *Factorization) Contains(id graph.NodeID) bool {
	_, ok := f.index[id]
	return ok
}

// NonZeros returns the number of stored entries of the Cholesky factor
func (f *Factorization) NonZeros() int {
	return f.factor.nonzeros()
}

// Resistance returns the effective resistance between u and v: it solves
// L·x = e_u − e_v with the ground potential fixed at 0 and returns x_u − x_v.
func (f *Factorization) Resistance(u, v graph.NodeID) (float64, error) {
	iu, ok := f.index[u]
	if !ok {
		return 0, fmt.Errorf("%w: %d", ErrNodeNotFactorized, u)
	}
	iv, ok := f.index[v]
	if !ok {
		return 0, fmt.Errorf("%w: %d", ErrNodeNotFactorized, v)
	}
	if iu == iv {
		return 0, nil
	}

	// handles below the ground map to themselves in the reduced system
	b := make([]float64, f.ground)
	if iu != f.ground {
		b[iu] += 1
	}
	if iv != f.ground {
		b[iv] -= 1
	}
	x := f.factor.solve(b)

	potential := func(i int) float64 {
		if i == f.ground {
			return 0
		}
		return x[i]
	}
	return potential(iu) - potential(iv), nil
}
