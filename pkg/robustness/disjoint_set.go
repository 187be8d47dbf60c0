package robustness

// DisjointSet is a union-find over dense handles with path halving and union
// by size. It tracks the size of the largest set. Not safe for concurrent use;
// each curve evaluation owns its own instance.
type DisjointSet struct {
	parent  []int
	size    []int
	largest int
}

// NewDisjointSet creates n singleton sets
func NewDisjointSet(n int) *DisjointSet {
	ds := &DisjointSet{
		parent: make([]int, n),
		size:   make([]int, n),
	}
	for i := range ds.parent {
		ds.parent[i] = i
		ds.size[i] = 1
	}
	if n > 0 {
		ds.largest = 1
	}
	return ds
}

// Find returns the representative of x
func (ds *DisjointSet) Find(x int) int {
	for ds.parent[x] != x {
		ds.parent[x] = ds.parent[ds.parent[x]]
		x = ds.parent[x]
	}
	return x
}

// Union merges the sets of a and b and returns the size of the merged set
func (ds *DisjointSet) Union(a, b int) int {
	ra, rb := ds.Find(a), ds.Find(b)
	if ra == rb {
		return ds.size[ra]
	}
	if ds.size[ra] < ds.size[rb] {
		ra, rb = rb, ra
	}
	ds.parent[rb] = ra
	ds.size[ra] += ds.size[rb]
	if ds.size[ra] > ds.largest {
		ds.largest = ds.size[ra]
	}
	return ds.size[ra]
}

// Connected reports whether a and b are in the same set
func (ds *DisjointSet) Connected(a, b int) bool {
	return ds.Find(a) == ds.Find(b)
}

// SetSize returns the size of the set containing x
func (ds *DisjointSet) SetSize(x int) int {
	return ds.size[ds.Find(x)]
}

// Largest returns the size of the largest set
func (ds *DisjointSet) Largest() int {
	return ds.largest
}
