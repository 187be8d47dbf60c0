package graph

// Index is a read-only compact view of a graph: nodes are mapped to dense
// handles 0..n-1 in ascending id order and adjacency is stored as sorted
// handle slices. Algorithms run on an Index rather than the map-based Graph.
type Index struct {
	IDs []NodeID
	Adj [][]int
	pos map[NodeID]int
	m   int
}

// NewIndex builds the compact view of g
func NewIndex(g *Graph) *Index {
	ids := g.Nodes()
	pos := make(map[NodeID]int, len(ids))
	for i, id := range ids {
		pos[id] = i
	}

	adj := make([][]int, len(ids))
	for i, id := range ids {
		nbrs := g.Neighbors(id)
		row := make([]int, len(nbrs))
		for j, nb := range nbrs {
			row[j] = pos[nb]
		}
		adj[i] = row
	}

	return &Index{IDs: ids, Adj: adj, pos: pos, m: g.EdgeCount()}
}

// Len returns the number of nodes
func (ix *Index) Len() int {
	return len(ix.IDs)
}

// EdgeCount returns the number of undirected edges
func (ix *Index) EdgeCount() int {
	return ix.m
}

// Handle returns the dense handle of id
func (ix *Index) Handle(id NodeID) (int, bool) {
	h, ok := ix.pos[id]
	return h, ok
}

// Degree returns the degree of handle h
func (ix *Index) Degree(h int) int {
	return len(ix.Adj[h])
}
