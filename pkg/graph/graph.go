package graph

import (
	"slices"

	"golang.org/x/exp/maps"
)

// New creates an empty graph
func New() *Graph {
	return &Graph{
		nodes: make(map[NodeID]NodeAttrs),
		adj:   make(map[NodeID]map[NodeID]EdgeAttrs),
	}
}

// Build constructs a graph from node and edge specifications. Edge endpoints
// missing from nodes are created with empty attributes. Self-loops are
// rejected.
func Build(nodes []NodeSpec, edges []EdgeSpec) (*Graph, error) {
	g := New()
	for _, n := range nodes {
		g.AddNode(n.ID, n.Attrs)
	}
	for _, e := range edges {
		if err := g.AddEdge(e.U, e.V, e.Attrs); err != nil {
			return nil, &GraphError{Op: "Build", Node: e.U, Other: e.V, Cause: err}
		}
	}
	return g, nil
}

// AddNode inserts a node or replaces the attributes of an existing one
func (g *Graph) AddNode(id NodeID, attrs NodeAttrs) {
	g.nodes[id] = attrs
	if _, ok := g.adj[id]; !ok {
		g.adj[id] = make(map[NodeID]EdgeAttrs)
	}
}

// HasNode reports whether id is present
func (g *Graph) HasNode(id NodeID) bool {
	_, ok := g.nodes[id]
	return ok
}

// Node returns the attributes of id
func (g *Graph) Node(id NodeID) (NodeAttrs, bool) {
	attrs, ok := g.nodes[id]
	return attrs, ok
}

// RemoveNode deletes id and every incident edge. Returns false if id was absent.
func (g *Graph) RemoveNode(id NodeID) bool {
	nbrs, ok := g.adj[id]
	if !ok {
		return false
	}
	for nb := range nbrs {
		delete(g.adj[nb], id)
		g.edges--
	}
	delete(g.adj, id)
	delete(g.nodes, id)
	return true
}

// AddEdge inserts the undirected edge {u, v}. Missing endpoints are created.
// Adding an existing edge replaces its attributes.
func (g *Graph) AddEdge(u, v NodeID, attrs EdgeAttrs) error {
	if u == v {
		return ErrSelfLoop
	}
	if !g.HasNode(u) {
		g.AddNode(u, NodeAttrs{})
	}
	if !g.HasNode(v) {
		g.AddNode(v, NodeAttrs{})
	}
	if _, exists := g.adj[u][v]; !exists {
		g.edges++
	}
	g.adj[u][v] = attrs
	g.adj[v][u] = attrs
	return nil
}

// HasEdge reports whether {u, v} is present
func (g *Graph) HasEdge(u, v NodeID) bool {
	_, ok := g.adj[u][v]
	return ok
}

// Edge returns the attributes of {u, v}
func (g *Graph) Edge(u, v NodeID) (EdgeAttrs, bool) {
	attrs, ok := g.adj[u][v]
	return attrs, ok
}

// RemoveEdge deletes {u, v}. Returns false if the edge was absent.
func (g *Graph) RemoveEdge(u, v NodeID) bool {
	if !g.HasEdge(u, v) {
		return false
	}
	delete(g.adj[u], v)
	delete(g.adj[v], u)
	g.edges--
	return true
}

// Degree returns the number of neighbours of id (0 if absent)
func (g *Graph) Degree(id NodeID) int {
	return len(g.adj[id])
}

// Neighbors returns the neighbours of id in ascending order
func (g *Graph) Neighbors(id NodeID) []NodeID {
	ids := maps.Keys(g.adj[id])
	slices.Sort(ids)
	return ids
}

// Nodes returns all node ids in ascending order
func (g *Graph) Nodes() []NodeID {
	ids := maps.Keys(g.nodes)
	slices.Sort(ids)
	return ids
}

// Edges returns all edges as canonical keys in ascending order
func (g *Graph) Edges() []EdgeKey {
	keys := make([]EdgeKey, 0, g.edges)
	for u, nbrs := range g.adj {
		for v := range nbrs {
			if u < v {
				keys = append(keys, EdgeKey{U: u, V: v})
			}
		}
	}
	slices.SortFunc(keys, CompareEdgeKeys)
	return keys
}

// NodeCount returns the number of nodes
func (g *Graph) NodeCount() int {
	return len(g.nodes)
}

// EdgeCount returns the number of undirected edges
func (g *Graph) EdgeCount() int {
	return g.edges
}

// Clone returns a deep copy. Node Extra maps are shared; they are treated as
// read-only metadata.
func (g *Graph) Clone() *Graph {
	c := &Graph{
		nodes: make(map[NodeID]NodeAttrs, len(g.nodes)),
		adj:   make(map[NodeID]map[NodeID]EdgeAttrs, len(g.adj)),
		edges: g.edges,
	}
	for id, attrs := range g.nodes {
		c.nodes[id] = attrs
	}
	for id, nbrs := range g.adj {
		cn := make(map[NodeID]EdgeAttrs, len(nbrs))
		for nb, attrs := range nbrs {
			cn[nb] = attrs
		}
		c.adj[id] = cn
	}
	return c
}

// Subgraph returns a copy induced by keep. Ids not present in g are ignored.
func (g *Graph) Subgraph(keep NodeSet) *Graph {
	sub := New()
	for id := range keep {
		if attrs, ok := g.nodes[id]; ok {
			sub.AddNode(id, attrs)
		}
	}
	for id := range sub.nodes {
		for nb, attrs := range g.adj[id] {
			if id < nb && sub.HasNode(nb) {
				sub.adj[id][nb] = attrs
				sub.adj[nb][id] = attrs
				sub.edges++
			}
		}
	}
	return sub
}

// Equal reports whether g and o have the same node ids and the same edges.
// Attributes are not compared.
func (g *Graph) Equal(o *Graph) bool {
	if g.NodeCount() != o.NodeCount() || g.EdgeCount() != o.EdgeCount() {
		return false
	}
	for id := range g.nodes {
		if !o.HasNode(id) {
			return false
		}
	}
	for u, nbrs := range g.adj {
		for v := range nbrs {
			if !o.HasEdge(u, v) {
				return false
			}
		}
	}
	return true
}

// DegreeSequence returns every node's degree sorted ascending
func (g *Graph) DegreeSequence() []int {
	seq := make([]int, 0, len(g.nodes))
	for id := range g.nodes {
		seq = append(seq, len(g.adj[id]))
	}
	slices.Sort(seq)
	return seq
}
