package graph

import (
	"slices"

	"golang.org/x/exp/maps"
)

// RemovalOverlay records nodes and edges removed from a base graph without
// touching the base. It is a plain value: the owner is responsible for
// synchronisation.
type RemovalOverlay struct {
	nodes NodeSet
	edges map[EdgeKey]struct{}
}

// NewRemovalOverlay returns an empty overlay
func NewRemovalOverlay() *RemovalOverlay {
	return &RemovalOverlay{
		nodes: make(NodeSet),
		edges: make(map[EdgeKey]struct{}),
	}
}

// RemoveNode marks id and all of its incident base edges as removed.
// Returns false if id is not in base.
func (o *RemovalOverlay) RemoveNode(base *Graph, id NodeID) bool {
	if !base.HasNode(id) {
		return false
	}
	o.nodes.Add(id)
	for nb := range base.adj[id] {
		o.edges[MakeEdgeKey(id, nb)] = struct{}{}
	}
	return true
}

// RestoreNode undoes RemoveNode, restoring the incident edges as well.
// Returns false if id was not removed.
func (o *RemovalOverlay) RestoreNode(base *Graph, id NodeID) bool {
	if !o.nodes.Contains(id) {
		return false
	}
	delete(o.nodes, id)
	for nb := range base.adj[id] {
		delete(o.edges, MakeEdgeKey(id, nb))
	}
	return true
}

// RemoveEdge marks {u, v} as removed. Returns false if base has no such edge.
func (o *RemovalOverlay) RemoveEdge(base *Graph, u, v NodeID) bool {
	if !base.HasEdge(u, v) {
		return false
	}
	o.edges[MakeEdgeKey(u, v)] = struct{}{}
	return true
}

// RestoreEdge unmarks {u, v}. Returns false if it was not removed.
func (o *RemovalOverlay) RestoreEdge(u, v NodeID) bool {
	key := MakeEdgeKey(u, v)
	if _, ok := o.edges[key]; !ok {
		return false
	}
	delete(o.edges, key)
	return true
}

// Reset clears every removal
func (o *RemovalOverlay) Reset() {
	clear(o.nodes)
	clear(o.edges)
}

// Clone returns an independent copy
func (o *RemovalOverlay) Clone() *RemovalOverlay {
	c := NewRemovalOverlay()
	for id := range o.nodes {
		c.nodes.Add(id)
	}
	for k := range o.edges {
		c.edges[k] = struct{}{}
	}
	return c
}

// RemovedNodes returns the removed node ids in ascending order
func (o *RemovalOverlay) RemovedNodes() []NodeID {
	return o.nodes.Sorted()
}

// RemovedEdges returns the removed edge keys in ascending order
func (o *RemovalOverlay) RemovedEdges() []EdgeKey {
	keys := maps.Keys(o.edges)
	slices.SortFunc(keys, CompareEdgeKeys)
	return keys
}

// NodeRemoved reports whether id is marked removed
func (o *RemovalOverlay) NodeRemoved(id NodeID) bool {
	return o.nodes.Contains(id)
}

// EdgeRemoved reports whether {u, v} is marked removed, directly or through
// one of its endpoints.
func (o *RemovalOverlay) EdgeRemoved(u, v NodeID) bool {
	_, ok := o.edges[MakeEdgeKey(u, v)]
	return ok
}

// Size returns the number of removed nodes and edges
func (o *RemovalOverlay) Size() (nodes, edges int) {
	return len(o.nodes), len(o.edges)
}

// IsEmpty reports whether nothing is removed
func (o *RemovalOverlay) IsEmpty() bool {
	return len(o.nodes) == 0 && len(o.edges) == 0
}

// ApplyOverlay returns base minus the overlay's removals as a new graph.
// A nil overlay yields a plain copy.
func ApplyOverlay(base *Graph, o *RemovalOverlay) *Graph {
	active := base.Clone()
	if o == nil {
		return active
	}
	for id := range o.nodes {
		active.RemoveNode(id)
	}
	for k := range o.edges {
		active.RemoveEdge(k.U, k.V)
	}
	return active
}
