package graph

import (
	"cmp"
	"slices"

	"golang.org/x/exp/maps"
)

// NodeID is an opaque node identifier (OpenFlights airport id for route graphs)
type NodeID int64

// NodeAttrs holds the descriptive attributes of a node
type NodeAttrs struct {
	Name      string         `json:"name,omitempty"`
	City      string         `json:"city,omitempty"`
	Country   string         `json:"country,omitempty"`
	Code      string         `json:"iata,omitempty"`
	ICAO      string         `json:"icao,omitempty"`
	Lat       float64        `json:"lat"`
	Lon       float64        `json:"lon"`
	HasCoords bool           `json:"has_coords"`
	Extra     map[string]any `json:"extra,omitempty"`
}

// EdgeAttrs holds edge attributes: route distance and, for edges added by a
// defense, the provenance of the addition.
type EdgeAttrs struct {
	DistanceKM  float64 `json:"distance_km,omitempty"`
	HasDistance bool    `json:"has_distance"`
	Defense     string  `json:"defense,omitempty"`
	Reff        float64 `json:"reff,omitempty"`
	Backup      bool    `json:"backup,omitempty"`
}

// EdgeKey is the canonical form of an undirected edge: U <= V.
type EdgeKey struct {
	U NodeID `json:"u"`
	V NodeID `json:"v"`
}

// MakeEdgeKey returns the canonical key for the unordered pair {u, v}
func MakeEdgeKey(u, v NodeID) EdgeKey {
	if u > v {
		u, v = v, u
	}
	return EdgeKey{U: u, V: v}
}

// Less orders edge keys lexicographically
func (k EdgeKey) Less(o EdgeKey) bool {
	if k.U != o.U {
		return k.U < o.U
	}
	return k.V < o.V
}

// CompareEdgeKeys is a three-way comparison suitable for slices.SortFunc
func CompareEdgeKeys(a, b EdgeKey) int {
	if c := cmp.Compare(a.U, b.U); c != 0 {
		return c
	}
	return cmp.Compare(a.V, b.V)
}

// NodeSet is a set of node identifiers
type NodeSet map[NodeID]struct{}

// NewNodeSet builds a set from ids
func NewNodeSet(ids ...NodeID) NodeSet {
	s := make(NodeSet, len(ids))
	for _, id := range ids {
		s[id] = struct{}{}
	}
	return s
}

// Add inserts id into the set
func (s NodeSet) Add(id NodeID) {
	s[id] = struct{}{}
}

// Contains reports whether id is a member
func (s NodeSet) Contains(id NodeID) bool {
	_, ok := s[id]
	return ok
}

// Sorted returns the members in ascending order
func (s NodeSet) Sorted() []NodeID {
	ids := maps.Keys(s)
	slices.Sort(ids)
	return ids
}

// NodeSpec describes one node for Build
type NodeSpec struct {
	ID    NodeID
	Attrs NodeAttrs
}

// EdgeSpec describes one edge for Build
type EdgeSpec struct {
	U     NodeID
	V     NodeID
	Attrs EdgeAttrs
}

// Graph is an undirected simple graph. It is not safe for concurrent
// mutation; callers that share a graph across goroutines must treat it as
// read-only or clone it first.
type Graph struct {
	nodes map[NodeID]NodeAttrs
	adj   map[NodeID]map[NodeID]EdgeAttrs
	edges int
}
