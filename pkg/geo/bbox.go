package geo

import (
	"github.com/dd0wney/cluso-resilience/pkg/graph"
)

// BBox is a latitude/longitude window. Nil bounds are open.
type BBox struct {
	MinLat *float64 `json:"minLat,omitempty" yaml:"min_lat"`
	MaxLat *float64 `json:"maxLat,omitempty" yaml:"max_lat"`
	MinLon *float64 `json:"minLon,omitempty" yaml:"min_lon"`
	MaxLon *float64 `json:"maxLon,omitempty" yaml:"max_lon"`
}

// NewBBox builds a fully closed box
func NewBBox(minLat, maxLat, minLon, maxLon float64) *BBox {
	return &BBox{MinLat: &minLat, MaxLat: &maxLat, MinLon: &minLon, MaxLon: &maxLon}
}

// IsZero reports whether no bound is set
func (b *BBox) IsZero() bool {
	return b == nil || (b.MinLat == nil && b.MaxLat == nil && b.MinLon == nil && b.MaxLon == nil)
}

// Contains reports whether the coordinate lies inside the box (bounds inclusive)
func (b *BBox) Contains(lat, lon float64) bool {
	if b == nil {
		return true
	}
	if b.MinLat != nil && lat < *b.MinLat {
		return false
	}
	if b.MaxLat != nil && lat > *b.MaxLat {
		return false
	}
	if b.MinLon != nil && lon < *b.MinLon {
		return false
	}
	if b.MaxLon != nil && lon > *b.MaxLon {
		return false
	}
	return true
}

// Equal reports whether two boxes have identical bounds
func (b *BBox) Equal(o *BBox) bool {
	if b.IsZero() || o.IsZero() {
		return b.IsZero() && o.IsZero()
	}
	return eqPtr(b.MinLat, o.MinLat) && eqPtr(b.MaxLat, o.MaxLat) &&
		eqPtr(b.MinLon, o.MinLon) && eqPtr(b.MaxLon, o.MaxLon)
}

func eqPtr(a, b *float64) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return *a == *b
}

// Filter returns the subgraph of nodes with valid coordinates inside the box.
// A zero box returns a plain copy.
func Filter(g *graph.Graph, b *BBox) *graph.Graph {
	if b.IsZero() {
		return g.Clone()
	}

	keep := make(graph.NodeSet)
	for _, id := range g.Nodes() {
		attrs, _ := g.Node(id)
		if !attrs.HasCoords || !ValidCoords(attrs.Lat, attrs.Lon) {
			continue
		}
		if b.Contains(attrs.Lat, attrs.Lon) {
			keep.Add(id)
		}
	}
	return g.Subgraph(keep)
}
