package geo

import (
	"github.com/dd0wney/cluso-resilience/pkg/graph"
)

// Geometry is a GeoJSON Point or LineString. Positions are [lon, lat].
type Geometry struct {
	Type        string `json:"type"`
	Coordinates any    `json:"coordinates"`
}

// Feature is a GeoJSON feature with free-form properties
type Feature struct {
	Type       string         `json:"type"`
	Geometry   Geometry       `json:"geometry"`
	Properties map[string]any `json:"properties"`
}

// FeatureCollection is a GeoJSON feature collection
type FeatureCollection struct {
	Type     string    `json:"type"`
	Features []Feature `json:"features"`
}

// MapLayers is the map view of a network: airports as points, routes as lines
type MapLayers struct {
	Airports FeatureCollection `json:"airports"`
	Routes   FeatureCollection `json:"routes"`
}

func newCollection() FeatureCollection {
	return FeatureCollection{Type: "FeatureCollection", Features: []Feature{}}
}

// ToGeoJSON renders g as map layers. Only airports that still have a route,
// valid coordinates, and lie inside the box become points. A route is drawn
// when both ends have valid coordinates and at least one end is inside the box.
// Callers pass the network with removals already applied.
func ToGeoJSON(g *graph.Graph, box *BBox) MapLayers {
	layers := MapLayers{Airports: newCollection(), Routes: newCollection()}

	for _, id := range g.Nodes() {
		if g.Degree(id) == 0 {
			continue
		}
		attrs, _ := g.Node(id)
		if !attrs.HasCoords || !ValidCoords(attrs.Lat, attrs.Lon) || !box.Contains(attrs.Lat, attrs.Lon) {
			continue
		}
		layers.Airports.Features = append(layers.Airports.Features, Feature{
			Type:     "Feature",
			Geometry: Geometry{Type: "Point", Coordinates: [2]float64{attrs.Lon, attrs.Lat}},
			Properties: map[string]any{
				"id":      id,
				"name":    attrs.Name,
				"city":    attrs.City,
				"country": attrs.Country,
				"iata":    attrs.Code,
				"icao":    attrs.ICAO,
			},
		})
	}

	for _, e := range g.Edges() {
		src, _ := g.Node(e.U)
		dst, _ := g.Node(e.V)
		if !src.HasCoords || !dst.HasCoords ||
			!ValidCoords(src.Lat, src.Lon) || !ValidCoords(dst.Lat, dst.Lon) {
			continue
		}
		if !box.Contains(src.Lat, src.Lon) && !box.Contains(dst.Lat, dst.Lon) {
			continue
		}
		layers.Routes.Features = append(layers.Routes.Features, Feature{
			Type: "Feature",
			Geometry: Geometry{
				Type:        "LineString",
				Coordinates: [][2]float64{{src.Lon, src.Lat}, {dst.Lon, dst.Lat}},
			},
			Properties: map[string]any{"source": e.U, "target": e.V},
		})
	}
	return layers
}
