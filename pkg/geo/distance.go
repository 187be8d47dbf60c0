// Package geo provides great-circle distances and bounding-box filtering for
// coordinate-carrying graph nodes.
package geo

import (
	"math"

	"github.com/dd0wney/cluso-resilience/pkg/graph"
)

// EarthRadiusKM is the mean Earth radius used for great-circle distances
const EarthRadiusKM = 6371.009

// DistanceFunc returns the distance in kilometres between two coordinates,
// or false when it cannot be computed.
type DistanceFunc func(lat1, lon1, lat2, lon2 float64) (float64, bool)

// ValidCoords reports whether lat/lon are finite and within range
func ValidCoords(lat, lon float64) bool {
	if math.IsNaN(lat) || math.IsNaN(lon) || math.IsInf(lat, 0) || math.IsInf(lon, 0) {
		return false
	}
	return lat >= -90 && lat <= 90 && lon >= -180 && lon <= 180
}

// GreatCircleKM computes the haversine great-circle distance
func GreatCircleKM(lat1, lon1, lat2, lon2 float64) (float64, bool) {
	if !ValidCoords(lat1, lon1) || !ValidCoords(lat2, lon2) {
		return 0, false
	}

	phi1 := lat1 * math.Pi / 180
	phi2 := lat2 * math.Pi / 180
	dPhi := (lat2 - lat1) * math.Pi / 180
	dLambda := (lon2 - lon1) * math.Pi / 180

	a := math.Sin(dPhi/2)*math.Sin(dPhi/2) +
		math.Cos(phi1)*math.Cos(phi2)*math.Sin(dLambda/2)*math.Sin(dLambda/2)
	c := 2 * math.Atan2(math.Sqrt(a), math.Sqrt(1-a))

	return EarthRadiusKM * c, true
}

// NodeDistance returns the distance between two nodes of g using fn (the
// great-circle distance when fn is nil). It reports false when either node is
// missing or lacks coordinates.
func NodeDistance(g *graph.Graph, u, v graph.NodeID, fn DistanceFunc) (float64, bool) {
	nu, ok := g.Node(u)
	if !ok || !nu.HasCoords {
		return 0, false
	}
	nv, ok := g.Node(v)
	if !ok || !nv.HasCoords {
		return 0, false
	}
	if fn == nil {
		fn = GreatCircleKM
	}
	return fn(nu.Lat, nu.Lon, nv.Lat, nv.Lon)
}
