// Package precomputed caches attack impact reports for well-known regions.
// Results are computed offline by the CLI, stored as JSON (snappy framed
// when the file name ends in .sz), optionally mirrored to S3, and served by
// the API before it falls back to computing on the fly.
package precomputed

import (
	"github.com/dd0wney/cluso-resilience/pkg/geo"
)

// DefaultRegion is analysed when a request names no region and no bbox
const DefaultRegion = "southeast-asia"

// Region is a named bounding box
type Region struct {
	Key  string    `json:"key"`
	Name string    `json:"name"`
	BBox *geo.BBox `json:"bbox"`
}

var regions = []Region{
	{Key: "southeast-asia", Name: "Southeast Asia", BBox: geo.NewBBox(-10, 30, 90, 150)},
	{Key: "asia", Name: "Asia", BBox: geo.NewBBox(-10, 55, 60, 150)},
	{Key: "europe", Name: "Europe", BBox: geo.NewBBox(35, 72, -15, 40)},
	{Key: "north-america", Name: "North America", BBox: geo.NewBBox(15, 72, -170, -50)},
}

// Regions returns the known regions in a fixed order
func Regions() []Region {
	out := make([]Region, len(regions))
	copy(out, regions)
	return out
}

// Lookup returns the region with the given key
func Lookup(key string) (Region, bool) {
	for _, r := range regions {
		if r.Key == key {
			return r, true
		}
	}
	return Region{}, false
}

// RegionFor maps a bbox back to the region with exactly the same bounds
func RegionFor(b *geo.BBox) (Region, bool) {
	if b.IsZero() {
		return Region{}, false
	}
	for _, r := range regions {
		if r.BBox.Equal(b) {
			return r, true
		}
	}
	return Region{}, false
}
