package precomputed

import (
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/dd0wney/cluso-resilience/pkg/analysis"
	"github.com/dd0wney/cluso-resilience/pkg/geo"
	"github.com/dd0wney/cluso-resilience/pkg/graph"
	"github.com/dd0wney/cluso-resilience/pkg/logging"
)

// BetweennessLimit is the largest region attacked by betweenness offline
const BetweennessLimit = 50

// Result is the cached attack impact of one region
type Result struct {
	Region     string    `json:"region"`
	RegionName string    `json:"region_name"`
	RunID      string    `json:"run_id"`
	ComputedAt time.Time `json:"computed_at"`
	analysis.AttackImpact
}

// Set maps region keys to results
type Set map[string]Result

// ImpactOptions returns the attack impact options used offline
func ImpactOptions() analysis.ImpactOptions {
	opts := analysis.DefaultImpactOptions()
	opts.BetweennessLimit = BetweennessLimit
	return opts
}

// Compute filters base to region and runs the attack impact report on it
func Compute(svc *analysis.Service, base *graph.Graph, region Region) (Result, error) {
	g := geo.Filter(base, region.BBox)
	impact, err := svc.AttackImpact(g, ImpactOptions())
	if err != nil {
		return Result{}, fmt.Errorf("region %s: %w", region.Key, err)
	}
	return Result{
		Region:       region.Key,
		RegionName:   region.Name,
		RunID:        uuid.NewString(),
		ComputedAt:   time.Now().UTC(),
		AttackImpact: impact,
	}, nil
}

// ComputeAll computes every region. Regions with no nodes are skipped.
func ComputeAll(svc *analysis.Service, base *graph.Graph, regions []Region) Set {
	logger := svc.Logger().With(logging.Component("precompute"))
	set := make(Set, len(regions))
	for _, region := range regions {
		result, err := Compute(svc, base, region)
		if err != nil {
			logger.Warn("region skipped", logging.Region(region.Key), logging.Error(err))
			continue
		}
		logger.Info("region computed",
			logging.Region(region.Key),
			logging.Nodes(result.Baseline.Nodes),
			logging.Edges(result.Baseline.Edges),
		)
		set[region.Key] = result
	}
	return set
}
