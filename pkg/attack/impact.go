package attack

import (
	"fmt"

	"github.com/dd0wney/cluso-resilience/pkg/algorithms"
	"github.com/dd0wney/cluso-resilience/pkg/graph"
)

// TopHubsBetweennessLimit is the largest graph for which TopHubs also ranks
// by exact betweenness.
const TopHubsBetweennessLimit = 50

// Hub is a ranked node with its descriptive attributes
type Hub struct {
	ID      graph.NodeID `json:"id"`
	Name    string       `json:"name"`
	City    string       `json:"city"`
	Country string       `json:"country"`
	Code    string       `json:"iata"`
	Lat     float64      `json:"lat"`
	Lon     float64      `json:"lon"`
	Score   float64      `json:"score"`
}

// HubRanking lists the top hubs by degree and, for small graphs, by betweenness
type HubRanking struct {
	ByDegree      []Hub `json:"by_degree"`
	ByBetweenness []Hub `json:"by_betweenness"`
}

// TopHubs returns the k highest-degree nodes and, when g has at most
// TopHubsBetweennessLimit nodes, the k highest by exact betweenness.
func TopHubs(g *graph.Graph, k int) HubRanking {
	ranking := HubRanking{
		ByDegree:      hubsOf(g, algorithms.TopNodes(algorithms.DegreeCentrality(g), k)),
		ByBetweenness: []Hub{},
	}
	if g.NodeCount() <= TopHubsBetweennessLimit {
		scores := algorithms.BetweennessCentrality(g, algorithms.BetweennessOptions{})
		ranking.ByBetweenness = hubsOf(g, algorithms.TopNodes(scores, k))
	}
	return ranking
}

func hubsOf(g *graph.Graph, ranked []algorithms.RankedNode) []Hub {
	hubs := make([]Hub, 0, len(ranked))
	for _, rn := range ranked {
		attrs, _ := g.Node(rn.NodeID)
		hubs = append(hubs, Hub{
			ID:      rn.NodeID,
			Name:    attrs.Name,
			City:    attrs.City,
			Country: attrs.Country,
			Code:    attrs.Code,
			Lat:     attrs.Lat,
			Lon:     attrs.Lon,
			Score:   rn.Score,
		})
	}
	return hubs
}

// ImpactStep is the state of the graph after removing the first Step hubs
type ImpactStep struct {
	Step     int     `json:"step"`
	Removed  int     `json:"removed"`
	Fraction float64 `json:"fraction_removed"`
	algorithms.GraphStats
}

// ImpactReport is the result of TopKImpact
type ImpactReport struct {
	Strategy Strategy              `json:"strategy"`
	K        int                   `json:"k"`
	Baseline algorithms.GraphStats `json:"baseline"`
	Hubs     []Hub                 `json:"hubs"`
	Curve    []ImpactStep          `json:"impact_curve"`
}

// TopKImpact ranks the top k hubs of g once (static ranking by degree or
// betweenness, sampled above BetweennessSampleThreshold nodes) and removes
// them one at a time, recording the stats after each removal. Fractions are
// relative to the original node count.
func TopKImpact(g *graph.Graph, by Strategy, k int) (ImpactReport, error) {
	if by != Degree && by != Betweenness {
		return ImpactReport{}, fmt.Errorf("%w: top-k impact supports degree or betweenness, got %q", ErrUnknownStrategy, by)
	}

	ix := graph.NewIndex(g)
	baseline := algorithms.StatsOf(ix, nil)
	report := ImpactReport{Strategy: by, K: k, Baseline: baseline}

	order, _ := rankHandles(ix, by, k, RankOptions{Adaptive: false})
	ranked := make([]algorithms.RankedNode, len(order))
	for i, h := range order {
		ranked[i] = algorithms.RankedNode{NodeID: ix.IDs[h]}
	}
	report.Hubs = hubsOf(g, ranked)

	report.Curve = append(report.Curve, ImpactStep{GraphStats: baseline})
	alive := allAlive(ix.Len())
	for step, h := range order {
		alive[h] = false
		report.Curve = append(report.Curve, ImpactStep{
			Step:       step + 1,
			Removed:    step + 1,
			Fraction:   float64(step+1) / float64(ix.Len()),
			GraphStats: algorithms.StatsOf(ix, alive),
		})
	}
	return report, nil
}
