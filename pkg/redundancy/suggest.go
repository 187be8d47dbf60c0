// Package redundancy suggests a handful of backup routes between nearby hubs.
// It is advisory: the input graph is never modified.
package redundancy

import (
	"cmp"
	"slices"

	"github.com/dd0wney/cluso-resilience/pkg/algorithms"
	"github.com/dd0wney/cluso-resilience/pkg/defense"
	"github.com/dd0wney/cluso-resilience/pkg/geo"
	"github.com/dd0wney/cluso-resilience/pkg/graph"
)

const (
	// HubLimit is how many top-degree nodes are considered as endpoints
	HubLimit = 50
	// PairBudget caps the number of hub pairs inspected
	PairBudget = 200
	// GainRescoreLimit is the largest graph whose suggestions are re-scored by
	// the actual largest-component gain
	GainRescoreLimit = 100
)

// SuggestOptions configures Suggest. MaxDistanceKM <= 0 disables the cap.
type SuggestOptions struct {
	M             int
	MaxDistanceKM float64
	Distance      geo.DistanceFunc
}

// DefaultSuggestOptions returns M=10 and a 3000 km cap
func DefaultSuggestOptions() SuggestOptions {
	return SuggestOptions{M: 10, MaxDistanceKM: 3000}
}

// Suggestion is one proposed backup route
type Suggestion struct {
	Source     graph.NodeID `json:"source"`
	Target     graph.NodeID `json:"target"`
	SourceName string       `json:"source_name"`
	TargetName string       `json:"target_name"`
	SourceCode string       `json:"source_iata"`
	TargetCode string       `json:"target_iata"`
	DistanceKM float64      `json:"distance_km"`
	LCCGain    float64      `json:"lcc_gain"`
	ASPLGain   float64      `json:"aspl_gain"`
	Reff       float64      `json:"reff"`
	Score      float64      `json:"score"`
}

// Suggest proposes up to M new edges among the top-degree hubs. Pairs are
// scored by (deg(u)+deg(v)) / (distance+1); both endpoints need coordinates
// and must lie within the distance cap. On graphs of at most 100 nodes the
// kept suggestions are re-scored by ten times their gain in normalized
// largest-component size. Every suggestion carries the effective resistance
// of its endpoints within the largest component, or 0 when either endpoint
// lies outside it.
func Suggest(g *graph.Graph, opts SuggestOptions) []Suggestion {
	if g.NodeCount() < 2 || opts.M <= 0 {
		return nil
	}

	hubs := algorithms.TopNodes(algorithms.DegreeCentrality(g), HubLimit)
	candidates := make([]Suggestion, 0)

	checked := 0
	for i := 0; i < len(hubs) && checked < PairBudget; i++ {
		for j := i + 1; j < len(hubs) && checked < PairBudget; j++ {
			checked++
			u, v := hubs[i].NodeID, hubs[j].NodeID
			if g.HasEdge(u, v) {
				continue
			}
			d, ok := geo.NodeDistance(g, u, v, opts.Distance)
			if !ok || (opts.MaxDistanceKM > 0 && d > opts.MaxDistanceKM) {
				continue
			}

			key := graph.MakeEdgeKey(u, v)
			candidates = append(candidates, newSuggestion(g, key, d))
		}
	}

	sortSuggestions(candidates)
	kept := candidates[:min(opts.M, len(candidates))]

	if g.NodeCount() <= GainRescoreLimit {
		baseline := algorithms.NormalizedComponentSize(g)
		for i := range kept {
			trial := g.Clone()
			_ = trial.AddEdge(kept[i].Source, kept[i].Target, graph.EdgeAttrs{})
			kept[i].LCCGain = algorithms.NormalizedComponentSize(trial) - baseline
			kept[i].Score = 10*kept[i].LCCGain + kept[i].ASPLGain
		}
		sortSuggestions(kept)
	}

	annotateResistance(g, kept)
	return kept
}

func newSuggestion(g *graph.Graph, key graph.EdgeKey, dist float64) Suggestion {
	src, _ := g.Node(key.U)
	dst, _ := g.Node(key.V)
	return Suggestion{
		Source:     key.U,
		Target:     key.V,
		SourceName: src.Name,
		TargetName: dst.Name,
		SourceCode: src.Code,
		TargetCode: dst.Code,
		DistanceKM: dist,
		Score:      float64(g.Degree(key.U)+g.Degree(key.V)) / (dist + 1),
	}
}

func sortSuggestions(s []Suggestion) {
	slices.SortStableFunc(s, func(a, b Suggestion) int {
		if c := cmp.Compare(b.Score, a.Score); c != 0 {
			return c
		}
		return graph.CompareEdgeKeys(graph.MakeEdgeKey(a.Source, a.Target), graph.MakeEdgeKey(b.Source, b.Target))
	})
}

// annotateResistance fills Reff from one factorization of the largest
// component. A failed factorization leaves every Reff at 0.
func annotateResistance(g *graph.Graph, s []Suggestion) {
	if len(s) == 0 {
		return
	}
	f, err := defense.Factorize(algorithms.LargestComponentGraph(g))
	if err != nil {
		return
	}
	for i := range s {
		if !f.Contains(s[i].Source) || !f.Contains(s[i].Target) {
			continue
		}
		if r, err := f.Resistance(s[i].Source, s[i].Target); err == nil {
			s[i].Reff = r
		}
	}
}
