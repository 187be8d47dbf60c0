package defense

import (
	"cmp"
	"slices"

	"github.com/dd0wney/cluso-resilience/pkg/algorithms"
	"github.com/dd0wney/cluso-resilience/pkg/geo"
	"github.com/dd0wney/cluso-resilience/pkg/graph"
)

// Method tags recorded on added edges
const (
	MethodTER         = "ter"
	MethodHubFallback = "hub_fallback"
)

// ReinforceOptions configures ReinforceByEffectiveResistance. MaxDistanceKM
// <= 0 disables the distance cap.
type ReinforceOptions struct {
	K             int
	MaxCandidates int
	MaxDistanceKM float64
	Seed          int64
	Distance      geo.DistanceFunc
}

// DefaultReinforceOptions returns K=200, 20000 candidates, a 3000 km cap and seed 123
func DefaultReinforceOptions() ReinforceOptions {
	return ReinforceOptions{
		K:             200,
		MaxCandidates: DefaultMaxCandidates(200),
		MaxDistanceKM: 3000,
		Seed:          123,
	}
}

// DefaultMaxCandidates scales the candidate budget with k: min(20000, 100k)
func DefaultMaxCandidates(k int) int {
	return min(20000, 100*k)
}

// AddedEdge is an edge inserted by a defense, with its provenance
type AddedEdge struct {
	Source      graph.NodeID `json:"source"`
	Target      graph.NodeID `json:"target"`
	Method      string       `json:"method"`
	Reff        float64      `json:"reff,omitempty"`
	DistanceKM  float64      `json:"distance_km,omitempty"`
	HasDistance bool         `json:"has_distance"`
	Backup      bool         `json:"backup,omitempty"`
}

// Report describes how a reinforcement was produced. Fallback is set when the
// factorization failed and hub pairing was used instead.
type Report struct {
	Method         string `json:"method"`
	LCCNodes       int    `json:"lcc_nodes"`
	LCCEdges       int    `json:"lcc_edges"`
	Candidates     int    `json:"candidates"`
	Scored         int    `json:"scored"`
	Added          int    `json:"added"`
	FactorNonZeros int    `json:"factor_nonzeros,omitempty"`
	Fallback       bool   `json:"fallback"`
	FallbackReason string `json:"fallback_reason,omitempty"`
}

// factorize is swapped in tests to exercise the fallback branch
var factorize = Factorize

// ReinforceByEffectiveResistance restricts g to its largest component,
// factorizes it once, scores sampled candidate edges by effective resistance
// and adds the K highest (ties by canonical pair). The result is a new graph
// holding only the largest component plus the added edges; g is not
// modified. A graph with fewer than 2 nodes is returned as a copy, and K = 0
// returns a copy of the largest component.
//
// If the factorization fails the top-K degree hubs are paired instead and the
// report is marked as a fallback.
func ReinforceByEffectiveResistance(g *graph.Graph, opts ReinforceOptions) (*graph.Graph, []AddedEdge, Report) {
	report := Report{Method: MethodTER}
	if g.NodeCount() < 2 {
		return g.Clone(), nil, report
	}

	lcc := algorithms.LargestComponentGraph(g)
	report.LCCNodes = lcc.NodeCount()
	report.LCCEdges = lcc.EdgeCount()
	if opts.K <= 0 {
		return lcc, nil, report
	}

	f, err := factorize(lcc)
	if err != nil {
		report.Method = MethodHubFallback
		report.Fallback = true
		report.FallbackReason = err.Error()
		reinforced, added := HubPairing(lcc, opts.K, opts.MaxDistanceKM, opts.Distance)
		report.Added = len(added)
		return reinforced, added, report
	}
	report.FactorNonZeros = f.NonZeros()

	candidates := SampleCandidates(lcc, CandidateOptions{
		Max:           opts.MaxCandidates,
		MaxDistanceKM: opts.MaxDistanceKM,
		Seed:          opts.Seed,
		Distance:      opts.Distance,
	})
	report.Candidates = len(candidates)

	scored := ScoreCandidates(f, candidates)
	report.Scored = len(scored)

	reinforced := lcc
	added := make([]AddedEdge, 0, min(opts.K, len(scored)))
	for _, c := range scored[:min(opts.K, len(scored))] {
		attrs := graph.EdgeAttrs{
			DistanceKM:  c.DistanceKM,
			HasDistance: c.HasDistance,
			Defense:     MethodTER,
			Reff:        c.Score,
		}
		if err := reinforced.AddEdge(c.Source, c.Target, attrs); err != nil {
			continue
		}
		added = append(added, AddedEdge{
			Source:      c.Source,
			Target:      c.Target,
			Method:      MethodTER,
			Reff:        c.Score,
			DistanceKM:  c.DistanceKM,
			HasDistance: c.HasDistance,
		})
	}
	report.Added = len(added)
	return reinforced, added, report
}

// ScoreCandidates sets each candidate's Score to its effective resistance and
// returns them sorted by descending score, ties by canonical pair. Candidates
// that cannot be scored are dropped.
func ScoreCandidates(f *Factorization, candidates []Candidate) []Candidate {
	scored := make([]Candidate, 0, len(candidates))
	for _, c := range candidates {
		r, err := f.Resistance(c.Source, c.Target)
		if err != nil {
			continue
		}
		c.Score = r
		scored = append(scored, c)
	}

	slices.SortFunc(scored, func(a, b Candidate) int {
		if c := cmp.Compare(b.Score, a.Score); c != 0 {
			return c
		}
		return graph.CompareEdgeKeys(a.Key(), b.Key())
	})
	return scored
}

// HubPairing is the fallback defense: it connects the top-k degree hubs
// pairwise, skipping pairs already connected, pairs without coordinates on
// both ends and pairs beyond the distance cap, until k edges are added.
// Added edges are tagged hub_fallback and marked as backups.
func HubPairing(g *graph.Graph, k int, maxDistanceKM float64, distance geo.DistanceFunc) (*graph.Graph, []AddedEdge) {
	out := g.Clone()
	if g.NodeCount() < 2 || k <= 0 {
		return out, nil
	}

	hubs := algorithms.TopNodes(algorithms.DegreeCentrality(g), k)
	var added []AddedEdge

	for i := 0; i < len(hubs) && len(added) < k; i++ {
		for j := i + 1; j < len(hubs) && len(added) < k; j++ {
			key := graph.MakeEdgeKey(hubs[i].NodeID, hubs[j].NodeID)
			if g.HasEdge(key.U, key.V) {
				continue
			}
			d, ok := geo.NodeDistance(g, key.U, key.V, distance)
			if !ok || (maxDistanceKM > 0 && d > maxDistanceKM) {
				continue
			}

			attrs := graph.EdgeAttrs{DistanceKM: d, HasDistance: true, Defense: MethodHubFallback, Backup: true}
			if err := out.AddEdge(key.U, key.V, attrs); err != nil {
				continue
			}
			added = append(added, AddedEdge{
				Source:      key.U,
				Target:      key.V,
				Method:      MethodHubFallback,
				DistanceKM:  d,
				HasDistance: true,
				Backup:      true,
			})
		}
	}
	return out, added
}
