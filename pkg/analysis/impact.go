package analysis

import (
	"fmt"

	"github.com/dd0wney/cluso-resilience/pkg/algorithms"
	"github.com/dd0wney/cluso-resilience/pkg/attack"
	"github.com/dd0wney/cluso-resilience/pkg/defense"
	"github.com/dd0wney/cluso-resilience/pkg/graph"
	"github.com/dd0wney/cluso-resilience/pkg/logging"
	"github.com/dd0wney/cluso-resilience/pkg/onion"
	"github.com/dd0wney/cluso-resilience/pkg/robustness"
)

// ImpactOptions configures AttackImpact
type ImpactOptions struct {
	Fractions []float64
	// RandomRuns random orderings are averaged, run i seeded RandomSeed+i
	RandomRuns int
	RandomSeed int64
	// BetweennessLimit is the largest graph attacked by betweenness;
	// larger graphs report no betweenness curve
	BetweennessLimit int
	PageRank         bool
}

// DefaultImpactOptions returns the report used by the attack impact endpoint
func DefaultImpactOptions() ImpactOptions {
	return ImpactOptions{
		Fractions:        robustness.DefaultFractions(),
		RandomRuns:       5,
		RandomSeed:       42,
		BetweennessLimit: 200,
		PageRank:         true,
	}
}

// AttackImpact compares every attack strategy on one graph. Strategies that
// were not run are nil.
type AttackImpact struct {
	Baseline    algorithms.GraphStats       `json:"baseline"`
	Random      *attack.SimulateReport      `json:"random_attack"`
	Degree      *attack.SimulateReport      `json:"degree_targeted_attack"`
	PageRank    *attack.SimulateReport      `json:"pagerank_targeted_attack"`
	Betweenness *attack.SimulateReport      `json:"betweenness_targeted_attack"`
	RIndex      map[attack.Strategy]float64 `json:"r_index"`
}

// AttackImpact runs the random, degree, pagerank and (small graphs only)
// betweenness attacks against g.
func (s *Service) AttackImpact(g *graph.Graph, opts ImpactOptions) (AttackImpact, error) {
	timer := logging.StartTimer(s.logger, "attack impact computed",
		logging.Operation(OpAttackImpact), logging.Nodes(g.NodeCount()), logging.Edges(g.EdgeCount()))
	if g.NodeCount() == 0 {
		return AttackImpact{}, s.fail(timer, OpAttackImpact, ErrEmptyGraph)
	}

	impact := AttackImpact{
		Baseline: algorithms.Stats(g),
		RIndex:   make(map[attack.Strategy]float64),
	}
	run := func(strategy attack.Strategy, runs int, seed int64) *attack.SimulateReport {
		report := s.SimulateAttack(g, strategy, attack.SimulateOptions{
			Fractions: opts.Fractions,
			Runs:      runs,
			Seed:      seed,
			Adaptive:  true,
		})
		impact.RIndex[strategy] = report.Curve.RIndex()
		return &report
	}

	impact.Random = run(attack.Random, max(1, opts.RandomRuns), opts.RandomSeed)
	impact.Degree = run(attack.Degree, 1, 0)
	if opts.PageRank {
		impact.PageRank = run(attack.PageRank, 1, 0)
	}
	if g.NodeCount() <= opts.BetweennessLimit {
		impact.Betweenness = run(attack.Betweenness, 1, opts.RandomSeed)
	} else {
		s.logger.Debug("betweenness attack skipped", logging.Nodes(g.NodeCount()),
			logging.Int("limit", opts.BetweennessLimit))
	}

	s.metrics.RecordAnalysis(OpAttackImpact, nil, timer.End())
	return impact, nil
}

// DefenseImpactOptions configures DefenseImpact
type DefenseImpactOptions struct {
	Reinforce defense.ReinforceOptions
	Strategy  attack.Strategy
	Fractions []float64
}

// DefaultDefenseImpactOptions reinforces with 10 edges of at most 2000 km and
// attacks by degree.
func DefaultDefenseImpactOptions() DefenseImpactOptions {
	reinforce := defense.DefaultReinforceOptions()
	reinforce.K = 10
	reinforce.MaxCandidates = defense.DefaultMaxCandidates(reinforce.K)
	reinforce.MaxDistanceKM = 2000
	return DefenseImpactOptions{
		Reinforce: reinforce,
		Strategy:  attack.Degree,
		Fractions: robustness.DefaultFractions(),
	}
}

// DefenseImpact compares an attack on the largest component before and after
// effective-resistance reinforcement. Both graphs have the same node set.
type DefenseImpact struct {
	BaselineOriginal   algorithms.GraphStats `json:"baseline_original"`
	BaselineReinforced algorithms.GraphStats `json:"baseline_reinforced"`
	AddedEdges         []defense.AddedEdge   `json:"added_edges"`
	Defense            defense.Report        `json:"defense"`
	Strategy           attack.Strategy       `json:"attack_strategy"`
	AttackOriginal     attack.SimulateReport `json:"attack_original"`
	AttackReinforced   attack.SimulateReport `json:"attack_reinforced"`
	RIndexOriginal     float64               `json:"r_index_original"`
	RIndexReinforced   float64               `json:"r_index_reinforced"`
}

// DefenseImpact reinforces the largest component of g and attacks both the
// original component and the reinforced copy.
func (s *Service) DefenseImpact(g *graph.Graph, opts DefenseImpactOptions) (DefenseImpact, error) {
	timer := logging.StartTimer(s.logger, "defense impact computed",
		logging.Operation(OpDefenseImpact), logging.Strategy(string(opts.Strategy)))
	if g.NodeCount() == 0 {
		return DefenseImpact{}, s.fail(timer, OpDefenseImpact, ErrEmptyGraph)
	}

	lcc := algorithms.LargestComponentGraph(g)
	reinforced, added, report := s.ReinforceByEffectiveResistance(lcc, opts.Reinforce)
	if reinforced.NodeCount() != lcc.NodeCount() {
		err := fmt.Errorf("reinforced graph has %d nodes, component has %d", reinforced.NodeCount(), lcc.NodeCount())
		return DefenseImpact{}, s.fail(timer, OpDefenseImpact, err)
	}

	simulate := attack.SimulateOptions{Fractions: opts.Fractions, Runs: 1, Adaptive: true}
	impact := DefenseImpact{
		BaselineOriginal:   algorithms.Stats(lcc),
		BaselineReinforced: algorithms.Stats(reinforced),
		AddedEdges:         added,
		Defense:            report,
		Strategy:           opts.Strategy,
		AttackOriginal:     s.SimulateAttack(lcc, opts.Strategy, simulate),
		AttackReinforced:   s.SimulateAttack(reinforced, opts.Strategy, simulate),
	}
	impact.RIndexOriginal = impact.AttackOriginal.Curve.RIndex()
	impact.RIndexReinforced = impact.AttackReinforced.Curve.RIndex()

	s.metrics.RecordAnalysis(OpDefenseImpact, nil, timer.End(
		logging.Count(len(added)),
		logging.Float64("r_original", impact.RIndexOriginal),
		logging.Float64("r_reinforced", impact.RIndexReinforced),
	))
	return impact, nil
}

// SwapImpactOptions configures SwapImpact
type SwapImpactOptions struct {
	Swap      onion.Options
	Strategy  attack.Strategy
	Fractions []float64
}

// DefaultSwapImpactOptions uses the default optimizer and a degree attack
func DefaultSwapImpactOptions() SwapImpactOptions {
	return SwapImpactOptions{
		Swap:      onion.DefaultOptions(),
		Strategy:  attack.Degree,
		Fractions: robustness.DefaultFractions(),
	}
}

// SwapImpact compares an attack on the largest component before and after
// onion rewiring. Swaps keep both the node set and the edge count.
type SwapImpact struct {
	BaselineOriginal  algorithms.GraphStats `json:"baseline_original"`
	BaselineOptimized algorithms.GraphStats `json:"baseline_optimized"`
	OriginalEdges     int                   `json:"original_edges"`
	OptimizedEdges    int                   `json:"optimized_edges"`
	Info              onion.Info            `json:"swap_info"`
	Strategy          attack.Strategy       `json:"attack_strategy"`
	AttackOriginal    attack.SimulateReport `json:"attack_original"`
	AttackOptimized   attack.SimulateReport `json:"attack_optimized"`
}

// SwapImpact rewires the largest component of g and attacks both versions
func (s *Service) SwapImpact(g *graph.Graph, opts SwapImpactOptions) (SwapImpact, error) {
	timer := logging.StartTimer(s.logger, "swap impact computed",
		logging.Operation(OpSwapImpact), logging.Strategy(string(opts.Strategy)))
	if g.NodeCount() == 0 {
		return SwapImpact{}, s.fail(timer, OpSwapImpact, ErrEmptyGraph)
	}

	lcc := algorithms.LargestComponentGraph(g)
	optimized, info := s.OptimizeBySwapping(lcc, opts.Swap)

	simulate := attack.SimulateOptions{Fractions: opts.Fractions, Runs: 1, Adaptive: true}
	impact := SwapImpact{
		BaselineOriginal:  algorithms.Stats(lcc),
		BaselineOptimized: algorithms.Stats(optimized),
		OriginalEdges:     lcc.EdgeCount(),
		OptimizedEdges:    optimized.EdgeCount(),
		Info:              info,
		Strategy:          opts.Strategy,
		AttackOriginal:    s.SimulateAttack(lcc, opts.Strategy, simulate),
		AttackOptimized:   s.SimulateAttack(optimized, opts.Strategy, simulate),
	}

	s.metrics.RecordAnalysis(OpSwapImpact, nil, timer.End(logging.Int("accepted_swaps", info.AcceptedSwaps)))
	return impact, nil
}
