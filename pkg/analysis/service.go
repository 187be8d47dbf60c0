// Package analysis is the instrumented entry point to the robustness
// toolkit. Service wraps the attack simulator, both reinforcement optimizers,
// the redundancy advisor and the graph summary with structured logging and
// Prometheus metrics, and builds the before/after reports served by the API.
package analysis

import (
	"errors"

	"github.com/dd0wney/cluso-resilience/pkg/algorithms"
	"github.com/dd0wney/cluso-resilience/pkg/attack"
	"github.com/dd0wney/cluso-resilience/pkg/defense"
	"github.com/dd0wney/cluso-resilience/pkg/geo"
	"github.com/dd0wney/cluso-resilience/pkg/graph"
	"github.com/dd0wney/cluso-resilience/pkg/logging"
	"github.com/dd0wney/cluso-resilience/pkg/metrics"
	"github.com/dd0wney/cluso-resilience/pkg/onion"
	"github.com/dd0wney/cluso-resilience/pkg/redundancy"
)

// Operation labels used for logs and metrics
const (
	OpSimulate      = "simulate"
	OpReinforce     = "reinforce"
	OpSwap          = "swap"
	OpRedundancy    = "redundancy"
	OpStats         = "stats"
	OpAttackImpact  = "attack_impact"
	OpDefenseImpact = "defense_impact"
	OpSwapImpact    = "swap_impact"
	OpRouteMetrics  = "route_metrics"
	OpRouteAttack   = "route_attack"
	OpTopHubs       = "top_hubs"
	OpTopKImpact    = "top_k_impact"
)

var (
	// ErrEmptyGraph is returned by reports that need at least one node
	ErrEmptyGraph = errors.New("no nodes in graph")
)

// Service runs analysis operations. It holds no graph state: every call
// receives the graph to analyse and never modifies it.
type Service struct {
	logger   logging.Logger
	metrics  *metrics.Registry
	workers  int
	distance geo.DistanceFunc
}

// Option configures a Service
type Option func(*Service)

// WithLogger sets the logger
func WithLogger(logger logging.Logger) Option {
	return func(s *Service) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithMetrics sets the metrics registry
func WithMetrics(registry *metrics.Registry) Option {
	return func(s *Service) {
		if registry != nil {
			s.metrics = registry
		}
	}
}

// WithWorkers sets the worker count used for multi-run random attacks
func WithWorkers(workers int) Option {
	return func(s *Service) {
		s.workers = max(1, workers)
	}
}

// WithDistance overrides the great-circle distance
func WithDistance(fn geo.DistanceFunc) Option {
	return func(s *Service) {
		s.distance = fn
	}
}

// NewService creates a Service. Without options it logs nowhere and records
// into the default metrics registry.
func NewService(opts ...Option) *Service {
	s := &Service{
		logger:   logging.NewNopLogger(),
		metrics:  metrics.DefaultRegistry(),
		workers:  1,
		distance: geo.GreatCircleKM,
	}
	for _, opt := range opts {
		opt(s)
	}
	s.logger = s.logger.With(logging.Component("analysis"))
	return s
}

// Logger returns the service logger
func (s *Service) Logger() logging.Logger {
	return s.logger
}

// Metrics returns the metrics registry the service records into
func (s *Service) Metrics() *metrics.Registry {
	return s.metrics
}

// SimulateAttack runs strategy against g. Workers left at 0 use the service
// default.
func (s *Service) SimulateAttack(g *graph.Graph, strategy attack.Strategy, opts attack.SimulateOptions) attack.SimulateReport {
	if opts.Workers == 0 {
		opts.Workers = s.workers
	}
	timer := logging.StartTimer(s.logger, "attack simulated",
		logging.Operation(OpSimulate),
		logging.Strategy(string(strategy)),
		logging.Bool("adaptive", opts.Adaptive),
		logging.Nodes(g.NodeCount()),
	)

	report := attack.SimulateWithReport(g, strategy, opts)
	r := report.Curve.RIndex()

	if report.Fallbacks > 0 {
		s.logger.Warn("pagerank did not converge, ranked by degree instead",
			logging.Strategy(string(strategy)), logging.Count(report.Fallbacks))
	}
	elapsed := timer.End(logging.RIndex(r), logging.Int("runs", report.Runs))
	s.metrics.RecordAnalysis(OpSimulate, nil, elapsed)
	s.metrics.RecordCurve(string(strategy), r, report.Fallbacks)
	return report
}

// ReinforceByEffectiveResistance adds up to opts.K backup edges to the largest
// component of g. A failed factorization falls back to hub pairing, which is
// logged and counted.
func (s *Service) ReinforceByEffectiveResistance(g *graph.Graph, opts defense.ReinforceOptions) (*graph.Graph, []defense.AddedEdge, defense.Report) {
	if opts.Distance == nil {
		opts.Distance = s.distance
	}
	timer := logging.StartTimer(s.logger, "network reinforced",
		logging.Operation(OpReinforce),
		logging.Int("k", opts.K),
		logging.Float64("max_distance_km", opts.MaxDistanceKM),
		logging.Nodes(g.NodeCount()),
	)

	reinforced, added, report := defense.ReinforceByEffectiveResistance(g, opts)
	if report.Fallback {
		s.logger.Warn("effective resistance unavailable, paired hubs instead",
			logging.Method(report.Method), logging.String("reason", report.FallbackReason))
	}

	elapsed := timer.End(
		logging.Method(report.Method),
		logging.Int("candidates", report.Candidates),
		logging.Count(len(added)),
	)
	s.metrics.RecordAnalysis(OpReinforce, nil, elapsed)
	s.metrics.RecordReinforcement(report.Method, len(added), report.Fallback)
	return reinforced, added, report
}

// OptimizeBySwapping rewires g with degree-preserving swaps
func (s *Service) OptimizeBySwapping(g *graph.Graph, opts onion.Options) (*graph.Graph, onion.Info) {
	timer := logging.StartTimer(s.logger, "network rewired",
		logging.Operation(OpSwap),
		logging.Int("max_trials", opts.MaxTrials),
		logging.Int("patience", opts.Patience),
		logging.Edges(g.EdgeCount()),
	)

	optimized, info := onion.Optimize(g, opts)

	elapsed := timer.End(
		logging.Float64("r_initial", info.RInitial),
		logging.Float64("r_best", info.RBest),
		logging.Int("accepted_swaps", info.AcceptedSwaps),
		logging.Int("trials", info.Trials),
		logging.Bool("stopped_by_patience", info.StoppedByPatience),
	)
	s.metrics.RecordAnalysis(OpSwap, nil, elapsed)
	s.metrics.RecordSwaps(info.AcceptedSwaps, info.Evaluations)
	return optimized, info
}

// SuggestRedundancy proposes backup routes between nearby hubs
func (s *Service) SuggestRedundancy(g *graph.Graph, opts redundancy.SuggestOptions) []redundancy.Suggestion {
	if opts.Distance == nil {
		opts.Distance = s.distance
	}
	timer := logging.StartTimer(s.logger, "redundancy suggested",
		logging.Operation(OpRedundancy),
		logging.Int("m", opts.M),
		logging.Nodes(g.NodeCount()),
	)

	suggestions := redundancy.Suggest(g, opts)

	elapsed := timer.End(logging.Count(len(suggestions)))
	s.metrics.RecordAnalysis(OpRedundancy, nil, elapsed)
	return suggestions
}

// GetStats summarizes g
func (s *Service) GetStats(g *graph.Graph) algorithms.GraphStats {
	timer := logging.StartTimer(s.logger, "stats computed", logging.Operation(OpStats))
	stats := algorithms.Stats(g)
	elapsed := timer.End(logging.Nodes(stats.Nodes), logging.Edges(stats.Edges))
	s.metrics.RecordAnalysis(OpStats, nil, elapsed)
	return stats
}

// TopHubs ranks the k busiest airports of g
func (s *Service) TopHubs(g *graph.Graph, k int) attack.HubRanking {
	timer := logging.StartTimer(s.logger, "hubs ranked", logging.Operation(OpTopHubs), logging.Int("k", k))
	ranking := attack.TopHubs(g, k)
	elapsed := timer.End(logging.Nodes(g.NodeCount()), logging.Bool("betweenness", len(ranking.ByBetweenness) > 0))
	s.metrics.RecordAnalysis(OpTopHubs, nil, elapsed)
	return ranking
}

// TopKImpact removes the top k hubs of g by one ranking, one at a time
func (s *Service) TopKImpact(g *graph.Graph, by attack.Strategy, k int) (attack.ImpactReport, error) {
	timer := logging.StartTimer(s.logger, "top-k impact computed",
		logging.Operation(OpTopKImpact), logging.Strategy(string(by)), logging.Int("k", k))
	if g.NodeCount() == 0 {
		return attack.ImpactReport{}, s.fail(timer, OpTopKImpact, ErrEmptyGraph)
	}

	report, err := attack.TopKImpact(g, by, k)
	if err != nil {
		return attack.ImpactReport{}, s.fail(timer, OpTopKImpact, err)
	}
	s.metrics.RecordAnalysis(OpTopKImpact, nil, timer.End(logging.Count(len(report.Hubs))))
	return report, nil
}

// fail logs and counts a report that could not be produced
func (s *Service) fail(timer *logging.TimedOperation, op string, err error) error {
	s.metrics.RecordAnalysis(op, err, timer.EndError(err))
	return err
}
