package analysis

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/dd0wney/cluso-resilience/pkg/algorithms"
	"github.com/dd0wney/cluso-resilience/pkg/defense"
	"github.com/dd0wney/cluso-resilience/pkg/geo"
	"github.com/dd0wney/cluso-resilience/pkg/graph"
	"github.com/dd0wney/cluso-resilience/pkg/logging"
	"github.com/dd0wney/cluso-resilience/pkg/onion"
)

// UnknownDistanceKM is the cost of a route whose length cannot be computed
const UnknownDistanceKM = 99999.0

var (
	// ErrAirportNotFound is returned when a code matches no node
	ErrAirportNotFound = errors.New("airport not found")

	// ErrNoRoute is returned when the endpoints are disconnected
	ErrNoRoute = errors.New("no route between airports")

	// ErrOutsideLargestComponent is returned when a defended comparison needs
	// both endpoints in the largest component
	ErrOutsideLargestComponent = errors.New("airport outside the largest connected component")

	// ErrUnknownMethod is returned for an unsupported defense method
	ErrUnknownMethod = errors.New("unknown defense method")
)

// FindByCode returns the node whose IATA or ICAO code equals code, ignoring
// case. When several nodes match, the smallest id wins.
func FindByCode(g *graph.Graph, code string) (graph.NodeID, bool) {
	code = strings.ToUpper(strings.TrimSpace(code))
	if code == "" {
		return 0, false
	}
	for _, id := range g.Nodes() {
		attrs, _ := g.Node(id)
		if strings.EqualFold(attrs.Code, code) || strings.EqualFold(attrs.ICAO, code) {
			return id, true
		}
	}
	return 0, false
}

func lookup(g *graph.Graph, code string) (graph.NodeID, error) {
	id, ok := FindByCode(g, code)
	if !ok {
		return 0, fmt.Errorf("%w: %q", ErrAirportNotFound, code)
	}
	return id, nil
}

// label returns the IATA code of id, or its id when it has none
func label(g *graph.Graph, id graph.NodeID) string {
	if attrs, ok := g.Node(id); ok && attrs.Code != "" {
		return attrs.Code
	}
	return strconv.FormatInt(int64(id), 10)
}

func labels(g *graph.Graph, ids []graph.NodeID) []string {
	out := make([]string, len(ids))
	for i, id := range ids {
		out[i] = label(g, id)
	}
	return out
}

// HopMetrics describes the minimum-hop routes between two airports
type HopMetrics struct {
	Connected     bool     `json:"connected"`
	Hops          int      `json:"hops"`
	ShortestPaths float64  `json:"num_shortest_paths"`
	Path          []string `json:"path_iata"`
}

// RouteMetricsReport is the result of RouteMetrics
type RouteMetricsReport struct {
	Source      string      `json:"src_iata"`
	Target      string      `json:"dst_iata"`
	Baseline    HopMetrics  `json:"baseline"`
	WithDefense *HopMetrics `json:"with_defense"`
	AddedEdges  int         `json:"added_edges"`
}

// RouteDefenseOptions is the reinforcement applied by RouteMetrics
func RouteDefenseOptions() defense.ReinforceOptions {
	return defense.ReinforceOptions{K: 10, MaxCandidates: 2000, MaxDistanceKM: 3000, Seed: 123}
}

func hopMetrics(g *graph.Graph, src, dst graph.NodeID) HopMetrics {
	hops, count := algorithms.ShortestPathCount(g, src, dst)
	if hops < 0 {
		return HopMetrics{Path: []string{}}
	}
	return HopMetrics{
		Connected:     true,
		Hops:          hops,
		ShortestPaths: count,
		Path:          labels(g, algorithms.ShortestPath(g, src, dst)),
	}
}

// RouteMetrics measures the hop distance and the number of shortest routes
// between two airports. With withDefense set and the airports connected, the
// component holding them is reinforced with RouteDefenseOptions and measured
// again.
func (s *Service) RouteMetrics(g *graph.Graph, srcCode, dstCode string, withDefense bool) (RouteMetricsReport, error) {
	timer := logging.StartTimer(s.logger, "route metrics computed",
		logging.Operation(OpRouteMetrics), logging.String("src", srcCode), logging.String("dst", dstCode))

	src, err := lookup(g, srcCode)
	if err != nil {
		return RouteMetricsReport{}, s.fail(timer, OpRouteMetrics, err)
	}
	dst, err := lookup(g, dstCode)
	if err != nil {
		return RouteMetricsReport{}, s.fail(timer, OpRouteMetrics, err)
	}

	report := RouteMetricsReport{
		Source:   strings.ToUpper(srcCode),
		Target:   strings.ToUpper(dstCode),
		Baseline: hopMetrics(g, src, dst),
	}

	if withDefense && report.Baseline.Connected {
		component := g.Subgraph(componentOf(g, src))
		opts := RouteDefenseOptions()
		opts.Distance = s.distance
		reinforced, added, _ := s.ReinforceByEffectiveResistance(component, opts)
		defended := hopMetrics(reinforced, src, dst)
		report.WithDefense = &defended
		report.AddedEdges = len(added)
	}

	s.metrics.RecordAnalysis(OpRouteMetrics, nil, timer.End(logging.Int("hops", report.Baseline.Hops)))
	return report, nil
}

// componentOf returns the connected component containing id
func componentOf(g *graph.Graph, id graph.NodeID) graph.NodeSet {
	for _, comp := range algorithms.ConnectedComponents(g) {
		set := graph.NewNodeSet(comp...)
		if set.Contains(id) {
			return set
		}
	}
	return graph.NewNodeSet()
}

// RouteAttackOptions configures RouteAttack
type RouteAttackOptions struct {
	WithDefense bool
	// Method is defense.MethodTER or onion.MethodSwap
	Method string
	// K is the number of edges added by the effective-resistance defense
	K int
	// Combo lists codes removed together in the final scenario. Empty
	// selects the first two transit airports of the baseline route.
	Combo []string
}

// DefaultRouteAttackOptions defends with 500 effective-resistance edges
func DefaultRouteAttackOptions() RouteAttackOptions {
	return RouteAttackOptions{WithDefense: true, Method: defense.MethodTER, K: 500}
}

// RouteOutcome is the distance-weighted shortest route in one scenario
type RouteOutcome struct {
	Connected  bool     `json:"connected"`
	DistanceKM float64  `json:"distance_km"`
	Hops       int      `json:"hops"`
	Path       []string `json:"path_iata"`
}

// RouteScenario is the outcome of removing Targets from the original and,
// when requested, the defended network
type RouteScenario struct {
	Name      string         `json:"scenario"`
	Targets   []string       `json:"target_iata"`
	TargetIDs []graph.NodeID `json:"target_ids"`
	Original  RouteOutcome   `json:"original"`
	Defended  *RouteOutcome  `json:"defended"`
}

// RouteAttackReport is the result of RouteAttack
type RouteAttackReport struct {
	Source           string          `json:"src_iata"`
	Target           string          `json:"dst_iata"`
	Method           string          `json:"defense_method,omitempty"`
	BaselineOriginal RouteOutcome    `json:"baseline_original"`
	BaselineDefended *RouteOutcome   `json:"baseline_defended"`
	Transit          []string        `json:"transit_nodes"`
	Scenarios        []RouteScenario `json:"attack_results"`
}

// routeWeight prefers the stored route length and falls back to the
// great-circle distance of the endpoints
func (s *Service) routeWeight(g *graph.Graph) algorithms.WeightFunc {
	return func(u, v graph.NodeID, attrs graph.EdgeAttrs) float64 {
		if attrs.HasDistance {
			return attrs.DistanceKM
		}
		if d, ok := geo.NodeDistance(g, u, v, s.distance); ok {
			return d
		}
		return UnknownDistanceKM
	}
}

func (s *Service) measure(g *graph.Graph, src, dst graph.NodeID, removed []graph.NodeID) RouteOutcome {
	if len(removed) > 0 {
		g = g.Clone()
		for _, id := range removed {
			g.RemoveNode(id)
		}
	}
	path, ok := algorithms.WeightedShortestPath(g, src, dst, s.routeWeight(g))
	if !ok {
		return RouteOutcome{Path: []string{}}
	}
	return RouteOutcome{
		Connected:  true,
		DistanceKM: path.Distance,
		Hops:       path.Hops(),
		Path:       labels(g, path.Nodes),
	}
}

// RouteAttack follows the shortest route by distance between two airports,
// removes each transit airport in turn and then a combination of airports,
// and reports how the route degrades. With a defense selected the same
// scenarios run on a reinforced copy of the largest component.
func (s *Service) RouteAttack(g *graph.Graph, srcCode, dstCode string, opts RouteAttackOptions) (RouteAttackReport, error) {
	timer := logging.StartTimer(s.logger, "route attack simulated",
		logging.Operation(OpRouteAttack), logging.String("src", srcCode), logging.String("dst", dstCode))

	src, err := lookup(g, srcCode)
	if err != nil {
		return RouteAttackReport{}, s.fail(timer, OpRouteAttack, err)
	}
	dst, err := lookup(g, dstCode)
	if err != nil {
		return RouteAttackReport{}, s.fail(timer, OpRouteAttack, err)
	}

	baseline, ok := algorithms.WeightedShortestPath(g, src, dst, s.routeWeight(g))
	if !ok {
		return RouteAttackReport{}, s.fail(timer, OpRouteAttack,
			fmt.Errorf("%w: %s and %s", ErrNoRoute, srcCode, dstCode))
	}

	var transit []graph.NodeID
	if len(baseline.Nodes) > 2 {
		transit = baseline.Nodes[1 : len(baseline.Nodes)-1]
	}

	var defended *graph.Graph
	if opts.WithDefense {
		defended, err = s.defendRoute(g, src, dst, opts)
		if err != nil {
			return RouteAttackReport{}, s.fail(timer, OpRouteAttack, err)
		}
	}

	report := RouteAttackReport{
		Source:  strings.ToUpper(srcCode),
		Target:  strings.ToUpper(dstCode),
		Transit: labels(g, transit),
	}
	if defended != nil {
		report.Method = opts.Method
	}

	scenario := func(name string, targets []graph.NodeID) RouteScenario {
		sc := RouteScenario{
			Name:      name,
			Targets:   labels(g, targets),
			TargetIDs: targets,
			Original:  s.measure(g, src, dst, targets),
		}
		if defended != nil {
			outcome := s.measure(defended, src, dst, targets)
			sc.Defended = &outcome
		}
		return sc
	}

	base := scenario("Baseline", []graph.NodeID{})
	report.BaselineOriginal = base.Original
	report.BaselineDefended = base.Defended
	report.Scenarios = append(report.Scenarios, base)

	for _, id := range transit {
		report.Scenarios = append(report.Scenarios, scenario("Remove "+label(g, id), []graph.NodeID{id}))
	}

	if combo := comboTargets(g, transit, opts.Combo); len(combo) > 0 {
		report.Scenarios = append(report.Scenarios,
			scenario("Combo: "+strings.Join(labels(g, combo), ", "), combo))
	}

	s.metrics.RecordAnalysis(OpRouteAttack, nil, timer.End(
		logging.Int("transit", len(transit)),
		logging.Count(len(report.Scenarios)),
	))
	return report, nil
}

// comboTargets resolves codes to nodes, skipping unknown codes. Without codes
// the first two transit airports are used.
func comboTargets(g *graph.Graph, transit []graph.NodeID, codes []string) []graph.NodeID {
	if len(codes) == 0 {
		return transit[:min(2, len(transit))]
	}
	targets := make([]graph.NodeID, 0, len(codes))
	for _, code := range codes {
		if id, ok := FindByCode(g, code); ok {
			targets = append(targets, id)
		}
	}
	return targets
}

func (s *Service) defendRoute(g *graph.Graph, src, dst graph.NodeID, opts RouteAttackOptions) (*graph.Graph, error) {
	lcc := algorithms.LargestComponent(g)
	if !lcc.Contains(src) || !lcc.Contains(dst) {
		return nil, ErrOutsideLargestComponent
	}
	component := g.Subgraph(lcc)

	switch opts.Method {
	case defense.MethodTER:
		k := max(0, opts.K)
		reinforced, _, _ := s.ReinforceByEffectiveResistance(component, defense.ReinforceOptions{
			K:             k,
			MaxCandidates: defense.DefaultMaxCandidates(k),
			MaxDistanceKM: 3000,
			Seed:          123,
		})
		return reinforced, nil
	case onion.MethodSwap:
		swap := onion.DefaultOptions()
		swap.MaxTrials = 10000
		swap.Patience = 3000
		optimized, _ := s.OptimizeBySwapping(component, swap)
		return optimized, nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownMethod, opts.Method)
	}
}
