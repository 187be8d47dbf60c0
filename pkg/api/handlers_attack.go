package api

import (
	"fmt"
	"net/http"

	"github.com/dd0wney/cluso-resilience/pkg/analysis"
	"github.com/dd0wney/cluso-resilience/pkg/attack"
	"github.com/dd0wney/cluso-resilience/pkg/geo"
	"github.com/dd0wney/cluso-resilience/pkg/logging"
	"github.com/dd0wney/cluso-resilience/pkg/precomputed"
	"github.com/dd0wney/cluso-resilience/pkg/robustness"
	"github.com/dd0wney/cluso-resilience/pkg/validation"
)

// handleSimulate runs one attack strategy against the active network
func (s *Server) handleSimulate(w http.ResponseWriter, r *http.Request) {
	var req validation.SimulateRequest
	if s.newRequestDecoder(w, r).DecodeJSON(&req).Validate(&req).RespondError() {
		return
	}
	strategy, err := attack.ParseStrategy(req.Strategy)
	if err != nil {
		s.respondFailure(w, r, "simulate", err)
		return
	}

	defaults := s.defaults.Attack
	opts := attack.SimulateOptions{
		Fractions: defaults.Fractions,
		Runs:      defaults.Runs,
		Seed:      defaults.Seed,
		Adaptive:  defaults.Adaptive,
	}
	if len(req.Fractions) > 0 {
		opts.Fractions = req.Fractions
	}
	if req.Runs > 0 {
		opts.Runs = req.Runs
	}
	if req.Seed != 0 {
		opts.Seed = req.Seed
	}
	if req.Adaptive != nil {
		opts.Adaptive = *req.Adaptive
	}

	g, _ := regionGraph(s.activeGraph(), req.BBoxRequest, false)
	report := s.svc.SimulateAttack(g, strategy, opts)
	s.respondJSON(w, http.StatusOK, SimulateResponse{
		SimulateReport: report,
		LegacyName:     strategy.LegacyName(),
		RIndex:         report.Curve.RIndex(),
		Nodes:          g.NodeCount(),
	})
}

// handleAttackImpact reports every strategy against one region. Cached
// results are served while no removals are active.
func (s *Server) handleAttackImpact(w http.ResponseWriter, r *http.Request) {
	q := newQueryParser(r)
	req := validation.ImpactRequest{
		BBoxRequest: q.BBox(),
		Region:      q.String("region", ""),
		Runs:        q.Int("n_runs", analysis.DefaultImpactOptions().RandomRuns),
	}
	recompute := q.Bool("recompute", false)
	if err := firstErr(q.Err(), validation.Struct(&req)); err != nil {
		s.respondFailure(w, r, "attack impact", err)
		return
	}

	region, known, box := resolveRegion(req)
	if known && s.store != nil && !recompute && s.overlayEmpty() {
		cached, hit := s.store.Get(region.Key)
		s.metrics.RecordPrecomputedLookup(hit)
		if hit {
			s.respondJSON(w, http.StatusOK, ImpactResponse{
				Source:       SourcePrecomputed,
				Region:       cached.Region,
				RegionName:   cached.RegionName,
				RunID:        cached.RunID,
				BBox:         box,
				AttackImpact: cached.AttackImpact,
			})
			return
		}
	}

	g := geo.Filter(s.activeGraph(), box)
	opts := analysis.DefaultImpactOptions()
	opts.RandomRuns = req.Runs
	impact, err := s.svc.AttackImpact(g, opts)
	if err != nil {
		s.respondFailure(w, r, "attack impact", err)
		return
	}

	resp := ImpactResponse{Source: SourceComputed, BBox: box, AttackImpact: impact}
	if known {
		resp.Region, resp.RegionName = region.Key, region.Name
	}
	s.respondJSON(w, http.StatusOK, resp)
}

// handleAttackImpactCustom runs one strategy over a ladder of 11 fractions
// from 0 to max_fraction. Without a bbox the default region is analysed.
func (s *Server) handleAttackImpactCustom(w http.ResponseWriter, r *http.Request) {
	q := newQueryParser(r)
	req := validation.CustomImpactRequest{
		BBoxRequest: q.BBox(),
		Strategy:    q.String("strategy", ""),
		MaxFraction: q.Float("max_fraction", 0.5),
		Runs:        q.Int("n_runs", analysis.DefaultImpactOptions().RandomRuns),
	}
	if err := firstErr(q.Err(), validation.Struct(&req)); err != nil {
		s.respondFailure(w, r, "custom attack impact", err)
		return
	}
	strategy, err := attack.ParseStrategy(req.Strategy)
	if err != nil {
		s.respondFailure(w, r, "custom attack impact", err)
		return
	}

	g, box := regionGraph(s.activeGraph(), req.BBoxRequest, true)
	if g.NodeCount() == 0 {
		s.respondFailure(w, r, "custom attack impact", analysis.ErrEmptyGraph)
		return
	}

	opts := attack.SimulateOptions{
		Fractions: robustness.FractionLadder(0, req.MaxFraction, 11),
		Runs:      1,
		Seed:      analysis.DefaultImpactOptions().RandomSeed,
		Adaptive:  true,
	}
	if strategy == attack.Random {
		opts.Runs = req.Runs
	}
	report := s.svc.SimulateAttack(g, strategy, opts)
	s.respondJSON(w, http.StatusOK, CustomImpactResponse{
		Baseline:    s.svc.GetStats(g),
		Strategy:    strategy,
		MaxFraction: req.MaxFraction,
		BBox:        box,
		RIndex:      report.Curve.RIndex(),
		Result:      report,
	})
}

// resolveRegion picks the analysed window: a named region, then an explicit
// bbox (matched back to a region when its bounds are identical), then the
// default region.
func resolveRegion(req validation.ImpactRequest) (precomputed.Region, bool, *geo.BBox) {
	if req.Region != "" {
		region, ok := precomputed.Lookup(req.Region)
		return region, ok, region.BBox
	}
	if box := toBBox(req.BBoxRequest); box != nil {
		region, ok := precomputed.RegionFor(box)
		return region, ok, box
	}
	region, ok := precomputed.Lookup(precomputed.DefaultRegion)
	return region, ok, region.BBox
}

// handleTopHubs ranks the busiest airports, optionally within a window
func (s *Server) handleTopHubs(w http.ResponseWriter, r *http.Request) {
	q := newQueryParser(r)
	req := validation.HubsRequest{BBoxRequest: q.BBox(), K: q.Int("k", 10)}
	if err := firstErr(q.Err(), validation.Struct(&req)); err != nil {
		s.respondFailure(w, r, "top hubs", err)
		return
	}

	g, _ := regionGraph(s.activeGraph(), req.BBoxRequest, false)
	s.respondJSON(w, http.StatusOK, s.svc.TopHubs(g, req.K))
}

// handleTopKImpact removes the top k hubs of a region one at a time
func (s *Server) handleTopKImpact(w http.ResponseWriter, r *http.Request) {
	q := newQueryParser(r)
	req := validation.TopKRequest{
		BBoxRequest: q.BBox(),
		By:          q.String("strategy", string(attack.Degree)),
		K:           q.Int("k", 10),
	}
	if err := firstErr(q.Err(), validation.Struct(&req)); err != nil {
		s.respondFailure(w, r, "top-k impact", err)
		return
	}

	g, box := regionGraph(s.activeGraph(), req.BBoxRequest, true)
	report, err := s.svc.TopKImpact(g, attack.Strategy(req.By), req.K)
	if err != nil {
		s.respondFailure(w, r, "top-k impact", err)
		return
	}
	s.logger.Debug("top-k impact served",
		logging.Strategy(req.By), logging.String("bbox", describeBBox(box)))
	s.respondJSON(w, http.StatusOK, report)
}

func describeBBox(b *geo.BBox) string {
	if b.IsZero() {
		return "all"
	}
	f := func(v *float64) string {
		if v == nil {
			return "*"
		}
		return fmt.Sprintf("%g", *v)
	}
	return fmt.Sprintf("lat[%s,%s] lon[%s,%s]", f(b.MinLat), f(b.MaxLat), f(b.MinLon), f(b.MaxLon))
}
