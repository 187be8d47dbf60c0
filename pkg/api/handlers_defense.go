package api

import (
	"net/http"

	"github.com/dd0wney/cluso-resilience/pkg/analysis"
	"github.com/dd0wney/cluso-resilience/pkg/attack"
	"github.com/dd0wney/cluso-resilience/pkg/defense"
	"github.com/dd0wney/cluso-resilience/pkg/onion"
	"github.com/dd0wney/cluso-resilience/pkg/redundancy"
	"github.com/dd0wney/cluso-resilience/pkg/validation"
)

// handleDefenseImpact compares an attack before and after effective-resistance
// reinforcement. k_hubs is accepted as an alias of k.
func (s *Server) handleDefenseImpact(w http.ResponseWriter, r *http.Request) {
	q := newQueryParser(r)
	opts := analysis.DefaultDefenseImpactOptions()
	k := q.Int("k", q.Int("k_hubs", opts.Reinforce.K))
	req := validation.ReinforceRequest{
		BBoxRequest:   q.BBox(),
		K:             k,
		MaxCandidates: q.Int("max_candidates", defense.DefaultMaxCandidates(k)),
		MaxDistanceKM: q.Float("max_distance_km", opts.Reinforce.MaxDistanceKM),
		Seed:          q.Int64("seed", opts.Reinforce.Seed),
		Strategy:      q.String("attack_strategy", string(opts.Strategy)),
	}
	if err := firstErr(q.Err(), validation.Struct(&req)); err != nil {
		s.respondFailure(w, r, "defense impact", err)
		return
	}
	strategy, err := attack.ParseStrategy(req.Strategy)
	if err != nil {
		s.respondFailure(w, r, "defense impact", err)
		return
	}

	opts.Strategy = strategy
	opts.Reinforce = defense.ReinforceOptions{
		K:             req.K,
		MaxCandidates: req.MaxCandidates,
		MaxDistanceKM: req.MaxDistanceKM,
		Seed:          req.Seed,
	}

	g, _ := regionGraph(s.activeGraph(), req.BBoxRequest, true)
	impact, err := s.svc.DefenseImpact(g, opts)
	if err != nil {
		s.respondFailure(w, r, "defense impact", err)
		return
	}
	s.respondJSON(w, http.StatusOK, impact)
}

// handleSwapImpact compares an attack before and after onion rewiring
func (s *Server) handleSwapImpact(w http.ResponseWriter, r *http.Request) {
	q := newQueryParser(r)
	defaults := s.defaults.Swap
	req := validation.SwapRequest{
		BBoxRequest: q.BBox(),
		MaxTrials:   q.Int("max_trials", defaults.MaxTrials),
		Patience:    q.Int("patience", defaults.Patience),
		MinDeltaR:   q.Float("min_delta_r", defaults.MinDeltaR),
		Seed:        q.Int64("seed", defaults.Seed),
		Prefilter:   q.Bool("prefilter", defaults.Prefilter),
		Strategy:    q.String("attack_strategy", string(attack.Degree)),
	}
	if err := firstErr(q.Err(), validation.Struct(&req)); err != nil {
		s.respondFailure(w, r, "swap impact", err)
		return
	}
	strategy, err := attack.ParseStrategy(req.Strategy)
	if err != nil {
		s.respondFailure(w, r, "swap impact", err)
		return
	}

	opts := analysis.DefaultSwapImpactOptions()
	opts.Strategy = strategy
	opts.Swap = onion.Options{
		Fractions: defaults.Fractions,
		MaxTrials: req.MaxTrials,
		Patience:  req.Patience,
		MinDeltaR: req.MinDeltaR,
		Seed:      req.Seed,
		Prefilter: req.Prefilter,
	}
	if len(opts.Swap.Fractions) == 0 {
		opts.Swap.Fractions = onion.DefaultOptions().Fractions
	}

	g, _ := regionGraph(s.activeGraph(), req.BBoxRequest, true)
	impact, err := s.svc.SwapImpact(g, opts)
	if err != nil {
		s.respondFailure(w, r, "swap impact", err)
		return
	}
	s.respondJSON(w, http.StatusOK, impact)
}

// handleRedundancy proposes backup routes between nearby hubs
func (s *Server) handleRedundancy(w http.ResponseWriter, r *http.Request) {
	q := newQueryParser(r)
	defaults := s.defaults.Redundancy
	req := validation.RedundancyRequest{
		BBoxRequest:   q.BBox(),
		M:             q.Int("m", defaults.M),
		MaxDistanceKM: q.Float("max_distance_km", defaults.MaxDistanceKM),
	}
	if err := firstErr(q.Err(), validation.Struct(&req)); err != nil {
		s.respondFailure(w, r, "redundancy", err)
		return
	}

	g, _ := regionGraph(s.activeGraph(), req.BBoxRequest, false)
	suggestions := s.svc.SuggestRedundancy(g, redundancy.SuggestOptions{
		M:             req.M,
		MaxDistanceKM: req.MaxDistanceKM,
	})
	if suggestions == nil {
		suggestions = []redundancy.Suggestion{}
	}
	s.respondJSON(w, http.StatusOK, RedundancyResponse{Suggestions: suggestions})
}
