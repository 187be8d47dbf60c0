package api

import (
	"net/http"
	"strings"

	"github.com/dd0wney/cluso-resilience/pkg/analysis"
	"github.com/dd0wney/cluso-resilience/pkg/onion"
	"github.com/dd0wney/cluso-resilience/pkg/validation"
)

// routeEndpoints reads src/dst, accepting src_iata/dst_iata as aliases
func routeEndpoints(q *queryParser) (src, dst string) {
	src = strings.ToUpper(q.String("src", q.String("src_iata", "")))
	dst = strings.ToUpper(q.String("dst", q.String("dst_iata", "")))
	return src, dst
}

// handleRouteMetrics measures the hop distance between two airports
func (s *Server) handleRouteMetrics(w http.ResponseWriter, r *http.Request) {
	q := newQueryParser(r)
	src, dst := routeEndpoints(q)
	req := validation.RouteRequest{
		Source:      src,
		Target:      dst,
		WithDefense: q.Bool("with_defense", false),
	}
	if err := firstErr(q.Err(), validation.Struct(&req)); err != nil {
		s.respondFailure(w, r, "route metrics", err)
		return
	}

	report, err := s.svc.RouteMetrics(s.activeGraph(), req.Source, req.Target, req.WithDefense)
	if err != nil {
		s.respondFailure(w, r, "route metrics", err)
		return
	}
	s.respondJSON(w, http.StatusOK, report)
}

// handleRouteAttack removes the transit airports of a route one by one.
// "schneider" is accepted as a name for the swap defense.
func (s *Server) handleRouteAttack(w http.ResponseWriter, r *http.Request) {
	q := newQueryParser(r)
	defaults := analysis.DefaultRouteAttackOptions()
	src, dst := routeEndpoints(q)

	method := strings.ToLower(q.String("defense_method", defaults.Method))
	if method == "schneider" {
		method = onion.MethodSwap
	}
	req := validation.RouteAttackRequest{
		RouteRequest: validation.RouteRequest{
			Source:      src,
			Target:      dst,
			WithDefense: q.Bool("with_defense", defaults.WithDefense),
		},
		Method: method,
		K:      q.Int("defense_k", defaults.K),
		Combo:  splitCodes(q.String("combo_iata", "")),
	}
	if err := firstErr(q.Err(), validation.Struct(&req)); err != nil {
		s.respondFailure(w, r, "route attack", err)
		return
	}

	report, err := s.svc.RouteAttack(s.activeGraph(), req.Source, req.Target, analysis.RouteAttackOptions{
		WithDefense: req.WithDefense,
		Method:      req.Method,
		K:           req.K,
		Combo:       req.Combo,
	})
	if err != nil {
		s.respondFailure(w, r, "route attack", err)
		return
	}
	s.respondJSON(w, http.StatusOK, report)
}

// splitCodes parses a comma separated code list, dropping blanks
func splitCodes(raw string) []string {
	var codes []string
	for _, part := range strings.Split(raw, ",") {
		if code := strings.ToUpper(strings.TrimSpace(part)); code != "" {
			codes = append(codes, code)
		}
	}
	return codes
}
