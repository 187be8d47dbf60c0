package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/dd0wney/cluso-resilience/pkg/analysis"
	"github.com/dd0wney/cluso-resilience/pkg/api/middleware"
	"github.com/dd0wney/cluso-resilience/pkg/attack"
	"github.com/dd0wney/cluso-resilience/pkg/geo"
	"github.com/dd0wney/cluso-resilience/pkg/graph"
	"github.com/dd0wney/cluso-resilience/pkg/logging"
	"github.com/dd0wney/cluso-resilience/pkg/precomputed"
	"github.com/dd0wney/cluso-resilience/pkg/validation"
)

func (s *Server) respondJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		s.logger.Error("encode response", logging.Error(err))
	}
}

func (s *Server) respondError(w http.ResponseWriter, status int, message string) {
	s.respondJSON(w, status, ErrorResponse{
		Error:   http.StatusText(status),
		Message: message,
		Code:    status,
	})
}

// respondFailure maps an analysis error to a status code. Unknown errors are
// logged in full and reported to the client as "<operation> failed".
func (s *Server) respondFailure(w http.ResponseWriter, r *http.Request, operation string, err error) {
	switch {
	case errors.Is(err, validation.ErrInvalidRequest),
		errors.Is(err, attack.ErrUnknownStrategy),
		errors.Is(err, analysis.ErrUnknownMethod):
		s.respondError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, analysis.ErrEmptyGraph):
		s.respondError(w, http.StatusBadRequest, "No nodes in region")
	case errors.Is(err, analysis.ErrAirportNotFound):
		s.respondError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, analysis.ErrOutsideLargestComponent),
		errors.Is(err, analysis.ErrNoRoute):
		s.respondError(w, http.StatusUnprocessableEntity, err.Error())
	default:
		s.logger.Error("request failed",
			logging.Operation(operation),
			logging.RequestID(middleware.GetRequestID(r)),
			logging.Error(err),
		)
		s.respondError(w, http.StatusInternalServerError, fmt.Sprintf("%s failed", operation))
	}
}

// requestDecoder decodes and validates request bodies.
// It provides a fluent interface for common request handling patterns.
type requestDecoder struct {
	r          *http.Request
	w          http.ResponseWriter
	server     *Server
	err        error
	statusCode int
}

// newRequestDecoder creates a new request decoder for the given request.
func (s *Server) newRequestDecoder(w http.ResponseWriter, r *http.Request) *requestDecoder {
	return &requestDecoder{
		r:      r,
		w:      w,
		server: s,
	}
}

// DecodeJSON decodes the request body into v. Unknown fields are rejected.
func (rd *requestDecoder) DecodeJSON(v any) *requestDecoder {
	if rd.err != nil {
		return rd
	}
	dec := json.NewDecoder(rd.r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			rd.err = fmt.Errorf("request body exceeds %d bytes", tooLarge.Limit)
			rd.statusCode = http.StatusRequestEntityTooLarge
			return rd
		}
		rd.err = fmt.Errorf("invalid request body: %w", err)
		rd.statusCode = http.StatusBadRequest
	}
	return rd
}

// Validate runs the struct tag validation on v
func (rd *requestDecoder) Validate(v any) *requestDecoder {
	if rd.err != nil {
		return rd
	}
	if err := validation.Struct(v); err != nil {
		rd.err = err
		rd.statusCode = http.StatusBadRequest
	}
	return rd
}

// HasError returns true if any error occurred during decoding/validation.
func (rd *requestDecoder) HasError() bool {
	return rd.err != nil
}

// RespondError sends the error response and returns true if there was an error.
func (rd *requestDecoder) RespondError() bool {
	if rd.err == nil {
		return false
	}
	rd.server.respondError(rd.w, rd.statusCode, rd.err.Error())
	return true
}

// queryParser reads typed query parameters, keeping the first error
type queryParser struct {
	values url.Values
	err    error
}

func newQueryParser(r *http.Request) *queryParser {
	return &queryParser{values: r.URL.Query()}
}

func (q *queryParser) fail(name, raw, kind string) {
	if q.err == nil {
		q.err = fmt.Errorf("%w: %s: %q is not %s", validation.ErrInvalidRequest, name, raw, kind)
	}
}

// String returns the trimmed parameter or def when absent
func (q *queryParser) String(name, def string) string {
	if v := strings.TrimSpace(q.values.Get(name)); v != "" {
		return v
	}
	return def
}

// Int returns the parameter as an int or def when absent
func (q *queryParser) Int(name string, def int) int {
	raw := q.values.Get(name)
	if raw == "" {
		return def
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		q.fail(name, raw, "an integer")
		return def
	}
	return v
}

// Int64 returns the parameter as an int64 or def when absent
func (q *queryParser) Int64(name string, def int64) int64 {
	raw := q.values.Get(name)
	if raw == "" {
		return def
	}
	v, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		q.fail(name, raw, "an integer")
		return def
	}
	return v
}

// Float returns the parameter as a float64 or def when absent
func (q *queryParser) Float(name string, def float64) float64 {
	if v := q.OptFloat(name); v != nil {
		return *v
	}
	return def
}

// OptFloat returns nil when the parameter is absent
func (q *queryParser) OptFloat(name string) *float64 {
	raw := q.values.Get(name)
	if raw == "" {
		return nil
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		q.fail(name, raw, "a number")
		return nil
	}
	return &v
}

// Bool returns the parameter as a bool or def when absent
func (q *queryParser) Bool(name string, def bool) bool {
	raw := q.values.Get(name)
	if raw == "" {
		return def
	}
	v, err := strconv.ParseBool(raw)
	if err != nil {
		q.fail(name, raw, "a boolean")
		return def
	}
	return v
}

// NodeID reads a required node identifier
func (q *queryParser) NodeID(name string) graph.NodeID {
	raw := q.values.Get(name)
	if raw == "" {
		if q.err == nil {
			q.err = fmt.Errorf("%w: %s: field is required", validation.ErrInvalidRequest, name)
		}
		return 0
	}
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		q.fail(name, raw, "a node id")
		return 0
	}
	return graph.NodeID(id)
}

// BBox reads the minLat/maxLat/minLon/maxLon window
func (q *queryParser) BBox() validation.BBoxRequest {
	return validation.BBoxRequest{
		MinLat: q.OptFloat("minLat"),
		MaxLat: q.OptFloat("maxLat"),
		MinLon: q.OptFloat("minLon"),
		MaxLon: q.OptFloat("maxLon"),
	}
}

// Err returns the first parse error
func (q *queryParser) Err() error {
	return q.err
}

// parseNodeID reads the {id} path value
func parseNodeID(r *http.Request) (graph.NodeID, error) {
	raw := r.PathValue("id")
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("%w: id: %q is not a node id", validation.ErrInvalidRequest, raw)
	}
	return graph.NodeID(id), nil
}

// toBBox converts a request window, nil when no bound is set
func toBBox(b validation.BBoxRequest) *geo.BBox {
	box := &geo.BBox{MinLat: b.MinLat, MaxLat: b.MaxLat, MinLon: b.MinLon, MaxLon: b.MaxLon}
	if box.IsZero() {
		return nil
	}
	return box
}

// defaultRegionBBox is the window analysed by the impact endpoints when the
// request names none
func defaultRegionBBox() *geo.BBox {
	r, _ := precomputed.Lookup(precomputed.DefaultRegion)
	return r.BBox
}

// regionGraph restricts g to the request window. With fallback set, an
// absent window means the default region instead of the whole network.
func regionGraph(g *graph.Graph, b validation.BBoxRequest, fallback bool) (*graph.Graph, *geo.BBox) {
	box := toBBox(b)
	if box == nil && fallback {
		box = defaultRegionBBox()
	}
	if box == nil {
		return g, nil
	}
	return geo.Filter(g, box), box
}
