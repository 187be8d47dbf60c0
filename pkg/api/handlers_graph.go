package api

import (
	"net/http"

	"github.com/dd0wney/cluso-resilience/pkg/geo"
	"github.com/dd0wney/cluso-resilience/pkg/graph"
	"github.com/dd0wney/cluso-resilience/pkg/logging"
	"github.com/dd0wney/cluso-resilience/pkg/validation"
)

// handleGraphStats reports the stats of the active network
func (s *Server) handleGraphStats(w http.ResponseWriter, r *http.Request) {
	q := newQueryParser(r)
	bbox := q.BBox()
	if err := firstErr(q.Err(), validation.ValidateBBox(bbox)); err != nil {
		s.respondFailure(w, r, "graph stats", err)
		return
	}

	g, _ := regionGraph(s.activeGraph(), bbox, false)
	s.respondJSON(w, http.StatusOK, s.svc.GetStats(g))
}

// handleAirports lists the airports of the active network, ordered by id
func (s *Server) handleAirports(w http.ResponseWriter, r *http.Request) {
	q := newQueryParser(r)
	bbox := q.BBox()
	if err := firstErr(q.Err(), validation.ValidateBBox(bbox)); err != nil {
		s.respondFailure(w, r, "airport list", err)
		return
	}

	g, _ := regionGraph(s.activeGraph(), bbox, false)
	airports := make([]Airport, 0, g.NodeCount())
	for _, id := range g.Nodes() {
		attrs, _ := g.Node(id)
		a := Airport{
			ID:      id,
			Name:    attrs.Name,
			City:    attrs.City,
			Country: attrs.Country,
			Code:    attrs.Code,
			ICAO:    attrs.ICAO,
			Degree:  g.Degree(id),
		}
		if attrs.HasCoords && geo.ValidCoords(attrs.Lat, attrs.Lon) {
			lat, lon := attrs.Lat, attrs.Lon
			a.Lat, a.Lon = &lat, &lon
		}
		airports = append(airports, a)
	}
	s.respondJSON(w, http.StatusOK, AirportsResponse{Airports: airports})
}

// handleRemoveNode removes an airport and its routes from the active network
func (s *Server) handleRemoveNode(w http.ResponseWriter, r *http.Request) {
	id, err := parseNodeID(r)
	if err != nil {
		s.respondFailure(w, r, "remove node", err)
		return
	}

	s.mu.Lock()
	ok := !s.overlay.NodeRemoved(id) && s.overlay.RemoveNode(s.base, id)
	nodes, edges := s.overlay.Size()
	s.mu.Unlock()

	if !ok {
		s.respondError(w, http.StatusBadRequest, "Node not found or already removed")
		return
	}
	s.overlayChanged("node removed", nodes, edges, logging.NodeID(int64(id)))
	s.respondJSON(w, http.StatusOK, OverlayResponse{Success: true, NodeID: &id, RemovedNodes: nodes, RemovedEdges: edges})
}

// handleRestoreNode restores an airport together with its routes
func (s *Server) handleRestoreNode(w http.ResponseWriter, r *http.Request) {
	id, err := parseNodeID(r)
	if err != nil {
		s.respondFailure(w, r, "restore node", err)
		return
	}

	s.mu.Lock()
	ok := s.overlay.RestoreNode(s.base, id)
	nodes, edges := s.overlay.Size()
	s.mu.Unlock()

	if !ok {
		s.respondError(w, http.StatusBadRequest, "Node not found in removed list")
		return
	}
	s.overlayChanged("node restored", nodes, edges, logging.NodeID(int64(id)))
	s.respondJSON(w, http.StatusOK, OverlayResponse{Success: true, NodeID: &id, RemovedNodes: nodes, RemovedEdges: edges})
}

func (s *Server) edgeParams(w http.ResponseWriter, r *http.Request, operation string) (graph.NodeID, graph.NodeID, bool) {
	q := newQueryParser(r)
	src, dst := q.NodeID("src"), q.NodeID("dst")
	if err := q.Err(); err != nil {
		s.respondFailure(w, r, operation, err)
		return 0, 0, false
	}
	return src, dst, true
}

// handleRemoveEdge removes one route from the active network
func (s *Server) handleRemoveEdge(w http.ResponseWriter, r *http.Request) {
	src, dst, ok := s.edgeParams(w, r, "remove edge")
	if !ok {
		return
	}

	s.mu.Lock()
	ok = !s.overlay.EdgeRemoved(src, dst) && s.overlay.RemoveEdge(s.base, src, dst)
	nodes, edges := s.overlay.Size()
	s.mu.Unlock()

	if !ok {
		s.respondError(w, http.StatusBadRequest, "Edge not found or already removed")
		return
	}
	s.overlayChanged("edge removed", nodes, edges, logging.Int64("source", int64(src)), logging.Int64("target", int64(dst)))
	s.respondJSON(w, http.StatusOK, OverlayResponse{Success: true, Source: &src, Target: &dst, RemovedNodes: nodes, RemovedEdges: edges})
}

// handleRestoreEdge restores one route
func (s *Server) handleRestoreEdge(w http.ResponseWriter, r *http.Request) {
	src, dst, ok := s.edgeParams(w, r, "restore edge")
	if !ok {
		return
	}

	s.mu.Lock()
	ok = s.overlay.RestoreEdge(src, dst)
	nodes, edges := s.overlay.Size()
	s.mu.Unlock()

	if !ok {
		s.respondError(w, http.StatusBadRequest, "Edge not found in removed list")
		return
	}
	s.overlayChanged("edge restored", nodes, edges, logging.Int64("source", int64(src)), logging.Int64("target", int64(dst)))
	s.respondJSON(w, http.StatusOK, OverlayResponse{Success: true, Source: &src, Target: &dst, RemovedNodes: nodes, RemovedEdges: edges})
}

// handleRemoved lists removed airports and routes with their names
func (s *Server) handleRemoved(w http.ResponseWriter, r *http.Request) {
	s.mu.RLock()
	removedNodes := s.overlay.RemovedNodes()
	removedEdges := s.overlay.RemovedEdges()
	s.mu.RUnlock()

	resp := RemovedResponse{
		Nodes: make([]RemovedNode, 0, len(removedNodes)),
		Edges: make([]RemovedEdge, 0, len(removedEdges)),
	}
	for _, id := range removedNodes {
		attrs, _ := s.base.Node(id)
		resp.Nodes = append(resp.Nodes, RemovedNode{
			ID:      id,
			Name:    attrs.Name,
			City:    attrs.City,
			Country: attrs.Country,
			Code:    attrs.Code,
			Type:    "node",
		})
	}
	for _, e := range removedEdges {
		src, _ := s.base.Node(e.U)
		dst, _ := s.base.Node(e.V)
		resp.Edges = append(resp.Edges, RemovedEdge{
			Source:     e.U,
			Target:     e.V,
			SourceName: src.Name,
			TargetName: dst.Name,
			SourceCode: src.Code,
			TargetCode: dst.Code,
			Type:       "edge",
		})
	}
	s.respondJSON(w, http.StatusOK, resp)
}

// handleReset clears every removal
func (s *Server) handleReset(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	s.overlay.Reset()
	s.mu.Unlock()

	s.overlayChanged("overlay reset", 0, 0)
	s.respondJSON(w, http.StatusOK, OverlayResponse{Success: true})
}

func (s *Server) overlayChanged(msg string, nodes, edges int, fields ...logging.Field) {
	s.metrics.SetOverlaySize(nodes, edges)
	fields = append(fields, logging.Int("removed_nodes", nodes), logging.Int("removed_edges", edges))
	s.logger.Info(msg, fields...)
}

// firstErr returns the first non-nil error
func firstErr(errs ...error) error {
	for _, err := range errs {
		if err != nil {
			return err
		}
	}
	return nil
}

// mapLayers renders the active network for the map, or writes an error
func (s *Server) mapLayers(w http.ResponseWriter, r *http.Request) (geo.MapLayers, bool) {
	q := newQueryParser(r)
	bbox := q.BBox()
	if err := firstErr(q.Err(), validation.ValidateBBox(bbox)); err != nil {
		s.respondFailure(w, r, "geojson", err)
		return geo.MapLayers{}, false
	}
	return geo.ToGeoJSON(s.activeGraph(), toBBox(bbox)), true
}

// handleGeoJSON returns both map layers
func (s *Server) handleGeoJSON(w http.ResponseWriter, r *http.Request) {
	if layers, ok := s.mapLayers(w, r); ok {
		s.respondJSON(w, http.StatusOK, layers)
	}
}

func (s *Server) handleGeoJSONAirports(w http.ResponseWriter, r *http.Request) {
	if layers, ok := s.mapLayers(w, r); ok {
		s.respondJSON(w, http.StatusOK, layers.Airports)
	}
}

func (s *Server) handleGeoJSONRoutes(w http.ResponseWriter, r *http.Request) {
	if layers, ok := s.mapLayers(w, r); ok {
		s.respondJSON(w, http.StatusOK, layers.Routes)
	}
}
