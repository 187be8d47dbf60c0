// Package api serves the resilience analyses over HTTP.
//
// The server owns the loaded route network and the attack overlay: removals
// made through /attack/remove/... are recorded in the overlay, and every
// analysis runs on a snapshot of the network minus the overlay. Analysis
// endpoints accept an optional minLat/maxLat/minLon/maxLon window.
package api

import (
	"net/http"
	"sync"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/dd0wney/cluso-resilience/pkg/analysis"
	"github.com/dd0wney/cluso-resilience/pkg/api/middleware"
	"github.com/dd0wney/cluso-resilience/pkg/config"
	"github.com/dd0wney/cluso-resilience/pkg/graph"
	"github.com/dd0wney/cluso-resilience/pkg/health"
	"github.com/dd0wney/cluso-resilience/pkg/logging"
	"github.com/dd0wney/cluso-resilience/pkg/metrics"
	"github.com/dd0wney/cluso-resilience/pkg/precomputed"
)

// MaxBodyBytes caps request bodies; only /simulate takes one
const MaxBodyBytes = 1 << 20

// Server represents the HTTP API server
type Server struct {
	base     *graph.Graph
	svc      *analysis.Service
	store    *precomputed.Store
	health   *health.HealthChecker
	metrics  *metrics.Registry
	logger   logging.Logger
	defaults *config.Config
	cors     *middleware.CORSConfig
	version  string

	mu      sync.RWMutex
	overlay *graph.RemovalOverlay
}

// Option configures a Server
type Option func(*Server)

// WithPrecomputed serves cached region reports from store
func WithPrecomputed(store *precomputed.Store) Option {
	return func(s *Server) {
		s.store = store
	}
}

// WithConfig sets the analysis defaults and CORS origins
func WithConfig(cfg *config.Config) Option {
	return func(s *Server) {
		if cfg != nil {
			s.defaults = cfg
		}
	}
}

// WithVersion sets the version reported by /health
func WithVersion(version string) Option {
	return func(s *Server) {
		s.version = version
	}
}

// NewServer creates a server over base. The service supplies the logger and
// metrics registry.
func NewServer(base *graph.Graph, svc *analysis.Service, opts ...Option) *Server {
	if base == nil {
		base = graph.New()
	}
	if svc == nil {
		svc = analysis.NewService()
	}
	s := &Server{
		base:     base,
		svc:      svc,
		metrics:  svc.Metrics(),
		logger:   svc.Logger().With(logging.Component("api")),
		defaults: config.Default(),
		overlay:  graph.NewRemovalOverlay(),
		version:  "dev",
	}
	for _, opt := range opts {
		opt(s)
	}

	s.cors = middleware.DefaultCORSConfig()
	s.cors.AllowedOrigins = append(s.cors.AllowedOrigins, s.defaults.Server.CORSOrigins...)

	s.health = health.NewHealthChecker(s.version)
	s.registerHealthChecks()
	s.metrics.SetGraphSize(base.NodeCount(), base.EdgeCount())
	return s
}

func (s *Server) registerHealthChecks() {
	graphCheck := health.GraphCheck(func() (int, int) {
		return s.base.NodeCount(), s.base.EdgeCount()
	})
	s.health.RegisterCheck("graph", graphCheck)
	s.health.RegisterReadinessCheck("graph", graphCheck)
	s.health.RegisterLivenessCheck("server", func() health.Check { return health.SimpleCheck("server") })

	s.health.RegisterCheck("attack_overlay", health.OverlayCheck(func() (int, int, int) {
		nodes, edges := s.overlaySize()
		return nodes, edges, s.base.NodeCount()
	}))
	s.health.RegisterCheck("memory", health.MemoryCheck(health.RuntimeMemory))
	if s.store != nil {
		s.health.RegisterCheck("precomputed", health.PrecomputedCheck(func() (int, string) {
			return s.store.Len(), s.store.Path()
		}))
	}
}

// Handler builds the routed, middleware-wrapped handler
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()

	// Health and metrics
	mux.HandleFunc("GET /health", s.health.HTTPHandler())
	mux.HandleFunc("GET /health/ready", s.health.ReadinessHandler())
	mux.HandleFunc("GET /health/live", s.health.LivenessHandler())
	mux.Handle("GET /metrics", s.metricsHandler())

	// Network
	mux.HandleFunc("GET /graph/stats", s.handleGraphStats)
	mux.HandleFunc("GET /airports", s.handleAirports)
	mux.HandleFunc("GET /airports/list", s.handleAirports)
	mux.HandleFunc("GET /geojson", s.handleGeoJSON)
	mux.HandleFunc("GET /geojson/airports", s.handleGeoJSONAirports)
	mux.HandleFunc("GET /geojson/routes", s.handleGeoJSONRoutes)

	// Attack overlay
	mux.HandleFunc("POST /attack/remove/node/{id}", s.handleRemoveNode)
	mux.HandleFunc("POST /attack/restore/node/{id}", s.handleRestoreNode)
	mux.HandleFunc("POST /attack/remove/edge", s.handleRemoveEdge)
	mux.HandleFunc("POST /attack/restore/edge", s.handleRestoreEdge)
	mux.HandleFunc("GET /attack/removed", s.handleRemoved)
	mux.HandleFunc("POST /attack/reset", s.handleReset)

	// Attacks
	mux.HandleFunc("POST /simulate", s.handleSimulate)
	mux.HandleFunc("GET /attack/impact", s.handleAttackImpact)
	mux.HandleFunc("GET /attack/impact-custom", s.handleAttackImpactCustom)
	mux.HandleFunc("GET /attack/top-hubs", s.handleTopHubs)
	mux.HandleFunc("GET /attack/top-k-impact", s.handleTopKImpact)

	// Defenses
	mux.HandleFunc("GET /defense/impact", s.handleDefenseImpact)
	mux.HandleFunc("GET /defense/impact-custom", s.handleDefenseImpact)
	mux.HandleFunc("GET /defense/impact-swap", s.handleSwapImpact)
	mux.HandleFunc("GET /defense/impact-schneider", s.handleSwapImpact)
	mux.HandleFunc("GET /defend/redundancy", s.handleRedundancy)

	// Route case study
	mux.HandleFunc("GET /case/route-metrics", s.handleRouteMetrics)
	mux.HandleFunc("GET /case/route-attack", s.handleRouteAttack)
	mux.HandleFunc("GET /case/route-attack-simulation", s.handleRouteAttack)

	var handler http.Handler = middleware.Metrics(s.metrics)(mux)
	handler = middleware.BodySizeLimit(MaxBodyBytes)(handler)
	handler = middleware.CORS(s.cors)(handler)
	handler = middleware.Logging(s.logger)(handler)
	handler = middleware.PanicRecovery(s.logger)(handler)
	handler = middleware.RequestID()(handler)
	return handler
}

// metricsHandler samples the runtime gauges before each scrape
func (s *Server) metricsHandler() http.Handler {
	prom := promhttp.HandlerFor(s.metrics.GetPrometheusRegistry(), promhttp.HandlerOpts{})
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		s.metrics.UpdateSystemMetrics()
		prom.ServeHTTP(w, r)
	})
}

// ReloadPrecomputed re-reads the region cache from disk. It is a no-op when
// the server has no cache.
func (s *Server) ReloadPrecomputed() error {
	if s.store == nil {
		return nil
	}
	if err := s.store.Load(); err != nil {
		return err
	}
	s.metrics.PrecomputedRegions.Set(float64(s.store.Len()))
	s.logger.Info("precomputed regions reloaded",
		logging.Count(s.store.Len()), logging.Path(s.store.Path()))
	return nil
}

// activeGraph returns the base network minus the overlay as a private copy
func (s *Server) activeGraph() *graph.Graph {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return graph.ApplyOverlay(s.base, s.overlay)
}

func (s *Server) overlayEmpty() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.overlay.IsEmpty()
}

func (s *Server) overlaySize() (nodes, edges int) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.overlay.Size()
}
