// Package middleware provides the HTTP middleware of the resilience API.
//
// Every middleware has the shape func(http.Handler) http.Handler so they
// chain by nesting:
//
//	handler := middleware.PanicRecovery(logger)(mux)
//	handler = middleware.RequestID()(handler)
//	handler = middleware.Logging(logger)(handler)
//	handler = middleware.CORS(middleware.DefaultCORSConfig())(handler)
//
// Metrics should wrap the mux directly: it labels requests by the matched
// route pattern, which the mux records on the request it is handed.
package middleware
