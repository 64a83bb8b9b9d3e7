// Package middleware provides the HTTP middleware of the render server.
//
// This package includes:
//   - Request IDs (X-Request-Id, UUID generated when absent)
//   - Structured access logging with log/slog
//   - Prometheus metrics for requests, prefetches, item fetches and reloads
//   - OpenTelemetry server spans, plus StartSpan/EndSpan for internal work
//
// # Prometheus Metrics
//
//	m := middleware.NewMetrics(middleware.WithNamespace("ssr"))
//	r.Use(m.Prometheus)
//	r.Handle("/metrics", promhttp.Handler())
//
// A nil *Metrics is valid and records nothing.
//
// # OpenTelemetry
//
//	r.Use(middleware.OpenTelemetry(
//	    middleware.WithRequestFilter(func(r *http.Request) bool {
//	        return r.URL.Path != "/healthz"
//	    }),
//	))
//
// The span travels in the request context, so anything started from it
// with StartSpan becomes a child span.
package middleware
