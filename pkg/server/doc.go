// Package server is the HTTP front of the renderer.
//
// Every GET request is first matched against the static assets directory.
// Requests that do not name an existing file fall through to the render
// handler, which builds a fresh render.Context for the request and writes
// exactly one response:
//
//	200  the rendered page
//	404  "404 | Page Not Found"        (the URL matched no route)
//	500  "500 | Internal Server Error" (anything else, logged with URL and stack)
//
// The middleware chain is request ID, access log, panic recovery and, when
// enabled, Prometheus metrics and OpenTelemetry tracing. /healthz always
// answers; /metrics is mounted when metrics are enabled.
//
// In dev mode the server watches the template and manifest files, reloads
// the renderer when they change and tells connected browsers to refresh
// over the /_ssr/reload WebSocket.
package server
