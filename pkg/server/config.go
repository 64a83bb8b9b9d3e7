package server

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/vango-dev/ssr/pkg/middleware"
	"github.com/vango-dev/ssr/pkg/render"
)

// Reloader is a renderer whose bundle can be reloaded.
type Reloader interface {
	Reload() error
}

// Config configures a Server.
type Config struct {
	// Addr is the listen address. Default: "127.0.0.1:3000".
	Addr string

	// Title is set on every render context.
	// Default: "Vue SSR".
	Title string

	// Renderer renders pages. Required.
	Renderer render.Renderer

	// Static configures static file serving.
	Static StaticConfig

	// Logger is the structured logger. If nil, slog.Default() is used.
	Logger *slog.Logger

	// Metrics enables the Prometheus middleware. Nil disables metrics.
	Metrics *middleware.Metrics

	// MetricsHandler serves /metrics. Default: promhttp.Handler().
	MetricsHandler http.Handler

	// Tracing enables OpenTelemetry server spans.
	Tracing bool

	// DevMode enables bundle watching and browser reloads.
	DevMode bool

	// WatchPaths are the files whose changes trigger a reload in dev mode.
	WatchPaths []string

	// Reloader reloads the renderer in dev mode. Defaults to Renderer when
	// it implements Reloader.
	Reloader Reloader

	// ReadHeaderTimeout bounds reading request headers. Default: 10s.
	ReadHeaderTimeout time.Duration

	// ShutdownTimeout bounds graceful shutdown. Default: 10s.
	ShutdownTimeout time.Duration
}

// StaticConfig configures static file serving.
type StaticConfig struct {
	// Dir is the directory containing the client build (e.g., "dist").
	// Empty disables static serving.
	Dir string

	// Prefix is the URL path prefix for static files (e.g., "/").
	// A file at dist/app.js with Prefix="/" is served at /app.js.
	// Default: "/".
	Prefix string

	// CacheControl determines caching behavior for static files.
	// Default: CacheControlNone (no caching headers).
	CacheControl CacheControlStrategy

	// Headers are custom headers to add to all static file responses.
	Headers map[string]string
}

// CacheControlStrategy determines caching behavior for static files.
type CacheControlStrategy int

const (
	// CacheControlNone marks responses as not cacheable.
	// Use in development for instant updates.
	CacheControlNone CacheControlStrategy = iota

	// CacheControlProduction uses appropriate caching:
	// - Fingerprinted files (*.abc123.js): immutable, 1 year max-age
	// - Other files: short cache with revalidation
	CacheControlProduction
)

// Defaults.
const (
	DefaultAddr  = "127.0.0.1:3000"
	DefaultTitle = "Vue SSR"
)

func (c Config) withDefaults() Config {
	if c.Addr == "" {
		c.Addr = DefaultAddr
	}
	if c.Title == "" {
		c.Title = DefaultTitle
	}
	if c.Static.Prefix == "" {
		c.Static.Prefix = "/"
	}
	if c.Logger == nil {
		c.Logger = slog.Default()
	}
	if c.ReadHeaderTimeout == 0 {
		c.ReadHeaderTimeout = 10 * time.Second
	}
	if c.ShutdownTimeout == 0 {
		c.ShutdownTimeout = 10 * time.Second
	}
	if c.Reloader == nil {
		if r, ok := c.Renderer.(Reloader); ok {
			c.Reloader = r
		}
	}
	return c
}
