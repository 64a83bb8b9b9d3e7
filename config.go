package ssr

import (
	"fmt"
	"log/slog"

	"github.com/vango-dev/ssr/pkg/middleware"
	"github.com/vango-dev/ssr/pkg/render"
	"github.com/vango-dev/ssr/pkg/server"
	"github.com/vango-dev/ssr/pkg/source"
	"github.com/vango-dev/ssr/pkg/store"
)

// =============================================================================
// Configuration
// =============================================================================

// StaticConfig configures static file serving.
type StaticConfig = server.StaticConfig

// Cache control strategies for static files.
const (
	CacheControlNone       = server.CacheControlNone
	CacheControlProduction = server.CacheControlProduction
)

// Config configures the render server built by NewServer.
type Config struct {
	// Addr is the listen address. Default: "127.0.0.1:3000".
	Addr string

	// Title is the page title handed to every render.
	// Default: "Vue SSR".
	Title string

	// Static configures serving of the client build.
	Static StaticConfig

	// Template is the path of the HTML page template. Empty selects the
	// default template.
	Template string

	// Manifest is the path of the client build manifest. A missing file
	// renders pages without client assets.
	Manifest string

	// DevMode reloads the template and manifest on change and reloads
	// connected browsers.
	DevMode bool

	// Metrics enables Prometheus metrics and the /metrics endpoint.
	Metrics bool

	// MetricsOptions configure the collectors when Metrics is set.
	MetricsOptions []middleware.MetricsOption

	// Tracing enables OpenTelemetry spans.
	Tracing bool

	// Logger is the structured logger. If nil, slog.Default() is used.
	Logger *slog.Logger
}

// DefaultConfig returns the default configuration.
func DefaultConfig() Config {
	return Config{
		Addr:     server.DefaultAddr,
		Title:    server.DefaultTitle,
		Template: "index.template.html",
		Manifest: "dist/ssr-client-manifest.json",
		Static: StaticConfig{
			Dir:    "dist",
			Prefix: "/",
		},
	}
}

// NewServer builds a render server for f. The template and manifest are
// loaded once here; in dev mode they are reloaded whenever they change.
// f is not modified.
func NewServer(f *Factory, cfg Config) (*server.Server, error) {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	fc := *f
	if fc.Logger == nil {
		fc.Logger = logger
	}

	var metrics *middleware.Metrics
	if cfg.Metrics {
		metrics = middleware.NewMetrics(cfg.MetricsOptions...)
		fc.Metrics = metrics
	}
	if _, done := fc.Fetcher.(*source.Instrumented); fc.Fetcher != nil && !done {
		fc.Fetcher = source.Instrument(sourceName(fc.Fetcher), fc.Fetcher, fc.Metrics)
	}

	opts := render.Options{Logger: logger}
	if cfg.DevMode {
		opts.Scripts = append(opts.Scripts, server.ReloadScript())
	}
	renderer, err := render.NewReloadable(EntryServer(&fc), opts, func() (*render.Bundle, error) {
		return render.LoadBundle(cfg.Template, cfg.Manifest)
	})
	if err != nil {
		return nil, fmt.Errorf("load bundle: %w", err)
	}

	var watch []string
	for _, p := range []string{cfg.Template, cfg.Manifest} {
		if p != "" {
			watch = append(watch, p)
		}
	}

	return server.New(server.Config{
		Addr:       cfg.Addr,
		Title:      cfg.Title,
		Renderer:   renderer,
		Static:     cfg.Static,
		Logger:     logger,
		Metrics:    metrics,
		Tracing:    cfg.Tracing,
		DevMode:    cfg.DevMode,
		WatchPaths: watch,
	}), nil
}

func sourceName(f store.ItemFetcher) string {
	switch f.(type) {
	case *source.Memory:
		return "memory"
	case *source.HTTP:
		return "http"
	case *source.S3:
		return "s3"
	default:
		return "custom"
	}
}
