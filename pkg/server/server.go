package server

import (
	"context"
	"errors"
	"log/slog"
	"net"
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/sourcegraph/conc/pool"

	"github.com/vango-dev/ssr/pkg/middleware"
)

// Server serves static assets and rendered pages.
type Server struct {
	config Config
	logger *slog.Logger
	router chi.Router
	static *static
	hub    *ReloadHub
}

// New creates a server. It panics if cfg.Renderer is nil.
func New(cfg Config) *Server {
	if cfg.Renderer == nil {
		panic("server: Config.Renderer is required")
	}
	cfg = cfg.withDefaults()

	s := &Server{
		config: cfg,
		logger: cfg.Logger,
		static: newStatic(cfg.Static),
	}
	if cfg.DevMode {
		s.hub = NewReloadHub(cfg.Logger)
	}
	s.router = s.routes()
	return s
}

func (s *Server) routes() chi.Router {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Logger(s.logger))
	r.Use(chimw.Recoverer)
	if s.config.Metrics != nil {
		r.Use(s.config.Metrics.Prometheus)
	}
	if s.config.Tracing {
		r.Use(middleware.OpenTelemetry(middleware.WithRequestFilter(func(r *http.Request) bool {
			return r.URL.Path != "/healthz" && r.URL.Path != "/metrics"
		})))
	}

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		w.Write([]byte("ok"))
	})
	if s.config.Metrics != nil {
		h := s.config.MetricsHandler
		if h == nil {
			h = promhttp.Handler()
		}
		r.Handle("/metrics", h)
	}
	if s.hub != nil {
		r.Get(ReloadPath, s.hub.ServeHTTP)
	}

	r.Get("/*", func(w http.ResponseWriter, r *http.Request) {
		if s.static.serve(w, r) {
			return
		}
		s.renderPage(w, r)
	})
	return r
}

// Handler returns the HTTP handler.
func (s *Server) Handler() http.Handler {
	return s.router
}

// ReloadHub returns the dev reload hub, nil outside dev mode.
func (s *Server) ReloadHub() *ReloadHub {
	return s.hub
}

// Reload reloads the renderer and notifies dev browsers.
func (s *Server) Reload() error {
	if s.config.Reloader == nil {
		return nil
	}
	err := s.config.Reloader.Reload()
	s.config.Metrics.RecordReload(err)
	if err != nil {
		s.logger.Error("bundle reload failed", "error", err)
		if s.hub != nil {
			s.hub.NotifyError(err)
		}
		return err
	}
	s.logger.Info("bundle reloaded")
	if s.hub != nil {
		s.hub.NotifyReload()
	}
	return nil
}

// Run listens on the configured address and serves until ctx is done, then
// shuts down gracefully.
func (s *Server) Run(ctx context.Context) error {
	ln, err := net.Listen("tcp", s.config.Addr)
	if err != nil {
		return err
	}
	return s.Serve(ctx, ln)
}

// Serve is like Run but uses ln.
func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	srv := &http.Server{
		Handler:           s.router,
		ReadHeaderTimeout: s.config.ReadHeaderTimeout,
	}

	g := pool.New().WithErrors().WithFirstError().WithContext(ctx).WithCancelOnError()
	g.Go(func(ctx context.Context) error {
		s.logger.Info("server running", "addr", ln.Addr().String(), "dev", s.config.DevMode)
		if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func(ctx context.Context) error {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), s.config.ShutdownTimeout)
		defer cancel()
		if s.hub != nil {
			s.hub.Close()
		}
		return srv.Shutdown(shutdownCtx)
	})
	if s.config.DevMode && len(s.config.WatchPaths) > 0 {
		w, err := NewWatcher(s.config.WatchPaths, 0, func() { s.Reload() }, s.logger)
		if err != nil {
			s.logger.Warn("bundle watcher disabled", "error", err)
		} else {
			g.Go(w.Run)
		}
	}
	return g.Wait()
}
