package server

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/vango-dev/ssr/pkg/middleware"
	"github.com/vango-dev/ssr/pkg/render"
	"go.opentelemetry.io/otel/attribute"
)

// Response bodies of failed renders.
const (
	NotFoundBody    = "404 | Page Not Found"
	ServerErrorBody = "500 | Internal Server Error"
)

// renderPage renders the request URL. It writes exactly one response.
func (s *Server) renderPage(w http.ResponseWriter, r *http.Request) {
	rc := &render.Context{
		URL:       r.URL.RequestURI(),
		Title:     s.config.Title,
		RequestID: middleware.RequestIDFromContext(r.Context()),
	}

	ctx, span := middleware.StartSpan(r.Context(), "ssr.render", attribute.String("ssr.url", rc.URL))
	html, err := s.config.Renderer.RenderToString(ctx, rc)
	middleware.EndSpan(span, err)

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err != nil {
		s.renderError(w, rc, err)
		return
	}
	w.WriteHeader(http.StatusOK)
	w.Write([]byte(html))
}

func (s *Server) renderError(w http.ResponseWriter, rc *render.Context, err error) {
	if render.StatusCode(err) == http.StatusNotFound {
		w.WriteHeader(http.StatusNotFound)
		w.Write([]byte(NotFoundBody))
		return
	}

	var stack []byte
	var re *render.Error
	if errors.As(err, &re) {
		stack = re.Stack
	}
	s.logger.Error("error during render",
		slog.String("url", rc.URL),
		slog.String("request_id", rc.RequestID),
		slog.Any("error", err),
		slog.String("stack", string(stack)),
	)
	w.WriteHeader(http.StatusInternalServerError)
	w.Write([]byte(ServerErrorBody))
}
