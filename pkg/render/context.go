package render

import (
	"context"

	"github.com/a-h/templ"
)

// Context is the per-request render context handed to an Entry. A new
// Context is created for every request and never shared.
type Context struct {
	// URL is the request URI being rendered, including the query.
	URL string

	// Title is interpolated into the page template's {{ title }}.
	Title string

	// State is set by the entry once the app is ready. It is serialized into
	// the page as the initial state snapshot. Nil omits the snapshot.
	State any

	// RequestID correlates the render with the access log.
	RequestID string
}

// Entry builds the app for one request and returns its root markup.
type Entry func(ctx context.Context, rc *Context) (templ.Component, error)

// Renderer renders a request to a complete page.
type Renderer interface {
	RenderToString(ctx context.Context, rc *Context) (string, error)
}
