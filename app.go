package ssr

import (
	"log/slog"

	"github.com/a-h/templ"

	"github.com/vango-dev/ssr/pkg/middleware"
	"github.com/vango-dev/ssr/pkg/render"
	"github.com/vango-dev/ssr/pkg/router"
	"github.com/vango-dev/ssr/pkg/store"
	"github.com/vango-dev/ssr/pkg/view"
)

// =============================================================================
// Factory
// =============================================================================

// Factory describes an application. It holds only immutable parts: the
// route table is rebuilt by Routes on every CreateApp call.
type Factory struct {
	// Routes returns the route table. It must return a fresh slice on every
	// call.
	Routes func() []router.Route

	// Root is the root view. Nil renders only the outlet.
	Root *view.Component

	// Fetcher backs the store's fetchItem action.
	Fetcher store.ItemFetcher

	// Logger is the structured logger. If nil, slog.Default() is used.
	Logger *slog.Logger

	// Metrics records prefetches. Nil disables recording.
	Metrics *middleware.Metrics
}

var outletOnly = view.New("root", nil)

// App is one application instance: a store and a router wired together.
type App struct {
	Root   *view.Component
	Store  *store.Store
	Router *router.Router

	// SSRContext is the render context on the server, nil on the client.
	SSRContext *render.Context

	unsync func()
}

// CreateApp builds a new app instance. ssrCtx is the render context of the
// request on the server and nil elsewhere.
func (f *Factory) CreateApp(ssrCtx *render.Context) (*App, error) {
	logger := f.Logger
	if logger == nil {
		logger = slog.Default()
	}
	if ssrCtx != nil && ssrCtx.RequestID != "" {
		logger = logger.With("request_id", ssrCtx.RequestID)
	}

	var routes []router.Route
	if f.Routes != nil {
		routes = f.Routes()
	}
	r, err := router.New(routes, router.WithLogger(logger))
	if err != nil {
		return nil, err
	}

	root := f.Root
	if root == nil {
		root = outletOnly
	}

	app := &App{
		Root:       root,
		Store:      store.New(f.Fetcher, store.WithLogger(logger)),
		Router:     r,
		SSRContext: ssrCtx,
	}
	app.unsync = Sync(app.Store, app.Router)
	return app, nil
}

// Render returns the markup of the app at the router's current route.
func (a *App) Render() templ.Component {
	return view.Render(a.Root, a.Store, a.Router.Current())
}

// Close detaches the store from the router.
func (a *App) Close() {
	if a.unsync != nil {
		a.unsync()
		a.unsync = nil
	}
}
