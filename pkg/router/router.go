package router

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync"

	"github.com/vango-dev/ssr/pkg/view"
)

// record is a route table entry owned by one Router. Lazily loaded
// components are cached on the record, so every router resolves its
// loaders at most once per successful load.
type record struct {
	path string
	name string
	meta map[string]any

	mu        sync.Mutex
	component *view.Component
	load      view.Loader
}

func (r *record) resolve(ctx context.Context) (*view.Component, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.component != nil {
		return r.component, nil
	}
	c, err := r.load(ctx)
	if err != nil {
		return nil, &LoadError{Path: r.path, Err: err}
	}
	if c == nil {
		return nil, &LoadError{Path: r.path, Err: fmt.Errorf("loader returned no component")}
	}
	r.component = c
	return c, nil
}

// Router resolves URLs against a route table and drives navigations.
// A Router is not shared between app instances.
type Router struct {
	root   *RouteNode
	logger *slog.Logger

	// navMu serializes navigations.
	navMu sync.Mutex

	mu       sync.Mutex
	current  *view.Route
	history  []string
	ready    bool
	settled  chan struct{}
	initErr  error
	readyCbs []func()

	beforeResolve hookList[BeforeResolveHook]
	afterEach     hookList[AfterEachHook]
	onError       hookList[ErrorHandler]
}

// Option configures a Router.
type Option func(*Router)

// WithLogger sets the router logger.
func WithLogger(logger *slog.Logger) Option {
	return func(r *Router) {
		r.logger = logger
	}
}

// New builds a router for routes. The table is copied; when two patterns
// are identical the first one is kept.
func New(routes []Route, opts ...Option) (*Router, error) {
	r := &Router{
		root:    newRouteNode(""),
		current: view.Start,
		settled: make(chan struct{}),
	}
	for _, opt := range opts {
		opt(r)
	}
	if r.logger == nil {
		r.logger = slog.Default()
	}

	order := 0
	var add func(parentPath string, parents []*record, routes []Route) error
	add = func(parentPath string, parents []*record, routes []Route) error {
		for _, rt := range routes {
			full := joinPath(parentPath, rt.Path)
			if (rt.Component == nil) == (rt.Load == nil) {
				return fmt.Errorf("%w: %q needs exactly one of Component or Load", ErrInvalidRoute, full)
			}
			rec := &record{
				path:      full,
				name:      rt.Name,
				meta:      rt.Meta,
				component: rt.Component,
				load:      rt.Load,
			}
			chain := append(append([]*record{}, parents...), rec)

			node := r.root.insertRoute(full)
			if node.entry == nil {
				node.entry = &entry{order: order, chain: chain}
			} else {
				r.logger.Warn("duplicate route pattern ignored", "path", full)
			}
			order++

			if err := add(full, chain, rt.Children); err != nil {
				return err
			}
		}
		return nil
	}
	if err := add("", nil, routes); err != nil {
		return nil, err
	}
	return r, nil
}

// joinPath resolves a child pattern against its parent.
func joinPath(parent, child string) string {
	if strings.HasPrefix(child, "/") || parent == "" {
		if !strings.HasPrefix(child, "/") {
			child = "/" + child
		}
		return child
	}
	if child == "" {
		return parent
	}
	return strings.TrimSuffix(parent, "/") + "/" + child
}

// Resolve matches rawURL without navigating. Lazy components of the matched
// records are loaded. An unmatched URL resolves to a route with no matches.
func (r *Router) Resolve(ctx context.Context, rawURL string) (*view.Route, error) {
	loc, err := parseLocation(rawURL)
	if err != nil {
		return nil, err
	}

	route := &view.Route{
		Path:     loc.path,
		FullPath: loc.fullPath(),
		Hash:     loc.hash,
		Query:    loc.query,
		Params:   map[string]string{},
	}

	e, params, ok := r.root.match(loc.path)
	if !ok {
		return route, nil
	}

	route.Params = params
	leaf := e.leaf()
	route.Name = leaf.name
	route.Meta = leaf.meta
	route.Matched = make([]*view.Component, 0, len(e.chain))
	for _, rec := range e.chain {
		c, err := rec.resolve(ctx)
		if err != nil {
			return nil, err
		}
		route.Matched = append(route.Matched, c)
	}
	return route, nil
}

// Current returns the route of the last finalized navigation.
func (r *Router) Current() *view.Route {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.current
}

// History returns the full paths of finalized navigations, oldest first.
func (r *Router) History() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), r.history...)
}

// MatchedComponents returns the matched components of route, or of the
// current route when route is nil.
func (r *Router) MatchedComponents(route *view.Route) []*view.Component {
	if route == nil {
		route = r.Current()
	}
	return append([]*view.Component(nil), route.Matched...)
}

// BeforeResolve registers a hook that runs before every navigation is
// finalized. The returned function unregisters it.
func (r *Router) BeforeResolve(hook BeforeResolveHook) func() {
	return r.beforeResolve.add(hook)
}

// AfterEach registers a hook that runs after every finalized navigation.
func (r *Router) AfterEach(hook AfterEachHook) func() {
	return r.afterEach.add(hook)
}

// OnError registers a handler for navigation errors, including errors
// returned by BeforeResolve hooks.
func (r *Router) OnError(fn ErrorHandler) func() {
	return r.onError.add(fn)
}

// OnReady runs fn once the first navigation has been finalized. If that has
// already happened fn runs immediately.
func (r *Router) OnReady(fn func()) {
	r.mu.Lock()
	if r.ready {
		r.mu.Unlock()
		fn()
		return
	}
	r.readyCbs = append(r.readyCbs, fn)
	r.mu.Unlock()
}

// Ready blocks until the first navigation settles. It returns the
// navigation error if the router never became ready.
func (r *Router) Ready(ctx context.Context) error {
	select {
	case <-r.settled:
	case <-ctx.Done():
		return ctx.Err()
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.ready {
		return nil
	}
	return r.initErr
}

// IsReady reports whether the first navigation has been finalized.
func (r *Router) IsReady() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.ready
}
