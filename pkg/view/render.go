package view

import (
	"github.com/a-h/templ"
	"github.com/vango-dev/ssr/pkg/store"
)

// RenderContext carries the store and route through one render pass.
// Depth is the index into Route.Matched that Outlet renders next.
type RenderContext struct {
	Store *store.Store
	Route *Route
	Depth int
}

// NewRenderContext returns a context positioned before the first matched view.
func NewRenderContext(s *store.Store, route *Route) *RenderContext {
	return &RenderContext{Store: s, Route: route}
}

// Outlet renders the matched component at the current depth, the equivalent
// of a nested router view. It renders nothing past the innermost match.
func (rc *RenderContext) Outlet() templ.Component {
	if rc == nil || rc.Route == nil || rc.Depth >= len(rc.Route.Matched) {
		return templ.NopComponent
	}
	child := &RenderContext{Store: rc.Store, Route: rc.Route, Depth: rc.Depth + 1}
	return rc.Route.Matched[rc.Depth].Render(child)
}

// Item is a shortcut for reading an item from the store while rendering.
func (rc *RenderContext) Item(id string) (store.Item, bool) {
	if rc == nil || rc.Store == nil {
		return nil, false
	}
	return rc.Store.Item(id)
}

// Render renders root with the outlet positioned at the outermost match.
func Render(root *Component, s *store.Store, route *Route) templ.Component {
	return root.Render(NewRenderContext(s, route))
}
