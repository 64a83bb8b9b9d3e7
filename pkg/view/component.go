package view

import (
	"context"
	"time"

	"github.com/a-h/templ"
	"github.com/vango-dev/ssr/pkg/store"
)

// RenderFunc produces the markup of a view for one render pass.
type RenderFunc func(rc *RenderContext) templ.Component

// PrefetchFunc loads the data a view needs before it can render meaningfully.
type PrefetchFunc func(ctx context.Context, pc PrefetchContext) error

// PrefetchContext is handed to a PrefetchFunc.
type PrefetchContext struct {
	Store *store.Store
	Route *Route

	// Observe, if set, is called once per finished prefetch.
	Observe func(component string, d time.Duration, err error)
}

// Loader resolves a lazily loaded view.
type Loader func(ctx context.Context) (*Component, error)

// Component is a view descriptor. Components are compared by identity:
// two matched lists contain "the same" view at a position only if the
// pointers are equal.
//
// Whether a component prefetches is decided when it is built:
//
//	view.New("foo", renderFoo)                         // no prefetch
//	view.New("item", renderItem).WithPrefetch(loadItem) // prefetches
type Component struct {
	name     string
	render   RenderFunc
	prefetch PrefetchFunc
}

// New creates a component without a prefetch capability.
func New(name string, render RenderFunc) *Component {
	return &Component{name: name, render: render}
}

// WithPrefetch returns a copy of c that declares fn as its prefetch.
// The copy is a distinct component.
func (c *Component) WithPrefetch(fn PrefetchFunc) *Component {
	clone := *c
	clone.prefetch = fn
	return &clone
}

// Name returns the component name.
func (c *Component) Name() string {
	if c == nil {
		return ""
	}
	return c.name
}

// Prefetch returns the prefetch function and whether the component has one.
func (c *Component) Prefetch() (PrefetchFunc, bool) {
	if c == nil || c.prefetch == nil {
		return nil, false
	}
	return c.prefetch, true
}

// Render returns the component markup for rc. A component without a render
// function renders only its outlet.
func (c *Component) Render(rc *RenderContext) templ.Component {
	if c == nil {
		return templ.NopComponent
	}
	if c.render == nil {
		return rc.Outlet()
	}
	return c.render(rc)
}

// String implements fmt.Stringer.
func (c *Component) String() string {
	return "view(" + c.Name() + ")"
}
