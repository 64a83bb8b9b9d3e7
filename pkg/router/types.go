package router

import (
	"context"
	"errors"

	"github.com/vango-dev/ssr/pkg/view"
)

// Route is one entry of the route table. Child paths are relative to the
// parent unless they start with "/".
//
// Exactly one of Component and Load must be set.
type Route struct {
	// Path is the pattern, e.g. "/item/:id", "/item/:id:int" or "/files/*path".
	Path string

	// Name optionally identifies the route.
	Name string

	// Component is the view rendered for this record.
	Component *view.Component

	// Load resolves the view lazily on first navigation.
	Load view.Loader

	// Children are nested records rendered inside this record's outlet.
	Children []Route

	// Meta is arbitrary data exposed on the resolved route.
	Meta map[string]any
}

// BeforeResolveHook runs after a navigation's components have been resolved
// and before the navigation is finalized. It blocks finalization until it
// returns.
type BeforeResolveHook func(ctx context.Context, to, from *view.Route) error

// AfterEachHook runs after a navigation has been finalized.
type AfterEachHook func(to, from *view.Route)

// ErrorHandler receives navigation errors.
type ErrorHandler func(err error)

var (
	// ErrNavigationAborted, when returned (or wrapped) by a hook, cancels the
	// navigation and leaves the current route unchanged.
	ErrNavigationAborted = errors.New("router: navigation aborted")

	// ErrInvalidLocation is returned for URLs that cannot be routed.
	ErrInvalidLocation = errors.New("router: invalid location")

	// ErrInvalidRoute is returned by New for malformed route records.
	ErrInvalidRoute = errors.New("router: invalid route record")
)

// LoadError reports a lazy component that failed to load.
type LoadError struct {
	Path string
	Err  error
}

// Error implements error.
func (e *LoadError) Error() string {
	return "router: loading component for " + e.Path + ": " + e.Err.Error()
}

// Unwrap returns the loader error.
func (e *LoadError) Unwrap() error {
	return e.Err
}
