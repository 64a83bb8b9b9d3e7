package app

import (
	"context"
	"log/slog"

	ssr "github.com/vango-dev/ssr"
	"github.com/vango-dev/ssr/pkg/router"
	"github.com/vango-dev/ssr/pkg/store"
	"github.com/vango-dev/ssr/pkg/view"
)

// Routes returns the route table. Every call returns a new slice.
func Routes() []router.Route {
	return []router.Route{
		{Path: "/item/:id", Name: "item", Component: Item},
		{Path: "/bar", Name: "bar", Component: Bar},
		{Path: "/baz", Name: "baz", Load: loadBaz},
		{Path: "/foo", Name: "foo", Component: Foo},
	}
}

func loadBaz(ctx context.Context) (*view.Component, error) {
	return Baz, nil
}

// NewFactory returns the factory of the demo app reading items from
// fetcher.
func NewFactory(fetcher store.ItemFetcher, logger *slog.Logger) *ssr.Factory {
	return &ssr.Factory{
		Routes:  Routes,
		Root:    Root,
		Fetcher: fetcher,
		Logger:  logger,
	}
}
