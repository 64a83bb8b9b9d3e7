package ssr

import (
	"context"
	"errors"
	"fmt"

	"github.com/a-h/templ"
	"go.opentelemetry.io/otel/attribute"

	"github.com/vango-dev/ssr/pkg/middleware"
	"github.com/vango-dev/ssr/pkg/render"
	"github.com/vango-dev/ssr/pkg/router"
	"github.com/vango-dev/ssr/pkg/view"
)

// EntryServer returns the server entry of f. For every request it creates a
// new app, navigates to the request URL and waits for the router to become
// ready. A URL without matched views fails with render.ErrNotFound.
// Otherwise the prefetch of every matched view runs concurrently; once all
// of them succeeded the store snapshot is placed on the render context and
// the app markup is returned. A failed prefetch fails the render.
func EntryServer(f *Factory) render.Entry {
	return func(ctx context.Context, rc *render.Context) (templ.Component, error) {
		app, err := f.CreateApp(rc)
		if err != nil {
			return nil, err
		}
		defer app.Close()

		if _, err := app.Router.Push(ctx, rc.URL); err != nil {
			if errors.Is(err, router.ErrInvalidLocation) {
				return nil, fmt.Errorf("%w: %v", render.ErrNotFound, err)
			}
			return nil, err
		}
		if err := app.Router.Ready(ctx); err != nil {
			return nil, err
		}

		route := app.Router.Current()
		matched := app.Router.MatchedComponents(route)
		if len(matched) == 0 {
			return nil, render.ErrNotFound
		}

		ctx, span := middleware.StartSpan(ctx, "ssr.prefetch",
			attribute.String("ssr.route", route.FullPath),
			attribute.Int("ssr.matched", len(matched)),
		)
		err = view.PrefetchAll(ctx, matched, view.PrefetchContext{
			Store:   app.Store,
			Route:   route,
			Observe: f.Metrics.RecordPrefetch,
		})
		middleware.EndSpan(span, err)
		if err != nil {
			return nil, err
		}

		rc.State = app.Store.State()
		return app.Render(), nil
	}
}
