package ssr

import (
	"github.com/vango-dev/ssr/pkg/router"
	"github.com/vango-dev/ssr/pkg/store"
	"github.com/vango-dev/ssr/pkg/view"
)

// Sync projects the router's current route into the store's route slot.
// The current route is committed immediately and again after every
// finalized navigation. The projection is one way: writing the route slot
// never navigates. The returned function stops the projection.
func Sync(s *store.Store, r *router.Router) func() {
	s.Commit(store.RouteChanged{Route: r.Current().State()})
	return r.AfterEach(func(to, from *view.Route) {
		s.Commit(store.RouteChanged{Route: to.State(), From: from.State()})
	})
}
