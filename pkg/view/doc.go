// Package view defines view components, resolved routes and the prefetch
// contract shared by the server entry and the hydration controller.
//
// A component declares at construction time whether it prefetches:
//
//	var Item = view.New("item", renderItem).WithPrefetch(
//	    func(ctx context.Context, pc view.PrefetchContext) error {
//	        return pc.Store.FetchItem(ctx, pc.Route.Param("id"))
//	    })
//
// Rendering walks Route.Matched outer to inner; each component renders the
// next one through RenderContext.Outlet.
package view
