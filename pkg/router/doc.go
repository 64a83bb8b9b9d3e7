// Package router resolves URLs against a static route table and drives
// navigations.
//
// The router provides:
//   - Radix tree matching with ":param", typed ":param:int" and "*catchall" segments
//   - Nested records: a URL resolves to the matched components outer to inner
//   - Lazily loaded components, resolved before any hook runs
//   - BeforeResolve hooks that delay finalization, AfterEach hooks, error handlers
//   - A ready signal fired once, after the first navigation is finalized
//
// # Route Table
//
//	r, err := router.New([]router.Route{
//	    {Path: "/item/:id", Component: views.Item},
//	    {Path: "/baz", Load: loadBaz},
//	    {Path: "/user/:id", Component: views.User, Children: []router.Route{
//	        {Path: "posts", Component: views.UserPosts},
//	    }},
//	})
//
// When several patterns match the same path the one registered first wins.
//
// # Navigation
//
//	to, err := r.Push(ctx, "/item/42?tab=comments")
//	// to.Params["id"] == "42"
//	// to.Matched == []*view.Component{views.Item}
//
// A router belongs to one app instance. On the server a new router is built
// for every request.
package router
