// Package ssr renders a routed, store-backed application on the server and
// hands its state to the client.
//
// An application is described once by a Factory: its route table, root
// view and item fetcher. Every call to CreateApp builds a new app with its
// own store and router, so no state is shared between requests:
//
//	f := &ssr.Factory{
//	    Routes:  app.Routes,
//	    Root:    app.Root,
//	    Fetcher: source.NewMemory(fixtures),
//	}
//	srv, err := ssr.NewServer(f, ssr.DefaultConfig())
//	if err != nil {
//	    log.Fatal(err)
//	}
//	log.Fatal(srv.Run(ctx))
//
// On the server, EntryServer resolves the request URL, prefetches the data
// of every matched view and returns the markup together with the store
// snapshot. On the client, package hydrate replays that snapshot and only
// prefetches for views a later navigation activates.
package ssr
