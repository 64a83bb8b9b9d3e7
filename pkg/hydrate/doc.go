// Package hydrate boots an app from a server-rendered page.
//
// The Controller replays the store snapshot embedded by the server, resolves
// the page URL and mounts the app once the router is ready. Every later
// navigation prefetches only the views it activates: the matched lists of
// the two routes are compared position by position and every view from the
// first differing position onward is activated. A view reused at the same
// depth is never prefetched again.
//
// Verify runs the same boot headlessly and compares the markup the app
// renders with the markup the server sent.
package hydrate
