// Package render turns an app entry into a complete HTML response.
//
// A render is driven by an Entry, the server half of an application: it
// receives a fresh Context for one request, prepares the app (resolving the
// route and prefetching data) and returns the root markup. The
// BundleRenderer places that markup in a page Template, injects the client
// manifest assets and appends the state snapshot the client boots from.
//
//	r := render.NewBundleRenderer(entry, render.Options{
//	    Template: tmpl,
//	    Manifest: manifest,
//	})
//	html, err := r.RenderToString(ctx, &render.Context{URL: "/item/1", Title: "Vue SSR"})
//
// # Errors
//
// Every failed render returns a *Error. Entries report an unmatched URL with
// ErrNotFound, which maps to status 404; anything else, including a
// recovered panic, maps to 500. Output is buffered, so a failed render never
// produces partial HTML.
//
// # State Snapshot
//
// Context.State, when set by the entry, is serialized into
//
//	<script>window.__INITIAL_STATE__={...}</script>
//
// with "<", ">" and "&" escaped so the payload cannot terminate the script
// element.
package render
