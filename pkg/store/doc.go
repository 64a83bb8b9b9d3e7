// Package store implements the request-scoped application state container.
//
// A Store holds fetched items keyed by id plus a reserved "route" slot that
// mirrors the router. State only changes through Commit; the SetItem helper
// and the FetchItem action are thin wrappers over it.
//
//	s := store.New(source.NewMemory(fixtures))
//	if err := s.FetchItem(ctx, "1"); err != nil {
//	    return err
//	}
//	item, _ := s.Item("1")
//
// The JSON form of State is the snapshot the server embeds into rendered
// pages. On the client, ReplaceState installs that snapshot wholesale.
package store
