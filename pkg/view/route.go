package view

import (
	"net/url"

	"github.com/vango-dev/ssr/pkg/store"
)

// Route is a resolved location. Matched lists the components of the matched
// route records, outermost first.
type Route struct {
	Name     string
	Path     string
	FullPath string
	Hash     string
	Query    url.Values
	Params   map[string]string
	Meta     map[string]any
	Matched  []*Component
}

// Start is the route a router reports before its first navigation.
var Start = &Route{
	Path:     "/",
	FullPath: "/",
	Query:    url.Values{},
	Params:   map[string]string{},
}

// Param returns a path parameter.
func (r *Route) Param(name string) string {
	if r == nil {
		return ""
	}
	return r.Params[name]
}

// IsMatched reports whether the route matched at least one record.
func (r *Route) IsMatched() bool {
	return r != nil && len(r.Matched) > 0
}

// State converts r into the store's route projection.
func (r *Route) State() *store.RouteState {
	if r == nil {
		return nil
	}
	rs := &store.RouteState{
		Name:     r.Name,
		Path:     r.Path,
		Hash:     r.Hash,
		FullPath: r.FullPath,
		Query:    make(map[string]string, len(r.Query)),
		Params:   make(map[string]string, len(r.Params)),
	}
	for k := range r.Query {
		rs.Query[k] = r.Query.Get(k)
	}
	for k, v := range r.Params {
		rs.Params[k] = v
	}
	if len(r.Meta) > 0 {
		rs.Meta = make(map[string]any, len(r.Meta))
		for k, v := range r.Meta {
			rs.Meta[k] = v
		}
	}
	return rs
}
