package store

import "errors"

// ErrNoFetcher is returned by FetchItem when the store has no item source.
var ErrNoFetcher = errors.New("store: no item fetcher configured")

// State is the serializable store state. Its JSON form is the snapshot
// embedded into server-rendered pages.
type State struct {
	Items map[string]Item `json:"items"`
	Route *RouteState     `json:"route,omitempty"`
}

// RouteState is the router projection kept in the reserved "route" slot.
type RouteState struct {
	Name     string            `json:"name,omitempty"`
	Path     string            `json:"path"`
	Hash     string            `json:"hash"`
	Query    map[string]string `json:"query"`
	Params   map[string]string `json:"params"`
	FullPath string            `json:"fullPath"`
	Meta     map[string]any    `json:"meta,omitempty"`
	From     *RouteState       `json:"from,omitempty"`
}

func (s State) clone() State {
	out := State{Items: make(map[string]Item, len(s.Items))}
	for id, item := range s.Items {
		out.Items[id] = cloneItem(item)
	}
	out.Route = s.Route.clone()
	return out
}

func (r *RouteState) clone() *RouteState {
	if r == nil {
		return nil
	}
	out := *r
	out.Query = cloneStrings(r.Query)
	out.Params = cloneStrings(r.Params)
	if r.Meta != nil {
		out.Meta = cloneValue(r.Meta).(map[string]any)
	}
	out.From = r.From.clone()
	return &out
}

func cloneStrings(m map[string]string) map[string]string {
	if m == nil {
		return nil
	}
	out := make(map[string]string, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}

func cloneItem(item Item) Item {
	if item == nil {
		return nil
	}
	return Item(cloneValue(map[string]any(item)).(map[string]any))
}

// cloneValue copies the JSON-shaped containers; leaves are shared.
func cloneValue(v any) any {
	switch t := v.(type) {
	case map[string]any:
		out := make(map[string]any, len(t))
		for k, e := range t {
			out[k] = cloneValue(e)
		}
		return out
	case Item:
		return cloneItem(t)
	case []any:
		out := make([]any, len(t))
		for i, e := range t {
			out[i] = cloneValue(e)
		}
		return out
	default:
		return v
	}
}
