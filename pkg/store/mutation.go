package store

// Mutation is a named state transition. The only way state changes is by
// committing a Mutation.
type Mutation interface {
	// Type returns the mutation name.
	Type() string
	apply(state *State)
}

// Mutation names.
const (
	MutationSetItem      = "setItem"
	MutationRouteChanged = "route/ROUTE_CHANGED"
	MutationReplaceState = "replaceState"
)

// SetItem stores Item under ID, overwriting any previous value.
type SetItem struct {
	ID   string
	Item Item
}

// Type implements Mutation.
func (SetItem) Type() string { return MutationSetItem }

func (m SetItem) apply(state *State) {
	if state.Items == nil {
		state.Items = make(map[string]Item)
	}
	state.Items[m.ID] = cloneItem(m.Item)
}

// RouteChanged records a finished navigation in the route slot.
type RouteChanged struct {
	Route *RouteState
	From  *RouteState
}

// Type implements Mutation.
func (RouteChanged) Type() string { return MutationRouteChanged }

func (m RouteChanged) apply(state *State) {
	route := m.Route.clone()
	if route != nil {
		from := m.From.clone()
		if from != nil {
			from.From = nil
		}
		route.From = from
	}
	state.Route = route
}

type replaceState struct {
	state State
}

func (replaceState) Type() string { return MutationReplaceState }

func (m replaceState) apply(state *State) {
	*state = m.state.clone()
	if state.Items == nil {
		state.Items = make(map[string]Item)
	}
}
