package router

import "strings"

// RouteNode is a node in the radix tree.
type RouteNode struct {
	// segment is the path segment this node matches
	segment string

	// isParam indicates this is a parameter segment (:id)
	isParam bool

	// isCatchAll indicates this is a catch-all segment (*slug)
	isCatchAll bool

	// paramName is the parameter name (without : or *)
	paramName string

	// paramType is the expected parameter type (int, string, uuid)
	paramType string

	// entry is the record chain registered at this node, nil for
	// intermediate nodes
	entry *entry

	// children are static segment children
	children []*RouteNode

	// paramChild is the dynamic parameter child (:id)
	paramChild *RouteNode

	// catchAllChild is the catch-all child (*slug)
	catchAllChild *RouteNode
}

// entry is what a full pattern resolves to: the records from the outermost
// parent down to the leaf, and the registration order used to break ties.
type entry struct {
	order int
	chain []*record
}

func (e *entry) leaf() *record {
	return e.chain[len(e.chain)-1]
}

// newRouteNode creates a new route node.
func newRouteNode(segment string) *RouteNode {
	return &RouteNode{
		segment: segment,
	}
}

// findChild finds the static child for segment. Static segments compare
// case-insensitively, so /FOO and /foo share a node.
func (n *RouteNode) findChild(segment string) *RouteNode {
	for _, child := range n.children {
		if strings.EqualFold(child.segment, segment) {
			return child
		}
	}
	return nil
}

// addChild adds or retrieves a child node for the given segment.
func (n *RouteNode) addChild(segment string) *RouteNode {
	if child := n.findChild(segment); child != nil {
		return child
	}
	child := newRouteNode(segment)
	n.children = append(n.children, child)
	return child
}

// addParamChild sets the parameter child node. Patterns that name the same
// position differently share the node; the first name wins.
func (n *RouteNode) addParamChild(name, paramType string) *RouteNode {
	if n.paramChild != nil {
		return n.paramChild
	}
	child := newRouteNode("")
	child.isParam = true
	child.paramName = name
	child.paramType = paramType
	n.paramChild = child
	return child
}

// addCatchAllChild sets the catch-all child node.
func (n *RouteNode) addCatchAllChild(name string) *RouteNode {
	if n.catchAllChild != nil {
		return n.catchAllChild
	}
	child := newRouteNode("")
	child.isCatchAll = true
	child.paramName = name
	n.catchAllChild = child
	return child
}

// insertRoute adds a pattern to the tree and returns its node.
func (n *RouteNode) insertRoute(path string) *RouteNode {
	current := n
	for _, seg := range splitPath(path) {
		switch {
		case strings.HasPrefix(seg, "*"):
			// Catch-all consumes the rest of the path
			return current.addCatchAllChild(seg[1:])
		case strings.HasPrefix(seg, ":"):
			name, paramType := parseParamSegment(seg)
			current = current.addParamChild(name, paramType)
		default:
			current = current.addChild(seg)
		}
	}
	return current
}

// candidate is one node that matched the full path.
type candidate struct {
	entry  *entry
	params map[string]string
}

// collect walks every branch that can match segments and appends the
// matching entries. Static, parameter and catch-all children are all tried
// so the caller can pick by registration order.
func (n *RouteNode) collect(segments []string, params map[string]string, out *[]candidate) {
	if len(segments) == 0 {
		if n.entry != nil {
			*out = append(*out, candidate{entry: n.entry, params: copyParams(params)})
		}
		return
	}

	segment := segments[0]
	remaining := segments[1:]

	if child := n.findChild(segment); child != nil {
		child.collect(remaining, params, out)
	}

	if p := n.paramChild; p != nil && ValidateParam(segment, p.paramType) == nil {
		prev, had := params[p.paramName]
		params[p.paramName] = segment
		p.collect(remaining, params, out)
		if had {
			params[p.paramName] = prev
		} else {
			delete(params, p.paramName)
		}
	}

	if c := n.catchAllChild; c != nil && c.entry != nil {
		all := copyParams(params)
		all[c.paramName] = strings.Join(segments, "/")
		*out = append(*out, candidate{entry: c.entry, params: all})
	}
}

// match returns the earliest registered entry matching path.
func (n *RouteNode) match(path string) (*entry, map[string]string, bool) {
	var found []candidate
	n.collect(splitPath(path), make(map[string]string), &found)
	if len(found) == 0 {
		return nil, nil, false
	}
	best := found[0]
	for _, c := range found[1:] {
		if c.entry.order < best.entry.order {
			best = c
		}
	}
	return best.entry, best.params, true
}

func copyParams(params map[string]string) map[string]string {
	out := make(map[string]string, len(params))
	for k, v := range params {
		out[k] = v
	}
	return out
}

// splitPath splits a path into segments.
func splitPath(path string) []string {
	path = strings.Trim(path, "/")
	if path == "" {
		return nil
	}
	return strings.Split(path, "/")
}

// parseParamSegment extracts name and type from a parameter segment.
// Input: ":id" or ":id:int" -> name="id", type="string" or "int"
func parseParamSegment(seg string) (name, paramType string) {
	seg = seg[1:]
	if idx := strings.Index(seg, ":"); idx != -1 {
		return seg[:idx], seg[idx+1:]
	}
	return seg, "string"
}
