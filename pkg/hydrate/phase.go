package hydrate

import "github.com/vango-dev/ssr/pkg/view"

// Phase is the state of a Controller.
type Phase int32

const (
	Idle Phase = iota
	AwaitingFirstResolution
	Diffing
	Prefetching
	Mounted
)

var phaseNames = [...]string{
	Idle:                    "idle",
	AwaitingFirstResolution: "awaiting-first-resolution",
	Diffing:                 "diffing",
	Prefetching:             "prefetching",
	Mounted:                 "mounted",
}

func (p Phase) String() string {
	if p < 0 || int(p) >= len(phaseNames) {
		return "unknown"
	}
	return phaseNames[p]
}

// Activated returns the views of next from the first position where prev
// and next differ. Views are compared by identity. Identical lists activate
// nothing.
func Activated(prev, next []*view.Component) []*view.Component {
	i := 0
	for i < len(prev) && i < len(next) && prev[i] == next[i] {
		i++
	}
	if i == len(next) {
		return nil
	}
	return next[i:]
}
