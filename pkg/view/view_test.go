package view

import (
	"bytes"
	"context"
	"errors"
	"io"
	"net/url"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/a-h/templ"
	"github.com/vango-dev/ssr/pkg/store"
)

func tag(name string) RenderFunc {
	return func(rc *RenderContext) templ.Component {
		return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
			if _, err := io.WriteString(w, "<"+name+">"); err != nil {
				return err
			}
			if err := rc.Outlet().Render(ctx, w); err != nil {
				return err
			}
			_, err := io.WriteString(w, "</"+name+">")
			return err
		})
	}
}

func renderString(t *testing.T, c templ.Component) string {
	t.Helper()
	var buf bytes.Buffer
	if err := c.Render(context.Background(), &buf); err != nil {
		t.Fatalf("Render: %v", err)
	}
	return buf.String()
}

func TestRenderNestedOutlets(t *testing.T) {
	root := New("root", tag("main"))
	outer := New("outer", tag("section"))
	inner := New("inner", tag("p"))

	route := &Route{Path: "/a/b", Matched: []*Component{outer, inner}}
	got := renderString(t, Render(root, store.New(nil), route))

	want := "<main><section><p></p></section></main>"
	if got != want {
		t.Errorf("markup = %q, want %q", got, want)
	}
}

func TestRenderWithoutMatches(t *testing.T) {
	root := New("root", tag("main"))
	got := renderString(t, Render(root, store.New(nil), Start))
	if got != "<main></main>" {
		t.Errorf("markup = %q", got)
	}
}

func TestComponentWithoutRenderFuncRendersOutlet(t *testing.T) {
	wrapper := New("wrapper", nil)
	leaf := New("leaf", tag("b"))
	route := &Route{Matched: []*Component{wrapper, leaf}}

	got := renderString(t, Render(New("root", tag("i")), store.New(nil), route))
	if got != "<i><b></b></i>" {
		t.Errorf("markup = %q", got)
	}
}

func TestWithPrefetchIsDistinctComponent(t *testing.T) {
	base := New("item", nil)
	withFetch := base.WithPrefetch(func(ctx context.Context, pc PrefetchContext) error { return nil })

	if base == withFetch {
		t.Fatal("WithPrefetch must return a new component")
	}
	if _, ok := base.Prefetch(); ok {
		t.Error("base component should not prefetch")
	}
	if _, ok := withFetch.Prefetch(); !ok {
		t.Error("derived component should prefetch")
	}
	if withFetch.Name() != "item" {
		t.Errorf("Name = %q, want item", withFetch.Name())
	}
}

func TestPrefetchAllNoPrefetchers(t *testing.T) {
	comps := []*Component{New("a", nil), New("b", nil)}
	if err := PrefetchAll(context.Background(), comps, PrefetchContext{}); err != nil {
		t.Errorf("PrefetchAll = %v, want nil", err)
	}
	if err := PrefetchAll(context.Background(), nil, PrefetchContext{}); err != nil {
		t.Errorf("PrefetchAll(nil) = %v, want nil", err)
	}
}

func TestPrefetchAllFailureDoesNotStopSiblings(t *testing.T) {
	s := store.New(nil)
	boom := errors.New("boom")

	d := New("D", nil).WithPrefetch(func(ctx context.Context, pc PrefetchContext) error {
		return boom
	})
	e := New("E", nil).WithPrefetch(func(ctx context.Context, pc PrefetchContext) error {
		time.Sleep(10 * time.Millisecond)
		pc.Store.SetItem("e", store.Item{"ok": true})
		return nil
	})

	err := PrefetchAll(context.Background(), []*Component{d, e}, PrefetchContext{Store: s})
	if err == nil {
		t.Fatal("expected error from D")
	}
	if !errors.Is(err, boom) {
		t.Errorf("err = %v, want to wrap boom", err)
	}
	var pe *PrefetchError
	if !errors.As(err, &pe) || pe.Component != "D" {
		t.Errorf("expected *PrefetchError for D, got %v", err)
	}
	if _, ok := s.Item("e"); !ok {
		t.Error("sibling prefetch E did not commit its item")
	}
}

func TestPrefetchAllRunsConcurrently(t *testing.T) {
	var running, peak atomic.Int32
	gate := make(chan struct{})
	mk := func(name string) *Component {
		return New(name, nil).WithPrefetch(func(ctx context.Context, pc PrefetchContext) error {
			n := running.Add(1)
			for {
				p := peak.Load()
				if n <= p || peak.CompareAndSwap(p, n) {
					break
				}
			}
			<-gate
			running.Add(-1)
			return nil
		})
	}
	comps := []*Component{mk("a"), mk("b"), mk("c")}

	done := make(chan error, 1)
	go func() { done <- PrefetchAll(context.Background(), comps, PrefetchContext{}) }()

	deadline := time.After(2 * time.Second)
	for peak.Load() < 3 {
		select {
		case <-deadline:
			t.Fatalf("peak concurrency = %d, want 3", peak.Load())
		default:
			time.Sleep(time.Millisecond)
		}
	}
	close(gate)
	if err := <-done; err != nil {
		t.Errorf("PrefetchAll = %v", err)
	}
}

func TestPrefetchAllRecoversPanics(t *testing.T) {
	c := New("panics", nil).WithPrefetch(func(ctx context.Context, pc PrefetchContext) error {
		panic("kaboom")
	})
	err := PrefetchAll(context.Background(), []*Component{c}, PrefetchContext{})
	if err == nil || !strings.Contains(err.Error(), "kaboom") {
		t.Errorf("err = %v, want panic converted to error", err)
	}
}

func TestRouteState(t *testing.T) {
	r := &Route{
		Name:     "item",
		Path:     "/item/1",
		FullPath: "/item/1?tab=comments#top",
		Hash:     "#top",
		Query:    url.Values{"tab": {"comments"}},
		Params:   map[string]string{"id": "1"},
	}
	rs := r.State()
	if rs.Params["id"] != "1" || rs.Query["tab"] != "comments" || rs.FullPath != r.FullPath {
		t.Errorf("projection = %+v", rs)
	}
	if (*Route)(nil).State() != nil {
		t.Error("nil route should project to nil")
	}
}

func TestPrefetchAllObservesEachPrefetch(t *testing.T) {
	boom := errors.New("boom")
	a := New("a", nil).WithPrefetch(func(ctx context.Context, pc PrefetchContext) error { return nil })
	b := New("b", nil).WithPrefetch(func(ctx context.Context, pc PrefetchContext) error { return boom })

	var mu sync.Mutex
	got := map[string]error{}
	pc := PrefetchContext{Observe: func(component string, d time.Duration, err error) {
		mu.Lock()
		got[component] = err
		mu.Unlock()
	}}
	PrefetchAll(context.Background(), []*Component{a, New("plain", nil), b}, pc)

	if len(got) != 2 {
		t.Fatalf("observed %v, want a and b only", got)
	}
	if got["a"] != nil || !errors.Is(got["b"], boom) {
		t.Errorf("observed %v", got)
	}
}
