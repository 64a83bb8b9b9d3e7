package router

import (
	"context"
	"errors"
	"fmt"
	"reflect"
	"sync"
	"testing"
	"time"

	"github.com/vango-dev/ssr/pkg/view"
)

func TestPushFinalizesAndRecordsHistory(t *testing.T) {
	r := mustRouter(t, []Route{
		{Path: "/foo", Component: viewFoo},
		{Path: "/bar", Component: viewBar},
	})
	ctx := context.Background()

	if r.Current() != view.Start {
		t.Fatal("expected start route before first navigation")
	}
	if _, err := r.Push(ctx, "/foo"); err != nil {
		t.Fatal(err)
	}
	if _, err := r.Push(ctx, "/bar"); err != nil {
		t.Fatal(err)
	}
	if _, err := r.Replace(ctx, "/foo?x=1"); err != nil {
		t.Fatal(err)
	}

	if got := r.Current().FullPath; got != "/foo?x=1" {
		t.Errorf("current = %q", got)
	}
	want := []string{"/foo", "/foo?x=1"}
	if !reflect.DeepEqual(r.History(), want) {
		t.Errorf("history = %v, want %v", r.History(), want)
	}
}

func TestBeforeResolveReceivesToAndFrom(t *testing.T) {
	r := mustRouter(t, []Route{
		{Path: "/foo", Component: viewFoo},
		{Path: "/bar", Component: viewBar},
	})
	ctx := context.Background()

	var seen []string
	r.BeforeResolve(func(ctx context.Context, to, from *view.Route) error {
		seen = append(seen, from.FullPath+"->"+to.FullPath)
		return nil
	})

	r.Push(ctx, "/foo")
	r.Push(ctx, "/bar")

	want := []string{"/->/foo", "/foo->/bar"}
	if !reflect.DeepEqual(seen, want) {
		t.Errorf("hook calls = %v, want %v", seen, want)
	}
}

func TestBeforeResolveDelaysFinalization(t *testing.T) {
	r := mustRouter(t, []Route{{Path: "/foo", Component: viewFoo}})

	release := make(chan struct{})
	r.BeforeResolve(func(ctx context.Context, to, from *view.Route) error {
		<-release
		return nil
	})

	done := make(chan struct{})
	go func() {
		r.Push(context.Background(), "/foo")
		close(done)
	}()

	time.Sleep(20 * time.Millisecond)
	if r.Current() != view.Start {
		t.Fatal("navigation finalized before hook returned")
	}
	close(release)
	<-done
	if r.Current().Path != "/foo" {
		t.Errorf("current = %q, want /foo", r.Current().Path)
	}
}

func TestHookErrorIsReportedAndNavigationFinalizes(t *testing.T) {
	r := mustRouter(t, []Route{{Path: "/foo", Component: viewFoo}})
	boom := errors.New("prefetch failed")

	var reported []error
	r.OnError(func(err error) { reported = append(reported, err) })
	r.BeforeResolve(func(ctx context.Context, to, from *view.Route) error { return boom })

	route, err := r.Push(context.Background(), "/foo")
	if err != nil {
		t.Fatalf("Push = %v, want nil (error goes to OnError)", err)
	}
	if route.Path != "/foo" || r.Current().Path != "/foo" {
		t.Errorf("navigation not finalized: current = %q", r.Current().Path)
	}
	if len(reported) != 1 || reported[0] != boom {
		t.Errorf("reported = %v, want [boom]", reported)
	}
}

func TestAbortLeavesCurrentRoute(t *testing.T) {
	r := mustRouter(t, []Route{
		{Path: "/foo", Component: viewFoo},
		{Path: "/bar", Component: viewBar},
	})
	ctx := context.Background()
	r.Push(ctx, "/foo")

	remove := r.BeforeResolve(func(ctx context.Context, to, from *view.Route) error {
		return fmt.Errorf("guard: %w", ErrNavigationAborted)
	})
	r.OnError(func(error) {})

	if _, err := r.Push(ctx, "/bar"); !errors.Is(err, ErrNavigationAborted) {
		t.Fatalf("err = %v, want ErrNavigationAborted", err)
	}
	if r.Current().Path != "/foo" {
		t.Errorf("current = %q, want /foo", r.Current().Path)
	}

	remove()
	if _, err := r.Push(ctx, "/bar"); err != nil {
		t.Fatalf("Push after removing hook: %v", err)
	}
}

func TestOnReadyFiresOnce(t *testing.T) {
	r := mustRouter(t, []Route{{Path: "/foo", Component: viewFoo}})
	ctx := context.Background()

	count := 0
	r.OnReady(func() { count++ })
	r.Push(ctx, "/foo")
	r.Push(ctx, "/foo")

	if count != 1 {
		t.Errorf("ready callbacks = %d, want 1", count)
	}

	late := false
	r.OnReady(func() { late = true })
	if !late {
		t.Error("OnReady after ready must run immediately")
	}
	if err := r.Ready(ctx); err != nil {
		t.Errorf("Ready = %v", err)
	}
}

func TestReadyHonorsContext(t *testing.T) {
	r := mustRouter(t, nil)
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()
	if err := r.Ready(ctx); !errors.Is(err, context.DeadlineExceeded) {
		t.Errorf("Ready = %v, want deadline exceeded", err)
	}
}

func TestAfterEachRunsAfterFinalize(t *testing.T) {
	r := mustRouter(t, []Route{{Path: "/foo", Component: viewFoo}})

	var current string
	r.AfterEach(func(to, from *view.Route) {
		current = r.Current().FullPath
	})
	r.Push(context.Background(), "/foo")
	if current != "/foo" {
		t.Errorf("current during AfterEach = %q, want /foo", current)
	}
}

func TestNavigationsAreSerialized(t *testing.T) {
	r := mustRouter(t, []Route{{Path: "/item/:id", Component: viewItem}})

	var mu sync.Mutex
	active, overlap := 0, false
	r.BeforeResolve(func(ctx context.Context, to, from *view.Route) error {
		mu.Lock()
		active++
		if active > 1 {
			overlap = true
		}
		mu.Unlock()
		time.Sleep(2 * time.Millisecond)
		mu.Lock()
		active--
		mu.Unlock()
		return nil
	})

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			r.Push(context.Background(), fmt.Sprintf("/item/%d", i))
		}(i)
	}
	wg.Wait()

	if overlap {
		t.Error("two navigations ran their hooks concurrently")
	}
	if len(r.History()) != 8 {
		t.Errorf("history = %d entries, want 8", len(r.History()))
	}
}

func TestMatchedComponentsDefaultsToCurrent(t *testing.T) {
	r := mustRouter(t, []Route{{Path: "/foo", Component: viewFoo}})
	r.Push(context.Background(), "/foo")

	got := r.MatchedComponents(nil)
	if len(got) != 1 || got[0] != viewFoo {
		t.Errorf("MatchedComponents(nil) = %v", got)
	}
	if len(r.MatchedComponents(view.Start)) != 0 {
		t.Error("start route has no matches")
	}
}
