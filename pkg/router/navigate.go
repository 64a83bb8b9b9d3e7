package router

import (
	"context"
	"errors"
	"sync"

	"github.com/vango-dev/ssr/pkg/view"
)

// Push navigates to rawURL and records a new history entry.
//
// The navigation resolves the URL, loads lazy components, runs the
// BeforeResolve hooks in registration order and then finalizes. A hook
// error is forwarded to the OnError handlers and the navigation still
// finalizes, unless the error wraps ErrNavigationAborted.
//
// Navigations are serialized: a Push waits for the previous one to finish.
// Hooks must therefore not call Push or Replace themselves.
func (r *Router) Push(ctx context.Context, rawURL string) (*view.Route, error) {
	return r.navigate(ctx, rawURL, false)
}

// Replace navigates like Push but replaces the latest history entry.
func (r *Router) Replace(ctx context.Context, rawURL string) (*view.Route, error) {
	return r.navigate(ctx, rawURL, true)
}

func (r *Router) navigate(ctx context.Context, rawURL string, replace bool) (*view.Route, error) {
	r.navMu.Lock()
	defer r.navMu.Unlock()

	to, err := r.Resolve(ctx, rawURL)
	if err != nil {
		r.fail(err)
		return nil, err
	}
	from := r.Current()

	r.logger.Debug("navigation resolved", "to", to.FullPath, "from", from.FullPath, "matched", len(to.Matched))

	for _, hook := range r.beforeResolve.list() {
		if err := hook(ctx, to, from); err != nil {
			if errors.Is(err, ErrNavigationAborted) {
				r.fail(err)
				return nil, err
			}
			r.report(err)
		}
	}

	r.finalize(to, from, replace)
	return to, nil
}

// finalize commits the navigation and fires the ready callbacks once.
func (r *Router) finalize(to, from *view.Route, replace bool) {
	r.mu.Lock()
	r.current = to
	if replace && len(r.history) > 0 {
		r.history[len(r.history)-1] = to.FullPath
	} else {
		r.history = append(r.history, to.FullPath)
	}
	r.mu.Unlock()

	for _, hook := range r.afterEach.list() {
		hook(to, from)
	}

	r.mu.Lock()
	if r.ready {
		r.mu.Unlock()
		return
	}
	r.ready = true
	r.initErr = nil
	cbs := r.readyCbs
	r.readyCbs = nil
	r.closeSettled()
	r.mu.Unlock()

	for _, fn := range cbs {
		fn()
	}
}

// fail reports err and, while the router is not ready yet, wakes Ready
// waiters with it.
func (r *Router) fail(err error) {
	r.report(err)

	r.mu.Lock()
	defer r.mu.Unlock()
	if !r.ready {
		r.initErr = err
		r.closeSettled()
	}
}

// closeSettled must be called with r.mu held.
func (r *Router) closeSettled() {
	select {
	case <-r.settled:
	default:
		close(r.settled)
	}
}

func (r *Router) report(err error) {
	handlers := r.onError.list()
	if len(handlers) == 0 {
		r.logger.Warn("navigation error", "error", err)
		return
	}
	for _, fn := range handlers {
		fn(err)
	}
}

// hookList is an ordered, concurrency-safe list of callbacks.
type hookList[T any] struct {
	mu    sync.Mutex
	seq   uint64
	keys  []uint64
	hooks map[uint64]T
}

func (l *hookList[T]) add(fn T) func() {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.hooks == nil {
		l.hooks = make(map[uint64]T)
	}
	l.seq++
	key := l.seq
	l.hooks[key] = fn
	l.keys = append(l.keys, key)

	return func() {
		l.mu.Lock()
		defer l.mu.Unlock()
		delete(l.hooks, key)
		for i, k := range l.keys {
			if k == key {
				l.keys = append(l.keys[:i], l.keys[i+1:]...)
				break
			}
		}
	}
}

func (l *hookList[T]) list() []T {
	l.mu.Lock()
	defer l.mu.Unlock()
	out := make([]T, 0, len(l.keys))
	for _, k := range l.keys {
		out = append(out, l.hooks[k])
	}
	return out
}
