package view

import (
	"context"
	"fmt"
	"time"

	"github.com/sourcegraph/conc/pool"
)

// PrefetchError reports the failure of one component's prefetch.
type PrefetchError struct {
	Component string
	Err       error
}

// Error implements error.
func (e *PrefetchError) Error() string {
	return fmt.Sprintf("prefetch %s: %v", e.Component, e.Err)
}

// Unwrap returns the underlying error.
func (e *PrefetchError) Unwrap() error {
	return e.Err
}

// Prefetchers returns the components of comps that declare a prefetch,
// preserving order.
func Prefetchers(comps []*Component) []*Component {
	var out []*Component
	for _, c := range comps {
		if _, ok := c.Prefetch(); ok {
			out = append(out, c)
		}
	}
	return out
}

// PrefetchAll starts the prefetch of every component in comps concurrently
// and waits for all of them to settle. One failure does not stop its
// siblings; every failure is returned, each as a *PrefetchError.
func PrefetchAll(ctx context.Context, comps []*Component, pc PrefetchContext) error {
	targets := Prefetchers(comps)
	if len(targets) == 0 {
		return nil
	}

	p := pool.New().WithErrors().WithContext(ctx)
	for _, c := range targets {
		c := c
		fn, _ := c.Prefetch()
		p.Go(func(ctx context.Context) (err error) {
			start := time.Now()
			defer func() {
				if r := recover(); r != nil {
					err = &PrefetchError{Component: c.Name(), Err: fmt.Errorf("panic: %v", r)}
				}
				if pc.Observe != nil {
					pc.Observe(c.Name(), time.Since(start), err)
				}
			}()
			if err := fn(ctx, pc); err != nil {
				return &PrefetchError{Component: c.Name(), Err: err}
			}
			return nil
		})
	}
	return p.Wait()
}
