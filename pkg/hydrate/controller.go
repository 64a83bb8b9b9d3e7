package hydrate

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	ssr "github.com/vango-dev/ssr"
	"github.com/vango-dev/ssr/pkg/view"
)

// ErrAlreadyBooted is returned by Boot on its second call.
var ErrAlreadyBooted = errors.New("hydrate: controller already booted")

// Mounter attaches an app to the page. Mount is called once, after the
// first navigation has been finalized.
type Mounter interface {
	Mount(ctx context.Context, app *ssr.App) error
}

// Updater is implemented by mounters that want to hear about every
// navigation finalized after the mount.
type Updater interface {
	Update(ctx context.Context, app *ssr.App) error
}

// MounterFunc adapts a function to Mounter.
type MounterFunc func(ctx context.Context, app *ssr.App) error

// Mount implements Mounter.
func (f MounterFunc) Mount(ctx context.Context, app *ssr.App) error { return f(ctx, app) }

// Option configures a Controller.
type Option func(*Controller)

// WithLogger sets the controller logger.
func WithLogger(logger *slog.Logger) Option {
	return func(c *Controller) { c.logger = logger }
}

// WithObserver sets a callback invoked once per finished prefetch.
func WithObserver(fn func(component string, err error)) Option {
	return func(c *Controller) { c.observe = fn }
}

// Controller drives the client side of one page load.
type Controller struct {
	app     *ssr.App
	env     *Environment
	mounter Mounter
	logger  *slog.Logger
	observe func(component string, err error)

	phase   atomic.Int32
	booted  atomic.Bool
	first   atomic.Bool
	mounted atomic.Bool

	mu   sync.Mutex
	errs []error
}

// New returns a controller for app booting in env.
func New(app *ssr.App, env *Environment, mounter Mounter, opts ...Option) *Controller {
	if env == nil {
		env = &Environment{URL: "/"}
	}
	c := &Controller{app: app, env: env, mounter: mounter}
	for _, opt := range opts {
		opt(c)
	}
	if c.logger == nil {
		c.logger = slog.Default()
	}
	return c
}

// Boot replays the snapshot, resolves the page URL and mounts the app.
//
// When a snapshot was replayed its data already satisfies the first route,
// so the first resolution prefetches nothing. Without a snapshot every
// matched view is activated. Prefetch failures are reported on the router
// error channel and never block the navigation.
func (c *Controller) Boot(ctx context.Context) error {
	if c.booted.Swap(true) {
		return ErrAlreadyBooted
	}

	if c.env.InitialState != nil {
		c.app.Store.ReplaceState(*c.env.InitialState)
	}
	c.setPhase(AwaitingFirstResolution)

	c.first.Store(true)
	c.app.Router.OnError(c.record)
	c.app.Router.BeforeResolve(c.beforeResolve)

	if _, err := c.app.Router.Push(ctx, c.env.URL); err != nil {
		return err
	}
	if err := c.app.Router.Ready(ctx); err != nil {
		return err
	}

	if c.mounter != nil {
		if err := c.mounter.Mount(ctx, c.app); err != nil {
			return err
		}
	}
	c.mounted.Store(true)
	c.setPhase(Mounted)
	c.logger.Debug("app mounted", "url", c.env.URL, "replayed", c.env.InitialState != nil)
	return nil
}

// Navigate pushes url and, after the navigation finalized, hands the app
// to the mounter if it implements Updater.
func (c *Controller) Navigate(ctx context.Context, url string) error {
	if _, err := c.app.Router.Push(ctx, url); err != nil {
		return err
	}
	if u, ok := c.mounter.(Updater); ok && c.mounted.Load() {
		return u.Update(ctx, c.app)
	}
	return nil
}

func (c *Controller) beforeResolve(ctx context.Context, to, from *view.Route) error {
	prev := from.Matched
	if c.first.Swap(false) && c.env.InitialState != nil {
		prev = to.Matched
	}

	c.setPhase(Diffing)
	activated := Activated(prev, to.Matched)
	defer c.settle()
	if len(view.Prefetchers(activated)) == 0 {
		return nil
	}

	c.setPhase(Prefetching)
	c.logger.Debug("prefetching activated views", "to", to.FullPath, "activated", len(activated))
	pc := view.PrefetchContext{Store: c.app.Store, Route: to}
	if c.observe != nil {
		pc.Observe = func(component string, _ time.Duration, err error) { c.observe(component, err) }
	}
	return view.PrefetchAll(ctx, activated, pc)
}

func (c *Controller) settle() {
	if c.mounted.Load() {
		c.setPhase(Mounted)
	} else {
		c.setPhase(AwaitingFirstResolution)
	}
}

func (c *Controller) record(err error) {
	c.mu.Lock()
	c.errs = append(c.errs, err)
	c.mu.Unlock()
	c.logger.Warn("navigation error", "error", err)
}

func (c *Controller) setPhase(p Phase) {
	c.phase.Store(int32(p))
}

// Phase returns the current phase.
func (c *Controller) Phase() Phase {
	return Phase(c.phase.Load())
}

// Errors returns the errors received on the router error channel.
func (c *Controller) Errors() []error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]error(nil), c.errs...)
}

// App returns the controlled app.
func (c *Controller) App() *ssr.App {
	return c.app
}
