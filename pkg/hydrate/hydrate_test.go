package hydrate

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/a-h/templ"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	ssr "github.com/vango-dev/ssr"
	"github.com/vango-dev/ssr/pkg/render"
	"github.com/vango-dev/ssr/pkg/router"
	"github.com/vango-dev/ssr/pkg/store"
	"github.com/vango-dev/ssr/pkg/view"
)

type countingFetcher struct {
	mu    sync.Mutex
	calls map[string]int
	items map[string]store.Item
}

func newCountingFetcher(items map[string]store.Item) *countingFetcher {
	return &countingFetcher{calls: map[string]int{}, items: items}
}

func (f *countingFetcher) FetchItem(ctx context.Context, id string) (store.Item, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls[id]++
	item, ok := f.items[id]
	if !ok {
		return nil, fmt.Errorf("no item %q", id)
	}
	return item, nil
}

func (f *countingFetcher) count(id string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls[id]
}

func markup(s string) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		_, err := io.WriteString(w, s)
		return err
	})
}

var (
	rootView = view.New("app", func(rc *view.RenderContext) templ.Component {
		return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
			io.WriteString(w, `<div id="app"><nav><a href="/foo">foo</a></nav>`)
			if err := rc.Outlet().Render(ctx, w); err != nil {
				return err
			}
			_, err := io.WriteString(w, `</div>`)
			return err
		})
	})

	itemView = view.New("item", func(rc *view.RenderContext) templ.Component {
		item, _ := rc.Item(rc.Route.Param("id"))
		title, _ := item["title"].(string)
		return markup("<h1>" + templ.EscapeString(title) + "</h1>")
	}).WithPrefetch(func(ctx context.Context, pc view.PrefetchContext) error {
		return pc.Store.FetchItem(ctx, pc.Route.Param("id"))
	})

	fooView = view.New("foo", func(rc *view.RenderContext) templ.Component {
		return markup("<p>foo</p>")
	})

	// pairView nests pairChild, which fetches "b", inside a view whose own
	// fetch of "a" may fail.
	pairView = view.New("pair", func(rc *view.RenderContext) templ.Component {
		return rc.Outlet()
	}).WithPrefetch(func(ctx context.Context, pc view.PrefetchContext) error {
		return pc.Store.FetchItem(ctx, "a")
	})

	pairChild = view.New("pair-child", nil).WithPrefetch(func(ctx context.Context, pc view.PrefetchContext) error {
		return pc.Store.FetchItem(ctx, "b")
	})
)

func factory(fetcher store.ItemFetcher) *ssr.Factory {
	return &ssr.Factory{
		Routes: func() []router.Route {
			return []router.Route{
				{Path: "/item/:id", Component: itemView},
				{Path: "/foo", Component: fooView},
				{Path: "/pair", Component: pairView, Children: []router.Route{
					{Path: "both", Component: pairChild},
				}},
			}
		},
		Root:    rootView,
		Fetcher: fetcher,
	}
}

func newApp(t *testing.T, fetcher store.ItemFetcher) *ssr.App {
	t.Helper()
	app, err := factory(fetcher).CreateApp(nil)
	require.NoError(t, err)
	return app
}

type recordingMounter struct {
	mounts  atomic.Int32
	updates atomic.Int32
}

func (m *recordingMounter) Mount(ctx context.Context, app *ssr.App) error {
	m.mounts.Add(1)
	return nil
}

func (m *recordingMounter) Update(ctx context.Context, app *ssr.App) error {
	m.updates.Add(1)
	return nil
}

func TestPhaseString(t *testing.T) {
	assert.Equal(t, "idle", Idle.String())
	assert.Equal(t, "awaiting-first-resolution", AwaitingFirstResolution.String())
	assert.Equal(t, "diffing", Diffing.String())
	assert.Equal(t, "prefetching", Prefetching.String())
	assert.Equal(t, "mounted", Mounted.String())
	assert.Equal(t, "unknown", Phase(42).String())
}

func TestActivated(t *testing.T) {
	a, b, c, d := view.New("a", nil), view.New("b", nil), view.New("c", nil), view.New("d", nil)

	tests := []struct {
		name       string
		prev, next []*view.Component
		want       []*view.Component
	}{
		{"divergence at the leaf", []*view.Component{a, b, c}, []*view.Component{a, b, d}, []*view.Component{d}},
		{"identical", []*view.Component{a, b}, []*view.Component{a, b}, nil},
		{"from nothing", nil, []*view.Component{a, b}, []*view.Component{a, b}},
		{"to nothing", []*view.Component{a}, nil, nil},
		{"shorter", []*view.Component{a, b}, []*view.Component{a}, nil},
		{"longer", []*view.Component{a}, []*view.Component{a, b}, []*view.Component{b}},
		{"divergence at the root", []*view.Component{a, b}, []*view.Component{c, b}, []*view.Component{c, b}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Activated(tt.prev, tt.next))
		})
	}
}

func TestBootWithSnapshotSkipsPrefetch(t *testing.T) {
	fetcher := newCountingFetcher(map[string]store.Item{"1": {"title": "fetched"}})
	app := newApp(t, fetcher)
	app.Store.SetItem("stale", store.Item{"x": 1})

	snapshot := store.State{Items: map[string]store.Item{"1": {"title": "from server"}}}
	m := &recordingMounter{}
	c := New(app, &Environment{URL: "/item/1", InitialState: &snapshot}, m)
	require.Equal(t, Idle, c.Phase())

	require.NoError(t, c.Boot(context.Background()))

	assert.Equal(t, 0, fetcher.count("1"))
	assert.Equal(t, int32(1), m.mounts.Load())
	assert.Equal(t, Mounted, c.Phase())

	state := app.Store.State()
	assert.Equal(t, map[string]store.Item{"1": {"title": "from server"}}, state.Items)
	require.NotNil(t, state.Route)
	assert.Equal(t, "/item/1", state.Route.FullPath)
	assert.Empty(t, c.Errors())
}

func TestBootWithoutSnapshotPrefetchesEverything(t *testing.T) {
	fetcher := newCountingFetcher(map[string]store.Item{"1": {"title": "fetched"}})
	app := newApp(t, fetcher)
	c := New(app, &Environment{URL: "/item/1"}, nil)

	require.NoError(t, c.Boot(context.Background()))

	assert.Equal(t, 1, fetcher.count("1"))
	item, ok := app.Store.Item("1")
	require.True(t, ok)
	assert.Equal(t, "fetched", item["title"])
}

func TestBootTwice(t *testing.T) {
	c := New(newApp(t, newCountingFetcher(nil)), &Environment{URL: "/foo"}, nil)
	require.NoError(t, c.Boot(context.Background()))
	assert.ErrorIs(t, c.Boot(context.Background()), ErrAlreadyBooted)
}

func TestBootInvalidURL(t *testing.T) {
	c := New(newApp(t, newCountingFetcher(nil)), &Environment{URL: `/a\b`}, nil)
	assert.ErrorIs(t, c.Boot(context.Background()), router.ErrInvalidLocation)
}

func TestBootMountError(t *testing.T) {
	boom := errors.New("boom")
	c := New(newApp(t, newCountingFetcher(nil)), &Environment{URL: "/foo"},
		MounterFunc(func(ctx context.Context, app *ssr.App) error { return boom }))
	assert.ErrorIs(t, c.Boot(context.Background()), boom)
	assert.NotEqual(t, Mounted, c.Phase())
}

func TestNavigateReusedViewIsNotPrefetched(t *testing.T) {
	fetcher := newCountingFetcher(map[string]store.Item{
		"1": {"title": "one"},
		"2": {"title": "two"},
	})
	app := newApp(t, fetcher)
	m := &recordingMounter{}
	c := New(app, &Environment{URL: "/item/1"}, m)
	require.NoError(t, c.Boot(context.Background()))
	require.Equal(t, 1, fetcher.count("1"))

	ctx := context.Background()
	require.NoError(t, c.Navigate(ctx, "/item/2"))
	assert.Equal(t, 0, fetcher.count("2"), "same view at the same depth")

	require.NoError(t, c.Navigate(ctx, "/foo"))
	require.NoError(t, c.Navigate(ctx, "/item/2"))
	assert.Equal(t, 1, fetcher.count("2"))

	assert.Equal(t, int32(1), m.mounts.Load())
	assert.Equal(t, int32(3), m.updates.Load())
	assert.Equal(t, Mounted, c.Phase())
}

func TestNavigatePrefetchFailureStillFinalizes(t *testing.T) {
	fetcher := newCountingFetcher(map[string]store.Item{"b": {"ok": true}})
	app := newApp(t, fetcher)
	c := New(app, &Environment{URL: "/foo"}, nil)
	require.NoError(t, c.Boot(context.Background()))

	require.NoError(t, c.Navigate(context.Background(), "/pair/both"))

	assert.Equal(t, "/pair/both", app.Router.Current().FullPath)
	_, ok := app.Store.Item("b")
	assert.True(t, ok, "sibling prefetch committed")
	_, ok = app.Store.Item("a")
	assert.False(t, ok)

	errs := c.Errors()
	require.Len(t, errs, 1)
	var pe *view.PrefetchError
	require.ErrorAs(t, errs[0], &pe)
	assert.Equal(t, "pair", pe.Component)
}

func TestNavigateWithoutActivatedViews(t *testing.T) {
	fetcher := newCountingFetcher(nil)
	app := newApp(t, fetcher)

	var observed []string
	c := New(app, &Environment{URL: "/foo"}, nil, WithObserver(func(component string, err error) {
		observed = append(observed, component)
	}))
	require.NoError(t, c.Boot(context.Background()))
	require.NoError(t, c.Navigate(context.Background(), "/foo?again=1"))

	assert.Empty(t, observed)
	assert.Empty(t, c.Errors())
	assert.Equal(t, "/foo?again=1", app.Router.Current().FullPath)
}

func TestObserverSeesActivatedPrefetches(t *testing.T) {
	fetcher := newCountingFetcher(map[string]store.Item{"7": {}})
	app := newApp(t, fetcher)

	var mu sync.Mutex
	var observed []string
	c := New(app, &Environment{URL: "/item/7"}, nil, WithObserver(func(component string, err error) {
		mu.Lock()
		observed = append(observed, component)
		mu.Unlock()
	}))
	require.NoError(t, c.Boot(context.Background()))
	assert.Equal(t, []string{"item"}, observed)
}

// =============================================================================
// Documents
// =============================================================================

func serverPage(t *testing.T, f *ssr.Factory, url string) string {
	t.Helper()
	r := render.NewBundleRenderer(ssr.EntryServer(f), render.Options{})
	html, err := r.RenderToString(context.Background(), &render.Context{URL: url, Title: "t"})
	require.NoError(t, err)
	return html
}

func TestFromDocument(t *testing.T) {
	items := map[string]store.Item{"1": {"title": "a <b> & c"}}
	page := serverPage(t, factory(newCountingFetcher(items)), "/item/1")

	env, err := FromDocument(strings.NewReader(page), "/item/1")
	require.NoError(t, err)

	assert.Equal(t, "/item/1", env.URL)
	require.NotNil(t, env.InitialState)
	assert.Equal(t, "a <b> & c", env.InitialState.Items["1"]["title"])
	require.NotNil(t, env.InitialState.Route)
	assert.Equal(t, "1", env.InitialState.Route.Params["id"])
	assert.True(t, strings.HasPrefix(env.Outlet, `<div id="app">`), env.Outlet)
	assert.Contains(t, env.Outlet, "<h1>a &lt;b&gt; &amp; c</h1>")
}

func TestFromDocumentWithoutStateOrOutlet(t *testing.T) {
	doc := `<html><head><script src="/app.js"></script><script>console.log(1)</script></head><body></body></html>`
	env, err := FromDocument(strings.NewReader(doc), "/")
	require.NoError(t, err)
	assert.Nil(t, env.InitialState)
	assert.Empty(t, env.Outlet)
}

func TestFromDocumentInvalidState(t *testing.T) {
	doc := `<html><body><div id="app"></div><script>window.__INITIAL_STATE__={</script></body></html>`
	_, err := FromDocument(strings.NewReader(doc), "/")
	assert.ErrorIs(t, err, render.ErrInvalidState)
}

func TestVerifyMatchesServerMarkup(t *testing.T) {
	items := map[string]store.Item{"1": {"title": "one"}}
	serverFetcher := newCountingFetcher(items)
	page := serverPage(t, factory(serverFetcher), "/item/1")

	env, err := FromDocument(strings.NewReader(page), "/item/1")
	require.NoError(t, err)

	clientFetcher := newCountingFetcher(items)
	c, err := Verify(context.Background(), factory(clientFetcher), env)
	require.NoError(t, err)
	assert.Equal(t, Mounted, c.Phase())
	assert.Equal(t, 0, clientFetcher.count("1"), "snapshot satisfied the first route")
}

func TestVerifyDetectsMismatch(t *testing.T) {
	items := map[string]store.Item{"1": {"title": "one"}}
	page := serverPage(t, factory(newCountingFetcher(items)), "/item/1")
	env, err := FromDocument(strings.NewReader(page), "/item/1")
	require.NoError(t, err)

	env.InitialState.Items["1"] = store.Item{"title": "changed"}

	_, err = Verify(context.Background(), factory(newCountingFetcher(items)), env)
	require.ErrorIs(t, err, ErrHydrationMismatch)
	var me *MismatchError
	require.ErrorAs(t, err, &me)
	assert.Contains(t, me.Server, "one")
	assert.Contains(t, me.Client, "changed")
}

func TestVerifyWithoutMountPoint(t *testing.T) {
	_, err := Verify(context.Background(), factory(nil), &Environment{URL: "/foo"})
	assert.ErrorIs(t, err, ErrNoMountPoint)
}

func TestNormalize(t *testing.T) {
	tests := []struct {
		a, b string
	}{
		{`<div id=app><p>x</p></div>`, `<div id="app"><p>x</p></div>`},
		{"<div>\n  <p>x</p>\n</div>", "<div><p>x</p></div>"},
		{`<div><!-- c --><p>x</p></div>`, `<div><p>x</p></div>`},
		{`<p>a &amp; b</p>`, `<p>a &#38; b</p>`},
	}
	for _, tt := range tests {
		assert.NoError(t, Compare(tt.a, tt.b), "%q vs %q", tt.a, tt.b)
	}

	assert.ErrorIs(t, Compare(`<p>x</p>`, `<p>y</p>`), ErrHydrationMismatch)
}
