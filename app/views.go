package app

import (
	"context"
	"fmt"
	"io"

	"github.com/a-h/templ"

	"github.com/vango-dev/ssr/pkg/view"
)

var navLinks = []struct{ href, label string }{
	{"/item/1", "Item 1"},
	{"/item/2", "Item 2"},
	{"/foo", "Foo"},
	{"/bar", "Bar"},
	{"/baz", "Baz"},
}

// Root renders the navigation and the outlet inside the mount element.
var Root = view.New("App", func(rc *view.RenderContext) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		if _, err := io.WriteString(w, `<div id="app"><nav>`); err != nil {
			return err
		}
		for _, l := range navLinks {
			if _, err := fmt.Fprintf(w, `<a href="%s">%s</a>`, l.href, templ.EscapeString(l.label)); err != nil {
				return err
			}
		}
		if _, err := io.WriteString(w, `</nav><main>`); err != nil {
			return err
		}
		if err := rc.Outlet().Render(ctx, w); err != nil {
			return err
		}
		_, err := io.WriteString(w, `</main></div>`)
		return err
	})
})

// Item shows one item. Its prefetch loads the item named by the id
// parameter into the store.
var Item = view.New("Item", renderItem).WithPrefetch(func(ctx context.Context, pc view.PrefetchContext) error {
	return pc.Store.FetchItem(ctx, pc.Route.Param("id"))
})

func renderItem(rc *view.RenderContext) templ.Component {
	id := rc.Route.Param("id")
	item, ok := rc.Item(id)
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		if !ok {
			_, err := fmt.Fprintf(w, `<div class="item">Loading item %s</div>`, templ.EscapeString(id))
			return err
		}
		title, _ := item["title"].(string)
		by, _ := item["by"].(string)

		if _, err := io.WriteString(w, `<div class="item">`); err != nil {
			return err
		}
		if u, _ := item["url"].(string); u != "" {
			_, err := fmt.Fprintf(w, `<h1><a href="%s">%s</a></h1>`,
				templ.EscapeString(string(templ.URL(u))), templ.EscapeString(title))
			if err != nil {
				return err
			}
		} else if _, err := fmt.Fprintf(w, `<h1>%s</h1>`, templ.EscapeString(title)); err != nil {
			return err
		}
		if by != "" {
			if _, err := fmt.Fprintf(w, `<p class="meta">by %s</p>`, templ.EscapeString(by)); err != nil {
				return err
			}
		}
		_, err := io.WriteString(w, `</div>`)
		return err
	})
}

func page(name, text string) *view.Component {
	return view.New(name, func(rc *view.RenderContext) templ.Component {
		return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
			_, err := fmt.Fprintf(w, `<div class="%s">%s</div>`, name, templ.EscapeString(text))
			return err
		})
	})
}

var (
	Foo = page("foo", "foo")
	Bar = page("bar", "bar")

	// Baz is resolved by the router's lazy loader.
	Baz = page("baz", "baz")
)
