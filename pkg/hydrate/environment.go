package hydrate

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"

	"github.com/vango-dev/ssr/pkg/render"
	"github.com/vango-dev/ssr/pkg/store"
)

// MountID is the id of the element the app is mounted on.
const MountID = "app"

// Environment is what a client finds when it boots: the page URL, the
// snapshot the server embedded and the markup of the mount element.
type Environment struct {
	URL string

	// InitialState is the replayed snapshot, nil when the page has none.
	InitialState *store.State

	// Outlet is the server markup of the mount element, empty when the
	// page has no such element.
	Outlet string
}

// FromDocument parses a server-rendered page served at url.
func FromDocument(r io.Reader, url string) (*Environment, error) {
	doc, err := html.Parse(r)
	if err != nil {
		return nil, fmt.Errorf("parse document: %w", err)
	}

	env := &Environment{URL: url}
	var walkErr error
	var walk func(n *html.Node)
	walk = func(n *html.Node) {
		if walkErr != nil {
			return
		}
		if n.Type == html.ElementNode {
			switch {
			case n.DataAtom == atom.Script && env.InitialState == nil && attr(n, "src") == "":
				walkErr = env.readState(n)
			case env.Outlet == "" && attr(n, "id") == MountID:
				var b strings.Builder
				if err := html.Render(&b, n); err != nil {
					walkErr = err
					return
				}
				env.Outlet = b.String()
				return
			}
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(doc)
	if walkErr != nil {
		return nil, walkErr
	}
	return env, nil
}

func (env *Environment) readState(script *html.Node) error {
	var b strings.Builder
	for c := script.FirstChild; c != nil; c = c.NextSibling {
		if c.Type == html.TextNode {
			b.WriteString(c.Data)
		}
	}
	raw, err := render.ParseState(b.String())
	if errors.Is(err, render.ErrNoState) {
		return nil
	}
	if err != nil {
		return err
	}
	var state store.State
	if err := json.Unmarshal(raw, &state); err != nil {
		return fmt.Errorf("decode initial state: %w", err)
	}
	env.InitialState = &state
	return nil
}

func attr(n *html.Node, key string) string {
	for _, a := range n.Attr {
		if a.Namespace == "" && a.Key == key {
			return a.Val
		}
	}
	return ""
}
