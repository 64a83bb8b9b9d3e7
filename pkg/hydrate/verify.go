package hydrate

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"

	ssr "github.com/vango-dev/ssr"
)

var (
	// ErrHydrationMismatch reports that the client markup differs from the
	// server markup.
	ErrHydrationMismatch = errors.New("hydrate: client markup does not match server markup")

	// ErrNoMountPoint reports a page without a mount element.
	ErrNoMountPoint = errors.New("hydrate: document has no #" + MountID + " element")
)

// MismatchError carries both normalized markups of a failed Verify.
type MismatchError struct {
	Server string
	Client string
}

func (e *MismatchError) Error() string {
	return fmt.Sprintf("%v: server %q, client %q", ErrHydrationMismatch, e.Server, e.Client)
}

func (e *MismatchError) Unwrap() error { return ErrHydrationMismatch }

// Verify boots a new app of f in env and checks that the markup it mounts
// equals the server markup of the mount element.
func Verify(ctx context.Context, f *ssr.Factory, env *Environment, opts ...Option) (*Controller, error) {
	if env.Outlet == "" {
		return nil, ErrNoMountPoint
	}
	app, err := f.CreateApp(nil)
	if err != nil {
		return nil, err
	}

	c := New(app, env, MounterFunc(func(ctx context.Context, app *ssr.App) error {
		var b strings.Builder
		if err := app.Render().Render(ctx, &b); err != nil {
			return fmt.Errorf("render app: %w", err)
		}
		return Compare(env.Outlet, b.String())
	}), opts...)
	return c, c.Boot(ctx)
}

// Compare reports whether two markups are equal after normalization. The
// result wraps ErrHydrationMismatch when they differ.
func Compare(server, client string) error {
	s, err := Normalize(server)
	if err != nil {
		return err
	}
	c, err := Normalize(client)
	if err != nil {
		return err
	}
	if s != c {
		return &MismatchError{Server: s, Client: c}
	}
	return nil
}

// Normalize parses markup as body content and renders it back. Attribute
// quoting and entity forms are canonicalized. Comments and whitespace-only
// text between elements are dropped.
func Normalize(markup string) (string, error) {
	body := &html.Node{Type: html.ElementNode, Data: "body", DataAtom: atom.Body}
	nodes, err := html.ParseFragment(strings.NewReader(markup), body)
	if err != nil {
		return "", fmt.Errorf("parse markup: %w", err)
	}
	var b strings.Builder
	for _, n := range nodes {
		if isBlank(n) || n.Type == html.CommentNode {
			continue
		}
		trim(n)
		if err := html.Render(&b, n); err != nil {
			return "", err
		}
	}
	return b.String(), nil
}

func trim(n *html.Node) {
	for c := n.FirstChild; c != nil; {
		next := c.NextSibling
		if isBlank(c) || c.Type == html.CommentNode {
			n.RemoveChild(c)
		} else {
			trim(c)
		}
		c = next
	}
}

func isBlank(n *html.Node) bool {
	return n.Type == html.TextNode && strings.TrimSpace(n.Data) == ""
}
