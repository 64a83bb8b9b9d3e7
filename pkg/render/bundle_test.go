package render

import (
	"bytes"
	"context"
	"errors"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/a-h/templ"
)

func markup(s string) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		_, err := io.WriteString(w, s)
		return err
	})
}

func TestRenderToString(t *testing.T) {
	entry := func(ctx context.Context, rc *Context) (templ.Component, error) {
		rc.State = map[string]any{"items": map[string]any{}}
		return markup(`<div id="app">` + rc.URL + `</div>`), nil
	}
	r := NewBundleRenderer(entry, Options{})

	html, err := r.RenderToString(context.Background(), &Context{URL: "/foo", Title: "Vue SSR"})
	if err != nil {
		t.Fatalf("RenderToString: %v", err)
	}
	for _, want := range []string{
		"<title>Vue SSR</title>",
		`<div id="app">/foo</div>`,
		`<script>window.__INITIAL_STATE__={"items":{}}</script>`,
	} {
		if !strings.Contains(html, want) {
			t.Errorf("output missing %q:\n%s", want, html)
		}
	}
}

func TestRenderWithoutStateOmitsSnapshot(t *testing.T) {
	r := NewBundleRenderer(func(ctx context.Context, rc *Context) (templ.Component, error) {
		return markup("<p></p>"), nil
	}, Options{})
	html, _ := r.RenderToString(context.Background(), &Context{URL: "/"})
	if strings.Contains(html, StateKey) {
		t.Errorf("unexpected snapshot in %s", html)
	}
}

func TestRenderNotFound(t *testing.T) {
	r := NewBundleRenderer(func(ctx context.Context, rc *Context) (templ.Component, error) {
		return nil, ErrNotFound
	}, Options{})

	html, err := r.RenderToString(context.Background(), &Context{URL: "/nope"})
	if html != "" {
		t.Errorf("html = %q, want empty", html)
	}
	var re *Error
	if !errors.As(err, &re) {
		t.Fatalf("err = %v, want *Error", err)
	}
	if re.StatusCode() != http.StatusNotFound || !errors.Is(err, ErrNotFound) {
		t.Errorf("code = %d, err = %v", re.StatusCode(), err)
	}
	if re.URL != "/nope" {
		t.Errorf("URL = %q", re.URL)
	}
}

func TestRenderEntryError(t *testing.T) {
	boom := errors.New("boom")
	r := NewBundleRenderer(func(ctx context.Context, rc *Context) (templ.Component, error) {
		return nil, boom
	}, Options{})

	_, err := r.RenderToString(context.Background(), &Context{URL: "/foo"})
	if StatusCode(err) != http.StatusInternalServerError || !errors.Is(err, boom) {
		t.Errorf("err = %v (status %d)", err, StatusCode(err))
	}
	var re *Error
	if errors.As(err, &re) && len(re.Stack) == 0 {
		t.Error("500 errors carry a stack")
	}
}

func TestRenderRecoversPanics(t *testing.T) {
	tests := map[string]Entry{
		"entry": func(ctx context.Context, rc *Context) (templ.Component, error) {
			panic("entry exploded")
		},
		"component": func(ctx context.Context, rc *Context) (templ.Component, error) {
			return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
				panic("render exploded")
			}), nil
		},
	}
	for name, entry := range tests {
		t.Run(name, func(t *testing.T) {
			_, err := NewBundleRenderer(entry, Options{}).RenderToString(context.Background(), &Context{URL: "/x"})
			var re *Error
			if !errors.As(err, &re) {
				t.Fatalf("err = %v, want *Error", err)
			}
			var pe *PanicError
			if !errors.As(err, &pe) {
				t.Errorf("err = %v, want wrapped *PanicError", err)
			}
			if re.StatusCode() != http.StatusInternalServerError || len(re.Stack) == 0 {
				t.Errorf("code = %d, stack = %d bytes", re.StatusCode(), len(re.Stack))
			}
		})
	}
}

func TestRenderToWriterWritesNothingOnFailure(t *testing.T) {
	r := NewBundleRenderer(func(ctx context.Context, rc *Context) (templ.Component, error) {
		return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
			io.WriteString(w, "<div>partial")
			return errors.New("halfway")
		}), nil
	}, Options{})

	var buf bytes.Buffer
	if err := r.RenderToWriter(context.Background(), &buf, &Context{URL: "/"}); err == nil {
		t.Fatal("expected error")
	}
	if buf.Len() != 0 {
		t.Errorf("partial output written: %q", buf.String())
	}
}

func TestStatusCode(t *testing.T) {
	tests := []struct {
		err  error
		want int
	}{
		{nil, 200},
		{ErrNotFound, 404},
		{&Error{Code: 404, Err: ErrNotFound}, 404},
		{&Error{Err: errors.New("x")}, 500},
		{errors.New("x"), 500},
	}
	for _, tt := range tests {
		if got := StatusCode(tt.err); got != tt.want {
			t.Errorf("StatusCode(%v) = %d, want %d", tt.err, got, tt.want)
		}
	}
}

func TestLoadBundle(t *testing.T) {
	dir := t.TempDir()
	tmplPath := filepath.Join(dir, "index.template.html")
	manPath := filepath.Join(dir, "ssr-client-manifest.json")
	os.WriteFile(tmplPath, []byte("<head></head><body>"+OutletMarker+"</body>"), 0o644)
	os.WriteFile(manPath, []byte(`{"publicPath":"/dist/","initial":["app.js"]}`), 0o644)

	b, err := LoadBundle(tmplPath, manPath)
	if err != nil {
		t.Fatalf("LoadBundle: %v", err)
	}
	if b.Manifest == nil || b.Manifest.PublicPath != "/dist/" {
		t.Errorf("manifest = %+v", b.Manifest)
	}

	b, err = LoadBundle("", filepath.Join(dir, "missing.json"))
	if err != nil {
		t.Fatalf("missing manifest must not fail: %v", err)
	}
	if b.Manifest != nil || b.Template == nil {
		t.Errorf("bundle = %+v", b)
	}

	if _, err := LoadBundle(filepath.Join(dir, "missing.html"), ""); err == nil {
		t.Error("missing template must fail")
	}
}

func TestReloadableSwapsBundle(t *testing.T) {
	var mu sync.Mutex
	title := "v1"
	broken := false
	load := func() (*Bundle, error) {
		mu.Lock()
		defer mu.Unlock()
		if broken {
			return nil, errors.New("bad template")
		}
		return &Bundle{Template: MustParseTemplate("<h1>" + title + "</h1>" + OutletMarker)}, nil
	}
	entry := func(ctx context.Context, rc *Context) (templ.Component, error) {
		return markup("body"), nil
	}

	r, err := NewReloadable(entry, Options{}, load)
	if err != nil {
		t.Fatal(err)
	}
	render := func() string {
		s, err := r.RenderToString(context.Background(), &Context{URL: "/"})
		if err != nil {
			t.Fatal(err)
		}
		return s
	}
	if got := render(); got != "<h1>v1</h1>body" {
		t.Errorf("got %q", got)
	}

	mu.Lock()
	title = "v2"
	mu.Unlock()
	if err := r.Reload(); err != nil {
		t.Fatal(err)
	}
	if got := render(); got != "<h1>v2</h1>body" {
		t.Errorf("after reload got %q", got)
	}

	mu.Lock()
	broken = true
	mu.Unlock()
	if err := r.Reload(); err == nil {
		t.Error("expected reload error")
	}
	if got := render(); got != "<h1>v2</h1>body" {
		t.Errorf("failed reload must keep the previous bundle, got %q", got)
	}
}
