package render

import (
	"bytes"
	"context"
	"errors"
	"io"
	"io/fs"
	"log/slog"
	"net/http"
	"runtime/debug"
	"sync/atomic"
	"time"

	"github.com/a-h/templ"
)

// Options configures a BundleRenderer.
type Options struct {
	// Template is the page template. Defaults to DefaultTemplate.
	Template *Template

	// Manifest is the client build manifest. Nil injects no client assets.
	Manifest *ClientManifest

	// Scripts are extra scripts appended to every page, e.g. the dev
	// reload client.
	Scripts []ScriptTag

	// Logger receives render diagnostics. Defaults to slog.Default().
	Logger *slog.Logger
}

// BundleRenderer renders requests through an Entry.
type BundleRenderer struct {
	entry  Entry
	opts   Options
	logger *slog.Logger
}

// NewBundleRenderer creates a renderer for entry.
func NewBundleRenderer(entry Entry, opts Options) *BundleRenderer {
	if opts.Template == nil {
		opts.Template = MustParseTemplate(DefaultTemplate)
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &BundleRenderer{entry: entry, opts: opts, logger: logger}
}

// RenderToString renders rc to a complete page. On failure the returned
// error is a *Error and no markup is returned.
func (r *BundleRenderer) RenderToString(ctx context.Context, rc *Context) (string, error) {
	var buf bytes.Buffer
	if err := r.render(ctx, &buf, rc); err != nil {
		return "", err
	}
	return buf.String(), nil
}

// RenderToWriter renders rc into w. Nothing is written unless the whole page
// rendered successfully.
func (r *BundleRenderer) RenderToWriter(ctx context.Context, w io.Writer, rc *Context) error {
	var buf bytes.Buffer
	if err := r.render(ctx, &buf, rc); err != nil {
		return err
	}
	_, err := buf.WriteTo(w)
	return err
}

func (r *BundleRenderer) render(ctx context.Context, buf *bytes.Buffer, rc *Context) (err error) {
	start := time.Now()
	defer func() {
		if p := recover(); p != nil {
			err = &Error{
				Code:  http.StatusInternalServerError,
				URL:   rc.URL,
				Err:   &PanicError{Value: p},
				Stack: debug.Stack(),
			}
		}
	}()

	root, err := r.entry(ctx, rc)
	if err != nil {
		return wrap(rc.URL, err)
	}
	if root == nil {
		root = templ.NopComponent
	}

	var body bytes.Buffer
	if err := root.Render(ctx, &body); err != nil {
		return wrap(rc.URL, err)
	}

	page := Page{
		Title:    rc.Title,
		Body:     body.String(),
		Manifest: r.opts.Manifest,
		Scripts:  r.opts.Scripts,
	}
	if rc.State != nil {
		if page.State, err = SerializeState(rc.State); err != nil {
			return wrap(rc.URL, err)
		}
	}
	if err := r.opts.Template.Execute(buf, page); err != nil {
		return wrap(rc.URL, err)
	}

	r.logger.Debug("page rendered", "url", rc.URL, "bytes", buf.Len(), "duration", time.Since(start))
	return nil
}

func wrap(url string, err error) error {
	var re *Error
	if errors.As(err, &re) {
		return re
	}
	if errors.Is(err, ErrNotFound) {
		return &Error{Code: http.StatusNotFound, URL: url, Err: err}
	}
	return &Error{Code: http.StatusInternalServerError, URL: url, Err: err, Stack: debug.Stack()}
}

// Bundle is the loaded build output a renderer depends on.
type Bundle struct {
	Template *Template
	Manifest *ClientManifest
}

// LoadBundle loads the page template and client manifest. An empty template
// path selects DefaultTemplate. A missing manifest file is not an error: the
// pages are then rendered without client assets.
func LoadBundle(templatePath, manifestPath string) (*Bundle, error) {
	b := &Bundle{}
	if templatePath == "" {
		b.Template = MustParseTemplate(DefaultTemplate)
	} else {
		t, err := LoadTemplate(templatePath)
		if err != nil {
			return nil, err
		}
		b.Template = t
	}
	if manifestPath != "" {
		m, err := LoadManifest(manifestPath)
		switch {
		case errors.Is(err, fs.ErrNotExist):
		case err != nil:
			return nil, err
		default:
			b.Manifest = m
		}
	}
	return b, nil
}

// Reloadable is a Renderer whose bundle can be swapped while serving.
// In-flight renders finish with the bundle they started with.
type Reloadable struct {
	entry Entry
	opts  Options
	load  func() (*Bundle, error)
	cur   atomic.Pointer[BundleRenderer]
}

// NewReloadable loads the first bundle and returns the renderer. opts
// supplies everything except the template and manifest.
func NewReloadable(entry Entry, opts Options, load func() (*Bundle, error)) (*Reloadable, error) {
	r := &Reloadable{entry: entry, opts: opts, load: load}
	if err := r.Reload(); err != nil {
		return nil, err
	}
	return r, nil
}

// Reload loads the bundle again. On error the previous bundle stays active.
func (r *Reloadable) Reload() error {
	b, err := r.load()
	if err != nil {
		return err
	}
	opts := r.opts
	opts.Template = b.Template
	opts.Manifest = b.Manifest
	r.cur.Store(NewBundleRenderer(r.entry, opts))
	return nil
}

// RenderToString renders with the current bundle.
func (r *Reloadable) RenderToString(ctx context.Context, rc *Context) (string, error) {
	return r.cur.Load().RenderToString(ctx, rc)
}
