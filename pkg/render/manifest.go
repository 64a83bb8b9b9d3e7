package render

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path"
	"strings"
)

// ClientManifest describes the client build: the public path the assets are
// served under, every emitted file, the files needed by the initial chunk and
// the lazily loaded chunks.
type ClientManifest struct {
	PublicPath string   `json:"publicPath"`
	All        []string `json:"all"`
	Initial    []string `json:"initial"`
	Async      []string `json:"async"`
}

// ParseManifest decodes a client manifest.
func ParseManifest(r io.Reader) (*ClientManifest, error) {
	var m ClientManifest
	if err := json.NewDecoder(r).Decode(&m); err != nil {
		return nil, fmt.Errorf("decode client manifest: %w", err)
	}
	return &m, nil
}

// LoadManifest reads a client manifest from disk.
func LoadManifest(filename string) (*ClientManifest, error) {
	f, err := os.Open(filename)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return ParseManifest(f)
}

// asset resolves a manifest file against the public path.
func (m *ClientManifest) asset(file string) string {
	if m.PublicPath == "" {
		return "/" + strings.TrimPrefix(file, "/")
	}
	return strings.TrimSuffix(m.PublicPath, "/") + "/" + strings.TrimPrefix(file, "/")
}

// ResourceHints returns the head links for the manifest: preloads and
// stylesheets for the initial files, prefetches for async chunks.
func (m *ClientManifest) ResourceHints() []LinkTag {
	if m == nil {
		return nil
	}
	var links []LinkTag
	for _, f := range m.Initial {
		switch path.Ext(f) {
		case ".js":
			links = append(links, LinkTag{Rel: "preload", Href: m.asset(f), As: "script"})
		case ".css":
			links = append(links, LinkTag{Rel: "stylesheet", Href: m.asset(f)})
		}
	}
	for _, f := range m.Async {
		if path.Ext(f) == ".js" {
			links = append(links, LinkTag{Rel: "prefetch", Href: m.asset(f), As: "script"})
		}
	}
	return links
}

// Scripts returns the script tags of the initial chunk, in manifest order.
func (m *ClientManifest) Scripts() []ScriptTag {
	if m == nil {
		return nil
	}
	var scripts []ScriptTag
	for _, f := range m.Initial {
		if path.Ext(f) == ".js" {
			scripts = append(scripts, ScriptTag{Src: m.asset(f), Defer: true})
		}
	}
	return scripts
}

// LinkTag represents a link element in the document head.
type LinkTag struct {
	Rel  string // rel attribute
	Href string // href attribute
	As   string // as attribute (preload destination)
}

// ScriptTag represents a script element.
type ScriptTag struct {
	Src    string // src attribute
	Defer  bool   // defer attribute
	Module bool   // type="module"
	Inline string // inline script content, written unescaped
}

func (l LinkTag) writeTo(b *strings.Builder) {
	b.WriteString(`<link rel="`)
	b.WriteString(escapeAttr(l.Rel))
	b.WriteString(`" href="`)
	b.WriteString(escapeAttr(l.Href))
	b.WriteByte('"')
	if l.As != "" {
		b.WriteString(` as="`)
		b.WriteString(escapeAttr(l.As))
		b.WriteByte('"')
	}
	b.WriteByte('>')
}

func (s ScriptTag) writeTo(b *strings.Builder) {
	b.WriteString("<script")
	if s.Src != "" {
		b.WriteString(` src="`)
		b.WriteString(escapeAttr(s.Src))
		b.WriteByte('"')
	}
	if s.Module {
		b.WriteString(` type="module"`)
	}
	if s.Defer {
		b.WriteString(" defer")
	}
	b.WriteByte('>')
	b.WriteString(s.Inline)
	b.WriteString("</script>")
}
