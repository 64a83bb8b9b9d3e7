package render

import (
	"errors"
	"fmt"
	"io"
	"os"
	"regexp"
	"strings"
)

// OutletMarker is replaced by the app markup.
const OutletMarker = "<!--ssr-outlet-->"

// DefaultTemplate is the page used when no template file is configured.
const DefaultTemplate = `<!DOCTYPE html>
<html lang="en">
  <head>
    <meta charset="utf-8">
    <title>{{ title }}</title>
  </head>
  <body>
    ` + OutletMarker + `
  </body>
</html>
`

// ErrNoOutlet is returned for templates without an outlet marker.
var ErrNoOutlet = errors.New("render: template has no " + OutletMarker + " marker")

var titlePattern = regexp.MustCompile(`\{\{\s*title\s*\}\}`)

// Template is a parsed page template, split at the points where the
// renderer injects content.
type Template struct {
	beforeHead string // up to </head>
	afterHead  string // </head> up to the outlet
	beforeBody string // outlet up to </body>
	afterBody  string // </body> to the end
}

// ParseTemplate parses src. The outlet marker is required; </head> and
// </body> are optional, missing ones move the injection point next to the
// outlet.
func ParseTemplate(src string) (*Template, error) {
	head, tail, ok := strings.Cut(src, OutletMarker)
	if !ok {
		return nil, ErrNoOutlet
	}
	t := &Template{}
	if i := strings.LastIndex(head, "</head>"); i >= 0 {
		t.beforeHead, t.afterHead = head[:i], head[i:]
	} else {
		t.beforeHead = head
	}
	if i := strings.Index(tail, "</body>"); i >= 0 {
		t.beforeBody, t.afterBody = tail[:i], tail[i:]
	} else {
		t.beforeBody = tail
	}
	return t, nil
}

// MustParseTemplate is like ParseTemplate but panics on error.
func MustParseTemplate(src string) *Template {
	t, err := ParseTemplate(src)
	if err != nil {
		panic(err)
	}
	return t
}

// LoadTemplate reads and parses a template file.
func LoadTemplate(filename string) (*Template, error) {
	data, err := os.ReadFile(filename)
	if err != nil {
		return nil, err
	}
	t, err := ParseTemplate(string(data))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", filename, err)
	}
	return t, nil
}

// Page is what one render contributes to the template.
type Page struct {
	Title    string
	Body     string
	State    string // serialized state expression, empty for none
	Manifest *ClientManifest
	Scripts  []ScriptTag // extra scripts appended after the client scripts
}

// Execute writes the page. The title is HTML-escaped and the body is
// written as is.
func (t *Template) Execute(w io.Writer, p Page) error {
	title := escapeHTML(p.Title)
	interp := func(s string) string {
		return titlePattern.ReplaceAllLiteralString(s, title)
	}

	var b strings.Builder
	b.WriteString(interp(t.beforeHead))
	for _, link := range p.Manifest.ResourceHints() {
		link.writeTo(&b)
	}
	b.WriteString(interp(t.afterHead))

	b.WriteString(p.Body)

	b.WriteString(interp(t.beforeBody))
	if p.State != "" {
		ScriptTag{Inline: p.State}.writeTo(&b)
	}
	for _, s := range p.Manifest.Scripts() {
		s.writeTo(&b)
	}
	for _, s := range p.Scripts {
		s.writeTo(&b)
	}
	b.WriteString(interp(t.afterBody))

	_, err := io.WriteString(w, b.String())
	return err
}

var (
	htmlEscaper = strings.NewReplacer(
		"&", "&amp;",
		"<", "&lt;",
		">", "&gt;",
		`"`, "&quot;",
		"'", "&#39;",
	)
	attrEscaper = strings.NewReplacer(
		"&", "&amp;",
		"<", "&lt;",
		">", "&gt;",
		`"`, "&quot;",
		"'", "&#39;",
		"\n", "&#10;",
		"\r", "&#13;",
		"\t", "&#9;",
	)
)

// escapeHTML escapes text for inclusion in element content.
func escapeHTML(s string) string { return htmlEscaper.Replace(s) }

// escapeAttr escapes text for inclusion in a quoted attribute value.
func escapeAttr(s string) string { return attrEscaper.Replace(s) }
