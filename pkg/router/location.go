package router

import (
	"fmt"
	"net/url"
	"path"
	"strings"
)

// location is a parsed navigation target.
type location struct {
	path     string
	query    url.Values
	rawQuery string
	hash     string
}

// fullPath renders the location the way it appears in the address bar.
func (l location) fullPath() string {
	var b strings.Builder
	b.WriteString(l.path)
	if l.rawQuery != "" {
		b.WriteByte('?')
		b.WriteString(l.rawQuery)
	}
	if l.hash != "" {
		b.WriteString(l.hash)
	}
	return b.String()
}

// parseLocation parses a request URI or absolute URL. The path is
// canonicalized: repeated slashes collapse, dot segments resolve and the
// trailing slash is dropped.
func parseLocation(raw string) (location, error) {
	if raw == "" {
		raw = "/"
	}
	u, err := url.Parse(raw)
	if err != nil {
		return location{}, fmt.Errorf("%w: %v", ErrInvalidLocation, err)
	}

	p := u.Path
	if strings.ContainsAny(p, "\\\x00") {
		return location{}, fmt.Errorf("%w: %q", ErrInvalidLocation, raw)
	}
	if !strings.HasPrefix(p, "/") {
		p = "/" + p
	}
	p = path.Clean(p)

	loc := location{
		path:     p,
		query:    u.Query(),
		rawQuery: u.RawQuery,
	}
	if u.Fragment != "" {
		loc.hash = "#" + u.Fragment
	}
	return loc, nil
}
