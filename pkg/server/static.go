package server

import (
	"net/http"
	"path"
	"path/filepath"
	"strings"
)

// static serves files from the assets directory.
type static struct {
	config StaticConfig
	fs     http.FileSystem
}

func newStatic(config StaticConfig) *static {
	if config.Dir == "" {
		return nil
	}
	return &static{config: config, fs: http.Dir(config.Dir)}
}

// relPath returns a sanitized relative path for a static file request.
// It rejects traversal and absolute-path tricks so static serving cannot
// escape the configured directory.
func (s *static) relPath(urlPath string) (string, bool) {
	rel, ok := s.stripPrefix(urlPath)
	if !ok || rel == "" {
		return "", false
	}

	// NUL can appear via %00; backslashes are platform-dependent separators.
	if strings.ContainsAny(rel, "\x00\\") {
		return "", false
	}

	// After prefix stripping, a leading "/" is an absolute-path attempt
	// (e.g. "/static//etc/passwd" => "/etc/passwd").
	if strings.HasPrefix(rel, "/") {
		return "", false
	}

	// Reject dot-segments before cleaning so traversal attempts are not
	// cleaned away into a different path.
	for _, seg := range strings.Split(rel, "/") {
		if seg == "." || seg == ".." {
			return "", false
		}
	}

	clean := path.Clean(rel)
	if clean == "." || strings.HasPrefix(clean, "../") {
		return "", false
	}

	osPath := filepath.FromSlash(clean)
	if filepath.IsAbs(osPath) || filepath.VolumeName(osPath) != "" {
		return "", false
	}
	return clean, true
}

func (s *static) stripPrefix(urlPath string) (string, bool) {
	prefix := s.config.Prefix
	if !strings.HasSuffix(prefix, "/") {
		prefix += "/"
	}
	if !strings.HasPrefix(urlPath, prefix) {
		return "", false
	}
	return strings.TrimPrefix(urlPath, prefix), true
}

// serve writes the file named by r if it exists and reports whether it did.
// Misses and directories are left to the caller.
func (s *static) serve(w http.ResponseWriter, r *http.Request) bool {
	if s == nil {
		return false
	}
	rel, ok := s.relPath(r.URL.Path)
	if !ok {
		return false
	}

	f, err := s.fs.Open(rel)
	if err != nil {
		return false
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil || info.IsDir() {
		return false
	}

	s.applyCacheHeaders(w, rel)
	for key, value := range s.config.Headers {
		w.Header().Set(key, value)
	}
	http.ServeContent(w, r, rel, info.ModTime(), f)
	return true
}

func (s *static) applyCacheHeaders(w http.ResponseWriter, filePath string) {
	switch s.config.CacheControl {
	case CacheControlNone:
		w.Header().Set("Cache-Control", "no-store, no-cache, must-revalidate")
	case CacheControlProduction:
		if isFingerprinted(filePath) {
			w.Header().Set("Cache-Control", "public, max-age=31536000, immutable")
		} else {
			w.Header().Set("Cache-Control", "public, max-age=3600, must-revalidate")
		}
	}
}

// isFingerprinted reports whether the file name carries a content hash of
// at least 8 hex digits before its extension, e.g. "app.a1b2c3d4.js".
func isFingerprinted(filePath string) bool {
	parts := strings.Split(path.Base(filePath), ".")
	if len(parts) < 3 {
		return false
	}
	hash := parts[len(parts)-2]
	if len(hash) < 8 {
		return false
	}
	for _, c := range hash {
		if !((c >= '0' && c <= '9') || (c >= 'a' && c <= 'f') || (c >= 'A' && c <= 'F')) {
			return false
		}
	}
	return true
}
