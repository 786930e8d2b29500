// Package embermime implements the MIME-type registry spec.md §6
// describes as an external collaborator: a string→string extension
// lookup, seeded with a built-in default table and extensible from
// /etc/mime.types-style files (lines of `type ext1 ext2 ...`, '#'
// comments). Neither the teacher nor any other pack repo carries a MIME
// table, so this package has no direct code ancestor; it follows the
// teacher's small-constructor-plus-methods shape.
package embermime

import (
	"bufio"
	"io"
	"strings"
	"sync"
)

// Registry is a concurrency-safe extension → MIME type lookup. The zero
// value is not usable; construct with New or NewDefault.
type Registry struct {
	mu   sync.RWMutex
	byExt map[string]string
}

// New returns an empty Registry.
func New() *Registry {
	return &Registry{byExt: make(map[string]string)}
}

// NewDefault returns a Registry pre-seeded with the common web extension
// set.
func NewDefault() *Registry {
	r := New()
	for ext, mediaType := range defaultTypes {
		r.byExt[ext] = mediaType
	}
	return r
}

// Lookup returns the MIME type registered for ext (with or without a
// leading '.'), or "", false if none is registered. Comparison is
// case-insensitive.
func (r *Registry) Lookup(ext string) (string, bool) {
	ext = normalizeExt(ext)
	r.mu.RLock()
	defer r.mu.RUnlock()
	v, ok := r.byExt[ext]
	return v, ok
}

// LookupOrDefault returns the registered type for ext, or
// "application/octet-stream" if none is registered. This is the fallback
// spec.md §4.8 names for content-type inference from a file suffix.
func (r *Registry) LookupOrDefault(ext string) string {
	if v, ok := r.Lookup(ext); ok {
		return v
	}
	return "application/octet-stream"
}

// Register adds or replaces the type for ext. Safe for concurrent use
// with Lookup. Per spec.md §5 the MIME map is effectively append-only
// and may be updated lock-free in spirit, though this implementation
// still takes a write lock for correctness under real concurrent writes.
func (r *Registry) Register(ext, mediaType string) {
	ext = normalizeExt(ext)
	r.mu.Lock()
	defer r.mu.Unlock()
	r.byExt[ext] = mediaType
}

// LoadMimeTypes seeds the registry from a reader in the mime.types
// format: each non-comment, non-blank line is `type ext1 ext2 ...`;
// lines beginning with '#' are comments. Later entries for the same
// extension replace earlier ones.
func (r *Registry) LoadMimeTypes(src io.Reader) error {
	scanner := bufio.NewScanner(src)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		fields := strings.Fields(line)
		if len(fields) < 2 {
			continue
		}
		mediaType := fields[0]
		for _, ext := range fields[1:] {
			r.Register(ext, mediaType)
		}
	}
	return scanner.Err()
}

func normalizeExt(ext string) string {
	ext = strings.ToLower(strings.TrimPrefix(ext, "."))
	return ext
}

var defaultTypes = map[string]string{
	"html": "text/html",
	"htm":  "text/html",
	"txt":  "text/plain",
	"css":  "text/css",
	"csv":  "text/csv",
	"js":   "application/javascript",
	"mjs":  "application/javascript",
	"json": "application/json",
	"xml":  "application/xml",
	"png":  "image/png",
	"jpg":  "image/jpeg",
	"jpeg": "image/jpeg",
	"gif":  "image/gif",
	"svg":  "image/svg+xml",
	"ico":  "image/x-icon",
	"webp": "image/webp",
	"pdf":  "application/pdf",
	"zip":  "application/zip",
	"gz":   "application/gzip",
	"tar":  "application/x-tar",
	"mp4":  "video/mp4",
	"webm": "video/webm",
	"mp3":  "audio/mpeg",
	"wasm": "application/wasm",
	"woff": "font/woff",
	"woff2": "font/woff2",
	"ttf":  "font/ttf",
}
