// Package emberfile implements the file-serving helper of spec.md §4.8:
// given a base directory, a context prefix, and a request/response pair,
// it resolves the target file, applies the conditional and range logic
// from embercond, and drives an emberhttp.Response accordingly.
package emberfile

import (
	"net/http"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/yourusername/emberhttp/pkg/embercond"
	"github.com/yourusername/emberhttp/pkg/emberhttp"
	"github.com/yourusername/emberhttp/pkg/emberindex"
	"github.com/yourusername/emberhttp/pkg/embermime"
)

// FileServer applies the static-file algorithm of spec.md §4.8 against
// one base directory.
type FileServer struct {
	// BaseDir is the directory the context prefix is rooted at.
	BaseDir string

	// ContextPrefix is stripped from the request path before resolving
	// against BaseDir.
	ContextPrefix string

	// AllowGeneratedIndex enables directory listings via Index when a
	// directory is requested with a trailing slash.
	AllowGeneratedIndex bool

	// Index renders a directory listing. Defaults to
	// emberindex.HTMLRenderer{} when nil.
	Index emberindex.Renderer

	// Mime resolves a file extension to a content type. Defaults to
	// embermime.NewDefault() when nil.
	Mime *embermime.Registry
}

func (fs *FileServer) renderer() emberindex.Renderer {
	if fs.Index != nil {
		return fs.Index
	}
	return emberindex.HTMLRenderer{}
}

func (fs *FileServer) mime() *embermime.Registry {
	if fs.Mime != nil {
		return fs.Mime
	}
	return embermime.NewDefault()
}

// Serve implements the full algorithm of spec.md §4.8 and satisfies
// emberhttp.Handler. Every branch below sends its own response, so Serve
// always returns emberhttp.Handled(); the Result return is kept only for
// Handler-signature symmetry.
func (fs *FileServer) Serve(req *emberhttp.Request, resp *emberhttp.Response) emberhttp.Result {
	relative := strings.TrimPrefix(req.Path(), fs.ContextPrefix)
	if relative == req.Path() && fs.ContextPrefix != "" {
		relative = strings.TrimPrefix(relative, "/")
	}

	baseAbs, err := filepath.Abs(fs.BaseDir)
	if err != nil {
		_ = resp.SendError(500, "Internal Server Error")
		return emberhttp.Handled()
	}
	target := filepath.Join(baseAbs, filepath.FromSlash(relative))

	info, statErr := os.Stat(target)
	name := filepath.Base(target)
	if statErr != nil || strings.HasPrefix(name, ".") {
		_ = resp.SendError(404, "Not Found")
		return emberhttp.Handled()
	}

	canonical, err := filepath.EvalSymlinks(target)
	if err != nil {
		_ = resp.SendError(404, "Not Found")
		return emberhttp.Handled()
	}
	canonicalBase, err := filepath.EvalSymlinks(baseAbs)
	if err != nil {
		_ = resp.SendError(500, "Internal Server Error")
		return emberhttp.Handled()
	}
	if !withinBase(canonicalBase, canonical) {
		_ = resp.SendError(403, "Forbidden")
		return emberhttp.Handled()
	}

	if info.IsDir() {
		return fs.serveDirectory(req, resp, target, relative)
	}
	if strings.HasSuffix(relative, "/") {
		_ = resp.SendError(404, "Not Found")
		return emberhttp.Handled()
	}

	return fs.serveFile(req, resp, target, info)
}

func withinBase(base, candidate string) bool {
	if candidate == base {
		return true
	}
	return strings.HasPrefix(candidate, base+string(filepath.Separator))
}

func (fs *FileServer) serveDirectory(req *emberhttp.Request, resp *emberhttp.Response, dir, relative string) emberhttp.Result {
	if !strings.HasSuffix(req.Path(), "/") {
		_ = resp.Redirect(req.Path()+"/", true)
		return emberhttp.Handled()
	}
	if !fs.AllowGeneratedIndex {
		_ = resp.SendError(403, "Forbidden")
		return emberhttp.Handled()
	}
	html, err := fs.renderer().Render(dir, req.Path())
	if err != nil {
		_ = resp.SendError(500, "Internal Server Error")
		return emberhttp.Handled()
	}
	_ = resp.Send(200, html)
	return emberhttp.Handled()
}

func (fs *FileServer) serveFile(req *emberhttp.Request, resp *emberhttp.Response, target string, info os.FileInfo) emberhttp.Result {
	lastModified := info.ModTime()
	etag := weakETag(lastModified)
	length := info.Size()
	contentType := fs.mime().LookupOrDefault(filepath.Ext(target))

	rng, hasRange := req.RangeHeader(length)
	if hasRange && length > 0 {
		if ifRangeAllows(req, etag, lastModified) {
			if rng.Unsatisfiable(length) {
				resp.Headers().Add("Content-Range", "bytes */"+strconv.FormatInt(length, 10))
				_ = resp.SendError(416, "Range Not Satisfiable")
				return emberhttp.Handled()
			}
			return fs.sendFull(req, resp, target, info, length, lastModified, etag, contentType, rng)
		}
	}

	status := fs.conditionalStatus(req, lastModified, etag)
	switch status {
	case embercond.StatusNotModified:
		resp.Headers().Add("ETag", etag)
		if err := sendHeadersOnly(resp, 304, lastModified, etag); err != nil {
			return emberhttp.Handled()
		}
		return emberhttp.Handled()
	case embercond.StatusPreconditionFailed:
		_ = resp.SendError(412, "Precondition Failed")
		return emberhttp.Handled()
	}

	return fs.sendFull(req, resp, target, info, length, lastModified, etag, contentType, nil)
}

func (fs *FileServer) sendFull(req *emberhttp.Request, resp *emberhttp.Response, target string, info os.FileInfo, length int64, lastModified time.Time, etag, contentType string, rng *embercond.Range) emberhttp.Result {
	f, err := os.Open(target)
	if err != nil {
		_ = resp.SendError(404, "Not Found")
		return emberhttp.Handled()
	}
	defer f.Close()

	if err := sendHeaders(resp, 200, length, lastModified, etag, contentType, rng); err != nil {
		return emberhttp.Handled()
	}
	_, _ = resp.SendBody(f, length, rng)
	return emberhttp.Handled()
}

func (fs *FileServer) conditionalStatus(req *emberhttp.Request, lastModified time.Time, etag string) embercond.ConditionalStatus {
	ifMatch, _ := req.Headers.Get("If-Match")
	ifNoneMatch, _ := req.Headers.Get("If-None-Match")
	ifModifiedSince, _ := req.Headers.Get("If-Modified-Since")
	ifUnmodifiedSince, _ := req.Headers.Get("If-Unmodified-Since")

	return embercond.Evaluate(embercond.Preconditions{
		Method:            req.Method,
		IfMatch:           ifMatch,
		IfNoneMatch:       ifNoneMatch,
		IfModifiedSince:   ifModifiedSince,
		IfUnmodifiedSince: ifUnmodifiedSince,
	}, embercond.Validators{LastModified: lastModified, ETag: etag})
}

// ifRangeAllows reports whether a Range header should be honored given
// any If-Range validator: missing If-Range always allows it; an ETag
// If-Range must weak-match; a date If-Range must not predate
// lastModified.
func ifRangeAllows(req *emberhttp.Request, etag string, lastModified time.Time) bool {
	ifRange, ok := req.Headers.Get("If-Range")
	if !ok {
		return true
	}
	if strings.HasPrefix(ifRange, `"`) || strings.HasPrefix(ifRange, `W/`) {
		return weakMatch(ifRange, etag)
	}
	if t, err := http.ParseTime(ifRange); err == nil {
		return !lastModified.After(t)
	}
	return false
}

func weakMatch(a, b string) bool {
	return strings.TrimPrefix(a, "W/") == strings.TrimPrefix(b, "W/")
}

func weakETag(t time.Time) string {
	return `W/"` + strconv.FormatInt(t.Unix(), 10) + `"`
}

func sendHeaders(resp *emberhttp.Response, status int, length int64, lastModified time.Time, etag, contentType string, rng *embercond.Range) error {
	return resp.SendHeaders(status, length, lastModified, etag, contentType, rng)
}

func sendHeadersOnly(resp *emberhttp.Response, status int, lastModified time.Time, etag string) error {
	if err := resp.SendHeaders(status, 0, lastModified, etag, "", nil); err != nil {
		return err
	}
	_, err := resp.Body()
	return err
}
