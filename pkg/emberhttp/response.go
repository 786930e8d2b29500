package emberhttp

import (
	"fmt"
	"html"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/yourusername/emberhttp/pkg/embercond"
	"github.com/yourusername/emberhttp/pkg/emberio"
)

// responseState is the Response lifecycle per spec.md §3: headers may be
// mutated only in stateNothingSent; sendHeaders is a one-shot transition
// into stateHeadersSent; Close transitions into stateClosed.
type responseState int

const (
	stateNothingSent responseState = iota
	stateHeadersSent
	stateClosed
)

// Response is created per transaction, paired with its Request before the
// handler runs. The teacher's ResponseWriter buffers a status code and a
// fixed-array Header, writing eagerly on first Write; this Response
// instead defers every header decision (framing, compression, Date,
// ETag) to an explicit sendHeaders call per spec.md §4.4, since the
// framing choice depends on the full set of response headers the handler
// has set, not just the first byte written.
type Response struct {
	sink    io.Writer
	request *Request

	headers     *Headers
	state       responseState
	discardBody bool
	forceClose  bool

	statusCode int
	body       bodyWriteCloser
}

// NewResponse constructs a Response writing to sink, paired with req.
func NewResponse(sink io.Writer, req *Request) *Response {
	return &Response{
		sink:       sink,
		request:    req,
		headers:    NewHeaders(),
		statusCode: 200,
	}
}

// Headers returns the mutable header collection. Valid only while State
// is stateNothingSent; callers must not retain it across sendHeaders.
func (r *Response) Headers() *Headers { return r.headers }

// State reports the current lifecycle state.
func (r *Response) State() responseState { return r.state }

// SetDiscardBody marks the body stream as discarded, used for HEAD
// requests synthesized from a GET handler.
func (r *Response) SetDiscardBody(discard bool) { r.discardBody = discard }

// SetConnectionClose forces a Connection: close response regardless of
// the request's own framing, used by the transaction engine on parse
// errors and unrecoverable handler failures.
func (r *Response) SetConnectionClose() { r.forceClose = true }

// ShouldClose reports whether this transaction must close the connection
// once the response is flushed: either side asked for it, or the
// request's version is not HTTP/1.1.
func (r *Response) ShouldClose() bool {
	if r.forceClose {
		return true
	}
	if r.request == nil {
		return true
	}
	if r.request.Version != "HTTP/1.1" {
		return true
	}
	if conn, ok := r.request.Headers.Get("Connection"); ok && containsToken(conn, "close") {
		return true
	}
	if conn, ok := r.headers.Get("Connection"); ok && containsToken(conn, "close") {
		return true
	}
	return false
}

// sendHeaders implements the header-sending rule and framing selection
// of spec.md §4.4. A status of 200 is rewritten to 206 when rng is
// non-nil; other statuses are sent as given. length
// < 0 means unknown length. Calling sendHeaders a second time returns
// ErrHeadersAlreadySent.
func (r *Response) sendHeaders(status int, length int64, lastModified time.Time, etag, contentType string, rng *embercond.Range) error {
	if r.state != stateNothingSent {
		return ErrHeadersAlreadySent
	}
	r.state = stateHeadersSent

	if rng != nil && status == 200 {
		status = 206
	}
	r.statusCode = status

	if rng != nil {
		if !r.headers.Contains("Content-Range") {
			total := "*"
			if length >= 0 {
				total = strconv.FormatInt(length, 10)
			}
			r.headers.Add("Content-Range", fmt.Sprintf("bytes %d-%d/%s", rng.Start, rng.End, total))
		}
	}
	if status != 304 && !r.headers.Contains("Content-Type") {
		if contentType == "" {
			contentType = "application/octet-stream"
		}
		r.headers.Add("Content-Type", contentType)
	}
	if !r.headers.Contains("Vary") {
		r.headers.Add("Vary", "Accept-Encoding")
	}
	if !r.headers.Contains("Last-Modified") && !lastModified.IsZero() {
		lm := lastModified
		if now := time.Now(); lm.After(now) {
			lm = now
		}
		r.headers.Add("Last-Modified", FormatDate(lm))
	}
	if !r.headers.Contains("ETag") && etag != "" {
		r.headers.Add("ETag", etag)
	}
	if r.ShouldClose() && !r.headers.Contains("Connection") {
		r.headers.Add("Connection", "close")
	}

	if status != 304 {
		effectiveLength := length
		if rng != nil {
			effectiveLength = rng.Length()
		}
		r.selectFraming(effectiveLength, contentType)
	}

	if !r.headers.Contains("Date") {
		r.headers.Add("Date", FormatDate(time.Now()))
	}
	if !r.headers.Contains("Server") {
		r.headers.Add("Server", ServerIdentity)
	}

	var sb strings.Builder
	sb.WriteString(StatusLine(status))
	sb.WriteString("\r\n")
	r.headers.WriteTo(&sb)
	_, err := io.WriteString(r.sink, sb.String())
	return err
}

// SendHeaders exposes sendHeaders to other packages in this module (the
// file-serving helper in package emberfile needs the exact
// conditional/range-aware header-sending rule of spec.md §4.4, not the
// simplified Send convenience method). Everything outside this module
// should prefer Send, SendError, or Redirect.
func (r *Response) SendHeaders(status int, length int64, lastModified time.Time, etag, contentType string, rng *embercond.Range) error {
	return r.sendHeaders(status, length, lastModified, etag, contentType, rng)
}

// selectFraming implements spec.md §4.4's "Framing selection", run only
// when neither Content-Length nor Transfer-Encoding is already present.
func (r *Response) selectFraming(length int64, contentType string) {
	if r.headers.Contains("Content-Length") || r.headers.Contains("Transfer-Encoding") {
		return
	}

	isHTTP11 := r.request != nil && r.request.Version == "HTTP/1.1"
	if !isHTTP11 {
		if length >= 0 {
			r.headers.Add("Content-Length", strconv.FormatInt(length, 10))
		}
		return
	}

	if isCompressible(contentType) && (length < 0 || length > 300) {
		acceptEncoding, _ := r.request.Headers.Get("Accept-Encoding")
		if codec := acceptableCodec(acceptEncoding); codec != "" {
			r.headers.Add("Transfer-Encoding", "chunked")
			r.headers.Add("Content-Encoding", codec)
			return
		}
	}

	if length < 0 {
		r.headers.Add("Transfer-Encoding", "chunked")
		return
	}
	r.headers.Add("Content-Length", strconv.FormatInt(length, 10))
}

// Body lazily constructs the encoder chain on first call, based on the
// headers already sent by sendHeaders, and returns it for the caller to
// write the response payload into. Returns (nil, nil) when discardBody is
// set; callers must check for a nil return rather than writing to it.
// Body may be called at most once; a second call returns
// ErrBodyAlreadyTaken.
func (r *Response) Body() (io.Writer, error) {
	if r.state == stateNothingSent {
		return nil, fmt.Errorf("emberhttp: Body called before sendHeaders")
	}
	if r.body != nil {
		return nil, ErrBodyAlreadyTaken
	}
	if r.discardBody {
		r.body = noCloseWriter{io.Discard}
		return nil, nil
	}
	r.body = buildEncoderChain(r.sink, r.headers)
	return r.body, nil
}

// Close closes the outermost encoder in the chain (cascading through to
// the innermost no-close layer) and flushes the underlying sink, if it
// supports flushing. Closing the response never closes the connection
// stream itself.
func (r *Response) Close() error {
	if r.state == stateClosed {
		return nil
	}
	r.state = stateClosed

	var err error
	if r.body != nil {
		err = r.body.Close()
	}
	if flusher, ok := r.sink.(interface{ Flush() error }); ok {
		if ferr := flusher.Flush(); err == nil {
			err = ferr
		}
	}
	return err
}

// Send implements the `send` convenience method: sets a default
// Content-Type and a weak ETag if not already set, then writes text as a
// complete UTF-8 response body.
func (r *Response) Send(status int, text string) error {
	if !r.headers.Contains("Content-Type") {
		r.headers.Add("Content-Type", "text/html;charset=utf-8")
	}
	if !r.headers.Contains("ETag") {
		r.headers.Add("ETag", weakETagFor(text))
	}
	payload := []byte(text)
	if err := r.sendHeaders(status, int64(len(payload)), time.Time{}, "", "", nil); err != nil {
		return err
	}
	body, err := r.Body()
	if err != nil {
		return err
	}
	if body != nil {
		if _, err := body.Write(payload); err != nil {
			return err
		}
	}
	return nil
}

// SendError composes a minimal HTML error page with msg HTML-escaped.
func (r *Response) SendError(status int, msg string) error {
	page := fmt.Sprintf(
		"<html><head><title>%d %s</title></head><body><h1>%d %s</h1><p>%s</p></body></html>",
		status, ReasonPhrase(status), status, ReasonPhrase(status), html.EscapeString(msg),
	)
	return r.Send(status, page)
}

// Redirect emits a 301 (permanent) or 302 (temporary) redirect with a
// Location header; url is expected to already be in ASCII form. A short
// body is included since some clients expect one on a redirect.
func (r *Response) Redirect(url string, permanent bool) error {
	status := 302
	if permanent {
		status = 301
	}
	r.headers.Add("Location", url)
	body := fmt.Sprintf("<html><body>Redirecting to <a href=\"%s\">%s</a></body></html>", html.EscapeString(url), html.EscapeString(url))
	return r.Send(status, body)
}

// SendBody streams length bytes (or, if rng is set, rng.Length() bytes
// starting at rng.Start) from src into the response body, per spec.md
// §4.4's sendBody. Callers must have already called sendHeaders with a
// matching length/range.
func (r *Response) SendBody(src io.Reader, length int64, rng *embercond.Range) (int64, error) {
	body, err := r.Body()
	if err != nil {
		return 0, err
	}
	if body == nil {
		return 0, nil
	}

	if rng != nil {
		if rng.Start > 0 {
			if _, err := io.CopyN(io.Discard, src, rng.Start); err != nil {
				return 0, err
			}
		}
		return emberio.Transfer(body, src, rng.Length())
	}
	return emberio.Transfer(body, src, length)
}

func weakETagFor(text string) string {
	var h uint64 = 1469598103934665603
	for i := 0; i < len(text); i++ {
		h ^= uint64(text[i])
		h *= 1099511628211
	}
	return fmt.Sprintf(`W/"%x"`, h)
}
