package emberhttp

import (
	"io"
	"net/url"
	"strings"

	"github.com/yourusername/emberhttp/pkg/embercond"
)

// Request is a single HTTP transaction's inbound message: created when the
// transaction engine reads a request line, owned by the engine for the
// lifetime of the transaction, and discarded once the response is closed.
//
// The teacher's http11.Request keeps zero-copy byte slices into a pooled
// buffer for Method/Path/Query, trading request lifetime safety for
// allocation count. That trade does not fit here: Request fields outlive
// the parse step (handlers, dispatch, conditional evaluation, and logging
// all read them after the buffer they were parsed from has moved on), so
// fields are plain strings and the lazy fields are memoized Option-shaped
// cells per spec.md §9 rather than recomputed zero-copy views.
type Request struct {
	// Method is the request method exactly as received, uppercase token.
	Method string

	// Target is the request-target exactly as received, after collapsing
	// consecutive '/' characters but before URI parsing.
	Target string

	// Version is "HTTP/1.1", "HTTP/1.0", or "HTTP/0.9".
	Version string

	// Headers holds the parsed header collection.
	Headers *Headers

	// Body is the request body stream, already wrapped in the framing
	// selected by selectBodyFraming: a LimitedReader over Content-Length,
	// a ChunkedReader, the connection reader itself (until close), or an
	// empty reader.
	Body io.Reader

	// RemoteAddr is the client's network address, as reported by the
	// connection's socket.
	RemoteAddr string

	// Secure reports whether this request arrived over a TLS connection;
	// it feeds the scheme half of the base URL.
	Secure bool

	// LocalPort is the port the connection was accepted on; it feeds the
	// base URL when the Host header carries no explicit port.
	LocalPort int

	uri *url.URL

	baseURLComputed bool
	baseURL         string

	paramsComputed bool
	params         url.Values

	vhost   *VirtualHost
	context *ContextInfo
}

// URI returns the request-target parsed as a URI. Parsing happens once and
// is memoized; a malformed target yields a non-nil zero-value *url.URL with
// an empty Path, never nil, so callers may dereference freely.
func (r *Request) URI() *url.URL {
	if r.uri == nil {
		u, err := url.ParseRequestURI(r.Target)
		if err != nil {
			u = &url.URL{}
		}
		r.uri = u
	}
	return r.uri
}

// Path returns the URI path component, defaulting to "/" for an empty path
// (as after a malformed request-target). A "*" request-target yields "*",
// which dispatch special-cases.
func (r *Request) Path() string {
	p := r.URI().Path
	if p == "" {
		return "/"
	}
	return p
}

// Host returns the effective host name used for virtual-host resolution:
// the URI's host when the request-target was absolute (proxy form), else
// the Host header with any port suffix stripped, else empty.
func (r *Request) Host() string {
	if h := r.URI().Host; h != "" {
		return stripPort(h)
	}
	if h, ok := r.Headers.Get("Host"); ok {
		return stripPort(h)
	}
	return ""
}

func stripPort(hostport string) string {
	if i := strings.LastIndexByte(hostport, ':'); i >= 0 {
		if !strings.Contains(hostport[i:], "]") {
			return hostport[:i]
		}
	}
	return strings.TrimSuffix(strings.TrimPrefix(hostport, "["), "]")
}

// BaseURL returns the scheme+host+port prefix this request was addressed
// to, computed once and memoized. A Host header (or URI host) that fails
// basic validation yields an empty string per spec.md §4.3 step 7.
func (r *Request) BaseURL() string {
	if r.baseURLComputed {
		return r.baseURL
	}
	r.baseURLComputed = true

	host := r.Host()
	if host == "" {
		r.baseURL = ""
		return ""
	}

	scheme := "http"
	if r.Secure {
		scheme = "https"
	}

	var sb strings.Builder
	sb.WriteString(scheme)
	sb.WriteString("://")
	sb.WriteString(host)
	if r.LocalPort != 0 && !isDefaultPort(scheme, r.LocalPort) {
		sb.WriteByte(':')
		sb.WriteString(itoa(r.LocalPort))
	}
	r.baseURL = sb.String()
	if _, err := url.Parse(r.baseURL); err != nil {
		r.baseURL = ""
	}
	return r.baseURL
}

func isDefaultPort(scheme string, port int) bool {
	return (scheme == "http" && port == 80) || (scheme == "https" && port == 443)
}

func itoa(n int) string {
	if n == 0 {
		return "0"
	}
	neg := n < 0
	if neg {
		n = -n
	}
	var buf [20]byte
	i := len(buf)
	for n > 0 {
		i--
		buf[i] = byte('0' + n%10)
		n /= 10
	}
	if neg {
		i--
		buf[i] = '-'
	}
	return string(buf[i:])
}

// Params returns the merged query + (for
// application/x-www-form-urlencoded requests) body parameters, per
// spec.md §4.3 step 6. The body is read at most once, up to 2 MiB; on
// later calls, and on later direct reads of Body after this call, the
// stream is already at EOF. This coupling is intentional and matches the
// source this engine was distilled from: calling Params consumes Body for
// form-encoded requests.
func (r *Request) Params() url.Values {
	if r.paramsComputed {
		return r.params
	}
	r.paramsComputed = true

	values, _ := url.ParseQuery(r.URI().RawQuery)
	if values == nil {
		values = url.Values{}
	}

	if ct, ok := r.Headers.Get("Content-Type"); ok {
		mediaType := ct
		if i := strings.IndexByte(mediaType, ';'); i >= 0 {
			mediaType = mediaType[:i]
		}
		if strings.TrimSpace(mediaType) == "application/x-www-form-urlencoded" && r.Body != nil {
			const maxFormBody = 2 << 20
			limited := io.LimitReader(r.Body, maxFormBody)
			raw, err := io.ReadAll(limited)
			if err == nil {
				if form, err := url.ParseQuery(string(raw)); err == nil {
					for k, vs := range form {
						values[k] = append(values[k], vs...)
					}
				}
			}
		}
	}

	r.params = values
	return r.params
}

// RangeHeader parses the Range request header against a resource of the
// given length, per spec.md §4.7. Only the "bytes=" unit is recognized; any
// other unit, or a header that fails to parse into at least one valid
// spec, yields (nil, false) and the caller serves the full resource. The
// result is not memoized: each call parses the header again.
func (r *Request) RangeHeader(length int64) (*embercond.Range, bool) {
	raw, ok := r.Headers.Get("Range")
	if !ok || !strings.HasPrefix(raw, "bytes=") {
		return nil, false
	}
	spec := strings.TrimPrefix(raw, "bytes=")
	rng, ok := embercond.ParseRange(spec, length)
	if !ok {
		return nil, false
	}
	return &rng, true
}

// VirtualHost returns the virtual host this request was resolved against,
// or nil if dispatch has not run yet.
func (r *Request) VirtualHost() *VirtualHost { return r.vhost }

// SetVirtualHost binds the resolved virtual host; called once by the
// transaction engine before dispatch.
func (r *Request) SetVirtualHost(vh *VirtualHost) {
	r.vhost = vh
}

// Context returns the dispatch context this request matched, or nil if
// dispatch has not run yet.
func (r *Request) Context() *ContextInfo { return r.context }

// SetContext binds the resolved context; called once by the transaction
// engine during dispatch.
func (r *Request) SetContext(ctx *ContextInfo) {
	r.context = ctx
}
