package emberhttp

import (
	"compress/flate"
	"io"
	"strings"

	"github.com/andybalholm/brotli"
	"github.com/klauspost/compress/gzip"

	"github.com/yourusername/emberhttp/pkg/emberio"
)

// compressiblePatterns is the default compressible-type set from
// spec.md §4.4: exact matches, a leading '*' suffix match, or a trailing
// '*' prefix match, tested against the media type before any ';'
// parameter.
var compressiblePatterns = []string{"text/*", "*/javascript", "*icon", "*+xml", "*/json"}

// isCompressible reports whether contentType's media type (everything
// before the first ';') matches any of the default compressible
// patterns.
func isCompressible(contentType string) bool {
	mediaType := contentType
	if i := strings.IndexByte(mediaType, ';'); i >= 0 {
		mediaType = mediaType[:i]
	}
	mediaType = strings.TrimSpace(mediaType)

	for _, pattern := range compressiblePatterns {
		if matchPattern(pattern, mediaType) {
			return true
		}
	}
	return false
}

func matchPattern(pattern, value string) bool {
	switch {
	case pattern == value:
		return true
	case strings.HasPrefix(pattern, "*"):
		return strings.HasSuffix(value, pattern[1:])
	case strings.HasSuffix(pattern, "*"):
		return strings.HasPrefix(value, pattern[:len(pattern)-1])
	default:
		return false
	}
}

// codecPreference is tried in order against Accept-Encoding; br sorts
// first since it reliably beats gzip's ratio at similar CPU cost, gzip
// before deflate since every client that advertises deflate also
// advertises gzip in practice.
var codecPreference = []string{"br", "gzip", "deflate"}

// acceptableCodec returns the most preferred codec present in an
// Accept-Encoding element list, or "" if none of codecPreference is
// acceptable.
func acceptableCodec(acceptEncoding string) string {
	offered := make(map[string]bool)
	for _, tok := range strings.Split(acceptEncoding, ",") {
		tok = strings.TrimSpace(tok)
		if semi := strings.IndexByte(tok, ';'); semi >= 0 {
			tok = strings.TrimSpace(tok[:semi])
		}
		offered[strings.ToLower(tok)] = true
	}
	for _, codec := range codecPreference {
		if offered[codec] {
			return codec
		}
	}
	return ""
}

// noCloseWriter wraps an underlying io.Writer and turns Close into a
// no-op. It is the innermost layer of every encoder chain, since closing a
// Response must never close the connection's output stream.
type noCloseWriter struct {
	w io.Writer
}

func (n noCloseWriter) Write(p []byte) (int, error) { return n.w.Write(p) }
func (n noCloseWriter) Close() error                { return nil }

// bodyWriteCloser is the common contract every layer of the encoder chain
// satisfies: Write streams payload bytes, Close finalizes this layer
// (flushing any internal buffering, writing a chunked terminator, etc.)
// without closing the layer beneath it except where that layer is meant
// to cascade.
type bodyWriteCloser interface {
	io.WriteCloser
}

// buildEncoderChain composes the body writer for a single response based
// on already-decided header state, per spec.md §4.4: innermost layer is
// the no-close wrapper around sink; chunked framing is added when
// Transfer-Encoding contains "chunked"; gzip or deflate is added on top
// when indicated by Content-Encoding or Transfer-Encoding.
func buildEncoderChain(sink io.Writer, headers *Headers) bodyWriteCloser {
	var w bodyWriteCloser = noCloseWriter{sink}

	te, _ := headers.Get("Transfer-Encoding")
	ce, _ := headers.Get("Content-Encoding")

	if containsToken(te, "chunked") {
		w = emberio.NewChunkedWriter(w)
	}

	switch {
	case containsToken(ce, "br") || containsToken(te, "br"):
		w = &cascadingCloser{WriteCloser: brotli.NewWriter(w), inner: w}
	case containsToken(ce, "gzip") || containsToken(te, "gzip"):
		gz, _ := gzip.NewWriterLevel(w, gzip.DefaultCompression)
		w = &cascadingCloser{WriteCloser: gz, inner: w}
	case containsToken(ce, "deflate") || containsToken(te, "deflate"):
		fl, _ := flate.NewWriter(w, flate.DefaultCompression)
		w = &cascadingCloser{WriteCloser: fl, inner: w}
	}

	return w
}

func containsToken(elementList, token string) bool {
	for _, tok := range strings.Split(elementList, ",") {
		if strings.EqualFold(strings.TrimSpace(tok), token) {
			return true
		}
	}
	return false
}

// cascadingCloser closes its own layer, then cascades into the wrapped
// inner writer's Close. For example, gzip.Writer.Close flushes the gzip
// footer, then the chunked writer beneath it writes its own terminator.
type cascadingCloser struct {
	io.WriteCloser
	inner bodyWriteCloser
}

func (c *cascadingCloser) Close() error {
	if err := c.WriteCloser.Close(); err != nil {
		return err
	}
	return c.inner.Close()
}
