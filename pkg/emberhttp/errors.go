// Package emberhttp implements the embeddable HTTP/1.1 transaction engine:
// header collection, request parsing, response writing with streaming
// encoders, the virtual-host/context dispatch tree, and the per-connection
// transaction loop. It is not a web framework: no sessions, no cookies,
// no auth, and no async I/O multiplexing. One goroutine serves
// one connection from accept to close.
package emberhttp

import "errors"

// Parser and protocol errors, grouped the way the teacher's http11/errors.go
// groups them: parser errors, then connection errors, then response errors.
var (
	// ErrMissingRequestLine signals that the client closed the connection
	// (or sent nothing) before a request line arrived. The transaction
	// engine treats this as a quiet, expected connection close rather than
	// a protocol violation.
	ErrMissingRequestLine = errors.New("emberhttp: missing request line")

	// ErrMalformedRequestLine indicates the request line did not split
	// into exactly three space-separated tokens.
	ErrMalformedRequestLine = errors.New("emberhttp: malformed request line")

	// ErrMalformedHeader indicates a header line had no ':' separator.
	ErrMalformedHeader = errors.New("emberhttp: malformed header line")

	// ErrTooManyHeaders indicates more than 100 header lines were sent.
	ErrTooManyHeaders = errors.New("emberhttp: too many header lines")

	// ErrUnsupportedVersion indicates a request-line version token other
	// than HTTP/1.1, HTTP/1.0, or HTTP/0.9.
	ErrUnsupportedVersion = errors.New("emberhttp: unsupported HTTP version")

	// ErrMissingHost indicates an HTTP/1.1 request arrived without a Host
	// header, a mandatory RFC 7230 §5.4 requirement.
	ErrMissingHost = errors.New("emberhttp: missing Host header")

	// ErrUnacceptableExpect indicates an Expect header value other than
	// "100-continue".
	ErrUnacceptableExpect = errors.New("emberhttp: unsupported Expect value")
)

// Connection-lifecycle errors.
var (
	// ErrReadTimeout indicates the per-socket read deadline fired before a
	// full request line was parsed.
	ErrReadTimeout = errors.New("emberhttp: read timeout")

	// ErrConnectionAborted indicates an unrecoverable I/O error occurred
	// after response headers were already sent, so no further status line
	// can be written; the connection is simply torn down.
	ErrConnectionAborted = errors.New("emberhttp: connection aborted")
)

// Response-writer errors.
var (
	// ErrHeadersAlreadySent indicates sendHeaders was called a second time
	// on the same Response.
	ErrHeadersAlreadySent = errors.New("emberhttp: headers already sent")

	// ErrBodyAlreadyTaken indicates Body was called more than once on the
	// same Response.
	ErrBodyAlreadyTaken = errors.New("emberhttp: response body stream already taken")
)
