// Package emberio provides the bounded-length byte I/O primitives the
// HTTP/1.1 engine parses and frames messages with: line/token readers,
// a length-limited substream, and the chunked transfer-coding reader and
// writer.
package emberio

import "errors"

var (
	// ErrLineTooLong indicates a line exceeded its configured maximum length
	// before a delimiter was found.
	ErrLineTooLong = errors.New("emberio: line exceeds maximum length")

	// ErrUnexpectedEOF indicates the underlying stream ended before the
	// expected delimiter or length was reached.
	ErrUnexpectedEOF = errors.New("emberio: unexpected EOF")

	// ErrChunkMalformed indicates a chunk-size line could not be parsed.
	ErrChunkMalformed = errors.New("emberio: malformed chunk size")

	// ErrChunkTooLarge indicates a single chunk size exceeded the configured
	// maximum, used as a DoS guard.
	ErrChunkTooLarge = errors.New("emberio: chunk size too large")
)
