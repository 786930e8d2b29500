package emberio

import (
	"bufio"
	"bytes"
	"io"
)

// MaxChunkSize bounds a single chunk size, guarding against a malicious or
// broken peer advertising an unreasonably large chunk.
const MaxChunkSize = 64 << 20 // 64 MiB

// MaxTrailerLines bounds how many trailer field-lines a ChunkedReader will
// fold into its TrailerSink, mirroring the header-count cap applied to the
// main header block.
const MaxTrailerLines = 100

// TrailerSink receives trailer headers read after the terminating
// zero-size chunk. It matches the header collection's own Add signature so
// an *emberhttp.Headers can be passed directly.
type TrailerSink interface {
	Add(name, value string)
}

// ChunkedReader decodes an RFC 7230 §4.1 chunked transfer-coded stream into
// a continuous byte stream, stopping at the terminating zero-size chunk.
// Construction starts with limit=0 and uninitialized; on the first Read
// the chunk-size line is read and the limit set accordingly. On every
// subsequent chunk boundary the trailing CRLF of the previous chunk is
// verified before the next chunk-size line is read.
type ChunkedReader struct {
	r           *bufio.Reader
	limit       int64
	initialized bool
	eof         bool
	err         error
	trailer     TrailerSink
}

// NewChunkedReader wraps r (which should already be buffered, or will be
// wrapped in a *bufio.Reader if not) as a chunked-decoding stream. If
// trailer is non-nil, trailer field-lines following the zero-size chunk
// are folded into it via Add; if nil, trailers are read and discarded.
func NewChunkedReader(r io.Reader, trailer TrailerSink) *ChunkedReader {
	br, ok := r.(*bufio.Reader)
	if !ok {
		br = bufio.NewReader(r)
	}
	return &ChunkedReader{r: br, trailer: trailer}
}

func (c *ChunkedReader) Read(p []byte) (int, error) {
	if c.err != nil {
		return 0, c.err
	}
	if c.eof {
		return 0, io.EOF
	}

	if c.limit == 0 {
		if c.initialized {
			if err := c.expectCRLF(); err != nil {
				c.err = err
				return 0, err
			}
		}
		size, err := c.readChunkSizeLine()
		if err != nil {
			c.err = err
			return 0, err
		}
		c.initialized = true
		c.limit = size
		if size == 0 {
			if err := c.readTrailer(); err != nil {
				c.err = err
				return 0, err
			}
			c.eof = true
			return 0, io.EOF
		}
	}

	if int64(len(p)) > c.limit {
		p = p[:c.limit]
	}
	n, err := c.r.Read(p)
	c.limit -= int64(n)
	if err != nil && err != io.EOF {
		c.err = err
		return n, err
	}
	if err == io.EOF {
		c.err = io.ErrUnexpectedEOF
		return n, c.err
	}
	return n, nil
}

// Close marks the reader exhausted. The underlying reader is never closed.
func (c *ChunkedReader) Close() error {
	c.eof = true
	return nil
}

func (c *ChunkedReader) expectCRLF() error {
	var b [2]byte
	if _, err := io.ReadFull(c.r, b[:]); err != nil {
		if err == io.EOF || err == io.ErrUnexpectedEOF {
			return ErrUnexpectedEOF
		}
		return err
	}
	if b[0] != '\r' || b[1] != '\n' {
		return ErrChunkMalformed
	}
	return nil
}

func (c *ChunkedReader) readChunkSizeLine() (int64, error) {
	line, err := ReadLine(c.r, MaxLineSize)
	if err != nil {
		return 0, err
	}
	if i := bytes.IndexByte([]byte(line), ';'); i >= 0 {
		line = line[:i]
	}
	if line == "" {
		return 0, ErrChunkMalformed
	}
	var size int64
	for i := 0; i < len(line); i++ {
		c := line[i]
		var digit int64
		switch {
		case c >= '0' && c <= '9':
			digit = int64(c - '0')
		case c >= 'a' && c <= 'f':
			digit = int64(c-'a') + 10
		case c >= 'A' && c <= 'F':
			digit = int64(c-'A') + 10
		default:
			return 0, ErrChunkMalformed
		}
		size = size*16 + digit
		if size > MaxChunkSize {
			return 0, ErrChunkTooLarge
		}
	}
	return size, nil
}

func (c *ChunkedReader) readTrailer() error {
	for i := 0; ; i++ {
		if i >= MaxTrailerLines {
			return ErrChunkMalformed
		}
		line, err := ReadLine(c.r, MaxLineSize)
		if err != nil {
			return err
		}
		if line == "" {
			return nil
		}
		colon := bytes.IndexByte([]byte(line), ':')
		if colon < 0 {
			return ErrChunkMalformed
		}
		if c.trailer != nil {
			name := line[:colon]
			value := bytes.TrimSpace([]byte(line[colon+1:]))
			c.trailer.Add(name, string(value))
		}
	}
}

// ChunkedWriter encodes each Write call as a single chunk: hex size,
// CRLF, payload, CRLF. Close writes the zero-size terminator chunk
// followed by an empty trailer and the final CRLF; it never closes the
// underlying writer.
type ChunkedWriter struct {
	w      io.Writer
	closed bool
}

// NewChunkedWriter wraps w so that each Write is framed as one chunk.
func NewChunkedWriter(w io.Writer) *ChunkedWriter {
	return &ChunkedWriter{w: w}
}

func (c *ChunkedWriter) Write(p []byte) (int, error) {
	if len(p) == 0 {
		return 0, nil
	}
	if _, err := io.WriteString(c.w, itoaHex(int64(len(p)))+"\r\n"); err != nil {
		return 0, err
	}
	n, err := c.w.Write(p)
	if err != nil {
		return n, err
	}
	if _, err := io.WriteString(c.w, "\r\n"); err != nil {
		return n, err
	}
	return n, nil
}

// Close writes the terminating zero-size chunk and empty trailer. The
// underlying writer is left open.
func (c *ChunkedWriter) Close() error {
	if c.closed {
		return nil
	}
	c.closed = true
	_, err := io.WriteString(c.w, "0\r\n\r\n")
	return err
}

func itoaHex(n int64) string {
	if n == 0 {
		return "0"
	}
	const digits = "0123456789abcdef"
	var buf [16]byte
	i := len(buf)
	for n > 0 {
		i--
		buf[i] = digits[n&0xf]
		n >>= 4
	}
	return string(buf[i:])
}
