package emberhttp

import (
	"bufio"
	"io"
	"strconv"
	"strings"

	"github.com/yourusername/emberhttp/pkg/emberio"
)

// ParseRequest implements spec.md §4.3 steps 1-5: it reads (and discards)
// blank lines until a request line arrives, splits that line into exactly
// three tokens, reads the header block, and wraps the connection reader
// in the body framing the headers select. Steps 6-8 (parameter parsing,
// base URL, Range) are lazy and live on Request itself.
//
// A request line never arriving before EOF returns ErrMissingRequestLine,
// which the transaction engine treats as a quiet connection close rather
// than a protocol violation.
func ParseRequest(r *bufio.Reader) (*Request, error) {
	line, err := readRequestLine(r)
	if err != nil {
		return nil, err
	}

	method, target, version, err := splitRequestLine(line)
	if err != nil {
		return nil, err
	}
	if version != "HTTP/1.1" && version != "HTTP/1.0" && version != "HTTP/0.9" {
		return nil, ErrUnsupportedVersion
	}

	headers := NewHeaders()
	if err := ReadHeaders(r, headers); err != nil {
		return nil, err
	}

	if version == "HTTP/1.1" && !headers.Contains("Host") {
		return nil, ErrMissingHost
	}

	req := &Request{
		Method:  method,
		Target:  collapseSlashes(target),
		Version: version,
		Headers: headers,
	}
	req.Body = selectBodyFraming(r, headers)
	return req, nil
}

// readRequestLine skips blank lines tolerantly (per spec.md §4.3 step 1)
// and returns the first non-empty line, or ErrMissingRequestLine if the
// stream ends first.
func readRequestLine(r *bufio.Reader) (string, error) {
	for {
		line, err := emberio.ReadLine(r, emberio.MaxLineSize)
		if err != nil {
			return "", ErrMissingRequestLine
		}
		if line != "" {
			return line, nil
		}
	}
}

// splitRequestLine splits line on ASCII space into exactly three tokens:
// method, request-target, version.
func splitRequestLine(line string) (method, target, version string, err error) {
	first := strings.IndexByte(line, ' ')
	if first < 0 {
		return "", "", "", ErrMalformedRequestLine
	}
	rest := line[first+1:]
	second := strings.IndexByte(rest, ' ')
	if second < 0 {
		return "", "", "", ErrMalformedRequestLine
	}
	method = line[:first]
	target = rest[:second]
	version = rest[second+1:]
	if method == "" || target == "" || version == "" || strings.ContainsRune(version, ' ') {
		return "", "", "", ErrMalformedRequestLine
	}
	return method, target, version, nil
}

// collapseSlashes implements spec.md §8 item 8's trimDuplicates('/', ...):
// runs of consecutive '/' collapse to a single '/', leaving the rest of
// the target (query string, fragment) untouched by scanning only up to
// the first '?' or '#'.
func collapseSlashes(target string) string {
	cut := len(target)
	if i := strings.IndexAny(target, "?#"); i >= 0 {
		cut = i
	}
	path, rest := target[:cut], target[cut:]

	var sb strings.Builder
	sb.Grow(len(path))
	prevSlash := false
	for i := 0; i < len(path); i++ {
		c := path[i]
		if c == '/' {
			if prevSlash {
				continue
			}
			prevSlash = true
		} else {
			prevSlash = false
		}
		sb.WriteByte(c)
	}
	return sb.String() + rest
}

// selectBodyFraming implements spec.md §4.3 step 5's body-framing
// precedence: Transfer-Encoding (chunked, or until-close for any other
// non-identity coding) beats Content-Length beats a zero-length body.
func selectBodyFraming(r *bufio.Reader, headers *Headers) io.Reader {
	if te, ok := headers.Get("Transfer-Encoding"); ok && !strings.EqualFold(strings.TrimSpace(te), "identity") {
		if containsToken(te, "chunked") {
			return emberio.NewChunkedReader(r, headers)
		}
		return r
	}

	if cl, ok := headers.Get("Content-Length"); ok {
		n, err := strconv.ParseInt(strings.TrimSpace(cl), 10, 64)
		if err == nil && n >= 0 {
			return emberio.NewLimitedReader(r, n, true)
		}
	}

	return emberio.NewLimitedReader(r, 0, true)
}
