package emberio

import (
	"bytes"
	"io"
	"strings"
	"testing"
)

func TestChunkedRoundTrip(t *testing.T) {
	cases := [][]byte{
		[]byte("hello"),
		[]byte(""),
		bytes.Repeat([]byte("x"), 5000),
		[]byte("a"),
	}

	for _, want := range cases {
		var encoded bytes.Buffer
		cw := NewChunkedWriter(&encoded)
		if len(want) > 0 {
			if _, err := cw.Write(want); err != nil {
				t.Fatalf("write: %v", err)
			}
		}
		if err := cw.Close(); err != nil {
			t.Fatalf("close: %v", err)
		}

		cr := NewChunkedReader(bytes.NewReader(encoded.Bytes()), nil)
		got, err := io.ReadAll(cr)
		if err != nil {
			t.Fatalf("decode: %v", err)
		}
		if !bytes.Equal(got, want) {
			t.Fatalf("round trip mismatch: got %q want %q", got, want)
		}
	}
}

type trailerRecorder struct {
	names  []string
	values []string
}

func (t *trailerRecorder) Add(name, value string) {
	t.names = append(t.names, name)
	t.values = append(t.values, value)
}

func TestChunkedReaderTrailer(t *testing.T) {
	body := "5\r\nhello\r\n0\r\nX-Checksum: abc123\r\n\r\n"
	tr := &trailerRecorder{}
	cr := NewChunkedReader(strings.NewReader(body), tr)
	got, err := io.ReadAll(cr)
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if string(got) != "hello" {
		t.Fatalf("got %q", got)
	}
	if len(tr.names) != 1 || tr.names[0] != "X-Checksum" || tr.values[0] != "abc123" {
		t.Fatalf("trailer not captured: %+v", tr)
	}
}

func TestChunkedReaderMalformedSize(t *testing.T) {
	body := "zzz\r\nhello\r\n0\r\n\r\n"
	cr := NewChunkedReader(strings.NewReader(body), nil)
	_, err := io.ReadAll(cr)
	if err != ErrChunkMalformed {
		t.Fatalf("got %v, want ErrChunkMalformed", err)
	}
}

func TestChunkedReaderMultipleChunks(t *testing.T) {
	body := "4\r\nWiki\r\n5\r\npedia\r\n0\r\n\r\n"
	cr := NewChunkedReader(strings.NewReader(body), nil)
	got, err := io.ReadAll(cr)
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if string(got) != "Wikipedia" {
		t.Fatalf("got %q", got)
	}
}
