package emberhttp

import (
	"bufio"
	"strings"
	"testing"
)

func TestHeadersCaseInsensitiveGet(t *testing.T) {
	h := NewHeaders()
	h.Add("Content-Type", "text/plain")
	v, ok := h.Get("content-type")
	if !ok || v != "text/plain" {
		t.Fatalf("got %q ok=%v", v, ok)
	}
}

func TestHeadersSetReplacesFirst(t *testing.T) {
	h := NewHeaders()
	h.Add("X-Foo", "1")
	h.Add("X-Bar", "2")
	old, replaced := h.Set("x-foo", "3")
	if !replaced || old.Value != "1" {
		t.Fatalf("got old=%+v replaced=%v", old, replaced)
	}
	v, _ := h.Get("X-Foo")
	if v != "3" {
		t.Fatalf("got %q", v)
	}
	if h.Len() != 2 {
		t.Fatalf("expected no new header appended, got len=%d", h.Len())
	}
}

func TestHeadersRemoveAll(t *testing.T) {
	h := NewHeaders()
	h.Add("X-Foo", "1")
	h.Add("X-Bar", "2")
	h.Add("x-foo", "3")
	h.Remove("X-Foo")
	if h.Len() != 1 {
		t.Fatalf("expected 1 remaining, got %d", h.Len())
	}
	if _, ok := h.Get("X-Foo"); ok {
		t.Fatalf("expected X-Foo removed")
	}
}

func TestReadHeadersFoldsContinuation(t *testing.T) {
	raw := "X-Long: part-one\r\n part-two\r\n\r\n"
	h := NewHeaders()
	if err := ReadHeaders(bufio.NewReader(strings.NewReader(raw)), h); err != nil {
		t.Fatalf("read: %v", err)
	}
	v, ok := h.Get("X-Long")
	if !ok || v != "part-one part-two" {
		t.Fatalf("got %q ok=%v", v, ok)
	}
}

func TestReadHeadersJoinsRepeated(t *testing.T) {
	raw := "Accept: text/html\r\nAccept: application/json\r\n\r\n"
	h := NewHeaders()
	if err := ReadHeaders(bufio.NewReader(strings.NewReader(raw)), h); err != nil {
		t.Fatalf("read: %v", err)
	}
	v, _ := h.Get("Accept")
	if v != "text/html, application/json" {
		t.Fatalf("got %q", v)
	}
}

func TestReadHeadersMissingColonFails(t *testing.T) {
	raw := "NotAHeader\r\n\r\n"
	h := NewHeaders()
	err := ReadHeaders(bufio.NewReader(strings.NewReader(raw)), h)
	if err != ErrMalformedHeader {
		t.Fatalf("got %v", err)
	}
}

func TestReadHeadersTooMany(t *testing.T) {
	var sb strings.Builder
	for i := 0; i < 101; i++ {
		sb.WriteString("X-N: v\r\n")
	}
	sb.WriteString("\r\n")
	h := NewHeaders()
	err := ReadHeaders(bufio.NewReader(strings.NewReader(sb.String())), h)
	if err != ErrTooManyHeaders {
		t.Fatalf("got %v", err)
	}
}

func TestParseParams(t *testing.T) {
	params := ParseParams(`multipart/form-data; boundary="abc123"; charset=utf-8`)
	if len(params) != 3 {
		t.Fatalf("got %d params", len(params))
	}
	if params[0].Name != "" || params[0].Value != "multipart/form-data" {
		t.Fatalf("got bare value %+v", params[0])
	}
	if params[1].Name != "boundary" || params[1].Value != "abc123" {
		t.Fatalf("got %+v", params[1])
	}
	if params[2].Name != "charset" || params[2].Value != "utf-8" {
		t.Fatalf("got %+v", params[2])
	}
}
