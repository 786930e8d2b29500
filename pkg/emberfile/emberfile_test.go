package emberfile

import (
	"bufio"
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/yourusername/emberhttp/pkg/emberhttp"
)

func newRequest(t *testing.T, raw string) (*emberhttp.Request, *bytes.Buffer) {
	t.Helper()
	req, err := emberhttp.ParseRequest(bufio.NewReader(strings.NewReader(raw)))
	if err != nil {
		t.Fatalf("parse request: %v", err)
	}
	var out bytes.Buffer
	return req, &out
}

func TestServeFullFile(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "f.txt"), []byte("abcdefghijklmnopqrstuvwxyz"), 0o644); err != nil {
		t.Fatal(err)
	}

	req, out := newRequest(t, "GET /f.txt HTTP/1.1\r\nHost: x\r\n\r\n")
	resp := emberhttp.NewResponse(out, req)
	fs := &FileServer{BaseDir: dir}

	fs.Serve(req, resp)
	_ = resp.Close()

	text := out.String()
	if !strings.Contains(text, "200 OK") {
		t.Fatalf("expected 200, got %q", text)
	}
	if !strings.HasSuffix(text, "abcdefghijklmnopqrstuvwxyz") {
		t.Fatalf("expected full body, got %q", text)
	}
}

func TestServeRange(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "f.txt"), []byte("abcdefghijklmnopqrstuvwxyz"), 0o644); err != nil {
		t.Fatal(err)
	}

	req, out := newRequest(t, "GET /f.txt HTTP/1.1\r\nHost: x\r\nRange: bytes=5-9\r\n\r\n")
	resp := emberhttp.NewResponse(out, req)
	fs := &FileServer{BaseDir: dir}

	fs.Serve(req, resp)
	_ = resp.Close()

	text := out.String()
	if !strings.Contains(text, "206") || !strings.Contains(text, "Content-Range: bytes 5-9/26") {
		t.Fatalf("expected 206 partial content, got %q", text)
	}
	if !strings.HasSuffix(text, "fghij") {
		t.Fatalf("expected range body, got %q", text)
	}
}

func TestServeHiddenFileIs404(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, ".secret"), []byte("x"), 0o644); err != nil {
		t.Fatal(err)
	}

	req, out := newRequest(t, "GET /.secret HTTP/1.1\r\nHost: x\r\n\r\n")
	resp := emberhttp.NewResponse(out, req)
	fs := &FileServer{BaseDir: dir}

	fs.Serve(req, resp)
	_ = resp.Close()

	if !strings.Contains(out.String(), "404") {
		t.Fatalf("expected 404, got %q", out.String())
	}
}

func TestServeDirectoryWithoutTrailingSlashRedirects(t *testing.T) {
	dir := t.TempDir()
	if err := os.Mkdir(filepath.Join(dir, "sub"), 0o755); err != nil {
		t.Fatal(err)
	}

	req, out := newRequest(t, "GET /sub HTTP/1.1\r\nHost: x\r\n\r\n")
	resp := emberhttp.NewResponse(out, req)
	fs := &FileServer{BaseDir: dir, AllowGeneratedIndex: true}

	fs.Serve(req, resp)
	_ = resp.Close()

	if !strings.Contains(out.String(), "301") {
		t.Fatalf("expected 301 redirect, got %q", out.String())
	}
}

func TestServeIfNoneMatchHit(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "f.txt"), []byte("hi"), 0o644); err != nil {
		t.Fatal(err)
	}
	info, err := os.Stat(filepath.Join(dir, "f.txt"))
	if err != nil {
		t.Fatal(err)
	}
	etag := weakETag(info.ModTime())

	req, out := newRequest(t, "GET /f.txt HTTP/1.1\r\nHost: x\r\nIf-None-Match: "+etag+"\r\n\r\n")
	resp := emberhttp.NewResponse(out, req)
	fs := &FileServer{BaseDir: dir}

	fs.Serve(req, resp)
	_ = resp.Close()

	if !strings.Contains(out.String(), "304") {
		t.Fatalf("expected 304, got %q", out.String())
	}
}
