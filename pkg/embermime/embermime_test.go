package embermime

import (
	"strings"
	"testing"
)

func TestLookupDefaultCaseInsensitive(t *testing.T) {
	r := NewDefault()
	v, ok := r.Lookup(".HTML")
	if !ok || v != "text/html" {
		t.Fatalf("got %q ok=%v", v, ok)
	}
}

func TestLookupOrDefaultFallsBack(t *testing.T) {
	r := NewDefault()
	if got := r.LookupOrDefault("unknownext"); got != "application/octet-stream" {
		t.Fatalf("got %q", got)
	}
}

func TestLoadMimeTypesOverridesAndSkipsComments(t *testing.T) {
	r := NewDefault()
	src := "# comment\napplication/custom cst cst2\n\ntext/html htm\n"
	if err := r.LoadMimeTypes(strings.NewReader(src)); err != nil {
		t.Fatalf("load: %v", err)
	}
	if v, _ := r.Lookup("cst2"); v != "application/custom" {
		t.Fatalf("got %q", v)
	}
	if v, _ := r.Lookup("htm"); v != "text/html" {
		t.Fatalf("got %q", v)
	}
}
