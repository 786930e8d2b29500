package emberhttp

import (
	"testing"
	"time"
)

func TestDateRoundTripRFC1123(t *testing.T) {
	want := time.Date(1994, time.November, 6, 8, 49, 37, 0, time.UTC)
	formatted := FormatDate(want)
	if formatted != "Sun, 06 Nov 1994 08:49:37 GMT" {
		t.Fatalf("got %q", formatted)
	}
	parsed, ok := ParseDate(formatted)
	if !ok || !parsed.Equal(want) {
		t.Fatalf("round trip failed: got %v ok=%v", parsed, ok)
	}
}

func TestParseDateAllThreeFormats(t *testing.T) {
	want := time.Date(1994, time.November, 6, 8, 49, 37, 0, time.UTC)
	inputs := []string{
		"Sun, 06 Nov 1994 08:49:37 GMT",
		"Sunday, 06-Nov-94 08:49:37 GMT",
		"Sun Nov  6 08:49:37 1994",
	}
	for _, in := range inputs {
		got, ok := ParseDate(in)
		if !ok || !got.Equal(want) {
			t.Errorf("ParseDate(%q) = %v, %v; want %v", in, got, ok, want)
		}
	}
}

func TestParseDateRejectsGarbage(t *testing.T) {
	if _, ok := ParseDate("not a date"); ok {
		t.Fatalf("expected failure")
	}
}

func TestReasonPhraseUnknown(t *testing.T) {
	if ReasonPhrase(799) != "Unknown Status" {
		t.Fatalf("got %q", ReasonPhrase(799))
	}
	if ReasonPhrase(404) != "Not Found" {
		t.Fatalf("got %q", ReasonPhrase(404))
	}
}
