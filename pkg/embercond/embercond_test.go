package embercond

import (
	"testing"
	"time"
)

func TestParseRangeSuffix(t *testing.T) {
	r, ok := ParseRange("-10", 26)
	if !ok || r.Start != 16 || r.End != 25 {
		t.Fatalf("got %+v ok=%v", r, ok)
	}
}

func TestParseRangeOpen(t *testing.T) {
	r, ok := ParseRange("5-", 26)
	if !ok || r.Start != 5 || r.End != 25 {
		t.Fatalf("got %+v ok=%v", r, ok)
	}
}

func TestParseRangeExplicit(t *testing.T) {
	r, ok := ParseRange("5-9", 26)
	if !ok || r.Start != 5 || r.End != 9 {
		t.Fatalf("got %+v ok=%v", r, ok)
	}
}

func TestParseRangeClampsEndPastLength(t *testing.T) {
	r, ok := ParseRange("20-1000", 26)
	if !ok || r.Start != 20 || r.End != 25 {
		t.Fatalf("got %+v ok=%v", r, ok)
	}
}

func TestParseRangeUnsatisfiableStart(t *testing.T) {
	r, ok := ParseRange("100-200", 26)
	if !ok {
		t.Fatalf("expected parse success, got ok=false")
	}
	if !r.Unsatisfiable(26) {
		t.Fatalf("expected unsatisfiable for start >= length")
	}
}

func TestParseRangeInvalidSpecIgnored(t *testing.T) {
	if _, ok := ParseRange("9-5", 26); ok {
		t.Fatalf("expected reversed range to be invalid")
	}
	if _, ok := ParseRange("garbage", 26); ok {
		t.Fatalf("expected garbage to be invalid")
	}
	if _, ok := ParseRange("+5-9", 26); ok {
		t.Fatalf("expected leading plus to be rejected")
	}
}

func TestParseRangeMultipleSpecsEnvelope(t *testing.T) {
	r, ok := ParseRange("0-1, 10-15", 26)
	if !ok || r.Start != 0 || r.End != 15 {
		t.Fatalf("got %+v ok=%v", r, ok)
	}
}

func TestEvaluateIfMatchFails(t *testing.T) {
	status := Evaluate(
		Preconditions{Method: "GET", IfMatch: `"abc"`},
		Validators{ETag: `"xyz"`},
	)
	if status != StatusPreconditionFailed {
		t.Fatalf("got %v", status)
	}
}

func TestEvaluateIfMatchStar(t *testing.T) {
	status := Evaluate(
		Preconditions{Method: "GET", IfMatch: "*"},
		Validators{ETag: `"xyz"`},
	)
	if status != StatusProceed {
		t.Fatalf("got %v", status)
	}
}

func TestEvaluateIfNoneMatchHitOnGET(t *testing.T) {
	status := Evaluate(
		Preconditions{Method: "GET", IfNoneMatch: `W/"1700000000"`},
		Validators{ETag: `W/"1700000000"`},
	)
	if status != StatusNotModified {
		t.Fatalf("got %v", status)
	}
}

func TestEvaluateIfNoneMatchHitOnPUT(t *testing.T) {
	status := Evaluate(
		Preconditions{Method: "PUT", IfNoneMatch: `W/"1700000000"`},
		Validators{ETag: `W/"1700000000"`},
	)
	if status != StatusPreconditionFailed {
		t.Fatalf("got %v", status)
	}
}

func TestEvaluateIfNoneMatchMissForcesProceed(t *testing.T) {
	status := Evaluate(
		Preconditions{
			Method:          "GET",
			IfNoneMatch:     `"stale"`,
			IfModifiedSince: "Sun, 06 Nov 1994 08:49:37 GMT",
		},
		Validators{ETag: `"fresh"`, LastModified: time.Date(2020, 1, 1, 0, 0, 0, 0, time.UTC)},
	)
	if status != StatusProceed {
		t.Fatalf("got %v, expected force-200 override", status)
	}
}

func TestEvaluateIfModifiedSinceUnmodified(t *testing.T) {
	since := time.Date(2020, 1, 1, 0, 0, 0, 0, time.UTC)
	status := Evaluate(
		Preconditions{Method: "GET", IfModifiedSince: since.Format("Mon, 02 Jan 2006 15:04:05 GMT")},
		Validators{LastModified: since.Add(-time.Hour)},
	)
	if status != StatusNotModified {
		t.Fatalf("got %v", status)
	}
}

func TestEvaluatePrecedenceIfMatchBeatsIfNoneMatch(t *testing.T) {
	status := Evaluate(
		Preconditions{Method: "GET", IfMatch: `"stale"`, IfNoneMatch: `"fresh"`},
		Validators{ETag: `"fresh"`},
	)
	if status != StatusPreconditionFailed {
		t.Fatalf("got %v, If-Match must take precedence", status)
	}
}
