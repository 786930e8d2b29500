package emberhttp

import "time"

// The three date formats spec.md §6 requires inbound parsing to accept,
// tried in this order since RFC 1123 is by far the common case on the
// wire.
const (
	rfc1123Format = "Mon, 02 Jan 2006 15:04:05 GMT"
	rfc850Format  = "Monday, 02-Jan-06 15:04:05 GMT"
	asctimeFormat = "Mon Jan  2 15:04:05 2006"
)

// FormatDate renders t in RFC 1123 GMT form, the only format ever
// generated on output (Date, Last-Modified, Expires headers).
func FormatDate(t time.Time) string {
	return t.UTC().Format(rfc1123Format)
}

// ParseDate accepts any of the three legacy HTTP date formats (RFC 1123,
// RFC 850, asctime) and returns the equivalent instant. RFC 850's
// two-digit year is windowed by time.Parse's usual century-guess rule,
// matching the historical behavior these headers were defined against.
func ParseDate(s string) (time.Time, bool) {
	for _, layout := range [...]string{rfc1123Format, rfc850Format, asctimeFormat} {
		if t, err := time.Parse(layout, s); err == nil {
			return t.UTC(), true
		}
	}
	return time.Time{}, false
}
