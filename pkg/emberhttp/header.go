package emberhttp

import (
	"bufio"
	"strings"

	"github.com/yourusername/emberhttp/pkg/emberio"
)

// Header is a single (name, value) pair. Name is a non-empty trimmed
// token compared case-insensitively; value is trimmed of surrounding
// whitespace but may be empty. Once constructed a Header is never
// mutated in place. Headers.Set/Add build new Header values.
type Header struct {
	Name  string
	Value string
}

// Headers is an ordered, case-insensitive multimap of Header pairs. The
// teacher's http11.Header trades this ordering away for a fixed-size
// inline array tuned for zero allocations; spec.md §4.2 needs insertion
// order preserved (for serialization) and needs to distinguish a single
// folded header from two repeated ones, so storage here is a plain slice
// grown with append. The teacher's Add/Get/Set method names and
// case-insensitive-compare helper are kept (its Del is Remove here), the
// representation is not.
type Headers struct {
	items []Header
}

// NewHeaders returns an empty Headers collection.
func NewHeaders() *Headers {
	return &Headers{}
}

func equalFold(a, b string) bool {
	return strings.EqualFold(a, b)
}

// Get returns the value of the first header matching name
// (case-insensitive), and whether one was found.
func (h *Headers) Get(name string) (string, bool) {
	for _, it := range h.items {
		if equalFold(it.Name, name) {
			return it.Value, true
		}
	}
	return "", false
}

// GetDefault returns the first matching header's value, or def if none
// match.
func (h *Headers) GetDefault(name, def string) string {
	if v, ok := h.Get(name); ok {
		return v
	}
	return def
}

// Contains reports whether any header matches name (case-insensitive).
func (h *Headers) Contains(name string) bool {
	_, ok := h.Get(name)
	return ok
}

// Add appends a new header, regardless of whether name is already
// present. Both name and value are trimmed of surrounding whitespace.
func (h *Headers) Add(name, value string) {
	h.items = append(h.items, Header{Name: strings.TrimSpace(name), Value: strings.TrimSpace(value)})
}

// Set replaces the first header matching name with value, or appends a
// new header if none matched. The replaced Header is returned, or the
// zero Header and false if none existed.
func (h *Headers) Set(name, value string) (Header, bool) {
	for i := range h.items {
		if equalFold(h.items[i].Name, name) {
			old := h.items[i]
			h.items[i].Value = strings.TrimSpace(value)
			return old, true
		}
	}
	h.Add(name, value)
	return Header{}, false
}

// Remove deletes every header matching name (case-insensitive), compacting
// the collection.
func (h *Headers) Remove(name string) {
	out := h.items[:0]
	for _, it := range h.items {
		if !equalFold(it.Name, name) {
			out = append(out, it)
		}
	}
	h.items = out
}

// Len returns the number of stored header pairs.
func (h *Headers) Len() int { return len(h.items) }

// All iterates the headers in insertion order.
func (h *Headers) All(yield func(name, value string) bool) {
	for _, it := range h.items {
		if !yield(it.Name, it.Value) {
			return
		}
	}
}

// WriteTo serializes the collection as "Name: Value\r\n" pairs followed
// by a final blank CRLF line, writing into sb.
func (h *Headers) WriteTo(sb *strings.Builder) {
	for _, it := range h.items {
		sb.WriteString(it.Name)
		sb.WriteString(": ")
		sb.WriteString(it.Value)
		sb.WriteString("\r\n")
	}
	sb.WriteString("\r\n")
}

// ReadHeaders reads header lines from r until a blank line terminates
// the block, per spec.md §4.2: a line beginning with whitespace is an
// obs-fold continuation of the previous line, folded in with a single
// space; otherwise the line is split at the first ':'. When an unfolded
// line names a header already present, the two values are joined with
// ", " (the element-list form that RFC 7230 uses to distinguish a
// genuinely repeated header from a folded one). Reading fails with
// ErrMalformedHeader on a colon-less non-continuation line, and with
// ErrTooManyHeaders past 100 lines.
func ReadHeaders(r *bufio.Reader, h *Headers) error {
	var lastName string
	haveLast := false

	for lines := 0; ; lines++ {
		if lines > 100 {
			return ErrTooManyHeaders
		}
		line, err := emberio.ReadLine(r, emberio.MaxLineSize)
		if err != nil {
			return err
		}
		if line == "" {
			return nil
		}

		if haveLast && (line[0] == ' ' || line[0] == '\t') {
			folded := strings.TrimLeft(line, " \t")
			if v, ok := h.Get(lastName); ok {
				h.Set(lastName, v+" "+folded)
			}
			continue
		}

		colon := strings.IndexByte(line, ':')
		if colon < 0 {
			return ErrMalformedHeader
		}
		name := strings.TrimSpace(line[:colon])
		value := strings.TrimSpace(line[colon+1:])

		if prev, ok := h.Get(name); ok {
			h.Set(name, prev+", "+value)
		} else {
			h.Add(name, value)
		}
		lastName = name
		haveLast = true
	}
}

// Param is a single parameter extracted from a structured header value:
// either a bare value (Name == "") for the first element before any
// "name=value" pair, or a name/value pair. Quoted values have their
// surrounding quotes stripped.
type Param struct {
	Name  string
	Value string
}

// ParseParams splits a single header value such as
// `multipart/form-data; boundary="abc123"` into its bare leading value
// and its name=value parameters, per spec.md §4.2.
func ParseParams(value string) []Param {
	parts := strings.Split(value, ";")
	params := make([]Param, 0, len(parts))
	for i, p := range parts {
		p = strings.TrimSpace(p)
		if p == "" {
			continue
		}
		if i == 0 && !strings.Contains(p, "=") {
			params = append(params, Param{Value: p})
			continue
		}
		eq := strings.IndexByte(p, '=')
		if eq < 0 {
			params = append(params, Param{Value: p})
			continue
		}
		name := strings.TrimSpace(p[:eq])
		val := strings.TrimSpace(p[eq+1:])
		if len(val) >= 2 && val[0] == '"' && val[len(val)-1] == '"' {
			val = val[1 : len(val)-1]
		}
		params = append(params, Param{Name: name, Value: val})
	}
	return params
}
