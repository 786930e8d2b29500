package emberhttp

import "strconv"

// reasonPhrases is the status-line reason-phrase table from spec.md §6,
// grounded on the teacher's statusText switch in http11/response.go but
// kept as a map (the teacher's zero-allocation motive for a switch does
// not apply once the status line itself is built with a strings.Builder
// rather than pre-compiled byte slices).
var reasonPhrases = map[int]string{
	100: "Continue",
	101: "Switching Protocols",
	200: "OK",
	201: "Created",
	202: "Accepted",
	203: "Non-Authoritative Information",
	204: "No Content",
	205: "Reset Content",
	206: "Partial Content",
	300: "Multiple Choices",
	301: "Moved Permanently",
	302: "Found",
	303: "See Other",
	304: "Not Modified",
	305: "Use Proxy",
	307: "Temporary Redirect",
	308: "Permanent Redirect",
	400: "Bad Request",
	401: "Unauthorized",
	402: "Payment Required",
	403: "Forbidden",
	404: "Not Found",
	405: "Method Not Allowed",
	406: "Not Acceptable",
	407: "Proxy Authentication Required",
	408: "Request Timeout",
	409: "Conflict",
	410: "Gone",
	411: "Length Required",
	412: "Precondition Failed",
	413: "Payload Too Large",
	414: "URI Too Long",
	415: "Unsupported Media Type",
	416: "Range Not Satisfiable",
	417: "Expectation Failed",
	426: "Upgrade Required",
	428: "Precondition Required",
	429: "Too Many Requests",
	431: "Request Header Fields Too Large",
	500: "Internal Server Error",
	501: "Not Implemented",
	502: "Bad Gateway",
	503: "Service Unavailable",
	504: "Gateway Timeout",
	505: "HTTP Version Not Supported",
}

// ReasonPhrase returns the fixed reason phrase for code, or "Unknown
// Status" for a code not in the table. Arbitrary codes remain otherwise
// permitted per spec.md §9.
func ReasonPhrase(code int) string {
	if r, ok := reasonPhrases[code]; ok {
		return r
	}
	return "Unknown Status"
}

// StatusLine formats "HTTP/1.1 <code> <reason>" without a trailing CRLF.
func StatusLine(code int) string {
	return "HTTP/1.1 " + strconv.Itoa(code) + " " + ReasonPhrase(code)
}

// ServerIdentity is the value sent in the Server response header.
const ServerIdentity = "emberhttp/1.0"
