package emberhttp

import (
	"sort"
	"strings"
	"time"

	"github.com/yourusername/emberhttp/pkg/embersock"
)

// Handler processes one (Request, Response) transaction and returns a
// Result. spec.md §9 flags the original tri-state convention (0 |
// positive status | impossible-to-recover throw) as worth modeling
// explicitly in a language with sum types; Result is that redesign: a
// handler either already wrote a complete response (Handled), asks the
// engine to send a default error page for a status code (SendStatus), or
// reports an error the engine logs and turns into a 500 (Failed).
type Handler func(*Request, *Response) Result

// resultKind distinguishes the three Result shapes.
type resultKind int

const (
	resultHandled resultKind = iota
	resultStatus
	resultFailed
)

// Result is a Handler's outcome. Construct one with Handled, SendStatus,
// or Failed. There is no exported way to inspect it beyond that, since
// the engine is the only intended consumer.
type Result struct {
	kind   resultKind
	status int
	err    error
}

// Handled reports that the handler already wrote a complete response and
// the engine should do nothing further.
func Handled() Result { return Result{kind: resultHandled} }

// SendStatus asks the engine to send its default error response for
// code, provided the handler has not already sent headers.
func SendStatus(code int) Result { return Result{kind: resultStatus, status: code} }

// Failed reports that the handler could not complete the request. The
// engine logs err and sends a 500 if headers were never sent.
func Failed(err error) Result { return Result{kind: resultFailed, err: err} }

// builtinMethods lists the methods the transaction engine always answers
// itself, independent of any registered context. Used to build the
// Allow set for OPTIONS.
var builtinMethods = []string{"GET", "HEAD", "TRACE", "OPTIONS"}

// ContextInfo is a registered (path prefix, method → handler) mapping
// inside one VirtualHost. Dispatch selects the ContextInfo whose Path is
// the longest '/'-aligned prefix of the request path.
type ContextInfo struct {
	Path     string
	handlers map[string]Handler
}

func newContextInfo(path string) *ContextInfo {
	return &ContextInfo{Path: path, handlers: make(map[string]Handler)}
}

// emptyContext is returned by GetContext when no registered context
// matches; its nil handler map makes Handler and Methods report "nothing
// registered" without a nil-map panic.
var emptyContext = &ContextInfo{}

// Handler returns the handler registered for method, and whether one was
// found.
func (c *ContextInfo) Handler(method string) (Handler, bool) {
	h, ok := c.handlers[method]
	return h, ok
}

// Methods returns the methods explicitly registered on this context, in
// sorted order (used to build an Allow header).
func (c *ContextInfo) Methods() []string {
	methods := make([]string, 0, len(c.handlers))
	for m := range c.handlers {
		methods = append(methods, m)
	}
	sort.Strings(methods)
	return methods
}

// VirtualHost is a named (plus aliased) partition of contexts. The
// default virtual host has an empty Name and is always matched when no
// named host matches the request.
type VirtualHost struct {
	Name                string
	Aliases             []string
	DirectoryIndex      string
	AllowGeneratedIndex bool

	contexts map[string]*ContextInfo
}

func newVirtualHost(name string) *VirtualHost {
	return &VirtualHost{Name: name, contexts: make(map[string]*ContextInfo)}
}

// NewVirtualHost constructs a named virtual host ready for AddContext
// calls and registration via Server.AddVirtualHost.
func NewVirtualHost(name string) *VirtualHost {
	return newVirtualHost(name)
}

// AddContext registers handler under path for each of methods (default
// {"GET"} when none given). HEAD is never registered directly; it is
// always synthesized from GET by the transaction engine.
func (vh *VirtualHost) AddContext(path string, handler Handler, methods ...string) {
	if len(methods) == 0 {
		methods = []string{"GET"}
	}
	ctx, ok := vh.contexts[path]
	if !ok {
		ctx = newContextInfo(path)
		vh.contexts[path] = ctx
	}
	for _, m := range methods {
		if m == "HEAD" {
			continue
		}
		ctx.handlers[m] = handler
	}
}

// GetContext returns the ContextInfo whose path is the longest registered
// '/'-aligned prefix of path, stripping one trailing segment at a time.
// Returns the shared emptyContext (never nil) when nothing matches, which
// the transaction engine answers with 404 for GET and HEAD; other methods
// on it follow the dispatch table's 405/501 rules.
func (vh *VirtualHost) GetContext(path string) *ContextInfo {
	candidate := path
	for {
		if ctx, ok := vh.contexts[candidate]; ok {
			return ctx
		}
		if candidate == "/" || candidate == "" {
			return emptyContext
		}
		if strings.HasSuffix(candidate, "/") {
			candidate = strings.TrimSuffix(candidate, "/")
			continue
		}
		last := strings.LastIndexByte(candidate, '/')
		if last < 0 {
			return emptyContext
		}
		candidate = candidate[:last]
		if candidate == "" {
			candidate = "/"
		}
	}
}

// AllMethods returns the union of methods registered across every
// context in the host, sorted. Used to build the Allow header for an
// OPTIONS request against "*".
func (vh *VirtualHost) AllMethods() []string {
	set := make(map[string]struct{})
	for _, ctx := range vh.contexts {
		for m := range ctx.handlers {
			set[m] = struct{}{}
		}
	}
	methods := make([]string, 0, len(set))
	for m := range set {
		methods = append(methods, m)
	}
	sort.Strings(methods)
	return methods
}

// Server is the top-level registry: a listening port, a socket factory
// and executor (the embersock collaborators), a per-connection socket
// timeout, and a map of host name → VirtualHost. The empty string key
// always holds the default host.
type Server struct {
	Port          int
	Factory       embersock.Factory
	Executor      embersock.Executor
	SocketTimeout time.Duration

	hosts map[string]*VirtualHost
}

// NewServer constructs a Server with an always-present default virtual
// host, ready for context registration before Start is called.
func NewServer(port int, factory embersock.Factory, executor embersock.Executor, socketTimeout time.Duration) *Server {
	s := &Server{
		Port:          port,
		Factory:       factory,
		Executor:      executor,
		SocketTimeout: socketTimeout,
		hosts:         make(map[string]*VirtualHost),
	}
	s.hosts[""] = newVirtualHost("")
	return s
}

// DefaultHost returns the always-present default virtual host.
func (s *Server) DefaultHost() *VirtualHost {
	return s.hosts[""]
}

// AddVirtualHost registers a new named virtual host, folding in any
// aliases under the same map entry. Must be called before Start;
// post-start mutation is undefined per spec.md §5.
func (s *Server) AddVirtualHost(vh *VirtualHost) {
	s.hosts[vh.Name] = vh
	for _, alias := range vh.Aliases {
		s.hosts[alias] = vh
	}
}

// GetVirtualHost looks up a host by exact name; an empty name or an
// unmatched name both fall through to the default host.
func (s *Server) GetVirtualHost(name string) *VirtualHost {
	if vh, ok := s.hosts[name]; ok {
		return vh
	}
	return s.hosts[""]
}
