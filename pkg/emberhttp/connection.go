package emberhttp

import (
	"bufio"
	"errors"
	"io"
	"net"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/yourusername/emberhttp/pkg/emberio"
)

var zeroTime time.Time

// Connection runs the per-connection transaction loop of spec.md §4.6
// over one accepted socket. It owns the connection for its entire
// lifetime: one Connection serves one socket from handoff to close, and
// is discarded afterward. There is no connection pooling, mirroring the
// teacher's one-goroutine-per-connection model but without the
// teacher's atomic state machine, since nothing here is ever touched by
// a second goroutine.
type Connection struct {
	conn   net.Conn
	reader *bufio.Reader
	writer *bufio.Writer

	server *Server
	config Config
	secure bool

	requestCount int
}

// NewConnection wraps conn in 4 KiB buffers, per spec.md §4.6 step 1.
func NewConnection(conn net.Conn, server *Server, config Config, secure bool) *Connection {
	return &Connection{
		conn:   conn,
		reader: bufio.NewReaderSize(conn, 4096),
		writer: bufio.NewWriterSize(conn, 4096),
		server: server,
		config: config,
		secure: secure,
	}
}

// Serve runs transactions until the connection should close: a parse
// failure, an aborting I/O error, a non-keep-alive request, or the
// configured request cap. It never returns an error. Every failure
// mode is either written to the wire as a status code or silently
// logged and treated as connection teardown, matching spec.md §7.
func (c *Connection) Serve() {
	id := uuid.NewString()
	for {
		if c.config.MaxRequestsPerConnection > 0 && c.requestCount >= c.config.MaxRequestsPerConnection {
			return
		}
		c.requestCount++

		keepAlive, err := c.serveOne(id)
		if err != nil {
			logDebugf(c.config.Logger, "emberhttp: connection %s ended: %v", id, err)
			return
		}
		if !keepAlive {
			return
		}
	}
}

// serveOne runs exactly one request/response transaction, per spec.md
// §4.6 steps 2-7. It returns keepAlive=false whenever the connection
// must close after this transaction (including a quiet EOF before any
// request line, reported as a nil error).
func (c *Connection) serveOne(connID string) (keepAlive bool, err error) {
	localPort := localPortOf(c.conn)

	if c.config.SocketTimeout > 0 {
		_ = c.conn.SetReadDeadline(time.Now().Add(c.config.SocketTimeout))
	}

	req, parseErr := ParseRequest(c.reader)
	if parseErr != nil {
		if errors.Is(parseErr, ErrMissingRequestLine) {
			return false, nil
		}
		logDebugf(c.config.Logger, "emberhttp: connection %s: parse error: %v", connID, parseErr)
		c.writeParseError(parseErr)
		return false, nil
	}

	req.RemoteAddr = c.conn.RemoteAddr().String()
	req.Secure = c.secure
	req.LocalPort = localPort

	resp := NewResponse(c.writer, req)

	if err := c.preprocess(req, resp); err != nil {
		c.finishTransaction(req, resp)
		return false, nil
	}

	c.dispatch(req, resp)
	c.finishTransaction(req, resp)

	if resp.ShouldClose() {
		return false, nil
	}
	return true, nil
}

// preprocess implements spec.md §4.6's Preprocess step: Host enforcement
// and Expect handling for HTTP/1.1, legacy Connection-header scrubbing
// for HTTP/1.0 and HTTP/0.9. Returning an error means a response has
// already been sent and the transaction is over.
func (c *Connection) preprocess(req *Request, resp *Response) error {
	switch req.Version {
	case "HTTP/1.1":
		if !req.Headers.Contains("Host") {
			resp.SetConnectionClose()
			_ = resp.Send(400, "Bad Request: missing Host header")
			return errBadRequest
		}
		if expect, ok := req.Headers.Get("Expect"); ok {
			if !strings.EqualFold(strings.TrimSpace(expect), "100-continue") {
				resp.SetConnectionClose()
				_ = resp.Send(417, "Expectation Failed")
				return errBadRequest
			}
			_, _ = c.writer.WriteString(StatusLine(100) + "\r\n\r\n")
			_ = c.writer.Flush()
		}
	case "HTTP/1.0", "HTTP/0.9":
		// Open question (spec.md §9): this unconditionally strips every
		// header named in Connection before anything else runs, which
		// also removes any conditional headers the client sent. Kept
		// for byte-level compatibility with the source this was
		// distilled from rather than "fixed".
		if conn, ok := req.Headers.Get("Connection"); ok {
			for _, tok := range strings.Split(conn, ",") {
				req.Headers.Remove(strings.TrimSpace(tok))
			}
		}
	default:
		resp.SetConnectionClose()
		_ = resp.Send(400, "Bad Request: unsupported version")
		return errBadRequest
	}
	return nil
}

var errBadRequest = errors.New("emberhttp: preprocess rejected request")

// dispatch implements spec.md §4.6's Method dispatch table.
func (c *Connection) dispatch(req *Request, resp *Response) {
	vhost := c.server.GetVirtualHost(req.Host())
	req.SetVirtualHost(vhost)

	if req.Path() == "*" {
		if req.Method == "OPTIONS" {
			c.sendOptionsStar(vhost, resp)
			return
		}
		_ = resp.SendError(501, "Not Implemented")
		return
	}

	ctx := vhost.GetContext(req.Path())
	req.SetContext(ctx)

	switch req.Method {
	case "GET":
		c.invokeWithDirectoryWelcome(req, resp, ctx, "GET")
	case "HEAD":
		resp.SetDiscardBody(true)
		headReq := *req
		headReq.Method = "GET"
		c.invokeWithDirectoryWelcome(&headReq, resp, ctx, "GET")
	case "TRACE":
		c.sendTrace(req, resp)
	case "OPTIONS":
		c.sendOptionsContext(vhost, ctx, resp)
	default:
		if handler, ok := ctx.Handler(req.Method); ok {
			c.invoke(handler, req, resp)
			return
		}
		if contains(vhost.AllMethods(), req.Method) {
			c.sendMethodNotAllowed(ctx, resp)
			return
		}
		_ = resp.SendError(501, "Not Implemented")
	}
}

func (c *Connection) invokeWithDirectoryWelcome(req *Request, resp *Response, ctx *ContextInfo, method string) {
	handler, ok := ctx.Handler(method)
	if !ok {
		if ctx != emptyContext && contains(req.VirtualHost().AllMethods(), method) {
			c.sendMethodNotAllowed(ctx, resp)
			return
		}
		_ = resp.SendError(404, "Not Found")
		return
	}

	vhost := req.VirtualHost()
	if strings.HasSuffix(req.Path(), "/") && vhost.DirectoryIndex != "" {
		original := req.Target
		req.Target = req.Target + vhost.DirectoryIndex
		result := handler(req, resp)
		if result.kind == resultStatus && result.status == 404 {
			req.Target = original
			c.invoke(handler, req, resp)
			return
		}
		c.finishHandlerResult(result, resp)
		return
	}

	c.invoke(handler, req, resp)
}

func (c *Connection) invoke(handler Handler, req *Request, resp *Response) {
	result := handler(req, resp)
	c.finishHandlerResult(result, resp)
}

func (c *Connection) finishHandlerResult(result Result, resp *Response) {
	switch result.kind {
	case resultHandled:
		return
	case resultStatus:
		if resp.State() == stateNothingSent {
			_ = resp.SendError(result.status, ReasonPhrase(result.status))
		}
	case resultFailed:
		logErrorf(c.config.Logger, "emberhttp: handler failed: %v", result.err)
		if resp.State() == stateNothingSent {
			_ = resp.SendError(500, "Internal Server Error")
		}
	}
}

func (c *Connection) sendTrace(req *Request, resp *Response) {
	var sb strings.Builder
	sb.WriteString(req.Method)
	sb.WriteByte(' ')
	sb.WriteString(req.Target)
	sb.WriteByte(' ')
	sb.WriteString(req.Version)
	sb.WriteString("\r\n")
	req.Headers.WriteTo(&sb)

	if req.Body != nil {
		const maxEchoBody = 64 << 10
		body, err := io.ReadAll(io.LimitReader(req.Body, maxEchoBody))
		if err == nil {
			sb.Write(body)
		}
	}

	resp.Headers().Add("Content-Type", "message/http")
	if err := resp.sendHeaders(200, int64(sb.Len()), zeroTime, "", "message/http", nil); err != nil {
		return
	}
	body, err := resp.Body()
	if err != nil || body == nil {
		return
	}
	_, _ = body.Write([]byte(sb.String()))
}

func (c *Connection) sendOptionsStar(vhost *VirtualHost, resp *Response) {
	allowed := mergeMethods(builtinMethods, vhost.AllMethods())
	resp.Headers().Add("Allow", strings.Join(allowed, ", "))
	resp.Headers().Add("Content-Length", "0")
	if err := resp.sendHeaders(200, 0, zeroTime, "", "", nil); err != nil {
		return
	}
	_, _ = resp.Body()
}

func (c *Connection) sendOptionsContext(vhost *VirtualHost, ctx *ContextInfo, resp *Response) {
	allowed := mergeMethods(builtinMethods, ctx.Methods())
	resp.Headers().Add("Allow", strings.Join(allowed, ", "))
	resp.Headers().Add("Content-Length", "0")
	if err := resp.sendHeaders(200, 0, zeroTime, "", "", nil); err != nil {
		return
	}
	_, _ = resp.Body()
}

func (c *Connection) sendMethodNotAllowed(ctx *ContextInfo, resp *Response) {
	resp.Headers().Add("Allow", strings.Join(ctx.Methods(), ", "))
	_ = resp.SendError(405, "Method Not Allowed")
}

// finishTransaction implements spec.md §4.6 steps 5-6: if the handler
// (or dispatch itself) never sent a response, send a generic 500; then
// close the response (flushing encoders) and drain any unread request
// body so the stream stays aligned for the next transaction.
func (c *Connection) finishTransaction(req *Request, resp *Response) {
	if resp.State() == stateNothingSent {
		_ = resp.SendError(500, "Internal Server Error")
	}
	_ = resp.Close()
	_ = c.writer.Flush()

	if req.Body != nil {
		if _, err := emberio.Transfer(nil, req.Body, -1); err != nil {
			resp.SetConnectionClose()
		}
	}
}

func (c *Connection) writeParseError(err error) {
	resp := &Response{sink: c.writer, headers: NewHeaders(), statusCode: 400}
	status := 400
	if isTimeout(err) {
		status = 408
	}
	resp.SetConnectionClose()
	_ = resp.Send(status, err.Error())
	_ = c.writer.Flush()
}

func isTimeout(err error) bool {
	var netErr net.Error
	return errors.As(err, &netErr) && netErr.Timeout()
}

func contains(list []string, item string) bool {
	for _, m := range list {
		if m == item {
			return true
		}
	}
	return false
}

func mergeMethods(builtin, extra []string) []string {
	set := make(map[string]struct{})
	for _, m := range builtin {
		set[m] = struct{}{}
	}
	for _, m := range extra {
		set[m] = struct{}{}
	}
	out := make([]string, 0, len(set))
	for m := range set {
		out = append(out, m)
	}
	sort.Strings(out)
	return out
}

func localPortOf(conn net.Conn) int {
	addr, ok := conn.LocalAddr().(*net.TCPAddr)
	if !ok {
		return 0
	}
	return addr.Port
}
