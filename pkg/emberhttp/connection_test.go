package emberhttp

import (
	"bufio"
	"net"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

// TestConnectionServeFullRequestResponseCycle drives a real in-memory
// socket pair through Connection.Serve end to end: request line parsing,
// virtual-host dispatch, a registered handler, and keep-alive framing.
func TestConnectionServeFullRequestResponseCycle(t *testing.T) {
	client, server := net.Pipe()
	defer client.Close()

	srv := NewServer(0, nil, nil, 0)
	srv.DefaultHost().AddContext("/hello", func(req *Request, resp *Response) Result {
		_ = resp.Send(200, "hi there")
		return Handled()
	}, "GET")

	config := DefaultConfig()
	config.MaxRequestsPerConnection = 1

	done := make(chan struct{})
	go func() {
		NewConnection(server, srv, config, false).Serve()
		close(done)
	}()

	_, err := client.Write([]byte("GET /hello HTTP/1.1\r\nHost: example.com\r\n\r\n"))
	require.NoError(t, err)

	client.SetReadDeadline(time.Now().Add(2 * time.Second))
	reader := bufio.NewReader(client)

	statusLine, err := reader.ReadString('\n')
	require.NoError(t, err)
	require.Contains(t, statusLine, "200")

	var body string
	for {
		line, err := reader.ReadString('\n')
		require.NoError(t, err)
		if line == "\r\n" {
			break
		}
	}
	buf := make([]byte, 64)
	n, _ := reader.Read(buf)
	body = string(buf[:n])
	require.Contains(t, body, "hi there")

	<-done
}

// TestVirtualHostGetContextTrailingSlash verifies that a context
// registered without a trailing slash still matches a directory-style
// request for that same path with one, per the longest-prefix match in
// spec.md §4.5.
func TestVirtualHostGetContextTrailingSlash(t *testing.T) {
	vh := NewVirtualHost("")
	noop := func(req *Request, resp *Response) Result { return Handled() }
	vh.AddContext("/docs", noop, "GET")

	ctx := vh.GetContext("/docs/")
	require.NotSame(t, emptyContext, ctx)
	require.Equal(t, "/docs", ctx.Path)

	ctx = vh.GetContext("/docs/foo")
	require.NotSame(t, emptyContext, ctx)
	require.Equal(t, "/docs", ctx.Path)

	ctx = vh.GetContext("/elsewhere/")
	require.Same(t, emptyContext, ctx)
}

// TestConnectionDispatchesMethodNotAllowed verifies a context that only
// registers GET answers a method registered only on another context with
// a 405 status line, per the dispatch table in spec.md §4.6.
func TestConnectionDispatchesMethodNotAllowed(t *testing.T) {
	client, server := net.Pipe()
	defer client.Close()

	srv := NewServer(0, nil, nil, 0)
	noop := func(req *Request, resp *Response) Result { return Handled() }
	srv.DefaultHost().AddContext("/widgets", noop, "GET")
	srv.DefaultHost().AddContext("/other", noop, "POST")

	config := DefaultConfig()
	config.MaxRequestsPerConnection = 1

	done := make(chan struct{})
	go func() {
		NewConnection(server, srv, config, false).Serve()
		close(done)
	}()

	_, err := client.Write([]byte("POST /widgets HTTP/1.1\r\nHost: example.com\r\n\r\n"))
	require.NoError(t, err)

	client.SetReadDeadline(time.Now().Add(2 * time.Second))
	reader := bufio.NewReader(client)
	statusLine, err := reader.ReadString('\n')
	require.NoError(t, err)
	require.Contains(t, statusLine, "405")

	<-done
}
