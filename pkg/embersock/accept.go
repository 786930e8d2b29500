package embersock

import (
	"net"
	"time"

	"github.com/sirupsen/logrus"
)

// Executor runs a connection-handling function, typically on its own
// goroutine. The default CachedExecutorFunc matches the teacher's "unbounded
// cached pool, one logical worker per connection" default; callers may
// supply a bounded pool to cap concurrency.
type Executor interface {
	Execute(fn func())
}

// CachedExecutorFunc adapts a plain function to Executor by launching fn
// on a new goroutine, equivalent to an unbounded cached thread pool.
type CachedExecutorFunc struct{}

// Execute implements Executor.
func (CachedExecutorFunc) Execute(fn func()) { go fn() }

// Handle is called once per accepted connection. The socket's handshake,
// if any, has already completed by the time Handle runs.
type Handle func(conn net.Conn, secure bool)

// Serve runs a single-threaded accept loop on ln: each accepted
// connection is tuned, then dispatched to executor, which invokes
// handle. socketTimeout is not applied here: it is Handle's job to
// re-arm a read deadline before each blocking read, matching Java's
// SO_TIMEOUT semantics per spec.md §4.9 (an idle-read bound renewed on
// every read, not a single deadline for the connection's whole life).
// Serve blocks until ln.Accept returns a permanent error (typically
// because the listener was closed) and then returns that error.
func Serve(ln net.Listener, factory Factory, executor Executor, tuning *Tuning, socketTimeout time.Duration, handle Handle) error {
	if executor == nil {
		executor = CachedExecutorFunc{}
	}
	if tuning == nil {
		tuning = DefaultTuning()
	}
	secure := factory.Secure()

	for {
		conn, err := ln.Accept()
		if err != nil {
			return err
		}

		if !secure {
			if err := ApplyConn(conn, tuning); err != nil {
				logrus.WithError(err).Debug("embersock: socket tuning failed, continuing with defaults")
			}
		}

		executor.Execute(func() {
			defer teardown(conn, secure)
			handle(conn, secure)
		})
	}
}

// teardown implements the half-close-then-drain sequence for plain
// sockets, and a direct close for TLS sockets, per spec.md §4.9.
func teardown(conn net.Conn, secure bool) {
	if secure {
		_ = conn.Close()
		return
	}
	if tcpConn, ok := conn.(*net.TCPConn); ok {
		_ = tcpConn.CloseWrite()
		buf := make([]byte, 4096)
		for {
			_ = conn.SetReadDeadline(time.Now().Add(2 * time.Second))
			if _, err := conn.Read(buf); err != nil {
				break
			}
		}
	}
	_ = conn.Close()
}
