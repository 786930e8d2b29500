// Package embersock implements the pluggable socket layer: a Factory that
// yields listening sockets (plain TCP or TLS), platform socket tuning
// lifted from the teacher's socket package, and the accept loop that hands
// each accepted connection to a caller-supplied handler via an Executor.
package embersock

import (
	"net"
)

// Factory yields a listening socket for a server to accept connections
// on. TCPFactory and TLSFactory are the two implementations; callers may
// supply their own to plug in a different transport.
type Factory interface {
	// Listen opens a listening socket on addr (host:port, or ":port").
	Listen(addr string) (net.Listener, error)

	// Secure reports whether sockets produced by Listen are already
	// TLS-terminated. It controls the accept loop's teardown strategy
	// (half-close is skipped for TLS sockets per spec.md §4.9) and feeds
	// Request.Secure for scheme selection in base URLs.
	Secure() bool
}

// TCPFactory is the plain-TCP Factory: net.Listen("tcp", addr) with the
// tuning in tuning.go applied to the resulting listener.
type TCPFactory struct {
	// Tuning is applied to the listener. Nil means DefaultTuning().
	// Accepted connections are tuned by Serve with the Tuning passed to
	// it, not with this field.
	Tuning *Tuning
}

// Listen implements Factory.
func (f *TCPFactory) Listen(addr string) (net.Listener, error) {
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return nil, err
	}
	tuning := f.Tuning
	if tuning == nil {
		tuning = DefaultTuning()
	}
	if tcpLn, ok := ln.(*net.TCPListener); ok {
		_ = applyListenerTuning(tcpLn, tuning)
	}
	return ln, nil
}

// Secure implements Factory.
func (f *TCPFactory) Secure() bool { return false }
