package embersock

import (
	"net"
	"syscall"
)

// Tuning holds cross-platform socket tuning options applied to both the
// listening socket and each accepted connection, adapted from the
// teacher's socket.Config. Trimmed to the options this engine's
// single-request-at-a-time transaction loop actually benefits from;
// HTTP/2-oriented options like TCP_FASTOPEN_CONNECT (client-side) were
// dropped since this package only ever accepts.
type Tuning struct {
	// NoDelay disables Nagle's algorithm. Default true.
	NoDelay bool

	// RecvBuffer and SendBuffer set SO_RCVBUF/SO_SNDBUF in bytes; zero
	// means leave the system default.
	RecvBuffer int
	SendBuffer int

	// KeepAlive enables SO_KEEPALIVE. Default true.
	KeepAlive bool

	// QuickAck and DeferAccept are Linux-only best-effort options; a
	// no-op on other platforms.
	QuickAck    bool
	DeferAccept bool
}

// DefaultTuning returns the recommended tuning for a one-goroutine-per-
// connection HTTP/1.1 server: low latency over maximum throughput.
func DefaultTuning() *Tuning {
	return &Tuning{
		NoDelay:     true,
		RecvBuffer:  256 * 1024,
		SendBuffer:  256 * 1024,
		KeepAlive:   true,
		QuickAck:    true,
		DeferAccept: true,
	}
}

// ApplyConn applies the tuning to an accepted connection. Non-TCP
// connections (e.g. already-wrapped TLS conns that don't expose a raw
// fd) are silently left untouched.
func ApplyConn(conn net.Conn, tuning *Tuning) error {
	if tuning == nil {
		tuning = DefaultTuning()
	}
	tcpConn, ok := conn.(*net.TCPConn)
	if !ok {
		return nil
	}
	rawConn, err := tcpConn.SyscallConn()
	if err != nil {
		return err
	}

	var lastErr error
	err = rawConn.Control(func(fd uintptr) {
		if tuning.NoDelay {
			if err := syscall.SetsockoptInt(int(fd), syscall.IPPROTO_TCP, syscall.TCP_NODELAY, 1); err != nil {
				lastErr = err
				return
			}
		}
		if tuning.RecvBuffer > 0 {
			_ = syscall.SetsockoptInt(int(fd), syscall.SOL_SOCKET, syscall.SO_RCVBUF, tuning.RecvBuffer)
		}
		if tuning.SendBuffer > 0 {
			_ = syscall.SetsockoptInt(int(fd), syscall.SOL_SOCKET, syscall.SO_SNDBUF, tuning.SendBuffer)
		}
		if tuning.KeepAlive {
			_ = syscall.SetsockoptInt(int(fd), syscall.SOL_SOCKET, syscall.SO_KEEPALIVE, 1)
		}
		applyPlatformConnOptions(int(fd), tuning)
	})
	if err != nil {
		return err
	}
	return lastErr
}

func applyListenerTuning(ln *net.TCPListener, tuning *Tuning) error {
	file, err := ln.File()
	if err != nil {
		return err
	}
	defer file.Close()
	return applyPlatformListenerOptions(int(file.Fd()), tuning)
}
