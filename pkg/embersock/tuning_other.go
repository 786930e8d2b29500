//go:build !linux

package embersock

// applyPlatformConnOptions is a no-op outside Linux; TCP_NODELAY,
// SO_RCVBUF/SO_SNDBUF and SO_KEEPALIVE (applied in tuning.go) already
// cover the portable options.
func applyPlatformConnOptions(fd int, tuning *Tuning) {}

// applyPlatformListenerOptions is a no-op outside Linux.
func applyPlatformListenerOptions(fd int, tuning *Tuning) error { return nil }
