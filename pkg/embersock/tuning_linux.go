//go:build linux

package embersock

import "golang.org/x/sys/unix"

// applyPlatformConnOptions applies Linux-only per-connection tuning,
// grounded on the teacher's tuning_linux.go but reimplemented against
// golang.org/x/sys/unix instead of raw syscall constants, since the
// x/sys package carries the newer TCP_* definitions across kernel
// versions without needing local const redeclaration.
func applyPlatformConnOptions(fd int, tuning *Tuning) {
	if tuning.QuickAck {
		_ = unix.SetsockoptInt(fd, unix.IPPROTO_TCP, unix.TCP_QUICKACK, 1)
	}
	_ = unix.SetsockoptInt(fd, unix.IPPROTO_TCP, unix.TCP_USER_TIMEOUT, 10000)
	if tuning.KeepAlive {
		_ = unix.SetsockoptInt(fd, unix.IPPROTO_TCP, unix.TCP_KEEPIDLE, 60)
		_ = unix.SetsockoptInt(fd, unix.IPPROTO_TCP, unix.TCP_KEEPINTVL, 10)
		_ = unix.SetsockoptInt(fd, unix.IPPROTO_TCP, unix.TCP_KEEPCNT, 3)
	}
}

// applyPlatformListenerOptions applies Linux-only listener tuning:
// TCP_DEFER_ACCEPT so the kernel doesn't wake the accept loop until the
// client has actually sent data.
func applyPlatformListenerOptions(fd int, tuning *Tuning) error {
	if tuning.DeferAccept {
		if err := unix.SetsockoptInt(fd, unix.IPPROTO_TCP, unix.TCP_DEFER_ACCEPT, 5); err != nil {
			return err
		}
	}
	return nil
}
