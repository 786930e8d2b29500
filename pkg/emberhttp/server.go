package emberhttp

import (
	"fmt"
	"net"

	"github.com/yourusername/emberhttp/pkg/embersock"
)

// ListenAndServe binds the Server's configured port through its Factory
// and runs the accept loop until the listener is closed or fails
// permanently. It matches the teacher's ListenAndServe/Serve split,
// without the teacher's graceful-shutdown machinery, which spec.md §5
// does not ask for.
func (s *Server) ListenAndServe(config Config) error {
	ln, err := s.Factory.Listen(fmt.Sprintf(":%d", s.Port))
	if err != nil {
		return err
	}
	defer ln.Close()
	return s.Serve(ln, config)
}

// Serve runs the accept loop over an already-bound listener, letting
// the caller control how it was constructed (an ephemeral port in
// tests, a systemd-activated socket in production). Each accepted
// connection is handed to a fresh Connection built with config.
func (s *Server) Serve(ln net.Listener, config Config) error {
	config.SocketTimeout = s.SocketTimeout
	return embersock.Serve(ln, s.Factory, s.Executor, nil, s.SocketTimeout, func(conn net.Conn, secure bool) {
		NewConnection(conn, s, config, secure).Serve()
	})
}
