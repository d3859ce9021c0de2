package status

import (
	"errors"
	"fmt"
	"net"
	"sync"
	"time"

	"github.com/markusressel/nvfancontrol/internal/ui"
)

const writeTimeout = 5 * time.Second

// Server answers every TCP connection with the latest snapshot as a single JSON line
// and closes it afterwards. Connections made before the first snapshot are closed
// without any data.
type Server struct {
	store    *Store
	listener net.Listener

	mu     sync.Mutex
	closed bool
}

// Listen creates a Server listening on host:port
func Listen(store *Store, host string, port int) (*Server, error) {
	listener, err := net.Listen("tcp", net.JoinHostPort(host, fmt.Sprintf("%d", port)))
	if err != nil {
		return nil, fmt.Errorf("status server: %w", err)
	}
	return &Server{
		store:    store,
		listener: listener,
	}, nil
}

// Addr is the address the server is listening on
func (s *Server) Addr() net.Addr {
	return s.listener.Addr()
}

// Serve accepts connections until Close is called, connections are handled one at a time
func (s *Server) Serve() error {
	ui.Info("Status server listening on %s", s.listener.Addr())
	for {
		conn, err := s.listener.Accept()
		if err != nil {
			if s.isClosed() {
				return nil
			}
			var netErr net.Error
			if errors.As(err, &netErr) && netErr.Timeout() {
				continue
			}
			return fmt.Errorf("status server: %w", err)
		}
		s.handle(conn)
	}
}

func (s *Server) handle(conn net.Conn) {
	defer conn.Close()

	snapshot, ok := s.store.Get()
	if !ok {
		return
	}
	_ = conn.SetWriteDeadline(time.Now().Add(writeTimeout))
	if err := Print(conn, snapshot); err != nil {
		ui.Warning("Status server: unable to send snapshot to %s: %v", conn.RemoteAddr(), err)
	}
}

func (s *Server) isClosed() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.closed
}

// Close stops the server, a blocked Serve returns nil
func (s *Server) Close() error {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return nil
	}
	s.closed = true
	s.mu.Unlock()
	return s.listener.Close()
}
