// Package ipc implements the desktop companion's pipe server: a single
// accept loop serving exactly one plugin connection at a time, decoding
// framed envelopes, dispatching them through the router, and pushing
// unsolicited notifications while a client is connected.
package ipc

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net"
	"os"
	"sync"
	"time"

	"github.com/planwright/planwright/internal/domain/protocol"
	"github.com/planwright/planwright/internal/infrastructure/framing"
	"github.com/planwright/planwright/internal/infrastructure/router"
)

// ConnState tracks the per-connection lifecycle.
type ConnState string

const (
	StateListening    ConnState = "listening"
	StateConnected    ConnState = "connected"
	StateProcessing   ConnState = "processing"
	StateDisconnected ConnState = "disconnected"
)

// Server owns the pipe listener and its single active connection. No
// other component may bind the same socket path concurrently. The 1:1
// pairing is deliberate: a second client waits behind the OS backlog
// until the first disconnects.
type Server struct {
	path      string
	router    *router.Router
	ioTimeout time.Duration
	listener  net.Listener
	mu        sync.Mutex
	active    net.Conn
	state     ConnState
	closed    chan struct{}
	closeOnce sync.Once

	// writeMu keeps response and push frames from interleaving on the
	// shared connection.
	writeMu sync.Mutex
}

// NewServer creates a pipe server for the socket at path.
func NewServer(path string, r *router.Router, ioTimeout time.Duration) *Server {
	if ioTimeout <= 0 {
		ioTimeout = 30 * time.Second
	}
	return &Server{
		path:      path,
		router:    r,
		ioTimeout: ioTimeout,
		state:     StateListening,
		closed:    make(chan struct{}),
	}
}

// State returns the current connection state.
func (s *Server) State() ConnState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Listen binds the socket path. A stale socket file from a previous run
// is removed first.
func (s *Server) Listen() error {
	if err := os.Remove(s.path); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("remove stale socket: %w", err)
	}
	l, err := net.Listen("unix", s.path)
	if err != nil {
		return fmt.Errorf("listen on %s: %w", s.path, err)
	}
	s.listener = l
	log.Printf("ipc server listening on %s", s.path)
	return nil
}

// Serve runs the accept loop until ctx is canceled or Close is called.
// Exactly one connection is served at a time; on disconnect the server
// returns to listening for the next client.
func (s *Server) Serve(ctx context.Context) error {
	if s.listener == nil {
		if err := s.Listen(); err != nil {
			return err
		}
	}

	go func() {
		select {
		case <-ctx.Done():
		case <-s.closed:
		}
		s.listener.Close()
		s.dropActive()
	}()

	for {
		s.setState(StateListening)
		conn, err := s.listener.Accept()
		if err != nil {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-s.closed:
				return nil
			default:
				return fmt.Errorf("accept: %w", err)
			}
		}

		s.setActive(conn)
		s.serveConn(ctx, conn)
		s.dropActive()
	}
}

// serveConn processes envelopes from one connection until the peer
// disconnects or a framing error tears it down.
func (s *Server) serveConn(ctx context.Context, conn net.Conn) {
	defer conn.Close()
	log.Printf("ipc client connected")

	for {
		conn.SetReadDeadline(time.Time{})
		env, err := framing.Decode(conn)
		if err != nil {
			var decodeErr *framing.DecodeError
			switch {
			case errors.As(err, &decodeErr):
				// Structurally broken frame: this connection cannot be
				// trusted to stay in sync, so log and tear it down.
				log.Printf("ipc framing error, closing connection: %v", err)
			case errors.Is(err, framing.ErrPeerDisconnected):
				log.Printf("ipc client disconnected")
			default:
				log.Printf("ipc read failed: %v", err)
			}
			s.setState(StateDisconnected)
			return
		}

		s.setState(StateProcessing)
		reqCtx, cancel := context.WithTimeout(ctx, s.ioTimeout)
		resp := s.router.Dispatch(reqCtx, env)
		cancel()

		if err := s.writeFrame(conn, resp); err != nil {
			log.Printf("ipc write failed: %v", err)
			s.setState(StateDisconnected)
			return
		}
		s.setState(StateConnected)
	}
}

// Push sends an unsolicited envelope (progress update, completion
// notification) to the connected client. Returns an error when no
// client is connected.
func (s *Server) Push(env *protocol.Envelope) error {
	s.mu.Lock()
	conn := s.active
	s.mu.Unlock()

	if conn == nil {
		return errors.New("no client connected")
	}
	if err := s.writeFrame(conn, env); err != nil {
		return fmt.Errorf("push %s: %w", env.MessageType, err)
	}
	return nil
}

// writeFrame serializes one envelope onto the connection. A response
// and a concurrent push must never split a frame between them.
func (s *Server) writeFrame(conn net.Conn, env *protocol.Envelope) error {
	s.writeMu.Lock()
	defer s.writeMu.Unlock()
	conn.SetWriteDeadline(time.Now().Add(s.ioTimeout))
	return framing.Write(conn, env)
}

// Close stops the accept loop and drops the active connection.
func (s *Server) Close() error {
	s.closeOnce.Do(func() { close(s.closed) })
	if s.listener != nil {
		return s.listener.Close()
	}
	return nil
}

func (s *Server) setState(state ConnState) {
	s.mu.Lock()
	s.state = state
	s.mu.Unlock()
}

func (s *Server) setActive(conn net.Conn) {
	s.mu.Lock()
	s.active = conn
	s.state = StateConnected
	s.mu.Unlock()
}

func (s *Server) dropActive() {
	s.mu.Lock()
	if s.active != nil {
		s.active.Close()
		s.active = nil
	}
	s.state = StateDisconnected
	s.mu.Unlock()
}
