// Package httpapi serves the HTTP fallback surface on a loopback port:
// POST /api/messages to send a framed envelope, GET /api/messages to
// poll for the next outbound frame, GET /health for liveness, and a
// websocket upgrade on /api/notifications streaming push envelopes.
package httpapi

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/planwright/planwright/internal/domain/protocol"
	"github.com/planwright/planwright/internal/infrastructure/framing"
	"github.com/planwright/planwright/internal/infrastructure/router"
)

var upgrader = websocket.Upgrader{}

// wsClient serializes writes to one websocket connection; the gorilla
// API forbids concurrent writers.
type wsClient struct {
	mu   sync.Mutex
	conn *websocket.Conn
}

func (c *wsClient) writeJSON(v interface{}) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.conn.WriteJSON(v)
}

// Server is the HTTP fallback server. It shares the router with the
// pipe server so both transports dispatch identically.
type Server struct {
	addr    string
	router  *router.Router
	version string
	started time.Time
	server  *http.Server

	mu       sync.Mutex
	outbound [][]byte

	wsMu      sync.RWMutex
	wsClients map[*wsClient]struct{}
}

// NewServer creates the fallback server for a loopback address.
func NewServer(addr string, r *router.Router, version string) *Server {
	return &Server{
		addr:      addr,
		router:    r,
		version:   version,
		started:   time.Now(),
		wsClients: make(map[*wsClient]struct{}),
	}
}

// Handler returns the route table shared by Start and tests.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("POST /api/messages", s.handleSend)
	mux.HandleFunc("GET /api/messages", s.handleReceive)
	mux.HandleFunc("GET /health", s.handleHealth)
	mux.HandleFunc("GET /api/notifications", s.handleNotifications)
	return mux
}

// Start starts the fallback server.
func (s *Server) Start() error {
	s.server = &http.Server{
		Addr:         s.addr,
		Handler:      s.Handler(),
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 30 * time.Second,
	}

	log.Printf("http fallback server starting on %s", s.addr)
	return s.server.ListenAndServe()
}

// Shutdown gracefully shuts down the server.
func (s *Server) Shutdown(ctx context.Context) error {
	if s.server == nil {
		return nil
	}
	return s.server.Shutdown(ctx)
}

// Push queues an unsolicited envelope for polling clients and streams
// it to connected websocket listeners.
func (s *Server) Push(env *protocol.Envelope) error {
	frame, err := framing.Encode(env)
	if err != nil {
		return err
	}
	s.enqueue(frame)

	s.wsMu.RLock()
	clients := make([]*wsClient, 0, len(s.wsClients))
	for c := range s.wsClients {
		clients = append(clients, c)
	}
	s.wsMu.RUnlock()

	for _, c := range clients {
		if err := c.writeJSON(env); err != nil {
			log.Printf("websocket push failed: %v", err)
		}
	}
	return nil
}

// handleSend accepts one framed envelope, dispatches it, and queues the
// response for the next poll. The body carries the identical wire
// format as the pipe, length prefix included.
func (s *Server) handleSend(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(r.Body)
	if err != nil {
		http.Error(w, "read body", http.StatusBadRequest)
		return
	}

	env, err := framing.Decode(bytes.NewReader(body))
	if err != nil {
		log.Printf("http framing error: %v", err)
		http.Error(w, "malformed frame", http.StatusBadRequest)
		return
	}

	resp := s.router.Dispatch(r.Context(), env)
	frame, err := framing.Encode(resp)
	if err != nil {
		http.Error(w, "encode response", http.StatusInternalServerError)
		return
	}
	s.enqueue(frame)
	w.WriteHeader(http.StatusAccepted)
}

// handleReceive returns the next queued outbound frame, or 204 when
// nothing is waiting.
func (s *Server) handleReceive(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	var frame []byte
	if len(s.outbound) > 0 {
		frame = s.outbound[0]
		s.outbound = s.outbound[1:]
	}
	s.mu.Unlock()

	if frame == nil {
		w.WriteHeader(http.StatusNoContent)
		return
	}
	w.Header().Set("Content-Type", "application/octet-stream")
	w.Write(frame)
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(protocol.HealthCheckResponse{
		Status:    "healthy",
		Version:   s.version,
		Uptime:    time.Since(s.started).Round(time.Second).String(),
		Timestamp: time.Now().UTC(),
	})
}

// handleNotifications upgrades to a websocket and streams push
// envelopes until the client goes away.
func (s *Server) handleNotifications(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("websocket upgrade failed: %v", err)
		return
	}

	client := &wsClient{conn: conn}
	s.wsMu.Lock()
	s.wsClients[client] = struct{}{}
	s.wsMu.Unlock()

	go func() {
		defer func() {
			s.wsMu.Lock()
			delete(s.wsClients, client)
			s.wsMu.Unlock()
			conn.Close()
		}()
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()
}

func (s *Server) enqueue(frame []byte) {
	s.mu.Lock()
	s.outbound = append(s.outbound, frame)
	s.mu.Unlock()
}
