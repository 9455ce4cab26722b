// Package router maps envelope message types to their handlers. It is a
// pure dispatch table: handlers are independent, share no mutable
// state, and receive only the decoded payload plus the request context.
package router

import (
	"context"
	"fmt"
	"sync"

	"github.com/planwright/planwright/internal/domain/protocol"
)

// HandlerFunc processes one request envelope and returns the response
// payload. A non-nil error becomes a structured error envelope; it
// never closes the connection.
type HandlerFunc func(ctx context.Context, env *protocol.Envelope) (responseType string, payload interface{}, err error)

// Router dispatches envelopes by message type.
type Router struct {
	mu       sync.RWMutex
	handlers map[string]HandlerFunc
}

// New creates an empty router.
func New() *Router {
	return &Router{handlers: make(map[string]HandlerFunc)}
}

// Handle registers a handler for a message type. Registering the same
// type twice replaces the earlier handler.
func (r *Router) Handle(messageType string, handler HandlerFunc) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.handlers[messageType] = handler
}

// Types returns the registered message types.
func (r *Router) Types() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	types := make([]string, 0, len(r.handlers))
	for t := range r.handlers {
		types = append(types, t)
	}
	return types
}

// Dispatch runs the handler for env's message type and builds the
// response envelope. Unknown message types and handler failures both
// produce a structured error response, never an error return; only
// envelope construction itself can fail.
func (r *Router) Dispatch(ctx context.Context, env *protocol.Envelope) *protocol.Envelope {
	r.mu.RLock()
	handler, ok := r.handlers[env.MessageType]
	r.mu.RUnlock()

	if !ok {
		return env.ReplyError(fmt.Sprintf("unknown message type: %s", env.MessageType))
	}

	responseType, payload, err := handler(ctx, env)
	if err != nil {
		return env.ReplyError(err.Error())
	}

	resp, err := env.Reply(responseType, payload)
	if err != nil {
		return env.ReplyError(fmt.Sprintf("encode %s response: %v", env.MessageType, err))
	}
	return resp
}
