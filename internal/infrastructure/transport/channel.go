// Package transport provides the interchangeable byte-stream channels
// used to exchange framed envelopes: a local pipe (unix domain socket)
// and an HTTP fallback over a loopback port. A full exchange uses one
// channel end-to-end; the protocol never splits a request and its
// response across transports.
package transport

import (
	"context"
	"errors"
)

// ErrUnavailable reports that the channel could not reach the peer:
// no listener, connect timeout, broken pipe, or a non-2xx HTTP status.
// The client falls back to the secondary transport on this error.
var ErrUnavailable = errors.New("transport unavailable")

// Channel is a byte-stream mechanism for exchanging framed messages.
type Channel interface {
	// Send writes one framed message.
	Send(ctx context.Context, frame []byte) error
	// Receive blocks for the next framed message.
	Receive(ctx context.Context) ([]byte, error)
	// Name identifies the channel in logs ("pipe" or "http").
	Name() string
	// Close releases the underlying connection, if any.
	Close() error
}
