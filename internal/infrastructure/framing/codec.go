// Package framing implements the length-prefixed wire codec: a 4-byte
// little-endian length header followed by a UTF-8 JSON envelope body.
// Both transports carry the same frames.
package framing

import (
	"encoding/binary"
	"encoding/json"
	"errors"
	"fmt"
	"io"

	"github.com/planwright/planwright/internal/domain/protocol"
)

// MaxFrameSize bounds the body length a decoder will accept. A header
// above this is treated as a framing error, not an allocation request.
const MaxFrameSize = 16 << 20

// ErrPeerDisconnected reports that the stream ended before a full frame
// arrived. Terminal for the connection, never retried on it.
var ErrPeerDisconnected = errors.New("peer disconnected")

// DecodeError reports a structurally broken frame: an invalid length
// header or a body that is not valid JSON. Distinct from disconnection
// so the server can answer with a structured error envelope.
type DecodeError struct {
	Reason string
	Err    error
}

func (e *DecodeError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("framing: %s: %v", e.Reason, e.Err)
	}
	return "framing: " + e.Reason
}

func (e *DecodeError) Unwrap() error { return e.Err }

// Encode serializes the envelope and prefixes its length.
func Encode(env *protocol.Envelope) ([]byte, error) {
	body, err := json.Marshal(env)
	if err != nil {
		return nil, fmt.Errorf("encode envelope: %w", err)
	}
	frame := make([]byte, 4+len(body))
	binary.LittleEndian.PutUint32(frame[:4], uint32(len(body)))
	copy(frame[4:], body)
	return frame, nil
}

// Decode reads exactly one frame from r. A short read of either the
// header or the body yields ErrPeerDisconnected; a malformed header or
// body yields a *DecodeError.
func Decode(r io.Reader) (*protocol.Envelope, error) {
	header := make([]byte, 4)
	if _, err := io.ReadFull(r, header); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrPeerDisconnected, err)
	}

	length := binary.LittleEndian.Uint32(header)
	if length == 0 || length > MaxFrameSize {
		return nil, &DecodeError{Reason: fmt.Sprintf("invalid frame length %d", length)}
	}

	body := make([]byte, length)
	if _, err := io.ReadFull(r, body); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrPeerDisconnected, err)
	}

	var env protocol.Envelope
	if err := json.Unmarshal(body, &env); err != nil {
		return nil, &DecodeError{Reason: "malformed envelope body", Err: err}
	}
	return &env, nil
}

// Write encodes env and writes the full frame to w.
func Write(w io.Writer, env *protocol.Envelope) error {
	frame, err := Encode(env)
	if err != nil {
		return err
	}
	if _, err := w.Write(frame); err != nil {
		return fmt.Errorf("write frame: %w", err)
	}
	return nil
}
