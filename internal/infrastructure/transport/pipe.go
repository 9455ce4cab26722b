package transport

import (
	"context"
	"encoding/binary"
	"fmt"
	"io"
	"net"
	"time"

	"github.com/planwright/planwright/internal/infrastructure/framing"
)

// DefaultConnectTimeout bounds pipe connect attempts.
const DefaultConnectTimeout = 5 * time.Second

// PipeChannel is the client side of the named local byte-stream pipe.
// One listener, one connection at a time; the desktop companion owns
// the listening end.
type PipeChannel struct {
	path           string
	connectTimeout time.Duration
	conn           net.Conn
}

// NewPipeChannel creates a pipe channel for the socket at path. The
// connection is established lazily on first use.
func NewPipeChannel(path string, connectTimeout time.Duration) *PipeChannel {
	if connectTimeout <= 0 {
		connectTimeout = DefaultConnectTimeout
	}
	return &PipeChannel{path: path, connectTimeout: connectTimeout}
}

// Name implements Channel.
func (c *PipeChannel) Name() string { return "pipe" }

// Connect dials the pipe with the bounded connect timeout.
func (c *PipeChannel) Connect(ctx context.Context) error {
	if c.conn != nil {
		return nil
	}
	dialer := net.Dialer{Timeout: c.connectTimeout}
	conn, err := dialer.DialContext(ctx, "unix", c.path)
	if err != nil {
		return fmt.Errorf("%w: pipe connect %s: %v", ErrUnavailable, c.path, err)
	}
	c.conn = conn
	return nil
}

// Send writes one framed message to the pipe.
func (c *PipeChannel) Send(ctx context.Context, frame []byte) error {
	if err := c.Connect(ctx); err != nil {
		return err
	}
	if err := c.applyDeadline(ctx); err != nil {
		return err
	}
	if _, err := c.conn.Write(frame); err != nil {
		c.teardown()
		return fmt.Errorf("%w: pipe write: %v", ErrUnavailable, err)
	}
	return nil
}

// Receive reads one full frame (length header plus body) from the pipe.
func (c *PipeChannel) Receive(ctx context.Context) ([]byte, error) {
	if c.conn == nil {
		return nil, fmt.Errorf("%w: pipe not connected", ErrUnavailable)
	}
	if err := c.applyDeadline(ctx); err != nil {
		return nil, err
	}

	header := make([]byte, 4)
	if _, err := io.ReadFull(c.conn, header); err != nil {
		c.teardown()
		return nil, fmt.Errorf("%w: pipe read header: %v", ErrUnavailable, err)
	}
	length := binary.LittleEndian.Uint32(header)
	if length > framing.MaxFrameSize {
		// A corrupt header would otherwise demand an allocation of up
		// to 4 GiB before the decoder ever sees the frame.
		c.teardown()
		return nil, fmt.Errorf("%w: pipe frame length %d exceeds limit", ErrUnavailable, length)
	}

	frame := make([]byte, 4+length)
	copy(frame, header)
	if _, err := io.ReadFull(c.conn, frame[4:]); err != nil {
		c.teardown()
		return nil, fmt.Errorf("%w: pipe read body: %v", ErrUnavailable, err)
	}
	return frame, nil
}

// Close implements Channel.
func (c *PipeChannel) Close() error {
	if c.conn == nil {
		return nil
	}
	err := c.conn.Close()
	c.conn = nil
	return err
}

func (c *PipeChannel) applyDeadline(ctx context.Context) error {
	deadline, ok := ctx.Deadline()
	if !ok {
		return c.conn.SetDeadline(time.Time{})
	}
	return c.conn.SetDeadline(deadline)
}

func (c *PipeChannel) teardown() {
	if c.conn != nil {
		c.conn.Close()
		c.conn = nil
	}
}
