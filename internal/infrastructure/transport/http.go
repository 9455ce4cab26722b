package transport

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"time"
)

// HTTPChannel is the fallback transport: POST a frame to the messages
// endpoint to send, GET the same endpoint to poll for the next frame.
// It carries the identical wire format as the pipe, length prefix
// included, in the request and response bodies.
type HTTPChannel struct {
	baseURL string
	client  *http.Client
}

// NewHTTPChannel creates the HTTP fallback channel for a loopback base
// URL such as "http://127.0.0.1:8177".
func NewHTTPChannel(baseURL string, timeout time.Duration) *HTTPChannel {
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &HTTPChannel{
		baseURL: baseURL,
		client:  &http.Client{Timeout: timeout},
	}
}

// Name implements Channel.
func (c *HTTPChannel) Name() string { return "http" }

// Send posts one frame to /api/messages.
func (c *HTTPChannel) Send(ctx context.Context, frame []byte) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/api/messages", bytes.NewReader(frame))
	if err != nil {
		return fmt.Errorf("http send: %w", err)
	}
	req.Header.Set("Content-Type", "application/octet-stream")

	resp, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("%w: http send: %v", ErrUnavailable, err)
	}
	defer resp.Body.Close()
	io.Copy(io.Discard, resp.Body)

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return fmt.Errorf("%w: http send status %d", ErrUnavailable, resp.StatusCode)
	}
	return nil
}

// Receive polls /api/messages for the next frame. A 204 means nothing
// is queued yet; polling continues until the context expires.
func (c *HTTPChannel) Receive(ctx context.Context) ([]byte, error) {
	ticker := time.NewTicker(250 * time.Millisecond)
	defer ticker.Stop()

	for {
		frame, ok, err := c.poll(ctx)
		if err != nil {
			return nil, err
		}
		if ok {
			return frame, nil
		}

		select {
		case <-ctx.Done():
			return nil, fmt.Errorf("%w: http receive: %v", ErrUnavailable, ctx.Err())
		case <-ticker.C:
		}
	}
}

func (c *HTTPChannel) poll(ctx context.Context) ([]byte, bool, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/api/messages", nil)
	if err != nil {
		return nil, false, fmt.Errorf("http receive: %w", err)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, false, fmt.Errorf("%w: http receive: %v", ErrUnavailable, err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusNoContent:
		io.Copy(io.Discard, resp.Body)
		return nil, false, nil
	case resp.StatusCode < 200 || resp.StatusCode > 299:
		io.Copy(io.Discard, resp.Body)
		return nil, false, fmt.Errorf("%w: http receive status %d", ErrUnavailable, resp.StatusCode)
	}

	frame, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, false, fmt.Errorf("%w: http receive body: %v", ErrUnavailable, err)
	}
	return frame, true, nil
}

// Healthy probes /health and reports liveness.
func (c *HTTPChannel) Healthy(ctx context.Context) bool {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/health", nil)
	if err != nil {
		return false
	}
	resp, err := c.client.Do(req)
	if err != nil {
		return false
	}
	defer resp.Body.Close()
	io.Copy(io.Discard, resp.Body)
	return resp.StatusCode == http.StatusOK
}

// Close implements Channel. The HTTP channel holds no connection state.
func (c *HTTPChannel) Close() error { return nil }
