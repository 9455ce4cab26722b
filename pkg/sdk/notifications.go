package sdk

import (
	"context"
	"fmt"
	"strings"

	"github.com/gorilla/websocket"
	"github.com/planwright/planwright/internal/domain/protocol"
)

// ListenNotifications opens the websocket notification stream on the
// HTTP surface and invokes the registered callback for every push
// envelope until the context is cancelled. It is the HTTP-side
// counterpart of receiving unsolicited envelopes over the pipe.
func (c *Client) ListenNotifications(ctx context.Context) error {
	wsURL := strings.Replace(c.opts.httpBaseURL, "http://", "ws://", 1) + "/api/notifications"

	conn, resp, err := websocket.DefaultDialer.DialContext(ctx, wsURL, nil)
	if err != nil {
		return fmt.Errorf("%w: notifications dial: %v", ErrUnavailable, err)
	}
	if resp != nil && resp.Body != nil {
		resp.Body.Close()
	}
	defer conn.Close()

	go func() {
		<-ctx.Done()
		conn.Close()
	}()

	for {
		var env protocol.Envelope
		if err := conn.ReadJSON(&env); err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			return fmt.Errorf("notifications read: %w", err)
		}
		c.deliverPush(&env)
	}
}
