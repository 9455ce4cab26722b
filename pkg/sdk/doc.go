// Package sdk is the plugin-side communication service for the
// Planwright desktop companion.
//
// The client speaks the framed envelope protocol over the local pipe
// transport, falling back to the HTTP surface when the pipe is
// unavailable. A full exchange (send plus receive) always uses one
// transport end-to-end; responses are matched to requests by
// correlation id, never by arrival order.
//
// Usage:
//
//	c := sdk.NewClient(sdk.WithSocketPath("/tmp/planwright.sock"))
//	defer c.Close()
//
//	if !c.IsDesktopAppAvailable(ctx) {
//		return
//	}
//	resp := c.SendLayoutRequest(ctx, req)
//	if resp == nil {
//		// communication failed, ask the user to retry
//	}
package sdk
