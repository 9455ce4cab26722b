package sdk

import (
	"bytes"
	"context"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/felixgeelhaar/fortify/retry"
	"github.com/planwright/planwright/internal/domain/protocol"
	"github.com/planwright/planwright/internal/infrastructure/framing"
	"github.com/planwright/planwright/internal/infrastructure/transport"
)

// Client is the plugin-side communication service. It attempts the pipe
// transport first and falls back to HTTP; one exchange never spans both.
type Client struct {
	opts options

	mu      sync.Mutex
	pipe    *transport.PipeChannel
	http    *transport.HTTPChannel
	pending map[string]chan *protocol.Envelope

	// recvMu admits one reader at a time per transport; the reader
	// routes frames for other correlation ids to their waiters.
	recvMu sync.Mutex

	notifyMu sync.RWMutex
	onPush   func(*protocol.Envelope)
}

// NewClient creates a communication service with the given options.
func NewClient(opts ...Option) *Client {
	o := defaultOptions()
	for _, fn := range opts {
		fn(&o)
	}
	return &Client{
		opts:    o,
		pipe:    transport.NewPipeChannel(o.socketPath, o.connectTimeout),
		http:    transport.NewHTTPChannel(o.httpBaseURL, o.timeout),
		pending: make(map[string]chan *protocol.Envelope),
	}
}

// OnNotification registers a callback for push envelopes (progress
// updates, completion notifications) observed on any receive path.
func (c *Client) OnNotification(fn func(*protocol.Envelope)) {
	c.notifyMu.Lock()
	c.onPush = fn
	c.notifyMu.Unlock()
}

// Close releases both transports.
func (c *Client) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.pipe.Close()
}

// SendMessage sends one envelope without awaiting a response. It
// reports success; callers must branch on false rather than expect an
// error value.
func (c *Client) SendMessage(ctx context.Context, env *protocol.Envelope) bool {
	frame, err := framing.Encode(env)
	if err != nil {
		log.Printf("planwright sdk: encode %s: %v", env.MessageType, err)
		return false
	}
	_, err = c.sendFrame(ctx, frame)
	return err == nil
}

// ReceiveMessage blocks for the next envelope on the pipe channel, or
// nil on timeout or disconnect.
func (c *Client) ReceiveMessage(ctx context.Context) *protocol.Envelope {
	c.mu.Lock()
	defer c.mu.Unlock()
	frame, err := c.pipe.Receive(ctx)
	if err != nil {
		return nil
	}
	env, err := framing.Decode(bytes.NewReader(frame))
	if err != nil {
		return nil
	}
	return env
}

// Exchange performs one request/response round trip and verifies that
// the returned envelope carries the expected response type. Any
// failure, mismatch or timeout yields an error; callers surface it as
// "communication failed" without technical detail.
func (c *Client) Exchange(ctx context.Context, env *protocol.Envelope, expectedType string) (*protocol.Envelope, error) {
	frame, err := framing.Encode(env)
	if err != nil {
		return nil, err
	}

	ctx, cancel := context.WithTimeout(ctx, c.opts.timeout)
	defer cancel()

	c.mu.Lock()
	waiter := make(chan *protocol.Envelope, 1)
	c.pending[env.CorrelationId] = waiter
	c.mu.Unlock()
	defer func() {
		c.mu.Lock()
		delete(c.pending, env.CorrelationId)
		c.mu.Unlock()
	}()

	ch, err := c.sendFrame(ctx, frame)
	if err != nil {
		return nil, err
	}

	resp, err := c.awaitResponse(ctx, ch, env.CorrelationId, waiter)
	if err != nil {
		return nil, err
	}
	if resp.MessageType == protocol.TypeErrorResponse {
		var payload protocol.ErrorResponse
		if err := resp.DecodePayload(&payload); err == nil {
			return nil, fmt.Errorf("planwright: %s", payload.Error)
		}
		return nil, fmt.Errorf("planwright: request failed")
	}
	if resp.MessageType != expectedType {
		return nil, &MismatchError{Expected: expectedType, Got: resp.MessageType}
	}
	return resp, nil
}

// sendFrame sends over the pipe, falling back to HTTP exactly once on
// any pipe failure. It returns the channel the frame went out on so the
// response is awaited on the same transport.
func (c *Client) sendFrame(ctx context.Context, frame []byte) (transport.Channel, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	err := c.pipe.Send(ctx, frame)
	if err == nil {
		return c.pipe, nil
	}
	log.Printf("planwright sdk: pipe unavailable, falling back to http: %v", err)

	if err := c.http.Send(ctx, frame); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	return c.http, nil
}

// awaitResponse reads envelopes from ch until one matches the awaited
// correlation id. Envelopes for other pending exchanges are handed to
// their waiters; push envelopes go to the notification callback; the
// rest are discarded with a log line. Matching is by correlation id
// only, arrival order is not trusted. Reads are serialized under
// recvMu so concurrent exchanges never race for the same stream; a
// goroutine that loses the read lock finds its response in the waiter
// channel once the current reader routes it there.
func (c *Client) awaitResponse(ctx context.Context, ch transport.Channel, correlationId string, waiter chan *protocol.Envelope) (*protocol.Envelope, error) {
	for {
		select {
		case resp := <-waiter:
			return resp, nil
		default:
		}

		c.recvMu.Lock()
		// Another exchange's read may have routed our response here
		// while we waited for the lock.
		select {
		case resp := <-waiter:
			c.recvMu.Unlock()
			return resp, nil
		default:
		}
		frame, err := ch.Receive(ctx)
		c.recvMu.Unlock()
		if err != nil {
			select {
			case resp := <-waiter:
				return resp, nil
			default:
			}
			return nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
		}
		env, err := framing.Decode(bytes.NewReader(frame))
		if err != nil {
			return nil, err
		}

		if env.CorrelationId == correlationId && !protocol.IsPushType(env.MessageType) {
			return env, nil
		}

		if protocol.IsPushType(env.MessageType) {
			c.deliverPush(env)
			continue
		}

		c.mu.Lock()
		other, ok := c.pending[env.CorrelationId]
		c.mu.Unlock()
		if ok {
			select {
			case other <- env:
			default:
			}
			continue
		}

		log.Printf("planwright sdk: discarding %s with unknown correlation id %s", env.MessageType, env.CorrelationId)
	}
}

func (c *Client) deliverPush(env *protocol.Envelope) {
	c.notifyMu.RLock()
	fn := c.onPush
	c.notifyMu.RUnlock()
	if fn != nil {
		fn(env)
	}
}

// SendLayoutRequest sends a layout_generation_request and awaits its
// response. It returns nil when communication fails; callers must
// branch on absence of a result.
func (c *Client) SendLayoutRequest(ctx context.Context, req protocol.LayoutGenerationRequest) *protocol.LayoutGenerationResponse {
	env, err := protocol.NewRequest(protocol.TypeLayoutGenerationRequest, req)
	if err != nil {
		return nil
	}
	resp, err := c.Exchange(ctx, env, protocol.TypeLayoutGenerationResponse)
	if err != nil {
		log.Printf("planwright sdk: layout request failed: %v", err)
		return nil
	}
	var payload protocol.LayoutGenerationResponse
	if err := resp.DecodePayload(&payload); err != nil {
		return nil
	}
	return &payload
}

// ReceiveLayoutResponse blocks for the next envelope on the pipe and
// decodes it as a layout_generation_response, nil when the next frame
// is anything else.
func (c *Client) ReceiveLayoutResponse(ctx context.Context) *protocol.LayoutGenerationResponse {
	env := c.ReceiveMessage(ctx)
	if env == nil || env.MessageType != protocol.TypeLayoutGenerationResponse {
		return nil
	}
	var payload protocol.LayoutGenerationResponse
	if err := env.DecodePayload(&payload); err != nil {
		return nil
	}
	return &payload
}

// RequestValidation sends a validation_request for an existing layout
// and awaits its response, nil on failure.
func (c *Client) RequestValidation(ctx context.Context, req protocol.ValidationRequest) *protocol.ValidationResponse {
	env, err := protocol.NewRequest(protocol.TypeValidationRequest, req)
	if err != nil {
		return nil
	}
	resp, err := c.Exchange(ctx, env, protocol.TypeValidationResponse)
	if err != nil {
		log.Printf("planwright sdk: validation request failed: %v", err)
		return nil
	}
	var payload protocol.ValidationResponse
	if err := resp.DecodePayload(&payload); err != nil {
		return nil
	}
	return &payload
}

// SendProjectAnalysis sends a project_analysis_request and awaits its
// response, nil on failure.
func (c *Client) SendProjectAnalysis(ctx context.Context, req protocol.ProjectAnalysisRequest) *protocol.ProjectAnalysisResponse {
	env, err := protocol.NewRequest(protocol.TypeProjectAnalysisRequest, req)
	if err != nil {
		return nil
	}
	resp, err := c.Exchange(ctx, env, protocol.TypeProjectAnalysisResponse)
	if err != nil {
		log.Printf("planwright sdk: project analysis failed: %v", err)
		return nil
	}
	var payload protocol.ProjectAnalysisResponse
	if err := resp.DecodePayload(&payload); err != nil {
		return nil
	}
	return &payload
}

// HealthCheck sends a health_check and returns the response, nil on
// failure.
func (c *Client) HealthCheck(ctx context.Context) *protocol.HealthCheckResponse {
	env, err := protocol.NewRequest(protocol.TypeHealthCheck, nil)
	if err != nil {
		return nil
	}
	resp, err := c.Exchange(ctx, env, protocol.TypeHealthCheckResponse)
	if err != nil {
		return nil
	}
	var payload protocol.HealthCheckResponse
	if err := resp.DecodePayload(&payload); err != nil {
		return nil
	}
	return &payload
}

// IsDesktopAppAvailable probes both transports with short timeouts and
// returns true on the first success.
func (c *Client) IsDesktopAppAvailable(ctx context.Context) bool {
	r := retry.New[bool](retry.Config{
		MaxAttempts:   c.opts.maxAttempts,
		InitialDelay:  c.opts.initialDelay,
		BackoffPolicy: retry.BackoffExponential,
	})
	ok, err := r.Do(ctx, func(ctx context.Context) (bool, error) {
		probeCtx, cancel := context.WithTimeout(ctx, 2*time.Second)
		defer cancel()

		probe := transport.NewPipeChannel(c.opts.socketPath, 2*time.Second)
		if err := probe.Connect(probeCtx); err == nil {
			probe.Close()
			return true, nil
		}
		if c.http.Healthy(probeCtx) {
			return true, nil
		}
		return false, ErrUnavailable
	})
	return err == nil && ok
}
