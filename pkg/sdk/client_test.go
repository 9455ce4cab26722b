package sdk

import (
	"context"
	"errors"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/planwright/planwright/internal/domain/protocol"
	"github.com/planwright/planwright/internal/infrastructure/httpapi"
	"github.com/planwright/planwright/internal/infrastructure/ipc"
	"github.com/planwright/planwright/internal/infrastructure/router"
)

func testRouter() *router.Router {
	r := router.New()
	r.Handle(protocol.TypeHealthCheck, func(ctx context.Context, env *protocol.Envelope) (string, interface{}, error) {
		return protocol.TypeHealthCheckResponse, protocol.HealthCheckResponse{Status: "healthy", Version: "test"}, nil
	})
	return r
}

// startPipeServer runs a pipe server for the test and returns its
// socket path.
func startPipeServer(t *testing.T, r *router.Router) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "sdk-test.sock")
	srv := ipc.NewServer(path, r, 5*time.Second)
	if err := srv.Listen(); err != nil {
		t.Fatalf("Listen() error = %v", err)
	}
	ctx, cancel := context.WithCancel(context.Background())
	go srv.Serve(ctx)
	t.Cleanup(func() {
		cancel()
		srv.Close()
	})
	return path
}

// startHTTPServer runs the fallback surface for the test and returns
// its base URL.
func startHTTPServer(t *testing.T, r *router.Router) (*httpapi.Server, string) {
	t.Helper()
	srv := httpapi.NewServer("127.0.0.1:0", r, "test")
	ts := httptest.NewServer(srv.Handler())
	t.Cleanup(ts.Close)
	return srv, ts.URL
}

func TestClient_HealthCheckOverPipe(t *testing.T) {
	path := startPipeServer(t, testRouter())
	c := NewClient(
		WithSocketPath(path),
		WithHTTPBaseURL("http://127.0.0.1:1"), // unreachable on purpose
		WithTimeout(5*time.Second),
	)
	defer c.Close()

	health := c.HealthCheck(context.Background())
	if health == nil {
		t.Fatal("HealthCheck() = nil, want response over pipe")
	}
	if health.Status != "healthy" {
		t.Errorf("Status = %q", health.Status)
	}
}

func TestClient_FallsBackToHTTP(t *testing.T) {
	_, baseURL := startHTTPServer(t, testRouter())
	c := NewClient(
		WithSocketPath(filepath.Join(t.TempDir(), "absent.sock")),
		WithHTTPBaseURL(baseURL),
		WithConnectTimeout(200*time.Millisecond),
		WithTimeout(5*time.Second),
	)
	defer c.Close()

	health := c.HealthCheck(context.Background())
	if health == nil {
		t.Fatal("HealthCheck() = nil, want response via HTTP fallback")
	}
	if health.Version != "test" {
		t.Errorf("Version = %q", health.Version)
	}
}

func TestClient_BothTransportsDown(t *testing.T) {
	c := NewClient(
		WithSocketPath(filepath.Join(t.TempDir(), "absent.sock")),
		WithHTTPBaseURL("http://127.0.0.1:1"),
		WithConnectTimeout(200*time.Millisecond),
		WithTimeout(time.Second),
	)
	defer c.Close()

	env, _ := protocol.NewRequest(protocol.TypeHealthCheck, nil)
	_, err := c.Exchange(context.Background(), env, protocol.TypeHealthCheckResponse)
	if !errors.Is(err, ErrUnavailable) {
		t.Errorf("Exchange() error = %v, want ErrUnavailable", err)
	}
}

func TestClient_ConcurrentExchanges(t *testing.T) {
	path := startPipeServer(t, testRouter())
	c := NewClient(
		WithSocketPath(path),
		WithHTTPBaseURL("http://127.0.0.1:1"),
		WithTimeout(5*time.Second),
	)
	defer c.Close()

	// Warm the pipe so every goroutine shares one connection.
	if c.HealthCheck(context.Background()) == nil {
		t.Fatal("warm-up HealthCheck() = nil")
	}

	const n = 4
	errs := make(chan error, n)
	for i := 0; i < n; i++ {
		go func() {
			env, _ := protocol.NewRequest(protocol.TypeHealthCheck, nil)
			resp, err := c.Exchange(context.Background(), env, protocol.TypeHealthCheckResponse)
			if err != nil {
				errs <- err
				return
			}
			if resp.CorrelationId != env.CorrelationId {
				errs <- errors.New("response routed to the wrong exchange")
				return
			}
			errs <- nil
		}()
	}
	for i := 0; i < n; i++ {
		if err := <-errs; err != nil {
			t.Errorf("concurrent Exchange failed: %v", err)
		}
	}
}

func TestClient_ErrorResponseSurfacesAsError(t *testing.T) {
	// A router without handlers answers everything with error_response.
	path := startPipeServer(t, router.New())
	c := NewClient(WithSocketPath(path), WithTimeout(5*time.Second))
	defer c.Close()

	env, _ := protocol.NewRequest(protocol.TypeHealthCheck, nil)
	_, err := c.Exchange(context.Background(), env, protocol.TypeHealthCheckResponse)
	if err == nil {
		t.Fatal("Exchange() should fail on an error_response")
	}
	if !strings.Contains(err.Error(), "unknown message type") {
		t.Errorf("error = %v", err)
	}
}

func TestClient_TypeMismatch(t *testing.T) {
	r := router.New()
	r.Handle(protocol.TypeHealthCheck, func(ctx context.Context, env *protocol.Envelope) (string, interface{}, error) {
		// Wrong response type for the request.
		return protocol.TypeValidationResponse, protocol.ValidationResponse{Success: true}, nil
	})
	path := startPipeServer(t, r)
	c := NewClient(WithSocketPath(path), WithTimeout(5*time.Second))
	defer c.Close()

	env, _ := protocol.NewRequest(protocol.TypeHealthCheck, nil)
	_, err := c.Exchange(context.Background(), env, protocol.TypeHealthCheckResponse)

	var mismatch *MismatchError
	if !errors.As(err, &mismatch) {
		t.Fatalf("Exchange() error = %v, want *MismatchError", err)
	}
	if mismatch.Got != protocol.TypeValidationResponse {
		t.Errorf("Got = %q", mismatch.Got)
	}
}

func TestClient_SendMessage(t *testing.T) {
	path := startPipeServer(t, testRouter())
	c := NewClient(WithSocketPath(path), WithTimeout(5*time.Second))
	defer c.Close()

	env, _ := protocol.NewRequest(protocol.TypeHealthCheck, nil)
	if !c.SendMessage(context.Background(), env) {
		t.Error("SendMessage() = false, want true with a live server")
	}
}

func TestClient_IsDesktopAppAvailable(t *testing.T) {
	c := NewClient(
		WithSocketPath(filepath.Join(t.TempDir(), "absent.sock")),
		WithHTTPBaseURL("http://127.0.0.1:1"),
		WithRetry(1, 10*time.Millisecond),
	)
	defer c.Close()
	if c.IsDesktopAppAvailable(context.Background()) {
		t.Error("IsDesktopAppAvailable() = true with nothing listening")
	}

	path := startPipeServer(t, testRouter())
	c2 := NewClient(WithSocketPath(path), WithRetry(1, 10*time.Millisecond))
	defer c2.Close()
	if !c2.IsDesktopAppAvailable(context.Background()) {
		t.Error("IsDesktopAppAvailable() = false with a live pipe server")
	}
}

func TestClient_IsDesktopAppAvailableViaHTTP(t *testing.T) {
	_, baseURL := startHTTPServer(t, testRouter())
	c := NewClient(
		WithSocketPath(filepath.Join(t.TempDir(), "absent.sock")),
		WithHTTPBaseURL(baseURL),
		WithRetry(1, 10*time.Millisecond),
	)
	defer c.Close()
	if !c.IsDesktopAppAvailable(context.Background()) {
		t.Error("IsDesktopAppAvailable() = false with a live HTTP fallback")
	}
}

func TestClient_ListenNotifications(t *testing.T) {
	srv, baseURL := startHTTPServer(t, testRouter())
	c := NewClient(WithHTTPBaseURL(baseURL))
	defer c.Close()

	received := make(chan *protocol.Envelope, 1)
	c.OnNotification(func(env *protocol.Envelope) {
		select {
		case received <- env:
		default:
		}
	})

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go c.ListenNotifications(ctx)

	// Push until the listener is attached and the envelope arrives.
	env, _ := protocol.NewEnvelope(protocol.TypeCompletionNotification, "corr-1", protocol.CompletionNotification{
		CorrelationId: "corr-1",
		Disposition:   "approved",
	})
	deadline := time.After(5 * time.Second)
	for {
		srv.Push(env)
		select {
		case got := <-received:
			if got.MessageType != protocol.TypeCompletionNotification {
				t.Errorf("MessageType = %q", got.MessageType)
			}
			return
		case <-deadline:
			t.Fatal("notification never delivered")
		case <-time.After(50 * time.Millisecond):
		}
	}
}
