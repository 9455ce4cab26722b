package transport

import (
	"context"
	"errors"
	"io"
	"net"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/planwright/planwright/internal/domain/protocol"
	"github.com/planwright/planwright/internal/infrastructure/framing"
)

// echoListener accepts one connection and echoes each decoded frame
// back verbatim.
func echoListener(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "echo.sock")
	l, err := net.Listen("unix", path)
	if err != nil {
		t.Fatalf("Listen() error = %v", err)
	}
	t.Cleanup(func() { l.Close() })

	go func() {
		for {
			conn, err := l.Accept()
			if err != nil {
				return
			}
			go func(conn net.Conn) {
				defer conn.Close()
				for {
					env, err := framing.Decode(conn)
					if err != nil {
						return
					}
					if err := framing.Write(conn, env); err != nil {
						return
					}
				}
			}(conn)
		}
	}()
	return path
}

func TestPipeChannel_SendReceive(t *testing.T) {
	path := echoListener(t)
	ch := NewPipeChannel(path, time.Second)
	defer ch.Close()

	env, _ := protocol.NewRequest(protocol.TypeHealthCheck, nil)
	frame, _ := framing.Encode(env)

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	if err := ch.Send(ctx, frame); err != nil {
		t.Fatalf("Send() error = %v", err)
	}
	got, err := ch.Receive(ctx)
	if err != nil {
		t.Fatalf("Receive() error = %v", err)
	}
	// The channel returns the full frame, prefix included.
	if len(got) != len(frame) {
		t.Fatalf("len(got) = %d, want %d", len(got), len(frame))
	}
	if string(got) != string(frame) {
		t.Error("echoed frame differs from sent frame")
	}
}

func TestPipeChannel_ConnectFailure(t *testing.T) {
	ch := NewPipeChannel(filepath.Join(t.TempDir(), "absent.sock"), 200*time.Millisecond)
	defer ch.Close()

	err := ch.Connect(context.Background())
	if !errors.Is(err, ErrUnavailable) {
		t.Errorf("Connect() error = %v, want ErrUnavailable", err)
	}
}

func TestPipeChannel_ReceiveBeforeConnect(t *testing.T) {
	ch := NewPipeChannel(filepath.Join(t.TempDir(), "absent.sock"), 200*time.Millisecond)
	if _, err := ch.Receive(context.Background()); !errors.Is(err, ErrUnavailable) {
		t.Errorf("Receive() error = %v, want ErrUnavailable", err)
	}
}

func TestPipeChannel_TeardownOnPeerClose(t *testing.T) {
	path := echoListener(t)
	ch := NewPipeChannel(path, time.Second)

	env, _ := protocol.NewRequest(protocol.TypeHealthCheck, nil)
	frame, _ := framing.Encode(env)

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := ch.Send(ctx, frame); err != nil {
		t.Fatalf("Send() error = %v", err)
	}
	if _, err := ch.Receive(ctx); err != nil {
		t.Fatalf("Receive() error = %v", err)
	}
	ch.Close()

	// A fresh Send reconnects lazily.
	if err := ch.Send(ctx, frame); err != nil {
		t.Fatalf("Send() after Close error = %v", err)
	}
	ch.Close()
}

func TestPipeChannel_RejectsOversizeLengthHeader(t *testing.T) {
	path := filepath.Join(t.TempDir(), "corrupt.sock")
	l, err := net.Listen("unix", path)
	if err != nil {
		t.Fatalf("Listen() error = %v", err)
	}
	t.Cleanup(func() { l.Close() })

	go func() {
		conn, err := l.Accept()
		if err != nil {
			return
		}
		// A corrupt header claiming a near-4GiB body.
		conn.Write([]byte{0xff, 0xff, 0xff, 0xff})
	}()

	ch := NewPipeChannel(path, time.Second)
	defer ch.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := ch.Connect(ctx); err != nil {
		t.Fatalf("Connect() error = %v", err)
	}

	_, err = ch.Receive(ctx)
	if !errors.Is(err, ErrUnavailable) {
		t.Fatalf("Receive() error = %v, want ErrUnavailable for an oversize header", err)
	}
	if !strings.Contains(err.Error(), "exceeds limit") {
		t.Errorf("error = %v, want the length limit named", err)
	}
}

func TestHTTPChannel_SendReceive(t *testing.T) {
	var queued [][]byte
	mux := http.NewServeMux()
	mux.HandleFunc("POST /api/messages", func(w http.ResponseWriter, r *http.Request) {
		buf, _ := io.ReadAll(r.Body)
		queued = append(queued, buf)
		w.WriteHeader(http.StatusAccepted)
	})
	mux.HandleFunc("GET /api/messages", func(w http.ResponseWriter, r *http.Request) {
		if len(queued) == 0 {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		frame := queued[0]
		queued = queued[1:]
		w.Write(frame)
	})
	ts := httptest.NewServer(mux)
	defer ts.Close()

	ch := NewHTTPChannel(ts.URL, 5*time.Second)
	env, _ := protocol.NewRequest(protocol.TypeHealthCheck, nil)
	frame, _ := framing.Encode(env)

	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()

	if err := ch.Send(ctx, frame); err != nil {
		t.Fatalf("Send() error = %v", err)
	}
	got, err := ch.Receive(ctx)
	if err != nil {
		t.Fatalf("Receive() error = %v", err)
	}
	if string(got) != string(frame) {
		t.Error("received frame differs from sent frame")
	}
}

func TestHTTPChannel_ReceiveTimesOutOnEmptyQueue(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /api/messages", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	})
	ts := httptest.NewServer(mux)
	defer ts.Close()

	ch := NewHTTPChannel(ts.URL, 5*time.Second)
	ctx, cancel := context.WithTimeout(context.Background(), 400*time.Millisecond)
	defer cancel()

	if _, err := ch.Receive(ctx); !errors.Is(err, ErrUnavailable) {
		t.Errorf("Receive() error = %v, want ErrUnavailable after timeout", err)
	}
}

func TestHTTPChannel_SendUnreachable(t *testing.T) {
	ch := NewHTTPChannel("http://127.0.0.1:1", time.Second)
	if err := ch.Send(context.Background(), []byte{1, 0, 0, 0, '{'}); !errors.Is(err, ErrUnavailable) {
		t.Errorf("Send() error = %v, want ErrUnavailable", err)
	}
}

func TestHTTPChannel_Healthy(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
	ts := httptest.NewServer(mux)
	defer ts.Close()

	if !NewHTTPChannel(ts.URL, time.Second).Healthy(context.Background()) {
		t.Error("Healthy() = false against a live server")
	}
	if NewHTTPChannel("http://127.0.0.1:1", time.Second).Healthy(context.Background()) {
		t.Error("Healthy() = true against nothing")
	}
}
