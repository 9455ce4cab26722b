package sdk

import (
	"os"
	"path/filepath"
	"time"
)

type options struct {
	socketPath     string
	httpBaseURL    string
	connectTimeout time.Duration
	timeout        time.Duration
	maxAttempts    int
	initialDelay   time.Duration
}

func defaultOptions() options {
	return options{
		socketPath:     filepath.Join(os.TempDir(), "planwright.sock"),
		httpBaseURL:    "http://127.0.0.1:8177",
		connectTimeout: 5 * time.Second,
		timeout:        30 * time.Second,
		maxAttempts:    3,
		initialDelay:   500 * time.Millisecond,
	}
}

// Option configures the SDK client.
type Option func(*options)

// WithSocketPath sets the pipe transport endpoint.
func WithSocketPath(path string) Option {
	return func(o *options) { o.socketPath = path }
}

// WithHTTPBaseURL sets the HTTP fallback base URL.
func WithHTTPBaseURL(url string) Option {
	return func(o *options) { o.httpBaseURL = url }
}

// WithConnectTimeout bounds pipe connect attempts.
func WithConnectTimeout(d time.Duration) Option {
	return func(o *options) { o.connectTimeout = d }
}

// WithTimeout sets the per-exchange timeout.
func WithTimeout(d time.Duration) Option {
	return func(o *options) { o.timeout = d }
}

// WithRetry configures retry behaviour for availability probes.
func WithRetry(maxAttempts int, initialDelay time.Duration) Option {
	return func(o *options) {
		o.maxAttempts = maxAttempts
		o.initialDelay = initialDelay
	}
}
