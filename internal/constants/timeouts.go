package constants

import "time"

const (
	// DefaultDialTimeout bounds TCP connection establishment to an endpoint.
	DefaultDialTimeout = 20 * time.Second
	// DefaultTLSHandshakeTimeout bounds the TLS handshake with an endpoint.
	DefaultTLSHandshakeTimeout = 10 * time.Second
	// DefaultRequestTimeout is the overall per-attempt deadline, including
	// reading the full (possibly streamed) response body.
	DefaultRequestTimeout = 600 * time.Second
	// DefaultMinRequestInterval is the minimum spacing between dispatch
	// starts toward the upstream provider.
	DefaultMinRequestInterval = 500 * time.Millisecond
	// ServerShutdownTimeout bounds graceful HTTP server shutdown.
	ServerShutdownTimeout = 30 * time.Second
)
