package constants

import "time"

// HTTP client transport settings for the upstream connection pool.
const (
	MaxIdleConns        = 16
	MaxIdleConnsPerHost = 16
	IdleConnTimeout     = 90 * time.Second

	DefaultKeepAlive = 30 * time.Second
)

// ClientUserAgent identifies this client at the transport level on every
// upstream request.
const ClientUserAgent = "antigravity/1.15.8 windows/amd64"

// Wire envelope metadata sent with every forwarded request.
const (
	WireUserAgent   = "antigravity"
	WireRequestType = "agent"
	RequestIDPrefix = "agent-"
)
