package upstream

import (
	"bytes"
	"context"
	"net"
	"net/http"
	"net/url"
	"time"

	"antiproxy-go/internal/config"
	"antiproxy-go/internal/constants"
)

// Client wraps the HTTP client used for all endpoint attempts. The overall
// per-attempt deadline is carried by the request context; the transport
// bounds connect and TLS handshake separately.
type Client struct {
	cfg *config.Config
	cli *http.Client
}

// New builds an upstream client from configuration.
func New(cfg *config.Config) *Client {
	tr := &http.Transport{
		Proxy: getProxyFunc(cfg.ProxyURL),
		DialContext: (&net.Dialer{
			Timeout:   cfg.DialTimeout(),
			KeepAlive: constants.DefaultKeepAlive,
		}).DialContext,
		TLSHandshakeTimeout: constants.DefaultTLSHandshakeTimeout,
		MaxIdleConns:        constants.MaxIdleConns,
		MaxIdleConnsPerHost: constants.MaxIdleConnsPerHost,
		IdleConnTimeout:     constants.IdleConnTimeout,
	}
	return &Client{cfg: cfg, cli: &http.Client{Transport: tr, Timeout: 0}}
}

// getProxyFunc returns appropriate proxy function based on configuration
func getProxyFunc(proxyURL string) func(*http.Request) (*url.URL, error) {
	if proxyURL != "" {
		if parsedURL, err := url.Parse(proxyURL); err == nil {
			return http.ProxyURL(parsedURL)
		}
	}
	// Fall back to environment proxy
	return http.ProxyFromEnvironment
}

// PostJSON sends one forwarded request to the given endpoint with the
// caller-supplied bearer token.
//
// IMPORTANT: Caller is responsible for closing resp.Body if resp is non-nil
// and err is nil.
func (c *Client) PostJSON(ctx context.Context, endpoint string, body []byte, bearer string) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+bearer)
	req.Header.Set("Accept", "text/event-stream")
	req.Header.Set("User-Agent", constants.ClientUserAgent)
	return c.cli.Do(req)
}

// RequestTimeout exposes the configured overall per-attempt deadline.
func (c *Client) RequestTimeout() time.Duration {
	return c.cfg.RequestTimeout()
}
