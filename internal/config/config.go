package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"antiproxy-go/internal/constants"
)

// Config represents the runtime configuration loaded from file and
// environment overrides.
type Config struct {
	// Server settings
	Port    int    `yaml:"port" json:"port"`
	Debug   bool   `yaml:"debug" json:"debug"`
	LogFile string `yaml:"log_file" json:"log_file"`

	// Upstream settings
	Endpoints            []string `yaml:"endpoints" json:"endpoints"`
	MinRequestIntervalMS int      `yaml:"min_request_interval_ms" json:"min_request_interval_ms"`
	DialTimeoutSec       int      `yaml:"dial_timeout_sec" json:"dial_timeout_sec"`
	RequestTimeoutSec    int      `yaml:"request_timeout_sec" json:"request_timeout_sec"`
	ProxyURL             string   `yaml:"proxy_url" json:"proxy_url"`

	// Inbound guard settings (per-client, distinct from upstream spacing)
	InboundRateLimitEnabled bool `yaml:"inbound_rate_limit_enabled" json:"inbound_rate_limit_enabled"`
	InboundRateLimitRPS     int  `yaml:"inbound_rate_limit_rps" json:"inbound_rate_limit_rps"`
	InboundRateLimitBurst   int  `yaml:"inbound_rate_limit_burst" json:"inbound_rate_limit_burst"`
}

// MinRequestInterval returns the configured minimum spacing between
// dispatch starts.
func (c *Config) MinRequestInterval() time.Duration {
	if c.MinRequestIntervalMS <= 0 {
		return constants.DefaultMinRequestInterval
	}
	return time.Duration(c.MinRequestIntervalMS) * time.Millisecond
}

// DialTimeout returns the upstream connect timeout.
func (c *Config) DialTimeout() time.Duration {
	if c.DialTimeoutSec <= 0 {
		return constants.DefaultDialTimeout
	}
	return time.Duration(c.DialTimeoutSec) * time.Second
}

// RequestTimeout returns the overall per-attempt deadline.
func (c *Config) RequestTimeout() time.Duration {
	if c.RequestTimeoutSec <= 0 {
		return constants.DefaultRequestTimeout
	}
	return time.Duration(c.RequestTimeoutSec) * time.Second
}

// Validate checks invariants that would make the dispatcher inoperable.
func (c *Config) Validate() error {
	if len(c.Endpoints) == 0 {
		return fmt.Errorf("config: at least one upstream endpoint is required")
	}
	for i, ep := range c.Endpoints {
		ep = strings.TrimSpace(ep)
		if ep == "" {
			return fmt.Errorf("config: endpoint %d is empty", i)
		}
		u, err := url.Parse(ep)
		if err != nil || u.Scheme == "" || u.Host == "" {
			return fmt.Errorf("config: endpoint %d is not a valid URL: %q", i, ep)
		}
	}
	if c.MinRequestIntervalMS < 0 {
		return fmt.Errorf("config: min_request_interval_ms must not be negative")
	}
	if c.ProxyURL != "" {
		if _, err := url.Parse(c.ProxyURL); err != nil {
			return fmt.Errorf("config: invalid proxy_url: %w", err)
		}
	}
	return nil
}
