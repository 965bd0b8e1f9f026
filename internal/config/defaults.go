package config

// Default upstream endpoints, in priority order. The primary Code Assist
// endpoint is tried first; the sandbox endpoint is the failover target.
var defaultEndpoints = []string{
	"https://cloudcode-pa.googleapis.com/v1internal:streamGenerateContent?alt=sse",
	"https://daily-cloudcode-pa.sandbox.googleapis.com/v1internal:streamGenerateContent?alt=sse",
}

const (
	defaultPort                 = 8965
	defaultMinRequestIntervalMS = 500
	defaultDialTimeoutSec       = 20
	defaultRequestTimeoutSec    = 600
	defaultInboundRPS           = 10
	defaultInboundBurst         = 20
)

// Default returns a configuration populated with built-in defaults.
func Default() *Config {
	eps := make([]string, len(defaultEndpoints))
	copy(eps, defaultEndpoints)
	return &Config{
		Port:                  defaultPort,
		Endpoints:             eps,
		MinRequestIntervalMS:  defaultMinRequestIntervalMS,
		DialTimeoutSec:        defaultDialTimeoutSec,
		RequestTimeoutSec:     defaultRequestTimeoutSec,
		InboundRateLimitRPS:   defaultInboundRPS,
		InboundRateLimitBurst: defaultInboundBurst,
	}
}
