package dispatch

import "net/http"

// OutcomeKind tags the classification of an endpoint attempt.
type OutcomeKind int

const (
	// OutcomeSuccess is a 2xx response; the body is returned verbatim.
	OutcomeSuccess OutcomeKind = iota
	// OutcomeRateLimited is a 429. Terminal: the caller handles throttling
	// (for example by rotating accounts); this process never retries it.
	OutcomeRateLimited
	// OutcomeBadRequest is a 400. Terminal: the request itself is broken,
	// another endpoint would reject it the same way.
	OutcomeBadRequest
	// OutcomeAuthError is a 401 or 403. Terminal.
	OutcomeAuthError
	// OutcomeServerError is a 5xx. Non-terminal: advance to the next
	// endpoint.
	OutcomeServerError
	// OutcomeTransportError is a connect/DNS/timeout failure before any
	// status code was received. Non-terminal: advance to the next endpoint.
	OutcomeTransportError
	// OutcomeOther is any remaining status code. Terminal.
	OutcomeOther
	// OutcomeExhausted is synthesized when every endpoint yielded a
	// non-terminal failure.
	OutcomeExhausted
)

// String returns a short label for logs and metrics.
func (k OutcomeKind) String() string {
	switch k {
	case OutcomeSuccess:
		return "success"
	case OutcomeRateLimited:
		return "rate_limited"
	case OutcomeBadRequest:
		return "bad_request"
	case OutcomeAuthError:
		return "auth_error"
	case OutcomeServerError:
		return "server_error"
	case OutcomeTransportError:
		return "transport_error"
	case OutcomeOther:
		return "other_error"
	case OutcomeExhausted:
		return "exhausted"
	}
	return "unknown"
}

// Outcome is the classified result of a dispatch sequence or of a single
// endpoint attempt.
type Outcome struct {
	Kind OutcomeKind
	// StatusCode is the upstream HTTP status, when one was received.
	StatusCode int
	// Body is the raw upstream response body, passed through unmodified.
	Body []byte
	// Err is the transport error for OutcomeTransportError.
	Err error
}

// Terminal reports whether this outcome stops endpoint iteration and is
// returned to the caller as-is. Non-terminal outcomes trigger failover to
// the next endpoint and never reach the caller directly.
func (o Outcome) Terminal() bool {
	switch o.Kind {
	case OutcomeServerError, OutcomeTransportError:
		return false
	}
	return true
}

// Classify maps one upstream attempt result to an Outcome. It is the entire
// business logic of the failover decision:
//
//	2xx               -> Success          (terminal)
//	429               -> RateLimited      (terminal, no failover)
//	400               -> BadRequest       (terminal)
//	401/403           -> AuthError        (terminal)
//	5xx               -> ServerError      (non-terminal, next endpoint)
//	transport failure -> TransportError   (non-terminal, next endpoint)
//	anything else     -> Other            (terminal)
//
// Note the asymmetry: throttling and client errors short-circuit failover
// while server and transport errors do not.
func Classify(status int, body []byte, err error) Outcome {
	if err != nil {
		return Outcome{Kind: OutcomeTransportError, Err: err}
	}
	switch {
	case status >= 200 && status < 300:
		return Outcome{Kind: OutcomeSuccess, StatusCode: status, Body: body}
	case status == http.StatusTooManyRequests:
		return Outcome{Kind: OutcomeRateLimited, StatusCode: status, Body: body}
	case status == http.StatusBadRequest:
		return Outcome{Kind: OutcomeBadRequest, StatusCode: status, Body: body}
	case status == http.StatusUnauthorized || status == http.StatusForbidden:
		return Outcome{Kind: OutcomeAuthError, StatusCode: status, Body: body}
	case status >= 500 && status < 600:
		return Outcome{Kind: OutcomeServerError, StatusCode: status}
	default:
		return Outcome{Kind: OutcomeOther, StatusCode: status, Body: body}
	}
}
