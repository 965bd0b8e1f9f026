package dispatch

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"
	"github.com/tidwall/sjson"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"antiproxy-go/internal/constants"
	"antiproxy-go/internal/logging"
	"antiproxy-go/internal/monitoring"
	"antiproxy-go/internal/monitoring/tracing"
	"antiproxy-go/internal/upstream"
)

// PostClient sends one forwarded request to an endpoint. Satisfied by
// *upstream.Client; tests substitute their own.
type PostClient interface {
	PostJSON(ctx context.Context, endpoint string, body []byte, bearer string) (*http.Response, error)
}

// Request is one inbound call to forward: the caller supplies the model,
// project, bearer token and an opaque request payload.
type Request struct {
	Model       string
	Project     string
	AccessToken string
	Payload     json.RawMessage
}

// Dispatcher serializes forwarded calls: it acquires the single-slot gate,
// waits on the rate limiter once, then walks the endpoint set in priority
// order until a terminal outcome.
type Dispatcher struct {
	endpoints []Endpoint
	gate      *Gate
	limiter   *Limiter
	client    PostClient
	timeout   time.Duration
}

// New builds a dispatcher over the given endpoint set.
func New(endpoints []Endpoint, limiter *Limiter, client PostClient, timeout time.Duration) *Dispatcher {
	if timeout <= 0 {
		timeout = constants.DefaultRequestTimeout
	}
	return &Dispatcher{
		endpoints: endpoints,
		gate:      NewGate(),
		limiter:   limiter,
		client:    client,
		timeout:   timeout,
	}
}

// Limiter returns the dispatcher's rate limiter, for config hot reload.
func (d *Dispatcher) Limiter() *Limiter { return d.limiter }

// Dispatch runs one full dispatch sequence and returns its terminal
// outcome. Exactly one terminal outcome (or Exhausted) is produced per
// call; non-terminal results only advance the endpoint loop.
//
// The sequence is not cancellable by the caller: once started it runs to a
// terminal outcome or until the per-attempt timeout elapses. A slow
// upstream therefore blocks every queued caller for up to that timeout.
// That backpressure is deliberate.
func (d *Dispatcher) Dispatch(ctx context.Context, req Request) Outcome {
	// Detach from the caller's context: a disconnecting caller must not
	// cancel a sequence that already spent its rate-limit slot. Trace and
	// log values are preserved.
	ctx = context.WithoutCancel(ctx)

	gateStart := time.Now()
	d.gate.Acquire()
	defer d.gate.Release()
	monitoring.GateWaitDuration.Observe(time.Since(gateStart).Seconds())
	monitoring.DispatchInFlight.Inc()
	defer monitoring.DispatchInFlight.Dec()

	spanCtx, span := tracing.StartSpan(ctx, "dispatch", "Dispatcher.Dispatch",
		trace.WithAttributes(
			attribute.String("dispatch.model", req.Model),
			attribute.Int("dispatch.endpoints", len(d.endpoints)),
		))
	defer span.End()
	ctx = spanCtx

	d.limiter.WaitTurn()

	// One request id per dispatch sequence; endpoint attempts reuse it.
	requestID := constants.RequestIDPrefix + uuid.NewString()
	body, err := buildWirePayload(req, requestID)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return Outcome{Kind: OutcomeBadRequest, StatusCode: http.StatusBadRequest, Body: []byte(err.Error())}
	}

	outcome := d.run(ctx, span, requestID, req.AccessToken, body)
	monitoring.DispatchOutcomesTotal.WithLabelValues(outcome.Kind.String()).Inc()
	if outcome.Kind == OutcomeSuccess {
		span.SetStatus(codes.Ok, "")
	} else {
		span.SetStatus(codes.Error, outcome.Kind.String())
	}
	span.SetAttributes(attribute.Int("dispatch.status_code", outcome.StatusCode))
	return outcome
}

func (d *Dispatcher) run(ctx context.Context, span trace.Span, requestID, bearer string, body []byte) Outcome {
	for _, ep := range d.endpoints {
		entry := log.WithFields(log.Fields{
			"request_id": requestID,
			"endpoint":   ep.Ordinal + 1,
			"endpoints":  len(d.endpoints),
			"url":        ep.URL,
		})
		entry.Info("trying endpoint")

		outcome := d.attempt(ctx, ep, body, bearer)
		span.AddEvent("attempt", trace.WithAttributes(
			attribute.Int("dispatch.endpoint", ep.Ordinal),
			attribute.Int("http.status_code", outcome.StatusCode),
			attribute.String("dispatch.outcome", outcome.Kind.String()),
		))
		monitoring.DispatchAttemptsTotal.WithLabelValues(ep.URL,
			logging.ErrorKind(outcome.StatusCode, outcome.Err != nil)).Inc()

		if outcome.Terminal() {
			switch outcome.Kind {
			case OutcomeSuccess:
				entry.Info("request successful")
			case OutcomeRateLimited:
				// Terminal here: throttling recovery (account rotation)
				// belongs to the caller, never to this process.
				entry.Warn("rate limited upstream, returning to caller")
			default:
				entry.WithField("status", outcome.StatusCode).Warn("terminal upstream error")
			}
			return outcome
		}

		if outcome.Err != nil {
			entry.WithError(outcome.Err).Warn("network error, trying next endpoint")
		} else {
			entry.WithField("status", outcome.StatusCode).Warn("server error, trying next endpoint")
		}
	}
	log.WithField("request_id", requestID).Error("all endpoints failed")
	return Outcome{Kind: OutcomeExhausted, StatusCode: http.StatusServiceUnavailable, Body: []byte(ExhaustedMessage)}
}

// ExhaustedMessage is the fixed error surfaced when every endpoint yields a
// transient failure. It is deliberately not tied to any single endpoint's
// status code.
const ExhaustedMessage = "All endpoints failed"

func (d *Dispatcher) attempt(ctx context.Context, ep Endpoint, body []byte, bearer string) Outcome {
	attemptCtx, cancel := context.WithTimeout(ctx, d.timeout)
	defer cancel()

	resp, err := d.client.PostJSON(attemptCtx, ep.URL, body, bearer)
	if err != nil {
		return Classify(0, nil, err)
	}
	respBody, readErr := upstream.ReadAll(resp)
	if readErr != nil {
		// A connection dropped mid-body is a transport failure, not a
		// truncated "success".
		return Classify(0, nil, readErr)
	}
	return Classify(resp.StatusCode, respBody, nil)
}

// buildWirePayload embeds the caller's opaque request in the fixed wire
// envelope expected by the upstream provider.
func buildWirePayload(req Request, requestID string) ([]byte, error) {
	body := []byte(`{}`)
	var err error
	if body, err = sjson.SetBytes(body, "model", req.Model); err != nil {
		return nil, err
	}
	if body, err = sjson.SetBytes(body, "userAgent", constants.WireUserAgent); err != nil {
		return nil, err
	}
	if body, err = sjson.SetBytes(body, "requestType", constants.WireRequestType); err != nil {
		return nil, err
	}
	if body, err = sjson.SetBytes(body, "project", req.Project); err != nil {
		return nil, err
	}
	if body, err = sjson.SetBytes(body, "requestId", requestID); err != nil {
		return nil, err
	}
	payload := req.Payload
	if len(payload) == 0 {
		payload = json.RawMessage(`{}`)
	}
	if body, err = sjson.SetRawBytes(body, "request", payload); err != nil {
		return nil, err
	}
	return body, nil
}
