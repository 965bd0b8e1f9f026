package proxy

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"antiproxy-go/internal/dispatch"
)

// ProxyRequest is the inbound JSON envelope from the local caller.
type ProxyRequest struct {
	Model       string          `json:"model" binding:"required"`
	Project     string          `json:"project" binding:"required"`
	AccessToken string          `json:"access_token" binding:"required"`
	Request     json.RawMessage `json:"request" binding:"required"`
}

// ProxyResponse is the outbound JSON envelope to the local caller.
// StatusCode is omitted on success.
type ProxyResponse struct {
	Success    bool    `json:"success"`
	Data       *string `json:"data"`
	Error      *string `json:"error"`
	StatusCode *int    `json:"status_code,omitempty"`
}

// Handler serves the forwarding routes.
type Handler struct {
	dispatcher *dispatch.Dispatcher
}

// New creates the handler around a dispatcher.
func New(d *dispatch.Dispatcher) *Handler {
	return &Handler{dispatcher: d}
}

// Proxy handles POST /proxy: parse the envelope, run one dispatch sequence,
// and translate its terminal outcome back into the response envelope.
func (h *Handler) Proxy(c *gin.Context) {
	var req ProxyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		msg := "invalid request: " + err.Error()
		c.JSON(http.StatusBadRequest, ProxyResponse{
			Success:    false,
			Error:      &msg,
			StatusCode: intPtr(http.StatusBadRequest),
		})
		return
	}
	c.Set("model", req.Model)

	outcome := h.dispatcher.Dispatch(c.Request.Context(), dispatch.Request{
		Model:       req.Model,
		Project:     strings.TrimSpace(req.Project),
		AccessToken: req.AccessToken,
		Payload:     req.Request,
	})
	status, resp := toResponse(outcome)
	c.JSON(status, resp)
}

// Health handles GET /health.
func (h *Handler) Health(c *gin.Context) {
	c.String(http.StatusOK, "OK")
}

// toResponse maps a terminal outcome onto the HTTP status and response
// envelope. Terminal upstream failures mirror the upstream status code and
// carry the raw upstream body unchanged.
func toResponse(o dispatch.Outcome) (int, ProxyResponse) {
	switch o.Kind {
	case dispatch.OutcomeSuccess:
		data := string(o.Body)
		return http.StatusOK, ProxyResponse{Success: true, Data: &data}
	case dispatch.OutcomeExhausted:
		msg := dispatch.ExhaustedMessage
		return http.StatusServiceUnavailable, ProxyResponse{
			Success:    false,
			Error:      &msg,
			StatusCode: intPtr(http.StatusServiceUnavailable),
		}
	default:
		status := safeStatus(o.StatusCode)
		errText := string(o.Body)
		return status, ProxyResponse{
			Success:    false,
			Error:      &errText,
			StatusCode: intPtr(status),
		}
	}
}

func safeStatus(status int) int {
	if status < 100 || status > 599 {
		return http.StatusInternalServerError
	}
	return status
}

func intPtr(v int) *int { return &v }
