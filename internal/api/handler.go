package api

import (
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/gyaneshwarpardhi/sfdc-webhook/internal/config"
	"github.com/gyaneshwarpardhi/sfdc-webhook/internal/event"
	"github.com/gyaneshwarpardhi/sfdc-webhook/internal/integration"
	"github.com/gyaneshwarpardhi/sfdc-webhook/internal/message"
	"github.com/gyaneshwarpardhi/sfdc-webhook/internal/metrics"
	"github.com/gyaneshwarpardhi/sfdc-webhook/internal/parser"
)

// Transport-level names for the event type and the payload ID.
const (
	EventParam      = "event"
	EventHeader     = "X-Event-Type"
	RequestIDHeader = "X-Request-ID"
)

// Handler holds all HTTP handler dependencies.
type Handler struct {
	integ  *integration.Integration
	loader *config.Loader
	mux    *http.ServeMux
}

// New creates an HTTP handler and registers all routes.
func New(integ *integration.Integration, loader *config.Loader) http.Handler {
	h := &Handler{integ: integ, loader: loader, mux: http.NewServeMux()}

	h.mux.HandleFunc("POST /v1/webhooks/salesforce", h.ingestWebhook)
	h.mux.HandleFunc("GET /v1/settings", h.getSettings)
	h.mux.HandleFunc("POST /v1/settings/reload", h.reloadSettings)
	h.mux.HandleFunc("GET /healthz", h.healthz)
	h.mux.Handle("GET /metrics", promhttp.Handler())

	return loggingMiddleware(h.mux)
}

type webhookResponse struct {
	ID      string           `json:"id"`
	Event   string           `json:"event,omitempty"`
	Message *message.Message `json:"message"`
}

// POST /v1/webhooks/salesforce: synchronous parse of one Salesforce payload.
func (h *Handler) ingestWebhook(w http.ResponseWriter, r *http.Request) {
	if ct := r.Header.Get("Content-Type"); !h.integ.Accepts(ct) {
		writeError(w, http.StatusUnsupportedMediaType, fmt.Sprintf("content type %q not accepted", ct))
		return
	}

	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, h.loader.Config().Server.MaxBodyBytes))
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			writeError(w, http.StatusRequestEntityTooLarge, fmt.Sprintf("body exceeds %d bytes", tooLarge.Limit))
			return
		}
		writeError(w, http.StatusBadRequest, fmt.Sprintf("read body: %s", err))
		return
	}
	if len(body) == 0 {
		writeError(w, http.StatusBadRequest, "body is required")
		return
	}

	eventType, params := transportParams(r)
	id := r.Header.Get(RequestIDHeader)
	if id == "" {
		id = uuid.New().String()
	}
	p := event.New(id, eventType, body, params)
	metrics.WebhooksReceived.WithLabelValues(string(p.Format)).Inc()

	msg, ev, err := h.integ.ParseEvent(r.Context(), p)
	if err != nil {
		writePipelineError(w, id, err)
		return
	}
	writeJSON(w, http.StatusOK, webhookResponse{ID: id, Event: ev, Message: msg})
}

// transportParams splits the query into the declared event type and the
// remaining single-valued parameters.
func transportParams(r *http.Request) (string, map[string]string) {
	q := r.URL.Query()
	eventType := q.Get(EventParam)
	if eventType == "" {
		eventType = r.Header.Get(EventHeader)
	}
	params := make(map[string]string, len(q))
	for k := range q {
		if k != EventParam {
			params[k] = q.Get(k)
		}
	}
	return eventType, params
}

// statusFor maps pipeline errors onto HTTP status codes.
func statusFor(err error) int {
	switch {
	case errors.Is(err, parser.ErrNoParserForEvent):
		return http.StatusBadRequest
	case errors.Is(err, parser.ErrUnsupportedWireFormat):
		return http.StatusUnsupportedMediaType
	case errors.Is(err, parser.ErrParseFailure):
		return http.StatusUnprocessableEntity
	}
	// ErrNoFactoryForVersion and anything unexpected.
	return http.StatusInternalServerError
}

// GET /v1/settings: the loaded settings and the active parser set.
func (h *Handler) getSettings(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"settings":         h.loader.Config(),
		"document_version": h.integ.DocumentVersion(),
		"events":           h.integ.Events(),
	})
}

// POST /v1/settings/reload: re-read settings from disk and apply them.
// Rejected settings leave the running ones untouched.
func (h *Handler) reloadSettings(w http.ResponseWriter, r *http.Request) {
	if _, err := h.loader.Reload(); err != nil {
		status := http.StatusInternalServerError
		if errors.Is(err, config.ErrInvalid) {
			status = http.StatusUnprocessableEntity
		}
		writeError(w, status, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"reloaded":         true,
		"document_version": h.integ.DocumentVersion(),
		"integration":      h.integ.Settings().Name,
	})
}

// GET /healthz: always 200 (liveness check).
func (h *Handler) healthz(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
