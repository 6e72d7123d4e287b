package api

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"lanagate/internal/models"
	"lanagate/internal/storage"
	"lanagate/internal/upstream"
)

// Backend is the subset of the upstream client used by the proxy handlers.
type Backend interface {
	Chat(ctx context.Context, req *models.ChatRequest) (*upstream.Result, error)
	GenerateLesson(ctx context.Context, req *models.LessonRequest) (*upstream.Result, error)
	Synthesize(ctx context.Context, req *models.TTSRequest) (*upstream.Result, error)
	Register(ctx context.Context, req *models.RegisterRequest) (*upstream.Result, error)
}

// Handlers contains HTTP handlers for the admission gateway API
type Handlers struct {
	store   storage.EventStore
	backend Backend
	started time.Time
}

// NewHandlers creates a new handlers instance
func NewHandlers(store storage.EventStore, backend Backend) *Handlers {
	return &Handlers{
		store:   store,
		backend: backend,
		started: time.Now(),
	}
}

// Chat handles tutoring chat requests
// POST /api/v1/chat
func (h *Handlers) Chat(w http.ResponseWriter, r *http.Request) {
	var req models.ChatRequest
	if !h.decodeAndValidate(w, r, &req) {
		return
	}

	result, err := h.backend.Chat(r.Context(), &req)
	h.relay(w, r, result, err)
}

// GenerateLesson handles lesson generation requests
// POST /api/v1/lessons
func (h *Handlers) GenerateLesson(w http.ResponseWriter, r *http.Request) {
	var req models.LessonRequest
	if !h.decodeAndValidate(w, r, &req) {
		return
	}

	result, err := h.backend.GenerateLesson(r.Context(), &req)
	h.relay(w, r, result, err)
}

// Synthesize handles text-to-speech requests
// POST /api/v1/tts
func (h *Handlers) Synthesize(w http.ResponseWriter, r *http.Request) {
	var req models.TTSRequest
	if !h.decodeAndValidate(w, r, &req) {
		return
	}

	result, err := h.backend.Synthesize(r.Context(), &req)
	h.relay(w, r, result, err)
}

// Register handles account registration requests
// POST /api/v1/register
func (h *Handlers) Register(w http.ResponseWriter, r *http.Request) {
	var req models.RegisterRequest
	if !h.decodeAndValidate(w, r, &req) {
		return
	}

	result, err := h.backend.Register(r.Context(), &req)
	h.relay(w, r, result, err)
}

// HealthCheck handles health check requests
// GET /health
func (h *Handlers) HealthCheck(w http.ResponseWriter, r *http.Request) {
	response := &models.HealthCheckResponse{
		Status:     models.StatusHealthy,
		Timestamp:  time.Now().UTC(),
		Uptime:     time.Since(h.started).Round(time.Second).String(),
		Components: make(map[string]models.ComponentHealth),
	}

	storeHealth := models.ComponentHealth{
		Status:    models.StatusHealthy,
		Message:   "Event store is operational",
		Timestamp: time.Now().UTC(),
	}
	if err := h.store.Ping(r.Context()); err != nil {
		// A degraded event log does not make the gateway unhealthy; admission
		// fails open and traffic still flows.
		storeHealth.Status = models.StatusUnhealthy
		storeHealth.Message = err.Error()
		response.Status = models.StatusDegraded
	}
	response.Components["event_store"] = storeHealth
	response.Components["api"] = models.ComponentHealth{
		Status:    models.StatusHealthy,
		Timestamp: time.Now().UTC(),
	}

	h.writeJSONResponse(w, http.StatusOK, response)
}

type validator interface {
	Validate() error
}

// decodeAndValidate parses the JSON request body and runs its validation,
// writing the error response itself on failure.
func (h *Handlers) decodeAndValidate(w http.ResponseWriter, r *http.Request, req validator) bool {
	if err := json.NewDecoder(r.Body).Decode(req); err != nil {
		h.writeErrorResponse(w, http.StatusBadRequest, models.ErrorCodeBadRequest, "Invalid JSON body")
		return false
	}
	if err := req.Validate(); err != nil {
		h.writeErrorResponse(w, http.StatusUnprocessableEntity, models.ErrorCodeValidation, err.Error())
		return false
	}
	return true
}

// relay writes the backend result through to the client, or a 502 when the
// backend could not be reached after retries.
func (h *Handlers) relay(w http.ResponseWriter, r *http.Request, result *upstream.Result, err error) {
	if err != nil {
		slog.Error("Upstream request failed", "path", r.URL.Path, "error", err)
		h.writeErrorResponse(w, http.StatusBadGateway, models.ErrorCodeUpstreamFailure,
			"AI backend is unavailable. Please try again later.")
		return
	}

	contentType := result.ContentType
	if contentType == "" {
		contentType = "application/json"
	}
	w.Header().Set("Content-Type", contentType)
	w.WriteHeader(result.StatusCode)
	if _, err := w.Write(result.Body); err != nil {
		slog.Error("Failed to write response body", "path", r.URL.Path, "error", err)
	}
}

// writeJSONResponse writes a JSON response
func (h *Handlers) writeJSONResponse(w http.ResponseWriter, statusCode int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)

	if err := json.NewEncoder(w).Encode(data); err != nil {
		// Headers are already written, nothing more to send to the client.
		slog.Error("Error encoding JSON response", "error", err)
	}
}

// writeErrorResponse writes an error response
func (h *Handlers) writeErrorResponse(w http.ResponseWriter, statusCode int, errorCode, message string) {
	h.writeJSONResponse(w, statusCode, models.NewErrorResponse(message, errorCode))
}
