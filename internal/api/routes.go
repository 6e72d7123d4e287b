package api

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/gorilla/mux"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gorilla/mux/otelmux"

	"lanagate/internal/models"
	"lanagate/internal/ratelimit"
)

// RouteOption configures optional route behavior.
type RouteOption func(*mux.Router)

// WithOTelMiddleware adds OpenTelemetry HTTP instrumentation middleware.
func WithOTelMiddleware(serviceName string) RouteOption {
	return func(r *mux.Router) {
		r.Use(otelmux.Middleware(serviceName,
			otelmux.WithFilter(func(r *http.Request) bool {
				return r.URL.Path != "/health" &&
					r.URL.Path != "/api/v1/health" &&
					r.URL.Path != "/metrics"
			}),
		))
	}
}

// LimiterFunc returns the admission middleware for an endpoint. SetupRoutes
// calls it once per proxied route; a nil LimiterFunc or a nil return value
// leaves the route unthrottled.
type LimiterFunc func(endpoint string) mux.MiddlewareFunc

// SetupRoutes configures the HTTP routes for the gateway
func SetupRoutes(handlers *Handlers, limit LimiterFunc, opts ...RouteOption) *mux.Router {
	router := mux.NewRouter()

	for _, opt := range opts {
		opt(router)
	}

	api := router.PathPrefix("/api/v1").Subrouter()

	api.Handle("/chat", limited(limit, ratelimit.EndpointChat, http.HandlerFunc(handlers.Chat))).Methods("POST")
	api.Handle("/lessons", limited(limit, ratelimit.EndpointLessons, http.HandlerFunc(handlers.GenerateLesson))).Methods("POST")
	api.Handle("/tts", limited(limit, ratelimit.EndpointTTS, http.HandlerFunc(handlers.Synthesize))).Methods("POST")
	api.Handle("/register", limited(limit, ratelimit.EndpointRegister, http.HandlerFunc(handlers.Register))).Methods("POST")

	// Health stays outside the admission check so orchestrator probes are
	// never throttled.
	router.HandleFunc("/health", handlers.HealthCheck).Methods("GET")
	router.HandleFunc("/api/v1/health", handlers.HealthCheck).Methods("GET")

	api.PathPrefix("").HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	}).Methods("OPTIONS")

	router.Use(loggingMiddleware)
	router.Use(recoveryMiddleware)

	router.MethodNotAllowedHandler = http.HandlerFunc(methodNotAllowedHandler)

	return router
}

// limited wraps a handler with its endpoint's admission middleware.
func limited(limit LimiterFunc, endpoint string, h http.Handler) http.Handler {
	if limit == nil {
		return h
	}
	if mw := limit(endpoint); mw != nil {
		return mw(h)
	}
	return h
}

// methodNotAllowedHandler handles requests with invalid HTTP methods
func methodNotAllowedHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusMethodNotAllowed)
	errorResp := models.NewErrorResponse("Method not allowed", models.ErrorCodeInvalidRequest)
	json.NewEncoder(w).Encode(errorResp)
}

// loggingMiddleware logs HTTP requests
func loggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		slog.Info("HTTP request",
			"method", r.Method,
			"path", r.URL.Path,
			"remote_addr", r.RemoteAddr)
		next.ServeHTTP(w, r)
	})
}

// recoveryMiddleware handles panics
func recoveryMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			if err := recover(); err != nil {
				slog.Error("Panic recovered", "error", err, "path", r.URL.Path)
				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(http.StatusInternalServerError)
				errorResp := models.NewErrorResponse("Internal server error", models.ErrorCodeInternalError)
				json.NewEncoder(w).Encode(errorResp)
			}
		}()
		next.ServeHTTP(w, r)
	})
}
