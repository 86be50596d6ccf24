package handler

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/yndnr/ssmproxy-go/internal/core/domain"
	"github.com/yndnr/ssmproxy-go/internal/core/forward"
	"github.com/yndnr/ssmproxy-go/internal/core/receiver"
	"github.com/yndnr/ssmproxy-go/internal/storage/journal"
	"github.com/yndnr/ssmproxy-go/internal/telemetry/logger"
	"github.com/yndnr/ssmproxy-go/internal/telemetry/metric"
)

// Request and response headers used by the license relay.
const (
	HeaderLicenseURL   = "X-License-URL"
	HeaderRequestKind  = "X-Ssmproxy-Request-Kind"
	HeaderResponseKind = "X-Ssmproxy-Response-Kind"
	HeaderRequestID    = "X-Request-ID"
	HeaderErrorCode    = "X-Error-Code"
)

// Body size limits.
const (
	MaxLoadBodyBytes      = 64 << 10
	MaxChallengeBodyBytes = 1 << 20
)

// Deps are the collaborators a Handler serves.
type Deps struct {
	Receivers *receiver.Registry
	Forwarder *forward.Forwarder

	// Journal is optional; without it the session routes answer 503.
	Journal journal.Store

	// Metrics is optional; without it /metrics is not registered.
	Metrics *metric.Registry

	Logger *slog.Logger
}

// Handler routes API requests.
type Handler struct {
	receivers *receiver.Registry
	forwarder *forward.Forwarder
	journal   journal.Store
	metrics   *metric.Registry
	logger    *slog.Logger
	mux       *http.ServeMux
}

// New creates a Handler.
func New(d Deps) *Handler {
	h := &Handler{
		receivers: d.Receivers,
		forwarder: d.Forwarder,
		journal:   d.Journal,
		metrics:   d.Metrics,
		logger:    d.Logger,
		mux:       http.NewServeMux(),
	}
	if h.logger == nil {
		h.logger = slog.Default()
	}
	if h.forwarder == nil {
		h.forwarder = forward.New()
	}
	h.registerRoutes()
	return h
}

// ServeHTTP implements http.Handler.
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	h.mux.ServeHTTP(w, r)
}

func (h *Handler) registerRoutes() {
	h.mux.HandleFunc("GET /health", h.handleHealth)
	h.mux.HandleFunc("GET /ready", h.handleReady)
	h.mux.HandleFunc("GET /version", h.handleVersion)
	if h.metrics != nil {
		h.mux.Handle("GET /metrics", h.metrics.Handler())
	}

	h.mux.HandleFunc("GET /v1/receivers", h.handleListReceivers)
	h.mux.HandleFunc("POST /v1/receivers", h.handleCreateReceiver)
	h.mux.HandleFunc("GET /v1/receivers/{receiver_id}", h.handleGetReceiver)
	h.mux.HandleFunc("DELETE /v1/receivers/{receiver_id}", h.handleRemoveReceiver)
	h.mux.HandleFunc("POST /v1/receivers/{receiver_id}/load", h.handleLoad)
	h.mux.HandleFunc("POST /v1/receivers/{receiver_id}/license", h.handleLicense)
	h.mux.HandleFunc("POST /v1/receivers/{receiver_id}/teardown", h.handleTeardown)

	h.mux.HandleFunc("GET /v1/sessions", h.handleListSessions)
	h.mux.HandleFunc("GET /v1/sessions/{session_id}", h.handleGetSession)
}

// writeJSON writes a success envelope.
func (h *Handler) writeJSON(w http.ResponseWriter, r *http.Request, status int, data any) {
	requestID := getRequestID(r)
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(NewResponse(requestID, data)); err != nil {
		h.logger.Error("failed to encode response", "error", err)
	}
}

// writeError writes an error envelope.
func (h *Handler) writeError(w http.ResponseWriter, r *http.Request, status int, code, message string, details any) {
	requestID := getRequestID(r)
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set(HeaderErrorCode, code)
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(NewErrorResponse(requestID, code, message, details))
}

// handleServiceError converts an error into an error envelope.
func (h *Handler) handleServiceError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, context.DeadlineExceeded):
		h.writeError(w, r, http.StatusGatewayTimeout, domain.ErrServiceUnavailable.Code, "deadline exceeded", nil)
		return
	case errors.Is(err, context.Canceled):
		// Client went away; nobody reads this.
		h.writeError(w, r, http.StatusServiceUnavailable, domain.ErrServiceUnavailable.Code, "request canceled", nil)
		return
	}

	var de *domain.DomainError
	if errors.As(err, &de) {
		status := errorCodeToHTTPStatus(de.Code)
		if status >= http.StatusInternalServerError {
			logger.L(r.Context()).Error("request failed", "error", err)
		}
		h.writeError(w, r, status, de.Code, de.Error(), nil)
		return
	}

	logger.L(r.Context()).Error("internal error", "error", err)
	h.writeError(w, r, http.StatusInternalServerError, domain.ErrInternalServer.Code, "internal server error", nil)
}

// errorCodeToHTTPStatus maps domain error codes to HTTP status codes. The
// numeric suffix carries the HTTP meaning.
func errorCodeToHTTPStatus(code string) int {
	switch {
	case strings.HasSuffix(code, "-4040"), strings.HasSuffix(code, "-4041"):
		return http.StatusNotFound
	case strings.HasSuffix(code, "-4042"),
		strings.HasSuffix(code, "-4090"), strings.HasSuffix(code, "-4091"), strings.HasSuffix(code, "-4092"):
		return http.StatusConflict
	case strings.HasSuffix(code, "-4290"):
		return http.StatusTooManyRequests
	case strings.HasSuffix(code, "-4030"):
		return http.StatusForbidden
	case strings.HasSuffix(code, "-4000"), strings.HasSuffix(code, "-4001"), strings.HasSuffix(code, "-4002"):
		return http.StatusBadRequest
	case strings.HasPrefix(code, "SSM-ARG-"):
		return http.StatusBadRequest
	case strings.HasSuffix(code, "-5020"), strings.HasSuffix(code, "-5021"), strings.HasSuffix(code, "-5022"):
		return http.StatusBadGateway
	case strings.HasSuffix(code, "-5030"):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

func getRequestID(r *http.Request) string {
	if id := logger.RequestIDFromContext(r.Context()); id != "" {
		return id
	}
	return r.Header.Get(HeaderRequestID)
}
