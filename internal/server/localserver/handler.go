package localserver

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/yndnr/ssmproxy-go/internal/core/domain"
	"github.com/yndnr/ssmproxy-go/internal/server/httpserver/handler"
	"github.com/yndnr/ssmproxy-go/internal/telemetry/logger"
)

// Options are the hooks the admin routes call. Both are optional.
type Options struct {
	// Status adds fields to GET /admin/status.
	Status func() map[string]any

	// Reload re-reads the configuration.
	Reload func() error
}

type adminHandler struct {
	mux     *http.ServeMux
	opts    Options
	started time.Time
}

// NewHandler serves the admin routes and passes everything else to api.
func NewHandler(api http.Handler, opts Options) http.Handler {
	h := &adminHandler{mux: http.NewServeMux(), opts: opts, started: time.Now()}
	h.mux.HandleFunc("GET /admin/status", h.status)
	h.mux.HandleFunc("POST /admin/reload", h.reload)
	h.mux.HandleFunc("PUT /admin/log-level", h.setLogLevel)
	h.mux.Handle("/", api)
	return h.mux
}

func (h *adminHandler) status(w http.ResponseWriter, r *http.Request) {
	data := map[string]any{
		"started_at": h.started.UTC().Format(time.RFC3339),
		"uptime":     time.Since(h.started).Round(time.Second).String(),
		"log_level":  logger.GetLevel(),
	}
	if h.opts.Status != nil {
		for k, v := range h.opts.Status() {
			data[k] = v
		}
	}
	writeJSON(w, r, http.StatusOK, data)
}

func (h *adminHandler) reload(w http.ResponseWriter, r *http.Request) {
	if h.opts.Reload == nil {
		writeError(w, r, http.StatusServiceUnavailable, domain.ErrServiceUnavailable.Code, "no configuration file to reload")
		return
	}
	if err := h.opts.Reload(); err != nil {
		writeError(w, r, http.StatusUnprocessableEntity, domain.ErrInvalidArgument.Code, err.Error())
		return
	}
	writeJSON(w, r, http.StatusOK, map[string]string{"log_level": logger.GetLevel()})
}

type logLevelRequest struct {
	Level string `json:"level"`
}

func (h *adminHandler) setLogLevel(w http.ResponseWriter, r *http.Request) {
	var req logLevelRequest
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, 1<<10)).Decode(&req); err != nil {
		writeError(w, r, http.StatusBadRequest, domain.ErrBadRequest.Code, "invalid body")
		return
	}
	if !logger.ValidLevel(req.Level) {
		writeError(w, r, http.StatusBadRequest, domain.ErrInvalidArgument.Code, "unknown log level "+req.Level)
		return
	}
	prev := logger.GetLevel()
	logger.SetLevel(req.Level)
	logger.L(r.Context()).Info("log level changed", "from", prev, "to", logger.GetLevel())
	writeJSON(w, r, http.StatusOK, map[string]string{"log_level": logger.GetLevel(), "previous": prev})
}

func writeJSON(w http.ResponseWriter, r *http.Request, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(handler.NewResponse(logger.RequestIDFromContext(r.Context()), data))
}

func writeError(w http.ResponseWriter, r *http.Request, status int, code, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set(handler.HeaderErrorCode, code)
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(handler.NewErrorResponse(logger.RequestIDFromContext(r.Context()), code, message, nil))
}
