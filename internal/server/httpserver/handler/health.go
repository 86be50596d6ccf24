package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/yndnr/ssmproxy-go/internal/core/domain"
	"github.com/yndnr/ssmproxy-go/internal/infra/buildinfo"
)

const readyTimeout = 2 * time.Second

// handleHealth handles GET /health.
func (h *Handler) handleHealth(w http.ResponseWriter, r *http.Request) {
	h.writeJSON(w, r, http.StatusOK, map[string]any{
		"status":    "healthy",
		"receivers": h.receivers.Len(),
		"time":      time.Now().UTC().Format(time.RFC3339),
	})
}

// handleReady handles GET /ready. The journal backend must answer a ping.
func (h *Handler) handleReady(w http.ResponseWriter, r *http.Request) {
	if h.journal != nil {
		ctx, cancel := context.WithTimeout(r.Context(), readyTimeout)
		defer cancel()
		if err := h.journal.Ping(ctx); err != nil {
			h.writeError(w, r, http.StatusServiceUnavailable, domain.ErrServiceUnavailable.Code,
				"journal unavailable", map[string]string{"error": err.Error()})
			return
		}
	}
	h.writeJSON(w, r, http.StatusOK, map[string]string{
		"status": "ready",
		"time":   time.Now().UTC().Format(time.RFC3339),
	})
}

// handleVersion handles GET /version.
func (h *Handler) handleVersion(w http.ResponseWriter, r *http.Request) {
	h.writeJSON(w, r, http.StatusOK, buildinfo.Get())
}
