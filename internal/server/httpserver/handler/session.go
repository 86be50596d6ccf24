package handler

import (
	"net/http"

	"github.com/yndnr/ssmproxy-go/internal/core/domain"
	"github.com/yndnr/ssmproxy-go/internal/storage/journal"
)

func (h *Handler) journalAvailable(w http.ResponseWriter, r *http.Request) bool {
	if h.journal == nil {
		h.writeError(w, r, http.StatusServiceUnavailable, domain.ErrServiceUnavailable.Code, "session journal disabled", nil)
		return false
	}
	return true
}

// handleListSessions handles GET /v1/sessions?receiver_id=.
func (h *Handler) handleListSessions(w http.ResponseWriter, r *http.Request) {
	if !h.journalAvailable(w, r) {
		return
	}
	recs, err := h.journal.List(r.Context(), r.URL.Query().Get("receiver_id"))
	if err != nil {
		h.handleServiceError(w, r, err)
		return
	}
	if recs == nil {
		recs = []*journal.Record{}
	}
	h.writeJSON(w, r, http.StatusOK, ListSessionsResponse{Items: recs, Total: len(recs)})
}

// handleGetSession handles GET /v1/sessions/{session_id}.
func (h *Handler) handleGetSession(w http.ResponseWriter, r *http.Request) {
	if !h.journalAvailable(w, r) {
		return
	}
	rec, err := h.journal.Get(r.Context(), r.PathValue("session_id"))
	if err != nil {
		h.handleServiceError(w, r, err)
		return
	}
	h.writeJSON(w, r, http.StatusOK, rec)
}
