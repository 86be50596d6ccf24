package handler

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/yndnr/ssmproxy-go/internal/core/domain"
	"github.com/yndnr/ssmproxy-go/internal/core/receiver"
	"github.com/yndnr/ssmproxy-go/internal/telemetry/logger"
)

func (h *Handler) decodeLoad(w http.ResponseWriter, r *http.Request) (*domain.LoadRequest, bool) {
	var req domain.LoadRequest
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, MaxLoadBodyBytes))
	if err := dec.Decode(&req); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			h.writeError(w, r, http.StatusRequestEntityTooLarge, domain.ErrBadRequest.Code, "load request too large", nil)
			return nil, false
		}
		h.writeError(w, r, http.StatusBadRequest, domain.ErrBadRequest.Code, "invalid load request body",
			map[string]string{"error": err.Error()})
		return nil, false
	}
	return &req, true
}

func (h *Handler) load(w http.ResponseWriter, r *http.Request, id string, status int) {
	req, ok := h.decodeLoad(w, r)
	if !ok {
		return
	}
	ctx := logger.WithReceiverID(r.Context(), id)

	if err := h.receivers.CheckEndpoints(req); err != nil {
		h.handleServiceError(w, r, err)
		return
	}
	coord, created, err := h.receivers.GetOrCreate(id)
	if err != nil {
		h.handleServiceError(w, r, err)
		return
	}
	if created {
		logger.L(ctx).Info("receiver registered")
	}

	res := coord.OnLoadRequest(ctx, req)
	if created && status == http.StatusOK {
		status = http.StatusCreated
	}
	h.writeJSON(w, r, status, newLoadResponse(id, created, res))
}

// handleCreateReceiver handles POST /v1/receivers. The receiver ID is
// generated and the body is its first load request.
func (h *Handler) handleCreateReceiver(w http.ResponseWriter, r *http.Request) {
	h.load(w, r, receiver.NewID(), http.StatusCreated)
}

// handleLoad handles POST /v1/receivers/{receiver_id}/load.
func (h *Handler) handleLoad(w http.ResponseWriter, r *http.Request) {
	h.load(w, r, r.PathValue("receiver_id"), http.StatusOK)
}

// handleGetReceiver handles GET /v1/receivers/{receiver_id}.
func (h *Handler) handleGetReceiver(w http.ResponseWriter, r *http.Request) {
	coord, err := h.receivers.Get(r.PathValue("receiver_id"))
	if err != nil {
		h.handleServiceError(w, r, err)
		return
	}
	h.writeJSON(w, r, http.StatusOK, coord.Status())
}

// handleListReceivers handles GET /v1/receivers.
func (h *Handler) handleListReceivers(w http.ResponseWriter, r *http.Request) {
	items := h.receivers.List()
	h.writeJSON(w, r, http.StatusOK, ListReceiversResponse{Items: items, Total: len(items)})
}

// handleTeardown handles POST /v1/receivers/{receiver_id}/teardown.
func (h *Handler) handleTeardown(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("receiver_id")
	coord, err := h.receivers.Get(id)
	if err != nil {
		h.handleServiceError(w, r, err)
		return
	}
	if err := coord.Teardown(r.Context()); err != nil {
		h.handleServiceError(w, r, err)
		return
	}
	h.writeJSON(w, r, http.StatusOK, TeardownResponse{ReceiverID: id, Session: coord.Status().Session})
}

// handleRemoveReceiver handles DELETE /v1/receivers/{receiver_id}.
func (h *Handler) handleRemoveReceiver(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("receiver_id")
	err := h.receivers.Remove(r.Context(), id)
	if errors.Is(err, domain.ErrReceiverNotFound) {
		h.handleServiceError(w, r, err)
		return
	}
	if err != nil {
		// The receiver is gone even though the backend refused the teardown.
		logger.L(r.Context()).Warn("receiver removed with teardown failure", "receiver_id", id, "error", err)
	}
	w.WriteHeader(http.StatusNoContent)
}
