package handler

import (
	"errors"
	"io"
	"net/http"
	"strconv"

	"github.com/yndnr/ssmproxy-go/internal/core/domain"
	"github.com/yndnr/ssmproxy-go/internal/core/forward"
	"github.com/yndnr/ssmproxy-go/internal/telemetry/logger"
)

// Request headers that steer the proxy and are never sent upstream.
var controlHeaders = []string{HeaderLicenseURL, HeaderRequestID, "Origin", "Referer", "Cookie"}

// handleLicense handles POST /v1/receivers/{receiver_id}/license.
//
// The body is the player's license challenge. The request is decorated by
// the receiver's coordinator, sent to the license server, and the license
// is unwrapped from any SSM envelope before it is returned. A non-2xx
// answer from the license server is relayed as is.
func (h *Handler) handleLicense(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("receiver_id")
	coord, err := h.receivers.Get(id)
	if err != nil {
		h.handleServiceError(w, r, err)
		return
	}
	ctx := logger.WithReceiverID(r.Context(), id)

	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, MaxChallengeBodyBytes))
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			h.writeError(w, r, http.StatusRequestEntityTooLarge, domain.ErrBadRequest.Code, "license challenge too large", nil)
			return
		}
		h.writeError(w, r, http.StatusBadRequest, domain.ErrBadRequest.Code, "failed to read license challenge", nil)
		return
	}

	in := &domain.LicenseRequest{
		URL:     r.Header.Get(HeaderLicenseURL),
		Headers: make(http.Header),
		Body:    body,
	}
	forward.CopyHeaders(in.Headers, r.Header)
	for _, k := range controlHeaders {
		in.Headers.Del(k)
	}

	ex, err := coord.TransformLicenseRequest(ctx, in)
	if err != nil {
		h.handleServiceError(w, r, err)
		return
	}
	out, kind := ex.Request, ex.Kind
	if out.URL == "" {
		h.handleServiceError(w, r, domain.ErrLicenseTargetUnknown)
		return
	}
	if err := h.receivers.AllowURL(out.URL); err != nil {
		h.handleServiceError(w, r, err)
		return
	}
	w.Header().Set(HeaderRequestKind, string(kind))

	resp, err := h.forwarder.Forward(ctx, out)
	if err != nil {
		if forward.IsTimeout(err) {
			h.writeError(w, r, http.StatusGatewayTimeout, domain.ErrLicenseUpstream.Code, "license server timed out", nil)
			return
		}
		h.handleServiceError(w, r, err)
		return
	}

	if !resp.OK() {
		logger.L(ctx).Warn("license server rejected request", "status", resp.StatusCode, "kind", kind)
		forward.CopyHeaders(w.Header(), resp.Headers)
		w.WriteHeader(resp.StatusCode)
		_, _ = w.Write(resp.Body)
		return
	}

	license, rkind := coord.TransformLicenseResponse(ctx, ex, resp.Body)
	w.Header().Set(HeaderResponseKind, string(rkind))
	w.Header().Set("Content-Type", domain.ContentTypeOctetStream)
	w.Header().Set("Content-Length", strconv.Itoa(len(license)))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(license)
}
