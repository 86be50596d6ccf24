package handler

import (
	"errors"
	"time"

	"github.com/yndnr/ssmproxy-go/internal/core/domain"
	"github.com/yndnr/ssmproxy-go/internal/core/intercept"
	"github.com/yndnr/ssmproxy-go/internal/storage/journal"
)

// Response is the standard API response envelope. Every JSON answer uses
// it; /metrics and license bodies do not.
type Response struct {
	Code      string `json:"code"`
	Message   string `json:"message"`
	RequestID string `json:"request_id"`
	Timestamp int64  `json:"timestamp"`
	Data      any    `json:"data,omitempty"`
	Details   any    `json:"details,omitempty"`
}

// NewResponse creates a success response.
func NewResponse(requestID string, data any) *Response {
	return &Response{
		Code:      "OK",
		Message:   "Success",
		RequestID: requestID,
		Timestamp: time.Now().UnixMilli(),
		Data:      data,
	}
}

// NewErrorResponse creates an error response.
func NewErrorResponse(requestID, code, message string, details any) *Response {
	return &Response{
		Code:      code,
		Message:   message,
		RequestID: requestID,
		Timestamp: time.Now().UnixMilli(),
		Details:   details,
	}
}

// ErrorInfo describes a non-fatal failure inside a successful response.
type ErrorInfo struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func errorInfo(err error) *ErrorInfo {
	if err == nil {
		return nil
	}
	info := &ErrorInfo{Code: domain.ErrInternalServer.Code, Message: err.Error()}
	var de *domain.DomainError
	if errors.As(err, &de) {
		info.Code = de.Code
	}
	return info
}

// LoadResponse is the body of a load answer.
type LoadResponse struct {
	ReceiverID string                `json:"receiver_id"`
	Created    bool                  `json:"created"`
	Generation uint64                `json:"generation"`
	Policy     domain.PlaybackPolicy `json:"policy"`
	SessionID  string                `json:"session_id,omitempty"`
	SetupError *ErrorInfo            `json:"setup_error,omitempty"`

	// Request echoes the load request so the caller can hand it on to
	// the player unchanged.
	Request *domain.LoadRequest `json:"request"`
}

func newLoadResponse(id string, created bool, res intercept.LoadResult) LoadResponse {
	return LoadResponse{
		ReceiverID: id,
		Created:    created,
		Generation: res.Generation,
		Policy:     res.Policy,
		SessionID:  res.SessionID,
		SetupError: errorInfo(res.SetupErr),
		Request:    res.Request,
	}
}

// ListReceiversResponse is the body of GET /v1/receivers.
type ListReceiversResponse struct {
	Items []intercept.Status `json:"items"`
	Total int                `json:"total"`
}

// TeardownResponse is the body of a teardown answer.
type TeardownResponse struct {
	ReceiverID string                  `json:"receiver_id"`
	Session    *domain.SessionSnapshot `json:"session,omitempty"`
}

// ListSessionsResponse is the body of GET /v1/sessions.
type ListSessionsResponse struct {
	Items []*journal.Record `json:"items"`
	Total int               `json:"total"`
}
