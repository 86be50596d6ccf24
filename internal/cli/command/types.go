package command

import (
	"time"

	"github.com/yndnr/ssmproxy-go/internal/core/domain"
)

// Server response bodies, as far as the CLI reads them.

type receiverStatus struct {
	ReceiverID string                  `json:"receiver_id"`
	Generation uint64                  `json:"generation"`
	Policy     domain.PlaybackPolicy   `json:"policy"`
	Session    *domain.SessionSnapshot `json:"session,omitempty"`
}

type receiverList struct {
	Items []receiverStatus `json:"items"`
	Total int              `json:"total"`
}

type errorInfo struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

type loadResponse struct {
	ReceiverID string                `json:"receiver_id"`
	Created    bool                  `json:"created"`
	Generation uint64                `json:"generation"`
	Policy     domain.PlaybackPolicy `json:"policy"`
	SessionID  string                `json:"session_id,omitempty"`
	SetupError *errorInfo            `json:"setup_error,omitempty"`
}

type teardownResponse struct {
	ReceiverID string                  `json:"receiver_id"`
	Session    *domain.SessionSnapshot `json:"session,omitempty"`
}

type sessionRecord struct {
	SessionID  string              `json:"session_id"`
	ReceiverID string              `json:"receiver_id"`
	Generation uint64              `json:"generation"`
	Endpoint   string              `json:"endpoint"`
	State      domain.SessionState `json:"state"`
	Protected  bool                `json:"protected"`
	HasToken   bool                `json:"has_session_token"`
	Renewals   int                 `json:"renewals"`
	LastEvent  string              `json:"last_event"`
	LastError  string              `json:"last_error,omitempty"`
	CreatedAt  time.Time           `json:"created_at"`
	UpdatedAt  time.Time           `json:"updated_at"`
}

type sessionList struct {
	Items []sessionRecord `json:"items"`
	Total int             `json:"total"`
}
