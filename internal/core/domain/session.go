package domain

import (
	"crypto/rand"
	"strings"
	"time"

	"github.com/oklog/ulid/v2"
)

// SessionIDPrefix is the prefix for playback session IDs.
const SessionIDPrefix = "ssmps-"

// SessionState is the lifecycle state of an SSM playback session.
type SessionState string

const (
	// SessionUnestablished is the initial state, and the state kept after a failed setup.
	SessionUnestablished SessionState = "unestablished"

	// SessionEstablished means setup succeeded and a session token is held.
	SessionEstablished SessionState = "established"

	// SessionTornDown is terminal.
	SessionTornDown SessionState = "torn_down"
)

// IsTerminal reports whether no further transitions are possible.
func (s SessionState) IsTerminal() bool {
	return s == SessionTornDown
}

// SessionSnapshot is a point-in-time view of a playback session.
// It never carries token material.
type SessionSnapshot struct {
	ID               string       `json:"id"`
	Generation       uint64       `json:"generation"`
	Endpoint         string       `json:"endpoint"`
	State            SessionState `json:"state"`
	HasSessionToken  bool         `json:"has_session_token"`
	LicenseRequested bool         `json:"license_requested"`
	Renewals         int          `json:"renewals"`
	CreatedAt        time.Time    `json:"created_at"`
	EstablishedAt    time.Time    `json:"established_at,omitempty"`
	TornDownAt       time.Time    `json:"torn_down_at,omitempty"`
}

// GenerateSessionID generates a new playback session ID.
// Format: ssmps-{ulid_lowercase}.
func GenerateSessionID() (string, error) {
	entropy := ulid.Monotonic(rand.Reader, 0)
	id, err := ulid.New(ulid.Timestamp(time.Now()), entropy)
	if err != nil {
		return "", ErrInternalServer.WithCause(err)
	}
	return SessionIDPrefix + strings.ToLower(id.String()), nil
}
