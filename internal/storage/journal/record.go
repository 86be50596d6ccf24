package journal

import (
	"context"
	"time"

	"github.com/yndnr/ssmproxy-go/internal/core/domain"
)

// DefaultRetention is how long a record is kept after its last update.
const DefaultRetention = 24 * time.Hour

// Record summarizes one playback session. It never holds a token.
type Record struct {
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

// Clone returns a copy of the record.
func (r *Record) Clone() *Record {
	if r == nil {
		return nil
	}
	c := *r
	return &c
}

// Store persists journal records.
type Store interface {
	// Put inserts or replaces a record.
	Put(ctx context.Context, rec *Record) error

	// Get returns the record for a session ID, or domain.ErrRecordNotFound.
	Get(ctx context.Context, sessionID string) (*Record, error)

	// List returns the records of one receiver, or of all receivers when
	// receiverID is empty, most recently updated first.
	List(ctx context.Context, receiverID string) ([]*Record, error)

	// Delete removes a record. Deleting a missing record is not an error.
	Delete(ctx context.Context, sessionID string) error

	// Ping reports whether the store is reachable.
	Ping(ctx context.Context) error

	Close() error
}
