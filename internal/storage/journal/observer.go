package journal

import (
	"context"
	"time"

	"github.com/yndnr/ssmproxy-go/internal/core/intercept"
	"github.com/yndnr/ssmproxy-go/internal/telemetry/logger"
)

// Observer writes coordinator events to a Store.
type Observer struct {
	store Store
	now   func() time.Time
}

// NewObserver creates an observer writing to store.
func NewObserver(store Store) *Observer {
	return &Observer{store: store, now: time.Now}
}

// Observe implements intercept.Observer. Events for clear loads, which
// have no session, are not recorded. Store failures are logged and never
// reach the caller.
func (o *Observer) Observe(ctx context.Context, ev intercept.Event) {
	if ev.Session.ID == "" {
		return
	}

	rec := &Record{
		SessionID:  ev.Session.ID,
		ReceiverID: ev.ReceiverID,
		Generation: ev.Session.Generation,
		Endpoint:   ev.Session.Endpoint,
		State:      ev.Session.State,
		Protected:  ev.Protected,
		HasToken:   ev.Session.HasSessionToken,
		Renewals:   ev.Session.Renewals,
		LastEvent:  string(ev.Type),
		CreatedAt:  ev.Session.CreatedAt,
		UpdatedAt:  o.now(),
	}
	if ev.Err != nil {
		rec.LastError = ev.Err.Error()
	} else if prev, err := o.store.Get(ctx, rec.SessionID); err == nil {
		rec.LastError = prev.LastError
	}

	if err := o.store.Put(ctx, rec); err != nil {
		logger.L(ctx).Warn("journal write failed", "session_id", rec.SessionID, "error", err)
	}
}
