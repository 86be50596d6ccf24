package intercept

import (
	"context"

	"github.com/yndnr/ssmproxy-go/internal/core/domain"
)

// EventType names a session lifecycle event.
type EventType string

const (
	EventLoaded     EventType = "loaded"
	EventSetup      EventType = "setup"
	EventLicense    EventType = "license"
	EventRenewed    EventType = "renewed"
	EventTornDown   EventType = "torn_down"
	EventSuperseded EventType = "superseded"
)

// Event describes a change to a receiver's playback session.
type Event struct {
	Type       EventType
	ReceiverID string
	Protected  bool
	Session    domain.SessionSnapshot
	Err        error
}

// Observer receives session lifecycle events. Implementations must not
// block for long; they run on the caller's goroutine.
type Observer interface {
	Observe(ctx context.Context, ev Event)
}

// ObserverFunc adapts a function to Observer.
type ObserverFunc func(ctx context.Context, ev Event)

// Observe implements Observer.
func (f ObserverFunc) Observe(ctx context.Context, ev Event) { f(ctx, ev) }
