package journal

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/yndnr/ssmproxy-go/internal/core/domain"
	"github.com/yndnr/ssmproxy-go/internal/core/intercept"
)

func TestObserver(t *testing.T) {
	store := NewMemoryStore()
	o := NewObserver(store)
	ctx := context.Background()
	created := time.Now().Add(-time.Second)

	snap := domain.SessionSnapshot{
		ID:         "ssmps-1",
		Generation: 3,
		Endpoint:   "https://ssm.example.com",
		State:      domain.SessionUnestablished,
		CreatedAt:  created,
	}

	o.Observe(ctx, intercept.Event{
		Type:       intercept.EventSetup,
		ReceiverID: "tv",
		Protected:  true,
		Session:    snap,
		Err:        domain.ErrSetupFailed.WithDetails("status 500"),
	})

	rec, err := store.Get(ctx, "ssmps-1")
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if rec.ReceiverID != "tv" || rec.Generation != 3 || rec.LastEvent != "setup" {
		t.Errorf("record = %+v", rec)
	}
	if rec.LastError == "" {
		t.Error("LastError should carry the setup failure")
	}

	// A later event without an error keeps the last error.
	snap.Renewals = 1
	snap.LicenseRequested = true
	o.Observe(ctx, intercept.Event{Type: intercept.EventLicense, ReceiverID: "tv", Protected: true, Session: snap})

	rec, _ = store.Get(ctx, "ssmps-1")
	if rec.Renewals != 1 || rec.LastEvent != "license" || rec.LastError == "" {
		t.Errorf("record after license = %+v", rec)
	}
}

func TestObserver_SkipsClearLoads(t *testing.T) {
	store := NewMemoryStore()
	NewObserver(store).Observe(context.Background(), intercept.Event{Type: intercept.EventLoaded, ReceiverID: "tv"})

	if recs, _ := store.List(context.Background(), ""); len(recs) != 0 {
		t.Errorf("clear load recorded: %v", ids(recs))
	}
}

type failingStore struct{ MemoryStore }

func (failingStore) Put(context.Context, *Record) error { return errors.New("disk full") }

func TestObserver_StoreFailureSwallowed(t *testing.T) {
	fs := &failingStore{MemoryStore: *NewMemoryStore()}
	o := NewObserver(fs)

	// Must not panic or propagate.
	o.Observe(context.Background(), intercept.Event{
		Type:       intercept.EventSetup,
		ReceiverID: "tv",
		Session:    domain.SessionSnapshot{ID: "ssmps-2"},
	})
}
