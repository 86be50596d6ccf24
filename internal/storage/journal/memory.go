package journal

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/yndnr/ssmproxy-go/internal/core/domain"
	"github.com/yndnr/ssmproxy-go/pkg/cmap"
)

// idSet is a concurrent set of session IDs.
type idSet struct {
	mu    sync.RWMutex
	items map[string]struct{}
}

func newIDSet() *idSet {
	return &idSet{items: make(map[string]struct{})}
}

func (s *idSet) add(id string) {
	s.mu.Lock()
	s.items[id] = struct{}{}
	s.mu.Unlock()
}

func (s *idSet) remove(id string) {
	s.mu.Lock()
	delete(s.items, id)
	s.mu.Unlock()
}

func (s *idSet) list() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]string, 0, len(s.items))
	for id := range s.items {
		out = append(out, id)
	}
	return out
}

// MemoryStore keeps records in process memory.
type MemoryStore struct {
	records    *cmap.Map[string, *Record]
	byReceiver *cmap.Map[string, *idSet]
	retention  time.Duration
	now        func() time.Time
}

// MemoryOption configures a MemoryStore.
type MemoryOption func(*MemoryStore)

// WithMemoryRetention sets how long records are kept.
func WithMemoryRetention(d time.Duration) MemoryOption {
	return func(s *MemoryStore) {
		if d > 0 {
			s.retention = d
		}
	}
}

// NewMemoryStore creates an in-memory store.
func NewMemoryStore(opts ...MemoryOption) *MemoryStore {
	s := &MemoryStore{
		records:    cmap.New[string, *Record](),
		byReceiver: cmap.New[string, *idSet](),
		retention:  DefaultRetention,
		now:        time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *MemoryStore) expired(rec *Record) bool {
	return s.now().Sub(rec.UpdatedAt) > s.retention
}

// Put implements Store.
func (s *MemoryStore) Put(_ context.Context, rec *Record) error {
	if rec == nil || rec.SessionID == "" {
		return domain.ErrMissingArgument.WithDetails("session id is required")
	}
	if prev, ok := s.records.Get(rec.SessionID); ok && prev.ReceiverID != rec.ReceiverID {
		if set, ok := s.byReceiver.Get(prev.ReceiverID); ok {
			set.remove(rec.SessionID)
		}
	}
	s.records.Set(rec.SessionID, rec.Clone())
	set, _ := s.byReceiver.GetOrCreate(rec.ReceiverID, newIDSet)
	set.add(rec.SessionID)
	return nil
}

// Get implements Store.
func (s *MemoryStore) Get(_ context.Context, sessionID string) (*Record, error) {
	rec, ok := s.records.Get(sessionID)
	if !ok || s.expired(rec) {
		return nil, domain.ErrRecordNotFound.WithDetails(sessionID)
	}
	return rec.Clone(), nil
}

// List implements Store.
func (s *MemoryStore) List(_ context.Context, receiverID string) ([]*Record, error) {
	var out []*Record
	if receiverID == "" {
		for _, rec := range s.records.Values() {
			if !s.expired(rec) {
				out = append(out, rec.Clone())
			}
		}
	} else if set, ok := s.byReceiver.Get(receiverID); ok {
		for _, id := range set.list() {
			if rec, ok := s.records.Get(id); ok && !s.expired(rec) {
				out = append(out, rec.Clone())
			}
		}
	}
	sortRecords(out)
	return out, nil
}

// Delete implements Store.
func (s *MemoryStore) Delete(_ context.Context, sessionID string) error {
	rec, ok := s.records.Pop(sessionID)
	if !ok {
		return nil
	}
	if set, ok := s.byReceiver.Get(rec.ReceiverID); ok {
		set.remove(sessionID)
	}
	return nil
}

// DeleteExpired drops records past the retention period and returns how
// many were removed.
func (s *MemoryStore) DeleteExpired(ctx context.Context) int {
	stale := s.records.Filter(func(_ string, rec *Record) bool { return s.expired(rec) })
	for _, rec := range stale {
		_ = s.Delete(ctx, rec.SessionID)
	}
	return len(stale)
}

// Ping implements Store.
func (s *MemoryStore) Ping(context.Context) error { return nil }

// Close implements Store.
func (s *MemoryStore) Close() error { return nil }

func sortRecords(recs []*Record) {
	sort.Slice(recs, func(i, j int) bool {
		if !recs[i].UpdatedAt.Equal(recs[j].UpdatedAt) {
			return recs[i].UpdatedAt.After(recs[j].UpdatedAt)
		}
		return recs[i].SessionID < recs[j].SessionID
	})
}
