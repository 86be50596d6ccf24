package journal

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/dgraph-io/badger/v3"

	"github.com/yndnr/ssmproxy-go/internal/core/domain"
)

// DefaultGCInterval is how often the value log is garbage collected.
const DefaultGCInterval = 10 * time.Minute

// gcDiscardRatio is the fraction of stale data a value log file needs
// before it is rewritten.
const gcDiscardRatio = 0.5

// BadgerStore keeps records in an embedded Badger database, so the
// journal survives restarts of a single proxy instance.
//
// Keys:
//
//	s/{session_id}                 JSON record
//	r/{receiver_id}/{session_id}   empty, receiver index
//
// Both keys carry the retention as TTL. Reads also check UpdatedAt so a
// record expires on time even before Badger drops it.
type BadgerStore struct {
	db         *badger.DB
	retention  time.Duration
	gcInterval time.Duration
	logger     *slog.Logger
	now        func() time.Time

	stopCh chan struct{}
	doneCh chan struct{}
}

// BadgerOption configures a BadgerStore.
type BadgerOption func(*BadgerStore)

// WithBadgerRetention sets how long records are kept.
func WithBadgerRetention(d time.Duration) BadgerOption {
	return func(s *BadgerStore) {
		if d > 0 {
			s.retention = d
		}
	}
}

// WithGCInterval sets the value log GC period.
func WithGCInterval(d time.Duration) BadgerOption {
	return func(s *BadgerStore) {
		if d > 0 {
			s.gcInterval = d
		}
	}
}

// WithBadgerLogger routes Badger's own log output through logger.
func WithBadgerLogger(logger *slog.Logger) BadgerOption {
	return func(s *BadgerStore) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// OpenBadgerStore opens or creates the database in dir. An empty dir keeps
// the database in memory.
func OpenBadgerStore(dir string, opts ...BadgerOption) (*BadgerStore, error) {
	s := &BadgerStore{
		retention:  DefaultRetention,
		gcInterval: DefaultGCInterval,
		logger:     slog.Default(),
		now:        time.Now,
		stopCh:     make(chan struct{}),
		doneCh:     make(chan struct{}),
	}
	for _, opt := range opts {
		opt(s)
	}

	bopts := badger.DefaultOptions(dir).
		WithLogger(&badgerLogger{logger: s.logger}).
		WithLoggingLevel(badger.WARNING)
	if dir == "" {
		bopts = bopts.WithInMemory(true)
	}

	db, err := badger.Open(bopts)
	if err != nil {
		return nil, domain.ErrStorageError.WithCause(fmt.Errorf("open badger: %w", err))
	}
	s.db = db

	if dir == "" {
		close(s.doneCh)
	} else {
		go s.gcLoop()
	}
	return s, nil
}

func sessionKey(id string) []byte {
	return []byte("s/" + id)
}

func receiverPrefix(receiverID string) []byte {
	return []byte("r/" + receiverID + "/")
}

func receiverIndexKey(receiverID, sessionID string) []byte {
	return append(receiverPrefix(receiverID), sessionID...)
}

func (s *BadgerStore) expired(rec *Record) bool {
	return s.now().Sub(rec.UpdatedAt) > s.retention
}

// Put implements Store.
func (s *BadgerStore) Put(_ context.Context, rec *Record) error {
	if rec == nil || rec.SessionID == "" {
		return domain.ErrMissingArgument.WithDetails("session id is required")
	}
	data, err := json.Marshal(rec)
	if err != nil {
		return domain.ErrStorageError.WithCause(err)
	}

	err = s.db.Update(func(txn *badger.Txn) error {
		prev, err := getRecord(txn, rec.SessionID)
		switch {
		case err == nil && prev.ReceiverID != rec.ReceiverID:
			if err := txn.Delete(receiverIndexKey(prev.ReceiverID, rec.SessionID)); err != nil {
				return err
			}
		case err != nil && !errors.Is(err, domain.ErrRecordNotFound):
			return err
		}

		if err := txn.SetEntry(badger.NewEntry(sessionKey(rec.SessionID), data).WithTTL(s.retention)); err != nil {
			return err
		}
		return txn.SetEntry(badger.NewEntry(receiverIndexKey(rec.ReceiverID, rec.SessionID), nil).WithTTL(s.retention))
	})
	return storageErr(err)
}

// Get implements Store.
func (s *BadgerStore) Get(_ context.Context, sessionID string) (*Record, error) {
	var rec *Record
	err := s.db.View(func(txn *badger.Txn) error {
		var err error
		rec, err = getRecord(txn, sessionID)
		return err
	})
	if err != nil {
		return nil, storageErr(err)
	}
	if s.expired(rec) {
		return nil, domain.ErrRecordNotFound.WithDetails(sessionID)
	}
	return rec, nil
}

// List implements Store.
func (s *BadgerStore) List(_ context.Context, receiverID string) ([]*Record, error) {
	var out []*Record
	err := s.db.View(func(txn *badger.Txn) error {
		if receiverID == "" {
			return scanRecords(txn, func(rec *Record) {
				if !s.expired(rec) {
					out = append(out, rec)
				}
			})
		}

		prefix := receiverPrefix(receiverID)
		opts := badger.DefaultIteratorOptions
		opts.Prefix = prefix
		opts.PrefetchValues = false
		it := txn.NewIterator(opts)
		defer it.Close()

		for it.Rewind(); it.Valid(); it.Next() {
			id := string(it.Item().Key()[len(prefix):])
			rec, err := getRecord(txn, id)
			if errors.Is(err, domain.ErrRecordNotFound) {
				continue
			}
			if err != nil {
				return err
			}
			if !s.expired(rec) {
				out = append(out, rec)
			}
		}
		return nil
	})
	if err != nil {
		return nil, storageErr(err)
	}
	sortRecords(out)
	return out, nil
}

// Delete implements Store.
func (s *BadgerStore) Delete(_ context.Context, sessionID string) error {
	err := s.db.Update(func(txn *badger.Txn) error {
		rec, err := getRecord(txn, sessionID)
		if errors.Is(err, domain.ErrRecordNotFound) {
			return nil
		}
		if err != nil {
			return err
		}
		if err := txn.Delete(sessionKey(sessionID)); err != nil {
			return err
		}
		return txn.Delete(receiverIndexKey(rec.ReceiverID, sessionID))
	})
	return storageErr(err)
}

// Ping implements Store.
func (s *BadgerStore) Ping(context.Context) error {
	if s.db.IsClosed() {
		return domain.ErrStorageError.WithDetails("badger database closed")
	}
	return nil
}

// Close stops the GC loop and closes the database.
func (s *BadgerStore) Close() error {
	select {
	case <-s.stopCh:
		return nil
	default:
	}
	close(s.stopCh)
	<-s.doneCh
	return s.db.Close()
}

// GC rewrites value log files until nothing more can be reclaimed and
// returns how many files were rewritten.
func (s *BadgerStore) GC() (int, error) {
	n := 0
	for {
		err := s.db.RunValueLogGC(gcDiscardRatio)
		if errors.Is(err, badger.ErrNoRewrite) || errors.Is(err, badger.ErrGCInMemoryMode) {
			return n, nil
		}
		if err != nil {
			return n, err
		}
		n++
	}
}

func (s *BadgerStore) gcLoop() {
	defer close(s.doneCh)

	ticker := time.NewTicker(s.gcInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			n, err := s.GC()
			if err != nil {
				s.logger.Error("journal gc failed", "error", err)
				continue
			}
			if n > 0 {
				s.logger.Debug("journal gc completed", "rewritten", n)
			}
		case <-s.stopCh:
			return
		}
	}
}

func getRecord(txn *badger.Txn, sessionID string) (*Record, error) {
	item, err := txn.Get(sessionKey(sessionID))
	if errors.Is(err, badger.ErrKeyNotFound) {
		return nil, domain.ErrRecordNotFound.WithDetails(sessionID)
	}
	if err != nil {
		return nil, err
	}
	var rec *Record
	err = item.Value(func(val []byte) error {
		rec, err = decodeRecord(val)
		return err
	})
	return rec, err
}

func scanRecords(txn *badger.Txn, fn func(*Record)) error {
	opts := badger.DefaultIteratorOptions
	opts.Prefix = []byte("s/")
	it := txn.NewIterator(opts)
	defer it.Close()

	for it.Rewind(); it.Valid(); it.Next() {
		var rec *Record
		err := it.Item().Value(func(val []byte) error {
			var err error
			rec, err = decodeRecord(val)
			return err
		})
		if err != nil {
			return err
		}
		fn(rec)
	}
	return nil
}

// storageErr leaves domain errors alone and wraps everything else.
func storageErr(err error) error {
	if err == nil {
		return nil
	}
	var de *domain.DomainError
	if errors.As(err, &de) {
		return err
	}
	return domain.ErrStorageError.WithCause(err)
}

// badgerLogger adapts slog to badger.Logger.
type badgerLogger struct {
	logger *slog.Logger
}

func (l *badgerLogger) Errorf(format string, args ...any) {
	l.logger.Error(fmt.Sprintf(format, args...), "component", "badger")
}

func (l *badgerLogger) Warningf(format string, args ...any) {
	l.logger.Warn(fmt.Sprintf(format, args...), "component", "badger")
}

func (l *badgerLogger) Infof(format string, args ...any) {
	l.logger.Info(fmt.Sprintf(format, args...), "component", "badger")
}

func (l *badgerLogger) Debugf(format string, args ...any) {
	l.logger.Debug(fmt.Sprintf(format, args...), "component", "badger")
}
