package journal

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/yndnr/ssmproxy-go/internal/core/domain"
)

// DefaultKeyPrefix namespaces journal keys in Redis.
const DefaultKeyPrefix = "ssmproxy"

// RedisStore keeps records in Redis.
//
// Keys:
//
//	{prefix}:session:{session_id}    JSON record, expires after retention
//	{prefix}:receiver:{receiver_id}  set of session IDs
type RedisStore struct {
	client    redis.UniversalClient
	prefix    string
	retention time.Duration
}

// RedisOption configures a RedisStore.
type RedisOption func(*RedisStore)

// WithKeyPrefix sets the key namespace.
func WithKeyPrefix(prefix string) RedisOption {
	return func(s *RedisStore) {
		if prefix != "" {
			s.prefix = prefix
		}
	}
}

// WithRedisRetention sets the record TTL.
func WithRedisRetention(d time.Duration) RedisOption {
	return func(s *RedisStore) {
		if d > 0 {
			s.retention = d
		}
	}
}

// NewRedisStore creates a store on an existing client.
func NewRedisStore(client redis.UniversalClient, opts ...RedisOption) *RedisStore {
	s := &RedisStore{
		client:    client,
		prefix:    DefaultKeyPrefix,
		retention: DefaultRetention,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *RedisStore) sessionKey(id string) string {
	return s.prefix + ":session:" + id
}

func (s *RedisStore) receiverKey(id string) string {
	return s.prefix + ":receiver:" + id
}

// Put implements Store.
func (s *RedisStore) Put(ctx context.Context, rec *Record) error {
	if rec == nil || rec.SessionID == "" {
		return domain.ErrMissingArgument.WithDetails("session id is required")
	}
	data, err := json.Marshal(rec)
	if err != nil {
		return domain.ErrStorageError.WithCause(err)
	}

	receiverKey := s.receiverKey(rec.ReceiverID)
	_, err = s.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Set(ctx, s.sessionKey(rec.SessionID), data, s.retention)
		pipe.SAdd(ctx, receiverKey, rec.SessionID)
		pipe.Expire(ctx, receiverKey, s.retention)
		return nil
	})
	if err != nil {
		return domain.ErrStorageError.WithCause(err)
	}
	return nil
}

// Get implements Store.
func (s *RedisStore) Get(ctx context.Context, sessionID string) (*Record, error) {
	data, err := s.client.Get(ctx, s.sessionKey(sessionID)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, domain.ErrRecordNotFound.WithDetails(sessionID)
	}
	if err != nil {
		return nil, domain.ErrStorageError.WithCause(err)
	}
	return decodeRecord(data)
}

// List implements Store.
func (s *RedisStore) List(ctx context.Context, receiverID string) ([]*Record, error) {
	var keys []string
	if receiverID == "" {
		iter := s.client.Scan(ctx, 0, s.sessionKey("*"), 100).Iterator()
		for iter.Next(ctx) {
			keys = append(keys, iter.Val())
		}
		if err := iter.Err(); err != nil {
			return nil, domain.ErrStorageError.WithCause(err)
		}
	} else {
		ids, err := s.client.SMembers(ctx, s.receiverKey(receiverID)).Result()
		if err != nil {
			return nil, domain.ErrStorageError.WithCause(err)
		}
		for _, id := range ids {
			keys = append(keys, s.sessionKey(id))
		}
	}
	if len(keys) == 0 {
		return nil, nil
	}

	vals, err := s.client.MGet(ctx, keys...).Result()
	if err != nil {
		return nil, domain.ErrStorageError.WithCause(err)
	}

	out := make([]*Record, 0, len(vals))
	var stale []any
	for i, v := range vals {
		str, ok := v.(string)
		if !ok {
			// Expired record still listed in the receiver index.
			stale = append(stale, keys[i][len(s.sessionKey("")):])
			continue
		}
		rec, err := decodeRecord([]byte(str))
		if err != nil {
			return nil, err
		}
		out = append(out, rec)
	}
	if receiverID != "" && len(stale) > 0 {
		s.client.SRem(ctx, s.receiverKey(receiverID), stale...)
	}

	sortRecords(out)
	return out, nil
}

// Delete implements Store.
func (s *RedisStore) Delete(ctx context.Context, sessionID string) error {
	rec, err := s.Get(ctx, sessionID)
	if errors.Is(err, domain.ErrRecordNotFound) {
		return nil
	}
	if err != nil {
		return err
	}

	_, err = s.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Del(ctx, s.sessionKey(sessionID))
		pipe.SRem(ctx, s.receiverKey(rec.ReceiverID), sessionID)
		return nil
	})
	if err != nil {
		return domain.ErrStorageError.WithCause(err)
	}
	return nil
}

// Ping implements Store.
func (s *RedisStore) Ping(ctx context.Context) error {
	if err := s.client.Ping(ctx).Err(); err != nil {
		return domain.ErrStorageError.WithCause(err)
	}
	return nil
}

// Close implements Store.
func (s *RedisStore) Close() error {
	return s.client.Close()
}

func decodeRecord(data []byte) (*Record, error) {
	var rec Record
	if err := json.Unmarshal(data, &rec); err != nil {
		return nil, domain.ErrStorageError.WithDetails(fmt.Sprintf("corrupt record: %v", err))
	}
	return &rec, nil
}
