package session

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// RedisStore is a server-side Store backed by Redis. Sessions are JSON
// envelopes stored under a prefixed key with a native TTL, so expiry is
// enforced by Redis itself.
type RedisStore struct {
	client  redis.UniversalClient
	prefix  string
	ttl     time.Duration
	rolling bool
	factory DataFactory
}

// RedisOption configures a RedisStore.
type RedisOption func(*RedisStore)

// WithRedisPrefix sets the key prefix (default "session:").
func WithRedisPrefix(prefix string) RedisOption {
	return func(s *RedisStore) { s.prefix = prefix }
}

// WithRedisRolling extends the key TTL on every successful Get.
func WithRedisRolling(rolling bool) RedisOption {
	return func(s *RedisStore) { s.rolling = rolling }
}

// WithRedisDataFactory sets the factory producing initial session data.
func WithRedisDataFactory(fn DataFactory) RedisOption {
	return func(s *RedisStore) { s.factory = fn }
}

// NewRedisStore creates a Redis-backed session store.
func NewRedisStore(client redis.UniversalClient, ttl time.Duration, opts ...RedisOption) *RedisStore {
	s := &RedisStore{
		client:  client,
		prefix:  "session:",
		ttl:     ttl,
		factory: defaultDataFactory,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *RedisStore) key(id string) string {
	return s.prefix + id
}

func (s *RedisStore) Create(ctx context.Context, r *http.Request, carried Data) (Meta, Data, error) {
	id := uuid.NewString()
	data := s.factory(r, carried)
	if data == nil {
		data = Data{}
	}

	raw, err := json.Marshal(data)
	if err != nil {
		return Meta{}, nil, errors.Join(ErrStoreFault, err)
	}

	if err := s.client.Set(ctx, s.key(id), raw, s.ttl).Err(); err != nil {
		return Meta{}, nil, errors.Join(ErrStoreFault, err)
	}

	return Meta{ID: id}, data, nil
}

func (s *RedisStore) Get(ctx context.Context, info Info) (Meta, Data, error) {
	if info.ID == "" {
		return Meta{}, nil, ErrSessionInvalid
	}

	raw, err := s.client.Get(ctx, s.key(info.ID)).Result()
	if errors.Is(err, redis.Nil) {
		return Meta{}, nil, ErrSessionInvalid
	}
	if err != nil {
		return Meta{}, nil, errors.Join(ErrStoreFault, err)
	}

	var data Data
	if err := json.Unmarshal([]byte(raw), &data); err != nil {
		// Corrupt payloads are treated like tampered sessions.
		return Meta{}, nil, ErrSessionInvalid
	}

	if s.rolling {
		if err := s.client.Expire(ctx, s.key(info.ID), s.ttl).Err(); err != nil {
			return Meta{}, nil, errors.Join(ErrStoreFault, err)
		}
	}

	return Meta{ID: info.ID}, data, nil
}

func (s *RedisStore) Set(ctx context.Context, meta Meta, data Data) error {
	if meta.ID == "" {
		return ErrSessionInvalid
	}

	raw, err := json.Marshal(data)
	if err != nil {
		return errors.Join(ErrStoreFault, err)
	}

	// SET XX refreshes the TTL but refuses to resurrect unknown sessions.
	ok, err := s.client.SetXX(ctx, s.key(meta.ID), raw, s.ttl).Result()
	if err != nil {
		return errors.Join(ErrStoreFault, err)
	}
	if !ok {
		return ErrSessionInvalid
	}
	return nil
}

func (s *RedisStore) Destroy(ctx context.Context, meta Meta) error {
	if meta.ID == "" {
		return ErrSessionInvalid
	}

	n, err := s.client.Del(ctx, s.key(meta.ID)).Result()
	if err != nil {
		return errors.Join(ErrStoreFault, err)
	}
	if n == 0 {
		return ErrSessionInvalid
	}
	return nil
}
