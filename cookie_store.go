package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/google/uuid"
)

const (
	// expiresField is the reserved envelope key carrying the absolute
	// expiry as unix milliseconds. It never leaks into the Data handed to
	// the application.
	expiresField = "_expires"

	minSecretLength = 32

	// defaultTTL applies when neither a TTL, a TTL function, nor a
	// parser-level fallback is configured.
	defaultTTL = 24 * time.Hour
)

// CookieStore is the reference Store: session data lives entirely
// client-side as an encrypted, self-expiring envelope inside the session
// cookie. No server-side storage is involved, so the store needs no locks —
// its "storage" is the request/response pair.
//
// The envelope is the JSON serialization of the data plus an "_expires"
// timestamp, sealed by the cipher engine and carried in Meta.Payload.
// Cookie writes produced by Set, Destroy and rolling refresh are published
// through the request-scoped Accumulator found in ctx; without one (bare
// store usage outside the middleware) the write is skipped.
type CookieStore struct {
	sealer   sealer
	secret   string
	writer   Parser
	factory  DataFactory
	rolling  bool
	ttl      time.Duration
	ttlFunc  func() time.Duration
	fallback time.Duration
	hardened bool
}

// StoreOption configures a CookieStore.
type StoreOption func(*CookieStore)

// WithTTL sets a fixed session time-to-live.
func WithTTL(ttl time.Duration) StoreOption {
	return func(s *CookieStore) { s.ttl = ttl }
}

// WithTTLFunc sets a TTL producer evaluated fresh on every operation. It
// takes precedence over a fixed TTL.
func WithTTLFunc(fn func() time.Duration) StoreOption {
	return func(s *CookieStore) { s.ttlFunc = fn }
}

// WithRolling enables rolling expiration: every successful Get re-embeds a
// fresh expiry and republishes the cookie, extending the session lifetime
// with activity.
func WithRolling(rolling bool) StoreOption {
	return func(s *CookieStore) { s.rolling = rolling }
}

// WithDataFactory sets the factory producing initial data for new sessions.
func WithDataFactory(fn DataFactory) StoreOption {
	return func(s *CookieStore) { s.factory = fn }
}

// WithStoreWriter sets the parser the store publishes cookie writes
// through. Defaults to a CookieParser on the default cookie name; the
// Manager wires its own parser in so identity and data writes stay on the
// same cookie.
func WithStoreWriter(p Parser) StoreOption {
	return func(s *CookieStore) { s.writer = p }
}

// WithFallbackTTL sets the TTL used when neither WithTTL nor WithTTLFunc is
// configured. The Manager seeds it from the parser's default max-age.
func WithFallbackTTL(d time.Duration) StoreOption {
	return func(s *CookieStore) { s.fallback = d }
}

// WithAuthenticatedSealing switches the envelope cipher from the legacy
// deterministic-IV AES-CTR format to AES-GCM with a random nonce, trading
// wire compatibility for integrity protection and IND-CPA security.
func WithAuthenticatedSealing() StoreOption {
	return func(s *CookieStore) { s.hardened = true }
}

// NewCookieStore creates a cookie-backed session store. The secret must be
// at least 32 characters; the AES key is derived from it once by hashing.
func NewCookieStore(secret string, opts ...StoreOption) (*CookieStore, error) {
	if len(secret) < minSecretLength {
		return nil, fmt.Errorf("%w: got %d chars, need at least %d", ErrSecretTooShort, len(secret), minSecretLength)
	}

	s := &CookieStore{
		secret:  secret,
		factory: defaultDataFactory,
	}
	for _, opt := range opts {
		opt(s)
	}

	if s.writer == nil {
		s.writer = NewCookieParser(defaultCookieName)
	}

	if s.hardened {
		s.sealer = newGCMSealer(secret)
	} else {
		s.sealer = newCTRSealer(secret)
	}

	return s, nil
}

func (s *CookieStore) Create(ctx context.Context, r *http.Request, carried Data) (Meta, Data, error) {
	id := uuid.NewString()
	data := s.factory(r, carried)
	if data == nil {
		data = Data{}
	}

	expires := time.Now().Add(s.resolveTTL())
	payload, err := s.seal(id, data, expires)
	if err != nil {
		return Meta{}, nil, err
	}

	return Meta{ID: id, Payload: payload, ExpiresAt: expires}, data, nil
}

func (s *CookieStore) Get(ctx context.Context, info Info) (Meta, Data, error) {
	if info.ID == "" || info.Payload == "" {
		return Meta{}, nil, ErrSessionInvalid
	}

	if acc, ok := AccumulatorFromContext(ctx); ok && acc.isDestroyed(info.ID) {
		return Meta{}, nil, ErrSessionInvalid
	}

	plaintext, err := s.sealer.Open(info.ID, info.Payload)
	if err != nil {
		// Decryption failure of any kind is downgraded to a soft failure.
		return Meta{}, nil, ErrSessionInvalid
	}

	var envelope map[string]any
	if err := json.Unmarshal(plaintext, &envelope); err != nil {
		return Meta{}, nil, ErrSessionInvalid
	}

	meta := Meta{ID: info.ID, Payload: info.Payload}
	if raw, ok := envelope[expiresField]; ok {
		ms, ok := raw.(float64)
		if !ok {
			return Meta{}, nil, ErrSessionInvalid
		}
		expires := time.UnixMilli(int64(ms))
		if expires.Before(time.Now()) {
			_ = s.Destroy(ctx, meta)
			return Meta{}, nil, ErrSessionInvalid
		}
		meta.ExpiresAt = expires
		delete(envelope, expiresField)
	}

	data := Data(envelope)

	if s.rolling {
		refreshed := time.Now().Add(s.resolveTTL())
		payload, err := s.seal(info.ID, data, refreshed)
		if err != nil {
			return Meta{}, nil, err
		}
		meta.Payload = payload
		meta.ExpiresAt = refreshed
		s.publish(ctx, s.writer.Set(meta))
	}

	return meta, data, nil
}

func (s *CookieStore) Set(ctx context.Context, meta Meta, data Data) error {
	if meta.ID == "" {
		return ErrSessionInvalid
	}

	if acc, ok := AccumulatorFromContext(ctx); ok && acc.isDestroyed(meta.ID) {
		return ErrSessionInvalid
	}

	expires := time.Now().Add(s.resolveTTL())
	payload, err := s.seal(meta.ID, data, expires)
	if err != nil {
		return err
	}

	meta.Payload = payload
	meta.ExpiresAt = expires
	s.publish(ctx, s.writer.Set(meta))
	return nil
}

func (s *CookieStore) Destroy(ctx context.Context, meta Meta) error {
	if meta.ID == "" {
		return ErrSessionInvalid
	}

	acc, ok := AccumulatorFromContext(ctx)
	if ok && acc.isDestroyed(meta.ID) {
		return ErrSessionInvalid
	}

	if ok {
		acc.markDestroyed(meta.ID)
	}
	s.publish(ctx, s.writer.Remove(meta))
	return nil
}

func (s *CookieStore) seal(id string, data Data, expires time.Time) (string, error) {
	envelope := cloneData(data)
	envelope[expiresField] = expires.UnixMilli()

	plaintext, err := json.Marshal(envelope)
	if err != nil {
		return "", errors.Join(ErrStoreFault, err)
	}

	payload, err := s.sealer.Seal(id, plaintext)
	if err != nil {
		return "", errors.Join(ErrStoreFault, err)
	}
	return payload, nil
}

func (s *CookieStore) publish(ctx context.Context, m Mutation) {
	if acc, ok := AccumulatorFromContext(ctx); ok {
		acc.Add(m)
	}
}

// resolveTTL picks the effective time-to-live: the TTL function, then the
// fixed TTL, then the parser-level fallback.
func (s *CookieStore) resolveTTL() time.Duration {
	if s.ttlFunc != nil {
		return s.ttlFunc()
	}
	if s.ttl != 0 {
		return s.ttl
	}
	if s.fallback > 0 {
		return s.fallback
	}
	return defaultTTL
}
