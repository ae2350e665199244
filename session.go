package session

import (
	"context"
	"net/http"
	"sync"
)

// Session is the request-scoped cell holding the resolved session identity
// and its live data, plus the lifecycle operations bound to them. The
// middleware creates one per request and places it in the request context;
// it is exclusively owned by that request and must not outlive it.
//
// Lifecycle operations may be invoked multiple times and from multiple
// goroutines within the request; the cell guards its binding with a mutex
// but does not serialize the underlying store calls.
type Session struct {
	mu      sync.Mutex
	manager *Manager
	request *http.Request
	acc     *Accumulator
	meta    Meta
	bound   bool
	data    Data
}

func (s *Session) bind(meta Meta, data Data) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.meta = meta
	s.bound = true
	if data == nil {
		data = Data{}
	}
	s.data = data
}

// Meta returns the currently bound session identity, if any.
func (s *Session) Meta() (Meta, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.meta, s.bound
}

// ID returns the bound session identifier, or "" when unbound.
func (s *Session) ID() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.bound {
		return ""
	}
	return s.meta.ID
}

// Get retrieves a value from the session data.
func (s *Session) Get(key string) (any, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.data == nil {
		return nil, false
	}
	v, ok := s.data[key]
	return v, ok
}

// GetString retrieves a string value from the session data.
func (s *Session) GetString(key string) (string, bool) {
	v, ok := s.Get(key)
	if !ok {
		return "", false
	}
	str, ok := v.(string)
	return str, ok
}

// GetInt retrieves an int value from the session data. JSON round-trips
// store numbers as float64, so those convert too.
func (s *Session) GetInt(key string) (int, bool) {
	v, ok := s.Get(key)
	if !ok {
		return 0, false
	}
	switch n := v.(type) {
	case int:
		return n, true
	case int64:
		return int(n), true
	case float64:
		return int(n), true
	default:
		return 0, false
	}
}

// GetBool retrieves a bool value from the session data.
func (s *Session) GetBool(key string) (bool, bool) {
	v, ok := s.Get(key)
	if !ok {
		return false, false
	}
	b, ok := v.(bool)
	return b, ok
}

// Set stores a value in the session data.
func (s *Session) Set(key string, value any) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.data == nil {
		s.data = Data{}
	}
	s.data[key] = value
}

// Delete removes a value from the session data.
func (s *Session) Delete(key string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.data, key)
}

// Clear removes all session data without touching the identity.
func (s *Session) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.data = Data{}
}

// SaveToStore persists the current data under the bound identity,
// returning the store's outcome verbatim. Unbound sessions yield
// ErrSessionUnbound.
func (s *Session) SaveToStore(ctx context.Context) error {
	meta, data, ok := s.snapshot()
	if !ok {
		return ErrSessionUnbound
	}
	return s.manager.store.Set(ctx, meta, data)
}

// RegenerateID mints a fresh session identity carrying over the current
// data, rebinds the cell and accumulates the identity cookie write. Store
// failures propagate verbatim so callers can tell "no session" from "store
// rejected". Unbound sessions yield ErrSessionUnbound.
func (s *Session) RegenerateID(ctx context.Context) error {
	_, data, ok := s.snapshot()
	if !ok {
		return ErrSessionUnbound
	}

	meta, fresh, err := s.manager.store.Create(ctx, s.request, data)
	if err != nil {
		return err
	}

	s.bind(meta, fresh)
	s.acc.Add(s.manager.parser.Set(meta))
	return nil
}

// Destroy invalidates the bound session, unbinds the cell and accumulates
// the cookie removal. Store failures propagate verbatim and leave the cell
// bound. Unbound sessions yield ErrSessionUnbound.
func (s *Session) Destroy(ctx context.Context) error {
	meta, _, ok := s.snapshot()
	if !ok {
		return ErrSessionUnbound
	}

	if err := s.manager.store.Destroy(ctx, meta); err != nil {
		return err
	}

	s.mu.Lock()
	// Unbind only if another goroutine has not rebound a new identity in
	// the meantime.
	if s.bound && s.meta.ID == meta.ID {
		s.bound = false
		s.data = nil
	}
	s.mu.Unlock()

	s.acc.Add(s.manager.parser.Remove(meta))
	return nil
}

// snapshot copies the binding and data so store calls run without holding
// the cell's lock.
func (s *Session) snapshot() (Meta, Data, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.bound {
		return Meta{}, nil, false
	}
	return s.meta, cloneData(s.data), true
}
