package session

import (
	"context"
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"
)

// MemoryStore is a server-side Store keeping sessions in a mutex-guarded
// map. Intended for tests and single-process deployments; it exercises the
// same tri-state contract as the production stores.
type MemoryStore struct {
	mu       sync.RWMutex
	sessions map[string]*memoryRecord
	ttl      time.Duration
	factory  DataFactory
	ticker   *time.Ticker
	done     chan struct{}
}

type memoryRecord struct {
	data      Data
	expiresAt time.Time
}

// NewMemoryStore creates an in-memory session store. A positive
// cleanupInterval starts a background goroutine evicting expired sessions;
// stop it with Close.
func NewMemoryStore(ttl, cleanupInterval time.Duration) *MemoryStore {
	store := &MemoryStore{
		sessions: make(map[string]*memoryRecord),
		ttl:      ttl,
		factory:  defaultDataFactory,
		done:     make(chan struct{}),
	}

	if cleanupInterval > 0 {
		store.ticker = time.NewTicker(cleanupInterval)
		go store.cleanupLoop()
	}

	return store
}

func (m *MemoryStore) Create(ctx context.Context, r *http.Request, carried Data) (Meta, Data, error) {
	id := uuid.NewString()
	data := m.factory(r, carried)
	if data == nil {
		data = Data{}
	}

	m.mu.Lock()
	m.sessions[id] = &memoryRecord{data: cloneData(data), expiresAt: time.Now().Add(m.ttl)}
	m.mu.Unlock()

	return Meta{ID: id}, data, nil
}

func (m *MemoryStore) Get(ctx context.Context, info Info) (Meta, Data, error) {
	m.mu.RLock()
	record, exists := m.sessions[info.ID]
	m.mu.RUnlock()

	if !exists {
		return Meta{}, nil, ErrSessionInvalid
	}

	if time.Now().After(record.expiresAt) {
		m.mu.Lock()
		delete(m.sessions, info.ID)
		m.mu.Unlock()
		return Meta{}, nil, ErrSessionInvalid
	}

	return Meta{ID: info.ID}, cloneData(record.data), nil
}

func (m *MemoryStore) Set(ctx context.Context, meta Meta, data Data) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, exists := m.sessions[meta.ID]; !exists {
		return ErrSessionInvalid
	}

	m.sessions[meta.ID] = &memoryRecord{data: cloneData(data), expiresAt: time.Now().Add(m.ttl)}
	return nil
}

func (m *MemoryStore) Destroy(ctx context.Context, meta Meta) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, exists := m.sessions[meta.ID]; !exists {
		return ErrSessionInvalid
	}

	delete(m.sessions, meta.ID)
	return nil
}

// Len returns the number of live sessions.
func (m *MemoryStore) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.sessions)
}

// Close stops the cleanup goroutine.
func (m *MemoryStore) Close() error {
	if m.ticker != nil {
		m.ticker.Stop()
		close(m.done)
	}
	return nil
}

func (m *MemoryStore) cleanupLoop() {
	for {
		select {
		case <-m.ticker.C:
			m.deleteExpired()
		case <-m.done:
			return
		}
	}
}

func (m *MemoryStore) deleteExpired() {
	m.mu.Lock()
	defer m.mu.Unlock()

	now := time.Now()
	for id, record := range m.sessions {
		if now.After(record.expiresAt) {
			delete(m.sessions, id)
		}
	}
}
