package session

import (
	"context"
	"maps"
	"net/http"
	"time"
)

// Data is the application-owned session payload. It is mutable during a
// request through the Session cell and is only ever persisted or
// transmitted through Store.Set/Create, which re-embed a fresh expiry.
type Data map[string]any

// Info is the session information extracted from the request by a Parser:
// the session identifier plus, for client-side stores, the sealed payload
// that rode along in the same cookie. Opaque to the transport.
type Info struct {
	ID      string
	Payload string
}

// Meta identifies a validated session between Parser and Store. Payload
// carries the sealed envelope for client-side stores (empty otherwise).
// A non-zero ExpiresAt instructs the parser to emit an absolute Expires
// cookie attribute, overriding its relative max-age.
type Meta struct {
	ID        string
	Payload   string
	ExpiresAt time.Time
}

// DataFactory produces the initial data for a new session. It receives the
// request and any data carried over from a previous identity (non-nil when
// the session id is being regenerated).
type DataFactory func(r *http.Request, carried Data) Data

func defaultDataFactory(_ *http.Request, carried Data) Data {
	return cloneData(carried)
}

func cloneData(d Data) Data {
	out := make(Data, len(d))
	maps.Copy(out, d)
	return out
}

// Store validates, creates, updates and destroys sessions. Every operation
// reports one of three outcomes which callers must distinguish:
//
//   - nil error: the operation succeeded;
//   - ErrSessionInvalid (match with errors.Is): soft failure — the input
//     was expired, tampered with, or unknown; recover by creating a new
//     session;
//   - any other error, conventionally wrapping ErrStoreFault: hard failure —
//     an internal fault that must surface as a server error.
type Store interface {
	// Create mints a session with a fresh, never-seen identifier and
	// initial data from the configured DataFactory. The carried data, if
	// any, is handed to the factory.
	Create(ctx context.Context, r *http.Request, carried Data) (Meta, Data, error)

	// Get validates the session info and returns the current meta and
	// data. A session past its embedded expiry is invalidated and reported
	// as a soft failure, never returned stale.
	Get(ctx context.Context, info Info) (Meta, Data, error)

	// Set persists the data under the session identity, recomputing and
	// re-embedding a fresh expiry.
	Set(ctx context.Context, meta Meta, data Data) error

	// Destroy invalidates the session. Destroying an already-absent
	// session is a soft failure, not a hard one, so Destroy is idempotent.
	Destroy(ctx context.Context, meta Meta) error
}
