// Package session resolves, validates and persists a per-request session
// across stateless HTTP requests without mandating a storage backend. It
// ships an encrypted-cookie store that keeps session data entirely
// client-side, plus in-memory and Redis stores for server-side persistence,
// all behind the same pluggable Store and Parser interfaces.
//
// # Architecture
//
// A Manager orchestrates the per-request resolution protocol. A Parser
// extracts session info from the request and renders the cookie writes; a
// Store validates, creates, updates and destroys sessions. Response changes
// (cookies to set or clear) are not written eagerly: they accumulate in a
// request-scoped Accumulator and are merged into the response exactly once,
// after the downstream handler returns, with last-write-wins semantics per
// cookie name.
//
//	request ──► Parser.Get ──► Store.Get / Store.Create ──► *Session in ctx
//	                                                            │
//	handler runs (SaveToStore / RegenerateID / Destroy) ◄───────┘
//	                                                            │
//	autosave (optional) ──► Accumulator merged ──► response ◄───┘
//
// Every Store operation reports one of three outcomes: success (nil),
// soft failure (ErrSessionInvalid: expired, tampered or unknown input,
// transparently replaced by a fresh session during resolution), or hard
// failure (anything else, aborting the request with a server error).
//
// # Usage
//
//	manager := session.New(
//	    session.WithSecret("at-least-32-characters-long-secret!!"),
//	    session.WithSessionTTL(12*time.Hour),
//	    session.WithAutoSave(true),
//	)
//
//	mux := http.NewServeMux()
//	mux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
//	    sess := session.MustFromContext(r.Context())
//	    visits, _ := sess.GetInt("visits")
//	    sess.Set("visits", visits+1)
//	})
//
//	http.ListenAndServe(":8080", manager.Middleware(mux))
//
// Server-side storage instead of the encrypted cookie:
//
//	manager := session.New(
//	    session.WithStore(session.NewRedisStore(redisClient, time.Hour)),
//	)
//
// # Security
//
// The default cookie store seals the envelope with AES-256-CTR under a key
// hashed from the secret and an IV derived deterministically from the
// session identifier (the compatible legacy format). Deterministic IVs leak
// plaintext-equality patterns across writes for the same identifier;
// WithAuthenticatedSealing switches to AES-256-GCM with random nonces when
// wire compatibility is not required.
//
// # Error Handling
//
// Common error values returned by the package:
//
//   - ErrNoSession       – request carries no (or malformed) session info
//   - ErrSessionInvalid  – soft failure: expired, tampered or unknown
//   - ErrStoreFault      – hard failure marker wrapped by store internals
//   - ErrSessionUnbound  – lifecycle call on a session with no bound identity
package session
