package session

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
)

// Manager wires a Parser and a Store into the session resolution protocol.
// Multiple managers can be composed on one server (for example on different
// route prefixes) as long as each uses a distinct cookie name.
type Manager struct {
	parser Parser
	store  Store
	config Config
	logger *slog.Logger
}

// New creates a session manager. Without WithParser/WithStore it falls back
// to a CookieParser plus a CookieStore built from the configured secret,
// sharing the same cookie, and panics on a missing or weak secret to fail
// fast on misconfiguration.
func New(opts ...Option) *Manager {
	m := &Manager{
		config: DefaultConfig(),
		logger: slog.New(slog.DiscardHandler),
	}

	for _, opt := range opts {
		opt(m)
	}

	if m.parser == nil {
		m.parser = NewCookieParser(m.config.CookieName,
			WithCookieMaxAge(m.config.TTL),
			WithSecureCookie(m.config.SecureCookies),
		)
	}

	if m.store == nil {
		store, err := NewCookieStore(m.config.Secret,
			WithStoreWriter(m.parser),
			WithTTL(m.config.TTL),
			WithRolling(m.config.Rolling),
		)
		if err != nil {
			panic("session: secret is required when using the default cookie store: " + err.Error())
		}
		m.store = store
	}

	// The cookie store falls back to the parser-level max-age when it has
	// no TTL of its own.
	if cs, ok := m.store.(*CookieStore); ok && cs.fallback == 0 {
		if cp, ok := m.parser.(*CookieParser); ok {
			cs.fallback = cp.MaxAge()
		}
	}

	return m
}

// Parser returns the configured parser.
func (m *Manager) Parser() Parser { return m.parser }

// Store returns the configured store.
func (m *Manager) Store() Store { return m.store }

// resolve runs the resolution state machine for one request: extract info,
// validate it against the store, and fall back to creating a brand-new
// session on absence or soft failure (session-fixation-safe). A non-nil
// error is always a hard failure that must abort the request.
func (m *Manager) resolve(ctx context.Context, r *http.Request, acc *Accumulator) (*Session, error) {
	sess := &Session{manager: m, request: r, acc: acc}

	info, err := m.parser.Get(r)
	if err == nil {
		meta, data, err := m.store.Get(ctx, info)
		if err == nil {
			// Session is already valid client-side; no new mutation.
			sess.bind(meta, data)
			return sess, nil
		}
		if !errors.Is(err, ErrSessionInvalid) {
			return nil, err
		}
		m.logger.DebugContext(ctx, "session rejected by store, creating a new one",
			slog.String("session_id", info.ID))
	}

	meta, data, err := m.store.Create(ctx, r, nil)
	if err != nil {
		return nil, err
	}

	sess.bind(meta, data)
	acc.Add(m.parser.Set(meta))
	return sess, nil
}
