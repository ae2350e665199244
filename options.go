package session

import (
	"log/slog"
	"time"
)

// Option is a functional option for configuring the Manager.
type Option func(*Manager)

// WithParser sets a custom session parser.
func WithParser(p Parser) Option {
	return func(m *Manager) { m.parser = p }
}

// WithStore sets a custom session store.
func WithStore(s Store) Option {
	return func(m *Manager) { m.store = s }
}

// WithConfig sets custom configuration.
func WithConfig(cfg Config) Option {
	return func(m *Manager) { m.config = cfg }
}

// WithCookieName sets the session cookie name used by the default parser.
func WithCookieName(name string) Option {
	return func(m *Manager) { m.config.CookieName = name }
}

// WithSecret sets the secret for the default cookie store.
func WithSecret(secret string) Option {
	return func(m *Manager) { m.config.Secret = secret }
}

// WithSessionTTL sets the session time-to-live for the default parser and
// store.
func WithSessionTTL(ttl time.Duration) Option {
	return func(m *Manager) { m.config.TTL = ttl }
}

// WithRollingExpiration enables refresh-on-read for the default store.
func WithRollingExpiration(rolling bool) Option {
	return func(m *Manager) { m.config.Rolling = rolling }
}

// WithAutoSave controls whether the middleware persists the session data
// after the downstream handler returns.
func WithAutoSave(autoSave bool) Option {
	return func(m *Manager) { m.config.AutoSave = autoSave }
}

// WithLogger sets the structured logger. Defaults to a discard logger.
func WithLogger(logger *slog.Logger) Option {
	return func(m *Manager) {
		if logger != nil {
			m.logger = logger
		}
	}
}
