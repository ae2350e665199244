package session

import (
	"time"

	"github.com/caarlos0/env/v11"
)

const defaultCookieName = "session"

// Config holds session manager configuration. Twelve-factor applications
// can populate it straight from the environment via LoadConfig.
type Config struct {
	// CookieName is the name of the session cookie (default: "session")
	CookieName string `env:"SESSION_COOKIE_NAME" envDefault:"session"`

	// Secret seeds the cookie store's encryption key (min 32 chars).
	Secret string `env:"SESSION_SECRET" envDefault:""`

	// TTL is the session time-to-live.
	TTL time.Duration `env:"SESSION_TTL" envDefault:"24h"`

	// Rolling refreshes the embedded expiry on every successful read.
	Rolling bool `env:"SESSION_ROLLING" envDefault:"false"`

	// AutoSave persists session data after each request.
	AutoSave bool `env:"SESSION_AUTO_SAVE" envDefault:"false"`

	// SecureCookies enables the Secure flag on session cookies
	// (recommended for production)
	SecureCookies bool `env:"SESSION_SECURE_COOKIES" envDefault:"false"`
}

// DefaultConfig returns default session configuration.
func DefaultConfig() Config {
	return Config{
		CookieName: defaultCookieName,
		TTL:        24 * time.Hour,
	}
}

// LoadConfig populates a Config from environment variables.
func LoadConfig() (Config, error) {
	return env.ParseAs[Config]()
}

// NewFromConfig creates a new Manager from the provided Config. Additional
// options are applied on top.
func NewFromConfig(cfg Config, opts ...Option) *Manager {
	configOpts := []Option{WithConfig(cfg)}
	configOpts = append(configOpts, opts...)
	return New(configOpts...)
}
