package session

import (
	"net/http"
	"strings"
	"time"
)

// Parser extracts session info from a request and produces the response
// mutations that set or remove the client-visible session representation.
// Implementations are pure functions of their inputs plus configuration;
// they never touch the response directly.
type Parser interface {
	// Get extracts session info from the request. An absent or malformed
	// carrier yields ErrNoSession, never a fault.
	Get(r *http.Request) (Info, error)

	// Set produces a mutation writing the session to the client. An
	// absolute expiry carried by the meta overrides the parser's relative
	// max-age.
	Set(meta Meta) Mutation

	// Remove produces a mutation that immediately invalidates the
	// client-visible session carrier.
	Remove(meta Meta) Mutation
}

// cookieOptions are the attributes applied to emitted session cookies.
// Shared by CookieParser and CookieStore so that both render the cookie the
// same way.
type cookieOptions struct {
	path     string
	domain   string
	maxAge   time.Duration
	secure   bool
	httpOnly bool
	sameSite http.SameSite
}

func defaultCookieOptions() cookieOptions {
	return cookieOptions{
		path:     "/",
		httpOnly: true,
		sameSite: http.SameSiteLaxMode,
	}
}

// CookieParser is the default Parser: a single named cookie whose value is
// the codec-encoded session identifier, with the sealed payload appended
// after a dot for client-side stores.
type CookieParser struct {
	name  string
	codec Codec
	opts  cookieOptions
}

// ParserOption configures a CookieParser.
type ParserOption func(*CookieParser)

// WithParserCodec replaces the default base64 codec.
func WithParserCodec(c Codec) ParserOption {
	return func(p *CookieParser) { p.codec = c }
}

// WithCookiePath sets the cookie path attribute.
func WithCookiePath(path string) ParserOption {
	return func(p *CookieParser) { p.opts.path = path }
}

// WithCookieDomain sets the cookie domain attribute.
func WithCookieDomain(domain string) ParserOption {
	return func(p *CookieParser) { p.opts.domain = domain }
}

// WithCookieMaxAge sets the default relative lifetime of the session
// cookie. A meta carrying an absolute expiry always takes precedence.
func WithCookieMaxAge(d time.Duration) ParserOption {
	return func(p *CookieParser) { p.opts.maxAge = d }
}

// WithSecureCookie sets the Secure flag (recommended for production).
func WithSecureCookie(secure bool) ParserOption {
	return func(p *CookieParser) { p.opts.secure = secure }
}

// WithHTTPOnly sets the HttpOnly flag.
func WithHTTPOnly(httpOnly bool) ParserOption {
	return func(p *CookieParser) { p.opts.httpOnly = httpOnly }
}

// WithSameSite sets the SameSite attribute.
func WithSameSite(mode http.SameSite) ParserOption {
	return func(p *CookieParser) { p.opts.sameSite = mode }
}

// NewCookieParser creates a parser reading and writing the named cookie.
func NewCookieParser(name string, opts ...ParserOption) *CookieParser {
	p := &CookieParser{
		name:  name,
		codec: DefaultCodec,
		opts:  defaultCookieOptions(),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Name returns the cookie name the parser operates on.
func (p *CookieParser) Name() string { return p.name }

// MaxAge returns the parser's default relative cookie lifetime.
func (p *CookieParser) MaxAge() time.Duration { return p.opts.maxAge }

func (p *CookieParser) Get(r *http.Request) (Info, error) {
	c, err := r.Cookie(p.name)
	if err != nil || c.Value == "" {
		return Info{}, ErrNoSession
	}

	raw, err := p.codec.Decode(c.Value)
	if err != nil {
		// Malformed values report as absence, same as no cookie at all.
		return Info{}, ErrNoSession
	}

	id, payload, _ := strings.Cut(string(raw), ".")
	if id == "" {
		return Info{}, ErrNoSession
	}

	return Info{ID: id, Payload: payload}, nil
}

func (p *CookieParser) Set(meta Meta) Mutation {
	return SetCookieMutation(p.cookie(meta))
}

func (p *CookieParser) Remove(meta Meta) Mutation {
	c := &http.Cookie{
		Name:     p.name,
		Value:    "",
		Path:     p.opts.path,
		Domain:   p.opts.domain,
		MaxAge:   -1,
		Expires:  time.Unix(0, 0),
		Secure:   p.opts.secure,
		HttpOnly: p.opts.httpOnly,
		SameSite: p.opts.sameSite,
	}
	return SetCookieMutation(c)
}

func (p *CookieParser) cookie(meta Meta) *http.Cookie {
	value := meta.ID
	if meta.Payload != "" {
		value += "." + meta.Payload
	}

	c := &http.Cookie{
		Name:     p.name,
		Value:    p.codec.Encode([]byte(value)),
		Path:     p.opts.path,
		Domain:   p.opts.domain,
		Secure:   p.opts.secure,
		HttpOnly: p.opts.httpOnly,
		SameSite: p.opts.sameSite,
	}

	if !meta.ExpiresAt.IsZero() {
		c.Expires = meta.ExpiresAt
	} else if p.opts.maxAge > 0 {
		c.MaxAge = int(p.opts.maxAge.Seconds())
	}

	return c
}
