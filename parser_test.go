package session_test

import (
	"encoding/base64"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/httpware/session"
)

// applyMutation renders a mutation and returns the cookie it set.
func applyMutation(t *testing.T, m session.Mutation) *http.Cookie {
	t.Helper()

	w := httptest.NewRecorder()
	m.Apply(w)

	cookies := w.Result().Cookies()
	require.Len(t, cookies, 1)
	return cookies[0]
}

func TestCookieParserGet(t *testing.T) {
	t.Parallel()

	parser := session.NewCookieParser("sid")

	t.Run("absent cookie", func(t *testing.T) {
		t.Parallel()

		r := httptest.NewRequest("GET", "/", nil)
		_, err := parser.Get(r)
		assert.ErrorIs(t, err, session.ErrNoSession)
	})

	t.Run("malformed value is treated as absence", func(t *testing.T) {
		t.Parallel()

		r := httptest.NewRequest("GET", "/", nil)
		r.AddCookie(&http.Cookie{Name: "sid", Value: "!!not-base64!!"})

		_, err := parser.Get(r)
		assert.ErrorIs(t, err, session.ErrNoSession)
	})

	t.Run("empty decoded identifier is treated as absence", func(t *testing.T) {
		t.Parallel()

		r := httptest.NewRequest("GET", "/", nil)
		r.AddCookie(&http.Cookie{
			Name:  "sid",
			Value: base64.RawURLEncoding.EncodeToString([]byte(".payload-without-id")),
		})

		_, err := parser.Get(r)
		assert.ErrorIs(t, err, session.ErrNoSession)
	})

	t.Run("round trip through set", func(t *testing.T) {
		t.Parallel()

		meta := session.Meta{ID: "abc-123", Payload: "sealed-bytes"}
		cookie := applyMutation(t, parser.Set(meta))
		assert.Equal(t, "sid", cookie.Name)

		r := httptest.NewRequest("GET", "/", nil)
		r.AddCookie(cookie)

		info, err := parser.Get(r)
		require.NoError(t, err)
		assert.Equal(t, "abc-123", info.ID)
		assert.Equal(t, "sealed-bytes", info.Payload)
	})

	t.Run("identifier without payload", func(t *testing.T) {
		t.Parallel()

		cookie := applyMutation(t, parser.Set(session.Meta{ID: "bare-id"}))

		r := httptest.NewRequest("GET", "/", nil)
		r.AddCookie(cookie)

		info, err := parser.Get(r)
		require.NoError(t, err)
		assert.Equal(t, "bare-id", info.ID)
		assert.Empty(t, info.Payload)
	})
}

func TestCookieParserSet(t *testing.T) {
	t.Parallel()

	t.Run("relative max age by default", func(t *testing.T) {
		t.Parallel()

		parser := session.NewCookieParser("sid", session.WithCookieMaxAge(time.Hour))
		cookie := applyMutation(t, parser.Set(session.Meta{ID: "x"}))

		assert.Equal(t, 3600, cookie.MaxAge)
		assert.True(t, cookie.Expires.IsZero())
	})

	t.Run("absolute expiry overrides max age", func(t *testing.T) {
		t.Parallel()

		parser := session.NewCookieParser("sid", session.WithCookieMaxAge(time.Hour))
		expires := time.Now().Add(2 * time.Hour)
		cookie := applyMutation(t, parser.Set(session.Meta{ID: "x", ExpiresAt: expires}))

		assert.Zero(t, cookie.MaxAge)
		assert.WithinDuration(t, expires, cookie.Expires, time.Second)
	})

	t.Run("attributes pass through", func(t *testing.T) {
		t.Parallel()

		parser := session.NewCookieParser("sid",
			session.WithCookiePath("/app"),
			session.WithCookieDomain("example.com"),
			session.WithSecureCookie(true),
			session.WithHTTPOnly(true),
			session.WithSameSite(http.SameSiteStrictMode),
		)
		cookie := applyMutation(t, parser.Set(session.Meta{ID: "x"}))

		assert.Equal(t, "/app", cookie.Path)
		assert.Equal(t, "example.com", cookie.Domain)
		assert.True(t, cookie.Secure)
		assert.True(t, cookie.HttpOnly)
		assert.Equal(t, http.SameSiteStrictMode, cookie.SameSite)
	})
}

func TestCookieParserRemove(t *testing.T) {
	t.Parallel()

	parser := session.NewCookieParser("sid")
	cookie := applyMutation(t, parser.Remove(session.Meta{ID: "x"}))

	assert.Equal(t, "sid", cookie.Name)
	assert.Empty(t, cookie.Value)
	assert.Negative(t, cookie.MaxAge)
	assert.True(t, cookie.Expires.Before(time.Now()))
}

// reverseCodec flips bytes so decoded output differs from base64.
type reverseCodec struct{}

func (reverseCodec) Encode(b []byte) string {
	out := make([]byte, len(b))
	for i, c := range b {
		out[len(b)-1-i] = c
	}
	return base64.RawURLEncoding.EncodeToString(out)
}

func (rc reverseCodec) Decode(s string) ([]byte, error) {
	raw, err := base64.RawURLEncoding.DecodeString(s)
	if err != nil {
		return nil, err
	}
	out := make([]byte, len(raw))
	for i, c := range raw {
		out[len(raw)-1-i] = c
	}
	return out, nil
}

func TestCookieParserCustomCodec(t *testing.T) {
	t.Parallel()

	parser := session.NewCookieParser("sid", session.WithParserCodec(reverseCodec{}))
	cookie := applyMutation(t, parser.Set(session.Meta{ID: "abc", Payload: "xyz"}))

	r := httptest.NewRequest("GET", "/", nil)
	r.AddCookie(cookie)

	info, err := parser.Get(r)
	require.NoError(t, err)
	assert.Equal(t, "abc", info.ID)
	assert.Equal(t, "xyz", info.Payload)
}
