package session_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/httpware/session"
)

func BenchmarkMiddlewareNewSession(b *testing.B) {
	manager := session.New(session.WithSecret(testSecret))
	handler := manager.Middleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))

	b.ReportAllocs()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		handler.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest("GET", "/", nil))
	}
}

func BenchmarkMiddlewareExistingSession(b *testing.B) {
	manager := session.New(session.WithSecret(testSecret))
	handler := manager.Middleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		sess := session.MustFromContext(r.Context())
		sess.Get("user")
	}))

	seed := httptest.NewRecorder()
	handler.ServeHTTP(seed, httptest.NewRequest("GET", "/", nil))
	var cookie *http.Cookie
	for _, c := range seed.Result().Cookies() {
		if c.Name == "session" {
			cookie = c
		}
	}
	if cookie == nil {
		b.Fatal("no session cookie minted")
	}

	b.ReportAllocs()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		r := httptest.NewRequest("GET", "/", nil)
		r.AddCookie(cookie)
		handler.ServeHTTP(httptest.NewRecorder(), r)
	}
}

func BenchmarkCookieStoreRoundTrip(b *testing.B) {
	store, err := session.NewCookieStore(testSecret)
	if err != nil {
		b.Fatal(err)
	}

	ctx := session.WithAccumulator(context.Background(), session.NewAccumulator())
	r := httptest.NewRequest("GET", "/", nil)

	meta, _, err := store.Create(ctx, r, session.Data{"user": "alice", "role": "admin"})
	if err != nil {
		b.Fatal(err)
	}
	info := session.Info{ID: meta.ID, Payload: meta.Payload}

	b.ReportAllocs()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if _, _, err := store.Get(ctx, info); err != nil {
			b.Fatal(err)
		}
	}
}
