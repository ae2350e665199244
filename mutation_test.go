package session_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/httpware/session"
)

func TestAccumulator(t *testing.T) {
	t.Parallel()

	t.Run("applies mutations in arrival order", func(t *testing.T) {
		t.Parallel()

		acc := session.NewAccumulator()
		acc.Add(session.SetCookieMutation(&http.Cookie{Name: "a", Value: "1"}))
		acc.Add(session.SetCookieMutation(&http.Cookie{Name: "b", Value: "2"}))

		w := httptest.NewRecorder()
		acc.Apply(w)

		cookies := w.Result().Cookies()
		require.Len(t, cookies, 2)
		assert.Equal(t, "a", cookies[0].Name)
		assert.Equal(t, "b", cookies[1].Name)
	})

	t.Run("last write wins per key", func(t *testing.T) {
		t.Parallel()

		acc := session.NewAccumulator()
		acc.Add(session.SetCookieMutation(&http.Cookie{Name: "sid", Value: "stale"}))
		acc.Add(session.SetCookieMutation(&http.Cookie{Name: "other", Value: "x"}))
		acc.Add(session.SetCookieMutation(&http.Cookie{Name: "sid", Value: "fresh"}))

		w := httptest.NewRecorder()
		acc.Apply(w)

		cookies := w.Result().Cookies()
		require.Len(t, cookies, 2)

		byName := map[string]string{}
		for _, c := range cookies {
			byName[c.Name] = c.Value
		}
		assert.Equal(t, "fresh", byName["sid"])
		assert.Equal(t, "x", byName["other"])
	})

	t.Run("mutations returns a copy", func(t *testing.T) {
		t.Parallel()

		acc := session.NewAccumulator()
		acc.Add(session.SetCookieMutation(&http.Cookie{Name: "a"}))

		got := acc.Mutations()
		require.Len(t, got, 1)

		acc.Add(session.SetCookieMutation(&http.Cookie{Name: "b"}))
		assert.Len(t, got, 1)
		assert.Len(t, acc.Mutations(), 2)
	})

	t.Run("context round trip", func(t *testing.T) {
		t.Parallel()

		_, ok := session.AccumulatorFromContext(context.Background())
		assert.False(t, ok)

		acc := session.NewAccumulator()
		ctx := session.WithAccumulator(context.Background(), acc)

		got, ok := session.AccumulatorFromContext(ctx)
		require.True(t, ok)
		assert.Same(t, acc, got)
	})
}

func TestAccumulatorConcurrentAppend(t *testing.T) {
	t.Parallel()

	acc := session.NewAccumulator()
	done := make(chan struct{})

	for range 8 {
		go func() {
			defer func() { done <- struct{}{} }()
			for i := range 50 {
				acc.Add(session.SetCookieMutation(&http.Cookie{
					Name:    "c",
					Value:   time.Now().String(),
					MaxAge:  i,
					Expires: time.Now(),
				}))
			}
		}()
	}

	for range 8 {
		<-done
	}

	assert.Len(t, acc.Mutations(), 8*50)
}
