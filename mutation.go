package session

import (
	"context"
	"net/http"
	"sync"
)

// Mutation is a deferred instruction to alter the outgoing response, such
// as setting or clearing a cookie. Mutations accumulate during request
// processing and are merged into the response exactly once, after the
// downstream handler returns.
type Mutation struct {
	// Key identifies the response field the mutation targets (the cookie
	// name). When several mutations share a key, the last one accumulated
	// wins at merge time.
	Key string

	apply func(w http.ResponseWriter)
}

// Apply writes the mutation to the response.
func (m Mutation) Apply(w http.ResponseWriter) {
	if m.apply != nil {
		m.apply(w)
	}
}

// SetCookieMutation returns a mutation that adds the cookie to the response.
func SetCookieMutation(c *http.Cookie) Mutation {
	return Mutation{
		Key:   c.Name,
		apply: func(w http.ResponseWriter) { http.SetCookie(w, c) },
	}
}

// Accumulator is the request-scoped, append-only list of response mutations
// produced while a session is resolved and used. The middleware installs one
// into the request context and reads it exactly once, at merge time.
// It must never be shared across requests.
type Accumulator struct {
	mu        sync.Mutex
	mutations []Mutation
	destroyed map[string]struct{}
}

// NewAccumulator creates an empty accumulator.
func NewAccumulator() *Accumulator {
	return &Accumulator{}
}

// Add appends a mutation, preserving arrival order.
func (a *Accumulator) Add(m Mutation) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.mutations = append(a.mutations, m)
}

// Mutations returns a copy of the accumulated mutations in arrival order.
func (a *Accumulator) Mutations() []Mutation {
	a.mu.Lock()
	defer a.mu.Unlock()
	out := make([]Mutation, len(a.mutations))
	copy(out, a.mutations)
	return out
}

// Apply merges the accumulated mutations into the response in arrival
// order. When several mutations target the same key, only the last one is
// applied.
func (a *Accumulator) Apply(w http.ResponseWriter) {
	a.mu.Lock()
	defer a.mu.Unlock()

	last := make(map[string]int, len(a.mutations))
	for i, m := range a.mutations {
		if m.Key != "" {
			last[m.Key] = i
		}
	}

	for i, m := range a.mutations {
		if m.Key != "" && last[m.Key] != i {
			continue
		}
		m.Apply(w)
	}
}

// markDestroyed records a tombstone for a destroyed session identifier.
// The cookie store relies on these to keep Destroy idempotent within a
// request even though it has no server-side state to consult.
func (a *Accumulator) markDestroyed(id string) {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.destroyed == nil {
		a.destroyed = make(map[string]struct{})
	}
	a.destroyed[id] = struct{}{}
}

func (a *Accumulator) isDestroyed(id string) bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	_, ok := a.destroyed[id]
	return ok
}

type accumulatorContextKey struct{}

// WithAccumulator returns a context carrying the accumulator.
func WithAccumulator(ctx context.Context, a *Accumulator) context.Context {
	return context.WithValue(ctx, accumulatorContextKey{}, a)
}

// AccumulatorFromContext retrieves the request's accumulator, if any.
func AccumulatorFromContext(ctx context.Context) (*Accumulator, bool) {
	a, ok := ctx.Value(accumulatorContextKey{}).(*Accumulator)
	return a, ok
}
