package session

import "context"

type sessionContextKey struct{}

// WithSession returns a context carrying the session cell.
func WithSession(ctx context.Context, s *Session) context.Context {
	return context.WithValue(ctx, sessionContextKey{}, s)
}

// FromContext retrieves the request's session cell.
func FromContext(ctx context.Context) (*Session, bool) {
	s, ok := ctx.Value(sessionContextKey{}).(*Session)
	return s, ok
}

// MustFromContext retrieves the request's session cell or panics. Use only
// below the session middleware.
func MustFromContext(ctx context.Context) *Session {
	s, ok := FromContext(ctx)
	if !ok {
		panic("session: not found in context")
	}
	return s
}
