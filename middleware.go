package session

import (
	"errors"
	"log/slog"
	"net/http"
)

// Middleware resolves the request's session before the downstream handler
// runs and merges the accumulated response mutations after it returns.
//
// Hard store failures abort the request with 500 before the handler runs
// (during resolution) or replace its response afterwards (during autosave);
// a soft failure from the final autosave replaces it with 401. The
// downstream handler reaches the session through FromContext.
func (m *Manager) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		acc := NewAccumulator()
		ctx := WithAccumulator(r.Context(), acc)
		r = r.WithContext(ctx)

		sess, err := m.resolve(ctx, r, acc)
		if err != nil {
			m.logger.ErrorContext(ctx, "session resolution failed", slog.Any("error", err))
			http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
			return
		}

		bw := newBufferedWriter()
		next.ServeHTTP(bw, r.WithContext(WithSession(ctx, sess)))

		if m.config.AutoSave {
			if meta, ok := sess.Meta(); ok {
				if err := sess.SaveToStore(ctx); err != nil {
					if errors.Is(err, ErrSessionInvalid) {
						m.logger.DebugContext(ctx, "autosave rejected by store",
							slog.String("session_id", meta.ID))
						http.Error(w, http.StatusText(http.StatusUnauthorized), http.StatusUnauthorized)
						return
					}
					m.logger.ErrorContext(ctx, "autosave failed",
						slog.String("session_id", meta.ID), slog.Any("error", err))
					http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
					return
				}
			}
		}

		// Merge point: mutations first so cookies land before the buffered
		// status and body hit the wire.
		acc.Apply(w)
		bw.flush(w)
	})
}
