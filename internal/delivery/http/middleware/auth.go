package middleware

import (
	"context"
	"log/slog"
	"net/http"
	"strings"

	"virtualevents/internal/delivery/http/helpers"
	"virtualevents/internal/domain"
	"virtualevents/internal/session"
)

type contextKey string

const sessionKey contextKey = "session"

// SessionLookup finds a live session by id.
type SessionLookup interface {
	Get(id string) (*session.Context, bool)
}

// WithSession returns a context carrying sess. Used by RequireAuth and tests.
func WithSession(ctx context.Context, sess domain.Session) context.Context {
	return context.WithValue(ctx, sessionKey, sess)
}

// SessionFromContext returns the authenticated session, if present.
func SessionFromContext(ctx context.Context) (domain.Session, bool) {
	sess, ok := ctx.Value(sessionKey).(domain.Session)
	return sess, ok && sess != nil
}

// RequireAuth validates the Bearer token, resolves the session it names and
// puts that session in the request context. A token whose session was closed
// (logout or idle sweep) is rejected even if it has not expired.
func RequireAuth(verifier domain.TokenVerifier, sessions SessionLookup, logger *slog.Logger) func(http.HandlerFunc) http.HandlerFunc {
	return func(next http.HandlerFunc) http.HandlerFunc {
		return func(w http.ResponseWriter, r *http.Request) {
			auth := r.Header.Get("Authorization")
			if auth == "" {
				helpers.WriteJSONError(w, http.StatusUnauthorized, helpers.ErrCodeUnauthorized, "missing authorization header")
				return
			}
			const prefix = "Bearer "
			if !strings.HasPrefix(auth, prefix) {
				helpers.WriteJSONError(w, http.StatusUnauthorized, helpers.ErrCodeUnauthorized, "invalid authorization format")
				return
			}
			token := strings.TrimSpace(auth[len(prefix):])
			if token == "" {
				helpers.WriteJSONError(w, http.StatusUnauthorized, helpers.ErrCodeUnauthorized, "missing token")
				return
			}
			claims, err := verifier.Verify(token)
			if err != nil {
				helpers.WriteJSONError(w, http.StatusUnauthorized, helpers.ErrCodeUnauthorized, "invalid or expired token")
				return
			}
			sess, ok := sessions.Get(claims.SessionID)
			if !ok {
				logger.DebugContext(r.Context(), "token for closed session", "session_id", claims.SessionID)
				helpers.WriteJSONError(w, http.StatusUnauthorized, helpers.ErrCodeUnauthorized, "session expired")
				return
			}
			if user, ok := sess.CurrentUser(); !ok || user != claims.Username {
				helpers.WriteJSONError(w, http.StatusUnauthorized, helpers.ErrCodeUnauthorized, "session expired")
				return
			}
			next(w, r.WithContext(WithSession(r.Context(), sess)))
		}
	}
}
