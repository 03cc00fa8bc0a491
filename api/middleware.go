/*
middleware.go - Authentication and request logging middleware

PURPOSE:
  Resolves bearer tokens into an identity on the request context, and logs
  every request with method, path, status, and duration.

IDENTITY CONTRACT:
  The domain packages never reach into ambient session state. This
  middleware is the single place a token becomes an identity string; from
  here on, handlers pass it explicitly into every core call.

SEE ALSO:
  - auth/auth.go: Token verification
  - handlers.go: Consumers of IdentityFromContext
*/
package api

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/waste2give/marketplace/auth"
	"github.com/waste2give/marketplace/donation"
)

// =============================================================================
// IDENTITY
// =============================================================================

type contextKey string

const identityKey contextKey = "identity"

// IdentityFromContext returns the authenticated user id, or "" when the
// request was not authenticated.
func IdentityFromContext(ctx context.Context) donation.UserID {
	if id, ok := ctx.Value(identityKey).(donation.UserID); ok {
		return id
	}
	return ""
}

// ContextWithIdentity is exported for tests that exercise handlers directly.
func ContextWithIdentity(ctx context.Context, id donation.UserID) context.Context {
	return context.WithValue(ctx, identityKey, id)
}

// RequireAuth rejects requests without a valid bearer token and stores the
// resolved identity on the context.
func RequireAuth(svc *auth.Service) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			header := r.Header.Get("Authorization")
			if header == "" {
				writeError(w, http.StatusUnauthorized, "Authentication required", nil)
				return
			}
			parts := strings.SplitN(header, " ", 2)
			if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
				writeError(w, http.StatusUnauthorized, "Invalid authentication format", nil)
				return
			}
			claims, err := svc.VerifyToken(parts[1])
			if err != nil {
				writeError(w, http.StatusForbidden, "Invalid or expired token", nil)
				return
			}
			ctx := ContextWithIdentity(r.Context(), donation.UserID(claims.ID))
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// =============================================================================
// REQUEST LOGGING
// =============================================================================

type statusWriter struct {
	http.ResponseWriter
	status int
}

func (sw *statusWriter) WriteHeader(code int) {
	sw.status = code
	sw.ResponseWriter.WriteHeader(code)
}

// RequestLogger logs one line per request.
func RequestLogger(l zerolog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			sw := &statusWriter{ResponseWriter: w, status: http.StatusOK}
			next.ServeHTTP(sw, r)
			l.Info().
				Str("method", r.Method).
				Str("path", r.URL.Path).
				Int("status", sw.status).
				Dur("duration", time.Since(start)).
				Msg("request")
		})
	}
}
