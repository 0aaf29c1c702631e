// ABOUTME: Bearer-token authentication middleware for protected endpoints
// ABOUTME: Validates the Authorization header and stashes the user ID in context

package middleware

import (
	"context"
	"log/slog"
	"net/http"
	"strings"
)

// TokenVerifier validates a bearer token and returns the user ID it was
// issued to.
type TokenVerifier interface {
	VerifyToken(token string) (int, error)
}

// contextKey is a private type for context keys to avoid collisions
type contextKey string

const userIDKey contextKey = "userID"

// RequireAuth returns middleware that rejects requests without a valid
// bearer token. On success the authenticated user ID is placed in the
// request context.
func RequireAuth(verifier TokenVerifier) func(http.HandlerFunc) http.HandlerFunc {
	return func(next http.HandlerFunc) http.HandlerFunc {
		return func(w http.ResponseWriter, r *http.Request) {
			authHeader := r.Header.Get("Authorization")
			if authHeader == "" {
				writeJSONError(w, "Token is missing", "", http.StatusUnauthorized)
				return
			}
			if !strings.HasPrefix(authHeader, "Bearer ") {
				slog.Debug("Auth rejected: invalid format", "path", r.URL.Path)
				writeJSONError(w, "Invalid authorization format", "", http.StatusUnauthorized)
				return
			}

			token := strings.TrimPrefix(authHeader, "Bearer ")
			userID, err := verifier.VerifyToken(token)
			if err != nil {
				slog.Debug("Auth rejected: invalid token", "path", r.URL.Path, "error", err.Error())
				writeJSONError(w, "Token is invalid or expired", "", http.StatusUnauthorized)
				return
			}

			ctx := context.WithValue(r.Context(), userIDKey, userID)
			next(w, r.WithContext(ctx))
		}
	}
}

// UserID extracts the authenticated user ID from the request context.
// The bool is false when RequireAuth did not run for this request.
func UserID(r *http.Request) (int, bool) {
	id, ok := r.Context().Value(userIDKey).(int)
	return id, ok
}
