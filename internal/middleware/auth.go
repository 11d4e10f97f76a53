package middleware

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/onnwee/newsai/internal/auth"
)

// Error codes written by middleware. The api package re-exports them.
const (
	ErrCodeAuthFailed  = "auth_failed"
	ErrCodeForbidden   = "forbidden"
	ErrCodeRateLimited = "rate_limited"
)

type userIDKey struct{}
type userRoleKey struct{}

// SetUser stores the authenticated user's ID and role in the context.
func SetUser(ctx context.Context, userID int64, role string) context.Context {
	ctx = context.WithValue(ctx, userIDKey{}, userID)
	return context.WithValue(ctx, userRoleKey{}, role)
}

// GetUserID returns the authenticated user ID, or 0 when unauthenticated.
func GetUserID(ctx context.Context) int64 {
	if id, ok := ctx.Value(userIDKey{}).(int64); ok {
		return id
	}
	return 0
}

// GetUserRole returns the authenticated user's role, or "".
func GetUserRole(ctx context.Context) string {
	if role, ok := ctx.Value(userRoleKey{}).(string); ok {
		return role
	}
	return ""
}

// TokenValidator validates access tokens. *auth.JWTService implements it.
type TokenValidator interface {
	ValidateAccessToken(token string) (*auth.Claims, error)
}

// bearerToken extracts the token from an "Authorization: Bearer <token>" header.
func bearerToken(r *http.Request) string {
	header := r.Header.Get("Authorization")
	scheme, token, ok := strings.Cut(header, " ")
	if !ok || !strings.EqualFold(scheme, "Bearer") {
		return ""
	}
	return strings.TrimSpace(token)
}

// RequireAuth rejects requests without a valid access token with 401 and
// stores the user ID and role in the request context.
func RequireAuth(validator TokenValidator) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token := bearerToken(r)
			if token == "" {
				writeError(w, r.Context(), http.StatusUnauthorized, ErrCodeAuthFailed, "Token is missing")
				return
			}

			claims, err := validator.ValidateAccessToken(token)
			if err != nil {
				msg := "Token is invalid"
				if errors.Is(err, auth.ErrExpiredToken) {
					msg = "Token has expired"
				}
				writeError(w, r.Context(), http.StatusUnauthorized, ErrCodeAuthFailed, msg)
				return
			}
			userID, err := claims.UserID()
			if err != nil {
				writeError(w, r.Context(), http.StatusUnauthorized, ErrCodeAuthFailed, "Token is invalid")
				return
			}

			ctx := SetUser(r.Context(), userID, claims.Role)
			UpdateResponseContext(w, ctx)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// RequireRole rejects authenticated users without the given role with 403.
// It must run inside RequireAuth.
func RequireRole(role string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if GetUserRole(r.Context()) != role {
				writeError(w, r.Context(), http.StatusForbidden, ErrCodeForbidden, "Admin access required")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// writeError writes the {"error":{"code","message"}} envelope and records
// the code for the access log.
func writeError(w http.ResponseWriter, ctx context.Context, status int, code, message string) {
	ctx = SetErrorCode(ctx, code)
	UpdateResponseContext(w, ctx)

	body := map[string]map[string]string{
		"error": {"code": code, "message": message},
	}
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		slog.ErrorContext(ctx, "failed to write error response", "error", err)
	}
}
