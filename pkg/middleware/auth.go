package middleware

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"
)

type contextKeyType string

const (
	userIDKey   contextKeyType = "user_id"
	roleKey     contextKeyType = "role"
	verifiedKey contextKeyType = "verified"
)

// Claims represents the session claims extracted by the auth middleware.
type Claims struct {
	UserID   string `json:"user_id"`
	Email    string `json:"email"`
	Role     string `json:"role"`
	Verified bool   `json:"verified"`
}

// TokenValidator is a function that validates a session token and returns
// claims. This allows the app to inject its own validation logic.
type TokenValidator func(token string) (*Claims, error)

// SessionCookieName is the cookie the browser client stores the session
// token in.
const SessionCookieName = "booknest_token"

// resolveToken extracts the session token from the request, preferring the
// session cookie and falling back to an Authorization: Bearer header for
// non-browser clients.
func resolveToken(r *http.Request) string {
	if c, err := r.Cookie(SessionCookieName); err == nil && c.Value != "" {
		return c.Value
	}

	authHeader := r.Header.Get("Authorization")
	if authHeader == "" {
		return ""
	}
	parts := strings.SplitN(authHeader, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "bearer") {
		return ""
	}
	return parts[1]
}

// Auth middleware validates session tokens and injects user claims into
// context. Requests without a valid token are rejected with 401.
func Auth(validate TokenValidator) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token := resolveToken(r)
			if token == "" {
				writeAuthError(w, "missing session token")
				return
			}

			claims, err := validate(token)
			if err != nil {
				writeAuthError(w, "invalid or expired session token")
				return
			}

			next.ServeHTTP(w, r.WithContext(withClaims(r.Context(), claims)))
		})
	}
}

// OptionalAuth injects claims into context when a valid token is present but
// lets unauthenticated requests through. Used on public catalog routes so
// handlers can personalize responses without requiring a session.
func OptionalAuth(validate TokenValidator) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if token := resolveToken(r); token != "" {
				if claims, err := validate(token); err == nil {
					r = r.WithContext(withClaims(r.Context(), claims))
				}
			}
			next.ServeHTTP(w, r)
		})
	}
}

// RequireRole middleware checks that the authenticated user has one of the
// required roles.
func RequireRole(roles ...string) func(http.Handler) http.Handler {
	roleSet := make(map[string]struct{}, len(roles))
	for _, r := range roles {
		roleSet[r] = struct{}{}
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			role := RoleFromContext(r.Context())
			if _, ok := roleSet[role]; !ok {
				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(http.StatusForbidden)
				_ = json.NewEncoder(w).Encode(map[string]string{
					"code":    "FORBIDDEN",
					"message": "insufficient permissions",
				})
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

func withClaims(ctx context.Context, claims *Claims) context.Context {
	ctx = context.WithValue(ctx, userIDKey, claims.UserID)
	ctx = context.WithValue(ctx, roleKey, claims.Role)
	ctx = context.WithValue(ctx, verifiedKey, claims.Verified)
	return ctx
}

// UserIDFromContext extracts the user ID from the request context.
func UserIDFromContext(ctx context.Context) string {
	if id, ok := ctx.Value(userIDKey).(string); ok {
		return id
	}
	return ""
}

// RoleFromContext extracts the user role from the request context.
func RoleFromContext(ctx context.Context) string {
	if role, ok := ctx.Value(roleKey).(string); ok {
		return role
	}
	return ""
}

// VerifiedFromContext reports whether the authenticated user has verified
// their email address.
func VerifiedFromContext(ctx context.Context) bool {
	if v, ok := ctx.Value(verifiedKey).(bool); ok {
		return v
	}
	return false
}

func writeAuthError(w http.ResponseWriter, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusUnauthorized)
	_ = json.NewEncoder(w).Encode(map[string]string{
		"code":    "UNAUTHORIZED",
		"message": message,
	})
}
