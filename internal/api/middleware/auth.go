// Package middleware provides HTTP middleware for the skiffd REST API.
package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/skiffworks/skiff/internal/auth"
)

type contextKey string

const claimsContextKey contextKey = "claims"

// JWTAuth returns middleware that requires a valid access token on every
// request. Validated claims are stored in the request context.
func JWTAuth(tokens *auth.Service) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token := extractBearerToken(r)
			if token == "" {
				http.Error(w, "Authorization header required", http.StatusUnauthorized)
				return
			}

			claims, err := tokens.VerifyAccess(token)
			if err != nil {
				http.Error(w, "Invalid or expired token", http.StatusUnauthorized)
				return
			}

			ctx := context.WithValue(r.Context(), claimsContextKey, claims)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// GetClaimsFromContext retrieves validated claims from the request context.
// Returns nil and false if no claims are present.
func GetClaimsFromContext(ctx context.Context) (*auth.Claims, bool) {
	claims, ok := ctx.Value(claimsContextKey).(*auth.Claims)
	return claims, ok
}

// extractBearerToken pulls the token out of the Authorization header.
// Returns an empty string if the header is missing or malformed.
func extractBearerToken(r *http.Request) string {
	header := r.Header.Get("Authorization")
	if header == "" {
		return ""
	}

	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return ""
	}

	return parts[1]
}
