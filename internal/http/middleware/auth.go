package middleware

import (
	"context"
	"net/http"
	"slices"
	"strings"

	"github.com/dermanow/dermanow/internal/auth"
	"github.com/dermanow/dermanow/internal/identity"
)

type ctxKey int

const claimsKey ctxKey = iota

// Authenticate parses a bearer token when one is sent. Requests without
// a token pass through anonymous; a bad token is rejected.
func Authenticate(tokens *auth.TokenManager) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			h := r.Header.Get("Authorization")
			if h == "" {
				next.ServeHTTP(w, r)
				return
			}

			token, ok := strings.CutPrefix(h, "Bearer ")
			if !ok {
				http.Error(w, "malformed authorization header", http.StatusUnauthorized)
				return
			}

			claims, err := tokens.Parse(strings.TrimSpace(token))
			if err != nil {
				http.Error(w, "invalid session token", http.StatusUnauthorized)
				return
			}

			next.ServeHTTP(w, r.WithContext(WithClaims(r.Context(), claims)))
		})
	}
}

func WithClaims(ctx context.Context, c *auth.Claims) context.Context {
	return context.WithValue(ctx, claimsKey, c)
}

func ClaimsFrom(ctx context.Context) (*auth.Claims, bool) {
	c, ok := ctx.Value(claimsKey).(*auth.Claims)
	return c, ok
}

// RequireSession rejects anonymous requests.
func RequireSession(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if _, ok := ClaimsFrom(r.Context()); !ok {
			http.Error(w, "wallet session required", http.StatusUnauthorized)
			return
		}

		next.ServeHTTP(w, r)
	})
}

// RequireRole allows only sessions holding one of the roles.
func RequireRole(roles ...identity.Role) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			claims, ok := ClaimsFrom(r.Context())
			if !ok {
				http.Error(w, "wallet session required", http.StatusUnauthorized)
				return
			}

			if !slices.Contains(roles, claims.Role) {
				http.Error(w, "role not allowed", http.StatusForbidden)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}
