package auth

import (
	"context"
	"net/http"
	"strings"

	"github.com/medviet/clinic-booking/internal/clinic"
)

type contextKey string

const identityKey contextKey = "identity"

// Middleware parses an optional Authorization: Bearer token and stores the
// resulting identity in the request context. Requests without a valid token
// pass through anonymously; individual handlers decide whether an identity
// is required.
func Middleware(tm *TokenManager) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			header := r.Header.Get("Authorization")
			if raw, ok := strings.CutPrefix(header, "Bearer "); ok {
				if ident, err := tm.Parse(strings.TrimSpace(raw)); err == nil {
					r = r.WithContext(context.WithValue(r.Context(), identityKey, ident))
				}
			}

			next.ServeHTTP(w, r)
		})
	}
}

// IdentityFromContext returns the authenticated identity, or nil for an
// anonymous request.
func IdentityFromContext(ctx context.Context) *clinic.Identity {
	if ident, ok := ctx.Value(identityKey).(*clinic.Identity); ok {
		return ident
	}
	return nil
}
