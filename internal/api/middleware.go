package api

import (
	"context"
	"net/http"

	respond "github.com/aurora-chat/aurora/internal/api/respond"
	"github.com/aurora-chat/aurora/internal/auth"
)

type contextKey string

const identityKey contextKey = "identity"

// IdentityFrom returns the authenticated identity stored by AuthMiddleware.
func IdentityFrom(ctx context.Context) (*auth.Identity, bool) {
	id, ok := ctx.Value(identityKey).(*auth.Identity)
	return id, ok
}

// AuthMiddleware resolves the bearer token and stores the identity in the
// request context. Requests without a valid token get 401.
func AuthMiddleware(a auth.Authenticator) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token, err := auth.ExtractBearerToken(r)
			if err != nil {
				respond.WriteUnauthorized(w, "Missing bearer token")
				return
			}
			id, err := a.Authenticate(r.Context(), token)
			if err != nil {
				respond.WriteUnauthorized(w, "Invalid bearer token")
				return
			}
			ctx := context.WithValue(r.Context(), identityKey, id)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
