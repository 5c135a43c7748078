package authapi

import (
	"context"
	"net/http"
	"strings"

	"plume/cmd/internal/web"
	"plume/cmd/security/token"
)

type ctxKey int

const userIDKey ctxKey = iota

// RequireAuth verifies the Authorization bearer token (typ=access) and
// injects the subject into the request context. Access tokens are
// stateless: validity is purely a function of signature and expiry.
func RequireAuth(tokens AccessTokenDecoder) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			header := r.Header.Get("Authorization")
			if !strings.HasPrefix(header, "Bearer ") {
				web.WriteError(w, http.StatusUnauthorized, "invalid_token", "invalid token")
				return
			}

			claims, err := tokens.Decode(strings.TrimPrefix(header, "Bearer "), token.TypeAccess)
			if err != nil {
				// Expired and malformed look identical to the client.
				web.WriteError(w, http.StatusUnauthorized, "invalid_token", "invalid token")
				return
			}

			ctx := context.WithValue(r.Context(), userIDKey, claims.Subject)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// UserID returns the authenticated user id placed by RequireAuth.
func UserID(ctx context.Context) (string, bool) {
	id, ok := ctx.Value(userIDKey).(string)
	return id, ok && id != ""
}
