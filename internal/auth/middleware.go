package auth

import (
	"net/http"

	"go.uber.org/zap"

	"github.com/msvee3/Interview-prep/internal/utils"
)

// Authenticate resolves the bearer credential and stores the identity in
// the request context. Requests without a valid credential get 401.
func Authenticate(g *Guard) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token, err := BearerToken(r.Header.Get("Authorization"))
			if err != nil {
				utils.WriteError(w, err, "Authentication failed")
				return
			}
			id, err := g.ResolveIdentity(r.Context(), token)
			if err != nil {
				g.logger.Debug("Authentication rejected", zap.Error(err))
				utils.WriteError(w, err, "Authentication failed")
				return
			}
			next.ServeHTTP(w, r.WithContext(WithIdentity(r.Context(), id)))
		})
	}
}

// AdminOnly must run after Authenticate.
func AdminOnly(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id, _ := IdentityFromContext(r.Context())
		if err := RequireAdmin(id); err != nil {
			utils.WriteError(w, err, "Authorization failed")
			return
		}
		next.ServeHTTP(w, r)
	})
}
