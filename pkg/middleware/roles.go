package middleware

import (
	"net/http"

	"github.com/bylinehq/byline/pkg/access"
	"github.com/bylinehq/byline/pkg/httputil"
)

// RequireRoles rejects requests whose caller does not hold one of the
// given roles. It assumes AuthMiddleware has already run.
func RequireRoles(roles ...access.Role) func(http.Handler) http.Handler {
	allowed := make(map[access.Role]bool, len(roles))
	for _, role := range roles {
		allowed[role] = true
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			caller := CallerFromContext(r.Context())
			if !caller.Authenticated() {
				httputil.WriteUnauthorized(w, "authentication required")
				return
			}
			if !allowed[caller.Role] {
				httputil.WriteForbidden(w, "insufficient role")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
