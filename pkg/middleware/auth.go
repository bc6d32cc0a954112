package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/bylinehq/byline/pkg/access"
	"github.com/bylinehq/byline/pkg/auth"
	"github.com/bylinehq/byline/pkg/contextkeys"
	"github.com/bylinehq/byline/pkg/httputil"
)

// TokenAuthenticator resolves a bearer token to a user
type TokenAuthenticator interface {
	AuthenticateToken(ctx context.Context, token string) (*auth.User, error)
}

// AuthMiddleware provides bearer token authentication
type AuthMiddleware struct {
	authenticator TokenAuthenticator
	optional      bool // if true, requests without credentials pass through as anonymous
}

// NewAuthMiddleware creates a new authentication middleware
func NewAuthMiddleware(authenticator TokenAuthenticator, optional bool) *AuthMiddleware {
	return &AuthMiddleware{
		authenticator: authenticator,
		optional:      optional,
	}
}

// Handler wraps an HTTP handler with authentication. A present but
// invalid credential is always rejected, even in optional mode.
func (m *AuthMiddleware) Handler(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		authHeader := r.Header.Get("Authorization")
		if authHeader == "" {
			if m.optional {
				next.ServeHTTP(w, r)
				return
			}
			httputil.WriteUnauthorized(w, "missing authorization header")
			return
		}

		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) != 2 || parts[0] != "Bearer" {
			httputil.WriteUnauthorized(w, "invalid authorization header format")
			return
		}

		user, err := m.authenticator.AuthenticateToken(r.Context(), parts[1])
		if err != nil {
			httputil.WriteUnauthorized(w, "invalid or expired token")
			return
		}

		ctx := contextkeys.WithCaller(r.Context(), user.Caller())
		ctx = contextkeys.WithUserID(ctx, user.ID)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// CallerFromContext returns the authenticated caller, or nil for
// anonymous requests.
func CallerFromContext(ctx context.Context) *access.Caller {
	if caller, ok := ctx.Value(contextkeys.CallerKey).(*access.Caller); ok {
		return caller
	}
	return nil
}
