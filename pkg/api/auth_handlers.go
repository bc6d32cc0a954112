package api

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/bylinehq/byline/pkg/access"
	"github.com/bylinehq/byline/pkg/auth"
	"github.com/bylinehq/byline/pkg/contextkeys"
	"github.com/bylinehq/byline/pkg/httputil"
	"github.com/bylinehq/byline/pkg/observability"
)

// loginTokenTTL is the lifetime of tokens issued through /auth/login
const loginTokenTTL = 30 * 24 * time.Hour

// AuthService is the account and token surface the handlers depend on
type AuthService interface {
	CreateUser(ctx context.Context, username, email, password string, role access.Role) (*auth.User, error)
	Login(ctx context.Context, username, password string) (*auth.User, error)
	IssueToken(ctx context.Context, userID, name string, expiresAt *time.Time) (*auth.APIToken, string, error)
	ListUserTokens(ctx context.Context, userID string) ([]*auth.APIToken, error)
	RevokeToken(ctx context.Context, userID, tokenID string) error
}

// AuthHandlers handles authentication-related HTTP requests
type AuthHandlers struct {
	service AuthService
	logger  *observability.Logger
}

// NewAuthHandlers creates a new auth handlers instance
func NewAuthHandlers(service AuthService, logger *observability.Logger) *AuthHandlers {
	return &AuthHandlers{service: service, logger: logger}
}

// register handles POST /auth/register
func (h *AuthHandlers) register(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Username string      `json:"username"`
		Email    string      `json:"email"`
		Password string      `json:"password"`
		Role     access.Role `json:"role,omitempty"`
	}
	if !httputil.ParseJSONOrError(w, r, &req) {
		return
	}

	if req.Role == "" {
		req.Role = access.RoleReader
	}
	// Admin accounts are provisioned out of band, never self-registered.
	if req.Role == access.RoleAdmin {
		httputil.WriteForbidden(w, "cannot self-register as admin")
		return
	}
	if !req.Role.Valid() {
		httputil.WriteBadRequest(w, "invalid role")
		return
	}

	user, err := h.service.CreateUser(r.Context(), req.Username, req.Email, req.Password, req.Role)
	if errors.Is(err, auth.ErrUserExists) {
		httputil.WriteConflict(w, err.Error())
		return
	}
	if err != nil {
		httputil.WriteBadRequest(w, err.Error())
		return
	}

	if h.logger != nil {
		h.logger.WithField("user_id", user.ID).WithField("role", string(user.Role)).Info("user registered")
	}

	httputil.WriteCreated(w, user)
}

// login handles POST /auth/login
func (h *AuthHandlers) login(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Username string `json:"username"`
		Password string `json:"password"`
	}
	if !httputil.ParseJSONOrError(w, r, &req) {
		return
	}

	user, err := h.service.Login(r.Context(), req.Username, req.Password)
	if errors.Is(err, auth.ErrInvalidCredentials) {
		httputil.WriteUnauthorized(w, err.Error())
		return
	}
	if err != nil {
		httputil.WriteInternalError(w, err)
		return
	}

	expiresAt := time.Now().Add(loginTokenTTL)
	apiToken, plaintext, err := h.service.IssueToken(r.Context(), user.ID, "login", &expiresAt)
	if err != nil {
		httputil.WriteInternalError(w, err)
		return
	}

	httputil.WriteSuccess(w, map[string]interface{}{
		"user":       user,
		"token":      plaintext,
		"expires_at": apiToken.ExpiresAt,
	})
}

// createToken handles POST /auth/tokens
func (h *AuthHandlers) createToken(w http.ResponseWriter, r *http.Request) {
	userID := contextkeys.GetUserID(r.Context())

	var req struct {
		Name      string     `json:"name"`
		ExpiresAt *time.Time `json:"expires_at,omitempty"`
	}
	if !httputil.ParseJSONOrError(w, r, &req) {
		return
	}
	if req.Name == "" {
		httputil.WriteBadRequest(w, "name is required")
		return
	}
	if req.ExpiresAt != nil && req.ExpiresAt.Before(time.Now()) {
		httputil.WriteBadRequest(w, "expires_at must be in the future")
		return
	}

	apiToken, plaintext, err := h.service.IssueToken(r.Context(), userID, req.Name, req.ExpiresAt)
	if err != nil {
		httputil.WriteInternalError(w, err)
		return
	}

	// The plaintext is disclosed once; only its hash is stored.
	httputil.WriteCreated(w, map[string]interface{}{
		"token":     apiToken,
		"plaintext": plaintext,
	})
}

// listTokens handles GET /auth/tokens
func (h *AuthHandlers) listTokens(w http.ResponseWriter, r *http.Request) {
	userID := contextkeys.GetUserID(r.Context())

	tokens, err := h.service.ListUserTokens(r.Context(), userID)
	if err != nil {
		httputil.WriteInternalError(w, err)
		return
	}
	if tokens == nil {
		tokens = []*auth.APIToken{}
	}

	httputil.WriteSuccess(w, tokens)
}

// revokeToken handles DELETE /auth/tokens/{id}
func (h *AuthHandlers) revokeToken(w http.ResponseWriter, r *http.Request) {
	userID := contextkeys.GetUserID(r.Context())

	tokenID, ok := httputil.ParsePathStringOrError(w, r, "id")
	if !ok {
		return
	}

	err := h.service.RevokeToken(r.Context(), userID, tokenID)
	if errors.Is(err, auth.ErrTokenNotFound) {
		httputil.WriteNotFoundError(w, err.Error())
		return
	}
	if err != nil {
		httputil.WriteInternalError(w, err)
		return
	}

	httputil.WriteNoContent(w)
}
