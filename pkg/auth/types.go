package auth

import (
	"errors"
	"time"

	"github.com/bylinehq/byline/pkg/access"
)

// User represents an account on the platform. The password hash never
// leaves the auth package in API responses.
type User struct {
	ID           string      `json:"id"`
	Username     string      `json:"username"`
	Email        string      `json:"email"`
	PasswordHash string      `json:"-"`
	Role         access.Role `json:"role"`
	CreatedAt    time.Time   `json:"created_at"`
	UpdatedAt    time.Time   `json:"updated_at"`
}

// Caller converts the user into the identity the access package consumes.
func (u *User) Caller() *access.Caller {
	if u == nil {
		return nil
	}
	return &access.Caller{ID: u.ID, Role: u.Role}
}

// APIToken represents an opaque API token. Only the SHA-256 hash is
// persisted; the plaintext is returned once at creation time.
type APIToken struct {
	ID          string     `json:"id"`
	UserID      string     `json:"user_id"`
	TokenHash   string     `json:"-"`
	TokenPrefix string     `json:"token_prefix"`
	Name        string     `json:"name"`
	ExpiresAt   *time.Time `json:"expires_at,omitempty"`
	LastUsedAt  *time.Time `json:"last_used_at,omitempty"`
	CreatedAt   time.Time  `json:"created_at"`
	RevokedAt   *time.Time `json:"revoked_at,omitempty"`
}

// Active reports whether the token is neither revoked nor expired.
func (t *APIToken) Active(now time.Time) bool {
	if t.RevokedAt != nil {
		return false
	}
	if t.ExpiresAt != nil && !t.ExpiresAt.After(now) {
		return false
	}
	return true
}

var (
	// ErrInvalidCredentials is returned when a login attempt fails.
	ErrInvalidCredentials = errors.New("invalid username or password")

	// ErrInvalidToken is returned when a presented token is unknown,
	// revoked, or expired.
	ErrInvalidToken = errors.New("invalid or expired token")

	// ErrUserExists is returned when a username or email is already taken.
	ErrUserExists = errors.New("username or email already registered")

	// ErrUserNotFound is returned when no user matches the lookup.
	ErrUserNotFound = errors.New("user not found")

	// ErrTokenNotFound is returned when no token matches the lookup.
	ErrTokenNotFound = errors.New("token not found")
)
