package auth

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/bylinehq/byline/pkg/access"
)

// Store persists users and API tokens in PostgreSQL
type Store struct {
	db        *sql.DB
	generator *TokenGenerator
}

// NewStore creates a new auth store
func NewStore(db *sql.DB) *Store {
	return &Store{
		db:        db,
		generator: NewTokenGenerator(),
	}
}

// CreateUser registers a new account with a hashed password
func (s *Store) CreateUser(ctx context.Context, username, email, password string, role access.Role) (*User, error) {
	username = strings.TrimSpace(username)
	email = strings.TrimSpace(strings.ToLower(email))

	if username == "" {
		return nil, fmt.Errorf("username is required")
	}
	if email == "" {
		return nil, fmt.Errorf("email is required")
	}
	if !role.Valid() {
		return nil, fmt.Errorf("invalid role %q", role)
	}

	hash, err := HashPassword(password)
	if err != nil {
		return nil, err
	}

	var exists int
	err = s.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM users WHERE username = $1 OR email = $2`,
		username, email,
	).Scan(&exists)
	if err != nil {
		return nil, fmt.Errorf("failed to check existing users: %w", err)
	}
	if exists > 0 {
		return nil, ErrUserExists
	}

	now := time.Now().UTC()
	user := &User{
		ID:           uuid.NewString(),
		Username:     username,
		Email:        email,
		PasswordHash: hash,
		Role:         role,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO users (id, username, email, password_hash, role, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		user.ID, user.Username, user.Email, user.PasswordHash, string(user.Role),
		user.CreatedAt, user.UpdatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	return user, nil
}

// GetUserByID fetches a user by ID
func (s *Store) GetUserByID(ctx context.Context, id string) (*User, error) {
	return s.getUser(ctx, `WHERE id = $1`, id)
}

// GetUserByUsername fetches a user by username
func (s *Store) GetUserByUsername(ctx context.Context, username string) (*User, error) {
	return s.getUser(ctx, `WHERE username = $1`, username)
}

func (s *Store) getUser(ctx context.Context, where string, arg interface{}) (*User, error) {
	query := `
		SELECT id, username, email, password_hash, role, created_at, updated_at
		FROM users ` + where

	var user User
	var role string
	err := s.db.QueryRowContext(ctx, query, arg).Scan(
		&user.ID, &user.Username, &user.Email, &user.PasswordHash,
		&role, &user.CreatedAt, &user.UpdatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrUserNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get user: %w", err)
	}

	user.Role = access.Role(role)
	return &user, nil
}

// Login verifies credentials and returns the matching user
func (s *Store) Login(ctx context.Context, username, password string) (*User, error) {
	user, err := s.GetUserByUsername(ctx, username)
	if errors.Is(err, ErrUserNotFound) {
		return nil, ErrInvalidCredentials
	}
	if err != nil {
		return nil, err
	}

	if !VerifyPassword(user.PasswordHash, password) {
		return nil, ErrInvalidCredentials
	}

	return user, nil
}

// IssueToken creates a new API token for a user. The plaintext token is
// returned exactly once and is never stored.
func (s *Store) IssueToken(ctx context.Context, userID, name string, expiresAt *time.Time) (*APIToken, string, error) {
	plaintext, tokenHash, tokenPrefix, err := s.generator.GenerateToken()
	if err != nil {
		return nil, "", fmt.Errorf("failed to generate token: %w", err)
	}

	token := &APIToken{
		ID:          uuid.NewString(),
		UserID:      userID,
		TokenHash:   tokenHash,
		TokenPrefix: tokenPrefix,
		Name:        name,
		ExpiresAt:   expiresAt,
		CreatedAt:   time.Now().UTC(),
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO api_tokens (id, user_id, token_hash, token_prefix, name, expires_at, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		token.ID, token.UserID, token.TokenHash, token.TokenPrefix, token.Name,
		token.ExpiresAt, token.CreatedAt,
	)
	if err != nil {
		return nil, "", fmt.Errorf("failed to store token: %w", err)
	}

	return token, plaintext, nil
}

// AuthenticateToken resolves a presented token to its user. Unknown,
// revoked, and expired tokens all map to ErrInvalidToken so callers
// cannot distinguish them.
func (s *Store) AuthenticateToken(ctx context.Context, token string) (*User, error) {
	if err := s.generator.ValidateTokenFormat(token); err != nil {
		return nil, ErrInvalidToken
	}

	tokenHash := s.generator.HashToken(token)

	var (
		tokenID   string
		userID    string
		expiresAt sql.NullTime
		revokedAt sql.NullTime
	)
	err := s.db.QueryRowContext(ctx, `
		SELECT id, user_id, expires_at, revoked_at
		FROM api_tokens
		WHERE token_hash = $1`,
		tokenHash,
	).Scan(&tokenID, &userID, &expiresAt, &revokedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrInvalidToken
	}
	if err != nil {
		return nil, fmt.Errorf("failed to look up token: %w", err)
	}

	now := time.Now().UTC()
	if revokedAt.Valid {
		return nil, ErrInvalidToken
	}
	if expiresAt.Valid && !expiresAt.Time.After(now) {
		return nil, ErrInvalidToken
	}

	user, err := s.GetUserByID(ctx, userID)
	if errors.Is(err, ErrUserNotFound) {
		return nil, ErrInvalidToken
	}
	if err != nil {
		return nil, err
	}

	// Best effort; authentication does not fail on a bookkeeping error.
	_, _ = s.db.ExecContext(ctx,
		`UPDATE api_tokens SET last_used_at = $1 WHERE id = $2`, now, tokenID)

	return user, nil
}

// ListUserTokens lists a user's tokens, newest first
func (s *Store) ListUserTokens(ctx context.Context, userID string) ([]*APIToken, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, user_id, token_prefix, name, expires_at, last_used_at, created_at, revoked_at
		FROM api_tokens
		WHERE user_id = $1
		ORDER BY created_at DESC`,
		userID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list tokens: %w", err)
	}
	defer rows.Close()

	var tokens []*APIToken
	for rows.Next() {
		var t APIToken
		var expiresAt, lastUsedAt, revokedAt sql.NullTime
		if err := rows.Scan(&t.ID, &t.UserID, &t.TokenPrefix, &t.Name,
			&expiresAt, &lastUsedAt, &t.CreatedAt, &revokedAt); err != nil {
			return nil, fmt.Errorf("failed to scan token: %w", err)
		}
		if expiresAt.Valid {
			t.ExpiresAt = &expiresAt.Time
		}
		if lastUsedAt.Valid {
			t.LastUsedAt = &lastUsedAt.Time
		}
		if revokedAt.Valid {
			t.RevokedAt = &revokedAt.Time
		}
		tokens = append(tokens, &t)
	}

	return tokens, rows.Err()
}

// RevokeToken revokes one of the user's own tokens
func (s *Store) RevokeToken(ctx context.Context, userID, tokenID string) error {
	result, err := s.db.ExecContext(ctx, `
		UPDATE api_tokens
		SET revoked_at = $1
		WHERE id = $2 AND user_id = $3 AND revoked_at IS NULL`,
		time.Now().UTC(), tokenID, userID,
	)
	if err != nil {
		return fmt.Errorf("failed to revoke token: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check revocation: %w", err)
	}
	if affected == 0 {
		return ErrTokenNotFound
	}

	return nil
}

// CleanupExpiredTokens deletes tokens past their expiry. It is run
// periodically by the server's maintenance job.
func (s *Store) CleanupExpiredTokens(ctx context.Context) (int64, error) {
	result, err := s.db.ExecContext(ctx,
		`DELETE FROM api_tokens WHERE expires_at IS NOT NULL AND expires_at < $1`,
		time.Now().UTC(),
	)
	if err != nil {
		return 0, fmt.Errorf("failed to clean up tokens: %w", err)
	}

	return result.RowsAffected()
}

// CountActiveTokens reports the number of active tokens, for metrics
func (s *Store) CountActiveTokens(ctx context.Context) (int64, error) {
	var count int64
	err := s.db.QueryRowContext(ctx, `
		SELECT COUNT(*) FROM api_tokens
		WHERE revoked_at IS NULL AND (expires_at IS NULL OR expires_at > $1)`,
		time.Now().UTC(),
	).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count tokens: %w", err)
	}
	return count, nil
}

// CountUsers reports the number of registered users, for metrics
func (s *Store) CountUsers(ctx context.Context) (int64, error) {
	var count int64
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM users`).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count users: %w", err)
	}
	return count, nil
}
