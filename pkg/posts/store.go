package posts

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

// Store is the persistence interface for posts
type Store interface {
	Create(ctx context.Context, post *Post) error
	GetByID(ctx context.Context, id string) (*Post, error)
	List(ctx context.Context, pred access.Predicate, limit, offset int) ([]*Post, int64, error)
	Update(ctx context.Context, post *Post) error
	Delete(ctx context.Context, id string) error
	CountByStatus(ctx context.Context) (total, published int64, err error)
}

// PostgresStore persists posts in PostgreSQL
type PostgresStore struct {
	db *sql.DB
}

// NewPostgresStore creates a new PostgreSQL-backed post store
func NewPostgresStore(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

const postColumns = "id, title, content, status, author_id, created_at, updated_at"

// Create inserts a new post, assigning its ID and timestamps
func (s *PostgresStore) Create(ctx context.Context, post *Post) error {
	if post.ID == "" {
		post.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	post.CreatedAt = now
	post.UpdatedAt = now

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO posts (id, title, content, status, author_id, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		post.ID, post.Title, post.Content, string(post.Status), post.AuthorID,
		post.CreatedAt, post.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create post: %w", err)
	}

	return nil
}

// GetByID fetches a post regardless of status; visibility is the
// caller's concern.
func (s *PostgresStore) GetByID(ctx context.Context, id string) (*Post, error) {
	var post Post
	var status string
	err := s.db.QueryRowContext(ctx,
		`SELECT `+postColumns+` FROM posts WHERE id = $1`, id,
	).Scan(&post.ID, &post.Title, &post.Content, &status, &post.AuthorID,
		&post.CreatedAt, &post.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrPostNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get post: %w", err)
	}

	post.Status = access.Status(status)
	return &post, nil
}

// List returns the page of posts matching the predicate, newest first,
// together with the total match count for pagination.
func (s *PostgresStore) List(ctx context.Context, pred access.Predicate, limit, offset int) ([]*Post, int64, error) {
	where, args := buildWhere(pred)

	var total int64
	countQuery := `SELECT COUNT(*) FROM posts` + where
	if err := s.db.QueryRowContext(ctx, countQuery, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("failed to count posts: %w", err)
	}

	query := fmt.Sprintf(`SELECT `+postColumns+` FROM posts%s ORDER BY created_at DESC LIMIT $%d OFFSET $%d`,
		where, len(args)+1, len(args)+2)
	args = append(args, limit, offset)

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list posts: %w", err)
	}
	defer rows.Close()

	var result []*Post
	for rows.Next() {
		var post Post
		var status string
		if err := rows.Scan(&post.ID, &post.Title, &post.Content, &status,
			&post.AuthorID, &post.CreatedAt, &post.UpdatedAt); err != nil {
			return nil, 0, fmt.Errorf("failed to scan post: %w", err)
		}
		post.Status = access.Status(status)
		result = append(result, &post)
	}

	return result, total, rows.Err()
}

// buildWhere translates a listing predicate into a WHERE clause. The
// same clause is used for both the page query and the count query so
// pagination totals stay consistent with the visible set.
func buildWhere(pred access.Predicate) (string, []interface{}) {
	var conds []string
	var args []interface{}

	next := func() int { return len(args) + 1 }

	switch {
	case pred.AllStatuses:
		// No status restriction.
	case pred.OwnerID != "":
		conds = append(conds, fmt.Sprintf("(author_id = $%d OR status = $%d)", next(), next()+1))
		args = append(args, pred.OwnerID, string(access.StatusPublished))
	default:
		status := pred.Status
		if status == "" {
			status = access.StatusPublished
		}
		conds = append(conds, fmt.Sprintf("status = $%d", next()))
		args = append(args, string(status))
	}

	if pred.Search != "" {
		term := "%" + pred.Search + "%"
		conds = append(conds, fmt.Sprintf("(title ILIKE $%d OR content ILIKE $%d)", next(), next()+1))
		args = append(args, term, term)
	}

	if len(conds) == 0 {
		return "", args
	}
	return " WHERE " + strings.Join(conds, " AND "), args
}

// Update persists the merged post fields
func (s *PostgresStore) Update(ctx context.Context, post *Post) error {
	post.UpdatedAt = time.Now().UTC()

	result, err := s.db.ExecContext(ctx, `
		UPDATE posts
		SET title = $1, content = $2, status = $3, updated_at = $4
		WHERE id = $5`,
		post.Title, post.Content, string(post.Status), post.UpdatedAt, post.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to update post: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check update: %w", err)
	}
	if affected == 0 {
		return ErrPostNotFound
	}

	return nil
}

// Delete removes a post. Comments under it are removed by the schema's
// ON DELETE CASCADE.
func (s *PostgresStore) Delete(ctx context.Context, id string) error {
	result, err := s.db.ExecContext(ctx, `DELETE FROM posts WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete post: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check delete: %w", err)
	}
	if affected == 0 {
		return ErrPostNotFound
	}

	return nil
}

// CountByStatus reports total and published post counts, for metrics
func (s *PostgresStore) CountByStatus(ctx context.Context) (int64, int64, error) {
	var total, published int64
	err := s.db.QueryRowContext(ctx, `
		SELECT COUNT(*), COUNT(*) FILTER (WHERE status = $1) FROM posts`,
		string(access.StatusPublished),
	).Scan(&total, &published)
	if err != nil {
		return 0, 0, fmt.Errorf("failed to count posts: %w", err)
	}
	return total, published, nil
}
