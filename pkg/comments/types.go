// Package comments provides the comment entity and its persistence layer.
package comments

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// ErrCommentNotFound is returned when no comment matches the lookup
var ErrCommentNotFound = errors.New("comment not found")

// Comment is a reply attached to exactly one post. Comments are not
// publishable themselves; their reachability follows the parent post.
type Comment struct {
	ID        string    `json:"id"`
	PostID    string    `json:"post_id"`
	AuthorID  string    `json:"author_id"`
	Content   string    `json:"content"`
	CreatedAt time.Time `json:"created_at"`
}

// OwnerID implements access.Resource
func (c *Comment) OwnerID() string { return c.AuthorID }

// CreateRequest is the payload for creating a comment
type CreateRequest struct {
	Content string `json:"content"`
}

// Validate checks the create payload
func (r *CreateRequest) Validate() error {
	if strings.TrimSpace(r.Content) == "" {
		return fmt.Errorf("content is required")
	}
	return nil
}
