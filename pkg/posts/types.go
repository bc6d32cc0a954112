// Package posts provides the post entity and its persistence layer.
package posts

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/bylinehq/byline/pkg/access"
)

// ErrPostNotFound is returned when no post matches the lookup
var ErrPostNotFound = errors.New("post not found")

// Post is a publishable article authored by a single user
type Post struct {
	ID        string        `json:"id"`
	Title     string        `json:"title"`
	Content   string        `json:"content"`
	Status    access.Status `json:"status"`
	AuthorID  string        `json:"author_id"`
	CreatedAt time.Time     `json:"created_at"`
	UpdatedAt time.Time     `json:"updated_at"`
}

// OwnerID implements access.Resource
func (p *Post) OwnerID() string { return p.AuthorID }

// PublicationStatus implements access.PublishableResource
func (p *Post) PublicationStatus() access.Status { return p.Status }

// CreateRequest is the payload for creating a post. Status defaults to
// draft when omitted.
type CreateRequest struct {
	Title   string        `json:"title"`
	Content string        `json:"content"`
	Status  access.Status `json:"status,omitempty"`
}

// Validate checks the create payload and fills in defaults
func (r *CreateRequest) Validate() error {
	r.Title = strings.TrimSpace(r.Title)
	if r.Title == "" {
		return fmt.Errorf("title is required")
	}
	if strings.TrimSpace(r.Content) == "" {
		return fmt.Errorf("content is required")
	}

	if r.Status == "" {
		r.Status = access.StatusDraft
	}
	if !r.Status.Valid() {
		return fmt.Errorf("invalid status %q", r.Status)
	}

	return nil
}

// UpdateRequest is the payload for a partial post update. Nil fields are
// left unchanged; provided fields are merged onto the stored post.
type UpdateRequest struct {
	Title   *string        `json:"title,omitempty"`
	Content *string        `json:"content,omitempty"`
	Status  *access.Status `json:"status,omitempty"`
}

// Validate checks the provided fields of the update payload
func (r *UpdateRequest) Validate() error {
	if r.Title == nil && r.Content == nil && r.Status == nil {
		return fmt.Errorf("no fields to update")
	}
	if r.Title != nil && strings.TrimSpace(*r.Title) == "" {
		return fmt.Errorf("title cannot be empty")
	}
	if r.Content != nil && strings.TrimSpace(*r.Content) == "" {
		return fmt.Errorf("content cannot be empty")
	}
	if r.Status != nil && !r.Status.Valid() {
		return fmt.Errorf("invalid status %q", *r.Status)
	}
	return nil
}

// ApplyTo merges the provided fields onto a post
func (r *UpdateRequest) ApplyTo(post *Post) {
	if r.Title != nil {
		post.Title = strings.TrimSpace(*r.Title)
	}
	if r.Content != nil {
		post.Content = *r.Content
	}
	if r.Status != nil {
		post.Status = *r.Status
	}
}
