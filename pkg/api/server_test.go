package api

import (
	"context"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bylinehq/byline/pkg/comments"
	"github.com/bylinehq/byline/pkg/posts"
)

// memoryStores wires the mock stores to shared maps so a scenario can
// span multiple requests.
func memoryStores() (*mockPostStore, *mockCommentStore) {
	postsByID := map[string]*posts.Post{}
	commentsByID := map[string]*comments.Comment{}

	postStore := &mockPostStore{
		createFunc: func(ctx context.Context, post *posts.Post) error {
			postsByID[post.ID] = post
			return nil
		},
		getFunc: func(ctx context.Context, id string) (*posts.Post, error) {
			if post, ok := postsByID[id]; ok {
				copied := *post
				return &copied, nil
			}
			return nil, posts.ErrPostNotFound
		},
		updateFunc: func(ctx context.Context, post *posts.Post) error {
			if _, ok := postsByID[post.ID]; !ok {
				return posts.ErrPostNotFound
			}
			postsByID[post.ID] = post
			return nil
		},
		deleteFunc: func(ctx context.Context, id string) error {
			if _, ok := postsByID[id]; !ok {
				return posts.ErrPostNotFound
			}
			delete(postsByID, id)
			return nil
		},
	}

	commentStore := &mockCommentStore{
		createFunc: func(ctx context.Context, comment *comments.Comment) error {
			commentsByID[comment.ID] = comment
			return nil
		},
		getFunc: func(ctx context.Context, id string) (*comments.Comment, error) {
			if comment, ok := commentsByID[id]; ok {
				return comment, nil
			}
			return nil, comments.ErrCommentNotFound
		},
		listFunc: func(ctx context.Context, postID string, limit, offset int) ([]*comments.Comment, int64, error) {
			var result []*comments.Comment
			for _, comment := range commentsByID {
				if comment.PostID == postID {
					result = append(result, comment)
				}
			}
			return result, int64(len(result)), nil
		},
		deleteFunc: func(ctx context.Context, id string) error {
			delete(commentsByID, id)
			return nil
		},
	}

	return postStore, commentStore
}

// TestPublishingLifecycle walks a post through draft, publication, a
// reader's comment, and reversion to draft, checking visibility and
// preconditions at each step.
func TestPublishingLifecycle(t *testing.T) {
	postStore, commentStore := memoryStores()
	s := newTestServer(t, testServerStores{posts: postStore, comments: commentStore})

	// Writer creates a draft.
	rec := doRequest(t, s, http.MethodPost, "/posts", "byline_writer",
		map[string]string{"title": "Draft", "content": "Body"})
	require.Equal(t, http.StatusCreated, rec.Code)

	var post posts.Post
	decodeBody(t, rec, &post)
	postPath := "/posts/" + post.ID

	// Reader cannot see the draft; the owner can.
	rec = doRequest(t, s, http.MethodGet, postPath, "byline_reader", nil)
	assert.Equal(t, http.StatusForbidden, rec.Code)
	rec = doRequest(t, s, http.MethodGet, postPath, "byline_writer", nil)
	assert.Equal(t, http.StatusOK, rec.Code)

	// Commenting on the draft is a precondition failure.
	rec = doRequest(t, s, http.MethodPost, postPath+"/comments", "byline_reader",
		map[string]string{"content": "first!"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	// Writer publishes.
	rec = doRequest(t, s, http.MethodPatch, postPath, "byline_writer",
		map[string]string{"status": "published"})
	require.Equal(t, http.StatusOK, rec.Code)

	// Now the reader can fetch and comment.
	rec = doRequest(t, s, http.MethodGet, postPath, "byline_reader", nil)
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = doRequest(t, s, http.MethodPost, postPath+"/comments", "byline_reader",
		map[string]string{"content": "first!"})
	require.Equal(t, http.StatusCreated, rec.Code)

	var comment comments.Comment
	decodeBody(t, rec, &comment)

	// Writer reverts to draft.
	rec = doRequest(t, s, http.MethodPatch, postPath, "byline_writer",
		map[string]string{"status": "draft"})
	require.Equal(t, http.StatusOK, rec.Code)

	// The existing comment persists and stays visible to the owner.
	rec = doRequest(t, s, http.MethodGet, postPath+"/comments", "byline_writer", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var listing struct {
		Comments []*comments.Comment `json:"comments"`
	}
	decodeBody(t, rec, &listing)
	require.Len(t, listing.Comments, 1)
	assert.Equal(t, comment.ID, listing.Comments[0].ID)

	// New comments are rejected again, and the reader can no longer
	// reach the listing.
	rec = doRequest(t, s, http.MethodPost, postPath+"/comments", "byline_reader",
		map[string]string{"content": "second!"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	rec = doRequest(t, s, http.MethodGet, postPath+"/comments", "byline_reader", nil)
	assert.Equal(t, http.StatusForbidden, rec.Code)

	// The comment's author deletes it; an admin could not have.
	rec = doRequest(t, s, http.MethodDelete, "/comments/"+comment.ID, "byline_admin", nil)
	assert.Equal(t, http.StatusForbidden, rec.Code)
	rec = doRequest(t, s, http.MethodDelete, "/comments/"+comment.ID, "byline_reader", nil)
	assert.Equal(t, http.StatusNoContent, rec.Code)
}

func TestHandlerRoutesUnknownPath(t *testing.T) {
	s := newTestServer(t, testServerStores{})

	req := doRequest(t, s, http.MethodGet, "/nope", "", nil)
	assert.Equal(t, http.StatusNotFound, req.Code)
}
