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

func postStoreWith(post *posts.Post) *mockPostStore {
	return &mockPostStore{
		getFunc: func(ctx context.Context, id string) (*posts.Post, error) {
			if post != nil && post.ID == id {
				return post, nil
			}
			return nil, posts.ErrPostNotFound
		},
	}
}

func TestListComments(t *testing.T) {
	t.Run("requires authentication", func(t *testing.T) {
		s := newTestServer(t, testServerStores{posts: postStoreWith(publishedPost("p1", "writer-1"))})
		rec := doRequest(t, s, http.MethodGet, "/posts/p1/comments", "", nil)
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})

	t.Run("reader lists comments on published post", func(t *testing.T) {
		store := &mockCommentStore{
			listFunc: func(ctx context.Context, postID string, limit, offset int) ([]*comments.Comment, int64, error) {
				return []*comments.Comment{{ID: "c1", PostID: postID, AuthorID: "writer-1", Content: "hi"}}, 1, nil
			},
		}
		s := newTestServer(t, testServerStores{
			posts:    postStoreWith(publishedPost("p1", "writer-1")),
			comments: store,
		})

		rec := doRequest(t, s, http.MethodGet, "/posts/p1/comments", "byline_reader", nil)
		require.Equal(t, http.StatusOK, rec.Code)

		var body struct {
			Comments []*comments.Comment `json:"comments"`
		}
		decodeBody(t, rec, &body)
		require.Len(t, body.Comments, 1)
		assert.Equal(t, "c1", body.Comments[0].ID)
	})

	t.Run("draft comments hidden from reader", func(t *testing.T) {
		// Parent visibility gates the listing, so comments on drafts do
		// not leak to callers who cannot see the draft.
		s := newTestServer(t, testServerStores{posts: postStoreWith(draftPost("p1", "writer-1"))})
		rec := doRequest(t, s, http.MethodGet, "/posts/p1/comments", "byline_reader", nil)
		assert.Equal(t, http.StatusForbidden, rec.Code)
	})

	t.Run("draft comments visible to owner", func(t *testing.T) {
		s := newTestServer(t, testServerStores{posts: postStoreWith(draftPost("p1", "writer-1"))})
		rec := doRequest(t, s, http.MethodGet, "/posts/p1/comments", "byline_writer", nil)
		assert.Equal(t, http.StatusOK, rec.Code)
	})

	t.Run("missing parent", func(t *testing.T) {
		s := newTestServer(t, testServerStores{})
		rec := doRequest(t, s, http.MethodGet, "/posts/missing/comments", "byline_reader", nil)
		assert.Equal(t, http.StatusNotFound, rec.Code)
	})
}

func TestCreateComment(t *testing.T) {
	t.Run("reader comments on published post", func(t *testing.T) {
		var created *comments.Comment
		store := &mockCommentStore{
			createFunc: func(ctx context.Context, comment *comments.Comment) error {
				created = comment
				return nil
			},
		}
		s := newTestServer(t, testServerStores{
			posts:    postStoreWith(publishedPost("p1", "writer-1")),
			comments: store,
		})

		rec := doRequest(t, s, http.MethodPost, "/posts/p1/comments", "byline_reader",
			map[string]string{"content": "nice post"})

		require.Equal(t, http.StatusCreated, rec.Code)
		require.NotNil(t, created)
		assert.Equal(t, "reader-1", created.AuthorID)
		assert.Equal(t, "p1", created.PostID)
	})

	t.Run("missing parent is not found", func(t *testing.T) {
		s := newTestServer(t, testServerStores{})
		rec := doRequest(t, s, http.MethodPost, "/posts/missing/comments", "byline_reader",
			map[string]string{"content": "hello"})
		assert.Equal(t, http.StatusNotFound, rec.Code)
	})

	t.Run("draft parent is invalid state", func(t *testing.T) {
		s := newTestServer(t, testServerStores{posts: postStoreWith(draftPost("p1", "writer-1"))})
		rec := doRequest(t, s, http.MethodPost, "/posts/p1/comments", "byline_reader",
			map[string]string{"content": "hello"})
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("draft parent rejected even for its owner", func(t *testing.T) {
		s := newTestServer(t, testServerStores{posts: postStoreWith(draftPost("p1", "writer-1"))})
		rec := doRequest(t, s, http.MethodPost, "/posts/p1/comments", "byline_writer",
			map[string]string{"content": "hello"})
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("anonymous rejected", func(t *testing.T) {
		s := newTestServer(t, testServerStores{posts: postStoreWith(publishedPost("p1", "writer-1"))})
		rec := doRequest(t, s, http.MethodPost, "/posts/p1/comments", "",
			map[string]string{"content": "hello"})
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})

	t.Run("blank content rejected", func(t *testing.T) {
		s := newTestServer(t, testServerStores{posts: postStoreWith(publishedPost("p1", "writer-1"))})
		rec := doRequest(t, s, http.MethodPost, "/posts/p1/comments", "byline_reader",
			map[string]string{"content": "   "})
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})
}

func TestDeleteComment(t *testing.T) {
	commentStore := func(owner string) *mockCommentStore {
		return &mockCommentStore{
			getFunc: func(ctx context.Context, id string) (*comments.Comment, error) {
				return &comments.Comment{ID: id, PostID: "p1", AuthorID: owner, Content: "hi"}, nil
			},
		}
	}

	t.Run("owner deletes own comment", func(t *testing.T) {
		s := newTestServer(t, testServerStores{comments: commentStore("reader-1")})
		rec := doRequest(t, s, http.MethodDelete, "/comments/c1", "byline_reader", nil)
		assert.Equal(t, http.StatusNoContent, rec.Code)
	})

	t.Run("admin has no override", func(t *testing.T) {
		s := newTestServer(t, testServerStores{comments: commentStore("reader-1")})
		rec := doRequest(t, s, http.MethodDelete, "/comments/c1", "byline_admin", nil)
		assert.Equal(t, http.StatusForbidden, rec.Code)
	})

	t.Run("other caller denied", func(t *testing.T) {
		s := newTestServer(t, testServerStores{comments: commentStore("reader-1")})
		rec := doRequest(t, s, http.MethodDelete, "/comments/c1", "byline_writer", nil)
		assert.Equal(t, http.StatusForbidden, rec.Code)
	})

	t.Run("missing comment", func(t *testing.T) {
		s := newTestServer(t, testServerStores{})
		rec := doRequest(t, s, http.MethodDelete, "/comments/missing", "byline_reader", nil)
		assert.Equal(t, http.StatusNotFound, rec.Code)
	})
}
