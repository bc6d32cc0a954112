package api

import (
	"errors"
	"net/http"

	"github.com/bylinehq/byline/pkg/access"
	"github.com/bylinehq/byline/pkg/comments"
	"github.com/bylinehq/byline/pkg/httputil"
	"github.com/bylinehq/byline/pkg/middleware"
	"github.com/bylinehq/byline/pkg/observability"
	"github.com/bylinehq/byline/pkg/posts"
)

// CommentHandlers handles comment-related HTTP requests
type CommentHandlers struct {
	store   comments.Store
	posts   posts.Store
	metrics *observability.Metrics
	logger  *observability.Logger
}

// NewCommentHandlers creates a new comment handlers instance
func NewCommentHandlers(store comments.Store, postStore posts.Store, metrics *observability.Metrics, logger *observability.Logger) *CommentHandlers {
	return &CommentHandlers{store: store, posts: postStore, metrics: metrics, logger: logger}
}

func (h *CommentHandlers) recordDecision(action string, err error) {
	if h.metrics != nil {
		h.metrics.RecordDecision("comment", action, err)
	}
}

// listComments handles GET /posts/{id}/comments.
//
// The listing is gated on the parent post's visibility with the same
// disclosure rule as a single post fetch, so comments on a draft are
// not leaked to callers who cannot see the draft itself.
func (h *CommentHandlers) listComments(w http.ResponseWriter, r *http.Request) {
	caller := middleware.CallerFromContext(r.Context())

	postID, ok := httputil.ParsePathStringOrError(w, r, "id")
	if !ok {
		return
	}

	post, err := h.posts.GetByID(r.Context(), postID)
	if errors.Is(err, posts.ErrPostNotFound) {
		httputil.WriteNotFoundError(w, err.Error())
		return
	}
	if err != nil {
		httputil.WriteInternalError(w, err)
		return
	}

	if !access.CanDisclose(caller, post) {
		h.recordDecision("list", access.ErrAccessDenied)
		writeAccessError(w, access.ErrAccessDenied)
		return
	}
	h.recordDecision("list", nil)

	page := httputil.ParsePagination(r)
	result, total, err := h.store.ListByPost(r.Context(), postID, page.Limit, page.Offset())
	if err != nil {
		httputil.WriteInternalError(w, err)
		return
	}
	if result == nil {
		result = []*comments.Comment{}
	}

	httputil.WriteSuccess(w, map[string]interface{}{
		"comments":   result,
		"pagination": httputil.NewPageInfo(page, total),
	})
}

// createComment handles POST /posts/{id}/comments.
//
// Creation is allowed for any authenticated caller, gated by the parent
// post: a missing parent is a 404 and an unpublished parent a 400. The
// precondition is checked against the fetched parent, not
// transactionally against the insert.
func (h *CommentHandlers) createComment(w http.ResponseWriter, r *http.Request) {
	caller := middleware.CallerFromContext(r.Context())

	postID, ok := httputil.ParsePathStringOrError(w, r, "id")
	if !ok {
		return
	}

	post, err := h.posts.GetByID(r.Context(), postID)
	if err != nil && !errors.Is(err, posts.ErrPostNotFound) {
		httputil.WriteInternalError(w, err)
		return
	}

	// A nil parent interface signals a missing post to the guard.
	var parent access.PublishableResource
	if post != nil {
		parent = post
	}

	if err := access.AuthorizeCommentWrite(caller, access.ActionCreate, nil, parent); err != nil {
		h.recordDecision("create", err)
		writeAccessError(w, err)
		return
	}
	h.recordDecision("create", nil)

	var req comments.CreateRequest
	if !httputil.ParseJSONOrError(w, r, &req) {
		return
	}
	if err := req.Validate(); err != nil {
		httputil.WriteBadRequest(w, err.Error())
		return
	}

	comment := &comments.Comment{
		PostID:   postID,
		AuthorID: caller.ID,
		Content:  req.Content,
	}
	if err := h.store.Create(r.Context(), comment); err != nil {
		httputil.WriteInternalError(w, err)
		return
	}

	if h.logger != nil {
		h.logger.WithField("comment_id", comment.ID).WithField("post_id", postID).Info("comment created")
	}

	httputil.WriteCreated(w, comment)
}

// deleteComment handles DELETE /comments/{id}.
//
// Deletion is owner-only for every role; admins get no override,
// asymmetric with post deletion.
func (h *CommentHandlers) deleteComment(w http.ResponseWriter, r *http.Request) {
	caller := middleware.CallerFromContext(r.Context())

	id, ok := httputil.ParsePathStringOrError(w, r, "id")
	if !ok {
		return
	}

	comment, err := h.store.GetByID(r.Context(), id)
	if errors.Is(err, comments.ErrCommentNotFound) {
		httputil.WriteNotFoundError(w, err.Error())
		return
	}
	if err != nil {
		httputil.WriteInternalError(w, err)
		return
	}

	if err := access.AuthorizeCommentWrite(caller, access.ActionDelete, comment, nil); err != nil {
		h.recordDecision("delete", err)
		writeAccessError(w, err)
		return
	}
	h.recordDecision("delete", nil)

	if err := h.store.Delete(r.Context(), id); err != nil {
		httputil.WriteInternalError(w, err)
		return
	}

	httputil.WriteNoContent(w)
}
