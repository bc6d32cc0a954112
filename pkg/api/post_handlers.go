package api

import (
	"errors"
	"net/http"

	"github.com/bylinehq/byline/pkg/access"
	"github.com/bylinehq/byline/pkg/httputil"
	"github.com/bylinehq/byline/pkg/middleware"
	"github.com/bylinehq/byline/pkg/observability"
	"github.com/bylinehq/byline/pkg/posts"
)

// PostHandlers handles post-related HTTP requests
type PostHandlers struct {
	store   posts.Store
	metrics *observability.Metrics
	logger  *observability.Logger
}

// NewPostHandlers creates a new post handlers instance
func NewPostHandlers(store posts.Store, metrics *observability.Metrics, logger *observability.Logger) *PostHandlers {
	return &PostHandlers{store: store, metrics: metrics, logger: logger}
}

func (h *PostHandlers) recordDecision(action string, err error) {
	if h.metrics != nil {
		h.metrics.RecordDecision("post", action, err)
	}
}

// listPosts handles GET /posts.
//
// The caller's role determines the visible set: anonymous callers and
// readers get published posts, writers additionally get their own
// drafts, admins get everything. An explicit ?status= filter replaces
// the writer union rather than narrowing it.
func (h *PostHandlers) listPosts(w http.ResponseWriter, r *http.Request) {
	caller := middleware.CallerFromContext(r.Context())

	filters := access.ListFilters{
		Status: access.Status(r.URL.Query().Get("status")),
		Search: r.URL.Query().Get("search"),
	}
	if filters.Status != "" && !filters.Status.Valid() {
		httputil.WriteBadRequest(w, "invalid status filter")
		return
	}

	pred := access.BuildListingPredicate(caller, filters)
	page := httputil.ParsePagination(r)

	result, total, err := h.store.List(r.Context(), pred, page.Limit, page.Offset())
	if err != nil {
		httputil.WriteInternalError(w, err)
		return
	}
	if result == nil {
		result = []*posts.Post{}
	}

	httputil.WriteSuccess(w, map[string]interface{}{
		"posts":      result,
		"pagination": httputil.NewPageInfo(page, total),
	})
}

// getPost handles GET /posts/{id}.
//
// Existence is checked before visibility: a missing post is a 404 even
// for callers who could not have read it, and a denial is only reported
// for posts that exist.
func (h *PostHandlers) getPost(w http.ResponseWriter, r *http.Request) {
	caller := middleware.CallerFromContext(r.Context())

	id, ok := httputil.ParsePathStringOrError(w, r, "id")
	if !ok {
		return
	}

	post, err := h.store.GetByID(r.Context(), id)
	if errors.Is(err, posts.ErrPostNotFound) {
		httputil.WriteNotFoundError(w, err.Error())
		return
	}
	if err != nil {
		httputil.WriteInternalError(w, err)
		return
	}

	if !access.CanDisclose(caller, post) {
		h.recordDecision("read", access.ErrAccessDenied)
		writeAccessError(w, access.ErrAccessDenied)
		return
	}
	h.recordDecision("read", nil)

	httputil.WriteSuccess(w, post)
}

// createPost handles POST /posts
func (h *PostHandlers) createPost(w http.ResponseWriter, r *http.Request) {
	caller := middleware.CallerFromContext(r.Context())

	if err := access.AuthorizePostWrite(caller, access.ActionCreate, nil); err != nil {
		h.recordDecision("create", err)
		writeAccessError(w, err)
		return
	}
	h.recordDecision("create", nil)

	var req posts.CreateRequest
	if !httputil.ParseJSONOrError(w, r, &req) {
		return
	}
	if err := req.Validate(); err != nil {
		httputil.WriteBadRequest(w, err.Error())
		return
	}

	post := &posts.Post{
		Title:    req.Title,
		Content:  req.Content,
		Status:   req.Status,
		AuthorID: caller.ID,
	}
	if err := h.store.Create(r.Context(), post); err != nil {
		httputil.WriteInternalError(w, err)
		return
	}

	if h.logger != nil {
		h.logger.WithField("post_id", post.ID).WithField("author_id", caller.ID).Info("post created")
	}

	httputil.WriteCreated(w, post)
}

// updatePost handles PATCH /posts/{id}. Absent fields keep their stored
// values; provided fields are merged onto the post.
func (h *PostHandlers) updatePost(w http.ResponseWriter, r *http.Request) {
	caller := middleware.CallerFromContext(r.Context())

	id, ok := httputil.ParsePathStringOrError(w, r, "id")
	if !ok {
		return
	}

	post, err := h.store.GetByID(r.Context(), id)
	if errors.Is(err, posts.ErrPostNotFound) {
		httputil.WriteNotFoundError(w, err.Error())
		return
	}
	if err != nil {
		httputil.WriteInternalError(w, err)
		return
	}

	if err := access.AuthorizePostWrite(caller, access.ActionUpdate, post); err != nil {
		h.recordDecision("update", err)
		writeAccessError(w, err)
		return
	}
	h.recordDecision("update", nil)

	var req posts.UpdateRequest
	if !httputil.ParseJSONOrError(w, r, &req) {
		return
	}
	if err := req.Validate(); err != nil {
		httputil.WriteBadRequest(w, err.Error())
		return
	}

	req.ApplyTo(post)
	if err := h.store.Update(r.Context(), post); err != nil {
		httputil.WriteInternalError(w, err)
		return
	}

	httputil.WriteSuccess(w, post)
}

// deletePost handles DELETE /posts/{id}
func (h *PostHandlers) deletePost(w http.ResponseWriter, r *http.Request) {
	caller := middleware.CallerFromContext(r.Context())

	id, ok := httputil.ParsePathStringOrError(w, r, "id")
	if !ok {
		return
	}

	post, err := h.store.GetByID(r.Context(), id)
	if errors.Is(err, posts.ErrPostNotFound) {
		httputil.WriteNotFoundError(w, err.Error())
		return
	}
	if err != nil {
		httputil.WriteInternalError(w, err)
		return
	}

	if err := access.AuthorizePostWrite(caller, access.ActionDelete, post); err != nil {
		h.recordDecision("delete", err)
		writeAccessError(w, err)
		return
	}
	h.recordDecision("delete", nil)

	if err := h.store.Delete(r.Context(), id); err != nil {
		httputil.WriteInternalError(w, err)
		return
	}

	if h.logger != nil {
		h.logger.WithField("post_id", id).Info("post deleted")
	}

	httputil.WriteNoContent(w)
}
