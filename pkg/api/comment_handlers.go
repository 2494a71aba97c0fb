package api

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/npsexplorer/explorer/pkg/auth"
	"github.com/npsexplorer/explorer/pkg/comments"
	"github.com/npsexplorer/explorer/pkg/httputil"
	"github.com/npsexplorer/explorer/pkg/middleware"
	"github.com/npsexplorer/explorer/pkg/observability"
)

const (
	msgCommentNotFound   = "Comment doesn't exist"
	msgCommentEmptyPatch = "Request body must contain 'commentText'"
	msgRequestCompleted  = "Request completed"
)

// CommentHandlers handles the comment board
type CommentHandlers struct {
	store  comments.Store
	bearer wrapper
	out    serializer
	logger *observability.Logger
}

// NewCommentHandlers creates the comment handlers
func NewCommentHandlers(store comments.Store, bearer wrapper, out serializer, logger *observability.Logger) *CommentHandlers {
	return &CommentHandlers{
		store:  store,
		bearer: bearer,
		out:    out,
		logger: logger,
	}
}

// RegisterRoutes registers the comment routes. All of them need a bearer token.
func (h *CommentHandlers) RegisterRoutes(router *mux.Router) {
	router.Handle("/comments", guard(h.bearer, h.listComments)).Methods(http.MethodGet)
	router.Handle("/comments", guard(h.bearer, h.createComment)).Methods(http.MethodPost)
	router.Handle("/comments/{comment_id}", guard(h.bearer, h.getComment)).Methods(http.MethodGet)
	router.Handle("/comments/{comment_id}", guard(h.bearer, h.deleteComment)).Methods(http.MethodDelete)
	router.Handle("/comments/{comment_id}", guard(h.bearer, h.updateComment)).Methods(http.MethodPatch)
}

// listComments handles GET /api/comments
func (h *CommentHandlers) listComments(w http.ResponseWriter, r *http.Request) {
	list, err := h.store.List(r.Context())
	if err != nil {
		serverError(w, r, h.logger, err, "Failed to list comments")
		return
	}
	_ = httputil.WriteSuccess(w, h.out.commentList(list))
}

// createComment handles POST /api/comments
func (h *CommentHandlers) createComment(w http.ResponseWriter, r *http.Request) {
	var req CommentRequest
	if !httputil.ParseJSONOrError(w, r, &req) {
		return
	}

	if req.CommentText == nil {
		httputil.WriteBadRequest(w, (&auth.MissingFieldError{Field: "commentText"}).Error())
		return
	}
	if req.ParkCode == nil {
		httputil.WriteBadRequest(w, (&auth.MissingFieldError{Field: "parkCode"}).Error())
		return
	}

	authCtx := middleware.GetAuthContext(r)
	if authCtx == nil || authCtx.Account == nil {
		httputil.WriteUnauthorized(w)
		return
	}

	created, err := h.store.Create(r.Context(), &comments.Comment{
		CommentText: *req.CommentText,
		ParkCode:    *req.ParkCode,
		AuthorID:    authCtx.Account.ID,
		AuthorName:  authCtx.Account.FirstName,
	})
	if err != nil {
		serverError(w, r, h.logger, err, "Failed to create comment")
		return
	}

	_ = httputil.WriteCreated(w, fmt.Sprintf("/api/comments/%d", created.ID), h.out.comment(created))
}

func (h *CommentHandlers) loadComment(w http.ResponseWriter, r *http.Request) *comments.Comment {
	id, err := httputil.ParsePathInt64(r, "comment_id")
	if err != nil {
		httputil.WriteNotFoundError(w, msgCommentNotFound)
		return nil
	}

	c, err := h.store.Get(r.Context(), id)
	if errors.Is(err, comments.ErrNotFound) {
		httputil.WriteNotFoundError(w, msgCommentNotFound)
		return nil
	}
	if err != nil {
		serverError(w, r, h.logger, err, "Failed to load comment")
		return nil
	}
	return c
}

// getComment handles GET /api/comments/{comment_id}
func (h *CommentHandlers) getComment(w http.ResponseWriter, r *http.Request) {
	c := h.loadComment(w, r)
	if c == nil {
		return
	}
	_ = httputil.WriteSuccess(w, h.out.comment(c))
}

// deleteComment handles DELETE /api/comments/{comment_id}
func (h *CommentHandlers) deleteComment(w http.ResponseWriter, r *http.Request) {
	c := h.loadComment(w, r)
	if c == nil {
		return
	}

	err := h.store.Delete(r.Context(), c.ID)
	if errors.Is(err, comments.ErrNotFound) {
		httputil.WriteNotFoundError(w, msgCommentNotFound)
		return
	}
	if err != nil {
		serverError(w, r, h.logger, err, "Failed to delete comment")
		return
	}
	httputil.WriteNoContent(w)
}

// updateComment handles PATCH /api/comments/{comment_id}
func (h *CommentHandlers) updateComment(w http.ResponseWriter, r *http.Request) {
	c := h.loadComment(w, r)
	if c == nil {
		return
	}

	var req CommentRequest
	if !httputil.ParseJSONOrError(w, r, &req) {
		return
	}
	if req.CommentText == nil {
		httputil.WriteBadRequest(w, msgCommentEmptyPatch)
		return
	}

	err := h.store.UpdateText(r.Context(), c.ID, *req.CommentText)
	if errors.Is(err, comments.ErrNotFound) {
		httputil.WriteNotFoundError(w, msgCommentNotFound)
		return
	}
	if err != nil {
		serverError(w, r, h.logger, err, "Failed to update comment")
		return
	}
	httputil.WriteInfo(w, http.StatusOK, msgRequestCompleted)
}
