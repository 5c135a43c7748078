package blogapi

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	authapi "plume/cmd/internal/auth/api"
	"plume/cmd/internal/blog"
	"plume/cmd/internal/web"
)

func (h *Handler) handleListComments(w http.ResponseWriter, r *http.Request) {
	page, ok := pageParam(r)
	if !ok {
		web.WriteError(w, http.StatusBadRequest, "invalid_request", "page must be between 1 and 10000")
		return
	}

	comments, pg, err := h.store.ListComments(r.Context(), chi.URLParam(r, "post_id"), page)
	if err != nil {
		h.storeError(w, "blog.comments.list", err)
		return
	}

	web.WriteJSON(w, http.StatusOK, toListCommentsResponse(comments, pg))
}

func (h *Handler) handleCreateComment(w http.ResponseWriter, r *http.Request) {
	userID, ok := authapi.UserID(r.Context())
	if !ok {
		web.WriteError(w, http.StatusUnauthorized, "invalid_token", "invalid token")
		return
	}

	var req createCommentRequest
	if err := web.DecodeJSON(w, r, h.cfg.MaxBodyBytes, &req); err != nil {
		web.WriteError(w, http.StatusBadRequest, "invalid_json", "invalid request body")
		return
	}
	if req.Content == "" || len(req.Content) > maxCommentLen {
		web.WriteError(w, http.StatusBadRequest, "invalid_request", "content must be 1-1000 characters")
		return
	}

	comment := blog.Comment{
		ID:        blog.NewCommentID(),
		PostID:    chi.URLParam(r, "post_id"),
		AuthorID:  &userID,
		Content:   req.Content,
		CreatedAt: time.Now().UTC(),
	}
	if err := h.store.CreateComment(r.Context(), comment); err != nil {
		h.storeError(w, "blog.comment.create", err)
		return
	}

	web.WriteJSON(w, http.StatusCreated, toCommentResponse(comment))
}

// ownComment loads the comment, checks it belongs to the post in the
// URL, and verifies the caller authored it.
func (h *Handler) ownComment(w http.ResponseWriter, r *http.Request, op string) (blog.Comment, bool) {
	userID, ok := authapi.UserID(r.Context())
	if !ok {
		web.WriteError(w, http.StatusUnauthorized, "invalid_token", "invalid token")
		return blog.Comment{}, false
	}

	comment, err := h.store.GetComment(r.Context(), chi.URLParam(r, "comment_id"))
	if err != nil {
		h.storeError(w, op, err)
		return blog.Comment{}, false
	}
	if comment.PostID != chi.URLParam(r, "post_id") {
		web.WriteError(w, http.StatusNotFound, "not_found", "comment not found")
		return blog.Comment{}, false
	}
	if comment.AuthorID == nil || *comment.AuthorID != userID {
		web.WriteError(w, http.StatusForbidden, "forbidden", "not the author")
		return blog.Comment{}, false
	}
	return comment, true
}

func (h *Handler) handleUpdateComment(w http.ResponseWriter, r *http.Request) {
	comment, ok := h.ownComment(w, r, "blog.comment.update")
	if !ok {
		return
	}

	var req updateCommentRequest
	if err := web.DecodeJSON(w, r, h.cfg.MaxBodyBytes, &req); err != nil {
		web.WriteError(w, http.StatusBadRequest, "invalid_json", "invalid request body")
		return
	}
	if req.Content == "" || len(req.Content) > maxCommentLen {
		web.WriteError(w, http.StatusBadRequest, "invalid_request", "content must be 1-1000 characters")
		return
	}

	updated, err := h.store.UpdateComment(r.Context(), comment.ID, req.Content, time.Now().UTC())
	if err != nil {
		h.storeError(w, "blog.comment.update", err)
		return
	}

	web.WriteJSON(w, http.StatusOK, toCommentResponse(updated))
}

func (h *Handler) handleDeleteComment(w http.ResponseWriter, r *http.Request) {
	comment, ok := h.ownComment(w, r, "blog.comment.delete")
	if !ok {
		return
	}

	if err := h.store.DeleteComment(r.Context(), comment.ID); err != nil {
		h.storeError(w, "blog.comment.delete", err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) handleListMyComments(w http.ResponseWriter, r *http.Request) {
	userID, ok := authapi.UserID(r.Context())
	if !ok {
		web.WriteError(w, http.StatusUnauthorized, "invalid_token", "invalid token")
		return
	}

	page, ok := pageParam(r)
	if !ok {
		web.WriteError(w, http.StatusBadRequest, "invalid_request", "page must be between 1 and 10000")
		return
	}

	comments, pg, err := h.store.ListCommentsByAuthor(r.Context(), userID, page)
	if err != nil {
		h.storeError(w, "blog.comments.mine", err)
		return
	}

	web.WriteJSON(w, http.StatusOK, toListCommentsResponse(comments, pg))
}
