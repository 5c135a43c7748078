package blogapi

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	authapi "plume/cmd/internal/auth/api"
	"plume/cmd/internal/web"
)

func (h *Handler) handleCreateLike(w http.ResponseWriter, r *http.Request) {
	userID, ok := authapi.UserID(r.Context())
	if !ok {
		web.WriteError(w, http.StatusUnauthorized, "invalid_token", "invalid token")
		return
	}

	count, err := h.store.AddLike(r.Context(), chi.URLParam(r, "post_id"), userID, time.Now().UTC())
	if err != nil {
		h.storeError(w, "blog.like.create", err)
		return
	}

	web.WriteJSON(w, http.StatusCreated, likeStatusResponse{Liked: true, LikeCount: count})
}

func (h *Handler) handleDeleteLike(w http.ResponseWriter, r *http.Request) {
	userID, ok := authapi.UserID(r.Context())
	if !ok {
		web.WriteError(w, http.StatusUnauthorized, "invalid_token", "invalid token")
		return
	}

	count, err := h.store.RemoveLike(r.Context(), chi.URLParam(r, "post_id"), userID)
	if err != nil {
		h.storeError(w, "blog.like.delete", err)
		return
	}

	web.WriteJSON(w, http.StatusOK, likeStatusResponse{Liked: false, LikeCount: count})
}

func (h *Handler) handleLikeStatus(w http.ResponseWriter, r *http.Request) {
	userID, ok := authapi.UserID(r.Context())
	if !ok {
		web.WriteError(w, http.StatusUnauthorized, "invalid_token", "invalid token")
		return
	}

	liked, count, err := h.store.LikeStatus(r.Context(), chi.URLParam(r, "post_id"), userID)
	if err != nil {
		h.storeError(w, "blog.like.status", err)
		return
	}

	web.WriteJSON(w, http.StatusOK, likeStatusResponse{Liked: liked, LikeCount: count})
}
