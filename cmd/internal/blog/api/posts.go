package blogapi

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	authapi "plume/cmd/internal/auth/api"
	"plume/cmd/internal/blog"
	"plume/cmd/internal/web"
)

// pageParam reads the page query parameter, defaulting to 1. The store
// clamps against the actual page count; this only bounds the input.
func pageParam(r *http.Request) (int, bool) {
	raw := r.URL.Query().Get("page")
	if raw == "" {
		return 1, true
	}
	page, err := strconv.Atoi(raw)
	if err != nil || page < 1 || page > maxPage {
		return 0, false
	}
	return page, true
}

func (h *Handler) handleListPosts(w http.ResponseWriter, r *http.Request) {
	page, ok := pageParam(r)
	if !ok {
		web.WriteError(w, http.StatusBadRequest, "invalid_request", "page must be between 1 and 10000")
		return
	}

	q := strings.TrimSpace(r.URL.Query().Get("q"))
	if len(q) > maxSearchLen {
		web.WriteError(w, http.StatusBadRequest, "invalid_request", "search term too long")
		return
	}

	posts, pg, err := h.store.ListPosts(r.Context(), blog.ListQuery{
		Q:     q,
		Sort:  r.URL.Query().Get("sort"),
		Order: r.URL.Query().Get("order"),
		Page:  page,
	})
	if err != nil {
		h.storeError(w, "blog.posts.list", err)
		return
	}

	web.WriteJSON(w, http.StatusOK, toListPostsResponse(posts, pg))
}

func (h *Handler) handleGetPost(w http.ResponseWriter, r *http.Request) {
	post, err := h.store.ViewPost(r.Context(), chi.URLParam(r, "post_id"))
	if err != nil {
		h.storeError(w, "blog.post.get", err)
		return
	}

	web.WriteJSON(w, http.StatusOK, toPostDetail(post))
}

func (h *Handler) handleCreatePost(w http.ResponseWriter, r *http.Request) {
	userID, ok := authapi.UserID(r.Context())
	if !ok {
		web.WriteError(w, http.StatusUnauthorized, "invalid_token", "invalid token")
		return
	}

	var req createPostRequest
	if err := web.DecodeJSON(w, r, h.cfg.MaxBodyBytes, &req); err != nil {
		web.WriteError(w, http.StatusBadRequest, "invalid_json", "invalid request body")
		return
	}

	req.Title = strings.TrimSpace(req.Title)
	if req.Title == "" || len(req.Title) > maxTitleLen {
		web.WriteError(w, http.StatusBadRequest, "invalid_request", "title must be 1-100 characters")
		return
	}
	if req.Content == "" || len(req.Content) > maxContentLen {
		web.WriteError(w, http.StatusBadRequest, "invalid_request", "content must be 1-10000 characters")
		return
	}

	post := blog.Post{
		ID:        blog.NewPostID(),
		AuthorID:  &userID,
		Title:     req.Title,
		Content:   req.Content,
		CreatedAt: time.Now().UTC(),
	}
	if err := h.store.CreatePost(r.Context(), post); err != nil {
		h.storeError(w, "blog.post.create", err)
		return
	}

	h.log.Info("blog.post.create", "post_id", post.ID)
	web.WriteJSON(w, http.StatusCreated, toPostDetail(post))
}

func (h *Handler) handleListMyPosts(w http.ResponseWriter, r *http.Request) {
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

	posts, pg, err := h.store.ListPostsByAuthor(r.Context(), userID, page)
	if err != nil {
		h.storeError(w, "blog.posts.mine", err)
		return
	}

	web.WriteJSON(w, http.StatusOK, toListPostsResponse(posts, pg))
}

func (h *Handler) handleListLikedPosts(w http.ResponseWriter, r *http.Request) {
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

	posts, pg, err := h.store.ListPostsLiked(r.Context(), userID, page)
	if err != nil {
		h.storeError(w, "blog.posts.liked", err)
		return
	}

	web.WriteJSON(w, http.StatusOK, toListPostsResponse(posts, pg))
}

// ownPost loads the post and verifies the caller authored it. A post
// whose author account was deleted cannot be modified by anyone.
func (h *Handler) ownPost(w http.ResponseWriter, r *http.Request, op string) (blog.Post, bool) {
	userID, ok := authapi.UserID(r.Context())
	if !ok {
		web.WriteError(w, http.StatusUnauthorized, "invalid_token", "invalid token")
		return blog.Post{}, false
	}

	post, err := h.store.GetPost(r.Context(), chi.URLParam(r, "post_id"))
	if err != nil {
		h.storeError(w, op, err)
		return blog.Post{}, false
	}
	if post.AuthorID == nil || *post.AuthorID != userID {
		web.WriteError(w, http.StatusForbidden, "forbidden", "not the author")
		return blog.Post{}, false
	}
	return post, true
}

func (h *Handler) handleUpdatePost(w http.ResponseWriter, r *http.Request) {
	post, ok := h.ownPost(w, r, "blog.post.update")
	if !ok {
		return
	}

	var req updatePostRequest
	if err := web.DecodeJSON(w, r, h.cfg.MaxBodyBytes, &req); err != nil {
		web.WriteError(w, http.StatusBadRequest, "invalid_json", "invalid request body")
		return
	}
	if req.Title == nil && req.Content == nil {
		web.WriteError(w, http.StatusBadRequest, "invalid_request", "at least one field is required")
		return
	}
	if req.Title != nil {
		t := strings.TrimSpace(*req.Title)
		if t == "" || len(t) > maxTitleLen {
			web.WriteError(w, http.StatusBadRequest, "invalid_request", "title must be 1-100 characters")
			return
		}
		req.Title = &t
	}
	if req.Content != nil && (*req.Content == "" || len(*req.Content) > maxContentLen) {
		web.WriteError(w, http.StatusBadRequest, "invalid_request", "content must be 1-10000 characters")
		return
	}

	updated, err := h.store.UpdatePost(r.Context(), post.ID, req.Title, req.Content, time.Now().UTC())
	if err != nil {
		h.storeError(w, "blog.post.update", err)
		return
	}

	web.WriteJSON(w, http.StatusOK, toPostDetail(updated))
}

func (h *Handler) handleDeletePost(w http.ResponseWriter, r *http.Request) {
	post, ok := h.ownPost(w, r, "blog.post.delete")
	if !ok {
		return
	}

	if err := h.store.DeletePost(r.Context(), post.ID); err != nil {
		h.storeError(w, "blog.post.delete", err)
		return
	}

	h.log.Info("blog.post.delete", "post_id", post.ID)
	w.WriteHeader(http.StatusNoContent)
}
