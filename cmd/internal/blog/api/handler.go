// Package blogapi wires the post, comment, and like HTTP endpoints to
// the blog store.
package blogapi

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	authapi "plume/cmd/internal/auth/api"
	"plume/cmd/internal/blog"
	"plume/cmd/internal/web"
)

// Config controls the HTTP blog surface.
type Config struct {
	// MaxBodyBytes bounds request bodies.
	MaxBodyBytes int64
}

// DefaultConfig returns the production defaults.
func DefaultConfig() Config {
	return Config{MaxBodyBytes: 1 << 20}
}

// Handler serves the post, comment, and like endpoints.
type Handler struct {
	log    *slog.Logger
	cfg    Config
	store  blog.Store
	tokens authapi.AccessTokenDecoder
}

// NewHandler constructs a blog Handler.
func NewHandler(log *slog.Logger, cfg Config, store blog.Store, tokens authapi.AccessTokenDecoder) (*Handler, error) {
	if store == nil || tokens == nil {
		return nil, errors.New("blogapi: nil dependency")
	}
	if log == nil {
		log = slog.Default()
	}
	if cfg.MaxBodyBytes <= 0 {
		cfg.MaxBodyBytes = DefaultConfig().MaxBodyBytes
	}
	return &Handler{log: log, cfg: cfg, store: store, tokens: tokens}, nil
}

// Register mounts the blog routes on r.
func (h *Handler) Register(r chi.Router) {
	r.Get("/posts", h.handleListPosts)
	r.Get("/posts/{post_id}", h.handleGetPost)
	r.Get("/posts/{post_id}/comments", h.handleListComments)

	r.Group(func(r chi.Router) {
		r.Use(authapi.RequireAuth(h.tokens))

		r.Post("/posts", h.handleCreatePost)
		r.Get("/posts/me", h.handleListMyPosts)
		r.Get("/posts/liked", h.handleListLikedPosts)
		r.Patch("/posts/{post_id}", h.handleUpdatePost)
		r.Delete("/posts/{post_id}", h.handleDeletePost)

		r.Post("/posts/{post_id}/comments", h.handleCreateComment)
		r.Patch("/posts/{post_id}/comments/{comment_id}", h.handleUpdateComment)
		r.Delete("/posts/{post_id}/comments/{comment_id}", h.handleDeleteComment)
		r.Get("/comments/me", h.handleListMyComments)

		r.Get("/posts/{post_id}/likes", h.handleLikeStatus)
		r.Post("/posts/{post_id}/likes", h.handleCreateLike)
		r.Delete("/posts/{post_id}/likes", h.handleDeleteLike)
	})
}

// storeError maps domain errors to responses. Anything unmapped is an
// internal error with no detail leaked.
func (h *Handler) storeError(w http.ResponseWriter, op string, err error) {
	switch {
	case errors.Is(err, blog.ErrPostNotFound):
		web.WriteError(w, http.StatusNotFound, "not_found", "post not found")
	case errors.Is(err, blog.ErrCommentNotFound):
		web.WriteError(w, http.StatusNotFound, "not_found", "comment not found")
	case errors.Is(err, blog.ErrAlreadyLiked):
		web.WriteError(w, http.StatusConflict, "already_liked", "already liked")
	case errors.Is(err, blog.ErrNotLiked):
		web.WriteError(w, http.StatusNotFound, "not_found", "like not found")
	default:
		h.log.Error(op, "error", err)
		web.WriteError(w, http.StatusInternalServerError, "internal", "internal error")
	}
}
