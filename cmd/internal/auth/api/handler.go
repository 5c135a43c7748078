// Package authapi wires HTTP auth and account endpoints to the identity
// and session services.
package authapi

import (
	"errors"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"plume/cmd/identity"
	"plume/cmd/internal/auth/session"
	"plume/cmd/internal/web"
	"plume/cmd/security/token"
)

// Handler serves signup, login, refresh, logout and profile endpoints.
type Handler struct {
	log      *slog.Logger
	cfg      Config
	users    identity.Store
	sessions *session.Service
	hasher   PasswordHasher
	tokens   AccessTokenDecoder
}

// NewHandler constructs an auth Handler.
func NewHandler(
	log *slog.Logger,
	cfg Config,
	users identity.Store,
	sessions *session.Service,
	hasher PasswordHasher,
	tokens AccessTokenDecoder,
) (*Handler, error) {
	if users == nil || sessions == nil || hasher == nil || tokens == nil {
		return nil, errors.New("authapi: nil dependency")
	}
	if log == nil {
		log = slog.Default()
	}
	return &Handler{
		log:      log,
		cfg:      cfg,
		users:    users,
		sessions: sessions,
		hasher:   hasher,
		tokens:   tokens,
	}, nil
}

// Register wires auth routes onto the router.
func (h *Handler) Register(r chi.Router) {
	r.Post("/users", h.handleSignup)
	r.Post("/auth/tokens", h.handleLogin)
	r.Post("/auth/tokens/refresh", h.handleRefresh)
	r.Post("/auth/logout", h.handleLogout)
	r.Get("/users/{user_id}", h.handleGetUser)

	r.Group(func(r chi.Router) {
		r.Use(RequireAuth(h.tokens))
		r.Get("/users/me", h.handleMe)
		r.Patch("/users/me", h.handleUpdateMe)
		r.Put("/users/me/password", h.handleChangePassword)
		r.Delete("/users/me", h.handleDeleteMe)
	})
}

func (h *Handler) handleSignup(w http.ResponseWriter, r *http.Request) {
	var req signupRequest
	if err := web.DecodeJSON(w, r, h.cfg.MaxBodyBytes, &req); err != nil {
		web.WriteError(w, http.StatusBadRequest, "invalid_json", "invalid request body")
		return
	}

	email := identity.NormalizeEmail(req.Email)
	nickname := identity.NormalizeNickname(req.Nickname)
	if email == "" || !strings.Contains(email, "@") {
		web.WriteError(w, http.StatusBadRequest, "invalid_request", "a valid email is required")
		return
	}
	if nickname == "" || len(nickname) > 15 {
		web.WriteError(w, http.StatusBadRequest, "invalid_request", "nickname must be 1-15 characters")
		return
	}
	if err := h.hasher.ValidatePolicy(req.Password); err != nil {
		web.WriteError(w, http.StatusBadRequest, "invalid_password", "password does not meet the policy")
		return
	}

	hash, err := h.hasher.Hash(req.Password)
	if err != nil {
		h.log.Error("auth.signup.hash.fail", "err", err)
		web.WriteError(w, http.StatusInternalServerError, "internal", "internal error")
		return
	}

	u := identity.User{
		ID:           identity.NewUserID(),
		Email:        email,
		PasswordHash: hash,
		Nickname:     nickname,
		ProfileImg:   req.ProfileImg,
		CreatedAt:    time.Now().UTC(),
	}
	if err := h.users.Create(r.Context(), u); err != nil {
		if errors.Is(err, identity.ErrEmailTaken) {
			web.WriteError(w, http.StatusConflict, "email_taken", "email already registered")
			return
		}
		h.log.Error("auth.signup.create.fail", "err", err)
		web.WriteError(w, http.StatusInternalServerError, "internal", "internal error")
		return
	}

	h.log.Info("auth.signup", "user_id", u.ID)
	web.WriteJSON(w, http.StatusCreated, userResponse{
		ID:         u.ID,
		Email:      u.Email,
		Nickname:   u.Nickname,
		ProfileImg: u.ProfileImg,
		CreatedAt:  u.CreatedAt,
	})
}

func (h *Handler) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := web.DecodeJSON(w, r, h.cfg.MaxBodyBytes, &req); err != nil {
		web.WriteError(w, http.StatusBadRequest, "invalid_json", "invalid request body")
		return
	}

	ctx := r.Context()
	now := time.Now().UTC()

	user, err := h.users.GetByEmail(ctx, identity.NormalizeEmail(req.Email))
	if err != nil {
		if errors.Is(err, identity.ErrNotFound) {
			// Timing resistance: burn a full-cost verify so unknown
			// emails cost the same as wrong passwords.
			h.hasher.VerifyDummy(req.Password)
			web.WriteError(w, http.StatusUnauthorized, "invalid_credentials", "Incorrect email or password")
			return
		}
		h.log.Error("auth.login.lookup.fail", "err", err)
		web.WriteError(w, http.StatusInternalServerError, "internal", "internal error")
		return
	}

	if !h.hasher.Verify(req.Password, user.PasswordHash) {
		web.WriteError(w, http.StatusUnauthorized, "invalid_credentials", "Incorrect email or password")
		return
	}

	issued, err := h.sessions.IssueSession(ctx, now, user.ID, deviceInfo(r))
	if err != nil {
		h.log.Error("auth.login.session.fail", "err", err)
		web.WriteError(w, http.StatusInternalServerError, "internal", "internal error")
		return
	}

	h.log.Info("auth.login", "user_id", user.ID, "session_id", issued.SessionID)
	h.setRefreshCookie(w, issued.RefreshToken, issued.RefreshExp.Sub(now))
	web.WriteJSON(w, http.StatusOK, tokenResponse{AccessToken: issued.AccessToken, TokenType: "bearer"})
}

func (h *Handler) handleRefresh(w http.ResponseWriter, r *http.Request) {
	raw, ok := h.refreshTokenFromCookie(r)
	if !ok {
		web.WriteError(w, http.StatusUnauthorized, "invalid_token", "invalid token")
		return
	}

	now := time.Now().UTC()
	issued, err := h.sessions.RotateRefresh(r.Context(), now, raw)
	switch {
	case err == nil:
		h.setRefreshCookie(w, issued.RefreshToken, issued.RefreshExp.Sub(now))
		web.WriteJSON(w, http.StatusOK, tokenResponse{AccessToken: issued.AccessToken, TokenType: "bearer"})
	case errors.Is(err, token.ErrTokenExpired):
		h.log.Info("auth.refresh.token_expired")
		web.WriteError(w, http.StatusUnauthorized, "invalid_token", "invalid token")
	case errors.Is(err, token.ErrTokenInvalid):
		h.log.Info("auth.refresh.token_invalid")
		web.WriteError(w, http.StatusUnauthorized, "invalid_token", "invalid token")
	case errors.Is(err, session.ErrRefreshReuseDetected),
		errors.Is(err, session.ErrSubjectMismatch):
		// Security events; the service already logged specifics. The
		// client sees nothing distinguishable from a bad token.
		web.WriteError(w, http.StatusUnauthorized, "invalid_token", "invalid token")
	default:
		h.log.Error("auth.refresh.fail", "err", err)
		web.WriteError(w, http.StatusInternalServerError, "internal", "internal error")
	}
}

func (h *Handler) handleLogout(w http.ResponseWriter, r *http.Request) {
	if raw, ok := h.refreshTokenFromCookie(r); ok {
		if err := h.sessions.Logout(r.Context(), raw); err != nil {
			h.log.Error("auth.logout.fail", "err", err)
		}
	}
	// The cookie is cleared whether or not a session row matched.
	h.clearRefreshCookie(w)
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) handleMe(w http.ResponseWriter, r *http.Request) {
	userID, ok := UserID(r.Context())
	if !ok {
		web.WriteError(w, http.StatusUnauthorized, "invalid_token", "invalid token")
		return
	}

	u, err := h.users.GetByID(r.Context(), userID)
	if err != nil {
		if errors.Is(err, identity.ErrNotFound) {
			web.WriteError(w, http.StatusUnauthorized, "invalid_token", "invalid token")
			return
		}
		h.log.Error("auth.me.lookup.fail", "err", err)
		web.WriteError(w, http.StatusInternalServerError, "internal", "internal error")
		return
	}

	web.WriteJSON(w, http.StatusOK, userResponse{
		ID:         u.ID,
		Email:      u.Email,
		Nickname:   u.Nickname,
		ProfileImg: u.ProfileImg,
		CreatedAt:  u.CreatedAt,
	})
}

func (h *Handler) handleUpdateMe(w http.ResponseWriter, r *http.Request) {
	userID, ok := UserID(r.Context())
	if !ok {
		web.WriteError(w, http.StatusUnauthorized, "invalid_token", "invalid token")
		return
	}

	var req updateMeRequest
	if err := web.DecodeJSON(w, r, h.cfg.MaxBodyBytes, &req); err != nil {
		web.WriteError(w, http.StatusBadRequest, "invalid_json", "invalid request body")
		return
	}
	if req.Nickname == nil && req.ProfileImg == nil {
		web.WriteError(w, http.StatusBadRequest, "invalid_request", "at least one field is required")
		return
	}
	if req.Nickname != nil {
		nick := identity.NormalizeNickname(*req.Nickname)
		if nick == "" || len(nick) > 15 {
			web.WriteError(w, http.StatusBadRequest, "invalid_request", "nickname must be 1-15 characters")
			return
		}
		req.Nickname = &nick
	}

	u, err := h.users.UpdateProfile(r.Context(), userID, req.Nickname, req.ProfileImg)
	if err != nil {
		if errors.Is(err, identity.ErrNotFound) {
			web.WriteError(w, http.StatusUnauthorized, "invalid_token", "invalid token")
			return
		}
		h.log.Error("auth.update_me.fail", "err", err)
		web.WriteError(w, http.StatusInternalServerError, "internal", "internal error")
		return
	}

	web.WriteJSON(w, http.StatusOK, userResponse{
		ID:         u.ID,
		Email:      u.Email,
		Nickname:   u.Nickname,
		ProfileImg: u.ProfileImg,
		CreatedAt:  u.CreatedAt,
	})
}

func (h *Handler) handleChangePassword(w http.ResponseWriter, r *http.Request) {
	userID, ok := UserID(r.Context())
	if !ok {
		web.WriteError(w, http.StatusUnauthorized, "invalid_token", "invalid token")
		return
	}

	var req changePasswordRequest
	if err := web.DecodeJSON(w, r, h.cfg.MaxBodyBytes, &req); err != nil {
		web.WriteError(w, http.StatusBadRequest, "invalid_json", "invalid request body")
		return
	}

	u, err := h.users.GetByID(r.Context(), userID)
	if err != nil {
		if errors.Is(err, identity.ErrNotFound) {
			web.WriteError(w, http.StatusUnauthorized, "invalid_token", "invalid token")
			return
		}
		h.log.Error("auth.change_password.lookup.fail", "err", err)
		web.WriteError(w, http.StatusInternalServerError, "internal", "internal error")
		return
	}

	if !h.hasher.Verify(req.CurrentPassword, u.PasswordHash) {
		web.WriteError(w, http.StatusForbidden, "invalid_credentials", "current password is incorrect")
		return
	}
	if err := h.hasher.ValidatePolicy(req.NewPassword); err != nil {
		web.WriteError(w, http.StatusBadRequest, "invalid_password", "password does not meet the policy")
		return
	}

	hash, err := h.hasher.Hash(req.NewPassword)
	if err != nil {
		h.log.Error("auth.change_password.hash.fail", "err", err)
		web.WriteError(w, http.StatusInternalServerError, "internal", "internal error")
		return
	}
	if err := h.users.UpdatePassword(r.Context(), userID, hash); err != nil {
		h.log.Error("auth.change_password.fail", "err", err)
		web.WriteError(w, http.StatusInternalServerError, "internal", "internal error")
		return
	}

	// All sessions end; every device logs in again with the new password.
	if err := h.sessions.RevokeUser(r.Context(), userID); err != nil {
		h.log.Error("auth.change_password.revoke.fail", "err", err)
	}

	h.log.Info("auth.password_changed", "user_id", userID)
	h.clearRefreshCookie(w)
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) handleDeleteMe(w http.ResponseWriter, r *http.Request) {
	userID, ok := UserID(r.Context())
	if !ok {
		web.WriteError(w, http.StatusUnauthorized, "invalid_token", "invalid token")
		return
	}

	if err := h.users.Delete(r.Context(), userID); err != nil {
		if errors.Is(err, identity.ErrNotFound) {
			web.WriteError(w, http.StatusUnauthorized, "invalid_token", "invalid token")
			return
		}
		h.log.Error("auth.delete_me.fail", "err", err)
		web.WriteError(w, http.StatusInternalServerError, "internal", "internal error")
		return
	}
	if err := h.sessions.RevokeUser(r.Context(), userID); err != nil {
		h.log.Error("auth.delete_me.revoke.fail", "err", err)
	}

	h.log.Info("auth.account_deleted", "user_id", userID)
	h.clearRefreshCookie(w)
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) handleGetUser(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "user_id")

	u, err := h.users.GetByID(r.Context(), id)
	if err != nil {
		if errors.Is(err, identity.ErrNotFound) {
			web.WriteError(w, http.StatusNotFound, "not_found", "user not found")
			return
		}
		h.log.Error("auth.get_user.fail", "err", err)
		web.WriteError(w, http.StatusInternalServerError, "internal", "internal error")
		return
	}

	web.WriteJSON(w, http.StatusOK, publicUserResponse{
		ID:         u.ID,
		Nickname:   u.Nickname,
		ProfileImg: u.ProfileImg,
	})
}
