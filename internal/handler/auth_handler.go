package handler

import (
	"errors"
	"net/http"

	"storefront/internal/model"
	"storefront/internal/service"
	"storefront/internal/session"

	"github.com/rs/zerolog"
)

// AuthHandler handles sign in, sign up, sign out and the profile.
type AuthHandler struct {
	service service.AuthService
	logger  zerolog.Logger
}

// NewAuthHandler creates a new auth handler.
func NewAuthHandler(service service.AuthService, logger zerolog.Logger) *AuthHandler {
	return &AuthHandler{
		service: service,
		logger:  logger.With().Str("handler", "auth").Logger(),
	}
}

// Login handles POST /api/auth/login requests.
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req model.LoginRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, r, http.StatusBadRequest, model.ErrCodeInvalidJSON, "invalid request body", h.logger)
		return
	}

	payload, err := h.service.Login(r.Context(), req)
	if err != nil {
		h.writeAuthError(w, r, err)
		return
	}
	h.startSession(w, r, payload, http.StatusOK)
}

// Register handles POST /api/auth/register requests.
func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req model.RegisterRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, r, http.StatusBadRequest, model.ErrCodeInvalidJSON, "invalid request body", h.logger)
		return
	}

	payload, err := h.service.Register(r.Context(), req)
	if err != nil {
		h.writeAuthError(w, r, err)
		return
	}
	h.startSession(w, r, payload, http.StatusCreated)
}

// Logout handles POST /api/auth/logout requests. It always succeeds for
// the client; the backend revocation is best effort.
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	if sess := session.FromContext(ctx); sess != nil {
		h.service.Logout(ctx, sess)
	}

	if store := session.StoreFromContext(ctx); store != nil {
		if err := store.Destroy(ctx); err != nil {
			writeServiceError(w, r, err, h.logger)
			return
		}
	}

	writeJSON(w, http.StatusOK, Envelope{Status: http.StatusOK}, h.logger)
}

// Profile handles GET /api/profile requests.
func (h *AuthHandler) Profile(w http.ResponseWriter, r *http.Request) {
	res, err := h.service.Profile(r.Context(), session.FromContext(r.Context()))
	writeResult(w, r, res, err, h.logger)
}

// UpdateProfile handles PUT /api/profile requests. The stored session is
// refreshed with the updated identity.
func (h *AuthHandler) UpdateProfile(w http.ResponseWriter, r *http.Request) {
	var req model.ProfileRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, r, http.StatusBadRequest, model.ErrCodeInvalidJSON, "invalid request body", h.logger)
		return
	}

	ctx := r.Context()
	sess := session.FromContext(ctx)
	user, err := h.service.UpdateProfile(ctx, sess, req)
	if err != nil {
		writeServiceError(w, r, err, h.logger)
		return
	}

	if store := session.StoreFromContext(ctx); store != nil {
		if _, err := store.Create(ctx, *user, sess.Token); err != nil {
			h.logger.Warn().Err(err).Msg("failed to refresh session after profile update")
		}
	}

	writeJSON(w, http.StatusOK, Envelope{Data: user, Status: http.StatusOK}, h.logger)
}

// startSession stores the authenticated pair and answers with the user.
// The token itself never reaches the client.
func (h *AuthHandler) startSession(w http.ResponseWriter, r *http.Request, payload *model.AuthPayload, status int) {
	ctx := r.Context()
	store := session.StoreFromContext(ctx)
	if store == nil {
		writeError(w, r, http.StatusInternalServerError, model.ErrCodeSession, model.GenericErrorMessage, h.logger)
		return
	}

	if _, err := store.Create(ctx, payload.User, payload.Token); err != nil {
		writeServiceError(w, r, err, h.logger)
		return
	}

	h.logger.Info().Int64("user_id", payload.User.ID).Msg("session started")
	writeJSON(w, status, Envelope{Data: payload.User, Status: status}, h.logger)
}

// writeAuthError relays credential rejections as they are; a 401 here is
// a wrong password, not an expired session.
func (h *AuthHandler) writeAuthError(w http.ResponseWriter, r *http.Request, err error) {
	var apiErr *model.APIError
	if errors.As(err, &apiErr) {
		writeError(w, r, upstreamStatus(apiErr.Status), model.ErrCodeAPI, apiErr.Message, h.logger)
		return
	}
	writeServiceError(w, r, err, h.logger)
}
