package handler

import (
	"net/http"

	"storefront/internal/model"
	"storefront/internal/service"
	"storefront/internal/session"

	"github.com/rs/zerolog"
)

// WishlistHandler handles the user's wishlist.
type WishlistHandler struct {
	service service.WishlistService
	logger  zerolog.Logger
}

// NewWishlistHandler creates a new wishlist handler.
func NewWishlistHandler(service service.WishlistService, logger zerolog.Logger) *WishlistHandler {
	return &WishlistHandler{
		service: service,
		logger:  logger.With().Str("handler", "wishlist").Logger(),
	}
}

// List handles GET /api/wishlists requests.
func (h *WishlistHandler) List(w http.ResponseWriter, r *http.Request) {
	res, err := h.service.List(r.Context(), session.FromContext(r.Context()))
	writeResult(w, r, res, err, h.logger)
}

// Add handles POST /api/wishlists requests.
func (h *WishlistHandler) Add(w http.ResponseWriter, r *http.Request) {
	var req model.WishlistRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, r, http.StatusBadRequest, model.ErrCodeInvalidJSON, "invalid request body", h.logger)
		return
	}
	res, err := h.service.Add(r.Context(), session.FromContext(r.Context()), req.ProductID)
	writeResult(w, r, res, err, h.logger)
}

// Remove handles DELETE /api/wishlists/{id} requests.
func (h *WishlistHandler) Remove(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r, "id")
	if err != nil {
		writeServiceError(w, r, err, h.logger)
		return
	}
	res, err := h.service.Remove(r.Context(), session.FromContext(r.Context()), id)
	writeResult(w, r, res, err, h.logger)
}
