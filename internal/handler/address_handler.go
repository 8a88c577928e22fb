package handler

import (
	"net/http"

	"storefront/internal/model"
	"storefront/internal/service"
	"storefront/internal/session"

	"github.com/rs/zerolog"
)

// AddressHandler handles the user's saved addresses.
type AddressHandler struct {
	service service.AddressService
	logger  zerolog.Logger
}

// NewAddressHandler creates a new address handler.
func NewAddressHandler(service service.AddressService, logger zerolog.Logger) *AddressHandler {
	return &AddressHandler{
		service: service,
		logger:  logger.With().Str("handler", "address").Logger(),
	}
}

// List handles GET /api/addresses requests.
func (h *AddressHandler) List(w http.ResponseWriter, r *http.Request) {
	res, err := h.service.List(r.Context(), session.FromContext(r.Context()))
	writeResult(w, r, res, err, h.logger)
}

// Get handles GET /api/addresses/{id} requests.
func (h *AddressHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r, "id")
	if err != nil {
		writeServiceError(w, r, err, h.logger)
		return
	}
	res, err := h.service.Get(r.Context(), session.FromContext(r.Context()), id)
	writeResult(w, r, res, err, h.logger)
}

// Create handles POST /api/addresses requests.
func (h *AddressHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req model.AddressRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, r, http.StatusBadRequest, model.ErrCodeInvalidJSON, "invalid request body", h.logger)
		return
	}
	res, err := h.service.Create(r.Context(), session.FromContext(r.Context()), req)
	writeResult(w, r, res, err, h.logger)
}

// Update handles PUT /api/addresses/{id} requests.
func (h *AddressHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r, "id")
	if err != nil {
		writeServiceError(w, r, err, h.logger)
		return
	}
	var req model.AddressRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, r, http.StatusBadRequest, model.ErrCodeInvalidJSON, "invalid request body", h.logger)
		return
	}
	res, err := h.service.Update(r.Context(), session.FromContext(r.Context()), id, req)
	writeResult(w, r, res, err, h.logger)
}

// Delete handles DELETE /api/addresses/{id} requests.
func (h *AddressHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r, "id")
	if err != nil {
		writeServiceError(w, r, err, h.logger)
		return
	}
	res, err := h.service.Delete(r.Context(), session.FromContext(r.Context()), id)
	writeResult(w, r, res, err, h.logger)
}
