package handler

import (
	"net/http"
	"strconv"

	"storefront/internal/model"
	"storefront/internal/service"
	"storefront/internal/session"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"
)

// ProductHandler handles catalogue requests. A session is optional.
type ProductHandler struct {
	service service.ProductService
	logger  zerolog.Logger
}

// NewProductHandler creates a new product handler.
func NewProductHandler(service service.ProductService, logger zerolog.Logger) *ProductHandler {
	return &ProductHandler{
		service: service,
		logger:  logger.With().Str("handler", "product").Logger(),
	}
}

// List handles GET /api/products requests with pagination.
func (h *ProductHandler) List(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()
	q := model.ProductQuery{
		Category: query.Get("category"),
		Search:   query.Get("search"),
		Sort:     query.Get("sort"),
	}

	var err error
	if q.Page, err = intQuery(query.Get("page")); err != nil {
		writeError(w, r, http.StatusBadRequest, model.ErrCodeValidation, "invalid page parameter", h.logger)
		return
	}
	if q.PerPage, err = intQuery(query.Get("per_page")); err != nil {
		writeError(w, r, http.StatusBadRequest, model.ErrCodeValidation, "invalid per_page parameter", h.logger)
		return
	}

	res, err := h.service.List(r.Context(), session.FromContext(r.Context()), q)
	writeResult(w, r, res, err, h.logger)
}

// GetByID handles GET /api/products/{id} requests.
func (h *ProductHandler) GetByID(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r, "id")
	if err != nil {
		writeServiceError(w, r, err, h.logger)
		return
	}
	res, err := h.service.GetByID(r.Context(), session.FromContext(r.Context()), id)
	writeResult(w, r, res, err, h.logger)
}

// Home handles GET /api/home/{section} requests.
func (h *ProductHandler) Home(w http.ResponseWriter, r *http.Request) {
	res, err := h.service.Home(r.Context(), session.FromContext(r.Context()), chi.URLParam(r, "section"))
	writeResult(w, r, res, err, h.logger)
}

// intQuery parses an optional non-negative integer query value.
func intQuery(raw string) (int, error) {
	if raw == "" {
		return 0, nil
	}
	v, err := strconv.Atoi(raw)
	if err != nil || v < 0 {
		return 0, strconv.ErrSyntax
	}
	return v, nil
}
