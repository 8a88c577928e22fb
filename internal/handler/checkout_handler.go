package handler

import (
	"net/http"

	"storefront/internal/middleware"
	"storefront/internal/model"
	"storefront/internal/service"
	"storefront/internal/session"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"
)

// CheckoutHandler handles checkout quotes and submission, plus the store
// configuration and coupon lookups the checkout page needs.
type CheckoutHandler struct {
	checkout service.CheckoutService
	coupons  service.CouponService
	config   service.ConfigService
	logger   zerolog.Logger
}

// NewCheckoutHandler creates a new checkout handler.
func NewCheckoutHandler(
	checkout service.CheckoutService,
	coupons service.CouponService,
	config service.ConfigService,
	logger zerolog.Logger,
) *CheckoutHandler {
	return &CheckoutHandler{
		checkout: checkout,
		coupons:  coupons,
		config:   config,
		logger:   logger.With().Str("handler", "checkout").Logger(),
	}
}

// Config handles GET /api/config requests.
func (h *CheckoutHandler) Config(w http.ResponseWriter, r *http.Request) {
	writeResult(w, r, h.config.Get(r.Context()), nil, h.logger)
}

// Coupon handles GET /api/coupons/{code} requests.
func (h *CheckoutHandler) Coupon(w http.ResponseWriter, r *http.Request) {
	res, err := h.coupons.Validate(r.Context(), session.FromContext(r.Context()), chi.URLParam(r, "code"))
	writeResult(w, r, res, err, h.logger)
}

// Quote handles POST /api/checkout/quote requests. It answers with the
// checkout step, the areas to choose from and the priced totals.
func (h *CheckoutHandler) Quote(w http.ResponseWriter, r *http.Request) {
	var req model.CheckoutRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, r, http.StatusBadRequest, model.ErrCodeInvalidJSON, "invalid request body", h.logger)
		return
	}

	o, err := h.checkout.Prepare(r.Context(), session.FromContext(r.Context()), req)
	if err != nil {
		writeServiceError(w, r, err, h.logger)
		return
	}

	writeJSON(w, http.StatusOK, Envelope{Data: o.Snapshot(), Status: http.StatusOK}, h.logger)
}

// Submit handles POST /api/checkout requests.
func (h *CheckoutHandler) Submit(w http.ResponseWriter, r *http.Request) {
	var req model.CheckoutRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, r, http.StatusBadRequest, model.ErrCodeInvalidJSON, "invalid request body", h.logger)
		return
	}

	ctx := r.Context()
	o, err := h.checkout.Prepare(ctx, session.FromContext(ctx), req)
	if err != nil {
		writeServiceError(w, r, err, h.logger)
		return
	}

	order, err := o.Submit(ctx)
	if err != nil {
		writeServiceError(w, r, err, h.logger)
		return
	}

	h.logger.Info().
		Str("request_id", middleware.GetRequestID(ctx)).
		Str("order_id", order.ID.String()).
		Msg("checkout completed")
	writeJSON(w, http.StatusCreated, Envelope{Data: order, Status: http.StatusCreated}, h.logger)
}
