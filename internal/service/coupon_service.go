package service

import (
	"context"
	"strings"

	"storefront/internal/gateway"
	"storefront/internal/model"

	"github.com/rs/zerolog"
)

// couponService implements CouponService.
type couponService struct {
	client Caller
	logger zerolog.Logger
}

// NewCouponService creates a new coupon service.
func NewCouponService(client Caller, logger zerolog.Logger) CouponService {
	return &couponService{
		client: client,
		logger: logger.With().Str("service", "coupon").Logger(),
	}
}

// Validate looks the code up on the backend, which answers with the coupon
// when it applies to the user's cart.
func (s *couponService) Validate(ctx context.Context, sess *model.Session, code string) (model.Result[model.Coupon], error) {
	if err := requireSession(sess); err != nil {
		return model.Result[model.Coupon]{}, err
	}

	code = strings.TrimSpace(code)
	if code == "" {
		return model.Result[model.Coupon]{}, model.NewValidationError("code", "coupon code is required")
	}

	segment, err := pathSegment("code", code)
	if err != nil {
		return model.Result[model.Coupon]{}, err
	}

	res := call[model.Coupon](ctx, s.client, s.logger, "/api/coupons/"+segment, gateway.Request{Token: sess.Token})
	if res.Failed() {
		s.logger.Debug().Str("coupon_code", code).Int("status", res.Status).Msg("coupon rejected")
	}
	return res, nil
}
