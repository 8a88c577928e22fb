package service

import (
	"context"

	"storefront/internal/checkout"
	"storefront/internal/model"

	"github.com/rs/zerolog"
)

// checkoutService implements CheckoutService.
type checkoutService struct {
	carts     CartService
	addresses AddressService
	coupons   CouponService
	orders    OrderService
	config    ConfigService
	logger    zerolog.Logger
}

// NewCheckoutService creates a checkout service from the domain services
// it reads from.
func NewCheckoutService(
	carts CartService,
	addresses AddressService,
	coupons CouponService,
	orders OrderService,
	config ConfigService,
	logger zerolog.Logger,
) CheckoutService {
	return &checkoutService{
		carts:     carts,
		addresses: addresses,
		coupons:   coupons,
		orders:    orders,
		config:    config,
		logger:    logger.With().Str("service", "checkout").Logger(),
	}
}

// Prepare loads a fresh cart snapshot, the delivery configuration, the
// chosen address and coupon, then replays req onto a new orchestrator.
// Calls are made one after another.
func (s *checkoutService) Prepare(ctx context.Context, sess *model.Session, req model.CheckoutRequest) (*checkout.Orchestrator, error) {
	if err := requireSession(sess); err != nil {
		return nil, err
	}

	cart, err := s.carts.Get(ctx, sess)
	if err != nil {
		return nil, err
	}
	if err := resultError(cart); err != nil {
		return nil, err
	}

	cfg := s.config.Get(ctx)
	if err := resultError(cfg); err != nil {
		return nil, err
	}

	o := checkout.New(derefOr(cfg.Data), derefOr(cart.Data), s.submitter(sess), s.logger)

	if req.AddressID > 0 {
		addr, err := s.addresses.Get(ctx, sess, req.AddressID)
		if err != nil {
			return nil, err
		}
		if err := resultError(addr); err != nil {
			return nil, err
		}
		if addr.Data == nil {
			return nil, model.NewValidationError("address_id", "address not found")
		}
		if err := o.SelectAddress(*addr.Data); err != nil {
			return nil, err
		}
	}

	if req.AreaID != nil {
		if err := o.SelectArea(*req.AreaID); err != nil {
			return nil, err
		}
	}

	if req.PaymentMethod != "" {
		if err := o.SelectPayment(req.PaymentMethod); err != nil {
			return nil, err
		}
	}

	if req.CouponCode != "" {
		coupon, err := s.coupons.Validate(ctx, sess, req.CouponCode)
		if err != nil {
			return nil, err
		}
		if err := resultError(coupon); err != nil {
			return nil, err
		}
		if coupon.Data != nil {
			if err := o.ApplyCoupon(*coupon.Data); err != nil {
				return nil, err
			}
		}
	}

	if err := o.SetNotes(req.Notes); err != nil {
		return nil, err
	}

	return o, nil
}

// submitter binds order creation to the session of this checkout.
func (s *checkoutService) submitter(sess *model.Session) checkout.Submitter {
	return checkout.SubmitterFunc(func(ctx context.Context, req model.OrderRequest) (model.Result[model.Order], error) {
		return s.orders.Create(ctx, sess, req)
	})
}

func derefOr[T any](v *T) T {
	var zero T
	if v == nil {
		return zero
	}
	return *v
}
