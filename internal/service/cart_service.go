package service

import (
	"context"
	"fmt"
	"net/http"

	"storefront/internal/assets"
	"storefront/internal/gateway"
	"storefront/internal/model"

	"github.com/rs/zerolog"
)

// cartService implements CartService.
type cartService struct {
	client   Caller
	resolver assets.Resolver
	logger   zerolog.Logger
}

// NewCartService creates a new cart service.
func NewCartService(client Caller, resolver assets.Resolver, logger zerolog.Logger) CartService {
	return &cartService{
		client:   client,
		resolver: resolver,
		logger:   logger.With().Str("service", "cart").Logger(),
	}
}

func cartLinePath(id int64) string {
	return fmt.Sprintf("/api/carts/%d", id)
}

func (s *cartService) Get(ctx context.Context, sess *model.Session) (model.Result[model.CartSnapshot], error) {
	return s.do(ctx, sess, "/api/carts", gateway.Request{})
}

func (s *cartService) Add(ctx context.Context, sess *model.Session, req model.CartItemRequest) (model.Result[model.CartSnapshot], error) {
	if err := requireSession(sess); err != nil {
		return model.Result[model.CartSnapshot]{}, err
	}
	if req.ProductID <= 0 {
		return model.Result[model.CartSnapshot]{}, model.NewValidationError("product_id", "product is required")
	}
	if req.Quantity < 1 {
		return model.Result[model.CartSnapshot]{}, model.NewValidationError("quantity", "quantity must be at least 1")
	}
	return s.do(ctx, sess, "/api/carts", gateway.Request{Method: http.MethodPost, Body: req})
}

func (s *cartService) Update(ctx context.Context, sess *model.Session, lineID int64, quantity int) (model.Result[model.CartSnapshot], error) {
	if err := requireSession(sess); err != nil {
		return model.Result[model.CartSnapshot]{}, err
	}
	if quantity < 1 {
		return model.Result[model.CartSnapshot]{}, model.NewValidationError("quantity", "quantity must be at least 1")
	}
	return s.do(ctx, sess, cartLinePath(lineID), gateway.Request{
		Method: http.MethodPut,
		Body:   model.CartQuantityRequest{Quantity: quantity},
	})
}

func (s *cartService) Remove(ctx context.Context, sess *model.Session, lineID int64) (model.Result[model.CartSnapshot], error) {
	return s.do(ctx, sess, cartLinePath(lineID), gateway.Request{Method: http.MethodDelete})
}

func (s *cartService) Clear(ctx context.Context, sess *model.Session) (model.Result[model.CartSnapshot], error) {
	return s.do(ctx, sess, "/api/carts", gateway.Request{Method: http.MethodDelete})
}

// do sends an authenticated cart call and resolves product images in the
// returned snapshot.
func (s *cartService) do(ctx context.Context, sess *model.Session, path string, req gateway.Request) (model.Result[model.CartSnapshot], error) {
	if err := requireSession(sess); err != nil {
		return model.Result[model.CartSnapshot]{}, err
	}
	req.Token = sess.Token

	res := call[model.CartSnapshot](ctx, s.client, s.logger, path, req)
	if res.Data != nil {
		for i := range res.Data.Items {
			resolveSummary(ctx, s.resolver, &res.Data.Items[i].Product)
		}
		if !res.Data.Pricing.Consistent() {
			s.logger.Warn().
				Str("total_price", res.Data.Pricing.TotalPrice.String()).
				Str("total_price_after_discount", res.Data.Pricing.TotalPriceAfterDiscount.String()).
				Msg("cart discounted total exceeds total")
		}
	}
	return res, nil
}
