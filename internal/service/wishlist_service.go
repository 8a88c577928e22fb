package service

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"storefront/internal/assets"
	"storefront/internal/gateway"
	"storefront/internal/model"

	"github.com/rs/zerolog"
)

// wishlistService implements WishlistService.
type wishlistService struct {
	client   Caller
	resolver assets.Resolver
	logger   zerolog.Logger
}

// NewWishlistService creates a new wishlist service.
func NewWishlistService(client Caller, resolver assets.Resolver, logger zerolog.Logger) WishlistService {
	return &wishlistService{
		client:   client,
		resolver: resolver,
		logger:   logger.With().Str("service", "wishlist").Logger(),
	}
}

func (s *wishlistService) List(ctx context.Context, sess *model.Session) (model.Result[[]model.WishlistItem], error) {
	if err := requireSession(sess); err != nil {
		return model.Result[[]model.WishlistItem]{}, err
	}

	res := call[[]model.WishlistItem](ctx, s.client, s.logger, "/api/wishlists", gateway.Request{Token: sess.Token})
	if res.Data != nil {
		items := *res.Data
		for i := range items {
			resolveSummary(ctx, s.resolver, &items[i].Product)
		}
	}
	return res, nil
}

func (s *wishlistService) Add(ctx context.Context, sess *model.Session, productID int64) (model.Result[json.RawMessage], error) {
	if err := requireSession(sess); err != nil {
		return model.Result[json.RawMessage]{}, err
	}
	if productID <= 0 {
		return model.Result[json.RawMessage]{}, model.NewValidationError("product_id", "product is required")
	}
	return call[json.RawMessage](ctx, s.client, s.logger, "/api/wishlists", gateway.Request{
		Method: http.MethodPost,
		Token:  sess.Token,
		Body:   model.WishlistRequest{ProductID: productID},
	}), nil
}

func (s *wishlistService) Remove(ctx context.Context, sess *model.Session, id int64) (model.Result[json.RawMessage], error) {
	if err := requireSession(sess); err != nil {
		return model.Result[json.RawMessage]{}, err
	}
	return call[json.RawMessage](ctx, s.client, s.logger, fmt.Sprintf("/api/wishlists/%d", id), gateway.Request{
		Method: http.MethodDelete,
		Token:  sess.Token,
	}), nil
}
