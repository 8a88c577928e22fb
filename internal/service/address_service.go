package service

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"storefront/internal/gateway"
	"storefront/internal/model"

	"github.com/rs/zerolog"
)

// addressService implements AddressService.
type addressService struct {
	client Caller
	logger zerolog.Logger
}

// NewAddressService creates a new address service.
func NewAddressService(client Caller, logger zerolog.Logger) AddressService {
	return &addressService{
		client: client,
		logger: logger.With().Str("service", "address").Logger(),
	}
}

func addressPath(id int64) string {
	return fmt.Sprintf("/api/addresses/%d", id)
}

func (s *addressService) List(ctx context.Context, sess *model.Session) (model.Result[[]model.Address], error) {
	if err := requireSession(sess); err != nil {
		return model.Result[[]model.Address]{}, err
	}
	return call[[]model.Address](ctx, s.client, s.logger, "/api/addresses", gateway.Request{Token: sess.Token}), nil
}

func (s *addressService) Get(ctx context.Context, sess *model.Session, id int64) (model.Result[model.Address], error) {
	if err := requireSession(sess); err != nil {
		return model.Result[model.Address]{}, err
	}
	return call[model.Address](ctx, s.client, s.logger, addressPath(id), gateway.Request{Token: sess.Token}), nil
}

func (s *addressService) Create(ctx context.Context, sess *model.Session, req model.AddressRequest) (model.Result[model.Address], error) {
	if err := requireSession(sess); err != nil {
		return model.Result[model.Address]{}, err
	}
	if err := req.Validate(); err != nil {
		return model.Result[model.Address]{}, err
	}
	return call[model.Address](ctx, s.client, s.logger, "/api/addresses", gateway.Request{
		Method: http.MethodPost,
		Token:  sess.Token,
		Body:   req,
	}), nil
}

func (s *addressService) Update(ctx context.Context, sess *model.Session, id int64, req model.AddressRequest) (model.Result[model.Address], error) {
	if err := requireSession(sess); err != nil {
		return model.Result[model.Address]{}, err
	}
	if err := req.Validate(); err != nil {
		return model.Result[model.Address]{}, err
	}
	return call[model.Address](ctx, s.client, s.logger, addressPath(id), gateway.Request{
		Method: http.MethodPut,
		Token:  sess.Token,
		Body:   req,
	}), nil
}

func (s *addressService) Delete(ctx context.Context, sess *model.Session, id int64) (model.Result[json.RawMessage], error) {
	if err := requireSession(sess); err != nil {
		return model.Result[json.RawMessage]{}, err
	}
	return call[json.RawMessage](ctx, s.client, s.logger, addressPath(id), gateway.Request{
		Method: http.MethodDelete,
		Token:  sess.Token,
	}), nil
}
