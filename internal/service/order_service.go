package service

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"

	"storefront/internal/gateway"
	"storefront/internal/model"

	"github.com/rs/zerolog"
)

// orderService implements OrderService.
type orderService struct {
	client Caller
	logger zerolog.Logger
}

// NewOrderService creates a new order service.
func NewOrderService(client Caller, logger zerolog.Logger) OrderService {
	return &orderService{
		client: client,
		logger: logger.With().Str("service", "order").Logger(),
	}
}

func (s *orderService) List(ctx context.Context, sess *model.Session) (model.Result[[]model.Order], error) {
	if err := requireSession(sess); err != nil {
		return model.Result[[]model.Order]{}, err
	}

	resp, err := s.client.Call(ctx, "/api/orders", gateway.Request{Token: sess.Token})
	if err != nil {
		s.logger.Warn().Err(err).Msg("failed to list orders")
		return model.Fail[[]model.Order](model.GenericErrorMessage, 0), nil
	}
	if resp.Failed() {
		return model.Fail[[]model.Order](resp.Error, resp.Status), nil
	}

	orders, err := decodeList[model.Order](resp.Data)
	if err != nil {
		s.logger.Warn().Err(err).Msg("unexpected orders payload")
		return model.Fail[[]model.Order](model.GenericErrorMessage, resp.Status), nil
	}
	return model.OK(&orders, resp.Status), nil
}

// GetByID fetches the order and picks it out of whichever shape the
// backend answered with.
func (s *orderService) GetByID(ctx context.Context, sess *model.Session, id string) (model.Result[model.Order], error) {
	if err := requireSession(sess); err != nil {
		return model.Result[model.Order]{}, err
	}
	if id == "" {
		return model.Result[model.Order]{}, model.NewValidationError("id", "order id is required")
	}

	segment, err := pathSegment("id", id)
	if err != nil {
		return model.Result[model.Order]{}, err
	}

	resp, err := s.client.Call(ctx, "/api/orders/"+segment, gateway.Request{Token: sess.Token})
	if err != nil {
		s.logger.Warn().Err(err).Str("order_id", id).Msg("failed to fetch order")
		return model.Fail[model.Order](model.GenericErrorMessage, 0), nil
	}
	if resp.Failed() {
		return model.Fail[model.Order](resp.Error, resp.Status), nil
	}

	order, ok := findOrder(resp.Body, id)
	if !ok {
		s.logger.Debug().Str("order_id", id).Msg("order not present in backend payload")
		return model.Fail[model.Order](model.ErrOrderNotFound.Message, http.StatusNotFound), model.ErrOrderNotFound
	}
	return model.OK(order, resp.Status), nil
}

func (s *orderService) Create(ctx context.Context, sess *model.Session, req model.OrderRequest) (model.Result[model.Order], error) {
	if err := requireSession(sess); err != nil {
		return model.Result[model.Order]{}, err
	}
	if err := req.Validate(); err != nil {
		return model.Result[model.Order]{}, err
	}

	res := call[model.Order](ctx, s.client, s.logger, "/api/orders", gateway.Request{
		Method: http.MethodPost,
		Token:  sess.Token,
		Body:   req,
	})
	if !res.Failed() && res.Data != nil {
		s.logger.Info().Str("order_id", res.Data.ID.String()).Msg("order created")
	}
	return res, nil
}

// orderProbe reads just enough of an object to tell an order from a wrapper.
type orderProbe struct {
	ID   *model.ID       `json:"id"`
	Data json.RawMessage `json:"data"`
}

// findOrder resolves the order with id from raw. An array is searched for
// a matching stringified id; an object with an id is the order itself; an
// object with a data field is unwrapped and searched again.
func findOrder(raw json.RawMessage, id string) (*model.Order, bool) {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 {
		return nil, false
	}

	switch raw[0] {
	case '[':
		var items []json.RawMessage
		if err := json.Unmarshal(raw, &items); err != nil {
			return nil, false
		}
		for _, item := range items {
			var probe orderProbe
			if err := json.Unmarshal(item, &probe); err != nil || probe.ID == nil {
				continue
			}
			if probe.ID.String() == id {
				return decodeOrder(item)
			}
		}
	case '{':
		var probe orderProbe
		if err := json.Unmarshal(raw, &probe); err != nil {
			return nil, false
		}
		if probe.ID != nil && *probe.ID != "" {
			return decodeOrder(raw)
		}
		if probe.Data != nil {
			return findOrder(probe.Data, id)
		}
	}
	return nil, false
}

func decodeOrder(raw json.RawMessage) (*model.Order, bool) {
	var order model.Order
	if err := json.Unmarshal(raw, &order); err != nil {
		return nil, false
	}
	return &order, true
}

// decodeList decodes a bare array or an object wrapping it under "data".
func decodeList[T any](raw json.RawMessage) ([]T, error) {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return []T{}, nil
	}

	if raw[0] == '{' {
		var wrapper struct {
			Data json.RawMessage `json:"data"`
		}
		if err := json.Unmarshal(raw, &wrapper); err != nil {
			return nil, err
		}
		raw = wrapper.Data
		if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
			return []T{}, nil
		}
	}

	var items []T
	if err := json.Unmarshal(raw, &items); err != nil {
		return nil, err
	}
	return items, nil
}
