package service

import (
	"context"
	"encoding/json"
	"net/url"

	"storefront/internal/checkout"
	"storefront/internal/gateway"
	"storefront/internal/model"

	"github.com/rs/zerolog"
)

// Caller performs a single backend call. *gateway.Client implements it.
type Caller interface {
	Call(ctx context.Context, path string, req gateway.Request) (*gateway.Response, error)
}

// AuthService defines account operations. Unlike the other services,
// Login, Register and UpdateProfile report backend rejections as errors
// (*model.APIError, *model.TransportError) rather than in a Result.
type AuthService interface {
	// Login signs in and returns the user with its bearer token.
	Login(ctx context.Context, req model.LoginRequest) (*model.AuthPayload, error)

	// Register creates an account and returns the user with its bearer token.
	Register(ctx context.Context, req model.RegisterRequest) (*model.AuthPayload, error)

	// Logout revokes the token on the backend. Failures are logged only.
	Logout(ctx context.Context, sess *model.Session)

	// Profile returns the signed in user.
	Profile(ctx context.Context, sess *model.Session) (model.Result[model.User], error)

	// UpdateProfile changes the signed in user's details.
	UpdateProfile(ctx context.Context, sess *model.Session, req model.ProfileRequest) (*model.User, error)
}

// AddressService defines operations on the user's saved addresses.
type AddressService interface {
	List(ctx context.Context, sess *model.Session) (model.Result[[]model.Address], error)
	Get(ctx context.Context, sess *model.Session, id int64) (model.Result[model.Address], error)
	Create(ctx context.Context, sess *model.Session, req model.AddressRequest) (model.Result[model.Address], error)
	Update(ctx context.Context, sess *model.Session, id int64, req model.AddressRequest) (model.Result[model.Address], error)
	Delete(ctx context.Context, sess *model.Session, id int64) (model.Result[json.RawMessage], error)
}

// CartService defines operations on the server-owned cart.
type CartService interface {
	Get(ctx context.Context, sess *model.Session) (model.Result[model.CartSnapshot], error)
	Add(ctx context.Context, sess *model.Session, req model.CartItemRequest) (model.Result[model.CartSnapshot], error)
	Update(ctx context.Context, sess *model.Session, lineID int64, quantity int) (model.Result[model.CartSnapshot], error)
	Remove(ctx context.Context, sess *model.Session, lineID int64) (model.Result[model.CartSnapshot], error)
	Clear(ctx context.Context, sess *model.Session) (model.Result[model.CartSnapshot], error)
}

// CouponService validates discount codes.
type CouponService interface {
	Validate(ctx context.Context, sess *model.Session, code string) (model.Result[model.Coupon], error)
}

// OrderService defines operations on the user's orders.
type OrderService interface {
	List(ctx context.Context, sess *model.Session) (model.Result[[]model.Order], error)

	// GetByID returns the order with id. It fails with model.ErrOrderNotFound
	// and status 404 when the backend payload does not contain it.
	GetByID(ctx context.Context, sess *model.Session, id string) (model.Result[model.Order], error)

	Create(ctx context.Context, sess *model.Session, req model.OrderRequest) (model.Result[model.Order], error)
}

// ProductService defines catalogue operations. The session is optional.
type ProductService interface {
	List(ctx context.Context, sess *model.Session, q model.ProductQuery) (model.Result[model.ProductPage], error)
	GetByID(ctx context.Context, sess *model.Session, id int64) (model.Result[model.Product], error)
	Home(ctx context.Context, sess *model.Session, section string) (model.Result[json.RawMessage], error)
}

// WishlistService defines operations on the user's wishlist.
type WishlistService interface {
	List(ctx context.Context, sess *model.Session) (model.Result[[]model.WishlistItem], error)
	Add(ctx context.Context, sess *model.Session, productID int64) (model.Result[json.RawMessage], error)
	Remove(ctx context.Context, sess *model.Session, id int64) (model.Result[json.RawMessage], error)
}

// ConfigService returns the store delivery configuration.
type ConfigService interface {
	Get(ctx context.Context) model.Result[model.StoreConfig]
}

// CheckoutService assembles a checkout from the user's cart, address and
// coupon.
type CheckoutService interface {
	Prepare(ctx context.Context, sess *model.Session, req model.CheckoutRequest) (*checkout.Orchestrator, error)
}

// requireSession fails fast, before any network call, when sess cannot
// authenticate a backend request.
func requireSession(sess *model.Session) error {
	if !sess.Valid() {
		return model.ErrAuthenticationRequired
	}
	return nil
}

// pathSegment escapes a caller-supplied value for use as a single path
// segment. Dot segments are rejected since the joined path is cleaned
// before it is sent.
func pathSegment(field, value string) (string, error) {
	if value == "." || value == ".." {
		return "", model.NewValidationError(field, "invalid "+field)
	}
	return url.PathEscape(value), nil
}

// token returns the bearer token of sess, or "" for anonymous calls.
func token(sess *model.Session) string {
	if !sess.Valid() {
		return ""
	}
	return sess.Token
}

// call performs one backend call and maps the outcome onto a Result.
// Transport failures become a failed Result with status 0.
func call[T any](ctx context.Context, c Caller, logger zerolog.Logger, path string, req gateway.Request) model.Result[T] {
	resp, err := c.Call(ctx, path, req)
	if err != nil {
		logger.Warn().Err(err).Str("path", path).Msg("backend call failed")
		return model.Fail[T](model.GenericErrorMessage, 0)
	}
	if resp.Failed() {
		return model.Fail[T](resp.Error, resp.Status)
	}

	data, err := gateway.Decode[T](resp)
	if err != nil {
		logger.Warn().Err(err).Str("path", path).Msg("unexpected backend payload")
		return model.Fail[T](model.GenericErrorMessage, resp.Status)
	}
	return model.OK(data, resp.Status)
}

// resultError turns a failed Result into an error for callers that chain
// several actions.
func resultError[T any](res model.Result[T]) error {
	if !res.Failed() {
		return nil
	}
	return &model.APIError{Status: res.Status, Message: res.Error}
}
