package service

import (
	"context"
	"encoding/json"
	"net/http"
	"testing"

	"storefront/internal/checkout"
	"storefront/internal/gateway"
	"storefront/internal/model"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type checkoutFixture struct {
	backend     *testBackend
	orders      []map[string]any
	rejectOrder string
	svc         CheckoutService
}

func newCheckoutFixture(t *testing.T, mutate func(mux *http.ServeMux)) *checkoutFixture {
	t.Helper()
	f := &checkoutFixture{}

	mux := http.NewServeMux()
	mux.HandleFunc("GET /api/carts", func(w http.ResponseWriter, r *http.Request) {
		respond(w, http.StatusOK, map[string]any{
			"items": []map[string]any{
				{"id": 1, "quantity": 2, "product": map[string]any{"id": 9, "name": "Lamp", "price": "500"}},
			},
			"pricing": map[string]any{
				"total_price":                "1000",
				"total_price_after_discount": "900",
				"discount":                   "100",
			},
		})
	})
	mux.HandleFunc("GET /api/config", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"status":true,"data":` + testStoreConfig + `}`))
	})
	mux.HandleFunc("GET /api/addresses/11", func(w http.ResponseWriter, r *http.Request) {
		respond(w, http.StatusOK, map[string]any{"id": 11, "city_id": 1, "name": "Home"})
	})
	mux.HandleFunc("GET /api/coupons/TEN", func(w http.ResponseWriter, r *http.Request) {
		respond(w, http.StatusOK, map[string]any{"id": 3, "code": "TEN", "discount_type": "percentage", "discount_value": 10})
	})
	mux.HandleFunc("POST /api/orders", func(w http.ResponseWriter, r *http.Request) {
		var body map[string]any
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		f.orders = append(f.orders, body)
		if f.rejectOrder != "" {
			respondError(w, http.StatusUnprocessableEntity, f.rejectOrder)
			return
		}
		respond(w, http.StatusCreated, map[string]any{"id": 501, "status": "pending", "total": "825"})
	})
	if mutate != nil {
		mutate(mux)
	}

	f.backend = newTestBackend(t, mux.ServeHTTP)
	client := f.backend.client
	logger := zerolog.Nop()
	f.svc = NewCheckoutService(
		NewCartService(client, nil, logger),
		NewAddressService(client, logger),
		NewCouponService(client, logger),
		NewOrderService(client, logger),
		NewConfigService(client, nil, logger),
		logger,
	)
	return f
}

func int64Ptr(v int64) *int64 {
	return &v
}

func TestCheckoutService_PrepareAndSubmit(t *testing.T) {
	f := newCheckoutFixture(t, nil)
	ctx := gateway.WithLocale(context.Background(), "en")

	o, err := f.svc.Prepare(ctx, testSession, model.CheckoutRequest{
		AddressID:     11,
		AreaID:        int64Ptr(10),
		PaymentMethod: model.PaymentVisa,
		CouponCode:    "TEN",
		Notes:         "ring twice",
	})
	require.NoError(t, err)

	snap := o.Snapshot()
	assert.Equal(t, checkout.StateReadyToSubmit, snap.State)
	assert.True(t, snap.Ready)
	assert.Equal(t, "100", snap.Quote.CouponDiscount.String())
	assert.Equal(t, "25", snap.Quote.AreaFee.String())
	assert.Equal(t, "825", snap.Quote.FinalTotal.String())

	order, err := o.Submit(ctx)
	require.NoError(t, err)
	assert.Equal(t, model.ID("501"), order.ID)
	assert.Equal(t, checkout.StateSubmitted, o.State())

	require.Len(t, f.orders, 1)
	assert.EqualValues(t, 11, f.orders[0]["address_id"])
	assert.EqualValues(t, 10, f.orders[0]["area_id"])
	assert.EqualValues(t, 3, f.orders[0]["coupon_id"])
	assert.Equal(t, "visa", f.orders[0]["payment_method"])
	assert.Equal(t, "ring twice", f.orders[0]["notes"])
}

func TestCheckoutService_PrepareWithoutSelections(t *testing.T) {
	f := newCheckoutFixture(t, nil)

	o, err := f.svc.Prepare(context.Background(), testSession, model.CheckoutRequest{})
	require.NoError(t, err)

	assert.Equal(t, checkout.StateSelectingAddress, o.State())
	assert.False(t, o.Ready())
	assert.Equal(t, "900", o.Quote().FinalTotal.String())

	_, err = o.Submit(context.Background())
	var validationErr *model.ValidationError
	require.ErrorAs(t, err, &validationErr)
	assert.Equal(t, "address_id", validationErr.Field)
	assert.Empty(t, f.orders)
}

func TestCheckoutService_PrepareErrors(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(mux *http.ServeMux)
		req    model.CheckoutRequest
		check  func(t *testing.T, err error)
	}{
		{
			name: "Coupon rejected",
			mutate: func(mux *http.ServeMux) {
				mux.HandleFunc("GET /api/coupons/OLD", func(w http.ResponseWriter, r *http.Request) {
					respondError(w, http.StatusUnprocessableEntity, "Coupon expired")
				})
			},
			req: model.CheckoutRequest{AddressID: 11, AreaID: int64Ptr(10), CouponCode: "OLD"},
			check: func(t *testing.T, err error) {
				var apiErr *model.APIError
				require.ErrorAs(t, err, &apiErr)
				assert.Equal(t, http.StatusUnprocessableEntity, apiErr.Status)
				assert.Equal(t, "Coupon expired", apiErr.Message)
			},
		},
		{
			name: "Area from another city",
			mutate: func(mux *http.ServeMux) {
				mux.HandleFunc("GET /api/addresses/12", func(w http.ResponseWriter, r *http.Request) {
					respond(w, http.StatusOK, map[string]any{"id": 12, "city_id": 2, "name": "Office"})
				})
			},
			req: model.CheckoutRequest{AddressID: 12, AreaID: int64Ptr(10)},
			check: func(t *testing.T, err error) {
				var validationErr *model.ValidationError
				require.ErrorAs(t, err, &validationErr)
				assert.Equal(t, "area_id", validationErr.Field)
			},
		},
		{
			name: "Unsupported payment method",
			req:  model.CheckoutRequest{AddressID: 11, PaymentMethod: "cheque"},
			check: func(t *testing.T, err error) {
				var validationErr *model.ValidationError
				require.ErrorAs(t, err, &validationErr)
				assert.Equal(t, "payment_method", validationErr.Field)
			},
		},
		{
			name: "Address not found",
			mutate: func(mux *http.ServeMux) {
				mux.HandleFunc("GET /api/addresses/99", func(w http.ResponseWriter, r *http.Request) {
					respondError(w, http.StatusNotFound, "Address not found")
				})
			},
			req: model.CheckoutRequest{AddressID: 99},
			check: func(t *testing.T, err error) {
				var apiErr *model.APIError
				require.ErrorAs(t, err, &apiErr)
				assert.Equal(t, http.StatusNotFound, apiErr.Status)
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newCheckoutFixture(t, tt.mutate)
			o, err := f.svc.Prepare(context.Background(), testSession, tt.req)
			assert.Nil(t, o)
			tt.check(t, err)
		})
	}
}

func TestCheckoutService_SubmitFailureThenRetry(t *testing.T) {
	f := newCheckoutFixture(t, nil)
	f.rejectOrder = "Product out of stock"

	o, err := f.svc.Prepare(context.Background(), testSession, model.CheckoutRequest{AddressID: 11, AreaID: int64Ptr(10)})
	require.NoError(t, err)

	_, err = o.Submit(context.Background())
	var apiErr *model.APIError
	require.ErrorAs(t, err, &apiErr)

	snap := o.Snapshot()
	assert.Equal(t, checkout.StateFailed, snap.State)
	assert.Equal(t, "Product out of stock", snap.Error)

	f.rejectOrder = ""
	order, err := o.Submit(context.Background())
	require.NoError(t, err)
	assert.Equal(t, model.ID("501"), order.ID)
	assert.Len(t, f.orders, 2)
}

func TestCheckoutService_RequiresSession(t *testing.T) {
	f := newCheckoutFixture(t, nil)

	_, err := f.svc.Prepare(context.Background(), nil, model.CheckoutRequest{})
	assert.ErrorIs(t, err, model.ErrAuthenticationRequired)
	assert.Equal(t, 0, f.backend.Calls())
}
