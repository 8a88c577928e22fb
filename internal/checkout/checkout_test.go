package checkout

import (
	"context"
	"errors"
	"sync"
	"testing"

	"storefront/internal/model"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	cairo      = int64(1)
	giza       = int64(2)
	alexandria = int64(3)
)

func areaConfig() model.StoreConfig {
	return model.StoreConfig{
		Deliveryman:     true,
		DeliveryFeeType: model.DeliveryFeeTypeArea,
		Cities: []model.City{
			{ID: cairo, Name: "Cairo", Areas: []model.DeliveryArea{
				{ID: 5, Name: "Maadi", Price: decimal.NewFromInt(50)},
				{ID: 6, Name: "Zamalek", Price: decimal.NewFromInt(40)},
			}},
			{ID: giza, Name: "Giza", Areas: []model.DeliveryArea{
				{ID: 7, Name: "Dokki", Price: decimal.NewFromInt(30)},
			}},
			{ID: alexandria, Name: "Alexandria"},
		},
	}
}

func testCart() model.CartSnapshot {
	return model.CartSnapshot{
		Items: []model.CartLine{{ID: 1, Product: model.ProductSummary{ID: 9, Price: decimal.NewFromInt(500)}, Quantity: 2}},
		Pricing: model.CartPricing{
			TotalPrice:              decimal.NewFromInt(1000),
			TotalPriceAfterDiscount: decimal.NewFromInt(900),
		},
	}
}

// stubSubmitter records submitted requests and replays canned results.
type stubSubmitter struct {
	mu       sync.Mutex
	requests []model.OrderRequest
	results  []model.Result[model.Order]
	errs     []error
}

func (s *stubSubmitter) Submit(ctx context.Context, req model.OrderRequest) (model.Result[model.Order], error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	i := len(s.requests)
	s.requests = append(s.requests, req)

	var err error
	if i < len(s.errs) {
		err = s.errs[i]
	}
	var res model.Result[model.Order]
	if i < len(s.results) {
		res = s.results[i]
	}
	return res, err
}

func okOrder(id string) model.Result[model.Order] {
	return model.OK(&model.Order{ID: model.ID(id), Status: "pending"}, 201)
}

func newOrchestrator(cfg model.StoreConfig, sub Submitter) *Orchestrator {
	return New(cfg, testCart(), sub, zerolog.Nop())
}

func TestOrchestrator_InitialState(t *testing.T) {
	o := newOrchestrator(areaConfig(), &stubSubmitter{})

	assert.Equal(t, StateSelectingAddress, o.State())
	assert.False(t, o.Ready())

	snap := o.Snapshot()
	assert.Equal(t, model.PaymentCash, snap.Checkout.PaymentMethod)
	assert.Nil(t, snap.Checkout.AddressID)
}

func TestOrchestrator_FlowWithArea(t *testing.T) {
	o := newOrchestrator(areaConfig(), &stubSubmitter{})

	require.NoError(t, o.SelectAddress(model.Address{ID: 11, CityID: cairo}))
	assert.Equal(t, StateSelectingArea, o.State())
	assert.False(t, o.Ready())
	assert.Len(t, o.Snapshot().Areas, 2)

	require.NoError(t, o.SelectArea(5))
	assert.Equal(t, StateSelectingPayment, o.State())
	assert.True(t, o.Ready())

	require.NoError(t, o.SelectPayment(model.PaymentVisa))
	assert.Equal(t, StateReadyToSubmit, o.State())
}

func TestOrchestrator_SkipsAreaForCityWithoutAreas(t *testing.T) {
	o := newOrchestrator(areaConfig(), &stubSubmitter{})

	require.NoError(t, o.SelectAddress(model.Address{ID: 12, CityID: alexandria}))
	assert.Equal(t, StateSelectingPayment, o.State())
	assert.True(t, o.Ready())
	assert.False(t, o.Snapshot().AreaRequired)
}

func TestOrchestrator_SkipsAreaWithoutAreaDelivery(t *testing.T) {
	cfg := areaConfig()
	cfg.DeliveryFeeType = "fixed"
	o := newOrchestrator(cfg, &stubSubmitter{})

	require.NoError(t, o.SelectAddress(model.Address{ID: 11, CityID: cairo}))
	assert.True(t, o.Ready())

	err := o.SelectArea(5)
	var validationErr *model.ValidationError
	require.ErrorAs(t, err, &validationErr)
	assert.Equal(t, "area_id", validationErr.Field)
}

func TestOrchestrator_AddressChangeResetsArea(t *testing.T) {
	tests := []struct {
		name    string
		newAddr model.Address
	}{
		{name: "Different city", newAddr: model.Address{ID: 21, CityID: giza}},
		{name: "Same city", newAddr: model.Address{ID: 22, CityID: cairo}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			o := newOrchestrator(areaConfig(), &stubSubmitter{})
			require.NoError(t, o.SelectAddress(model.Address{ID: 11, CityID: cairo}))
			require.NoError(t, o.SelectArea(5))
			require.NotNil(t, o.Snapshot().Checkout.AreaID)

			require.NoError(t, o.SelectAddress(tt.newAddr))

			snap := o.Snapshot()
			assert.Nil(t, snap.Checkout.AreaID)
			assert.False(t, snap.Ready)
			assert.Equal(t, StateSelectingArea, snap.State)
			assert.True(t, snap.Quote.AreaFee.IsZero())
		})
	}
}

func TestOrchestrator_SelectAreaFromOtherCity(t *testing.T) {
	o := newOrchestrator(areaConfig(), &stubSubmitter{})
	require.NoError(t, o.SelectAddress(model.Address{ID: 11, CityID: cairo}))

	var validationErr *model.ValidationError
	require.ErrorAs(t, o.SelectArea(7), &validationErr)
	require.ErrorAs(t, o.SelectArea(999), &validationErr)
	assert.Nil(t, o.Snapshot().Checkout.AreaID)
}

func TestOrchestrator_SelectAreaBeforeAddress(t *testing.T) {
	o := newOrchestrator(areaConfig(), &stubSubmitter{})

	var validationErr *model.ValidationError
	require.ErrorAs(t, o.SelectArea(5), &validationErr)
	assert.Equal(t, "address_id", validationErr.Field)
}

func TestOrchestrator_ReadyGuard(t *testing.T) {
	tests := []struct {
		name      string
		cfg       model.StoreConfig
		addr      *model.Address
		areaID    int64
		wantReady bool
	}{
		{name: "No address", cfg: areaConfig(), wantReady: false},
		{name: "Area required, not chosen", cfg: areaConfig(), addr: &model.Address{ID: 1, CityID: cairo}, wantReady: false},
		{name: "Area required, chosen", cfg: areaConfig(), addr: &model.Address{ID: 1, CityID: cairo}, areaID: 6, wantReady: true},
		{name: "Area not required", cfg: model.StoreConfig{}, addr: &model.Address{ID: 1, CityID: cairo}, wantReady: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			o := newOrchestrator(tt.cfg, &stubSubmitter{})
			if tt.addr != nil {
				require.NoError(t, o.SelectAddress(*tt.addr))
			}
			if tt.areaID != 0 {
				require.NoError(t, o.SelectArea(tt.areaID))
			}
			assert.Equal(t, tt.wantReady, o.Ready())
		})
	}
}

func TestOrchestrator_SelectPaymentRejectsUnknown(t *testing.T) {
	o := newOrchestrator(model.StoreConfig{}, &stubSubmitter{})

	var validationErr *model.ValidationError
	require.ErrorAs(t, o.SelectPayment("bitcoin"), &validationErr)
	assert.Equal(t, model.PaymentCash, o.Snapshot().Checkout.PaymentMethod)
}

func TestOrchestrator_Quote(t *testing.T) {
	o := newOrchestrator(areaConfig(), &stubSubmitter{})
	require.NoError(t, o.SelectAddress(model.Address{ID: 11, CityID: cairo}))
	require.NoError(t, o.SelectArea(5))
	require.NoError(t, o.ApplyCoupon(model.Coupon{ID: 3, Code: "TEN", DiscountType: model.DiscountPercentage, DiscountValue: decimal.NewFromInt(10)}))

	q := o.Quote()
	assert.True(t, decimal.NewFromInt(100).Equal(q.CouponDiscount))
	assert.True(t, decimal.NewFromInt(850).Equal(q.FinalTotal))

	require.NoError(t, o.RemoveCoupon())
	assert.True(t, decimal.NewFromInt(950).Equal(o.Quote().FinalTotal))
	assert.Nil(t, o.Snapshot().Checkout.CouponID)
}

func TestOrchestrator_SubmitSuccess(t *testing.T) {
	sub := &stubSubmitter{results: []model.Result[model.Order]{okOrder("77")}}
	o := newOrchestrator(areaConfig(), sub)

	require.NoError(t, o.SelectAddress(model.Address{ID: 11, CityID: cairo}))
	require.NoError(t, o.SelectArea(6))
	require.NoError(t, o.SelectPayment(model.PaymentWallet))
	require.NoError(t, o.ApplyCoupon(model.Coupon{ID: 3, DiscountType: model.DiscountFixedAmount, DiscountValue: decimal.NewFromInt(20)}))
	require.NoError(t, o.SetNotes("ring twice"))

	order, err := o.Submit(context.Background())
	require.NoError(t, err)
	require.NotNil(t, order)
	assert.Equal(t, model.ID("77"), order.ID)

	require.Len(t, sub.requests, 1)
	req := sub.requests[0]
	assert.Equal(t, int64(11), req.AddressID)
	assert.Equal(t, model.PaymentWallet, req.PaymentMethod)
	require.NotNil(t, req.AreaID)
	assert.Equal(t, int64(6), *req.AreaID)
	require.NotNil(t, req.CouponID)
	assert.Equal(t, int64(3), *req.CouponID)
	assert.Equal(t, "ring twice", req.Notes)

	snap := o.Snapshot()
	assert.Equal(t, StateSubmitted, snap.State)
	assert.Equal(t, model.ID("77"), snap.OrderID)

	_, err = o.Submit(context.Background())
	assert.ErrorIs(t, err, ErrAlreadySubmitted)
	assert.ErrorIs(t, o.SetNotes("late"), ErrAlreadySubmitted)
}

func TestOrchestrator_SubmitWithoutAddress(t *testing.T) {
	sub := &stubSubmitter{}
	o := newOrchestrator(areaConfig(), sub)

	_, err := o.Submit(context.Background())

	var validationErr *model.ValidationError
	require.ErrorAs(t, err, &validationErr)
	assert.Equal(t, "address_id", validationErr.Field)
	assert.Empty(t, sub.requests)
	assert.Equal(t, StateSelectingAddress, o.State())
}

func TestOrchestrator_SubmitWithoutRequiredArea(t *testing.T) {
	sub := &stubSubmitter{}
	o := newOrchestrator(areaConfig(), sub)
	require.NoError(t, o.SelectAddress(model.Address{ID: 11, CityID: cairo}))

	_, err := o.Submit(context.Background())

	var validationErr *model.ValidationError
	require.ErrorAs(t, err, &validationErr)
	assert.Equal(t, "area_id", validationErr.Field)
	assert.Empty(t, sub.requests)
}

func TestOrchestrator_SubmitEmptyCart(t *testing.T) {
	sub := &stubSubmitter{}
	o := New(model.StoreConfig{}, model.CartSnapshot{}, sub, zerolog.Nop())
	require.NoError(t, o.SelectAddress(model.Address{ID: 11, CityID: cairo}))

	_, err := o.Submit(context.Background())

	var validationErr *model.ValidationError
	require.ErrorAs(t, err, &validationErr)
	assert.Equal(t, "cart", validationErr.Field)
	assert.Empty(t, sub.requests)
}

func TestOrchestrator_SubmitFailureThenRetry(t *testing.T) {
	tests := []struct {
		name    string
		result  model.Result[model.Order]
		err     error
		wantMsg string
	}{
		{
			name:    "Backend rejection",
			result:  model.Fail[model.Order]("Address is out of coverage", 422),
			wantMsg: "Address is out of coverage",
		},
		{
			name:    "Transport failure",
			err:     &model.TransportError{Op: "POST /api/orders", Err: errors.New("connection reset")},
			wantMsg: model.GenericErrorMessage,
		},
		{
			name:    "Success without order",
			result:  model.OK[model.Order](nil, 200),
			wantMsg: model.GenericErrorMessage,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sub := &stubSubmitter{
				results: []model.Result[model.Order]{tt.result, okOrder("99")},
				errs:    []error{tt.err, nil},
			}
			o := newOrchestrator(model.StoreConfig{}, sub)
			require.NoError(t, o.SelectAddress(model.Address{ID: 11, CityID: cairo}))

			order, err := o.Submit(context.Background())
			require.Error(t, err)
			assert.Nil(t, order)

			snap := o.Snapshot()
			assert.Equal(t, StateFailed, snap.State)
			assert.Equal(t, tt.wantMsg, snap.Error)

			require.NoError(t, o.Retry())
			assert.Equal(t, StateSelectingPayment, o.State())
			assert.Empty(t, o.Snapshot().Error)

			order, err = o.Submit(context.Background())
			require.NoError(t, err)
			assert.Equal(t, model.ID("99"), order.ID)
			assert.Len(t, sub.requests, 2)
		})
	}
}

func TestOrchestrator_SubmitDirectlyFromFailed(t *testing.T) {
	sub := &stubSubmitter{
		results: []model.Result[model.Order]{model.Fail[model.Order]("", 500), okOrder("5")},
	}
	o := newOrchestrator(model.StoreConfig{}, sub)
	require.NoError(t, o.SelectAddress(model.Address{ID: 11}))

	_, err := o.Submit(context.Background())
	var apiErr *model.APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, 500, apiErr.Status)

	order, err := o.Submit(context.Background())
	require.NoError(t, err)
	assert.Equal(t, model.ID("5"), order.ID)
}

// blockingSubmitter waits for release before answering.
type blockingSubmitter struct {
	started chan struct{}
	release chan struct{}
}

func (b *blockingSubmitter) Submit(ctx context.Context, req model.OrderRequest) (model.Result[model.Order], error) {
	close(b.started)
	<-b.release
	return okOrder("1"), nil
}

func TestOrchestrator_SubmitInProgress(t *testing.T) {
	sub := &blockingSubmitter{started: make(chan struct{}), release: make(chan struct{})}
	o := newOrchestrator(model.StoreConfig{}, sub)
	require.NoError(t, o.SelectAddress(model.Address{ID: 11}))

	done := make(chan error, 1)
	go func() {
		_, err := o.Submit(context.Background())
		done <- err
	}()

	<-sub.started
	assert.Equal(t, StateSubmitting, o.State())
	_, err := o.Submit(context.Background())
	assert.ErrorIs(t, err, ErrSubmissionInProgress)
	assert.ErrorIs(t, o.SelectPayment(model.PaymentVisa), ErrSubmissionInProgress)

	close(sub.release)
	require.NoError(t, <-done)
	assert.Equal(t, StateSubmitted, o.State())
}

func TestOrchestrator_ResultAfterCancelIsDiscarded(t *testing.T) {
	sub := &blockingSubmitter{started: make(chan struct{}), release: make(chan struct{})}
	o := newOrchestrator(model.StoreConfig{}, sub)
	require.NoError(t, o.SelectAddress(model.Address{ID: 11}))

	done := make(chan error, 1)
	go func() {
		_, err := o.Submit(context.Background())
		done <- err
	}()

	<-sub.started
	o.Cancel()
	close(sub.release)

	assert.ErrorIs(t, <-done, ErrCancelled)

	snap := o.Snapshot()
	assert.Equal(t, StateSelectingAddress, snap.State)
	assert.Empty(t, snap.OrderID)
	assert.Nil(t, snap.Checkout.AddressID)
	assert.ErrorIs(t, o.SelectAddress(model.Address{ID: 1}), ErrCancelled)
}
