// Package checkout drives the checkout flow from address selection to
// order submission.
package checkout

import (
	"context"
	"errors"
	"sync"

	"storefront/internal/model"
	"storefront/internal/pricing"

	"github.com/rs/zerolog"
)

// State is a step of the checkout flow.
type State string

const (
	StateSelectingAddress State = "selecting_address"
	StateSelectingArea    State = "selecting_area"
	StateSelectingPayment State = "selecting_payment"
	StateReadyToSubmit    State = "ready_to_submit"
	StateSubmitting       State = "submitting"
	StateSubmitted        State = "submitted"
	StateFailed           State = "failed"
)

var (
	ErrSubmissionInProgress = errors.New("checkout submission already in progress")
	ErrAlreadySubmitted     = errors.New("checkout already submitted")
	ErrCancelled            = errors.New("checkout cancelled")
)

// Submitter places an order with the backend.
type Submitter interface {
	Submit(ctx context.Context, req model.OrderRequest) (model.Result[model.Order], error)
}

// SubmitterFunc adapts a function to Submitter.
type SubmitterFunc func(ctx context.Context, req model.OrderRequest) (model.Result[model.Order], error)

func (f SubmitterFunc) Submit(ctx context.Context, req model.OrderRequest) (model.Result[model.Order], error) {
	return f(ctx, req)
}

// Snapshot is a read-only view of the orchestrator.
type Snapshot struct {
	State        State                `json:"state"`
	Checkout     model.CheckoutState  `json:"checkout"`
	AreaRequired bool                 `json:"area_required"`
	Areas        []model.DeliveryArea `json:"areas,omitempty"`
	Ready        bool                 `json:"ready"`
	Coupon       *model.Coupon        `json:"coupon,omitempty"`
	Quote        pricing.Quote        `json:"quote"`
	Error        string               `json:"error,omitempty"`
	OrderID      model.ID             `json:"order_id,omitempty"`
}

// Orchestrator holds the draft order of one checkout. It is safe for
// concurrent use; a submission that finishes after Cancel is discarded.
type Orchestrator struct {
	mu sync.Mutex

	config    model.StoreConfig
	cart      model.CartSnapshot
	submitter Submitter
	logger    zerolog.Logger

	draft         model.CheckoutState
	address       *model.Address
	area          *model.DeliveryArea
	coupon        *model.Coupon
	paymentChosen bool

	state     State
	lastError string
	orderID   model.ID
	cancelled bool
}

// New starts a checkout for cart under the store delivery configuration.
// Payment defaults to cash.
func New(cfg model.StoreConfig, cart model.CartSnapshot, submitter Submitter, logger zerolog.Logger) *Orchestrator {
	o := &Orchestrator{
		config:    cfg,
		cart:      cart,
		submitter: submitter,
		logger:    logger.With().Str("component", "checkout").Logger(),
		draft:     model.CheckoutState{PaymentMethod: model.PaymentCash},
	}
	o.state = o.derive()
	return o
}

// areaRequired reports whether an area must be chosen for the current
// address. Callers must hold mu.
func (o *Orchestrator) areaRequired() bool {
	if o.address == nil || !o.config.AreaBased() {
		return false
	}
	return len(o.config.AreasForCity(o.address.CityID)) > 0
}

// ready is the submission guard. Callers must hold mu.
func (o *Orchestrator) ready() bool {
	if o.draft.AddressID == nil {
		return false
	}
	return !o.areaRequired() || o.draft.AreaID != nil
}

// derive computes the selection step from the draft. Callers must hold mu.
func (o *Orchestrator) derive() State {
	switch {
	case o.draft.AddressID == nil:
		return StateSelectingAddress
	case o.areaRequired() && o.draft.AreaID == nil:
		return StateSelectingArea
	case !o.paymentChosen:
		return StateSelectingPayment
	default:
		return StateReadyToSubmit
	}
}

// mutable checks that the draft may still change and leaves a failed
// state. Callers must hold mu.
func (o *Orchestrator) mutable() error {
	switch {
	case o.cancelled:
		return ErrCancelled
	case o.state == StateSubmitting:
		return ErrSubmissionInProgress
	case o.state == StateSubmitted:
		return ErrAlreadySubmitted
	}
	o.lastError = ""
	return nil
}

// SelectAddress sets the delivery address. The selected area is always
// cleared, so a new address needs a new area choice.
func (o *Orchestrator) SelectAddress(addr model.Address) error {
	o.mu.Lock()
	defer o.mu.Unlock()

	if err := o.mutable(); err != nil {
		return err
	}
	if addr.ID <= 0 {
		return model.NewValidationError("address_id", "address is required")
	}

	id := addr.ID
	o.address = &addr
	o.draft.AddressID = &id
	o.draft.AreaID = nil
	o.area = nil
	o.state = o.derive()
	return nil
}

// SelectArea chooses a delivery area in the city of the selected address.
func (o *Orchestrator) SelectArea(areaID int64) error {
	o.mu.Lock()
	defer o.mu.Unlock()

	if err := o.mutable(); err != nil {
		return err
	}
	if o.address == nil {
		return model.NewValidationError("address_id", "select an address before choosing an area")
	}
	if !o.config.AreaBased() {
		return model.NewValidationError("area_id", "delivery areas are not enabled")
	}

	area, ok := o.config.FindArea(areaID)
	if !ok || area.CityID != o.address.CityID {
		return model.NewValidationError("area_id", "area is not available for the selected address")
	}

	id := area.ID
	o.area = &area
	o.draft.AreaID = &id
	o.state = o.derive()
	return nil
}

// SelectPayment sets the payment method.
func (o *Orchestrator) SelectPayment(method model.PaymentMethod) error {
	o.mu.Lock()
	defer o.mu.Unlock()

	if err := o.mutable(); err != nil {
		return err
	}
	if !method.Valid() {
		return model.NewValidationError("payment_method", "unsupported payment method")
	}

	o.draft.PaymentMethod = method
	o.paymentChosen = true
	o.state = o.derive()
	return nil
}

// ApplyCoupon attaches a coupon already validated by the backend.
func (o *Orchestrator) ApplyCoupon(coupon model.Coupon) error {
	o.mu.Lock()
	defer o.mu.Unlock()

	if err := o.mutable(); err != nil {
		return err
	}

	id := coupon.ID
	o.coupon = &coupon
	o.draft.CouponID = &id
	o.state = o.derive()
	return nil
}

// RemoveCoupon detaches the coupon, if any.
func (o *Orchestrator) RemoveCoupon() error {
	o.mu.Lock()
	defer o.mu.Unlock()

	if err := o.mutable(); err != nil {
		return err
	}

	o.coupon = nil
	o.draft.CouponID = nil
	o.state = o.derive()
	return nil
}

// SetNotes sets the free-text delivery notes.
func (o *Orchestrator) SetNotes(notes string) error {
	o.mu.Lock()
	defer o.mu.Unlock()

	if err := o.mutable(); err != nil {
		return err
	}

	o.draft.Notes = notes
	o.state = o.derive()
	return nil
}

// Ready reports whether the draft may be submitted.
func (o *Orchestrator) Ready() bool {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.ready()
}

// State returns the current step.
func (o *Orchestrator) State() State {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.state
}

// Quote prices the draft with the applied coupon and selected area.
func (o *Orchestrator) Quote() pricing.Quote {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.quote()
}

func (o *Orchestrator) quote() pricing.Quote {
	return pricing.ComputeFinalTotal(o.cart, o.coupon, pricing.AreaFee(o.config, o.area))
}

// Snapshot returns a copy of the orchestrator state.
func (o *Orchestrator) Snapshot() Snapshot {
	o.mu.Lock()
	defer o.mu.Unlock()

	draft := o.draft
	draft.AddressID = copyID(o.draft.AddressID)
	draft.AreaID = copyID(o.draft.AreaID)
	draft.CouponID = copyID(o.draft.CouponID)

	snap := Snapshot{
		State:        o.state,
		Checkout:     draft,
		AreaRequired: o.areaRequired(),
		Ready:        o.ready(),
		Quote:        o.quote(),
		Error:        o.lastError,
		OrderID:      o.orderID,
	}
	if o.address != nil && snap.AreaRequired {
		snap.Areas = o.config.AreasForCity(o.address.CityID)
	}
	if o.coupon != nil {
		c := *o.coupon
		snap.Coupon = &c
	}
	return snap
}

// Retry leaves the failed state so the draft can be corrected or resubmitted.
func (o *Orchestrator) Retry() error {
	o.mu.Lock()
	defer o.mu.Unlock()

	if o.state != StateFailed {
		return nil
	}
	if err := o.mutable(); err != nil {
		return err
	}
	o.state = o.derive()
	return nil
}

// Cancel discards the checkout. An in-flight submission keeps running but
// its result is ignored.
func (o *Orchestrator) Cancel() {
	o.mu.Lock()
	defer o.mu.Unlock()

	o.cancelled = true
	o.draft = model.CheckoutState{}
	o.address = nil
	o.area = nil
	o.coupon = nil
	o.paymentChosen = false
	o.lastError = ""
	o.state = StateSelectingAddress
}

// Submit sends the draft to the backend. On success the orchestrator moves
// to Submitted and returns the created order. A backend or transport
// failure moves it to Failed with the error message; Submit may then be
// called again.
func (o *Orchestrator) Submit(ctx context.Context) (*model.Order, error) {
	o.mu.Lock()
	if err := o.mutable(); err != nil {
		o.mu.Unlock()
		return nil, err
	}
	if !o.ready() {
		o.mu.Unlock()
		if o.draft.AddressID == nil {
			return nil, model.NewValidationError("address_id", "address is required")
		}
		return nil, model.NewValidationError("area_id", "delivery area is required")
	}
	if o.cart.Empty() {
		o.mu.Unlock()
		return nil, model.NewValidationError("cart", "cart is empty")
	}

	req := model.OrderRequest{
		AddressID:     *o.draft.AddressID,
		PaymentMethod: o.draft.PaymentMethod,
		AreaID:        copyID(o.draft.AreaID),
		CouponID:      copyID(o.draft.CouponID),
		Notes:         o.draft.Notes,
	}
	o.state = StateSubmitting
	o.mu.Unlock()

	res, err := o.submitter.Submit(ctx, req)

	o.mu.Lock()
	defer o.mu.Unlock()

	if o.cancelled {
		o.logger.Debug().Msg("discarding submission result of cancelled checkout")
		return nil, ErrCancelled
	}

	if err == nil && res.Failed() {
		err = &model.APIError{Status: res.Status, Message: res.Error}
	}
	if err == nil && (res.Data == nil || res.Data.ID == "") {
		err = &model.APIError{Status: res.Status, Message: model.GenericErrorMessage}
	}
	if err != nil {
		o.state = StateFailed
		o.lastError = errorMessage(err)
		o.logger.Warn().Err(err).Msg("order submission failed")
		return nil, err
	}

	o.state = StateSubmitted
	o.orderID = res.Data.ID
	o.logger.Info().Str("order_id", res.Data.ID.String()).Msg("order submitted")

	order := *res.Data
	return &order, nil
}

// errorMessage returns the text to show for a submission failure.
func errorMessage(err error) string {
	var apiErr *model.APIError
	var domainErr *model.DomainError
	var validationErr *model.ValidationError
	switch {
	case errors.As(err, &apiErr):
		return apiErr.Message
	case errors.As(err, &domainErr):
		return domainErr.Message
	case errors.As(err, &validationErr):
		return validationErr.Message
	default:
		return model.GenericErrorMessage
	}
}

func copyID(id *int64) *int64 {
	if id == nil {
		return nil
	}
	v := *id
	return &v
}
