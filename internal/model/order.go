package model

import "github.com/shopspring/decimal"

// PaymentMethod is how the customer pays for an order.
type PaymentMethod string

const (
	PaymentCash   PaymentMethod = "cash"
	PaymentVisa   PaymentMethod = "visa"
	PaymentWallet PaymentMethod = "wallet"
)

// Valid reports whether p is a known payment method.
func (p PaymentMethod) Valid() bool {
	switch p {
	case PaymentCash, PaymentVisa, PaymentWallet:
		return true
	}
	return false
}

// CheckoutState is the client-held draft of the order being assembled.
type CheckoutState struct {
	AddressID     *int64        `json:"address_id"`
	PaymentMethod PaymentMethod `json:"payment_method"`
	AreaID        *int64        `json:"area_id"`
	CouponID      *int64        `json:"coupon_id"`
	Notes         string        `json:"notes"`
}

// OrderRequest represents the request payload for submitting an order.
type OrderRequest struct {
	AddressID     int64         `json:"address_id"`
	PaymentMethod PaymentMethod `json:"payment_method"`
	AreaID        *int64        `json:"area_id,omitempty"`
	CouponID      *int64        `json:"coupon_id,omitempty"`
	Notes         string        `json:"notes,omitempty"`
}

// Order is the backend-authoritative order.
type Order struct {
	ID             ID                 `json:"id"`
	Number         string             `json:"order_number,omitempty"`
	Status         string             `json:"status"`
	PaymentMethod  PaymentMethod      `json:"payment_method,omitempty"`
	Notes          string             `json:"notes,omitempty"`
	Address        *Address           `json:"address,omitempty"`
	Area           *DeliveryArea      `json:"area,omitempty"`
	Items          []OrderItem        `json:"items,omitempty"`
	SubTotal       decimal.Decimal    `json:"sub_total"`
	Discount       decimal.Decimal    `json:"discount"`
	CouponDiscount decimal.Decimal    `json:"coupon_discount"`
	DeliveryFee    decimal.Decimal    `json:"delivery_fee"`
	Total          decimal.Decimal    `json:"total"`
	StatusHistory  []OrderStatusEntry `json:"status_history,omitempty"`
	CreatedAt      string             `json:"created_at,omitempty"`
}

// OrderItem is a line of a placed order.
type OrderItem struct {
	ID                     int64                `json:"id"`
	Product                ProductSummary       `json:"product"`
	Quantity               int                  `json:"quantity"`
	Price                  decimal.Decimal      `json:"price"`
	ProductAttributeValues []AttributeSelection `json:"product_attribute_values,omitempty"`
}

// OrderStatusEntry is one step of the order status timeline.
type OrderStatusEntry struct {
	Status    string `json:"status"`
	CreatedAt string `json:"created_at"`
}

// CheckoutRequest is the checkout draft posted by the UI.
type CheckoutRequest struct {
	AddressID     int64         `json:"address_id"`
	AreaID        *int64        `json:"area_id,omitempty"`
	PaymentMethod PaymentMethod `json:"payment_method,omitempty"`
	CouponCode    string        `json:"coupon_code,omitempty"`
	Notes         string        `json:"notes,omitempty"`
}

// Validate checks the order request before it is sent.
func (r *OrderRequest) Validate() error {
	if r.AddressID <= 0 {
		return NewValidationError("address_id", "address is required")
	}
	if !r.PaymentMethod.Valid() {
		return NewValidationError("payment_method", "unsupported payment method")
	}
	return nil
}
