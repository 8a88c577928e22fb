package model

import "github.com/shopspring/decimal"

// CartLine is one product entry in the cart.
type CartLine struct {
	ID                     int64                `json:"id"`
	Product                ProductSummary       `json:"product"`
	Quantity               int                  `json:"quantity"`
	ProductAttributeValues []AttributeSelection `json:"product_attribute_values"`
}

// CartPricing is the server-computed pricing of a cart.
type CartPricing struct {
	TotalPrice              decimal.Decimal  `json:"total_price"`
	TotalPriceAfterDiscount decimal.Decimal  `json:"total_price_after_discount"`
	Discount                decimal.Decimal  `json:"discount"`
	CouponDiscount          *decimal.Decimal `json:"coupon_discount,omitempty"`
	AppliedCoupon           *Coupon          `json:"applied_coupon,omitempty"`
}

// Consistent reports whether the discounted total does not exceed the total.
func (p CartPricing) Consistent() bool {
	return p.TotalPriceAfterDiscount.LessThanOrEqual(p.TotalPrice)
}

// CartSnapshot is the server-owned cart contents and pricing.
type CartSnapshot struct {
	Items   []CartLine  `json:"items"`
	Pricing CartPricing `json:"pricing"`
}

// Empty reports whether the cart has no lines.
func (c CartSnapshot) Empty() bool {
	return len(c.Items) == 0
}

// CartItemRequest represents the request payload for adding a cart line.
type CartItemRequest struct {
	ProductID                int64   `json:"product_id"`
	Quantity                 int     `json:"quantity"`
	ProductAttributeValueIDs []int64 `json:"product_attribute_values,omitempty"`
}

// CartQuantityRequest represents the request payload for changing a line quantity.
type CartQuantityRequest struct {
	Quantity int `json:"quantity"`
}
