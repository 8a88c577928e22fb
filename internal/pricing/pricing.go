// Package pricing reconciles the server-computed cart pricing with a
// client-applied coupon and delivery-area fee.
package pricing

import (
	"storefront/internal/model"

	"github.com/shopspring/decimal"
)

// places is the number of decimal places money is rounded to.
const places = 2

var hundred = decimal.NewFromInt(100)

// Quote is the payable breakdown shown before an order is submitted.
type Quote struct {
	Subtotal       decimal.Decimal `json:"subtotal"`
	Base           decimal.Decimal `json:"base"`
	CouponDiscount decimal.Decimal `json:"coupon_discount"`
	AreaFee        decimal.Decimal `json:"area_fee"`
	FinalTotal     decimal.Decimal `json:"final_total"`
}

// ComputeFinalTotal returns the final payable total for cart.
//
// The coupon discount is taken from total_price, the subtotal before
// per-item discounts, and never exceeds it. It is then subtracted from
// total_price_after_discount. The total is floored at zero.
func ComputeFinalTotal(cart model.CartSnapshot, coupon *model.Coupon, areaFee decimal.Decimal) Quote {
	subtotal := cart.Pricing.TotalPrice
	base := cart.Pricing.TotalPriceAfterDiscount
	discount := CouponDiscount(subtotal, coupon)

	if areaFee.IsNegative() {
		areaFee = decimal.Zero
	}

	final := base.Sub(discount).Add(areaFee)
	if final.IsNegative() {
		final = decimal.Zero
	}

	return Quote{
		Subtotal:       subtotal.Round(places),
		Base:           base.Round(places),
		CouponDiscount: discount.Round(places),
		AreaFee:        areaFee.Round(places),
		FinalTotal:     final.Round(places),
	}
}

// CouponDiscount returns the discount coupon grants on subtotal, bounded
// to [0, subtotal]. Unknown discount types grant nothing.
func CouponDiscount(subtotal decimal.Decimal, coupon *model.Coupon) decimal.Decimal {
	if coupon == nil || !subtotal.IsPositive() {
		return decimal.Zero
	}

	var discount decimal.Decimal
	switch coupon.DiscountType {
	case model.DiscountPercentage:
		discount = subtotal.Mul(coupon.DiscountValue).Div(hundred)
	case model.DiscountFixedAmount:
		discount = coupon.DiscountValue
	default:
		return decimal.Zero
	}

	if discount.IsNegative() {
		return decimal.Zero
	}
	return decimal.Min(discount, subtotal)
}

// AreaFee returns the fee of the selected area. Delivery is free unless the
// store charges per area and an area has been chosen.
func AreaFee(cfg model.StoreConfig, area *model.DeliveryArea) decimal.Decimal {
	if !cfg.AreaBased() || area == nil {
		return decimal.Zero
	}
	return area.Price
}

// LineTotal is the price of one cart line: the unit price plus attribute
// surcharges, times the quantity.
func LineTotal(line model.CartLine) decimal.Decimal {
	unit := line.Product.UnitPrice()
	for _, attr := range line.ProductAttributeValues {
		unit = unit.Add(attr.Price)
	}
	return unit.Mul(decimal.NewFromInt(int64(line.Quantity))).Round(places)
}

// Subtotal sums the line totals of items.
func Subtotal(items []model.CartLine) decimal.Decimal {
	total := decimal.Zero
	for _, line := range items {
		total = total.Add(LineTotal(line))
	}
	return total
}
