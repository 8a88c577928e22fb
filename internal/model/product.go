package model

import "github.com/shopspring/decimal"

// ProductSummary is the product shape embedded in cart lines, orders and
// wishlists.
type ProductSummary struct {
	ID            int64            `json:"id"`
	Name          string           `json:"name"`
	Slug          string           `json:"slug,omitempty"`
	Image         string           `json:"image,omitempty"`
	Price         decimal.Decimal  `json:"price"`
	DiscountPrice *decimal.Decimal `json:"discount_price"`
}

// UnitPrice returns the discounted price when present, else the list price.
func (p ProductSummary) UnitPrice() decimal.Decimal {
	if p.DiscountPrice != nil {
		return *p.DiscountPrice
	}
	return p.Price
}

// Product is a catalogue entry with its selectable attributes.
type Product struct {
	ProductSummary
	Description string             `json:"description,omitempty"`
	Category    string             `json:"category,omitempty"`
	Stock       int                `json:"stock"`
	Images      []string           `json:"images,omitempty"`
	Attributes  []ProductAttribute `json:"attributes,omitempty"`
}

// ProductAttribute is a selectable option group such as size or colour.
type ProductAttribute struct {
	ID     int64                `json:"id"`
	Name   string               `json:"name"`
	Values []AttributeSelection `json:"values"`
}

// AttributeSelection is one attribute value, with its price surcharge.
type AttributeSelection struct {
	ID    int64           `json:"id"`
	Name  string          `json:"name,omitempty"`
	Value string          `json:"value"`
	Price decimal.Decimal `json:"price"`
}

// ProductQuery holds catalogue listing filters.
type ProductQuery struct {
	Page     int
	PerPage  int
	Category string
	Search   string
	Sort     string
}

// WishlistItem is a product saved by the user.
type WishlistItem struct {
	ID      int64          `json:"id"`
	Product ProductSummary `json:"product"`
}

// WishlistRequest represents the request payload for saving a product.
type WishlistRequest struct {
	ProductID int64 `json:"product_id"`
}

// Pagination is the listing metadata returned with paginated products.
type Pagination struct {
	CurrentPage int `json:"current_page"`
	LastPage    int `json:"last_page"`
	PerPage     int `json:"per_page"`
	Total       int `json:"total"`
}

// ProductPage is one page of the catalogue.
type ProductPage struct {
	Products   []Product   `json:"products"`
	Pagination *Pagination `json:"pagination,omitempty"`
}
