package catalog

import "time"

// Product availability, stored as-is; these values are part of the data
// contract shared with the storefront.
type ProductStatus string

const (
	StatusAvailable ProductStatus = "Disponible"
	StatusReserved  ProductStatus = "Réservé"
	StatusSold      ProductStatus = "Vendu"
	StatusDraft     ProductStatus = "Brouillon"
)

type Condition string

const (
	ConditionNew         Condition = "Neuf"
	ConditionUsed        Condition = "Occasion"
	ConditionRefurbished Condition = "Reconditionné"
)

type Category struct {
	ID      string    `json:"id"`
	Name    string    `json:"name"`
	Slug    string    `json:"slug"`
	Icon    string    `json:"icon,omitempty"`
	Created time.Time `json:"created"`
	Updated time.Time `json:"updated"`
}

type Product struct {
	ID            string        `json:"id"`
	Title         string        `json:"title"`
	Description   string        `json:"description"`
	PriceCents    int64         `json:"price_cents"`
	Currency      string        `json:"currency"`
	Images        []string      `json:"images"`
	CategoryID    string        `json:"category_id"`
	Condition     Condition     `json:"condition"`
	SellerID      string        `json:"seller_id"`
	SellerName    string        `json:"seller_name,omitempty"`
	Status        ProductStatus `json:"status"`
	Location      string        `json:"location"`
	Views         int64         `json:"views"`
	Reference     string        `json:"reference,omitempty"`
	Compatibility string        `json:"compatibility,omitempty"`
	Created       time.Time     `json:"created"`
	Updated       time.Time     `json:"updated"`
}

// ProductInput carries the seller-editable fields.
type ProductInput struct {
	Title         string        `json:"title"`
	Description   string        `json:"description"`
	PriceCents    int64         `json:"price_cents"`
	Currency      string        `json:"currency"`
	Images        []string      `json:"images"`
	CategoryID    string        `json:"category_id"`
	Condition     Condition     `json:"condition"`
	Status        ProductStatus `json:"status"`
	Location      string        `json:"location"`
	Reference     string        `json:"reference"`
	Compatibility string        `json:"compatibility"`
}
