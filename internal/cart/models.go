package cart

import (
	"errors"
	"time"

	"github.com/brocantic/marketplace/internal/orders"
)

var (
	ErrInvalidQuantity = errors.New("quantity must be greater than zero")
	ErrNotCartItem     = errors.New("item does not belong to the user's cart")
)

// Item is a cart line item joined with the product fields the cart views
// and the checkout fan-out need.
type Item struct {
	ID           string            `json:"id"`
	OrderID      string            `json:"order_id"`
	ProductID    string            `json:"product_id"`
	Quantity     int               `json:"quantity"`
	Status       orders.ItemStatus `json:"status"`
	ProductTitle string            `json:"product_title"`
	PriceCents   int64             `json:"price_cents"`
	VendorID     string            `json:"vendor_id"`
	VendorName   string            `json:"vendor_name"`
	Created      time.Time         `json:"created"`
}

// VendorGroup is one vendor's slice of the cart with its subtotal; checkout
// turns each group into a sub-order.
type VendorGroup struct {
	VendorID   string `json:"vendor_id"`
	VendorName string `json:"vendor_name"`
	Items      []Item `json:"items"`
	TotalCents int64  `json:"total_cents"`
}

// GroupByVendor groups items by the selling vendor, preserving first-seen
// vendor order.
func GroupByVendor(items []Item) []VendorGroup {
	byVendor := map[string]*VendorGroup{}
	var order []string
	for _, it := range items {
		g, ok := byVendor[it.VendorID]
		if !ok {
			g = &VendorGroup{VendorID: it.VendorID, VendorName: it.VendorName}
			byVendor[it.VendorID] = g
			order = append(order, it.VendorID)
		}
		g.Items = append(g.Items, it)
		g.TotalCents += it.PriceCents * int64(it.Quantity)
	}
	out := make([]VendorGroup, 0, len(order))
	for _, id := range order {
		out = append(out, *byVendor[id])
	}
	return out
}
