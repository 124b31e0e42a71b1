package orders

import (
	"encoding/json"
	"errors"
	"time"
)

const DefaultCurrency = "EUR"

var ErrNotFound = errors.New("not found")

type PaymentStatus string

const (
	PaymentCart     PaymentStatus = "cart"
	PaymentPending  PaymentStatus = "pending"
	PaymentPaid     PaymentStatus = "paid"
	PaymentFailed   PaymentStatus = "failed"
	PaymentRefunded PaymentStatus = "refunded"
)

func (s PaymentStatus) Label() string {
	switch s {
	case PaymentPending:
		return "En attente"
	case PaymentPaid:
		return "Payée"
	case PaymentFailed:
		return "Échouée"
	case PaymentRefunded:
		return "Remboursée"
	case PaymentCart:
		return "Panier"
	}
	return string(s)
}

// Order is a cart (payment_status=cart), a buyer-facing parent order
// (paid, no parent), or a per-vendor sub-order (paid, parent set).
type Order struct {
	ID              string          `json:"id"`
	UserID          string          `json:"user_id"`
	TotalCents      int64           `json:"total_cents"`
	Currency        string          `json:"currency"`
	ShippingAddress json.RawMessage `json:"shipping_address,omitempty"`
	BillingAddress  json.RawMessage `json:"billing_address,omitempty"`
	PaymentMethod   string          `json:"payment_method,omitempty"`
	PaymentStatus   PaymentStatus   `json:"payment_status"`
	ParentID        string          `json:"parent_id,omitempty"`
	Notes           string          `json:"notes,omitempty"`
	Created         time.Time       `json:"created"`
	Updated         time.Time       `json:"updated"`
}

type Item struct {
	ID        string     `json:"id"`
	OrderID   string     `json:"order_id"`
	ProductID string     `json:"product_id"`
	Quantity  int        `json:"quantity"`
	Status    ItemStatus `json:"status"`
	Created   time.Time  `json:"created"`
	Updated   time.Time  `json:"updated"`
}

// ItemDetail is an item joined with the product fields list views need.
type ItemDetail struct {
	Item
	ProductTitle string `json:"product_title"`
	PriceCents   int64  `json:"price_cents"`
	SellerID     string `json:"seller_id"`
	SellerName   string `json:"seller_name"`
}

type UserRef struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email,omitempty"`
	Phone string `json:"phone,omitempty"`
}

// WaitingOrder is a paid sub-order the buyer is still waiting on, with its
// not-yet-shipped items and the vendor it is scoped to.
type WaitingOrder struct {
	Order  Order        `json:"order"`
	Seller UserRef      `json:"seller"`
	Items  []ItemDetail `json:"items"`
}

// OrderDetails aggregates a parent order with its sub-orders and all of
// their line items for the buyer-facing receipt view.
type OrderDetails struct {
	Order     Order        `json:"order"`
	SubOrders []Order      `json:"sub_orders"`
	Items     []ItemDetail `json:"items"`
}
