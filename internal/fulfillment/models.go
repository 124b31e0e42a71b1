package fulfillment

import (
	"encoding/json"
	"errors"

	"github.com/brocantic/marketplace/internal/orders"
)

var (
	ErrForbidden     = errors.New("not allowed for this user")
	ErrBadTransition = errors.New("status transition not allowed")
	ErrUnknownStatus = errors.New("unknown fulfillment status")
)

// ItemRecord is a line item with the ownership fields status changes are
// authorized against.
type ItemRecord struct {
	orders.Item
	SellerID   string
	BuyerID    string
	PriceCents int64
	OrderPaid  bool
}

// Bundle is one paid order as the seller sees it: the order, the seller's
// line items within it, the buyer contact and where to ship.
type Bundle struct {
	Order           orders.Order        `json:"order"`
	Buyer           orders.UserRef      `json:"buyer"`
	ShippingAddress json.RawMessage     `json:"shipping_address,omitempty"`
	Items           []orders.ItemDetail `json:"items"`
}

type Stats struct {
	PendingOrders     int   `json:"pending_orders"`
	ReadyToSend       int   `json:"ready_to_send"`
	Sent              int   `json:"sent"`
	Delivered         int   `json:"delivered"`
	TotalRevenueCents int64 `json:"total_revenue_cents"`
}
