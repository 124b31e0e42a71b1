package checkout

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/brocantic/marketplace/internal/cart"
	"github.com/brocantic/marketplace/internal/events"
	"github.com/brocantic/marketplace/internal/orders"
)

var ErrEmptyCart = errors.New("cart is empty")

// CartSource is the slice of the cart service checkout consumes.
type CartSource interface {
	Open(ctx context.Context, userID string) (orders.Order, error)
	ItemsByVendor(ctx context.Context, userID string) ([]cart.VendorGroup, error)
}

// Payment is the charge step; the simulated Processor satisfies it.
type Payment interface {
	Charge(ctx context.Context, amountCents int64) (PaymentResult, error)
}

// SubOrder pairs a per-vendor order with its line items.
type SubOrder struct {
	Order orders.Order
	Items []orders.Item
}

// OrderSet is everything one checkout writes: the parent order, the
// per-vendor sub-orders with their items, the products to mark reserved,
// and the cart to wipe. Stores persist it atomically.
type OrderSet struct {
	Parent          orders.Order
	Subs            []SubOrder
	ReserveProducts []string
	CartID          string
}

// Store persists an OrderSet all-or-nothing.
type Store interface {
	CreateOrderSet(ctx context.Context, set OrderSet) error
}

type Receipt struct {
	OrderID        string   `json:"order_id"`
	SubOrderIDs    []string `json:"sub_order_ids"`
	TotalCents     int64    `json:"total_cents"`
	Currency       string   `json:"currency"`
	TransactionRef string   `json:"transaction_ref"`
}

type Service struct {
	Carts    CartSource
	Store    Store
	Payment  Payment
	Producer events.Publisher
	Service  string
}

// CreateOrdersFromCart atomically converts the user's cart into one paid
// parent order plus one paid sub-order per vendor, reserves the products,
// and empties the cart. A failed payment leaves the cart untouched.
func (s *Service) CreateOrdersFromCart(ctx context.Context, userID string, shipping, billing Address, paymentMethod string) (Receipt, error) {
	if paymentMethod == "" {
		paymentMethod = "simulated"
	}

	groups, err := s.Carts.ItemsByVendor(ctx, userID)
	if err != nil {
		return Receipt{}, err
	}
	if len(groups) == 0 {
		return Receipt{}, ErrEmptyCart
	}

	var total int64
	for _, g := range groups {
		total += g.TotalCents
	}

	pay, err := s.Payment.Charge(ctx, total)
	if err != nil {
		return Receipt{}, err
	}

	openCart, err := s.Carts.Open(ctx, userID)
	if err != nil {
		return Receipt{}, err
	}

	shipJSON, err := json.Marshal(shipping)
	if err != nil {
		return Receipt{}, err
	}
	billJSON, err := json.Marshal(billing)
	if err != nil {
		return Receipt{}, err
	}

	parent := orders.Order{
		ID:              uuid.NewString(),
		UserID:          userID,
		TotalCents:      total,
		Currency:        orders.DefaultCurrency,
		ShippingAddress: shipJSON,
		BillingAddress:  billJSON,
		PaymentMethod:   paymentMethod,
		PaymentStatus:   orders.PaymentPaid,
		Notes:           fmt.Sprintf("simulated payment, transaction %s", pay.TransactionRef),
	}

	set := OrderSet{Parent: parent, CartID: openCart.ID}
	seenProduct := map[string]bool{}
	subIDs := make([]string, 0, len(groups))

	for _, g := range groups {
		sub := orders.Order{
			ID:              uuid.NewString(),
			UserID:          userID,
			TotalCents:      g.TotalCents,
			Currency:        orders.DefaultCurrency,
			ShippingAddress: shipJSON,
			BillingAddress:  billJSON,
			PaymentMethod:   paymentMethod,
			PaymentStatus:   orders.PaymentPaid,
			ParentID:        parent.ID,
			Notes:           fmt.Sprintf("order for vendor %s", g.VendorName),
		}
		so := SubOrder{Order: sub}
		for _, it := range g.Items {
			so.Items = append(so.Items, orders.Item{
				ID:        uuid.NewString(),
				OrderID:   sub.ID,
				ProductID: it.ProductID,
				Quantity:  it.Quantity,
				Status:    orders.StatusInPreparation,
			})
			if !seenProduct[it.ProductID] {
				seenProduct[it.ProductID] = true
				set.ReserveProducts = append(set.ReserveProducts, it.ProductID)
			}
		}
		set.Subs = append(set.Subs, so)
		subIDs = append(subIDs, sub.ID)
	}

	if err := s.Store.CreateOrderSet(ctx, set); err != nil {
		return Receipt{}, err
	}

	if s.Producer != nil {
		events.Emit(s.Producer, events.EventCheckoutCompleted, s.Service, "", parent.ID,
			events.CheckoutCompletedPayload{
				OrderID:        parent.ID,
				UserID:         userID,
				SubOrderIDs:    subIDs,
				TotalCents:     total,
				TransactionRef: pay.TransactionRef,
			})
	}

	return Receipt{
		OrderID:        parent.ID,
		SubOrderIDs:    subIDs,
		TotalCents:     total,
		Currency:       orders.DefaultCurrency,
		TransactionRef: pay.TransactionRef,
	}, nil
}
