package checkout

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	kafkago "github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/brocantic/marketplace/internal/cart"
	"github.com/brocantic/marketplace/internal/events"
	"github.com/brocantic/marketplace/internal/orders"
)

type fakeCarts struct {
	cartID string
	groups []cart.VendorGroup
}

func (f *fakeCarts) Open(ctx context.Context, userID string) (orders.Order, error) {
	return orders.Order{ID: f.cartID, UserID: userID, PaymentStatus: orders.PaymentCart}, nil
}

func (f *fakeCarts) ItemsByVendor(ctx context.Context, userID string) ([]cart.VendorGroup, error) {
	return f.groups, nil
}

type fakeStore struct {
	set   *OrderSet
	calls int
	err   error
}

func (f *fakeStore) CreateOrderSet(ctx context.Context, set OrderSet) error {
	f.calls++
	if f.err != nil {
		return f.err
	}
	f.set = &set
	return nil
}

type fakePayment struct {
	ref    string
	err    error
	amount int64
}

func (f *fakePayment) Charge(ctx context.Context, amountCents int64) (PaymentResult, error) {
	f.amount = amountCents
	if f.err != nil {
		return PaymentResult{}, f.err
	}
	return PaymentResult{TransactionRef: f.ref}, nil
}

type fakePublisher struct {
	envelopes []events.Envelope
}

func (f *fakePublisher) Publish(key, value []byte, headers ...kafkago.Header) {
	var env events.Envelope
	if err := json.Unmarshal(value, &env); err == nil {
		f.envelopes = append(f.envelopes, env)
	}
}

func twoVendorCart() []cart.VendorGroup {
	return cart.GroupByVendor([]cart.Item{
		{ID: "i1", ProductID: "p1", Quantity: 2, PriceCents: 1500, VendorID: "v1", VendorName: "Atelier Nord"},
		{ID: "i2", ProductID: "p2", Quantity: 1, PriceCents: 4000, VendorID: "v2", VendorName: "Brocante Sud"},
		{ID: "i3", ProductID: "p3", Quantity: 1, PriceCents: 250, VendorID: "v1", VendorName: "Atelier Nord"},
	})
}

func TestCreateOrdersFromCart(t *testing.T) {
	carts := &fakeCarts{cartID: "cart-1", groups: twoVendorCart()}
	store := &fakeStore{}
	pay := &fakePayment{ref: "TXN-1-ABC"}
	pub := &fakePublisher{}
	svc := &Service{Carts: carts, Store: store, Payment: pay, Producer: pub, Service: "test"}

	rcpt, err := svc.CreateOrdersFromCart(context.Background(), "buyer-1", validAddress(), validAddress(), "")
	require.NoError(t, err)

	// 2*1500 + 1*4000 + 1*250
	assert.Equal(t, int64(7250), rcpt.TotalCents)
	assert.Equal(t, int64(7250), pay.amount)
	assert.Equal(t, "EUR", rcpt.Currency)
	assert.Equal(t, "TXN-1-ABC", rcpt.TransactionRef)
	assert.Len(t, rcpt.SubOrderIDs, 2)

	require.NotNil(t, store.set)
	set := *store.set
	assert.Equal(t, "cart-1", set.CartID)
	assert.Equal(t, rcpt.OrderID, set.Parent.ID)
	assert.Equal(t, orders.PaymentPaid, set.Parent.PaymentStatus)
	assert.Empty(t, set.Parent.ParentID)
	assert.Equal(t, "simulated", set.Parent.PaymentMethod)

	require.Len(t, set.Subs, 2)
	var subTotal int64
	for _, sub := range set.Subs {
		assert.Equal(t, set.Parent.ID, sub.Order.ParentID)
		assert.Equal(t, orders.PaymentPaid, sub.Order.PaymentStatus)
		subTotal += sub.Order.TotalCents
		for _, it := range sub.Items {
			assert.Equal(t, sub.Order.ID, it.OrderID)
			assert.Equal(t, orders.StatusInPreparation, it.Status)
		}
	}
	assert.Equal(t, set.Parent.TotalCents, subTotal)
	assert.ElementsMatch(t, []string{"p1", "p2", "p3"}, set.ReserveProducts)

	require.Len(t, pub.envelopes, 1)
	env := pub.envelopes[0]
	assert.Equal(t, events.EventCheckoutCompleted, env.EventType)
	assert.Equal(t, set.Parent.ID, env.CorrelationID)
}

func TestCreateOrdersFromCartEmptyCart(t *testing.T) {
	svc := &Service{
		Carts:   &fakeCarts{cartID: "cart-1"},
		Store:   &fakeStore{},
		Payment: &fakePayment{ref: "TXN-1-ABC"},
	}
	_, err := svc.CreateOrdersFromCart(context.Background(), "buyer-1", validAddress(), validAddress(), "card")
	assert.ErrorIs(t, err, ErrEmptyCart)
}

func TestCreateOrdersFromCartPaymentFailure(t *testing.T) {
	store := &fakeStore{}
	svc := &Service{
		Carts:   &fakeCarts{cartID: "cart-1", groups: twoVendorCart()},
		Store:   store,
		Payment: &fakePayment{err: ErrPaymentFailed},
	}
	_, err := svc.CreateOrdersFromCart(context.Background(), "buyer-1", validAddress(), validAddress(), "card")
	assert.ErrorIs(t, err, ErrPaymentFailed)
	// nothing persisted, the cart stays as it was
	assert.Zero(t, store.calls)
}

func TestCreateOrdersFromCartStoreFailure(t *testing.T) {
	pub := &fakePublisher{}
	svc := &Service{
		Carts:    &fakeCarts{cartID: "cart-1", groups: twoVendorCart()},
		Store:    &fakeStore{err: errors.New("deadlock")},
		Payment:  &fakePayment{ref: "TXN-1-ABC"},
		Producer: pub,
	}
	_, err := svc.CreateOrdersFromCart(context.Background(), "buyer-1", validAddress(), validAddress(), "card")
	require.Error(t, err)
	assert.Empty(t, pub.envelopes)
}

func TestDedupReservedProducts(t *testing.T) {
	// the same product appearing in two line items is reserved once
	groups := cart.GroupByVendor([]cart.Item{
		{ID: "i1", ProductID: "p1", Quantity: 1, PriceCents: 100, VendorID: "v1", VendorName: "A"},
		{ID: "i2", ProductID: "p1", Quantity: 2, PriceCents: 100, VendorID: "v1", VendorName: "A"},
	})
	store := &fakeStore{}
	svc := &Service{
		Carts:   &fakeCarts{cartID: "cart-1", groups: groups},
		Store:   store,
		Payment: &fakePayment{ref: "TXN-1-ABC"},
	}
	_, err := svc.CreateOrdersFromCart(context.Background(), "buyer-1", validAddress(), validAddress(), "card")
	require.NoError(t, err)
	assert.Equal(t, []string{"p1"}, store.set.ReserveProducts)
}
