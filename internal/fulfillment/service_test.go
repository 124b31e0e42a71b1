package fulfillment

import (
	"context"
	"encoding/json"
	"testing"

	kafkago "github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/brocantic/marketplace/internal/events"
	"github.com/brocantic/marketplace/internal/orders"
)

type fakeFulfillmentStore struct {
	items   map[string]*ItemRecord
	counts  map[orders.ItemStatus]int
	revenue int64
}

func newFakeFulfillmentStore(items ...ItemRecord) *fakeFulfillmentStore {
	s := &fakeFulfillmentStore{items: map[string]*ItemRecord{}}
	for i := range items {
		it := items[i]
		s.items[it.ID] = &it
	}
	return s
}

func (f *fakeFulfillmentStore) GetItem(ctx context.Context, itemID string) (ItemRecord, error) {
	it, ok := f.items[itemID]
	if !ok {
		return ItemRecord{}, orders.ErrNotFound
	}
	return *it, nil
}

func (f *fakeFulfillmentStore) SetItemStatus(ctx context.Context, itemID string, status orders.ItemStatus) error {
	it, ok := f.items[itemID]
	if !ok {
		return orders.ErrNotFound
	}
	it.Status = status
	return nil
}

func (f *fakeFulfillmentStore) SellerOrders(ctx context.Context, sellerID string, page, perPage int) ([]Bundle, int, error) {
	return nil, 0, nil
}

func (f *fakeFulfillmentStore) Bundles(ctx context.Context, sellerID string, statuses []orders.ItemStatus) ([]Bundle, error) {
	return nil, nil
}

func (f *fakeFulfillmentStore) SellerOrderItems(ctx context.Context, orderID, sellerID string) ([]orders.ItemDetail, error) {
	var out []orders.ItemDetail
	for _, it := range f.items {
		if it.OrderID == orderID && it.SellerID == sellerID {
			out = append(out, orders.ItemDetail{Item: it.Item, SellerID: it.SellerID})
		}
	}
	return out, nil
}

func (f *fakeFulfillmentStore) StatusCounts(ctx context.Context, sellerID string) (map[orders.ItemStatus]int, error) {
	return f.counts, nil
}

func (f *fakeFulfillmentStore) Revenue(ctx context.Context, sellerID string) (int64, error) {
	return f.revenue, nil
}

type capturePublisher struct {
	envelopes []events.Envelope
}

func (c *capturePublisher) Publish(key, value []byte, headers ...kafkago.Header) {
	var env events.Envelope
	if err := json.Unmarshal(value, &env); err == nil {
		c.envelopes = append(c.envelopes, env)
	}
}

func record(id, orderID, seller, buyer string, status orders.ItemStatus, paid bool) ItemRecord {
	return ItemRecord{
		Item:      orders.Item{ID: id, OrderID: orderID, ProductID: "prod-" + id, Quantity: 1, Status: status},
		SellerID:  seller,
		BuyerID:   buyer,
		OrderPaid: paid,
	}
}

func TestUpdateItemStatus(t *testing.T) {
	ctx := context.Background()

	t.Run("seller advances preparation", func(t *testing.T) {
		store := newFakeFulfillmentStore(record("i1", "o1", "seller", "buyer", orders.StatusInPreparation, true))
		pub := &capturePublisher{}
		svc := &Service{Store: store, Producer: pub, Service: "test"}

		require.NoError(t, svc.UpdateItemStatus(ctx, "seller", "i1", orders.StatusReadyToBeSent))
		assert.Equal(t, orders.StatusReadyToBeSent, store.items["i1"].Status)

		require.Len(t, pub.envelopes, 1)
		assert.Equal(t, events.EventOrderItemUpdated, pub.envelopes[0].EventType)
	})

	t.Run("buyer cannot ship", func(t *testing.T) {
		store := newFakeFulfillmentStore(record("i1", "o1", "seller", "buyer", orders.StatusInPreparation, true))
		svc := &Service{Store: store}
		err := svc.UpdateItemStatus(ctx, "buyer", "i1", orders.StatusReadyToBeSent)
		assert.ErrorIs(t, err, ErrForbidden)
	})

	t.Run("only the buyer confirms delivery", func(t *testing.T) {
		store := newFakeFulfillmentStore(record("i1", "o1", "seller", "buyer", orders.StatusSent, true))
		svc := &Service{Store: store}

		assert.ErrorIs(t, svc.UpdateItemStatus(ctx, "seller", "i1", orders.StatusDelivered), ErrForbidden)
		require.NoError(t, svc.UpdateItemStatus(ctx, "buyer", "i1", orders.StatusDelivered))
		assert.Equal(t, orders.StatusDelivered, store.items["i1"].Status)
	})

	t.Run("skipping a stage is rejected", func(t *testing.T) {
		store := newFakeFulfillmentStore(record("i1", "o1", "seller", "buyer", orders.StatusInPreparation, true))
		svc := &Service{Store: store}
		err := svc.UpdateItemStatus(ctx, "seller", "i1", orders.StatusSent)
		assert.ErrorIs(t, err, ErrBadTransition)
	})

	t.Run("unpaid order is untouchable", func(t *testing.T) {
		store := newFakeFulfillmentStore(record("i1", "o1", "seller", "buyer", orders.StatusInPreparation, false))
		svc := &Service{Store: store}
		err := svc.UpdateItemStatus(ctx, "seller", "i1", orders.StatusReadyToBeSent)
		assert.ErrorIs(t, err, ErrForbidden)
	})

	t.Run("unknown status", func(t *testing.T) {
		store := newFakeFulfillmentStore(record("i1", "o1", "seller", "buyer", orders.StatusInPreparation, true))
		svc := &Service{Store: store}
		err := svc.UpdateItemStatus(ctx, "seller", "i1", "expedited")
		assert.ErrorIs(t, err, ErrUnknownStatus)
	})

	t.Run("terminal states stay put", func(t *testing.T) {
		store := newFakeFulfillmentStore(record("i1", "o1", "seller", "buyer", orders.StatusCancelled, true))
		svc := &Service{Store: store}
		err := svc.UpdateItemStatus(ctx, "seller", "i1", orders.StatusReadyToBeSent)
		assert.ErrorIs(t, err, ErrBadTransition)
	})

	t.Run("missing item", func(t *testing.T) {
		svc := &Service{Store: newFakeFulfillmentStore()}
		err := svc.UpdateItemStatus(ctx, "seller", "nope", orders.StatusCancelled)
		assert.ErrorIs(t, err, orders.ErrNotFound)
	})
}

func TestBulkAdvance(t *testing.T) {
	ctx := context.Background()
	store := newFakeFulfillmentStore(
		record("i1", "o1", "seller", "buyer", orders.StatusInPreparation, true),
		record("i2", "o1", "seller", "buyer", orders.StatusInPreparation, true),
		record("i3", "o1", "seller", "buyer", orders.StatusSent, true),
		record("i4", "o1", "other-seller", "buyer", orders.StatusInPreparation, true),
		record("i5", "o2", "seller", "buyer", orders.StatusInPreparation, true),
	)
	pub := &capturePublisher{}
	svc := &Service{Store: store, Producer: pub, Service: "test"}

	moved, err := svc.MarkOrderReadyToSend(ctx, "seller", "o1")
	require.NoError(t, err)
	assert.Equal(t, 2, moved)
	assert.Equal(t, orders.StatusReadyToBeSent, store.items["i1"].Status)
	assert.Equal(t, orders.StatusReadyToBeSent, store.items["i2"].Status)
	// items in other states, other orders and other sellers are untouched
	assert.Equal(t, orders.StatusSent, store.items["i3"].Status)
	assert.Equal(t, orders.StatusInPreparation, store.items["i4"].Status)
	assert.Equal(t, orders.StatusInPreparation, store.items["i5"].Status)
	assert.Len(t, pub.envelopes, 2)

	moved, err = svc.MarkOrderSent(ctx, "seller", "o1")
	require.NoError(t, err)
	assert.Equal(t, 2, moved)
	assert.Equal(t, orders.StatusSent, store.items["i1"].Status)

	moved, err = svc.MarkOrderSent(ctx, "seller", "o1")
	require.NoError(t, err)
	assert.Zero(t, moved)
}

func TestStats(t *testing.T) {
	store := newFakeFulfillmentStore()
	store.counts = map[orders.ItemStatus]int{
		orders.StatusInPreparation: 3,
		orders.StatusReadyToBeSent: 2,
		orders.StatusSent:          1,
		orders.StatusDelivered:     7,
	}
	store.revenue = 123400
	svc := &Service{Store: store}

	stats, err := svc.Stats(context.Background(), "seller")
	require.NoError(t, err)
	assert.Equal(t, Stats{
		PendingOrders:     3,
		ReadyToSend:       2,
		Sent:              1,
		Delivered:         7,
		TotalRevenueCents: 123400,
	}, stats)
}
