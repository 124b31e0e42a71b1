package fulfillment

import (
	"context"

	"github.com/brocantic/marketplace/internal/events"
	"github.com/brocantic/marketplace/internal/orders"
)

type Store interface {
	GetItem(ctx context.Context, itemID string) (ItemRecord, error)
	SetItemStatus(ctx context.Context, itemID string, status orders.ItemStatus) error
	// SellerOrders pages through every paid order containing the seller's
	// products, newest first.
	SellerOrders(ctx context.Context, sellerID string, page, perPage int) ([]Bundle, int, error)
	// Bundles returns paid orders holding the seller's items currently in
	// one of the given statuses.
	Bundles(ctx context.Context, sellerID string, statuses []orders.ItemStatus) ([]Bundle, error)
	// SellerOrderItems returns the seller's own items within one order.
	SellerOrderItems(ctx context.Context, orderID, sellerID string) ([]orders.ItemDetail, error)
	StatusCounts(ctx context.Context, sellerID string) (map[orders.ItemStatus]int, error)
	// Revenue sums price*quantity of the seller's items on paid orders.
	Revenue(ctx context.Context, sellerID string) (int64, error)
}

type Service struct {
	Store    Store
	Producer events.Publisher
	Service  string
}

// PendingOrders is the seller's to-do list: paid orders with items not yet
// handed to the carrier.
func (s *Service) PendingOrders(ctx context.Context, sellerID string) ([]Bundle, error) {
	return s.Store.Bundles(ctx, sellerID,
		[]orders.ItemStatus{orders.StatusInPreparation, orders.StatusReadyToBeSent})
}

func (s *Service) ReadyToSendOrders(ctx context.Context, sellerID string) ([]Bundle, error) {
	return s.Store.Bundles(ctx, sellerID, []orders.ItemStatus{orders.StatusReadyToBeSent})
}

func (s *Service) SellerOrders(ctx context.Context, sellerID string, page, perPage int) ([]Bundle, int, error) {
	return s.Store.SellerOrders(ctx, sellerID, page, perPage)
}

// UpdateItemStatus advances one line item along the fulfillment sequence.
// Sellers drive preparation/shipping/cancellation; the delivery confirmation
// belongs to the buyer. Transitions outside the table are rejected.
func (s *Service) UpdateItemStatus(ctx context.Context, actorID, itemID string, next orders.ItemStatus) error {
	if !orders.ValidStatus(next) {
		return ErrUnknownStatus
	}
	rec, err := s.Store.GetItem(ctx, itemID)
	if err != nil {
		return err
	}
	if !rec.OrderPaid {
		return ErrForbidden
	}
	if next == orders.StatusDelivered {
		if actorID != rec.BuyerID {
			return ErrForbidden
		}
	} else if actorID != rec.SellerID {
		return ErrForbidden
	}
	if !orders.CanTransition(rec.Status, next) {
		return ErrBadTransition
	}
	if err := s.Store.SetItemStatus(ctx, itemID, next); err != nil {
		return err
	}
	s.emitItemUpdated(rec, next)
	return nil
}

// MarkOrderReadyToSend bulk-advances the seller's in-preparation items of
// one order; items in other states are left alone. Returns how many moved.
func (s *Service) MarkOrderReadyToSend(ctx context.Context, sellerID, orderID string) (int, error) {
	return s.bulkAdvance(ctx, sellerID, orderID, orders.StatusInPreparation, orders.StatusReadyToBeSent)
}

// MarkOrderSent bulk-advances the seller's ready items of one order.
func (s *Service) MarkOrderSent(ctx context.Context, sellerID, orderID string) (int, error) {
	return s.bulkAdvance(ctx, sellerID, orderID, orders.StatusReadyToBeSent, orders.StatusSent)
}

func (s *Service) bulkAdvance(ctx context.Context, sellerID, orderID string, from, to orders.ItemStatus) (int, error) {
	items, err := s.Store.SellerOrderItems(ctx, orderID, sellerID)
	if err != nil {
		return 0, err
	}
	moved := 0
	for _, it := range items {
		if it.Status != from {
			continue
		}
		if err := s.Store.SetItemStatus(ctx, it.ID, to); err != nil {
			return moved, err
		}
		s.emitItemUpdated(ItemRecord{Item: it.Item, SellerID: it.SellerID}, to)
		moved++
	}
	return moved, nil
}

// Stats aggregates the seller dashboard numbers: item counts per stage plus
// total revenue over paid orders.
func (s *Service) Stats(ctx context.Context, sellerID string) (Stats, error) {
	counts, err := s.Store.StatusCounts(ctx, sellerID)
	if err != nil {
		return Stats{}, err
	}
	revenue, err := s.Store.Revenue(ctx, sellerID)
	if err != nil {
		return Stats{}, err
	}
	return Stats{
		PendingOrders:     counts[orders.StatusInPreparation],
		ReadyToSend:       counts[orders.StatusReadyToBeSent],
		Sent:              counts[orders.StatusSent],
		Delivered:         counts[orders.StatusDelivered],
		TotalRevenueCents: revenue,
	}, nil
}

func (s *Service) emitItemUpdated(rec ItemRecord, next orders.ItemStatus) {
	if s.Producer == nil {
		return
	}
	events.Emit(s.Producer, events.EventOrderItemUpdated, s.Service, "", rec.OrderID,
		events.OrderItemUpdatedPayload{
			ItemID:    rec.ID,
			OrderID:   rec.OrderID,
			ProductID: rec.ProductID,
			SellerID:  rec.SellerID,
			OldStatus: string(rec.Status),
			NewStatus: string(next),
		})
}
