package cart

import (
	"context"

	"github.com/brocantic/marketplace/internal/orders"
)

// Store is the persistence contract for the cart. Every mutating call
// recomputes and persists the owning cart's total in the same transaction,
// so the stored total always equals sum(price * quantity).
type Store interface {
	// GetOrCreateCart returns the user's single open cart, creating it on
	// demand. Uniqueness of the open cart is enforced by the store.
	GetOrCreateCart(ctx context.Context, userID string) (orders.Order, error)
	Items(ctx context.Context, cartID string) ([]Item, error)
	GetItem(ctx context.Context, itemID string) (Item, error)
	// AddItem inserts a line item, or increments the quantity when the
	// product is already in the cart.
	AddItem(ctx context.Context, cartID, productID string, qty int) (Item, error)
	SetItemQuantity(ctx context.Context, itemID string, qty int) (Item, error)
	RemoveItem(ctx context.Context, itemID string) error
	// Clear deletes all items and zeroes the total; the cart row survives.
	Clear(ctx context.Context, cartID string) error
}

type Service struct {
	store Store
}

func NewService(store Store) *Service {
	return &Service{store: store}
}

// Open returns the user's open cart, creating one if needed.
func (s *Service) Open(ctx context.Context, userID string) (orders.Order, error) {
	return s.store.GetOrCreateCart(ctx, userID)
}

func (s *Service) Items(ctx context.Context, userID string) (orders.Order, []Item, error) {
	cart, err := s.store.GetOrCreateCart(ctx, userID)
	if err != nil {
		return orders.Order{}, nil, err
	}
	items, err := s.store.Items(ctx, cart.ID)
	if err != nil {
		return orders.Order{}, nil, err
	}
	return cart, items, nil
}

func (s *Service) AddItem(ctx context.Context, userID, productID string, qty int) (Item, error) {
	if qty <= 0 {
		return Item{}, ErrInvalidQuantity
	}
	cart, err := s.store.GetOrCreateCart(ctx, userID)
	if err != nil {
		return Item{}, err
	}
	return s.store.AddItem(ctx, cart.ID, productID, qty)
}

// UpdateItemQuantity sets an exact quantity. Zero or negative is rejected;
// removal is a separate operation the caller must choose explicitly.
func (s *Service) UpdateItemQuantity(ctx context.Context, userID, itemID string, qty int) (Item, error) {
	if qty <= 0 {
		return Item{}, ErrInvalidQuantity
	}
	if err := s.ownItem(ctx, userID, itemID); err != nil {
		return Item{}, err
	}
	return s.store.SetItemQuantity(ctx, itemID, qty)
}

func (s *Service) RemoveItem(ctx context.Context, userID, itemID string) error {
	if err := s.ownItem(ctx, userID, itemID); err != nil {
		return err
	}
	return s.store.RemoveItem(ctx, itemID)
}

func (s *Service) Clear(ctx context.Context, userID string) error {
	cart, err := s.store.GetOrCreateCart(ctx, userID)
	if err != nil {
		return err
	}
	return s.store.Clear(ctx, cart.ID)
}

func (s *Service) ItemCount(ctx context.Context, userID string) (int, error) {
	_, items, err := s.Items(ctx, userID)
	if err != nil {
		return 0, err
	}
	n := 0
	for _, it := range items {
		n += it.Quantity
	}
	return n, nil
}

// ItemsByVendor returns the cart grouped per vendor, the shape the checkout
// fan-out consumes.
func (s *Service) ItemsByVendor(ctx context.Context, userID string) ([]VendorGroup, error) {
	_, items, err := s.Items(ctx, userID)
	if err != nil {
		return nil, err
	}
	return GroupByVendor(items), nil
}

func (s *Service) ownItem(ctx context.Context, userID, itemID string) error {
	item, err := s.store.GetItem(ctx, itemID)
	if err != nil {
		return err
	}
	cart, err := s.store.GetOrCreateCart(ctx, userID)
	if err != nil {
		return err
	}
	if item.OrderID != cart.ID {
		return ErrNotCartItem
	}
	return nil
}
