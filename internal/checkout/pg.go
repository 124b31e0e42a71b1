package checkout

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// PG writes an OrderSet in one transaction: parent, sub-orders, line items,
// product reservations, cart wipe. Either everything lands or nothing does.
type PG struct{ DB *pgxpool.Pool }

func (s *PG) CreateOrderSet(ctx context.Context, set OrderSet) error {
	tx, err := s.DB.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback(ctx) }()

	const insertOrder = `
		INSERT INTO orders (id, user_id, total_cents, currency, shipping_address,
			billing_address, payment_method, payment_status, parent_id, notes)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10)`

	p := set.Parent
	if _, err := tx.Exec(ctx, insertOrder,
		p.ID, p.UserID, p.TotalCents, p.Currency, p.ShippingAddress,
		p.BillingAddress, p.PaymentMethod, p.PaymentStatus, nil, p.Notes); err != nil {
		return err
	}

	for _, sub := range set.Subs {
		o := sub.Order
		if _, err := tx.Exec(ctx, insertOrder,
			o.ID, o.UserID, o.TotalCents, o.Currency, o.ShippingAddress,
			o.BillingAddress, o.PaymentMethod, o.PaymentStatus, o.ParentID, o.Notes); err != nil {
			return err
		}
		for _, it := range sub.Items {
			if _, err := tx.Exec(ctx, `
				INSERT INTO order_items (id, order_id, product_id, quantity, status)
				VALUES ($1,$2,$3,$4,$5)`,
				it.ID, it.OrderID, it.ProductID, it.Quantity, it.Status); err != nil {
				return err
			}
		}
	}

	if len(set.ReserveProducts) > 0 {
		if _, err := tx.Exec(ctx,
			`UPDATE products SET status='Réservé', updated=now() WHERE id = ANY($1)`,
			set.ReserveProducts); err != nil {
			return err
		}
	}

	if _, err := tx.Exec(ctx, `DELETE FROM order_items WHERE order_id=$1`, set.CartID); err != nil {
		return err
	}
	if _, err := tx.Exec(ctx,
		`UPDATE orders SET total_cents=0, updated=now() WHERE id=$1`, set.CartID); err != nil {
		return err
	}

	return tx.Commit(ctx)
}
