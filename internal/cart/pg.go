package cart

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/brocantic/marketplace/internal/orders"
)

// PG implements Store on Postgres. The one-open-cart invariant lives in the
// partial unique index orders_one_cart_per_user.
type PG struct{ DB *pgxpool.Pool }

const itemCols = `i.id, i.order_id, i.product_id, i.quantity, i.status,
	p.title, p.price_cents, p.seller_id, u.username, i.created`

func scanItem(row pgx.Row) (Item, error) {
	var it Item
	err := row.Scan(&it.ID, &it.OrderID, &it.ProductID, &it.Quantity, &it.Status,
		&it.ProductTitle, &it.PriceCents, &it.VendorID, &it.VendorName, &it.Created)
	if errors.Is(err, pgx.ErrNoRows) {
		return Item{}, orders.ErrNotFound
	}
	return it, err
}

func (s *PG) GetOrCreateCart(ctx context.Context, userID string) (orders.Order, error) {
	_, err := s.DB.Exec(ctx, `
		INSERT INTO orders (id, user_id, total_cents, currency, payment_status)
		VALUES ($1, $2, 0, $3, 'cart')
		ON CONFLICT (user_id) WHERE payment_status = 'cart' DO NOTHING`,
		uuid.NewString(), userID, orders.DefaultCurrency)
	if err != nil {
		return orders.Order{}, err
	}
	var o orders.Order
	err = s.DB.QueryRow(ctx, `
		SELECT id, user_id, total_cents, currency, payment_status, notes, created, updated
		FROM orders WHERE user_id=$1 AND payment_status='cart'`, userID).
		Scan(&o.ID, &o.UserID, &o.TotalCents, &o.Currency, &o.PaymentStatus, &o.Notes, &o.Created, &o.Updated)
	return o, err
}

func (s *PG) Items(ctx context.Context, cartID string) ([]Item, error) {
	rows, err := s.DB.Query(ctx, `SELECT `+itemCols+`
		FROM order_items i
		JOIN products p ON p.id = i.product_id
		JOIN users u ON u.id = p.seller_id
		WHERE i.order_id = $1
		ORDER BY i.created DESC`, cartID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Item
	for rows.Next() {
		it, err := scanItem(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, it)
	}
	return out, rows.Err()
}

func (s *PG) GetItem(ctx context.Context, itemID string) (Item, error) {
	row := s.DB.QueryRow(ctx, `SELECT `+itemCols+`
		FROM order_items i
		JOIN products p ON p.id = i.product_id
		JOIN users u ON u.id = p.seller_id
		WHERE i.id = $1`, itemID)
	return scanItem(row)
}

func (s *PG) AddItem(ctx context.Context, cartID, productID string, qty int) (Item, error) {
	var itemID string
	err := s.withTx(ctx, func(tx pgx.Tx) error {
		err := tx.QueryRow(ctx, `
			INSERT INTO order_items (id, order_id, product_id, quantity, status)
			VALUES ($1, $2, $3, $4, $5)
			ON CONFLICT (order_id, product_id)
			DO UPDATE SET quantity = order_items.quantity + EXCLUDED.quantity, updated = now()
			RETURNING id`,
			uuid.NewString(), cartID, productID, qty, orders.StatusInPreparation).Scan(&itemID)
		if err != nil {
			return err
		}
		return recomputeTotal(ctx, tx, cartID)
	})
	if err != nil {
		return Item{}, err
	}
	return s.GetItem(ctx, itemID)
}

func (s *PG) SetItemQuantity(ctx context.Context, itemID string, qty int) (Item, error) {
	err := s.withTx(ctx, func(tx pgx.Tx) error {
		var cartID string
		err := tx.QueryRow(ctx, `UPDATE order_items SET quantity=$2, updated=now()
			WHERE id=$1 RETURNING order_id`, itemID, qty).Scan(&cartID)
		if errors.Is(err, pgx.ErrNoRows) {
			return orders.ErrNotFound
		}
		if err != nil {
			return err
		}
		return recomputeTotal(ctx, tx, cartID)
	})
	if err != nil {
		return Item{}, err
	}
	return s.GetItem(ctx, itemID)
}

func (s *PG) RemoveItem(ctx context.Context, itemID string) error {
	return s.withTx(ctx, func(tx pgx.Tx) error {
		var cartID string
		err := tx.QueryRow(ctx, `DELETE FROM order_items WHERE id=$1 RETURNING order_id`, itemID).Scan(&cartID)
		if errors.Is(err, pgx.ErrNoRows) {
			return orders.ErrNotFound
		}
		if err != nil {
			return err
		}
		return recomputeTotal(ctx, tx, cartID)
	})
}

func (s *PG) Clear(ctx context.Context, cartID string) error {
	return s.withTx(ctx, func(tx pgx.Tx) error {
		if _, err := tx.Exec(ctx, `DELETE FROM order_items WHERE order_id=$1`, cartID); err != nil {
			return err
		}
		_, err := tx.Exec(ctx, `UPDATE orders SET total_cents=0, updated=now() WHERE id=$1`, cartID)
		return err
	})
}

func recomputeTotal(ctx context.Context, tx pgx.Tx, cartID string) error {
	_, err := tx.Exec(ctx, `
		UPDATE orders SET total_cents = (
			SELECT coalesce(sum(p.price_cents * i.quantity), 0)
			FROM order_items i JOIN products p ON p.id = i.product_id
			WHERE i.order_id = $1
		), updated = now()
		WHERE id = $1`, cartID)
	return err
}

func (s *PG) withTx(ctx context.Context, fn func(pgx.Tx) error) error {
	tx, err := s.DB.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback(ctx) }()

	if err := fn(tx); err != nil {
		return err
	}
	return tx.Commit(ctx)
}
