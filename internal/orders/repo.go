package orders

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type Repo struct{ DB *pgxpool.Pool }

const orderCols = `id, user_id, total_cents, currency,
	coalesce(shipping_address, 'null'::jsonb), coalesce(billing_address, 'null'::jsonb),
	payment_method, payment_status, coalesce(parent_id, ''), notes, created, updated`

func scanOrder(row pgx.Row) (Order, error) {
	var o Order
	err := row.Scan(&o.ID, &o.UserID, &o.TotalCents, &o.Currency,
		&o.ShippingAddress, &o.BillingAddress,
		&o.PaymentMethod, &o.PaymentStatus, &o.ParentID, &o.Notes, &o.Created, &o.Updated)
	if errors.Is(err, pgx.ErrNoRows) {
		return Order{}, ErrNotFound
	}
	return o, err
}

func (r *Repo) Get(ctx context.Context, id string) (Order, error) {
	row := r.DB.QueryRow(ctx, `SELECT `+orderCols+` FROM orders WHERE id=$1`, id)
	return scanOrder(row)
}

// MyOrders lists the user's non-cart orders, newest first, with the total row
// count for pagination.
func (r *Repo) MyOrders(ctx context.Context, userID string, page, perPage int) ([]Order, int, error) {
	if page < 1 {
		page = 1
	}
	if perPage < 1 {
		perPage = 20
	}
	var total int
	err := r.DB.QueryRow(ctx,
		`SELECT count(*) FROM orders WHERE user_id=$1 AND payment_status <> 'cart'`, userID).Scan(&total)
	if err != nil {
		return nil, 0, err
	}
	rows, err := r.DB.Query(ctx, `SELECT `+orderCols+` FROM orders
		WHERE user_id=$1 AND payment_status <> 'cart'
		ORDER BY created DESC LIMIT $2 OFFSET $3`,
		userID, perPage, (page-1)*perPage)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var out []Order
	for rows.Next() {
		o, err := scanOrder(rows)
		if err != nil {
			return nil, 0, err
		}
		out = append(out, o)
	}
	return out, total, rows.Err()
}

func (r *Repo) SubOrders(ctx context.Context, parentID string) ([]Order, error) {
	rows, err := r.DB.Query(ctx, `SELECT `+orderCols+` FROM orders
		WHERE parent_id=$1 ORDER BY created`, parentID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Order
	for rows.Next() {
		o, err := scanOrder(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, o)
	}
	return out, rows.Err()
}

func (r *Repo) Items(ctx context.Context, orderID string) ([]ItemDetail, error) {
	rows, err := r.DB.Query(ctx, `
		SELECT i.id, i.order_id, i.product_id, i.quantity, i.status, i.created, i.updated,
		       p.title, p.price_cents, p.seller_id, u.username
		FROM order_items i
		JOIN products p ON p.id = i.product_id
		JOIN users u ON u.id = p.seller_id
		WHERE i.order_id = $1
		ORDER BY i.created`, orderID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanItemDetails(rows)
}

func scanItemDetails(rows pgx.Rows) ([]ItemDetail, error) {
	var out []ItemDetail
	for rows.Next() {
		var d ItemDetail
		if err := rows.Scan(&d.ID, &d.OrderID, &d.ProductID, &d.Quantity, &d.Status,
			&d.Created, &d.Updated, &d.ProductTitle, &d.PriceCents, &d.SellerID, &d.SellerName); err != nil {
			return nil, err
		}
		out = append(out, d)
	}
	return out, rows.Err()
}

// Details loads an order together with its sub-orders and all their items.
// For a sub-order (no children) the items are its own.
func (r *Repo) Details(ctx context.Context, userID, orderID string) (OrderDetails, error) {
	o, err := r.Get(ctx, orderID)
	if err != nil {
		return OrderDetails{}, err
	}
	if o.UserID != userID {
		return OrderDetails{}, ErrNotFound
	}
	subs, err := r.SubOrders(ctx, orderID)
	if err != nil {
		return OrderDetails{}, err
	}
	var items []ItemDetail
	if len(subs) > 0 {
		for _, sub := range subs {
			batch, err := r.Items(ctx, sub.ID)
			if err != nil {
				return OrderDetails{}, err
			}
			items = append(items, batch...)
		}
	} else {
		items, err = r.Items(ctx, orderID)
		if err != nil {
			return OrderDetails{}, err
		}
	}
	return OrderDetails{Order: o, SubOrders: subs, Items: items}, nil
}

// Waiting lists the buyer's paid sub-orders that still have items before the
// "sent" stage, grouped per order with the vendor identity.
func (r *Repo) Waiting(ctx context.Context, userID string) ([]WaitingOrder, error) {
	rows, err := r.DB.Query(ctx, fmt.Sprintf(`
		SELECT o.id, o.user_id, o.total_cents, o.currency,
		       coalesce(o.shipping_address, 'null'::jsonb), coalesce(o.billing_address, 'null'::jsonb),
		       o.payment_method, o.payment_status, coalesce(o.parent_id, ''), o.notes, o.created, o.updated,
		       i.id, i.quantity, i.status, i.created, i.updated,
		       p.id, p.title, p.price_cents, p.seller_id, u.username
		FROM order_items i
		JOIN orders o ON o.id = i.order_id
		JOIN products p ON p.id = i.product_id
		JOIN users u ON u.id = p.seller_id
		WHERE o.user_id = $1
		  AND o.payment_status = 'paid'
		  AND o.parent_id IS NOT NULL
		  AND i.status IN ('%s', '%s')
		ORDER BY o.created DESC, i.created`,
		StatusInPreparation, StatusReadyToBeSent), userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	byOrder := map[string]*WaitingOrder{}
	var ordered []string
	for rows.Next() {
		var o Order
		var d ItemDetail
		if err := rows.Scan(&o.ID, &o.UserID, &o.TotalCents, &o.Currency,
			&o.ShippingAddress, &o.BillingAddress,
			&o.PaymentMethod, &o.PaymentStatus, &o.ParentID, &o.Notes, &o.Created, &o.Updated,
			&d.ID, &d.Quantity, &d.Status, &d.Created, &d.Updated,
			&d.ProductID, &d.ProductTitle, &d.PriceCents, &d.SellerID, &d.SellerName); err != nil {
			return nil, err
		}
		d.OrderID = o.ID
		w, ok := byOrder[o.ID]
		if !ok {
			w = &WaitingOrder{Order: o, Seller: UserRef{ID: d.SellerID, Name: d.SellerName}}
			byOrder[o.ID] = w
			ordered = append(ordered, o.ID)
		}
		w.Items = append(w.Items, d)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	out := make([]WaitingOrder, 0, len(ordered))
	for _, id := range ordered {
		out = append(out, *byOrder[id])
	}
	return out, nil
}
