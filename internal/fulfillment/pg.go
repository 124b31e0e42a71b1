package fulfillment

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/brocantic/marketplace/internal/orders"
)

type PG struct{ DB *pgxpool.Pool }

func (s *PG) GetItem(ctx context.Context, itemID string) (ItemRecord, error) {
	var rec ItemRecord
	err := s.DB.QueryRow(ctx, `
		SELECT i.id, i.order_id, i.product_id, i.quantity, i.status, i.created, i.updated,
		       p.seller_id, o.user_id, p.price_cents, o.payment_status = 'paid'
		FROM order_items i
		JOIN products p ON p.id = i.product_id
		JOIN orders o ON o.id = i.order_id
		WHERE i.id = $1`, itemID).
		Scan(&rec.ID, &rec.OrderID, &rec.ProductID, &rec.Quantity, &rec.Status, &rec.Created, &rec.Updated,
			&rec.SellerID, &rec.BuyerID, &rec.PriceCents, &rec.OrderPaid)
	if errors.Is(err, pgx.ErrNoRows) {
		return ItemRecord{}, orders.ErrNotFound
	}
	return rec, err
}

func (s *PG) SetItemStatus(ctx context.Context, itemID string, status orders.ItemStatus) error {
	ct, err := s.DB.Exec(ctx,
		`UPDATE order_items SET status=$2, updated=now() WHERE id=$1`, itemID, status)
	if err != nil {
		return err
	}
	if ct.RowsAffected() == 0 {
		return orders.ErrNotFound
	}
	return nil
}

const bundleSelect = `
	SELECT o.id, o.user_id, o.total_cents, o.currency,
	       coalesce(o.shipping_address, 'null'::jsonb), coalesce(o.billing_address, 'null'::jsonb),
	       o.payment_method, o.payment_status, coalesce(o.parent_id, ''), o.notes, o.created, o.updated,
	       b.id, b.name, b.username, b.email, b.phone,
	       i.id, i.product_id, i.quantity, i.status, i.created, i.updated,
	       p.title, p.price_cents, p.seller_id, su.username
	FROM order_items i
	JOIN orders o ON o.id = i.order_id
	JOIN users b ON b.id = o.user_id
	JOIN products p ON p.id = i.product_id
	JOIN users su ON su.id = p.seller_id`

func (s *PG) scanBundles(rows pgx.Rows) ([]Bundle, error) {
	byOrder := map[string]*Bundle{}
	var seen []string
	for rows.Next() {
		var o orders.Order
		var buyer orders.UserRef
		var username string
		var d orders.ItemDetail
		if err := rows.Scan(&o.ID, &o.UserID, &o.TotalCents, &o.Currency,
			&o.ShippingAddress, &o.BillingAddress,
			&o.PaymentMethod, &o.PaymentStatus, &o.ParentID, &o.Notes, &o.Created, &o.Updated,
			&buyer.ID, &buyer.Name, &username, &buyer.Email, &buyer.Phone,
			&d.ID, &d.ProductID, &d.Quantity, &d.Status, &d.Created, &d.Updated,
			&d.ProductTitle, &d.PriceCents, &d.SellerID, &d.SellerName); err != nil {
			return nil, err
		}
		if buyer.Name == "" {
			buyer.Name = username
		}
		d.OrderID = o.ID
		b, ok := byOrder[o.ID]
		if !ok {
			b = &Bundle{Order: o, Buyer: buyer, ShippingAddress: o.ShippingAddress}
			byOrder[o.ID] = b
			seen = append(seen, o.ID)
		}
		b.Items = append(b.Items, d)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	out := make([]Bundle, 0, len(seen))
	for _, id := range seen {
		out = append(out, *byOrder[id])
	}
	return out, nil
}

func (s *PG) Bundles(ctx context.Context, sellerID string, statuses []orders.ItemStatus) ([]Bundle, error) {
	rows, err := s.DB.Query(ctx, bundleSelect+`
		WHERE p.seller_id = $1
		  AND i.status = ANY($2)
		  AND o.payment_status = 'paid'
		ORDER BY o.created DESC, i.created`, sellerID, statuses)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return s.scanBundles(rows)
}

func (s *PG) SellerOrders(ctx context.Context, sellerID string, page, perPage int) ([]Bundle, int, error) {
	if page < 1 {
		page = 1
	}
	if perPage < 1 {
		perPage = 20
	}
	var total int
	err := s.DB.QueryRow(ctx, `
		SELECT count(DISTINCT i.order_id)
		FROM order_items i
		JOIN products p ON p.id = i.product_id
		JOIN orders o ON o.id = i.order_id
		WHERE p.seller_id = $1 AND o.payment_status = 'paid'`, sellerID).Scan(&total)
	if err != nil {
		return nil, 0, err
	}

	rows, err := s.DB.Query(ctx, fmt.Sprintf(`%s
		WHERE p.seller_id = $1
		  AND o.payment_status = 'paid'
		  AND o.id IN (
			SELECT i2.order_id
			FROM order_items i2
			JOIN products p2 ON p2.id = i2.product_id
			JOIN orders o2 ON o2.id = i2.order_id
			WHERE p2.seller_id = $1 AND o2.payment_status = 'paid'
			GROUP BY i2.order_id
			ORDER BY max(o2.created) DESC
			LIMIT $2 OFFSET $3
		  )
		ORDER BY o.created DESC, i.created`, bundleSelect),
		sellerID, perPage, (page-1)*perPage)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()
	bundles, err := s.scanBundles(rows)
	return bundles, total, err
}

func (s *PG) SellerOrderItems(ctx context.Context, orderID, sellerID string) ([]orders.ItemDetail, error) {
	rows, err := s.DB.Query(ctx, `
		SELECT i.id, i.order_id, i.product_id, i.quantity, i.status, i.created, i.updated,
		       p.title, p.price_cents, p.seller_id, u.username
		FROM order_items i
		JOIN products p ON p.id = i.product_id
		JOIN users u ON u.id = p.seller_id
		WHERE i.order_id = $1 AND p.seller_id = $2
		ORDER BY i.created`, orderID, sellerID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []orders.ItemDetail
	for rows.Next() {
		var d orders.ItemDetail
		if err := rows.Scan(&d.ID, &d.OrderID, &d.ProductID, &d.Quantity, &d.Status,
			&d.Created, &d.Updated, &d.ProductTitle, &d.PriceCents, &d.SellerID, &d.SellerName); err != nil {
			return nil, err
		}
		out = append(out, d)
	}
	return out, rows.Err()
}

func (s *PG) StatusCounts(ctx context.Context, sellerID string) (map[orders.ItemStatus]int, error) {
	rows, err := s.DB.Query(ctx, `
		SELECT i.status, count(*)
		FROM order_items i
		JOIN products p ON p.id = i.product_id
		JOIN orders o ON o.id = i.order_id
		WHERE p.seller_id = $1 AND o.payment_status <> 'cart'
		GROUP BY i.status`, sellerID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	counts := map[orders.ItemStatus]int{}
	for rows.Next() {
		var st orders.ItemStatus
		var n int
		if err := rows.Scan(&st, &n); err != nil {
			return nil, err
		}
		counts[st] = n
	}
	return counts, rows.Err()
}

func (s *PG) Revenue(ctx context.Context, sellerID string) (int64, error) {
	var total int64
	err := s.DB.QueryRow(ctx, `
		SELECT coalesce(sum(p.price_cents * i.quantity), 0)
		FROM order_items i
		JOIN products p ON p.id = i.product_id
		JOIN orders o ON o.id = i.order_id
		WHERE p.seller_id = $1 AND o.payment_status = 'paid'`, sellerID).Scan(&total)
	return total, err
}
