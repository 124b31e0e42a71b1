package catalog

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/brocantic/marketplace/internal/orders"
)

type Repo struct{ DB *pgxpool.Pool }

const productCols = `p.id, p.title, p.description, p.price_cents, p.currency, p.images,
	p.category_id, p.condition, p.seller_id, u.username, p.status, p.location,
	p.views, p.reference, p.compatibility, p.created, p.updated`

func scanProduct(row pgx.Row) (Product, error) {
	var p Product
	err := row.Scan(&p.ID, &p.Title, &p.Description, &p.PriceCents, &p.Currency, &p.Images,
		&p.CategoryID, &p.Condition, &p.SellerID, &p.SellerName, &p.Status, &p.Location,
		&p.Views, &p.Reference, &p.Compatibility, &p.Created, &p.Updated)
	if errors.Is(err, pgx.ErrNoRows) {
		return Product{}, orders.ErrNotFound
	}
	return p, err
}

func (r *Repo) list(ctx context.Context, where string, args []any, page, perPage int) ([]Product, int, error) {
	if page < 1 {
		page = 1
	}
	if perPage < 1 {
		perPage = 20
	}
	var total int
	err := r.DB.QueryRow(ctx, `SELECT count(*) FROM products p WHERE `+where, args...).Scan(&total)
	if err != nil {
		return nil, 0, err
	}
	args = append(args, perPage, (page-1)*perPage)
	n := len(args)
	q := fmt.Sprintf(`SELECT `+productCols+`
		FROM products p JOIN users u ON u.id = p.seller_id
		WHERE %s
		ORDER BY p.created DESC LIMIT $%d OFFSET $%d`, where, n-1, n)
	rows, err := r.DB.Query(ctx, q, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var out []Product
	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			return nil, 0, err
		}
		out = append(out, p)
	}
	return out, total, rows.Err()
}

// List returns publicly visible (available) products, newest first.
func (r *Repo) List(ctx context.Context, page, perPage int) ([]Product, int, error) {
	return r.list(ctx, `p.status = 'Disponible'`, nil, page, perPage)
}

// Search matches title, description or reference among available products.
func (r *Repo) Search(ctx context.Context, q string, page, perPage int) ([]Product, int, error) {
	pat := "%" + q + "%"
	return r.list(ctx,
		`(p.title ILIKE $1 OR p.description ILIKE $1 OR p.reference ILIKE $1) AND p.status = 'Disponible'`,
		[]any{pat}, page, perPage)
}

func (r *Repo) ByCategory(ctx context.Context, categoryID string, page, perPage int) ([]Product, int, error) {
	return r.list(ctx, `p.category_id = $1 AND p.status = 'Disponible'`, []any{categoryID}, page, perPage)
}

// BySeller lists everything a seller owns, drafts included.
func (r *Repo) BySeller(ctx context.Context, sellerID string, page, perPage int) ([]Product, int, error) {
	return r.list(ctx, `p.seller_id = $1`, []any{sellerID}, page, perPage)
}

func (r *Repo) Get(ctx context.Context, id string) (Product, error) {
	row := r.DB.QueryRow(ctx, `SELECT `+productCols+`
		FROM products p JOIN users u ON u.id = p.seller_id WHERE p.id=$1`, id)
	return scanProduct(row)
}

// View fetches a product for the detail page and bumps its view counter.
func (r *Repo) View(ctx context.Context, id string) (Product, error) {
	ct, err := r.DB.Exec(ctx, `UPDATE products SET views = views + 1 WHERE id=$1`, id)
	if err != nil {
		return Product{}, err
	}
	if ct.RowsAffected() == 0 {
		return Product{}, orders.ErrNotFound
	}
	return r.Get(ctx, id)
}

func (r *Repo) Create(ctx context.Context, sellerID string, in ProductInput) (Product, error) {
	if in.Currency == "" {
		in.Currency = orders.DefaultCurrency
	}
	if in.Status == "" {
		in.Status = StatusDraft
	}
	id := uuid.NewString()
	_, err := r.DB.Exec(ctx, `
		INSERT INTO products (id, title, description, price_cents, currency, images,
			category_id, condition, seller_id, status, location, reference, compatibility)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13)`,
		id, in.Title, in.Description, in.PriceCents, in.Currency, in.Images,
		in.CategoryID, in.Condition, sellerID, in.Status, in.Location, in.Reference, in.Compatibility)
	if err != nil {
		return Product{}, err
	}
	return r.Get(ctx, id)
}

// Update rewrites the editable fields; the WHERE clause keeps it scoped to
// the owning seller.
func (r *Repo) Update(ctx context.Context, id, sellerID string, in ProductInput) (Product, error) {
	ct, err := r.DB.Exec(ctx, `
		UPDATE products SET title=$3, description=$4, price_cents=$5, currency=$6,
			images=$7, category_id=$8, condition=$9, status=$10, location=$11,
			reference=$12, compatibility=$13, updated=now()
		WHERE id=$1 AND seller_id=$2`,
		id, sellerID, in.Title, in.Description, in.PriceCents, in.Currency,
		in.Images, in.CategoryID, in.Condition, in.Status, in.Location,
		in.Reference, in.Compatibility)
	if err != nil {
		return Product{}, err
	}
	if ct.RowsAffected() == 0 {
		return Product{}, orders.ErrNotFound
	}
	return r.Get(ctx, id)
}

func (r *Repo) Delete(ctx context.Context, id, sellerID string) error {
	ct, err := r.DB.Exec(ctx, `DELETE FROM products WHERE id=$1 AND seller_id=$2`, id, sellerID)
	if err != nil {
		return err
	}
	if ct.RowsAffected() == 0 {
		return orders.ErrNotFound
	}
	return nil
}

func (r *Repo) Categories(ctx context.Context) ([]Category, error) {
	rows, err := r.DB.Query(ctx, `SELECT id, name, slug, icon, created, updated
		FROM categories ORDER BY name`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Category
	for rows.Next() {
		var c Category
		if err := rows.Scan(&c.ID, &c.Name, &c.Slug, &c.Icon, &c.Created, &c.Updated); err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

func (r *Repo) CategoryBySlug(ctx context.Context, slug string) (Category, error) {
	var c Category
	err := r.DB.QueryRow(ctx, `SELECT id, name, slug, icon, created, updated
		FROM categories WHERE slug=$1`, slug).
		Scan(&c.ID, &c.Name, &c.Slug, &c.Icon, &c.Created, &c.Updated)
	if errors.Is(err, pgx.ErrNoRows) {
		return Category{}, orders.ErrNotFound
	}
	return c, err
}
