package repository

import (
	"context"
	"fmt"

	"holyfit-backend/internal/domains/catalog/model"
	"holyfit-backend/pkg/database"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/lib/pq"
)

type querier interface {
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
}

// postgresSource reads the catalog from the shop database.
type postgresSource struct {
	pool *pgxpool.Pool
}

func NewPostgresSource(pool *pgxpool.Pool) Source {
	return &postgresSource{pool: pool}
}

// FetchProducts reads products and their variants in one read-only snapshot
// so a concurrent edit cannot pair a product with another version's variants.
func (r *postgresSource) FetchProducts(ctx context.Context) ([]model.Product, error) {
	return database.WithTxResult(ctx, r.pool, database.ReadOnlySnapshot, func(tx pgx.Tx) ([]model.Product, error) {
		return fetchProducts(ctx, tx)
	})
}

func fetchProducts(ctx context.Context, q querier) ([]model.Product, error) {
	query := `
		SELECT p.id, p.name, p.description, p.price, p.original_price,
		       c.id, c.name, p.brand, p.tags, p.in_stock,
		       p.rating, p.review_count, p.image_url, p.created_at
		FROM products p
		JOIN categories c ON c.id = p.category_id
		WHERE p.is_active = true
		ORDER BY p.sort_order, p.created_at
	`

	rows, err := q.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to query products: %w", err)
	}
	defer rows.Close()

	products := make([]model.Product, 0)
	index := make(map[string]int)
	for rows.Next() {
		var p model.Product
		var brand, image *string
		if err := rows.Scan(
			&p.ID, &p.Name, &p.Description, &p.Price, &p.OriginalPrice,
			&p.Category.ID, &p.Category.Name, &brand, pq.Array(&p.Tags), &p.InStock,
			&p.Rating, &p.ReviewCount, &image, &p.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan product: %w", err)
		}
		if brand != nil {
			p.Brand = *brand
		}
		if image != nil {
			p.Image = *image
		}
		index[p.ID] = len(products)
		products = append(products, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate products: %w", err)
	}
	// The connection must be free before the next query on the same tx.
	rows.Close()

	if err := attachVariants(ctx, q, products, index); err != nil {
		return nil, err
	}
	return products, nil
}

func attachVariants(ctx context.Context, q querier, products []model.Product, index map[string]int) error {
	query := `
		SELECT product_id, variant_type, variant_value, price_modifier
		FROM product_variants
		ORDER BY product_id, position
	`

	rows, err := q.Query(ctx, query)
	if err != nil {
		return fmt.Errorf("failed to query variants: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var productID string
		var v model.ProductVariant
		if err := rows.Scan(&productID, &v.Type, &v.Value, &v.PriceModifier); err != nil {
			return fmt.Errorf("failed to scan variant: %w", err)
		}
		i, ok := index[productID]
		if !ok {
			continue
		}
		products[i].Variants = append(products[i].Variants, v)
	}
	return rows.Err()
}

func (r *postgresSource) FetchCategories(ctx context.Context) ([]model.Category, error) {
	rows, err := r.pool.Query(ctx, `SELECT id, name FROM categories ORDER BY name`)
	if err != nil {
		return nil, fmt.Errorf("failed to query categories: %w", err)
	}
	defer rows.Close()

	categories := make([]model.Category, 0)
	for rows.Next() {
		var c model.Category
		if err := rows.Scan(&c.ID, &c.Name); err != nil {
			return nil, fmt.Errorf("failed to scan category: %w", err)
		}
		categories = append(categories, c)
	}
	return categories, rows.Err()
}
