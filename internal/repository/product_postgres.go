package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/google/uuid"

	"github.com/skyyield/skyyield/internal/domain"
)

type productRepository struct {
	db *sql.DB
}

// NewProductRepository creates a new PostgreSQL repository for store products
func NewProductRepository(db *sql.DB) domain.ProductRepository {
	return &productRepository{db: db}
}

const productColumns = `id, name, description, sku, price_cents, currency, status,
	stripe_product_id, stripe_price_id, created_at, updated_at`

func scanProduct(scanner interface {
	Scan(dest ...interface{}) error
}) (*domain.Product, error) {
	var p domain.Product
	var description, stripeProductID, stripePriceID sql.NullString

	err := scanner.Scan(
		&p.ID,
		&p.Name,
		&description,
		&p.SKU,
		&p.PriceCents,
		&p.Currency,
		&p.Status,
		&stripeProductID,
		&stripePriceID,
		&p.CreatedAt,
		&p.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	p.Description = description.String
	p.StripeProductID = stripeProductID.String
	p.StripePriceID = stripePriceID.String

	return &p, nil
}

// Create persists a new product
func (r *productRepository) Create(ctx context.Context, product *domain.Product) error {
	now := time.Now().UTC()
	if product.ID == "" {
		product.ID = uuid.New().String()
	}
	product.CreatedAt = now
	product.UpdatedAt = now

	query := `
		INSERT INTO products (
			id, name, description, sku, price_cents, currency, status,
			stripe_product_id, stripe_price_id, created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
	`

	_, err := r.db.ExecContext(ctx, query,
		product.ID,
		product.Name,
		nullString(product.Description),
		product.SKU,
		product.PriceCents,
		product.Currency,
		product.Status,
		nullString(product.StripeProductID),
		nullString(product.StripePriceID),
		product.CreatedAt,
		product.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create product: %w", err)
	}

	return nil
}

// GetByID retrieves a product by its ID
func (r *productRepository) GetByID(ctx context.Context, id string) (*domain.Product, error) {
	query := fmt.Sprintf(`SELECT %s FROM products WHERE id = $1`, productColumns)

	product, err := scanProduct(r.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, &domain.ErrProductNotFound{ID: id}
		}
		return nil, fmt.Errorf("failed to get product: %w", err)
	}

	return product, nil
}

// GetBySKU retrieves a product by its SKU
func (r *productRepository) GetBySKU(ctx context.Context, sku string) (*domain.Product, error) {
	query := fmt.Sprintf(`SELECT %s FROM products WHERE sku = $1`, productColumns)

	product, err := scanProduct(r.db.QueryRowContext(ctx, query, sku))
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, &domain.ErrProductNotFound{ID: sku}
		}
		return nil, fmt.Errorf("failed to get product: %w", err)
	}

	return product, nil
}

// Update persists product changes
func (r *productRepository) Update(ctx context.Context, product *domain.Product) error {
	product.UpdatedAt = time.Now().UTC()

	query := `
		UPDATE products SET
			name = $2,
			description = $3,
			price_cents = $4,
			currency = $5,
			status = $6,
			stripe_product_id = $7,
			stripe_price_id = $8,
			updated_at = $9
		WHERE id = $1
	`

	result, err := r.db.ExecContext(ctx, query,
		product.ID,
		product.Name,
		nullString(product.Description),
		product.PriceCents,
		product.Currency,
		product.Status,
		nullString(product.StripeProductID),
		nullString(product.StripePriceID),
		product.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to update product: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get affected rows: %w", err)
	}
	if rows == 0 {
		return &domain.ErrProductNotFound{ID: product.ID}
	}

	return nil
}

// List retrieves products, optionally filtered by status
func (r *productRepository) List(ctx context.Context, status domain.ProductStatus, limit, offset int) ([]*domain.Product, error) {
	builder := sq.Select(productColumns).
		From("products").
		PlaceholderFormat(sq.Dollar).
		OrderBy("name ASC").
		Limit(uint64(limit)).
		Offset(uint64(offset))

	if status != "" {
		builder = builder.Where(sq.Eq{"status": status})
	}

	query, args, err := builder.ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build product list query: %w", err)
	}

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list products: %w", err)
	}
	defer rows.Close()

	var products []*domain.Product
	for rows.Next() {
		product, err := scanProduct(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan product row: %w", err)
		}
		products = append(products, product)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error while iterating through products: %w", err)
	}

	return products, nil
}
