package product

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"souvenir-shop/internal/domain"
)

type postgresRepo struct {
	pool   *pgxpool.Pool
	logger *zap.Logger
}

func NewPostgres(pool *pgxpool.Pool, logger *zap.Logger) Repository {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &postgresRepo{pool: pool, logger: logger}
}

const selectColumns = `id, name, description, price::text, original_price::text, category_key, image_url, rating, reviews, in_stock, bestseller`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanProduct(row rowScanner) (domain.Product, error) {
	var (
		p                    domain.Product
		price, originalPrice string
	)
	if err := row.Scan(&p.ID, &p.Name, &p.Description, &price, &originalPrice, &p.Category, &p.Image, &p.Rating, &p.Reviews, &p.InStock, &p.Bestseller); err != nil {
		return domain.Product{}, err
	}
	var err error
	if p.Price, err = decimal.NewFromString(price); err != nil {
		return domain.Product{}, fmt.Errorf("product %s: price: %w", p.ID, err)
	}
	if p.OriginalPrice, err = decimal.NewFromString(originalPrice); err != nil {
		return domain.Product{}, fmt.Errorf("product %s: original price: %w", p.ID, err)
	}
	return p, nil
}

func (r *postgresRepo) ListAll(ctx context.Context) ([]domain.Product, error) {
	q := `SELECT ` + selectColumns + ` FROM products ORDER BY position ASC, id ASC`
	rows, err := r.pool.Query(ctx, q)
	if err != nil {
		r.logger.Error("product repo: list", zap.Error(err))
		return nil, err
	}
	defer rows.Close()

	var result []domain.Product
	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, p)
	}
	if err := rows.Err(); err != nil {
		r.logger.Error("product repo: list rows", zap.Error(err))
		return nil, err
	}
	r.logger.Debug("product repo: list", zap.Int("count", len(result)))
	return result, nil
}

func (r *postgresRepo) GetByID(ctx context.Context, id string) (*domain.Product, error) {
	q := `SELECT ` + selectColumns + ` FROM products WHERE id = $1`
	p, err := scanProduct(r.pool.QueryRow(ctx, q, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		r.logger.Error("product repo: get", zap.String("id", id), zap.Error(err))
		return nil, err
	}
	return &p, nil
}

func (r *postgresRepo) Upsert(ctx context.Context, p domain.Product, position int) (*domain.Product, error) {
	const q = `
INSERT INTO products (id, name, description, price, original_price, category_key, image_url, rating, reviews, in_stock, bestseller, position)
VALUES ($1, $2, $3, $4::numeric, $5::numeric, $6, $7, $8, $9, $10, $11, $12)
ON CONFLICT (id) DO UPDATE SET
    name = EXCLUDED.name,
    description = EXCLUDED.description,
    price = EXCLUDED.price,
    original_price = EXCLUDED.original_price,
    category_key = EXCLUDED.category_key,
    image_url = EXCLUDED.image_url,
    rating = EXCLUDED.rating,
    reviews = EXCLUDED.reviews,
    in_stock = EXCLUDED.in_stock,
    bestseller = EXCLUDED.bestseller,
    position = EXCLUDED.position,
    updated_at = now()
`
	_, err := r.pool.Exec(ctx, q,
		p.ID,
		p.Name,
		p.Description,
		p.Price.String(),
		p.OriginalPrice.String(),
		p.Category,
		p.Image,
		p.Rating,
		p.Reviews,
		p.InStock,
		p.Bestseller,
		position,
	)
	if err != nil {
		r.logger.Error("product repo: upsert", zap.String("id", p.ID), zap.Error(err))
		return nil, err
	}
	r.logger.Debug("product repo: upserted", zap.String("id", p.ID), zap.Int("position", position))
	return &p, nil
}
