package seed

import (
	"context"
	_ "embed"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"

	"souvenir-shop/internal/catalogfile"
	categoryrepo "souvenir-shop/internal/repository/category"
	productrepo "souvenir-shop/internal/repository/product"
)

//go:embed souvenirs.yaml
var souvenirsYAML []byte

// Catalog returns the built-in souvenir catalog.
func Catalog() (*catalogfile.Document, error) {
	doc, err := catalogfile.Parse(souvenirsYAML)
	if err != nil {
		return nil, fmt.Errorf("seed catalog: %w", err)
	}
	return doc, nil
}

// Apply upserts the built-in catalog into postgres. It is idempotent via ON CONFLICT.
func Apply(ctx context.Context, pool *pgxpool.Pool, logger *zap.Logger) error {
	doc, err := Catalog()
	if err != nil {
		return err
	}
	return Write(ctx, doc, categoryrepo.NewPostgres(pool), productrepo.NewPostgres(pool, logger))
}

// Write stores every category and product of doc, keeping document order as catalog order.
func Write(ctx context.Context, doc *catalogfile.Document, categories categoryrepo.Repository, products productrepo.Repository) error {
	cats, err := doc.Categories(ctx)
	if err != nil {
		return err
	}
	for i, c := range cats {
		if _, err := categories.Upsert(ctx, c, i); err != nil {
			return fmt.Errorf("upsert category %s: %w", c.Key, err)
		}
	}
	items, err := doc.Products(ctx)
	if err != nil {
		return err
	}
	for i, p := range items {
		if _, err := products.Upsert(ctx, p, i); err != nil {
			return fmt.Errorf("upsert product %s: %w", p.ID, err)
		}
	}
	return nil
}
