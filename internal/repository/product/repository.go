package product

import (
	"context"

	"souvenir-shop/internal/domain"
)

type Repository interface {
	// ListAll returns every product in catalog order.
	ListAll(ctx context.Context) ([]domain.Product, error)
	GetByID(ctx context.Context, id string) (*domain.Product, error)
	// Upsert inserts or replaces a product. position fixes its place in catalog order.
	Upsert(ctx context.Context, p domain.Product, position int) (*domain.Product, error)
}
