package category

import (
	"context"

	"souvenir-shop/internal/domain"
)

type Repository interface {
	// ListAll returns every category in display order with product counts.
	ListAll(ctx context.Context) ([]domain.Category, error)
	Upsert(ctx context.Context, c domain.Category, position int) (*domain.Category, error)
}
