package catalog

import (
	"context"

	"souvenir-shop/internal/domain"
)

type productLister interface {
	ListAll(ctx context.Context) ([]domain.Product, error)
}

type categoryLister interface {
	ListAll(ctx context.Context) ([]domain.Category, error)
}

// RepositorySource reads the catalog from product and category repositories. Price ranges
// come from Ranges, or the default bands when empty.
type RepositorySource struct {
	ProductRepo  productLister
	CategoryRepo categoryLister
	Ranges       []domain.PriceRange
}

func (s RepositorySource) Products(ctx context.Context) ([]domain.Product, error) {
	return s.ProductRepo.ListAll(ctx)
}

func (s RepositorySource) Categories(ctx context.Context) ([]domain.Category, error) {
	if s.CategoryRepo == nil {
		return nil, nil
	}
	return s.CategoryRepo.ListAll(ctx)
}

func (s RepositorySource) PriceRanges(_ context.Context) ([]domain.PriceRange, error) {
	if len(s.Ranges) == 0 {
		return domain.DefaultPriceRanges(), nil
	}
	return s.Ranges, nil
}
