package catalog

import (
	"context"
	"fmt"
	"strings"

	"souvenir-shop/internal/domain"
)

// Source supplies catalog data once at startup.
type Source interface {
	Products(ctx context.Context) ([]domain.Product, error)
	Categories(ctx context.Context) ([]domain.Category, error)
	PriceRanges(ctx context.Context) ([]domain.PriceRange, error)
}

// Catalog is the read-only product set for a process. Safe for concurrent reads.
type Catalog struct {
	products    []domain.Product
	byID        map[string]int
	categories  []domain.Category
	priceRanges []domain.PriceRange
	rangeByID   map[string]int
}

// New validates and indexes the supplied data. Product order is kept as given; it is the
// tie-break order for every sort.
func New(products []domain.Product, categories []domain.Category, ranges []domain.PriceRange) (*Catalog, error) {
	c := &Catalog{
		products:  make([]domain.Product, 0, len(products)),
		byID:      make(map[string]int, len(products)),
		rangeByID: make(map[string]int, len(ranges)+1),
	}
	for _, p := range products {
		id := strings.TrimSpace(p.ID)
		if id == "" {
			return nil, fmt.Errorf("catalog: product %q has no id", p.Name)
		}
		if _, dup := c.byID[id]; dup {
			return nil, fmt.Errorf("catalog: duplicate product id %q", id)
		}
		p.ID = id
		c.byID[id] = len(c.products)
		c.products = append(c.products, p)
	}

	c.categories = withAllCategory(categories, c.products)

	if len(ranges) == 0 {
		ranges = domain.DefaultPriceRanges()
	}
	ranges = withAllRange(ranges)
	for _, r := range ranges {
		if _, dup := c.rangeByID[r.ID]; dup {
			return nil, fmt.Errorf("catalog: duplicate price range %q", r.ID)
		}
		c.rangeByID[r.ID] = len(c.priceRanges)
		c.priceRanges = append(c.priceRanges, r)
	}
	return c, nil
}

// Load reads every part of src and builds a Catalog.
func Load(ctx context.Context, src Source) (*Catalog, error) {
	products, err := src.Products(ctx)
	if err != nil {
		return nil, fmt.Errorf("load products: %w", err)
	}
	categories, err := src.Categories(ctx)
	if err != nil {
		return nil, fmt.Errorf("load categories: %w", err)
	}
	ranges, err := src.PriceRanges(ctx)
	if err != nil {
		return nil, fmt.Errorf("load price ranges: %w", err)
	}
	return New(products, categories, ranges)
}

// withAllRange moves the "all" range to the front, adding it when absent.
func withAllRange(ranges []domain.PriceRange) []domain.PriceRange {
	all := domain.PriceRange{ID: domain.AllKey, Name: "All Prices"}
	out := make([]domain.PriceRange, 1, len(ranges)+1)
	for _, r := range ranges {
		if r.ID == domain.AllKey {
			if r.Name != "" {
				all.Name = r.Name
			}
			continue
		}
		out = append(out, r)
	}
	out[0] = all
	return out
}

// withAllCategory puts the "all" pseudo-category first and fills in missing counts.
func withAllCategory(categories []domain.Category, products []domain.Product) []domain.Category {
	counts := make(map[string]int)
	for _, p := range products {
		counts[p.Category]++
	}
	out := make([]domain.Category, 0, len(categories)+1)
	out = append(out, domain.Category{Key: domain.AllKey, Name: "All Products", Count: len(products)})
	for _, cat := range categories {
		if cat.Key == domain.AllKey {
			if cat.Name != "" {
				out[0].Name = cat.Name
			}
			if cat.Count > 0 {
				out[0].Count = cat.Count
			}
			continue
		}
		if cat.Count == 0 {
			cat.Count = counts[cat.Key]
		}
		out = append(out, cat)
	}
	return out
}

// Products returns a copy of the catalog in its original order.
func (c *Catalog) Products() []domain.Product {
	out := make([]domain.Product, len(c.products))
	copy(out, c.products)
	return out
}

func (c *Catalog) Len() int {
	return len(c.products)
}

// Product looks up a product by id.
func (c *Catalog) Product(id string) (domain.Product, bool) {
	idx, ok := c.byID[id]
	if !ok {
		return domain.Product{}, false
	}
	return c.products[idx], true
}

func (c *Catalog) Categories() []domain.Category {
	out := make([]domain.Category, len(c.categories))
	copy(out, c.categories)
	return out
}

func (c *Catalog) PriceRanges() []domain.PriceRange {
	out := make([]domain.PriceRange, len(c.priceRanges))
	copy(out, c.priceRanges)
	return out
}

// PriceRange looks up a price range by id.
func (c *Catalog) PriceRange(id string) (domain.PriceRange, bool) {
	idx, ok := c.rangeByID[id]
	if !ok {
		return domain.PriceRange{}, false
	}
	return c.priceRanges[idx], true
}

// Bestsellers returns up to n bestseller products in catalog order.
func (c *Catalog) Bestsellers(n int) []domain.Product {
	var out []domain.Product
	for _, p := range c.products {
		if len(out) == n {
			break
		}
		if p.Bestseller {
			out = append(out, p)
		}
	}
	return out
}
