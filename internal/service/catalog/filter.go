package catalog

import (
	"sort"
	"strings"

	"souvenir-shop/internal/domain"
)

// Sort selects the ordering of the visible product list.
type Sort string

const (
	SortFeatured   Sort = "featured"
	SortPriceLow   Sort = "price-low"
	SortPriceHigh  Sort = "price-high"
	SortRating     Sort = "rating"
	SortPopularity Sort = "popularity"
)

// Sorts lists every supported sort with its display label, in menu order.
var Sorts = []struct {
	Sort  Sort
	Label string
}{
	{SortFeatured, "Featured"},
	{SortPriceLow, "Price: Low to High"},
	{SortPriceHigh, "Price: High to Low"},
	{SortRating, "Highest Rated"},
	{SortPopularity, "Most Popular"},
}

// ParseSort maps a sort id to a Sort. Unknown ids fall back to featured.
func ParseSort(raw string) Sort {
	s := Sort(strings.TrimSpace(raw))
	switch s {
	case SortPriceLow, SortPriceHigh, SortRating, SortPopularity:
		return s
	default:
		return SortFeatured
	}
}

// Filters is the active filter criteria for one visitor.
type Filters struct {
	Category        string `json:"category"`
	PriceRange      string `json:"priceRange"`
	Sort            Sort   `json:"sort"`
	BestsellersOnly bool   `json:"bestsellersOnly"`
	InStockOnly     bool   `json:"inStockOnly"`
	Search          string `json:"search"`
}

// DefaultFilters returns the cleared filter state.
func DefaultFilters() Filters {
	return Filters{
		Category:   domain.AllKey,
		PriceRange: domain.AllKey,
		Sort:       SortFeatured,
	}
}

// Normalize fills empty selectors with their defaults.
func (f Filters) Normalize() Filters {
	if f.Category == "" {
		f.Category = domain.AllKey
	}
	if f.PriceRange == "" {
		f.PriceRange = domain.AllKey
	}
	f.Sort = ParseSort(string(f.Sort))
	return f
}

// ActiveCount is the number of criteria that differ from the defaults.
func (f Filters) ActiveCount() int {
	f = f.Normalize()
	n := 0
	for _, active := range []bool{
		f.Category != domain.AllKey,
		f.PriceRange != domain.AllKey,
		f.Sort != SortFeatured,
		f.BestsellersOnly,
		f.InStockOnly,
		f.Search != "",
	} {
		if active {
			n++
		}
	}
	return n
}

// Visible narrows the catalog by f and orders the result. The output is always a new slice.
func Visible(c *Catalog, f Filters) []domain.Product {
	f = f.Normalize()
	out := c.Products()

	if f.Search != "" {
		query := strings.ToLower(f.Search)
		out = keep(out, func(p domain.Product) bool {
			return strings.Contains(strings.ToLower(p.Name), query) ||
				strings.Contains(strings.ToLower(p.Description), query)
		})
	}
	if f.Category != domain.AllKey {
		out = keep(out, func(p domain.Product) bool { return p.Category == f.Category })
	}
	if f.PriceRange != domain.AllKey {
		if r, ok := c.PriceRange(f.PriceRange); ok {
			out = keep(out, func(p domain.Product) bool { return r.Contains(p.Price) })
		}
	}
	if f.BestsellersOnly {
		out = keep(out, func(p domain.Product) bool { return p.Bestseller })
	}
	if f.InStockOnly {
		out = keep(out, func(p domain.Product) bool { return p.InStock > 0 })
	}

	sortProducts(out, f.Sort)
	return out
}

func keep(in []domain.Product, pred func(domain.Product) bool) []domain.Product {
	out := in[:0]
	for _, p := range in {
		if pred(p) {
			out = append(out, p)
		}
	}
	return out
}

// sortProducts orders products in place. Equal keys keep catalog order.
func sortProducts(products []domain.Product, s Sort) {
	var less func(a, b domain.Product) bool
	switch s {
	case SortPriceLow:
		less = func(a, b domain.Product) bool { return a.Price.LessThan(b.Price) }
	case SortPriceHigh:
		less = func(a, b domain.Product) bool { return a.Price.GreaterThan(b.Price) }
	case SortRating:
		less = func(a, b domain.Product) bool { return a.Rating > b.Rating }
	case SortPopularity:
		less = func(a, b domain.Product) bool { return a.Reviews > b.Reviews }
	default:
		less = func(a, b domain.Product) bool {
			if a.Bestseller != b.Bestseller {
				return a.Bestseller
			}
			return a.Rating > b.Rating
		}
	}
	sort.SliceStable(products, func(i, j int) bool { return less(products[i], products[j]) })
}
