package shop

import (
	"fmt"
	"math"

	"github.com/shopspring/decimal"

	"souvenir-shop/internal/domain"
	"souvenir-shop/internal/service/cart"
	"souvenir-shop/internal/service/catalog"
)

// BestsellerStripSize is how many bestsellers the highlight strip shows.
const BestsellerStripSize = 4

const maxStars = 5

// ProductCard is a product as presented in the grid.
type ProductCard struct {
	domain.Product
	Wishlisted      bool `json:"wishlisted"`
	DiscountPercent int  `json:"discountPercent"`
	FullStars       int  `json:"fullStars"`
	EmptyStars      int  `json:"emptyStars"`
	LowStock        bool `json:"lowStock"`
}

// ProductGrid is an immutable snapshot of the visible product list. Seq increases with
// every recomputation; a renderer keeps only the highest Seq it has seen.
type ProductGrid struct {
	Seq           uint64          `json:"seq"`
	Title         string          `json:"title"`
	Products      []ProductCard   `json:"products"`
	Bestsellers   []ProductCard   `json:"bestsellers"`
	Filters       catalog.Filters `json:"filters"`
	ActiveFilters int             `json:"activeFilters"`
}

func (g ProductGrid) Empty() bool {
	return len(g.Products) == 0
}

// CartLine is one cart entry as presented in the cart panel.
type CartLine struct {
	domain.CartItem
	LineTotal   decimal.Decimal `json:"lineTotal"`
	LineSavings decimal.Decimal `json:"lineSavings"`
	AtLimit     bool            `json:"atLimit"`
}

// CartPanel is an immutable snapshot of the cart.
type CartPanel struct {
	Title       string      `json:"title"`
	Lines       []CartLine  `json:"lines"`
	Totals      cart.Totals `json:"totals"`
	ShowSavings bool        `json:"showSavings"`
	BuyLabel    string      `json:"buyLabel,omitempty"`
}

func (p CartPanel) Empty() bool {
	return len(p.Lines) == 0
}

// WishlistBadge is an immutable snapshot of wishlist membership.
type WishlistBadge struct {
	Count int      `json:"count"`
	IDs   []string `json:"ids"`
}

// FilterPanel lists the filter choices together with the active selection.
type FilterPanel struct {
	Categories  []domain.Category   `json:"categories"`
	PriceRanges []domain.PriceRange `json:"priceRanges"`
	Sorts       []SortOption        `json:"sorts"`
	Filters     catalog.Filters     `json:"filters"`
	ActiveCount int                 `json:"activeCount"`
}

type SortOption struct {
	ID    catalog.Sort `json:"id"`
	Label string       `json:"label"`
}

// CheckoutSummary is what Checkout reports.
type CheckoutSummary struct {
	Items int             `json:"items"`
	Total decimal.Decimal `json:"total"`
}

func stars(rating float64) (full, empty int) {
	full = int(math.Floor(rating))
	if full < 0 {
		full = 0
	}
	if full > maxStars {
		full = maxStars
	}
	return full, maxStars - full
}

func resultsTitle(n int) string {
	return fmt.Sprintf("All Products (%d)", n)
}

func cartTitle(items int) string {
	return fmt.Sprintf("Shopping Cart (%d)", items)
}

// BuyLabel is the floating checkout button text, empty for an empty cart.
func BuyLabel(items int) string {
	if items <= 0 {
		return ""
	}
	if items == 1 {
		return "Buy Now • 1 item"
	}
	return fmt.Sprintf("Buy Now • %d items", items)
}

// FormatMoney renders an amount with the currency label, dropping the fraction for whole
// amounts ("Rs. 850", "Rs. 99.50").
func FormatMoney(label string, amount decimal.Decimal) string {
	if amount.Equal(amount.Truncate(0)) {
		return label + " " + amount.StringFixed(0)
	}
	return label + " " + amount.StringFixed(2)
}
