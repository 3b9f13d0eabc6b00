package domain

import "github.com/shopspring/decimal"

// lowStockThreshold is the inventory level at or below which cards warn about stock.
const lowStockThreshold = 5

// Product is an immutable catalog entry.
type Product struct {
	ID            string          `json:"id"`
	Name          string          `json:"name"`
	Description   string          `json:"description,omitempty"`
	Price         decimal.Decimal `json:"price"`
	OriginalPrice decimal.Decimal `json:"originalPrice"`
	Category      string          `json:"category"`
	Image         string          `json:"image,omitempty"`
	Rating        float64         `json:"rating"`
	Reviews       int             `json:"reviews"`
	InStock       int             `json:"inStock"`
	Bestseller    bool            `json:"bestseller"`
}

// Available reports whether at least one unit can be added to a cart.
func (p Product) Available() bool {
	return p.InStock > 0
}

// LowStock reports whether the product is in stock but close to selling out.
func (p Product) LowStock() bool {
	return p.InStock > 0 && p.InStock <= lowStockThreshold
}

// Discounted reports whether the original price is above the selling price.
func (p Product) Discounted() bool {
	return p.OriginalPrice.GreaterThan(p.Price)
}

// DiscountPercent returns the whole-number markdown from the original price.
func (p Product) DiscountPercent() int {
	if !p.Discounted() || p.OriginalPrice.IsZero() {
		return 0
	}
	pct := p.OriginalPrice.Sub(p.Price).Div(p.OriginalPrice).Mul(decimal.NewFromInt(100)).Round(0)
	return int(pct.IntPart())
}

// UnitSavings is the difference between original and selling price. It may be negative
// when the catalog lists a price above the original.
func (p Product) UnitSavings() decimal.Decimal {
	return p.OriginalPrice.Sub(p.Price)
}
