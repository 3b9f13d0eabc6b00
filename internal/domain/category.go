package domain

import "github.com/shopspring/decimal"

// AllKey selects every category or every price range.
const AllKey = "all"

type Category struct {
	Key   string `json:"id"`
	Name  string `json:"name"`
	Count int    `json:"count"`
}

// PriceRange is a named price band. Min is inclusive; Max is inclusive, or unbounded when nil.
type PriceRange struct {
	ID   string           `json:"id"`
	Name string           `json:"name"`
	Min  decimal.Decimal  `json:"min"`
	Max  *decimal.Decimal `json:"max,omitempty"`
}

// Contains reports whether price falls inside the range.
func (r PriceRange) Contains(price decimal.Decimal) bool {
	if price.LessThan(r.Min) {
		return false
	}
	return r.Max == nil || price.LessThanOrEqual(*r.Max)
}

// DefaultPriceRanges returns the storefront's standard price bands.
func DefaultPriceRanges() []PriceRange {
	bound := func(v int64) *decimal.Decimal {
		d := decimal.NewFromInt(v)
		return &d
	}
	return []PriceRange{
		{ID: AllKey, Name: "All Prices"},
		{ID: "under-300", Name: "Under Rs. 300", Min: decimal.Zero, Max: bound(300)},
		{ID: "300-500", Name: "Rs. 300 - 500", Min: decimal.NewFromInt(300), Max: bound(500)},
		{ID: "500-700", Name: "Rs. 500 - 700", Min: decimal.NewFromInt(500), Max: bound(700)},
		{ID: "700-plus", Name: "Rs. 700+", Min: decimal.NewFromInt(700)},
	}
}
