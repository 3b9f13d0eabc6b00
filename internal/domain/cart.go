package domain

import "github.com/shopspring/decimal"

// CartItem is a product held in a cart. Quantity stays within [1, Product.InStock].
type CartItem struct {
	Product  Product `json:"product"`
	Quantity int     `json:"quantity"`
}

func (i CartItem) LineTotal() decimal.Decimal {
	return i.Product.Price.Mul(decimal.NewFromInt(int64(i.Quantity)))
}

func (i CartItem) LineSavings() decimal.Decimal {
	return i.Product.UnitSavings().Mul(decimal.NewFromInt(int64(i.Quantity)))
}

// AtLimit reports whether another unit would exceed available stock.
func (i CartItem) AtLimit() bool {
	return i.Quantity >= i.Product.InStock
}

// CartLine is the persisted form of a cart entry.
type CartLine struct {
	ProductID string `json:"productId"`
	Quantity  int    `json:"quantity"`
}
