package domain

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func TestProductDiscountPercent(t *testing.T) {
	p := Product{Price: decimal.NewFromInt(850), OriginalPrice: decimal.NewFromInt(1200)}
	assert.Equal(t, 29, p.DiscountPercent())

	p = Product{Price: decimal.NewFromInt(100), OriginalPrice: decimal.NewFromInt(100)}
	assert.Equal(t, 0, p.DiscountPercent())
	assert.False(t, p.Discounted())
}

func TestProductLowStock(t *testing.T) {
	assert.False(t, Product{InStock: 0}.LowStock())
	assert.True(t, Product{InStock: 5}.LowStock())
	assert.False(t, Product{InStock: 6}.LowStock())
}

func TestPriceRangeContainsBounds(t *testing.T) {
	ranges := DefaultPriceRanges()
	mid := ranges[2] // 300-500
	assert.True(t, mid.Contains(decimal.NewFromInt(300)))
	assert.True(t, mid.Contains(decimal.NewFromInt(500)))
	assert.False(t, mid.Contains(decimal.RequireFromString("500.01")))

	top := ranges[4]
	assert.Nil(t, top.Max)
	assert.True(t, top.Contains(decimal.NewFromInt(100000)))
	assert.False(t, top.Contains(decimal.NewFromInt(699)))
}

func TestCartItemTotals(t *testing.T) {
	item := CartItem{
		Product:  Product{Price: decimal.NewFromInt(320), OriginalPrice: decimal.NewFromInt(450), InStock: 2},
		Quantity: 2,
	}
	assert.True(t, item.LineTotal().Equal(decimal.NewFromInt(640)))
	assert.True(t, item.LineSavings().Equal(decimal.NewFromInt(260)))
	assert.True(t, item.AtLimit())
}
