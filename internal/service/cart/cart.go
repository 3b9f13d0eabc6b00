package cart

import (
	"github.com/shopspring/decimal"

	"souvenir-shop/internal/domain"
)

// Cart is an ordered set of line items, unique by product id. Every item satisfies
// 1 <= Quantity <= Product.InStock. Not safe for concurrent use.
type Cart struct {
	items []domain.CartItem
}

// AddResult describes the outcome of a successful Add.
type AddResult struct {
	Quantity int
	Created  bool
}

// SetResult describes the outcome of SetQuantity.
type SetResult struct {
	Quantity int
	Removed  bool
	Clamped  bool
	Found    bool
}

// Totals is the aggregate of a cart.
type Totals struct {
	Items    int             `json:"items"`
	Subtotal decimal.Decimal `json:"subtotal"`
	Savings  decimal.Decimal `json:"savings"`
}

// ShowSavings reports whether the savings line should be displayed.
func (t Totals) ShowSavings() bool {
	return t.Savings.IsPositive()
}

func New() *Cart {
	return &Cart{}
}

func (c *Cart) index(id string) int {
	for i := range c.items {
		if c.items[i].Product.ID == id {
			return i
		}
	}
	return -1
}

// Add inserts p with quantity 1 or increments an existing line. It returns
// domain.ErrStockLimit and leaves the cart untouched when no more units are available.
func (c *Cart) Add(p domain.Product) (AddResult, error) {
	if i := c.index(p.ID); i >= 0 {
		item := &c.items[i]
		if item.Quantity >= item.Product.InStock {
			return AddResult{Quantity: item.Quantity}, domain.ErrStockLimit
		}
		item.Quantity++
		return AddResult{Quantity: item.Quantity}, nil
	}
	if p.InStock < 1 {
		return AddResult{}, domain.ErrStockLimit
	}
	c.items = append(c.items, domain.CartItem{Product: p, Quantity: 1})
	return AddResult{Quantity: 1, Created: true}, nil
}

// SetQuantity sets the quantity of an existing line. n <= 0 removes it and n above the
// available stock is clamped. Absent ids are ignored.
func (c *Cart) SetQuantity(id string, n int) SetResult {
	i := c.index(id)
	if i < 0 {
		return SetResult{}
	}
	if n <= 0 {
		c.removeAt(i)
		return SetResult{Removed: true, Found: true}
	}
	item := &c.items[i]
	res := SetResult{Found: true}
	if n > item.Product.InStock {
		n = item.Product.InStock
		res.Clamped = true
	}
	item.Quantity = n
	res.Quantity = n
	return res
}

// Remove drops the line for id. It reports whether a line was removed.
func (c *Cart) Remove(id string) bool {
	i := c.index(id)
	if i < 0 {
		return false
	}
	c.removeAt(i)
	return true
}

func (c *Cart) removeAt(i int) {
	c.items = append(c.items[:i], c.items[i+1:]...)
}

func (c *Cart) Clear() {
	c.items = nil
}

// Items returns a copy of the lines in insertion order.
func (c *Cart) Items() []domain.CartItem {
	out := make([]domain.CartItem, len(c.items))
	copy(out, c.items)
	return out
}

// Item returns the line for id.
func (c *Cart) Item(id string) (domain.CartItem, bool) {
	i := c.index(id)
	if i < 0 {
		return domain.CartItem{}, false
	}
	return c.items[i], true
}

// Quantity returns the quantity held for id, or 0.
func (c *Cart) Quantity(id string) int {
	item, _ := c.Item(id)
	return item.Quantity
}

func (c *Cart) Len() int {
	return len(c.items)
}

func (c *Cart) Empty() bool {
	return len(c.items) == 0
}

func (c *Cart) Totals() Totals {
	t := Totals{Subtotal: decimal.Zero, Savings: decimal.Zero}
	for _, item := range c.items {
		t.Items += item.Quantity
		t.Subtotal = t.Subtotal.Add(item.LineTotal())
		t.Savings = t.Savings.Add(item.LineSavings())
	}
	return t
}

// Lines returns the persisted form of the cart.
func (c *Cart) Lines() []domain.CartLine {
	out := make([]domain.CartLine, 0, len(c.items))
	for _, item := range c.items {
		out = append(out, domain.CartLine{ProductID: item.Product.ID, Quantity: item.Quantity})
	}
	return out
}

// Restore replaces the cart contents from persisted lines. Lines whose product cannot be
// found, is out of stock, or has a non-positive quantity are dropped; quantities above
// the available stock are clamped. Duplicate ids are merged. It returns the number of
// lines that were dropped or adjusted.
func (c *Cart) Restore(lines []domain.CartLine, lookup func(id string) (domain.Product, bool)) int {
	c.items = nil
	adjusted := 0
	for _, line := range lines {
		p, ok := lookup(line.ProductID)
		if !ok || line.Quantity < 1 || p.InStock < 1 {
			adjusted++
			continue
		}
		i := c.index(p.ID)
		qty := line.Quantity
		if i >= 0 {
			qty += c.items[i].Quantity
			adjusted++
		}
		if qty > p.InStock {
			qty = p.InStock
			adjusted++
		}
		if i >= 0 {
			c.items[i].Quantity = qty
			continue
		}
		c.items = append(c.items, domain.CartItem{Product: p, Quantity: qty})
	}
	return adjusted
}
