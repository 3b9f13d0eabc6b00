package httpserver

import (
	"sync"

	"souvenir-shop/internal/service/shop"
)

// frame is the renderer behind a visitor's pages. It keeps the latest snapshot of each
// region for the templates. Products may arrive from a timer goroutine, so every field
// is guarded.
type frame struct {
	mu       sync.Mutex
	loading  bool
	grid     shop.ProductGrid
	badge    int
	cart     shop.CartPanel
	wishlist shop.WishlistBadge
}

type frameState struct {
	Loading  bool
	Grid     shop.ProductGrid
	Badge    int
	Cart     shop.CartPanel
	Wishlist shop.WishlistBadge
}

func (f *frame) ProductsLoading() {
	f.mu.Lock()
	f.loading = true
	f.mu.Unlock()
}

func (f *frame) Products(grid shop.ProductGrid) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if grid.Seq < f.grid.Seq {
		return
	}
	f.grid = grid
	f.loading = false
}

func (f *frame) FilterBadge(n int) {
	f.mu.Lock()
	f.badge = n
	f.mu.Unlock()
}

func (f *frame) Cart(panel shop.CartPanel) {
	f.mu.Lock()
	f.cart = panel
	f.mu.Unlock()
}

func (f *frame) Wishlist(badge shop.WishlistBadge) {
	f.mu.Lock()
	f.wishlist = badge
	f.mu.Unlock()
}

func (f *frame) snapshot() frameState {
	f.mu.Lock()
	defer f.mu.Unlock()
	return frameState{
		Loading:  f.loading,
		Grid:     f.grid,
		Badge:    f.badge,
		Cart:     f.cart,
		Wishlist: f.wishlist,
	}
}
