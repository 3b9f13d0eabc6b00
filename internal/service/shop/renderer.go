package shop

import "souvenir-shop/internal/notify"

// Renderer receives immutable snapshots after every state change. Products may be called
// from a timer goroutine, so implementations must guard their own state.
type Renderer interface {
	ProductsLoading()
	Products(grid ProductGrid)
	FilterBadge(count int)
	Cart(panel CartPanel)
	Wishlist(badge WishlistBadge)
}

// Notifier surfaces a transient message to the visitor.
type Notifier interface {
	Show(message string, severity notify.Severity) notify.Notification
}

// NopRenderer discards every snapshot.
type NopRenderer struct{}

func (NopRenderer) ProductsLoading() {}
func (NopRenderer) Products(ProductGrid) {}
func (NopRenderer) FilterBadge(int) {}
func (NopRenderer) Cart(CartPanel) {}
func (NopRenderer) Wishlist(WishlistBadge) {}

type nopNotifier struct{}

func (nopNotifier) Show(message string, severity notify.Severity) notify.Notification {
	return notify.Notification{Message: message, Severity: severity}
}
