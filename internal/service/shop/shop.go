// Package shop holds the per-visitor state container: active filters, cart and wishlist
// over a shared catalog. Every mutation is written through to the snapshot store, pushed
// to the Renderer and announced through the Notifier.
package shop

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"souvenir-shop/internal/domain"
	"souvenir-shop/internal/notify"
	"souvenir-shop/internal/repository/snapshot"
	"souvenir-shop/internal/schedule"
	"souvenir-shop/internal/service/cart"
	"souvenir-shop/internal/service/catalog"
	"souvenir-shop/internal/service/wishlist"
)

// Snapshot keys.
const (
	CartKey     = "cart"
	WishlistKey = "wishlist"
)

// DefaultRenderDelay is the pause before the product grid replaces the loading state.
const DefaultRenderDelay = 300 * time.Millisecond

type Options struct {
	Catalog   *catalog.Catalog
	Store     snapshot.Repository
	Namespace string
	Renderer  Renderer
	Notifier  Notifier
	Scheduler schedule.Scheduler
	// RenderDelay of zero renders the grid synchronously.
	RenderDelay time.Duration
	Currency    string
	Logger      *zap.Logger
}

// Shop is the state container for one visitor. It is not safe for concurrent use; callers
// serialize access.
type Shop struct {
	catalog     *catalog.Catalog
	store       snapshot.Repository
	namespace   string
	renderer    Renderer
	notifier    Notifier
	sched       schedule.Scheduler
	renderDelay time.Duration
	currency    string
	logger      *zap.Logger

	filters     catalog.Filters
	visible     []domain.Product
	seq         uint64
	renderTimer schedule.Timer

	cart     *cart.Cart
	wishlist *wishlist.Wishlist
}

func New(opts Options) *Shop {
	s := &Shop{
		catalog:     opts.Catalog,
		store:       opts.Store,
		namespace:   opts.Namespace,
		renderer:    opts.Renderer,
		notifier:    opts.Notifier,
		sched:       opts.Scheduler,
		renderDelay: opts.RenderDelay,
		currency:    opts.Currency,
		logger:      opts.Logger,
		filters:     catalog.DefaultFilters(),
		cart:        cart.New(),
		wishlist:    wishlist.New(),
	}
	if s.store == nil {
		s.store = snapshot.NewMemory()
	}
	if s.renderer == nil {
		s.renderer = NopRenderer{}
	}
	if s.notifier == nil {
		s.notifier = nopNotifier{}
	}
	if s.sched == nil {
		s.sched = schedule.Real{}
	}
	if s.currency == "" {
		s.currency = "Rs."
	}
	if s.logger == nil {
		s.logger = zap.NewNop()
	}
	s.logger = s.logger.With(zap.String("namespace", s.namespace))
	s.visible = catalog.Visible(s.catalog, s.filters)
	return s
}

// Open loads the persisted cart and wishlist and renders every region. Missing, unreadable
// or malformed snapshots leave the corresponding state empty.
func (s *Shop) Open(ctx context.Context) {
	var lines []domain.CartLine
	if s.load(ctx, CartKey, &lines) {
		if adjusted := s.cart.Restore(lines, s.catalog.Product); adjusted > 0 {
			s.logger.Info("shop: cart snapshot adjusted to catalog", zap.Int("lines", adjusted))
			s.saveCart(ctx)
		}
	}
	var ids []string
	if s.load(ctx, WishlistKey, &ids) {
		known := func(id string) bool {
			_, ok := s.catalog.Product(id)
			return ok
		}
		if skipped := s.wishlist.Restore(ids, known); skipped > 0 {
			s.logger.Info("shop: wishlist snapshot adjusted to catalog", zap.Int("skipped", skipped))
			s.save(ctx, WishlistKey, s.wishlist.IDs())
		}
	}
	s.renderer.Cart(s.CartPanel())
	s.renderer.Wishlist(s.WishlistBadge())
	s.refresh()
}

func (s *Shop) load(ctx context.Context, key string, into any) bool {
	raw, err := s.store.Get(ctx, s.namespace, key)
	if errors.Is(err, domain.ErrNotFound) {
		return false
	}
	if err != nil {
		s.logger.Warn("shop: read snapshot failed", zap.String("key", key), zap.Error(err))
		return false
	}
	if err := json.Unmarshal(raw, into); err != nil {
		s.logger.Warn("shop: malformed snapshot ignored", zap.String("key", key), zap.Error(err))
		return false
	}
	return true
}

func (s *Shop) save(ctx context.Context, key string, value any) {
	raw, err := json.Marshal(value)
	if err != nil {
		s.logger.Error("shop: encode snapshot", zap.String("key", key), zap.Error(err))
		return
	}
	if err := s.store.Put(ctx, s.namespace, key, raw); err != nil {
		s.logger.Warn("shop: write snapshot failed", zap.String("key", key), zap.Error(err))
	}
}

// saveCart writes the cart lines, or drops the key once the cart is empty.
func (s *Shop) saveCart(ctx context.Context) {
	if !s.cart.Empty() {
		s.save(ctx, CartKey, s.cart.Lines())
		return
	}
	if err := s.store.Delete(ctx, s.namespace, CartKey); err != nil {
		s.logger.Warn("shop: delete snapshot failed", zap.String("key", CartKey), zap.Error(err))
	}
}

// Close cancels a pending grid render.
func (s *Shop) Close() {
	if s.renderTimer != nil {
		s.renderTimer.Stop()
		s.renderTimer = nil
	}
}

// Filters returns the active filter criteria.
func (s *Shop) Filters() catalog.Filters {
	return s.filters
}

// Visible returns a copy of the current visible product list.
func (s *Shop) Visible() []domain.Product {
	out := make([]domain.Product, len(s.visible))
	copy(out, s.visible)
	return out
}

func (s *Shop) SetSearch(query string) {
	s.filters.Search = query
	s.refresh()
}

func (s *Shop) SetCategory(key string) {
	s.filters.Category = key
	s.refresh()
}

func (s *Shop) SetPriceRange(id string) {
	s.filters.PriceRange = id
	s.refresh()
}

func (s *Shop) SetSort(sort catalog.Sort) {
	s.filters.Sort = sort
	s.refresh()
}

func (s *Shop) SetBestsellersOnly(on bool) {
	s.filters.BestsellersOnly = on
	s.refresh()
}

func (s *Shop) SetInStockOnly(on bool) {
	s.filters.InStockOnly = on
	s.refresh()
}

// ApplyFilters replaces every criterion at once.
func (s *Shop) ApplyFilters(f catalog.Filters) {
	s.filters = f
	s.refresh()
}

func (s *Shop) ClearFilters() {
	s.filters = catalog.DefaultFilters()
	s.refresh()
}

// refresh recomputes the visible list, updates the badge and schedules the grid render.
func (s *Shop) refresh() {
	s.filters = s.filters.Normalize()
	s.visible = catalog.Visible(s.catalog, s.filters)
	s.seq++
	s.renderer.FilterBadge(s.filters.ActiveCount())
	s.renderer.ProductsLoading()

	grid := s.ProductGrid()
	if s.renderTimer != nil {
		s.renderTimer.Stop()
		s.renderTimer = nil
	}
	if s.renderDelay <= 0 {
		s.renderer.Products(grid)
		return
	}
	renderer := s.renderer
	s.renderTimer = s.sched.AfterFunc(s.renderDelay, func() { renderer.Products(grid) })
}

// AddToCart adds one unit of the product. It returns the resulting quantity,
// domain.ErrStockLimit when no more units are available, or domain.ErrNotFound for an
// unknown id. Neither error changes any state.
func (s *Shop) AddToCart(ctx context.Context, id string) (int, error) {
	p, ok := s.catalog.Product(id)
	if !ok {
		return 0, domain.ErrNotFound
	}
	res, err := s.cart.Add(p)
	if errors.Is(err, domain.ErrStockLimit) {
		s.notifier.Show(fmt.Sprintf("Cannot add more %s. Stock limit reached.", p.Name), notify.Error)
		return res.Quantity, err
	}
	if err != nil {
		return res.Quantity, err
	}
	if res.Created {
		s.cartChanged(ctx, fmt.Sprintf("Added %s to cart!", p.Name), notify.Success)
	} else {
		s.cartChanged(ctx, fmt.Sprintf("Updated %s quantity in cart!", p.Name), notify.Success)
	}
	return res.Quantity, nil
}

// SetCartQuantity sets the quantity of a cart line, removing it for n <= 0 and clamping
// to available stock.
func (s *Shop) SetCartQuantity(ctx context.Context, id string, n int) (cart.SetResult, error) {
	item, ok := s.cart.Item(id)
	if !ok {
		return cart.SetResult{}, domain.ErrNotFound
	}
	name := item.Product.Name
	res := s.cart.SetQuantity(id, n)
	switch {
	case res.Removed:
		s.cartChanged(ctx, fmt.Sprintf("Removed %s from cart!", name), notify.Success)
	case res.Clamped:
		s.cartChanged(ctx, fmt.Sprintf("Only %d of %s available.", res.Quantity, name), notify.Error)
	default:
		s.cartChanged(ctx, fmt.Sprintf("Updated %s quantity in cart!", name), notify.Success)
	}
	return res, nil
}

// IncreaseCartItem adds one unit to an existing line.
func (s *Shop) IncreaseCartItem(ctx context.Context, id string) (int, error) {
	if _, ok := s.cart.Item(id); !ok {
		return 0, domain.ErrNotFound
	}
	return s.AddToCart(ctx, id)
}

// DecreaseCartItem removes one unit, dropping the line when it reaches zero.
func (s *Shop) DecreaseCartItem(ctx context.Context, id string) (int, error) {
	item, ok := s.cart.Item(id)
	if !ok {
		return 0, domain.ErrNotFound
	}
	res, err := s.SetCartQuantity(ctx, id, item.Quantity-1)
	return res.Quantity, err
}

// RemoveFromCart drops the line for id. Unknown ids are ignored.
func (s *Shop) RemoveFromCart(ctx context.Context, id string) {
	item, ok := s.cart.Item(id)
	if !ok {
		return
	}
	s.cart.Remove(id)
	s.cartChanged(ctx, fmt.Sprintf("Removed %s from cart!", item.Product.Name), notify.Success)
}

func (s *Shop) ClearCart(ctx context.Context) {
	s.cart.Clear()
	s.cartChanged(ctx, "Cart cleared!", notify.Success)
}

// Checkout announces the cart summary. The cart is left as is.
func (s *Shop) Checkout() CheckoutSummary {
	totals := s.cart.Totals()
	summary := CheckoutSummary{Items: totals.Items, Total: totals.Subtotal}
	if totals.Items == 0 {
		s.notifier.Show("Your cart is empty.", notify.Error)
		return summary
	}
	s.notifier.Show(fmt.Sprintf("Proceeding to checkout with %d items worth %s", totals.Items, FormatMoney(s.currency, totals.Subtotal)), notify.Success)
	s.logger.Info("shop: checkout", zap.Int("items", totals.Items), zap.String("total", totals.Subtotal.String()))
	return summary
}

func (s *Shop) cartChanged(ctx context.Context, message string, severity notify.Severity) {
	s.saveCart(ctx)
	s.renderer.Cart(s.CartPanel())
	s.notifier.Show(message, severity)
}

// ToggleWishlist flips wishlist membership for id and reports whether it was added.
func (s *Shop) ToggleWishlist(ctx context.Context, id string) (bool, error) {
	p, ok := s.catalog.Product(id)
	if !ok {
		return false, domain.ErrNotFound
	}
	added := s.wishlist.Toggle(id)
	s.save(ctx, WishlistKey, s.wishlist.IDs())
	s.renderer.Wishlist(s.WishlistBadge())
	s.refresh()
	if added {
		s.notifier.Show(fmt.Sprintf("Added %s to wishlist!", p.Name), notify.Success)
	} else {
		s.notifier.Show(fmt.Sprintf("Removed %s from wishlist!", p.Name), notify.Success)
	}
	return added, nil
}

// CartItems returns the cart lines in insertion order.
func (s *Shop) CartItems() []domain.CartItem {
	return s.cart.Items()
}

func (s *Shop) CartTotals() cart.Totals {
	return s.cart.Totals()
}

func (s *Shop) Wishlisted(id string) bool {
	return s.wishlist.Contains(id)
}

// Currency is the label prefixed to money amounts.
func (s *Shop) Currency() string {
	return s.currency
}

// Catalog exposes the shared catalog.
func (s *Shop) Catalog() *catalog.Catalog {
	return s.catalog
}

// Card presents p with this visitor's wishlist state.
func (s *Shop) Card(p domain.Product) ProductCard {
	full, empty := stars(p.Rating)
	return ProductCard{
		Product:         p,
		Wishlisted:      s.wishlist.Contains(p.ID),
		DiscountPercent: p.DiscountPercent(),
		FullStars:       full,
		EmptyStars:      empty,
		LowStock:        p.LowStock(),
	}
}

// ProductGrid snapshots the current visible list.
func (s *Shop) ProductGrid() ProductGrid {
	return s.grid(s.visible, s.filters, s.seq)
}

// Preview builds the grid f would produce without applying f or rendering anything.
func (s *Shop) Preview(f catalog.Filters) ProductGrid {
	f = f.Normalize()
	return s.grid(catalog.Visible(s.catalog, f), f, 0)
}

func (s *Shop) grid(visible []domain.Product, f catalog.Filters, seq uint64) ProductGrid {
	cards := make([]ProductCard, 0, len(visible))
	for _, p := range visible {
		cards = append(cards, s.Card(p))
	}
	var strip []ProductCard
	for _, p := range s.catalog.Bestsellers(BestsellerStripSize) {
		strip = append(strip, s.Card(p))
	}
	return ProductGrid{
		Seq:           seq,
		Title:         resultsTitle(len(cards)),
		Products:      cards,
		Bestsellers:   strip,
		Filters:       f,
		ActiveFilters: f.ActiveCount(),
	}
}

// CartPanel snapshots the cart.
func (s *Shop) CartPanel() CartPanel {
	items := s.cart.Items()
	lines := make([]CartLine, 0, len(items))
	for _, item := range items {
		lines = append(lines, CartLine{
			CartItem:    item,
			LineTotal:   item.LineTotal(),
			LineSavings: item.LineSavings(),
			AtLimit:     item.AtLimit(),
		})
	}
	totals := s.cart.Totals()
	return CartPanel{
		Title:       cartTitle(totals.Items),
		Lines:       lines,
		Totals:      totals,
		ShowSavings: totals.ShowSavings(),
		BuyLabel:    BuyLabel(totals.Items),
	}
}

func (s *Shop) WishlistBadge() WishlistBadge {
	return WishlistBadge{Count: s.wishlist.Len(), IDs: s.wishlist.IDs()}
}

func (s *Shop) FilterPanel() FilterPanel {
	sorts := make([]SortOption, 0, len(catalog.Sorts))
	for _, opt := range catalog.Sorts {
		sorts = append(sorts, SortOption{ID: opt.Sort, Label: opt.Label})
	}
	return FilterPanel{
		Categories:  s.catalog.Categories(),
		PriceRanges: s.catalog.PriceRanges(),
		Sorts:       sorts,
		Filters:     s.filters,
		ActiveCount: s.filters.ActiveCount(),
	}
}
