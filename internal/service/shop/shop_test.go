package shop

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"souvenir-shop/internal/domain"
	"souvenir-shop/internal/notify"
	"souvenir-shop/internal/repository/snapshot"
	"souvenir-shop/internal/schedule"
	"souvenir-shop/internal/service/catalog"
)

type recordingRenderer struct {
	mu       sync.Mutex
	loading  int
	grids    []ProductGrid
	badges   []int
	carts    []CartPanel
	wishlist []WishlistBadge
}

func (r *recordingRenderer) ProductsLoading() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.loading++
}

func (r *recordingRenderer) Products(g ProductGrid) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.grids = append(r.grids, g)
}

func (r *recordingRenderer) FilterBadge(n int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.badges = append(r.badges, n)
}

func (r *recordingRenderer) Cart(p CartPanel) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.carts = append(r.carts, p)
}

func (r *recordingRenderer) Wishlist(b WishlistBadge) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.wishlist = append(r.wishlist, b)
}

func (r *recordingRenderer) lastCart() CartPanel {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.carts[len(r.carts)-1]
}

type recordingNotifier struct {
	shown []notify.Notification
}

func (n *recordingNotifier) Show(message string, severity notify.Severity) notify.Notification {
	note := notify.Notification{Message: message, Severity: severity, Seq: uint64(len(n.shown) + 1)}
	n.shown = append(n.shown, note)
	return note
}

func (n *recordingNotifier) last() notify.Notification {
	return n.shown[len(n.shown)-1]
}

type failingStore struct{}

func (failingStore) Get(context.Context, string, string) ([]byte, error) {
	return nil, errors.New("store down")
}

func (failingStore) Put(context.Context, string, string, []byte) error {
	return errors.New("store down")
}

func (failingStore) Delete(context.Context, string, string) error {
	return errors.New("store down")
}

func testCatalog(t *testing.T) *catalog.Catalog {
	t.Helper()
	money := decimal.NewFromInt
	c, err := catalog.New([]domain.Product{
		{ID: "thangka", Name: "Thangka Painting", Description: "Hand-painted Buddhist art", Price: money(850), OriginalPrice: money(1200), Category: "artwork", Rating: 4.8, Reviews: 23, InStock: 15, Bestseller: true},
		{ID: "bowl", Name: "Singing Bowl", Description: "Hand-hammered bronze", Price: money(380), OriginalPrice: money(500), Category: "handicrafts", Rating: 4.9, Reviews: 41, InStock: 3, Bestseller: true},
		{ID: "flags", Name: "Prayer Flags", Description: "Cotton prayer flags", Price: money(300), OriginalPrice: money(300), Category: "textiles", Rating: 4.6, Reviews: 18, InStock: 20},
		{ID: "pot", Name: "Clay Pot", Description: "Thimi pottery", Price: money(280), OriginalPrice: money(350), Category: "pottery", Rating: 4.7, Reviews: 12, InStock: 0},
	}, []domain.Category{{Key: "artwork", Name: "Artwork"}, {Key: "handicrafts", Name: "Handicrafts"}}, nil)
	require.NoError(t, err)
	return c
}

type fixture struct {
	shop     *Shop
	store    snapshot.Repository
	renderer *recordingRenderer
	notes    *recordingNotifier
	clock    *schedule.Manual
}

func newFixture(t *testing.T, store snapshot.Repository, delay time.Duration) fixture {
	t.Helper()
	f := fixture{
		store:    store,
		renderer: &recordingRenderer{},
		notes:    &recordingNotifier{},
		clock:    schedule.NewManual(),
	}
	f.shop = New(Options{
		Catalog:     testCatalog(t),
		Store:       store,
		Namespace:   "visitor-1",
		Renderer:    f.renderer,
		Notifier:    f.notes,
		Scheduler:   f.clock,
		RenderDelay: delay,
	})
	f.shop.Open(context.Background())
	return f
}

func TestOpenWithEmptyStore(t *testing.T) {
	f := newFixture(t, snapshot.NewMemory(), 0)
	assert.Empty(t, f.shop.CartItems())
	assert.Zero(t, f.shop.WishlistBadge().Count)
	require.Len(t, f.renderer.grids, 1)
	assert.Equal(t, "All Products (4)", f.renderer.grids[0].Title)
	assert.Equal(t, []string{"thangka", "bowl"}, cardIDs(f.renderer.grids[0].Bestsellers))
	assert.True(t, f.renderer.lastCart().Empty())
}

func TestRoundTripThroughStore(t *testing.T) {
	ctx := context.Background()
	store := snapshot.NewMemory()
	f := newFixture(t, store, 0)

	_, err := f.shop.AddToCart(ctx, "thangka")
	require.NoError(t, err)
	_, err = f.shop.AddToCart(ctx, "bowl")
	require.NoError(t, err)
	_, err = f.shop.AddToCart(ctx, "thangka")
	require.NoError(t, err)
	_, err = f.shop.ToggleWishlist(ctx, "flags")
	require.NoError(t, err)
	_, err = f.shop.ToggleWishlist(ctx, "thangka")
	require.NoError(t, err)

	restarted := newFixture(t, store, 0)
	assert.Equal(t, f.shop.CartItems(), restarted.shop.CartItems())
	assert.Equal(t, f.shop.WishlistBadge(), restarted.shop.WishlistBadge())
	assert.True(t, restarted.shop.Wishlisted("flags"))

	raw, err := store.Get(ctx, "visitor-1", CartKey)
	require.NoError(t, err)
	assert.JSONEq(t, `[{"productId":"thangka","quantity":2},{"productId":"bowl","quantity":1}]`, string(raw))

	raw, err = store.Get(ctx, "visitor-1", WishlistKey)
	require.NoError(t, err)
	assert.JSONEq(t, `["flags","thangka"]`, string(raw))
}

func TestMalformedSnapshotFallsBackToEmpty(t *testing.T) {
	ctx := context.Background()
	store := snapshot.NewMemory()
	require.NoError(t, store.Put(ctx, "visitor-1", CartKey, []byte(`{not json`)))
	require.NoError(t, store.Put(ctx, "visitor-1", WishlistKey, []byte(`{"a":1}`)))

	f := newFixture(t, store, 0)
	assert.Empty(t, f.shop.CartItems())
	assert.Zero(t, f.shop.WishlistBadge().Count)

	_, err := f.shop.AddToCart(ctx, "flags")
	require.NoError(t, err)
	raw, err := store.Get(ctx, "visitor-1", CartKey)
	require.NoError(t, err)
	assert.JSONEq(t, `[{"productId":"flags","quantity":1}]`, string(raw))
}

func TestSnapshotReconciledWithCatalog(t *testing.T) {
	ctx := context.Background()
	store := snapshot.NewMemory()
	require.NoError(t, store.Put(ctx, "visitor-1", CartKey, []byte(`[{"productId":"bowl","quantity":9},{"productId":"retired","quantity":1},{"productId":"pot","quantity":1}]`)))
	require.NoError(t, store.Put(ctx, "visitor-1", WishlistKey, []byte(`["retired","bowl","bowl"]`)))

	f := newFixture(t, store, 0)
	items := f.shop.CartItems()
	require.Len(t, items, 1)
	assert.Equal(t, "bowl", items[0].Product.ID)
	assert.Equal(t, 3, items[0].Quantity)
	assert.Equal(t, []string{"bowl"}, f.shop.WishlistBadge().IDs)

	raw, err := store.Get(ctx, "visitor-1", CartKey)
	require.NoError(t, err)
	assert.JSONEq(t, `[{"productId":"bowl","quantity":3}]`, string(raw))
	raw, err = store.Get(ctx, "visitor-1", WishlistKey)
	require.NoError(t, err)
	assert.JSONEq(t, `["bowl"]`, string(raw))
}

func TestCartSnapshotDroppedWhenNothingSurvives(t *testing.T) {
	ctx := context.Background()
	store := snapshot.NewMemory()
	require.NoError(t, store.Put(ctx, "visitor-1", CartKey, []byte(`[{"productId":"pot","quantity":2}]`)))

	f := newFixture(t, store, 0)
	assert.Empty(t, f.shop.CartItems())

	_, err := store.Get(ctx, "visitor-1", CartKey)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestAddToCartSaturation(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, snapshot.NewMemory(), 0)

	for want := 1; want <= 3; want++ {
		qty, err := f.shop.AddToCart(ctx, "bowl")
		require.NoError(t, err)
		assert.Equal(t, want, qty)
	}
	assert.Equal(t, notify.Notification{Message: "Updated Singing Bowl quantity in cart!", Severity: notify.Success, Seq: 3}, f.notes.last())

	qty, err := f.shop.AddToCart(ctx, "bowl")
	assert.ErrorIs(t, err, domain.ErrStockLimit)
	assert.Equal(t, 3, qty)
	assert.Equal(t, "Cannot add more Singing Bowl. Stock limit reached.", f.notes.last().Message)
	assert.Equal(t, notify.Error, f.notes.last().Severity)
	assert.Equal(t, 3, f.shop.CartItems()[0].Quantity)

	panel := f.renderer.lastCart()
	assert.True(t, panel.Lines[0].AtLimit)
	assert.Equal(t, "Buy Now • 3 items", panel.BuyLabel)
	assert.Equal(t, "Shopping Cart (3)", panel.Title)
}

func TestAddToCartOutOfStockAndUnknown(t *testing.T) {
	ctx := context.Background()
	store := snapshot.NewMemory()
	f := newFixture(t, store, 0)

	_, err := f.shop.AddToCart(ctx, "pot")
	assert.ErrorIs(t, err, domain.ErrStockLimit)

	_, err = f.shop.AddToCart(ctx, "ghost")
	assert.ErrorIs(t, err, domain.ErrNotFound)

	_, err = f.shop.ToggleWishlist(ctx, "ghost")
	assert.ErrorIs(t, err, domain.ErrNotFound)

	f.shop.RemoveFromCart(ctx, "ghost")
	assert.Empty(t, f.shop.CartItems())

	_, err = store.Get(ctx, "visitor-1", CartKey)
	assert.ErrorIs(t, err, domain.ErrNotFound, "rejected operations do not persist")
}

func TestSetCartQuantity(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, snapshot.NewMemory(), 0)
	_, err := f.shop.AddToCart(ctx, "bowl")
	require.NoError(t, err)

	res, err := f.shop.SetCartQuantity(ctx, "bowl", 7)
	require.NoError(t, err)
	assert.True(t, res.Clamped)
	assert.Equal(t, 3, res.Quantity)
	assert.Equal(t, "Only 3 of Singing Bowl available.", f.notes.last().Message)

	qty, err := f.shop.DecreaseCartItem(ctx, "bowl")
	require.NoError(t, err)
	assert.Equal(t, 2, qty)

	_, err = f.shop.IncreaseCartItem(ctx, "thangka")
	assert.ErrorIs(t, err, domain.ErrNotFound, "increase only applies to existing lines")

	res, err = f.shop.SetCartQuantity(ctx, "bowl", 0)
	require.NoError(t, err)
	assert.True(t, res.Removed)
	assert.Equal(t, "Removed Singing Bowl from cart!", f.notes.last().Message)
	assert.Empty(t, f.shop.CartItems())
	assert.Empty(t, f.renderer.lastCart().BuyLabel)
}

func TestCartTotalsAndCheckout(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, snapshot.NewMemory(), 0)

	summary := f.shop.Checkout()
	assert.Zero(t, summary.Items)
	assert.Equal(t, notify.Notification{Message: "Your cart is empty.", Severity: notify.Error, Seq: 1}, f.notes.last())

	_, _ = f.shop.AddToCart(ctx, "thangka")
	_, _ = f.shop.AddToCart(ctx, "flags")
	_, _ = f.shop.AddToCart(ctx, "flags")

	panel := f.shop.CartPanel()
	assert.True(t, panel.Totals.Subtotal.Equal(decimal.NewFromInt(1450)))
	assert.True(t, panel.Totals.Savings.Equal(decimal.NewFromInt(350)))
	assert.True(t, panel.ShowSavings)

	summary = f.shop.Checkout()
	assert.Equal(t, 3, summary.Items)
	assert.Equal(t, "Proceeding to checkout with 3 items worth Rs. 1450", f.notes.last().Message)
	assert.Len(t, f.shop.CartItems(), 2, "checkout does not mutate the cart")

	f.shop.ClearCart(ctx)
	assert.Equal(t, "Cart cleared!", f.notes.last().Message)
	assert.True(t, f.renderer.lastCart().Empty())

	_, err := f.store.Get(ctx, "visitor-1", CartKey)
	assert.ErrorIs(t, err, domain.ErrNotFound, "an empty cart leaves no snapshot")
}

func TestToggleWishlistRerendersGrid(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, snapshot.NewMemory(), 0)

	added, err := f.shop.ToggleWishlist(ctx, "flags")
	require.NoError(t, err)
	assert.True(t, added)
	assert.Equal(t, "Added Prayer Flags to wishlist!", f.notes.last().Message)

	grid := f.renderer.grids[len(f.renderer.grids)-1]
	for _, card := range grid.Products {
		assert.Equal(t, card.ID == "flags", card.Wishlisted)
	}

	added, err = f.shop.ToggleWishlist(ctx, "flags")
	require.NoError(t, err)
	assert.False(t, added)
	assert.Equal(t, "Removed Prayer Flags from wishlist!", f.notes.last().Message)
	assert.Zero(t, f.renderer.wishlist[len(f.renderer.wishlist)-1].Count)
}

func TestFiltersUpdateBadgeAndGrid(t *testing.T) {
	f := newFixture(t, snapshot.NewMemory(), 0)

	f.shop.SetSearch("x")
	assert.Equal(t, 1, f.renderer.badges[len(f.renderer.badges)-1])

	f.shop.ClearFilters()
	f.shop.SetCategory("handicrafts")
	f.shop.SetInStockOnly(true)
	grid := f.renderer.grids[len(f.renderer.grids)-1]
	assert.Equal(t, []string{"bowl"}, cardIDs(grid.Products))
	assert.Equal(t, "All Products (1)", grid.Title)
	assert.Equal(t, 2, grid.ActiveFilters)

	f.shop.ApplyFilters(catalog.Filters{Sort: catalog.SortPriceLow})
	assert.Equal(t, []string{"pot", "flags", "bowl", "thangka"}, ids(f.shop.Visible()))
	assert.Equal(t, 1, f.shop.FilterPanel().ActiveCount)

	f.shop.SetSort("unknown")
	assert.Equal(t, catalog.SortFeatured, f.shop.Filters().Sort)
}

func TestRenderDelayIsScheduled(t *testing.T) {
	f := newFixture(t, snapshot.NewMemory(), DefaultRenderDelay)
	f.clock.Advance(DefaultRenderDelay)
	require.Len(t, f.renderer.grids, 1)

	f.shop.SetSearch("bowl")
	f.shop.SetSearch("prayer")
	assert.Equal(t, 3, f.renderer.loading)
	assert.Len(t, f.renderer.grids, 1, "grid waits for the delay")

	f.clock.Advance(DefaultRenderDelay - time.Millisecond)
	assert.Len(t, f.renderer.grids, 1)

	f.clock.Advance(time.Millisecond)
	require.Len(t, f.renderer.grids, 2, "superseded render is cancelled")
	last := f.renderer.grids[1]
	assert.Equal(t, []string{"flags"}, cardIDs(last.Products))
	assert.Greater(t, last.Seq, f.renderer.grids[0].Seq)

	f.shop.SetSearch("")
	f.shop.Close()
	f.clock.Advance(time.Second)
	assert.Len(t, f.renderer.grids, 2)
}

func TestStoreFailuresAreLogged(t *testing.T) {
	core, logs := observer.New(zapcore.WarnLevel)
	s := New(Options{
		Catalog:   testCatalog(t),
		Store:     failingStore{},
		Namespace: "visitor-2",
		Logger:    zap.New(core),
	})
	s.Open(context.Background())

	qty, err := s.AddToCart(context.Background(), "flags")
	require.NoError(t, err)
	assert.Equal(t, 1, qty)

	assert.Equal(t, 2, logs.FilterMessage("shop: read snapshot failed").Len())
	assert.Equal(t, 1, logs.FilterMessage("shop: write snapshot failed").Len())

	s.ClearCart(context.Background())
	assert.Equal(t, 1, logs.FilterMessage("shop: delete snapshot failed").Len())
}

func TestFormatting(t *testing.T) {
	assert.Equal(t, "Rs. 850", FormatMoney("Rs.", decimal.NewFromInt(850)))
	assert.Equal(t, "Rs. 99.50", FormatMoney("Rs.", decimal.RequireFromString("99.5")))
	assert.Equal(t, "Buy Now • 1 item", BuyLabel(1))
	assert.Equal(t, "", BuyLabel(0))

	full, empty := stars(4.8)
	assert.Equal(t, 4, full)
	assert.Equal(t, 1, empty)
}

func cardIDs(cards []ProductCard) []string {
	out := make([]string, 0, len(cards))
	for _, c := range cards {
		out = append(out, c.ID)
	}
	return out
}

func ids(products []domain.Product) []string {
	out := make([]string, 0, len(products))
	for _, p := range products {
		out = append(out, p.ID)
	}
	return out
}

func TestPreviewLeavesStateAlone(t *testing.T) {
	f := newFixture(t, snapshot.NewMemory(), 0)
	_, err := f.shop.ToggleWishlist(context.Background(), "bowl")
	require.NoError(t, err)
	grids := len(f.renderer.grids)

	grid := f.shop.Preview(catalog.Filters{Category: "handicrafts"})

	require.Len(t, grid.Products, 1)
	assert.Equal(t, "bowl", grid.Products[0].ID)
	assert.True(t, grid.Products[0].Wishlisted)
	assert.Equal(t, "All Products (1)", grid.Title)
	assert.Equal(t, 1, grid.ActiveFilters)
	assert.Equal(t, catalog.DefaultFilters(), f.shop.Filters())
	assert.Len(t, f.renderer.grids, grids)
}
