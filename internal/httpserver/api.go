package httpserver

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"souvenir-shop/internal/domain"
	"souvenir-shop/internal/notify"
	"souvenir-shop/internal/service/catalog"
	"souvenir-shop/internal/service/shop"
)

type catalogResponse struct {
	Categories  []domain.Category   `json:"categories"`
	PriceRanges []domain.PriceRange `json:"priceRanges"`
	Sorts       []shop.SortOption   `json:"sorts"`
	Products    []domain.Product    `json:"products"`
}

type productsResponse struct {
	Title    string             `json:"title"`
	Count    int                `json:"count"`
	Filters  catalog.Filters    `json:"filters"`
	Products []shop.ProductCard `json:"products"`
}

type cartResponse struct {
	Cart         shop.CartPanel       `json:"cart"`
	Notification *notify.Notification `json:"notification,omitempty"`
}

type checkoutResponse struct {
	Checkout     shop.CheckoutSummary `json:"checkout"`
	Notification *notify.Notification `json:"notification,omitempty"`
}

type wishlistResponse struct {
	Wishlist     shop.WishlistBadge   `json:"wishlist"`
	Added        *bool                `json:"added,omitempty"`
	Notification *notify.Notification `json:"notification,omitempty"`
}

type addItemRequest struct {
	ProductID string `json:"productId" binding:"required"`
}

type setQuantityRequest struct {
	Quantity *int `json:"quantity" binding:"required"`
}

func (h *handlers) apiCatalog(c *gin.Context) {
	sorts := make([]shop.SortOption, 0, len(catalog.Sorts))
	for _, opt := range catalog.Sorts {
		sorts = append(sorts, shop.SortOption{ID: opt.Sort, Label: opt.Label})
	}
	c.JSON(http.StatusOK, catalogResponse{
		Categories:  h.deps.Catalog.Categories(),
		PriceRanges: h.deps.Catalog.PriceRanges(),
		Sorts:       sorts,
		Products:    h.deps.Catalog.Products(),
	})
}

// apiProducts answers a filter query without touching the visitor's active filters.
func (h *handlers) apiProducts(c *gin.Context) {
	h.withSession(c, func(s *session) {
		grid := s.shop.Preview(parseFilters(c.Query))
		c.JSON(http.StatusOK, productsResponse{
			Title:    grid.Title,
			Count:    len(grid.Products),
			Filters:  grid.Filters,
			Products: grid.Products,
		})
	})
}

func (h *handlers) apiProduct(c *gin.Context) {
	p, ok := h.deps.Catalog.Product(c.Param("id"))
	if !ok {
		writeError(c, domain.ErrNotFound)
		return
	}
	h.withSession(c, func(s *session) {
		c.JSON(http.StatusOK, s.shop.Card(p))
	})
}

func (h *handlers) apiCart(c *gin.Context) {
	h.withSession(c, func(s *session) {
		c.JSON(http.StatusOK, cartResponse{Cart: s.shop.CartPanel()})
	})
}

// apiCartAction applies op and answers with the cart. Unknown products are ignored;
// a stock limit is a conflict.
func (h *handlers) apiCartAction(c *gin.Context, op func(s *session) error) {
	h.withSession(c, func(s *session) {
		before := toastSeq(s)
		if err := op(s); err != nil && !errors.Is(err, domain.ErrNotFound) {
			writeError(c, err)
			return
		}
		c.JSON(http.StatusOK, cartResponse{
			Cart:         s.shop.CartPanel(),
			Notification: announce(c, s, before),
		})
	})
}

func (h *handlers) apiAddToCart(c *gin.Context) {
	var req addItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "productId is required")
		return
	}
	h.apiCartAction(c, func(s *session) error {
		_, err := s.shop.AddToCart(c.Request.Context(), req.ProductID)
		return err
	})
}

func (h *handlers) apiSetCartQuantity(c *gin.Context) {
	var req setQuantityRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "quantity is required")
		return
	}
	h.apiCartAction(c, func(s *session) error {
		_, err := s.shop.SetCartQuantity(c.Request.Context(), c.Param("id"), *req.Quantity)
		return err
	})
}

func (h *handlers) apiRemoveFromCart(c *gin.Context) {
	h.apiCartAction(c, func(s *session) error {
		s.shop.RemoveFromCart(c.Request.Context(), c.Param("id"))
		return nil
	})
}

func (h *handlers) apiClearCart(c *gin.Context) {
	h.apiCartAction(c, func(s *session) error {
		s.shop.ClearCart(c.Request.Context())
		return nil
	})
}

func (h *handlers) apiCheckout(c *gin.Context) {
	h.withSession(c, func(s *session) {
		before := toastSeq(s)
		summary := s.shop.Checkout()
		c.JSON(http.StatusOK, checkoutResponse{
			Checkout:     summary,
			Notification: announce(c, s, before),
		})
	})
}

func (h *handlers) apiWishlist(c *gin.Context) {
	h.withSession(c, func(s *session) {
		c.JSON(http.StatusOK, wishlistResponse{Wishlist: s.shop.WishlistBadge()})
	})
}

func (h *handlers) apiToggleWishlist(c *gin.Context) {
	h.withSession(c, func(s *session) {
		before := toastSeq(s)
		added, err := s.shop.ToggleWishlist(c.Request.Context(), c.Param("id"))
		resp := wishlistResponse{Wishlist: s.shop.WishlistBadge()}
		switch {
		case errors.Is(err, domain.ErrNotFound):
		case err != nil:
			writeError(c, err)
			return
		default:
			resp.Added = &added
			resp.Notification = announce(c, s, before)
		}
		c.JSON(http.StatusOK, resp)
	})
}
