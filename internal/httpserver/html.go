package httpserver

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"souvenir-shop/internal/domain"
)

type handlers struct {
	deps     Deps
	sessions *registry
	logger   *zap.Logger
}

// withSession runs fn with the visitor's session held exclusively.
func (h *handlers) withSession(c *gin.Context, fn func(s *session)) {
	s := h.sessions.acquire(visitorID(c))
	s.mu.Lock()
	defer s.mu.Unlock()
	s.open(c.Request.Context())
	fn(s)
}

func (h *handlers) page(c *gin.Context) {
	h.withSession(c, func(s *session) {
		c.HTML(http.StatusOK, "page", h.view(s))
	})
}

func (h *handlers) productsFragment(c *gin.Context) {
	h.withSession(c, func(s *session) {
		h.renderProducts(c, s, false)
	})
}

func (h *handlers) cartFragment(c *gin.Context) {
	h.withSession(c, func(s *session) {
		c.HTML(http.StatusOK, "cart", h.view(s))
	})
}

func (h *handlers) toastFragment(c *gin.Context) {
	h.withSession(c, func(s *session) {
		c.HTML(http.StatusOK, "toast", h.view(s))
	})
}

func (h *handlers) renderProducts(c *gin.Context, s *session, resetForm bool) {
	data := h.view(s)
	data.OOB = true
	data.ResetForm = resetForm
	c.HTML(http.StatusOK, "products", data)
}

func (h *handlers) applyFilters(c *gin.Context) {
	h.withSession(c, func(s *session) {
		s.shop.ApplyFilters(parseFilters(c.PostForm))
		h.renderProducts(c, s, false)
	})
}

func (h *handlers) clearFilters(c *gin.Context) {
	h.withSession(c, func(s *session) {
		s.shop.ClearFilters()
		h.renderProducts(c, s, true)
	})
}

func (h *handlers) setView(c *gin.Context) {
	h.withSession(c, func(s *session) {
		s.view = viewGrid
		if c.PostForm("mode") == viewList {
			s.view = viewList
		}
		h.renderProducts(c, s, false)
	})
}

// cartAction applies op and answers with the refreshed cart panel. Stock limits surface as
// an error toast and unknown products leave the cart untouched, so neither fails the request.
func (h *handlers) cartAction(c *gin.Context, op func(s *session) error) {
	h.withSession(c, func(s *session) {
		before := toastSeq(s)
		if err := op(s); err != nil && !errors.Is(err, domain.ErrStockLimit) && !errors.Is(err, domain.ErrNotFound) {
			writeError(c, err)
			return
		}
		announce(c, s, before)
		c.HTML(http.StatusOK, "cart", h.view(s))
	})
}

func (h *handlers) addToCart(c *gin.Context) {
	h.cartAction(c, func(s *session) error {
		_, err := s.shop.AddToCart(c.Request.Context(), c.Param("id"))
		return err
	})
}

func (h *handlers) increaseCartItem(c *gin.Context) {
	h.cartAction(c, func(s *session) error {
		_, err := s.shop.IncreaseCartItem(c.Request.Context(), c.Param("id"))
		return err
	})
}

func (h *handlers) decreaseCartItem(c *gin.Context) {
	h.cartAction(c, func(s *session) error {
		_, err := s.shop.DecreaseCartItem(c.Request.Context(), c.Param("id"))
		return err
	})
}

func (h *handlers) setCartQuantity(c *gin.Context) {
	n, err := parseQuantity(c.PostForm("quantity"))
	if err != nil {
		c.String(http.StatusBadRequest, err.Error())
		return
	}
	h.cartAction(c, func(s *session) error {
		_, err := s.shop.SetCartQuantity(c.Request.Context(), c.Param("id"), n)
		return err
	})
}

func (h *handlers) removeFromCart(c *gin.Context) {
	h.cartAction(c, func(s *session) error {
		s.shop.RemoveFromCart(c.Request.Context(), c.Param("id"))
		return nil
	})
}

func (h *handlers) clearCart(c *gin.Context) {
	h.cartAction(c, func(s *session) error {
		s.shop.ClearCart(c.Request.Context())
		return nil
	})
}

func (h *handlers) checkout(c *gin.Context) {
	h.withSession(c, func(s *session) {
		before := toastSeq(s)
		s.shop.Checkout()
		announce(c, s, before)
		c.HTML(http.StatusOK, "toast", h.view(s))
	})
}

func (h *handlers) toggleWishlist(c *gin.Context) {
	h.withSession(c, func(s *session) {
		before := toastSeq(s)
		if _, err := s.shop.ToggleWishlist(c.Request.Context(), c.Param("id")); err != nil && !errors.Is(err, domain.ErrNotFound) {
			writeError(c, err)
			return
		}
		announce(c, s, before)
		h.renderProducts(c, s, false)
	})
}
