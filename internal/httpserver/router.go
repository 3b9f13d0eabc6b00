package httpserver

import (
	"embed"
	"errors"
	"html/template"
	"net/http"
	"slices"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"souvenir-shop/internal/markup"
	"souvenir-shop/internal/schedule"
	"souvenir-shop/internal/service/shop"
	"souvenir-shop/internal/service/visitor"
)

//go:embed templates/*.tmpl
var templatesFS embed.FS

const (
	requestIDHeader = "X-Request-ID"
	requestIDKey    = "requestID"
)

// buildRouter wires the storefront pages, fragments and JSON API.
func buildRouter(logger *zap.Logger, deps Deps) (*gin.Engine, *registry, error) {
	if deps.Catalog == nil {
		return nil, nil, errors.New("httpserver: catalog is required")
	}
	if deps.Visitors == nil {
		deps.Visitors = visitor.New(0)
	}
	if deps.Markup == nil {
		deps.Markup = markup.New()
	}
	if deps.Scheduler == nil {
		deps.Scheduler = schedule.Real{}
	}
	if deps.Options.Currency == "" {
		deps.Options.Currency = "Rs."
	}
	if deps.Options.RenderDelay < 0 {
		deps.Options.RenderDelay = shop.DefaultRenderDelay
	}

	tmpl, err := template.New("storefront").
		Funcs(templateFuncs(deps.Options.Currency, deps.Markup)).
		ParseFS(templatesFS, "templates/*.tmpl")
	if err != nil {
		return nil, nil, err
	}

	sessions := newRegistry(deps, logger)
	h := &handlers{deps: deps, sessions: sessions, logger: logger}

	gin.SetMode(gin.ReleaseMode)
	router := gin.New()
	router.SetHTMLTemplate(tmpl)
	router.Use(requestLogger(logger), gin.Recovery())

	router.GET("/healthz", healthHandler)
	router.GET("/readyz", readyHandler(deps.Checks))

	pages := router.Group("/", visitorMiddleware(deps.Visitors))
	pages.GET("/", h.page)
	pages.GET("/fragments/products", h.productsFragment)
	pages.GET("/fragments/cart", h.cartFragment)
	pages.GET("/fragments/toast", h.toastFragment)
	pages.POST("/filters", h.applyFilters)
	pages.POST("/filters/clear", h.clearFilters)
	pages.POST("/view", h.setView)
	pages.POST("/cart/items/:id", h.addToCart)
	pages.POST("/cart/items/:id/increase", h.increaseCartItem)
	pages.POST("/cart/items/:id/decrease", h.decreaseCartItem)
	pages.POST("/cart/items/:id/quantity", h.setCartQuantity)
	pages.POST("/cart/items/:id/remove", h.removeFromCart)
	pages.POST("/cart/clear", h.clearCart)
	pages.POST("/checkout", h.checkout)
	pages.POST("/wishlist/:id/toggle", h.toggleWishlist)

	corsHandler := corsMiddleware(deps.Options.CORSOrigins)
	router.OPTIONS("/api/*path", corsHandler, func(c *gin.Context) { c.Status(http.StatusNoContent) })

	api := router.Group("/api", corsHandler, visitorMiddleware(deps.Visitors))
	api.GET("/catalog", h.apiCatalog)
	api.GET("/products", h.apiProducts)
	api.GET("/products/:id", h.apiProduct)
	api.GET("/cart", h.apiCart)
	api.POST("/cart/items", h.apiAddToCart)
	api.PUT("/cart/items/:id", h.apiSetCartQuantity)
	api.DELETE("/cart/items/:id", h.apiRemoveFromCart)
	api.DELETE("/cart", h.apiClearCart)
	api.POST("/checkout", h.apiCheckout)
	api.GET("/wishlist", h.apiWishlist)
	api.POST("/wishlist/:id/toggle", h.apiToggleWishlist)

	return router, sessions, nil
}

func corsMiddleware(origins []string) gin.HandlerFunc {
	cfg := cors.Config{
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept", requestIDHeader},
		ExposeHeaders:    []string{requestIDHeader},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}
	if len(origins) == 0 || slices.Contains(origins, "*") {
		cfg.AllowAllOrigins = true
		cfg.AllowCredentials = false
	} else {
		cfg.AllowOrigins = origins
	}
	return cors.New(cfg)
}

// requestLogger logs one line per request and tags it with a request id.
func requestLogger(logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		reqID := c.GetHeader(requestIDHeader)
		if reqID == "" {
			reqID = uuid.NewString()
		}
		c.Set(requestIDKey, reqID)
		c.Header(requestIDHeader, reqID)

		c.Next()

		fields := []zap.Field{
			zap.String("method", c.Request.Method),
			zap.String("path", c.Request.URL.Path),
			zap.Int("status", c.Writer.Status()),
			zap.Duration("latency", time.Since(start)),
			zap.String("request_id", reqID),
		}
		if len(c.Errors) > 0 {
			fields = append(fields, zap.String("errors", c.Errors.String()))
		}
		switch {
		case c.Writer.Status() >= 500:
			logger.Error("http: request", fields...)
		default:
			logger.Info("http: request", fields...)
		}
	}
}
