package httpserver

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"souvenir-shop/internal/service/visitor"
)

const (
	visitorCookie = "shop_visitor"
	visitorCtxKey = "visitorID"
)

// visitorMiddleware resolves the visitor id from its cookie, issuing a new one when the
// cookie is missing or invalid.
func visitorMiddleware(visitors *visitor.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		raw, _ := c.Cookie(visitorCookie)
		id, err := visitors.Resolve(raw)
		if err != nil {
			id = visitors.Issue()
			c.SetSameSite(http.SameSiteLaxMode)
			c.SetCookie(visitorCookie, id, visitors.CookieMaxAgeSeconds(), "/", "", false, true)
		}
		c.Set(visitorCtxKey, id)
		c.Next()
	}
}

func visitorID(c *gin.Context) string {
	return c.GetString(visitorCtxKey)
}
