package httpserver

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"souvenir-shop/internal/domain"
)

type errorResponse struct {
	StatusCode int    `json:"statusCode"`
	Message    string `json:"message"`
}

func writeError(c *gin.Context, err error) {
	status := http.StatusInternalServerError
	message := "internal error"
	switch {
	case errors.Is(err, domain.ErrStockLimit):
		status = http.StatusConflict
		message = err.Error()
	case errors.Is(err, domain.ErrNotFound):
		status = http.StatusNotFound
		message = err.Error()
	default:
		_ = c.Error(err)
	}
	c.AbortWithStatusJSON(status, errorResponse{StatusCode: status, Message: message})
}

func badRequest(c *gin.Context, message string) {
	c.AbortWithStatusJSON(http.StatusBadRequest, errorResponse{StatusCode: http.StatusBadRequest, Message: message})
}
