package handler

import (
	"errors"
	"net/http"

	"github.com/Jaime0506/app-maestro-detail/internal/logger"
	"github.com/Jaime0506/app-maestro-detail/internal/service"
	"github.com/Jaime0506/app-maestro-detail/pkg/response"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// respondError maps service errors onto HTTP statuses.
func respondError(c *gin.Context, err error) {
	var validationErr *service.ValidationError
	var stockErr *service.StockError

	switch {
	case errors.As(err, &validationErr):
		c.JSON(http.StatusBadRequest, response.ValidationError(http.StatusBadRequest, service.ErrValidation.Error(), validationErr.Fields))
	case errors.As(err, &stockErr):
		c.JSON(http.StatusConflict, response.ErrorWithMessages(http.StatusConflict, service.ErrInsufficientStock.Error(), stockErr.Messages))
	case errors.Is(err, service.ErrNotFound):
		c.JSON(http.StatusNotFound, response.Error(http.StatusNotFound, err.Error()))
	case errors.Is(err, service.ErrStockConflict):
		c.JSON(http.StatusConflict, response.Error(http.StatusConflict, err.Error()))
	case errors.Is(err, service.ErrTotalMismatch),
		errors.Is(err, service.ErrIdempotencyMismatch):
		c.JSON(http.StatusUnprocessableEntity, response.Error(http.StatusUnprocessableEntity, err.Error()))
	case errors.Is(err, service.ErrEmptyItems),
		errors.Is(err, service.ErrValidation),
		errors.Is(err, service.ErrInvalidStatus),
		errors.Is(err, service.ErrInvalidMovement):
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, err.Error()))
	default:
		logger.FromContext(c.Request.Context()).Error("request failed", zap.String("path", c.FullPath()), zap.Error(err))
		_ = c.Error(err)
		c.JSON(http.StatusInternalServerError, response.Error(http.StatusInternalServerError, "internal server error"))
	}
}

func respondBindError(c *gin.Context, err error) {
	c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Invalid request payload: "+err.Error()))
}
