package handler

import (
	"errors"
	"net/http"

	"pricing/internal/service"
	"pricing/pkg/logger"
	"pricing/pkg/response"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// writeError maps service errors onto HTTP status codes. Anything unrecognised is a 500.
func writeError(c *gin.Context, err error) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, service.ErrCountryRequired),
		errors.Is(err, service.ErrInvalidTaxRate),
		errors.Is(err, service.ErrNegativePrice),
		errors.Is(err, service.ErrInvalidDiscount):
		status = http.StatusBadRequest
	case errors.Is(err, service.ErrShippingMethodNotFound),
		errors.Is(err, service.ErrTaxRateNotFound):
		status = http.StatusNotFound
	case errors.Is(err, service.ErrTaxRateOverlap):
		status = http.StatusConflict
	case errors.Is(err, service.ErrShippingUnavailable):
		status = http.StatusUnprocessableEntity
	}

	if status == http.StatusInternalServerError {
		logger.FromGin(c, zap.L()).Error("request failed", zap.Error(err))
		_ = c.Error(err)
		c.JSON(status, response.Error(status, "Internal server error"))
		return
	}
	c.JSON(status, response.Error(status, err.Error()))
}

func badRequest(c *gin.Context, msg string) {
	c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, msg))
}

// parseAmount reads a decimal from a string field. name is used in the error message.
func parseAmount(c *gin.Context, name, value string) (decimal.Decimal, bool) {
	d, err := decimal.NewFromString(value)
	if err != nil {
		badRequest(c, "Invalid "+name+": "+value)
		return decimal.Zero, false
	}
	return d, true
}
