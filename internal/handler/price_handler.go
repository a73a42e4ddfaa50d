package handler

import (
	"net/http"

	"pricing/internal/service"
	"pricing/pkg/response"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
)

type PriceHandler struct {
	priceService service.PriceService
}

func NewPriceHandler(priceService service.PriceService) *PriceHandler {
	return &PriceHandler{priceService: priceService}
}

func (h *PriceHandler) RegisterRoutes(router *gin.RouterGroup) {
	prices := router.Group("/api/prices")
	{
		prices.POST("/calculate", h.CalculatePrice)
	}
}

// CalculatePrice returns the VAT breakdown of a net price
// @Summary      Calculate gross price
// @Tags         prices
// @Accept       json
// @Produce      json
// @Param        request  body      service.CalculatePriceRequest  true  "Net price and destination"
// @Success      200      {object}  response.Response{data=service.PriceBreakdown}
// @Failure      400      {object}  response.Response
// @Failure      404      {object}  response.Response
// @Router       /api/prices/calculate [post]
func (h *PriceHandler) CalculatePrice(c *gin.Context) {
	var req service.CalculatePriceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "Invalid request payload: "+err.Error())
		return
	}

	base, ok := parseAmount(c, "base_price", req.BasePrice)
	if !ok {
		return
	}
	var discount *decimal.Decimal
	if req.DiscountPercentage != nil {
		d, ok := parseAmount(c, "discount_percentage", *req.DiscountPercentage)
		if !ok {
			return
		}
		discount = &d
	}

	breakdown, err := h.priceService.CalculatePrice(c.Request.Context(), base, req.CountryCode, discount, req.UseReducedRate)
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, breakdown))
}
