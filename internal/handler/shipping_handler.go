package handler

import (
	"net/http"

	"pricing/internal/model"
	"pricing/internal/service"
	"pricing/pkg/response"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
)

type ShippingHandler struct {
	shippingService service.ShippingService
}

func NewShippingHandler(shippingService service.ShippingService) *ShippingHandler {
	return &ShippingHandler{shippingService: shippingService}
}

func (h *ShippingHandler) RegisterRoutes(router *gin.RouterGroup) {
	shipping := router.Group("/api/shipping")
	{
		shipping.GET("/methods", h.GetShippingMethods)
		shipping.POST("/total", h.CalculateTotal)
		shipping.GET("/free-shipping-threshold/:country", h.GetFreeShippingThreshold)
		shipping.POST("/quote", h.QuoteCheckout)
	}
}

// ShippingTotalRequest is shared by /total and /quote
type ShippingTotalRequest struct {
	Subtotal         string `json:"subtotal" binding:"required"`
	ShippingMethodID string `json:"shipping_method_id" binding:"required"`
	CountryCode      string `json:"country_code" binding:"required"`
}

type ShippingTotalResponse struct {
	Subtotal     decimal.Decimal `json:"subtotal"`
	Total        decimal.Decimal `json:"total"`
	CurrencyCode string          `json:"currency_code"`
}

type FreeShippingThresholdResponse struct {
	CountryCode  string          `json:"country_code"`
	Threshold    decimal.Decimal `json:"threshold"`
	CurrencyCode string          `json:"currency_code"`
}

// GetShippingMethods lists available methods for a destination
// @Summary      List shipping methods
// @Description  Returns active methods that can carry the parcel, costed for the destination. A result with success=false means nothing can ship there.
// @Tags         shipping
// @Produce      json
// @Param        country  query     string  true   "ISO 3166-1 alpha-2 destination"
// @Param        weight   query     number  false  "Total parcel weight in kg"
// @Success      200      {object}  response.Response{data=service.ShippingMethodsResult}
// @Failure      400      {object}  response.Response
// @Router       /api/shipping/methods [get]
func (h *ShippingHandler) GetShippingMethods(c *gin.Context) {
	var weight *decimal.Decimal
	if raw := c.Query("weight"); raw != "" {
		w, ok := parseAmount(c, "weight", raw)
		if !ok {
			return
		}
		weight = &w
	}

	result := h.shippingService.GetShippingMethods(c.Query("country"), weight)
	c.JSON(http.StatusOK, response.Success(http.StatusOK, result))
}

// CalculateTotal adds shipping to a subtotal
// @Summary      Calculate order total
// @Description  Adds the shipping cost to the subtotal. An unknown method leaves the subtotal unchanged.
// @Tags         shipping
// @Accept       json
// @Produce      json
// @Param        request  body      ShippingTotalRequest  true  "Subtotal and method"
// @Success      200      {object}  response.Response{data=ShippingTotalResponse}
// @Failure      400      {object}  response.Response
// @Router       /api/shipping/total [post]
func (h *ShippingHandler) CalculateTotal(c *gin.Context) {
	var req ShippingTotalRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "Invalid request payload: "+err.Error())
		return
	}
	subtotal, ok := parseAmount(c, "subtotal", req.Subtotal)
	if !ok {
		return
	}

	total := h.shippingService.CalculateTotal(subtotal, req.ShippingMethodID, req.CountryCode)
	c.JSON(http.StatusOK, response.Success(http.StatusOK, ShippingTotalResponse{
		Subtotal:     subtotal,
		Total:        total,
		CurrencyCode: model.DefaultCurrency,
	}))
}

// GetFreeShippingThreshold returns the subtotal from which shipping is free
// @Summary      Free shipping threshold
// @Tags         shipping
// @Produce      json
// @Param        country  path      string  true  "ISO 3166-1 alpha-2 destination"
// @Success      200      {object}  response.Response{data=FreeShippingThresholdResponse}
// @Router       /api/shipping/free-shipping-threshold/{country} [get]
func (h *ShippingHandler) GetFreeShippingThreshold(c *gin.Context) {
	country := model.NormalizeCountry(c.Param("country"))
	c.JSON(http.StatusOK, response.Success(http.StatusOK, FreeShippingThresholdResponse{
		CountryCode:  country,
		Threshold:    h.shippingService.GetFreeShippingThreshold(country),
		CurrencyCode: model.DefaultCurrency,
	}))
}

// QuoteCheckout prices shipping for a cart, applying the free-shipping waiver
// @Summary      Checkout quote
// @Tags         shipping
// @Accept       json
// @Produce      json
// @Param        request  body      ShippingTotalRequest  true  "Subtotal and method"
// @Success      200      {object}  response.Response{data=service.CheckoutQuote}
// @Failure      400      {object}  response.Response
// @Failure      404      {object}  response.Response
// @Router       /api/shipping/quote [post]
func (h *ShippingHandler) QuoteCheckout(c *gin.Context) {
	var req ShippingTotalRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "Invalid request payload: "+err.Error())
		return
	}
	subtotal, ok := parseAmount(c, "subtotal", req.Subtotal)
	if !ok {
		return
	}

	quote, err := h.shippingService.QuoteCheckout(subtotal, req.ShippingMethodID, req.CountryCode)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, quote))
}
