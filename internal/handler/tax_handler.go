package handler

import (
	"net/http"
	"time"

	"pricing/internal/middleware"
	"pricing/internal/service"
	"pricing/pkg/pagination"
	"pricing/pkg/response"

	"github.com/gin-gonic/gin"
)

type TaxHandler struct {
	taxService service.TaxService
}

func NewTaxHandler(taxService service.TaxService) *TaxHandler {
	return &TaxHandler{taxService: taxService}
}

func (h *TaxHandler) RegisterRoutes(router *gin.RouterGroup) {
	tax := router.Group("/api/tax-rates")
	{
		tax.GET("", h.GetTaxRates)
		tax.GET("/:country/active", h.GetActiveTaxRate)
	}

	// rate history is append-only; only admins may extend it
	admin := tax.Group("")
	admin.Use(middleware.RequireRole(middleware.RoleAdmin))
	{
		admin.POST("", h.CreateTaxRate)
		admin.POST("/supersede", h.SupersedeTaxRate)
	}
}

// GetTaxRates lists stored validity windows
// @Summary      List tax rates
// @Tags         tax
// @Produce      json
// @Param        country  query     string  false  "Filter by country"
// @Param        page     query     int     false  "Page number (default 1)"
// @Param        limit    query     int     false  "Items per page (default 20, max 100)"
// @Success      200      {object}  response.Response{data=response.Page{items=[]service.TaxRateResponse}}
// @Router       /api/tax-rates [get]
func (h *TaxHandler) GetTaxRates(c *gin.Context) {
	p := pagination.Parse(c)

	rates, total, err := h.taxService.ListTaxRates(c.Request.Context(), c.Query("country"), p.Page, p.Limit)
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, response.Paged(http.StatusOK, rates, total, p.Page, p.Limit))
}

// GetActiveTaxRate returns the rate in force on a day
// @Summary      Active tax rate
// @Tags         tax
// @Produce      json
// @Param        country  path      string  true   "ISO 3166-1 alpha-2 country"
// @Param        date     query     string  false  "YYYY-MM-DD, defaults to today (UTC)"
// @Success      200      {object}  response.Response{data=service.TaxRateResponse}
// @Failure      400      {object}  response.Response
// @Failure      404      {object}  response.Response
// @Router       /api/tax-rates/{country}/active [get]
func (h *TaxHandler) GetActiveTaxRate(c *gin.Context) {
	at := time.Now().UTC()
	if raw := c.Query("date"); raw != "" {
		parsed, err := time.Parse("2006-01-02", raw)
		if err != nil {
			badRequest(c, "Invalid date, expected YYYY-MM-DD")
			return
		}
		at = parsed
	}

	rate, err := h.taxService.GetActiveTaxRate(c.Request.Context(), c.Param("country"), at)
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, service.ToTaxRateResponse(*rate)))
}

// CreateTaxRate appends a validity window
// @Summary      Create tax rate
// @Description  Adds a window that must not overlap any stored window of the same country.
// @Tags         tax
// @Security     BearerAuth
// @Accept       json
// @Produce      json
// @Param        request  body      service.CreateTaxRateRequest  true  "Rate and window"
// @Success      201      {object}  response.Response{data=service.TaxRateResponse}
// @Failure      400      {object}  response.Response
// @Failure      409      {object}  response.Response
// @Router       /api/tax-rates [post]
func (h *TaxHandler) CreateTaxRate(c *gin.Context) {
	var req service.CreateTaxRateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "Invalid request payload: "+err.Error())
		return
	}

	rate, err := h.taxService.CreateTaxRate(c.Request.Context(), req, middleware.CurrentUserID(c))
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusCreated, response.Success(http.StatusCreated, rate))
}

// SupersedeTaxRate closes the open window and starts a new one
// @Summary      Supersede tax rate
// @Description  Ends the country's open window the day before effective_date and stores the new rate.
// @Tags         tax
// @Security     BearerAuth
// @Accept       json
// @Produce      json
// @Param        request  body      service.CreateTaxRateRequest  true  "New rate"
// @Success      201      {object}  response.Response{data=service.TaxRateResponse}
// @Failure      400      {object}  response.Response
// @Failure      409      {object}  response.Response
// @Router       /api/tax-rates/supersede [post]
func (h *TaxHandler) SupersedeTaxRate(c *gin.Context) {
	var req service.CreateTaxRateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "Invalid request payload: "+err.Error())
		return
	}

	rate, err := h.taxService.SupersedeTaxRate(c.Request.Context(), req, middleware.CurrentUserID(c))
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusCreated, response.Success(http.StatusCreated, rate))
}
