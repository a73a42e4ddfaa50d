package handler

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"pricing/internal/cache"
	"pricing/internal/middleware"
	"pricing/internal/model"
	"pricing/internal/repository"
	"pricing/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

type envelope struct {
	Status     string          `json:"status"`
	StatusCode int             `json:"status_code"`
	Data       json.RawMessage `json:"data"`
	Error      string          `json:"error"`
}

func setupRouter(t *testing.T) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	require.NoError(t, db.AutoMigrate(&model.TaxRate{}, &model.AuditLog{}))

	taxRepo := repository.NewTaxRateRepository(db)
	auditRepo := repository.NewAuditRepository(db)
	taxService := service.NewTaxService(taxRepo, auditRepo, repository.NewTransactionManager(db),
		cache.NewMemoryTaxRateCache(time.Minute), nil, zap.NewNop())

	r := gin.New()
	api := r.Group("")
	NewShippingHandler(service.NewShippingService(model.DefaultShippingTables(), nil)).RegisterRoutes(api)
	NewTaxHandler(taxService).RegisterRoutes(api)
	NewPriceHandler(service.NewPriceService(taxService, nil)).RegisterRoutes(api)
	NewAuditHandler(service.NewAuditService(auditRepo)).RegisterRoutes(api)
	return r
}

func adminToken(t *testing.T) string {
	t.Helper()
	s, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub":  "7b0c5a52-4a43-4d43-9a2e-1f0b1d9f3a10",
		"role": middleware.RoleAdmin,
	}).SignedString(middleware.GetJWTSecret())
	require.NoError(t, err)
	return s
}

func do(t *testing.T, r *gin.Engine, method, path string, body interface{}, token string) (*httptest.ResponseRecorder, envelope) {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	var env envelope
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &env), w.Body.String())
	return w, env
}

func TestShippingRoutes(t *testing.T) {
	r := setupRouter(t)

	t.Run("methods with weight filter", func(t *testing.T) {
		w, env := do(t, r, http.MethodGet, "/api/shipping/methods?country=DE&weight=25", nil, "")
		require.Equal(t, http.StatusOK, w.Code)

		var res service.ShippingMethodsResult
		require.NoError(t, json.Unmarshal(env.Data, &res))
		assert.True(t, res.Success)
		assert.Len(t, res.Methods, 2)
	})

	t.Run("bad weight", func(t *testing.T) {
		w, _ := do(t, r, http.MethodGet, "/api/shipping/methods?country=DE&weight=heavy", nil, "")
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("missing country reports failure in the result", func(t *testing.T) {
		w, env := do(t, r, http.MethodGet, "/api/shipping/methods", nil, "")
		require.Equal(t, http.StatusOK, w.Code)

		var res service.ShippingMethodsResult
		require.NoError(t, json.Unmarshal(env.Data, &res))
		assert.False(t, res.Success)
		assert.Empty(t, res.Methods)
	})

	t.Run("total", func(t *testing.T) {
		w, env := do(t, r, http.MethodPost, "/api/shipping/total", ShippingTotalRequest{
			Subtotal: "100", ShippingMethodID: "dhl-express", CountryCode: "AT",
		}, "")
		require.Equal(t, http.StatusOK, w.Code)

		var res ShippingTotalResponse
		require.NoError(t, json.Unmarshal(env.Data, &res))
		assert.Equal(t, "107.49", res.Total.StringFixed(2))
	})

	t.Run("threshold", func(t *testing.T) {
		_, env := do(t, r, http.MethodGet, "/api/shipping/free-shipping-threshold/nl", nil, "")

		var res FreeShippingThresholdResponse
		require.NoError(t, json.Unmarshal(env.Data, &res))
		assert.Equal(t, "NL", res.CountryCode)
		assert.Equal(t, "75.00", res.Threshold.StringFixed(2))
	})

	t.Run("quote with unknown method", func(t *testing.T) {
		w, env := do(t, r, http.MethodPost, "/api/shipping/quote", ShippingTotalRequest{
			Subtotal: "10", ShippingMethodID: "pigeon", CountryCode: "DE",
		}, "")
		assert.Equal(t, http.StatusNotFound, w.Code)
		assert.Equal(t, "error", env.Status)
	})
}

func TestTaxAndPriceRoutes(t *testing.T) {
	r := setupRouter(t)
	create := service.CreateTaxRateRequest{
		CountryCode: "DE", CountryName: "Germany", StandardVatRate: "19", ReducedVatRate: "7", EffectiveDate: "2024-01-01",
	}

	t.Run("create requires admin", func(t *testing.T) {
		w, _ := do(t, r, http.MethodPost, "/api/tax-rates", create, "")
		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})

	t.Run("create then conflict", func(t *testing.T) {
		w, env := do(t, r, http.MethodPost, "/api/tax-rates", create, adminToken(t))
		require.Equal(t, http.StatusCreated, w.Code, env.Error)

		w, _ = do(t, r, http.MethodPost, "/api/tax-rates", create, adminToken(t))
		assert.Equal(t, http.StatusConflict, w.Code)
	})

	t.Run("active rate", func(t *testing.T) {
		w, env := do(t, r, http.MethodGet, "/api/tax-rates/de/active?date=2025-01-15", nil, "")
		require.Equal(t, http.StatusOK, w.Code)

		var res service.TaxRateResponse
		require.NoError(t, json.Unmarshal(env.Data, &res))
		assert.Equal(t, "19.00", res.StandardVatRate)

		w, _ = do(t, r, http.MethodGet, "/api/tax-rates/DE/active?date=2023-12-31", nil, "")
		assert.Equal(t, http.StatusNotFound, w.Code)

		w, _ = do(t, r, http.MethodGet, "/api/tax-rates/DE/active?date=yesterday", nil, "")
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("price breakdown", func(t *testing.T) {
		discount := "10"
		w, env := do(t, r, http.MethodPost, "/api/prices/calculate", service.CalculatePriceRequest{
			BasePrice: "100", CountryCode: "DE", DiscountPercentage: &discount,
		}, "")
		require.Equal(t, http.StatusOK, w.Code, env.Error)

		var res service.PriceBreakdown
		require.NoError(t, json.Unmarshal(env.Data, &res))
		assert.Equal(t, "119.00", res.PriceIncludingVat.StringFixed(2))
		assert.Equal(t, "107.10", res.FinalPrice.StringFixed(2))
	})

	t.Run("price for unknown country", func(t *testing.T) {
		w, _ := do(t, r, http.MethodPost, "/api/prices/calculate", service.CalculatePriceRequest{
			BasePrice: "100", CountryCode: "US",
		}, "")
		assert.Equal(t, http.StatusNotFound, w.Code)
	})

	t.Run("supersede and list history", func(t *testing.T) {
		next := create
		next.StandardVatRate = "21"
		next.EffectiveDate = "2027-01-01"
		w, env := do(t, r, http.MethodPost, "/api/tax-rates/supersede", next, adminToken(t))
		require.Equal(t, http.StatusCreated, w.Code, env.Error)

		w, env = do(t, r, http.MethodGet, "/api/tax-rates?country=DE", nil, "")
		require.Equal(t, http.StatusOK, w.Code)

		var page struct {
			Items []service.TaxRateResponse `json:"items"`
			Total int64                     `json:"total"`
		}
		require.NoError(t, json.Unmarshal(env.Data, &page))
		assert.Equal(t, int64(2), page.Total)
		require.Len(t, page.Items, 2)
		assert.Equal(t, "2027-01-01", page.Items[0].EffectiveDate)
		require.NotNil(t, page.Items[1].EndDate)
		assert.Equal(t, "2026-12-31", *page.Items[1].EndDate)
	})

	t.Run("audit log", func(t *testing.T) {
		w, env := do(t, r, http.MethodGet, "/api/audit-logs", nil, adminToken(t))
		require.Equal(t, http.StatusOK, w.Code)

		var page struct {
			Items []service.AuditLogResponse `json:"items"`
			Total int64                      `json:"total"`
		}
		require.NoError(t, json.Unmarshal(env.Data, &page))
		assert.Equal(t, int64(2), page.Total)
		assert.Equal(t, "7b0c5a52-4a43-4d43-9a2e-1f0b1d9f3a10", page.Items[0].UserID)
	})
}
