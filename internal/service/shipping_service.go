package service

import (
	"fmt"

	"pricing/internal/model"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// moneyPlaces is the rounding precision of every customer-facing amount.
const moneyPlaces = 2

// --- DTOs ---

type ShippingMethodQuote struct {
	ID               string          `json:"id"`
	Name             string          `json:"name"`
	Provider         string          `json:"provider"`
	Description      string          `json:"description"`
	Cost             decimal.Decimal `json:"cost"`
	CurrencyCode     string          `json:"currency_code"`
	EstimatedDaysMin int             `json:"estimated_days_min"`
	EstimatedDaysMax int             `json:"estimated_days_max"`
}

// ShippingMethodsResult reports failures through Success rather than an error so
// checkout pages can render the message as-is.
type ShippingMethodsResult struct {
	Success bool                  `json:"success"`
	Message string                `json:"message"`
	Methods []ShippingMethodQuote `json:"methods"`
}

type CheckoutQuote struct {
	CountryCode         string          `json:"country_code"`
	ShippingMethodID    string          `json:"shipping_method_id"`
	Subtotal            decimal.Decimal `json:"subtotal"`
	ShippingCost        decimal.Decimal `json:"shipping_cost"`
	FreeShippingApplied bool            `json:"free_shipping_applied"`
	FreeShippingFrom    decimal.Decimal `json:"free_shipping_threshold"`
	Total               decimal.Decimal `json:"total"`
	CurrencyCode        string          `json:"currency_code"`
}

// --- Interface ---

type ShippingService interface {
	GetShippingMethods(countryCode string, totalWeightKg *decimal.Decimal) ShippingMethodsResult
	CalculateTotal(subtotal decimal.Decimal, shippingMethodID, countryCode string) decimal.Decimal
	GetFreeShippingThreshold(countryCode string) decimal.Decimal

	ShippingCost(shippingMethodID, countryCode string) (decimal.Decimal, error)
	CountryMultiplier(countryCode string) (decimal.Decimal, bool)
	FreeShippingThreshold(countryCode string) (decimal.Decimal, bool)
	QuoteCheckout(subtotal decimal.Decimal, shippingMethodID, countryCode string) (CheckoutQuote, error)
}

type shippingService struct {
	tables *model.ShippingTables
	log    *zap.Logger
}

func NewShippingService(tables *model.ShippingTables, log *zap.Logger) ShippingService {
	if tables == nil {
		tables = model.DefaultShippingTables()
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &shippingService{tables: tables, log: log.Named("shipping")}
}

// --- Implementation ---

// GetShippingMethods lists the active methods able to carry totalWeightKg, costed for
// the destination country. Order follows the catalog, not price.
func (s *shippingService) GetShippingMethods(countryCode string, totalWeightKg *decimal.Decimal) ShippingMethodsResult {
	country := model.NormalizeCountry(countryCode)
	if country == "" {
		return ShippingMethodsResult{
			Success: false,
			Message: "Destination country is required",
			Methods: []ShippingMethodQuote{},
		}
	}

	multiplier := s.multiplier(country)

	methods := make([]ShippingMethodQuote, 0, len(s.tables.Methods()))
	for _, m := range s.tables.Methods() {
		if !m.Active {
			continue
		}
		if totalWeightKg != nil && !m.Carries(*totalWeightKg) {
			continue
		}
		methods = append(methods, ShippingMethodQuote{
			ID:               m.ID,
			Name:             m.Name,
			Provider:         m.Provider,
			Description:      m.Description,
			Cost:             effectiveCost(m.BaseCost, multiplier),
			CurrencyCode:     m.CurrencyCode,
			EstimatedDaysMin: m.EstimatedDaysMin,
			EstimatedDaysMax: m.EstimatedDaysMax,
		})
	}

	if len(methods) == 0 {
		s.log.Warn("no shipping method available",
			zap.String("country", country), zap.Stringp("weight_kg", decimalStringp(totalWeightKg)))
		return ShippingMethodsResult{
			Success: false,
			Message: fmt.Sprintf("Shipping not available to %s", country),
			Methods: []ShippingMethodQuote{},
		}
	}

	s.log.Debug("shipping methods resolved", zap.String("country", country), zap.Int("count", len(methods)))
	return ShippingMethodsResult{
		Success: true,
		Message: "Shipping methods retrieved successfully",
		Methods: methods,
	}
}

// CalculateTotal adds the method's shipping cost to subtotal. Unknown methods and
// missing countries leave subtotal unchanged; use ShippingCost to detect those cases.
func (s *shippingService) CalculateTotal(subtotal decimal.Decimal, shippingMethodID, countryCode string) decimal.Decimal {
	cost, err := s.ShippingCost(shippingMethodID, countryCode)
	if err != nil {
		s.log.Warn("shipping cost unavailable, returning subtotal",
			zap.String("method", shippingMethodID), zap.String("country", countryCode), zap.Error(err))
		return subtotal
	}
	return subtotal.Add(cost)
}

func (s *shippingService) GetFreeShippingThreshold(countryCode string) decimal.Decimal {
	th, _ := s.FreeShippingThreshold(countryCode)
	return th
}

// ShippingCost is the multiplier-adjusted cost of one method, rounded to cents.
func (s *shippingService) ShippingCost(shippingMethodID, countryCode string) (decimal.Decimal, error) {
	country := model.NormalizeCountry(countryCode)
	if country == "" {
		return decimal.Zero, ErrCountryRequired
	}

	m, ok := s.tables.Method(shippingMethodID)
	if !ok || !m.Active {
		return decimal.Zero, fmt.Errorf("%w: %q", ErrShippingMethodNotFound, shippingMethodID)
	}

	return effectiveCost(m.BaseCost, s.multiplier(country)), nil
}

func (s *shippingService) CountryMultiplier(countryCode string) (decimal.Decimal, bool) {
	return s.tables.Multiplier(countryCode)
}

func (s *shippingService) FreeShippingThreshold(countryCode string) (decimal.Decimal, bool) {
	return s.tables.Threshold(countryCode)
}

// QuoteCheckout prices shipping for a cart and waives it once subtotal reaches the
// destination's free-shipping threshold.
func (s *shippingService) QuoteCheckout(subtotal decimal.Decimal, shippingMethodID, countryCode string) (CheckoutQuote, error) {
	if subtotal.IsNegative() {
		return CheckoutQuote{}, ErrNegativePrice
	}

	cost, err := s.ShippingCost(shippingMethodID, countryCode)
	if err != nil {
		return CheckoutQuote{}, err
	}

	country := model.NormalizeCountry(countryCode)
	threshold := s.GetFreeShippingThreshold(country)
	m, _ := s.tables.Method(shippingMethodID)

	quote := CheckoutQuote{
		CountryCode:      country,
		ShippingMethodID: shippingMethodID,
		Subtotal:         subtotal,
		ShippingCost:     cost,
		FreeShippingFrom: threshold,
		CurrencyCode:     m.CurrencyCode,
	}
	if subtotal.GreaterThanOrEqual(threshold) {
		quote.FreeShippingApplied = true
		quote.ShippingCost = decimal.Zero
	}
	quote.Total = subtotal.Add(quote.ShippingCost)

	return quote, nil
}

// --- Helpers ---

func (s *shippingService) multiplier(country string) decimal.Decimal {
	m, found := s.tables.Multiplier(country)
	if !found {
		s.log.Warn("country has no shipping profile, using default multiplier",
			zap.String("country", country), zap.String("multiplier", m.String()))
	}
	return m
}

// effectiveCost rounds half away from zero: 4.99 × 1.5 = 7.485 → 7.49.
func effectiveCost(baseCost, multiplier decimal.Decimal) decimal.Decimal {
	return baseCost.Mul(multiplier).Round(moneyPlaces)
}

func decimalStringp(d *decimal.Decimal) *string {
	if d == nil {
		return nil
	}
	s := d.String()
	return &s
}
