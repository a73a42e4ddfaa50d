package model

import (
	"strings"

	"github.com/shopspring/decimal"
)

const DefaultCurrency = "EUR"

// ShippingMethod is a carrier service tier offered at checkout.
type ShippingMethod struct {
	ID               string           `json:"id"`
	Name             string           `json:"name"`
	Provider         string           `json:"provider"`
	Description      string           `json:"description"`
	BaseCost         decimal.Decimal  `json:"base_cost"`
	CurrencyCode     string           `json:"currency_code"`
	MinWeightKg      decimal.Decimal  `json:"min_weight_kg"`
	MaxWeightKg      *decimal.Decimal `json:"max_weight_kg"` // nil = no upper limit
	EstimatedDaysMin int              `json:"estimated_days_min"`
	EstimatedDaysMax int              `json:"estimated_days_max"`
	Active           bool             `json:"active"`
}

// Carries reports whether a parcel of the given weight fits under the method's limit.
func (m ShippingMethod) Carries(weightKg decimal.Decimal) bool {
	return m.MaxWeightKg == nil || weightKg.LessThanOrEqual(*m.MaxWeightKg)
}

// CountryShippingProfile scales every base cost for one destination country.
type CountryShippingProfile struct {
	CountryCode    string          `json:"country_code"`
	CostMultiplier decimal.Decimal `json:"cost_multiplier"`
}

// FreeShippingThreshold is the subtotal from which shipping to a country is waived.
type FreeShippingThreshold struct {
	CountryCode     string          `json:"country_code"`
	ThresholdAmount decimal.Decimal `json:"threshold_amount"`
}

// ShippingTables is a read-only snapshot of the shipping reference data.
// Build it with NewShippingTables; it is safe for concurrent use.
type ShippingTables struct {
	methods           []ShippingMethod
	multipliers       map[string]decimal.Decimal
	thresholds        map[string]decimal.Decimal
	defaultMultiplier decimal.Decimal
	defaultThreshold  decimal.Decimal
}

func NewShippingTables(
	methods []ShippingMethod,
	profiles []CountryShippingProfile,
	thresholds []FreeShippingThreshold,
	defaultMultiplier, defaultThreshold decimal.Decimal,
) *ShippingTables {
	t := &ShippingTables{
		methods:           make([]ShippingMethod, len(methods)),
		multipliers:       make(map[string]decimal.Decimal, len(profiles)),
		thresholds:        make(map[string]decimal.Decimal, len(thresholds)),
		defaultMultiplier: defaultMultiplier,
		defaultThreshold:  defaultThreshold,
	}
	copy(t.methods, methods)
	for _, p := range profiles {
		t.multipliers[NormalizeCountry(p.CountryCode)] = p.CostMultiplier
	}
	for _, th := range thresholds {
		t.thresholds[NormalizeCountry(th.CountryCode)] = th.ThresholdAmount
	}
	return t
}

// Methods returns the catalog in declaration order.
func (t *ShippingTables) Methods() []ShippingMethod {
	out := make([]ShippingMethod, len(t.methods))
	copy(out, t.methods)
	return out
}

func (t *ShippingTables) Method(id string) (ShippingMethod, bool) {
	for _, m := range t.methods {
		if m.ID == id {
			return m, true
		}
	}
	return ShippingMethod{}, false
}

// Multiplier returns the country's cost multiplier; found is false when the default was used.
func (t *ShippingTables) Multiplier(countryCode string) (mult decimal.Decimal, found bool) {
	if m, ok := t.multipliers[NormalizeCountry(countryCode)]; ok {
		return m, true
	}
	return t.defaultMultiplier, false
}

// Threshold returns the free-shipping threshold; found is false when the default was used.
func (t *ShippingTables) Threshold(countryCode string) (amount decimal.Decimal, found bool) {
	if th, ok := t.thresholds[NormalizeCountry(countryCode)]; ok {
		return th, true
	}
	return t.defaultThreshold, false
}

// NormalizeCountry trims and upper-cases an ISO-2 country code.
func NormalizeCountry(code string) string {
	return strings.ToUpper(strings.TrimSpace(code))
}

var euCountries = []string{
	"AT", "BE", "BG", "HR", "CY", "CZ", "DK", "EE", "ES", "FR", "GR", "HU", "IE",
	"IT", "LV", "LT", "LU", "NL", "PL", "PT", "RO", "SE", "SI", "SK",
}

// DefaultShippingTables returns the built-in reference data used when no tables file is configured.
func DefaultShippingTables() *ShippingTables {
	thirty := decimal.NewFromInt(30)
	twenty := decimal.NewFromInt(20)

	methods := []ShippingMethod{
		{
			ID:               "dhl-express",
			Name:             "DHL Express",
			Provider:         "DHL",
			Description:      "Express delivery (1-2 business days)",
			BaseCost:         decimal.RequireFromString("4.99"),
			CurrencyCode:     DefaultCurrency,
			MinWeightKg:      decimal.Zero,
			MaxWeightKg:      &thirty,
			EstimatedDaysMin: 1,
			EstimatedDaysMax: 2,
			Active:           true,
		},
		{
			ID:               "dpd-standard",
			Name:             "DPD Standard",
			Provider:         "DPD",
			Description:      "Standard delivery (3-5 business days)",
			BaseCost:         decimal.RequireFromString("3.99"),
			CurrencyCode:     DefaultCurrency,
			MinWeightKg:      decimal.Zero,
			MaxWeightKg:      &thirty,
			EstimatedDaysMin: 3,
			EstimatedDaysMax: 5,
			Active:           true,
		},
		{
			ID:               "postnl-standard",
			Name:             "PostNL Standard",
			Provider:         "PostNL",
			Description:      "PostNL Standard (2-4 business days)",
			BaseCost:         decimal.RequireFromString("5.99"),
			CurrencyCode:     DefaultCurrency,
			MinWeightKg:      decimal.Zero,
			MaxWeightKg:      &twenty,
			EstimatedDaysMin: 2,
			EstimatedDaysMax: 4,
			Active:           true,
		},
	}

	eu := decimal.RequireFromString("1.5")
	profiles := []CountryShippingProfile{{CountryCode: "DE", CostMultiplier: decimal.NewFromInt(1)}}
	for _, c := range euCountries {
		profiles = append(profiles, CountryShippingProfile{CountryCode: c, CostMultiplier: eu})
	}
	profiles = append(profiles,
		CountryShippingProfile{CountryCode: "CH", CostMultiplier: decimal.NewFromInt(2)},
		CountryShippingProfile{CountryCode: "GB", CostMultiplier: decimal.NewFromInt(2)},
	)

	thresholds := []FreeShippingThreshold{
		{CountryCode: "DE", ThresholdAmount: decimal.RequireFromString("50.00")},
		{CountryCode: "AT", ThresholdAmount: decimal.RequireFromString("75.00")},
		{CountryCode: "BE", ThresholdAmount: decimal.RequireFromString("75.00")},
		{CountryCode: "NL", ThresholdAmount: decimal.RequireFromString("75.00")},
		{CountryCode: "FR", ThresholdAmount: decimal.RequireFromString("100.00")},
		{CountryCode: "IT", ThresholdAmount: decimal.RequireFromString("100.00")},
		{CountryCode: "ES", ThresholdAmount: decimal.RequireFromString("100.00")},
	}

	return NewShippingTables(methods, profiles, thresholds, decimal.NewFromInt(1), decimal.RequireFromString("150.00"))
}
