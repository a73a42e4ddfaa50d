package config

import (
	"fmt"

	"pricing/internal/model"

	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"
	"github.com/spf13/viper"
)

// shippingTablesFile mirrors the on-disk layout. Amounts are read as strings
// so they reach decimal.Decimal without a float round trip.
type shippingTablesFile struct {
	DefaultMultiplier string            `mapstructure:"default_multiplier" validate:"omitempty,numeric"`
	DefaultThreshold  string            `mapstructure:"default_free_shipping_threshold" validate:"omitempty,numeric"`
	Methods           []methodEntry     `mapstructure:"methods" validate:"required,min=1,unique=ID,dive"`
	Multipliers       []multiplierEntry `mapstructure:"country_multipliers" validate:"unique=CountryCode,dive"`
	Thresholds        []thresholdEntry  `mapstructure:"free_shipping_thresholds" validate:"unique=CountryCode,dive"`
}

type methodEntry struct {
	ID               string `mapstructure:"id" validate:"required"`
	Name             string `mapstructure:"name" validate:"required"`
	Provider         string `mapstructure:"provider" validate:"required"`
	Description      string `mapstructure:"description"`
	BaseCost         string `mapstructure:"base_cost" validate:"required,numeric"`
	CurrencyCode     string `mapstructure:"currency_code" validate:"omitempty,len=3,alpha"`
	MinWeightKg      string `mapstructure:"min_weight_kg" validate:"omitempty,numeric"`
	MaxWeightKg      string `mapstructure:"max_weight_kg" validate:"omitempty,numeric"`
	EstimatedDaysMin int    `mapstructure:"estimated_days_min" validate:"gte=0"`
	EstimatedDaysMax int    `mapstructure:"estimated_days_max" validate:"gtefield=EstimatedDaysMin"`
	Active           *bool  `mapstructure:"active"`
}

type multiplierEntry struct {
	CountryCode string `mapstructure:"country_code" validate:"required,len=2,alpha"`
	Multiplier  string `mapstructure:"multiplier" validate:"required,numeric"`
}

type thresholdEntry struct {
	CountryCode string `mapstructure:"country_code" validate:"required,len=2,alpha"`
	Amount      string `mapstructure:"amount" validate:"required,numeric"`
}

// LoadShippingTables reads shipping reference data from path.
// An empty path yields the built-in tables.
func LoadShippingTables(path string) (*model.ShippingTables, error) {
	if path == "" {
		return model.DefaultShippingTables(), nil
	}

	v := viper.New()
	v.SetConfigFile(path)
	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("failed to read shipping tables %s: %w", path, err)
	}

	var raw shippingTablesFile
	if err := v.Unmarshal(&raw); err != nil {
		return nil, fmt.Errorf("failed to decode shipping tables %s: %w", path, err)
	}

	tables, err := raw.build()
	if err != nil {
		return nil, fmt.Errorf("invalid shipping tables %s: %w", path, err)
	}
	return tables, nil
}

func (f shippingTablesFile) build() (*model.ShippingTables, error) {
	if err := validator.New().Struct(f); err != nil {
		return nil, err
	}

	defaultMultiplier, err := decimalOr(f.DefaultMultiplier, decimal.NewFromInt(1))
	if err != nil {
		return nil, err
	}
	defaultThreshold, err := decimalOr(f.DefaultThreshold, decimal.NewFromInt(150))
	if err != nil {
		return nil, err
	}
	if !defaultMultiplier.IsPositive() {
		return nil, fmt.Errorf("default_multiplier must be positive")
	}

	methods := make([]model.ShippingMethod, 0, len(f.Methods))
	for _, m := range f.Methods {
		method, err := m.toModel()
		if err != nil {
			return nil, fmt.Errorf("method %q: %w", m.ID, err)
		}
		methods = append(methods, method)
	}

	profiles := make([]model.CountryShippingProfile, 0, len(f.Multipliers))
	for _, p := range f.Multipliers {
		mult, err := decimal.NewFromString(p.Multiplier)
		if err != nil {
			return nil, err
		}
		if !mult.IsPositive() {
			return nil, fmt.Errorf("multiplier for %s must be positive", p.CountryCode)
		}
		profiles = append(profiles, model.CountryShippingProfile{CountryCode: p.CountryCode, CostMultiplier: mult})
	}

	thresholds := make([]model.FreeShippingThreshold, 0, len(f.Thresholds))
	for _, th := range f.Thresholds {
		amount, err := decimal.NewFromString(th.Amount)
		if err != nil {
			return nil, err
		}
		if amount.IsNegative() {
			return nil, fmt.Errorf("threshold for %s must not be negative", th.CountryCode)
		}
		thresholds = append(thresholds, model.FreeShippingThreshold{CountryCode: th.CountryCode, ThresholdAmount: amount})
	}

	return model.NewShippingTables(methods, profiles, thresholds, defaultMultiplier, defaultThreshold), nil
}

func (m methodEntry) toModel() (model.ShippingMethod, error) {
	baseCost, err := decimal.NewFromString(m.BaseCost)
	if err != nil {
		return model.ShippingMethod{}, err
	}
	if baseCost.IsNegative() {
		return model.ShippingMethod{}, fmt.Errorf("base_cost must not be negative")
	}

	minWeight, err := decimalOr(m.MinWeightKg, decimal.Zero)
	if err != nil {
		return model.ShippingMethod{}, err
	}

	var maxWeight *decimal.Decimal
	if m.MaxWeightKg != "" {
		w, err := decimal.NewFromString(m.MaxWeightKg)
		if err != nil {
			return model.ShippingMethod{}, err
		}
		if w.LessThan(minWeight) {
			return model.ShippingMethod{}, fmt.Errorf("max_weight_kg below min_weight_kg")
		}
		maxWeight = &w
	}

	currency := m.CurrencyCode
	if currency == "" {
		currency = model.DefaultCurrency
	}

	active := true
	if m.Active != nil {
		active = *m.Active
	}

	return model.ShippingMethod{
		ID:               m.ID,
		Name:             m.Name,
		Provider:         m.Provider,
		Description:      m.Description,
		BaseCost:         baseCost,
		CurrencyCode:     currency,
		MinWeightKg:      minWeight,
		MaxWeightKg:      maxWeight,
		EstimatedDaysMin: m.EstimatedDaysMin,
		EstimatedDaysMax: m.EstimatedDaysMax,
		Active:           active,
	}, nil
}

func decimalOr(s string, def decimal.Decimal) (decimal.Decimal, error) {
	if s == "" {
		return def, nil
	}
	return decimal.NewFromString(s)
}
