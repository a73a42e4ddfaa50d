package database

import (
	"context"
	"fmt"
	"time"

	"pricing/internal/model"
	"pricing/internal/repository"

	"github.com/shopspring/decimal"
)

var seedEffectiveDate = time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

type vatSeed struct {
	code, name        string
	standard, reduced string // reduced "" = none
}

// EU member states as of 2024, plus Switzerland.
var vatSeeds = []vatSeed{
	{"AT", "Austria", "20", "10"},
	{"BE", "Belgium", "21", "6"},
	{"BG", "Bulgaria", "20", "9"},
	{"HR", "Croatia", "25", "13"},
	{"CY", "Cyprus", "19", "9"},
	{"CZ", "Czech Republic", "21", "15"},
	{"DK", "Denmark", "25", ""},
	{"EE", "Estonia", "20", "9"},
	{"FI", "Finland", "24", "14"},
	{"FR", "France", "20", "5.5"},
	{"DE", "Germany", "19", "7"},
	{"GR", "Greece", "24", "13"},
	{"HU", "Hungary", "27", "18"},
	{"IE", "Ireland", "23", "13.5"},
	{"IT", "Italy", "22", "10"},
	{"LV", "Latvia", "21", "12"},
	{"LT", "Lithuania", "21", "9"},
	{"LU", "Luxembourg", "17", "8"},
	{"MT", "Malta", "18", "7"},
	{"NL", "Netherlands", "21", "9"},
	{"PL", "Poland", "23", "8"},
	{"PT", "Portugal", "23", "13"},
	{"RO", "Romania", "19", "9"},
	{"SK", "Slovakia", "20", "10"},
	{"SI", "Slovenia", "22", "9.5"},
	{"ES", "Spain", "21", "10"},
	{"SE", "Sweden", "25", "12"},
	{"CH", "Switzerland", "8.1", "2.5"},
}

// DefaultTaxRates returns the seed rows, all open ended from 2024-01-01.
func DefaultTaxRates() []model.TaxRate {
	rates := make([]model.TaxRate, 0, len(vatSeeds))
	for _, s := range vatSeeds {
		r := model.TaxRate{
			CountryCode:     s.code,
			CountryName:     s.name,
			StandardVatRate: decimal.RequireFromString(s.standard),
			EffectiveDate:   seedEffectiveDate,
		}
		if s.reduced != "" {
			reduced := decimal.RequireFromString(s.reduced)
			r.ReducedVatRate = &reduced
		}
		rates = append(rates, r)
	}
	return rates
}

// SeedTaxRates fills an empty tax_rates table. It returns the number of rows inserted.
func SeedTaxRates(ctx context.Context, repo repository.TaxRateRepository) (int, error) {
	count, err := repo.Count(ctx)
	if err != nil {
		return 0, fmt.Errorf("failed to count tax rates: %w", err)
	}
	if count > 0 {
		return 0, nil
	}

	rates := DefaultTaxRates()
	if err := repo.CreateBatch(ctx, rates); err != nil {
		return 0, fmt.Errorf("failed to seed tax rates: %w", err)
	}
	return len(rates), nil
}
