package service

import (
	"context"
	"fmt"
	"testing"
	"time"

	"pricing/internal/model"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// stubTaxService answers GetActiveTaxRate from a fixed map.
type stubTaxService struct {
	TaxService
	rates  map[string]model.TaxRate
	lastAt time.Time
}

func (s *stubTaxService) GetActiveTaxRate(_ context.Context, countryCode string, at time.Time) (*model.TaxRate, error) {
	s.lastAt = at
	r, ok := s.rates[model.NormalizeCountry(countryCode)]
	if !ok {
		return nil, fmt.Errorf("%w for %s", ErrTaxRateNotFound, countryCode)
	}
	return &r, nil
}

func newTestPriceService() (*priceService, *stubTaxService) {
	taxes := &stubTaxService{rates: map[string]model.TaxRate{
		"DE": {CountryCode: "DE", StandardVatRate: dec("19"), ReducedVatRate: decp("7")},
		"AT": {CountryCode: "AT", StandardVatRate: dec("20"), ReducedVatRate: decp("10")},
		"DK": {CountryCode: "DK", StandardVatRate: dec("25")},
	}}
	svc := NewPriceService(taxes, nil).(*priceService)
	svc.now = func() time.Time { return time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC) }
	return svc, taxes
}

func TestCalculatePrice(t *testing.T) {
	ctx := context.Background()

	t.Run("adds standard VAT", func(t *testing.T) {
		svc, taxes := newTestPriceService()

		b, err := svc.CalculatePrice(ctx, dec("100"), "de", nil, false)
		require.NoError(t, err)

		assertDecimal(t, "19", b.VatRate)
		assertDecimal(t, "19", b.VatAmount)
		assertDecimal(t, "119", b.PriceIncludingVat)
		assertDecimal(t, "119", b.FinalPrice)
		assert.Nil(t, b.DiscountAmount)
		assert.Nil(t, b.OriginalPrice)
		assert.Equal(t, "DE", b.DestinationCountry)
		assert.Equal(t, "EUR", b.CurrencyCode)
		assert.Equal(t, 2025, taxes.lastAt.Year())
	})

	t.Run("rounds VAT to cents", func(t *testing.T) {
		svc, _ := newTestPriceService()

		b, err := svc.CalculatePrice(ctx, dec("9.99"), "DE", nil, false)
		require.NoError(t, err)
		assertDecimal(t, "1.90", b.VatAmount) // 1.8981
		assertDecimal(t, "11.89", b.PriceIncludingVat)
	})

	t.Run("applies discount on the gross price", func(t *testing.T) {
		svc, _ := newTestPriceService()

		b, err := svc.CalculatePrice(ctx, dec("100"), "DE", decp("10"), false)
		require.NoError(t, err)

		require.NotNil(t, b.DiscountAmount)
		require.NotNil(t, b.OriginalPrice)
		assertDecimal(t, "11.90", *b.DiscountAmount)
		assertDecimal(t, "119", *b.OriginalPrice)
		assertDecimal(t, "107.10", b.FinalPrice)
	})

	t.Run("zero discount is ignored", func(t *testing.T) {
		svc, _ := newTestPriceService()

		b, err := svc.CalculatePrice(ctx, dec("100"), "DE", decp("0"), false)
		require.NoError(t, err)
		assert.Nil(t, b.DiscountAmount)
	})

	t.Run("reduced rate", func(t *testing.T) {
		svc, _ := newTestPriceService()

		b, err := svc.CalculatePrice(ctx, dec("100"), "AT", nil, true)
		require.NoError(t, err)
		assertDecimal(t, "10", b.VatRate)
		assertDecimal(t, "110", b.FinalPrice)
	})

	t.Run("reduced rate falls back to standard", func(t *testing.T) {
		svc, _ := newTestPriceService()

		rate, err := svc.GetVatRate(ctx, "DK", true)
		require.NoError(t, err)
		assertDecimal(t, "25", rate)
	})

	t.Run("rejects bad input", func(t *testing.T) {
		svc, _ := newTestPriceService()

		_, err := svc.CalculatePrice(ctx, dec("-0.01"), "DE", nil, false)
		assert.ErrorIs(t, err, ErrNegativePrice)

		_, err = svc.CalculatePrice(ctx, dec("10"), " ", nil, false)
		assert.ErrorIs(t, err, ErrCountryRequired)

		for _, pct := range []string{"-5", "100.01"} {
			_, err = svc.CalculatePrice(ctx, dec("10"), "DE", decp(pct), false)
			assert.ErrorIs(t, err, ErrInvalidDiscount, pct)
		}
	})

	t.Run("unknown country", func(t *testing.T) {
		svc, _ := newTestPriceService()

		_, err := svc.CalculatePrice(ctx, decimal.NewFromInt(10), "US", nil, false)
		assert.ErrorIs(t, err, ErrTaxRateNotFound)
	})
}
