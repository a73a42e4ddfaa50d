package cache

import (
	"context"
	"testing"
	"time"

	"pricing/internal/model"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryTaxRateCache(t *testing.T) {
	ctx := context.Background()
	day := time.Date(2025, 3, 1, 15, 30, 0, 0, time.UTC)
	rate := &model.TaxRate{CountryCode: "DE", StandardVatRate: decimal.NewFromInt(19)}

	t.Run("miss then hit", func(t *testing.T) {
		c := NewMemoryTaxRateCache(time.Minute)
		_, ok := c.Get(ctx, "DE", day)
		assert.False(t, ok)

		c.Set(ctx, "DE", day, rate)
		got, ok := c.Get(ctx, "DE", day.Add(-10*time.Hour))
		require.True(t, ok, "same calendar day shares the entry")
		assert.Equal(t, "19", got.StandardVatRate.String())
	})

	t.Run("entries expire", func(t *testing.T) {
		c := NewMemoryTaxRateCache(time.Minute)
		now := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
		c.now = func() time.Time { return now }

		c.Set(ctx, "DE", day, rate)
		now = now.Add(2 * time.Minute)

		_, ok := c.Get(ctx, "DE", day)
		assert.False(t, ok)
	})

	t.Run("invalidate clears all countries", func(t *testing.T) {
		c := NewMemoryTaxRateCache(time.Minute)
		c.Set(ctx, "DE", day, rate)
		c.Set(ctx, "AT", day, rate)

		require.NoError(t, c.Invalidate(ctx))

		_, okDE := c.Get(ctx, "DE", day)
		_, okAT := c.Get(ctx, "AT", day)
		assert.False(t, okDE)
		assert.False(t, okAT)
	})

	t.Run("returned value is a copy", func(t *testing.T) {
		c := NewMemoryTaxRateCache(time.Minute)
		c.Set(ctx, "DE", day, rate)
		got, _ := c.Get(ctx, "DE", day)
		got.CountryCode = "XX"

		again, _ := c.Get(ctx, "DE", day)
		assert.Equal(t, "DE", again.CountryCode)
	})
}

func TestNoopTaxRateCache(t *testing.T) {
	var c TaxRateCache = NoopTaxRateCache{}
	c.Set(context.Background(), "DE", time.Now(), &model.TaxRate{})
	_, ok := c.Get(context.Background(), "DE", time.Now())
	assert.False(t, ok)
	assert.NoError(t, c.Invalidate(context.Background()))
}
