package cache

import (
	"context"
	"sync"
	"time"

	"pricing/internal/model"
)

// TaxRateCache memoizes active-rate lookups keyed by country and day.
// Writes to the tax table must call Invalidate.
type TaxRateCache interface {
	Get(ctx context.Context, countryCode string, day time.Time) (*model.TaxRate, bool)
	Set(ctx context.Context, countryCode string, day time.Time, rate *model.TaxRate)
	Invalidate(ctx context.Context) error
}

// DefaultTTL bounds staleness for rates that roll over at midnight.
const DefaultTTL = 5 * time.Minute

func cacheKey(countryCode string, day time.Time) string {
	return countryCode + ":" + model.Day(day).Format("2006-01-02")
}

type memoryEntry struct {
	rate      model.TaxRate
	expiresAt time.Time
}

// MemoryTaxRateCache is a process-local cache, used when Redis is not configured.
type MemoryTaxRateCache struct {
	entries sync.Map // key -> memoryEntry
	ttl     time.Duration
	now     func() time.Time
}

func NewMemoryTaxRateCache(ttl time.Duration) *MemoryTaxRateCache {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &MemoryTaxRateCache{ttl: ttl, now: time.Now}
}

func (c *MemoryTaxRateCache) Get(_ context.Context, countryCode string, day time.Time) (*model.TaxRate, bool) {
	key := cacheKey(countryCode, day)
	v, ok := c.entries.Load(key)
	if !ok {
		return nil, false
	}
	entry := v.(memoryEntry)
	if !c.now().Before(entry.expiresAt) {
		c.entries.Delete(key)
		return nil, false
	}
	rate := entry.rate
	return &rate, true
}

func (c *MemoryTaxRateCache) Set(_ context.Context, countryCode string, day time.Time, rate *model.TaxRate) {
	if rate == nil {
		return
	}
	c.entries.Store(cacheKey(countryCode, day), memoryEntry{
		rate:      *rate,
		expiresAt: c.now().Add(c.ttl),
	})
}

func (c *MemoryTaxRateCache) Invalidate(_ context.Context) error {
	c.entries.Range(func(key, _ any) bool {
		c.entries.Delete(key)
		return true
	})
	return nil
}

// NoopTaxRateCache disables caching.
type NoopTaxRateCache struct{}

func (NoopTaxRateCache) Get(context.Context, string, time.Time) (*model.TaxRate, bool) {
	return nil, false
}
func (NoopTaxRateCache) Set(context.Context, string, time.Time, *model.TaxRate) {}
func (NoopTaxRateCache) Invalidate(context.Context) error                     { return nil }
