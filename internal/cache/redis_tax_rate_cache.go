package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"pricing/internal/model"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

const defaultKeyPrefix = "pricing:tax_rate:"

// RedisConfig holds Redis connection settings
type RedisConfig struct {
	Addr     string
	Password string
	DB       int
}

// RedisTaxRateCache shares active-rate lookups between service instances.
// Redis failures degrade to cache misses; the database stays authoritative.
type RedisTaxRateCache struct {
	client    *redis.Client
	keyPrefix string
	ttl       time.Duration
	log       *zap.Logger
}

// NewRedisTaxRateCache connects and pings Redis.
func NewRedisTaxRateCache(cfg RedisConfig, ttl time.Duration, log *zap.Logger) (*RedisTaxRateCache, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	return NewRedisTaxRateCacheWithClient(client, "", ttl, log), nil
}

func NewRedisTaxRateCacheWithClient(client *redis.Client, keyPrefix string, ttl time.Duration, log *zap.Logger) *RedisTaxRateCache {
	if keyPrefix == "" {
		keyPrefix = defaultKeyPrefix
	}
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &RedisTaxRateCache{client: client, keyPrefix: keyPrefix, ttl: ttl, log: log}
}

func (c *RedisTaxRateCache) Get(ctx context.Context, countryCode string, day time.Time) (*model.TaxRate, bool) {
	raw, err := c.client.Get(ctx, c.keyPrefix+cacheKey(countryCode, day)).Bytes()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			c.log.Warn("tax rate cache read failed", zap.String("country", countryCode), zap.Error(err))
		}
		return nil, false
	}

	var rate model.TaxRate
	if err := json.Unmarshal(raw, &rate); err != nil {
		c.log.Warn("tax rate cache entry corrupt", zap.String("country", countryCode), zap.Error(err))
		return nil, false
	}
	return &rate, true
}

func (c *RedisTaxRateCache) Set(ctx context.Context, countryCode string, day time.Time, rate *model.TaxRate) {
	if rate == nil {
		return
	}
	raw, err := json.Marshal(rate)
	if err != nil {
		return
	}
	if err := c.client.Set(ctx, c.keyPrefix+cacheKey(countryCode, day), raw, c.ttl).Err(); err != nil {
		c.log.Warn("tax rate cache write failed", zap.String("country", countryCode), zap.Error(err))
	}
}

// Invalidate removes every cached rate under the key prefix.
func (c *RedisTaxRateCache) Invalidate(ctx context.Context) error {
	iter := c.client.Scan(ctx, 0, c.keyPrefix+"*", 100).Iterator()
	var keys []string
	for iter.Next(ctx) {
		keys = append(keys, iter.Val())
	}
	if err := iter.Err(); err != nil {
		return fmt.Errorf("failed to scan tax rate cache: %w", err)
	}
	if len(keys) == 0 {
		return nil
	}
	if err := c.client.Del(ctx, keys...).Err(); err != nil {
		return fmt.Errorf("failed to invalidate tax rate cache: %w", err)
	}
	return nil
}

func (c *RedisTaxRateCache) Close() error {
	return c.client.Close()
}
