package redis

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"multicurrency-ledger/internal/core/domain"

	goredis "github.com/redis/go-redis/v9"
)

// CurrencyCache implements ports.CurrencyCache using Redis. Entries are
// stored as JSON under a per-code key; registration invalidates the key so
// readers never see a stale rate past the TTL.
type CurrencyCache struct {
	client *goredis.Client
	prefix string
}

// NewCurrencyCache creates a new Redis-backed currency cache.
func NewCurrencyCache(client *goredis.Client) *CurrencyCache {
	return &CurrencyCache{
		client: client,
		prefix: "currency:",
	}
}

// Get retrieves a cached currency by code. Returns nil, nil on miss.
func (c *CurrencyCache) Get(ctx context.Context, code string) (*domain.Currency, error) {
	val, err := c.client.Get(ctx, c.prefix+code).Bytes()
	if err != nil {
		if err == goredis.Nil {
			return nil, nil
		}
		return nil, fmt.Errorf("redis currency get: %w", err)
	}

	var currency domain.Currency
	if err := json.Unmarshal(val, &currency); err != nil {
		return nil, fmt.Errorf("unmarshal cached currency: %w", err)
	}
	return &currency, nil
}

// Set stores a currency in the cache with TTL.
func (c *CurrencyCache) Set(ctx context.Context, currency *domain.Currency, ttl time.Duration) error {
	val, err := json.Marshal(currency)
	if err != nil {
		return fmt.Errorf("marshal currency: %w", err)
	}
	if err := c.client.Set(ctx, c.prefix+currency.Code, val, ttl).Err(); err != nil {
		return fmt.Errorf("redis currency set: %w", err)
	}
	return nil
}

// Invalidate removes a cached currency, if present.
func (c *CurrencyCache) Invalidate(ctx context.Context, code string) error {
	if err := c.client.Del(ctx, c.prefix+code).Err(); err != nil {
		return fmt.Errorf("redis currency del: %w", err)
	}
	return nil
}
