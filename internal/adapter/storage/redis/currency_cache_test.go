package redis

import (
	"context"
	"testing"
	"time"

	"multicurrency-ledger/internal/core/domain"

	"github.com/alicebob/miniredis/v2"
	goredis "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testCurrency() *domain.Currency {
	return &domain.Currency{
		Code:          "USD",
		Kind:          domain.CurrencyKindExternal,
		Enabled:       true,
		RateMicroUSD:  1_000_000,
		DecimalPlaces: 2,
	}
}

func TestCurrencyCache_SetAndGet(t *testing.T) {
	s := miniredis.RunT(t)
	client := goredis.NewClient(&goredis.Options{Addr: s.Addr()})
	cache := NewCurrencyCache(client)
	ctx := context.Background()

	// Get before set => nil
	result, err := cache.Get(ctx, "USD")
	assert.NoError(t, err)
	assert.Nil(t, result)

	c := testCurrency()
	require.NoError(t, cache.Set(ctx, c, 5*time.Minute))

	result, err = cache.Get(ctx, "USD")
	require.NoError(t, err)
	require.NotNil(t, result)
	assert.Equal(t, c.Code, result.Code)
	assert.Equal(t, c.Kind, result.Kind)
	assert.Equal(t, c.RateMicroUSD, result.RateMicroUSD)
	assert.Equal(t, c.DecimalPlaces, result.DecimalPlaces)
}

func TestCurrencyCache_TTLExpiry(t *testing.T) {
	s := miniredis.RunT(t)
	client := goredis.NewClient(&goredis.Options{Addr: s.Addr()})
	cache := NewCurrencyCache(client)
	ctx := context.Background()

	require.NoError(t, cache.Set(ctx, testCurrency(), 1*time.Second))

	// Fast-forward time in miniredis
	s.FastForward(2 * time.Second)

	result, err := cache.Get(ctx, "USD")
	assert.NoError(t, err)
	assert.Nil(t, result, "expired key should return nil")
}

func TestCurrencyCache_Invalidate(t *testing.T) {
	s := miniredis.RunT(t)
	client := goredis.NewClient(&goredis.Options{Addr: s.Addr()})
	cache := NewCurrencyCache(client)
	ctx := context.Background()

	require.NoError(t, cache.Set(ctx, testCurrency(), 5*time.Minute))
	require.NoError(t, cache.Invalidate(ctx, "USD"))

	result, err := cache.Get(ctx, "USD")
	assert.NoError(t, err)
	assert.Nil(t, result)
}

func TestCurrencyCache_InvalidateMissingKey(t *testing.T) {
	s := miniredis.RunT(t)
	client := goredis.NewClient(&goredis.Options{Addr: s.Addr()})
	cache := NewCurrencyCache(client)

	assert.NoError(t, cache.Invalidate(context.Background(), "NEVER"))
}

func TestCurrencyCache_CorruptEntry(t *testing.T) {
	s := miniredis.RunT(t)
	client := goredis.NewClient(&goredis.Options{Addr: s.Addr()})
	cache := NewCurrencyCache(client)

	require.NoError(t, s.Set("currency:USD", "not-json"))

	_, err := cache.Get(context.Background(), "USD")
	assert.Error(t, err)
}
