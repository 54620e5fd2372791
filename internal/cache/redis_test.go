package cache

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/magabrotheeeer/subscription-tracker/internal/config"
	"github.com/magabrotheeeer/subscription-tracker/internal/models"
)

func setupTestCache(t *testing.T) (*Cache, *miniredis.Miniredis) {
	mr, err := miniredis.Run()
	require.NoError(t, err)
	t.Cleanup(mr.Close)

	cfg := config.RedisConnection{
		AddressRedis: mr.Addr(),
	}

	cache, err := InitServer(context.Background(), cfg)
	require.NoError(t, err)
	t.Cleanup(func() { _ = cache.Close() })
	return cache, mr
}

func TestSetAndGet(t *testing.T) {
	cache, _ := setupTestCache(t)
	ctx := context.Background()

	next := time.Date(2025, 7, 1, 0, 0, 0, 0, time.UTC)
	desc := "family plan"
	expected := models.Subscription{
		ID:              "5f1c7f5e-0000-4000-8000-000000000001",
		UserID:          "user-1",
		Name:            "Netflix",
		Price:           15.99,
		BillingCycle:    models.BillingMonthly,
		Category:        models.CategoryEntertainment,
		Status:          models.StatusActive,
		NextBillingDate: &next,
		Description:     &desc,
	}
	require.NoError(t, cache.Set(ctx, "subscription:1", expected, time.Minute))

	var actual models.Subscription
	found, err := cache.Get(ctx, "subscription:1", &actual)
	require.NoError(t, err)
	require.True(t, found)
	assert.Equal(t, expected.Name, actual.Name)
	assert.Equal(t, expected.Price, actual.Price)
	assert.True(t, expected.NextBillingDate.Equal(*actual.NextBillingDate))
	assert.Equal(t, desc, *actual.Description)
}

func TestGetNotFound(t *testing.T) {
	cache, _ := setupTestCache(t)

	var out models.Subscription
	found, err := cache.Get(context.Background(), "no_such_key", &out)
	require.NoError(t, err)
	assert.False(t, found)
}

func TestInvalidate(t *testing.T) {
	cache, _ := setupTestCache(t)
	ctx := context.Background()

	require.NoError(t, cache.Set(ctx, "a", "value", time.Minute))
	require.NoError(t, cache.Set(ctx, "b", "value", time.Minute))
	require.NoError(t, cache.Invalidate(ctx, "a", "b"))
	require.NoError(t, cache.Invalidate(ctx))

	for _, key := range []string{"a", "b"} {
		exists, err := cache.Exists(ctx, key)
		require.NoError(t, err)
		assert.False(t, exists, key)
	}
}

func TestExpiration(t *testing.T) {
	cache, mr := setupTestCache(t)
	ctx := context.Background()

	require.NoError(t, cache.Set(ctx, "revoked:jti", true, time.Minute))
	exists, err := cache.Exists(ctx, "revoked:jti")
	require.NoError(t, err)
	assert.True(t, exists)

	mr.FastForward(2 * time.Minute)

	exists, err = cache.Exists(ctx, "revoked:jti")
	require.NoError(t, err)
	assert.False(t, exists)
}

func TestGetInvalidJSON(t *testing.T) {
	cache, _ := setupTestCache(t)
	ctx := context.Background()

	require.NoError(t, cache.Db.Set(ctx, "bad", []byte("not-json"), time.Minute).Err())

	var out models.Subscription
	found, err := cache.Get(ctx, "bad", &out)
	assert.False(t, found)
	assert.Error(t, err)
}

func TestInitServerInvalidAddr(t *testing.T) {
	cfg := config.RedisConnection{
		AddressRedis: "127.0.0.1:1",
		DialTimeout:  100 * time.Millisecond,
	}

	cache, err := InitServer(context.Background(), cfg)
	assert.Nil(t, cache)
	assert.Error(t, err)
}
