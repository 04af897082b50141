package cache

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/csae99/ayur-sub001/internal/domain"
)

func setupTestRedis(t *testing.T) (*RedisCache, *miniredis.Miniredis) {
	mr := miniredis.RunT(t)

	client := redis.NewClient(&redis.Options{
		Addr: mr.Addr(),
	})
	t.Cleanup(func() { client.Close() })

	return NewRedisCache(client), mr
}

func TestGet_Success(t *testing.T) {
	cache, mr := setupTestRedis(t)
	ctx := context.Background()

	cart := &domain.Cart{
		ID:     1,
		UserID: 7,
		Items: []domain.CartItem{
			{ItemID: 10, Quantity: 2},
			{ItemID: 11, Quantity: 3},
		},
		CreatedAt: time.Now(),
		UpdatedAt: time.Now(),
	}
	cartJSON, _ := json.Marshal(cart)
	mr.Set(cacheKey(7), string(cartJSON))

	result, err := cache.Get(ctx, 7)

	require.NoError(t, err)
	assert.EqualValues(t, 7, result.UserID)
	require.Len(t, result.Items, 2)
	assert.EqualValues(t, 10, result.Items[0].ItemID)
}

func TestGet_CacheMiss(t *testing.T) {
	cache, _ := setupTestRedis(t)

	result, err := cache.Get(context.Background(), 404)

	assert.ErrorIs(t, err, ErrCacheMiss)
	assert.Nil(t, result)
}

func TestGet_InvalidJSON(t *testing.T) {
	cache, mr := setupTestRedis(t)
	mr.Set(cacheKey(7), "not json")

	_, err := cache.Get(context.Background(), 7)

	assert.Error(t, err)
	assert.NotErrorIs(t, err, ErrCacheMiss)
}

func TestSet_RoundTrip(t *testing.T) {
	cache, mr := setupTestRedis(t)
	ctx := context.Background()

	cart := &domain.Cart{UserID: 7, Items: []domain.CartItem{{ItemID: 10, Quantity: 1}}}

	require.NoError(t, cache.Set(ctx, 7, cart))

	// entry expires between the base TTL and base TTL + jitter
	ttl := mr.TTL(cacheKey(7))
	assert.GreaterOrEqual(t, ttl, 15*time.Minute)
	assert.LessOrEqual(t, ttl, 20*time.Minute)

	result, err := cache.Get(ctx, 7)
	require.NoError(t, err)
	assert.Len(t, result.Items, 1)
}

func TestDelete(t *testing.T) {
	cache, _ := setupTestRedis(t)
	ctx := context.Background()

	require.NoError(t, cache.Set(ctx, 7, &domain.Cart{UserID: 7}))
	require.NoError(t, cache.Delete(ctx, 7))

	_, err := cache.Get(ctx, 7)
	assert.ErrorIs(t, err, ErrCacheMiss)
}

func TestDelete_MissingKeyIsNoError(t *testing.T) {
	cache, _ := setupTestRedis(t)

	assert.NoError(t, cache.Delete(context.Background(), 404))
}
