package ledger

import (
	"context"
	"testing"
	"time"

	miniredis "github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestCache(t *testing.T) (*Cache, func()) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	cache := NewCache(client, time.Minute)
	return cache, func() {
		_ = client.Close()
		mr.Close()
	}
}

func TestCacheFetchJSONPopulatesOnce(t *testing.T) {
	cache, cleanup := newTestCache(t)
	defer cleanup()
	ctx := context.Background()

	key, err := cache.BuildKey(ctx, 1, "summary", "2025")
	require.NoError(t, err)

	loads := 0
	loader := func(ctx context.Context) (any, error) {
		loads++
		return []AccountSummary{{AccountCode: "101", TotalDebit: 500}}, nil
	}

	var first []AccountSummary
	require.NoError(t, cache.FetchJSON(ctx, key, &first, loader))
	var second []AccountSummary
	require.NoError(t, cache.FetchJSON(ctx, key, &second, loader))

	assert.Equal(t, 1, loads, "second fetch served from cache")
	assert.Equal(t, first, second)
	assert.Equal(t, 500.0, second[0].TotalDebit)
}

func TestCacheBustCompanyRotatesKeys(t *testing.T) {
	cache, cleanup := newTestCache(t)
	defer cleanup()
	ctx := context.Background()

	before, err := cache.BuildKey(ctx, 1, "summary", "2025")
	require.NoError(t, err)

	cache.BustCompany(ctx, 1)

	after, err := cache.BuildKey(ctx, 1, "summary", "2025")
	require.NoError(t, err)
	assert.NotEqual(t, before, after, "bust must orphan old keys")
}

func TestCacheBustIsScopedPerCompany(t *testing.T) {
	cache, cleanup := newTestCache(t)
	defer cleanup()
	ctx := context.Background()

	otherBefore, err := cache.BuildKey(ctx, 2, "summary", "2025")
	require.NoError(t, err)

	cache.BustCompany(ctx, 1)

	otherAfter, err := cache.BuildKey(ctx, 2, "summary", "2025")
	require.NoError(t, err)
	assert.Equal(t, otherBefore, otherAfter, "other tenants unaffected")
}

func TestCacheNilClientPassesThrough(t *testing.T) {
	var cache *Cache
	ctx := context.Background()

	var result []AccountSummary
	err := cache.FetchJSON(ctx, "any", &result, func(ctx context.Context) (any, error) {
		return []AccountSummary{{AccountCode: "401"}}, nil
	})
	require.NoError(t, err)
	assert.Equal(t, "401", result[0].AccountCode)

	cache.BustCompany(ctx, 1)
}
