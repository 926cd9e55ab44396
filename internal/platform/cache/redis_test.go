package cache

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"
)

func newTestCache(t *testing.T) (*Cache, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return NewCache(client, time.Minute), mr
}

func TestFetchJSONPopulatesAndReuses(t *testing.T) {
	c, _ := newTestCache(t)
	ctx := context.Background()

	calls := 0
	loader := func(context.Context) (interface{}, error) {
		calls++
		return map[string]float64{"total": 105}, nil
	}

	var first map[string]float64
	require.NoError(t, c.FetchJSON(ctx, "reports:tb:test", &first, loader))
	require.Equal(t, 105.0, first["total"])

	var second map[string]float64
	require.NoError(t, c.FetchJSON(ctx, "reports:tb:test", &second, loader))
	require.Equal(t, 105.0, second["total"])
	require.Equal(t, 1, calls, "second read must hit the cache")
}

func TestBumpChangesKeys(t *testing.T) {
	c, _ := newTestCache(t)
	ctx := context.Background()

	before, err := c.BuildKey(ctx, "reports", "tb")
	require.NoError(t, err)

	require.NoError(t, c.Bump(ctx))

	after, err := c.BuildKey(ctx, "reports", "tb")
	require.NoError(t, err)
	require.NotEqual(t, before, after)
}

func TestNilCacheFallsThrough(t *testing.T) {
	var c *Cache
	var out int
	err := c.FetchJSON(context.Background(), "ignored", &out, func(context.Context) (interface{}, error) {
		return 7, nil
	})
	require.NoError(t, err)
	require.Equal(t, 7, out)
}

func TestFetchJSONPropagatesLoaderError(t *testing.T) {
	c, _ := newTestCache(t)
	boom := errors.New("boom")
	var out int
	err := c.FetchJSON(context.Background(), "key", &out, func(context.Context) (interface{}, error) {
		return nil, boom
	})
	require.ErrorIs(t, err, boom)
}
