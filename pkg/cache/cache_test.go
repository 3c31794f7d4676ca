package cache

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

func TestMemoryCacheRoundTripsStructs(t *testing.T) {
	ctx := context.Background()
	mc := NewMemoryCache()
	defer mc.Close()

	require.NoError(t, mc.Set(ctx, "p", []point{{1, 2}, {3, 4}}, time.Minute))

	var got []point
	require.NoError(t, mc.Get(ctx, "p", &got))
	assert.Equal(t, []point{{1, 2}, {3, 4}}, got)

	// mutating the result must not leak back into the cache
	got[0].X = 99
	var again []point
	require.NoError(t, mc.Get(ctx, "p", &again))
	assert.Equal(t, 1.0, again[0].X)
}

func TestMemoryCacheMissAndExpiry(t *testing.T) {
	ctx := context.Background()
	mc := NewMemoryCache()
	defer mc.Close()

	var v int
	assert.ErrorIs(t, mc.Get(ctx, "absent", &v), ErrCacheMiss)

	require.NoError(t, mc.Set(ctx, "short", 7, 10*time.Millisecond))
	time.Sleep(20 * time.Millisecond)
	assert.ErrorIs(t, mc.Get(ctx, "short", &v), ErrCacheMiss)
}

func TestMemoryCacheEvictsLeastRecentlyUsed(t *testing.T) {
	ctx := context.Background()
	mc := NewMemoryCache(WithMemoryMaxSize(2))
	defer mc.Close()

	require.NoError(t, mc.Set(ctx, "a", 1, time.Minute))
	time.Sleep(time.Millisecond)
	require.NoError(t, mc.Set(ctx, "b", 2, time.Minute))
	time.Sleep(time.Millisecond)

	var v int
	require.NoError(t, mc.Get(ctx, "a", &v)) // a is now fresher than b
	require.NoError(t, mc.Set(ctx, "c", 3, time.Minute))

	assert.Equal(t, 2, mc.Len())
	ok, _ := mc.Exists(ctx, "b")
	assert.False(t, ok)
	ok, _ = mc.Exists(ctx, "a", "c")
	assert.True(t, ok)
}

func TestMemoryCacheDeleteByPattern(t *testing.T) {
	ctx := context.Background()
	mc := NewMemoryCache()
	defer mc.Close()

	require.NoError(t, mc.Set(ctx, Key("metrics", "x"), 1, 0))
	require.NoError(t, mc.Set(ctx, Key("metrics", "y"), 2, 0))
	require.NoError(t, mc.Set(ctx, Key("bounds"), 3, 0))

	require.NoError(t, mc.DeleteByPattern(ctx, Pattern("metrics")))
	assert.Equal(t, 1, mc.Len())
}

func TestLayeredCacheFillsL1FromL2(t *testing.T) {
	ctx := context.Background()
	l2 := NewMemoryCache()
	lc := NewLayeredCache(l2, 10, time.Minute)
	defer lc.Close()

	require.NoError(t, l2.Set(ctx, "k", point{5, 6}, time.Minute))

	var got point
	require.NoError(t, lc.Get(ctx, "k", &got))
	assert.Equal(t, point{5, 6}, got)

	// gone from L2, still served from L1
	require.NoError(t, l2.Delete(ctx, "k"))
	got = point{}
	require.NoError(t, lc.Get(ctx, "k", &got))
	assert.Equal(t, point{5, 6}, got)
}

func TestGetOrLoad(t *testing.T) {
	ctx := context.Background()
	mc := NewMemoryCache()
	defer mc.Close()

	calls := 0
	load := func(context.Context) (point, error) {
		calls++
		return point{1, 1}, nil
	}

	v, hit, err := GetOrLoad(ctx, mc, "k", time.Minute, load)
	require.NoError(t, err)
	assert.False(t, hit)
	assert.Equal(t, point{1, 1}, v)

	v, hit, err = GetOrLoad(ctx, mc, "k", time.Minute, load)
	require.NoError(t, err)
	assert.True(t, hit)
	assert.Equal(t, point{1, 1}, v)
	assert.Equal(t, 1, calls)

	boom := errors.New("boom")
	_, _, err = GetOrLoad(ctx, mc, "other", time.Minute, func(context.Context) (point, error) {
		return point{}, boom
	})
	assert.ErrorIs(t, err, boom)
	ok, _ := mc.Exists(ctx, "other")
	assert.False(t, ok)
}

func TestRequestKeyIsStable(t *testing.T) {
	a, err := RequestKey("metrics", map[string]interface{}{"b": 1, "a": 2})
	require.NoError(t, err)
	b, err := RequestKey("metrics", map[string]interface{}{"a": 2, "b": 1})
	require.NoError(t, err)
	assert.Equal(t, a, b)
	assert.Contains(t, a, "metrics:")
}
