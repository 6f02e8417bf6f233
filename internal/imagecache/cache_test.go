package imagecache

import (
	"fmt"
	"image"
	"math/rand"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func img(w int) image.Image {
	return image.NewRGBA(image.Rect(0, 0, w, 1))
}

func TestNew_InvalidLimits(t *testing.T) {
	_, err := New(0, 10)
	assert.ErrorIs(t, err, ErrInvalidLimits)

	_, err = New(10, 0)
	assert.ErrorIs(t, err, ErrInvalidLimits)
}

func TestNewDefault_Limits(t *testing.T) {
	c := NewDefault()
	st := c.Stats()
	assert.Equal(t, 100, st.CountLimit)
	assert.Equal(t, int64(100*1024*1024), st.TotalCostLimit)
}

func TestCache_GetPut(t *testing.T) {
	c, err := New(10, 1000)
	require.NoError(t, err)

	_, ok := c.Get("a")
	assert.False(t, ok)

	a := img(1)
	require.True(t, c.Put("a", a, 10))

	got, ok := c.Get("a")
	require.True(t, ok)
	assert.Same(t, a, got)
	assert.Equal(t, int64(10), c.TotalCost())

	st := c.Stats()
	assert.Equal(t, int64(1), st.Hits)
	assert.Equal(t, int64(1), st.Misses)
}

func TestCache_OverwriteAdjustsCost(t *testing.T) {
	c, err := New(10, 1000)
	require.NoError(t, err)

	c.Put("a", img(1), 100)
	c.Put("a", img(2), 30)

	assert.Equal(t, 1, c.Len())
	assert.Equal(t, int64(30), c.TotalCost())
}

func TestCache_CountLimitEvictsLeastRecentlyUsed(t *testing.T) {
	c, err := New(2, 1000)
	require.NoError(t, err)

	c.Put("a", img(1), 1)
	c.Put("b", img(1), 1)
	_, ok := c.Get("a")
	require.True(t, ok)
	c.Put("c", img(1), 1)

	assert.True(t, c.Contains("a"))
	assert.False(t, c.Contains("b"))
	assert.True(t, c.Contains("c"))
	assert.Equal(t, int64(1), c.Stats().Evictions)
}

func TestCache_CostLimitEvictsUntilFits(t *testing.T) {
	c, err := New(10, 100)
	require.NoError(t, err)

	c.Put("a", img(1), 40)
	c.Put("b", img(1), 40)
	c.Put("c", img(1), 10)

	// needs 70 free: drops a then b
	c.Put("d", img(1), 70)

	assert.ElementsMatch(t, []string{"c", "d"}, c.Keys())
	assert.Equal(t, int64(80), c.TotalCost())
}

func TestCache_OversizedEntryNotStored(t *testing.T) {
	c, err := New(10, 100)
	require.NoError(t, err)

	c.Put("a", img(1), 50)
	assert.False(t, c.Put("huge", img(1), 101))

	assert.False(t, c.Contains("huge"))
	assert.True(t, c.Contains("a"), "existing entries survive a rejected put")
	assert.Equal(t, int64(50), c.TotalCost())
}

func TestCache_OversizedOverwriteKeepsExisting(t *testing.T) {
	c, err := New(10, 100)
	require.NoError(t, err)

	old := img(1)
	require.True(t, c.Put("a", old, 50))
	assert.False(t, c.Put("a", img(2), 101))

	got, ok := c.Get("a")
	require.True(t, ok, "rejected overwrite must not drop the cached image")
	assert.Same(t, old, got)
	assert.Equal(t, int64(50), c.TotalCost())
	assert.Equal(t, 1, c.Len())
}

func TestCache_PeekLeavesStatsAndRecency(t *testing.T) {
	c, err := New(2, 1000)
	require.NoError(t, err)

	c.Put("a", img(1), 1)
	c.Put("b", img(1), 1)

	_, ok := c.Peek("a")
	assert.True(t, ok)
	_, ok = c.Peek("missing")
	assert.False(t, ok)

	st := c.Stats()
	assert.Zero(t, st.Hits)
	assert.Zero(t, st.Misses)

	// a was only peeked, so it is still the oldest
	c.Put("c", img(1), 1)
	assert.False(t, c.Contains("a"))
	assert.True(t, c.Contains("b"))
}

func TestCache_TiesBrokenByInsertionOrder(t *testing.T) {
	c, err := New(3, 1000)
	require.NoError(t, err)

	c.Put("a", img(1), 1)
	c.Put("b", img(1), 1)
	c.Put("c", img(1), 1)
	c.Put("d", img(1), 1)

	assert.Equal(t, []string{"b", "c", "d"}, c.Keys())
}

func TestCache_AccessedEntryIsLastOriginalEvicted(t *testing.T) {
	const limit = 5
	c, err := New(limit, 1<<20)
	require.NoError(t, err)

	for i := 0; i < limit; i++ {
		c.Put(fmt.Sprintf("orig-%d", i), img(1), 1)
	}
	_, ok := c.Get("orig-0")
	require.True(t, ok)

	for i := 0; i < limit-1; i++ {
		c.Put(fmt.Sprintf("new-%d", i), img(1), 1)
		assert.True(t, c.Contains("orig-0"), "orig-0 evicted before other originals at step %d", i)
	}
	assert.Equal(t, []string{"orig-0"}, filterPrefix(c.Keys(), "orig-"))

	c.Put("new-last", img(1), 1)
	assert.False(t, c.Contains("orig-0"))
}

func TestCache_RemoveAndClear(t *testing.T) {
	c, err := New(10, 1000)
	require.NoError(t, err)

	c.Put("a", img(1), 10)
	c.Put("b", img(1), 20)

	c.Remove("a")
	assert.False(t, c.Contains("a"))
	assert.Equal(t, int64(20), c.TotalCost())

	c.Remove("missing")

	c.Clear()
	assert.Equal(t, 0, c.Len())
	assert.Equal(t, int64(0), c.TotalCost())
}

func TestCache_EvictedImageStaysUsable(t *testing.T) {
	c, err := New(1, 1000)
	require.NoError(t, err)

	a := img(3)
	c.Put("a", a, 1)
	got, _ := c.Get("a")

	c.Put("b", img(1), 1)
	assert.False(t, c.Contains("a"))
	assert.Equal(t, 3, got.Bounds().Dx())
}

func TestCache_LimitsHoldAfterEveryPut(t *testing.T) {
	const (
		countLimit = 8
		costLimit  = 500
	)
	c, err := New(countLimit, costLimit)
	require.NoError(t, err)

	rnd := rand.New(rand.NewSource(1))
	for i := 0; i < 2000; i++ {
		key := fmt.Sprintf("k%d", rnd.Intn(30))
		switch rnd.Intn(4) {
		case 0:
			c.Get(key)
		case 1:
			c.Remove(key)
		default:
			c.Put(key, img(1), int64(rnd.Intn(200)))
		}
		require.LessOrEqual(t, c.Len(), countLimit)
		require.LessOrEqual(t, c.TotalCost(), int64(costLimit))
	}
}

func TestCache_ConcurrentAccess(t *testing.T) {
	c, err := New(16, 1000)
	require.NoError(t, err)

	var wg sync.WaitGroup
	for g := 0; g < 8; g++ {
		wg.Add(1)
		go func(g int) {
			defer wg.Done()
			for i := 0; i < 500; i++ {
				key := fmt.Sprintf("k%d", (g*31+i)%40)
				c.Put(key, img(1), int64(i%90))
				c.Get(key)
			}
		}(g)
	}
	wg.Wait()

	assert.LessOrEqual(t, c.Len(), 16)
	assert.LessOrEqual(t, c.TotalCost(), int64(1000))
	assert.Len(t, c.Keys(), c.Len())
}

func filterPrefix(keys []string, prefix string) []string {
	var out []string
	for _, k := range keys {
		if len(k) >= len(prefix) && k[:len(prefix)] == prefix {
			out = append(out, k)
		}
	}
	return out
}
