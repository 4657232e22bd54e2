package llm

import (
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"isstrack/internal/domain/fact"
)

func TestFactCacheExpiry(t *testing.T) {
	cache := newFactCache(30*time.Millisecond, 8)

	cache.put("0:0", fact.Generated{Fact: "cached"})

	got, ok := cache.get("0:0")
	require.True(t, ok)
	assert.Equal(t, "cached", got.Fact)

	require.Eventually(t, func() bool {
		_, ok := cache.get("0:0")
		return !ok
	}, time.Second, 5*time.Millisecond)
}

func TestFactCacheHitDoesNotExtendLifetime(t *testing.T) {
	cache := newFactCache(200*time.Millisecond, 8)
	cache.put("a", fact.Generated{Fact: "a"})

	for i := 0; i < 10; i++ {
		_, ok := cache.get("a")
		require.True(t, ok)
		time.Sleep(10 * time.Millisecond)
	}

	// a touched entry would live until at least 200ms after the last hit
	require.Eventually(t, func() bool {
		_, ok := cache.get("a")
		return !ok
	}, 150*time.Millisecond, 5*time.Millisecond)
}

func TestFactCachePutEvictsExpired(t *testing.T) {
	cache := newFactCache(20*time.Millisecond, 8)

	cache.put("a", fact.Generated{Fact: "a"})
	time.Sleep(40 * time.Millisecond)
	cache.put("b", fact.Generated{Fact: "b"})

	assert.Equal(t, 1, cache.len())
	_, ok := cache.get("b")
	assert.True(t, ok)
}

func TestFactCacheSizeCap(t *testing.T) {
	cache := newFactCache(time.Hour, 2)

	for i := 0; i < 5; i++ {
		cache.put(fmt.Sprintf("%d:0", i), fact.Generated{Fact: fmt.Sprint(i)})
	}

	assert.Equal(t, 2, cache.len())
	_, ok := cache.get("0:0")
	assert.False(t, ok, "oldest bucket should be evicted")
	got, ok := cache.get("4:0")
	require.True(t, ok)
	assert.Equal(t, "4", got.Fact)
}

func TestCacheKey(t *testing.T) {
	assert.Equal(t, "10:-150", cacheKey(10.2, -150.4))
	assert.Equal(t, cacheKey(9.8, -149.6), cacheKey(10.2, -150.4))
	assert.NotEqual(t, cacheKey(0, 0), cacheKey(0, 1))
	assert.Equal(t, "0:3", cacheKey(-0.5, 2.5))
}

func TestNewFactCacheDefaults(t *testing.T) {
	cache := newFactCache(0, 0)
	cache.put("0:0", fact.Generated{Fact: "kept"})

	_, ok := cache.get("0:0")
	assert.True(t, ok)
}
