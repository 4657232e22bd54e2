// internal/adapter/llm/cache.go

package llm

import (
	"fmt"
	"time"

	"github.com/jellydator/ttlcache/v3"

	"isstrack/internal/domain/fact"
	"isstrack/internal/domain/tracking"
)

// DefaultCacheTTL bounds how long a generated fact is reused for the same area
const DefaultCacheTTL = time.Hour

// DefaultCacheSize caps the number of cached whole-degree buckets
const DefaultCacheSize = 1024

// factCache keeps generated facts per coordinate bucket to limit paid calls.
// Hits do not extend an entry's lifetime.
type factCache struct {
	items *ttlcache.Cache[string, fact.Generated]
}

func newFactCache(ttl time.Duration, size uint64) *factCache {
	if ttl <= 0 {
		ttl = DefaultCacheTTL
	}
	if size == 0 {
		size = DefaultCacheSize
	}
	return &factCache{
		items: ttlcache.New[string, fact.Generated](
			ttlcache.WithTTL[string, fact.Generated](ttl),
			ttlcache.WithCapacity[string, fact.Generated](size),
			ttlcache.WithDisableTouchOnHit[string, fact.Generated](),
		),
	}
}

func (c *factCache) get(key string) (fact.Generated, bool) {
	item := c.items.Get(key)
	if item == nil {
		return fact.Generated{}, false
	}
	return item.Value(), true
}

func (c *factCache) put(key string, g fact.Generated) {
	c.items.DeleteExpired()
	c.items.Set(key, g, ttlcache.DefaultTTL)
}

func (c *factCache) len() int {
	return c.items.Len()
}

// cacheKey buckets coordinates to whole degrees
func cacheKey(latitude, longitude float64) string {
	return fmt.Sprintf("%d:%d", tracking.WholeDegrees(latitude), tracking.WholeDegrees(longitude))
}
