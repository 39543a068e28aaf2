package reference

import (
	"context"
	"encoding/json"
	"time"

	"github.com/redis/go-redis/v9"

	"loan-approval/internal/common/logger"
)

const cacheKeyPrefix = "loan:choices:"

// CachedSource puts Redis in front of another Lister. Redis failures are
// logged and fall through to the wrapped source.
type CachedSource struct {
	next   Lister
	redis  redis.Cmdable
	ttl    time.Duration
	logger logger.Logger
}

func NewCachedSource(next Lister, rdb redis.Cmdable, ttl time.Duration, log logger.Logger) *CachedSource {
	return &CachedSource{
		next:   next,
		redis:  rdb,
		ttl:    ttl,
		logger: log.WithFields(map[string]interface{}{"component": "reference-cache"}),
	}
}

func CacheKey(column string) string {
	return cacheKeyPrefix + column
}

func (c *CachedSource) ListDistinct(ctx context.Context, column string) ([]string, error) {
	key := CacheKey(column)

	val, err := c.redis.Get(ctx, key).Result()
	switch {
	case err == nil:
		var cached []string
		if jsonErr := json.Unmarshal([]byte(val), &cached); jsonErr == nil {
			return cached, nil
		}
		c.logger.Warn("discarding malformed cache entry", map[string]interface{}{"key": key})
	case err != redis.Nil:
		c.logger.Warn("cache read failed", map[string]interface{}{"key": key, "error": err})
	}

	values, err := c.next.ListDistinct(ctx, column)
	if err != nil {
		return nil, err
	}

	data, _ := json.Marshal(values)
	if err := c.redis.Set(ctx, key, string(data), c.ttl).Err(); err != nil {
		c.logger.Warn("cache write failed", map[string]interface{}{"key": key, "error": err})
	}
	return values, nil
}
