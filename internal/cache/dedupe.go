package cache

import (
	"context"
	"time"
)

// dedupeKeyPrefix is the Redis key prefix for webhook delivery ids.
const dedupeKeyPrefix = "webhook:seen:"

// SeenEvent records a webhook delivery id and reports whether it was
// already seen within the TTL. SET NX makes check-and-mark atomic.
// The suppression is advisory: the upsert is idempotent, so on Redis
// errors the caller should proceed as if the event were new.
func (c *Cache) SeenEvent(ctx context.Context, messageID string, ttl time.Duration) (bool, error) {
	set, err := c.client.SetNX(ctx, dedupeKeyPrefix+messageID, 1, ttl).Result()
	if err != nil {
		return false, err
	}
	return !set, nil
}
