package cache

import (
	"context"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
)

const (
	// keyRolePrefix is the Redis key prefix for verified-key role cache.
	keyRolePrefix = "auth:key:"
	// keyRoleTTL bounds how long a verified key skips Argon2 verification.
	keyRoleTTL = 5 * time.Minute
)

// GetKeyRole retrieves the cached role for a presented key, identified
// by its quick hash. Returns "" on a miss; misses and Redis errors are
// both treated as misses so the caller falls back to full verification.
func (c *Cache) GetKeyRole(ctx context.Context, keyHash string) (string, error) {
	role, err := c.client.Get(ctx, keyRolePrefix+keyHash).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return "", nil
		}
		return "", nil //nolint:nilerr
	}
	return role, nil
}

// SetKeyRole caches the role a key verified as.
func (c *Cache) SetKeyRole(ctx context.Context, keyHash, role string) error {
	return c.client.Set(ctx, keyRolePrefix+keyHash, role, keyRoleTTL).Err()
}

// DeleteKeyRole removes a cached verdict. Used when a key is rotated.
func (c *Cache) DeleteKeyRole(ctx context.Context, keyHash string) error {
	return c.client.Del(ctx, keyRolePrefix+keyHash).Err()
}
