package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/TimFooLabs/drtimfoo-api/internal/availability"
)

// Cache key prefixes and TTLs.
const (
	availabilityKeyPrefix = "avail:"

	// AvailabilityTTL keeps cached day availability short-lived; bookings
	// invalidate their day eagerly, the TTL covers everything else.
	AvailabilityTTL = 60 * time.Second
)

// ErrCacheMiss indicates a key was not present.
var ErrCacheMiss = errors.New("cache miss")

// GetDay retrieves cached availability for a date key ("2006-01-02").
// Returns ErrCacheMiss if not found.
func (c *Cache) GetDay(ctx context.Context, dateKey string) (*availability.Day, error) {
	data, err := c.client.Get(ctx, availabilityKeyPrefix+dateKey).Bytes()
	if err != nil {
		return nil, ErrCacheMiss
	}

	var day availability.Day
	if err := json.Unmarshal(data, &day); err != nil {
		// Corrupted entry - treat as miss
		return nil, ErrCacheMiss
	}

	return &day, nil
}

// SetDay caches availability for a date key.
func (c *Cache) SetDay(ctx context.Context, dateKey string, day *availability.Day) error {
	data, err := json.Marshal(day)
	if err != nil {
		return fmt.Errorf("marshal availability: %w", err)
	}

	if err := c.client.Set(ctx, availabilityKeyPrefix+dateKey, data, AvailabilityTTL).Err(); err != nil {
		return fmt.Errorf("failed to cache availability: %w", err)
	}

	return nil
}

// InvalidateDay removes cached availability for a date key. Called
// when a booking is created or cancelled on that day.
func (c *Cache) InvalidateDay(ctx context.Context, dateKey string) error {
	if err := c.client.Del(ctx, availabilityKeyPrefix+dateKey).Err(); err != nil {
		return fmt.Errorf("failed to invalidate availability: %w", err)
	}
	return nil
}
