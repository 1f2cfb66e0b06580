package cache

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// GeocodeCache stores reverse-geocoding results keyed by rounded coordinates.
// Key format: geo:regeo:<lat>,<lon> with 5 decimals (about one meter).
type GeocodeCache struct {
	client *redis.Client
	ttl    time.Duration
}

// NewGeocodeCache wraps the given Redis client.
func NewGeocodeCache(client *redis.Client, ttl time.Duration) *GeocodeCache {
	return &GeocodeCache{client: client, ttl: ttl}
}

// Get returns the cached address and whether it was present.
func (c *GeocodeCache) Get(ctx context.Context, lat, lon float64) (string, bool, error) {
	address, err := c.client.Get(ctx, c.key(lat, lon)).Result()
	if errors.Is(err, redis.Nil) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("geocode cache get: %w", err)
	}
	return address, true, nil
}

// Set stores the address for ttl.
func (c *GeocodeCache) Set(ctx context.Context, lat, lon float64, address string) error {
	if err := c.client.Set(ctx, c.key(lat, lon), address, c.ttl).Err(); err != nil {
		return fmt.Errorf("geocode cache set: %w", err)
	}
	return nil
}

func (c *GeocodeCache) key(lat, lon float64) string {
	return fmt.Sprintf("geo:regeo:%.5f,%.5f", lat, lon)
}
