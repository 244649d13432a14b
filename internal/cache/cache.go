package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/neexbeast/travel-gateway/internal/travel"
)

const defaultTTL = 5 * time.Minute

// Cache stores search responses in Redis as JSON with a fixed TTL.
type Cache struct {
	client *redis.Client
	ttl    time.Duration
}

// NewCache constructs a Cache. A non-positive ttl uses the 5 minute default.
func NewCache(client *redis.Client, ttl time.Duration) *Cache {
	if ttl <= 0 {
		ttl = defaultTTL
	}
	return &Cache{client: client, ttl: ttl}
}

// Get decodes the entry stored under key into dst.
// Returns false, nil on a cache miss.
func (c *Cache) Get(ctx context.Context, key string, dst any) (bool, error) {
	val, err := c.client.Get(ctx, key).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return false, nil
		}
		return false, fmt.Errorf("cache get %s: %w", key, err)
	}

	if err := json.Unmarshal(val, dst); err != nil {
		return false, fmt.Errorf("unmarshaling cached entry %s: %w", key, err)
	}
	return true, nil
}

// Set stores v under key with the configured TTL. A nil v is a no-op.
func (c *Cache) Set(ctx context.Context, key string, v any) error {
	if v == nil {
		return nil
	}

	b, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("marshaling cache entry %s: %w", key, err)
	}

	if err := c.client.Set(ctx, key, b, c.ttl).Err(); err != nil {
		return fmt.Errorf("cache set %s: %w", key, err)
	}
	return nil
}

// FlightKey returns the cache key for a flight search. Codes and currency
// are case-insensitive; city names are compared trimmed and lowercased.
func FlightKey(req travel.FlightSearchRequest) string {
	nonStop := "true"
	if req.NonStop != nil && !*req.NonStop {
		nonStop = "false"
	}
	return "flights:" + join(
		req.OriginCode, req.OriginCity,
		req.DestinationCode, req.DestinationCity,
		req.DepartureDate,
		strconv.Itoa(req.Adults), nonStop, req.Currency, strconv.Itoa(req.Max),
	)
}

// HotelKey returns the cache key for a hotel search. Destination and
// currency are kept verbatim since both reach the provider unchanged.
func HotelKey(req travel.HotelSearchRequest) string {
	return "hotels:" + req.Destination + "|" + req.Currency + "|" + join(
		req.CheckInDate, req.CheckOutDate,
		strconv.Itoa(req.Adults), strconv.Itoa(req.PageSize),
	)
}

func join(parts ...string) string {
	for i, p := range parts {
		parts[i] = strings.ToLower(strings.TrimSpace(p))
	}
	return strings.Join(parts, "|")
}
