package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// SearchCache is a short-TTL read cache for federated search results. A nil
// cache (or one without a reachable redis) degrades to a no-op so the search
// path never depends on redis being up.
type SearchCache struct {
	client *redis.Client
	ttl    time.Duration
}

// NewSearchCache connects to redis using a redis:// URL. An empty URL returns
// a usable no-op cache.
func NewSearchCache(redisURL string, ttl time.Duration) (*SearchCache, error) {
	if redisURL == "" {
		return &SearchCache{ttl: ttl}, nil
	}

	opts, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("invalid redis URL: %w", err)
	}
	client := redis.NewClient(opts)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	return &SearchCache{client: client, ttl: ttl}, nil
}

// Get unmarshals a cached value into dest and reports whether it was present.
func (c *SearchCache) Get(ctx context.Context, key string, dest any) bool {
	if c == nil || c.client == nil {
		return false
	}
	data, err := c.client.Get(ctx, "search:"+key).Bytes()
	if err != nil {
		return false
	}
	return json.Unmarshal(data, dest) == nil
}

// Set stores a value under the cache TTL. Failures are ignored: the cache is
// an optimization, not a dependency.
func (c *SearchCache) Set(ctx context.Context, key string, value any) {
	if c == nil || c.client == nil {
		return
	}
	data, err := json.Marshal(value)
	if err != nil {
		return
	}
	_ = c.client.Set(ctx, "search:"+key, data, c.ttl).Err()
}

// Close releases the redis connection if one was opened.
func (c *SearchCache) Close() error {
	if c == nil || c.client == nil {
		return nil
	}
	return c.client.Close()
}
