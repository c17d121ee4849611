package embedding

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/legalqa/legal-rag/internal/pkg/hash"
	"github.com/legalqa/legal-rag/internal/pkg/logger"
)

// RedisCache is a Redis-backed embedding cache, useful when several server
// replicas should share one cache. Redis errors degrade to cache misses.
type RedisCache struct {
	client *redis.Client
	prefix string
	ttl    time.Duration
	log    *logger.Logger
}

// NewRedisCache creates a Redis-backed embedding cache.
// Returns an error if the connection cannot be established.
func NewRedisCache(url string, ttl time.Duration, log *logger.Logger) (*RedisCache, error) {
	opts, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("parsing redis URL: %w", err)
	}

	client := redis.NewClient(opts)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("connecting to redis: %w", err)
	}

	return &RedisCache{
		client: client,
		prefix: "legalrag:embed:",
		ttl:    ttl,
		log:    log.WithComponent("embedding.rediscache"),
	}, nil
}

// Get retrieves an embedding from Redis.
func (c *RedisCache) Get(ctx context.Context, text string) ([]float32, bool) {
	key := c.prefix + hash.SHA256String(text)

	data, err := c.client.Get(ctx, key).Bytes()
	if err != nil {
		if err != redis.Nil {
			c.log.Warn("redis get failed", "error", err)
		}
		return nil, false
	}

	var vec []float32
	if err := json.Unmarshal(data, &vec); err != nil {
		c.log.Warn("corrupt cache entry, dropping", "key", key)
		c.client.Del(ctx, key)
		return nil, false
	}

	return vec, true
}

// Set stores an embedding in Redis.
func (c *RedisCache) Set(ctx context.Context, text string, vector []float32) {
	key := c.prefix + hash.SHA256String(text)

	data, err := json.Marshal(vector)
	if err != nil {
		return
	}

	if err := c.client.Set(ctx, key, data, c.ttl).Err(); err != nil {
		c.log.Warn("redis set failed", "error", err)
	}
}

// Close releases the Redis connection.
func (c *RedisCache) Close() error {
	return c.client.Close()
}
