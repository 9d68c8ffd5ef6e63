package cache

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"
)

// RedisCache implements Cache backed by a Redis server.
// Suitable for server deployments where multiple instances share artifacts.
type RedisCache struct {
	client *redis.Client
}

// RedisOption configures a RedisCache.
type RedisOption func(*redisConfig)

type redisConfig struct {
	password string
	db       int
}

// WithPassword sets the Redis password.
func WithPassword(password string) RedisOption {
	return func(c *redisConfig) {
		c.password = password
	}
}

// WithDB selects the Redis logical database.
func WithDB(db int) RedisOption {
	return func(c *redisConfig) {
		c.db = db
	}
}

// NewRedisCache creates a Redis-backed cache connected to the given address.
// It pings the server to verify connectivity before returning.
func NewRedisCache(ctx context.Context, addr string, opts ...RedisOption) (Cache, error) {
	cfg := &redisConfig{}
	for _, opt := range opts {
		opt(cfg)
	}

	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: cfg.password,
		DB:       cfg.db,
	})

	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, err
	}

	return &RedisCache{client: client}, nil
}

// NewRedisCacheFromClient wraps an existing Redis client.
// The caller retains ownership of the client lifecycle only until Close.
func NewRedisCacheFromClient(client *redis.Client) Cache {
	return &RedisCache{client: client}
}

// Get retrieves a value from Redis.
func (c *RedisCache) Get(ctx context.Context, key string) ([]byte, bool, error) {
	data, err := c.client.Get(ctx, key).Bytes()
	if err == redis.Nil {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	return data, true, nil
}

// Set stores a value in Redis with the given TTL.
func (c *RedisCache) Set(ctx context.Context, key string, data []byte, ttl time.Duration) error {
	return c.client.Set(ctx, key, data, ttl).Err()
}

// Delete removes a value from Redis.
func (c *RedisCache) Delete(ctx context.Context, key string) error {
	return c.client.Del(ctx, key).Err()
}

// Close closes the underlying Redis client.
func (c *RedisCache) Close() error {
	return c.client.Close()
}

// Ensure RedisCache implements Cache.
var _ Cache = (*RedisCache)(nil)
