package cache

import (
	"context"
	"time"

	"lumina/internal/pkg/redis"
)

// RedisCache 多实例共享的缓存，过期清理交给 redis 自身
type RedisCache struct{}

func NewRedisCache() *RedisCache {
	return &RedisCache{}
}

func (c *RedisCache) Get(ctx context.Context, key string) ([]byte, error) {
	value, err := redis.GetValue(ctx, key)
	if err != nil {
		return nil, err
	}
	if value == "" {
		return nil, nil
	}
	return []byte(value), nil
}

func (c *RedisCache) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	return redis.SetWithExpiration(ctx, key, value, ttl)
}

func (c *RedisCache) Invalidate(ctx context.Context, key string) error {
	return redis.DeleteKey(ctx, key)
}
