package cache

import (
	"context"
	"time"
)

// Cache 带过期时间的字节缓存，未命中返回 nil 而不报错
type Cache interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
	Invalidate(ctx context.Context, key string) error
}
