package cache

import (
	"context"
	"encoding/json"
	"time"
)

// Loader 由 *Cache 实现，测试里可替换
type Loader interface {
	GetOrLoad(ctx context.Context, key string, ttl time.Duration, load func(context.Context) ([]byte, error)) ([]byte, error)
}

// GetOrLoadJSON 值以 JSON 存放；缓存内容无法解码时绕过缓存直接回源
func GetOrLoadJSON[T any](ctx context.Context, c Loader, key string, ttl time.Duration, load func(context.Context) (T, error)) (T, error) {
	var zero T
	b, err := c.GetOrLoad(ctx, key, ttl, func(ctx context.Context) ([]byte, error) {
		v, err := load(ctx)
		if err != nil {
			return nil, err
		}
		return json.Marshal(v)
	})
	if err != nil {
		return zero, err
	}
	var out T
	if err := json.Unmarshal(b, &out); err != nil {
		return load(ctx)
	}
	return out, nil
}
