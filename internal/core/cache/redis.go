package cache

import (
	"context"
	"errors"
	"sync/atomic"
	"time"

	"github.com/redis/go-redis/v9"
	"golang.org/x/sync/singleflight"

	"go-user-admin/internal/core/config"
)

type Cache struct {
	RDB    *redis.Client
	Prefix string
	sf     singleflight.Group
	gen    atomic.Uint64 // 每次 Invalidate 加一
}

func New(addr, pass string, db int) *Cache {
	return &Cache{
		RDB: redis.NewClient(&redis.Options{Addr: addr, Password: pass, DB: db}),
	}
}

// FromConfig 未启用 redis 时返回 nil
func FromConfig(c config.Redis, prefix string) *Cache {
	if !c.Enabled {
		return nil
	}
	cc := New(c.Addr, c.Password, c.DB)
	cc.Prefix = prefix
	return cc
}

func (c *Cache) key(k string) string {
	if c.Prefix == "" {
		return k
	}
	return c.Prefix + ":" + k
}

func (c *Cache) Ping(ctx context.Context) error { return c.RDB.Ping(ctx).Err() }

func (c *Cache) Close() error { return c.RDB.Close() }

func (c *Cache) GetOrLoad(ctx context.Context, key string, ttl time.Duration, load func(context.Context) ([]byte, error)) ([]byte, error) {
	k := c.key(key)
	b, err := c.RDB.Get(ctx, k).Bytes()
	if err == nil {
		return b, nil
	}
	if !errors.Is(err, redis.Nil) && ctx.Err() != nil {
		return nil, ctx.Err()
	}
	// single flight 合并回源；redis 故障时直接回源。
	// 回源期间发生过 Invalidate 则不回写，避免旧数据盖住删除
	v, err, _ := c.sf.Do(k, func() (any, error) {
		gen := c.gen.Load()
		b, e := load(ctx)
		if e != nil {
			return nil, e
		}
		if c.gen.Load() == gen {
			_ = c.RDB.Set(ctx, k, b, ttl).Err()
		}
		return b, nil
	})
	if err != nil {
		return nil, err
	}
	return v.([]byte), nil
}

// Invalidate 写操作后删除缓存键
func (c *Cache) Invalidate(ctx context.Context, keys ...string) error {
	if len(keys) == 0 {
		return nil
	}
	c.gen.Add(1)
	full := make([]string, len(keys))
	for i, k := range keys {
		full[i] = c.key(k)
		c.sf.Forget(full[i])
	}
	return c.RDB.Del(ctx, full...).Err()
}
