package cache

import (
	"context"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
	"golang.org/x/sync/singleflight"
)

// Cache Redis 读穿缓存；RDB 为空时只做 singleflight 合并
type Cache struct {
	RDB *redis.Client
	sf  singleflight.Group

	mu   sync.Mutex
	gens map[string]uint64 // 每次 Invalidate +1，回源期间变过的结果不回写
}

// New addr 为空则不连 Redis
func New(addr, pass string, db int) *Cache {
	if addr == "" {
		return &Cache{}
	}
	return &Cache{
		RDB: redis.NewClient(&redis.Options{Addr: addr, Password: pass, DB: db}),
	}
}

func (c *Cache) GetOrLoad(ctx context.Context, key string, ttl time.Duration, load func(context.Context) ([]byte, error)) ([]byte, error) {
	// 先读缓存
	if c.RDB != nil {
		if b, err := c.RDB.Get(ctx, key).Bytes(); err == nil {
			return b, nil
		}
	}
	// single flight 合并回源
	v, err, _ := c.sf.Do(key, func() (any, error) {
		gen := c.gen(key)
		b, e := load(ctx)
		if e != nil {
			return nil, e
		}
		if c.RDB != nil && c.gen(key) == gen {
			_ = c.RDB.Set(ctx, key, b, ttl).Err()
			// Set 与 Invalidate 交错时再删一次
			if c.gen(key) != gen {
				_ = c.RDB.Del(ctx, key).Err()
			}
		}
		return b, nil
	})
	if err != nil {
		return nil, err
	}
	return v.([]byte), nil
}

// Invalidate 删缓存，并让后续调用不再复用进行中的回源
func (c *Cache) Invalidate(ctx context.Context, keys ...string) error {
	c.mu.Lock()
	if c.gens == nil {
		c.gens = make(map[string]uint64)
	}
	for _, k := range keys {
		c.gens[k]++
		c.sf.Forget(k)
	}
	c.mu.Unlock()
	if c.RDB == nil || len(keys) == 0 {
		return nil
	}
	return c.RDB.Del(ctx, keys...).Err()
}

func (c *Cache) gen(key string) uint64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.gens[key]
}

func (c *Cache) Ping(ctx context.Context) error {
	if c.RDB == nil {
		return nil
	}
	return c.RDB.Ping(ctx).Err()
}

func (c *Cache) Close() error {
	if c.RDB == nil {
		return nil
	}
	return c.RDB.Close()
}
