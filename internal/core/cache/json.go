package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"
)

// LoadJSON 按 JSON 编解码的读穿缓存。缓存里的值解不开时删掉重新回源一次
func LoadJSON[T any](ctx context.Context, c *Cache, key string, ttl time.Duration, load func(context.Context) (T, error)) (T, error) {
	fetch := func(ctx context.Context) ([]byte, error) {
		v, err := load(ctx)
		if err != nil {
			return nil, err
		}
		return json.Marshal(v)
	}

	var out T
	b, err := c.GetOrLoad(ctx, key, ttl, fetch)
	if err != nil {
		return out, err
	}
	if err = json.Unmarshal(b, &out); err == nil {
		return out, nil
	}

	if ierr := c.Invalidate(ctx, key); ierr != nil {
		return out, fmt.Errorf("decode %s: %w", key, err)
	}
	if b, err = c.GetOrLoad(ctx, key, ttl, fetch); err != nil {
		return out, err
	}
	var fresh T
	if err := json.Unmarshal(b, &fresh); err != nil {
		return out, fmt.Errorf("decode %s: %w", key, err)
	}
	return fresh, nil
}
