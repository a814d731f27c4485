package cache

import (
	"context"
	"encoding/json"
	"time"

	"github.com/pkg/errors"
	"github.com/redis/go-redis/v9"
)

// JSON stores values as JSON strings under a common key prefix.
type JSON struct {
	rdb    *redis.Client
	prefix string
}

func NewJSON(rdb *redis.Client, prefix string) *JSON {
	return &JSON{rdb: rdb, prefix: prefix}
}

func (c *JSON) key(k string) string { return c.prefix + k }

// GetJSON decodes the value at key into dst. A missing key is (false, nil).
func (c *JSON) GetJSON(ctx context.Context, key string, dst any) (bool, error) {
	raw, err := c.rdb.Get(ctx, c.key(key)).Bytes()
	if errors.Is(err, redis.Nil) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	if err := json.Unmarshal(raw, dst); err != nil {
		// unreadable entry; drop it so the next read recomputes
		_ = c.rdb.Del(ctx, c.key(key)).Err()
		return false, nil
	}
	return true, nil
}

func (c *JSON) SetJSON(ctx context.Context, key string, v any, ttl time.Duration) error {
	b, err := json.Marshal(v)
	if err != nil {
		return errors.Wrap(err, "cache: marshal")
	}
	return c.rdb.Set(ctx, c.key(key), b, ttl).Err()
}

func (c *JSON) Delete(ctx context.Context, keys ...string) error {
	if len(keys) == 0 {
		return nil
	}
	full := make([]string, len(keys))
	for i, k := range keys {
		full[i] = c.key(k)
	}
	return c.rdb.Del(ctx, full...).Err()
}
