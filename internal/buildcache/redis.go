package buildcache

import (
	"context"
	"fmt"

	"github.com/redis/go-redis/v9"
)

const redisKeyPrefix = "vexc:iface:"

// redisCache is a Cache backed by a shared Redis instance, for
// multi-machine builds that want to share interface results across a
// fleet rather than each machine keeping its own SQLite file.
type redisCache struct {
	client *redis.Client
}

// NewRedis connects a Cache to the Redis instance at addr.
func NewRedis(addr string) (Cache, error) {
	client := redis.NewClient(&redis.Options{Addr: addr})
	if err := client.Ping(context.Background()).Err(); err != nil {
		return nil, fmt.Errorf("buildcache: connecting to redis at %s: %w", addr, err)
	}
	return &redisCache{client: client}, nil
}

func (c *redisCache) Get(ctx context.Context, key string) ([]byte, bool, error) {
	data, err := c.client.Get(ctx, redisKeyPrefix+key).Bytes()
	if err == redis.Nil {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("buildcache: redis get: %w", err)
	}
	return data, true, nil
}

func (c *redisCache) Put(ctx context.Context, key string, data []byte) error {
	if err := c.client.Set(ctx, redisKeyPrefix+key, data, 0).Err(); err != nil {
		return fmt.Errorf("buildcache: redis put: %w", err)
	}
	return nil
}

func (c *redisCache) Close() error { return c.client.Close() }
