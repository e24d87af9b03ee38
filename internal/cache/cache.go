package cache

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
)

const viewsPrefix = "views:"

// Cache stores rendered view JSON in Redis.
type Cache struct {
	Client *redis.Client
}

func New(redisURL string) (*Cache, error) {
	opts, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("parse redis url: %w", err)
	}
	client := redis.NewClient(opts)
	if err := client.Ping(context.Background()).Err(); err != nil {
		return nil, fmt.Errorf("ping redis: %w", err)
	}
	return &Cache{Client: client}, nil
}

func (c *Cache) Close() error {
	return c.Client.Close()
}

// ViewsKey builds the cache key of one render. Keys include the dataset
// content hash.
func ViewsKey(region, hash, mode, day, group string) string {
	return viewsPrefix + strings.Join([]string{region, hash, mode, day, group}, ":")
}

// GetViews returns the cached views for key. ok is false on a miss.
func (c *Cache) GetViews(ctx context.Context, key string) (data []byte, ok bool, err error) {
	data, err = c.Client.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("get %s: %w", key, err)
	}
	return data, true, nil
}

// SetViews stores rendered views under key for ttl.
func (c *Cache) SetViews(ctx context.Context, key string, data []byte, ttl time.Duration) error {
	if err := c.Client.Set(ctx, key, data, ttl).Err(); err != nil {
		return fmt.Errorf("set %s: %w", key, err)
	}
	return nil
}

// DropRegion deletes every cached view of a region. The count covers the
// keys actually deleted; failed deletions are joined into the error.
func (c *Cache) DropRegion(ctx context.Context, region string) (int, error) {
	var keys []string
	iter := c.Client.Scan(ctx, 0, viewsPrefix+region+":*", 0).Iterator()
	for iter.Next(ctx) {
		keys = append(keys, iter.Val())
	}
	dropped, err := deleteKeys(ctx, keys, func(ctx context.Context, key string) error {
		return c.Client.Del(ctx, key).Err()
	})
	return dropped, errors.Join(err, iter.Err())
}

func deleteKeys(ctx context.Context, keys []string, del func(context.Context, string) error) (int, error) {
	var errs []error
	dropped := 0
	for _, key := range keys {
		if err := del(ctx, key); err != nil {
			errs = append(errs, fmt.Errorf("del %s: %w", key, err))
			continue
		}
		dropped++
	}
	return dropped, errors.Join(errs...)
}
