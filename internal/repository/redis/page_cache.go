package redis

import (
	"context"
	"crypto/sha1"
	"encoding/hex"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
)

const PageKeyPrefix = "page:"

// PageCache stores rendered pages under page:<sha1(key)>
type PageCache struct {
	Client *redis.Client
}

func (c *PageCache) pageKey(key string) string {
	sum := sha1.Sum([]byte(key))
	return PageKeyPrefix + hex.EncodeToString(sum[:])
}

func (c *PageCache) Get(ctx context.Context, key string) ([]byte, bool, error) {
	body, err := c.Client.Get(ctx, c.pageKey(key)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	return body, true, nil
}

func (c *PageCache) Set(ctx context.Context, key string, body []byte, ttl time.Duration) error {
	return c.Client.Set(ctx, c.pageKey(key), body, ttl).Err()
}

// Clear drops every cached page, leaving other keys alone
func (c *PageCache) Clear(ctx context.Context) error {
	iter := c.Client.Scan(ctx, 0, PageKeyPrefix+"*", 500).Iterator()
	var batch []string
	for iter.Next(ctx) {
		batch = append(batch, iter.Val())
		if len(batch) == 500 {
			if err := c.Client.Del(ctx, batch...).Err(); err != nil {
				return err
			}
			batch = batch[:0]
		}
	}
	if err := iter.Err(); err != nil {
		return err
	}
	if len(batch) > 0 {
		return c.Client.Del(ctx, batch...).Err()
	}
	return nil
}
