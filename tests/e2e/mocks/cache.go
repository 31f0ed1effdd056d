package mocks

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"
)

// PassthroughCache always misses, so every request exercises the full
// scoring pipeline.
type PassthroughCache struct{}

func (c *PassthroughCache) Get(ctx context.Context, key string, dest any) error {
	return redis.Nil
}

func (c *PassthroughCache) Set(ctx context.Context, key string, value any, exp time.Duration) error {
	return nil
}

func (c *PassthroughCache) Delete(ctx context.Context, keys ...string) error {
	return nil
}

func (c *PassthroughCache) Close() error {
	return nil
}
