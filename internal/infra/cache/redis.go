package cache

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"

	"goonzette-automation/internal/domain"
)

// RedisGuard implements domain.OnceGuard on Redis SETNX, keeping scheduled
// actions single-shot across process restarts.
type RedisGuard struct {
	client *redis.Client
}

// NewRedisGuard creates a guard.
func NewRedisGuard(client *redis.Client) *RedisGuard {
	return &RedisGuard{client: client}
}

var _ domain.OnceGuard = (*RedisGuard)(nil)

// Once runs fn only if the key was not set yet. On fn failure the key is
// released so a manual re-trigger can retry.
func (g *RedisGuard) Once(key string, ttl time.Duration, fn func() error) error {
	ctx := context.Background()
	ok, err := g.client.SetNX(ctx, key, "1", ttl).Result()
	if err != nil {
		return err
	}
	if !ok {
		return nil
	}
	if err := fn(); err != nil {
		_ = g.client.Del(ctx, key).Err()
		return err
	}
	return nil
}
