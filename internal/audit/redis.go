package audit

import (
	"context"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"
)

// RedisClient is subset of redis.Cmdable used by Redis recorder.
//
//go:generate mockery --name RedisClient --filename redis_client.go
type RedisClient interface {
	Set(ctx context.Context, key string, value interface{}, expiration time.Duration) *redis.StatusCmd
}

// Redis keeps latest raw payload of every source under its own key.
type Redis struct {
	client RedisClient
	prefix string
	ttl    time.Duration
}

// NewRedis returns new Redis recorder. Keys expire after ttl, zero ttl means no expiration.
func NewRedis(client RedisClient, prefix string, ttl time.Duration) *Redis {
	return &Redis{
		client: client,
		prefix: prefix,
		ttl:    ttl,
	}
}

// Key returns key under which payloads of source are stored.
func (r *Redis) Key(source string) string {
	return r.prefix + source
}

// Record stores raw payload under source's key.
func (r *Redis) Record(ctx context.Context, source string, raw []byte) error {
	if err := r.client.Set(ctx, r.Key(source), raw, r.ttl).Err(); err != nil {
		return fmt.Errorf("can't store payload in redis: %w", err)
	}

	return nil
}
