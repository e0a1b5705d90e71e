package cache

import (
	"context"
	"time"

	"alcyxob/gym-manager/internal/config"

	"github.com/pkg/errors"
	"github.com/redis/go-redis/v9"
)

const redisKeyPrefix = "gym-manager:"

// RedisCache shares dashboards between service replicas.
type RedisCache struct {
	rdb redis.Cmdable
}

func NewRedisCache(rdb redis.Cmdable) *RedisCache {
	return &RedisCache{rdb: rdb}
}

// NewRedisClient connects to Redis and pings it with a short timeout.
func NewRedisClient(ctx context.Context, cfg config.RedisConfig) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	pingCtx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		_ = client.Close()
		return nil, errors.Wrap(err, "unable to ping redis")
	}
	return client, nil
}

func (c *RedisCache) Get(ctx context.Context, key string) ([]byte, error) {
	b, err := c.rdb.Get(ctx, redisKeyPrefix+key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, ErrMiss
	}
	if err != nil {
		return nil, errors.Wrap(err, "unable to read from redis")
	}
	return b, nil
}

func (c *RedisCache) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	err := c.rdb.Set(ctx, redisKeyPrefix+key, value, ttl).Err()
	return errors.Wrap(err, "unable to write to redis")
}

func (c *RedisCache) Delete(ctx context.Context, key string) error {
	err := c.rdb.Del(ctx, redisKeyPrefix+key).Err()
	return errors.Wrap(err, "unable to delete from redis")
}
