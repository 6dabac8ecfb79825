package repository

import (
	"context"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
)

const redisSessionPrefix = "cv:session:"

// RedisSessionStorage is a fiber.Storage backed by Redis, used by the session
// middleware when REDIS_URL is set.
type RedisSessionStorage struct {
	client  *redis.Client
	timeout time.Duration
}

func NewRedisSessionStorage(client *redis.Client) *RedisSessionStorage {
	return &RedisSessionStorage{client: client, timeout: 5 * time.Second}
}

func (r *RedisSessionStorage) ctx() (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.Background(), r.timeout)
}

// Get returns nil, nil for a missing key, as fiber.Storage requires.
func (r *RedisSessionStorage) Get(key string) ([]byte, error) {
	if key == "" {
		return nil, nil
	}
	ctx, cancel := r.ctx()
	defer cancel()
	v, err := r.client.Get(ctx, redisSessionPrefix+key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	return v, err
}

func (r *RedisSessionStorage) Set(key string, val []byte, exp time.Duration) error {
	if key == "" || len(val) == 0 {
		return nil
	}
	ctx, cancel := r.ctx()
	defer cancel()
	return r.client.Set(ctx, redisSessionPrefix+key, val, exp).Err()
}

func (r *RedisSessionStorage) Delete(key string) error {
	if key == "" {
		return nil
	}
	ctx, cancel := r.ctx()
	defer cancel()
	return r.client.Del(ctx, redisSessionPrefix+key).Err()
}

// Reset removes every session key, leaving other keys in the database alone.
func (r *RedisSessionStorage) Reset() error {
	ctx, cancel := r.ctx()
	defer cancel()
	iter := r.client.Scan(ctx, 0, redisSessionPrefix+"*", 100).Iterator()
	for iter.Next(ctx) {
		if err := r.client.Del(ctx, iter.Val()).Err(); err != nil {
			return err
		}
	}
	return iter.Err()
}

func (r *RedisSessionStorage) Close() error {
	return r.client.Close()
}

func (r *RedisSessionStorage) Ping(ctx context.Context) error {
	return r.client.Ping(ctx).Err()
}
