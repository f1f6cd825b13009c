package repository

import (
	"context"
	"errors"

	"github.com/redis/go-redis/v9"
)

// NewRedisCredentialRepository returns a Redis-backed implementation. Keys are
// namespaced as medclient:<profile>:<key>.
func NewRedisCredentialRepository(client *redis.Client, profile string) CredentialRepository {
	return &redisCredentialRepository{client: client, prefix: "medclient:" + profile + ":"}
}

type redisCredentialRepository struct {
	client *redis.Client
	prefix string
}

func (r *redisCredentialRepository) Get(ctx context.Context, key string) (string, bool, error) {
	value, err := r.client.Get(ctx, r.prefix+key).Result()
	if errors.Is(err, redis.Nil) {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}
	return value, true, nil
}

func (r *redisCredentialRepository) Set(ctx context.Context, key, value string) error {
	return r.client.Set(ctx, r.prefix+key, value, 0).Err()
}

func (r *redisCredentialRepository) Remove(ctx context.Context, keys ...string) error {
	if len(keys) == 0 {
		return nil
	}
	names := make([]string, len(keys))
	for i, k := range keys {
		names[i] = r.prefix + k
	}
	return r.client.Del(ctx, names...).Err()
}
