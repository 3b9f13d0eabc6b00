package snapshot

import (
	"context"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"

	"souvenir-shop/internal/domain"
)

type redisRepo struct {
	client *redis.Client
	prefix string
	ttl    time.Duration
}

// NewRedis stores each snapshot under "<prefix><namespace>:<key>". A positive ttl expires
// snapshots that have not been written for that long.
func NewRedis(client *redis.Client, prefix string, ttl time.Duration) Repository {
	return &redisRepo{client: client, prefix: prefix, ttl: ttl}
}

func (r *redisRepo) redisKey(namespace, key string) string {
	return r.prefix + namespace + ":" + key
}

func (r *redisRepo) Get(ctx context.Context, namespace, key string) ([]byte, error) {
	value, err := r.client.Get(ctx, r.redisKey(namespace, key)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return value, nil
}

func (r *redisRepo) Put(ctx context.Context, namespace, key string, value []byte) error {
	return r.client.Set(ctx, r.redisKey(namespace, key), value, r.ttl).Err()
}

func (r *redisRepo) Delete(ctx context.Context, namespace, key string) error {
	return r.client.Del(ctx, r.redisKey(namespace, key)).Err()
}
