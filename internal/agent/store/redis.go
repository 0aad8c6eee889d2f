package store

import (
	"context"
	"errors"
	"time"

	errx "github.com/helpdesk-core-poc-v1/server/internal/core/error"
	logx "github.com/helpdesk-core-poc-v1/server/pkg/logger"
	"github.com/redis/go-redis/v9"
)

// RedisStore implements Store on top of a go-redis client. TTL enforcement is
// store-side; expired keys simply stop resolving.
type RedisStore struct {
	rdb redis.Cmdable
}

func NewRedisStore(rdb redis.Cmdable) *RedisStore {
	return &RedisStore{rdb: rdb}
}

func (s *RedisStore) Get(ctx context.Context, key string) (string, error) {
	val, err := s.rdb.Get(ctx, key).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return "", ErrNotFound
		}
		logx.Error().Err(err).Str("key", key).Msg("failed to get key from redis")
		return "", errx.WrapRedis(err)
	}
	return val, nil
}

func (s *RedisStore) Set(ctx context.Context, key, value string, ttl time.Duration) error {
	if err := s.rdb.Set(ctx, key, value, ttl).Err(); err != nil {
		logx.Error().Err(err).Str("key", key).Msg("failed to set key in redis")
		return errx.WrapRedis(err)
	}
	return nil
}

func (s *RedisStore) Append(ctx context.Context, key, value string, max int, ttl time.Duration) error {
	// MULTI/EXEC keeps push, trim and TTL refresh atomic so concurrent
	// appenders never expose an over-capacity or partially trimmed list.
	_, err := s.rdb.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.RPush(ctx, key, value)
		if max > 0 {
			pipe.LTrim(ctx, key, int64(-max), -1)
		}
		if ttl > 0 {
			pipe.Expire(ctx, key, ttl)
		}
		return nil
	})
	if err != nil {
		logx.Error().Err(err).Str("key", key).Msg("failed to append to redis list")
		return errx.WrapRedis(err)
	}
	return nil
}

func (s *RedisStore) Range(ctx context.Context, key string) ([]string, error) {
	rows, err := s.rdb.LRange(ctx, key, 0, -1).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return []string{}, nil
		}
		logx.Error().Err(err).Str("key", key).Msg("failed to read redis list")
		return nil, errx.WrapRedis(err)
	}
	return rows, nil
}

func (s *RedisStore) Delete(ctx context.Context, key string) error {
	if err := s.rdb.Del(ctx, key).Err(); err != nil {
		logx.Error().Err(err).Str("key", key).Msg("failed to delete key from redis")
		return errx.WrapRedis(err)
	}
	return nil
}

var _ Store = (*RedisStore)(nil)
