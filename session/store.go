package session

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// ErrNotFound is returned by [Store.Load] when no session exists under the identifier.
var ErrNotFound = errors.New("session not found")

// ErrStoreUnavailable is returned when the backing store cannot be reached.
var ErrStoreUnavailable = errors.New("session store unavailable")

// Store persists session values between requests.
type Store interface {
	Load(ctx context.Context, id string) (map[string]string, error)
	Save(ctx context.Context, id string, values map[string]string, ttl time.Duration) error
	Delete(ctx context.Context, id string) error
}

// RedisStore keeps each session in a Redis hash under prefix:id.
type RedisStore struct {
	redis   redis.UniversalClient
	prefix  string
	sliding time.Duration
}

// NewRedisStore creates a [RedisStore]. An empty prefix defaults to "fs". A positive
// sliding duration refreshes the key TTL on every Load.
func NewRedisStore(client redis.UniversalClient, prefix string, sliding time.Duration) *RedisStore {
	if prefix == "" {
		prefix = "fs"
	}
	return &RedisStore{
		redis:   client,
		prefix:  prefix,
		sliding: sliding,
	}
}

func (s *RedisStore) key(id string) string {
	return s.prefix + ":" + id
}

// Load returns the values of the session, or [ErrNotFound].
//
//	Performance: 1 Redis HGETALL, plus EXPIRE when sliding expiration is on.
func (s *RedisStore) Load(ctx context.Context, id string) (map[string]string, error) {
	key := s.key(id)

	values, err := s.redis.HGetAll(ctx, key).Result()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
	}
	if len(values) == 0 {
		return nil, ErrNotFound
	}

	if s.sliding > 0 {
		if err := s.redis.Expire(ctx, key, s.sliding).Err(); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
		}
	}

	return values, nil
}

// Save replaces the stored values atomically and sets the key TTL.
//
//	Performance: 1 MULTI/EXEC (DEL + HSET + EXPIRE).
func (s *RedisStore) Save(ctx context.Context, id string, values map[string]string, ttl time.Duration) error {
	key := s.key(id)

	_, err := s.redis.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Del(ctx, key)
		if len(values) == 0 {
			return nil
		}
		pipe.HSet(ctx, key, flatten(values))
		if ttl > 0 {
			pipe.Expire(ctx, key, ttl)
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
	}

	return nil
}

// Delete removes the session. Deleting a missing session is not an error.
func (s *RedisStore) Delete(ctx context.Context, id string) error {
	if err := s.redis.Del(ctx, s.key(id)).Err(); err != nil {
		return fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
	}
	return nil
}

func flatten(values map[string]string) []string {
	out := make([]string, 0, len(values)*2)
	for k, v := range values {
		out = append(out, k, v)
	}
	return out
}
