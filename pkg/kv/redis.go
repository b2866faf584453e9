package kv

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
)

// DefaultRedisPrefix namespaces every collection key inside the Redis keyspace
const DefaultRedisPrefix = "cybershield:"

// Redis implements Backend on a Redis server. Calls are synchronous and each
// one is bounded by the backend timeout.
type Redis struct {
	client  *redis.Client
	prefix  string
	timeout time.Duration
	quota   int64
}

// NewRedis connects to redisURL and verifies the connection
func NewRedis(redisURL string, quota int64) (*Redis, error) {
	opts, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("parse redis url: %w", err)
	}

	client := redis.NewClient(opts)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("connect to redis: %w", err)
	}

	return NewRedisWithClient(client, quota), nil
}

// NewRedisWithClient creates a backend from an existing Redis client
func NewRedisWithClient(client *redis.Client, quota int64) *Redis {
	return &Redis{
		client:  client,
		prefix:  DefaultRedisPrefix,
		timeout: 5 * time.Second,
		quota:   quota,
	}
}

func (s *Redis) key(k string) string {
	return s.prefix + k
}

func (s *Redis) ctx() (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.Background(), s.timeout)
}

func (s *Redis) Get(key string) (string, bool, error) {
	ctx, cancel := s.ctx()
	defer cancel()

	value, err := s.client.Get(ctx, s.key(key)).Result()
	if errors.Is(err, redis.Nil) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("get %s: %w", key, err)
	}
	return value, true, nil
}

func (s *Redis) Set(key, value string) error {
	ctx, cancel := s.ctx()
	defer cancel()

	if s.quota > 0 {
		used, err := s.usage(ctx, key)
		if err != nil {
			return err
		}
		if err := checkQuota(s.quota, used, key, value); err != nil {
			return err
		}
	}

	if err := s.client.Set(ctx, s.key(key), value, 0).Err(); err != nil {
		if isOOM(err) {
			return fmt.Errorf("%w: %v", ErrQuotaExceeded, err)
		}
		return fmt.Errorf("set %s: %w", key, err)
	}
	return nil
}

func (s *Redis) Remove(key string) error {
	ctx, cancel := s.ctx()
	defer cancel()

	if err := s.client.Del(ctx, s.key(key)).Err(); err != nil {
		return fmt.Errorf("remove %s: %w", key, err)
	}
	return nil
}

// Keys lists every key under the backend prefix, prefix stripped
func (s *Redis) Keys() ([]string, error) {
	ctx, cancel := s.ctx()
	defer cancel()

	var keys []string
	iter := s.client.Scan(ctx, 0, s.prefix+"*", 0).Iterator()
	for iter.Next(ctx) {
		keys = append(keys, strings.TrimPrefix(iter.Val(), s.prefix))
	}
	if err := iter.Err(); err != nil {
		return nil, fmt.Errorf("scan keys: %w", err)
	}
	return keys, nil
}

// usage sums the quota cost of every key except skip
func (s *Redis) usage(ctx context.Context, skip string) (int64, error) {
	var used int64
	iter := s.client.Scan(ctx, 0, s.prefix+"*", 0).Iterator()
	for iter.Next(ctx) {
		k := strings.TrimPrefix(iter.Val(), s.prefix)
		if k == skip {
			continue
		}
		n, err := s.client.StrLen(ctx, iter.Val()).Result()
		if err != nil {
			return 0, fmt.Errorf("measure %s: %w", k, err)
		}
		used += int64(len(k)) + n
	}
	if err := iter.Err(); err != nil {
		return 0, fmt.Errorf("scan keys: %w", err)
	}
	return used, nil
}

// Ping checks if Redis is reachable
func (s *Redis) Ping() error {
	ctx, cancel := s.ctx()
	defer cancel()
	return s.client.Ping(ctx).Err()
}

// Close closes the Redis connection
func (s *Redis) Close() error {
	return s.client.Close()
}

// isOOM matches the reply Redis sends when maxmemory is reached
func isOOM(err error) bool {
	return strings.HasPrefix(err.Error(), "OOM ")
}
