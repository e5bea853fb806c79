// Copyright 2025 Poiesic Systems
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.


package cache

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"
)

// Redis is the networked cache variant. The caller owns the client
// lifecycle; Close here is a no-op so one client can back several caches.
type Redis struct {
	client *redis.Client
	prefix string
	logger *slog.Logger

	counters
}

// RedisOption configures a Redis cache.
type RedisOption func(*Redis)

// WithPrefix namespaces every key under "prefix:".
func WithPrefix(prefix string) RedisOption {
	return func(r *Redis) {
		r.prefix = prefix
	}
}

// WithRedisLogger sets a custom logger.
func WithRedisLogger(logger *slog.Logger) RedisOption {
	return func(r *Redis) {
		if logger != nil {
			r.logger = logger
		}
	}
}

// NewRedis creates a cache backed by the given Redis client.
func NewRedis(client *redis.Client, opts ...RedisOption) (*Redis, error) {
	if client == nil {
		return nil, errors.New("redis client required")
	}

	r := &Redis{
		client: client,
		logger: slog.Default().With("component", "redis-cache"),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r, nil
}

func (r *Redis) key(key string) string {
	if r.prefix == "" {
		return key
	}
	return r.prefix + ":" + key
}

// Get retrieves a value. A missing key is (nil, nil); transport failures
// are returned wrapped in ErrUnavailable and counted as errors.
func (r *Redis) Get(ctx context.Context, key string) ([]byte, error) {
	if key == "" {
		return nil, ErrEmptyKey
	}

	value, err := r.client.Get(ctx, r.key(key)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			r.misses.Add(1)
			return nil, nil
		}
		r.errors.Add(1)
		return nil, fmt.Errorf("%w: %w", ErrUnavailable, err)
	}

	r.hits.Add(1)
	return value, nil
}

// Set stores a value. Redis enforces the TTL server-side; reads of an
// expired key report a miss.
func (r *Redis) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	if key == "" {
		return ErrEmptyKey
	}
	if ttl <= 0 {
		ttl = DefaultTTL
	}

	if err := r.client.Set(ctx, r.key(key), value, ttl).Err(); err != nil {
		r.errors.Add(1)
		return fmt.Errorf("%w: %w", ErrUnavailable, err)
	}
	return nil
}

// Ping checks connectivity to the Redis server.
func (r *Redis) Ping(ctx context.Context) error {
	if err := r.client.Ping(ctx).Err(); err != nil {
		return fmt.Errorf("%w: %w", ErrUnavailable, err)
	}
	return nil
}

// Stats returns a snapshot of the cache counters.
func (r *Redis) Stats() Stats {
	return r.snapshot()
}

// Close is a no-op; the caller owns the redis.Client.
func (r *Redis) Close() error {
	r.logger.Debug("closing redis cache (client retained by caller)")
	return nil
}
