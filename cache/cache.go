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
	"sync/atomic"
	"time"
)

// DefaultTTL is the entry lifetime used when a Set is issued with ttl <= 0.
const DefaultTTL = 24 * time.Hour

// Cache is the capability set every cache variant implements.
// Implementations must be safe for concurrent use.
type Cache interface {
	// Get retrieves a value. Returns (nil, nil) when the key is absent
	// or the entry has expired. A non-nil error indicates a backend
	// failure; callers treat it the same as a miss.
	Get(ctx context.Context, key string) ([]byte, error)

	// Set stores a value with the given TTL. A ttl <= 0 means DefaultTTL.
	// Failures are returned for accounting but callers do not fail the
	// surrounding request on them.
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error

	// Ping reports whether the cache backend is reachable.
	Ping(ctx context.Context) error

	// Stats returns a snapshot of hit/miss/error counters.
	Stats() Stats

	// Close releases resources held by the cache.
	Close() error
}

var (
	_ Cache = (*Memory)(nil)
	_ Cache = (*Redis)(nil)
	_ Cache = (*Failover)(nil)
)

// Stats holds cache counters for observability.
type Stats struct {
	Hits   int64
	Misses int64
	Errors int64
}

// counters is the shared atomic counter set embedded by variants.
type counters struct {
	hits   atomic.Int64
	misses atomic.Int64
	errors atomic.Int64
}

func (c *counters) snapshot() Stats {
	return Stats{
		Hits:   c.hits.Load(),
		Misses: c.misses.Load(),
		Errors: c.errors.Load(),
	}
}
