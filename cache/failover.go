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
	"log/slog"
	"sync/atomic"
	"time"
)

const defaultFailureThreshold = 3

// Failover selects between a networked primary and an in-process
// fallback. The fallback takes over when the primary is unreachable at
// construction time or after a threshold of consecutive primary
// failures. The switch is one-way for the process lifetime: entries
// written to the fallback would otherwise be invisible after a
// flip-back, which reads as resurrecting stale state.
type Failover struct {
	primary  Cache
	fallback Cache
	logger   *slog.Logger

	threshold    int64
	consecutive  atomic.Int64
	usingPrimary atomic.Bool
}

// FailoverOption configures a Failover cache.
type FailoverOption func(*Failover)

// WithFailureThreshold sets how many consecutive primary failures
// trigger the switch to the fallback. Default is 3.
func WithFailureThreshold(n int) FailoverOption {
	return func(f *Failover) {
		if n >= 1 {
			f.threshold = int64(n)
		}
	}
}

// WithFailoverLogger sets a custom logger.
func WithFailoverLogger(logger *slog.Logger) FailoverOption {
	return func(f *Failover) {
		if logger != nil {
			f.logger = logger
		}
	}
}

// NewFailover creates a failover cache. The primary is probed once with
// Ping; if the probe fails the fallback is active from the start.
func NewFailover(ctx context.Context, primary, fallback Cache, opts ...FailoverOption) *Failover {
	f := &Failover{
		primary:   primary,
		fallback:  fallback,
		threshold: defaultFailureThreshold,
		logger:    slog.Default().With("component", "failover-cache"),
	}
	for _, opt := range opts {
		opt(f)
	}

	if err := primary.Ping(ctx); err != nil {
		f.logger.Warn("primary cache unavailable at startup, using fallback", "err", err)
		f.usingPrimary.Store(false)
	} else {
		f.usingPrimary.Store(true)
	}
	return f
}

// active returns the cache currently serving requests.
func (f *Failover) active() Cache {
	if f.usingPrimary.Load() {
		return f.primary
	}
	return f.fallback
}

// recordResult tracks consecutive primary failures and flips to the
// fallback once the threshold is reached.
func (f *Failover) recordResult(err error) {
	if !f.usingPrimary.Load() {
		return
	}
	if err == nil {
		f.consecutive.Store(0)
		return
	}
	if f.consecutive.Add(1) >= f.threshold {
		if f.usingPrimary.CompareAndSwap(true, false) {
			f.logger.Warn("primary cache failed repeatedly, switching to fallback",
				"consecutiveFailures", f.consecutive.Load())
		}
	}
}

// Get reads from the active variant.
func (f *Failover) Get(ctx context.Context, key string) ([]byte, error) {
	c := f.active()
	value, err := c.Get(ctx, key)
	if c == f.primary {
		f.recordResult(err)
	}
	return value, err
}

// Set writes to the active variant.
func (f *Failover) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	c := f.active()
	err := c.Set(ctx, key, value, ttl)
	if c == f.primary {
		f.recordResult(err)
	}
	return err
}

// Ping probes the active variant.
func (f *Failover) Ping(ctx context.Context) error {
	return f.active().Ping(ctx)
}

// UsingFallback reports whether the in-process fallback is serving.
func (f *Failover) UsingFallback() bool {
	return !f.usingPrimary.Load()
}

// Stats returns the counters of the active variant.
func (f *Failover) Stats() Stats {
	return f.active().Stats()
}

// Close closes both variants.
func (f *Failover) Close() error {
	err := f.primary.Close()
	if ferr := f.fallback.Close(); ferr != nil && err == nil {
		err = ferr
	}
	return err
}
