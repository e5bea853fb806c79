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
	"sync"
	"time"
)

const defaultMaxEntries = 4096

// memoryEntry is a stored value with its expiry deadline.
type memoryEntry struct {
	value     []byte
	expiresAt time.Time
}

// Memory is the in-process cache variant: a bounded map with TTL
// semantics. Expired entries are dropped lazily on read; when the map is
// full, expired entries are purged first and then the entry closest to
// expiry is evicted.
type Memory struct {
	mu         sync.Mutex
	entries    map[string]memoryEntry
	maxEntries int
	closed     bool

	// now is overridable in tests.
	now func() time.Time

	counters
}

// MemoryOption configures a Memory cache.
type MemoryOption func(*Memory)

// WithMaxEntries bounds the number of entries held in memory.
// Default is 4096; values < 1 fall back to the default.
func WithMaxEntries(n int) MemoryOption {
	return func(m *Memory) {
		if n >= 1 {
			m.maxEntries = n
		}
	}
}

// NewMemory creates an in-process cache.
func NewMemory(opts ...MemoryOption) *Memory {
	m := &Memory{
		entries:    make(map[string]memoryEntry),
		maxEntries: defaultMaxEntries,
		now:        time.Now,
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Get retrieves a value. Expired entries are removed and reported as a
// miss, so a read after expiresAt never returns the stored value.
func (m *Memory) Get(_ context.Context, key string) ([]byte, error) {
	if key == "" {
		return nil, ErrEmptyKey
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if m.closed {
		return nil, ErrClosed
	}

	entry, ok := m.entries[key]
	if !ok {
		m.misses.Add(1)
		return nil, nil
	}
	if !entry.expiresAt.After(m.now()) {
		delete(m.entries, key)
		m.misses.Add(1)
		return nil, nil
	}

	m.hits.Add(1)
	// Copy so callers cannot mutate the stored value.
	out := make([]byte, len(entry.value))
	copy(out, entry.value)
	return out, nil
}

// Set stores a value. Overwriting an existing key resets its TTL.
func (m *Memory) Set(_ context.Context, key string, value []byte, ttl time.Duration) error {
	if key == "" {
		return ErrEmptyKey
	}
	if ttl <= 0 {
		ttl = DefaultTTL
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if m.closed {
		return ErrClosed
	}

	if _, exists := m.entries[key]; !exists && len(m.entries) >= m.maxEntries {
		m.evictLocked()
	}

	stored := make([]byte, len(value))
	copy(stored, value)
	m.entries[key] = memoryEntry{value: stored, expiresAt: m.now().Add(ttl)}
	return nil
}

// evictLocked frees one slot: expired entries first, otherwise the entry
// closest to expiry. Callers must hold mu.
func (m *Memory) evictLocked() {
	now := m.now()
	var (
		oldestKey string
		oldestAt  time.Time
		found     bool
	)

	for key, entry := range m.entries {
		if !entry.expiresAt.After(now) {
			delete(m.entries, key)
			found = true
			continue
		}
		if oldestKey == "" || entry.expiresAt.Before(oldestAt) {
			oldestKey = key
			oldestAt = entry.expiresAt
		}
	}
	if found {
		return
	}
	if oldestKey != "" {
		delete(m.entries, oldestKey)
	}
}

// Ping always succeeds while the cache is open.
func (m *Memory) Ping(_ context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.closed {
		return ErrClosed
	}
	return nil
}

// Stats returns a snapshot of the cache counters.
func (m *Memory) Stats() Stats {
	return m.snapshot()
}

// Len reports the number of held entries, expired included until their
// next read.
func (m *Memory) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.entries)
}

// Close drops all entries and rejects further use.
func (m *Memory) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.closed = true
	m.entries = nil
	return nil
}
