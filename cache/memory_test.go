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
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemory_SetGet(t *testing.T) {
	ctx := context.Background()
	m := NewMemory()
	defer m.Close()

	require.NoError(t, m.Set(ctx, "k1", []byte("v1"), time.Minute))

	value, err := m.Get(ctx, "k1")
	require.NoError(t, err)
	assert.Equal(t, []byte("v1"), value)

	stats := m.Stats()
	assert.Equal(t, int64(1), stats.Hits)
	assert.Equal(t, int64(0), stats.Misses)
}

func TestMemory_MissOnAbsentKey(t *testing.T) {
	ctx := context.Background()
	m := NewMemory()
	defer m.Close()

	value, err := m.Get(ctx, "absent")
	require.NoError(t, err)
	assert.Nil(t, value)
	assert.Equal(t, int64(1), m.Stats().Misses)
}

func TestMemory_ExpiryEnforcedAtRead(t *testing.T) {
	ctx := context.Background()
	m := NewMemory()
	defer m.Close()

	now := time.Now()
	m.now = func() time.Time { return now }

	require.NoError(t, m.Set(ctx, "k1", []byte("v1"), time.Minute))

	// Just before expiry the value is still served.
	now = now.Add(59 * time.Second)
	value, err := m.Get(ctx, "k1")
	require.NoError(t, err)
	assert.Equal(t, []byte("v1"), value)

	// At and after expiry the entry is absent.
	now = now.Add(2 * time.Second)
	value, err = m.Get(ctx, "k1")
	require.NoError(t, err)
	assert.Nil(t, value)
}

func TestMemory_SetResetsTTL(t *testing.T) {
	ctx := context.Background()
	m := NewMemory()
	defer m.Close()

	now := time.Now()
	m.now = func() time.Time { return now }

	require.NoError(t, m.Set(ctx, "k1", []byte("v1"), time.Minute))
	now = now.Add(50 * time.Second)
	require.NoError(t, m.Set(ctx, "k1", []byte("v2"), time.Minute))

	// Past the original deadline but within the reset one.
	now = now.Add(30 * time.Second)
	value, err := m.Get(ctx, "k1")
	require.NoError(t, err)
	assert.Equal(t, []byte("v2"), value)
}

func TestMemory_DefaultTTL(t *testing.T) {
	ctx := context.Background()
	m := NewMemory()
	defer m.Close()

	now := time.Now()
	m.now = func() time.Time { return now }

	require.NoError(t, m.Set(ctx, "k1", []byte("v1"), 0))

	now = now.Add(23 * time.Hour)
	value, err := m.Get(ctx, "k1")
	require.NoError(t, err)
	assert.Equal(t, []byte("v1"), value)

	now = now.Add(2 * time.Hour)
	value, err = m.Get(ctx, "k1")
	require.NoError(t, err)
	assert.Nil(t, value)
}

func TestMemory_Bounded(t *testing.T) {
	ctx := context.Background()
	m := NewMemory(WithMaxEntries(3))
	defer m.Close()

	for i := 0; i < 5; i++ {
		key := fmt.Sprintf("k%d", i)
		require.NoError(t, m.Set(ctx, key, []byte("v"), time.Minute))
	}

	assert.LessOrEqual(t, m.Len(), 3)
}

func TestMemory_EvictsClosestToExpiry(t *testing.T) {
	ctx := context.Background()
	m := NewMemory(WithMaxEntries(2))
	defer m.Close()

	require.NoError(t, m.Set(ctx, "short", []byte("v"), time.Minute))
	require.NoError(t, m.Set(ctx, "long", []byte("v"), time.Hour))
	require.NoError(t, m.Set(ctx, "new", []byte("v"), time.Hour))

	value, err := m.Get(ctx, "short")
	require.NoError(t, err)
	assert.Nil(t, value, "entry closest to expiry should be evicted")

	value, err = m.Get(ctx, "long")
	require.NoError(t, err)
	assert.NotNil(t, value)
}

func TestMemory_EmptyKeyRejected(t *testing.T) {
	ctx := context.Background()
	m := NewMemory()
	defer m.Close()

	_, err := m.Get(ctx, "")
	assert.ErrorIs(t, err, ErrEmptyKey)
	assert.ErrorIs(t, m.Set(ctx, "", []byte("v"), time.Minute), ErrEmptyKey)
}

func TestMemory_Closed(t *testing.T) {
	ctx := context.Background()
	m := NewMemory()
	require.NoError(t, m.Close())

	_, err := m.Get(ctx, "k")
	assert.ErrorIs(t, err, ErrClosed)
	assert.ErrorIs(t, m.Set(ctx, "k", []byte("v"), time.Minute), ErrClosed)
	assert.ErrorIs(t, m.Ping(ctx), ErrClosed)
}

func TestMemory_ConcurrentAccess(t *testing.T) {
	ctx := context.Background()
	m := NewMemory()
	defer m.Close()

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			key := fmt.Sprintf("k%d", n%4)
			for j := 0; j < 100; j++ {
				_ = m.Set(ctx, key, []byte("v"), time.Minute)
				_, _ = m.Get(ctx, key)
			}
		}(i)
	}
	wg.Wait()
}
