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


package backend

import (
	"context"
	"errors"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testRetryConfig() RetryConfig {
	return RetryConfig{
		MaxAttempts: 3,
		BaseDelay:   time.Millisecond,
		MaxDelay:    100 * time.Millisecond,
	}
}

func TestRetryWithBackoff_SucceedsAfterTransientFailures(t *testing.T) {
	ctx := context.Background()
	calls := 0
	var callTimes []time.Time

	err := retryWithBackoff(ctx, slog.Default(), testRetryConfig(), func() error {
		calls++
		callTimes = append(callTimes, time.Now())
		if calls < 3 {
			return &Error{Kind: KindUnavailable, Err: errors.New("transient")}
		}
		return nil
	})

	require.NoError(t, err)
	assert.Equal(t, 3, calls)

	// Backoff doubles: the second gap must not be shorter than the first.
	require.Len(t, callTimes, 3)
	first := callTimes[1].Sub(callTimes[0])
	second := callTimes[2].Sub(callTimes[1])
	assert.GreaterOrEqual(t, second, first)
}

func TestRetryWithBackoff_ExhaustsAttempts(t *testing.T) {
	ctx := context.Background()
	calls := 0

	err := retryWithBackoff(ctx, slog.Default(), testRetryConfig(), func() error {
		calls++
		return &Error{Kind: KindUnavailable, Err: errors.New("down")}
	})

	assert.Equal(t, 3, calls, "exactly MaxAttempts calls")
	assert.ErrorIs(t, err, ErrUnavailable)
}

func TestRetryWithBackoff_NonRetryableFailsImmediately(t *testing.T) {
	ctx := context.Background()
	calls := 0

	err := retryWithBackoff(ctx, slog.Default(), testRetryConfig(), func() error {
		calls++
		return &Error{Kind: KindInvalidRequest, Status: 400, Err: errors.New("bad input")}
	})

	assert.Equal(t, 1, calls, "no retry budget consumed on 4xx")
	assert.ErrorIs(t, err, ErrInvalidRequest)
}

func TestRetryWithBackoff_ContextCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	calls := 0

	cfg := RetryConfig{MaxAttempts: 5, BaseDelay: time.Hour}
	err := retryWithBackoff(ctx, slog.Default(), cfg, func() error {
		calls++
		cancel()
		return &Error{Kind: KindUnavailable, Err: errors.New("down")}
	})

	assert.Equal(t, 1, calls)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestRetryWithBackoff_InvalidConfig(t *testing.T) {
	err := retryWithBackoff(context.Background(), slog.Default(), RetryConfig{}, func() error {
		t.Fatal("operation must not run")
		return nil
	})
	assert.ErrorIs(t, err, ErrInvalidMaxAttempts)
}

func TestRetryConfig_BackoffCeiling(t *testing.T) {
	cfg := RetryConfig{MaxAttempts: 3, BaseDelay: 100 * time.Millisecond}
	// Two sleeps: 100ms + 200ms.
	assert.Equal(t, 300*time.Millisecond, cfg.backoffCeiling())

	cfg.Jitter = true
	// Worst case with jitter: 150ms + 300ms.
	assert.Equal(t, 450*time.Millisecond, cfg.backoffCeiling())

	cfg.MaxDelay = 200 * time.Millisecond
	// Capped: 150ms + 200ms.
	assert.Equal(t, 350*time.Millisecond, cfg.backoffCeiling())
}
