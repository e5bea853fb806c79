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
	"math/rand/v2"
	"time"
)

// ErrInvalidMaxAttempts indicates a retry config with attempts < 1.
var ErrInvalidMaxAttempts = errors.New("max attempts must be > 0")

// RetryConfig controls the retry/backoff behavior of a client.
type RetryConfig struct {
	// MaxAttempts is the total number of attempts, first call included.
	MaxAttempts int
	// BaseDelay is the backoff before the first retry; it doubles on
	// each subsequent retry.
	BaseDelay time.Duration
	// MaxDelay caps the backoff between attempts.
	MaxDelay time.Duration
	// Jitter adds up to 50% random extra delay to each backoff to
	// spread retries from concurrent callers.
	Jitter bool
}

// DefaultRetryConfig returns the defaults used by production clients:
// 3 attempts, 500ms base delay doubling per retry, 10s cap, jitter on.
func DefaultRetryConfig() RetryConfig {
	return RetryConfig{
		MaxAttempts: 3,
		BaseDelay:   500 * time.Millisecond,
		MaxDelay:    10 * time.Second,
		Jitter:      true,
	}
}

// backoffCeiling returns the worst-case time spent sleeping between
// attempts, used to derive the overall call deadline.
func (c RetryConfig) backoffCeiling() time.Duration {
	var total time.Duration
	delay := c.BaseDelay
	for i := 1; i < c.MaxAttempts; i++ {
		d := delay
		if c.Jitter {
			d += d / 2
		}
		if c.MaxDelay > 0 && d > c.MaxDelay {
			d = c.MaxDelay
		}
		total += d
		delay *= 2
	}
	return total
}

// retryWithBackoff runs operation up to cfg.MaxAttempts times, sleeping
// with exponential backoff between attempts. Non-retryable errors (see
// Retryable) abort immediately without consuming the remaining budget.
// Returns the error from the last attempt if all attempts fail.
func retryWithBackoff(ctx context.Context, logger *slog.Logger, cfg RetryConfig, operation func() error) error {
	if cfg.MaxAttempts <= 0 {
		return ErrInvalidMaxAttempts
	}

	var lastErr error
	delay := cfg.BaseDelay

	for attempt := 1; attempt <= cfg.MaxAttempts; attempt++ {
		// Check context before attempting
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		lastErr = operation()
		if lastErr == nil {
			if attempt > 1 {
				logger.Debug("backend call succeeded after retry", "attempt", attempt)
			}
			return nil
		}

		if !Retryable(lastErr) {
			return lastErr
		}

		// Don't sleep after the last attempt
		if attempt == cfg.MaxAttempts {
			break
		}

		sleep := delay
		if cfg.Jitter {
			sleep += time.Duration(rand.Int64N(int64(delay)/2 + 1))
		}
		if cfg.MaxDelay > 0 && sleep > cfg.MaxDelay {
			sleep = cfg.MaxDelay
		}

		logger.Debug("backend call failed, will retry",
			"attempt", attempt, "maxAttempts", cfg.MaxAttempts, "delay", sleep, "error", lastErr)

		timer := time.NewTimer(sleep)
		select {
		case <-ctx.Done():
			timer.Stop()
			return ctx.Err()
		case <-timer.C:
		}

		delay *= 2
	}

	return lastErr
}
