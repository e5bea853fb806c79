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
	"errors"
	"fmt"
)

// Sentinel errors for matching with errors.Is. An *Error matches the
// sentinel corresponding to its Kind.
var (
	// ErrUnavailable indicates the backend could not serve the call
	// after the retry budget was exhausted.
	ErrUnavailable = errors.New("backend unavailable")

	// ErrTimeout indicates the call exceeded its overall time ceiling.
	ErrTimeout = errors.New("backend timeout")

	// ErrInvalidRequest indicates the backend rejected the request;
	// such failures are never retried.
	ErrInvalidRequest = errors.New("backend rejected request")

	// ErrRateLimited indicates the backend throttled the call.
	ErrRateLimited = errors.New("backend rate limited")
)

// Kind classifies a backend failure. Classification happens in the
// transport layer from status codes and network error types, never from
// error message text.
type Kind int

const (
	// KindUnknown is a failure that could not be classified. Not retried.
	KindUnknown Kind = iota
	// KindInvalidRequest is a 4xx-class rejection. Not retried.
	KindInvalidRequest
	// KindRateLimited is a 429 response. Retried.
	KindRateLimited
	// KindUnavailable is a connection failure or 5xx response. Retried.
	KindUnavailable
	// KindTimeout is an attempt or overall deadline expiry. Retried
	// per attempt; terminal when the overall ceiling is hit.
	KindTimeout
)

// String returns a short name for the kind.
func (k Kind) String() string {
	switch k {
	case KindInvalidRequest:
		return "invalid_request"
	case KindRateLimited:
		return "rate_limited"
	case KindUnavailable:
		return "unavailable"
	case KindTimeout:
		return "timeout"
	default:
		return "unknown"
	}
}

// Error is a classified backend failure.
type Error struct {
	Kind   Kind
	Status int // HTTP status code when the failure came from a response
	Err    error
}

func (e *Error) Error() string {
	if e.Status != 0 {
		return fmt.Sprintf("backend %s (status %d): %v", e.Kind, e.Status, e.Err)
	}
	return fmt.Sprintf("backend %s: %v", e.Kind, e.Err)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Is matches an *Error against the sentinel for its kind, so callers
// can write errors.Is(err, backend.ErrUnavailable).
func (e *Error) Is(target error) bool {
	switch target {
	case ErrUnavailable:
		return e.Kind == KindUnavailable
	case ErrTimeout:
		return e.Kind == KindTimeout
	case ErrInvalidRequest:
		return e.Kind == KindInvalidRequest
	case ErrRateLimited:
		return e.Kind == KindRateLimited
	}
	return false
}

// Retryable reports whether the failure is transient and worth another
// attempt.
func Retryable(err error) bool {
	var be *Error
	if !errors.As(err, &be) {
		return false
	}
	switch be.Kind {
	case KindUnavailable, KindTimeout, KindRateLimited:
		return true
	}
	return false
}
