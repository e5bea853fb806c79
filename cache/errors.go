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

import "errors"

var (
	// ErrClosed indicates the cache has been closed.
	ErrClosed = errors.New("cache is closed")

	// ErrUnavailable indicates the cache backend is unreachable.
	ErrUnavailable = errors.New("cache unavailable")

	// ErrEmptyKey indicates an operation was issued with an empty key.
	ErrEmptyKey = errors.New("cache key cannot be empty")
)
