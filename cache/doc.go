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


// Package cache provides the response cache used by the request pipeline.
//
// A single Cache interface covers all variants:
//
//   - NewMemory — an in-process, bounded TTL map. Expiry is enforced
//     lazily at read time; an expired entry is never returned.
//   - NewRedis — backed by a Redis server via [github.com/redis/go-redis/v9].
//     The caller owns the [redis.Client] lifecycle; Close is a no-op.
//   - NewFailover — wraps a networked primary and an in-process fallback.
//     The fallback takes over when the primary is unreachable at startup
//     or after a threshold of consecutive failures.
//
// Caching is best-effort throughout: a failed Get is equivalent to a
// miss and a failed Set is logged and ignored. No variant ever returns a
// stale value; TTL is enforced on every read regardless of backend.
package cache
