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


// Package pipeline orchestrates a chat request end to end: validate,
// normalize the query into a cache key, consult the cache, fall through
// to the retrieval backend on a miss, persist the exchange, and
// populate the cache for the next equivalent query.
//
// The cache and the conversation store are best-effort. When either
// fails the pipeline logs and degrades to a slower but correct path;
// only backend failures surface to the caller.
package pipeline
