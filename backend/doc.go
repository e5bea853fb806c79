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


// Package backend defines the client contract for the downstream
// retrieval service and its HTTP implementation.
//
// The Client interface exposes two operations: Query answers a chat
// request against the retrieval index, IngestArticle processes an
// article into retrieval chunks. Both are implemented over HTTP by
// HTTPClient with retry and exponential backoff; a direct-LLM
// implementation without retrieval lives in the openai subpackage, and
// a test double in the mock subpackage.
//
// # Error classification
//
// Failures carry a structured Kind instead of being classified by error
// text. Transient kinds (KindUnavailable, KindTimeout, KindRateLimited)
// are retried up to the attempt budget; KindInvalidRequest fails
// immediately. Exhausted retries surface as an *Error matching
// ErrUnavailable or ErrTimeout under errors.Is.
//
// Clients are stateless across calls; retry state lives on the stack of
// a single call. Implementations must be safe for concurrent use.
package backend
