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


package ingestion

import "errors"

var (
	// ErrPoolSaturated indicates the job queue is full. Callers should
	// surface this as backpressure, not retry immediately.
	ErrPoolSaturated = errors.New("ingestion pool saturated")

	// ErrPoolClosed indicates the pool has been shut down and accepts no
	// further jobs.
	ErrPoolClosed = errors.New("ingestion pool closed")

	// ErrNilBackend indicates a pool was constructed without a backend
	// client.
	ErrNilBackend = errors.New("ingestion pool requires a backend client")

	// ErrNilArticles indicates a pool was constructed without an article
	// store.
	ErrNilArticles = errors.New("ingestion pool requires an article store")
)
