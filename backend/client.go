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
	"time"

	"github.com/poiesic/relay/core"
)

// QueryRequest is a chat query forwarded to the retrieval backend.
type QueryRequest struct {
	Query          string
	ConversationID string
	History        []core.Message
}

// QueryResult is the backend's answer. Elapsed is measured client-side
// across retries and is not retained beyond the request.
type QueryResult struct {
	Response   string
	Sources    []core.SourceRef
	TokensUsed int
	Elapsed    time.Duration
}

// IngestRequest asks the backend to process an article into retrieval
// chunks.
type IngestRequest struct {
	URL      string
	Title    string
	Metadata map[string]string
}

// IngestResult reports the outcome of article processing.
type IngestResult struct {
	Chunks  int
	Elapsed time.Duration
}

// Client is the contract for the downstream retrieval service.
// Implementations must be safe for concurrent use; retry is the
// client's responsibility and callers must not add their own retry
// layer on top.
type Client interface {
	// Query answers a chat request. Fails with an error matching
	// ErrUnavailable or ErrTimeout once retries are exhausted.
	Query(ctx context.Context, req *QueryRequest) (*QueryResult, error)

	// IngestArticle processes an article. Same failure contract as Query.
	IngestArticle(ctx context.Context, req *IngestRequest) (*IngestResult, error)

	// Close releases resources held by the client.
	Close() error
}
