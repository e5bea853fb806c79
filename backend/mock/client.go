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


// Package mock provides a test double for backend.Client.
package mock

import (
	"context"
	"fmt"
	"sync"

	"github.com/poiesic/relay/backend"
)

// Client is a test double for backend.Client. Behavior is injected via
// the exported func fields; when a field is nil a deterministic default
// answer is produced. Call counts are tracked for assertions and are
// safe for concurrent use.
type Client struct {
	// QueryFunc overrides Query behavior. If nil, returns a
	// deterministic canned answer derived from the query text.
	QueryFunc func(ctx context.Context, req *backend.QueryRequest) (*backend.QueryResult, error)

	// IngestFunc overrides IngestArticle behavior. If nil, reports one
	// chunk per article.
	IngestFunc func(ctx context.Context, req *backend.IngestRequest) (*backend.IngestResult, error)

	mu          sync.Mutex
	queryCalls  int
	ingestCalls int
}

var _ backend.Client = (*Client)(nil)

// NewClient creates a mock client with default deterministic behavior.
func NewClient() *Client {
	return &Client{}
}

// Query invokes QueryFunc or the deterministic default.
func (c *Client) Query(ctx context.Context, req *backend.QueryRequest) (*backend.QueryResult, error) {
	c.mu.Lock()
	c.queryCalls++
	c.mu.Unlock()

	if c.QueryFunc != nil {
		return c.QueryFunc(ctx, req)
	}

	return &backend.QueryResult{
		Response:   fmt.Sprintf("answer to %q", req.Query),
		TokensUsed: len(req.Query),
	}, nil
}

// IngestArticle invokes IngestFunc or the deterministic default.
func (c *Client) IngestArticle(ctx context.Context, req *backend.IngestRequest) (*backend.IngestResult, error) {
	c.mu.Lock()
	c.ingestCalls++
	c.mu.Unlock()

	if c.IngestFunc != nil {
		return c.IngestFunc(ctx, req)
	}

	return &backend.IngestResult{Chunks: 1}, nil
}

// Close is a no-op for the mock client.
func (c *Client) Close() error {
	return nil
}

// QueryCalls returns the number of Query invocations.
func (c *Client) QueryCalls() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.queryCalls
}

// IngestCalls returns the number of IngestArticle invocations.
func (c *Client) IngestCalls() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.ingestCalls
}

// Reset clears call counts and injected behavior.
func (c *Client) Reset() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.queryCalls = 0
	c.ingestCalls = 0
	c.QueryFunc = nil
	c.IngestFunc = nil
}
