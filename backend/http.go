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
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/poiesic/relay/core"
)

const (
	defaultAttemptTimeout = 30 * time.Second

	queryPath  = "/v1/query"
	ingestPath = "/v1/ingest"
)

var _ Client = (*HTTPClient)(nil)

// HTTPClient talks to the retrieval backend over JSON/HTTP.
// It is stateless across calls except for the shared http.Client.
type HTTPClient struct {
	baseURL        string
	httpc          *http.Client
	retry          RetryConfig
	attemptTimeout time.Duration
	logger         *slog.Logger
}

// HTTPOption configures an HTTPClient.
type HTTPOption func(*HTTPClient)

// WithHTTPClient substitutes the underlying http.Client.
func WithHTTPClient(httpc *http.Client) HTTPOption {
	return func(c *HTTPClient) {
		if httpc != nil {
			c.httpc = httpc
		}
	}
}

// WithRetryConfig overrides the retry/backoff policy.
func WithRetryConfig(cfg RetryConfig) HTTPOption {
	return func(c *HTTPClient) {
		c.retry = cfg
	}
}

// WithAttemptTimeout bounds each individual attempt. Default is 30s.
func WithAttemptTimeout(d time.Duration) HTTPOption {
	return func(c *HTTPClient) {
		if d > 0 {
			c.attemptTimeout = d
		}
	}
}

// WithLogger sets a custom logger.
func WithLogger(logger *slog.Logger) HTTPOption {
	return func(c *HTTPClient) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// NewHTTPClient creates a client for the backend at baseURL.
func NewHTTPClient(baseURL string, opts ...HTTPOption) (*HTTPClient, error) {
	u, err := url.Parse(baseURL)
	if err != nil || !u.IsAbs() {
		return nil, fmt.Errorf("invalid backend base URL %q", baseURL)
	}

	c := &HTTPClient{
		baseURL:        strings.TrimRight(baseURL, "/"),
		httpc:          &http.Client{},
		retry:          DefaultRetryConfig(),
		attemptTimeout: defaultAttemptTimeout,
		logger:         slog.Default().With("component", "backend-http"),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// Wire types for the backend protocol.
type wireMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type wireQueryRequest struct {
	Query          string        `json:"query"`
	ConversationID string        `json:"conversation_id,omitempty"`
	History        []wireMessage `json:"history,omitempty"`
}

type wireQueryResponse struct {
	Response   string           `json:"response"`
	Sources    []core.SourceRef `json:"sources"`
	TokensUsed int              `json:"tokens_used"`
}

type wireIngestRequest struct {
	URL      string            `json:"url"`
	Title    string            `json:"title,omitempty"`
	Metadata map[string]string `json:"metadata,omitempty"`
}

type wireIngestResponse struct {
	Chunks int `json:"chunks"`
}

// Query answers a chat request against the retrieval index.
func (c *HTTPClient) Query(ctx context.Context, req *QueryRequest) (*QueryResult, error) {
	start := time.Now()

	payload := wireQueryRequest{
		Query:          req.Query,
		ConversationID: req.ConversationID,
		History:        make([]wireMessage, 0, len(req.History)),
	}
	for _, msg := range req.History {
		payload.History = append(payload.History, wireMessage{
			Role:    string(msg.Role),
			Content: msg.Content,
		})
	}

	var wire wireQueryResponse
	if err := c.do(ctx, queryPath, payload, &wire); err != nil {
		return nil, err
	}

	return &QueryResult{
		Response:   wire.Response,
		Sources:    wire.Sources,
		TokensUsed: wire.TokensUsed,
		Elapsed:    time.Since(start),
	}, nil
}

// IngestArticle processes an article into retrieval chunks.
func (c *HTTPClient) IngestArticle(ctx context.Context, req *IngestRequest) (*IngestResult, error) {
	start := time.Now()

	var wire wireIngestResponse
	payload := wireIngestRequest{URL: req.URL, Title: req.Title, Metadata: req.Metadata}
	if err := c.do(ctx, ingestPath, payload, &wire); err != nil {
		return nil, err
	}

	return &IngestResult{
		Chunks:  wire.Chunks,
		Elapsed: time.Since(start),
	}, nil
}

// Close releases idle transport connections.
func (c *HTTPClient) Close() error {
	c.httpc.CloseIdleConnections()
	return nil
}

// do posts payload to path with the retry policy applied. The overall
// call is bounded by a ceiling derived from summed attempt timeouts
// plus worst-case backoff; hitting it surfaces as ErrTimeout.
func (c *HTTPClient) do(ctx context.Context, path string, payload, out any) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return &Error{Kind: KindInvalidRequest, Err: err}
	}

	ceiling := time.Duration(c.retry.MaxAttempts)*c.attemptTimeout + c.retry.backoffCeiling()
	ctx, cancel := context.WithTimeout(ctx, ceiling)
	defer cancel()

	err = retryWithBackoff(ctx, c.logger, c.retry, func() error {
		return c.attempt(ctx, path, body, out)
	})
	if err == nil {
		return nil
	}

	// The overall ceiling expiring mid-retry shows up as the outer
	// context's deadline error.
	if ctx.Err() != nil && errors.Is(ctx.Err(), context.DeadlineExceeded) {
		return &Error{Kind: KindTimeout, Err: err}
	}

	return err
}

// attempt performs a single HTTP exchange under its own timeout.
func (c *HTTPClient) attempt(ctx context.Context, path string, body []byte, out any) error {
	ctx, cancel := context.WithTimeout(ctx, c.attemptTimeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(body))
	if err != nil {
		return &Error{Kind: KindInvalidRequest, Err: err}
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpc.Do(req)
	if err != nil {
		return classifyTransport(err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		// Keep a short excerpt of the body for diagnostics.
		excerpt, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return &Error{
			Kind:   kindForStatus(resp.StatusCode),
			Status: resp.StatusCode,
			Err:    fmt.Errorf("%s: %s", http.StatusText(resp.StatusCode), strings.TrimSpace(string(excerpt))),
		}
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return &Error{Kind: KindUnavailable, Status: resp.StatusCode, Err: fmt.Errorf("malformed response: %w", err)}
	}
	return nil
}

// classifyTransport maps a transport failure to a structured kind.
// Deadline expiry and net timeouts are KindTimeout; everything else
// that reached the network is KindUnavailable. Caller cancellation is
// KindUnknown so it is never retried.
func classifyTransport(err error) *Error {
	if errors.Is(err, context.Canceled) {
		return &Error{Kind: KindUnknown, Err: err}
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return &Error{Kind: KindTimeout, Err: err}
	}
	var ne net.Error
	if errors.As(err, &ne) && ne.Timeout() {
		return &Error{Kind: KindTimeout, Err: err}
	}
	return &Error{Kind: KindUnavailable, Err: err}
}

// kindForStatus maps an HTTP status code to a structured kind.
func kindForStatus(status int) Kind {
	switch {
	case status == http.StatusTooManyRequests:
		return KindRateLimited
	case status >= 500:
		return KindUnavailable
	case status >= 400:
		return KindInvalidRequest
	default:
		return KindUnknown
	}
}
