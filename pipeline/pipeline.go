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


package pipeline

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"time"

	"github.com/poiesic/relay/backend"
	"github.com/poiesic/relay/cache"
	"github.com/poiesic/relay/core"
	"github.com/poiesic/relay/storage"
)

var (
	// ErrNilCache indicates a pipeline was constructed without a cache.
	ErrNilCache = errors.New("pipeline requires a cache")
	// ErrNilBackend indicates a pipeline was constructed without a
	// backend client.
	ErrNilBackend = errors.New("pipeline requires a backend client")
	// ErrNilConversations indicates a pipeline was constructed without a
	// conversation store.
	ErrNilConversations = errors.New("pipeline requires a conversation store")
)

// cachedAnswer is the payload stored in the cache for a normalized
// query. Sources are kept so a cache hit carries the same grounding as
// the original answer.
type cachedAnswer struct {
	Response   string           `json:"response"`
	Sources    []core.SourceRef `json:"sources,omitempty"`
	TokensUsed int              `json:"tokens_used"`
}

// Pipeline processes chat requests. Safe for concurrent use.
type Pipeline struct {
	cache         cache.Cache
	client        backend.Client
	conversations storage.ConversationStore
	ttl           time.Duration
	logger        *slog.Logger
}

// Option configures a Pipeline.
type Option func(*Pipeline)

// WithTTL sets the lifetime of cached answers. Values <= 0 defer to
// the cache's default.
func WithTTL(ttl time.Duration) Option {
	return func(p *Pipeline) {
		p.ttl = ttl
	}
}

// WithLogger sets the pipeline's logger.
func WithLogger(logger *slog.Logger) Option {
	return func(p *Pipeline) {
		p.logger = logger
	}
}

// New creates a chat pipeline over the given cache, backend client, and
// conversation store.
func New(c cache.Cache, client backend.Client, conversations storage.ConversationStore, opts ...Option) (*Pipeline, error) {
	if c == nil {
		return nil, ErrNilCache
	}
	if client == nil {
		return nil, ErrNilBackend
	}
	if conversations == nil {
		return nil, ErrNilConversations
	}

	p := &Pipeline{
		cache:         c,
		client:        client,
		conversations: conversations,
		ttl:           cache.DefaultTTL,
		logger:        slog.Default().With("component", "pipeline"),
	}

	for _, opt := range opts {
		opt(p)
	}

	return p, nil
}

// Handle answers a chat request. Semantically equivalent queries map to
// the same cache key, so "What is AI?" and "what is ai" share one
// cached answer. Backend errors propagate; cache and store errors are
// logged and absorbed.
func (p *Pipeline) Handle(ctx context.Context, req *core.ChatRequest) (*core.ChatResponse, error) {
	start := time.Now()

	if err := core.ValidateChatRequest(req); err != nil {
		return nil, err
	}

	normalized := core.NormalizeQuery(req.Query)
	key := core.CacheKeyFor(normalized)

	if resp := p.lookup(ctx, key); resp != nil {
		resp.ProcessingTime = time.Since(start)
		return resp, nil
	}

	history := p.loadHistory(ctx, req.ConversationID)

	result, err := p.client.Query(ctx, &backend.QueryRequest{
		Query:          req.Query,
		ConversationID: req.ConversationID,
		History:        history,
	})
	if err != nil {
		return nil, err
	}

	// The answer exists from here on; persistence and cache population
	// must not be lost to a caller hanging up mid-write.
	detached := context.WithoutCancel(ctx)
	p.persist(detached, req, result)
	p.store(detached, key, result)

	return &core.ChatResponse{
		Response:       result.Response,
		Sources:        result.Sources,
		TokensUsed:     result.TokensUsed,
		Cached:         false,
		ProcessingTime: time.Since(start),
	}, nil
}

// lookup returns a cached response or nil on miss. Cache failures are
// treated as misses.
func (p *Pipeline) lookup(ctx context.Context, key string) *core.ChatResponse {
	data, err := p.cache.Get(ctx, key)
	if err != nil {
		p.logger.Warn("cache lookup failed, treating as miss", "key", key, "error", err)
		return nil
	}
	if data == nil {
		return nil
	}

	var answer cachedAnswer
	if err := json.Unmarshal(data, &answer); err != nil {
		p.logger.Warn("cached payload is corrupt, treating as miss", "key", key, "error", err)
		return nil
	}

	return &core.ChatResponse{
		Response:   answer.Response,
		Sources:    answer.Sources,
		TokensUsed: answer.TokensUsed,
		Cached:     true,
	}
}

// loadHistory fetches prior turns for context. A store failure yields
// an answer without history rather than no answer.
func (p *Pipeline) loadHistory(ctx context.Context, conversationID string) []core.Message {
	if conversationID == "" {
		return nil
	}

	history, err := p.conversations.LoadHistory(ctx, conversationID)
	if err != nil {
		p.logger.Warn("history load failed, answering without context",
			"conversation_id", conversationID, "error", err)
		return nil
	}

	return history
}

// persist appends the user query and the backend answer to the
// conversation. Failures are logged, not surfaced.
func (p *Pipeline) persist(ctx context.Context, req *core.ChatRequest, result *backend.QueryResult) {
	if req.ConversationID == "" {
		return
	}

	now := time.Now().UTC()
	turns := []core.Message{
		{Role: core.RoleUser, Content: req.Query, Timestamp: now},
		{Role: core.RoleAssistant, Content: result.Response, Timestamp: now.Add(time.Microsecond)},
	}

	for _, msg := range turns {
		if err := p.conversations.SaveMessage(ctx, req.ConversationID, msg); err != nil {
			p.logger.Error("failed to persist message",
				"conversation_id", req.ConversationID, "role", msg.Role, "error", err)
		}
	}
}

// store writes the answer to the cache for future equivalent queries.
func (p *Pipeline) store(ctx context.Context, key string, result *backend.QueryResult) {
	data, err := json.Marshal(cachedAnswer{
		Response:   result.Response,
		Sources:    result.Sources,
		TokensUsed: result.TokensUsed,
	})
	if err != nil {
		p.logger.Error("failed to encode answer for cache", "key", key, "error", err)
		return
	}

	if err := p.cache.Set(ctx, key, data, p.ttl); err != nil {
		p.logger.Warn("cache population failed", "key", key, "error", err)
	}
}
