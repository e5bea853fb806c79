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


// Package openai implements backend.Client against an OpenAI-compatible
// chat API, for deployments that run the gateway without a retrieval
// service. Answers come straight from the model, so results carry no
// sources, and article ingestion is rejected: there is no index to
// ingest into.
package openai

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/tmc/langchaingo/llms"
	"github.com/tmc/langchaingo/llms/openai"

	"github.com/poiesic/relay/backend"
	"github.com/poiesic/relay/core"
)

// Config holds configuration for the direct-LLM client.
type Config struct {
	// Host is the base URL for the OpenAI-compatible API.
	// Example: "http://localhost:11434/v1" for a local server.
	Host string

	// Model is the chat model identifier.
	// Example: "qwen2.5:3b", "gpt-4o-mini"
	Model string

	// Token is the API token. Use "none" for local services that don't
	// require authentication.
	Token string

	// Temperature for generation. Default: 0.2
	Temperature float64
}

// Validate checks the configuration and applies defaults.
func (c *Config) Validate() error {
	if c == nil {
		return errors.New("config is nil")
	}
	if c.Host == "" {
		return errors.New("host is required")
	}
	if c.Model == "" {
		return errors.New("model is required")
	}
	if c.Token == "" {
		c.Token = "none"
	}
	if c.Temperature <= 0 {
		c.Temperature = 0.2
	}
	return nil
}

// Client answers queries via an OpenAI-compatible chat API.
type Client struct {
	model       llms.Model
	temperature float64
	logger      *slog.Logger
}

var _ backend.Client = (*Client)(nil)

// NewClient creates a direct-LLM backend client.
//
// Returns backend.Client interface (not *Client) to enforce abstraction
// and prevent coupling to the OpenAI-specific implementation.
func NewClient(config *Config) (backend.Client, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}

	model, err := openai.New(
		openai.WithBaseURL(config.Host),
		openai.WithToken(config.Token),
		openai.WithModel(config.Model),
	)
	if err != nil {
		return nil, err
	}

	return &Client{
		model:       model,
		temperature: config.Temperature,
		logger:      slog.Default().With("component", "openai-backend"),
	}, nil
}

// Query sends the conversation history plus the query to the model.
func (c *Client) Query(ctx context.Context, req *backend.QueryRequest) (*backend.QueryResult, error) {
	start := time.Now()

	content := make([]llms.MessageContent, 0, len(req.History)+1)
	for _, msg := range req.History {
		content = append(content, llms.MessageContent{
			Role:  chatMessageType(msg.Role),
			Parts: []llms.ContentPart{llms.TextPart(msg.Content)},
		})
	}
	content = append(content, llms.MessageContent{
		Role:  llms.ChatMessageTypeHuman,
		Parts: []llms.ContentPart{llms.TextPart(req.Query)},
	})

	response, err := c.model.GenerateContent(ctx, content, llms.WithTemperature(c.temperature))
	if err != nil {
		c.logger.Error("failed to generate content", "err", err)
		return nil, &backend.Error{Kind: backend.KindUnavailable, Err: err}
	}

	if len(response.Choices) < 1 {
		return nil, &backend.Error{Kind: backend.KindUnavailable, Err: errors.New("no choices returned from model")}
	}
	choice := response.Choices[0]

	return &backend.QueryResult{
		Response:   choice.Content,
		TokensUsed: totalTokens(choice.GenerationInfo),
		Elapsed:    time.Since(start),
	}, nil
}

// IngestArticle always fails: direct-LLM mode has no retrieval index.
func (c *Client) IngestArticle(_ context.Context, _ *backend.IngestRequest) (*backend.IngestResult, error) {
	return nil, &backend.Error{
		Kind: backend.KindInvalidRequest,
		Err:  errors.New("article ingestion requires a retrieval backend"),
	}
}

// Close releases resources held by the client.
// Currently a no-op as the underlying client doesn't require cleanup.
func (c *Client) Close() error {
	return nil
}

// chatMessageType maps a domain role onto the langchaingo message type.
func chatMessageType(role core.Role) llms.ChatMessageType {
	switch role {
	case core.RoleAssistant:
		return llms.ChatMessageTypeAI
	case core.RoleSystem:
		return llms.ChatMessageTypeSystem
	default:
		return llms.ChatMessageTypeHuman
	}
}

// totalTokens pulls the token count out of the generation info when the
// provider reports one.
func totalTokens(info map[string]any) int {
	for _, key := range []string{"TotalTokens", "total_tokens"} {
		if v, ok := info[key]; ok {
			if n, ok := v.(int); ok {
				return n
			}
		}
	}
	return 0
}
