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


// Package relay assembles the gateway: storage, cache, backend client,
// chat pipeline, and ingestion pool, wired together behind one Gateway
// value with a single Close.
package relay

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	goredis "github.com/redis/go-redis/v9"

	"github.com/poiesic/relay/backend"
	"github.com/poiesic/relay/backend/openai"
	"github.com/poiesic/relay/cache"
	"github.com/poiesic/relay/ingestion"
	"github.com/poiesic/relay/pipeline"
	"github.com/poiesic/relay/storage"
	badgerstore "github.com/poiesic/relay/storage/badger"
)

// Config holds gateway assembly options.
type Config struct {
	// DBPath is the BadgerDB directory. Empty with InMemory false is an
	// error.
	DBPath string

	// InMemory runs storage without disk persistence. For tests.
	InMemory bool

	// RedisAddr enables the networked cache tier when set. The
	// in-process cache remains as the failover target.
	RedisAddr string

	// CacheTTL is the lifetime of cached answers. <= 0 uses
	// cache.DefaultTTL.
	CacheTTL time.Duration

	// BackendURL selects the HTTP retrieval backend when set. When
	// empty the gateway answers directly from an OpenAI-compatible LLM
	// using the LLM fields below.
	BackendURL string

	// LLMHost, LLMModel, and LLMToken configure the direct-LLM client
	// used when BackendURL is empty.
	LLMHost  string
	LLMModel string
	LLMToken string

	// PoolSize bounds concurrent ingestion jobs. <= 0 uses
	// ingestion.DefaultConcurrency.
	PoolSize int

	// QueueDepth bounds waiting ingestion jobs. <= 0 uses
	// ingestion.DefaultQueueDepth.
	QueueDepth int

	// Logger is the root logger. Defaults to slog.Default.
	Logger *slog.Logger
}

// Gateway is the assembled request-processing core.
type Gateway struct {
	storage       *badgerstore.Backend
	conversations storage.ConversationStore
	articles      storage.ArticleStore
	cache         cache.Cache
	redis         *goredis.Client
	client        backend.Client
	pipeline      *pipeline.Pipeline
	pool          *ingestion.Pool
	logger        *slog.Logger
}

// New assembles a gateway from the config. On error any partially
// constructed pieces are closed.
func New(ctx context.Context, cfg Config) (*Gateway, error) {
	if cfg.DBPath == "" && !cfg.InMemory {
		return nil, errors.New("config requires a database path or in-memory mode")
	}

	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	g := &Gateway{logger: logger}

	store, err := badgerstore.OpenBackend(cfg.DBPath, cfg.InMemory)
	if err != nil {
		return nil, fmt.Errorf("failed to open storage: %w", err)
	}
	g.storage = store

	conversations, err := badgerstore.NewConversationStore(store)
	if err != nil {
		g.Close()
		return nil, fmt.Errorf("failed to open conversation store: %w", err)
	}
	g.conversations = conversations
	g.articles = badgerstore.NewArticleStore(store)

	g.cache, g.redis = buildCache(ctx, cfg, logger)

	client, err := buildBackend(cfg)
	if err != nil {
		g.Close()
		return nil, err
	}
	g.client = client

	pipe, err := pipeline.New(g.cache, g.client, g.conversations,
		pipeline.WithTTL(cfg.CacheTTL),
		pipeline.WithLogger(logger.With("component", "pipeline")))
	if err != nil {
		g.Close()
		return nil, err
	}
	g.pipeline = pipe

	pool, err := ingestion.NewPool(g.client, g.articles,
		ingestion.WithConcurrency(cfg.PoolSize),
		ingestion.WithQueueDepth(cfg.QueueDepth),
		ingestion.WithLogger(logger.With("component", "ingestion")))
	if err != nil {
		g.Close()
		return nil, err
	}
	g.pool = pool

	return g, nil
}

// buildCache constructs the cache tier. With a Redis address the
// networked cache is primary and the in-process cache is the failover
// target; otherwise the in-process cache serves alone. The returned
// Redis client, if any, is owned by the caller.
func buildCache(ctx context.Context, cfg Config, logger *slog.Logger) (cache.Cache, *goredis.Client) {
	memory := cache.NewMemory()
	if cfg.RedisAddr == "" {
		return memory, nil
	}

	client := goredis.NewClient(&goredis.Options{Addr: cfg.RedisAddr})
	remote, err := cache.NewRedis(client)
	if err != nil {
		logger.Warn("redis cache unavailable, using in-process cache", "error", err)
		client.Close()
		return memory, nil
	}

	failover := cache.NewFailover(ctx, remote, memory,
		cache.WithFailoverLogger(logger.With("component", "cache")))
	return failover, client
}

// buildBackend constructs the retrieval client: HTTP when a backend URL
// is configured, direct LLM otherwise.
func buildBackend(cfg Config) (backend.Client, error) {
	if cfg.BackendURL != "" {
		client, err := backend.NewHTTPClient(cfg.BackendURL)
		if err != nil {
			return nil, fmt.Errorf("failed to build backend client: %w", err)
		}
		return client, nil
	}

	client, err := openai.NewClient(&openai.Config{
		Host:  cfg.LLMHost,
		Model: cfg.LLMModel,
		Token: cfg.LLMToken,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to build LLM client: %w", err)
	}
	return client, nil
}

// Pipeline returns the chat pipeline.
func (g *Gateway) Pipeline() *pipeline.Pipeline {
	return g.pipeline
}

// Pool returns the ingestion pool.
func (g *Gateway) Pool() *ingestion.Pool {
	return g.pool
}

// Cache returns the cache tier, for stats inspection.
func (g *Gateway) Cache() cache.Cache {
	return g.cache
}

// Close shuts the gateway down: drain the ingestion pool, then release
// the backend client, cache, and storage. Errors are joined.
func (g *Gateway) Close() error {
	var errs []error

	if g.pool != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		if err := g.pool.Shutdown(ctx); err != nil {
			errs = append(errs, fmt.Errorf("pool shutdown: %w", err))
		}
		cancel()
	}
	if g.client != nil {
		if err := g.client.Close(); err != nil {
			errs = append(errs, fmt.Errorf("backend client close: %w", err))
		}
	}
	if g.cache != nil {
		if err := g.cache.Close(); err != nil {
			errs = append(errs, fmt.Errorf("cache close: %w", err))
		}
	}
	if g.redis != nil {
		if err := g.redis.Close(); err != nil {
			errs = append(errs, fmt.Errorf("redis close: %w", err))
		}
	}
	if g.conversations != nil {
		if err := g.conversations.Close(); err != nil {
			errs = append(errs, fmt.Errorf("conversation store close: %w", err))
		}
	}
	if g.articles != nil {
		if err := g.articles.Close(); err != nil {
			errs = append(errs, fmt.Errorf("article store close: %w", err))
		}
	}
	if g.storage != nil {
		if err := g.storage.Close(); err != nil {
			errs = append(errs, fmt.Errorf("storage close: %w", err))
		}
	}

	g.logger.Debug("gateway closed")

	return errors.Join(errs...)
}
