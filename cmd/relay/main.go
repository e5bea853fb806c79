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


package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/urfave/cli/v2"

	"github.com/poiesic/relay"
	"github.com/poiesic/relay/api"
)

func main() {
	app := &cli.App{
		Name:  "relay",
		Usage: "RAG API gateway with caching, conversation history, and article ingestion",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "log-level",
				Aliases: []string{"l"},
				Usage:   "Set logging level (debug, info, warn, error)",
				Value:   "info",
			},
		},
		Before: setupLogger,
		Commands: []*cli.Command{
			{
				Name:   "serve",
				Usage:  "Run the gateway HTTP server",
				Action: serveCommand,
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:  "listen",
						Usage: "HTTP listen address",
						Value: ":8080",
					},
					&cli.StringFlag{
						Name:     "db",
						Aliases:  []string{"d"},
						Usage:    "Path to BadgerDB database directory",
						Required: true,
					},
					&cli.StringFlag{
						Name:  "redis-addr",
						Usage: "Redis address for the networked cache tier (empty disables it)",
					},
					&cli.DurationFlag{
						Name:  "cache-ttl",
						Usage: "Lifetime of cached answers",
						Value: 24 * time.Hour,
					},
					&cli.StringFlag{
						Name:  "backend-url",
						Usage: "Base URL of the retrieval backend (empty answers directly from the LLM)",
					},
					&cli.StringFlag{
						Name:  "llm-host",
						Usage: "OpenAI-compatible API host for direct answers",
						Value: "http://localhost:11434/v1",
					},
					&cli.StringFlag{
						Name:  "llm-model",
						Usage: "Chat model for direct answers",
						Value: "qwen2.5:3b",
					},
					&cli.StringFlag{
						Name:    "llm-token",
						Usage:   "API token for the LLM host",
						EnvVars: []string{"RELAY_LLM_TOKEN"},
					},
					&cli.IntFlag{
						Name:  "pool-size",
						Usage: "Number of concurrent ingestion jobs",
						Value: 5,
					},
					&cli.IntFlag{
						Name:  "queue-depth",
						Usage: "Number of waiting ingestion jobs before submissions are rejected",
						Value: 64,
					},
					&cli.StringFlag{
						Name:    "auth-token",
						Usage:   "Bearer token required on API requests (empty disables auth)",
						EnvVars: []string{"RELAY_AUTH_TOKEN"},
					},
				},
			},
		},
	}

	if err := app.Run(os.Args); err != nil {
		log.Fatal(err)
	}
}

func serveCommand(c *cli.Context) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	gateway, err := relay.New(ctx, relay.Config{
		DBPath:     c.String("db"),
		RedisAddr:  c.String("redis-addr"),
		CacheTTL:   c.Duration("cache-ttl"),
		BackendURL: c.String("backend-url"),
		LLMHost:    c.String("llm-host"),
		LLMModel:   c.String("llm-model"),
		LLMToken:   c.String("llm-token"),
		PoolSize:   c.Int("pool-size"),
		QueueDepth: c.Int("queue-depth"),
	})
	if err != nil {
		return fmt.Errorf("failed to assemble gateway: %w", err)
	}
	defer gateway.Close()

	var opts []api.ServerOption
	if token := c.String("auth-token"); token != "" {
		opts = append(opts, api.WithAuthenticator(api.NewStaticToken(token)))
	}

	server, err := api.NewServer(gateway.Pipeline(), gateway.Pool(), opts...)
	if err != nil {
		return fmt.Errorf("failed to build API server: %w", err)
	}

	httpServer := &http.Server{
		Addr:              c.String("listen"),
		Handler:           server.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		slog.Info("gateway listening", "addr", httpServer.Addr)
		errCh <- httpServer.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	slog.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil && !errors.Is(err, context.DeadlineExceeded) {
		return fmt.Errorf("server shutdown: %w", err)
	}

	return nil
}

func setupLogger(c *cli.Context) error {
	levelStr := strings.ToLower(c.String("log-level"))

	var level slog.Level
	switch levelStr {
	case "debug":
		level = slog.LevelDebug
	case "info":
		level = slog.LevelInfo
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		return fmt.Errorf("invalid log level %q: must be one of debug, info, warn, error", levelStr)
	}

	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: level,
	}))
	slog.SetDefault(logger)

	return nil
}
