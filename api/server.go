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


package api

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"sync"

	"github.com/poiesic/relay/core"
	"github.com/poiesic/relay/ingestion"
)

var (
	// ErrNilChat indicates a server was constructed without a chat
	// handler.
	ErrNilChat = errors.New("api server requires a chat handler")
	// ErrNilJobs indicates a server was constructed without a job pool.
	ErrNilJobs = errors.New("api server requires a job pool")
)

// ChatHandler answers chat requests. Satisfied by pipeline.Pipeline.
type ChatHandler interface {
	Handle(ctx context.Context, req *core.ChatRequest) (*core.ChatResponse, error)
}

// JobPool accepts article ingestion jobs. Satisfied by ingestion.Pool.
type JobPool interface {
	Submit(job ingestion.Job) (*ingestion.Handle, error)
}

// Server routes HTTP traffic to the pipeline and the ingestion pool.
type Server struct {
	chat   ChatHandler
	jobs   JobPool
	auth   Authenticator
	logger *slog.Logger

	mu      sync.RWMutex
	handles map[string]*ingestion.Handle
}

// ServerOption configures a Server.
type ServerOption func(*Server)

// WithAuthenticator sets the authenticator. Defaults to AllowAll.
func WithAuthenticator(auth Authenticator) ServerOption {
	return func(s *Server) {
		if auth != nil {
			s.auth = auth
		}
	}
}

// WithLogger sets the server's logger.
func WithLogger(logger *slog.Logger) ServerOption {
	return func(s *Server) {
		s.logger = logger
	}
}

// NewServer creates an API server over the chat handler and job pool.
func NewServer(chat ChatHandler, jobs JobPool, opts ...ServerOption) (*Server, error) {
	if chat == nil {
		return nil, ErrNilChat
	}
	if jobs == nil {
		return nil, ErrNilJobs
	}

	s := &Server{
		chat:    chat,
		jobs:    jobs,
		auth:    AllowAll{},
		logger:  slog.Default().With("component", "api"),
		handles: make(map[string]*ingestion.Handle),
	}

	for _, opt := range opts {
		opt(s)
	}

	return s, nil
}

// Handler returns the server's routed and middleware-wrapped handler.
// The health check bypasses authentication.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.Handle("POST /v1/chat", s.withAuth(http.HandlerFunc(s.handleChat)))
	mux.Handle("POST /v1/articles", s.withAuth(http.HandlerFunc(s.handleSubmitArticle)))
	mux.Handle("GET /v1/jobs/{id}", s.withAuth(http.HandlerFunc(s.handleJobStatus)))
	mux.HandleFunc("GET /healthz", s.handleHealth)

	return s.withLogging(s.withRecovery(mux))
}

func (s *Server) rememberHandle(h *ingestion.Handle) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.handles[h.Job().ID] = h
}

func (s *Server) lookupHandle(id string) *ingestion.Handle {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.handles[id]
}
