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

import (
	"context"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/panjf2000/ants/v2"

	"github.com/poiesic/relay/backend"
	"github.com/poiesic/relay/core"
	"github.com/poiesic/relay/storage"
)

const (
	// DefaultConcurrency is the number of jobs processed at once.
	DefaultConcurrency = 5
	// DefaultQueueDepth is the number of accepted-but-not-started jobs
	// held before Submit rejects with ErrPoolSaturated.
	DefaultQueueDepth = 64
)

// Status is the lifecycle state of an ingestion job.
type Status int32

const (
	// StatusQueued means the job is accepted and waiting for a worker.
	StatusQueued Status = iota
	// StatusRunning means a worker is processing the job.
	StatusRunning
	// StatusCompleted means the job finished successfully.
	StatusCompleted
	// StatusFailed means the job finished with an error.
	StatusFailed
)

func (s Status) String() string {
	switch s {
	case StatusQueued:
		return "queued"
	case StatusRunning:
		return "running"
	case StatusCompleted:
		return "completed"
	case StatusFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// Job describes an article to ingest. ID is assigned on submission when
// empty.
type Job struct {
	ID       string
	URL      string
	Title    string
	Metadata map[string]string
}

// Handle tracks a submitted job. Result is valid once Done is closed.
type Handle struct {
	job    Job
	status atomic.Int32
	done   chan struct{}

	mu     sync.Mutex
	chunks int
	err    error
}

func newHandle(job Job) *Handle {
	return &Handle{
		job:  job,
		done: make(chan struct{}),
	}
}

// Job returns the submitted job, including any assigned ID.
func (h *Handle) Job() Job {
	return h.job
}

// Status returns the job's current lifecycle state.
func (h *Handle) Status() Status {
	return Status(h.status.Load())
}

// Done is closed when the job reaches a terminal state.
func (h *Handle) Done() <-chan struct{} {
	return h.done
}

// Result returns the chunk count and error of a finished job. Before
// Done is closed it returns zero values.
func (h *Handle) Result() (int, error) {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.chunks, h.err
}

// Wait blocks until the job finishes or the context expires.
func (h *Handle) Wait(ctx context.Context) (int, error) {
	select {
	case <-h.done:
		return h.Result()
	case <-ctx.Done():
		return 0, ctx.Err()
	}
}

func (h *Handle) complete(chunks int) {
	h.mu.Lock()
	h.chunks = chunks
	h.mu.Unlock()
	h.status.Store(int32(StatusCompleted))
	close(h.done)
}

func (h *Handle) fail(err error) {
	h.mu.Lock()
	h.err = err
	h.mu.Unlock()
	h.status.Store(int32(StatusFailed))
	close(h.done)
}

// Pool runs ingestion jobs with bounded concurrency and a bounded FIFO
// queue. Safe for concurrent use.
type Pool struct {
	client   backend.Client
	articles storage.ArticleStore
	workers  *ants.Pool
	queue    chan *Handle
	logger   *slog.Logger

	concurrency int
	queueDepth  int

	mu             sync.RWMutex
	closed         bool
	dispatcherDone chan struct{}
	jobs           sync.WaitGroup
}

// PoolOption configures a Pool.
type PoolOption func(*Pool)

// WithConcurrency sets how many jobs run at once. Values < 1 keep the
// default.
func WithConcurrency(n int) PoolOption {
	return func(p *Pool) {
		if n >= 1 {
			p.concurrency = n
		}
	}
}

// WithQueueDepth sets how many accepted jobs may wait for a worker.
// Values < 1 keep the default.
func WithQueueDepth(n int) PoolOption {
	return func(p *Pool) {
		if n >= 1 {
			p.queueDepth = n
		}
	}
}

// WithLogger sets the pool's logger.
func WithLogger(logger *slog.Logger) PoolOption {
	return func(p *Pool) {
		p.logger = logger
	}
}

// NewPool creates an ingestion pool over the backend client and article
// store.
func NewPool(client backend.Client, articles storage.ArticleStore, opts ...PoolOption) (*Pool, error) {
	if client == nil {
		return nil, ErrNilBackend
	}
	if articles == nil {
		return nil, ErrNilArticles
	}

	p := &Pool{
		client:         client,
		articles:       articles,
		logger:         slog.Default().With("component", "ingestion"),
		concurrency:    DefaultConcurrency,
		queueDepth:     DefaultQueueDepth,
		dispatcherDone: make(chan struct{}),
	}

	for _, opt := range opts {
		opt(p)
	}

	workers, err := ants.NewPool(p.concurrency)
	if err != nil {
		return nil, err
	}
	p.workers = workers
	p.queue = make(chan *Handle, p.queueDepth)

	go p.dispatch()

	return p, nil
}

// Submit accepts a job for processing. It never blocks: a full queue
// fails immediately with ErrPoolSaturated so callers can apply
// backpressure. The returned handle tracks the job's progress.
func (p *Pool) Submit(job Job) (*Handle, error) {
	if err := core.ValidateArticle(&core.Article{URL: job.URL}); err != nil {
		return nil, err
	}
	if job.ID == "" {
		job.ID = uuid.NewString()
	}

	p.mu.RLock()
	defer p.mu.RUnlock()
	if p.closed {
		return nil, ErrPoolClosed
	}

	h := newHandle(job)
	p.jobs.Add(1)
	select {
	case p.queue <- h:
		return h, nil
	default:
		p.jobs.Done()
		return nil, ErrPoolSaturated
	}
}

// dispatch feeds queued jobs to the worker pool in FIFO order. The
// blocking worker submit is what bounds concurrency: the next queued
// job is not handed over until a worker frees up.
func (p *Pool) dispatch() {
	defer close(p.dispatcherDone)

	for h := range p.queue {
		if err := p.workers.Submit(func() { p.run(h) }); err != nil {
			p.logger.Error("worker submit failed", "job_id", h.job.ID, "error", err)
			h.fail(err)
			p.jobs.Done()
		}
	}
}

// run processes one job. The backend client owns retries; a failure
// here is already retries-exhausted and marks the job failed. Metadata
// persistence is best-effort.
func (p *Pool) run(h *Handle) {
	defer p.jobs.Done()

	h.status.Store(int32(StatusRunning))
	ctx := context.Background()

	result, err := p.client.IngestArticle(ctx, &backend.IngestRequest{
		URL:      h.job.URL,
		Title:    h.job.Title,
		Metadata: h.job.Metadata,
	})
	if err != nil {
		p.logger.Error("article ingestion failed", "job_id", h.job.ID, "url", h.job.URL, "error", err)
		h.fail(err)
		return
	}

	article := &core.Article{
		URL:        h.job.URL,
		Title:      h.job.Title,
		Metadata:   h.job.Metadata,
		Chunks:     result.Chunks,
		IngestedAt: time.Now().UTC(),
	}
	if err := p.articles.SaveArticleMetadata(ctx, article); err != nil {
		p.logger.Error("failed to persist article metadata", "job_id", h.job.ID, "url", h.job.URL, "error", err)
	}

	p.logger.Info("article ingested", "job_id", h.job.ID, "url", h.job.URL, "chunks", result.Chunks)
	h.complete(result.Chunks)
}

// Shutdown stops accepting jobs and waits for accepted jobs to finish.
// The context bounds the wait; on expiry remaining jobs are abandoned.
func (p *Pool) Shutdown(ctx context.Context) error {
	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		return nil
	}
	p.closed = true
	close(p.queue)
	p.mu.Unlock()

	drained := make(chan struct{})
	go func() {
		<-p.dispatcherDone
		p.jobs.Wait()
		close(drained)
	}()

	select {
	case <-drained:
		p.workers.Release()
		return nil
	case <-ctx.Done():
		p.workers.Release()
		return ctx.Err()
	}
}
