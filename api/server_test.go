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
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/poiesic/relay/backend"
	"github.com/poiesic/relay/backend/mock"
	"github.com/poiesic/relay/core"
	"github.com/poiesic/relay/ingestion"
	badgerstore "github.com/poiesic/relay/storage/badger"
)

// stubChat is a canned ChatHandler.
type stubChat struct {
	resp *core.ChatResponse
	err  error
}

func (s stubChat) Handle(_ context.Context, _ *core.ChatRequest) (*core.ChatResponse, error) {
	return s.resp, s.err
}

// stubJobs is a canned JobPool.
type stubJobs struct {
	err error
}

func (s stubJobs) Submit(_ ingestion.Job) (*ingestion.Handle, error) {
	return nil, s.err
}

func newTestPool(t *testing.T) *ingestion.Pool {
	t.Helper()

	conversations, articles, be, err := badgerstore.NewMemoryStores()
	require.NoError(t, err)
	t.Cleanup(func() {
		conversations.Close()
		articles.Close()
		be.Close()
	})

	pool, err := ingestion.NewPool(mock.NewClient(), articles)
	require.NoError(t, err)
	t.Cleanup(func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		pool.Shutdown(ctx)
	})

	return pool
}

func newTestServer(t *testing.T, chat ChatHandler, jobs JobPool, opts ...ServerOption) *httptest.Server {
	t.Helper()

	s, err := NewServer(chat, jobs, opts...)
	require.NoError(t, err)

	ts := httptest.NewServer(s.Handler())
	t.Cleanup(ts.Close)
	return ts
}

func postJSON(t *testing.T, url string, body any, headers map[string]string) *http.Response {
	t.Helper()

	data, err := json.Marshal(body)
	require.NoError(t, err)

	req, err := http.NewRequest(http.MethodPost, url, bytes.NewReader(data))
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")
	for k, v := range headers {
		req.Header.Set(k, v)
	}

	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	t.Cleanup(func() { resp.Body.Close() })
	return resp
}

func decodeBody[T any](t *testing.T, resp *http.Response) T {
	t.Helper()
	var out T
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
	return out
}

func TestChat_Success(t *testing.T) {
	chat := stubChat{resp: &core.ChatResponse{
		Response:       "AI is artificial intelligence.",
		Sources:        []core.SourceRef{{Title: "Doc", URL: "https://example.com/doc"}},
		TokensUsed:     12,
		Cached:         true,
		ProcessingTime: 3 * time.Millisecond,
	}}
	ts := newTestServer(t, chat, newTestPool(t))

	resp := postJSON(t, ts.URL+"/v1/chat", chatRequest{Query: "what is ai"}, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	body := decodeBody[chatResponse](t, resp)
	assert.Equal(t, "AI is artificial intelligence.", body.Response)
	assert.True(t, body.Cached)
	assert.Equal(t, 12, body.TokensUsed)
	assert.Len(t, body.Sources, 1)
	assert.Equal(t, int64(3), body.ProcessingTimeMS)
}

func TestChat_EmptyQuery(t *testing.T) {
	chat := stubChat{err: fmt.Errorf("%w: %w", core.ErrInvalidChatRequest, core.ErrEmptyQuery)}
	ts := newTestServer(t, chat, newTestPool(t))

	resp := postJSON(t, ts.URL+"/v1/chat", chatRequest{Query: ""}, nil)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestChat_BackendDown(t *testing.T) {
	chat := stubChat{err: &backend.Error{Kind: backend.KindUnavailable, Err: errors.New("down")}}
	ts := newTestServer(t, chat, newTestPool(t))

	resp := postJSON(t, ts.URL+"/v1/chat", chatRequest{Query: "q"}, nil)
	assert.Equal(t, http.StatusServiceUnavailable, resp.StatusCode)
}

func TestChat_MalformedBody(t *testing.T) {
	ts := newTestServer(t, stubChat{resp: &core.ChatResponse{}}, newTestPool(t))

	req, err := http.NewRequest(http.MethodPost, ts.URL+"/v1/chat", bytes.NewReader([]byte("{not json")))
	require.NoError(t, err)
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestAuth_StaticToken(t *testing.T) {
	chat := stubChat{resp: &core.ChatResponse{Response: "ok"}}
	ts := newTestServer(t, chat, newTestPool(t), WithAuthenticator(NewStaticToken("s3cret")))

	resp := postJSON(t, ts.URL+"/v1/chat", chatRequest{Query: "q"}, nil)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode, "missing token")

	resp = postJSON(t, ts.URL+"/v1/chat", chatRequest{Query: "q"},
		map[string]string{"Authorization": "Bearer wrong"})
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode, "wrong token")

	resp = postJSON(t, ts.URL+"/v1/chat", chatRequest{Query: "q"},
		map[string]string{"Authorization": "Bearer s3cret"})
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestHealth_NoAuthRequired(t *testing.T) {
	ts := newTestServer(t, stubChat{resp: &core.ChatResponse{}}, newTestPool(t),
		WithAuthenticator(NewStaticToken("s3cret")))

	resp, err := http.Get(ts.URL + "/healthz")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestArticles_SubmitAndPoll(t *testing.T) {
	ts := newTestServer(t, stubChat{resp: &core.ChatResponse{}}, newTestPool(t))

	resp := postJSON(t, ts.URL+"/v1/articles",
		submitArticleRequest{URL: "https://example.com/post", Title: "A Post"}, nil)
	require.Equal(t, http.StatusAccepted, resp.StatusCode)

	accepted := decodeBody[jobStatusResponse](t, resp)
	require.NotEmpty(t, accepted.JobID)

	require.Eventually(t, func() bool {
		r, err := http.Get(ts.URL + "/v1/jobs/" + accepted.JobID)
		if err != nil {
			return false
		}
		defer r.Body.Close()
		var status jobStatusResponse
		if json.NewDecoder(r.Body).Decode(&status) != nil {
			return false
		}
		return status.Status == "completed" && status.Chunks == 1
	}, 5*time.Second, 20*time.Millisecond)
}

func TestArticles_InvalidURL(t *testing.T) {
	ts := newTestServer(t, stubChat{resp: &core.ChatResponse{}}, newTestPool(t))

	resp := postJSON(t, ts.URL+"/v1/articles", submitArticleRequest{URL: "not-a-url"}, nil)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestArticles_PoolSaturated(t *testing.T) {
	ts := newTestServer(t, stubChat{resp: &core.ChatResponse{}},
		stubJobs{err: ingestion.ErrPoolSaturated})

	resp := postJSON(t, ts.URL+"/v1/articles",
		submitArticleRequest{URL: "https://example.com/post"}, nil)
	assert.Equal(t, http.StatusTooManyRequests, resp.StatusCode)
}

func TestJobs_UnknownJob(t *testing.T) {
	ts := newTestServer(t, stubChat{resp: &core.ChatResponse{}}, newTestPool(t))

	resp, err := http.Get(ts.URL + "/v1/jobs/nope")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}
