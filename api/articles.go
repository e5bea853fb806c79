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
	"encoding/json"
	"errors"
	"net/http"

	"github.com/poiesic/relay/core"
	"github.com/poiesic/relay/ingestion"
)

type submitArticleRequest struct {
	URL      string            `json:"url"`
	Title    string            `json:"title,omitempty"`
	Metadata map[string]string `json:"metadata,omitempty"`
}

type jobStatusResponse struct {
	JobID  string `json:"job_id"`
	Status string `json:"status"`
	Chunks int    `json:"chunks,omitempty"`
	Error  string `json:"error,omitempty"`
}

func (s *Server) handleSubmitArticle(w http.ResponseWriter, r *http.Request) {
	var req submitArticleRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "malformed request body")
		return
	}

	h, err := s.jobs.Submit(ingestion.Job{
		URL:      req.URL,
		Title:    req.Title,
		Metadata: req.Metadata,
	})
	if err != nil {
		switch {
		case errors.Is(err, core.ErrInvalidArticle):
			writeError(w, http.StatusBadRequest, err.Error())
		case errors.Is(err, ingestion.ErrPoolSaturated):
			writeError(w, http.StatusTooManyRequests, "ingestion queue full, retry later")
		case errors.Is(err, ingestion.ErrPoolClosed):
			writeError(w, http.StatusServiceUnavailable, "ingestion unavailable")
		default:
			s.logger.Error("article submission failed", "error", err)
			writeError(w, http.StatusInternalServerError, "internal error")
		}
		return
	}

	s.rememberHandle(h)

	writeJSON(w, http.StatusAccepted, jobStatusResponse{
		JobID:  h.Job().ID,
		Status: h.Status().String(),
	})
}

func (s *Server) handleJobStatus(w http.ResponseWriter, r *http.Request) {
	h := s.lookupHandle(r.PathValue("id"))
	if h == nil {
		writeError(w, http.StatusNotFound, "unknown job")
		return
	}

	resp := jobStatusResponse{
		JobID:  h.Job().ID,
		Status: h.Status().String(),
	}

	select {
	case <-h.Done():
		chunks, err := h.Result()
		resp.Chunks = chunks
		if err != nil {
			resp.Error = err.Error()
		}
	default:
	}

	writeJSON(w, http.StatusOK, resp)
}
