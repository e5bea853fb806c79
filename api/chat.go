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

	"github.com/poiesic/relay/backend"
	"github.com/poiesic/relay/core"
)

type chatRequest struct {
	Query          string `json:"query"`
	ConversationID string `json:"conversation_id,omitempty"`
}

type chatResponse struct {
	Response         string           `json:"response"`
	Sources          []core.SourceRef `json:"sources,omitempty"`
	TokensUsed       int              `json:"tokens_used"`
	Cached           bool             `json:"cached"`
	ProcessingTimeMS int64            `json:"processing_time_ms"`
}

func (s *Server) handleChat(w http.ResponseWriter, r *http.Request) {
	var req chatRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "malformed request body")
		return
	}

	resp, err := s.chat.Handle(r.Context(), &core.ChatRequest{
		Query:          req.Query,
		ConversationID: req.ConversationID,
	})
	if err != nil {
		s.writeChatError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, chatResponse{
		Response:         resp.Response,
		Sources:          resp.Sources,
		TokensUsed:       resp.TokensUsed,
		Cached:           resp.Cached,
		ProcessingTimeMS: resp.ProcessingTime.Milliseconds(),
	})
}

// writeChatError maps pipeline failures to HTTP statuses by error
// identity.
func (s *Server) writeChatError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, core.ErrInvalidChatRequest):
		writeError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, backend.ErrInvalidRequest):
		writeError(w, http.StatusBadRequest, "backend rejected the request")
	case errors.Is(err, backend.ErrRateLimited):
		writeError(w, http.StatusTooManyRequests, "backend rate limited")
	case errors.Is(err, backend.ErrTimeout), errors.Is(err, backend.ErrUnavailable):
		writeError(w, http.StatusServiceUnavailable, "backend unavailable")
	default:
		s.logger.Error("chat request failed", "error", err)
		writeError(w, http.StatusInternalServerError, "internal error")
	}
}
