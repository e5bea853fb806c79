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


package core

import "time"

// Role identifies the author of a conversation message.
type Role string

const (
	// RoleUser marks a message written by the human caller.
	RoleUser Role = "user"
	// RoleAssistant marks a message produced by the backend.
	RoleAssistant Role = "assistant"
	// RoleSystem marks an instruction message injected by the gateway.
	RoleSystem Role = "system"
)

// Message is a single turn in a conversation history.
type Message struct {
	Role      Role
	Content   string
	Timestamp time.Time
}

// ChatRequest is an incoming chat query. It is transient: constructed by
// the API layer, consumed by the pipeline, and not retained.
type ChatRequest struct {
	Query          string
	ConversationID string
}

// SourceRef points at a document the backend used to ground an answer.
type SourceRef struct {
	Title string  `json:"title"`
	URL   string  `json:"url"`
	Score float32 `json:"score,omitempty"`
}

// ChatResponse is the pipeline's answer to a ChatRequest.
// Cached reports whether the answer was served from the cache without a
// backend call. ProcessingTime covers the whole pipeline run.
type ChatResponse struct {
	Response       string
	Sources        []SourceRef
	TokensUsed     int
	Cached         bool
	ProcessingTime time.Duration
}

// Article holds the metadata persisted after an ingestion job completes.
// Chunks is the number of retrieval chunks the backend produced for it.
type Article struct {
	URL        string
	Title      string
	Metadata   map[string]string
	Chunks     int
	IngestedAt time.Time
}
