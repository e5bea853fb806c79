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

import (
	"fmt"
	"net/url"
)

// ValidateChatRequest validates a ChatRequest according to domain rules.
//
// Validation rules:
//   - Query must not be empty after normalization
//
// NOT validated:
//   - ConversationID (empty means a one-shot query without history)
func ValidateChatRequest(req *ChatRequest) error {
	if req == nil {
		return fmt.Errorf("%w: request is nil", ErrInvalidChatRequest)
	}

	if NormalizeQuery(req.Query) == "" {
		return fmt.Errorf("%w: %w", ErrInvalidChatRequest, ErrEmptyQuery)
	}

	return nil
}

// ValidateArticle validates an Article according to domain rules.
//
// Validation rules:
//   - URL must be present and an absolute http(s) URL
//
// NOT validated (populated during ingestion):
//   - Chunks (0 until the backend has processed the article)
//   - IngestedAt (set by the job pool on completion)
func ValidateArticle(article *Article) error {
	if article == nil {
		return fmt.Errorf("%w: article is nil", ErrInvalidArticle)
	}

	if article.URL == "" {
		return fmt.Errorf("%w: %w", ErrInvalidArticle, ErrEmptyArticleURL)
	}

	u, err := url.Parse(article.URL)
	if err != nil || !u.IsAbs() || (u.Scheme != "http" && u.Scheme != "https") {
		return fmt.Errorf("%w: %w", ErrInvalidArticle, ErrInvalidArticleURL)
	}

	return nil
}

// ValidateRole validates that a Role has a valid value.
func ValidateRole(role Role) error {
	switch role {
	case RoleUser, RoleAssistant, RoleSystem:
		return nil
	}
	return fmt.Errorf("%w: value %q", ErrInvalidRole, role)
}

// ValidateMessage validates a conversation message before persistence.
func ValidateMessage(msg *Message) error {
	if msg == nil {
		return fmt.Errorf("%w: message is nil", ErrInvalidRole)
	}
	if err := ValidateRole(msg.Role); err != nil {
		return err
	}
	if msg.Content == "" {
		return ErrEmptyContent
	}
	return nil
}
