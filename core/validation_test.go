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
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestValidateChatRequest(t *testing.T) {
	tests := []struct {
		name    string
		req     *ChatRequest
		wantErr error
	}{
		{"valid", &ChatRequest{Query: "what is ai", ConversationID: "c1"}, nil},
		{"valid without conversation", &ChatRequest{Query: "what is ai"}, nil},
		{"nil request", nil, ErrInvalidChatRequest},
		{"empty query", &ChatRequest{Query: ""}, ErrEmptyQuery},
		{"whitespace query", &ChatRequest{Query: "   "}, ErrEmptyQuery},
		{"punctuation-only query", &ChatRequest{Query: "?!"}, ErrEmptyQuery},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateChatRequest(tt.req)
			if tt.wantErr == nil {
				assert.NoError(t, err)
			} else {
				assert.ErrorIs(t, err, tt.wantErr)
			}
		})
	}
}

func TestValidateArticle(t *testing.T) {
	tests := []struct {
		name    string
		article *Article
		wantErr error
	}{
		{"valid https", &Article{URL: "https://example.com/post", Title: "Post"}, nil},
		{"valid http", &Article{URL: "http://example.com"}, nil},
		{"nil article", nil, ErrInvalidArticle},
		{"empty url", &Article{Title: "no url"}, ErrEmptyArticleURL},
		{"relative url", &Article{URL: "/post/1"}, ErrInvalidArticleURL},
		{"bad scheme", &Article{URL: "ftp://example.com/a"}, ErrInvalidArticleURL},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateArticle(tt.article)
			if tt.wantErr == nil {
				assert.NoError(t, err)
			} else {
				assert.ErrorIs(t, err, tt.wantErr)
			}
		})
	}
}

func TestValidateRole(t *testing.T) {
	assert.NoError(t, ValidateRole(RoleUser))
	assert.NoError(t, ValidateRole(RoleAssistant))
	assert.NoError(t, ValidateRole(RoleSystem))
	assert.ErrorIs(t, ValidateRole(Role("robot")), ErrInvalidRole)
	assert.ErrorIs(t, ValidateRole(Role("")), ErrInvalidRole)
}

func TestValidateMessage(t *testing.T) {
	assert.NoError(t, ValidateMessage(&Message{Role: RoleUser, Content: "hi"}))
	assert.ErrorIs(t, ValidateMessage(&Message{Role: RoleUser}), ErrEmptyContent)
	assert.ErrorIs(t, ValidateMessage(&Message{Role: Role("x"), Content: "hi"}), ErrInvalidRole)
	assert.Error(t, ValidateMessage(nil))
}
