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

import "errors"

// Domain validation errors
var (
	// ErrInvalidChatRequest indicates a ChatRequest failed validation.
	ErrInvalidChatRequest = errors.New("invalid chat request")

	// ErrEmptyQuery indicates the query is empty after normalization.
	ErrEmptyQuery = errors.New("query cannot be empty")

	// ErrInvalidArticle indicates an Article failed validation.
	ErrInvalidArticle = errors.New("invalid article")

	// ErrEmptyArticleURL indicates the article URL field is empty.
	ErrEmptyArticleURL = errors.New("article url cannot be empty")

	// ErrInvalidArticleURL indicates the article URL is not absolute http(s).
	ErrInvalidArticleURL = errors.New("article url must be absolute http or https")

	// ErrInvalidRole indicates an invalid Role value.
	ErrInvalidRole = errors.New("invalid message role")

	// ErrEmptyContent indicates the message Content field is empty.
	ErrEmptyContent = errors.New("content cannot be empty")
)
