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


package storage

import (
	"context"

	"github.com/poiesic/relay/core"
)

// ConversationStore persists conversation history.
type ConversationStore interface {
	// LoadHistory returns the messages of a conversation ordered by
	// timestamp, oldest first. An unknown conversation returns an
	// empty slice, not an error.
	LoadHistory(ctx context.Context, conversationID string) ([]core.Message, error)

	// SaveMessage appends a message to a conversation. The message
	// timestamp is set to the current time if zero.
	SaveMessage(ctx context.Context, conversationID string, msg core.Message) error

	// Close closes the store and releases resources.
	Close() error
}

// ArticleStore persists ingestion results.
type ArticleStore interface {
	// SaveArticleMetadata stores the metadata of a processed article,
	// keyed by URL. Saving the same URL again overwrites.
	SaveArticleMetadata(ctx context.Context, article *core.Article) error

	// GetArticle retrieves a processed article by URL.
	// Returns ErrNotFound if the article was never ingested.
	GetArticle(ctx context.Context, url string) (*core.Article, error)

	// Close closes the store and releases resources.
	Close() error
}
