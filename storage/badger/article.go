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


package badger

import (
	"context"
	"errors"
	"time"

	"github.com/dgraph-io/badger/v4"

	"github.com/poiesic/relay/core"
	"github.com/poiesic/relay/storage"
)

// ArticleStore implements storage.ArticleStore on BadgerDB.
// Articles are keyed by URL; re-ingesting a URL overwrites.
type ArticleStore struct {
	backend *Backend
}

var _ storage.ArticleStore = (*ArticleStore)(nil)

// NewArticleStore creates an article store on the backend.
func NewArticleStore(backend *Backend) *ArticleStore {
	return &ArticleStore{backend: backend}
}

// Close is a no-op; the store holds no resources beyond the backend.
func (s *ArticleStore) Close() error {
	return nil
}

// SaveArticleMetadata stores a processed article keyed by URL.
func (s *ArticleStore) SaveArticleMetadata(ctx context.Context, article *core.Article) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := core.ValidateArticle(article); err != nil {
		return err
	}
	if s.backend.IsClosed() {
		return storage.ErrStorageClosed
	}

	if article.IngestedAt.IsZero() {
		article.IngestedAt = time.Now().UTC()
	}

	return s.backend.WithTx(func(tx *badger.Txn) error {
		if err := tx.Set(makeArticleKey(article.URL), storage.MarshalArticle(article)); err != nil {
			return err
		}
		return tx.Commit()
	}, true)
}

// GetArticle retrieves a processed article by URL.
func (s *ArticleStore) GetArticle(ctx context.Context, url string) (*core.Article, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if s.backend.IsClosed() {
		return nil, storage.ErrStorageClosed
	}

	var article *core.Article
	err := s.backend.WithTx(func(tx *badger.Txn) error {
		item, err := tx.Get(makeArticleKey(url))
		if err != nil {
			if errors.Is(err, badger.ErrKeyNotFound) {
				return storage.ErrNotFound
			}
			return err
		}
		return item.Value(func(val []byte) error {
			article, err = storage.UnmarshalArticle(val)
			return err
		})
	}, false)
	if err != nil {
		return nil, err
	}

	return article, nil
}
