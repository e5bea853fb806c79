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
	"time"

	"github.com/dgraph-io/badger/v4"

	"github.com/poiesic/relay/core"
	"github.com/poiesic/relay/storage"
)

// ConversationStore implements storage.ConversationStore on BadgerDB.
type ConversationStore struct {
	backend *Backend
	seq     *badger.Sequence
}

var _ storage.ConversationStore = (*ConversationStore)(nil)

// NewConversationStore creates a conversation store on the backend.
func NewConversationStore(backend *Backend) (*ConversationStore, error) {
	seq, err := backend.GetSequence(convMessageSeq)
	if err != nil {
		return nil, err
	}

	return &ConversationStore{
		backend: backend,
		seq:     seq,
	}, nil
}

// Close releases the message sequence.
func (s *ConversationStore) Close() error {
	return s.seq.Release()
}

// SaveMessage appends a message to a conversation.
func (s *ConversationStore) SaveMessage(ctx context.Context, conversationID string, msg core.Message) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if conversationID == "" {
		return storage.ErrEmptyConversationID
	}
	if err := core.ValidateMessage(&msg); err != nil {
		return err
	}
	if s.backend.IsClosed() {
		return storage.ErrStorageClosed
	}

	if msg.Timestamp.IsZero() {
		msg.Timestamp = time.Now().UTC()
	}

	return s.backend.WithTx(func(tx *badger.Txn) error {
		seq, err := s.seq.Next()
		if err != nil {
			return err
		}

		key := makeMessageKey(conversationID, msg.Timestamp, seq)
		if err := tx.Set(key, storage.MarshalMessage(&msg)); err != nil {
			return err
		}
		return tx.Commit()
	}, true)
}

// LoadHistory returns the messages of a conversation, oldest first.
// An unknown conversation yields an empty slice.
func (s *ConversationStore) LoadHistory(ctx context.Context, conversationID string) ([]core.Message, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if conversationID == "" {
		return nil, storage.ErrEmptyConversationID
	}
	if s.backend.IsClosed() {
		return nil, storage.ErrStorageClosed
	}

	messages := []core.Message{}
	err := s.backend.WithTx(func(tx *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = makeConversationPrefix(conversationID)
		iter := tx.NewIterator(opts)
		defer iter.Close()

		for iter.Rewind(); iter.Valid(); iter.Next() {
			err := iter.Item().Value(func(val []byte) error {
				msg, err := storage.UnmarshalMessage(val)
				if err != nil {
					return err
				}
				messages = append(messages, *msg)
				return nil
			})
			if err != nil {
				return err
			}
		}
		return nil
	}, false)
	if err != nil {
		return nil, err
	}

	return messages, nil
}
