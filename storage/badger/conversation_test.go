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
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/poiesic/relay/core"
	"github.com/poiesic/relay/storage"
)

func setupStores(t *testing.T) (*ConversationStore, *ArticleStore) {
	t.Helper()

	conversations, articles, backend, err := NewMemoryStores()
	require.NoError(t, err)

	t.Cleanup(func() {
		conversations.Close()
		articles.Close()
		backend.Close()
	})

	return conversations, articles
}

func TestConversationStore_SaveAndLoad(t *testing.T) {
	conversations, _ := setupStores(t)
	ctx := context.Background()

	base := time.Now().UTC().Truncate(time.Microsecond)
	turns := []core.Message{
		{Role: core.RoleUser, Content: "what is ai", Timestamp: base},
		{Role: core.RoleAssistant, Content: "AI is artificial intelligence.", Timestamp: base.Add(time.Second)},
		{Role: core.RoleUser, Content: "tell me more", Timestamp: base.Add(2 * time.Second)},
	}

	for _, msg := range turns {
		require.NoError(t, conversations.SaveMessage(ctx, "c1", msg))
	}

	history, err := conversations.LoadHistory(ctx, "c1")
	require.NoError(t, err)
	require.Len(t, history, 3)
	assert.Equal(t, turns, history)
}

func TestConversationStore_OrderedByTimestamp(t *testing.T) {
	conversations, _ := setupStores(t)
	ctx := context.Background()

	base := time.Now().UTC().Truncate(time.Microsecond)
	// Insert out of order; reads must come back in time order.
	require.NoError(t, conversations.SaveMessage(ctx, "c1", core.Message{
		Role: core.RoleAssistant, Content: "second", Timestamp: base.Add(time.Minute),
	}))
	require.NoError(t, conversations.SaveMessage(ctx, "c1", core.Message{
		Role: core.RoleUser, Content: "first", Timestamp: base,
	}))

	history, err := conversations.LoadHistory(ctx, "c1")
	require.NoError(t, err)
	require.Len(t, history, 2)
	assert.Equal(t, "first", history[0].Content)
	assert.Equal(t, "second", history[1].Content)
}

func TestConversationStore_IsolatesConversations(t *testing.T) {
	conversations, _ := setupStores(t)
	ctx := context.Background()

	require.NoError(t, conversations.SaveMessage(ctx, "c1", core.Message{Role: core.RoleUser, Content: "a"}))
	require.NoError(t, conversations.SaveMessage(ctx, "c2", core.Message{Role: core.RoleUser, Content: "b"}))

	history, err := conversations.LoadHistory(ctx, "c1")
	require.NoError(t, err)
	require.Len(t, history, 1)
	assert.Equal(t, "a", history[0].Content)
}

func TestConversationStore_UnknownConversationIsEmpty(t *testing.T) {
	conversations, _ := setupStores(t)

	history, err := conversations.LoadHistory(context.Background(), "nope")
	require.NoError(t, err)
	assert.Empty(t, history)
}

func TestConversationStore_EmptyConversationID(t *testing.T) {
	conversations, _ := setupStores(t)
	ctx := context.Background()

	_, err := conversations.LoadHistory(ctx, "")
	assert.ErrorIs(t, err, storage.ErrEmptyConversationID)

	err = conversations.SaveMessage(ctx, "", core.Message{Role: core.RoleUser, Content: "x"})
	assert.ErrorIs(t, err, storage.ErrEmptyConversationID)
}

func TestConversationStore_InvalidMessageRejected(t *testing.T) {
	conversations, _ := setupStores(t)

	err := conversations.SaveMessage(context.Background(), "c1", core.Message{Role: core.RoleUser})
	assert.ErrorIs(t, err, core.ErrEmptyContent)
}

func TestConversationStore_ZeroTimestampDefaulted(t *testing.T) {
	conversations, _ := setupStores(t)
	ctx := context.Background()

	require.NoError(t, conversations.SaveMessage(ctx, "c1", core.Message{Role: core.RoleUser, Content: "hi"}))

	history, err := conversations.LoadHistory(ctx, "c1")
	require.NoError(t, err)
	require.Len(t, history, 1)
	assert.False(t, history[0].Timestamp.IsZero())
}
