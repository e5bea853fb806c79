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
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/poiesic/relay/core"
)

func TestMarshalUnmarshalMessage(t *testing.T) {
	now := time.Now().UTC().Truncate(time.Microsecond)

	msg := &core.Message{
		Role:      core.RoleAssistant,
		Content:   "AI is artificial intelligence.",
		Timestamp: now,
	}

	data := MarshalMessage(msg)
	require.NotEmpty(t, data)

	decoded, err := UnmarshalMessage(data)
	require.NoError(t, err)
	assert.Equal(t, msg, decoded)
}

func TestUnmarshalMessage_Truncated(t *testing.T) {
	msg := &core.Message{Role: core.RoleUser, Content: "hello", Timestamp: time.Now()}
	data := MarshalMessage(msg)

	_, err := UnmarshalMessage(data[:2])
	assert.ErrorIs(t, err, ErrSerializationFailed)

	_, err = UnmarshalMessage(nil)
	assert.ErrorIs(t, err, ErrSerializationFailed)
}

func TestMarshalUnmarshalArticle(t *testing.T) {
	now := time.Now().UTC().Truncate(time.Microsecond)

	tests := []struct {
		name    string
		article *core.Article
	}{
		{
			name: "full article",
			article: &core.Article{
				URL:   "https://example.com/post",
				Title: "A Post",
				Metadata: map[string]string{
					"author": "alice",
					"lang":   "en",
				},
				Chunks:     12,
				IngestedAt: now,
			},
		},
		{
			name: "no metadata",
			article: &core.Article{
				URL:        "https://example.com/bare",
				IngestedAt: now,
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			data := MarshalArticle(tt.article)
			decoded, err := UnmarshalArticle(data)
			require.NoError(t, err)
			assert.Equal(t, tt.article, decoded)
		})
	}
}

func TestMarshalArticle_Deterministic(t *testing.T) {
	article := &core.Article{
		URL:      "https://example.com",
		Metadata: map[string]string{"b": "2", "a": "1", "c": "3"},
	}
	first := MarshalArticle(article)
	for i := 0; i < 10; i++ {
		assert.Equal(t, first, MarshalArticle(article), "map keys must encode in sorted order")
	}
}
