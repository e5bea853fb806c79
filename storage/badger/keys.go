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
	"encoding/binary"
	"time"
)

// Key prefixes. Conversation message keys embed the conversation ID and
// a BigEndian timestamp so a prefix scan yields messages in time order.
const (
	convMessagePrefix = "convmsg"
	convMessageSeq    = "convmsgseq"
	articlePrefix     = "article"
)

// makeConversationPrefix generates the scan prefix for one conversation.
// Format: prefix:conversationID\x00
func makeConversationPrefix(conversationID string) []byte {
	prefix := convMessagePrefix + ":" + conversationID
	buf := make([]byte, 0, len(prefix)+1)
	buf = append(buf, prefix...)
	buf = append(buf, 0)
	return buf
}

// makeMessageKey generates a composite key for a conversation message.
// Format: prefix:conversationID\x00timestamp:seq
// Timestamp and sequence are written in BigEndian order so lexicographic
// sort matches insertion order; the sequence breaks ties within one
// microsecond.
func makeMessageKey(conversationID string, timestamp time.Time, seq uint64) []byte {
	prefix := makeConversationPrefix(conversationID)
	buf := make([]byte, len(prefix)+16)
	offset := copy(buf, prefix)
	binary.BigEndian.PutUint64(buf[offset:], uint64(timestamp.UnixMicro()))
	offset += 8
	binary.BigEndian.PutUint64(buf[offset:], seq)
	return buf
}

// makeArticleKey generates a key for an article by URL.
func makeArticleKey(url string) []byte {
	return []byte(articlePrefix + ":" + url)
}
