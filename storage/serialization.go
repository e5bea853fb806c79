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
	"fmt"
	"sort"
	"time"

	"github.com/mus-format/mus-go/ord"
	"github.com/mus-format/mus-go/varint"

	"github.com/poiesic/relay/core"
)

// Hand-written MUS serializers for the stored record types. Timestamps
// are encoded as UnixMicro int64s; map keys are sorted so encoding is
// deterministic.

// MarshalMessage serializes a Message to bytes.
func MarshalMessage(msg *core.Message) []byte {
	buf := make([]byte, messageSer.Size(*msg))
	messageSer.Marshal(*msg, buf)
	return buf
}

// UnmarshalMessage deserializes a Message from bytes.
func UnmarshalMessage(data []byte) (*core.Message, error) {
	msg, _, err := messageSer.Unmarshal(data)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrSerializationFailed, err)
	}
	return &msg, nil
}

// MarshalArticle serializes an Article to bytes.
func MarshalArticle(article *core.Article) []byte {
	buf := make([]byte, articleSer.Size(*article))
	articleSer.Marshal(*article, buf)
	return buf
}

// UnmarshalArticle deserializes an Article from bytes.
func UnmarshalArticle(data []byte) (*core.Article, error) {
	article, _, err := articleSer.Unmarshal(data)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrSerializationFailed, err)
	}
	return &article, nil
}

var (
	messageSer = messageMUS{}
	articleSer = articleMUS{}
)

type messageMUS struct{}

func (messageMUS) Marshal(m core.Message, bs []byte) (n int) {
	n = ord.String.Marshal(string(m.Role), bs)
	n += ord.String.Marshal(m.Content, bs[n:])
	n += varint.Int64.Marshal(m.Timestamp.UnixMicro(), bs[n:])
	return n
}

func (messageMUS) Unmarshal(bs []byte) (m core.Message, n int, err error) {
	role, n, err := ord.String.Unmarshal(bs)
	if err != nil {
		return
	}
	m.Role = core.Role(role)

	content, n1, err := ord.String.Unmarshal(bs[n:])
	n += n1
	if err != nil {
		return
	}
	m.Content = content

	micros, n1, err := varint.Int64.Unmarshal(bs[n:])
	n += n1
	if err != nil {
		return
	}
	m.Timestamp = time.UnixMicro(micros).UTC()
	return
}

func (messageMUS) Size(m core.Message) (size int) {
	size = ord.String.Size(string(m.Role))
	size += ord.String.Size(m.Content)
	size += varint.Int64.Size(m.Timestamp.UnixMicro())
	return size
}

type articleMUS struct{}

func (articleMUS) Marshal(a core.Article, bs []byte) (n int) {
	n = ord.String.Marshal(a.URL, bs)
	n += ord.String.Marshal(a.Title, bs[n:])

	n += varint.PositiveInt.Marshal(len(a.Metadata), bs[n:])
	for _, key := range sortedKeys(a.Metadata) {
		n += ord.String.Marshal(key, bs[n:])
		n += ord.String.Marshal(a.Metadata[key], bs[n:])
	}

	n += varint.PositiveInt.Marshal(a.Chunks, bs[n:])
	n += varint.Int64.Marshal(a.IngestedAt.UnixMicro(), bs[n:])
	return n
}

func (articleMUS) Unmarshal(bs []byte) (a core.Article, n int, err error) {
	a.URL, n, err = ord.String.Unmarshal(bs)
	if err != nil {
		return
	}

	var n1 int
	a.Title, n1, err = ord.String.Unmarshal(bs[n:])
	n += n1
	if err != nil {
		return
	}

	var count int
	count, n1, err = varint.PositiveInt.Unmarshal(bs[n:])
	n += n1
	if err != nil {
		return
	}
	if count > 0 {
		a.Metadata = make(map[string]string, count)
	}
	for i := 0; i < count; i++ {
		var key, value string
		key, n1, err = ord.String.Unmarshal(bs[n:])
		n += n1
		if err != nil {
			return
		}
		value, n1, err = ord.String.Unmarshal(bs[n:])
		n += n1
		if err != nil {
			return
		}
		a.Metadata[key] = value
	}

	a.Chunks, n1, err = varint.PositiveInt.Unmarshal(bs[n:])
	n += n1
	if err != nil {
		return
	}

	var micros int64
	micros, n1, err = varint.Int64.Unmarshal(bs[n:])
	n += n1
	if err != nil {
		return
	}
	a.IngestedAt = time.UnixMicro(micros).UTC()
	return
}

func (articleMUS) Size(a core.Article) (size int) {
	size = ord.String.Size(a.URL)
	size += ord.String.Size(a.Title)

	size += varint.PositiveInt.Size(len(a.Metadata))
	for key, value := range a.Metadata {
		size += ord.String.Size(key)
		size += ord.String.Size(value)
	}

	size += varint.PositiveInt.Size(a.Chunks)
	size += varint.Int64.Size(a.IngestedAt.UnixMicro())
	return size
}

func sortedKeys(m map[string]string) []string {
	keys := make([]string, 0, len(m))
	for key := range m {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	return keys
}
