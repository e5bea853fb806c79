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
	"encoding/hex"
	"strings"
	"unicode"

	"github.com/go-crypt/x/blake2b"
)

// NormalizeQuery canonicalizes a raw query string for cache key derivation.
// It lowercases the input, strips punctuation, collapses internal
// whitespace to single spaces, and trims the ends. Deterministic and
// pure: identical inputs always produce identical outputs. An empty or
// whitespace-only query normalizes to "" (callers reject empty queries
// upstream; this function never fails).
func NormalizeQuery(raw string) string {
	var b strings.Builder
	b.Grow(len(raw))

	for _, r := range strings.ToLower(raw) {
		switch {
		case unicode.IsLetter(r) || unicode.IsDigit(r):
			b.WriteRune(r)
		case unicode.IsSpace(r):
			b.WriteRune(' ')
		}
		// Punctuation and symbols are dropped entirely.
	}

	return strings.Join(strings.Fields(b.String()), " ")
}

// CacheKeyFor derives the cache key for a normalized query using BLAKE2b
// hashing. The key is a fixed-length lowercase hex string; identical
// normalized input always yields an identical key. Keys are global per
// normalized query, not scoped to a conversation.
func CacheKeyFor(normalized string) string {
	h, _ := blake2b.New(32, nil) // 32 bytes = 256 bits
	h.Write([]byte(normalized))
	return hex.EncodeToString(h.Sum(nil))
}
