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

// NewMemoryStores creates in-memory conversation and article stores for
// testing. Returns conversations, articles, backend, and error.
// Caller must close the conversation store and backend when done.
func NewMemoryStores() (*ConversationStore, *ArticleStore, *Backend, error) {
	backend, err := OpenBackend("", true)
	if err != nil {
		return nil, nil, nil, err
	}

	conversations, err := NewConversationStore(backend)
	if err != nil {
		backend.Close()
		return nil, nil, nil, err
	}

	articles := NewArticleStore(backend)

	return conversations, articles, backend, nil
}
