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


package api

import (
	"context"
	"crypto/subtle"
	"errors"
)

// ErrUnauthorized indicates the presented credentials were missing or
// rejected.
var ErrUnauthorized = errors.New("unauthorized")

// Identity describes an authenticated caller.
type Identity struct {
	Subject string
}

// Authenticator validates bearer tokens. Implementations decide what a
// token means; the server only maps failures to 401 responses.
type Authenticator interface {
	// Authenticate validates a token and returns the caller's identity.
	// Fails with an error matching ErrUnauthorized when rejected.
	Authenticate(ctx context.Context, token string) (*Identity, error)
}

// StaticToken authenticates callers against a single shared secret.
type StaticToken struct {
	token string
}

var _ Authenticator = (*StaticToken)(nil)

// NewStaticToken creates an authenticator that accepts exactly one
// token.
func NewStaticToken(token string) *StaticToken {
	return &StaticToken{token: token}
}

// Authenticate compares the presented token in constant time.
func (a *StaticToken) Authenticate(_ context.Context, token string) (*Identity, error) {
	if token == "" || subtle.ConstantTimeCompare([]byte(token), []byte(a.token)) != 1 {
		return nil, ErrUnauthorized
	}
	return &Identity{Subject: "static"}, nil
}

// AllowAll accepts every caller. Intended for local development.
type AllowAll struct{}

var _ Authenticator = (*AllowAll)(nil)

// Authenticate accepts any token, including none.
func (AllowAll) Authenticate(_ context.Context, _ string) (*Identity, error) {
	return &Identity{Subject: "anonymous"}, nil
}
