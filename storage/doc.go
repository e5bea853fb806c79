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


// Package storage defines the persistence collaborator interfaces
// consumed by the pipeline and the job pool.
//
// The pipeline and pool depend only on the interfaces here; the BadgerDB
// implementation lives in the badger subpackage. Public constructors in
// implementation packages return these interfaces, not concrete types,
// so backends stay swappable and tests can substitute doubles without
// touching callers.
//
// Persistence is deliberately non-authoritative for request handling:
// per the gateway's degradation policy, a failed history write degrades
// durability, never availability. Callers log and continue.
//
// All implementations must be safe for concurrent use and honor
// context cancellation on every method.
package storage
