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


// Package ingestion runs article processing jobs on a bounded worker
// pool. Jobs are accepted in FIFO order up to a fixed queue depth; a
// full queue rejects immediately with ErrPoolSaturated rather than
// blocking the caller. At most a configured number of jobs run
// concurrently, and shutdown drains jobs already accepted.
package ingestion
