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


// Package storage provides the storage abstraction layer for almanac.
//
// This package defines repository interfaces that decouple the fragment corpus
// from the retrieval logic built on top of it. The corpus is written once by
// the offline ingestion step and read concurrently by search and recall.
//
// # Architecture
//
//   - FragmentRepository: the corpus, with exact-match filtering by year,
//     month and topic, substring filtering on text, and nearest-neighbour
//     ranking by cosine similarity
//   - CheckpointRepository: progress markers for resumable imports
//   - Filter: the typed predicate set accepted by FindFragments
//
// Topic filters are core.TopicSet values validated against the curated
// vocabulary, never raw strings spliced into a query.
//
// # Usage
//
// Open a BadgerDB-backed corpus:
//
//	backend, err := badger.OpenBackend("/path/to/db", false)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer backend.Close()
//	repo := badger.NewFragmentRepository(backend)
//
// Use in tests with in-memory storage:
//
//	repo, checkpoints, backend, err := badger.NewMemoryRepositories()
//
// # Thread Safety
//
// All repository implementations must be thread-safe and support
// concurrent access from multiple goroutines.
//
// # Context Support
//
// All repository methods accept context.Context for cancellation
// and timeout support. Pass context.Background() for operations
// without specific timeout requirements.
package storage
