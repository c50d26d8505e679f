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

// Package storage provides the storage abstraction layer for sift.
//
// Retrieval depends only on SearchStore: a vector search, a lexical search
// and a bulk fetch of stored embeddings. Ingestion depends on DocumentWriter.
// DocumentStore combines both with lifecycle operations.
//
// # Constructor Return Type Pattern
//
// Public constructors in backend packages return interface types:
//
//	store, err := badger.OpenStore(path)  // returns storage.DocumentStore
//
// Internal constructors may return concrete types since they're only used
// within the implementation package.
//
// # Usage
//
//	store, err := badger.OpenStore("/path/to/db")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer store.Close()
//
// Use in tests with in-memory storage:
//
//	store, err := badger.NewMemoryStore()
//
// # Thread Safety
//
// All implementations must be thread-safe and support concurrent access
// from multiple goroutines.
package storage
