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

// Package badger implements storage.DocumentStore on BadgerDB.
//
// Documents are stored under doc:<id> as mus-go records. Two in-memory indexes
// sit beside the database and are rebuilt from it on open:
//
//   - a bleve index over title and text, queried with a match query
//   - a coder/hnsw cosine graph over embeddings
//
// Vector scores follow the cosine convention of mapping distance d onto
// 1 - d/2, so identical directions score 1 and opposite directions score 0.
package badger
