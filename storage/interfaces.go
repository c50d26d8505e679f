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
	"context"

	"github.com/poiesic/sift/core"
)

// SearchStore provides the three read primitives retrieval is built on.
// Implementations must be thread-safe and support concurrent access.
type SearchStore interface {
	// VectorSearch returns up to topK documents nearest to embedding,
	// ordered by descending similarity. Documents without an embedding
	// never appear. Returns a core.DimensionMismatchError if embedding's
	// length differs from the indexed vectors.
	VectorSearch(ctx context.Context, embedding []float32, topK int) ([]core.Hit, error)

	// LexicalSearch returns up to topK documents matching text in a
	// full-text index over title and text, ordered by descending score.
	LexicalSearch(ctx context.Context, text string, topK int) ([]core.Hit, error)

	// BulkFetch returns the stored embedding and text for each id that
	// exists. Missing ids are absent from the map; that is not an error.
	BulkFetch(ctx context.Context, ids ...core.ID) (map[core.ID]core.StoredEmbedding, error)
}

// DocumentWriter provides write operations for documents.
type DocumentWriter interface {
	// Upsert inserts or replaces documents by id. The whole record is
	// replaced; there is no field-level merge. Sets InsertedAt on first
	// write and UpdatedAt on every write.
	Upsert(ctx context.Context, docs ...*core.Document) error

	// DeleteDocuments removes documents by id. Missing ids are ignored.
	DeleteDocuments(ctx context.Context, ids ...core.ID) error
}

// DocumentStore is the full storage surface used by sift.
type DocumentStore interface {
	SearchStore
	DocumentWriter

	// GetDocument retrieves a single document by id.
	// Returns ErrNotFound if the document doesn't exist.
	GetDocument(ctx context.Context, id core.ID) (*core.Document, error)

	// Count returns the number of stored documents.
	Count(ctx context.Context) (int, error)

	// Close closes the storage backend and releases resources.
	Close() error
}
