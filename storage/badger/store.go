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

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync/atomic"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/poiesic/sift/core"
	"github.com/poiesic/sift/storage"
)

// Store implements storage.DocumentStore on BadgerDB.
//
// Documents are the source of truth in badger. The lexical (bleve) and
// vector (hnsw) indexes live in memory and are rebuilt from badger on open.
type Store struct {
	backend *Backend
	ownsDB  bool
	lexical *lexicalIndex
	vectors *vectorIndex
	closed  atomic.Bool
	logger  *slog.Logger
}

var _ storage.DocumentStore = (*Store)(nil)

// OpenStore opens (or creates) a document store at path.
//
// Returns storage.DocumentStore interface to enforce abstraction.
func OpenStore(path string) (storage.DocumentStore, error) {
	backend, err := OpenBackend(path, false)
	if err != nil {
		return nil, err
	}
	store, err := newStore(backend, true)
	if err != nil {
		backend.Close()
		return nil, err
	}
	return store, nil
}

// NewStore builds a store over an existing backend. The caller keeps
// ownership of the backend; Close on the store leaves it open.
func NewStore(backend *Backend) (*Store, error) {
	return newStore(backend, false)
}

func newStore(backend *Backend, ownsDB bool) (*Store, error) {
	lexical, err := newLexicalIndex()
	if err != nil {
		return nil, err
	}

	s := &Store{
		backend: backend,
		ownsDB:  ownsDB,
		lexical: lexical,
		vectors: newVectorIndex(),
		logger:  slog.Default().With("component", "document-store"),
	}

	if err := s.rebuildIndexes(); err != nil {
		lexical.close()
		return nil, err
	}
	return s, nil
}

// rebuildIndexes loads every stored document into the in-memory indexes.
func (s *Store) rebuildIndexes() error {
	start := time.Now()
	const batchSize = 500
	pending := make([]*core.Document, 0, batchSize)

	flush := func() error {
		if err := s.lexical.put(pending...); err != nil {
			return err
		}
		pending = pending[:0]
		return nil
	}

	err := s.backend.ScanPrefix([]byte(documentPrefix), func(key, val []byte) error {
		doc, err := storage.UnmarshalDocument(val)
		if err != nil {
			s.logger.Warn("skipping unreadable document", "key", string(key), "err", err)
			return nil
		}
		if len(doc.Embedding) > 0 {
			if err := s.vectors.add(doc.Id, doc.Embedding); err != nil {
				s.logger.Warn("skipping embedding during rebuild", "id", doc.Id, "err", err)
			}
		}
		pending = append(pending, doc)
		if len(pending) == batchSize {
			return flush()
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("%w: rebuilding indexes: %w", storage.ErrIndexFailed, err)
	}
	if err := flush(); err != nil {
		return fmt.Errorf("%w: rebuilding indexes: %w", storage.ErrIndexFailed, err)
	}

	s.logger.Debug("indexes rebuilt", "vectors", s.vectors.len(), "elapsed", time.Since(start))
	return nil
}

func (s *Store) checkOpen(ctx context.Context) error {
	if s.closed.Load() || s.backend.IsClosed() {
		return storage.ErrStorageClosed
	}
	return ctx.Err()
}

// Upsert inserts or replaces documents by id.
func (s *Store) Upsert(ctx context.Context, docs ...*core.Document) error {
	if err := s.checkOpen(ctx); err != nil {
		return err
	}
	if len(docs) == 0 {
		return nil
	}

	batchDim := 0
	for _, doc := range docs {
		if err := core.ValidateDocument(doc); err != nil {
			return err
		}
		if len(doc.Embedding) == 0 {
			continue
		}
		if err := s.vectors.checkDim(doc.Embedding); err != nil {
			return err
		}
		if batchDim == 0 {
			batchDim = len(doc.Embedding)
		} else if len(doc.Embedding) != batchDim {
			return core.NewDimensionMismatch(batchDim, len(doc.Embedding))
		}
	}

	err := s.backend.WithTx(func(tx *badger.Txn) error {
		now := time.Now().UTC()
		for _, doc := range docs {
			key := makeDocumentKey(doc.Id)

			old, err := readDocument(tx, key)
			if err != nil {
				return err
			}
			if old != nil && !old.InsertedAt.IsZero() {
				doc.InsertedAt = old.InsertedAt
			} else if doc.InsertedAt.IsZero() {
				doc.InsertedAt = now
			}
			doc.UpdatedAt = now

			if err := tx.Set(key, storage.MarshalDocument(doc)); err != nil {
				return err
			}
		}
		return tx.Commit()
	}, true)
	if err != nil {
		return fmt.Errorf("%w: %w", storage.ErrTransactionFailed, err)
	}

	if err := s.lexical.put(docs...); err != nil {
		return fmt.Errorf("%w: %w", storage.ErrIndexFailed, err)
	}
	for _, doc := range docs {
		if len(doc.Embedding) == 0 {
			s.vectors.remove(doc.Id)
			continue
		}
		if err := s.vectors.add(doc.Id, doc.Embedding); err != nil {
			return fmt.Errorf("%w: %w", storage.ErrIndexFailed, err)
		}
	}

	s.logger.Debug("upserted documents", "count", len(docs))
	return nil
}

// DeleteDocuments removes documents by id. Missing ids are ignored.
func (s *Store) DeleteDocuments(ctx context.Context, ids ...core.ID) error {
	if err := s.checkOpen(ctx); err != nil {
		return err
	}
	if len(ids) == 0 {
		return nil
	}

	err := s.backend.WithTx(func(tx *badger.Txn) error {
		for _, id := range ids {
			if err := tx.Delete(makeDocumentKey(id)); err != nil {
				return err
			}
		}
		return tx.Commit()
	}, true)
	if err != nil {
		return fmt.Errorf("%w: %w", storage.ErrTransactionFailed, err)
	}

	for _, id := range ids {
		s.vectors.remove(id)
	}
	if err := s.lexical.remove(ids...); err != nil {
		return fmt.Errorf("%w: %w", storage.ErrIndexFailed, err)
	}
	return nil
}

// GetDocument retrieves a single document by id.
func (s *Store) GetDocument(ctx context.Context, id core.ID) (*core.Document, error) {
	if err := s.checkOpen(ctx); err != nil {
		return nil, err
	}

	var result *core.Document
	err := s.backend.WithTx(func(tx *badger.Txn) error {
		var err error
		result, err = readDocument(tx, makeDocumentKey(id))
		if err != nil {
			return err
		}
		if result == nil {
			return storage.ErrNotFound
		}
		return nil
	}, false)
	return result, err
}

// VectorSearch returns up to topK documents nearest to embedding.
func (s *Store) VectorSearch(ctx context.Context, embedding []float32, topK int) ([]core.Hit, error) {
	if err := s.checkOpen(ctx); err != nil {
		return nil, err
	}
	if topK <= 0 {
		return nil, fmt.Errorf("%w: topK must be positive, got %d", storage.ErrInvalidQuery, topK)
	}
	if len(embedding) == 0 {
		return nil, fmt.Errorf("%w: empty query embedding", storage.ErrInvalidQuery)
	}

	matches, err := s.vectors.search(embedding, topK)
	if err != nil {
		return nil, err
	}

	ids := make([]core.ID, len(matches))
	scores := make([]float64, len(matches))
	for i, m := range matches {
		ids[i] = m.id
		scores[i] = m.score
	}
	return s.hydrate(ids, scores)
}

// LexicalSearch returns up to topK documents matching text.
func (s *Store) LexicalSearch(ctx context.Context, text string, topK int) ([]core.Hit, error) {
	if err := s.checkOpen(ctx); err != nil {
		return nil, err
	}
	if topK <= 0 {
		return nil, fmt.Errorf("%w: topK must be positive, got %d", storage.ErrInvalidQuery, topK)
	}

	matches, err := s.lexical.search(ctx, text, topK)
	if err != nil {
		return nil, err
	}

	ids := make([]core.ID, len(matches))
	scores := make([]float64, len(matches))
	for i, m := range matches {
		ids[i] = m.id
		scores[i] = m.score
	}
	return s.hydrate(ids, scores)
}

// hydrate loads title, url and text for index matches, preserving order.
// Matches whose document has vanished are skipped.
func (s *Store) hydrate(ids []core.ID, scores []float64) ([]core.Hit, error) {
	hits := make([]core.Hit, 0, len(ids))
	err := s.backend.WithTx(func(tx *badger.Txn) error {
		for i, id := range ids {
			doc, err := readDocument(tx, makeDocumentKey(id))
			if err != nil {
				return err
			}
			if doc == nil {
				s.logger.Warn("index entry without document", "id", id)
				continue
			}
			hits = append(hits, core.Hit{
				Id:    doc.Id,
				Title: doc.Title,
				URL:   doc.URL,
				Text:  doc.Text,
				Score: scores[i],
			})
		}
		return nil
	}, false)
	if err != nil {
		return nil, err
	}
	return hits, nil
}

// BulkFetch returns stored embeddings and texts for the given ids in one
// read transaction.
func (s *Store) BulkFetch(ctx context.Context, ids ...core.ID) (map[core.ID]core.StoredEmbedding, error) {
	if err := s.checkOpen(ctx); err != nil {
		return nil, err
	}

	result := make(map[core.ID]core.StoredEmbedding, len(ids))
	err := s.backend.WithTx(func(tx *badger.Txn) error {
		for _, id := range ids {
			doc, err := readDocument(tx, makeDocumentKey(id))
			if err != nil {
				return err
			}
			if doc == nil {
				continue
			}
			result[id] = core.StoredEmbedding{
				Embedding: doc.Embedding,
				Text:      doc.Text,
			}
		}
		return nil
	}, false)
	if err != nil {
		return nil, err
	}
	return result, nil
}

// Count returns the number of stored documents.
func (s *Store) Count(ctx context.Context) (int, error) {
	if err := s.checkOpen(ctx); err != nil {
		return 0, err
	}
	return s.backend.CountPrefix([]byte(documentPrefix))
}

// Close releases the in-memory indexes and, if the store opened it, the database.
func (s *Store) Close() error {
	if !s.closed.CompareAndSwap(false, true) {
		return nil
	}
	var errs []error
	if err := s.lexical.close(); err != nil {
		errs = append(errs, err)
	}
	if s.ownsDB {
		if err := s.backend.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// readDocument reads a document from the transaction.
// Returns nil, nil if the key does not exist.
func readDocument(tx *badger.Txn, key []byte) (*core.Document, error) {
	item, err := tx.Get(key)
	if err != nil {
		if errors.Is(err, badger.ErrKeyNotFound) {
			return nil, nil
		}
		return nil, err
	}

	var doc *core.Document
	err = item.Value(func(val []byte) error {
		var unmarshalErr error
		doc, unmarshalErr = storage.UnmarshalDocument(val)
		return unmarshalErr
	})
	return doc, err
}
