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

package search

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/poiesic/sift/core"
	"github.com/poiesic/sift/storage"
	"golang.org/x/sync/errgroup"
)

// Fetcher obtains raw candidates from the vector and lexical primitives.
type Fetcher struct {
	store  storage.SearchStore
	logger *slog.Logger
}

// NewFetcher creates a fetcher over store. A nil logger selects slog.Default().
func NewFetcher(store storage.SearchStore, logger *slog.Logger) *Fetcher {
	if logger == nil {
		logger = slog.Default()
	}
	return &Fetcher{store: store, logger: logger}
}

// Fetch runs the vector and lexical searches concurrently and returns both
// hit lists in the store's order, undeduplicated. Either failure cancels the
// other and aborts the fetch with a FetchError. A dimension mismatch from the
// vector search is returned as is.
func (f *Fetcher) Fetch(ctx context.Context, text string, embedding []float32, topK int) (vectorHits, lexicalHits []core.Hit, err error) {
	if topK <= 0 {
		return nil, nil, fmt.Errorf("%w: topK must be positive, got %d", ErrInvalidParams, topK)
	}

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		hits, err := f.store.VectorSearch(gctx, embedding, topK)
		if err != nil {
			if errors.Is(err, core.ErrDimensionMismatch) {
				return err
			}
			return newFetchError(StageVectorSearch, err)
		}
		vectorHits = hits
		return nil
	})

	g.Go(func() error {
		hits, err := f.store.LexicalSearch(gctx, text, topK)
		if err != nil {
			return newFetchError(StageLexicalSearch, err)
		}
		lexicalHits = hits
		return nil
	})

	if err := g.Wait(); err != nil {
		f.logger.Error("candidate fetch failed", "err", err)
		return nil, nil, err
	}

	if vectorHits == nil {
		vectorHits = []core.Hit{}
	}
	if lexicalHits == nil {
		lexicalHits = []core.Hit{}
	}
	f.logger.Debug("fetched candidates", "vector", len(vectorHits), "lexical", len(lexicalHits))
	return vectorHits, lexicalHits, nil
}
