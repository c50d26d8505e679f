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
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/poiesic/sift/ai"
	"github.com/poiesic/sift/core"
	"github.com/poiesic/sift/storage"
)

// Retriever runs hybrid retrieval and MMR diversification.
// It holds no per-query state and is safe for concurrent use.
type Retriever struct {
	store    storage.SearchStore
	embedder ai.Embedder
	fetcher  *Fetcher
	config   Config
	logger   *slog.Logger
}

// Option configures a Retriever.
type Option func(*Retriever) error

// WithLogger sets a custom logger.
// Default is slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(r *Retriever) error {
		if logger == nil {
			logger = slog.Default()
		}
		r.logger = logger
		return nil
	}
}

// WithConfig replaces the retrieval configuration.
// Default is DefaultConfig().
func WithConfig(cfg Config) Option {
	return func(r *Retriever) error {
		if err := cfg.Validate(); err != nil {
			return err
		}
		r.config = cfg
		return nil
	}
}

// NewRetriever creates a new retriever.
func NewRetriever(store storage.SearchStore, embedder ai.Embedder, opts ...Option) (*Retriever, error) {
	if store == nil {
		return nil, ErrStoreRequired
	}
	if embedder == nil {
		return nil, ErrEmbedderRequired
	}

	r := &Retriever{
		store:    store,
		embedder: embedder,
		config:   DefaultConfig(),
		logger:   slog.Default().With("component", "retriever"),
	}

	for _, opt := range opts {
		if err := opt(r); err != nil {
			return nil, err
		}
	}

	r.fetcher = NewFetcher(store, r.logger)
	return r, nil
}

// Config returns the retriever's configuration.
func (r *Retriever) Config() Config {
	return r.config
}

// Retrieve returns up to K diversified results for query using the
// configured parameters.
func (r *Retriever) Retrieve(ctx context.Context, query string) (core.ResultSet, error) {
	return r.RetrieveWithMonitor(ctx, query, r.config.Params(), nil)
}

// RetrieveWithParams is Retrieve with per-call overrides of topK, k and lambda.
func (r *Retriever) RetrieveWithParams(ctx context.Context, query string, params Params) (core.ResultSet, error) {
	return r.RetrieveWithMonitor(ctx, query, params, nil)
}

// RetrieveWithMonitor runs retrieval with per-call parameters, reporting
// each stage to monitor.
//
// An empty candidate set at any stage yields an empty ResultSet and no
// error. A blank query returns an empty ResultSet without calling the
// embedder. Lambda outside [0, 1] is clamped; k <= 0 yields no results.
func (r *Retriever) RetrieveWithMonitor(ctx context.Context, query string, params Params, monitor SearchMonitor) (core.ResultSet, error) {
	if monitor == nil {
		monitor = &noopMonitor{}
	}
	if params.TopK <= 0 {
		return nil, fmt.Errorf("%w: topK must be positive, got %d", ErrInvalidParams, params.TopK)
	}

	start := time.Now()
	monitor.Start(query)

	if strings.TrimSpace(query) == "" {
		r.logger.Debug("blank query, nothing to retrieve")
		monitor.Finish(core.ResultSet{})
		return core.ResultSet{}, nil
	}

	// 1. Embed the query
	embedding, err := r.embedder.EmbedText(ctx, query)
	if err != nil {
		r.logger.Error("error generating embedding for query", "err", err)
		return nil, newFetchError(StageEmbed, err)
	}
	if len(embedding) == 0 {
		r.logger.Error("embedder returned an empty vector")
		return nil, newFetchError(StageEmbed, ErrEmptyEmbedding)
	}
	if r.config.Dimensions > 0 && len(embedding) != r.config.Dimensions {
		return nil, core.NewDimensionMismatch(r.config.Dimensions, len(embedding))
	}
	q := core.Query{Text: query, Embedding: embedding}
	monitor.AfterEmbed(len(q.Embedding))

	// 2. Fetch candidates from both primitives
	vectorHits, lexicalHits, err := r.fetcher.Fetch(ctx, q.Text, q.Embedding, params.TopK)
	if err != nil {
		return nil, err
	}
	monitor.AfterFetch(vectorHits, lexicalHits)

	// 3. Rescore lexical hits with BM25 over the hit set
	texts := make([]string, len(lexicalHits))
	for i, h := range lexicalHits {
		texts[i] = h.Text
	}
	lexicalScores := ScoreBM25(q.Text, texts)
	monitor.AfterLexicalScoring(lexicalScores)

	// 4. Merge by id
	table := Merge(vectorHits, lexicalHits, lexicalScores)
	monitor.AfterMerge(table.IDs())
	if table.Len() == 0 {
		r.logger.Debug("no candidates", "elapsed", time.Since(start))
		monitor.Finish(core.ResultSet{})
		return core.ResultSet{}, nil
	}

	// 5. Backfill stored embeddings
	filled, err := Backfill(ctx, r.store, table, len(q.Embedding))
	if err != nil {
		r.logger.Error("embedding backfill failed", "err", err)
		return nil, err
	}
	for _, d := range filled.Dropped {
		r.logger.Warn("dropping malformed candidate", "id", d.Id, "err", d.Err)
		monitor.CandidateDropped(d.Id, d.Err)
	}
	monitor.AfterBackfill(filled.Candidates)
	if len(filled.Candidates) == 0 {
		monitor.Finish(core.ResultSet{})
		return core.ResultSet{}, nil
	}

	// 6. Diversify
	picks, err := Diversify(q.Embedding, filled.Vectors, params.Lambda, params.K)
	if err != nil {
		return nil, err
	}

	results := make(core.ResultSet, len(picks))
	for i, idx := range picks {
		results[i] = filled.Candidates[idx]
	}

	r.logger.Debug("retrieval complete",
		"vector_hits", len(vectorHits),
		"lexical_hits", len(lexicalHits),
		"candidates", table.Len(),
		"kept", len(filled.Candidates),
		"results", len(results),
		"elapsed", time.Since(start))
	monitor.Finish(results)
	return results, nil
}
