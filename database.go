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

// Package sift wires storage, AI services, retrieval, ingestion and answer
// synthesis into a single Database handle.
package sift

import (
	"errors"
	"log/slog"

	"github.com/poiesic/sift/ai"
	"github.com/poiesic/sift/ai/openai"
	"github.com/poiesic/sift/answer"
	"github.com/poiesic/sift/config"
	"github.com/poiesic/sift/ingestion"
	"github.com/poiesic/sift/search"
	"github.com/poiesic/sift/storage"
	"github.com/poiesic/sift/storage/badger"
)

// Database owns a document store and the AI provider used to search it.
type Database struct {
	store         storage.DocumentStore
	provider      ai.AIProvider
	queryEmbedder ai.Embedder
	searchConfig  search.Config
	answerOpts    []answer.Option
	ingestOpts    []ingestion.Option
	logger        *slog.Logger
}

// DatabaseOption configures a Database.
type DatabaseOption func(*databaseOptions)

type databaseOptions struct {
	aiConfig       *ai.Config
	searchConfig   search.Config
	provider       ai.AIProvider
	inMemory       bool
	queryCacheSize int
	contextBudget  int
	ingestOpts     []ingestion.Option
}

// WithAIConfig sets the embedding and generation endpoints.
// Default is ai.DefaultConfig().
func WithAIConfig(cfg *ai.Config) DatabaseOption {
	return func(o *databaseOptions) {
		o.aiConfig = cfg
	}
}

// WithSearchConfig sets the retrieval parameters.
// Default is search.DefaultConfig().
func WithSearchConfig(cfg search.Config) DatabaseOption {
	return func(o *databaseOptions) {
		o.searchConfig = cfg
	}
}

// WithProvider uses provider instead of building one from the AI config.
// The Database takes ownership and closes it.
func WithProvider(provider ai.AIProvider) DatabaseOption {
	return func(o *databaseOptions) {
		o.provider = provider
	}
}

// WithInMemory keeps documents in memory; the file path is ignored.
func WithInMemory() DatabaseOption {
	return func(o *databaseOptions) {
		o.inMemory = true
	}
}

// WithQueryCache caches up to size query embeddings. Zero disables it.
func WithQueryCache(size int) DatabaseOption {
	return func(o *databaseOptions) {
		o.queryCacheSize = size
	}
}

// WithContextBudget sets the characters per document sent to the generator.
func WithContextBudget(chars int) DatabaseOption {
	return func(o *databaseOptions) {
		o.contextBudget = chars
	}
}

// WithIngestionOptions sets default options for pipelines created by
// NewIngestionPipeline.
func WithIngestionOptions(opts ...ingestion.Option) DatabaseOption {
	return func(o *databaseOptions) {
		o.ingestOpts = append(o.ingestOpts, opts...)
	}
}

// NewDatabase opens (or creates) the document store at filePath.
func NewDatabase(filePath string, opts ...DatabaseOption) (*Database, error) {
	options := &databaseOptions{
		aiConfig:       ai.DefaultConfig(),
		searchConfig:   search.DefaultConfig(),
		queryCacheSize: ai.DefaultEmbeddingCacheSize,
		contextBudget:  answer.DefaultContextBudget,
	}
	for _, opt := range opts {
		opt(options)
	}

	if err := options.searchConfig.Validate(); err != nil {
		return nil, err
	}
	if options.searchConfig.Dimensions == 0 {
		options.searchConfig.Dimensions = options.aiConfig.Dimensions
	}

	var store storage.DocumentStore
	var err error
	if options.inMemory {
		store, err = badger.NewMemoryStore()
	} else {
		store, err = badger.OpenStore(filePath)
	}
	if err != nil {
		return nil, err
	}

	provider := options.provider
	if provider == nil {
		provider, err = openai.NewProvider(options.aiConfig)
		if err != nil {
			store.Close()
			return nil, err
		}
	}

	queryEmbedder := provider.Embedder()
	if options.queryCacheSize > 0 {
		queryEmbedder = ai.NewCachedEmbedder(queryEmbedder, options.aiConfig.EmbeddingModel, options.queryCacheSize)
	}

	return &Database{
		store:         store,
		provider:      provider,
		queryEmbedder: queryEmbedder,
		searchConfig:  options.searchConfig,
		answerOpts:    []answer.Option{answer.WithContextBudget(options.contextBudget)},
		ingestOpts:    options.ingestOpts,
		logger:        slog.Default().With("component", "database"),
	}, nil
}

// OpenFromConfig opens a Database described by cfg. Extra options are
// applied after the ones derived from cfg.
func OpenFromConfig(cfg *config.Config, opts ...DatabaseOption) (*Database, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	base := []DatabaseOption{
		WithAIConfig(cfg.AIConfig()),
		WithSearchConfig(cfg.SearchConfig()),
		WithQueryCache(cfg.AI.QueryCacheSize),
		WithContextBudget(cfg.Answer.ContextBudget),
		WithIngestionOptions(cfg.IngestionOptions()...),
	}
	if cfg.Storage.InMemory {
		base = append(base, WithInMemory())
	}
	return NewDatabase(cfg.Storage.Path, append(base, opts...)...)
}

// Close releases the provider and the store.
func (db *Database) Close() error {
	var errs []error
	if err := db.provider.Close(); err != nil {
		db.logger.Error("error closing AI provider", "err", err)
		errs = append(errs, err)
	}
	if err := db.store.Close(); err != nil {
		db.logger.Error("error closing document store", "err", err)
		errs = append(errs, err)
	}
	return errors.Join(errs...)
}

// Store returns the document store.
func (db *Database) Store() storage.DocumentStore {
	return db.store
}

// Provider returns the AI provider.
func (db *Database) Provider() ai.AIProvider {
	return db.provider
}

// SearchConfig returns the retrieval parameters new retrievers start with.
func (db *Database) SearchConfig() search.Config {
	return db.searchConfig
}

// NewRetriever creates a retriever over the store. Options are applied
// after the database's search configuration.
func (db *Database) NewRetriever(opts ...search.Option) (*search.Retriever, error) {
	opts = append([]search.Option{search.WithConfig(db.searchConfig)}, opts...)
	return search.NewRetriever(db.store, db.queryEmbedder, opts...)
}

// NewIngestionPipeline creates an ingestion pipeline writing to the store.
// Options are applied after the database's ingestion defaults.
func (db *Database) NewIngestionPipeline(opts ...ingestion.Option) (*ingestion.Pipeline, error) {
	all := append(append([]ingestion.Option{}, db.ingestOpts...), opts...)
	return ingestion.NewPipeline(db.store, db.provider.Embedder(), all...)
}

// NewAnswerer creates an answerer backed by a new retriever.
func (db *Database) NewAnswerer(opts ...answer.Option) (*answer.Answerer, error) {
	retriever, err := db.NewRetriever()
	if err != nil {
		return nil, err
	}
	all := append(append([]answer.Option{}, db.answerOpts...), opts...)
	return answer.NewAnswerer(retriever, db.provider.Generator(), all...)
}
