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

package ingestion

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"runtime"
	"sync"
	"time"

	"github.com/panjf2000/ants/v2"
	"github.com/poiesic/sift/ai"
	"github.com/poiesic/sift/core"
	"github.com/poiesic/sift/storage"
	"golang.org/x/time/rate"
)

const (
	// DefaultMaxAttempts is how many times an embedding call is tried.
	DefaultMaxAttempts = 3

	// DefaultRetryDelay is the delay before the first retry.
	DefaultRetryDelay = 500 * time.Millisecond
)

// staleChunkBatch is how many chunk ids are probed per lookup when
// removing chunks left over from a longer version of a page.
const staleChunkBatch = 16

// Store is the storage surface ingestion needs. BulkFetch is used to find
// chunks a re-ingested page no longer produces.
type Store interface {
	storage.DocumentWriter
	BulkFetch(ctx context.Context, ids ...core.ID) (map[core.ID]core.StoredEmbedding, error)
}

// Pipeline chunks, embeds and stores pages.
type Pipeline struct {
	writer       Store
	embedder     ai.Embedder
	pool         *ants.Pool
	chunkSize    int
	chunkOverlap int
	maxAttempts  int
	retryDelay   time.Duration
	limiter      *rate.Limiter
	progress     io.Writer
	logger       *slog.Logger
}

// Stats summarizes one Ingest call.
type Stats struct {
	Pages     int
	Documents int
	Failed    int
	Elapsed   time.Duration
}

// Option configures a Pipeline.
type Option func(*Pipeline) error

// WithPoolSize sets the worker pool size for concurrent processing.
// Default is runtime.NumCPU() / 2, with a minimum of 1.
func WithPoolSize(size int) Option {
	return func(p *Pipeline) error {
		if size < 1 {
			size = 1
		}
		pool, err := ants.NewPool(size)
		if err != nil {
			return err
		}
		if p.pool != nil {
			p.pool.Release()
		}
		p.pool = pool
		return nil
	}
}

// WithChunking sets the chunk size and overlap in characters.
// Default is DefaultChunkSize and DefaultChunkOverlap.
func WithChunking(size, overlap int) Option {
	return func(p *Pipeline) error {
		if size <= 0 || overlap < 0 || overlap >= size {
			return fmt.Errorf("%w: size %d, overlap %d", ErrInvalidChunking, size, overlap)
		}
		p.chunkSize = size
		p.chunkOverlap = overlap
		return nil
	}
}

// WithRetry sets how many times an embedding call is attempted and the
// delay before the first retry.
func WithRetry(maxAttempts int, baseDelay time.Duration) Option {
	return func(p *Pipeline) error {
		if maxAttempts <= 0 {
			return ErrInvalidMaxAttempts
		}
		p.maxAttempts = maxAttempts
		p.retryDelay = baseDelay
		return nil
	}
}

// WithRateLimit caps embedding calls at requestsPerSecond with the given
// burst. A non-positive rate removes the limit, which is the default.
func WithRateLimit(requestsPerSecond float64, burst int) Option {
	return func(p *Pipeline) error {
		if requestsPerSecond <= 0 {
			p.limiter = nil
			return nil
		}
		p.limiter = rate.NewLimiter(rate.Limit(requestsPerSecond), max(burst, 1))
		return nil
	}
}

// WithProgress reports progress to w. Default is no progress output.
func WithProgress(w io.Writer) Option {
	return func(p *Pipeline) error {
		p.progress = w
		return nil
	}
}

// WithLogger sets a custom logger.
// Default is slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(p *Pipeline) error {
		if logger == nil {
			logger = slog.Default()
		}
		p.logger = logger
		return nil
	}
}

// NewPipeline creates a new ingestion pipeline.
func NewPipeline(writer Store, embedder ai.Embedder, opts ...Option) (*Pipeline, error) {
	if writer == nil {
		return nil, ErrDocumentWriterRequired
	}
	if embedder == nil {
		return nil, ErrEmbedderRequired
	}

	poolSize := max(runtime.NumCPU()/2, 1)
	pool, err := ants.NewPool(poolSize)
	if err != nil {
		return nil, err
	}

	p := &Pipeline{
		writer:       writer,
		embedder:     embedder,
		pool:         pool,
		chunkSize:    DefaultChunkSize,
		chunkOverlap: DefaultChunkOverlap,
		maxAttempts:  DefaultMaxAttempts,
		retryDelay:   DefaultRetryDelay,
		logger:       slog.Default().With("component", "ingestion"),
	}

	for _, opt := range opts {
		if optErr := opt(p); optErr != nil {
			p.Release()
			return nil, optErr
		}
	}
	return p, nil
}

// Ingest processes pages concurrently and waits for all of them. Each
// page's chunks are embedded in one call and upserted together, so a page
// is either fully stored or not at all. Failed pages do not stop the
// others; their errors are joined, each wrapping ErrPageFailed.
func (p *Pipeline) Ingest(ctx context.Context, pages []Page) (*Stats, error) {
	tracker := NewProgressTracker(p.progress, len(pages), 1)
	tracker.Start()

	var (
		wg    sync.WaitGroup
		mu    sync.Mutex
		errs  []error
		stats = &Stats{Pages: len(pages)}
	)

	fail := func(page Page, err error) {
		mu.Lock()
		errs = append(errs, fmt.Errorf("%w: %s: %w", ErrPageFailed, page.URL, err))
		stats.Failed++
		mu.Unlock()
		tracker.PageFailed()
	}

	for _, page := range pages {
		wg.Add(1)
		err := p.pool.Submit(func() {
			defer wg.Done()
			n, err := p.ingestPage(ctx, page)
			if err != nil {
				p.logger.Warn("page ingestion failed", "url", page.URL, "err", err)
				fail(page, err)
				return
			}
			mu.Lock()
			stats.Documents += n
			mu.Unlock()
			tracker.PageDone(n)
		})
		if err != nil {
			wg.Done()
			fail(page, err)
		}
	}

	wg.Wait()
	if p.progress != nil {
		tracker.Finish()
	}
	stats.Elapsed = tracker.Elapsed()

	p.logger.Info("ingestion finished",
		"pages", stats.Pages,
		"documents", stats.Documents,
		"failed", stats.Failed,
		"elapsed", stats.Elapsed)
	return stats, errors.Join(errs...)
}

// ingestPage chunks, embeds and stores one page, returning the number of
// documents written.
func (p *Pipeline) ingestPage(ctx context.Context, page Page) (int, error) {
	docs, err := BuildDocuments(page, p.chunkSize, p.chunkOverlap)
	if err != nil {
		return 0, err
	}

	texts := make([]string, len(docs))
	for i, doc := range docs {
		texts[i] = doc.Text
	}

	var vectors [][]float32
	err = RetryWithBackoff(ctx, func() error {
		if p.limiter != nil {
			if err := p.limiter.Wait(ctx); err != nil {
				return err
			}
		}
		var embedErr error
		vectors, embedErr = p.embedder.EmbedTexts(ctx, texts)
		return embedErr
	}, p.maxAttempts, p.retryDelay)
	if err != nil {
		return 0, fmt.Errorf("embedding chunks: %w", err)
	}
	if len(vectors) != len(docs) {
		return 0, fmt.Errorf("%w: sent %d, got %d", ErrEmbeddingCountMismatch, len(docs), len(vectors))
	}

	for i, doc := range docs {
		if err := core.ValidateEmbedding(vectors[i]); err != nil {
			return 0, fmt.Errorf("chunk %d: %w", i, err)
		}
		doc.Embedding = vectors[i]
	}
	if err := p.writer.Upsert(ctx, docs...); err != nil {
		return 0, err
	}

	removed, err := p.removeStaleChunks(ctx, page.URL, len(docs))
	if err != nil {
		return 0, fmt.Errorf("removing stale chunks: %w", err)
	}

	p.logger.Debug("ingested page", "url", page.URL, "chunks", len(docs), "stale_removed", removed)
	return len(docs), nil
}

// removeStaleChunks deletes chunks numbered first and above, left behind by
// an earlier, longer version of the page. Chunk ids of a page are contiguous
// from zero, so the scan stops at the first missing id.
func (p *Pipeline) removeStaleChunks(ctx context.Context, url string, first int) (int, error) {
	removed := 0
	for start := first; ; start += staleChunkBatch {
		ids := make([]core.ID, staleChunkBatch)
		for i := range ids {
			ids[i] = core.DocumentID(url, start+i)
		}
		found, err := p.writer.BulkFetch(ctx, ids...)
		if err != nil {
			return removed, err
		}

		var stale []core.ID
		for _, id := range ids {
			if _, ok := found[id]; !ok {
				break
			}
			stale = append(stale, id)
		}
		if len(stale) > 0 {
			if err := p.writer.DeleteDocuments(ctx, stale...); err != nil {
				return removed, err
			}
			removed += len(stale)
		}
		if len(stale) < staleChunkBatch {
			return removed, nil
		}
	}
}

// Release releases the worker pool.
// The pipeline should not be used after calling Release.
func (p *Pipeline) Release() {
	if p.pool != nil {
		p.pool.Release()
	}
}
