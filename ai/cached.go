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

package ai

import (
	"context"
	"encoding/hex"

	"github.com/go-crypt/x/blake2b"
	lru "github.com/hashicorp/golang-lru/v2"
)

// DefaultEmbeddingCacheSize is the number of query embeddings kept in memory.
const DefaultEmbeddingCacheSize = 1000

// CachedEmbedder wraps an Embedder with an LRU cache keyed by text and model.
// Repeated queries skip the embedding round trip. Empty results are not cached.
type CachedEmbedder struct {
	inner Embedder
	model string
	cache *lru.Cache[string, []float32]
}

// NewCachedEmbedder wraps inner with a cache of the given size.
// A non-positive size selects DefaultEmbeddingCacheSize.
func NewCachedEmbedder(inner Embedder, model string, cacheSize int) *CachedEmbedder {
	if cacheSize <= 0 {
		cacheSize = DefaultEmbeddingCacheSize
	}
	cache, _ := lru.New[string, []float32](cacheSize)
	return &CachedEmbedder{
		inner: inner,
		model: model,
		cache: cache,
	}
}

func (c *CachedEmbedder) cacheKey(text string) string {
	h, _ := blake2b.New256(nil)
	h.Write([]byte(text + "\x00" + c.model))
	return hex.EncodeToString(h.Sum(nil))
}

// EmbedText returns the cached embedding if present, otherwise computes and caches it.
func (c *CachedEmbedder) EmbedText(ctx context.Context, text string) ([]float32, error) {
	key := c.cacheKey(text)
	if vec, ok := c.cache.Get(key); ok {
		return vec, nil
	}

	vec, err := c.inner.EmbedText(ctx, text)
	if err != nil {
		return nil, err
	}
	if len(vec) > 0 {
		c.cache.Add(key, vec)
	}
	return vec, nil
}

// EmbedTexts checks the cache per text and embeds only the misses in one batch.
func (c *CachedEmbedder) EmbedTexts(ctx context.Context, texts []string) ([][]float32, error) {
	if len(texts) == 0 {
		return [][]float32{}, nil
	}

	results := make([][]float32, len(texts))
	missIdx := make([]int, 0, len(texts))
	missTexts := make([]string, 0, len(texts))

	for i, text := range texts {
		if vec, ok := c.cache.Get(c.cacheKey(text)); ok {
			results[i] = vec
			continue
		}
		missIdx = append(missIdx, i)
		missTexts = append(missTexts, text)
	}

	if len(missTexts) == 0 {
		return results, nil
	}

	fresh, err := c.inner.EmbedTexts(ctx, missTexts)
	if err != nil {
		return nil, err
	}

	for j, idx := range missIdx {
		if j >= len(fresh) {
			break
		}
		results[idx] = fresh[j]
		if len(fresh[j]) > 0 {
			c.cache.Add(c.cacheKey(texts[idx]), fresh[j])
		}
	}
	return results, nil
}

// Len reports how many embeddings are cached.
func (c *CachedEmbedder) Len() int {
	return c.cache.Len()
}

// Inner returns the wrapped embedder.
func (c *CachedEmbedder) Inner() Embedder {
	return c.inner
}
