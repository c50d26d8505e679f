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

// Package ai provides abstractions for the AI services sift consumes.
//
// Retrieval needs only an Embedder: the query is embedded once and the
// vector drives both the vector search and diversification. Answer
// synthesis additionally needs a Generator.
//
// # Implementation Packages
//
//   - ai/openai: langchaingo clients for OpenAI-compatible APIs (Ollama for
//     embeddings, OpenRouter for generation)
//   - ai/mock: deterministic test doubles
//
// Public constructors (openai.NewProvider, openai.NewEmbedder) return
// interface types. Mock constructors return concrete types so tests can
// inject behavior and assert call counts.
//
// # Caching
//
// CachedEmbedder wraps any Embedder with an LRU keyed by text and model name.
// The retriever uses it for query embeddings when a cache size is configured.
//
// # Usage Example
//
//	provider, err := openai.NewProvider(ai.NewConfig(ai.WithAPIKey(key)))
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer provider.Close()
//
//	vec, err := provider.Embedder().EmbedText(ctx, "how is the panel tested?")
//	reply, err := provider.Generator().Generate(ctx, system, prompt)
package ai
