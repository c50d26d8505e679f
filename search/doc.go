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

// Package search provides hybrid retrieval with diversity-aware reranking.
//
// The Retriever runs a fixed chain for every query:
//   - embed the query
//   - fetch vector and lexical candidates concurrently
//   - rescore the lexical candidates with BM25 over that hit set
//   - merge both lists by document id
//   - backfill stored embeddings and drop malformed candidates
//   - select the final results with Maximal Marginal Relevance
//
// Each stage is also exported on its own (Fetcher, ScoreBM25, Merge,
// Backfill, MMR) so callers can compose them differently.
package search
