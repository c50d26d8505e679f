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

// Package ingestion turns pages into searchable documents.
//
// Each page is normalized, split into overlapping character windows and
// embedded in one batch. Every chunk becomes a core.Document whose id is
// derived from the page URL and chunk index, so re-ingesting a page
// replaces its chunks in place.
//
// Pages are processed concurrently on an ants worker pool. Embedding calls
// are rate limited and retried with exponential backoff. Ingest waits for
// every page and returns the failures joined into one error.
//
// # Usage Example
//
//	pipeline, err := ingestion.NewPipeline(store, provider.Embedder(),
//	    ingestion.WithPoolSize(4),
//	    ingestion.WithProgress(os.Stderr),
//	)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer pipeline.Release()
//
//	stats, err := pipeline.Ingest(ctx, pages)
package ingestion
