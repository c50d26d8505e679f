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

import "errors"

var (
	// ErrDocumentWriterRequired is returned when a document writer is not provided.
	ErrDocumentWriterRequired = errors.New("document writer required")

	// ErrEmbedderRequired is returned when an embedder is not provided.
	ErrEmbedderRequired = errors.New("embedder required")

	// ErrInvalidMaxAttempts is returned when maxAttempts is not positive.
	ErrInvalidMaxAttempts = errors.New("maxAttempts must be positive")

	// ErrInvalidChunking is returned for a non-positive chunk size or an
	// overlap that is negative or not smaller than the chunk size.
	ErrInvalidChunking = errors.New("invalid chunk size or overlap")

	// ErrPageFailed wraps the failure of a single page.
	ErrPageFailed = errors.New("page ingestion failed")

	// ErrEmptyPage is returned for a page with no text after normalization.
	ErrEmptyPage = errors.New("page has no text")

	// ErrMissingURL is returned for a page without a URL.
	ErrMissingURL = errors.New("page has no URL")

	// ErrEmbeddingCountMismatch is returned when the embedder returns a
	// different number of vectors than chunks were sent.
	ErrEmbeddingCountMismatch = errors.New("embedding count does not match chunk count")
)
