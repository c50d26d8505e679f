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
	"errors"
	"fmt"
)

var (
	// ErrStoreRequired is returned when a search store is not provided.
	ErrStoreRequired = errors.New("search store required")

	// ErrEmbedderRequired is returned when an embedder is not provided.
	ErrEmbedderRequired = errors.New("embedder required")

	// ErrFetchFailed matches every FetchError.
	ErrFetchFailed = errors.New("fetch failed")

	// ErrEmptyEmbedding is the cause reported when the embedder returns no vector.
	ErrEmptyEmbedding = errors.New("embedder returned an empty vector")

	// ErrInvalidParams is returned for non-positive topK or k, or a lambda
	// outside [0, 1] in configuration.
	ErrInvalidParams = errors.New("invalid retrieval parameters")
)

// Stage names the external call that failed.
type Stage string

const (
	StageEmbed         Stage = "embed"
	StageVectorSearch  Stage = "vector-search"
	StageLexicalSearch Stage = "lexical-search"
	StageBulkFetch     Stage = "bulk-fetch"
)

// FetchError reports a failed call to the embedder or the store.
// It aborts the query; there is no partial result.
type FetchError struct {
	Stage Stage
	Cause error
}

func (e *FetchError) Error() string {
	return fmt.Sprintf("%s: %s: %v", ErrFetchFailed, e.Stage, e.Cause)
}

// Unwrap exposes both ErrFetchFailed and the underlying cause.
func (e *FetchError) Unwrap() []error {
	return []error{ErrFetchFailed, e.Cause}
}

func newFetchError(stage Stage, cause error) error {
	return &FetchError{Stage: stage, Cause: cause}
}
