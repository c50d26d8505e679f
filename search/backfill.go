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

	"github.com/poiesic/sift/core"
	"github.com/poiesic/sift/storage"
)

// DroppedCandidate records a candidate removed during backfill.
// Err wraps core.ErrMalformedDocument.
type DroppedCandidate struct {
	Id  core.ID
	Err error
}

// BackfillResult holds the candidates that can be diversified, their
// stored embeddings (index-aligned), and the ones that were dropped.
type BackfillResult struct {
	Candidates []*core.Candidate
	Vectors    [][]float32
	Dropped    []DroppedCandidate
}

// Backfill attaches stored embeddings to every candidate in table with a
// single BulkFetch. Candidates whose id is missing from the store or whose
// stored embedding is empty are dropped, as are candidates still lacking
// text after the stored text is applied. Table order is preserved.
//
// When queryDim is positive, any kept embedding of a different length
// fails the whole call with a DimensionMismatchError.
func Backfill(ctx context.Context, store storage.SearchStore, table *CandidateTable, queryDim int) (*BackfillResult, error) {
	result := &BackfillResult{
		Candidates: []*core.Candidate{},
		Vectors:    [][]float32{},
	}
	if table == nil || table.Len() == 0 {
		return result, nil
	}

	stored, err := store.BulkFetch(ctx, table.IDs()...)
	if err != nil {
		return nil, newFetchError(StageBulkFetch, err)
	}

	for _, c := range table.Candidates() {
		data, ok := stored[c.Id]
		if !ok {
			result.Dropped = append(result.Dropped, DroppedCandidate{
				Id:  c.Id,
				Err: fmt.Errorf("%w: %s: %w", core.ErrMalformedDocument, c.Id, storage.ErrNotFound),
			})
			continue
		}

		if c.Text == "" {
			c.Text = data.Text
		}
		c.Embedding = data.Embedding

		if err := core.ValidateCandidate(c); err != nil {
			result.Dropped = append(result.Dropped, DroppedCandidate{Id: c.Id, Err: err})
			continue
		}

		if queryDim > 0 && len(c.Embedding) != queryDim {
			return nil, core.NewDimensionMismatch(queryDim, len(c.Embedding))
		}

		result.Candidates = append(result.Candidates, c)
		result.Vectors = append(result.Vectors, c.Embedding)
	}
	return result, nil
}
