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

package badger

import (
	"context"
	"fmt"
	"strings"

	"github.com/blevesearch/bleve/v2"
	"github.com/poiesic/sift/core"
)

// contentField holds title and text concatenated, matching a full-text
// index declared over both properties.
const contentField = "content"

// lexicalDocument is the shape handed to bleve.
type lexicalDocument struct {
	Content string `json:"content"`
}

type lexicalMatch struct {
	id    core.ID
	score float64
}

// lexicalIndex is an in-memory bleve index over document title and text.
// bleve.Index is safe for concurrent use.
type lexicalIndex struct {
	index bleve.Index
}

func newLexicalIndex() (*lexicalIndex, error) {
	idx, err := bleve.NewMemOnly(bleve.NewIndexMapping())
	if err != nil {
		return nil, fmt.Errorf("failed to create lexical index: %w", err)
	}
	return &lexicalIndex{index: idx}, nil
}

func lexicalContent(doc *core.Document) string {
	if doc.Title == "" {
		return doc.Text
	}
	return doc.Title + "\n" + doc.Text
}

// put indexes or re-indexes documents in one batch.
func (li *lexicalIndex) put(docs ...*core.Document) error {
	if len(docs) == 0 {
		return nil
	}
	batch := li.index.NewBatch()
	for _, doc := range docs {
		if err := batch.Index(string(doc.Id), lexicalDocument{Content: lexicalContent(doc)}); err != nil {
			return fmt.Errorf("failed to index document %s: %w", doc.Id, err)
		}
	}
	if err := li.index.Batch(batch); err != nil {
		return fmt.Errorf("failed to execute batch: %w", err)
	}
	return nil
}

func (li *lexicalIndex) remove(ids ...core.ID) error {
	if len(ids) == 0 {
		return nil
	}
	batch := li.index.NewBatch()
	for _, id := range ids {
		batch.Delete(string(id))
	}
	if err := li.index.Batch(batch); err != nil {
		return fmt.Errorf("failed to delete documents: %w", err)
	}
	return nil
}

// search runs a match query against the content field.
// Blank queries match nothing.
func (li *lexicalIndex) search(ctx context.Context, text string, limit int) ([]lexicalMatch, error) {
	if strings.TrimSpace(text) == "" {
		return []lexicalMatch{}, nil
	}

	query := bleve.NewMatchQuery(text)
	query.SetField(contentField)

	req := bleve.NewSearchRequest(query)
	req.Size = limit

	result, err := li.index.SearchInContext(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("search failed: %w", err)
	}

	matches := make([]lexicalMatch, 0, len(result.Hits))
	for _, hit := range result.Hits {
		matches = append(matches, lexicalMatch{id: core.ID(hit.ID), score: hit.Score})
	}
	return matches, nil
}

func (li *lexicalIndex) close() error {
	return li.index.Close()
}
