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

package core

//go:generate go run ../cmd/musgen

import "time"

// ID is a content-addressed document identifier, encoded as lowercase hex.
// See DocumentID for how IDs are derived.
type ID string

// Document is a chunk of source text stored with its embedding.
// Documents are written by ingestion and replaced wholesale on upsert.
type Document struct {
	Id         ID
	Title      string
	URL        string
	Text       string
	Embedding  []float32 // Fixed-dimension embedding of Text
	InsertedAt time.Time // When the document was first written
	UpdatedAt  time.Time // When the document was last replaced
}

// Query is the transient form of a user question.
type Query struct {
	Text      string
	Embedding []float32
}

// Hit is a single row returned by a store search primitive.
// Hits are ordered by the store's own descending relevance.
type Hit struct {
	Id    ID
	Title string
	URL   string
	Text  string
	Score float64
}

// StoredEmbedding is the authoritative embedding and text for a document,
// as returned by a bulk fetch.
type StoredEmbedding struct {
	Embedding []float32
	Text      string
}

// Candidate is a per-query record combining a document with the scores
// it earned from vector and lexical retrieval. Candidates are never persisted.
type Candidate struct {
	Id        ID
	Title     string
	URL       string
	Text      string
	Embedding []float32

	// VectorScore is the similarity reported by vector search, 0 if absent.
	VectorScore float64
	// LexicalScore is the BM25 score from lexical rescoring, 0 if absent.
	LexicalScore float64

	// InVector and InLexical record which retrieval paths produced the
	// candidate, so that a true zero score can be told apart from absence.
	InVector  bool
	InLexical bool
}

// ResultSet is the ordered output of a retrieval call.
// Order is the presentation order: most relevant first.
type ResultSet []*Candidate

// IDs returns the candidate IDs in result order.
func (rs ResultSet) IDs() []ID {
	ids := make([]ID, len(rs))
	for i, c := range rs {
		ids[i] = c.Id
	}
	return ids
}
