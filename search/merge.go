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

import "github.com/poiesic/sift/core"

// CandidateTable is an insertion-ordered set of candidates keyed by id.
type CandidateTable struct {
	order []core.ID
	byID  map[core.ID]*core.Candidate
}

// NewCandidateTable creates an empty table.
func NewCandidateTable() *CandidateTable {
	return &CandidateTable{byID: make(map[core.ID]*core.Candidate)}
}

// Len returns the number of distinct candidates.
func (t *CandidateTable) Len() int {
	return len(t.order)
}

// Get returns the candidate with the given id.
func (t *CandidateTable) Get(id core.ID) (*core.Candidate, bool) {
	c, ok := t.byID[id]
	return c, ok
}

// IDs returns candidate ids in insertion order.
func (t *CandidateTable) IDs() []core.ID {
	out := make([]core.ID, len(t.order))
	copy(out, t.order)
	return out
}

// Candidates returns the candidates in insertion order.
func (t *CandidateTable) Candidates() []*core.Candidate {
	out := make([]*core.Candidate, len(t.order))
	for i, id := range t.order {
		out[i] = t.byID[id]
	}
	return out
}

// upsert returns the candidate for hit.Id, creating it if needed, and
// fills any empty descriptive field from hit. Non-empty fields are kept.
func (t *CandidateTable) upsert(hit core.Hit) (*core.Candidate, bool) {
	c, exists := t.byID[hit.Id]
	if !exists {
		c = &core.Candidate{Id: hit.Id}
		t.byID[hit.Id] = c
		t.order = append(t.order, hit.Id)
	}
	if c.Title == "" {
		c.Title = hit.Title
	}
	if c.URL == "" {
		c.URL = hit.URL
	}
	if c.Text == "" {
		c.Text = hit.Text
	}
	return c, exists
}

// AddVectorHit merges a vector search hit. The first score seen for an id wins.
func (t *CandidateTable) AddVectorHit(hit core.Hit) {
	c, _ := t.upsert(hit)
	if !c.InVector {
		c.VectorScore = hit.Score
		c.InVector = true
	}
}

// AddLexicalHit merges a lexical hit with its BM25 score. The first score
// seen for an id wins.
func (t *CandidateTable) AddLexicalHit(hit core.Hit, bm25Score float64) {
	c, _ := t.upsert(hit)
	if !c.InLexical {
		c.LexicalScore = bm25Score
		c.InLexical = true
	}
}

// Merge combines both hit lists into one table. Vector hits are inserted
// first, so the table order does not depend on which search finished first.
// lexicalScores is index-aligned with lexicalHits; a missing entry scores 0.
// The lexical hit's own store score is not used.
func Merge(vectorHits, lexicalHits []core.Hit, lexicalScores []float64) *CandidateTable {
	t := NewCandidateTable()
	for _, hit := range vectorHits {
		t.AddVectorHit(hit)
	}
	for i, hit := range lexicalHits {
		var score float64
		if i < len(lexicalScores) {
			score = lexicalScores[i]
		}
		t.AddLexicalHit(hit, score)
	}
	return t
}
