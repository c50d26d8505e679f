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
	"maps"
	"math"
	"slices"
)

// Okapi BM25 parameters.
const (
	BM25K1      = 1.5
	BM25B       = 0.75
	BM25Epsilon = 0.25
)

// bm25 holds corpus statistics for one lexical hit set.
type bm25 struct {
	termFreqs []map[string]int
	docLens   []int
	avgDocLen float64
	idf       map[string]float64
}

func newBM25(corpus [][]string) *bm25 {
	m := &bm25{
		termFreqs: make([]map[string]int, len(corpus)),
		docLens:   make([]int, len(corpus)),
		idf:       make(map[string]float64),
	}

	docFreq := make(map[string]int)
	total := 0
	for i, doc := range corpus {
		tf := make(map[string]int, len(doc))
		for _, term := range doc {
			tf[term]++
		}
		for term := range tf {
			docFreq[term]++
		}
		m.termFreqs[i] = tf
		m.docLens[i] = len(doc)
		total += len(doc)
	}
	if len(corpus) > 0 {
		m.avgDocLen = float64(total) / float64(len(corpus))
	}

	// Terms in more than half the corpus get a negative idf; those are
	// floored to epsilon times the average idf. Sorted iteration keeps the
	// floating-point sum stable across runs.
	n := float64(len(corpus))
	var idfSum float64
	var negative []string
	for _, term := range slices.Sorted(maps.Keys(docFreq)) {
		df := docFreq[term]
		idf := math.Log(n-float64(df)+0.5) - math.Log(float64(df)+0.5)
		m.idf[term] = idf
		idfSum += idf
		if idf < 0 {
			negative = append(negative, term)
		}
	}
	if len(m.idf) > 0 {
		floor := BM25Epsilon * idfSum / float64(len(m.idf))
		for _, term := range negative {
			m.idf[term] = floor
		}
	}
	return m
}

func (m *bm25) scores(query []string) []float64 {
	out := make([]float64, len(m.termFreqs))
	if m.avgDocLen == 0 {
		return out
	}
	for _, term := range query {
		idf, ok := m.idf[term]
		if !ok {
			continue
		}
		for i, tf := range m.termFreqs {
			f := float64(tf[term])
			if f == 0 {
				continue
			}
			norm := 1 - BM25B + BM25B*float64(m.docLens[i])/m.avgDocLen
			out[i] += idf * f * (BM25K1 + 1) / (f + BM25K1*norm)
		}
	}
	return out
}

// ScoreBM25 scores each text against query with Okapi BM25, using the
// texts themselves as the corpus. Output is index-aligned with texts.
// Repeated query terms count once per occurrence. An empty texts slice
// yields an empty result; a corpus with no tokens scores all zeros.
func ScoreBM25(query string, texts []string) []float64 {
	if len(texts) == 0 {
		return []float64{}
	}
	corpus := make([][]string, len(texts))
	for i, t := range texts {
		corpus[i] = tokenizeDocument(t)
	}
	return newBM25(corpus).scores(tokenize(query))
}
