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
	"cmp"
	"math"
	"slices"
	"sync"

	"github.com/coder/hnsw"
	"github.com/poiesic/sift/core"
)

// vectorIndex is an in-memory cosine HNSW graph over document embeddings.
// Its dimension is fixed by the first vector added.
//
// Replaced and deleted documents are removed from the id maps only; their
// nodes stay in the graph and are skipped at search time. coder/hnsw
// misbehaves when the last node of a layer is deleted.
type vectorIndex struct {
	mu      sync.RWMutex
	graph   *hnsw.Graph[uint64]
	idMap   map[core.ID]uint64
	keyMap  map[uint64]core.ID
	nextKey uint64
	dim     int
}

type vectorMatch struct {
	id    core.ID
	score float64
}

func newVectorIndex() *vectorIndex {
	graph := hnsw.NewGraph[uint64]()
	graph.Distance = hnsw.CosineDistance
	graph.M = 16
	graph.EfSearch = 20
	graph.Ml = 0.25

	return &vectorIndex{
		graph:  graph,
		idMap:  make(map[core.ID]uint64),
		keyMap: make(map[uint64]core.ID),
	}
}

// checkDim reports a DimensionMismatchError when v cannot live in this index.
func (vi *vectorIndex) checkDim(v []float32) error {
	vi.mu.RLock()
	defer vi.mu.RUnlock()
	if vi.dim != 0 && len(v) != vi.dim {
		return core.NewDimensionMismatch(vi.dim, len(v))
	}
	return nil
}

// add inserts or replaces the vector for id. Zero vectors are not indexed
// since their cosine similarity is undefined.
func (vi *vectorIndex) add(id core.ID, v []float32) error {
	vi.mu.Lock()
	defer vi.mu.Unlock()

	if vi.dim == 0 {
		vi.dim = len(v)
	} else if len(v) != vi.dim {
		return core.NewDimensionMismatch(vi.dim, len(v))
	}

	vi.removeLocked(id)

	vec, ok := NormalizeVector(v)
	if !ok {
		return nil
	}

	key := vi.nextKey
	vi.nextKey++
	vi.graph.Add(hnsw.MakeNode(key, vec))
	vi.idMap[id] = key
	vi.keyMap[key] = id
	return nil
}

func (vi *vectorIndex) remove(id core.ID) {
	vi.mu.Lock()
	defer vi.mu.Unlock()
	vi.removeLocked(id)
}

func (vi *vectorIndex) removeLocked(id core.ID) {
	if key, exists := vi.idMap[id]; exists {
		delete(vi.keyMap, key)
		delete(vi.idMap, id)
	}
}

// search returns up to k live matches ordered by descending score.
// Scores map cosine distance d in [0, 2] onto [0, 1] as 1 - d/2.
func (vi *vectorIndex) search(query []float32, k int) ([]vectorMatch, error) {
	vi.mu.RLock()
	defer vi.mu.RUnlock()

	if len(vi.idMap) == 0 {
		return []vectorMatch{}, nil
	}
	if len(query) != vi.dim {
		return nil, core.NewDimensionMismatch(vi.dim, len(query))
	}

	q, ok := NormalizeVector(query)
	if !ok {
		return []vectorMatch{}, nil
	}

	// Ask for enough extra nodes to cover orphaned entries.
	orphans := vi.graph.Len() - len(vi.idMap)
	want := min(k+orphans, vi.graph.Len())

	nodes := vi.graph.Search(q, want)
	matches := make([]vectorMatch, 0, len(nodes))
	for _, node := range nodes {
		id, live := vi.keyMap[node.Key]
		if !live {
			continue
		}
		d := vi.graph.Distance(q, node.Value)
		matches = append(matches, vectorMatch{id: id, score: 1.0 - float64(d)/2.0})
	}
	slices.SortStableFunc(matches, func(a, b vectorMatch) int {
		return cmp.Compare(b.score, a.score)
	})
	if len(matches) > k {
		matches = matches[:k]
	}
	return matches, nil
}

func (vi *vectorIndex) len() int {
	vi.mu.RLock()
	defer vi.mu.RUnlock()
	return len(vi.idMap)
}

// NormalizeVector returns a unit-length copy of v.
// The second result is false for empty or zero vectors.
func NormalizeVector(v []float32) ([]float32, bool) {
	if len(v) == 0 {
		return v, false
	}

	var sumSquares float64
	for _, val := range v {
		sumSquares += float64(val) * float64(val)
	}
	if sumSquares == 0 {
		return make([]float32, len(v)), false
	}

	inv := float32(1.0 / math.Sqrt(sumSquares))
	result := make([]float32, len(v))
	for i, val := range v {
		result[i] = val * inv
	}
	return result, true
}
