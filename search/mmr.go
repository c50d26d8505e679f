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
	"math"

	"github.com/poiesic/sift/core"
)

// cosineEpsilon keeps cosine finite for zero vectors.
const cosineEpsilon = 1e-9

// Cosine returns a·b / (‖a‖‖b‖ + 1e-9), accumulated in float64.
// A zero vector has similarity 0 to everything. Only the shared prefix
// is compared when lengths differ; use Diversify to reject that case.
func Cosine(a, b []float32) float64 {
	n := min(len(a), len(b))
	var dot, na, nb float64
	for i := 0; i < n; i++ {
		x, y := float64(a[i]), float64(b[i])
		dot += x * y
		na += x * x
		nb += y * y
	}
	return dot / (math.Sqrt(na)*math.Sqrt(nb) + cosineEpsilon)
}

// MMR greedily selects min(k, len(vectors)) indices by Maximal Marginal
// Relevance and returns them in selection order.
//
// The first pick is the vector most similar to query. Each later pick
// maximizes lambda*rel(c) - (1-lambda)*max sim(c, s) over selected s.
// Ties go to the lowest index. lambda is clamped to [0, 1]; k <= 0
// selects nothing. Vectors are assumed to share query's length.
func MMR(query []float32, vectors [][]float32, lambda float64, k int) []int {
	n := len(vectors)
	if k <= 0 || n == 0 {
		return []int{}
	}
	k = min(k, n)
	lambda = max(0, min(1, lambda))

	relevance := make([]float64, n)
	for i, v := range vectors {
		relevance[i] = Cosine(v, query)
	}

	selected := make([]int, 0, k)
	taken := make([]bool, n)
	// maxSim[i] is the highest similarity between i and any selected vector.
	maxSim := make([]float64, n)
	for i := range maxSim {
		maxSim[i] = math.Inf(-1)
	}

	first := 0
	for i := 1; i < n; i++ {
		if relevance[i] > relevance[first] {
			first = i
		}
	}
	selected = append(selected, first)
	taken[first] = true

	for len(selected) < k {
		last := vectors[selected[len(selected)-1]]
		best := -1
		bestScore := math.Inf(-1)
		for i := 0; i < n; i++ {
			if taken[i] {
				continue
			}
			if sim := Cosine(vectors[i], last); sim > maxSim[i] {
				maxSim[i] = sim
			}
			score := lambda*relevance[i] - (1-lambda)*maxSim[i]
			if best < 0 || score > bestScore {
				best = i
				bestScore = score
			}
		}
		selected = append(selected, best)
		taken[best] = true
	}
	return selected
}

// Diversify checks that every vector matches the query's length and then
// runs MMR. A mismatch fails fast with a DimensionMismatchError.
func Diversify(query []float32, vectors [][]float32, lambda float64, k int) ([]int, error) {
	for _, v := range vectors {
		if len(v) != len(query) {
			return nil, core.NewDimensionMismatch(len(query), len(v))
		}
	}
	return MMR(query, vectors, lambda, k), nil
}
