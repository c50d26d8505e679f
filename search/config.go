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

import "fmt"

const (
	// DefaultTopK is the number of candidates requested from each search primitive.
	DefaultTopK = 8

	// DefaultK is the number of results returned after diversification.
	DefaultK = 4

	// DefaultLambda weights relevance against redundancy in MMR.
	DefaultLambda = 0.7
)

// Config holds retrieval parameters.
type Config struct {
	// Dimensions is the expected query embedding length. Zero disables the check.
	Dimensions int

	// TopK is the per-primitive candidate count.
	TopK int

	// K is the final result count.
	K int

	// Lambda is the MMR relevance weight in [0, 1]. 1 ranks purely by
	// relevance, 0 purely by novelty.
	Lambda float64
}

// DefaultConfig returns the retrieval defaults.
func DefaultConfig() Config {
	return Config{
		TopK:   DefaultTopK,
		K:      DefaultK,
		Lambda: DefaultLambda,
	}
}

// Validate checks the configuration.
func (c Config) Validate() error {
	if c.Dimensions < 0 {
		return fmt.Errorf("%w: dimensions cannot be negative, got %d", ErrInvalidParams, c.Dimensions)
	}
	if c.TopK <= 0 {
		return fmt.Errorf("%w: topK must be positive, got %d", ErrInvalidParams, c.TopK)
	}
	if c.K <= 0 {
		return fmt.Errorf("%w: k must be positive, got %d", ErrInvalidParams, c.K)
	}
	if c.Lambda < 0 || c.Lambda > 1 {
		return fmt.Errorf("%w: lambda must be in [0, 1], got %g", ErrInvalidParams, c.Lambda)
	}
	return nil
}

// Params are the per-call retrieval knobs.
type Params struct {
	TopK   int
	K      int
	Lambda float64
}

// Params returns the configured per-call defaults.
func (c Config) Params() Params {
	return Params{TopK: c.TopK, K: c.K, Lambda: c.Lambda}
}
