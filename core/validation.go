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

import (
	"fmt"
	"math"
)

// ValidateDocument validates a Document according to domain rules.
//
// Validation rules:
//   - Id must not be empty
//   - Text must not be empty
//   - Embedding, when present, must contain only finite values
//
// NOT validated:
//   - Embedding presence (a document without one is stored but can never
//     reach diversification)
//   - Title and URL (either may be empty)
func ValidateDocument(doc *Document) error {
	if doc == nil {
		return fmt.Errorf("%w: document is nil", ErrInvalidDocument)
	}

	if doc.Id == "" {
		return fmt.Errorf("%w: %w", ErrInvalidDocument, ErrEmptyID)
	}

	if doc.Text == "" {
		return fmt.Errorf("%w: %w", ErrInvalidDocument, ErrEmptyText)
	}

	if len(doc.Embedding) > 0 {
		if err := ValidateEmbedding(doc.Embedding); err != nil {
			return fmt.Errorf("%w: %w", ErrInvalidDocument, err)
		}
	}

	return nil
}

// ValidateEmbedding checks that an embedding is non-empty and finite.
func ValidateEmbedding(v []float32) error {
	if len(v) == 0 {
		return ErrEmptyEmbedding
	}
	for i, x := range v {
		f := float64(x)
		if math.IsNaN(f) || math.IsInf(f, 0) {
			return fmt.Errorf("%w: component %d", ErrNonFiniteEmbedding, i)
		}
	}
	return nil
}

// ValidateCandidate checks that a candidate can take part in diversification:
// it must carry text and a non-empty, finite embedding.
func ValidateCandidate(c *Candidate) error {
	if c == nil {
		return fmt.Errorf("%w: candidate is nil", ErrMalformedDocument)
	}
	if c.Text == "" {
		return fmt.Errorf("%w: %s: %w", ErrMalformedDocument, c.Id, ErrEmptyText)
	}
	if err := ValidateEmbedding(c.Embedding); err != nil {
		return fmt.Errorf("%w: %s: %w", ErrMalformedDocument, c.Id, err)
	}
	return nil
}
