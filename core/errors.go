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
	"errors"
	"fmt"
)

// Domain validation errors
var (
	// ErrInvalidDocument indicates a Document failed validation.
	ErrInvalidDocument = errors.New("invalid document")

	// ErrEmptyID indicates the document Id field is empty.
	ErrEmptyID = errors.New("document id cannot be empty")

	// ErrEmptyText indicates the document Text field is empty.
	ErrEmptyText = errors.New("text cannot be empty")

	// ErrEmptyEmbedding indicates an embedding vector has no components.
	ErrEmptyEmbedding = errors.New("embedding cannot be empty")

	// ErrNonFiniteEmbedding indicates an embedding contains NaN or Inf.
	ErrNonFiniteEmbedding = errors.New("embedding contains non-finite values")

	// ErrMalformedDocument indicates a candidate lacks the text or embedding
	// needed for diversification. It is never fatal to a retrieval call.
	ErrMalformedDocument = errors.New("malformed document")

	// ErrDimensionMismatch indicates two embeddings that must be compared
	// have different dimensionality.
	ErrDimensionMismatch = errors.New("embedding dimension mismatch")
)

// DimensionMismatchError reports the expected and actual dimensions.
// It matches ErrDimensionMismatch with errors.Is.
type DimensionMismatchError struct {
	Expected int
	Got      int
}

func (e *DimensionMismatchError) Error() string {
	return fmt.Sprintf("%s: expected %d, got %d", ErrDimensionMismatch, e.Expected, e.Got)
}

// Unwrap returns ErrDimensionMismatch.
func (e *DimensionMismatchError) Unwrap() error {
	return ErrDimensionMismatch
}

// NewDimensionMismatch creates a DimensionMismatchError.
func NewDimensionMismatch(expected, got int) error {
	return &DimensionMismatchError{Expected: expected, Got: got}
}
