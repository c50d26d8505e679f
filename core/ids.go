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
	"encoding/hex"
	"strconv"

	"github.com/go-crypt/x/blake2b"
)

// idSize is the digest size in bytes (128 bits).
const idSize = 16

// IDFromContent generates a deterministic ID from text content using BLAKE2b hashing.
// Identical content always produces identical IDs.
func IDFromContent(text string) ID {
	h, _ := blake2b.New(idSize, nil)
	h.Write([]byte(text))
	return ID(hex.EncodeToString(h.Sum(nil)))
}

// DocumentID derives the ID of a chunk from its source URL and chunk index.
// Re-ingesting the same page produces the same IDs, which makes ingestion
// an idempotent upsert.
func DocumentID(sourceURL string, chunkIndex int) ID {
	return IDFromContent(sourceURL + "#chunk-" + strconv.Itoa(chunkIndex))
}
