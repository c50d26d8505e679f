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
	"github.com/poiesic/sift/core"
)

// Key prefixes for different data types
const (
	documentPrefix = "doc:"
)

// makeDocumentKey generates a key for a document by ID.
// Format: doc:<hex id>
func makeDocumentKey(id core.ID) []byte {
	return []byte(documentPrefix + string(id))
}

// documentIDFromKey recovers the document ID from a primary key.
func documentIDFromKey(key []byte) core.ID {
	return core.ID(key[len(documentPrefix):])
}
