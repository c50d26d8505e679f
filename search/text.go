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

import "strings"

// MaxDocumentTokens caps how much of each document BM25 reads.
const MaxDocumentTokens = 2000

// tokenize splits text on whitespace. Case and punctuation are kept, so
// "Fasting" and "fasting," are different terms.
func tokenize(text string) []string {
	return strings.Fields(text)
}

// tokenizeDocument tokenizes and truncates to MaxDocumentTokens.
func tokenizeDocument(text string) []string {
	tokens := tokenize(text)
	if len(tokens) > MaxDocumentTokens {
		tokens = tokens[:MaxDocumentTokens]
	}
	return tokens
}
