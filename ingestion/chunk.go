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

package ingestion

import (
	"regexp"
	"strings"
	"unicode/utf8"
)

const (
	// DefaultChunkSize is the maximum chunk length in characters.
	DefaultChunkSize = 1800

	// DefaultChunkOverlap is how many characters consecutive chunks share.
	DefaultChunkOverlap = 200
)

var (
	lineBreaks    = regexp.MustCompile(`\r\n?`)
	horizontalWS  = regexp.MustCompile(`[ \t]+`)
	blankLineRuns = regexp.MustCompile(`\n\s*\n\s*\n+`)
)

// NormalizeWhitespace unifies line endings, collapses runs of spaces and
// tabs to one space, collapses three or more line breaks (with any
// whitespace between them) to a single blank line, and trims the result.
func NormalizeWhitespace(text string) string {
	text = lineBreaks.ReplaceAllString(text, "\n")
	text = horizontalWS.ReplaceAllString(text, " ")
	text = blankLineRuns.ReplaceAllString(text, "\n\n")
	return strings.TrimSpace(text)
}

// ChunkText splits text into windows of at most maxChars characters, each
// starting overlap characters before the previous one ended. Lengths are
// counted in runes. Text no longer than maxChars is returned as one chunk;
// blank text yields no chunks.
//
// maxChars must be positive and overlap must be in [0, maxChars).
func ChunkText(text string, maxChars, overlap int) ([]string, error) {
	if maxChars <= 0 || overlap < 0 || overlap >= maxChars {
		return nil, ErrInvalidChunking
	}

	text = strings.TrimSpace(text)
	if text == "" {
		return []string{}, nil
	}
	if utf8.RuneCountInString(text) <= maxChars {
		return []string{text}, nil
	}

	runes := []rune(text)
	var chunks []string
	for start := 0; start < len(runes); {
		end := min(len(runes), start+maxChars)
		chunks = append(chunks, string(runes[start:end]))
		if end == len(runes) {
			break
		}
		start = end - overlap
	}
	return chunks, nil
}
