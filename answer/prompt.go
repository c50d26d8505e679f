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

package answer

import (
	"fmt"
	"strings"

	"github.com/poiesic/sift/core"
)

// DefaultContextBudget is how many characters of each document's text
// are included in the context.
const DefaultContextBudget = 1200

// SystemPrompt instructs the generator to answer from context only.
const SystemPrompt = "Answer ONLY from the Context. If not present, apologize and say that you don't know. " +
	"If the user didn't ask a question, simply ask them to ask a question and tell them that you " +
	"can only answer questions. Be concise and don't provide sources."

// BuildContext renders results as numbered blocks of title, URL and text,
// separated by blank lines. Each text is cut to budget characters;
// a non-positive budget keeps the whole text.
func BuildContext(results core.ResultSet, budget int) string {
	blocks := make([]string, len(results))
	for i, c := range results {
		blocks[i] = fmt.Sprintf("[%d] %s\nURL: %s\n%s", i+1, c.Title, c.URL, truncate(c.Text, budget))
	}
	return strings.Join(blocks, "\n\n")
}

// BuildPrompt frames the question and context for the generator.
func BuildPrompt(question, context string) string {
	return fmt.Sprintf("Question: %s\n\nContext:\n%s\n\nAnswer:", question, context)
}

func truncate(text string, budget int) string {
	if budget <= 0 {
		return text
	}
	runes := []rune(text)
	if len(runes) <= budget {
		return text
	}
	return string(runes[:budget])
}
