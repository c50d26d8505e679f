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
	"bufio"
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/poiesic/sift/core"
)

// Page is one source page to ingest. Exactly one of Text or HTML is
// normally set; HTML is cleaned when Text is empty.
type Page struct {
	URL   string `json:"url"`
	Title string `json:"title,omitempty"`
	Text  string `json:"text,omitempty"`
	HTML  string `json:"html,omitempty"`
}

// content returns the page's title and normalized text.
// The title falls back to the HTML <title> and then to the URL.
func (p Page) content() (title, text string, err error) {
	title = strings.TrimSpace(p.Title)
	if p.Text != "" || p.HTML == "" {
		text = NormalizeWhitespace(p.Text)
	} else {
		var htmlTitle string
		htmlTitle, text, err = CleanHTML(p.HTML)
		if err != nil {
			return "", "", err
		}
		if title == "" {
			title = htmlTitle
		}
	}
	if title == "" {
		title = p.URL
	}
	return title, text, nil
}

// ChunkTitle names chunk index of a page titled title.
func ChunkTitle(title string, index int) string {
	return fmt.Sprintf("%s [part %d]", title, index+1)
}

// BuildDocuments splits a page into documents without embeddings.
func BuildDocuments(page Page, chunkSize, overlap int) ([]*core.Document, error) {
	if strings.TrimSpace(page.URL) == "" {
		return nil, ErrMissingURL
	}
	title, text, err := page.content()
	if err != nil {
		return nil, err
	}
	chunks, err := ChunkText(text, chunkSize, overlap)
	if err != nil {
		return nil, err
	}
	if len(chunks) == 0 {
		return nil, ErrEmptyPage
	}

	docs := make([]*core.Document, len(chunks))
	for i, chunk := range chunks {
		docs[i] = &core.Document{
			Id:    core.DocumentID(page.URL, i),
			Title: ChunkTitle(title, i),
			URL:   page.URL,
			Text:  chunk,
		}
	}
	return docs, nil
}

// ReadPages decodes newline-delimited JSON pages. Blank lines are skipped.
func ReadPages(r io.Reader) ([]Page, error) {
	var pages []Page
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 64*1024*1024)
	line := 0
	for scanner.Scan() {
		line++
		raw := strings.TrimSpace(scanner.Text())
		if raw == "" {
			continue
		}
		var page Page
		if err := json.Unmarshal([]byte(raw), &page); err != nil {
			return nil, fmt.Errorf("line %d: %w", line, err)
		}
		pages = append(pages, page)
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	return pages, nil
}
