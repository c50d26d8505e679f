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
	"log/slog"

	"github.com/poiesic/sift/core"
)

// SearchMonitor provides hooks to observe the retrieval process.
// Implement this interface to track intermediate steps and results.
// Callbacks run synchronously on the retrieving goroutine.
type SearchMonitor interface {
	Start(query string)
	AfterEmbed(dimensions int)
	AfterFetch(vectorHits, lexicalHits []core.Hit)
	AfterLexicalScoring(scores []float64)
	AfterMerge(ids []core.ID)
	CandidateDropped(id core.ID, reason error)
	AfterBackfill(kept []*core.Candidate)
	Finish(results core.ResultSet)
}

// noopMonitor is a no-op implementation of SearchMonitor
type noopMonitor struct{}

var _ SearchMonitor = (*noopMonitor)(nil)

func (n *noopMonitor) Start(_ string)                      {}
func (n *noopMonitor) AfterEmbed(_ int)                    {}
func (n *noopMonitor) AfterFetch(_, _ []core.Hit)          {}
func (n *noopMonitor) AfterLexicalScoring(_ []float64)     {}
func (n *noopMonitor) AfterMerge(_ []core.ID)              {}
func (n *noopMonitor) CandidateDropped(_ core.ID, _ error) {}
func (n *noopMonitor) AfterBackfill(_ []*core.Candidate)   {}
func (n *noopMonitor) Finish(_ core.ResultSet)             {}

// LogMonitor reports every stage to a logger at Info level.
type LogMonitor struct {
	Logger *slog.Logger
}

var _ SearchMonitor = (*LogMonitor)(nil)

// NewLogMonitor creates a LogMonitor. A nil logger selects slog.Default().
func NewLogMonitor(logger *slog.Logger) *LogMonitor {
	if logger == nil {
		logger = slog.Default()
	}
	return &LogMonitor{Logger: logger.With("component", "search-monitor")}
}

func (m *LogMonitor) Start(query string) {
	m.Logger.Info("retrieval started", "query", query)
}

func (m *LogMonitor) AfterEmbed(dimensions int) {
	m.Logger.Info("query embedded", "dimensions", dimensions)
}

func (m *LogMonitor) AfterFetch(vectorHits, lexicalHits []core.Hit) {
	m.Logger.Info("candidates fetched", "vector", len(vectorHits), "lexical", len(lexicalHits))
}

func (m *LogMonitor) AfterLexicalScoring(scores []float64) {
	m.Logger.Info("lexical hits rescored", "scores", scores)
}

func (m *LogMonitor) AfterMerge(ids []core.ID) {
	m.Logger.Info("candidates merged", "count", len(ids))
}

func (m *LogMonitor) CandidateDropped(id core.ID, reason error) {
	m.Logger.Warn("candidate dropped", "id", id, "reason", reason)
}

func (m *LogMonitor) AfterBackfill(kept []*core.Candidate) {
	m.Logger.Info("embeddings backfilled", "kept", len(kept))
}

func (m *LogMonitor) Finish(results core.ResultSet) {
	m.Logger.Info("retrieval finished", "results", len(results))
}
