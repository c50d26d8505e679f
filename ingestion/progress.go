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
	"fmt"
	"io"
	"sync"
	"time"
)

// ProgressTracker reports ingestion progress to a writer.
// It is safe for concurrent use by pipeline workers.
type ProgressTracker struct {
	writer         io.Writer
	total          int
	pages          int
	documents      int
	failed         int
	reportInterval int
	lastReported   int
	startTime      time.Time
	started        bool
	mu             sync.Mutex
}

// NewProgressTracker creates a tracker for total pages that reports every
// reportInterval completed pages. A nil writer discards output.
func NewProgressTracker(writer io.Writer, total, reportInterval int) *ProgressTracker {
	if writer == nil {
		writer = io.Discard
	}
	if reportInterval < 1 {
		reportInterval = 1
	}
	return &ProgressTracker{
		writer:         writer,
		total:          total,
		reportInterval: reportInterval,
	}
}

// Start begins tracking progress.
func (p *ProgressTracker) Start() {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.startTime = time.Now()
	p.started = true
	p.pages = 0
	p.documents = 0
	p.failed = 0
	p.lastReported = 0
}

// PageDone records a finished page and the documents it produced.
func (p *ProgressTracker) PageDone(documents int) {
	p.advance(documents, false)
}

// PageFailed records a page that produced nothing.
func (p *ProgressTracker) PageFailed() {
	p.advance(0, true)
}

func (p *ProgressTracker) advance(documents int, failed bool) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if !p.started {
		return
	}

	p.pages = min(p.pages+1, p.total)
	p.documents += documents
	if failed {
		p.failed++
	}

	if p.pages-p.lastReported >= p.reportInterval {
		p.report()
		p.lastReported = p.pages
	}
}

// Finish prints final progress.
func (p *ProgressTracker) Finish() {
	p.mu.Lock()
	defer p.mu.Unlock()

	if !p.started {
		return
	}

	p.report()
	fmt.Fprintln(p.writer)
}

// Elapsed returns the time elapsed since Start was called.
func (p *ProgressTracker) Elapsed() time.Duration {
	p.mu.Lock()
	defer p.mu.Unlock()

	if !p.started {
		return 0
	}
	return time.Since(p.startTime)
}

// report prints the current progress. Must be called with lock held.
func (p *ProgressTracker) report() {
	elapsed := time.Since(p.startTime)
	rate := float64(p.pages) / elapsed.Seconds()

	percentage := 0.0
	if p.total > 0 {
		percentage = float64(p.pages) / float64(p.total) * 100.0
	}

	fmt.Fprintf(p.writer, "\rIngested: %d/%d pages (%.1f%%), %d documents, %d failed - %.1f pages/s",
		p.pages, p.total, percentage, p.documents, p.failed, rate)
}
