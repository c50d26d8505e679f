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
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/poiesic/sift/ai"
	"github.com/poiesic/sift/core"
)

var (
	// ErrRetrieverRequired is returned when a retriever is not provided.
	ErrRetrieverRequired = errors.New("retriever required")

	// ErrGeneratorRequired is returned when a generator is not provided.
	ErrGeneratorRequired = errors.New("generator required")

	// ErrGenerationFailed wraps generator errors.
	ErrGenerationFailed = errors.New("answer generation failed")
)

// Retriever returns diversified results for a query.
type Retriever interface {
	Retrieve(ctx context.Context, query string) (core.ResultSet, error)
}

// Answer is a generated answer and the documents it was drawn from.
type Answer struct {
	Question string
	Text     string
	Sources  core.ResultSet
}

// Answerer answers questions from retrieved context.
type Answerer struct {
	retriever    Retriever
	generator    ai.Generator
	budget       int
	systemPrompt string
	logger       *slog.Logger
}

// Option configures an Answerer.
type Option func(*Answerer) error

// WithContextBudget sets how many characters of each document are sent.
// Default is DefaultContextBudget; a non-positive value sends whole texts.
func WithContextBudget(chars int) Option {
	return func(a *Answerer) error {
		a.budget = chars
		return nil
	}
}

// WithSystemPrompt replaces the system instruction.
// Default is SystemPrompt.
func WithSystemPrompt(prompt string) Option {
	return func(a *Answerer) error {
		if strings.TrimSpace(prompt) == "" {
			return errors.New("system prompt cannot be blank")
		}
		a.systemPrompt = prompt
		return nil
	}
}

// WithLogger sets a custom logger.
// Default is slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(a *Answerer) error {
		if logger == nil {
			logger = slog.Default()
		}
		a.logger = logger
		return nil
	}
}

// NewAnswerer creates a new answerer.
func NewAnswerer(retriever Retriever, generator ai.Generator, opts ...Option) (*Answerer, error) {
	if retriever == nil {
		return nil, ErrRetrieverRequired
	}
	if generator == nil {
		return nil, ErrGeneratorRequired
	}

	a := &Answerer{
		retriever:    retriever,
		generator:    generator,
		budget:       DefaultContextBudget,
		systemPrompt: SystemPrompt,
		logger:       slog.Default().With("component", "answerer"),
	}
	for _, opt := range opts {
		if err := opt(a); err != nil {
			return nil, err
		}
	}
	return a, nil
}

// Ask retrieves context for question and generates an answer from it.
func (a *Answerer) Ask(ctx context.Context, question string) (*Answer, error) {
	start := time.Now()

	results, err := a.retriever.Retrieve(ctx, question)
	if err != nil {
		return nil, err
	}
	if len(results) == 0 {
		a.logger.Info("no context retrieved", "question", question)
	}

	prompt := BuildPrompt(question, BuildContext(results, a.budget))
	text, err := a.generator.Generate(ctx, a.systemPrompt, prompt)
	if err != nil {
		a.logger.Error("generation failed", "err", err)
		return nil, fmt.Errorf("%w: %w", ErrGenerationFailed, err)
	}

	a.logger.Debug("answered question",
		"sources", len(results),
		"prompt_chars", len(prompt),
		"elapsed", time.Since(start))

	return &Answer{
		Question: question,
		Text:     text,
		Sources:  results,
	}, nil
}
