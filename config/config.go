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

package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/poiesic/sift/ai"
	"github.com/poiesic/sift/answer"
	"github.com/poiesic/sift/ingestion"
	"github.com/poiesic/sift/search"
	"gopkg.in/yaml.v3"
)

// DefaultStoragePath is where documents are kept when no path is configured.
const DefaultStoragePath = "sift-data"

// Config is the complete sift configuration.
type Config struct {
	Storage   StorageConfig   `yaml:"storage"`
	AI        AIConfig        `yaml:"ai"`
	Search    SearchConfig    `yaml:"search"`
	Answer    AnswerConfig    `yaml:"answer"`
	Ingestion IngestionConfig `yaml:"ingestion"`
	LogLevel  string          `yaml:"log_level"`
}

// StorageConfig locates the document store.
type StorageConfig struct {
	Path     string `yaml:"path"`
	InMemory bool   `yaml:"in_memory"`
}

// AIConfig configures the embedding and generation endpoints.
type AIConfig struct {
	EmbeddingHost  string  `yaml:"embedding_host"`
	EmbeddingModel string  `yaml:"embedding_model"`
	GeneratorHost  string  `yaml:"generator_host"`
	GeneratorModel string  `yaml:"generator_model"`
	APIKey         string  `yaml:"api_key"`
	Temperature    float64 `yaml:"temperature"`

	// Dimensions is the expected embedding length. Zero accepts any length.
	Dimensions int `yaml:"dimensions"`

	// QueryCacheSize is the number of query embeddings kept in memory.
	// Zero disables the cache.
	QueryCacheSize int `yaml:"query_cache_size"`
}

// SearchConfig holds retrieval parameters.
type SearchConfig struct {
	TopK   int     `yaml:"top_k"`
	K      int     `yaml:"k"`
	Lambda float64 `yaml:"lambda"`
}

// AnswerConfig configures answer synthesis.
type AnswerConfig struct {
	// ContextBudget is the number of characters of each document sent
	// to the generator.
	ContextBudget int `yaml:"context_budget"`
}

// IngestionConfig configures the ingestion pipeline.
type IngestionConfig struct {
	PoolSize     int           `yaml:"pool_size"`
	ChunkSize    int           `yaml:"chunk_size"`
	ChunkOverlap int           `yaml:"chunk_overlap"`
	MaxAttempts  int           `yaml:"max_attempts"`
	RetryDelay   time.Duration `yaml:"retry_delay"`

	// RateLimit caps embedding calls per second. Zero means no limit.
	RateLimit float64 `yaml:"rate_limit"`
}

// NewConfig returns a configuration populated with defaults.
func NewConfig() *Config {
	aiDefaults := ai.DefaultConfig()
	searchDefaults := search.DefaultConfig()
	return &Config{
		Storage: StorageConfig{Path: DefaultStoragePath},
		AI: AIConfig{
			EmbeddingHost:  aiDefaults.EmbeddingHost,
			EmbeddingModel: aiDefaults.EmbeddingModel,
			GeneratorHost:  aiDefaults.GeneratorHost,
			GeneratorModel: aiDefaults.GeneratorModel,
			Temperature:    aiDefaults.Temperature,
			QueryCacheSize: ai.DefaultEmbeddingCacheSize,
		},
		Search: SearchConfig{
			TopK:   searchDefaults.TopK,
			K:      searchDefaults.K,
			Lambda: searchDefaults.Lambda,
		},
		Answer: AnswerConfig{ContextBudget: answer.DefaultContextBudget},
		Ingestion: IngestionConfig{
			ChunkSize:    ingestion.DefaultChunkSize,
			ChunkOverlap: ingestion.DefaultChunkOverlap,
			MaxAttempts:  ingestion.DefaultMaxAttempts,
			RetryDelay:   ingestion.DefaultRetryDelay,
		},
		LogLevel: "info",
	}
}

// Load builds a configuration from defaults, the YAML file at path (if
// path is not empty) and the environment, then validates it.
func Load(path string) (*Config, error) {
	cfg := NewConfig()

	if path != "" {
		if err := cfg.loadYAML(path); err != nil {
			return nil, err
		}
	}

	cfg.applyEnvOverrides(os.Getenv)

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

// loadYAML overlays the file's values onto c. Keys absent from the file
// keep their current values.
func (c *Config) loadYAML(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read config file %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, c); err != nil {
		return fmt.Errorf("failed to parse config file %s: %w", path, err)
	}
	return nil
}

// applyEnvOverrides applies environment variables read through getenv.
// Unparseable numeric values are logged and ignored.
func (c *Config) applyEnvOverrides(getenv func(string) string) {
	setInt := func(name string, dst *int) {
		v := strings.TrimSpace(getenv(name))
		if v == "" {
			return
		}
		n, err := strconv.Atoi(v)
		if err != nil {
			slog.Warn("ignoring invalid environment value", "name", name, "value", v)
			return
		}
		*dst = n
	}
	setString := func(name string, dst *string) {
		if v := strings.TrimSpace(getenv(name)); v != "" {
			*dst = v
		}
	}

	setInt("TOP_K", &c.Search.TopK)
	setInt("RERANK_K", &c.Search.K)
	setInt("EMBED_DIM", &c.AI.Dimensions)
	if v := strings.TrimSpace(getenv("MMR_LAMBDA")); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			c.Search.Lambda = f
		} else {
			slog.Warn("ignoring invalid environment value", "name", "MMR_LAMBDA", "value", v)
		}
	}

	setString("OLLAMA_HOST", &c.AI.EmbeddingHost)
	setString("EMBED_MODEL", &c.AI.EmbeddingModel)
	setString("OPENROUTER_API_KEY", &c.AI.APIKey)
	setString("OPENROUTER_MODEL", &c.AI.GeneratorModel)
	setString("SIFT_DB", &c.Storage.Path)
	setString("SIFT_LOG_LEVEL", &c.LogLevel)
}

// Validate checks the configuration.
func (c *Config) Validate() error {
	var errs []error

	if !c.Storage.InMemory && strings.TrimSpace(c.Storage.Path) == "" {
		errs = append(errs, errors.New("storage.path is required unless storage.in_memory is set"))
	}
	if err := c.SearchConfig().Validate(); err != nil {
		errs = append(errs, err)
	}
	aiCfg := c.AIConfig()
	if err := aiCfg.Validate(); err != nil {
		errs = append(errs, err)
	}
	if c.AI.QueryCacheSize < 0 {
		errs = append(errs, fmt.Errorf("ai.query_cache_size must be non-negative, got %d", c.AI.QueryCacheSize))
	}
	if c.Ingestion.ChunkSize <= 0 || c.Ingestion.ChunkOverlap < 0 || c.Ingestion.ChunkOverlap >= c.Ingestion.ChunkSize {
		errs = append(errs, fmt.Errorf("%w: chunk_size %d, chunk_overlap %d",
			ingestion.ErrInvalidChunking, c.Ingestion.ChunkSize, c.Ingestion.ChunkOverlap))
	}
	if c.Ingestion.MaxAttempts <= 0 {
		errs = append(errs, fmt.Errorf("ingestion.max_attempts must be positive, got %d", c.Ingestion.MaxAttempts))
	}
	if c.Ingestion.PoolSize < 0 {
		errs = append(errs, fmt.Errorf("ingestion.pool_size must be non-negative, got %d", c.Ingestion.PoolSize))
	}
	if _, err := ParseLogLevel(c.LogLevel); err != nil {
		errs = append(errs, err)
	}

	return errors.Join(errs...)
}

// AIConfig returns the normalized ai package configuration.
func (c *Config) AIConfig() *ai.Config {
	cfg := ai.NewConfig(
		ai.WithEmbeddingHost(c.AI.EmbeddingHost),
		ai.WithEmbeddingModel(c.AI.EmbeddingModel),
		ai.WithGeneratorHost(c.AI.GeneratorHost),
		ai.WithGeneratorModel(c.AI.GeneratorModel),
		ai.WithAPIKey(c.AI.APIKey),
		ai.WithTemperature(c.AI.Temperature),
		ai.WithDimensions(c.AI.Dimensions),
	)
	cfg.Normalize()
	return cfg
}

// SearchConfig returns the retrieval configuration.
func (c *Config) SearchConfig() search.Config {
	return search.Config{
		Dimensions: c.AI.Dimensions,
		TopK:       c.Search.TopK,
		K:          c.Search.K,
		Lambda:     c.Search.Lambda,
	}
}

// IngestionOptions returns pipeline options for the configured values.
func (c *Config) IngestionOptions() []ingestion.Option {
	opts := []ingestion.Option{
		ingestion.WithChunking(c.Ingestion.ChunkSize, c.Ingestion.ChunkOverlap),
		ingestion.WithRetry(c.Ingestion.MaxAttempts, c.Ingestion.RetryDelay),
		ingestion.WithRateLimit(c.Ingestion.RateLimit, 1),
	}
	if c.Ingestion.PoolSize > 0 {
		opts = append(opts, ingestion.WithPoolSize(c.Ingestion.PoolSize))
	}
	return opts
}

// WriteYAML writes the configuration to a YAML file.
func (c *Config) WriteYAML(path string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}
	if err := os.WriteFile(path, data, 0o600); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}
	return nil
}

// ParseLogLevel maps debug, info, warn or error (any case) to a slog level.
func ParseLogLevel(level string) (slog.Level, error) {
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "debug":
		return slog.LevelDebug, nil
	case "info", "":
		return slog.LevelInfo, nil
	case "warn", "warning":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	}
	return slog.LevelInfo, fmt.Errorf("log_level must be 'debug', 'info', 'warn', or 'error', got %q", level)
}
